package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) attendance.CorrectionRepository {
	return &correctionRepository{db: db}
}

const correctionColumns = `
	c.id, c.workspace_id, c.attendance_id, c.user_id,
	c.original_check_in_time, c.original_check_out_time,
	c.requested_check_in_time, c.requested_check_out_time,
	c.reason, c.status, c.reviewed_by, c.reviewed_at, c.review_notes,
	c.created_at, c.updated_at`

func scanCorrection(row pgx.Row) (attendance.CorrectionRequest, error) {
	var c attendance.CorrectionRequest
	err := row.Scan(
		&c.ID, &c.WorkspaceID, &c.AttendanceID, &c.UserID,
		&c.OriginalCheckInTime, &c.OriginalCheckOutTime,
		&c.RequestedCheckInTime, &c.RequestedCheckOutTime,
		&c.Reason, &c.Status, &c.ReviewedBy, &c.ReviewedAt, &c.ReviewNotes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create implements attendance.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, req attendance.CorrectionRequest) (attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_corrections (
			id, workspace_id, attendance_id, user_id,
			original_check_in_time, original_check_out_time,
			requested_check_in_time, requested_check_out_time,
			reason, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID,
		req.WorkspaceID,
		req.AttendanceID,
		req.UserID,
		req.OriginalCheckInTime,
		req.OriginalCheckOutTime,
		req.RequestedCheckInTime,
		req.RequestedCheckOutTime,
		req.Reason,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	return req, nil
}

func (r *correctionRepository) getByID(ctx context.Context, id, workspaceID string, forUpdate bool) (attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_corrections c
		WHERE c.id = $1 AND c.workspace_id = $2
	`, correctionColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}

	correction, err := scanCorrection(q.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.CorrectionRequest{}, attendance.ErrCorrectionNotFound
		}
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to get correction request: %w", err)
	}

	return correction, nil
}

// GetByID implements attendance.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string, workspaceID string) (attendance.CorrectionRequest, error) {
	return r.getByID(ctx, id, workspaceID, false)
}

// GetByIDForUpdate implements attendance.CorrectionRepository.
func (r *correctionRepository) GetByIDForUpdate(ctx context.Context, id string, workspaceID string) (attendance.CorrectionRequest, error) {
	return r.getByID(ctx, id, workspaceID, true)
}

func (r *correctionRepository) queryCorrections(ctx context.Context, query string, args ...interface{}) ([]attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query correction requests: %w", err)
	}
	defer rows.Close()

	var corrections []attendance.CorrectionRequest
	for rows.Next() {
		var c attendance.CorrectionRequest
		err := rows.Scan(
			&c.ID, &c.WorkspaceID, &c.AttendanceID, &c.UserID,
			&c.OriginalCheckInTime, &c.OriginalCheckOutTime,
			&c.RequestedCheckInTime, &c.RequestedCheckOutTime,
			&c.Reason, &c.Status, &c.ReviewedBy, &c.ReviewedAt, &c.ReviewNotes,
			&c.CreatedAt, &c.UpdatedAt,
			&c.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction request: %w", err)
		}
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read correction requests: %w", err)
	}

	return corrections, nil
}

// ListByUser implements attendance.CorrectionRepository.
func (r *correctionRepository) ListByUser(ctx context.Context, userID string) ([]attendance.CorrectionRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s, u.name AS user_name
		FROM attendance_corrections c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
	`, correctionColumns)
	return r.queryCorrections(ctx, query, userID)
}

// ListPending implements attendance.CorrectionRepository.
func (r *correctionRepository) ListPending(ctx context.Context, workspaceID string) ([]attendance.CorrectionRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s, u.name AS user_name
		FROM attendance_corrections c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.workspace_id = $1 AND c.status = $2
		ORDER BY c.created_at ASC
	`, correctionColumns)
	return r.queryCorrections(ctx, query, workspaceID, attendance.CorrectionPending)
}

// Update implements attendance.CorrectionRepository.
func (r *correctionRepository) Update(ctx context.Context, req attendance.CorrectionRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_corrections
		SET status = $1,
			reviewed_by = $2,
			reviewed_at = $3,
			review_notes = $4,
			updated_at = NOW()
		WHERE id = $5 AND workspace_id = $6
	`

	tag, err := q.Exec(ctx, query,
		req.Status,
		req.ReviewedBy,
		req.ReviewedAt,
		req.ReviewNotes,
		req.ID,
		req.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update correction request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrCorrectionNotFound
	}

	return nil
}
