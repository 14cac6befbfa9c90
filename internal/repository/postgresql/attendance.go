package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.workspace_id, a.user_id,
	a.check_in_time, a.check_out_time, a.total_hours, a.auto_checkout,
	a.check_in_location_name, a.check_in_ip_address, a.check_in_device_info,
	a.check_out_location_name, a.check_out_ip_address, a.check_out_device_info,
	a.notes, a.created_at, a.updated_at`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.WorkspaceID, &r.UserID,
		&r.CheckInTime, &r.CheckOutTime, &r.TotalHours, &r.AutoCheckout,
		&r.CheckInLocationName, &r.CheckInIPAddress, &r.CheckInDeviceInfo,
		&r.CheckOutLocationName, &r.CheckOutIPAddress, &r.CheckOutDeviceInfo,
		&r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements attendance.AttendanceRepository. A violation of the
// partial unique index on (user_id) WHERE check_out_time IS NULL surfaces as
// ErrConflict.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, workspace_id, user_id, check_in_time, check_out_time,
			total_hours, auto_checkout,
			check_in_location_name, check_in_ip_address, check_in_device_info,
			notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.WorkspaceID,
		record.UserID,
		record.CheckInTime,
		record.CheckOutTime,
		record.TotalHours,
		record.AutoCheckout,
		record.CheckInLocationName,
		record.CheckInIPAddress,
		record.CheckInDeviceInfo,
		record.Notes,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Record{}, attendance.ErrConflict
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, workspaceID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		WHERE a.id = $1 AND a.workspace_id = $2
	`, attendanceColumns)

	record, err := scanRecord(q.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return record, nil
}

func (a *attendanceRepository) findOpenByUser(ctx context.Context, userID string, forUpdate bool) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		WHERE a.user_id = $1 AND a.check_out_time IS NULL
		ORDER BY a.check_in_time DESC
		LIMIT 1
	`, attendanceColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}

	record, err := scanRecord(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open attendance record: %w", err)
	}

	return &record, nil
}

// FindOpenByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindOpenByUser(ctx context.Context, userID string) (*attendance.Record, error) {
	return a.findOpenByUser(ctx, userID, false)
}

// FindOpenByUserForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindOpenByUserForUpdate(ctx context.Context, userID string) (*attendance.Record, error) {
	return a.findOpenByUser(ctx, userID, true)
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET check_in_time = $1,
			check_out_time = $2,
			total_hours = $3,
			auto_checkout = $4,
			check_out_location_name = $5,
			check_out_ip_address = $6,
			check_out_device_info = $7,
			notes = $8,
			updated_at = NOW()
		WHERE id = $9 AND workspace_id = $10
	`

	tag, err := q.Exec(ctx, query,
		record.CheckInTime,
		record.CheckOutTime,
		record.TotalHours,
		record.AutoCheckout,
		record.CheckOutLocationName,
		record.CheckOutIPAddress,
		record.CheckOutDeviceInfo,
		record.Notes,
		record.ID,
		record.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

func (a *attendanceRepository) list(ctx context.Context, baseWhere string, args []interface{}, filter attendance.RecordFilter, joinUser bool) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)
	argIdx := len(args) + 1

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.check_in_time >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		// inclusive end date: everything before the following midnight
		baseWhere += fmt.Sprintf(" AND a.check_in_time < ($%d::date + INTERVAL '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_records a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	orderByField := "a.check_in_time"
	switch filter.SortBy {
	case "check_out_time":
		orderByField = "a.check_out_time"
	case "total_hours":
		orderByField = "a.total_hours"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	columns := attendanceColumns
	join := ""
	if joinUser {
		columns += ", u.name AS user_name"
		join = "LEFT JOIN users u ON u.id = a.user_id"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		%s
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, columns, join, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var r attendance.Record
		dest := []interface{}{
			&r.ID, &r.WorkspaceID, &r.UserID,
			&r.CheckInTime, &r.CheckOutTime, &r.TotalHours, &r.AutoCheckout,
			&r.CheckInLocationName, &r.CheckInIPAddress, &r.CheckInDeviceInfo,
			&r.CheckOutLocationName, &r.CheckOutIPAddress, &r.CheckOutDeviceInfo,
			&r.Notes, &r.CreatedAt, &r.UpdatedAt,
		}
		if joinUser {
			dest = append(dest, &r.UserName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance records: %w", err)
	}

	return records, total, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	return a.list(ctx, "a.user_id = $1", []interface{}{userID}, filter, false)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, workspaceID string, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	baseWhere := "a.workspace_id = $1"
	args := []interface{}{workspaceID}
	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += " AND a.user_id = $2"
		args = append(args, *filter.UserID)
	}
	return a.list(ctx, baseWhere, args, filter, true)
}

// ListForPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListForPeriod(ctx context.Context, userID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		WHERE a.user_id = $1
		  AND a.check_in_time >= $2
		  AND a.check_in_time < $3
		ORDER BY a.check_in_time ASC
	`, attendanceColumns)

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records for period: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var r attendance.Record
		err := rows.Scan(
			&r.ID, &r.WorkspaceID, &r.UserID,
			&r.CheckInTime, &r.CheckOutTime, &r.TotalHours, &r.AutoCheckout,
			&r.CheckInLocationName, &r.CheckInIPAddress, &r.CheckInDeviceInfo,
			&r.CheckOutLocationName, &r.CheckOutIPAddress, &r.CheckOutDeviceInfo,
			&r.Notes, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	return records, nil
}
