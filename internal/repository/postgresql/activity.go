package postgresql

import (
	"context"
	"fmt"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
)

type activityRepository struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) activity.ActivityRepository {
	return &activityRepository{db: db}
}

// Create implements activity.ActivityRepository.
func (r *activityRepository) Create(ctx context.Context, entry activity.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO activity_log (
			id, workspace_id, user_id, action, entity_type, entity_id, description
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := q.Exec(ctx, query,
		entry.ID,
		entry.WorkspaceID,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity entry: %w", err)
	}

	return nil
}

// ListByWorkspace implements activity.ActivityRepository.
func (r *activityRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]activity.Entry, error) {
	query := `
		SELECT a.id, a.workspace_id, a.user_id, a.action, a.entity_type, a.entity_id,
			   a.description, a.created_at, u.name AS user_name
		FROM activity_log a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.workspace_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2
	`
	return r.queryEntries(ctx, query, workspaceID, limit)
}

// ListByEntity implements activity.ActivityRepository.
func (r *activityRepository) ListByEntity(ctx context.Context, workspaceID, entityType, entityID string) ([]activity.Entry, error) {
	query := `
		SELECT a.id, a.workspace_id, a.user_id, a.action, a.entity_type, a.entity_id,
			   a.description, a.created_at, u.name AS user_name
		FROM activity_log a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.workspace_id = $1 AND a.entity_type = $2 AND a.entity_id = $3
		ORDER BY a.created_at DESC
	`
	return r.queryEntries(ctx, query, workspaceID, entityType, entityID)
}

func (r *activityRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]activity.Entry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity entries: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var e activity.Entry
		err := rows.Scan(
			&e.ID, &e.WorkspaceID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID,
			&e.Description, &e.CreatedAt, &e.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity entries: %w", err)
	}

	return entries, nil
}
