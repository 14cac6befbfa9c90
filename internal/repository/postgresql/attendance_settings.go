package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) attendance.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByUser implements attendance.SettingsRepository.
func (r *settingsRepository) GetByUser(ctx context.Context, userID string) (*attendance.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, workspace_id, user_id,
			   work_hours_per_day, work_days,
			   auto_checkout_enabled, auto_checkout_time,
			   reminder_enabled, reminder_time,
			   created_at, updated_at
		FROM attendance_settings
		WHERE user_id = $1
	`

	var s attendance.Settings
	err := q.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.WorkspaceID, &s.UserID,
		&s.WorkHoursPerDay, &s.WorkDays,
		&s.AutoCheckoutEnabled, &s.AutoCheckoutTime,
		&s.ReminderEnabled, &s.ReminderTime,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance settings: %w", err)
	}

	return &s, nil
}

// Create implements attendance.SettingsRepository. Concurrent first reads for
// the same user race on the unique user_id constraint; ON CONFLICT keeps the
// first row.
func (r *settingsRepository) Create(ctx context.Context, s attendance.Settings) (attendance.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_settings (
			id, workspace_id, user_id,
			work_hours_per_day, work_days,
			auto_checkout_enabled, auto_checkout_time,
			reminder_enabled, reminder_time
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.ID,
		s.WorkspaceID,
		s.UserID,
		s.WorkHoursPerDay,
		s.WorkDays,
		s.AutoCheckoutEnabled,
		s.AutoCheckoutTime,
		s.ReminderEnabled,
		s.ReminderTime,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// lost the race; return the stored row
			existing, getErr := r.GetByUser(ctx, s.UserID)
			if getErr != nil {
				return attendance.Settings{}, getErr
			}
			if existing != nil {
				return *existing, nil
			}
		}
		return attendance.Settings{}, fmt.Errorf("failed to create attendance settings: %w", err)
	}

	return s, nil
}

// Update implements attendance.SettingsRepository.
func (r *settingsRepository) Update(ctx context.Context, s attendance.Settings) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_settings
		SET work_hours_per_day = $1,
			work_days = $2,
			auto_checkout_enabled = $3,
			auto_checkout_time = $4,
			reminder_enabled = $5,
			reminder_time = $6,
			updated_at = NOW()
		WHERE user_id = $7
	`

	tag, err := q.Exec(ctx, query,
		s.WorkHoursPerDay,
		s.WorkDays,
		s.AutoCheckoutEnabled,
		s.AutoCheckoutTime,
		s.ReminderEnabled,
		s.ReminderTime,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attendance settings not found for user %s", s.UserID)
	}

	return nil
}
