package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records.
// FindOpenByUserForUpdate must be called inside a transaction; it takes a row
// lock so concurrent check-ins and check-outs serialize on the open record.
// The store additionally enforces the one-open-record invariant with a
// partial unique index on (user_id) WHERE check_out_time IS NULL; a violation
// is surfaced as ErrConflict.
type AttendanceRepository interface {
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string, workspaceID string) (Record, error)

	// FindOpenByUser returns nil when the user has no open session.
	FindOpenByUser(ctx context.Context, userID string) (*Record, error)

	// FindOpenByUserForUpdate is FindOpenByUser under FOR UPDATE.
	FindOpenByUserForUpdate(ctx context.Context, userID string) (*Record, error)

	// Update persists check-out and correction mutations on a record.
	Update(ctx context.Context, record Record) error

	// ListByUser returns a page of the user's records, newest first.
	ListByUser(ctx context.Context, userID string, filter RecordFilter) ([]Record, int64, error)

	// List returns a page of workspace records (admin view), newest first.
	List(ctx context.Context, workspaceID string, filter RecordFilter) ([]Record, int64, error)

	// ListForPeriod returns all of a user's records with a check-in inside
	// [from, to), oldest first. Used by statistics.
	ListForPeriod(ctx context.Context, userID string, from, to time.Time) ([]Record, error)
}

// CorrectionRepository defines data access for correction requests.
type CorrectionRepository interface {
	Create(ctx context.Context, req CorrectionRequest) (CorrectionRequest, error)

	GetByID(ctx context.Context, id string, workspaceID string) (CorrectionRequest, error)

	// GetByIDForUpdate locks the request row; used by ReviewCorrection so two
	// reviewers cannot both move it out of pending.
	GetByIDForUpdate(ctx context.Context, id string, workspaceID string) (CorrectionRequest, error)

	ListByUser(ctx context.Context, userID string) ([]CorrectionRequest, error)

	ListPending(ctx context.Context, workspaceID string) ([]CorrectionRequest, error)

	// Update persists the review outcome.
	Update(ctx context.Context, req CorrectionRequest) error
}

// SettingsRepository defines data access for per-user attendance settings.
type SettingsRepository interface {
	// GetByUser returns nil when the user has no stored settings yet.
	GetByUser(ctx context.Context, userID string) (*Settings, error)

	Create(ctx context.Context, s Settings) (Settings, error)

	Update(ctx context.Context, s Settings) error
}
