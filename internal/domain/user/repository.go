package user

import "context"

// UserRepository defines data access methods for users.
// All lookup methods apart from GetByEmail are workspace-scoped.
type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)

	GetByID(ctx context.Context, id string) (User, error)

	// GetByEmail is used by login; email is unique across workspaces.
	GetByEmail(ctx context.Context, email string) (User, error)

	GetByOAuthProviderID(ctx context.Context, provider string, providerID string) (User, error)

	// ListByWorkspace returns every member of a workspace.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]User, error)

	// ListWithAutoCheckout returns user IDs in any workspace whose attendance
	// settings have auto-checkout enabled. Used by the sweep job.
	ListWithAutoCheckout(ctx context.Context) ([]string, error)

	// ListWithReminder returns user IDs whose attendance settings have
	// check-in reminders enabled. Used by the reminder job.
	ListWithReminder(ctx context.Context) ([]string, error)

	UpdateRole(ctx context.Context, id string, role Role) error
}
