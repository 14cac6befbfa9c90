package activity

import "context"

// ActivityService exposes the audit trail to readers with the
// activity.view_all permission.
type ActivityService interface {
	ListWorkspaceActivity(ctx context.Context, limit int) ([]EntryResponse, error)
	ListEntityActivity(ctx context.Context, entityType, entityID string) ([]EntryResponse, error)
}
