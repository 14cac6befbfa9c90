package activity

import "context"

type ActivityRepository interface {
	Create(ctx context.Context, entry Entry) error
	ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]Entry, error)
	ListByEntity(ctx context.Context, workspaceID, entityType, entityID string) ([]Entry, error)
}

// Sink accepts audit entries fire-and-forget: implementations must never
// propagate a write failure to the caller.
type Sink interface {
	Record(ctx context.Context, entry Entry)
}
