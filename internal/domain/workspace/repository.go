package workspace

import "context"

type WorkspaceRepository interface {
	Create(ctx context.Context, ws Workspace) (Workspace, error)
	GetByID(ctx context.Context, id string) (Workspace, error)
	GetBySlug(ctx context.Context, slug string) (Workspace, error)
}
