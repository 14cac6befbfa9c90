package project

import "context"

type ProjectRepository interface {
	Create(ctx context.Context, p Project) (Project, error)
	GetByID(ctx context.Context, id string, workspaceID string) (Project, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]Project, error)
	Update(ctx context.Context, p Project) error
	Delete(ctx context.Context, id string, workspaceID string) error

	AddMember(ctx context.Context, m Member) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	ListMembers(ctx context.Context, projectID string) ([]Member, error)
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}
