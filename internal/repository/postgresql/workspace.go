package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/workspace"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
)

type workspaceRepository struct {
	db *database.DB
}

func NewWorkspaceRepository(db *database.DB) workspace.WorkspaceRepository {
	return &workspaceRepository{db: db}
}

// Create implements workspace.WorkspaceRepository.
func (r *workspaceRepository) Create(ctx context.Context, ws workspace.Workspace) (workspace.Workspace, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO workspaces (id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, ws.ID, ws.Name, ws.Slug).Scan(&ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return workspace.Workspace{}, workspace.ErrSlugExists
		}
		return workspace.Workspace{}, fmt.Errorf("failed to create workspace: %w", err)
	}

	return ws, nil
}

// GetByID implements workspace.WorkspaceRepository.
func (r *workspaceRepository) GetByID(ctx context.Context, id string) (workspace.Workspace, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`

	var ws workspace.Workspace
	err := q.QueryRow(ctx, query, id).Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workspace.Workspace{}, workspace.ErrWorkspaceNotFound
		}
		return workspace.Workspace{}, fmt.Errorf("failed to get workspace by ID: %w", err)
	}

	return ws, nil
}

// GetBySlug implements workspace.WorkspaceRepository.
func (r *workspaceRepository) GetBySlug(ctx context.Context, slug string) (workspace.Workspace, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM workspaces
		WHERE slug = $1
	`

	var ws workspace.Workspace
	err := q.QueryRow(ctx, query, slug).Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workspace.Workspace{}, workspace.ErrWorkspaceNotFound
		}
		return workspace.Workspace{}, fmt.Errorf("failed to get workspace by slug: %w", err)
	}

	return ws, nil
}
