package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
)

type projectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepository{db: db}
}

// Create implements project.ProjectRepository.
func (r *projectRepository) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO projects (id, workspace_id, created_by, name, description, archived)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ID, p.WorkspaceID, p.CreatedBy, p.Name, p.Description, p.Archived,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to create project: %w", err)
	}

	return p, nil
}

// GetByID implements project.ProjectRepository.
func (r *projectRepository) GetByID(ctx context.Context, id string, workspaceID string) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.workspace_id, p.created_by, p.name, p.description, p.archived,
			   p.created_at, p.updated_at,
			   (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count,
			   (SELECT COUNT(*) FROM project_members m WHERE m.project_id = p.id) AS member_count
		FROM projects p
		WHERE p.id = $1 AND p.workspace_id = $2
	`

	var p project.Project
	err := q.QueryRow(ctx, query, id, workspaceID).Scan(
		&p.ID, &p.WorkspaceID, &p.CreatedBy, &p.Name, &p.Description, &p.Archived,
		&p.CreatedAt, &p.UpdatedAt, &p.TaskCount, &p.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project by ID: %w", err)
	}

	return p, nil
}

// ListByWorkspace implements project.ProjectRepository.
func (r *projectRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]project.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.workspace_id, p.created_by, p.name, p.description, p.archived,
			   p.created_at, p.updated_at,
			   (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count,
			   (SELECT COUNT(*) FROM project_members m WHERE m.project_id = p.id) AS member_count
		FROM projects p
		WHERE p.workspace_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := q.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var p project.Project
		err := rows.Scan(
			&p.ID, &p.WorkspaceID, &p.CreatedBy, &p.Name, &p.Description, &p.Archived,
			&p.CreatedAt, &p.UpdatedAt, &p.TaskCount, &p.MemberCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}

	return projects, nil
}

// Update implements project.ProjectRepository.
func (r *projectRepository) Update(ctx context.Context, p project.Project) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE projects
		SET name = $1, description = $2, archived = $3, updated_at = NOW()
		WHERE id = $4 AND workspace_id = $5
	`

	tag, err := q.Exec(ctx, query, p.Name, p.Description, p.Archived, p.ID, p.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}

// Delete implements project.ProjectRepository. Tasks and memberships cascade
// at the schema level.
func (r *projectRepository) Delete(ctx context.Context, id string, workspaceID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM projects WHERE id = $1 AND workspace_id = $2", id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}

// AddMember implements project.ProjectRepository.
func (r *projectRepository) AddMember(ctx context.Context, m project.Member) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO project_members (project_id, user_id, added_by)
		VALUES ($1, $2, $3)
	`

	_, err := q.Exec(ctx, query, m.ProjectID, m.UserID, m.AddedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return project.ErrAlreadyMember
		}
		return fmt.Errorf("failed to add project member: %w", err)
	}

	return nil
}

// RemoveMember implements project.ProjectRepository.
func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM project_members WHERE project_id = $1 AND user_id = $2", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrNotMember
	}

	return nil
}

// ListMembers implements project.ProjectRepository.
func (r *projectRepository) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT m.project_id, m.user_id, m.added_by, m.added_at,
			   u.name AS user_name, u.email
		FROM project_members m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.added_at ASC
	`

	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()

	var members []project.Member
	for rows.Next() {
		var m project.Member
		err := rows.Scan(&m.ProjectID, &m.UserID, &m.AddedBy, &m.AddedAt, &m.UserName, &m.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read project members: %w", err)
	}

	return members, nil
}

// IsMember implements project.ProjectRepository.
func (r *projectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members
			WHERE project_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}

	return exists, nil
}
