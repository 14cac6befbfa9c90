package project

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/service/access"
)

type ProjectServiceImpl struct {
	project.ProjectRepository
	users user.UserRepository

	resolver access.Resolver
	audit    activity.Sink
}

func NewProjectService(
	projectRepo project.ProjectRepository,
	userRepo user.UserRepository,
	resolver access.Resolver,
	audit activity.Sink,
) project.ProjectService {
	return &ProjectServiceImpl{
		ProjectRepository: projectRepo,
		users:             userRepo,
		resolver:          resolver,
		audit:             audit,
	}
}

func identityFromContext(ctx context.Context) (userID, workspaceID string, role user.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	workspaceID, ok = claims["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return "", "", "", fmt.Errorf("workspace_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", "", fmt.Errorf("role claim is missing or invalid")
	}

	return userID, workspaceID, user.Role(roleStr), nil
}

// CreateProject implements project.ProjectService.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionProjectCreate) {
		return project.ProjectResponse{}, project.ErrForbidden
	}

	created, err := s.ProjectRepository.Create(ctx, project.Project{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		CreatedBy:   userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return project.ProjectResponse{}, fmt.Errorf("failed to create project: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionProjectCreated,
		EntityType:  activity.EntityProject,
		EntityID:    created.ID,
		Description: fmt.Sprintf("created project %q", created.Name),
	})

	return mapProjectToResponse(created), nil
}

// GetProject implements project.ProjectService.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, id string) (project.ProjectResponse, error) {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	proj, err := s.ProjectRepository.GetByID(ctx, id, workspaceID)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	decision, err := s.resolver.CanAccessProject(ctx,
		access.Principal{UserID: userID, Role: role},
		proj, user.PermissionProjectViewAll)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if !decision.Allowed {
		return project.ProjectResponse{}, project.ErrForbidden
	}

	return mapProjectToResponse(proj), nil
}

// ListProjects implements project.ProjectService. Users without the
// workspace-wide view permission only see projects they created or joined.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context) ([]project.ProjectResponse, error) {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := s.ProjectRepository.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	seeAll := user.HasPermission(role, user.PermissionProjectViewAll)

	responses := make([]project.ProjectResponse, 0, len(projects))
	for _, proj := range projects {
		if !seeAll && proj.CreatedBy != userID {
			isMember, err := s.ProjectRepository.IsMember(ctx, proj.ID, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to check project membership: %w", err)
			}
			if !isMember {
				continue
			}
		}
		responses = append(responses, mapProjectToResponse(proj))
	}

	return responses, nil
}

// UpdateProject implements project.ProjectService.
func (s *ProjectServiceImpl) UpdateProject(ctx context.Context, req project.UpdateProjectRequest) (project.ProjectResponse, error) {
	if err := req.Validate(); err != nil {
		return project.ProjectResponse{}, err
	}

	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	proj, err := s.ProjectRepository.GetByID(ctx, req.ID, workspaceID)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	decision, err := s.resolver.CanManageProject(ctx, access.Principal{UserID: userID, Role: role}, proj)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if !decision.Allowed {
		return project.ProjectResponse{}, project.ErrForbidden
	}

	if req.Name != nil {
		proj.Name = *req.Name
	}
	if req.Description != nil {
		proj.Description = req.Description
	}
	if req.Archived != nil {
		proj.Archived = *req.Archived
	}

	if err := s.ProjectRepository.Update(ctx, proj); err != nil {
		return project.ProjectResponse{}, fmt.Errorf("failed to update project: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionProjectUpdated,
		EntityType:  activity.EntityProject,
		EntityID:    proj.ID,
		Description: fmt.Sprintf("updated project %q", proj.Name),
	})

	return mapProjectToResponse(proj), nil
}

// DeleteProject implements project.ProjectService.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id string) error {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	proj, err := s.ProjectRepository.GetByID(ctx, id, workspaceID)
	if err != nil {
		return err
	}

	decision, err := s.resolver.CanManageProject(ctx, access.Principal{UserID: userID, Role: role}, proj)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return project.ErrForbidden
	}

	if err := s.ProjectRepository.Delete(ctx, id, workspaceID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionProjectDeleted,
		EntityType:  activity.EntityProject,
		EntityID:    proj.ID,
		Description: fmt.Sprintf("deleted project %q", proj.Name),
	})

	return nil
}

// AddMember implements project.ProjectService. The new member must belong to
// the same workspace as the project.
func (s *ProjectServiceImpl) AddMember(ctx context.Context, req project.AddMemberRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	proj, err := s.ProjectRepository.GetByID(ctx, req.ProjectID, workspaceID)
	if err != nil {
		return err
	}

	decision, err := s.resolver.CanManageProject(ctx, access.Principal{UserID: userID, Role: role}, proj)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return project.ErrForbidden
	}

	member, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return user.ErrUserNotFound
	}
	if member.WorkspaceID != workspaceID {
		return user.ErrUserNotFound
	}

	isMember, err := s.ProjectRepository.IsMember(ctx, proj.ID, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to check project membership: %w", err)
	}
	if isMember {
		return project.ErrAlreadyMember
	}

	if err := s.ProjectRepository.AddMember(ctx, project.Member{
		ProjectID: proj.ID,
		UserID:    req.UserID,
		AddedBy:   userID,
		AddedAt:   time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionMemberAdded,
		EntityType:  activity.EntityProject,
		EntityID:    proj.ID,
		Description: fmt.Sprintf("added %s to project %q", member.Name, proj.Name),
	})

	return nil
}

// RemoveMember implements project.ProjectService.
func (s *ProjectServiceImpl) RemoveMember(ctx context.Context, projectID, memberID string) error {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	proj, err := s.ProjectRepository.GetByID(ctx, projectID, workspaceID)
	if err != nil {
		return err
	}

	decision, err := s.resolver.CanManageProject(ctx, access.Principal{UserID: userID, Role: role}, proj)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return project.ErrForbidden
	}

	isMember, err := s.ProjectRepository.IsMember(ctx, projectID, memberID)
	if err != nil {
		return fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return project.ErrNotMember
	}

	if err := s.ProjectRepository.RemoveMember(ctx, projectID, memberID); err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionMemberRemoved,
		EntityType:  activity.EntityProject,
		EntityID:    proj.ID,
		Description: fmt.Sprintf("removed a member from project %q", proj.Name),
	})

	return nil
}

// ListMembers implements project.ProjectService.
func (s *ProjectServiceImpl) ListMembers(ctx context.Context, projectID string) ([]project.MemberResponse, error) {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	proj, err := s.ProjectRepository.GetByID(ctx, projectID, workspaceID)
	if err != nil {
		return nil, err
	}

	decision, err := s.resolver.CanAccessProject(ctx,
		access.Principal{UserID: userID, Role: role},
		proj, user.PermissionProjectViewAll)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, project.ErrForbidden
	}

	members, err := s.ProjectRepository.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}

	responses := make([]project.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, project.MemberResponse{
			UserID:   m.UserID,
			UserName: m.UserName,
			Email:    m.Email,
			AddedBy:  m.AddedBy,
			AddedAt:  m.AddedAt.Format(time.RFC3339),
		})
	}

	return responses, nil
}

func mapProjectToResponse(p project.Project) project.ProjectResponse {
	return project.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		Archived:    p.Archived,
		TaskCount:   p.TaskCount,
		MemberCount: p.MemberCount,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}
