package task

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/task"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/service/access"
)

type TaskServiceImpl struct {
	task.TaskRepository
	projects project.ProjectRepository

	resolver access.Resolver
	audit    activity.Sink
}

func NewTaskService(
	taskRepo task.TaskRepository,
	projectRepo project.ProjectRepository,
	resolver access.Resolver,
	audit activity.Sink,
) task.TaskService {
	return &TaskServiceImpl{
		TaskRepository: taskRepo,
		projects:       projectRepo,
		resolver:       resolver,
		audit:          audit,
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

// projectFor loads the task's project and verifies the principal may access it.
func (s *TaskServiceImpl) projectFor(ctx context.Context, projectID, workspaceID, userID string, role user.Role) (project.Project, error) {
	proj, err := s.projects.GetByID(ctx, projectID, workspaceID)
	if err != nil {
		return project.Project{}, err
	}

	decision, err := s.resolver.CanAccessProject(ctx,
		access.Principal{UserID: userID, Role: role},
		proj, user.PermissionProjectViewAll)
	if err != nil {
		return project.Project{}, err
	}
	if !decision.Allowed {
		return project.Project{}, task.ErrForbidden
	}

	return proj, nil
}

// assigneeIsMember reports whether the user may be assigned tasks in the
// project: its creator or one of its members.
func (s *TaskServiceImpl) assigneeIsMember(ctx context.Context, proj project.Project, assigneeID string) (bool, error) {
	if proj.CreatedBy == assigneeID {
		return true, nil
	}
	isMember, err := s.projects.IsMember(ctx, proj.ID, assigneeID)
	if err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return isMember, nil
}

// CreateTask implements task.TaskService.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req task.CreateTaskRequest) (task.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}

	proj, err := s.projectFor(ctx, req.ProjectID, workspaceID, userID, role)
	if err != nil {
		return task.TaskResponse{}, err
	}

	if req.AssigneeID != nil && *req.AssigneeID != "" {
		ok, err := s.assigneeIsMember(ctx, proj, *req.AssigneeID)
		if err != nil {
			return task.TaskResponse{}, err
		}
		if !ok {
			return task.TaskResponse{}, task.ErrAssigneeNotMember
		}
	}

	newTask := task.Task{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		ProjectID:   proj.ID,
		CreatedBy:   userID,
		AssigneeID:  req.AssigneeID,
		Title:       req.Title,
		Description: req.Description,
		Status:      task.StatusTodo,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, _ := time.Parse("2006-01-02", *req.DueDate)
		newTask.DueDate = &due
	}

	created, err := s.TaskRepository.Create(ctx, newTask)
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionTaskCreated,
		EntityType:  activity.EntityTask,
		EntityID:    created.ID,
		Description: fmt.Sprintf("created task %q in project %q", created.Title, proj.Name),
	})

	return mapTaskToResponse(created), nil
}

// GetTask implements task.TaskService.
func (s *TaskServiceImpl) GetTask(ctx context.Context, id string) (task.TaskResponse, error) {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}

	t, err := s.TaskRepository.GetByID(ctx, id, workspaceID)
	if err != nil {
		return task.TaskResponse{}, err
	}

	if _, err := s.projectFor(ctx, t.ProjectID, workspaceID, userID, role); err != nil {
		return task.TaskResponse{}, err
	}

	return mapTaskToResponse(t), nil
}

// ListTasks implements task.TaskService.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, projectID string) ([]task.TaskResponse, error) {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.projectFor(ctx, projectID, workspaceID, userID, role); err != nil {
		return nil, err
	}

	tasks, err := s.TaskRepository.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	responses := make([]task.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, mapTaskToResponse(t))
	}

	return responses, nil
}

// UpdateTask implements task.TaskService. Status changes must follow the
// todo -> in_progress -> done ladder; done reopens to in_progress only.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, req task.UpdateTaskRequest) (task.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}

	t, err := s.TaskRepository.GetByID(ctx, req.ID, workspaceID)
	if err != nil {
		return task.TaskResponse{}, err
	}

	proj, err := s.projectFor(ctx, t.ProjectID, workspaceID, userID, role)
	if err != nil {
		return task.TaskResponse{}, err
	}

	if req.Status != nil {
		next := task.Status(*req.Status)
		if next != t.Status {
			if !task.ValidTransition(t.Status, next) {
				return task.TaskResponse{}, task.ErrInvalidStatusChange
			}
			t.Status = next
		}
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			ok, err := s.assigneeIsMember(ctx, proj, *req.AssigneeID)
			if err != nil {
				return task.TaskResponse{}, err
			}
			if !ok {
				return task.TaskResponse{}, task.ErrAssigneeNotMember
			}
			t.AssigneeID = req.AssigneeID
		}
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			t.DueDate = nil
		} else {
			due, _ := time.Parse("2006-01-02", *req.DueDate)
			t.DueDate = &due
		}
	}

	if err := s.TaskRepository.Update(ctx, t); err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to update task: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionTaskUpdated,
		EntityType:  activity.EntityTask,
		EntityID:    t.ID,
		Description: fmt.Sprintf("updated task %q", t.Title),
	})

	return mapTaskToResponse(t), nil
}

// DeleteTask implements task.TaskService. Deleting requires manage rights on
// the project, not just access.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	userID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return err
	}

	t, err := s.TaskRepository.GetByID(ctx, id, workspaceID)
	if err != nil {
		return err
	}

	proj, err := s.projects.GetByID(ctx, t.ProjectID, workspaceID)
	if err != nil {
		return err
	}

	decision, err := s.resolver.CanManageProject(ctx, access.Principal{UserID: userID, Role: role}, proj)
	if err != nil {
		return err
	}
	if !decision.Allowed && t.CreatedBy != userID {
		return task.ErrForbidden
	}

	if err := s.TaskRepository.Delete(ctx, id, workspaceID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionTaskDeleted,
		EntityType:  activity.EntityTask,
		EntityID:    t.ID,
		Description: fmt.Sprintf("deleted task %q", t.Title),
	})

	return nil
}

func mapTaskToResponse(t task.Task) task.TaskResponse {
	resp := task.TaskResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		CreatedBy:    t.CreatedBy,
		AssigneeID:   t.AssigneeID,
		AssigneeName: t.AssigneeName,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}
	return resp
}
