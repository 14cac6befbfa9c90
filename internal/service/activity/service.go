package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
)

// SinkImpl writes audit entries fire-and-forget: a failed write is logged
// and never surfaces to the operation that emitted the entry.
type SinkImpl struct {
	repo activity.ActivityRepository
}

func NewSink(repo activity.ActivityRepository) activity.Sink {
	return &SinkImpl{repo: repo}
}

// Record implements activity.Sink.
func (s *SinkImpl) Record(ctx context.Context, entry activity.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		slog.Error("Failed to write activity entry",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}

const defaultActivityLimit = 50

type ActivityServiceImpl struct {
	activity.ActivityRepository
}

func NewActivityService(repo activity.ActivityRepository) activity.ActivityService {
	return &ActivityServiceImpl{ActivityRepository: repo}
}

// ListWorkspaceActivity implements activity.ActivityService.
func (s *ActivityServiceImpl) ListWorkspaceActivity(ctx context.Context, limit int) ([]activity.EntryResponse, error) {
	workspaceID, err := requireActivityViewer(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = defaultActivityLimit
	}

	entries, err := s.ActivityRepository.ListByWorkspace(ctx, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return mapEntries(entries), nil
}

// ListEntityActivity implements activity.ActivityService.
func (s *ActivityServiceImpl) ListEntityActivity(ctx context.Context, entityType, entityID string) ([]activity.EntryResponse, error) {
	workspaceID, err := requireActivityViewer(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.ActivityRepository.ListByEntity(ctx, workspaceID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity activity: %w", err)
	}
	return mapEntries(entries), nil
}

func requireActivityViewer(ctx context.Context) (workspaceID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	workspaceID, ok := claims["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return "", fmt.Errorf("workspace_id claim is missing or invalid")
	}

	roleStr, _ := claims["role"].(string)
	if !user.HasPermission(user.Role(roleStr), user.PermissionActivityViewAll) {
		return "", activity.ErrForbidden
	}
	return workspaceID, nil
}

func mapEntries(entries []activity.Entry) []activity.EntryResponse {
	responses := make([]activity.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, activity.EntryResponse{
			ID:          e.ID,
			UserID:      e.UserID,
			UserName:    e.UserName,
			Action:      e.Action,
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Description: e.Description,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses
}
