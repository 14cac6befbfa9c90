package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/handler/http/response"
)

type ActivityHandler interface {
	ListWorkspace(w http.ResponseWriter, r *http.Request)
	ListEntity(w http.ResponseWriter, r *http.Request)
}

type ActivityHandlerImpl struct {
	activityService activity.ActivityService
}

func NewActivityHandler(activityService activity.ActivityService) ActivityHandler {
	return &ActivityHandlerImpl{activityService: activityService}
}

// ListWorkspace implements ActivityHandler.
func (h *ActivityHandlerImpl) ListWorkspace(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.activityService.ListWorkspaceActivity(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

// ListEntity implements ActivityHandler.
func (h *ActivityHandlerImpl) ListEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityID")

	entries, err := h.activityService.ListEntityActivity(r.Context(), entityType, entityID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
