package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/auth"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/task"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/workspace"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A duplicate check-in carries the already-open record
	var alreadyCheckedIn *attendance.AlreadyCheckedInError
	if errors.As(err, &alreadyCheckedIn) {
		ConflictWithData(w, "Already checked in", map[string]interface{}{
			"attendance_id": alreadyCheckedIn.Existing.ID,
			"check_in_time": alreadyCheckedIn.Existing.CheckInTime.Format(time.RFC3339),
		})
		return
	}

	// A double check-out carries the record that was already closed
	var alreadyCheckedOut *attendance.AlreadyCheckedOutError
	if errors.As(err, &alreadyCheckedOut) {
		ConflictWithData(w, "Already checked out", map[string]interface{}{
			"attendance_id":  alreadyCheckedOut.Closed.ID,
			"check_out_time": alreadyCheckedOut.Closed.CheckOutTime.Format(time.RFC3339),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrInvalidOAuthState):
		Unauthorized(w, "Invalid OAuth state")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, workspace.ErrWorkspaceNotFound):
		NotFound(w, "Workspace not found")
	case errors.Is(err, workspace.ErrSlugExists):
		Conflict(w, "Workspace slug already taken")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "No open attendance record")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Attendance record already closed")
	case errors.Is(err, attendance.ErrCheckOutBeforeIn):
		BadRequest(w, "Check-out time must be after check-in time", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrCorrectionNotFound):
		NotFound(w, "Correction request not found")
	case errors.Is(err, attendance.ErrCorrectionNotPending):
		Conflict(w, "Correction request already reviewed")
	case errors.Is(err, attendance.ErrConflict):
		Conflict(w, "Attendance record conflicts with an existing one")
	case errors.Is(err, attendance.ErrSweepDisabled):
		BadRequest(w, "Auto-checkout is not enabled for this user", nil)
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, err.Error())

	// Project / task domain errors
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")
	case errors.Is(err, project.ErrAlreadyMember):
		Conflict(w, "User is already a project member")
	case errors.Is(err, project.ErrNotMember):
		NotFound(w, "User is not a project member")
	case errors.Is(err, project.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, task.ErrTaskNotFound):
		NotFound(w, "Task not found")
	case errors.Is(err, task.ErrInvalidStatusChange):
		BadRequest(w, "Invalid task status transition", nil)
	case errors.Is(err, task.ErrAssigneeNotMember):
		BadRequest(w, "Assignee must be a member of the project", nil)
	case errors.Is(err, task.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, activity.ErrForbidden):
		Forbidden(w, err.Error())

	// Role errors
	case errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrOwnerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
