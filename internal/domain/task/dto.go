package task

import (
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/validator"
)

type CreateTaskRequest struct {
	ProjectID   string  `json:"-"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"` // YYYY-MM-DD
}

func (r *CreateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 200 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 200 characters",
		})
	}

	if r.Description != nil && len(*r.Description) > 5000 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 5000 characters",
		})
	}

	if r.DueDate != nil && *r.DueDate != "" {
		if _, valid := validator.IsValidDate(*r.DueDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "due_date",
				Message: "due_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateTaskRequest struct {
	ID          string  `json:"-"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"` // YYYY-MM-DD
}

func (r *UpdateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Title != nil {
		if validator.IsEmpty(*r.Title) {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title must not be empty",
			})
		} else if len(*r.Title) > 200 {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title must not exceed 200 characters",
			})
		}
	}

	if r.Status != nil {
		validStatuses := []string{string(StatusTodo), string(StatusInProgress), string(StatusDone)}
		if !validator.IsInSlice(*r.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: todo, in_progress, done",
			})
		}
	}

	if r.DueDate != nil && *r.DueDate != "" {
		if _, valid := validator.IsValidDate(*r.DueDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "due_date",
				Message: "due_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TaskResponse struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Status       string  `json:"status"`
	CreatedBy    string  `json:"created_by"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	AssigneeName *string `json:"assignee_name,omitempty"`
	DueDate      *string `json:"due_date,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
