package task

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ValidTransition reports whether a task may move from one status to another.
// Any forward or backward move between adjacent states is allowed; done can
// be reopened to in_progress.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusTodo:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusTodo || to == StatusDone
	case StatusDone:
		return to == StatusInProgress
	}
	return false
}

type Task struct {
	ID          string
	WorkspaceID string
	ProjectID   string
	CreatedBy   string
	AssigneeID  *string
	Title       string
	Description *string
	Status      Status
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO / Join
	AssigneeName *string
}
