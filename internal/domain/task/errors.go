package task

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidStatusChange = errors.New("invalid task status transition")
	ErrAssigneeNotMember   = errors.New("assignee must be a member of the project")
	ErrForbidden           = errors.New("not allowed to access this task")
)
