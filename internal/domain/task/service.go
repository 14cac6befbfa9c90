package task

import "context"

// TaskService defines business logic for tasks within projects.
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	GetTask(ctx context.Context, id string) (TaskResponse, error)
	ListTasks(ctx context.Context, projectID string) ([]TaskResponse, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
}
