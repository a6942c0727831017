package ports

import (
	"context"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
// Every single-record method returns domain.ErrTaskNotFound when the id does
// not resolve, including ids the backing store cannot parse.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// Find returns the tasks matching filter, newest first. filter.OwnerID is always set.
	Find(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	UpdateByID(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error)
	DeleteByID(ctx context.Context, id string) error
}
