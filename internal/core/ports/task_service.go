package ports

import (
	"context"
	"time"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// CreateTaskInput carries the client-supplied fields of a new task.
// The owner always comes from the authenticated identity, never from here.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// TaskService defines the ownership-gated task use cases.
type TaskService interface {
	List(ctx context.Context, requester domain.Identity, filter domain.TaskFilter) ([]*domain.Task, error)
	Create(ctx context.Context, requester domain.Identity, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, requester domain.Identity, id string) (*domain.Task, error)
	Update(ctx context.Context, requester domain.Identity, id string, update domain.TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, requester domain.Identity, id string) error
	Activity(ctx context.Context, requester domain.Identity, id string) ([]*domain.TaskActivity, error)
}
