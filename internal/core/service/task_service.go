package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// TaskService implements ownership-gated task CRUD.
type TaskService struct {
	repo       ports.TaskRepository
	activities ports.ActivityRepository
	publisher  ports.ActivityPublisher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTaskService wires the task use cases. publisher may be nil, in which case
// no activity is recorded.
func NewTaskService(repo ports.TaskRepository, activities ports.ActivityRepository, publisher ports.ActivityPublisher, logger zerolog.Logger) *TaskService {
	return &TaskService{
		repo:       repo,
		activities: activities,
		publisher:  publisher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List never fetches-then-checks: the query itself is scoped to the requester.
func (s *TaskService) List(ctx context.Context, requester domain.Identity, filter domain.TaskFilter) ([]*domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status must be one of: pending in-progress completed")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, domain.NewValidationError("priority must be one of: low medium high")
	}
	filter.OwnerID = requester.ID

	tasks, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, requester domain.Identity, input ports.CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}

	status := input.Status
	if status == "" {
		status = domain.TaskPending
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status must be one of: pending in-progress completed")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.NewValidationError("priority must be one of: low medium high")
	}

	now := s.now()
	task := &domain.Task{
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		OwnerID:     requester.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", requester.ID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Str("task_id", created.ID).Str("owner_id", requester.ID).Msg("task created")
	s.publish(created, domain.ActivityCreated, nil)
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, requester domain.Identity, id string) (*domain.Task, error) {
	return s.ownedTask(ctx, requester, id)
}

func (s *TaskService) Update(ctx context.Context, requester domain.Identity, id string, update domain.TaskUpdate) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(&update); err != nil {
		return nil, err
	}
	if update.Empty() {
		return task, nil
	}

	updated, err := s.repo.UpdateByID(ctx, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info().Str("task_id", id).Strs("fields", update.Fields()).Msg("task updated")
	s.publish(updated, domain.ActivityUpdated, update.Fields())
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, requester domain.Identity, id string) error {
	task, err := s.ownedTask(ctx, requester, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info().Str("task_id", id).Msg("task deleted")
	s.publish(task, domain.ActivityDeleted, nil)
	return nil
}

// Activity returns the audit trail of a task the requester owns.
func (s *TaskService) Activity(ctx context.Context, requester domain.Identity, id string) ([]*domain.TaskActivity, error) {
	if _, err := s.ownedTask(ctx, requester, id); err != nil {
		return nil, err
	}

	entries, err := s.activities.ListByTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}

// ownedTask resolves id and applies domain.Authorize before anything else
// happens on the requester's behalf.
func (s *TaskService) ownedTask(ctx context.Context, requester domain.Identity, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		return nil, fmt.Errorf("find task: %w", err)
	}

	if err := domain.Authorize(task, requester.ID); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			s.logger.Warn().Str("task_id", id).Str("requester_id", requester.ID).Msg("ownership check failed")
		}
		return nil, err
	}
	return task, nil
}

func validateUpdate(u *domain.TaskUpdate) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return domain.NewValidationError("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			return domain.NewValidationError("title must be at most %d characters", maxTitleLength)
		}
		u.Title = &title
	}
	if u.Description != nil && utf8.RuneCountInString(*u.Description) > maxDescriptionLength {
		return domain.NewValidationError("description must be at most %d characters", maxDescriptionLength)
	}
	if u.Status != nil && !u.Status.Valid() {
		return domain.NewValidationError("status must be one of: pending in-progress completed")
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return domain.NewValidationError("priority must be one of: low medium high")
	}
	return nil
}

func (s *TaskService) publish(task *domain.Task, action domain.ActivityAction, fields []string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.TaskActivity{
		TaskID:  task.ID,
		OwnerID: task.OwnerID,
		Action:  action,
		Fields:  fields,
		At:      s.now(),
	})
}
