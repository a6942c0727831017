// Package memory provides mutex-guarded in-process repositories with the same
// error contracts as the Mongo ones. Ids are ObjectID hex strings so clients
// cannot tell the backends apart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// Store holds every collection behind one lock.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*domain.Account
	emails     map[string]string
	tasks      map[string]*domain.Task
	activities []*domain.TaskActivity
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		emails:   make(map[string]string),
		tasks:    make(map[string]*domain.Task),
	}
}

// Ping always succeeds; it satisfies ports.Pinger for readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

// Activities returns the activity repository view of the store.
func (s *Store) Activities() *ActivityRepository { return &ActivityRepository{s: s} }

type AccountRepository struct{ s *Store }

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.emails[account.Email]; exists {
		return nil, domain.ErrAccountExists
	}
	clone := *account
	clone.ID = primitive.NewObjectID().Hex()
	r.s.accounts[clone.ID] = &clone
	r.s.emails[clone.Email] = clone.ID

	out := clone
	return &out, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *r.s.accounts[id]
	return &clone, nil
}

type TaskRepository struct{ s *Store }

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := copyTask(task)
	clone.ID = primitive.NewObjectID().Hex()
	r.s.tasks[clone.ID] = clone
	return copyTask(clone), nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return copyTask(t), nil
}

func (r *TaskRepository) Find(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.s.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		out = append(out, copyTask(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TaskRepository) UpdateByID(_ context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	update.Apply(t, nowUTC())
	return copyTask(t), nil
}

func (r *TaskRepository) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

type ActivityRepository struct{ s *Store }

func (r *ActivityRepository) Insert(_ context.Context, activity *domain.TaskActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := *activity
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	clone.Fields = append([]string(nil), activity.Fields...)
	r.s.activities = append(r.s.activities, &clone)
	return nil
}

func (r *ActivityRepository) ListByTask(_ context.Context, taskID string) ([]*domain.TaskActivity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.TaskActivity, 0)
	for _, a := range r.s.activities {
		if a.TaskID == taskID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func copyTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	return &clone
}

func nowUTC() time.Time { return time.Now().UTC() }
