package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-tracker/internal/api/middleware"
	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

type stubTaskService struct {
	listFn     func(ctx context.Context, requester domain.Identity, filter domain.TaskFilter) ([]*domain.Task, error)
	createFn   func(ctx context.Context, requester domain.Identity, input ports.CreateTaskInput) (*domain.Task, error)
	getFn      func(ctx context.Context, requester domain.Identity, id string) (*domain.Task, error)
	updateFn   func(ctx context.Context, requester domain.Identity, id string, update domain.TaskUpdate) (*domain.Task, error)
	deleteFn   func(ctx context.Context, requester domain.Identity, id string) error
	activityFn func(ctx context.Context, requester domain.Identity, id string) ([]*domain.TaskActivity, error)
}

func (s *stubTaskService) List(ctx context.Context, r domain.Identity, f domain.TaskFilter) ([]*domain.Task, error) {
	return s.listFn(ctx, r, f)
}

func (s *stubTaskService) Create(ctx context.Context, r domain.Identity, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, r, in)
}

func (s *stubTaskService) Get(ctx context.Context, r domain.Identity, id string) (*domain.Task, error) {
	return s.getFn(ctx, r, id)
}

func (s *stubTaskService) Update(ctx context.Context, r domain.Identity, id string, u domain.TaskUpdate) (*domain.Task, error) {
	return s.updateFn(ctx, r, id, u)
}

func (s *stubTaskService) Delete(ctx context.Context, r domain.Identity, id string) error {
	return s.deleteFn(ctx, r, id)
}

func (s *stubTaskService) Activity(ctx context.Context, r domain.Identity, id string) ([]*domain.TaskActivity, error) {
	return s.activityFn(ctx, r, id)
}

var ann = domain.Identity{ID: "u1", Name: "Ann", Email: "ann@x.com"}

func authedContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := jsonContext(e, method, target, body)
	c.Set(middleware.IdentityKey, ann)
	return c, rec
}

func sampleTask() *domain.Task {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Task{
		ID:        "t1",
		Title:     "Write report",
		Status:    domain.TaskPending,
		Priority:  domain.PriorityHigh,
		OwnerID:   ann.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{
		createFn: func(_ context.Context, r domain.Identity, in ports.CreateTaskInput) (*domain.Task, error) {
			if r.ID != ann.ID {
				t.Fatalf("requester not forwarded: %+v", r)
			}
			if in.Title != "Write report" || in.Priority != domain.PriorityHigh || in.Status != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleTask(), nil
		},
	})

	c, rec := authedContext(e, http.MethodPost, "/api/tasks",
		`{"title":"Write report","priority":"high","ownerId":"someone-else"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["_id"] != "t1" || resp["ownerId"] != ann.ID || resp["status"] != "pending" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"priority":"high"}`},
		{"bad status", `{"title":"x","status":"done"}`},
		{"bad priority", `{"title":"x","priority":"urgent"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			h := NewTaskHandler(&stubTaskService{})

			c, _ := authedContext(e, http.MethodPost, "/api/tasks", tt.body)
			var ve *domain.ValidationError
			if err := h.Create(c); !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTaskHandler_RequiresIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{})

	c, _ := jsonContext(e, http.MethodGet, "/api/tasks", "")
	var he *echo.HTTPError
	if err := h.List(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTaskHandler_List_FiltersAndOwner(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{
		listFn: func(_ context.Context, r domain.Identity, f domain.TaskFilter) ([]*domain.Task, error) {
			if f.Status != domain.TaskPending || f.Priority != domain.PriorityHigh {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []*domain.Task{sampleTask()}, nil
		},
	})

	c, rec := authedContext(e, http.MethodGet, "/api/tasks?status=pending&priority=high", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	tasks, ok := resp["tasks"].([]any)
	if !ok || len(tasks) != 1 {
		t.Fatalf("expected one task, got %+v", resp)
	}
	owner := tasks[0].(map[string]any)["owner"].(map[string]any)
	if owner["_id"] != ann.ID || owner["name"] != ann.Name || owner["email"] != ann.Email {
		t.Fatalf("unexpected owner: %+v", owner)
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{
		listFn: func(context.Context, domain.Identity, domain.TaskFilter) ([]*domain.Task, error) {
			return nil, nil
		},
	})

	c, rec := authedContext(e, http.MethodGet, "/api/tasks", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "{\"tasks\":[]}\n" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestTaskHandler_List_BadFilter(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{})

	c, _ := authedContext(e, http.MethodGet, "/api/tasks?status=done", "")
	var ve *domain.ValidationError
	if err := h.List(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskHandler_Get_PropagatesOwnershipErrors(t *testing.T) {
	for _, want := range []error{domain.ErrTaskNotFound, domain.ErrForbidden} {
		t.Run(want.Error(), func(t *testing.T) {
			e := newTestEcho()
			h := NewTaskHandler(&stubTaskService{
				getFn: func(context.Context, domain.Identity, string) (*domain.Task, error) {
					return nil, want
				},
			})

			c, _ := authedContext(e, http.MethodGet, "/api/tasks/t1", "")
			c.SetParamNames("id")
			c.SetParamValues("t1")
			if err := h.Get(c); !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
		})
	}
}

func TestTaskHandler_Update_PartialFields(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{
		updateFn: func(_ context.Context, _ domain.Identity, id string, u domain.TaskUpdate) (*domain.Task, error) {
			if id != "t1" {
				t.Fatalf("unexpected id %q", id)
			}
			if u.Status == nil || *u.Status != domain.TaskCompleted {
				t.Fatalf("status not mapped: %+v", u)
			}
			if u.Title != nil || u.Priority != nil || u.Description != nil {
				t.Fatalf("untouched fields must stay nil: %+v", u)
			}
			task := sampleTask()
			task.Status = domain.TaskCompleted
			return task, nil
		},
	})

	c, rec := authedContext(e, http.MethodPut, "/api/tasks/t1", `{"status":"completed"}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["status"] != "completed" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Update_OwnershipBeforeFieldRules(t *testing.T) {
	e := newTestEcho()
	called := false
	h := NewTaskHandler(&stubTaskService{
		updateFn: func(_ context.Context, _ domain.Identity, _ string, u domain.TaskUpdate) (*domain.Task, error) {
			called = true
			if u.Status == nil || *u.Status != "bogus" {
				t.Fatalf("body must reach the service untouched: %+v", u)
			}
			return nil, domain.ErrForbidden
		},
	})

	c, _ := authedContext(e, http.MethodPut, "/api/tasks/t1", `{"status":"bogus","title":""}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if !called {
		t.Fatalf("service was not called")
	}
}

func TestTaskHandler_Update_DueDate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantClear bool
		wantSet   bool
	}{
		{"absent", `{"title":"x"}`, false, false},
		{"explicit null clears", `{"dueDate":null}`, true, false},
		{"value sets", `{"dueDate":"2026-05-01T10:00:00Z"}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			h := NewTaskHandler(&stubTaskService{
				updateFn: func(_ context.Context, _ domain.Identity, _ string, u domain.TaskUpdate) (*domain.Task, error) {
					if u.ClearDueDate != tt.wantClear || (u.DueDate != nil) != tt.wantSet {
						t.Fatalf("unexpected due date mapping: clear=%v due=%v", u.ClearDueDate, u.DueDate)
					}
					return sampleTask(), nil
				},
			})

			c, _ := authedContext(e, http.MethodPut, "/api/tasks/t1", tt.body)
			c.SetParamNames("id")
			c.SetParamValues("t1")
			if err := h.Update(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
		})
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{
		deleteFn: func(_ context.Context, _ domain.Identity, id string) error {
			if id != "t1" {
				t.Fatalf("unexpected id %q", id)
			}
			return nil
		},
	})

	c, rec := authedContext(e, http.MethodDelete, "/api/tasks/t1", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["message"] != "task deleted" || resp["_id"] != "t1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Activity(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := newTestEcho()
	h := NewTaskHandler(&stubTaskService{
		activityFn: func(context.Context, domain.Identity, string) ([]*domain.TaskActivity, error) {
			return []*domain.TaskActivity{
				{ID: "a1", TaskID: "t1", Action: domain.ActivityCreated, At: at},
				{ID: "a2", TaskID: "t1", Action: domain.ActivityUpdated, Fields: []string{"status"}, At: at},
			}, nil
		},
	})

	c, rec := authedContext(e, http.MethodGet, "/api/tasks/t1/activity", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")
	if err := h.Activity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	entries := resp["activity"].([]any)
	if resp["taskId"] != "t1" || len(entries) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if entries[1].(map[string]any)["action"] != "updated" {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
}
