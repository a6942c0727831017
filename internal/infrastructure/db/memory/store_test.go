package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

func TestAccountRepository_UniqueEmail(t *testing.T) {
	repo := NewStore().Accounts()
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Account{Name: "Ann", Email: "ann@x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := repo.Create(ctx, &domain.Account{Name: "Other", Email: "ann@x.com"}); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil || byID.Email != "ann@x.com" {
		t.Fatalf("FindByID: %+v %v", byID, err)
	}
	if _, err := repo.FindByEmail(ctx, "nobody@x.com"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTaskRepository_CRUD(t *testing.T) {
	store := NewStore()
	repo := store.Tasks()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older, _ := repo.Create(ctx, &domain.Task{Title: "older", OwnerID: "ann", Status: domain.TaskPending, CreatedAt: base})
	newer, _ := repo.Create(ctx, &domain.Task{Title: "newer", OwnerID: "ann", Status: domain.TaskCompleted, CreatedAt: base.Add(time.Minute)})
	_, _ = repo.Create(ctx, &domain.Task{Title: "bob's", OwnerID: "bob", CreatedAt: base})

	list, err := repo.Find(ctx, domain.TaskFilter{OwnerID: "ann"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected newest first for ann, got %+v", list)
	}

	completed, _ := repo.Find(ctx, domain.TaskFilter{OwnerID: "ann", Status: domain.TaskCompleted})
	if len(completed) != 1 || completed[0].ID != newer.ID {
		t.Fatalf("unexpected status filter result: %+v", completed)
	}

	title := "renamed"
	updated, err := repo.UpdateByID(ctx, older.ID, domain.TaskUpdate{Title: &title})
	if err != nil || updated.Title != "renamed" || updated.OwnerID != "ann" {
		t.Fatalf("UpdateByID: %+v %v", updated, err)
	}

	if err := repo.DeleteByID(ctx, older.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if err := repo.DeleteByID(ctx, older.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := repo.UpdateByID(ctx, older.ID, domain.TaskUpdate{Title: &title}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRepository_ReturnsCopies(t *testing.T) {
	repo := NewStore().Tasks()
	ctx := context.Background()

	due := time.Now().UTC()
	created, _ := repo.Create(ctx, &domain.Task{Title: "orig", OwnerID: "ann", DueDate: &due})
	created.Title = "mutated"
	*created.DueDate = due.Add(time.Hour)

	fetched, _ := repo.FindByID(ctx, created.ID)
	if fetched.Title != "orig" || !fetched.DueDate.Equal(due) {
		t.Fatalf("store state leaked through returned pointer: %+v", fetched)
	}
}

func TestActivityRepository_Chronological(t *testing.T) {
	repo := NewStore().Activities()
	ctx := context.Background()
	at := time.Now().UTC()

	_ = repo.Insert(ctx, &domain.TaskActivity{TaskID: "t1", Action: domain.ActivityUpdated, At: at.Add(time.Second)})
	_ = repo.Insert(ctx, &domain.TaskActivity{TaskID: "t1", Action: domain.ActivityCreated, At: at})
	_ = repo.Insert(ctx, &domain.TaskActivity{TaskID: "t2", Action: domain.ActivityCreated, At: at})

	entries, _ := repo.ListByTask(ctx, "t1")
	if len(entries) != 2 || entries[0].Action != domain.ActivityCreated || entries[0].ID == "" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	repo := NewStore().Tasks()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := repo.Create(ctx, &domain.Task{Title: "t", OwnerID: "ann"})
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			_, _ = repo.Find(ctx, domain.TaskFilter{OwnerID: "ann"})
			_ = repo.DeleteByID(ctx, task.ID)
		}()
	}
	wg.Wait()

	left, _ := repo.Find(ctx, domain.TaskFilter{OwnerID: "ann"})
	if len(left) != 0 {
		t.Fatalf("expected empty store, got %d", len(left))
	}
}

func TestTaskRepository_ClearDueDate(t *testing.T) {
	repo := NewStore().Tasks()
	ctx := context.Background()

	due := time.Now().UTC()
	created, _ := repo.Create(ctx, &domain.Task{Title: "dated", OwnerID: "ann", DueDate: &due})

	updated, err := repo.UpdateByID(ctx, created.ID, domain.TaskUpdate{ClearDueDate: true})
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("expected due date cleared, got %v", updated.DueDate)
	}
	if fetched, _ := repo.FindByID(ctx, created.ID); fetched.DueDate != nil {
		t.Fatalf("cleared due date not persisted: %v", fetched.DueDate)
	}
}
