package domain

import "time"

// TaskStatus represents where a task is in its lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single owner-scoped work item. OwnerID is fixed at creation.
type Task struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	OwnerID     string       `json:"ownerId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskUpdate carries a partial mutation. Nil fields are left untouched;
// ClearDueDate removes the due date and wins over DueDate.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	Priority     *TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// Fields lists the names of the fields the update touches, in a stable order.
func (u TaskUpdate) Fields() []string {
	var fields []string
	if u.Title != nil {
		fields = append(fields, "title")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if u.Status != nil {
		fields = append(fields, "status")
	}
	if u.Priority != nil {
		fields = append(fields, "priority")
	}
	if u.DueDate != nil || u.ClearDueDate {
		fields = append(fields, "dueDate")
	}
	return fields
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return len(u.Fields()) == 0
}

// Apply mutates t in place. OwnerID and CreatedAt are never touched.
func (u TaskUpdate) Apply(t *Task, now time.Time) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	switch {
	case u.ClearDueDate:
		t.DueDate = nil
	case u.DueDate != nil:
		due := *u.DueDate
		t.DueDate = &due
	}
	t.UpdatedAt = now
}

// TaskFilter narrows an owner-scoped listing. OwnerID is mandatory.
type TaskFilter struct {
	OwnerID  string
	Status   TaskStatus
	Priority TaskPriority
}

// Authorize is the single ownership predicate shared by every single-task
// operation: a nil task is not found, a task owned by someone else is forbidden.
func Authorize(task *Task, requesterID string) error {
	if task == nil {
		return ErrTaskNotFound
	}
	if requesterID == "" || task.OwnerID != requesterID {
		return ErrForbidden
	}
	return nil
}
