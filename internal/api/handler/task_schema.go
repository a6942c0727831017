package handler

import (
	"encoding/json"
	"time"
)

// --- Request types ---

// createTaskRequest deliberately has no owner field: ownership is server-assigned.
type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
}

// updateTaskRequest is bound only; its rules are checked after the ownership
// check. An explicit "dueDate": null clears the due date.
type updateTaskRequest struct {
	Title       *string      `json:"title"       minLength:"1" maxLength:"200"`
	Description *string      `json:"description" maxLength:"2000"`
	Status      *string      `json:"status"      enums:"pending,in-progress,completed"`
	Priority    *string      `json:"priority"    enums:"low,medium,high"`
	DueDate     optionalTime `json:"dueDate"     swaggertype:"string" format:"date-time" extensions:"x-nullable"`
}

// optionalTime tells an absent field apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type listTasksQuery struct {
	Status   string `query:"status"   json:"status"   validate:"omitempty,oneof=pending in-progress completed"`
	Priority string `query:"priority" json:"priority" validate:"omitempty,oneof=low medium high"`
}

// --- Response types ---

type taskResponse struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// taskListItem adds the owner's public fields; only list responses carry it.
type taskListItem struct {
	taskResponse
	Owner identityResponse `json:"owner"`
}

type listTasksResponse struct {
	Tasks []taskListItem `json:"tasks"`
}

type deleteTaskResponse struct {
	Message string `json:"message"`
	ID      string `json:"_id"`
}

type activityItemResponse struct {
	ID     string    `json:"_id"`
	Action string    `json:"action"`
	Fields []string  `json:"fields,omitempty"`
	At     time.Time `json:"at"`
}

type activityResponse struct {
	TaskID   string                 `json:"taskId"`
	Activity []activityItemResponse `json:"activity"`
}
