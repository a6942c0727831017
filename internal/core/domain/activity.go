package domain

import "time"

// ActivityAction names the mutation recorded in a task's activity log.
type ActivityAction string

const (
	ActivityCreated ActivityAction = "created"
	ActivityUpdated ActivityAction = "updated"
	ActivityDeleted ActivityAction = "deleted"
)

// TaskActivity is one entry of a task's audit trail.
type TaskActivity struct {
	ID      string         `json:"_id"`
	TaskID  string         `json:"taskId"`
	OwnerID string         `json:"ownerId"`
	Action  ActivityAction `json:"action"`
	Fields  []string       `json:"fields,omitempty"`
	At      time.Time      `json:"at"`
}
