package handler

import (
	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createTaskRequest) ports.CreateTaskInput {
	in := ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		in.DueDate = &due
	}
	return in
}

func toTaskUpdate(req updateTaskRequest) domain.TaskUpdate {
	u := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		u.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		u.Priority = &p
	}
	if req.DueDate.Set {
		if req.DueDate.Value == nil {
			u.ClearDueDate = true
		} else {
			due := req.DueDate.Value.UTC()
			u.DueDate = &due
		}
	}
	return u
}

// --- Service result → HTTP response ---

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{ID: s.ID, Name: s.Name, Email: s.Email, Token: s.Token}
}

func toIdentityResponse(i domain.Identity) identityResponse {
	return identityResponse{ID: i.ID, Name: i.Name, Email: i.Email}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

// toListResponse enriches each item with the owner; the list is scoped to the
// requester, so the owner is always the requester's identity.
func toListResponse(tasks []*domain.Task, owner domain.Identity) listTasksResponse {
	items := make([]taskListItem, len(tasks))
	for i, t := range tasks {
		items[i] = taskListItem{taskResponse: toTaskResponse(t), Owner: toIdentityResponse(owner)}
	}
	return listTasksResponse{Tasks: items}
}

func toActivityResponse(taskID string, entries []*domain.TaskActivity) activityResponse {
	items := make([]activityItemResponse, len(entries))
	for i, e := range entries {
		items[i] = activityItemResponse{
			ID:     e.ID,
			Action: string(e.Action),
			Fields: e.Fields,
			At:     e.At.UTC(),
		}
	}
	return activityResponse{TaskID: taskID, Activity: items}
}
