package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-tracker/internal/api/metrics"
	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List returns the caller's tasks, newest first.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"    Enums(pending, in-progress, completed)
// @Param        priority  query     string  false  "Filter by priority"  Enums(low, medium, high)
// @Success      200       {object}  listTasksResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var q listTasksQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("list", "invalid").Inc()
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), identity, domain.TaskFilter{
		Status:   domain.TaskStatus(q.Status),
		Priority: domain.TaskPriority(q.Priority),
	})
	metrics.TaskOperationsTotal.WithLabelValues("list", taskResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(tasks, identity))
}

// Create adds a task owned by the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("create", "invalid").Inc()
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), identity, toCreateInput(req))
	metrics.TaskOperationsTotal.WithLabelValues("create", taskResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Get returns a single task owned by the caller.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), identity, c.Param("id"))
	metrics.TaskOperationsTotal.WithLabelValues("get", taskResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update applies a partial update to a task owned by the caller.
//
// @Summary      Update a task
// @Description  Only the fields present are changed. "dueDate": null clears the due date.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	// Field rules run in the service, after the ownership check.
	var req updateTaskRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	task, err := h.taskService.Update(c.Request().Context(), identity, c.Param("id"), toTaskUpdate(req))
	metrics.TaskOperationsTotal.WithLabelValues("update", taskResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete removes a task owned by the caller.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  deleteTaskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	err = h.taskService.Delete(c.Request().Context(), identity, id)
	metrics.TaskOperationsTotal.WithLabelValues("delete", taskResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deleteTaskResponse{Message: "task deleted", ID: id})
}

// Activity returns the audit trail of a task owned by the caller.
//
// @Summary      Task activity
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  activityResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/tasks/{id}/activity [get]
func (h *TaskHandler) Activity(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	entries, err := h.taskService.Activity(c.Request().Context(), identity, id)
	metrics.TaskOperationsTotal.WithLabelValues("activity", taskResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toActivityResponse(id, entries))
}

func taskResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrTaskNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
