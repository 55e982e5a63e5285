package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/middleware"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/repositories"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/services"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/utils"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/validation"
)

// maxBodyBytes bounds request bodies read by the task endpoints.
const maxBodyBytes = 1 << 20

type TaskHandler struct {
	taskService services.TaskService
	clock       models.Clock
	errors      ErrorResponder
}

func NewTaskHandler(taskService services.TaskService, clock models.Clock, responder ErrorResponder) *TaskHandler {
	return &TaskHandler{taskService: taskService, clock: clock, errors: responder}
}

// RegisterRoutes mounts the task endpoints. The group must already run the
// auth middleware.
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.GET("", h.GetTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/statistics", h.GetStatistics)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.PATCH("/:id", h.UpdateTask)
	tasks.PATCH("/:id/status", h.UpdateTaskStatus)
	tasks.DELETE("/:id", h.DeleteTask)
}

// GET /api/tasks
func (h *TaskHandler) GetTasks(c *gin.Context) {
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.RespondUnauthenticated(c)
		return
	}

	q := repositories.TaskQuery{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      queryInt(c, "page"),
		PerPage:   queryInt(c, "per_page"),
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), ownerID, q)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to retrieve tasks")
		return
	}
	respondSuccess(c, http.StatusOK, "Tasks retrieved successfully", newTaskPageResponse(page, h.clock))
}

// POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.RespondUnauthenticated(c)
		return
	}

	body, err := readBody(c)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to create task")
		return
	}
	in, err := validation.ValidateCreate(body, h.clock.Today(), h.clock.Location)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to create task")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), ownerID, in)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to create task")
		return
	}
	respondSuccess(c, http.StatusCreated, "Task created successfully", newTaskResponse(task, h.clock))
}

// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	ownerID, id, ok := h.scope(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), ownerID, id)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to retrieve task")
		return
	}
	respondSuccess(c, http.StatusOK, "Task retrieved successfully", newTaskResponse(task, h.clock))
}

// PUT/PATCH /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ownerID, id, ok := h.scope(c)
	if !ok {
		return
	}

	body, err := readBody(c)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to update task")
		return
	}
	in, err := validation.ValidateUpdate(body, h.clock.Today(), h.clock.Location)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to update task")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), ownerID, id, in)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to update task")
		return
	}
	respondSuccess(c, http.StatusOK, "Task updated successfully", newTaskResponse(task, h.clock))
}

// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	ownerID, id, ok := h.scope(c)
	if !ok {
		return
	}

	body, err := readBody(c)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to update task status")
		return
	}
	status, err := validation.ValidateStatus(body)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to update task status")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request.Context(), ownerID, id, status)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to update task status")
		return
	}
	respondSuccess(c, http.StatusOK, "Task status updated successfully", newTaskResponse(task, h.clock))
}

// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), ownerID, id); err != nil {
		h.errors.handleTaskError(c, err, "Failed to delete task")
		return
	}
	respondSuccess(c, http.StatusOK, "Task deleted successfully", nil)
}

// GET /api/tasks/statistics
func (h *TaskHandler) GetStatistics(c *gin.Context) {
	ownerID, ok := middleware.CurrentUserID(c)
	if !ok {
		middleware.RespondUnauthenticated(c)
		return
	}

	stats, err := h.taskService.GetStatistics(c.Request.Context(), ownerID)
	if err != nil {
		h.errors.handleTaskError(c, err, "Failed to retrieve statistics")
		return
	}
	respondSuccess(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

// scope resolves the caller and the task id. A malformed id is answered
// like a missing task.
func (h *TaskHandler) scope(c *gin.Context) (ownerID, id uuid.UUID, ok bool) {
	ownerID, ok = middleware.CurrentUserID(c)
	if !ok {
		middleware.RespondUnauthenticated(c)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		h.errors.handleTaskError(c, repositories.ErrTaskNotFound, "")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, id, true
}

// readBody reports unreadable or oversized bodies as a validation failure.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, validation.BodyError("The request body could not be read.")
	}
	return body, nil
}

// queryInt returns 0 for absent or unparsable values; TaskQuery treats 0 as
// "use the default".
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
