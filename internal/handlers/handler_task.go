package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/splittab/split_tab_app/internal/apperrors"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
)

// taskHandler handles HTTP requests related to tasks within a group.
type taskHandler struct {
	taskService portssvc.TaskSvcFacade
}

// newTaskHandler creates a new taskHandler.
func newTaskHandler(ts portssvc.TaskSvcFacade) *taskHandler {
	return &taskHandler{
		taskService: ts,
	}
}

// registerTaskRoutes registers task routes nested under a specific group.
func registerTaskRoutes(rg *gin.RouterGroup, taskService portssvc.TaskSvcFacade) {
	h := newTaskHandler(taskService)

	tasks := rg.Group("/tasks")
	{
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/:task_id", h.getTask)
		tasks.PUT("/:task_id/status", h.updateTaskStatus)
	}
}

// registerAssignedTaskRoutes registers the cross-group task listing for the
// authenticated user.
func registerAssignedTaskRoutes(rg *gin.RouterGroup, taskService portssvc.TaskSvcFacade) {
	h := newTaskHandler(taskService)
	rg.GET("/tasks", h.listAssignedTasks)
}

// createTask godoc
// @Summary Create a task
// @Description Assigns a task to an active member of the group.
// @Tags tasks
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   task body dto.CreateTaskRequest true "Task details"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id}/tasks [post]
func (h *taskHandler) createTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTask", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	assignerUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("assigner_user_id", assignerUserID))

	task, err := h.taskService.CreateTask(c.Request.Context(), groupID, req, assignerUserID)
	if err != nil {
		h.respondTaskError(c, logger, err, "Failed to create task")
		return
	}

	logger.Info("Task created successfully", slog.String("task_id", task.TaskID))
	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

// listTasks godoc
// @Summary List tasks in a group
// @Description Retrieves a group's tasks, optionally filtered by status.
// @Tags tasks
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   status query string false "Task status filter" Enums(PENDING, FINISHED, DECLINED, CANCELLED)
// @Success 200 {object} dto.ListTasksResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 403 {object} map[string]string "Not a group member"
// @Security BearerAuth
// @Router /groups/{group_id}/tasks [get]
func (h *taskHandler) listTasks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var params dto.ListTasksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tasks, err := h.taskService.ListGroupTasks(c.Request.Context(), groupID, userID, params)
	if err != nil {
		h.respondTaskError(c, logger, err, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToListTasksResponse(tasks))
}

// listAssignedTasks godoc
// @Summary List my tasks
// @Description Retrieves the tasks assigned to the authenticated user across all groups.
// @Tags tasks
// @Produce  json
// @Param   status query string false "Task status filter" Enums(PENDING, FINISHED, DECLINED, CANCELLED)
// @Success 200 {object} dto.ListTasksResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /tasks [get]
func (h *taskHandler) listAssignedTasks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTasksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tasks, err := h.taskService.ListAssignedTasks(c.Request.Context(), userID, params)
	if err != nil {
		h.respondTaskError(c, logger, err, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToListTasksResponse(tasks))
}

// getTask godoc
// @Summary Get a task
// @Description Retrieves a single task's details.
// @Tags tasks
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   task_id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /groups/{group_id}/tasks/{task_id} [get]
func (h *taskHandler) getTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	taskID := c.Param("task_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	task, err := h.taskService.GetTaskByID(c.Request.Context(), groupID, taskID, userID)
	if err != nil {
		h.respondTaskError(c, logger, err, "Failed to get task")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// updateTaskStatus godoc
// @Summary Update a task's status
// @Description Transitions a pending task. FINISHED and DECLINED are the assignee's moves; CANCELLED is the assigner's.
// @Tags tasks
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   task_id path string true "Task ID"
// @Param   status body dto.UpdateTaskStatusRequest true "Target status"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not the assignee or assigner"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 409 {object} map[string]string "Task no longer pending"
// @Security BearerAuth
// @Router /groups/{group_id}/tasks/{task_id}/status [put]
func (h *taskHandler) updateTaskStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	taskID := c.Param("task_id")

	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTaskStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("task_id", taskID))

	task, err := h.taskService.UpdateTaskStatus(c.Request.Context(), groupID, taskID, req.Status, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.respondTaskError(c, logger, err, "Failed to update task status")
		return
	}

	logger.Info("Task status updated successfully", slog.String("status", string(task.Status)))
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// respondTaskError maps the common task service errors to HTTP statuses.
func (h *taskHandler) respondTaskError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on task operation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
