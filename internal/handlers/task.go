package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamtasks/task-management-api/internal/dto"
	apierrors "github.com/teamtasks/task-management-api/internal/errors"
	"github.com/teamtasks/task-management-api/internal/middleware"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/services"
	"github.com/teamtasks/task-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		now:         time.Now,
	}
}

// ListTasks returns every task for admins and the assigned tasks otherwise.
// page and limit switch on pagination.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	page := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(user, page)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.Success("Tasks retrieved successfully", dto.ToTaskDTOs(tasks, h.now()))
	if page != nil {
		resp.Pagination = utils.NewPaginationResponse(*page, total)
	}
	c.JSON(http.StatusOK, resp)
}

// MyTasks returns the tasks assigned to the current user
func (h *TaskHandler) MyTasks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.MyTasks(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success("Your assigned tasks retrieved successfully", dto.ToTaskDTOs(tasks, h.now())))
}

// GetTask returns a specific task by ID
// Task is already loaded and authorized by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.Success("Task retrieved successfully", dto.ToTaskDTO(task, h.now())))
}

// CreateTask creates a new task and notifies the assignee
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input, ok := readTaskInput(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Success("Task created and assigned successfully", dto.ToTaskDTO(*task, h.now())))
}

// UpdateTask updates an existing task (PUT and PATCH)
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, task, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	input, ok := readTaskInput(c)
	if !ok {
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), user, task, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success("Task updated successfully", dto.ToTaskDTO(*updated, h.now())))
}

// UpdateTaskStatus changes only the status of a task
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	user, task, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	input, ok := readTaskInput(c)
	if !ok {
		return
	}

	updated, err := h.taskService.UpdateTaskStatus(c.Request.Context(), user, task, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success("Task status updated successfully", dto.ToTaskDTO(*updated, h.now())))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, task, ok := h.actorAndTask(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(user, task); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success("Task deleted successfully", nil))
}

// GenerateTasks drafts tasks from free text with the AI service
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), user, services.GenerateTasksInput{
		Text: req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Success("Task drafts generated successfully", drafts))
}

// actorAndTask reads the current user and the ID of the task loaded by
// RequireTaskAccess.
func (h *TaskHandler) actorAndTask(c *gin.Context) (user models.User, taskID uint64, ok bool) {
	user, ok = middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return user, 0, false
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return user, 0, false
	}

	return user, task.ID, true
}

func readTaskInput(c *gin.Context) (services.TaskInput, bool) {
	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return services.TaskInput{}, false
	}

	input, err := services.ParseTaskInput(body)
	if err != nil {
		respondError(c, err)
		return services.TaskInput{}, false
	}
	return input, true
}
