package dto

import (
	"time"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/utils"
)

// Response is the envelope of every task endpoint.
type Response struct {
	Success    bool                      `json:"success"`
	Message    string                    `json:"message"`
	Data       interface{}               `json:"data"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// Success wraps data in a successful envelope.
func Success(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// TaskUserDTO is the assignee embedded in a task
type TaskUserDTO struct {
	ID    uint64          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64            `json:"id"`
	Title             string            `json:"title"`
	Description       *string           `json:"description"`
	Status            models.TaskStatus `json:"status"`
	AssignedTo        uint64            `json:"assigned_to"`
	Deadline          *time.Time        `json:"deadline"`
	IsOverdue         bool              `json:"is_overdue"`
	DaysUntilDeadline *int              `json:"days_until_deadline"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	User              *TaskUserDTO      `json:"user"`
}

// ToTaskDTO converts a Task model to TaskDTO. now anchors the computed
// deadline attributes.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	dto := TaskDTO{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Status:            task.Status,
		AssignedTo:        task.AssignedTo,
		Deadline:          task.Deadline,
		IsOverdue:         task.IsOverdue(now),
		DaysUntilDeadline: task.DaysUntilDeadline(now),
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.User.ID != 0 {
		dto.User = &TaskUserDTO{
			ID:    task.User.ID,
			Name:  task.User.Name,
			Email: task.User.Email,
			Role:  task.User.Role,
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks, never returning nil.
func ToTaskDTOs(tasks []models.Task, now time.Time) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}
	return items
}
