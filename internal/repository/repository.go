package repository

import (
	"time"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with its assignee loaded
	FindByID(id uint64) (*models.Task, error)

	// Update saves every column of the task
	Update(task *models.Task) error

	// Delete removes a task
	Delete(id uint64) error

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListAll returns every task, newest first
	ListAll() ([]models.Task, error)

	// ListAssignedTo returns the tasks assigned to a user
	ListAssignedTo(userID uint64) ([]models.Task, error)

	// ListDueWithin returns unfinished tasks whose deadline falls in [from, to]
	ListDueWithin(from, to time.Time) ([]models.Task, error)

	// ListOverdue returns unfinished tasks whose deadline is before now
	ListOverdue(now time.Time) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedTo *uint64
	Status     *models.TaskStatus
	// Pagination is nil for an unpaginated listing
	Pagination *utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by e-mail address
	FindByEmail(email string) (*models.User, error)

	// List returns every user ordered by ID
	List() ([]models.User, error)

	// Update saves every column of the user
	Update(user *models.User) error

	// Delete removes a user and the tasks assigned to them
	Delete(id uint64) error

	// Exists reports whether a user with the ID exists
	Exists(id uint64) (bool, error)
}
