package repository

import (
	"time"

	"github.com/teamtasks/task-management-api/internal/database"
	"github.com/teamtasks/task-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit("User").Create(task).Error
}

// FindByID finds a task by ID with its assignee loaded
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Preload("User").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update saves every column of the task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("User").Save(task).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})

	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	var tasks []models.Task
	if err := listQuery.Preload("User").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListAll returns every task, newest first
func (r *GormTaskRepository) ListAll() ([]models.Task, error) {
	tasks, _, err := r.List(TaskFilter{})
	return tasks, err
}

// ListAssignedTo returns the tasks assigned to a user
func (r *GormTaskRepository) ListAssignedTo(userID uint64) ([]models.Task, error) {
	tasks, _, err := r.List(TaskFilter{AssignedTo: &userID})
	return tasks, err
}

// ListDueWithin returns unfinished tasks whose deadline falls in [from, to]
func (r *GormTaskRepository) ListDueWithin(from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("User").
		Scopes(database.WithDeadline, database.DeadlineBetween(from, to), database.Unfinished).
		Order("deadline ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListOverdue returns unfinished tasks whose deadline is before now
func (r *GormTaskRepository) ListOverdue(now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("User").
		Scopes(database.WithDeadline, database.DeadlineBefore(now), database.Unfinished).
		Order("deadline ASC").
		Find(&tasks).Error
	return tasks, err
}
