package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/utils"
)

// Paginate applies offset and limit to a query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// WithDeadline keeps tasks that have a deadline.
func WithDeadline(db *gorm.DB) *gorm.DB {
	return db.Where("deadline IS NOT NULL")
}

// DeadlineBetween keeps tasks due in [from, to], both ends inclusive.
func DeadlineBetween(from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deadline >= ? AND deadline <= ?", from, to)
	}
}

// DeadlineBefore keeps tasks whose deadline has passed at now.
func DeadlineBefore(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deadline < ?", now)
	}
}

// Unfinished drops completed tasks.
func Unfinished(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", models.TaskStatusCompleted)
}
