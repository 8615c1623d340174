package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// ParseTaskStatus converts a raw string into a TaskStatus, rejecting
// anything outside the known set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid task status %q", s)
	}
	return status, nil
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown statuses at the boundary.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := ParseTaskStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Deadline    *time.Time `json:"deadline"`
	AssignedTo  uint64     `gorm:"not null;index" json:"assigned_to"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:AssignedTo;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// IsOverdue reports whether the deadline has passed on an unfinished task.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && t.Status != TaskStatusCompleted
}

// DaysUntilDeadline returns whole days from now until the deadline,
// negative once it has passed. Nil when the task has no deadline.
func (t Task) DaysUntilDeadline(now time.Time) *int {
	if t.Deadline == nil {
		return nil
	}
	days := int(t.Deadline.Sub(now).Hours() / 24)
	return &days
}
