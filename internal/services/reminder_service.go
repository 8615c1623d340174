package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/repository"
)

var ErrNegativeReminderDays = errors.New("reminder days must not be negative")

// ReminderSummary counts the outcome of one reminder run.
type ReminderSummary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// ReminderService sends task_reminders for upcoming and overdue tasks.
type ReminderService struct {
	taskRepo repository.TaskRepository
	notifier *notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewReminderService(taskRepo repository.TaskRepository, notifier *notification.Notifier, logger *slog.Logger) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{
		taskRepo: taskRepo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock that anchors the reminder window.
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// SendReminders notifies the assignee of every unfinished task due within
// the next days days, and of every unfinished task already overdue.
// Overdue tasks are not bounded in age.
func (s *ReminderService) SendReminders(ctx context.Context, days int) (ReminderSummary, error) {
	if days < 0 {
		return ReminderSummary{}, ErrNegativeReminderDays
	}

	now := s.now().UTC()
	upcoming, err := s.taskRepo.ListDueWithin(now, now.AddDate(0, 0, days))
	if err != nil {
		return ReminderSummary{}, fmt.Errorf("failed to load upcoming tasks: %w", err)
	}
	overdue, err := s.taskRepo.ListOverdue(now)
	if err != nil {
		return ReminderSummary{}, fmt.Errorf("failed to load overdue tasks: %w", err)
	}

	s.logger.InfoContext(ctx, "sending task reminders",
		"days", days, "upcoming", len(upcoming), "overdue", len(overdue))

	var summary ReminderSummary
	for _, task := range append(upcoming, overdue...) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Total++
		outcome := s.notifier.TaskReminder(ctx, task.User, task)
		s.logger.DebugContext(ctx, "reminder processed",
			"task_id", task.ID, "user_id", task.AssignedTo, "kind", reminderKind(task, now), "outcome", outcome.String())

		switch outcome {
		case notification.OutcomeSent:
			summary.Sent++
		case notification.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	s.logger.InfoContext(ctx, "task reminders finished",
		"sent", summary.Sent, "skipped", summary.Skipped, "failed", summary.Failed, "total", summary.Total)

	return summary, nil
}

// reminderKind names the reminder for logs and output.
func reminderKind(task models.Task, now time.Time) string {
	if task.IsOverdue(now) {
		return "overdue"
	}
	return "upcoming"
}
