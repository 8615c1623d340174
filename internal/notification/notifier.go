// Package notification decides whether a user should get an e-mail and,
// when they should, composes and hands it to a mail transport.
//
// Delivery problems never reach the caller of the task or user operation
// that triggered them. The Task* and Welcome methods log and swallow every
// failure and report what happened as an Outcome.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamtasks/task-management-api/internal/mail"
	"github.com/teamtasks/task-management-api/internal/models"
)

// ErrNotEligible is returned when the user's preferences or missing
// address rule out the notification.
var ErrNotEligible = errors.New("user cannot receive this notification")

// Change is the before and after value of one task field.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Changes maps a task field name to its change.
type Changes map[string]Change

// Payload is what a notification is about.
type Payload struct {
	Type    models.NotificationType
	Task    *models.Task
	Changes Changes
}

// DeliveryError records a transport failure for one notification.
type DeliveryError struct {
	Type   models.NotificationType
	UserID uint64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver %s notification to user %d: %v", e.Type, e.UserID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Outcome summarizes a notification attempt.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Notifier composes and sends notification e-mails.
type Notifier struct {
	transport mail.Transport
	renderer  *Renderer
	logger    *slog.Logger
	now       func() time.Time
}

// Options configures a Notifier. Zero values fall back to sensible
// defaults.
type Options struct {
	AppURL      string
	FrontendURL string
	Logger      *slog.Logger
	Now         func() time.Time
}

func NewNotifier(transport mail.Transport, opts Options) (*Notifier, error) {
	renderer, err := NewRenderer(opts.AppURL, opts.FrontendURL)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Notifier{
		transport: transport,
		renderer:  renderer,
		logger:    opts.Logger,
		now:       opts.Now,
	}, nil
}

// Send checks eligibility, composes the message and hands it to the
// transport. It returns ErrNotEligible or a *DeliveryError on failure.
func (n *Notifier) Send(ctx context.Context, user models.User, p Payload) error {
	if !CanReceive(user, p.Type) {
		return ErrNotEligible
	}

	now := n.now()
	text, html, err := n.renderer.Render(user, p, now)
	if err != nil {
		return &DeliveryError{Type: p.Type, UserID: user.ID, Err: err}
	}

	msg := mail.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: n.renderer.Subject(p, now),
		Text:    text,
		HTML:    html,
		Headers: map[string]string{
			mail.HeaderNotificationID:  uuid.NewString(),
			"X-Mailer":                 "Task Management System",
			"X-Priority":               "3",
			"List-Unsubscribe":         "<" + n.renderer.UnsubscribeURL() + ">",
			"X-Auto-Response-Suppress": "OOF, DR, RN, NRN, AutoReply",
		},
	}

	if err := n.transport.Send(ctx, msg); err != nil {
		return &DeliveryError{Type: p.Type, UserID: user.ID, Err: err}
	}
	return nil
}

// deliver runs Send and turns its result into an Outcome, logging
// failures with the identifiers needed to trace them.
func (n *Notifier) deliver(ctx context.Context, user models.User, p Payload) Outcome {
	attrs := []any{"type", string(p.Type), "user_id", user.ID}
	if p.Task != nil {
		attrs = append(attrs, "task_id", p.Task.ID)
	}

	err := n.Send(ctx, user, p)
	switch {
	case err == nil:
		n.logger.DebugContext(ctx, "notification sent", attrs...)
		return OutcomeSent
	case errors.Is(err, ErrNotEligible):
		n.logger.DebugContext(ctx, "notification skipped", attrs...)
		return OutcomeSkipped
	default:
		n.logger.ErrorContext(ctx, "failed to send notification", append(attrs, "error", err)...)
		return OutcomeFailed
	}
}

// TaskAssigned tells the assignee about a newly created task.
func (n *Notifier) TaskAssigned(ctx context.Context, user models.User, task models.Task) Outcome {
	return n.deliver(ctx, user, Payload{Type: models.NotificationTaskAssigned, Task: &task})
}

// TaskUpdated tells the assignee what changed. An empty change set sends
// nothing.
func (n *Notifier) TaskUpdated(ctx context.Context, user models.User, task models.Task, changes Changes) Outcome {
	if len(changes) == 0 {
		return OutcomeSkipped
	}
	return n.deliver(ctx, user, Payload{Type: models.NotificationTaskUpdated, Task: &task, Changes: changes})
}

// TaskReminder reminds the assignee of an upcoming or missed deadline.
func (n *Notifier) TaskReminder(ctx context.Context, user models.User, task models.Task) Outcome {
	return n.deliver(ctx, user, Payload{Type: models.NotificationTaskReminders, Task: &task})
}

// Welcome greets a newly created account.
func (n *Notifier) Welcome(ctx context.Context, user models.User) Outcome {
	return n.deliver(ctx, user, Payload{Type: models.NotificationWelcomeEmail})
}
