package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamtasks/task-management-api/internal/mail"
	"github.com/teamtasks/task-management-api/internal/models"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestNotifier(t *testing.T, transport mail.Transport) *Notifier {
	t.Helper()
	n, err := NewNotifier(transport, Options{
		AppURL:      "https://api.example.com",
		FrontendURL: "https://app.example.com/",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:         func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return n
}

func testTask() models.Task {
	deadline := fixedNow.Add(48 * time.Hour)
	description := "Create ERD and design database tables"
	return models.Task{
		ID:          7,
		Title:       "Design Database Schema",
		Description: &description,
		Status:      models.TaskStatusPending,
		Deadline:    &deadline,
		AssignedTo:  2,
	}
}

func TestNotifier_TaskAssigned(t *testing.T) {
	transport := &mail.MemoryTransport{}
	n := newTestNotifier(t, transport)
	user := models.User{ID: 2, Name: "Jane", Email: "jane@example.com"}

	outcome := n.TaskAssigned(context.Background(), user, testTask())
	require.Equal(t, OutcomeSent, outcome)

	messages := transport.Messages()
	require.Len(t, messages, 1)
	msg := messages[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "New Task Assigned: Design Database Schema", msg.Subject)
	assert.Contains(t, msg.Text, "This task is due in 2 days.")
	assert.Contains(t, msg.HTML, "<strong>Design Database Schema</strong>")
	assert.Contains(t, msg.HTML, `href="https://app.example.com/tasks/7"`)
	assert.Equal(t, "<https://api.example.com/unsubscribe>", msg.Headers["List-Unsubscribe"])
	assert.NotEmpty(t, msg.Headers[mail.HeaderNotificationID])
}

func TestNotifier_SkipsWhenOptedOut(t *testing.T) {
	transport := &mail.MemoryTransport{}
	n := newTestNotifier(t, transport)
	user := models.User{ID: 2, Email: "jane@example.com", EmailPreferences: models.Preferences{
		models.NotificationTaskAssigned: false,
	}}

	assert.Equal(t, OutcomeSkipped, n.TaskAssigned(context.Background(), user, testTask()))
	assert.ErrorIs(t, n.Send(context.Background(), user, Payload{Type: models.NotificationTaskAssigned, Task: &models.Task{}}), ErrNotEligible)
	assert.Empty(t, transport.Messages())
}

func TestNotifier_TransportFailureIsSwallowed(t *testing.T) {
	transport := &mail.MemoryTransport{Err: errors.New("connection refused")}
	n := newTestNotifier(t, transport)
	user := models.User{ID: 2, Email: "jane@example.com"}

	assert.Equal(t, OutcomeFailed, n.TaskAssigned(context.Background(), user, testTask()))

	task := testTask()
	err := n.Send(context.Background(), user, Payload{Type: models.NotificationTaskAssigned, Task: &task})
	var deliveryErr *DeliveryError
	require.True(t, errors.As(err, &deliveryErr))
	assert.Equal(t, uint64(2), deliveryErr.UserID)
}

func TestNotifier_TaskUpdated(t *testing.T) {
	transport := &mail.MemoryTransport{}
	n := newTestNotifier(t, transport)
	user := models.User{ID: 2, Name: "Jane", Email: "jane@example.com"}

	assert.Equal(t, OutcomeSkipped, n.TaskUpdated(context.Background(), user, testTask(), nil))
	assert.Empty(t, transport.Messages())

	outcome := n.TaskUpdated(context.Background(), user, testTask(), Changes{
		"status": {Old: models.TaskStatusPending, New: models.TaskStatusCompleted},
		"title":  {Old: "Old", New: "Design Database Schema"},
	})
	require.Equal(t, OutcomeSent, outcome)

	msg := transport.Messages()[0]
	assert.Equal(t, "Task Updated: Design Database Schema", msg.Subject)
	assert.Contains(t, msg.Text, "**status**: Pending → Completed")
	assert.Contains(t, msg.Text, "**title**: Old → Design Database Schema")
}

func TestNotifier_ReminderSubject(t *testing.T) {
	transport := &mail.MemoryTransport{}
	n := newTestNotifier(t, transport)
	user := models.User{ID: 2, Email: "jane@example.com"}

	upcoming := testTask()
	overdue := testTask()
	past := fixedNow.Add(-72 * time.Hour)
	overdue.Deadline = &past

	require.Equal(t, OutcomeSent, n.TaskReminder(context.Background(), user, upcoming))
	require.Equal(t, OutcomeSent, n.TaskReminder(context.Background(), user, overdue))

	messages := transport.Messages()
	assert.Equal(t, "Task Reminder: Design Database Schema", messages[0].Subject)
	assert.Equal(t, "Overdue Task Reminder: Design Database Schema", messages[1].Subject)
	assert.Contains(t, messages[1].Text, "overdue by 3 days")
}

func TestNotifier_Welcome(t *testing.T) {
	transport := &mail.MemoryTransport{}
	n := newTestNotifier(t, transport)

	outcome := n.Welcome(context.Background(), models.User{ID: 4, Name: "Sam", Email: "sam@example.com"})
	require.Equal(t, OutcomeSent, outcome)
	assert.Equal(t, "Welcome to Task Management!", transport.Messages()[0].Subject)
}

func TestFormatValue(t *testing.T) {
	deadline := time.Date(2026, 7, 25, 15, 0, 0, 0, time.UTC)
	var nilTime *time.Time

	assert.Equal(t, "(none)", formatValue(nil))
	assert.Equal(t, "(none)", formatValue(nilTime))
	assert.Equal(t, "Jul 25, 2026 at 3:00 PM", formatValue(&deadline))
	assert.Equal(t, "42", formatValue(uint64(42)))
}
