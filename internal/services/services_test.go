package services

import (
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teamtasks/task-management-api/internal/database"
	"github.com/teamtasks/task-management-api/internal/mail"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type serviceEnv struct {
	db        *gorm.DB
	transport *mail.MemoryTransport
	notifier  *notification.Notifier
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
}

func setupServiceEnv(t *testing.T) serviceEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDB(db))

	transport := &mail.MemoryTransport{}
	notifier, err := notification.NewNotifier(transport, notification.Options{
		AppURL:      "https://api.example.com",
		FrontendURL: "https://app.example.com",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:         clock,
	})
	require.NoError(t, err)

	return serviceEnv{
		db:        db,
		transport: transport,
		notifier:  notifier,
		taskRepo:  repository.NewTaskRepository(db),
		userRepo:  repository.NewUserRepository(db),
	}
}

func (e serviceEnv) createUser(t *testing.T, name, email string, role models.UserRole, prefs models.Preferences) models.User {
	t.Helper()
	user := models.User{
		Name:             name,
		Email:            email,
		PasswordHash:     "hashed",
		Role:             role,
		EmailPreferences: prefs,
	}
	require.NoError(t, e.userRepo.Create(&user))
	return user
}

func (e serviceEnv) createTask(t *testing.T, title string, status models.TaskStatus, assignee models.User, deadline *time.Time) models.Task {
	t.Helper()
	task := models.Task{
		Title:      title,
		Status:     status,
		AssignedTo: assignee.ID,
		Deadline:   deadline,
	}
	require.NoError(t, e.taskRepo.Create(&task))
	return task
}

func ptr[T any](v T) *T { return &v }

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }
