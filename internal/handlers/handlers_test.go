package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/teamtasks/task-management-api/internal/database"
	"github.com/teamtasks/task-management-api/internal/mail"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/repository"
	"github.com/teamtasks/task-management-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password"

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// apiEnv is a full router backed by in-memory SQLite and a recording
// mail transport.
type apiEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	transport *mail.MemoryTransport
	userRepo  repository.UserRepository
	taskRepo  repository.TaskRepository
}

// apiResponse covers both the success envelope and the error envelope.
type apiResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func setupAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		Now:         func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		SessionStore:      cookie.NewStore([]byte("secret")),
		TaskRepo:          taskRepo,
		UserRepo:          userRepo,
		AuthService:       services.NewAuthService(userRepo, notifier),
		TaskService:       services.NewTaskService(taskRepo, userRepo, notifier, nil).WithClock(func() time.Time { return fixedNow }),
		UserService:       services.NewUserService(userRepo, notifier),
		PreferenceService: services.NewPreferenceService(userRepo),
	})

	return &apiEnv{
		db:        db,
		router:    router,
		transport: transport,
		userRepo:  userRepo,
		taskRepo:  taskRepo,
	}
}

func (e *apiEnv) createUser(t *testing.T, name, email string, role models.UserRole, prefs models.Preferences) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		Role:             role,
		EmailPreferences: prefs,
	}
	require.NoError(t, e.userRepo.Create(&user))
	return user
}

func (e *apiEnv) createTask(t *testing.T, title string, assignee models.User) models.Task {
	t.Helper()
	task := models.Task{
		Title:      title,
		Status:     models.TaskStatusPending,
		AssignedTo: assignee.ID,
	}
	require.NoError(t, e.taskRepo.Create(&task))
	return task
}

// login signs in through the API and returns the session cookies.
func (e *apiEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	w := e.request(t, http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

// request sends body as JSON. A string body is sent as is.
func (e *apiEnv) request(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }
