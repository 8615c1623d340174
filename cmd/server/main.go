package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/teamtasks/task-management-api/internal/app"
	"github.com/teamtasks/task-management-api/internal/config"
	"github.com/teamtasks/task-management-api/internal/handlers"
	"github.com/teamtasks/task-management-api/internal/repository"
	"github.com/teamtasks/task-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database and run migrations
	db, err := app.OpenDatabase(cfg)
	if err != nil {
		logger.Error("failed to prepare database", "error", err)
		os.Exit(1)
	}

	store, err := app.NewSessionStore(cfg)
	if err != nil {
		logger.Error("failed to create session store", "error", err)
		os.Exit(1)
	}

	notifier, err := app.NewNotifier(cfg, logger)
	if err != nil {
		logger.Error("failed to create notifier", "error", err)
		os.Exit(1)
	}

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	r := gin.Default()
	handlers.RegisterRoutes(r, handlers.Dependencies{
		SessionStore:      store,
		TaskRepo:          taskRepo,
		UserRepo:          userRepo,
		AuthService:       services.NewAuthService(userRepo, notifier),
		TaskService:       services.NewTaskService(taskRepo, userRepo, notifier, aiService),
		UserService:       services.NewUserService(userRepo, notifier),
		PreferenceService: services.NewPreferenceService(userRepo),
	})

	// Start server
	logger.Info("server starting", "port", cfg.Port, "mail_driver", cfg.MailDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
