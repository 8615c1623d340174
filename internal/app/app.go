// Package app wires configuration into the shared runtime pieces used by
// the server and the command line tools.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/teamtasks/task-management-api/internal/config"
	"github.com/teamtasks/task-management-api/internal/constants"
	"github.com/teamtasks/task-management-api/internal/database"
	"github.com/teamtasks/task-management-api/internal/mail"
	"github.com/teamtasks/task-management-api/internal/notification"
	"gorm.io/gorm"
)

// NewLogger returns a JSON logger in production and a text logger
// otherwise, and installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// OpenDatabase connects and migrates the schema.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		return nil, err
	}
	return database.GetDB(), nil
}

// NewTransport builds the mail transport selected by the configuration.
func NewTransport(cfg *config.Config, logger *slog.Logger) (mail.Transport, error) {
	return mail.NewTransport(mail.Config{
		Driver:          cfg.MailDriver,
		MailgunDomain:   cfg.MailgunDomain,
		MailgunSecret:   cfg.MailgunSecret,
		MailgunEndpoint: cfg.MailgunEndpoint,
		FromAddress:     cfg.MailFromAddress,
		FromName:        cfg.MailFromName,
	}, logger)
}

func NewNotifier(cfg *config.Config, logger *slog.Logger) (*notification.Notifier, error) {
	transport, err := NewTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	return notification.NewNotifier(transport, notification.Options{
		AppURL:      cfg.AppURL,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	})
}

// NewSessionStore returns a Redis backed store, or a signed cookie store
// when session_store is "cookie".
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(
			10,    // pool size
			"tcp", // network type
			redisAddr,
			"", // password
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = s
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
