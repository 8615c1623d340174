// Command mailcheck sends a single test message through the configured
// mail transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/teamtasks/task-management-api/internal/app"
	"github.com/teamtasks/task-management-api/internal/config"
	"github.com/teamtasks/task-management-api/internal/mail"
)

func main() {
	configPath := pflag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	to := pflag.String("to", "", "recipient address")
	pflag.Parse()

	if *to == "" {
		fmt.Fprintln(os.Stderr, "--to is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	transport, err := app.NewTransport(cfg, logger)
	if err != nil {
		logger.Error("failed to create mail transport", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := mail.Message{
		To:      *to,
		Subject: "Task Management mail check",
		Text:    fmt.Sprintf("This is a test message sent by %s via the %q driver.", cfg.AppURL, cfg.MailDriver),
	}
	if err := transport.Send(ctx, msg); err != nil {
		logger.Error("mail check failed", "to", *to, "driver", cfg.MailDriver, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Test message sent to %s using the %s driver\n", *to, cfg.MailDriver)
}
