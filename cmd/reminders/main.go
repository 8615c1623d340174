// Command reminders sends task_reminders e-mails for tasks due soon and
// tasks already overdue. It is meant to run once a day from a scheduler.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/teamtasks/task-management-api/internal/app"
	"github.com/teamtasks/task-management-api/internal/config"
	"github.com/teamtasks/task-management-api/internal/repository"
	"github.com/teamtasks/task-management-api/internal/services"
)

type options struct {
	configPath string
	days       int
	daysSet    bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("reminders", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flags.IntVar(&opts.days, "days", 1, "number of days ahead to look for due tasks; reminder_days from the config when omitted")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	opts.daysSet = flags.Changed("days")
	return opts, nil
}

// reminderDays prefers an explicit --days, negative values included, so the
// reminder service can reject them.
func (o options) reminderDays(cfg *config.Config) int {
	if o.daysSet {
		return o.days
	}
	return cfg.ReminderDays
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, opts.reminderDays(cfg)); err != nil {
		slog.Error("reminder run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, days int) error {
	logger := app.NewLogger(cfg)

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}

	notifier, err := app.NewNotifier(cfg, logger)
	if err != nil {
		return err
	}

	reminders := services.NewReminderService(repository.NewTaskRepository(db), notifier, logger)
	summary, err := reminders.SendReminders(ctx, days)
	if err != nil {
		return err
	}

	fmt.Printf("Reminders: %d sent, %d skipped, %d failed, %d total\n",
		summary.Sent, summary.Skipped, summary.Failed, summary.Total)
	return nil
}
