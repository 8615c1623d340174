package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// indexes backs the task list filters and the reminder queries.
var indexes = []index{
	{"tasks", "idx_tasks_status", "status"},
	{"tasks", "idx_tasks_deadline", "deadline"},
	{"tasks", "idx_tasks_status_deadline", "status, deadline"},
	{"tasks", "idx_tasks_created_at", "created_at"},
	{"users", "idx_users_role", "role"},
}

// AddIndexes creates the query indexes that AutoMigrate does not declare.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
