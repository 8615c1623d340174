package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamtasks/task-management-api/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrateDB_CreatesIndexesOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, MigrateDB(db))
	// Running again must not fail on existing indexes.
	require.NoError(t, MigrateDB(db))

	for _, idx := range indexes {
		assert.True(t, db.Migrator().HasIndex(idx.table, idx.name), idx.name)
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBName: "tasks"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
