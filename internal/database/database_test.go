package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/todo-list/internal/config"
	"github.com/yukikurage/todo-list/internal/models"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBName: "todo"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	SetDB(db)
	t.Cleanup(func() {
		assert.NoError(t, Close())
		SetDB(nil)
	})

	require.NoError(t, Migrate())
	// running twice must not fail on existing indexes
	require.NoError(t, Migrate())

	m := GetDB().Migrator()
	assert.True(t, m.HasTable(&models.Task{}))
	assert.True(t, m.HasTable("task_tags"))
	assert.True(t, m.HasIndex(&models.Task{}, "idx_tasks_owner_created"))
	assert.True(t, m.HasIndex(&models.Task{}, "idx_tasks_owner_priority"))
}

func TestClose_NoConnection(t *testing.T) {
	SetDB(nil)
	assert.NoError(t, Close())
}
