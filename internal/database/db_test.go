package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/logging"
)

func TestNewDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := NewDB(path, logging.NewNop())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"meal_plans", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(path, nil))
	assert.NoError(t, RunMigrations(path, nil))
}
