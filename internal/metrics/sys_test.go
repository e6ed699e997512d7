package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database"
	"meal-planner/internal/logging"
)

func TestStore_Health(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "meal-planner.db")
	db, err := database.NewDB(dbPath, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.SQL.Exec(`INSERT INTO meal_plans (id, plan_type, generated_at, plan_data, created_at) VALUES ('a', 'simple', 'x', '{}', 'y'), ('b', 'simple', 'x', '{}', 'y')`)
	require.NoError(t, err)

	exportDir := filepath.Join(dir, "plans")
	require.NoError(t, os.MkdirAll(exportDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(exportDir, "plan_2025-03-12T08-00-00Z.json"), make([]byte, 2048), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(exportDir, "notes.txt"), make([]byte, 4096), 0644))

	s := NewStore(db.SQL)
	h, err := s.Health(context.Background(), StoragePaths{DatabasePath: dbPath, ExportDir: exportDir})
	require.NoError(t, err)

	assert.Equal(t, 2, h.StoredPlans)
	assert.Equal(t, 1, h.ExportedPlans)
	assert.Equal(t, "2.0 KB", h.ExportSize)
	assert.NotEqual(t, "0 B", h.DatabaseSize)
	assert.Positive(t, h.Goroutines)
}

func TestStore_HealthMissingExportDir(t *testing.T) {
	s := newTestStore(t, time.Now())
	h, err := s.Health(context.Background(), StoragePaths{ExportDir: filepath.Join(t.TempDir(), "absent")})
	require.NoError(t, err)
	assert.Zero(t, h.ExportedPlans)
	assert.Equal(t, "0 B", h.ExportSize)
	assert.Equal(t, "0 B", h.DatabaseSize)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "3.0 MB", formatBytes(3*1024*1024))
}
