package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/mealplan"
)

func planAt(t *testing.T, ts time.Time) mealplan.MealPlanData {
	t.Helper()
	n := mealplan.NewNormalizerWithClock(func() time.Time { return ts })
	return n.Normalize(map[string]any{"monday": map[string]any{"dinner": "Risotto"}})
}

func TestPlanStore(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewPlanStore(filepath.Join(tempDir, "plans"))
	require.NoError(t, err)

	plan := planAt(t, time.Date(2025, 3, 12, 8, 30, 0, 0, time.UTC))

	t.Run("CheckExists-False", func(t *testing.T) {
		assert.False(t, store.Exists(plan.GeneratedAt))
	})

	t.Run("Save", func(t *testing.T) {
		path, err := store.Save(plan)
		require.NoError(t, err)
		assert.Equal(t, "plan_2025-03-12T08-30-00Z.json", filepath.Base(path))
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("CheckExists-True", func(t *testing.T) {
		assert.True(t, store.Exists(plan.GeneratedAt))
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(plan.GeneratedAt)
		require.NoError(t, err)
		assert.Equal(t, plan, *loaded)
	})

	t.Run("Load-Missing", func(t *testing.T) {
		_, err := store.Load("2000-01-01T00:00:00Z")
		assert.Error(t, err)
	})

	t.Run("Save-NoTimestamp", func(t *testing.T) {
		_, err := store.Save(mealplan.MealPlanData{})
		assert.Error(t, err)
	})
}

func TestPlanStore_ListAndPrune(t *testing.T) {
	store, err := NewPlanStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := store.Save(planAt(t, base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	names, err := store.List()
	require.NoError(t, err)
	require.Len(t, names, 4)
	assert.Equal(t, "plan_2025-03-04T00-00-00Z.json", names[0])

	removed, err := store.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"plan_2025-03-04T00-00-00Z.json", "plan_2025-03-03T00-00-00Z.json"}, names)
}
