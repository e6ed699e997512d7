package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/config"
	"meal-planner/internal/logging"
	"meal-planner/internal/macros"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
)

func newTestApp(t *testing.T, handler http.Handler) *App {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		APIBaseURL:    srv.URL,
		Provider:      config.ProviderBackend,
		HTTPTimeout:   5 * time.Second,
		DatabasePath:  filepath.Join(dir, "test.db"),
		PlanExportDir: filepath.Join(dir, "plans"),
	}
	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func backend(generate http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ai/simple_meal_plan", generate)
	mux.HandleFunc("/api/meal-history", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	})
	return mux
}

func TestGenerateMealPlan_SavesAndExports(t *testing.T) {
	a := newTestApp(t, backend(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"plan": map[string]any{
				"monday": map[string]any{"breakfast": map[string]any{"title": "Oatmeal", "calories": 300}},
			},
		})
	}))

	var out bytes.Buffer
	err := a.GenerateMealPlan(context.Background(), &out, GenerateRequest{Save: true, Export: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Oatmeal (300 kcal)")
	assert.Contains(t, out.String(), "Exported to")

	entries, err := a.LocalHistory().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].MealCount)

	files, err := a.PlanStore().List()
	require.NoError(t, err)
	assert.Len(t, files, 1)

	usage, err := a.Metrics().GetDailyUsage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 1, usage[0].TotalExecution)

	out.Reset()
	require.NoError(t, a.PrintUsage(context.Background(), &out, 7))
	assert.Contains(t, out.String(), "runs=1")
	assert.Regexp(t, `database .+ \(1 plans\)  exports .+ \(1 plans\)`, out.String())
}

func TestGenerateMealPlan_CancelIsNotAnError(t *testing.T) {
	var hits atomic.Int32
	a := newTestApp(t, backend(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		assert.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
		cancel()
	}()

	var out bytes.Buffer
	err := a.GenerateMealPlan(ctx, &out, GenerateRequest{Save: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "generation cancelled")
	assert.NotContains(t, out.String(), "WEEKLY MEAL PLAN")

	entries, err := a.LocalHistory().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	usage, err := a.Metrics().GetDailyUsage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 1, usage[0].Cancelled)
}

func TestGenerateMealPlan_PreferencesRequired(t *testing.T) {
	a := newTestApp(t, backend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "no preferences", "redirect_to": "/preferences"})
	}))

	err := a.GenerateMealPlan(context.Background(), &bytes.Buffer{}, GenerateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set your preferences first (/preferences)")
}

func TestShowHistory_Local(t *testing.T) {
	a := newTestApp(t, http.NewServeMux())
	plan := a.Normalizer().Normalize(map[string]any{"tuesday": map[string]any{"dinner": "Curry"}})

	var out bytes.Buffer
	require.NoError(t, a.ImportPlan(context.Background(), &out, plan))
	assert.Contains(t, out.String(), "Imported 1 meals")

	entries, err := a.LocalHistory().ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	id := entries[0].ID

	out.Reset()
	require.NoError(t, a.ShowHistory(context.Background(), &out, id, true, false))
	assert.Contains(t, out.String(), "Curry")

	out.Reset()
	require.NoError(t, a.ListLocalHistory(context.Background(), &out, 5))
	assert.Contains(t, out.String(), id)
}

func TestCleanupMetrics(t *testing.T) {
	a := newTestApp(t, http.NewServeMux())
	old := metrics.ExecutionMetric{Provider: "backend", Outcome: metrics.OutcomeReady, Timestamp: time.Now().AddDate(0, 0, -40)}
	require.NoError(t, a.Metrics().Record(context.Background(), old))

	var out bytes.Buffer
	require.NoError(t, a.CleanupMetrics(context.Background(), &out, 30))
	assert.Contains(t, out.String(), "removed 1 old metric records")
}

func TestPrintValidation(t *testing.T) {
	var out bytes.Buffer
	PrintValidation(&out, macros.Target{Calories: 2000, Protein: 100, Carbs: 100, Fat: 20})
	assert.Contains(t, out.String(), "Mismatch")
	assert.Contains(t, out.String(), "protein 150g")

	out.Reset()
	PrintValidation(&out, macros.Target{Calories: 2000, Protein: 150, Carbs: 200, Fat: 67})
	assert.Contains(t, out.String(), "OK")
}

func TestNew_UnwritableExportDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := New(context.Background(), &config.Config{
		APIBaseURL:    "http://127.0.0.1:1",
		Provider:      config.ProviderBackend,
		DatabasePath:  filepath.Join(dir, "db.sqlite"),
		PlanExportDir: filepath.Join(blocker, "plans"),
	}, nil)
	assert.Error(t, err)
}

func TestSavePreferences_RejectsMacroMismatch(t *testing.T) {
	var posted atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/preferences", func(w http.ResponseWriter, r *http.Request) {
		posted.Add(1)
		w.Write([]byte(`{}`))
	})
	a := newTestApp(t, mux)

	body := `{"nutrition_targets": {"calories": 2000, "protein": 10, "carbs": 10, "fat": 10}}`
	err := a.SavePreferences(context.Background(), &bytes.Buffer{}, bytes.NewBufferString(body))
	require.ErrorIs(t, err, macros.ErrMacroMismatch)
	assert.Zero(t, posted.Load())

	var out bytes.Buffer
	require.NoError(t, a.SavePreferences(context.Background(), &out, bytes.NewBufferString(`{"household_size": 4}`)))
	assert.Equal(t, int32(1), posted.Load())
	assert.Contains(t, out.String(), "Preferences saved.")
}

func TestGenerateMealPlan_NonObjectBodyIsShapeError(t *testing.T) {
	a := newTestApp(t, backend(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>down for maintenance</html>"))
	}))

	err := a.GenerateMealPlan(context.Background(), &bytes.Buffer{}, GenerateRequest{Save: true})
	require.ErrorIs(t, err, planner.ErrInvalidResponseFormat)
}
