package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/logging"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/planner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	res  planner.Result
	err  error
	opts planner.Options
}

func (g *stubGenerator) Generate(_ context.Context, opts planner.Options) (planner.Result, error) {
	g.opts = opts
	return g.res, g.err
}

func newTestServer(gen PlanGenerator) *Server {
	n := mealplan.NewNormalizerWithClock(func() time.Time { return time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC) })
	return New(gen, n, logging.NewNop())
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	w, out := do(t, newTestServer(nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestValidateMacros(t *testing.T) {
	s := newTestServer(nil)

	w, out := do(t, s, http.MethodPost, "/api/macros/validate", `{"calories": 2000, "protein": 150, "carbs": 200, "fat": 67}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["is_valid"])

	w, out = do(t, s, http.MethodPost, "/api/macros/validate", `{"calories": 2000, "protein": 100, "carbs": 100, "fat": 20}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["is_valid"])
	assert.Equal(t, 980.0, out["suggested_calories"])
	assert.Contains(t, out["message"], "980")

	w, _ = do(t, s, http.MethodPost, "/api/macros/validate", `{"calories": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPost, "/api/macros/validate", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestMacros(t *testing.T) {
	s := newTestServer(nil)

	w, out := do(t, s, http.MethodPost, "/api/macros/suggest", `{"calories": 1800}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 135.0, out["protein"])
	assert.Equal(t, 180.0, out["carbs"])
	assert.Equal(t, 60.0, out["fat"])

	w, _ = do(t, s, http.MethodPost, "/api/macros/suggest", `{"calories": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNormalizeAndMarkdown(t *testing.T) {
	s := newTestServer(nil)

	w, out := do(t, s, http.MethodPost, "/api/meal-plan/normalize", `{"days": {"monday": {"lunch": {"title": "Soup"}}}}`)
	require.Equal(t, http.StatusOK, w.Code)
	days := out["days"].([]any)
	require.Len(t, days, 7)
	meal := days[0].(map[string]any)["meals"].([]any)[0].(map[string]any)
	assert.Equal(t, "Soup", meal["name"])

	w, out = do(t, s, http.MethodPost, "/api/meal-plan/markdown", `{"markdown": "## Tuesday\n- dinner: Tacos, beef"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "markdown", out["plan_type"])
	meal = out["days"].([]any)[1].(map[string]any)["meals"].([]any)[0].(map[string]any)
	assert.Equal(t, "Tacos", meal["name"])

	w, _ = do(t, s, http.MethodPost, "/api/meal-plan/markdown", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePlan(t *testing.T) {
	plan := mealplan.NewNormalizer().Normalize(nil)

	tests := []struct {
		name       string
		gen        *stubGenerator
		wantStatus int
		check      func(t *testing.T, out map[string]any)
	}{
		{
			name:       "Ready",
			gen:        &stubGenerator{res: planner.Result{Status: planner.StatusReady, Plan: plan}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, true, out["success"])
				assert.Contains(t, out, "plan")
			},
		},
		{
			name:       "PreferencesRequired",
			gen:        &stubGenerator{err: &planner.GenerationError{StatusCode: 400, Message: "Set preferences", RedirectTo: "/preferences"}},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "/preferences", out["redirect_to"])
			},
		},
		{
			name:       "InvalidFormat",
			gen:        &stubGenerator{err: planner.ErrInvalidResponseFormat},
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Invalid response format", out["error"])
			},
		},
		{
			name:       "Cancelled",
			gen:        &stubGenerator{res: planner.Result{Status: planner.StatusCancelled}},
			wantStatus: statusClientClosedRequest,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, true, out["cancelled"])
			},
		},
		{
			name:       "Other",
			gen:        &stubGenerator{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, out map[string]any) {
				assert.Equal(t, "Failed to generate meal plan", out["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, out := do(t, newTestServer(tt.gen), http.MethodPost, "/api/meal-plan/generate", `{"save_to_history": true}`)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, tt.gen.opts.SaveToHistory)
			tt.check(t, out)
		})
	}
}

func TestGeneratePlan_NotConfigured(t *testing.T) {
	w, _ := do(t, newTestServer(nil), http.MethodPost, "/api/meal-plan/generate", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
