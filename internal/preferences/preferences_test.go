package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/logging"
	"meal-planner/internal/macros"
	"meal-planner/internal/mealplan"
)

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(apiclient.New(srv.URL, "", 5*time.Second, logging.NewNop()), logging.NewNop())
}

func TestService_GetEmptyUsesDefaults(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/preferences", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})

	prefs, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), prefs)

	assert.Empty(t, prefs.DietaryRestrictions)
	assert.Empty(t, prefs.Allergies)
	assert.Equal(t, "beginner", prefs.CookingSkillLevel)
	assert.Equal(t, 30, prefs.MaxCookingTime)
	assert.Equal(t, 2, prefs.HouseholdSize)
	assert.Equal(t, "medium", prefs.BudgetLevel)
	assert.Equal(t, mealplan.MealInclusions{Breakfast: true, Lunch: true, Dinner: true}, prefs.MealInclusions)
	assert.Equal(t, macros.Target{Calories: 2000, Protein: 150, Carbs: 200, Fat: 67}, prefs.NutritionTargets)
}

func TestService_GetPartialKeepsDefaults(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"household_size": 4, "allergies": ["peanuts"]}`))
	})

	prefs, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, prefs.HouseholdSize)
	assert.Equal(t, []string{"peanuts"}, prefs.Allergies)
	assert.Equal(t, DefaultBudget, prefs.BudgetLevel)
}

func TestService_Save(t *testing.T) {
	var got Preferences
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	prefs := Defaults()
	prefs.HouseholdSize = 3
	require.NoError(t, s.Save(context.Background(), prefs))
	assert.Equal(t, 3, got.HouseholdSize)
}

func TestService_SaveRejectsInvalid(t *testing.T) {
	called := false
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	tests := []struct {
		name   string
		mutate func(*Preferences)
	}{
		{"Skill", func(p *Preferences) { p.CookingSkillLevel = "chef" }},
		{"Household", func(p *Preferences) { p.HouseholdSize = 0 }},
		{"Budget", func(p *Preferences) { p.BudgetLevel = "unlimited" }},
		{"Macros", func(p *Preferences) { p.NutritionTargets.Protein += 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := Defaults()
			tt.mutate(&prefs)
			assert.Error(t, s.Save(context.Background(), prefs))
		})
	}
	assert.False(t, called)

	prefs := Defaults()
	prefs.NutritionTargets.Fat = 200
	assert.True(t, errors.Is(s.Save(context.Background(), prefs), macros.ErrMacroMismatch))
}

func TestPreferences_MealTypes(t *testing.T) {
	p := Defaults()
	p.MealInclusions.Lunch = false
	p.MealInclusions.Snacks = true
	assert.Equal(t, []mealplan.MealType{mealplan.Breakfast, mealplan.Dinner}, p.MealTypes())
}
