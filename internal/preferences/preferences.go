// Package preferences reads and writes the user's planning preferences on
// the backend.
package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/logging"
	"meal-planner/internal/macros"
	"meal-planner/internal/mealplan"
)

const path = "/api/preferences"

// Default values used when the backend has nothing stored.
const (
	DefaultCookingSkill   = "beginner"
	DefaultMaxCookingTime = 30
	DefaultHouseholdSize  = 2
	DefaultBudget         = "medium"
	DefaultCalories       = 2000
)

var validate = validator.New()

// Preferences is what the planner knows about the household.
type Preferences struct {
	DietaryRestrictions []string                `json:"dietary_restrictions"`
	Allergies           []string                `json:"allergies"`
	CuisinePreferences  []string                `json:"cuisine_preferences"`
	CookingSkillLevel   string                  `json:"cooking_skill_level" validate:"oneof=beginner intermediate advanced"`
	MaxCookingTime      int                     `json:"max_cooking_time" validate:"gte=5,lte=480"`
	HouseholdSize       int                     `json:"household_size" validate:"gte=1,lte=20"`
	BudgetLevel         string                  `json:"budget_level" validate:"oneof=low medium high"`
	MealInclusions      mealplan.MealInclusions `json:"meal_inclusions"`
	NutritionTargets    macros.Target           `json:"nutrition_targets"`
}

// Defaults returns the preferences assumed for a user who never saved any.
func Defaults() Preferences {
	return Preferences{
		DietaryRestrictions: []string{},
		Allergies:           []string{},
		CuisinePreferences:  []string{},
		CookingSkillLevel:   DefaultCookingSkill,
		MaxCookingTime:      DefaultMaxCookingTime,
		HouseholdSize:       DefaultHouseholdSize,
		BudgetLevel:         DefaultBudget,
		MealInclusions: mealplan.MealInclusions{
			Breakfast: true,
			Lunch:     true,
			Dinner:    true,
			Snacks:    false,
		},
		NutritionTargets: macros.SuggestMacros(DefaultCalories),
	}
}

// Validate checks field ranges and that the macro targets add up.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	if v := macros.Validate(p.NutritionTargets); !v.Valid {
		return fmt.Errorf("invalid preferences: %w: %s", macros.ErrMacroMismatch, v.Message)
	}
	return nil
}

// MealTypes lists the included slots in display order. Snacks are never planned.
func (p Preferences) MealTypes() []mealplan.MealType {
	var out []mealplan.MealType
	if p.MealInclusions.Breakfast {
		out = append(out, mealplan.Breakfast)
	}
	if p.MealInclusions.Lunch {
		out = append(out, mealplan.Lunch)
	}
	if p.MealInclusions.Dinner {
		out = append(out, mealplan.Dinner)
	}
	return out
}

// Service is the preferences accessor.
type Service struct {
	client *apiclient.Client
	logger *zap.Logger
}

// NewService creates a Service.
func NewService(client *apiclient.Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logging.OrNop(logger)}
}

// Get fetches the stored preferences. Fields the backend leaves out keep
// their default, so an empty object yields Defaults().
func (s *Service) Get(ctx context.Context) (Preferences, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, path, &raw); err != nil {
		return Preferences{}, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	prefs := Defaults()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		s.logger.Debug("no stored preferences, using defaults")
		return prefs, nil
	}
	if err := json.Unmarshal(trimmed, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// Save validates prefs and stores them.
func (s *Service) Save(ctx context.Context, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := s.client.Post(ctx, path, prefs, nil); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	s.logger.Info("preferences saved", zap.Int("household_size", prefs.HouseholdSize))
	return nil
}
