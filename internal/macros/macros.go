// Package macros checks that protein, carb and fat gram targets add up to a
// stated calorie target and proposes corrections when they do not.
package macros

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Energy density in kcal per gram.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// Tolerance is the largest accepted gap, in kcal, between the calorie target
// and the calories implied by the macro targets.
const Tolerance = 50.0

// Calorie shares used by SuggestMacros.
const (
	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30
)

var validate = validator.New()

// Target is a daily nutrition target. Macros are grams, calories are kcal.
type Target struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}

// Check reports negative fields.
func (t Target) Check() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid nutrition target: %w", err)
	}
	return nil
}

// MacroCalories returns protein*4 + carbs*4 + fat*9.
func (t Target) MacroCalories() float64 {
	return t.Protein*KcalPerGramProtein + t.Carbs*KcalPerGramCarbs + t.Fat*KcalPerGramFat
}

// Validation is the outcome of Validate.
type Validation struct {
	Valid             bool    `json:"is_valid"`
	Message           string  `json:"message,omitempty"`
	MacroCalories     float64 `json:"total_macro_calories"`
	SuggestedCalories float64 `json:"suggested_calories,omitempty"`
}

// Validate compares the calorie target with the calories implied by the macros.
// A mismatch is reported, never corrected.
func Validate(t Target) Validation {
	total := t.MacroCalories()
	if math.Abs(t.Calories-total) > Tolerance {
		return Validation{
			Valid:             false,
			Message:           fmt.Sprintf("Macros add up to %s calories, which does not match your %s calorie target", formatKcal(total), formatKcal(t.Calories)),
			MacroCalories:     total,
			SuggestedCalories: total,
		}
	}
	return Validation{Valid: true, MacroCalories: total}
}

// SuggestMacros splits calories 30/40/30 across protein, carbs and fat and
// converts each share to grams.
func SuggestMacros(calories float64) Target {
	return Target{
		Calories: calories,
		Protein:  math.Round(calories * proteinShare / KcalPerGramProtein),
		Carbs:    math.Round(calories * carbsShare / KcalPerGramCarbs),
		Fat:      math.Round(calories * fatShare / KcalPerGramFat),
	}
}

func formatKcal(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
