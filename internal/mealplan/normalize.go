// Package mealplan defines the canonical weekly plan and converts loosely
// structured provider output (LLM JSON, markdown, HTML) into it.
//
// Conversion never fails: every missing or malformed field resolves to a
// documented default, and the result always holds seven days, Monday first.
package mealplan

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Normalizer converts raw plan payloads into MealPlanData.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer using the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock creates a Normalizer whose "today" comes from now.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

type payloadShape int

const (
	shapeBare payloadShape = iota
	shapePlan
	shapeDays
	shapeMealPlan
)

var wrapperKeys = []struct {
	key   string
	shape payloadShape
}{
	{"plan", shapePlan},
	{"days", shapeDays},
	{"meal_plan", shapeMealPlan},
}

// payload is the decoded variant of a raw plan: per-day data keyed by
// weekday name, or a positional list where index 0 is Monday.
type payload struct {
	shape   payloadShape
	byName  map[string]any
	byIndex []any
}

// classify picks the per-day container. Wrapper keys are tried in order and
// the first holding an object (or list) wins; otherwise raw itself is the container.
func classify(raw map[string]any) payload {
	for _, w := range wrapperKeys {
		switch v := raw[w.key].(type) {
		case map[string]any:
			return payload{shape: w.shape, byName: v}
		case []any:
			return payload{shape: w.shape, byIndex: v}
		}
	}
	return payload{shape: shapeBare, byName: raw}
}

// day returns the raw data for the i-th weekday, or an empty object.
func (p payload) day(i int) map[string]any {
	if p.byIndex != nil {
		if i < len(p.byIndex) {
			if m, ok := p.byIndex[i].(map[string]any); ok {
				return m
			}
		}
		return map[string]any{}
	}

	name := Weekdays[i]
	if m, ok := p.byName[name].(map[string]any); ok {
		return m
	}
	for k, v := range p.byName {
		if strings.EqualFold(k, name) {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{}
}

// Normalize converts raw into the canonical plan. Day labels and dates are
// positional: entry i is Weekdays[i] dated today+i, whatever the payload says.
func (n *Normalizer) Normalize(raw map[string]any) MealPlanData {
	if raw == nil {
		raw = map[string]any{}
	}
	p := classify(raw)

	plan := n.skeleton(PlanTypeSimple)
	for i := range plan.Days {
		dayData := p.day(i)
		plan.Days[i].Meals = mealsForDay(dayData)
		plan.Days[i].DailyNotes = notesForDay(dayData)
	}

	if prefs, ok := raw["preferences_used"].(map[string]any); ok {
		plan.PreferencesUsed = prefs
	}
	if pt, ok := raw["plan_type"].(string); ok && strings.TrimSpace(pt) != "" {
		plan.PlanType = pt
	}
	return plan
}

// skeleton builds seven empty days starting today together with the zero aggregates.
func (n *Normalizer) skeleton(planType string) MealPlanData {
	now := n.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	days := make([]MealDay, DaysInWeek)
	for i := range days {
		days[i] = MealDay{
			Day:   displayDay(Weekdays[i]),
			Date:  today.AddDate(0, 0, i).Format(isoDate),
			Meals: []Meal{},
		}
	}

	return MealPlanData{
		Days:             days,
		ShoppingList:     DefaultShoppingList(),
		NutritionSummary: DefaultNutritionSummary(),
		GeneratedAt:      now.UTC().Format(time.RFC3339),
		PreferencesUsed:  map[string]any{},
		PlanType:         planType,
	}
}

// mealsForDay builds up to three meals. Slots are read from the day object
// directly; a day that instead carries a "meals" list is matched by meal_type.
func mealsForDay(dayData map[string]any) []Meal {
	slots := map[MealType]any{}
	for _, mt := range MealTypes {
		if v, ok := dayData[string(mt)]; ok && v != nil {
			slots[mt] = v
		}
	}
	if len(slots) == 0 {
		if list, ok := dayData["meals"].([]any); ok {
			for _, el := range list {
				m, ok := el.(map[string]any)
				if !ok {
					continue
				}
				mtRaw, _ := m["meal_type"].(string)
				mt, ok := ParseMealType(mtRaw)
				if !ok {
					continue
				}
				if _, taken := slots[mt]; !taken {
					slots[mt] = m
				}
			}
		}
	}

	meals := []Meal{}
	for _, mt := range MealTypes {
		v, ok := slots[mt]
		if !ok {
			continue
		}
		if raw, ok := mealObject(v); ok {
			meals = append(meals, BuildMeal(mt, raw))
		}
	}
	return meals
}

// mealObject accepts an object, a bare meal name, or a list of options (first object wins).
func mealObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, false
		}
		return map[string]any{"name": x}, true
	case []any:
		for _, el := range x {
			if m, ok := el.(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func notesForDay(dayData map[string]any) string {
	for _, key := range []string{"daily_notes", "notes"} {
		if s, ok := dayData[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// BuildMeal resolves every Meal field through MealFields and NutritionFields.
func BuildMeal(mealType MealType, raw map[string]any) Meal {
	name := mealRules.text(raw, "name")
	if name == "" {
		name = "Unknown " + string(mealType)
	}

	return Meal{
		Name:         name,
		MealType:     mealType,
		Cuisine:      mealRules.str(raw, "cuisine"),
		IsVegetarian: mealRules.boolean(raw, "is_vegetarian"),
		IsVegan:      mealRules.boolean(raw, "is_vegan"),
		Ingredients:  mealRules.list(raw, "ingredients"),
		Instructions: mealRules.list(raw, "instructions"),
		Nutrition: NutritionInfo{
			Calories: nutritionRules.number(raw, "calories"),
			Protein:  nutritionRules.grams(raw, "protein"),
			Carbs:    nutritionRules.grams(raw, "carbs"),
			Fat:      nutritionRules.grams(raw, "fat"),
		},
		PrepTime:   mealRules.str(raw, "prep_time"),
		CookTime:   mealRules.str(raw, "cook_time"),
		Servings:   mealRules.positiveInt(raw, "servings"),
		Difficulty: mealRules.str(raw, "difficulty"),
	}
}

// DefaultMeal is a meal with every field at its default.
func DefaultMeal(mealType MealType, name string) Meal {
	m := BuildMeal(mealType, map[string]any{})
	if name != "" {
		m.Name = name
	}
	return m
}
