package mealplan

import "strings"

// MealType is the slot a meal occupies in a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes are the slots the normalizer converts, in display order.
// Snacks are never converted.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// Weekdays is the fixed Monday-first order of a plan.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DaysInWeek is the length of every normalized plan.
const DaysInWeek = 7

// Plan types stamped on MealPlanData.
const (
	PlanTypeSimple   = "simple"
	PlanTypeMarkdown = "markdown"
)

// NutritionInfo is per-meal (or aggregate) nutrition. Macros are display
// strings such as "12g".
type NutritionInfo struct {
	Calories float64 `json:"calories"`
	Protein  string  `json:"protein"`
	Carbs    string  `json:"carbs"`
	Fat      string  `json:"fat"`
}

// Meal is one meal of a day.
type Meal struct {
	Name         string        `json:"name"`
	MealType     MealType      `json:"meal_type"`
	Cuisine      string        `json:"cuisine"`
	IsVegetarian bool          `json:"is_vegetarian"`
	IsVegan      bool          `json:"is_vegan"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []string      `json:"instructions"`
	Nutrition    NutritionInfo `json:"nutrition"`
	PrepTime     string        `json:"prep_time"`
	CookTime     string        `json:"cook_time"`
	Servings     int           `json:"servings"`
	Difficulty   string        `json:"difficulty"`
}

// MealDay is one day of the week.
type MealDay struct {
	Day        string `json:"day"`
	Date       string `json:"date"`
	Meals      []Meal `json:"meals"`
	DailyNotes string `json:"daily_notes,omitempty"`
}

// ShoppingList is the aggregate shopping list of a plan.
type ShoppingList struct {
	Categories    map[string][]string `json:"categories"`
	EstimatedCost float64             `json:"estimated_cost"`
}

// MealInclusions records which slots a plan covers.
type MealInclusions struct {
	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`
	Snacks    bool `json:"snacks"`
}

// NutritionSummary aggregates nutrition across the plan.
type NutritionSummary struct {
	DailyAverage   NutritionInfo  `json:"daily_average"`
	WeeklyTotals   NutritionInfo  `json:"weekly_totals"`
	MealInclusions MealInclusions `json:"meal_inclusions"`
}

// MealPlanData is the canonical weekly plan shared with the rest of the
// application. Days always holds DaysInWeek entries, Monday first.
type MealPlanData struct {
	Days             []MealDay        `json:"days"`
	ShoppingList     ShoppingList     `json:"shopping_list"`
	NutritionSummary NutritionSummary `json:"nutrition_summary"`
	GeneratedAt      string           `json:"generated_at"`
	PreferencesUsed  map[string]any   `json:"preferences_used"`
	PlanType         string           `json:"plan_type"`
}

// MealCount returns the number of meals across all days.
func (p MealPlanData) MealCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Meals)
	}
	return n
}

// ZeroNutrition is the nutrition value used wherever nothing was supplied.
func ZeroNutrition() NutritionInfo {
	return NutritionInfo{Calories: 0, Protein: "0g", Carbs: "0g", Fat: "0g"}
}

// DefaultShoppingList is emitted on every plan; nothing is aggregated.
func DefaultShoppingList() ShoppingList {
	return ShoppingList{Categories: map[string][]string{}, EstimatedCost: 0}
}

// DefaultNutritionSummary is emitted on every plan; meal nutrition is not summed.
func DefaultNutritionSummary() NutritionSummary {
	return NutritionSummary{
		DailyAverage: ZeroNutrition(),
		WeeklyTotals: ZeroNutrition(),
		MealInclusions: MealInclusions{
			Breakfast: true,
			Lunch:     true,
			Dinner:    true,
			Snacks:    false,
		},
	}
}

// IsWeekday reports whether name is a weekday, ignoring case.
func IsWeekday(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range Weekdays {
		if d == name {
			return true
		}
	}
	return false
}

// ParseMealType accepts breakfast, lunch or dinner in any case.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case Breakfast:
		return Breakfast, true
	case Lunch:
		return Lunch, true
	case Dinner:
		return Dinner, true
	}
	return "", false
}

func displayDay(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
