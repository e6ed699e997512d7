package telegram

import (
	"fmt"
	"sort"
	"strings"

	"meal-planner/internal/history"
	"meal-planner/internal/macros"
	"meal-planner/internal/mealplan"
)

func formatPlanMarkdownParts(plan mealplan.MealPlanData) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Weekly Meal Plan*\n\n")

	for _, day := range plan.Days {
		pb.WriteString(fmt.Sprintf("*%s* (%s)\n", day.Day, day.Date))
		if len(day.Meals) == 0 {
			pb.WriteString("_No meals planned_\n\n")
			continue
		}
		for _, m := range day.Meals {
			pb.WriteString(fmt.Sprintf("• %s: %s", mealLabel(m.MealType), m.Name))
			if m.CookTime != "" {
				pb.WriteString(fmt.Sprintf(" (%s)", m.CookTime))
			}
			pb.WriteString("\n")
		}
		if day.DailyNotes != "" {
			pb.WriteString(fmt.Sprintf("_%s_\n", day.DailyNotes))
		}
		pb.WriteString("\n")
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(plan.ShoppingList.Categories) == 0 {
		sb.WriteString("_No shopping list provided_\n")
	}
	categories := make([]string, 0, len(plan.ShoppingList.Categories))
	for c := range plan.ShoppingList.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("*%s*\n", c))
		for _, item := range plan.ShoppingList.Categories[c] {
			sb.WriteString(fmt.Sprintf("• %s\n", item))
		}
	}

	return pb.String(), sb.String()
}

func mealLabel(mt mealplan.MealType) string {
	s := string(mt)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return "📚 No saved plans yet."
	}
	var sb strings.Builder
	sb.WriteString("📚 *Recent Plans*\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s: %s (%s)\n", e.GeneratedAt, e.Summary, e.PlanType))
	}
	return sb.String()
}

func formatValidation(t macros.Target, v macros.Validation) string {
	if v.Valid {
		return fmt.Sprintf("✅ Macros add up: %.0f kcal from macros for a %.0f kcal target.", v.MacroCalories, t.Calories)
	}
	s := macros.SuggestMacros(t.Calories)
	return fmt.Sprintf("⚠️ %s.\nSuggested for %.0f kcal: protein %.0fg, carbs %.0fg, fat %.0fg.",
		v.Message, t.Calories, s.Protein, s.Carbs, s.Fat)
}
