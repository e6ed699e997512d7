package mealplan

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	dayHeading = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*|\*\*).*?\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	mealLine   = regexp.MustCompile(`(?i)^\s*[-*+]\s*(?:\*\*)?(breakfast|lunch|dinner)(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
)

// ParseMarkdown converts a free-text markdown plan into the canonical shape.
// Weekday headings open a day section; "- <mealType>: <details>" lines inside
// it become meals named by the text before the first comma. Markdown carries
// no nutrition, so every meal keeps the zero defaults.
func (n *Normalizer) ParseMarkdown(text string) MealPlanData {
	plan := n.skeleton(PlanTypeMarkdown)

	current := -1
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := dayHeading.FindStringSubmatch(line); m != nil {
			current = weekdayIndex(m[1])
			continue
		}
		if current < 0 {
			continue
		}

		m := mealLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		mealType, _ := ParseMealType(m[1])
		day := &plan.Days[current]
		day.Meals = append(day.Meals, DefaultMeal(mealType, mealName(m[2], len(day.Meals)+1)))
	}
	return plan
}

// mealName is the details text up to the first comma, or "Meal N" when that is empty.
func mealName(details string, position int) string {
	name := details
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "*_"))
	if name == "" {
		return fmt.Sprintf("Meal %d", position)
	}
	return name
}

func weekdayIndex(name string) int {
	name = strings.ToLower(name)
	for i, d := range Weekdays {
		if d == name {
			return i
		}
	}
	return -1
}
