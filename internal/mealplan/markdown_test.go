package mealplan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdown_Basic(t *testing.T) {
	plan := testNormalizer().ParseMarkdown("# Monday\n- breakfast: Oatmeal, with berries\n")

	assertWeekShape(t, plan)
	assert.Equal(t, PlanTypeMarkdown, plan.PlanType)
	require.Len(t, plan.Days[0].Meals, 1)

	m := plan.Days[0].Meals[0]
	assert.Equal(t, "Oatmeal", m.Name)
	assert.Equal(t, Breakfast, m.MealType)
	assert.Equal(t, ZeroNutrition(), m.Nutrition)
	assert.Equal(t, 2, m.Servings)
	assert.Equal(t, "International", m.Cuisine)
}

func TestParseMarkdown_HeadingVariants(t *testing.T) {
	text := strings.Join([]string{
		"Here is your plan!",
		"- lunch: ignored before any day",
		"## Day 1: Monday",
		"* **Breakfast:** Greek yogurt, honey",
		"+ Lunch: Lentil soup",
		"**Wednesday**",
		"- dinner: Stir fry, tofu and greens",
		"- snack: Apple",
		"### SUNDAY",
		"- Dinner:",
	}, "\n")

	plan := testNormalizer().ParseMarkdown(text)
	assertWeekShape(t, plan)

	mon := plan.Days[0].Meals
	require.Len(t, mon, 2)
	assert.Equal(t, "Greek yogurt", mon[0].Name)
	assert.Equal(t, Lunch, mon[1].MealType)
	assert.Equal(t, "Lentil soup", mon[1].Name)

	assert.Empty(t, plan.Days[1].Meals)

	wed := plan.Days[2].Meals
	require.Len(t, wed, 1)
	assert.Equal(t, "Stir fry", wed[0].Name)

	sun := plan.Days[6].Meals
	require.Len(t, sun, 1)
	assert.Equal(t, "Meal 1", sun[0].Name)
}

func TestParseMarkdown_DatesStayPositional(t *testing.T) {
	plan := testNormalizer().ParseMarkdown("# Friday\n- dinner: Fish\n")
	assert.Equal(t, "Friday", plan.Days[4].Day)
	assert.Equal(t, "2025-03-16", plan.Days[4].Date)
	assert.Equal(t, "Fish", plan.Days[4].Meals[0].Name)
}

func TestParseMarkdown_VeryLongLine(t *testing.T) {
	text := "# Monday\n- breakfast: Oats\n" + strings.Repeat("x", 2<<20) + "\n# Friday\r\n- dinner: Fish\r\n"
	plan := testNormalizer().ParseMarkdown(text)

	require.Len(t, plan.Days[0].Meals, 1)
	require.Len(t, plan.Days[4].Meals, 1, "parsing continues past a line over 1 MiB")
	assert.Equal(t, "Fish", plan.Days[4].Meals[0].Name)
}

func TestParseMarkdown_Empty(t *testing.T) {
	plan := testNormalizer().ParseMarkdown("")
	assertWeekShape(t, plan)
	assert.Zero(t, plan.MealCount())
}

func TestMealName(t *testing.T) {
	assert.Equal(t, "Oatmeal", mealName("Oatmeal, with berries", 1))
	assert.Equal(t, "Toast", mealName("**Toast**", 1))
	assert.Equal(t, "Meal 3", mealName(" , nothing", 3))
}
