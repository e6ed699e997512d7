package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/preferences"
)

//go:embed plan_prompt.md
var planPrompt string

var planTemplate = template.Must(template.New("plan").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(planPrompt))

type planPromptData struct {
	WeekStart      string
	HouseholdSize  int
	CookingSkill   string
	MaxCookingTime int
	Budget         string
	Restrictions   []string
	Allergies      []string
	Cuisines       []string
	Calories       float64
	Protein        float64
	Carbs          float64
	Fat            float64
	MealTypes      []string
	Notes          string
}

// LLMGenerator asks a language model for the plan directly.
type LLMGenerator struct {
	name    string
	textGen llm.TextGenerator
	now     func() time.Time
}

// NewLLMGenerator creates a generator named after its provider.
func NewLLMGenerator(name string, textGen llm.TextGenerator) *LLMGenerator {
	return &LLMGenerator{name: name, textGen: textGen, now: time.Now}
}

func (g *LLMGenerator) Name() string { return g.name }

// Generate prompts the model. A JSON object answer becomes the payload;
// anything else is kept as markdown for the markdown parser.
func (g *LLMGenerator) Generate(ctx context.Context, opts Options) (RawPlan, error) {
	prompt, err := g.buildPrompt(opts)
	if err != nil {
		return RawPlan{}, err
	}

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return RawPlan{}, fmt.Errorf("failed to generate meal plan from LLM: %w", err)
	}

	content := stripCodeFence(resp.Content)
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err == nil && payload != nil {
		return RawPlan{Payload: payload, Usage: resp.Usage}, nil
	}
	return RawPlan{Markdown: resp.Content, Usage: resp.Usage}, nil
}

func (g *LLMGenerator) buildPrompt(opts Options) (string, error) {
	prefs := preferences.Defaults()
	if opts.Preferences != nil {
		prefs = *opts.Preferences
	}

	var mealTypes []string
	for _, mt := range prefs.MealTypes() {
		mealTypes = append(mealTypes, string(mt))
	}
	if len(mealTypes) == 0 {
		for _, mt := range mealplan.MealTypes {
			mealTypes = append(mealTypes, string(mt))
		}
	}

	data := planPromptData{
		WeekStart:      g.now().Format("Monday, 2 January 2006"),
		HouseholdSize:  prefs.HouseholdSize,
		CookingSkill:   prefs.CookingSkillLevel,
		MaxCookingTime: prefs.MaxCookingTime,
		Budget:         prefs.BudgetLevel,
		Restrictions:   prefs.DietaryRestrictions,
		Allergies:      prefs.Allergies,
		Cuisines:       prefs.CuisinePreferences,
		Calories:       prefs.NutritionTargets.Calories,
		Protein:        prefs.NutritionTargets.Protein,
		Carbs:          prefs.NutritionTargets.Carbs,
		Fat:            prefs.NutritionTargets.Fat,
		MealTypes:      mealTypes,
		Notes:          strings.TrimSpace(opts.Notes),
	}

	var buf bytes.Buffer
	if err := planTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render plan prompt: %w", err)
	}
	return buf.String(), nil
}

// stripCodeFence removes a surrounding ```json fence some models add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
