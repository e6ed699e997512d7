package mealplan

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FieldRule maps provider keys, in priority order, onto one canonical field.
// A source may be a dotted path into a nested object ("nutrition.calories").
// Missing, null and blank values, and values that do not coerce to the
// field's kind, fall through to the next source and finally to Default.
type FieldRule struct {
	Field   string
	Sources []string
	Default any
}

// MealFields is the source table for Meal. The name default depends on the
// meal type and is filled in by the caller.
var MealFields = []FieldRule{
	{Field: "name", Sources: []string{"name", "title"}, Default: ""},
	{Field: "cuisine", Sources: []string{"cuisine", "cuisine_type"}, Default: "International"},
	{Field: "is_vegetarian", Sources: []string{"is_vegetarian", "vegetarian"}, Default: false},
	{Field: "is_vegan", Sources: []string{"is_vegan", "vegan"}, Default: false},
	{Field: "ingredients", Sources: []string{"ingredients"}, Default: []string{}},
	{Field: "instructions", Sources: []string{"instructions", "steps"}, Default: []string{}},
	{Field: "prep_time", Sources: []string{"prep_time", "prepTime", "cookingTime"}, Default: "15 mins"},
	{Field: "cook_time", Sources: []string{"cook_time", "cookTime", "cookingTime"}, Default: "30 mins"},
	{Field: "servings", Sources: []string{"servings"}, Default: 2},
	{Field: "difficulty", Sources: []string{"difficulty"}, Default: "beginner"},
}

// NutritionFields is the source table for NutritionInfo.
var NutritionFields = []FieldRule{
	{Field: "calories", Sources: []string{"calories", "nutrition.calories"}, Default: 0.0},
	{Field: "protein", Sources: []string{"protein", "nutrition.protein"}, Default: "0g"},
	{Field: "carbs", Sources: []string{"carbs", "nutrition.carbs"}, Default: "0g"},
	{Field: "fat", Sources: []string{"fat", "nutrition.fat"}, Default: "0g"},
}

type fieldTable map[string]FieldRule

func indexRules(rules []FieldRule) fieldTable {
	t := make(fieldTable, len(rules))
	for _, r := range rules {
		t[r.Field] = r
	}
	return t
}

var (
	mealRules      = indexRules(MealFields)
	nutritionRules = indexRules(NutritionFields)
)

// resolve returns the first source value that coerce accepts. A present
// value of the wrong kind falls through to the next source like a missing one.
func resolve[T any](r FieldRule, raw map[string]any, coerce func(any) (T, bool)) (T, bool) {
	for _, src := range r.Sources {
		v, ok := lookupPath(raw, src)
		if !ok {
			continue
		}
		if out, ok := coerce(v); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

func lookupPath(raw map[string]any, path string) (any, bool) {
	cur := any(raw)
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	if s, ok := cur.(string); ok && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return cur, true
}

func (t fieldTable) str(raw map[string]any, field string) string {
	r := t[field]
	if s, ok := resolve(r, raw, asString); ok {
		return s
	}
	s, _ := r.Default.(string)
	return s
}

// text is str restricted to real strings; numbers and booleans fall through.
func (t fieldTable) text(raw map[string]any, field string) string {
	r := t[field]
	if s, ok := resolve(r, raw, asText); ok {
		return s
	}
	s, _ := r.Default.(string)
	return s
}

func (t fieldTable) number(raw map[string]any, field string) float64 {
	r := t[field]
	if n, ok := resolve(r, raw, asNumber); ok {
		return n
	}
	n, _ := asNumber(r.Default)
	return n
}

func (t fieldTable) boolean(raw map[string]any, field string) bool {
	r := t[field]
	if b, ok := resolve(r, raw, asBool); ok {
		return b
	}
	b, _ := r.Default.(bool)
	return b
}

func (t fieldTable) list(raw map[string]any, field string) []string {
	l, ok := resolve(t[field], raw, func(v any) ([]string, bool) {
		l := asList(v)
		return l, len(l) > 0
	})
	if !ok {
		return []string{}
	}
	return l
}

// positiveInt resolves a count; zero or negative values are treated as missing.
func (t fieldTable) positiveInt(raw map[string]any, field string) int {
	r := t[field]
	n, ok := resolve(r, raw, func(v any) (float64, bool) {
		n, ok := asNumber(v)
		return n, ok && n >= 1
	})
	if ok {
		return int(math.Round(n))
	}
	d, _ := r.Default.(int)
	return d
}

// grams resolves a macro into its display form; bare numbers gain a "g".
func (t fieldTable) grams(raw map[string]any, field string) string {
	r := t[field]
	if s, ok := resolve(r, raw, asGrams); ok {
		return s
	}
	s, _ := r.Default.(string)
	return s
}

// asGrams accepts numbers and strings that start with one ("30", "30g", "30 g").
func asGrams(v any) (string, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if !leadingNumber.MatchString(s) {
			return "", false
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s + "g", true
		}
		return s, true
	}
	n, ok := asNumber(v)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + "g", true
}

var leadingNumber = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)`)

func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		m := leadingNumber.FindStringSubmatch(x)
		if m == nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(m[1], 64)
		return f, err == nil
	}
	return 0, false
}

// asString accepts strings and numbers ("cookingTime": 30).
func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case float64, int, int64, json.Number:
		return fmt.Sprint(x), true
	}
	return "", false
}

func asText(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	case float64:
		return x != 0, true
	}
	return false, false
}

// asList coerces a value to a list of strings. A bare string becomes a
// single-element list. Object elements contribute their name, item or text field.
func asList(v any) []string {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
	case []string:
		return compact(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, el := range x {
			switch e := el.(type) {
			case map[string]any:
				for _, key := range []string{"name", "item", "text", "step"} {
					if s, ok := e[key].(string); ok && strings.TrimSpace(s) != "" {
						out = append(out, strings.TrimSpace(s))
						break
					}
				}
			default:
				if s, ok := asString(e); ok && s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
