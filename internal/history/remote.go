// Package history stores generated plans: remotely through the backend and
// locally in a SQLite mirror used for offline listing.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/logging"
	"meal-planner/internal/mealplan"
)

const historyPath = "/api/meal-history"

// Entry is one stored plan as listed by a store.
type Entry struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	GeneratedAt string `json:"generated_at,omitempty"`
	PlanType    string `json:"plan_type"`
	Summary     string `json:"summary,omitempty"`
	MealCount   int    `json:"meal_count,omitempty"`
}

// Record is a stored plan together with its canonical content.
type Record struct {
	Entry
	Plan mealplan.MealPlanData `json:"meal_plan"`
}

// RemoteStore is the backend history accessor.
type RemoteStore struct {
	client     *apiclient.Client
	normalizer *mealplan.Normalizer
	logger     *zap.Logger
}

// NewRemoteStore creates a RemoteStore.
func NewRemoteStore(client *apiclient.Client, normalizer *mealplan.Normalizer, logger *zap.Logger) *RemoteStore {
	if normalizer == nil {
		normalizer = mealplan.NewNormalizer()
	}
	return &RemoteStore{client: client, normalizer: normalizer, logger: logging.OrNop(logger)}
}

type saveRequest struct {
	MealPlan    mealplan.MealPlanData `json:"meal_plan"`
	GeneratedAt string                `json:"generated_at"`
	PlanType    string                `json:"plan_type"`
}

// Save stores plan and returns the id the backend assigned, if any.
func (s *RemoteStore) Save(ctx context.Context, plan mealplan.MealPlanData) (string, error) {
	var resp map[string]any
	err := s.client.Post(ctx, historyPath, saveRequest{
		MealPlan:    plan,
		GeneratedAt: plan.GeneratedAt,
		PlanType:    plan.PlanType,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to save meal plan to history: %w", err)
	}

	id := idString(resp["id"])
	if id == "" {
		if inner, ok := resp["history"].(map[string]any); ok {
			id = idString(inner["id"])
		}
	}
	s.logger.Debug("meal plan saved remotely", zap.String("id", id))
	return id, nil
}

type remoteEntry struct {
	ID          any    `json:"id"`
	CreatedAt   string `json:"created_at"`
	GeneratedAt string `json:"generated_at"`
	PlanType    string `json:"plan_type"`
	Summary     string `json:"summary"`
}

// List returns the stored plans, newest first as the backend orders them.
// Both a bare array and an {"history": [...]} envelope are accepted.
func (s *RemoteStore) List(ctx context.Context) ([]Entry, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, historyPath, &raw); err != nil {
		return nil, fmt.Errorf("failed to list meal history: %w", err)
	}

	var items []remoteEntry
	if err := json.Unmarshal(raw, &items); err != nil {
		var env struct {
			History []remoteEntry `json:"history"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("failed to decode meal history: %w", err)
		}
		items = env.History
	}

	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, Entry{
			ID:          idString(it.ID),
			CreatedAt:   it.CreatedAt,
			GeneratedAt: it.GeneratedAt,
			PlanType:    it.PlanType,
			Summary:     it.Summary,
		})
	}
	return entries, nil
}

// Get fetches one plan. The stored meal_plan is provider-native and goes
// through the same normalizer as a live generation.
func (s *RemoteStore) Get(ctx context.Context, id string) (Record, error) {
	var resp map[string]any
	if err := s.client.Get(ctx, historyPath+"/"+url.PathEscape(id), &resp); err != nil {
		return Record{}, fmt.Errorf("failed to fetch meal history %s: %w", id, err)
	}
	if inner, ok := resp["history"].(map[string]any); ok {
		resp = inner
	}

	rawPlan, _ := resp["meal_plan"].(map[string]any)
	plan := s.normalizer.Normalize(rawPlan)
	if pt, ok := resp["plan_type"].(string); ok && pt != "" {
		plan.PlanType = pt
	}
	if ga, ok := resp["generated_at"].(string); ok && ga != "" {
		plan.GeneratedAt = ga
	}

	rec := Record{Plan: plan}
	rec.ID = idString(resp["id"])
	if rec.ID == "" {
		rec.ID = id
	}
	rec.CreatedAt, _ = resp["created_at"].(string)
	rec.GeneratedAt = plan.GeneratedAt
	rec.PlanType = plan.PlanType
	rec.MealCount = plan.MealCount()
	return rec, nil
}

// idString accepts string or numeric JSON ids.
func idString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	}
	return ""
}
