package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meal-planner/internal/mealplan"
)

const (
	planPrefix = "plan_"
	planSuffix = ".json"
)

// PlanStore provides a file-based export area for normalized plans.
type PlanStore struct {
	basePath string
}

// NewPlanStore creates a new PlanStore and ensures the base directory exists.
func NewPlanStore(basePath string) (*PlanStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &PlanStore{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

// getPlanPath returns the full path for a plan generated at generatedAt.
func (s *PlanStore) getPlanPath(generatedAt string) string {
	return filepath.Join(s.basePath, planPrefix+sanitizeTimestamp(generatedAt)+planSuffix)
}

// Save writes plan to plan_<generated_at>.json and returns the file path.
// A plan with the same timestamp is overwritten.
func (s *PlanStore) Save(plan mealplan.MealPlanData) (string, error) {
	if plan.GeneratedAt == "" {
		return "", fmt.Errorf("plan has no generated_at timestamp")
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	filePath := s.getPlanPath(plan.GeneratedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	return filePath, nil
}

// Load reads the plan generated at generatedAt.
func (s *PlanStore) Load(generatedAt string) (*mealplan.MealPlanData, error) {
	data, err := os.ReadFile(s.getPlanPath(generatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan mealplan.MealPlanData
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Exists checks whether a plan generated at generatedAt was exported.
func (s *PlanStore) Exists(generatedAt string) bool {
	_, err := os.Stat(s.getPlanPath(generatedAt))
	return !os.IsNotExist(err)
}

// List returns the exported file names, newest first.
func (s *PlanStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, planPrefix+"*"+planSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to glob plan files: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	// RFC3339 UTC timestamps sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Prune keeps the newest keep exports and removes the rest.
func (s *PlanStore) Prune(keep int) (int, error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	removed := 0
	for i := keep; i < len(names); i++ {
		path := filepath.Join(s.basePath, names[i])
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
