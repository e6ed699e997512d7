package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meal-planner/internal/mealplan"
)

// ErrNotFound is returned by SQLiteStore.Get for an unknown id.
var ErrNotFound = errors.New("meal plan not found")

// SQLiteStore is the local mirror of generated plans.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a store on an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Save inserts plan under a new UUID and returns it.
func (s *SQLiteStore) Save(ctx context.Context, plan mealplan.MealPlanData) (string, error) {
	return s.SaveWithRemoteID(ctx, plan, "")
}

// SaveWithRemoteID inserts plan and remembers the id the backend gave it.
func (s *SQLiteStore) SaveWithRemoteID(ctx context.Context, plan mealplan.MealPlanData, remoteID string) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meal_plans (id, remote_id, plan_type, generated_at, meal_count, plan_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, remoteID, plan.PlanType, plan.GeneratedAt, plan.MealCount(), data, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit entries, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, remote_id, plan_type, generated_at, meal_count, created_at
		FROM meal_plans
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			remoteID string
		)
		if err := rows.Scan(&e.ID, &remoteID, &e.PlanType, &e.GeneratedAt, &e.MealCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		e.Summary = fmt.Sprintf("%d meals", e.MealCount)
		if remoteID != "" {
			e.Summary += " (remote " + remoteID + ")"
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get loads one stored plan.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	var (
		rec  Record
		data []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, plan_type, generated_at, meal_count, created_at, plan_data
		FROM meal_plans WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.PlanType, &rec.GeneratedAt, &rec.MealCount, &rec.CreatedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load meal plan %s: %w", id, err)
	}

	if err := json.Unmarshal(data, &rec.Plan); err != nil {
		return Record{}, fmt.Errorf("failed to decode meal plan %s: %w", id, err)
	}
	return rec, nil
}
