package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meal-planner/internal/shared"
)

// Generation outcomes stored with each metric.
const (
	OutcomeReady     = "ready"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// ExecutionMetric records metadata for a single plan generation.
type ExecutionMetric struct {
	Provider         string
	Model            string
	Outcome          string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Recorder receives one metric per generation.
type Recorder interface {
	Record(ctx context.Context, m ExecutionMetric) error
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_metrics (provider, model, outcome, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Provider, m.Model, m.Outcome, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution metric: %w", err)
	}
	return nil
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
	Cancelled       int
	Failed          int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.now().UTC().AddDate(0, 0, -days).Format(time.DateTime)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
		       SUM(prompt_tokens),
		       SUM(completion_tokens),
		       COUNT(*),
		       SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END)
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`,
		OutcomeCancelled, OutcomeError, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u                  DailyUsage
			prompt, completion sql.NullInt64
		)
		if err := rows.Scan(&u.Date, &prompt, &completion, &u.TotalExecution, &u.Cancelled, &u.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.TotalPrompt = int(prompt.Int64)
		u.TotalCompletion = int(completion.Int64)
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.now().UTC().AddDate(0, 0, -olderThanDays).Format(time.DateTime)
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	return res.RowsAffected()
}

// FromMeta converts generation metadata to an ExecutionMetric.
func FromMeta(meta shared.GenerationMeta, outcome string) ExecutionMetric {
	return ExecutionMetric{
		Provider:         meta.Provider,
		Model:            meta.Usage.Model,
		Outcome:          outcome,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		LatencyMS:        meta.Latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
