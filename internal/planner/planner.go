// Package planner drives weekly plan generation: it asks a Generator for a
// raw plan, normalizes it, and optionally saves it to history.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/logging"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/preferences"
	"meal-planner/internal/shared"
)

// Status is the outcome of a generation that did not fail.
type Status string

const (
	StatusReady     Status = "ready"
	StatusCancelled Status = "cancelled"
)

// Result is returned by Generate. Plan is set only when Status is StatusReady.
type Result struct {
	Status Status
	Plan   mealplan.MealPlanData
}

// Cancelled reports whether the caller cancelled the generation.
func (r Result) Cancelled() bool { return r.Status == StatusCancelled }

// Options tune one generation.
type Options struct {
	// SaveToHistory stores the normalized plan through the history writer.
	SaveToHistory bool
	// Preferences feed the prompt of direct LLM generators. The backend
	// reads its own copy and ignores them.
	Preferences *preferences.Preferences
	// Notes is free text appended to the prompt.
	Notes string
}

// HistoryWriter persists generated plans.
type HistoryWriter interface {
	Save(ctx context.Context, plan mealplan.MealPlanData) (string, error)
}

// Planner handles the generation of meal plans.
type Planner struct {
	client     *apiclient.Client
	generator  Generator
	normalizer *mealplan.Normalizer
	history    HistoryWriter
	recorder   metrics.Recorder
	logger     *zap.Logger
}

// NewPlanner creates a new Planner. client is used for meal regeneration;
// history and recorder may be nil.
func NewPlanner(client *apiclient.Client, gen Generator, history HistoryWriter, recorder metrics.Recorder, logger *zap.Logger) *Planner {
	return &Planner{
		client:     client,
		generator:  gen,
		normalizer: mealplan.NewNormalizer(),
		history:    history,
		recorder:   recorder,
		logger:     logging.OrNop(logger),
	}
}

// Generate produces a canonical weekly plan. There is no retry: a failed
// or cancelled generation has to be triggered again by the caller.
//
// Cancelling ctx aborts the in-flight request and yields a StatusCancelled
// result with a nil error. Backend refusals come back as *GenerationError and
// malformed success bodies as ErrInvalidResponseFormat.
func (p *Planner) Generate(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()
	raw, err := p.generator.Generate(ctx, opts)
	meta := shared.GenerationMeta{
		Provider: p.generator.Name(),
		Usage:    raw.Usage,
		Latency:  time.Since(start),
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			p.logger.Info("meal plan generation cancelled", zap.String("provider", meta.Provider))
			p.record(ctx, meta, metrics.OutcomeCancelled)
			return Result{Status: StatusCancelled}, nil
		}
		p.logger.Warn("meal plan generation failed", zap.String("provider", meta.Provider), zap.Error(err))
		p.record(ctx, meta, metrics.OutcomeError)
		return Result{}, err
	}

	plan, err := p.normalize(raw)
	if err != nil {
		p.record(ctx, meta, metrics.OutcomeError)
		return Result{}, err
	}
	p.record(ctx, meta, metrics.OutcomeReady)

	p.logger.Info("meal plan generated",
		zap.String("provider", meta.Provider),
		zap.Int("meals", plan.MealCount()),
		zap.Duration("latency", meta.Latency),
	)

	if opts.SaveToHistory && p.history != nil {
		if id, err := p.history.Save(ctx, plan); err != nil {
			p.logger.Warn("failed to save meal plan to history", zap.Error(err))
		} else {
			p.logger.Debug("meal plan saved to history", zap.String("id", id))
		}
	}

	return Result{Status: StatusReady, Plan: plan}, nil
}

func (p *Planner) normalize(raw RawPlan) (mealplan.MealPlanData, error) {
	switch {
	case raw.Payload != nil:
		return p.normalizer.Normalize(raw.Payload), nil
	case raw.Markdown != "":
		plan := p.normalizer.ParseMarkdown(raw.Markdown)
		if plan.MealCount() == 0 {
			return mealplan.MealPlanData{}, ErrInvalidResponseFormat
		}
		return plan, nil
	default:
		return mealplan.MealPlanData{}, ErrInvalidResponseFormat
	}
}

func (p *Planner) record(ctx context.Context, meta shared.GenerationMeta, outcome string) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(context.WithoutCancel(ctx), metrics.FromMeta(meta, outcome)); err != nil {
		p.logger.Warn("failed to record generation metric", zap.Error(err))
	}
}

// RegenerateMeal asks the backend to replace one meal of the current plan.
// Any 2xx answer is success; the refreshed plan is fetched separately.
func (p *Planner) RegenerateMeal(ctx context.Context, day, mealType string) error {
	if !mealplan.IsWeekday(day) {
		return fmt.Errorf("invalid day %q: expected a weekday name", day)
	}
	mt, ok := mealplan.ParseMealType(mealType)
	if !ok {
		return fmt.Errorf("invalid meal type %q: expected breakfast, lunch or dinner", mealType)
	}
	if p.client == nil {
		return errors.New("meal regeneration needs a backend client")
	}

	body := map[string]string{"day": day, "mealType": string(mt)}
	if err := p.client.Post(ctx, regeneratePath, body, nil); err != nil {
		return asGenerationError(err)
	}
	p.logger.Info("meal regenerated", zap.String("day", day), zap.String("meal_type", string(mt)))
	return nil
}
