package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/shared"
)

const (
	generatePath   = "/ai/simple_meal_plan"
	regeneratePath = "/meal-plan/regenerate"
)

// RawPlan is what a generator hands back before normalization: either a
// decoded JSON payload or markdown text.
type RawPlan struct {
	Payload  map[string]any
	Markdown string
	Usage    shared.TokenUsage
}

// Generator produces one raw weekly plan.
type Generator interface {
	Name() string
	Generate(ctx context.Context, opts Options) (RawPlan, error)
}

// BackendGenerator asks the meal-planner backend for a plan.
type BackendGenerator struct {
	client *apiclient.Client
}

// NewBackendGenerator creates a BackendGenerator on top of client.
func NewBackendGenerator(client *apiclient.Client) *BackendGenerator {
	return &BackendGenerator{client: client}
}

func (g *BackendGenerator) Name() string { return "backend" }

// Generate posts an empty object; the backend reads preferences on its side.
func (g *BackendGenerator) Generate(ctx context.Context, _ Options) (RawPlan, error) {
	var body json.RawMessage
	if err := g.client.Post(ctx, generatePath, struct{}{}, &body); err != nil {
		return RawPlan{}, asGenerationError(err)
	}

	// Any 2xx body that is not a JSON object is a shape error, not a transport one.
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil || resp == nil {
		return RawPlan{}, ErrInvalidResponseFormat
	}

	if ok, _ := resp["success"].(bool); !ok {
		return RawPlan{}, ErrInvalidResponseFormat
	}
	plan, ok := resp["plan"].(map[string]any)
	if !ok {
		return RawPlan{}, ErrInvalidResponseFormat
	}
	return RawPlan{Payload: plan}, nil
}

// asGenerationError converts backend status errors; anything else is
// wrapped unchanged so cancellation stays detectable with errors.Is.
func asGenerationError(err error) error {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return &GenerationError{
			StatusCode: se.StatusCode,
			Message:    se.Message,
			RedirectTo: se.RedirectTo,
		}
	}
	return fmt.Errorf("generation request failed: %w", err)
}
