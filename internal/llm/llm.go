package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewFromConfig returns the text generator for cfg.Provider.
// The backend provider has no direct LLM and returns an error.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	case config.ProviderGroq:
		return NewGroqClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("provider %q has no direct text generator", cfg.Provider)
	}
}
