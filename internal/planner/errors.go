package planner

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidResponseFormat is returned when a 2xx generation answer does not
// carry success=true and an object plan.
var ErrInvalidResponseFormat = errors.New("Invalid response format")

// GenerationError is a non-2xx answer from the generation endpoint.
type GenerationError struct {
	StatusCode int
	Message    string
	RedirectTo string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("meal plan generation failed (status %d): %s", e.StatusCode, e.Message)
}

// PreferencesRequired reports whether the backend refused to generate
// because the user has not set preferences yet. Callers send the user to
// RedirectTo instead of showing a failure.
func (e *GenerationError) PreferencesRequired() bool {
	return e.StatusCode == http.StatusBadRequest && e.RedirectTo != ""
}
