package macros

import (
	"errors"
	"fmt"
)

// ErrMacroMismatch is returned by Editor.Apply while the draft is invalid.
var ErrMacroMismatch = errors.New("macro targets do not match calorie target")

// Editor holds the applied advanced settings and a free-form draft.
// Draft edits are never blocked; only Apply checks the draft.
type Editor struct {
	applied Target
	draft   Target
}

// NewEditor starts a draft from the currently applied target.
func NewEditor(applied Target) *Editor {
	return &Editor{applied: applied, draft: applied}
}

// Applied returns the last successfully applied target.
func (e *Editor) Applied() Target { return e.applied }

// Draft returns the target being edited.
func (e *Editor) Draft() Target { return e.draft }

// SetDraft replaces the draft.
func (e *Editor) SetDraft(t Target) { e.draft = t }

// Validation validates the current draft.
func (e *Editor) Validation() Validation { return Validate(e.draft) }

// ApplySuggestion replaces the draft macros with SuggestMacros of the draft calories.
func (e *Editor) ApplySuggestion() {
	e.draft = SuggestMacros(e.draft.Calories)
}

// Apply commits the draft. It refuses, leaving the applied target untouched,
// when the draft has negative fields or inconsistent macros.
func (e *Editor) Apply() (Target, error) {
	if err := e.draft.Check(); err != nil {
		return e.applied, err
	}
	if v := Validate(e.draft); !v.Valid {
		return e.applied, fmt.Errorf("%w: %s", ErrMacroMismatch, v.Message)
	}
	e.applied = e.draft
	return e.applied, nil
}

// Reset discards the draft.
func (e *Editor) Reset() { e.draft = e.applied }
