package macros

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_ApplyRefusedWhileInvalid(t *testing.T) {
	applied := SuggestMacros(2000)
	e := NewEditor(applied)

	bad := Target{Calories: 2500, Protein: 150, Carbs: 200, Fat: 67}
	e.SetDraft(bad)
	assert.Equal(t, bad, e.Draft(), "edits are never blocked")
	assert.False(t, e.Validation().Valid)

	got, err := e.Apply()
	require.ErrorIs(t, err, ErrMacroMismatch)
	assert.Equal(t, applied, got)
	assert.Equal(t, applied, e.Applied())
}

func TestEditor_ApplySuggestionThenApply(t *testing.T) {
	e := NewEditor(Target{})
	e.SetDraft(Target{Calories: 1800, Protein: 10, Carbs: 10, Fat: 10})

	e.ApplySuggestion()
	assert.Equal(t, SuggestMacros(1800), e.Draft())

	got, err := e.Apply()
	require.NoError(t, err)
	assert.Equal(t, SuggestMacros(1800), got)
	assert.Equal(t, got, e.Applied())
}

func TestEditor_NegativeDraftRejected(t *testing.T) {
	e := NewEditor(Target{})
	e.SetDraft(Target{Calories: -10})

	_, err := e.Apply()
	assert.Error(t, err)
	assert.Equal(t, Target{}, e.Applied())
}

func TestEditor_Reset(t *testing.T) {
	applied := SuggestMacros(1500)
	e := NewEditor(applied)
	e.SetDraft(Target{Calories: 1})
	e.Reset()
	assert.Equal(t, applied, e.Draft())
}
