package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/config"
	"meal-planner/internal/logging"
)

func newTestGroq(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGroqClient(&config.Config{GroqAPIKey: "gsk-test"}, logging.NewNop())
	c.endpoint = srv.URL
	return c
}

func TestGroqClient_GenerateContent(t *testing.T) {
	c := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, groqModel, body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		_, _ = w.Write([]byte(`{
			"model": "llama-test",
			"choices": [{"message": {"content": "{\"monday\": {}}"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 30, "total_tokens": 42}
		}`))
	})

	resp, err := c.GenerateContent(context.Background(), "plan my week")
	require.NoError(t, err)
	assert.Equal(t, `{"monday": {}}`, resp.Content)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 30, resp.Usage.CompletionTokens)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
	assert.Equal(t, "llama-test", resp.Usage.Model)
}

func TestGroqClient_Errors(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		c := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})
		_, err := c.GenerateContent(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=429")
	})

	t.Run("NoChoices", func(t *testing.T) {
		c := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		})
		_, err := c.GenerateContent(context.Background(), "x")
		assert.EqualError(t, err, "no content generated")
	})
}

func TestNewFromConfig_Backend(t *testing.T) {
	_, err := NewFromConfig(context.Background(), &config.Config{Provider: config.ProviderBackend}, nil)
	assert.Error(t, err)
}
