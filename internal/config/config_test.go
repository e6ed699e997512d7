package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MEAL_API_BASE_URL", "MEAL_API_TOKEN", "MEAL_PROVIDER", "GEMINI_API_KEY", "GROQ_API_KEY",
		"HTTP_TIMEOUT_SECONDS", "DATABASE_PATH", "PLAN_EXPORT_DIR", "LOG_LEVEL", "LOG_FORMAT", "PORT",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL", "TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_API_BASE_URL", "http://api.test/")
		t.Setenv("MEAL_API_TOKEN", "token")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "1, 2,3")
		t.Setenv("ADMIN_TELEGRAM_ID", "42")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://api.test", cfg.APIBaseURL)
		assert.Equal(t, "token", cfg.APIToken)
		assert.Equal(t, ProviderBackend, cfg.Provider)
		assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, "data/meal-planner.db", cfg.DatabasePath)
		assert.Equal(t, []int64{1, 2, 3}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, int64(42), cfg.AdminTelegramID)
	})

	t.Run("MissingBaseURL", func(t *testing.T) {
		clearEnv(t)

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "MEAL_API_BASE_URL environment variable not set", err.Error())
	})

	t.Run("GeminiProviderNeedsKey", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_API_BASE_URL", "http://api.test")
		t.Setenv("MEAL_PROVIDER", ProviderGemini)

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GEMINI_API_KEY environment variable not set", err.Error())
	})

	t.Run("GroqProviderNeedsKey", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_API_BASE_URL", "http://api.test")
		t.Setenv("MEAL_PROVIDER", ProviderGroq)

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GROQ_API_KEY environment variable not set", err.Error())
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_API_BASE_URL", "http://api.test")
		t.Setenv("MEAL_PROVIDER", "openai")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("InvalidTimeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_API_BASE_URL", "http://api.test")
		t.Setenv("HTTP_TIMEOUT_SECONDS", "soon")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("InvalidAllowedIDs", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MEAL_API_BASE_URL", "http://api.test")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "1,abc")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})
}
