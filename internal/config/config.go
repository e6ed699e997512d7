package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in MEAL_PROVIDER.
const (
	ProviderBackend = "backend"
	ProviderGemini  = "gemini"
	ProviderGroq    = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	APIBaseURL  string
	APIToken    string
	Provider    string
	HTTPTimeout time.Duration

	GeminiAPIKey string
	GroqAPIKey   string

	DatabasePath  string
	PlanExportDir string

	LogLevel  string
	LogFormat string

	Port string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	baseURL := strings.TrimRight(os.Getenv("MEAL_API_BASE_URL"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("MEAL_API_BASE_URL environment variable not set")
	}

	provider := getEnv("MEAL_PROVIDER", ProviderBackend)
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")

	switch provider {
	case ProviderBackend:
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown MEAL_PROVIDER %q", provider)
	}

	timeoutSeconds := 60
	if raw := os.Getenv("HTTP_TIMEOUT_SECONDS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be a positive integer, got %q", raw)
		}
		timeoutSeconds = n
	}

	// Telegram Config (Optional for CLI, required for Bot)
	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}
	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		APIBaseURL:             baseURL,
		APIToken:               os.Getenv("MEAL_API_TOKEN"),
		Provider:               provider,
		HTTPTimeout:            time.Duration(timeoutSeconds) * time.Second,
		GeminiAPIKey:           geminiAPIKey,
		GroqAPIKey:             groqAPIKey,
		DatabasePath:           getEnv("DATABASE_PATH", "data/meal-planner.db"),
		PlanExportDir:          getEnv("PLAN_EXPORT_DIR", "data/plans"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		Port:                   getEnv("PORT", "8080"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
