// Package main is the meal-planner command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "meal-planner",
	Short:         "Weekly meal plan generator",
	Long:          "meal-planner generates weekly meal plans, normalizes provider answers into one canonical shape and manages plan history, preferences and recipe folders.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the stderr logger for cfg. cfg may be nil for commands
// that run without configuration.
func newLogger(cfg *config.Config) *zap.Logger {
	lc := logging.Config{Level: "warn", Development: verbose}
	if cfg != nil {
		lc.Level = cfg.LogLevel
		lc.Format = cfg.LogFormat
	}
	if verbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}

// loadApp reads the configuration and wires the application.
func loadApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close application", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return a, cleanup, nil
}
