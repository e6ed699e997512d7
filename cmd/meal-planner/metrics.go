package main

import (
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Generation usage metrics",
}

var metricsDays int

var metricsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show daily generation usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.PrintUsage(cmd.Context(), cmd.OutOrStdout(), metricsDays)
	},
}

var cleanupDays int

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old metric records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.CleanupMetrics(cmd.Context(), cmd.OutOrStdout(), cleanupDays)
	},
}

func init() {
	metricsUsageCmd.Flags().IntVar(&metricsDays, "days", 7, "Number of days to report")
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Keep records for the last N days")

	metricsCmd.AddCommand(metricsUsageCmd, metricsCleanupCmd)
	rootCmd.AddCommand(metricsCmd)
}
