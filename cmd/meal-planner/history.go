package main

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved meal plans",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans stored by the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.ListHistory(cmd.Context(), cmd.OutOrStdout())
	},
}

var historyLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "List plans mirrored in the local database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.ListLocalHistory(cmd.Context(), cmd.OutOrStdout(), historyLimit)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.ShowHistory(cmd.Context(), cmd.OutOrStdout(), args[0], historyShowLocal, historyShowJSON)
	},
}

var (
	historyLimit     int
	historyShowLocal bool
	historyShowJSON  bool
)

func init() {
	historyLocalCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of plans to list")
	historyShowCmd.Flags().BoolVar(&historyShowLocal, "local", false, "Read from the local mirror")
	historyShowCmd.Flags().BoolVar(&historyShowJSON, "json", false, "Print the canonical plan as JSON")

	historyCmd.AddCommand(historyListCmd, historyLocalCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
