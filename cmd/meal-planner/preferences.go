package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var preferencesCmd = &cobra.Command{
	Use:   "preferences",
	Short: "Inspect and update meal preferences",
}

var preferencesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.ShowPreferences(cmd.Context(), cmd.OutOrStdout())
	},
}

var preferencesSaveCmd = &cobra.Command{
	Use:   "save <file.json>",
	Short: "Validate and store preferences from a JSON file",
	Long:  "Validate and store preferences from a JSON file. Keys left out keep their default.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open preferences file: %w", err)
		}
		defer f.Close()

		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.SavePreferences(cmd.Context(), cmd.OutOrStdout(), f)
	},
}

func init() {
	preferencesCmd.AddCommand(preferencesShowCmd, preferencesSaveCmd)
	rootCmd.AddCommand(preferencesCmd)
}
