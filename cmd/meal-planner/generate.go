package main

import (
	"github.com/spf13/cobra"

	"meal-planner/internal/app"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a weekly meal plan",
	Long:  "Generate a weekly meal plan with the configured provider. Ctrl-C cancels the generation.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <day> <breakfast|lunch|dinner>",
	Short: "Replace one meal of the current plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegenerate,
}

var (
	generateNotes  string
	generateExport bool
	generateNoSave bool
	generateKeep   int
)

func init() {
	generateCmd.Flags().StringVarP(&generateNotes, "notes", "n", "", "Extra instructions for the planner")
	generateCmd.Flags().BoolVar(&generateExport, "export", false, "Write the plan to the export directory")
	generateCmd.Flags().IntVar(&generateKeep, "keep", 0, "With --export, keep only the N newest exports")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "Do not save the plan to history")

	rootCmd.AddCommand(generateCmd, regenerateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, cleanup, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return a.GenerateMealPlan(cmd.Context(), cmd.OutOrStdout(), app.GenerateRequest{
		Notes:       generateNotes,
		Export:      generateExport,
		Save:        !generateNoSave,
		KeepExports: generateKeep,
	})
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	a, cleanup, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return a.RegenerateMeal(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
}
