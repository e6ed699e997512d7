package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"meal-planner/internal/app"
	"meal-planner/internal/macros"
)

var macrosCmd = &cobra.Command{
	Use:   "macros",
	Short: "Check and suggest macro targets",
}

var macrosValidateCmd = &cobra.Command{
	Use:   "validate <calories> <protein> <carbs> <fat>",
	Short: "Check that macros add up to the calorie target",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var vals [4]float64
		for i, arg := range args {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("%q is not a number", arg)
			}
			vals[i] = v
		}
		t := macros.Target{Calories: vals[0], Protein: vals[1], Carbs: vals[2], Fat: vals[3]}
		if err := t.Check(); err != nil {
			return err
		}
		app.PrintValidation(cmd.OutOrStdout(), t)
		return nil
	},
}

var macrosSuggestCmd = &cobra.Command{
	Use:   "suggest <calories>",
	Short: "Suggest a 30/40/30 macro split",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kcal, err := strconv.ParseFloat(args[0], 64)
		if err != nil || kcal <= 0 {
			return fmt.Errorf("calories must be a positive number, got %q", args[0])
		}
		s := macros.SuggestMacros(kcal)
		fmt.Fprintf(cmd.OutOrStdout(), "protein %.0fg, carbs %.0fg, fat %.0fg\n", s.Protein, s.Carbs, s.Fat)
		return nil
	},
}

func init() {
	macrosCmd.AddCommand(macrosValidateCmd, macrosSuggestCmd)
	rootCmd.AddCommand(macrosCmd)
}
