package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"meal-planner/internal/app"
	"meal-planner/internal/mealplan"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Convert a plan file into canonical JSON",
	Long:  "Convert a markdown, HTML or provider JSON plan into the canonical weekly plan. Use - to read stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var (
	parseFormat string
	parseSave   bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "Input format: markdown, html or json (default: from extension)")
	parseCmd.Flags().BoolVar(&parseSave, "save", false, "Store the parsed plan in the local history instead of printing it")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	format := parseFormat
	if format == "" {
		format = formatFromExt(args[0])
	}

	n := mealplan.NewNormalizer()
	var plan mealplan.MealPlanData
	switch format {
	case "markdown", "md":
		plan = n.ParseMarkdown(string(data))
	case "html":
		plan, err = n.ParseHTML(bytes.NewReader(data))
		if err != nil {
			return err
		}
	case "json":
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("input is not a JSON object: %w", err)
		}
		plan = n.Normalize(raw)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if parseSave {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.ImportPlan(cmd.Context(), cmd.OutOrStdout(), plan)
	}
	return app.WriteJSON(cmd.OutOrStdout(), plan)
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	case ".json":
		return "json"
	default:
		return "markdown"
	}
}
