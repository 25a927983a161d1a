// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/modelcard/internal/pipeline"
	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Coerce and validate a raw field map without calling a model",
	Long: `Validate reads a YAML or JSON object of raw field values, applies the
same coercion, vocabulary checks, and schema validation as generate, and
prints the finished card. When any issue is found the issues and the partial
record are printed instead and the command exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		rec, issues := validate.Validate(schema.Default(), raw)
		if len(issues) == 0 && rec.Validated {
			return writeValue(cmd.OutOrStdout(), format, rec.Card)
		}

		report := struct {
			Issues  []pipeline.Issue `json:"issues" yaml:"issues"`
			Partial map[string]any   `json:"partial" yaml:"partial"`
		}{Partial: rec.Fields}
		for _, k := range validate.SortedIssueKeys(issues) {
			report.Issues = append(report.Issues, pipeline.Issue{Key: k, Message: issues[k]})
		}
		if err := writeValue(cmd.OutOrStdout(), format, report); err != nil {
			return err
		}
		return fmt.Errorf("%d validation issue(s)", len(issues))
	},
}

func init() {
	validateCmd.Flags().String("format", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(validateCmd)
}
