// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/modelcard/internal/pipeline"
	"github.com/pdiddy/modelcard/pkg/types"
)

// errRunFailed makes the process exit non-zero after the report is printed.
var errRunFailed = errors.New("model card generation failed")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a model card from a repository and its documentation",
	Long: `Generate ingests the GitHub repository and documentation site, extracts
every model card field, looks up the key publication, and validates the card.

On success the card is written to --output (or stdout). On failure the
diagnostic report is written to stderr and the command exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		github, _ := cmd.Flags().GetString("github")
		docs, _ := cmd.Flags().GetString("docs")
		name, _ := cmd.Flags().GetString("name")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		noEnrich, _ := cmd.Flags().GetBool("no-enrich")

		if github == "" && docs == "" {
			return fmt.Errorf("at least one of --github or --docs is required")
		}
		if format != "yaml" && format != "json" {
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		in := types.RunInputs{GitHubURL: github, DocsURL: docs, Name: name}
		p, err := buildPipeline(cmd.Context(), cfg, in, !noEnrich, logger)
		if err != nil {
			return err
		}

		rc := p.Run(cmd.Context(), types.NewRunContext(in))
		if rc.State != types.StateSuccess {
			if err := writeValue(cmd.ErrOrStderr(), "yaml", pipeline.Report(rc)); err != nil {
				return err
			}
			return errRunFailed
		}

		out := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		if err := writeValue(out, format, rc.Card); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote model card for %s to %s\n", rc.Card.CapabilityName, output)
		}
		return nil
	},
}

// writeValue encodes v as YAML or indented JSON.
func writeValue(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	generateCmd.Flags().String("github", "", "GitHub repository URL")
	generateCmd.Flags().String("docs", "", "documentation site URL")
	generateCmd.Flags().String("name", "", "capability name (default: repository name)")
	generateCmd.Flags().StringP("output", "o", "", "write the card to this file instead of stdout")
	generateCmd.Flags().String("format", "yaml", "output format: yaml or json")
	generateCmd.Flags().Bool("no-enrich", false, "skip the publication search")

	rootCmd.AddCommand(generateCmd)
}
