// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/internal/validate"
)

// fieldView is the printable form of a schema.FieldSpec.
type fieldView struct {
	Name        string   `json:"name" yaml:"name"`
	Shape       string   `json:"shape" yaml:"shape"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Default     string   `json:"default,omitempty" yaml:"default,omitempty"`
	Allowed     []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`
	Fallback    string   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the model card field registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := schema.Default()
		if asCUE, _ := cmd.Flags().GetBool("cue"); asCUE {
			_, err := fmt.Fprint(cmd.OutOrStdout(), validate.CUESchema(s))
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		views := make([]fieldView, 0, s.Len())
		for _, f := range s.Fields() {
			views = append(views, fieldView{
				Name:        f.Name,
				Shape:       f.Shape.String(),
				Required:    f.Required,
				Description: f.Description,
				Default:     f.Default,
				Allowed:     f.Allowed,
				Fallback:    f.Fallback,
			})
		}
		return writeValue(cmd.OutOrStdout(), format, views)
	},
}

func init() {
	schemaCmd.Flags().String("format", "yaml", "output format: yaml or json")
	schemaCmd.Flags().Bool("cue", false, "print the CUE definition used for strict validation")
	rootCmd.AddCommand(schemaCmd)
}
