package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/infrastructure/parsers"
)

func newExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the tree to a file",
		Long:  "Exports every person and relationship as JSON or CSV. The output can be read back with 'kinship import'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if parsers.ForFormat(format) == nil {
				return fmt.Errorf("invalid format %q, valid formats: json, csv", format)
			}
			ctx := cmd.Context()

			return withDeps(ctx, func(d *Deps) error {
				w := cmd.OutOrStdout()
				if output != "" {
					file, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating output file: %w", err)
					}
					defer file.Close()
					w = file
				}

				result, err := d.Export.Handle(ctx, w, format)
				if err != nil {
					return fmt.Errorf("exporting: %w", err)
				}
				if output != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d persons and %d relationships to %s\n",
						result.Persons, result.Relationships, output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", parsers.FormatJSON, "Output format (json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
