package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/application/handlers"
	"github.com/ersonp/kinship/internal/domain/services"
)

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import persons and relationships from a file",
		Long: `Imports persons and relationships from JSON or CSV.

Relationship records refer to persons by their key in the same file,
or by the ID of a person already in the tree.

JSON:
  {"persons": [{"key": "bob", "name": "Bob", "birth_date": "1950-03-01"}],
   "relationships": [{"person1": "bob", "person2": "john", "kind": "parent"}]}

CSV:
  record,key,name,birth_date,person1,person2,kind
  person,bob,Bob,1950-03-01,,,
  relationship,,,,bob,john,parent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", string(services.ConflictSkip), "Duplicate relationships: skip or fail")

	return cmd
}

func runImport(cmd *cobra.Command, path string, flags importFlags) error {
	strategy, err := services.ParseConflictStrategy(flags.onConflict)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		result, err := d.Import.Handle(ctx, path, handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: strategy,
		})
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		writeImportResult(cmd.OutOrStdout(), result, flags.dryRun)
		return nil
	})
}

func writeImportResult(w io.Writer, result *services.ImportResult, dryRun bool) {
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(w, "%s %d persons and %d relationships\n", verb, result.PersonsImported, result.RelationshipsImported)
	if result.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d duplicate relationships\n", result.Skipped)
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "%d records rejected:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
}
