package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRelateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relate <person1-id> <kind> <person2-id>",
		Short: "Create a relationship between two persons",
		Long: `Creates a relationship between two existing persons.

Valid kinds:
  - parent   person1 is the parent of person2
  - spouse   stored in both directions
  - sibling  stored in both directions

Examples:
  kinship relate <bob-id> parent <john-id>
  kinship relate <john-id> spouse <mary-id>`,
		Args: cobra.ExactArgs(3),
		RunE: runRelate,
	}

	cmd.AddCommand(newRelateDeleteCmd())

	return cmd
}

func runRelate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	person1, kind, person2 := args[0], args[1], args[2]

	return withDeps(ctx, func(d *Deps) error {
		rel, err := d.Relationships.HandleCreate(ctx, person1, person2, kind)
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created relationship: %s\n", rel.ID)
		fmt.Fprintf(out, "  %s -[%s]-> %s\n", rel.Person1ID, rel.Kind, rel.Person2ID)
		if rel.Kind.IsSymmetric() {
			fmt.Fprintln(out, "  (symmetric)")
		}
		return nil
	})
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <person1-id> <kind> <person2-id>",
		Short: "Delete a relationship",
		Long:  "Deletes the relationship of the given kind between two persons, in either direction.",
		Args:  cobra.ExactArgs(3),
		RunE:  runRelateDelete,
	}
}

func runRelateDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	person1, kind, person2 := args[0], args[1], args[2]

	return withDeps(ctx, func(d *Deps) error {
		deleted, err := d.Relationships.HandleDelete(ctx, person1, person2, kind)
		if err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		if !deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s relationship between %s and %s\n", kind, person1, person2)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s relationship between %s and %s\n", kind, person1, person2)
		return nil
	})
}
