package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/application/handlers"
	"github.com/ersonp/kinship/internal/domain/entities"
)

func newRelationsCmd() *cobra.Command {
	var (
		kind string
		raw  bool
	)

	cmd := &cobra.Command{
		Use:   "relations <person-id>",
		Short: "Show a person's immediate family",
		Long: `Shows the parents, children, spouses and siblings of a person.
With --raw, prints the stored relationship rows instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			personID := args[0]

			return withDeps(ctx, func(d *Deps) error {
				out := cmd.OutOrStdout()
				if raw || kind != "" {
					rels, err := d.Relationships.HandleList(ctx, personID, handlers.ListOptions{Kind: kind})
					if err != nil {
						return fmt.Errorf("listing relationships: %w", err)
					}
					writeRawRelationships(out, rels)
					return nil
				}

				view, err := d.FamilyTree.HandleRelationships(ctx, personID)
				if err != nil {
					return fmt.Errorf("resolving relationships: %w", err)
				}
				if view == nil {
					return fmt.Errorf("%w: %s", entities.ErrPersonNotFound, personID)
				}
				writeRelations(out, view)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only list rows of this kind (implies --raw)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print stored rows")

	return cmd
}
