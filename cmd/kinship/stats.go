package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show person and relationship counts for the tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(d *Deps) error {
				page, err := d.Persons.HandleList(ctx, 1, 0)
				if err != nil {
					return fmt.Errorf("counting persons: %w", err)
				}
				rows, err := d.Relationships.HandleCount(ctx)
				if err != nil {
					return fmt.Errorf("counting relationships: %w", err)
				}
				writeStats(cmd.OutOrStdout(), d.TreeName, page.Total, rows)
				return nil
			})
		},
	}
}
