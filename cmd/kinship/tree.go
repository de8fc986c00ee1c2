package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/domain/entities"
)

func newTreeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tree <person-id>",
		Short: "Show three generations around a person",
		Long: `Shows a person with their grandparents (through each parent)
and grandchildren (through each child).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(treeFormats, format) {
				return fmt.Errorf("invalid format %q, valid formats: %s", format, strings.Join(treeFormats, ", "))
			}
			ctx := cmd.Context()

			return withDeps(ctx, func(d *Deps) error {
				tree, err := d.FamilyTree.HandleFamilyTree(ctx, args[0])
				if err != nil {
					return fmt.Errorf("building family tree: %w", err)
				}
				if tree == nil {
					return fmt.Errorf("%w: %s", entities.ErrPersonNotFound, args[0])
				}
				return writeTree(cmd.OutOrStdout(), format, tree)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, markdown)")

	return cmd
}
