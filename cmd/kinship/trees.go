package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/infrastructure/config"
	embedder "github.com/ersonp/kinship/internal/infrastructure/embedder/openai"
)

func newTreesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Manage family trees",
		RunE:  runTreesList,
	}

	cmd.AddCommand(
		newTreesListCmd(),
		newTreesCreateCmd(),
		newTreesDeleteCmd(),
	)

	return cmd
}

func newTreesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all family trees",
		RunE:  runTreesList,
	}
}

func runTreesList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}

	writeTrees(cmd.OutOrStdout(), trees)
	return nil
}

func writeTrees(w io.Writer, trees *config.TreesConfig) {
	if len(trees.Trees) == 0 {
		fmt.Fprintln(w, "No trees configured.")
		fmt.Fprintln(w, "Use 'kinship trees create NAME' to create a tree.")
		return
	}

	fmt.Fprintf(w, "%-20s %-25s %-25s %s\n", "NAME", "SCHEMA", "COLLECTION", "DESCRIPTION")
	fmt.Fprintf(w, "%-20s %-25s %-25s %s\n", "----", "------", "----------", "-----------")
	for _, name := range trees.Names() {
		tree := trees.Trees[name]
		fmt.Fprintf(w, "%-20s %-25s %-25s %s\n", name, tree.Schema, tree.Collection, tree.Description)
	}
}

func newTreesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new family tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tree description")

	return cmd
}

func runTreesCreate(cmd *cobra.Command, name, description string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	if trees.Exists(name) {
		return fmt.Errorf("tree %q already exists", name)
	}

	entry := config.NewTreeEntry(name, description)
	trees.Add(name, entry)

	// Open the store once so the schema exists before the first command.
	store, err := openStore(ctx, cwd, cfg, trees, name, &entry)
	if err != nil {
		return err
	}
	store.Close()

	if cfg.Search.Semantic {
		if err := ensureCollection(ctx, cfg, entry.Collection); err != nil {
			return fmt.Errorf("creating qdrant collection: %w", err)
		}
	}

	if err := trees.Save(cwd); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created tree %q (schema %q, collection %q)\n", name, entry.Schema, entry.Collection)
	return nil
}

func newTreesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a family tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if the tree contains persons")

	return cmd
}

func runTreesDelete(cmd *cobra.Command, name string, force bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	entry, err := trees.Get(name)
	if err != nil {
		return err
	}

	if !force {
		store, err := openStore(ctx, cwd, cfg, trees, name, entry)
		if err != nil {
			return err
		}
		count, err := store.CountPersons(ctx)
		store.Close()
		if err != nil {
			return fmt.Errorf("counting persons: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("tree %q contains %d persons, use --force to delete", name, count)
		}
	}

	if cfg.Search.Semantic {
		if err := dropCollection(ctx, cfg, entry.Collection); err != nil {
			fmt.Fprintf(out, "Warning: could not delete collection %q: %v\n", entry.Collection, err)
		}
	}

	switch {
	case cfg.Store.Driver == config.DriverPostgres:
		fmt.Fprintf(out, "Note: postgres schema %q was left in place\n", entry.Schema)
	case cfg.SQLite.Path == "":
		if err := os.RemoveAll(config.TreeDir(cwd, name)); err != nil {
			return fmt.Errorf("removing tree data: %w", err)
		}
	}

	trees.Remove(name)
	if err := trees.Save(cwd); err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted tree %q\n", name)
	return nil
}

func ensureCollection(ctx context.Context, cfg *config.Config, collection string) error {
	repo, err := openIndex(cfg, collection)
	if err != nil {
		return err
	}
	defer repo.Close()

	return repo.EnsureCollection(ctx, embedder.VectorSize)
}

func dropCollection(ctx context.Context, cfg *config.Config, collection string) error {
	repo, err := openIndex(cfg, collection)
	if err != nil {
		return err
	}
	defer repo.Close()

	return repo.DeleteCollection(ctx)
}
