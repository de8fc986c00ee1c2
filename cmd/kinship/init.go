package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/kinship/internal/application/handlers"
	"github.com/ersonp/kinship/internal/domain/ports"
	"github.com/ersonp/kinship/internal/infrastructure/config"
	"github.com/ersonp/kinship/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	var semantic bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize kinship in the current directory",
		Long: `Writes .kinship/config.yaml and registers the "default" family tree.
With --semantic, person names are also indexed in Qdrant for similarity search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, semantic)
		},
	}

	cmd.Flags().BoolVar(&semantic, "semantic", false, "Enable semantic person search (requires Qdrant and an OpenAI key)")

	return cmd
}

func runInit(cmd *cobra.Command, semantic bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	var opened []*qdrant.Repository
	defer func() {
		for _, repo := range opened {
			repo.Close()
		}
	}()

	handler := handlers.NewInitHandler(func(cfg *config.Config, collection string) (ports.CollectionManager, error) {
		repo, err := openIndex(cfg, collection)
		if err != nil {
			return nil, err
		}
		opened = append(opened, repo)
		return repo, nil
	})

	result, err := handler.Handle(cmd.Context(), cwd, handlers.InitOptions{Semantic: semantic})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized kinship in %s\n", config.ConfigDir(cwd))
	fmt.Fprintf(out, "  config: %s\n", result.ConfigPath)
	fmt.Fprintf(out, "  tree:   %s\n", result.TreeName)
	if semantic {
		fmt.Fprintf(out, "  qdrant collection: %s\n", result.CollectionName)
	}
	return nil
}
