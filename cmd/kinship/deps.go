package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ersonp/kinship/internal/application/handlers"
	"github.com/ersonp/kinship/internal/domain/ports"
	"github.com/ersonp/kinship/internal/domain/services"
	"github.com/ersonp/kinship/internal/infrastructure/config"
	embedder "github.com/ersonp/kinship/internal/infrastructure/embedder/openai"
	"github.com/ersonp/kinship/internal/infrastructure/logging"
	"github.com/ersonp/kinship/internal/infrastructure/relationaldb/postgres"
	"github.com/ersonp/kinship/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/kinship/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config   *config.Config
	TreeName string
	Logger   *slog.Logger

	Persons       *handlers.PersonHandler
	Relationships *handlers.RelationshipHandler
	FamilyTree    *handlers.FamilyTreeHandler
	Import        *handlers.ImportHandler
	Export        *handlers.ExportHandler
}

// withDeps loads config, opens the selected tree and builds the handlers,
// then calls fn. Everything opened is closed when fn returns.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	trees, treeName, entry, err := selectTree(cwd)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cwd, cfg, trees, treeName, entry)
	if err != nil {
		return err
	}
	defer store.Close()

	personService := services.NewPersonService(store, logger)
	if cfg.Search.Semantic {
		index, err := openIndex(cfg, entry.Collection)
		if err != nil {
			return err
		}
		defer index.Close()

		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		personService.WithSemanticSearch(index, emb)
	}

	relationshipService := services.NewRelationshipService(store, logger)
	resolver := services.NewResolverService(store)
	familyTree := services.NewFamilyTreeService(resolver, services.DefaultExpandConcurrency)

	return fn(&Deps{
		Config:        cfg,
		TreeName:      treeName,
		Logger:        logger,
		Persons:       handlers.NewPersonHandler(personService),
		Relationships: handlers.NewRelationshipHandler(relationshipService),
		FamilyTree:    handlers.NewFamilyTreeHandler(resolver, familyTree),
		Import:        handlers.NewImportHandler(services.NewImportService(personService, relationshipService)),
		Export:        handlers.NewExportHandler(personService, relationshipService),
	})
}

// selectTree resolves --tree against the registry.
func selectTree(basePath string) (*config.TreesConfig, string, *config.TreeEntry, error) {
	name := globalTree
	if name == "" {
		name = config.DefaultTreeName
	}

	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("loading trees: %w", err)
	}
	entry, err := trees.Get(name)
	if err != nil {
		return nil, "", nil, err
	}
	return trees, name, entry, nil
}

// openStore opens and migrates the relational store of a tree.
func openStore(ctx context.Context, basePath string, cfg *config.Config, trees *config.TreesConfig, treeName string, entry *config.TreeEntry) (ports.FamilyStore, error) {
	var store ports.FamilyStore

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		repo, err := postgres.NewRepository(ctx, cfg.Store, entry.Schema)
		if err != nil {
			return nil, fmt.Errorf("creating postgres repository: %w", err)
		}
		store = repo
	default:
		path, err := trees.SQLitePath(cfg, basePath, treeName)
		if err != nil {
			return nil, err
		}
		if cfg.SQLite.Path == "" {
			if err := os.MkdirAll(config.TreeDir(basePath, treeName), 0755); err != nil {
				return nil, fmt.Errorf("creating tree directory: %w", err)
			}
		}
		repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
		if err != nil {
			return nil, fmt.Errorf("creating sqlite repository: %w", err)
		}
		store = repo
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return store, nil
}

func openIndex(cfg *config.Config, collection string) (*qdrant.Repository, error) {
	qdrantCfg := cfg.Qdrant
	qdrantCfg.Collection = collection

	repo, err := qdrant.NewRepository(qdrantCfg)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant repository: %w", err)
	}
	return repo, nil
}
