// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/kinship/internal/domain/ports"
	"github.com/ersonp/kinship/internal/infrastructure/config"
	embedder "github.com/ersonp/kinship/internal/infrastructure/embedder/openai"
)

// CollectionFactory opens the vector collection of a tree.
type CollectionFactory func(cfg *config.Config, collection string) (ports.CollectionManager, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	collections CollectionFactory
}

// NewInitHandler creates a new init handler. collections may be nil when
// semantic search is never enabled.
func NewInitHandler(collections CollectionFactory) *InitHandler {
	return &InitHandler{collections: collections}
}

// InitOptions controls initialization.
type InitOptions struct {
	Semantic bool
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	TreeName       string
	CollectionName string
}

// Handle writes the default config and registers the default tree.
func (h *InitHandler) Handle(ctx context.Context, basePath string, opts InitOptions) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("kinship already initialized in %s", basePath)
	}

	if opts.Semantic {
		defaults := config.Default()
		defaults.Search.Semantic = true
		if err := config.Write(basePath, defaults); err != nil {
			return nil, fmt.Errorf("writing config: %w", err)
		}
	} else if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return nil, err
	}
	entry := config.NewTreeEntry(config.DefaultTreeName, "Default family tree")
	trees.Add(config.DefaultTreeName, entry)
	if err := trees.Save(basePath); err != nil {
		return nil, err
	}

	if cfg.Search.Semantic && h.collections != nil {
		manager, err := h.collections(cfg, entry.Collection)
		if err != nil {
			return nil, fmt.Errorf("opening collection: %w", err)
		}
		if err := manager.EnsureCollection(ctx, embedder.VectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		TreeName:       config.DefaultTreeName,
		CollectionName: entry.Collection,
	}, nil
}
