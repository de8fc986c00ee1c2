package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TreesConfig is the registry of named family trees.
type TreesConfig struct {
	Trees map[string]TreeEntry `yaml:"trees,omitempty"`
}

// TreeEntry holds the storage names of one tree.
type TreeEntry struct {
	Collection  string `yaml:"collection"`
	Schema      string `yaml:"schema"`
	Description string `yaml:"description,omitempty"`
}

// NewTreeEntry returns the entry a tree called name gets by default.
func NewTreeEntry(name, description string) TreeEntry {
	return TreeEntry{
		Collection:  GenerateCollectionName(name),
		Schema:      GenerateSchemaName(name),
		Description: description,
	}
}

// SQLitePath returns the database file of treeName. A configured sqlite.path
// holds a single tree, so it is refused once the registry has more than one.
func (t *TreesConfig) SQLitePath(cfg *Config, basePath, treeName string) (string, error) {
	if cfg.SQLite.Path == "" {
		return SQLitePathForTree(basePath, treeName), nil
	}
	if len(t.Trees) > 1 {
		return "", fmt.Errorf("sqlite.path %q cannot be shared by %d trees; remove it to store each tree separately", cfg.SQLite.Path, len(t.Trees))
	}
	return cfg.SQLite.Path, nil
}

// LoadTrees reads the trees registry. A missing file is an empty registry.
func LoadTrees(basePath string) (*TreesConfig, error) {
	data, err := os.ReadFile(TreesFilePath(basePath))
	if os.IsNotExist(err) {
		return &TreesConfig{Trees: make(map[string]TreeEntry)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trees file: %w", err)
	}

	var cfg TreesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing trees file: %w", err)
	}
	if cfg.Trees == nil {
		cfg.Trees = make(map[string]TreeEntry)
	}
	return &cfg, nil
}

// Save writes the registry.
func (t *TreesConfig) Save(basePath string) error {
	configDir := ConfigDir(basePath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling trees config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, DefaultTreesFile), data, 0600); err != nil {
		return fmt.Errorf("writing trees file: %w", err)
	}
	return nil
}

// Add registers or replaces a tree.
func (t *TreesConfig) Add(name string, entry TreeEntry) {
	if t.Trees == nil {
		t.Trees = make(map[string]TreeEntry)
	}
	t.Trees[name] = entry
}

// Remove unregisters a tree.
func (t *TreesConfig) Remove(name string) {
	delete(t.Trees, name)
}

// Exists reports whether a tree is registered.
func (t *TreesConfig) Exists(name string) bool {
	_, ok := t.Trees[name]
	return ok
}

// Names returns the registered tree names sorted.
func (t *TreesConfig) Names() []string {
	names := make([]string, 0, len(t.Trees))
	for name := range t.Trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a tree's entry.
func (t *TreesConfig) Get(name string) (*TreeEntry, error) {
	if len(t.Trees) == 0 {
		return nil, errors.New("no trees configured (run 'kinship trees create NAME')")
	}

	entry, ok := t.Trees[name]
	if !ok {
		available := t.Names()
		if len(available) > 5 {
			available = append(available[:5], "...")
		}
		return nil, fmt.Errorf("tree %q not found (available: %s)", name, strings.Join(available, ", "))
	}
	return &entry, nil
}
