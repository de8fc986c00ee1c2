// Package config loads kinship configuration from .kinship/config.yaml,
// an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory holding kinship configuration.
	DefaultConfigDir = ".kinship"
	// DefaultConfigFile is the config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultTreesFile is the trees registry file name.
	DefaultTreesFile = "trees.yaml"
	// DefaultTreeName is used when no tree is selected.
	DefaultTreeName = "default"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	reNonAlphanumeric     = regexp.MustCompile(`[^a-z0-9_]`)
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Search   SearchConfig   `yaml:"search,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
}

// StoreConfig selects the relational backend.
type StoreConfig struct {
	Driver      string `yaml:"driver,omitempty"`
	PostgresURL string `yaml:"postgres_url,omitempty"`
	MaxConns    int32  `yaml:"max_conns,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is computed per tree with SQLitePathForTree when empty.
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`
	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// SearchConfig controls person search.
type SearchConfig struct {
	// Semantic enables the qdrant-backed person index.
	Semantic bool `yaml:"semantic,omitempty"`
	Limit    int  `yaml:"limit,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:   DriverSQLite,
			MaxConns: 10,
		},
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Search: SearchConfig{
			Limit: 20,
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
	}
}

// Load reads .kinship/config.yaml under basePath over the defaults, then
// applies .env and environment overrides.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'kinship init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := LoadDotEnv(basePath); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads basePath/.env into the process environment if it exists.
// Variables already set are not overwritten.
func LoadDotEnv(basePath string) error {
	envFile := filepath.Join(basePath, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("KINSHIP_DATABASE_URL"); url != "" {
		c.Store.Driver = DriverPostgres
		c.Store.PostgresURL = url
	}
	if addr := os.Getenv("KINSHIP_ADDR"); addr != "" {
		c.Server.Addr = addr
	} else if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if level := os.Getenv("KINSHIP_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Embedder.APIKey == "" {
		c.Embedder.APIKey = key
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return errors.New("store.postgres_url is required for the postgres driver (or set KINSHIP_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("unknown store driver %q (valid: sqlite, postgres)", c.Store.Driver)
	}

	switch c.Log.Format {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q (valid: text, json, logfmt)", c.Log.Format)
	}
	return nil
}

// ConfigDir returns the path to the .kinship directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// TreesFilePath returns the path to the trees registry.
func TreesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultTreesFile)
}

// SanitizeTreeName converts a tree name to a safe identifier suffix.
func SanitizeTreeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return DefaultTreeName
	}
	return name
}

// GenerateCollectionName returns the qdrant collection for a tree.
func GenerateCollectionName(treeName string) string {
	return "kinship_" + SanitizeTreeName(treeName)
}

// GenerateSchemaName returns the postgres schema for a tree.
func GenerateSchemaName(treeName string) string {
	return "tree_" + SanitizeTreeName(treeName)
}

// TreeDir returns the directory holding a tree's local data.
func TreeDir(basePath, treeName string) string {
	return filepath.Join(basePath, DefaultConfigDir, "trees", SanitizeTreeName(treeName))
}

// SQLitePathForTree returns the SQLite database path for a tree.
func SQLitePathForTree(basePath, treeName string) string {
	return filepath.Join(TreeDir(basePath, treeName), "kinship.db")
}
