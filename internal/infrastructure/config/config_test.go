package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTreeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple lowercase", input: "smiths", expected: "smiths"},
		{name: "uppercase converted", input: "Smiths", expected: "smiths"},
		{name: "spaces to underscores", input: "the smiths", expected: "the_smiths"},
		{name: "hyphens to underscores", input: "smith-jones", expected: "smith_jones"},
		{name: "special characters removed", input: "o'brien!", expected: "obrien"},
		{name: "consecutive underscores collapsed", input: "smith--jones", expected: "smith_jones"},
		{name: "leading trailing underscores trimmed", input: "-smiths-", expected: "smiths"},
		{name: "empty falls back", input: "!!!", expected: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTreeName(tt.input))
		})
	}
}

func TestGeneratedNames(t *testing.T) {
	assert.Equal(t, "kinship_the_smiths", GenerateCollectionName("The Smiths"))
	assert.Equal(t, "tree_the_smiths", GenerateSchemaName("The Smiths"))
	assert.Equal(t,
		filepath.Join("/base", ".kinship", "trees", "the_smiths", "kinship.db"),
		SQLitePathForTree("/base", "The Smiths"))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.False(t, cfg.Search.Semantic)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kinship init")
}

func TestLoad_InvalidDriver(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "store:\n  driver: mysql\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log:\n  level: warn\n")
	t.Setenv("KINSHIP_DATABASE_URL", "postgres://localhost/kin")
	t.Setenv("KINSHIP_ADDR", "")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("KINSHIP_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/kin", cfg.Store.PostgresURL)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.Embedder.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KINSHIP_ADDR=127.0.0.1:9999\n"), 0600))
	t.Setenv("KINSHIP_ADDR", "")
	os.Unsetenv("KINSHIP_ADDR")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestWriteDefault_AlreadyExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	err := WriteDefault(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.True(t, Exists(dir))
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Search.Semantic = true
	cfg.Server.Addr = ":4000"

	require.NoError(t, Write(dir, cfg))
	loaded, err := Load(dir)

	require.NoError(t, err)
	assert.True(t, loaded.Search.Semantic)
	assert.Equal(t, ":4000", loaded.Server.Addr)
	assert.Equal(t, cfg.Server.WriteTimeout, loaded.Server.WriteTimeout)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(content), 0644))
}
