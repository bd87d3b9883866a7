package config

import (
	"os"
	"path/filepath"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaultsOnFirstLaunch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(dir, "nested", DefaultDBName), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "nested", DefaultLogName), cfg.LogPath)
	assert.Equal(t, DefaultListTitle, cfg.DefaultList)
	assert.True(t, cfg.Watch)
	assert.False(t, cfg.ConfirmDelete)
	assert.Equal(t, defaultKeymap(), cfg.Keys)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, toml.Unmarshal(data, &onDisk))
	assert.Equal(t, DefaultDBName, onDisk.DBPath, "paths are stored relative")
}

func TestLoadOrCreate_FillsMissingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
default_list = "Groceries"
confirm_delete = true

[keys]
add = "n"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)

	assert.Equal(t, "Groceries", cfg.DefaultList)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, "n", cfg.Keys.Add)
	assert.Equal(t, "q", cfg.Keys.Quit)
	assert.Equal(t, "esc", cfg.Keys.Cancel)
	assert.Equal(t, filepath.Join(dir, DefaultDBName), cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOrCreate_KeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	db := filepath.Join(t.TempDir(), "elsewhere.db")
	require.NoError(t, os.WriteFile(path, []byte(`db_path = "`+filepath.ToSlash(db)+`"`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(db), filepath.ToSlash(cfg.DBPath))
}

func TestLoadOrCreate_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("db_path = ["), 0o644))

	_, err := LoadOrCreate(path)
	assert.Error(t, err)
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	got := ResolveConfigPath()
	assert.Equal(t, DefaultConfigFileName, filepath.Base(got))
}
