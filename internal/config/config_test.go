package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/chtl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, path, err := config.Load(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "chtl.yaml", `
include: ["pages/**/*.chtl"]
exclude: ["**/_*.chtl"]
outDir: public
colorFormat: hex
`)
		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "chtl.yaml"), path)
		assert.Equal(t, []string{"pages/**/*.chtl"}, cfg.Include)
		assert.Equal(t, []string{"**/_*.chtl"}, cfg.Exclude)
		assert.Equal(t, "public", cfg.OutDir)
		assert.Equal(t, "hex", cfg.ColorFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("json with comments", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "chtl.json", `{
  // verbose while developing
  "logLevel": "debug",
  "outDir": "out",
}`)
		cfg, _, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "out", cfg.OutDir)
		assert.Equal(t, []string{"**/*.chtl"}, cfg.Include)
	})

	t.Run("yaml wins over json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "chtl.yml", `outDir: from-yaml`)
		writeFile(t, dir, "chtl.json", `{"outDir": "from-json"}`)
		cfg, _, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "from-yaml", cfg.OutDir)
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "chtl.yaml", "include: [a")
		_, _, err := config.Load(dir)
		assert.Error(t, err)
	})
}

func TestMatch(t *testing.T) {
	cfg := &config.Config{Include: []string{"**/*.chtl"}, Exclude: []string{"lib/**"}}
	assert.True(t, cfg.Match("index.chtl"))
	assert.True(t, cfg.Match(filepath.Join("pages", "about.chtl")))
	assert.False(t, cfg.Match(filepath.Join("lib", "ui.chtl")))
	assert.False(t, cfg.Match("index.html"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.chtl", "")
	writeFile(t, dir, "pages/about.chtl", "")
	writeFile(t, dir, "lib/ui.chtl", "")
	writeFile(t, dir, ".cache/old.chtl", "")
	writeFile(t, dir, "node_modules/x/y.chtl", "")
	writeFile(t, dir, "dist/copy.chtl", "")
	writeFile(t, dir, "notes.txt", "")

	cfg := config.Default()
	cfg.Exclude = []string{"lib/**"}
	files, err := cfg.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "index.chtl"),
		filepath.Join(dir, "pages", "about.chtl"),
	}, files)
}
