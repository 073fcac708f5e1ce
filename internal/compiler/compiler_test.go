package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/chtl/internal/color"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/compiler"
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

func TestCompileSource(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		out, err := compiler.CompileSource("page.chtl", []byte(`
[Template] @Var Theme { brand: #F00; }
html { body { h1 { style { color: Theme(brand); } text { "Hi" } } } }`),
			compiler.Options{ColorFormat: color.Hex})
		require.NoError(t, err)
		assert.Equal(t, `<html><body><h1 style="color:#ff0000;">Hi</h1></body></html>`, out.HTML)
	})

	t.Run("parse errors carry a position", func(t *testing.T) {
		_, err := compiler.CompileSource("page.chtl", []byte("div {\n  span {"), compiler.Options{})
		require.ErrorIs(t, err, compileerr.ErrParse)
		pos, ok := compileerr.Position(err)
		require.True(t, ok)
		assert.Equal(t, "page.chtl", pos.File)
	})

	t.Run("analysis errors abort", func(t *testing.T) {
		out, err := compiler.CompileSource("page.chtl", []byte(`div { @Element Missing; }`), compiler.Options{})
		assert.ErrorIs(t, err, compileerr.ErrUnknownTemplate)
		assert.Nil(t, out)
	})

	t.Run("imports read through the override", func(t *testing.T) {
		read := func(path string) ([]byte, error) {
			if filepath.Base(path) == "lib.chtl" {
				return []byte(`[Template] @Element Hello { p { text { "hi" } } }`), nil
			}
			return nil, os.ErrNotExist
		}
		out, err := compiler.CompileSource("/virtual/page.chtl", []byte(`
[Import] @Chtl from "lib.chtl";
@Element Hello;`), compiler.Options{Read: read})
		require.NoError(t, err)
		assert.Equal(t, "<p>hi</p>", out.HTML)
	})
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "index.chtl", `p { text { "ok" } }`)
	out, err := compiler.CompileFile(page, compiler.Options{})
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", out.HTML)

	_, err = compiler.CompileFile(filepath.Join(dir, "missing.chtl"), compiler.Options{})
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	t.Run("writes one page per source", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "index.chtl", `
[Import] @Chtl from "lib/parts.chtl";
html { body { @Element Header; } }`)
		writeFile(t, dir, "lib/parts.chtl", `[Template] @Element Header { header { } }`)
		writeFile(t, dir, "about/team.chtl", `div { style { .team { color: red; } } }`)

		cfg := config.Default()
		cfg.Exclude = []string{"lib/**"}
		pages, err := compiler.Build(dir, cfg)
		require.NoError(t, err)
		require.Len(t, pages, 2)

		index, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
		require.NoError(t, err)
		assert.Equal(t, "<!DOCTYPE html>\n<html><body><header></header></body></html>", string(index))

		team, err := os.ReadFile(filepath.Join(dir, "dist", "about", "team.html"))
		require.NoError(t, err)
		assert.Equal(t, "<style>\n.team {\n  color: red;\n}\n</style>\n<div class=\"team\"></div>", string(team))
	})

	t.Run("stops at the first error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.chtl", `div { }`)
		writeFile(t, dir, "b.chtl", `div { @Element Nope; }`)
		pages, err := compiler.Build(dir, config.Default())
		assert.ErrorIs(t, err, compileerr.ErrUnknownTemplate)
		assert.Len(t, pages, 1)
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := compiler.Build(t.TempDir(), config.Default())
		assert.Error(t, err)
	})

	t.Run("invalid color format", func(t *testing.T) {
		cfg := config.Default()
		cfg.ColorFormat = "cmyk"
		_, err := compiler.Build(t.TempDir(), cfg)
		assert.Error(t, err)
	})
}

func TestOutputPath(t *testing.T) {
	got, err := compiler.OutputPath("/p", "/p/dist", "/p/pages/a.chtl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/p", "dist", "pages", "a.html"), got)
}
