package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/importer"
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

func TestCanonical(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "src", "main.chtl")

	t.Run("relative to the importing file", func(t *testing.T) {
		got, err := importer.Canonical(main, "../lib/a.chtl", ast.ImportChtl)
		require.NoError(t, err)
		want, _ := filepath.Abs(filepath.Join(dir, "lib", "a.chtl"))
		assert.Equal(t, want, got)
	})

	t.Run("default extension", func(t *testing.T) {
		got, err := importer.Canonical(main, "theme", ast.ImportStyle)
		require.NoError(t, err)
		assert.Equal(t, ".css", filepath.Ext(got))
	})

	t.Run("equivalent spellings agree", func(t *testing.T) {
		a, err := importer.Canonical(main, "./x/../b.chtl", ast.ImportChtl)
		require.NoError(t, err)
		b, err := importer.Canonical(main, "b.chtl", ast.ImportChtl)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.chtl", "")
	writeFile(t, dir, "lib/a.chtl", `[Template] @Style A { color: red; } div { }`)
	writeFile(t, dir, "theme.css", `.card { width: 10px; }`)
	writeFile(t, dir, "banner.html", `<b>hi</b>`)
	writeFile(t, dir, "app.js", `console.log(1);`)
	writeFile(t, dir, "tokens.json", `{"color": {"primary": {"$value": "#ff0000"}}}`)
	writeFile(t, dir, "broken.chtl", `div {`)

	im := importer.New(nil)

	t.Run("markup is parsed", func(t *testing.T) {
		unit, err := im.Resolve(main, &ast.Import{Type: ast.ImportChtl, Path: "lib/a.chtl"})
		require.NoError(t, err)
		require.NotNil(t, unit.Program)
		assert.Len(t, unit.Program.Children, 2)
		assert.True(t, filepath.IsAbs(unit.Path))
		assert.Equal(t, unit.Path, unit.Program.File)
	})

	t.Run("raw files become origins", func(t *testing.T) {
		tests := []struct {
			path string
			kind ast.ImportKind
			raw  ast.RawKind
		}{
			{"theme.css", ast.ImportStyle, ast.RawStyle},
			{"banner.html", ast.ImportHTML, ast.RawHTML},
			{"app.js", ast.ImportJavaScript, ast.RawJavaScript},
		}
		for _, tt := range tests {
			t.Run(tt.path, func(t *testing.T) {
				unit, err := im.Resolve(main, &ast.Import{Type: tt.kind, Path: tt.path, Alias: "named"})
				require.NoError(t, err)
				require.NotNil(t, unit.Origin)
				assert.Equal(t, tt.raw, unit.Origin.Raw)
				assert.Equal(t, "named", unit.Origin.Name)
				assert.NotEmpty(t, unit.Origin.Content)
			})
		}
	})

	t.Run("extension decides the raw kind", func(t *testing.T) {
		unit, err := im.Resolve(main, &ast.Import{Type: ast.ImportHTML, Path: "theme.css"})
		require.NoError(t, err)
		assert.Equal(t, ast.RawStyle, unit.Origin.Raw)
	})

	t.Run("token files become var templates", func(t *testing.T) {
		unit, err := im.Resolve(main, &ast.Import{Type: ast.ImportVar, Path: "tokens.json"})
		require.NoError(t, err)
		require.NotNil(t, unit.Vars)
		assert.Equal(t, "Tokens", unit.Vars.Name)
		require.Len(t, unit.Vars.Properties, 1)
		assert.Equal(t, "color-primary", unit.Vars.Properties[0].Key)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := im.Resolve(main, &ast.Import{Type: ast.ImportChtl, Path: "nope.chtl", Pos: ast.Pos{File: main, Line: 3, Column: 1}})
		require.Error(t, err)
		assert.ErrorIs(t, err, compileerr.ErrFileNotFound)
		assert.Contains(t, err.Error(), "file not found")
		pos, ok := compileerr.Position(err)
		require.True(t, ok)
		assert.Equal(t, 3, pos.Line)
	})

	t.Run("parse errors propagate", func(t *testing.T) {
		_, err := im.Resolve(main, &ast.Import{Type: ast.ImportChtl, Path: "broken.chtl"})
		assert.ErrorIs(t, err, compileerr.ErrParse)
	})

	t.Run("custom reader", func(t *testing.T) {
		overlay := importer.New(func(path string) ([]byte, error) {
			if filepath.Base(path) == "virtual.chtl" {
				return []byte("span { }"), nil
			}
			return os.ReadFile(path)
		})
		unit, err := overlay.Resolve(main, &ast.Import{Type: ast.ImportChtl, Path: "virtual.chtl"})
		require.NoError(t, err)
		assert.Len(t, unit.Program.Children, 1)
	})
}
