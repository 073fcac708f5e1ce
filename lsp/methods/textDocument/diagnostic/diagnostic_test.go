package diagnostic_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/uriutil"
	"bennypowers.dev/chtl/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/chtl/lsp/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func open(t *testing.T, ctx *testutil.MockServerContext, path, content string) string {
	t.Helper()
	uri := uriutil.PathToURI(path)
	require.NoError(t, ctx.DocumentManager().DidOpen(uri, "chtl", 1, content))
	return uri
}

func TestGetDiagnostics(t *testing.T) {
	dir := t.TempDir()

	t.Run("unknown document", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		diags, err := diagnostic.GetDiagnostics(ctx, "file:///nope.chtl")
		require.NoError(t, err)
		assert.Nil(t, diags)
	})

	t.Run("clean document", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		uri := open(t, ctx, filepath.Join(dir, "ok.chtl"), `div { style { color: red; } }`)
		diags, err := diagnostic.GetDiagnostics(ctx, uri)
		require.NoError(t, err)
		assert.NotNil(t, diags)
		assert.Empty(t, diags)
	})

	t.Run("positioned error", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		uri := open(t, ctx, filepath.Join(dir, "bad.chtl"), "body {\n  @Element Missing;\n}")
		diags, err := diagnostic.GetDiagnostics(ctx, uri)
		require.NoError(t, err)
		require.Len(t, diags, 1)

		d := diags[0]
		assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
		assert.Equal(t, "chtl", *d.Source)
		assert.Equal(t, "unknown-template", d.Code.Value)
		assert.Contains(t, d.Message, "Missing")
		assert.Equal(t, uint32(1), d.Range.Start.Line)
		assert.Equal(t, uint32(2), d.Range.Start.Character)
		assert.Equal(t, uint32(19), d.Range.End.Character)
	})

	t.Run("imports see unsaved buffers", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		lib := filepath.Join(dir, "lib.chtl")
		require.NoError(t, os.WriteFile(lib, []byte(`[Template] @Element Old { p { } }`), 0o644))
		open(t, ctx, lib, `[Template] @Element Card { p { } }`)
		uri := open(t, ctx, filepath.Join(dir, "page.chtl"), `
[Import] @Chtl from "lib.chtl";
body { @Element Card; }`)

		diags, err := diagnostic.GetDiagnostics(ctx, uri)
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.Config().ColorFormat = "cmyk"
		uri := open(t, ctx, filepath.Join(dir, "x.chtl"), `div { }`)
		_, err := diagnostic.GetDiagnostics(ctx, uri)
		assert.Error(t, err)
	})
}

func TestFromError(t *testing.T) {
	path := "/site/index.chtl"
	content := "div {\n  span { }\n}"

	t.Run("error in another file", func(t *testing.T) {
		err := compileerr.NewParseError(ast.Pos{File: "/site/lib.chtl", Line: 3, Column: 1}, "unexpected '}'")
		d := diagnostic.FromError(err, path, content)
		assert.Equal(t, protocol.Range{}, d.Range)
		assert.Equal(t, "/site/lib.chtl:3:1: unexpected '}'", d.Message)
		assert.Equal(t, "parse", d.Code.Value)
	})

	t.Run("error without a position", func(t *testing.T) {
		d := diagnostic.FromError(errors.New("boom"), path, content)
		assert.Equal(t, "boom", d.Message)
		assert.Nil(t, d.Code)
	})

	t.Run("wrapped errors keep their category", func(t *testing.T) {
		err := compileerr.NewCircularImportError("/site/a.chtl", []string{"/site/a.chtl", "/site/b.chtl"}, ast.Pos{})
		assert.Equal(t, "circular-import", diagnostic.Code(err))
	})
}
