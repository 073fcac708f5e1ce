package symbols_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func styleTemplate(name string) *ast.Template {
	return &ast.Template{Name: name, Type: ast.StyleTemplate, Pos: ast.Pos{File: "a.chtl", Line: 1, Column: 1}}
}

func TestScope(t *testing.T) {
	t.Run("push qualifies names", func(t *testing.T) {
		s := symbols.Global().Push("outer").Push("inner")
		assert.Equal(t, "outer::inner::T", s.Qualify("T"))
		assert.Equal(t, "outer::inner", s.String())
	})

	t.Run("push leaves the receiver untouched", func(t *testing.T) {
		outer := symbols.Global().Push("outer")
		_ = outer.Push("inner")
		assert.Equal(t, "outer::T", outer.Qualify("T"))
	})

	t.Run("prefixes run innermost to global", func(t *testing.T) {
		s := symbols.ScopeOf("a::b")
		var got []string
		for _, p := range s.Prefixes() {
			got = append(got, p.String())
		}
		assert.Equal(t, []string{"a::b", "a", "<global>"}, got)
		assert.True(t, s.Prefixes()[2].IsGlobal())
	})
}

func TestInsert(t *testing.T) {
	t.Run("redefinition in the same scope", func(t *testing.T) {
		table := symbols.New()
		_, err := table.Insert(symbols.Global(), styleTemplate("T"))
		require.NoError(t, err)

		_, err = table.Insert(symbols.Global(), styleTemplate("T"))
		require.Error(t, err)
		assert.ErrorIs(t, err, compileerr.ErrRedefinition)
		assert.Contains(t, err.Error(), "'T'")
	})

	t.Run("same name in different scopes", func(t *testing.T) {
		table := symbols.New()
		_, err := table.Insert(symbols.Global(), styleTemplate("T"))
		require.NoError(t, err)
		_, err = table.Insert(symbols.Global().Push("ui"), styleTemplate("T"))
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
	})

	t.Run("same name with different kinds", func(t *testing.T) {
		table := symbols.New()
		_, err := table.Insert(symbols.Global(), styleTemplate("Box"))
		require.NoError(t, err)
		_, err = table.Insert(symbols.Global(), &ast.Template{Name: "Box", Type: ast.ElementTemplate})
		require.NoError(t, err)
	})
}

func TestLookup(t *testing.T) {
	table := symbols.New()
	deep := symbols.Global().Push("outer").Push("inner")
	want, err := table.Insert(deep, styleTemplate("MyTemplate"))
	require.NoError(t, err)
	global, err := table.Insert(symbols.Global(), styleTemplate("Shared"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		tmpl  string
		from  string
		scope symbols.Scope
	}{
		{"inside inner", "MyTemplate", "", deep},
		{"inside outer with from", "MyTemplate", "inner", symbols.ScopeOf("outer")},
		{"global with from", "MyTemplate", "outer::inner", symbols.Global()},
		{"deeper scope with from", "MyTemplate", "outer::inner", deep.Push("deeper")},
		{"fully qualified name", "outer::inner::MyTemplate", "", symbols.Global()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := table.Lookup(ast.StyleTemplate, tt.tmpl, tt.from, tt.scope)
			require.True(t, ok)
			assert.Equal(t, want, id)
			assert.Equal(t, "outer::inner::MyTemplate", table.Entry(id).Name)
		})
	}

	t.Run("falls outward to global", func(t *testing.T) {
		id, ok := table.Lookup(ast.StyleTemplate, "Shared", "", deep)
		require.True(t, ok)
		assert.Equal(t, global, id)
	})

	t.Run("inner names are not visible outside", func(t *testing.T) {
		_, ok := table.Lookup(ast.StyleTemplate, "MyTemplate", "", symbols.Global())
		assert.False(t, ok)
	})

	t.Run("kind is part of the key", func(t *testing.T) {
		_, ok := table.Lookup(ast.ElementTemplate, "Shared", "", symbols.Global())
		assert.False(t, ok)
	})

	t.Run("entry records its scope", func(t *testing.T) {
		assert.Equal(t, deep, table.Entry(want).Scope)
		assert.Equal(t, symbols.Unresolved, table.Entry(want).State)
	})
}

func TestSelectors(t *testing.T) {
	width := &ast.StyleProperty{Key: "width", Value: &ast.Number{Value: 100, Unit: "px"}}
	table := symbols.New()

	assert.True(t, table.InsertSelector("#box", []*ast.StyleProperty{width}, ast.Pos{}))

	t.Run("first registration wins", func(t *testing.T) {
		other := &ast.StyleProperty{Key: "width", Value: &ast.Number{Value: 5, Unit: "px"}}
		assert.False(t, table.InsertSelector("#box", []*ast.StyleProperty{other}, ast.Pos{}))
		v, err := table.LookupSelectorProperty("#box", "width", ast.Pos{})
		require.NoError(t, err)
		assert.Equal(t, "100px", v.String())
	})

	t.Run("unknown selector", func(t *testing.T) {
		_, err := table.LookupSelectorProperty("#nope", "width", ast.Pos{})
		assert.ErrorIs(t, err, compileerr.ErrUnknownSelector)
	})

	t.Run("unknown property", func(t *testing.T) {
		_, err := table.LookupSelectorProperty("#box", "height", ast.Pos{})
		assert.ErrorIs(t, err, compileerr.ErrUnknownProperty)
	})
}

func TestOrigins(t *testing.T) {
	table := symbols.New()
	banner := &ast.Origin{Raw: ast.RawHTML, Name: "banner", Content: "<b>hi</b>"}
	require.NoError(t, table.InsertOrigin(banner))

	got, ok := table.LookupOrigin(ast.RawHTML, "banner")
	require.True(t, ok)
	assert.Same(t, banner, got)

	_, ok = table.LookupOrigin(ast.RawStyle, "banner")
	assert.False(t, ok)

	err := table.InsertOrigin(&ast.Origin{Raw: ast.RawHTML, Name: "banner"})
	assert.ErrorIs(t, err, compileerr.ErrRedefinition)

	t.Run("same definition again", func(t *testing.T) {
		pos := ast.Pos{File: "lib.chtl", Line: 2, Column: 1}
		logo := &ast.Origin{Pos: pos, Raw: ast.RawHTML, Name: "logo"}
		require.NoError(t, table.InsertOrigin(logo))
		assert.NoError(t, table.InsertOrigin(logo))
		assert.NoError(t, table.InsertOrigin(&ast.Origin{Pos: pos, Raw: ast.RawHTML, Name: "logo"}))
	})
}
