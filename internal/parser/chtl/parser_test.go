package chtl_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/parser/chtl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := chtl.Parse("test.chtl", []byte(src))
	require.NoError(t, err)
	return prog
}

func TestParseElements(t *testing.T) {
	t.Run("attributes text and children", func(t *testing.T) {
		prog := parse(t, `
html {
  body {
    div {
      id: "box";
      class = card wide;
      text { "Hello" }
      span { text: world; }
    }
  }
}`)
		require.Len(t, prog.Children, 1)
		html := prog.Children[0].(*ast.Element)
		assert.Equal(t, "html", html.Tag)
		div := html.Children[0].(*ast.Element).Children[0].(*ast.Element)

		id, ok := div.Attr("id")
		require.True(t, ok)
		assert.Equal(t, "box", id)
		class, _ := div.Attr("class")
		assert.Equal(t, "card wide", class)

		require.Len(t, div.Children, 2)
		assert.Equal(t, "Hello", div.Children[0].(*ast.Text).Content)
		span := div.Children[1].(*ast.Element)
		assert.Equal(t, "world", span.Children[0].(*ast.Text).Content)
	})

	t.Run("unquoted text keeps word spacing", func(t *testing.T) {
		prog := parse(t, `p { text { Hello, big world } }`)
		p := prog.Children[0].(*ast.Element)
		assert.Equal(t, "Hello, big world", p.Children[0].(*ast.Text).Content)
	})

	t.Run("script", func(t *testing.T) {
		prog := parse(t, `div { script { console.log("{}"); } }`)
		div := prog.Children[0].(*ast.Element)
		assert.Equal(t, `console.log("{}");`, div.Children[0].(*ast.Script).Content)
	})

	t.Run("except", func(t *testing.T) {
		prog := parse(t, `except script; div { except span, @Element Box, @Html; }`)
		require.Len(t, prog.Except, 1)
		assert.Equal(t, "script", prog.Except[0].Name)

		div := prog.Children[0].(*ast.Element)
		require.Len(t, div.Except, 3)
		assert.Equal(t, ast.ConstrainTag, div.Except[0].Type)
		assert.Equal(t, ast.ConstrainTemplate, div.Except[1].Type)
		assert.Equal(t, "Box", div.Except[1].Name)
		assert.Equal(t, ast.ConstrainOrigin, div.Except[2].Type)
		assert.Equal(t, "@Html", div.Except[2].String())
	})

	t.Run("except with a template prefix", func(t *testing.T) {
		prog := parse(t, `div { except [Template] @Element Box, [Custom] @Element ui::Card; }`)
		div := prog.Children[0].(*ast.Element)
		require.Len(t, div.Except, 2)
		assert.Equal(t, ast.ConstrainTemplate, div.Except[0].Type)
		assert.Equal(t, "Box", div.Except[0].Name)
		assert.Equal(t, ast.ConstrainTemplate, div.Except[1].Type)
		assert.Equal(t, "ui::Card", div.Except[1].Name)
	})
}

func TestParseStyle(t *testing.T) {
	prog := parse(t, `
div {
  style {
    @Style Base;
    @Style Theme from ui { color: red; delete margin, padding; }
    width: 100px;
    font-family: Arial, sans-serif;
    .card { height: 10px; }
    #main { top: 0; }
    &:hover { color: blue; }
    a:hover { color: green; }
  }
}`)
	st := prog.Children[0].(*ast.Element).Children[0].(*ast.Style)

	require.Len(t, st.Usages, 2)
	assert.Equal(t, "Base", st.Usages[0].Name)
	assert.Equal(t, "ui", st.Usages[1].From)
	assert.Equal(t, []string{"margin", "padding"}, st.Usages[1].Deletes)
	require.Len(t, st.Usages[1].Properties, 1)

	require.Len(t, st.Properties, 2)
	assert.Equal(t, "width", st.Properties[0].Key)
	list, ok := st.Properties[1].Value.(*ast.List)
	require.True(t, ok)
	assert.Equal(t, "Arial, sans-serif", list.String())

	selectors := make([]string, len(st.Rules))
	for i, r := range st.Rules {
		selectors[i] = r.Selector
	}
	assert.Equal(t, []string{".card", "#main", "&:hover", "a:hover"}, selectors)
}

func TestParseValues(t *testing.T) {
	value := func(t *testing.T, v string) ast.Expr {
		t.Helper()
		prog := parse(t, "div { style { x: "+v+"; } }")
		return prog.Children[0].(*ast.Element).Children[0].(*ast.Style).Properties[0].Value
	}

	t.Run("number with unit", func(t *testing.T) {
		n, ok := value(t, "16px").(*ast.Number)
		require.True(t, ok)
		assert.Equal(t, 16.0, n.Value)
		assert.Equal(t, "px", n.Unit)
	})

	t.Run("arithmetic precedence", func(t *testing.T) {
		b, ok := value(t, "10px + 2px * 3").(*ast.Binary)
		require.True(t, ok)
		assert.Equal(t, "+", b.Op)
		assert.IsType(t, &ast.Binary{}, b.Right)
	})

	t.Run("negative term starts a sequence item", func(t *testing.T) {
		seq, ok := value(t, "1px -2px").(*ast.Sequence)
		require.True(t, ok)
		require.Len(t, seq.Items, 2)
		assert.IsType(t, &ast.Unary{}, seq.Items[1])
	})

	t.Run("sequence", func(t *testing.T) {
		seq, ok := value(t, "1px solid black").(*ast.Sequence)
		require.True(t, ok)
		assert.Equal(t, "1px solid black", seq.String())
	})

	t.Run("color literal", func(t *testing.T) {
		lit, ok := value(t, "#ff0000").(*ast.Literal)
		require.True(t, ok)
		assert.Equal(t, ast.LitColor, lit.Type)
	})

	t.Run("id property access", func(t *testing.T) {
		acc, ok := value(t, "#box.width").(*ast.PropertyAccess)
		require.True(t, ok)
		assert.Equal(t, "#box", acc.Selector)
		assert.Equal(t, "width", acc.Key)
	})

	t.Run("class property access", func(t *testing.T) {
		acc, ok := value(t, ".card.height").(*ast.PropertyAccess)
		require.True(t, ok)
		assert.Equal(t, ".card", acc.Selector)
	})

	t.Run("tag property access", func(t *testing.T) {
		acc, ok := value(t, "div.padding").(*ast.PropertyAccess)
		require.True(t, ok)
		assert.Equal(t, "div", acc.Selector)
		assert.Equal(t, "padding", acc.Key)
	})

	t.Run("variable access", func(t *testing.T) {
		v, ok := value(t, "Theme(primary)").(*ast.VarAccess)
		require.True(t, ok)
		assert.Equal(t, "Theme", v.Group)
		assert.Equal(t, "primary", v.Key)
	})

	t.Run("qualified variable access", func(t *testing.T) {
		v, ok := value(t, "ui::Theme(primary)").(*ast.VarAccess)
		require.True(t, ok)
		assert.Equal(t, "ui::Theme", v.Group)
	})

	t.Run("css function", func(t *testing.T) {
		c, ok := value(t, "rgb(0, 128, 255)").(*ast.Call)
		require.True(t, ok)
		assert.Equal(t, "rgb", c.Name)
		assert.Len(t, c.Args, 3)
	})

	t.Run("url keeps its path", func(t *testing.T) {
		c, ok := value(t, "url(img/bg.png)").(*ast.Call)
		require.True(t, ok)
		assert.Equal(t, "url(img/bg.png)", c.String())
	})

	t.Run("important", func(t *testing.T) {
		seq, ok := value(t, "red !important").(*ast.Sequence)
		require.True(t, ok)
		assert.Equal(t, "red !important", seq.String())
	})

	t.Run("conditional", func(t *testing.T) {
		c, ok := value(t, "1 > 0 ? 100px : 50px").(*ast.Conditional)
		require.True(t, ok)
		cmp, ok := c.Cond.(*ast.Comparison)
		require.True(t, ok)
		assert.Equal(t, ">", cmp.Op)
		assert.Equal(t, "100px", c.Then.String())
		assert.Equal(t, "50px", c.Else.String())
	})

	t.Run("logical precedence", func(t *testing.T) {
		c, ok := value(t, "1 > 5 || 3 < 4 && 2 != 1 ? a : b").(*ast.Conditional)
		require.True(t, ok)
		or, ok := c.Cond.(*ast.Logical)
		require.True(t, ok)
		assert.Equal(t, "||", or.Op)
		and, ok := or.Right.(*ast.Logical)
		require.True(t, ok)
		assert.Equal(t, "&&", and.Op)
		assert.Equal(t, "!=", and.Right.(*ast.Comparison).Op)
	})

	t.Run("two-character comparisons", func(t *testing.T) {
		for _, op := range []string{"==", "!=", "<=", ">="} {
			cmp, ok := value(t, "#box.width "+op+" 10px ? a : b").(*ast.Conditional).Cond.(*ast.Comparison)
			require.True(t, ok, op)
			assert.Equal(t, op, cmp.Op)
			assert.IsType(t, &ast.PropertyAccess{}, cmp.Left)
		}
	})

	t.Run("nested conditional", func(t *testing.T) {
		c, ok := value(t, "1 > 2 ? a : 2 > 1 ? b : c").(*ast.Conditional)
		require.True(t, ok)
		assert.IsType(t, &ast.Conditional{}, c.Else)
	})
}

func TestParseTemplates(t *testing.T) {
	t.Run("style template with inheritance", func(t *testing.T) {
		prog := parse(t, `
[Template] @Style Child {
  inherit @Style Base;
  @Style ui::Extra;
  font-size: 16px;
}`)
		tmpl := prog.Children[0].(*ast.Template)
		assert.Equal(t, ast.StyleTemplate, tmpl.Type)
		assert.False(t, tmpl.Custom)
		assert.Equal(t, []string{"Base", "ui::Extra"}, tmpl.Inherits)
		require.Len(t, tmpl.Properties, 1)
	})

	t.Run("custom style placeholders and deletes", func(t *testing.T) {
		prog := parse(t, `
[Custom] @Style T {
  color, margin;
  padding;
  delete border;
  width: 1px;
}`)
		tmpl := prog.Children[0].(*ast.Template)
		assert.True(t, tmpl.Custom)
		require.Len(t, tmpl.Properties, 4)
		assert.True(t, tmpl.Properties[0].IsPlaceholder())
		assert.True(t, tmpl.Properties[2].IsPlaceholder())
		assert.False(t, tmpl.Properties[3].IsPlaceholder())
		assert.Equal(t, []string{"border"}, tmpl.Deletes)
	})

	t.Run("placeholder in plain template is an error", func(t *testing.T) {
		_, err := chtl.Parse("test.chtl", []byte(`[Template] @Style T { color; }`))
		require.Error(t, err)
		assert.ErrorIs(t, err, compileerr.ErrParse)
		assert.Contains(t, err.Error(), "placeholder 'color'")
	})

	t.Run("element template", func(t *testing.T) {
		prog := parse(t, `
[Custom] @Element Card {
  inherit @Element Base;
  div { } 
  @Element Footer;
  delete span[1];
  insert at bottom { p { } }
}`)
		tmpl := prog.Children[0].(*ast.Template)
		assert.Equal(t, []string{"Base"}, tmpl.Inherits)
		require.Len(t, tmpl.Body, 2)
		assert.IsType(t, &ast.TemplateUsage{}, tmpl.Body[1])
		require.Len(t, tmpl.ElementDeletes, 1)
		assert.Equal(t, 1, tmpl.ElementDeletes[0].Index)
		require.Len(t, tmpl.Inserts, 1)
		assert.Equal(t, ast.InsertAtBottom, tmpl.Inserts[0].Position)
	})

	t.Run("var template", func(t *testing.T) {
		prog := parse(t, `[Template] @Var Theme { primary: #336699; gap = 4px; }`)
		tmpl := prog.Children[0].(*ast.Template)
		assert.Equal(t, ast.VarTemplate, tmpl.Type)
		require.Len(t, tmpl.Properties, 2)
		assert.Equal(t, "gap", tmpl.Properties[1].Key)
	})

	t.Run("mismatched inheritance kind", func(t *testing.T) {
		_, err := chtl.Parse("test.chtl", []byte(`[Template] @Style A { inherit @Element B; }`))
		require.Error(t, err)
		assert.ErrorIs(t, err, compileerr.ErrParse)
	})
}

func TestParseElementUsage(t *testing.T) {
	prog := parse(t, `
body {
  @Element Box from outer.inner {
    delete span, div[2], @Element Icon;
    insert after div[0] { p { } }
    insert before span { hr { } }
    insert replace em { b { } }
    insert at top { header { } }
    div[1] {
      class: tall;
      style { height: 200px; }
      span { }
    }
  }
}`)
	body := prog.Children[0].(*ast.Element)
	u := body.Children[0].(*ast.TemplateUsage)
	assert.Equal(t, ast.ElementTemplate, u.Type)
	assert.Equal(t, "Box", u.Name)
	assert.Equal(t, "outer::inner", u.From)

	require.Len(t, u.ElementDeletes, 3)
	assert.False(t, u.ElementDeletes[0].HasIndex())
	assert.Equal(t, 2, u.ElementDeletes[1].Index)
	assert.Equal(t, "Icon", u.ElementDeletes[2].Template)

	require.Len(t, u.Inserts, 4)
	assert.Equal(t, ast.InsertAfter, u.Inserts[0].Position)
	assert.Equal(t, "div[0]", u.Inserts[0].Target.String())
	assert.Equal(t, ast.InsertBefore, u.Inserts[1].Position)
	assert.Equal(t, ast.InsertReplace, u.Inserts[2].Position)
	assert.Equal(t, ast.InsertAtTop, u.Inserts[3].Position)
	assert.Nil(t, u.Inserts[3].Target)

	require.Len(t, u.Specializations, 1)
	spec := u.Specializations[0]
	assert.Equal(t, 1, spec.Target.Index)
	require.Len(t, spec.Attributes, 1)
	require.NotNil(t, spec.Style)
	assert.Len(t, spec.Style.Properties, 1)
	assert.Len(t, spec.Children, 1)
}

func TestParseDirectives(t *testing.T) {
	t.Run("imports", func(t *testing.T) {
		prog := parse(t, `
[Import] @Chtl from "lib/a.chtl" as lib;
[Import] @Style from theme.css;
[Import] @Html from "banner.html" as banner;
[Import] @Var from "tokens.json" as Tokens;`)
		require.Len(t, prog.Children, 4)
		a := prog.Children[0].(*ast.Import)
		assert.Equal(t, ast.ImportChtl, a.Type)
		assert.Equal(t, "lib/a.chtl", a.Path)
		assert.Equal(t, "lib", a.Alias)
		b := prog.Children[1].(*ast.Import)
		assert.Equal(t, "theme.css", b.Path)
		assert.Empty(t, b.Alias)
		assert.Equal(t, ast.ImportVar, prog.Children[3].(*ast.Import).Type)
	})

	t.Run("namespaces", func(t *testing.T) {
		prog := parse(t, `
[Namespace] outer {
  [Namespace] inner {
    [Template] @Style T { color: red; }
  }
}`)
		outer := prog.Children[0].(*ast.Namespace)
		assert.Equal(t, "outer", outer.Name)
		inner := outer.Children[0].(*ast.Namespace)
		assert.IsType(t, &ast.Template{}, inner.Children[0])
	})

	t.Run("namespace without braces covers the rest", func(t *testing.T) {
		prog := parse(t, `[Namespace] ui; [Template] @Style A { color: red; } div { }`)
		require.Len(t, prog.Children, 1)
		assert.Len(t, prog.Children[0].(*ast.Namespace).Children, 2)
	})

	t.Run("origins", func(t *testing.T) {
		prog := parse(t, `
[Origin] @Html { <b>raw</b> }
[Origin] @Style named { .a { color: red; } }
[Origin] @JavaScript named;`)
		inline := prog.Children[0].(*ast.Origin)
		assert.Equal(t, ast.RawHTML, inline.Raw)
		assert.Equal(t, "<b>raw</b>", inline.Content)
		named := prog.Children[1].(*ast.Origin)
		assert.Equal(t, "named", named.Name)
		assert.Equal(t, ".a { color: red; }", named.Content)
		ref := prog.Children[2].(*ast.Origin)
		assert.True(t, ref.Ref)
		assert.Equal(t, ast.RawJavaScript, ref.Raw)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing brace", "div {\n  span {\n}", 3},
		{"unknown directive", "[Bogus] x", 1},
		{"unknown template kind", "[Template] @Thing T { }", 1},
		{"style usage outside style", "div {\n  @Style T;\n}", 2},
		{"bad index", "@Element B { div[x] { } }", 1},
		{"missing value", "div { style { color: ; } }", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chtl.Parse("test.chtl", []byte(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, compileerr.ErrParse)
			pos, ok := compileerr.Position(err)
			require.True(t, ok)
			assert.Equal(t, tt.line, pos.Line)
		})
	}
}

func TestParseValue(t *testing.T) {
	t.Run("standalone value", func(t *testing.T) {
		v, err := chtl.ParseValue("tokens.json", "8px * 2")
		require.NoError(t, err)
		assert.Equal(t, "8px * 2", v.String())
	})

	t.Run("trailing tokens", func(t *testing.T) {
		_, err := chtl.ParseValue("tokens.json", "8px;")
		assert.ErrorIs(t, err, compileerr.ErrParse)
	})

	t.Run("conditional without else", func(t *testing.T) {
		_, err := chtl.ParseValue("tokens.json", "1 > 0 ? 100px")
		assert.ErrorIs(t, err, compileerr.ErrParse)
	})
}
