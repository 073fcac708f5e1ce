// Package generator emits HTML, CSS and JavaScript from a resolved program.
// The input must contain only elements, text, styles, scripts and origins.
package generator

import (
	"fmt"
	"html"
	"strings"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/color"
	"bennypowers.dev/chtl/internal/log"
)

// Options configures emission
type Options struct {
	// ColorFormat rewrites color literals; Preserve leaves them as written
	ColorFormat color.Format
}

// Output is the generated code. Scripts and global styles are kept apart
// from the markup; Document assembles a single page.
type Output struct {
	HTML string
	CSS  string
	JS   string
}

// voidElements never have content or a closing tag
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

type generator struct {
	opts Options
	html strings.Builder
	css  strings.Builder
	js   strings.Builder
}

// Generate renders prog. Evaluation errors abort generation.
func Generate(prog *ast.Program, opts Options) (*Output, error) {
	g := &generator{opts: opts}
	for _, n := range prog.Children {
		if err := g.node(n, true); err != nil {
			return nil, err
		}
	}
	return &Output{HTML: g.html.String(), CSS: g.css.String(), JS: g.js.String()}, nil
}

func (g *generator) node(n ast.Node, topLevel bool) error {
	switch n := n.(type) {
	case *ast.Element:
		return g.element(n)

	case *ast.Text:
		g.html.WriteString(html.EscapeString(n.Content))

	case *ast.Style:
		// a style block outside an element only contributes rules
		if len(n.Properties) > 0 {
			log.Warn("%s: ignoring %d properties of a global style block", n.Pos, len(n.Properties))
		}
		if err := g.rules(n.Rules, ""); err != nil {
			return err
		}
		g.styleOrigins(n.Origins)

	case *ast.Script:
		g.script(n.Content)

	case *ast.Origin:
		g.origin(n, topLevel)

	case *ast.Program, *ast.StyleProperty, *ast.StyleRule, *ast.Template,
		*ast.TemplateUsage, *ast.Import, *ast.Namespace:
		return fmt.Errorf("%s: unresolved %s node", n.Position(), n.Kind())

	default:
		return fmt.Errorf("generator: unhandled node %T", n)
	}
	return nil
}

func (g *generator) element(el *ast.Element) error {
	g.html.WriteString("<")
	g.html.WriteString(el.Tag)
	for _, attr := range el.Attributes {
		fmt.Fprintf(&g.html, ` %s="%s"`, attr.Key, html.EscapeString(attr.Value))
	}

	var inline []string
	for _, c := range el.Children {
		s, ok := c.(*ast.Style)
		if !ok {
			continue
		}
		for _, p := range s.Properties {
			value, err := g.property(p)
			if err != nil {
				return err
			}
			inline = append(inline, p.Key+":"+value+";")
		}
		if err := g.rules(s.Rules, selfSelector(el)); err != nil {
			return err
		}
		g.styleOrigins(s.Origins)
	}
	if len(inline) > 0 {
		fmt.Fprintf(&g.html, ` style="%s"`, html.EscapeString(strings.Join(inline, "")))
	}
	g.html.WriteString(">")

	if voidElements[strings.ToLower(el.Tag)] {
		return nil
	}
	for _, c := range el.Children {
		if _, ok := c.(*ast.Style); ok {
			continue
		}
		if err := g.node(c, false); err != nil {
			return err
		}
	}
	fmt.Fprintf(&g.html, "</%s>", el.Tag)
	return nil
}

// selfSelector is what `&` stands for inside an element's style block: its
// first class, else its id, else its tag
func selfSelector(el *ast.Element) string {
	if class, ok := el.Attr("class"); ok {
		if fields := strings.Fields(class); len(fields) > 0 {
			return "." + fields[0]
		}
	}
	if id, ok := el.Attr("id"); ok && id != "" {
		return "#" + id
	}
	return el.Tag
}

func (g *generator) rules(rules []*ast.StyleRule, self string) error {
	for _, r := range rules {
		selector := r.Selector
		if self != "" {
			selector = strings.ReplaceAll(selector, "&", self)
		}
		g.css.WriteString(selector)
		g.css.WriteString(" {\n")
		for _, p := range r.Properties {
			value, err := g.property(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(&g.css, "  %s: %s;\n", p.Key, value)
		}
		g.css.WriteString("}\n")
	}
	return nil
}

func (g *generator) styleOrigins(origins []*ast.Origin) {
	for _, o := range origins {
		g.css.WriteString(o.Content)
		g.css.WriteString("\n")
	}
}

func (g *generator) script(content string) {
	if content == "" {
		return
	}
	g.js.WriteString(content)
	g.js.WriteString("\n")
}

// origin emits raw content. Top-level Style and JavaScript origins join the
// global stylesheet and script; inside an element they stay in place,
// wrapped in their tag.
func (g *generator) origin(o *ast.Origin, topLevel bool) {
	switch o.Raw {
	case ast.RawHTML:
		g.html.WriteString(o.Content)
	case ast.RawStyle:
		if topLevel {
			g.css.WriteString(o.Content)
			g.css.WriteString("\n")
			return
		}
		fmt.Fprintf(&g.html, "<style>%s</style>", o.Content)
	case ast.RawJavaScript:
		if topLevel {
			g.script(o.Content)
			return
		}
		fmt.Fprintf(&g.html, "<script>%s</script>", o.Content)
	}
}
