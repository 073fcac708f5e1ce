// Package analyser resolves a parsed program into a flat tree the generator
// can emit directly.
//
// Pass 1 collects template definitions into the symbol table, flattening
// namespaces, and resolves template inheritance. Pass 2 walks the tree and
// builds each container's child list afresh: markup imports are inlined, raw
// imports become origins, element and style usages are expanded, and
// property and variable references are substituted with their values.
package analyser

import (
	"fmt"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/collections"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/importer"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/symbols"
)

// Options configures an analysis run
type Options struct {
	// Importer resolves [Import] directives. Nil reads imports from disk.
	Importer *importer.Importer
}

// Result is a resolved program together with the symbol table built for it
type Result struct {
	Program *ast.Program
	Symbols *symbols.Table
}

// analyser holds the state of one compilation unit and everything it imports
type analyser struct {
	table    *symbols.Table
	importer *importer.Importer

	// scopes records the namespace scope of nodes lifted out of a namespace
	// or spliced in from another scope. Other nodes inherit their parent's.
	scopes map[ast.Node]symbols.Scope

	// pending are markup imports collected but not yet inlined. While any
	// remain, an inheritance parent that cannot be found is deferred.
	pending collections.Set[*ast.Import]

	// units are the collected children of markup units already merged,
	// keyed by canonical path and target scope. A unit reached again is
	// resolved from these without registering its definitions twice.
	units map[string][]ast.Node
}

// context is the traversal state threaded through pass 2. It is passed by
// value; the in-progress sets are copied on every recursion that extends them.
type context struct {
	file  string
	scope symbols.Scope

	// files are canonical paths of the units currently being analysed
	files     collections.Set[string]
	fileChain []string

	// expanding are the element templates whose bodies are being expanded
	expanding collections.Set[symbols.TemplateID]
	expansion []string
}

// Analyse runs both passes over prog. Every error is fatal; on error no
// partial program is returned.
func Analyse(prog *ast.Program, opts Options) (*Result, error) {
	im := opts.Importer
	if im == nil {
		im = importer.New(nil)
	}
	a := &analyser{
		table:    symbols.New(),
		importer: im,
		scopes:   make(map[ast.Node]symbols.Scope),
		pending:  collections.NewSet[*ast.Import](),
		units:    make(map[string][]ast.Node),
	}

	file := prog.File
	if file != "" {
		file = importer.CanonicalFile(file)
	}
	ctx := context{
		file:      file,
		scope:     symbols.Global(),
		files:     collections.NewSet(file),
		fileChain: []string{file},
		expanding: collections.NewSet[symbols.TemplateID](),
	}

	children, err := a.collect(prog.Children, ctx.scope)
	if err != nil {
		return nil, err
	}
	if err := a.sweep(); err != nil {
		return nil, err
	}
	log.Debug("Collected %d templates from %s", a.table.Len(), file)

	if err := checkTemplateConstraints("program", prog.Except, children); err != nil {
		return nil, err
	}
	resolved, err := a.resolveNodes(children, ctx)
	if err != nil {
		return nil, err
	}
	if err := checkConstraints("program", prog.Except, resolved); err != nil {
		return nil, err
	}

	// parents deferred on a pending import must all be resolvable now
	if err := a.sweep(); err != nil {
		return nil, err
	}

	return &Result{
		Program: &ast.Program{Pos: prog.Pos, File: prog.File, Children: resolved},
		Symbols: a.table,
	}, nil
}

// scopeOf returns the recorded scope of n, or fallback
func (a *analyser) scopeOf(n ast.Node, fallback symbols.Scope) symbols.Scope {
	if s, ok := a.scopes[n]; ok {
		return s
	}
	return fallback
}

// setScope records scope for each node of a spliced list
func (a *analyser) setScope(nodes []ast.Node, scope symbols.Scope) {
	for _, n := range nodes {
		a.scopes[n] = scope
	}
}

// resolveNodes builds the resolved child list of a container. Each child may
// resolve to zero or more nodes; produced nodes are appended and never
// revisited by this loop.
func (a *analyser) resolveNodes(nodes []ast.Node, ctx context) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		c := ctx
		c.scope = a.scopeOf(n, ctx.scope)
		resolved, err := a.resolveNode(n, c)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func (a *analyser) resolveNode(n ast.Node, ctx context) ([]ast.Node, error) {
	switch n := n.(type) {
	case *ast.Import:
		return a.resolveImport(n, ctx)

	case *ast.TemplateUsage:
		if n.Type != ast.ElementTemplate {
			return nil, compileerr.NewParseError(n.Pos, "%s usage is only allowed inside a style block", n.Type)
		}
		return a.expandElement(n, ctx)

	case *ast.Element:
		el, err := a.resolveElement(n, ctx)
		if err != nil {
			return nil, err
		}
		return []ast.Node{el}, nil

	case *ast.Style:
		s, err := a.resolveStyle(n, ctx.scope)
		if err != nil {
			return nil, err
		}
		a.registerRules(s.Rules)
		return []ast.Node{s}, nil

	case *ast.Origin:
		o, err := a.resolveOrigin(n)
		if err != nil || o == nil {
			return nil, err
		}
		return []ast.Node{o}, nil

	case *ast.Text, *ast.Script:
		return []ast.Node{n}, nil

	case *ast.Template:
		// registered in pass 1; definitions produce no output
		return nil, nil

	case *ast.Namespace, *ast.Program, *ast.StyleProperty, *ast.StyleRule:
		return nil, fmt.Errorf("%s: unexpected %s node in pass 2", n.Position(), n.Kind())
	}
	return nil, fmt.Errorf("analyser: unhandled node %T", n)
}

// resolveElement resolves an element's inline style first, registers its
// selectors, and only then visits its children, so that later siblings and
// descendants can reference it.
func (a *analyser) resolveElement(e *ast.Element, ctx context) (*ast.Element, error) {
	out := &ast.Element{Pos: e.Pos, Tag: e.Tag, Except: e.Except}
	for _, attr := range e.Attributes {
		c := *attr
		out.Attributes = append(out.Attributes, &c)
	}

	styles := make(map[int]*ast.Style)
	var inline []*ast.Style
	for i, c := range e.Children {
		s, ok := c.(*ast.Style)
		if !ok {
			continue
		}
		resolved, err := a.resolveStyle(s, a.scopeOf(s, ctx.scope))
		if err != nil {
			return nil, err
		}
		styles[i] = resolved
		inline = append(inline, resolved)
	}
	applyAutoSelectors(out, inline)
	a.registerElement(out, inline)

	if err := checkTemplateConstraints(e.Tag, e.Except, e.Children); err != nil {
		return nil, err
	}
	for i, c := range e.Children {
		if s, ok := styles[i]; ok {
			out.Children = append(out.Children, s)
			continue
		}
		resolved, err := a.resolveNodes([]ast.Node{c}, ctx)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, resolved...)
	}
	if err := checkConstraints(e.Tag, e.Except, out.Children); err != nil {
		return nil, err
	}
	return out, nil
}
