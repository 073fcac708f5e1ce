package analyser

import (
	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/symbols"
)

// collect is pass 1 over a child list. Template definitions are registered
// under scope and dropped from the list; namespace blocks are replaced by
// their collected children, each tagged with the namespace scope. Element
// bodies are collected into fresh copies.
func (a *analyser) collect(nodes []ast.Node, scope symbols.Scope) ([]ast.Node, error) {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.Namespace:
			inner := scope.Push(n.Name)
			children, err := a.collect(n.Children, inner)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				if _, tagged := a.scopes[c]; !tagged {
					a.scopes[c] = inner
				}
			}
			out = append(out, children...)

		case *ast.Template:
			if _, err := a.table.Insert(scope, n); err != nil {
				return nil, err
			}

		case *ast.Import:
			if n.Type == ast.ImportChtl {
				a.pending.Add(n)
			}
			out = append(out, n)

		case *ast.Element:
			children, err := a.collect(n.Children, scope)
			if err != nil {
				return nil, err
			}
			el := *n
			el.Children = children
			out = append(out, &el)

		case *ast.Program:
			children, err := a.collect(n.Children, scope)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)

		case *ast.Text, *ast.Style, *ast.StyleProperty, *ast.StyleRule,
			*ast.Script, *ast.Origin, *ast.TemplateUsage:
			out = append(out, n)
		}
	}
	return out, nil
}
