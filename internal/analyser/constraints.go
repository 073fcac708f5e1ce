package analyser

import (
	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/symbols"
)

// checkTemplateConstraints enforces `except @Element Name` against the
// unexpanded usages of a child list
func checkTemplateConstraints(container string, constraints []*ast.Constraint, children []ast.Node) error {
	for _, c := range constraints {
		if c.Type != ast.ConstrainTemplate {
			continue
		}
		for _, n := range children {
			u, ok := n.(*ast.TemplateUsage)
			if !ok || u.Type != ast.ElementTemplate {
				continue
			}
			if u.Name == c.Name || (u.From != "" && u.From+symbols.Separator+u.Name == c.Name) {
				return compileerr.NewConstraintViolationError(container, c.String(), u.Pos)
			}
		}
	}
	return nil
}

// checkConstraints enforces tag and raw-kind exclusions against a resolved
// child list
func checkConstraints(container string, constraints []*ast.Constraint, children []ast.Node) error {
	for _, c := range constraints {
		for _, n := range children {
			if violates(c, n) {
				return compileerr.NewConstraintViolationError(container, c.String(), n.Position())
			}
		}
	}
	return nil
}

func violates(c *ast.Constraint, n ast.Node) bool {
	switch c.Type {
	case ast.ConstrainTag:
		switch n := n.(type) {
		case *ast.Element:
			return n.Tag == c.Name
		case *ast.Script:
			return c.Name == "script"
		case *ast.Style:
			return c.Name == "style"
		}
		return false
	case ast.ConstrainOrigin:
		o, ok := n.(*ast.Origin)
		return ok && o.Raw.String() == c.String()
	}
	return false
}
