package analyser

import (
	"fmt"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/symbols"
)

// refGuard tracks the references being followed while a value resolves.
// enter returns an extended copy, so sibling subexpressions never see each
// other's markers.
type refGuard struct {
	chain []string
}

func (g refGuard) enter(ref string, pos ast.Pos) (refGuard, error) {
	for _, r := range g.chain {
		if r == ref {
			return g, compileerr.NewCircularReferenceError(append(append([]string{}, g.chain...), ref), pos)
		}
	}
	return refGuard{chain: append(append([]string{}, g.chain...), ref)}, nil
}

// resolveExpr returns a copy of e with every property and variable access
// replaced by the value it names. Substituted values are resolved in turn.
func (a *analyser) resolveExpr(e ast.Expr, scope symbols.Scope, guard refGuard) (ast.Expr, error) {
	switch e := e.(type) {
	case *ast.Literal, *ast.Number:
		return e, nil

	case *ast.Binary:
		left, right, err := a.resolvePair(e.Left, e.Right, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Pos: e.Pos, Op: e.Op, Left: left, Right: right}, nil

	case *ast.Unary:
		x, err := a.resolveExpr(e.X, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: e.Pos, Op: e.Op, X: x}, nil

	case *ast.Sequence:
		items, err := a.resolveExprs(e.Items, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Sequence{Pos: e.Pos, Items: items}, nil

	case *ast.List:
		items, err := a.resolveExprs(e.Items, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.List{Pos: e.Pos, Items: items}, nil

	case *ast.Call:
		args, err := a.resolveExprs(e.Args, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Pos: e.Pos, Name: e.Name, Args: args}, nil

	case *ast.Comparison:
		left, right, err := a.resolvePair(e.Left, e.Right, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Comparison{Pos: e.Pos, Op: e.Op, Left: left, Right: right}, nil

	case *ast.Logical:
		left, right, err := a.resolvePair(e.Left, e.Right, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Logical{Pos: e.Pos, Op: e.Op, Left: left, Right: right}, nil

	case *ast.Conditional:
		parts, err := a.resolveExprs([]ast.Expr{e.Cond, e.Then, e.Else}, scope, guard)
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Pos: e.Pos, Cond: parts[0], Then: parts[1], Else: parts[2]}, nil

	case *ast.PropertyAccess:
		inner, err := guard.enter(e.String(), e.Pos)
		if err != nil {
			return nil, err
		}
		value, err := a.table.LookupSelectorProperty(e.Selector, e.Key, e.Pos)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, compileerr.NewUnknownPropertyError(e.Selector, e.Key, e.Pos)
		}
		return a.resolveExpr(value, scope, inner)

	case *ast.VarAccess:
		entry, err := a.lookupTemplate(ast.VarTemplate, e.Group, "", scope, e.Pos)
		if err != nil {
			return nil, err
		}
		inner, err := guard.enter(fmt.Sprintf("%s(%s)", entry.Name, e.Key), e.Pos)
		if err != nil {
			return nil, err
		}
		prop, ok := entry.Property(e.Key)
		if !ok || prop.IsPlaceholder() {
			return nil, compileerr.NewUnknownPropertyError(entry.Name, e.Key, e.Pos)
		}
		return a.resolveExpr(prop.Value, entry.Scope, inner)

	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("analyser: unhandled expression %T", e)
}

func (a *analyser) resolveExprs(items []ast.Expr, scope symbols.Scope, guard refGuard) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(items))
	for i, item := range items {
		resolved, err := a.resolveExpr(item, scope, guard)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func (a *analyser) resolvePair(left, right ast.Expr, scope symbols.Scope, guard refGuard) (ast.Expr, ast.Expr, error) {
	l, err := a.resolveExpr(left, scope, guard)
	if err != nil {
		return nil, nil, err
	}
	r, err := a.resolveExpr(right, scope, guard)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}
