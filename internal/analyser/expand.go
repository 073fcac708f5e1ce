package analyser

import (
	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/resolver"
	"bennypowers.dev/chtl/internal/symbols"
)

// expandElement replaces an @Element usage with a clone of the template's
// resolved body, specialized by the usage: deletions first, then
// insertions, then per-element specializations. The result is resolved in
// turn, so nested usages expand with this template marked in progress.
func (a *analyser) expandElement(u *ast.TemplateUsage, ctx context) ([]ast.Node, error) {
	e, err := a.lookupTemplate(ast.ElementTemplate, u.Name, u.From, ctx.scope, u.Pos)
	if err != nil {
		return nil, err
	}
	if ctx.expanding.Has(e.ID) {
		chain := append(append([]string{}, ctx.expansion...), e.Name)
		return nil, compileerr.NewCircularInheritanceError(e.Name, chain, u.Pos)
	}
	log.Debug("Expanding @Element %s at %s", e.Name, u.Pos)

	body := ast.CloneNodes(e.Body)
	a.setScope(body, e.Scope)

	body = deleteTargets(body, u.ElementDeletes)
	if body, err = a.insertUsageNodes(body, u.Inserts, e.Name, ctx.scope); err != nil {
		return nil, err
	}
	if err := a.specialize(body, u.Specializations, e.Name, ctx.scope); err != nil {
		return nil, err
	}

	inner := ctx
	inner.expanding = ctx.expanding.With(e.ID)
	inner.expansion = append(append([]string{}, ctx.expansion...), e.Name)
	return a.resolveNodes(body, inner)
}

// matches reports whether n is selected by target, by tag or by the name of
// an unexpanded @Element usage
func matches(n ast.Node, target *ast.ElementTarget) bool {
	if target.Template != "" {
		u, ok := n.(*ast.TemplateUsage)
		if !ok || u.Type != ast.ElementTemplate {
			return false
		}
		return u.Name == target.Template || (u.From != "" && u.From+symbols.Separator+u.Name == target.Template)
	}
	el, ok := n.(*ast.Element)
	return ok && el.Tag == target.Tag
}

// findTargets returns the indices in nodes selected by target. An unindexed
// target selects every match; an indexed one selects the occurrence with
// that zero-based index among matching siblings.
func findTargets(nodes []ast.Node, target *ast.ElementTarget) []int {
	var found []int
	occurrence := 0
	for i, n := range nodes {
		if !matches(n, target) {
			continue
		}
		if !target.HasIndex() || occurrence == target.Index {
			found = append(found, i)
		}
		occurrence++
	}
	return found
}

// findAnchor returns the index of the node an insertion or specialization
// applies to. Unindexed anchors mean the first match.
func findAnchor(nodes []ast.Node, target *ast.ElementTarget) (int, bool) {
	found := findTargets(nodes, target)
	if len(found) == 0 {
		return 0, false
	}
	return found[0], true
}

// deleteTargets removes every node selected by the targets. All targets are
// matched against the list before anything is removed. Targets that match
// nothing are ignored.
func deleteTargets(nodes []ast.Node, targets []*ast.ElementTarget) []ast.Node {
	if len(targets) == 0 {
		return nodes
	}
	removed := make(map[int]bool)
	for _, t := range targets {
		for _, i := range findTargets(nodes, t) {
			removed[i] = true
		}
	}
	out := make([]ast.Node, 0, len(nodes))
	for i, n := range nodes {
		if !removed[i] {
			out = append(out, n)
		}
	}
	return out
}

// insertNodes applies insertions in order, each against the list produced by
// the previous one. Inserted nodes are cloned.
func insertNodes(nodes []ast.Node, inserts []*ast.Insertion, owner string) ([]ast.Node, error) {
	for _, ins := range inserts {
		added := ast.CloneNodes(ins.Nodes)
		out := make([]ast.Node, 0, len(nodes)+len(added))

		switch ins.Position {
		case ast.InsertAtTop:
			out = append(append(out, added...), nodes...)

		case ast.InsertAtBottom:
			out = append(append(out, nodes...), added...)

		case ast.InsertBefore, ast.InsertAfter, ast.InsertReplace:
			at, ok := findAnchor(nodes, ins.Target)
			if !ok {
				return nil, compileerr.NewSpecializationTargetError(owner, ins.Target.String(), ins.Pos)
			}
			out = append(out, nodes[:at]...)
			switch ins.Position {
			case ast.InsertBefore:
				out = append(append(out, added...), nodes[at])
			case ast.InsertAfter:
				out = append(append(out, nodes[at]), added...)
			case ast.InsertReplace:
				out = append(out, added...)
			}
			out = append(out, nodes[at+1:]...)
		}
		nodes = out
	}
	return nodes, nil
}

// insertUsageNodes inserts a usage's nodes, which resolve in the usage's
// scope rather than the template's
func (a *analyser) insertUsageNodes(nodes []ast.Node, inserts []*ast.Insertion, owner string, scope symbols.Scope) ([]ast.Node, error) {
	before := make(map[ast.Node]bool, len(nodes))
	for _, n := range nodes {
		before[n] = true
	}
	out, err := insertNodes(nodes, inserts, owner)
	if err != nil {
		return nil, err
	}
	for _, n := range out {
		if !before[n] {
			a.scopes[n] = scope
		}
	}
	return out, nil
}

// specialize merges attributes, style and children into targeted elements of
// a cloned body. Style properties are appended to the element's existing
// inline style.
func (a *analyser) specialize(nodes []ast.Node, specs []*ast.ElementSpecialization, owner string, scope symbols.Scope) error {
	for _, spec := range specs {
		at, ok := findAnchor(nodes, spec.Target)
		if !ok {
			return compileerr.NewSpecializationTargetError(owner, spec.Target.String(), spec.Pos)
		}
		el, ok := nodes[at].(*ast.Element)
		if !ok {
			return compileerr.NewSpecializationTargetError(owner, spec.Target.String(), spec.Pos)
		}

		for _, attr := range spec.Attributes {
			el.SetAttr(attr.Key, attr.Value)
		}

		if spec.Style != nil {
			added := ast.CloneStyle(spec.Style)
			if existing := el.InlineStyle(); existing != nil {
				mergeStyle(existing, added)
			} else {
				a.scopes[added] = scope
				el.Children = append([]ast.Node{added}, el.Children...)
			}
		}

		children := ast.CloneNodes(spec.Children)
		a.setScope(children, scope)
		el.Children = append(el.Children, children...)
	}
	return nil
}

// mergeStyle appends the contents of added to dst. A property dst already
// sets keeps its place and takes the added value.
func mergeStyle(dst, added *ast.Style) {
	dst.Usages = append(dst.Usages, added.Usages...)
	dst.Properties = resolver.OverrideProperties(dst.Properties, added.Properties)
	dst.Rules = append(dst.Rules, added.Rules...)
	dst.Origins = append(dst.Origins, added.Origins...)
}
