package analyser

import (
	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/collections"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/resolver"
	"bennypowers.dev/chtl/internal/symbols"
)

func graphKey(e *symbols.Entry) string {
	return e.Kind().String() + " " + e.Name
}

// sweep resolves inheritance for every unresolved template, parents first.
// A parent that cannot be found is deferred while markup imports are still
// pending, along with everything that inherits from it.
func (a *analyser) sweep() error {
	graph := resolver.NewDependencyGraph()
	entries := make(map[string]*symbols.Entry)
	deferred := collections.NewSet[string]()

	for _, e := range a.table.Entries() {
		if e.State == symbols.Resolved {
			continue
		}
		key := graphKey(e)
		entries[key] = e
		graph.AddNode(key)
		for _, name := range e.Def.Inherits {
			pid, ok := a.table.Lookup(e.Kind(), name, "", e.Scope)
			if !ok {
				if a.pending.Len() > 0 {
					deferred.Add(key)
					continue
				}
				return compileerr.NewUnknownTemplateError(e.Kind(), name, "", e.Def.Pos)
			}
			parent := a.table.Entry(pid)
			entries[graphKey(parent)] = parent
			graph.AddDependency(key, graphKey(parent))
		}
	}

	if cycle := graph.FindCycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, key := range cycle {
			names[i] = entries[key].Name
		}
		first := entries[cycle[0]]
		return compileerr.NewCircularInheritanceError(first.Name, names, first.Def.Pos)
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}
	for _, key := range order {
		if deferred.Has(key) {
			continue
		}
		blocked := false
		for _, dep := range graph.GetDependencies(key) {
			if deferred.Has(dep) {
				blocked = true
				break
			}
		}
		if blocked {
			deferred.Add(key)
			continue
		}
		e := entries[key]
		if err := a.resolveTemplate(e.ID, e.Def.Pos); err != nil {
			return err
		}
	}
	return nil
}

// resolveTemplate merges a template's inherited payload into its entry,
// resolving parents depth-first. Reaching a template that is still being
// resolved means the inheritance chain loops.
func (a *analyser) resolveTemplate(id symbols.TemplateID, pos ast.Pos) error {
	e := a.table.Entry(id)
	switch e.State {
	case symbols.Resolved:
		return nil
	case symbols.Resolving:
		return compileerr.NewCircularInheritanceError(e.Name, nil, pos)
	}

	e.State = symbols.Resolving
	parents := make([]*symbols.Entry, 0, len(e.Def.Inherits))
	for _, name := range e.Def.Inherits {
		pid, ok := a.table.Lookup(e.Kind(), name, "", e.Scope)
		if !ok {
			e.State = symbols.Unresolved
			return compileerr.NewUnknownTemplateError(e.Kind(), name, "", e.Def.Pos)
		}
		if err := a.resolveTemplate(pid, e.Def.Pos); err != nil {
			e.State = symbols.Unresolved
			return err
		}
		parents = append(parents, a.table.Entry(pid))
	}

	switch e.Kind() {
	case ast.StyleTemplate, ast.VarTemplate:
		props := e.Def.Properties
		for _, p := range parents {
			props = resolver.MergeProperties(props, p.Properties, e.Def.Deletes)
		}
		e.Properties = props

	case ast.ElementTemplate:
		bodies := make([][]ast.Node, len(parents))
		for i, p := range parents {
			bodies[i] = p.Body
		}
		inherited := resolver.MergeBodies(bodies, nil)
		inherited = deleteTargets(inherited, e.Def.ElementDeletes)
		body, err := insertNodes(append(inherited, e.Def.Body...), e.Def.Inserts, e.Name)
		if err != nil {
			e.State = symbols.Unresolved
			return err
		}
		e.Body = body
	}

	e.State = symbols.Resolved
	return nil
}

// lookupTemplate finds and resolves a template for a usage site
func (a *analyser) lookupTemplate(kind ast.TemplateKind, name, from string, scope symbols.Scope, pos ast.Pos) (*symbols.Entry, error) {
	id, ok := a.table.Lookup(kind, name, from, scope)
	if !ok {
		return nil, compileerr.NewUnknownTemplateError(kind, name, from, pos)
	}
	if err := a.resolveTemplate(id, pos); err != nil {
		return nil, err
	}
	return a.table.Entry(id), nil
}
