package resolver

import (
	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/collections"
)

// MergeProperties merges an inherited property list into a child's.
// The result is the child's properties in their order, followed by the
// parent's properties the child does not define, in parent order. Keys in
// deletes are removed from the parent's contribution. Parent properties are
// cloned so the parent definition is never shared.
func MergeProperties(child, parent []*ast.StyleProperty, deletes []string) []*ast.StyleProperty {
	own := collections.NewSet[string]()
	for _, p := range child {
		own.Add(p.Key)
	}
	deleted := collections.NewSet(deletes...)

	merged := make([]*ast.StyleProperty, 0, len(child)+len(parent))
	merged = append(merged, child...)
	for _, p := range parent {
		if own.Has(p.Key) || deleted.Has(p.Key) {
			continue
		}
		own.Add(p.Key)
		merged = append(merged, ast.CloneProperty(p))
	}
	return merged
}

// MergeBodies builds an element template body from its parents' resolved
// bodies, in inheritance order, followed by its own nodes
func MergeBodies(parents [][]ast.Node, own []ast.Node) []ast.Node {
	var merged []ast.Node
	for _, body := range parents {
		merged = append(merged, ast.CloneNodes(body)...)
	}
	return append(merged, own...)
}

// OverrideProperties applies usage-site values to a template's properties.
// A base property whose key is overridden keeps its place and takes the
// override's value; overrides for keys the base lacks are appended.
func OverrideProperties(base, overrides []*ast.StyleProperty) []*ast.StyleProperty {
	byKey := make(map[string]*ast.StyleProperty, len(overrides))
	for _, o := range overrides {
		byKey[o.Key] = o
	}
	used := collections.NewSet[string]()

	out := make([]*ast.StyleProperty, 0, len(base)+len(overrides))
	for _, p := range base {
		if o, ok := byKey[p.Key]; ok {
			out = append(out, &ast.StyleProperty{Pos: o.Pos, Key: p.Key, Value: ast.CloneExpr(o.Value)})
			used.Add(p.Key)
			continue
		}
		out = append(out, p)
	}
	for _, o := range overrides {
		if !used.Has(o.Key) {
			used.Add(o.Key)
			out = append(out, ast.CloneProperty(o))
		}
	}
	return out
}

// DeleteProperties removes every property whose key is listed. Deleting a
// key that is absent is a no-op.
func DeleteProperties(props []*ast.StyleProperty, keys []string) []*ast.StyleProperty {
	if len(keys) == 0 {
		return props
	}
	deleted := collections.NewSet(keys...)
	out := make([]*ast.StyleProperty, 0, len(props))
	for _, p := range props {
		if !deleted.Has(p.Key) {
			out = append(out, p)
		}
	}
	return out
}
