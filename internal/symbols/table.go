// Package symbols implements the namespace-aware registry used during
// analysis: template definitions addressed by handle, the selector registry
// for property back-references, and named raw origins.
package symbols

import (
	"fmt"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
)

// TemplateID is a handle into the table's template arena
type TemplateID int

// State tracks inheritance resolution of a template
type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Entry is a registered template definition
type Entry struct {
	ID   TemplateID
	Name string
	Def  *ast.Template
	// Scope is where the definition was declared; its inherit and nested
	// usage references are looked up from here
	Scope Scope
	State State

	// Properties is the merged Style or Var payload once Resolved
	Properties []*ast.StyleProperty
	// Body is the merged Element payload once Resolved
	Body []ast.Node
}

// Kind returns the template kind of the entry
func (e *Entry) Kind() ast.TemplateKind {
	return e.Def.Type
}

// Property returns the last resolved property with the given key
func (e *Entry) Property(key string) (*ast.StyleProperty, bool) {
	for i := len(e.Properties) - 1; i >= 0; i-- {
		if e.Properties[i].Key == key {
			return e.Properties[i], true
		}
	}
	return nil, false
}

// Selector is the style metadata registered for a selector
type Selector struct {
	Name       string
	Pos        ast.Pos
	Properties []*ast.StyleProperty
}

type templateKey struct {
	kind ast.TemplateKind
	name string
}

type originKey struct {
	kind ast.RawKind
	name string
}

// Table is the symbol table of one compilation unit. Entries of imported
// files are merged into the importing unit's table.
type Table struct {
	entries   []*Entry
	byName    map[templateKey]TemplateID
	selectors map[string]*Selector
	origins   map[originKey]*ast.Origin
}

// New creates an empty symbol table
func New() *Table {
	return &Table{
		byName:    make(map[templateKey]TemplateID),
		selectors: make(map[string]*Selector),
		origins:   make(map[originKey]*ast.Origin),
	}
}

// Insert registers a template under scope. Names are unique per kind within
// a scope.
func (t *Table) Insert(scope Scope, def *ast.Template) (TemplateID, error) {
	name := scope.Qualify(def.Name)
	key := templateKey{kind: def.Type, name: name}
	if prev, exists := t.byName[key]; exists {
		return 0, compileerr.NewRedefinitionError(name, def.Pos, t.entries[prev].Def.Pos)
	}
	id := TemplateID(len(t.entries))
	t.entries = append(t.entries, &Entry{ID: id, Name: name, Def: def, Scope: scope})
	t.byName[key] = id
	return id, nil
}

// Lookup finds a template of the given kind. name may itself be qualified.
// With from set, the name is looked up inside that namespace; either way the
// search starts at scope and falls outward to the global scope.
func (t *Table) Lookup(kind ast.TemplateKind, name, from string, scope Scope) (TemplateID, bool) {
	if from != "" {
		name = from + Separator + name
	}
	for _, prefix := range scope.Prefixes() {
		if id, ok := t.byName[templateKey{kind: kind, name: prefix.Qualify(name)}]; ok {
			return id, true
		}
	}
	return 0, false
}

// Entry returns the entry for a handle
func (t *Table) Entry(id TemplateID) *Entry {
	return t.entries[id]
}

// Entries returns every registered template in registration order
func (t *Table) Entries() []*Entry {
	return t.entries
}

// Len returns the number of registered templates
func (t *Table) Len() int {
	return len(t.entries)
}

// InsertSelector registers style metadata for a selector. The first
// registration wins; it returns false when the selector already existed.
func (t *Table) InsertSelector(selector string, props []*ast.StyleProperty, pos ast.Pos) bool {
	if _, exists := t.selectors[selector]; exists {
		return false
	}
	t.selectors[selector] = &Selector{Name: selector, Pos: pos, Properties: props}
	return true
}

// LookupSelector returns the registered metadata for a selector
func (t *Table) LookupSelector(selector string) (*Selector, bool) {
	s, ok := t.selectors[selector]
	return s, ok
}

// LookupSelectorProperty resolves a property back-reference. pos is the
// position of the reference and is attached to the returned error.
func (t *Table) LookupSelectorProperty(selector, key string, pos ast.Pos) (ast.Expr, error) {
	s, ok := t.selectors[selector]
	if !ok {
		return nil, compileerr.NewUnknownSelectorError(selector, pos)
	}
	for i := len(s.Properties) - 1; i >= 0; i-- {
		if s.Properties[i].Key == key {
			return s.Properties[i].Value, nil
		}
	}
	return nil, compileerr.NewUnknownPropertyError(selector, key, pos)
}

// InsertOrigin registers named raw content for `[Origin] @Kind Name;`
// references. Registering the same definition again is a no-op.
func (t *Table) InsertOrigin(o *ast.Origin) error {
	key := originKey{kind: o.Raw, name: o.Name}
	if prev, exists := t.origins[key]; exists {
		if prev == o || (prev.Pos.File != "" && prev.Pos == o.Pos) {
			return nil
		}
		return compileerr.NewRedefinitionError(o.Raw.String()+" "+o.Name, o.Pos, prev.Pos)
	}
	t.origins[key] = o
	return nil
}

// LookupOrigin returns named raw content
func (t *Table) LookupOrigin(kind ast.RawKind, name string) (*ast.Origin, bool) {
	o, ok := t.origins[originKey{kind: kind, name: name}]
	return o, ok
}
