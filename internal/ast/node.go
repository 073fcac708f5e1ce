// Package ast defines the node model produced by the parser, rewritten by the
// analyser and consumed by the generator.
//
// Node and Expr are closed sets: both interfaces carry an unexported marker
// method, so only the variants declared in this package satisfy them. Every
// consumer switches over the concrete types and reports unhandled variants.
package ast

import "fmt"

// Pos is a source position. Line and Column are 1-based; the zero value means
// the position is unknown.
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position points into a source file
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// NodeKind identifies a Node variant
type NodeKind int

const (
	KindProgram NodeKind = iota
	KindElement
	KindText
	KindStyle
	KindStyleProperty
	KindStyleRule
	KindScript
	KindOrigin
	KindTemplate
	KindTemplateUsage
	KindImport
	KindNamespace
)

var nodeKindNames = [...]string{
	KindProgram:       "Program",
	KindElement:       "Element",
	KindText:          "Text",
	KindStyle:         "Style",
	KindStyleProperty: "StyleProperty",
	KindStyleRule:     "StyleRule",
	KindScript:        "Script",
	KindOrigin:        "Origin",
	KindTemplate:      "Template",
	KindTemplateUsage: "TemplateUsage",
	KindImport:        "Import",
	KindNamespace:     "Namespace",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node is a markup tree node
type Node interface {
	Kind() NodeKind
	Position() Pos
	node()
}

// TemplateKind is the payload kind of a template definition or usage
type TemplateKind int

const (
	StyleTemplate TemplateKind = iota
	ElementTemplate
	VarTemplate
)

func (k TemplateKind) String() string {
	switch k {
	case StyleTemplate:
		return "@Style"
	case ElementTemplate:
		return "@Element"
	case VarTemplate:
		return "@Var"
	}
	return fmt.Sprintf("TemplateKind(%d)", int(k))
}

// RawKind tags raw passthrough content
type RawKind int

const (
	RawHTML RawKind = iota
	RawStyle
	RawJavaScript
)

func (k RawKind) String() string {
	switch k {
	case RawHTML:
		return "@Html"
	case RawStyle:
		return "@Style"
	case RawJavaScript:
		return "@JavaScript"
	}
	return fmt.Sprintf("RawKind(%d)", int(k))
}

// ImportKind is the kind named by an [Import] directive
type ImportKind int

const (
	ImportChtl ImportKind = iota
	ImportHTML
	ImportStyle
	ImportJavaScript
	ImportVar
)

func (k ImportKind) String() string {
	switch k {
	case ImportChtl:
		return "@Chtl"
	case ImportHTML:
		return "@Html"
	case ImportStyle:
		return "@Style"
	case ImportJavaScript:
		return "@JavaScript"
	case ImportVar:
		return "@Var"
	}
	return fmt.Sprintf("ImportKind(%d)", int(k))
}

// RawKind returns the origin kind produced by a raw import.
// The boolean is false for markup and token imports.
func (k ImportKind) RawKind() (RawKind, bool) {
	switch k {
	case ImportHTML:
		return RawHTML, true
	case ImportStyle:
		return RawStyle, true
	case ImportJavaScript:
		return RawJavaScript, true
	}
	return 0, false
}

// Program is the root of a compilation unit
type Program struct {
	Pos      Pos
	File     string
	Children []Node
	Except   []*Constraint
}

// Attribute is a key/value pair on an element
type Attribute struct {
	Pos   Pos
	Key   string
	Value string
}

// Element is an HTML element
type Element struct {
	Pos        Pos
	Tag        string
	Attributes []*Attribute
	Children   []Node
	Except     []*Constraint
}

// Text is a text node
type Text struct {
	Pos     Pos
	Content string
}

// Style is a style block. Inside an element it renders inline; at program
// level it renders into the global stylesheet.
type Style struct {
	Pos        Pos
	Usages     []*TemplateUsage
	Properties []*StyleProperty
	Rules      []*StyleRule
	Origins    []*Origin
}

// StyleProperty is a key with a value expression. A nil Value marks a
// placeholder inside a [Custom] @Style definition.
type StyleProperty struct {
	Pos   Pos
	Key   string
	Value Expr
}

// IsPlaceholder reports whether the property is valueless
func (p *StyleProperty) IsPlaceholder() bool {
	return p.Value == nil
}

// StyleRule is a selector-scoped block inside a style block
type StyleRule struct {
	Pos        Pos
	Selector   string
	Usages     []*TemplateUsage
	Properties []*StyleProperty
}

// Script is a raw script block
type Script struct {
	Pos     Pos
	Content string
}

// Origin is raw passthrough content. A named origin with empty content is a
// reference to content registered by a raw import.
type Origin struct {
	Pos     Pos
	Raw     RawKind
	Name    string
	Content string
	// Ref marks `[Origin] @Kind Name;` which splices registered content
	Ref bool
}

// Template is a [Template] or [Custom] definition
type Template struct {
	Pos      Pos
	Name     string
	Type     TemplateKind
	Custom   bool
	Inherits []string
	// Properties holds Style and Var payloads
	Properties []*StyleProperty
	// Body holds Element payloads
	Body []Node
	// Deletes lists property keys removed from inherited Style/Var payloads
	Deletes []string
	// ElementDeletes and Inserts specialize inherited Element payloads
	ElementDeletes []*ElementTarget
	Inserts        []*Insertion
}

// TemplateUsage references a template by qualified name
type TemplateUsage struct {
	Pos  Pos
	Type TemplateKind
	Name string
	From string
	// Properties fill placeholders or override template values
	Properties []*StyleProperty
	Deletes    []string

	ElementDeletes  []*ElementTarget
	Inserts         []*Insertion
	Specializations []*ElementSpecialization
}

// Import is an [Import] directive
type Import struct {
	Pos   Pos
	Type  ImportKind
	Path  string
	Alias string
}

// Namespace is a [Namespace] block
type Namespace struct {
	Pos      Pos
	Name     string
	Children []Node
}

func (n *Program) Kind() NodeKind       { return KindProgram }
func (n *Element) Kind() NodeKind       { return KindElement }
func (n *Text) Kind() NodeKind          { return KindText }
func (n *Style) Kind() NodeKind         { return KindStyle }
func (n *StyleProperty) Kind() NodeKind { return KindStyleProperty }
func (n *StyleRule) Kind() NodeKind     { return KindStyleRule }
func (n *Script) Kind() NodeKind        { return KindScript }
func (n *Origin) Kind() NodeKind        { return KindOrigin }
func (n *Template) Kind() NodeKind      { return KindTemplate }
func (n *TemplateUsage) Kind() NodeKind { return KindTemplateUsage }
func (n *Import) Kind() NodeKind        { return KindImport }
func (n *Namespace) Kind() NodeKind     { return KindNamespace }

func (n *Program) Position() Pos       { return n.Pos }
func (n *Element) Position() Pos       { return n.Pos }
func (n *Text) Position() Pos          { return n.Pos }
func (n *Style) Position() Pos         { return n.Pos }
func (n *StyleProperty) Position() Pos { return n.Pos }
func (n *StyleRule) Position() Pos     { return n.Pos }
func (n *Script) Position() Pos        { return n.Pos }
func (n *Origin) Position() Pos        { return n.Pos }
func (n *Template) Position() Pos      { return n.Pos }
func (n *TemplateUsage) Position() Pos { return n.Pos }
func (n *Import) Position() Pos        { return n.Pos }
func (n *Namespace) Position() Pos     { return n.Pos }

func (*Program) node()       {}
func (*Element) node()       {}
func (*Text) node()          {}
func (*Style) node()         {}
func (*StyleProperty) node() {}
func (*StyleRule) node()     {}
func (*Script) node()        {}
func (*Origin) node()        {}
func (*Template) node()      {}
func (*TemplateUsage) node() {}
func (*Import) node()        {}
func (*Namespace) node()     {}

// Attr returns the value of the last attribute with the given key
func (e *Element) Attr(key string) (string, bool) {
	for i := len(e.Attributes) - 1; i >= 0; i-- {
		if e.Attributes[i].Key == key {
			return e.Attributes[i].Value, true
		}
	}
	return "", false
}

// SetAttr overwrites every attribute with the given key, or appends one
func (e *Element) SetAttr(key, value string) {
	found := false
	for _, a := range e.Attributes {
		if a.Key == key {
			a.Value = value
			found = true
		}
	}
	if !found {
		e.Attributes = append(e.Attributes, &Attribute{Pos: e.Pos, Key: key, Value: value})
	}
}

// InlineStyle returns the element's first style block, if any
func (e *Element) InlineStyle() *Style {
	for _, c := range e.Children {
		if s, ok := c.(*Style); ok {
			return s
		}
	}
	return nil
}
