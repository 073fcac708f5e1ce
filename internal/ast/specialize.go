package ast

import (
	"fmt"
	"strings"
)

// NoIndex marks an element target without a positional index
const NoIndex = -1

// ElementTarget selects elements inside an expanded element template, either
// by tag with an optional zero-based occurrence index among same-tagged
// siblings, or by the name of a nested @Element usage.
type ElementTarget struct {
	Pos      Pos
	Tag      string
	Index    int
	Template string
}

// HasIndex reports whether the target carries an explicit index
func (t *ElementTarget) HasIndex() bool {
	return t.Index != NoIndex
}

func (t *ElementTarget) String() string {
	if t.Template != "" {
		return "@Element " + t.Template
	}
	if t.HasIndex() {
		return fmt.Sprintf("%s[%d]", t.Tag, t.Index)
	}
	return t.Tag
}

// InsertPosition is where an insertion lands relative to its anchor
type InsertPosition int

const (
	InsertAfter InsertPosition = iota
	InsertBefore
	InsertReplace
	InsertAtTop
	InsertAtBottom
)

func (p InsertPosition) String() string {
	switch p {
	case InsertAfter:
		return "after"
	case InsertBefore:
		return "before"
	case InsertReplace:
		return "replace"
	case InsertAtTop:
		return "at top"
	case InsertAtBottom:
		return "at bottom"
	}
	return fmt.Sprintf("InsertPosition(%d)", int(p))
}

// Anchored reports whether the position needs a target
func (p InsertPosition) Anchored() bool {
	return p == InsertAfter || p == InsertBefore || p == InsertReplace
}

// Insertion adds nodes to an expanded element template
type Insertion struct {
	Pos      Pos
	Position InsertPosition
	Target   *ElementTarget
	Nodes    []Node
}

// ElementSpecialization merges attributes, style properties and children into
// one element of an expanded element template.
type ElementSpecialization struct {
	Pos        Pos
	Target     *ElementTarget
	Attributes []*Attribute
	Style      *Style
	Children   []Node
}

// ConstraintKind is what an `except` entry forbids
type ConstraintKind int

const (
	ConstrainTag ConstraintKind = iota
	ConstrainTemplate
	ConstrainOrigin
)

// Constraint is one entry of an `except` statement
type Constraint struct {
	Pos  Pos
	Type ConstraintKind
	// Name is the tag, the template name or the raw kind keyword
	Name string
}

func (c *Constraint) String() string {
	switch c.Type {
	case ConstrainTemplate:
		return "@Element " + c.Name
	case ConstrainOrigin:
		return "@" + strings.TrimPrefix(c.Name, "@")
	}
	return c.Name
}
