package ast

import (
	"strconv"
	"strings"
)

// Expr is a style value expression
type Expr interface {
	Position() Pos
	String() string
	expr()
}

// LiteralKind distinguishes literal spellings
type LiteralKind int

const (
	LitIdent LiteralKind = iota
	LitString
	LitColor
)

// Literal is an identifier-like word, a quoted string or a hex color
type Literal struct {
	Pos   Pos
	Type  LiteralKind
	Value string
}

// Number is a numeric literal with an optional unit
type Number struct {
	Pos   Pos
	Value float64
	Unit  string
}

// Binary is an arithmetic expression
type Binary struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a negation
type Unary struct {
	Pos Pos
	Op  string
	X   Expr
}

// Sequence is a space-separated value list such as `1px solid black`
type Sequence struct {
	Pos   Pos
	Items []Expr
}

// List is a comma-separated value list such as `Arial, sans-serif`
type List struct {
	Pos   Pos
	Items []Expr
}

// Call is a CSS function passed through verbatim, e.g. rgb(0, 0, 0)
type Call struct {
	Pos  Pos
	Name string
	Args []Expr
}

// Comparison compares two values with ==, !=, <, <=, > or >=
type Comparison struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

// Logical joins conditions with && or ||
type Logical struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

// Conditional selects Then or Else by Cond, e.g. `1 > 0 ? 100px : 50px`
type Conditional struct {
	Pos  Pos
	Cond Expr
	Then Expr
	Else Expr
}

// PropertyAccess is a back-reference such as `#box.width`, `.card.height`
// or `div.padding`
type PropertyAccess struct {
	Pos      Pos
	Selector string
	Key      string
}

// VarAccess looks up a key of a Var template, e.g. `Theme(primary)`
type VarAccess struct {
	Pos   Pos
	Group string
	Key   string
}

func (e *Literal) Position() Pos        { return e.Pos }
func (e *Number) Position() Pos         { return e.Pos }
func (e *Binary) Position() Pos         { return e.Pos }
func (e *Unary) Position() Pos          { return e.Pos }
func (e *Sequence) Position() Pos       { return e.Pos }
func (e *List) Position() Pos           { return e.Pos }
func (e *Call) Position() Pos           { return e.Pos }
func (e *Comparison) Position() Pos     { return e.Pos }
func (e *Logical) Position() Pos        { return e.Pos }
func (e *Conditional) Position() Pos    { return e.Pos }
func (e *PropertyAccess) Position() Pos { return e.Pos }
func (e *VarAccess) Position() Pos      { return e.Pos }

func (*Literal) expr()        {}
func (*Number) expr()         {}
func (*Binary) expr()         {}
func (*Unary) expr()          {}
func (*Sequence) expr()       {}
func (*List) expr()           {}
func (*Call) expr()           {}
func (*Comparison) expr()     {}
func (*Logical) expr()        {}
func (*Conditional) expr()    {}
func (*PropertyAccess) expr() {}
func (*VarAccess) expr()      {}

func (e *Literal) String() string {
	if e.Type == LitString {
		return strconv.Quote(e.Value)
	}
	return e.Value
}

func (e *Number) String() string {
	return FormatNumber(e.Value) + e.Unit
}

func (e *Binary) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

func (e *Unary) String() string {
	return e.Op + e.X.String()
}

func (e *Sequence) String() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}

func (e *List) String() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}

func (e *Call) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (e *Comparison) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

func (e *Logical) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

func (e *Conditional) String() string {
	return e.Cond.String() + " ? " + e.Then.String() + " : " + e.Else.String()
}

func (e *PropertyAccess) String() string {
	return e.Selector + "." + e.Key
}

func (e *VarAccess) String() string {
	return e.Group + "(" + e.Key + ")"
}

// FormatNumber prints a float without a trailing fraction when integral
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
