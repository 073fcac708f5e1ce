package ast

import "fmt"

// CloneNodes deep-copies a node list
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = CloneNode(n)
	}
	return out
}

// CloneNode deep-copies a node. Expanded templates are always cloned so that
// specializations applied at one usage site never leak into another.
func CloneNode(n Node) Node {
	switch n := n.(type) {
	case *Program:
		return &Program{Pos: n.Pos, File: n.File, Children: CloneNodes(n.Children), Except: cloneConstraints(n.Except)}
	case *Element:
		return CloneElement(n)
	case *Text:
		c := *n
		return &c
	case *Style:
		return CloneStyle(n)
	case *StyleProperty:
		return CloneProperty(n)
	case *StyleRule:
		return cloneRule(n)
	case *Script:
		c := *n
		return &c
	case *Origin:
		c := *n
		return &c
	case *Template:
		return &Template{
			Pos:            n.Pos,
			Name:           n.Name,
			Type:           n.Type,
			Custom:         n.Custom,
			Inherits:       append([]string(nil), n.Inherits...),
			Properties:     CloneProperties(n.Properties),
			Body:           CloneNodes(n.Body),
			Deletes:        append([]string(nil), n.Deletes...),
			ElementDeletes: cloneTargets(n.ElementDeletes),
			Inserts:        cloneInserts(n.Inserts),
		}
	case *TemplateUsage:
		return CloneUsage(n)
	case *Import:
		c := *n
		return &c
	case *Namespace:
		return &Namespace{Pos: n.Pos, Name: n.Name, Children: CloneNodes(n.Children)}
	}
	panic(fmt.Sprintf("ast: unhandled node %T in CloneNode", n))
}

// CloneElement deep-copies an element
func CloneElement(e *Element) *Element {
	attrs := make([]*Attribute, len(e.Attributes))
	for i, a := range e.Attributes {
		c := *a
		attrs[i] = &c
	}
	return &Element{
		Pos:        e.Pos,
		Tag:        e.Tag,
		Attributes: attrs,
		Children:   CloneNodes(e.Children),
		Except:     cloneConstraints(e.Except),
	}
}

// CloneStyle deep-copies a style block
func CloneStyle(s *Style) *Style {
	if s == nil {
		return nil
	}
	out := &Style{Pos: s.Pos, Properties: CloneProperties(s.Properties)}
	for _, u := range s.Usages {
		out.Usages = append(out.Usages, CloneUsage(u))
	}
	for _, r := range s.Rules {
		out.Rules = append(out.Rules, cloneRule(r))
	}
	for _, o := range s.Origins {
		c := *o
		out.Origins = append(out.Origins, &c)
	}
	return out
}

func cloneRule(r *StyleRule) *StyleRule {
	out := &StyleRule{Pos: r.Pos, Selector: r.Selector, Properties: CloneProperties(r.Properties)}
	for _, u := range r.Usages {
		out.Usages = append(out.Usages, CloneUsage(u))
	}
	return out
}

// CloneUsage deep-copies a template usage with its specializations
func CloneUsage(u *TemplateUsage) *TemplateUsage {
	out := &TemplateUsage{
		Pos:            u.Pos,
		Type:           u.Type,
		Name:           u.Name,
		From:           u.From,
		Properties:     CloneProperties(u.Properties),
		Deletes:        append([]string(nil), u.Deletes...),
		ElementDeletes: cloneTargets(u.ElementDeletes),
		Inserts:        cloneInserts(u.Inserts),
	}
	for _, s := range u.Specializations {
		spec := &ElementSpecialization{
			Pos:      s.Pos,
			Target:   cloneTarget(s.Target),
			Style:    CloneStyle(s.Style),
			Children: CloneNodes(s.Children),
		}
		for _, a := range s.Attributes {
			c := *a
			spec.Attributes = append(spec.Attributes, &c)
		}
		out.Specializations = append(out.Specializations, spec)
	}
	return out
}

// CloneProperty deep-copies a style property
func CloneProperty(p *StyleProperty) *StyleProperty {
	return &StyleProperty{Pos: p.Pos, Key: p.Key, Value: CloneExpr(p.Value)}
}

// CloneProperties deep-copies a property list
func CloneProperties(props []*StyleProperty) []*StyleProperty {
	if props == nil {
		return nil
	}
	out := make([]*StyleProperty, len(props))
	for i, p := range props {
		out[i] = CloneProperty(p)
	}
	return out
}

// CloneExpr deep-copies a value expression. A nil expression stays nil.
func CloneExpr(e Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *Literal:
		c := *e
		return &c
	case *Number:
		c := *e
		return &c
	case *Binary:
		return &Binary{Pos: e.Pos, Op: e.Op, Left: CloneExpr(e.Left), Right: CloneExpr(e.Right)}
	case *Unary:
		return &Unary{Pos: e.Pos, Op: e.Op, X: CloneExpr(e.X)}
	case *Sequence:
		items := make([]Expr, len(e.Items))
		for i, item := range e.Items {
			items[i] = CloneExpr(item)
		}
		return &Sequence{Pos: e.Pos, Items: items}
	case *List:
		items := make([]Expr, len(e.Items))
		for i, item := range e.Items {
			items[i] = CloneExpr(item)
		}
		return &List{Pos: e.Pos, Items: items}
	case *Call:
		args := make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = CloneExpr(arg)
		}
		return &Call{Pos: e.Pos, Name: e.Name, Args: args}
	case *Comparison:
		return &Comparison{Pos: e.Pos, Op: e.Op, Left: CloneExpr(e.Left), Right: CloneExpr(e.Right)}
	case *Logical:
		return &Logical{Pos: e.Pos, Op: e.Op, Left: CloneExpr(e.Left), Right: CloneExpr(e.Right)}
	case *Conditional:
		return &Conditional{Pos: e.Pos, Cond: CloneExpr(e.Cond), Then: CloneExpr(e.Then), Else: CloneExpr(e.Else)}
	case *PropertyAccess:
		c := *e
		return &c
	case *VarAccess:
		c := *e
		return &c
	}
	panic(fmt.Sprintf("ast: unhandled expression %T in CloneExpr", e))
}

func cloneTarget(t *ElementTarget) *ElementTarget {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneTargets(ts []*ElementTarget) []*ElementTarget {
	if ts == nil {
		return nil
	}
	out := make([]*ElementTarget, len(ts))
	for i, t := range ts {
		out[i] = cloneTarget(t)
	}
	return out
}

func cloneInserts(ins []*Insertion) []*Insertion {
	if ins == nil {
		return nil
	}
	out := make([]*Insertion, len(ins))
	for i, in := range ins {
		out[i] = &Insertion{Pos: in.Pos, Position: in.Position, Target: cloneTarget(in.Target), Nodes: CloneNodes(in.Nodes)}
	}
	return out
}

func cloneConstraints(cs []*Constraint) []*Constraint {
	if cs == nil {
		return nil
	}
	out := make([]*Constraint, len(cs))
	for i, c := range cs {
		cc := *c
		out[i] = &cc
	}
	return out
}
