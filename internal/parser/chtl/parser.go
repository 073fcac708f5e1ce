// Package chtl implements the lexer and recursive-descent parser for CHTL
// markup. Parse returns the raw tree; templates, imports and namespaces are
// left for the analyser.
package chtl

import (
	"strconv"
	"strings"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
)

// Parser is a recursive-descent parser over a token slice
type Parser struct {
	file string
	toks []Token
	pos  int
}

// bailout carries the first parse error up to Parse
type bailout struct {
	err error
}

// Parse lexes and parses a markup file
func Parse(file string, src []byte) (prog *ast.Program, err error) {
	toks, err := Tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, toks: toks}
	defer catch(&err)
	return p.parseProgram(), nil
}

// ParseValue parses a standalone value expression such as "16px + 2px"
func ParseValue(file, src string) (expr ast.Expr, err error) {
	toks, err := Tokenize(file, []byte(src))
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, toks: toks}
	defer catch(&err)
	value := p.parseValueList()
	if tok := p.peek(); tok.Type != EOF {
		p.errorf(tok, "unexpected %s after value", tok.describe())
	}
	return value, nil
}

func catch(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}

func (p *Parser) errorf(tok Token, format string, args ...any) {
	panic(bailout{compileerr.NewParseError(tok.Pos, format, args...)})
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(typ TokenType) bool {
	return p.peek().Type == typ
}

// adjacent reports whether the next token has the type and touches the
// previous one
func (p *Parser) adjacent(typ TokenType) bool {
	tok := p.peek()
	return tok.Type == typ && !tok.SpaceBefore
}

func (p *Parser) atWord(word string) bool {
	return p.peek().is(word)
}

func (p *Parser) accept(typ TokenType) bool {
	if p.at(typ) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) acceptWord(word string) bool {
	if p.atWord(word) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(typ TokenType) Token {
	tok := p.peek()
	if tok.Type != typ {
		p.errorf(tok, "expected %s, found %s", typ, tok.describe())
	}
	return p.next()
}

func (p *Parser) expectWord(word string) Token {
	tok := p.peek()
	if !tok.is(word) {
		p.errorf(tok, "expected '%s', found %s", word, tok.describe())
	}
	return p.next()
}

// endStatement consumes a semicolon, which may be omitted before a closing brace
func (p *Parser) endStatement() {
	if p.accept(Semicolon) || p.at(RBrace) {
		return
	}
	tok := p.peek()
	p.errorf(tok, "expected ';', found %s", tok.describe())
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{
		Pos:  ast.Pos{File: p.file, Line: 1, Column: 1},
		File: p.file,
	}
	for !p.at(EOF) {
		if p.atWord("except") {
			prog.Except = append(prog.Except, p.parseExcept()...)
			continue
		}
		if p.at(RBrace) {
			p.errorf(p.peek(), "unexpected '}'")
		}
		prog.Children = append(prog.Children, p.parseItem())
	}
	return prog
}

func (p *Parser) parseItem() ast.Node {
	tok := p.peek()
	switch tok.Type {
	case LBracket:
		return p.parseDirective()
	case At:
		return p.parseElementUsage()
	case Ident:
		switch tok.Value {
		case "text":
			return p.parseText()
		case "style":
			return p.parseStyle()
		case "script":
			return p.parseScript()
		}
		return p.parseElement()
	}
	p.errorf(tok, "unexpected %s", tok.describe())
	return nil
}

func (p *Parser) parseDirective() ast.Node {
	open := p.expect(LBracket)
	kw := p.expect(Ident)
	p.expect(RBracket)
	switch kw.Value {
	case "Template":
		return p.parseTemplate(open.Pos, false)
	case "Custom":
		return p.parseTemplate(open.Pos, true)
	case "Namespace":
		return p.parseNamespace(open.Pos)
	case "Import":
		return p.parseImport(open.Pos)
	case "Origin":
		return p.parseOrigin(open.Pos)
	}
	p.errorf(kw, "unknown directive [%s]", kw.Value)
	return nil
}

func (p *Parser) parseTemplateKind() (ast.TemplateKind, Token) {
	p.expect(At)
	tok := p.expect(Ident)
	switch tok.Value {
	case "Style":
		return ast.StyleTemplate, tok
	case "Element":
		return ast.ElementTemplate, tok
	case "Var":
		return ast.VarTemplate, tok
	}
	p.errorf(tok, "unknown template kind @%s", tok.Value)
	return 0, tok
}

// parseQName reads `a::b::c` or `a.b.c` and returns the `::` form
func (p *Parser) parseQName() string {
	parts := []string{p.expect(Ident).Value}
	for {
		switch {
		case p.adjacent(Colon) && p.peekAt(1).Type == Colon && !p.peekAt(1).SpaceBefore && p.peekAt(2).Type == Ident:
			p.next()
			p.next()
		case p.adjacent(Dot) && p.peekAt(1).Type == Ident && !p.peekAt(1).SpaceBefore:
			p.next()
		default:
			return strings.Join(parts, "::")
		}
		parts = append(parts, p.next().Value)
	}
}

func (p *Parser) parseTemplate(pos ast.Pos, custom bool) ast.Node {
	kind, _ := p.parseTemplateKind()
	name := p.expect(Ident)
	tmpl := &ast.Template{Pos: pos, Name: name.Value, Type: kind, Custom: custom}
	p.expect(LBrace)
	if kind == ast.ElementTemplate {
		p.parseElementTemplateBody(tmpl)
	} else {
		p.parsePropertyTemplateBody(tmpl)
	}
	p.expect(RBrace)
	return tmpl
}

func (p *Parser) parseInherit(tmpl *ast.Template) {
	kind, tok := p.parseTemplateKind()
	if kind != tmpl.Type {
		p.errorf(tok, "%s %s cannot inherit %s", tmpl.Type, tmpl.Name, kind)
	}
	tmpl.Inherits = append(tmpl.Inherits, p.parseQName())
	p.endStatement()
}

func (p *Parser) parsePropertyTemplateBody(tmpl *ast.Template) {
	for !p.at(RBrace) {
		tok := p.peek()
		switch {
		case tok.is("inherit"):
			p.next()
			p.parseInherit(tmpl)
		case tok.Type == At:
			p.parseInherit(tmpl)
		case tok.is("delete") && p.peekAt(1).Type != Colon:
			p.next()
			tmpl.Deletes = append(tmpl.Deletes, p.parseKeyList()...)
		case tok.Type == Ident:
			p.parseTemplateProperty(tmpl)
		default:
			p.errorf(tok, "unexpected %s in %s %s", tok.describe(), tmpl.Type, tmpl.Name)
		}
	}
}

func (p *Parser) parseTemplateProperty(tmpl *ast.Template) {
	key := p.next()
	if p.accept(Colon) || p.accept(Equal) {
		value := p.parseValueList()
		tmpl.Properties = append(tmpl.Properties, &ast.StyleProperty{Pos: key.Pos, Key: key.Value, Value: value})
		p.endStatement()
		return
	}

	if !tmpl.Custom || tmpl.Type != ast.StyleTemplate {
		p.errorf(key, "placeholder '%s' is only allowed in [Custom] @Style", key.Value)
	}
	tmpl.Properties = append(tmpl.Properties, &ast.StyleProperty{Pos: key.Pos, Key: key.Value})
	for p.accept(Comma) {
		k := p.expect(Ident)
		tmpl.Properties = append(tmpl.Properties, &ast.StyleProperty{Pos: k.Pos, Key: k.Value})
	}
	p.endStatement()
}

func (p *Parser) parseKeyList() []string {
	keys := []string{p.expect(Ident).Value}
	for p.accept(Comma) {
		keys = append(keys, p.expect(Ident).Value)
	}
	p.endStatement()
	return keys
}

func (p *Parser) parseElementTemplateBody(tmpl *ast.Template) {
	for !p.at(RBrace) && !p.at(EOF) {
		switch {
		case p.atWord("inherit"):
			p.next()
			p.parseInherit(tmpl)
		case p.atWord("delete"):
			tmpl.ElementDeletes = append(tmpl.ElementDeletes, p.parseDelete()...)
		case p.atWord("insert"):
			tmpl.Inserts = append(tmpl.Inserts, p.parseInsert())
		default:
			tmpl.Body = append(tmpl.Body, p.parseItem())
		}
	}
}

func (p *Parser) parseNamespace(pos ast.Pos) ast.Node {
	name := p.expect(Ident)
	ns := &ast.Namespace{Pos: pos, Name: name.Value}
	if p.accept(LBrace) {
		for !p.at(RBrace) && !p.at(EOF) {
			ns.Children = append(ns.Children, p.parseItem())
		}
		p.expect(RBrace)
		return ns
	}
	// without braces the namespace covers the rest of the enclosing block
	p.accept(Semicolon)
	for !p.at(RBrace) && !p.at(EOF) {
		ns.Children = append(ns.Children, p.parseItem())
	}
	return ns
}

var importKinds = map[string]ast.ImportKind{
	"Chtl":       ast.ImportChtl,
	"Html":       ast.ImportHTML,
	"Style":      ast.ImportStyle,
	"JavaScript": ast.ImportJavaScript,
	"Var":        ast.ImportVar,
}

func (p *Parser) parseImport(pos ast.Pos) ast.Node {
	p.expect(At)
	kindTok := p.expect(Ident)
	kind, ok := importKinds[kindTok.Value]
	if !ok {
		p.errorf(kindTok, "unknown import kind @%s", kindTok.Value)
	}
	p.expectWord("from")

	imp := &ast.Import{Pos: pos, Type: kind}
	if p.at(String) {
		imp.Path = p.next().Value
	} else {
		var b strings.Builder
		for !p.at(Semicolon) && !p.at(EOF) && !p.atWord("as") {
			b.WriteString(p.next().Text())
		}
		imp.Path = b.String()
	}
	if imp.Path == "" {
		p.errorf(p.peek(), "expected import path")
	}
	if p.acceptWord("as") {
		imp.Alias = p.expect(Ident).Value
	}
	p.expect(Semicolon)
	return imp
}

var rawKinds = map[string]ast.RawKind{
	"Html":       ast.RawHTML,
	"Style":      ast.RawStyle,
	"JavaScript": ast.RawJavaScript,
}

func (p *Parser) parseOrigin(pos ast.Pos) *ast.Origin {
	p.expect(At)
	kindTok := p.expect(Ident)
	kind, ok := rawKinds[kindTok.Value]
	if !ok {
		p.errorf(kindTok, "unknown origin kind @%s", kindTok.Value)
	}
	o := &ast.Origin{Pos: pos, Raw: kind}
	if p.at(Ident) {
		o.Name = p.next().Value
	}
	if p.accept(Semicolon) {
		if o.Name == "" {
			p.errorf(kindTok, "origin reference needs a name")
		}
		o.Ref = true
		return o
	}
	p.expect(LBrace)
	o.Content = p.expect(RawBlock).Value
	p.expect(RBrace)
	p.accept(Semicolon)
	return o
}

func (p *Parser) parseElement() ast.Node {
	tag := p.next()
	el := &ast.Element{Pos: tag.Pos, Tag: tag.Value}
	p.expect(LBrace)
	p.parseElementBody(el)
	p.expect(RBrace)
	return el
}

func (p *Parser) parseElementBody(el *ast.Element) {
	for !p.at(RBrace) && !p.at(EOF) {
		tok := p.peek()
		if tok.Type == Ident {
			if tok.Value == "except" {
				el.Except = append(el.Except, p.parseExcept()...)
				continue
			}
			next := p.peekAt(1)
			if tok.Value != "text" && (next.Type == Colon || next.Type == Equal) {
				el.Attributes = append(el.Attributes, p.parseAttribute())
				continue
			}
		}
		el.Children = append(el.Children, p.parseItem())
	}
}

func (p *Parser) parseAttribute() *ast.Attribute {
	key := p.next()
	p.next()
	attr := &ast.Attribute{Pos: key.Pos, Key: key.Value, Value: p.parseLooseValue()}
	p.endStatement()
	return attr
}

// parseLooseValue joins tokens up to the end of the statement, keeping the
// spacing of the source
func (p *Parser) parseLooseValue() string {
	start := p.peek()
	if start.Type == String && (p.peekAt(1).Type == Semicolon || p.peekAt(1).Type == RBrace) {
		return p.next().Value
	}
	var b strings.Builder
	for !p.at(Semicolon) && !p.at(RBrace) && !p.at(EOF) {
		tok := p.next()
		if b.Len() > 0 && tok.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text())
	}
	if b.Len() == 0 {
		p.errorf(start, "expected value, found %s", start.describe())
	}
	return b.String()
}

func (p *Parser) parseText() ast.Node {
	tok := p.next()
	if p.accept(Colon) {
		text := &ast.Text{Pos: tok.Pos, Content: p.parseLooseValue()}
		p.endStatement()
		return text
	}
	p.expect(LBrace)
	var b strings.Builder
	for !p.at(RBrace) {
		t := p.next()
		if t.Type == EOF {
			p.errorf(t, "unterminated text block")
		}
		if b.Len() > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text())
	}
	p.expect(RBrace)
	return &ast.Text{Pos: tok.Pos, Content: b.String()}
}

func (p *Parser) parseScript() ast.Node {
	tok := p.next()
	p.expect(LBrace)
	body := p.expect(RawBlock)
	p.expect(RBrace)
	return &ast.Script{Pos: tok.Pos, Content: body.Value}
}

func (p *Parser) parseElementUsage() ast.Node {
	at := p.expect(At)
	kind := p.expect(Ident)
	if kind.Value != "Element" {
		p.errorf(kind, "@%s usage is only valid inside a style block", kind.Value)
	}
	u := &ast.TemplateUsage{Pos: at.Pos, Type: ast.ElementTemplate, Name: p.parseQName()}
	if p.acceptWord("from") {
		u.From = p.parseQName()
	}
	if !p.accept(LBrace) {
		p.endStatement()
		return u
	}
	for !p.at(RBrace) && !p.at(EOF) {
		switch tok := p.peek(); {
		case tok.is("delete"):
			u.ElementDeletes = append(u.ElementDeletes, p.parseDelete()...)
		case tok.is("insert"):
			u.Inserts = append(u.Inserts, p.parseInsert())
		case tok.Type == Ident:
			u.Specializations = append(u.Specializations, p.parseSpecialization())
		default:
			p.errorf(tok, "unexpected %s in @Element %s", tok.describe(), u.Name)
		}
	}
	p.expect(RBrace)
	p.accept(Semicolon)
	return u
}

func (p *Parser) parseTarget() *ast.ElementTarget {
	tok := p.peek()
	if tok.Type == At {
		p.next()
		p.expectWord("Element")
		return &ast.ElementTarget{Pos: tok.Pos, Template: p.parseQName(), Index: ast.NoIndex}
	}
	tag := p.expect(Ident)
	target := &ast.ElementTarget{Pos: tag.Pos, Tag: tag.Value, Index: ast.NoIndex}
	if p.adjacent(LBracket) {
		p.next()
		n := p.expect(Number)
		idx, err := strconv.Atoi(n.Value)
		if err != nil || n.Unit != "" || idx < 0 {
			p.errorf(n, "invalid element index %s", n.Text())
		}
		target.Index = idx
		p.expect(RBracket)
	}
	return target
}

func (p *Parser) parseDelete() []*ast.ElementTarget {
	p.expectWord("delete")
	targets := []*ast.ElementTarget{p.parseTarget()}
	for p.accept(Comma) {
		targets = append(targets, p.parseTarget())
	}
	p.endStatement()
	return targets
}

func (p *Parser) parseInsert() *ast.Insertion {
	tok := p.expectWord("insert")
	ins := &ast.Insertion{Pos: tok.Pos}
	where := p.expect(Ident)
	switch where.Value {
	case "after":
		ins.Position = ast.InsertAfter
	case "before":
		ins.Position = ast.InsertBefore
	case "replace":
		ins.Position = ast.InsertReplace
	case "at":
		edge := p.expect(Ident)
		switch edge.Value {
		case "top":
			ins.Position = ast.InsertAtTop
		case "bottom":
			ins.Position = ast.InsertAtBottom
		default:
			p.errorf(edge, "expected 'top' or 'bottom', found %s", edge.describe())
		}
	default:
		p.errorf(where, "unknown insert position '%s'", where.Value)
	}
	if ins.Position.Anchored() {
		ins.Target = p.parseTarget()
	}
	p.expect(LBrace)
	for !p.at(RBrace) && !p.at(EOF) {
		ins.Nodes = append(ins.Nodes, p.parseItem())
	}
	p.expect(RBrace)
	p.accept(Semicolon)
	return ins
}

func (p *Parser) parseSpecialization() *ast.ElementSpecialization {
	target := p.parseTarget()
	if target.Template != "" {
		p.errorf(p.peek(), "cannot specialize @Element %s", target.Template)
	}
	p.expect(LBrace)
	el := &ast.Element{Pos: target.Pos, Tag: target.Tag}
	p.parseElementBody(el)
	p.expect(RBrace)

	spec := &ast.ElementSpecialization{Pos: target.Pos, Target: target, Attributes: el.Attributes}
	for _, child := range el.Children {
		if s, ok := child.(*ast.Style); ok && spec.Style == nil {
			spec.Style = s
			continue
		}
		spec.Children = append(spec.Children, child)
	}
	return spec
}

func (p *Parser) parseExcept() []*ast.Constraint {
	p.expectWord("except")
	var cs []*ast.Constraint
	for {
		tok := p.peek()
		switch tok.Type {
		case LBracket:
			// [Template] and [Custom] prefixes name the same element templates
			p.next()
			if word := p.expect(Ident); word.Value != "Template" && word.Value != "Custom" {
				p.errorf(word, "expected [Template] or [Custom] in except, found [%s]", word.Value)
			}
			p.expect(RBracket)
			p.expect(At)
			if kind := p.expect(Ident); kind.Value != "Element" {
				p.errorf(kind, "cannot constrain @%s templates", kind.Value)
			}
			cs = append(cs, &ast.Constraint{Pos: tok.Pos, Type: ast.ConstrainTemplate, Name: p.parseQName()})
		case At:
			p.next()
			kind := p.expect(Ident)
			switch kind.Value {
			case "Element":
				cs = append(cs, &ast.Constraint{Pos: tok.Pos, Type: ast.ConstrainTemplate, Name: p.parseQName()})
			case "Html", "Style", "JavaScript":
				cs = append(cs, &ast.Constraint{Pos: tok.Pos, Type: ast.ConstrainOrigin, Name: kind.Value})
			default:
				p.errorf(kind, "cannot constrain @%s", kind.Value)
			}
		case Ident:
			p.next()
			cs = append(cs, &ast.Constraint{Pos: tok.Pos, Type: ast.ConstrainTag, Name: tok.Value})
		default:
			p.errorf(tok, "expected tag or @Kind after except, found %s", tok.describe())
		}
		if !p.accept(Comma) {
			break
		}
	}
	p.endStatement()
	return cs
}
