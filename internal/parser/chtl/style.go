package chtl

import (
	"strings"

	"bennypowers.dev/chtl/internal/ast"
)

func (p *Parser) parseStyle() ast.Node {
	tok := p.next()
	st := &ast.Style{Pos: tok.Pos}
	p.expect(LBrace)
	for !p.at(RBrace) && !p.at(EOF) {
		t := p.peek()
		switch {
		case t.Type == At:
			st.Usages = append(st.Usages, p.parseStyleUsage())
		case t.Type == LBracket:
			p.next()
			p.expectWord("Origin")
			p.expect(RBracket)
			st.Origins = append(st.Origins, p.parseOrigin(t.Pos))
		case t.Type == Ident && (p.peekAt(1).Type == Colon || p.peekAt(1).Type == Equal) && !p.ruleAhead():
			st.Properties = append(st.Properties, p.parseProperty())
		default:
			st.Rules = append(st.Rules, p.parseRule())
		}
	}
	p.expect(RBrace)
	return st
}

// ruleAhead reports whether a '{' comes before the end of the statement,
// which makes `a:hover { ... }` a rule rather than a property
func (p *Parser) ruleAhead() bool {
	for i := 0; ; i++ {
		switch p.peekAt(i).Type {
		case LBrace:
			return true
		case Semicolon, RBrace, EOF:
			return false
		}
	}
}

func (p *Parser) parseProperty() *ast.StyleProperty {
	key := p.expect(Ident)
	if !p.accept(Colon) && !p.accept(Equal) {
		tok := p.peek()
		p.errorf(tok, "expected ':' after '%s', found %s", key.Value, tok.describe())
	}
	prop := &ast.StyleProperty{Pos: key.Pos, Key: key.Value, Value: p.parseValueList()}
	p.endStatement()
	return prop
}

func (p *Parser) parseRule() *ast.StyleRule {
	start := p.peek()
	var sel strings.Builder
	for !p.at(LBrace) {
		tok := p.next()
		switch tok.Type {
		case EOF, RBrace, Semicolon:
			p.errorf(tok, "expected selector, found %s", tok.describe())
		}
		if sel.Len() > 0 && tok.SpaceBefore {
			sel.WriteByte(' ')
		}
		sel.WriteString(tok.Text())
	}
	p.expect(LBrace)
	rule := &ast.StyleRule{Pos: start.Pos, Selector: sel.String()}
	for !p.at(RBrace) && !p.at(EOF) {
		if p.at(At) {
			rule.Usages = append(rule.Usages, p.parseStyleUsage())
			continue
		}
		rule.Properties = append(rule.Properties, p.parseProperty())
	}
	p.expect(RBrace)
	return rule
}

func (p *Parser) parseStyleUsage() *ast.TemplateUsage {
	at := p.expect(At)
	kind := p.expect(Ident)
	if kind.Value != "Style" {
		p.errorf(kind, "only @Style usages are allowed in a style block, found @%s", kind.Value)
	}
	u := &ast.TemplateUsage{Pos: at.Pos, Type: ast.StyleTemplate, Name: p.parseQName()}
	if p.acceptWord("from") {
		u.From = p.parseQName()
	}
	if !p.accept(LBrace) {
		p.endStatement()
		return u
	}
	for !p.at(RBrace) && !p.at(EOF) {
		if p.atWord("delete") && p.peekAt(1).Type != Colon {
			p.next()
			u.Deletes = append(u.Deletes, p.parseKeyList()...)
			continue
		}
		u.Properties = append(u.Properties, p.parseProperty())
	}
	p.expect(RBrace)
	p.accept(Semicolon)
	return u
}
