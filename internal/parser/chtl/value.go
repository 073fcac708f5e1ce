package chtl

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"bennypowers.dev/chtl/internal/ast"
)

// parseValueList reads a property value: comma-separated lists of
// space-separated expressions
func (p *Parser) parseValueList() ast.Expr {
	start := p.peek()
	first := p.parseValue()
	if !p.at(Comma) {
		return first
	}
	list := &ast.List{Pos: start.Pos, Items: []ast.Expr{first}}
	for p.accept(Comma) {
		list.Items = append(list.Items, p.parseValue())
	}
	return list
}

func (p *Parser) atValueEnd() bool {
	switch p.peek().Type {
	case Semicolon, RBrace, Comma, RParen, EOF:
		return true
	}
	return false
}

// parseValue reads space-separated expressions up to ';', ',', ')' or '}'
func (p *Parser) parseValue() ast.Expr {
	start := p.peek()
	var items []ast.Expr
	for !p.atValueEnd() {
		items = append(items, p.parseConditional())
	}
	switch len(items) {
	case 0:
		p.errorf(start, "expected value, found %s", start.describe())
	case 1:
		return items[0]
	}
	return &ast.Sequence{Pos: start.Pos, Items: items}
}

func (p *Parser) parseConditional() ast.Expr {
	cond := p.parseLogical("||")
	if !p.at(Question) {
		return cond
	}
	q := p.next()
	then := p.parseConditional()
	p.expect(Colon)
	return &ast.Conditional{Pos: q.Pos, Cond: cond, Then: then, Else: p.parseConditional()}
}

// parseLogical reads a chain of op, where || binds looser than &&
func (p *Parser) parseLogical(op string) ast.Expr {
	operand := func() ast.Expr {
		if op == "||" {
			return p.parseLogical("&&")
		}
		return p.parseComparison()
	}
	left := operand()
	for p.atOperator(op) {
		tok := p.next()
		p.next()
		left = &ast.Logical{Pos: tok.Pos, Op: op, Left: left, Right: operand()}
	}
	return left
}

var comparisonOps = []string{"==", "!=", "<=", ">=", "<", ">"}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for _, op := range comparisonOps {
		if !p.atOperator(op) {
			continue
		}
		tok := p.next()
		if len(op) == 2 {
			p.next()
		}
		return &ast.Comparison{Pos: tok.Pos, Op: op, Left: left, Right: p.parseAdditive()}
	}
	return left
}

// atOperator reports whether the next tokens spell op, written without
// space between its characters
func (p *Parser) atOperator(op string) bool {
	for i := 0; i < len(op); i++ {
		tok := p.peekAt(i)
		if tok.Type != punctuation[op[i]] || (i > 0 && tok.SpaceBefore) {
			return false
		}
	}
	return true
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for {
		op := p.peek()
		if op.Type != Plus && op.Type != Minus {
			return left
		}
		// `1px -2px` starts a new term of a sequence
		if op.SpaceBefore && !p.peekAt(1).SpaceBefore {
			return left
		}
		p.next()
		right := p.parseMultiplicative()
		left = &ast.Binary{Pos: op.Pos, Op: op.Text(), Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		op := p.peek()
		if op.Type != Star && op.Type != Slash && op.Type != Percent {
			return left
		}
		p.next()
		right := p.parseUnary()
		left = &ast.Binary{Pos: op.Pos, Op: op.Text(), Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(Minus) {
		op := p.next()
		return &ast.Unary{Pos: op.Pos, Op: "-", X: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case Number:
		p.next()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.errorf(tok, "invalid number %s", tok.Text())
		}
		return &ast.Number{Pos: tok.Pos, Value: v, Unit: tok.Unit}
	case String:
		p.next()
		return &ast.Literal{Pos: tok.Pos, Type: ast.LitString, Value: tok.Value}
	case Hash:
		p.next()
		if key, ok := p.accessKey(); ok {
			return &ast.PropertyAccess{Pos: tok.Pos, Selector: "#" + tok.Value, Key: key}
		}
		if isHexColor(tok.Value) {
			return &ast.Literal{Pos: tok.Pos, Type: ast.LitColor, Value: "#" + tok.Value}
		}
		return &ast.Literal{Pos: tok.Pos, Type: ast.LitIdent, Value: "#" + tok.Value}
	case Dot:
		p.next()
		if !p.adjacent(Ident) {
			p.errorf(p.peek(), "expected class name after '.'")
		}
		class := p.next()
		key, ok := p.accessKey()
		if !ok {
			p.errorf(p.peek(), "expected property after .%s", class.Value)
		}
		return &ast.PropertyAccess{Pos: tok.Pos, Selector: "." + class.Value, Key: key}
	case LParen:
		p.next()
		inner := p.parseConditional()
		p.expect(RParen)
		return inner
	case Bang:
		p.next()
		if !p.adjacent(Ident) {
			p.errorf(p.peek(), "expected identifier after '!'")
		}
		return &ast.Literal{Pos: tok.Pos, Type: ast.LitIdent, Value: "!" + p.next().Value}
	case Ident:
		return p.parseIdentValue()
	}
	p.errorf(tok, "unexpected %s in value", tok.describe())
	return nil
}

// accessKey consumes `.key` when it directly follows the previous token
func (p *Parser) accessKey() (string, bool) {
	if p.adjacent(Dot) && p.peekAt(1).Type == Ident && !p.peekAt(1).SpaceBefore {
		p.next()
		return p.next().Value, true
	}
	return "", false
}

func (p *Parser) parseIdentValue() ast.Expr {
	tok := p.next()
	name := tok.Value
	for p.adjacent(Colon) && p.peekAt(1).Type == Colon && !p.peekAt(1).SpaceBefore &&
		p.peekAt(2).Type == Ident && !p.peekAt(2).SpaceBefore {
		p.next()
		p.next()
		name += "::" + p.next().Value
	}
	qualified := strings.Contains(name, "::")

	if p.adjacent(LParen) {
		if isVarGroup(name) && p.peekAt(1).Type == Ident && p.peekAt(2).Type == RParen {
			p.next()
			key := p.next()
			p.next()
			return &ast.VarAccess{Pos: tok.Pos, Group: name, Key: key.Value}
		}
		if qualified {
			p.errorf(p.peek(), "expected variable key after %s(", name)
		}
		return p.parseCall(tok, name)
	}
	if qualified {
		p.errorf(tok, "expected variable access after %s", name)
	}
	if key, ok := p.accessKey(); ok {
		return &ast.PropertyAccess{Pos: tok.Pos, Selector: name, Key: key}
	}
	return &ast.Literal{Pos: tok.Pos, Type: ast.LitIdent, Value: name}
}

func (p *Parser) parseCall(tok Token, name string) ast.Expr {
	p.expect(LParen)
	call := &ast.Call{Pos: tok.Pos, Name: name}
	if name == "url" {
		// url() bodies are paths, not expressions
		var b strings.Builder
		for !p.at(RParen) && !p.at(EOF) {
			t := p.next()
			if t.Type == String {
				call.Args = append(call.Args, &ast.Literal{Pos: t.Pos, Type: ast.LitString, Value: t.Value})
				continue
			}
			b.WriteString(t.Text())
		}
		if b.Len() > 0 {
			call.Args = append(call.Args, &ast.Literal{Pos: tok.Pos, Type: ast.LitIdent, Value: b.String()})
		}
		p.expect(RParen)
		return call
	}
	for !p.at(RParen) && !p.at(EOF) {
		call.Args = append(call.Args, p.parseValue())
		if !p.accept(Comma) {
			break
		}
	}
	p.expect(RParen)
	return call
}

// isVarGroup reports whether the last segment of a name starts upper-case;
// Var template groups do, CSS functions do not
func isVarGroup(name string) bool {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func isHexColor(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
