package chtl

import (
	"fmt"

	"bennypowers.dev/chtl/internal/ast"
)

// TokenType classifies a lexical token
type TokenType int

const (
	EOF TokenType = iota
	Ident
	String
	Number
	Hash
	RawBlock
	LBrace
	RBrace
	LBracket
	RBracket
	LParen
	RParen
	Colon
	Semicolon
	Comma
	Dot
	At
	Equal
	Amp
	Plus
	Minus
	Star
	Slash
	Percent
	Greater
	Less
	Tilde
	Bang
	Question
	Pipe
)

var punctuation = map[byte]TokenType{
	'{': LBrace,
	'}': RBrace,
	'[': LBracket,
	']': RBracket,
	'(': LParen,
	')': RParen,
	':': Colon,
	';': Semicolon,
	',': Comma,
	'.': Dot,
	'@': At,
	'=': Equal,
	'&': Amp,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'%': Percent,
	'>': Greater,
	'<': Less,
	'~': Tilde,
	'!': Bang,
	'?': Question,
	'|': Pipe,
}

var tokenNames = map[TokenType]string{
	EOF:       "end of file",
	Ident:     "identifier",
	String:    "string",
	Number:    "number",
	Hash:      "'#'",
	RawBlock:  "raw block",
	LBrace:    "'{'",
	RBrace:    "'}'",
	LBracket:  "'['",
	RBracket:  "']'",
	LParen:    "'('",
	RParen:    "')'",
	Colon:     "':'",
	Semicolon: "';'",
	Comma:     "','",
	Dot:       "'.'",
	At:        "'@'",
	Equal:     "'='",
	Amp:       "'&'",
	Plus:      "'+'",
	Minus:     "'-'",
	Star:      "'*'",
	Slash:     "'/'",
	Percent:   "'%'",
	Greater:   "'>'",
	Less:      "'<'",
	Tilde:     "'~'",
	Bang:      "'!'",
	Question:  "'?'",
	Pipe:      "'|'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token
type Token struct {
	Type  TokenType
	Value string
	// Unit is the suffix of a Number token, e.g. "px" or "%"
	Unit string
	Pos  ast.Pos
	// SpaceBefore records whitespace or a comment between this token and the previous one
	SpaceBefore bool
}

// Text renders the token roughly as it appeared in the source
func (t Token) Text() string {
	switch t.Type {
	case Ident, RawBlock:
		return t.Value
	case String:
		return t.Value
	case Number:
		return t.Value + t.Unit
	case Hash:
		return "#" + t.Value
	case EOF:
		return ""
	}
	for ch, typ := range punctuation {
		if typ == t.Type {
			return string(ch)
		}
	}
	return t.Value
}

func (t Token) describe() string {
	switch t.Type {
	case Ident, Number, Hash:
		return fmt.Sprintf("%s '%s'", t.Type, t.Text())
	case String:
		return fmt.Sprintf("string %q", t.Value)
	}
	return t.Type.String()
}

// is reports whether the token is the identifier word
func (t Token) is(word string) bool {
	return t.Type == Ident && t.Value == word
}
