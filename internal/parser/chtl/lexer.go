package chtl

import (
	"strings"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
)

// Lexer splits markup source into tokens. Bodies of `script { ... }` and
// `[Origin] @Kind [Name] { ... }` are captured verbatim as RawBlock tokens.
type Lexer struct {
	file   string
	src    []byte
	offset int
	line   int
	col    int
	tokens []Token
}

// NewLexer creates a lexer for the given source
func NewLexer(file string, src []byte) *Lexer {
	return &Lexer{file: file, src: src, line: 1, col: 1}
}

// Tokenize scans the whole input. The returned slice always ends with EOF.
func Tokenize(file string, src []byte) ([]Token, error) {
	return NewLexer(file, src).Tokenize()
}

// Tokenize scans the whole input
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		space, err := l.skipSpaceAndComments()
		if err != nil {
			return nil, err
		}
		if l.offset >= len(l.src) {
			l.tokens = append(l.tokens, Token{Type: EOF, Pos: l.pos(), SpaceBefore: space})
			return l.tokens, nil
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tok.SpaceBefore = space
		l.tokens = append(l.tokens, tok)

		if tok.Type == LBrace && l.opensRawBlock() {
			closing, err := l.rawBlock()
			if err != nil {
				return nil, err
			}
			l.tokens = append(l.tokens, closing)
		}
	}
}

func (l *Lexer) pos() ast.Pos {
	return ast.Pos{File: l.file, Line: l.line, Column: l.col}
}

func (l *Lexer) peekByte(ahead int) byte {
	if l.offset+ahead < len(l.src) {
		return l.src[l.offset+ahead]
	}
	return 0
}

func (l *Lexer) advance() byte {
	c := l.src[l.offset]
	l.offset++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) skipSpaceAndComments() (bool, error) {
	skipped := false
	for l.offset < len(l.src) {
		c := l.peekByte(0)
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
		case c == '/' && l.peekByte(1) == '/':
			for l.offset < len(l.src) && l.peekByte(0) != '\n' {
				l.advance()
			}
		case c == '/' && l.peekByte(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.offset >= len(l.src) {
					return false, compileerr.NewParseError(start, "unterminated comment")
				}
				if l.peekByte(0) == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return skipped, nil
		}
		skipped = true
	}
	return skipped, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isUnitPart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (l *Lexer) next() (Token, error) {
	start := l.pos()
	c := l.peekByte(0)

	switch {
	case c == '"' || c == '\'':
		return l.stringLit(start)
	case isDigit(c) || (c == '.' && isDigit(l.peekByte(1)) && !l.followsWord()):
		return l.number(start), nil
	case c == '#' && isIdentPart(l.peekByte(1)):
		l.advance()
		return Token{Type: Hash, Value: l.word(), Pos: start}, nil
	case isIdentStart(c) || (c == '-' && (isIdentStart(l.peekByte(1)) || l.peekByte(1) == '-')):
		return Token{Type: Ident, Value: l.word(), Pos: start}, nil
	}

	if typ, ok := punctuation[c]; ok {
		l.advance()
		return Token{Type: typ, Pos: start}, nil
	}
	return Token{}, compileerr.NewParseError(start, "unexpected character %q", rune(c))
}

// followsWord reports whether the previous token ends directly before the
// cursor, so `div.5` style accesses are not read as numbers
func (l *Lexer) followsWord() bool {
	if len(l.tokens) == 0 || l.offset == 0 {
		return false
	}
	prev := l.src[l.offset-1]
	return isIdentPart(prev)
}

func (l *Lexer) word() string {
	start := l.offset
	for l.offset < len(l.src) && isIdentPart(l.peekByte(0)) {
		l.advance()
	}
	return string(l.src[start:l.offset])
}

func (l *Lexer) number(start ast.Pos) Token {
	begin := l.offset
	for l.offset < len(l.src) && isDigit(l.peekByte(0)) {
		l.advance()
	}
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.advance()
		for l.offset < len(l.src) && isDigit(l.peekByte(0)) {
			l.advance()
		}
	}
	value := string(l.src[begin:l.offset])

	unitStart := l.offset
	if l.peekByte(0) == '%' {
		l.advance()
	} else {
		for l.offset < len(l.src) && isUnitPart(l.peekByte(0)) {
			l.advance()
		}
	}
	return Token{Type: Number, Value: value, Unit: string(l.src[unitStart:l.offset]), Pos: start}
}

func (l *Lexer) stringLit(start ast.Pos) (Token, error) {
	quote := l.advance()
	var b strings.Builder
	for {
		if l.offset >= len(l.src) {
			return Token{}, compileerr.NewParseError(start, "unterminated string")
		}
		c := l.advance()
		switch c {
		case quote:
			return Token{Type: String, Value: b.String(), Pos: start}, nil
		case '\\':
			if l.offset >= len(l.src) {
				return Token{}, compileerr.NewParseError(start, "unterminated string")
			}
			switch e := l.advance(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
}

// opensRawBlock reports whether the brace just emitted starts a body that is
// captured verbatim
func (l *Lexer) opensRawBlock() bool {
	n := len(l.tokens) - 1 // the brace
	if n >= 1 && l.tokens[n-1].is("script") {
		return true
	}
	// [ Origin ] @ Kind {   or   [ Origin ] @ Kind Name {
	for _, width := range []int{5, 6} {
		i := n - width
		if i < 0 {
			continue
		}
		t := l.tokens[i:n]
		if t[0].Type == LBracket && t[1].is("Origin") && t[2].Type == RBracket &&
			t[3].Type == At && t[4].Type == Ident && (width == 5 || t[5].Type == Ident) {
			return true
		}
	}
	return false
}

// rawBlock consumes up to the matching closing brace, emits the body as a
// RawBlock token and returns the closing RBrace. Braces inside quoted strings
// and comments do not count.
func (l *Lexer) rawBlock() (Token, error) {
	start := l.pos()
	begin := l.offset
	depth := 1
	for l.offset < len(l.src) {
		c := l.peekByte(0)
		switch {
		case c == '"' || c == '\'' || c == '`':
			l.skipQuoted(c)
			continue
		case c == '/' && l.peekByte(1) == '/':
			for l.offset < len(l.src) && l.peekByte(0) != '\n' {
				l.advance()
			}
			continue
		case c == '/' && l.peekByte(1) == '*':
			l.advance()
			l.advance()
			for l.offset < len(l.src) && !(l.peekByte(0) == '*' && l.peekByte(1) == '/') {
				l.advance()
			}
			if l.offset < len(l.src) {
				l.advance()
				l.advance()
			}
			continue
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				body := strings.TrimSpace(string(l.src[begin:l.offset]))
				raw := Token{Type: RawBlock, Value: body, Pos: start}
				closePos := l.pos()
				l.advance()
				l.tokens = append(l.tokens, raw)
				return Token{Type: RBrace, Pos: closePos}, nil
			}
		}
		l.advance()
	}
	return Token{}, compileerr.NewParseError(start, "unterminated raw block")
}

func (l *Lexer) skipQuoted(quote byte) {
	l.advance()
	for l.offset < len(l.src) {
		c := l.advance()
		if c == '\\' && l.offset < len(l.src) {
			l.advance()
			continue
		}
		if c == quote {
			return
		}
	}
}
