// Package js checks raw JavaScript for syntax errors with tree-sitter
package js

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Parser handles parsing JavaScript
type Parser struct {
	parser *sitter.Parser
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Check parses source and reports every ERROR and MISSING node
func (p *Parser) Check(source string) ([]SyntaxError, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse JavaScript")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	var errs []SyntaxError
	collectErrors(root, src, &errs)
	return errs, nil
}

func collectErrors(node *sitter.Node, src []byte, errs *[]SyntaxError) {
	if node == nil || !node.HasError() && !node.IsMissing() {
		return
	}
	if node.IsError() || node.IsMissing() {
		pos := node.StartPosition()
		*errs = append(*errs, SyntaxError{
			Line:    pos.Row,
			Column:  pos.Column,
			Missing: node.IsMissing(),
			Text:    string(src[node.StartByte():node.EndByte()]),
		})
		if node.IsMissing() {
			return
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectErrors(node.Child(i), src, errs)
	}
}
