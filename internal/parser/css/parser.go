// Package css extracts rule sets and declarations from raw stylesheets and
// style attribute values using tree-sitter.
package css

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
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

// Parse parses a stylesheet and extracts its rule sets, including those
// nested in at-rules
func (p *Parser) Parse(source string) (*ParseResult, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	root := tree.RootNode()
	result := &ParseResult{HasErrors: root.HasError()}
	walkRules(root, src, result)
	return result, nil
}

// ParseDeclarations parses the body of a style attribute.
// The content is wrapped in "x{...}" to make it a valid rule set.
func (p *Parser) ParseDeclarations(content string) ([]*Declaration, error) {
	result, err := p.Parse("x{" + content + "}")
	if err != nil {
		return nil, err
	}
	if len(result.Rules) == 0 {
		return nil, nil
	}
	decls := result.Rules[0].Declarations
	for _, d := range decls {
		if d.Start.Line == 0 && d.Start.Column >= 2 {
			d.Start.Column -= 2
		}
	}
	return decls, nil
}

func walkRules(node *sitter.Node, src []byte, result *ParseResult) {
	if node == nil {
		return
	}
	if node.Kind() == "rule_set" {
		if rule := ruleSet(node, src); rule != nil {
			result.Rules = append(result.Rules, rule)
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkRules(node.Child(i), src, result)
	}
}

func ruleSet(node *sitter.Node, src []byte) *Rule {
	rule := &Rule{Start: position(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "selectors":
			for _, sel := range strings.Split(text(child, src), ",") {
				if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
					rule.Selectors = append(rule.Selectors, sel)
				}
			}
		case "block":
			for j := uint(0); j < child.ChildCount(); j++ {
				if d := declaration(child.Child(j), src); d != nil {
					rule.Declarations = append(rule.Declarations, d)
				}
			}
		}
	}
	if len(rule.Selectors) == 0 {
		return nil
	}
	return rule
}

// declaration reads `property: value;`. The value is the source text between
// the colon and the end of the declaration.
func declaration(node *sitter.Node, src []byte) *Declaration {
	if node == nil || node.Kind() != "declaration" {
		return nil
	}
	var property *sitter.Node
	var valueStart uint
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_name":
			property = child
		case ":":
			if valueStart == 0 {
				valueStart = child.EndByte()
			}
		}
	}
	if property == nil || valueStart == 0 {
		return nil
	}
	value := string(src[valueStart:node.EndByte()])
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
	return &Declaration{
		Property: text(property, src),
		Value:    value,
		Start:    position(node),
	}
}

func text(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}

func position(node *sitter.Node) Position {
	p := node.StartPosition()
	return Position{Line: p.Row, Column: p.Column}
}
