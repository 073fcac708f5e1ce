// Package html extracts elements and CSS regions from raw HTML with
// tree-sitter.
package html

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser handles parsing HTML
type Parser struct {
	parser     *sitter.Parser
	styleQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		styleQuery, qerr := sitter.NewQuery(htmlLang, `(style_element (raw_text) @css)`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", qerr))
		}

		return &Parser{
			parser:     parser,
			styleQuery: styleQuery,
		}
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
	if p.styleQuery != nil {
		p.styleQuery.Close()
	}
}

// Document is what raw HTML contributes to the selector registry
type Document struct {
	Elements []Element
	// Styles are the contents of <style> elements
	Styles []CSSRegion
}

// Parse extracts elements and <style> contents from HTML source
func (p *Parser) Parse(source string) (*Document, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse HTML")
	}
	defer tree.Close()

	root := tree.RootNode()
	doc := &Document{}
	collectElements(root, src, doc)

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(p.styleQuery, root, src)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			node := capture.Node
			doc.Styles = append(doc.Styles, CSSRegion{
				Content:   string(src[node.StartByte():node.EndByte()]),
				StartLine: node.StartPosition().Row,
				StartCol:  node.StartPosition().Column,
				Type:      StyleTag,
			})
		}
	}
	return doc, nil
}

func collectElements(node *sitter.Node, src []byte, doc *Document) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "style_element", "script_element":
		return
	case "start_tag", "self_closing_tag":
		if el, ok := element(node, src); ok {
			doc.Elements = append(doc.Elements, el)
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectElements(node.Child(i), src, doc)
	}
}

func element(tag *sitter.Node, src []byte) (Element, bool) {
	el := Element{
		StartLine: tag.StartPosition().Row,
		StartCol:  tag.StartPosition().Column,
	}
	for i := uint(0); i < tag.ChildCount(); i++ {
		child := tag.Child(i)
		switch child.Kind() {
		case "tag_name":
			el.Tag = strings.ToLower(text(child, src))
		case "attribute":
			name, value := attribute(child, src)
			switch strings.ToLower(name) {
			case "id":
				el.ID = value
			case "class":
				el.Classes = strings.Fields(value)
			case "style":
				el.Style = value
			}
		}
	}
	return el, el.Tag != ""
}

func attribute(node *sitter.Node, src []byte) (name, value string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "attribute_name":
			name = text(child, src)
		case "attribute_value":
			value = text(child, src)
		case "quoted_attribute_value":
			for j := uint(0); j < child.ChildCount(); j++ {
				if v := child.Child(j); v.Kind() == "attribute_value" {
					value = text(v, src)
				}
			}
		}
	}
	return name, value
}

func text(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
