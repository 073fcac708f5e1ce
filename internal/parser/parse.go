// Package parser dispatches raw content to the tree-sitter extractors
package parser

import (
	"regexp"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/parser/css"
	"bennypowers.dev/chtl/internal/parser/html"
	"bennypowers.dev/chtl/internal/parser/js"
)

// SelectorStyle is a selector found in raw content together with its
// declarations
type SelectorStyle struct {
	Selector     string
	Declarations []*css.Declaration
	// Line is 0-based within the raw content
	Line uint
}

// simpleSelector matches the selector forms back-references can name
var simpleSelector = regexp.MustCompile(`^[#.]?[A-Za-z_-][A-Za-z0-9_-]*$`)

// IsSimpleSelector reports whether a selector is a bare tag, #id or .class
func IsSimpleSelector(selector string) bool {
	return simpleSelector.MatchString(selector)
}

// ExtractSelectors returns the simple selectors declared by raw Style or Html
// content, in source order. JavaScript contributes none.
func ExtractSelectors(kind ast.RawKind, content string) ([]SelectorStyle, error) {
	switch kind {
	case ast.RawStyle:
		p := css.AcquireParser()
		defer css.ReleaseParser(p)
		return stylesheetSelectors(p, content, 0)

	case ast.RawHTML:
		return htmlSelectors(content)

	case ast.RawJavaScript:
		return nil, nil
	}
	return nil, nil
}

func stylesheetSelectors(p *css.Parser, content string, lineOffset uint) ([]SelectorStyle, error) {
	result, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	var out []SelectorStyle
	for _, rule := range result.Rules {
		for _, sel := range rule.Selectors {
			if !IsSimpleSelector(sel) {
				continue
			}
			out = append(out, SelectorStyle{
				Selector:     sel,
				Declarations: rule.Declarations,
				Line:         rule.Start.Line + lineOffset,
			})
		}
	}
	return out, nil
}

func htmlSelectors(content string) ([]SelectorStyle, error) {
	hp := html.AcquireParser()
	defer html.ReleaseParser(hp)
	doc, err := hp.Parse(content)
	if err != nil {
		return nil, err
	}

	cp := css.AcquireParser()
	defer css.ReleaseParser(cp)

	var out []SelectorStyle
	for _, el := range doc.Elements {
		var decls []*css.Declaration
		if el.Style != "" {
			if decls, err = cp.ParseDeclarations(el.Style); err != nil {
				return nil, err
			}
		}
		for _, sel := range el.Selectors() {
			out = append(out, SelectorStyle{Selector: sel, Declarations: decls, Line: el.StartLine})
		}
	}
	for _, region := range doc.Styles {
		styles, err := stylesheetSelectors(cp, region.Content, region.StartLine)
		if err != nil {
			return nil, err
		}
		out = append(out, styles...)
	}
	return out, nil
}

// CheckScript reports syntax errors in raw JavaScript
func CheckScript(content string) ([]js.SyntaxError, error) {
	p := js.AcquireParser()
	defer js.ReleaseParser(p)
	return p.Check(content)
}
