package analyser

import (
	"strings"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/collections"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/resolver"
	"bennypowers.dev/chtl/internal/symbols"
)

// resolveStyle builds a style block with every usage expanded, every value
// substituted and every origin reference spliced
func (a *analyser) resolveStyle(s *ast.Style, scope symbols.Scope) (*ast.Style, error) {
	props, err := a.resolveProperties(s.Usages, s.Properties, scope)
	if err != nil {
		return nil, err
	}
	out := &ast.Style{Pos: s.Pos, Properties: props}

	for _, r := range s.Rules {
		rprops, err := a.resolveProperties(r.Usages, r.Properties, scope)
		if err != nil {
			return nil, err
		}
		out.Rules = append(out.Rules, &ast.StyleRule{Pos: r.Pos, Selector: r.Selector, Properties: rprops})
	}

	for _, o := range s.Origins {
		resolved, err := a.resolveOrigin(o)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			out.Origins = append(out.Origins, resolved)
		}
	}
	return out, nil
}

// resolveProperties assembles the properties of every usage, applies the
// usages' delete lists, and appends the direct properties. A template
// property whose key is also declared directly is dropped.
func (a *analyser) resolveProperties(usages []*ast.TemplateUsage, direct []*ast.StyleProperty, scope symbols.Scope) ([]*ast.StyleProperty, error) {
	var fromTemplates []*ast.StyleProperty
	var deletes []string
	for _, u := range usages {
		props, err := a.expandStyleUsage(u, scope)
		if err != nil {
			return nil, err
		}
		fromTemplates = resolver.OverrideProperties(fromTemplates, props)
		deletes = append(deletes, u.Deletes...)
	}
	fromTemplates = resolver.DeleteProperties(fromTemplates, deletes)

	own := collections.NewSet[string]()
	resolved := make([]*ast.StyleProperty, 0, len(direct))
	for _, p := range direct {
		if p.IsPlaceholder() {
			return nil, compileerr.NewParseError(p.Pos, "property '%s' has no value", p.Key)
		}
		value, err := a.resolveExpr(p.Value, scope, refGuard{})
		if err != nil {
			return nil, err
		}
		own.Add(p.Key)
		resolved = append(resolved, &ast.StyleProperty{Pos: p.Pos, Key: p.Key, Value: value})
	}

	out := make([]*ast.StyleProperty, 0, len(fromTemplates)+len(resolved))
	for _, p := range fromTemplates {
		if !own.Has(p.Key) {
			out = append(out, p)
		}
	}
	return append(out, resolved...), nil
}

// expandStyleUsage returns the resolved properties contributed by one
// @Style usage. Placeholders must be filled by the usage; usage values for
// other keys override the template's.
func (a *analyser) expandStyleUsage(u *ast.TemplateUsage, scope symbols.Scope) ([]*ast.StyleProperty, error) {
	if u.Type != ast.StyleTemplate {
		return nil, compileerr.NewParseError(u.Pos, "%s usage is not allowed inside a style block", u.Type)
	}
	e, err := a.lookupTemplate(ast.StyleTemplate, u.Name, u.From, scope, u.Pos)
	if err != nil {
		return nil, err
	}
	log.Debug("Expanding @Style %s at %s", e.Name, u.Pos)

	supplied := make(map[string]*ast.StyleProperty, len(u.Properties))
	for _, p := range u.Properties {
		supplied[p.Key] = p
	}

	out := make([]*ast.StyleProperty, 0, len(e.Properties)+len(u.Properties))
	for _, p := range e.Properties {
		if s, ok := supplied[p.Key]; ok && !s.IsPlaceholder() {
			value, err := a.resolveExpr(s.Value, scope, refGuard{})
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.StyleProperty{Pos: s.Pos, Key: p.Key, Value: value})
			delete(supplied, p.Key)
			continue
		}
		if p.IsPlaceholder() {
			return nil, compileerr.NewMissingPlaceholderValueError(u.Name, p.Key, u.Pos)
		}
		value, err := a.resolveExpr(p.Value, e.Scope, refGuard{})
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.StyleProperty{Pos: p.Pos, Key: p.Key, Value: value})
	}

	for _, p := range u.Properties {
		if _, extra := supplied[p.Key]; !extra || p.IsPlaceholder() {
			continue
		}
		value, err := a.resolveExpr(p.Value, scope, refGuard{})
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.StyleProperty{Pos: p.Pos, Key: p.Key, Value: value})
		delete(supplied, p.Key)
	}
	return out, nil
}

// applyAutoSelectors gives an element the class and id of the first .class
// and #id rules of its style blocks, unless the attributes are already set
func applyAutoSelectors(el *ast.Element, styles []*ast.Style) {
	_, hasClass := el.Attr("class")
	_, hasID := el.Attr("id")
	for _, s := range styles {
		for _, r := range s.Rules {
			sel := strings.TrimSpace(r.Selector)
			if len(sel) < 2 || !isSimpleName(sel[1:]) {
				continue
			}
			switch sel[0] {
			case '.':
				if !hasClass {
					el.SetAttr("class", sel[1:])
					hasClass = true
				}
			case '#':
				if !hasID {
					el.SetAttr("id", sel[1:])
					hasID = true
				}
			}
		}
	}
}

func isSimpleName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= 0x80) {
			return false
		}
	}
	return true
}

// elementSelectors lists the selectors an element answers to: its tag, its
// id and each of its classes
func elementSelectors(el *ast.Element) []string {
	sels := []string{el.Tag}
	if id, ok := el.Attr("id"); ok && id != "" {
		sels = append(sels, "#"+id)
	}
	if class, ok := el.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			sels = append(sels, "."+c)
		}
	}
	return sels
}

// registerElement records an element's resolved style under each of its
// selectors. Properties of rules naming the same selector follow the inline
// properties. Other simple rule selectors are registered with their own
// properties.
func (a *analyser) registerElement(el *ast.Element, styles []*ast.Style) {
	var inline []*ast.StyleProperty
	var rules []*ast.StyleRule
	for _, s := range styles {
		inline = append(inline, s.Properties...)
		rules = append(rules, s.Rules...)
	}

	own := collections.NewSet[string]()
	for _, sel := range elementSelectors(el) {
		own.Add(sel)
		props := append([]*ast.StyleProperty{}, inline...)
		for _, r := range rules {
			if strings.TrimSpace(r.Selector) == sel {
				props = append(props, r.Properties...)
			}
		}
		a.table.InsertSelector(sel, props, el.Pos)
	}

	var others []*ast.StyleRule
	for _, r := range rules {
		if !own.Has(strings.TrimSpace(r.Selector)) {
			others = append(others, r)
		}
	}
	a.registerRules(others)
}

// registerRules records the properties of rules with a simple selector
func (a *analyser) registerRules(rules []*ast.StyleRule) {
	for _, r := range rules {
		sel := strings.TrimSpace(r.Selector)
		if len(sel) < 2 || (sel[0] != '.' && sel[0] != '#') || !isSimpleName(sel[1:]) {
			continue
		}
		a.table.InsertSelector(sel, r.Properties, r.Pos)
	}
}
