// Package common holds helpers shared by the content parsers
package common

import "strings"

// Reference is a {group.token} alias inside a design token value
type Reference struct {
	// Path is the dotted path between the braces
	Path string
	// Start and End are byte offsets of the whole reference in the value
	Start int
	End   int
}

// TokenName is the hyphenated name a reference points at, e.g.
// "color.primary" becomes "color-primary"
func (r Reference) TokenName() string {
	return TokenName(r.Path)
}

// TokenName converts a dotted token path to the hyphenated token name
func TokenName(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), ".", "-")
}

// ExtractReferences finds every curly brace reference in a value
func ExtractReferences(content string) []Reference {
	var refs []Reference
	for _, m := range CurlyBraceReferenceRegexp.FindAllStringSubmatchIndex(content, -1) {
		refs = append(refs, Reference{
			Path:  content[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}
	return refs
}

// WholeReference returns the reference when the value consists of exactly
// one reference
func WholeReference(content string) (Reference, bool) {
	m := WholeReferenceRegexp.FindStringSubmatchIndex(content)
	if m == nil {
		return Reference{}, false
	}
	return Reference{Path: content[m[2]:m[3]], Start: m[0], End: m[1]}, true
}
