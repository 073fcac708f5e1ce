package generator

import (
	"regexp"
	"strings"
)

var (
	headClose = regexp.MustCompile(`(?i)</head\s*>`)
	htmlOpen  = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
	bodyClose = regexp.MustCompile(`(?i)</body\s*>`)
	htmlClose = regexp.MustCompile(`(?i)</html\s*>`)
)

// Document assembles a complete page. The stylesheet goes into <head>,
// creating one inside <html> when needed, or before the markup when there is
// no <html> element. Scripts go before </body>, else before </html>, else
// after the markup.
func (o *Output) Document() string {
	doc := o.HTML

	if o.CSS != "" {
		style := "<style>\n" + o.CSS + "</style>"
		switch {
		case headClose.MatchString(doc):
			doc = insertBefore(doc, headClose, style)
		case htmlOpen.MatchString(doc):
			loc := htmlOpen.FindStringIndex(doc)
			doc = doc[:loc[1]] + "<head>" + style + "</head>" + doc[loc[1]:]
		default:
			doc = style + "\n" + doc
		}
	}

	if o.JS != "" {
		script := "<script>\n" + o.JS + "</script>"
		switch {
		case bodyClose.MatchString(doc):
			doc = insertBefore(doc, bodyClose, script)
		case htmlClose.MatchString(doc):
			doc = insertBefore(doc, htmlClose, script)
		default:
			doc = doc + "\n" + script
		}
	}

	if htmlOpen.MatchString(doc) && !strings.HasPrefix(strings.ToLower(doc), "<!doctype") {
		doc = "<!DOCTYPE html>\n" + doc
	}
	return doc
}

// insertBefore places s before the first match of re
func insertBefore(doc string, re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(doc)
	return doc[:loc[0]] + s + doc[loc[0]:]
}
