package html

// RegionType identifies the kind of CSS region found in HTML
type RegionType int

const (
	// UnknownRegion is the zero value, indicating an uninitialized region type
	UnknownRegion RegionType = iota
	// StyleTag represents CSS inside a <style> element
	StyleTag
	// StyleAttribute represents CSS inside a style="..." attribute
	StyleAttribute
)

// CSSRegion represents a region of CSS content found in an HTML document
type CSSRegion struct {
	Content   string
	StartLine uint
	StartCol  uint
	Type      RegionType
}

// Element is a start tag with the attributes that seed selectors
type Element struct {
	Tag     string
	ID      string
	Classes []string
	// Style is the raw style attribute value
	Style     string
	StartLine uint
	StartCol  uint
}

// Selectors lists the selectors the element registers under: its tag, its
// id selector and each class selector
func (e Element) Selectors() []string {
	out := []string{e.Tag}
	if e.ID != "" {
		out = append(out, "#"+e.ID)
	}
	for _, c := range e.Classes {
		out = append(out, "."+c)
	}
	return out
}
