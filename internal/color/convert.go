// Package color rewrites CSS color values into one notation
package color

import (
	"fmt"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Format is a target color notation
type Format string

const (
	// Preserve leaves colors as written
	Preserve Format = ""
	Hex      Format = "hex"
	RGB      Format = "rgb"
	HSL      Format = "hsl"
)

// ParseFormat validates a configured color format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Preserve, Hex, RGB, HSL:
		return f, nil
	}
	return Preserve, fmt.Errorf("unknown color format %q (want hex, rgb or hsl)", s)
}

// IsColor reports whether value parses as a CSS color
func IsColor(value string) bool {
	_, err := csscolorparser.Parse(strings.TrimSpace(value))
	return err == nil
}

// Convert rewrites a CSS color in the given format. Values that are not
// colors are returned unchanged with ok false.
func Convert(value string, format Format) (string, bool) {
	if format == Preserve {
		return value, false
	}
	c, err := csscolorparser.Parse(strings.TrimSpace(value))
	if err != nil {
		return value, false
	}

	r := math.Max(0, math.Min(1, c.R))
	g := math.Max(0, math.Min(1, c.G))
	b := math.Max(0, math.Min(1, c.B))
	alpha := math.Max(0, math.Min(1, c.A))

	switch format {
	case Hex:
		return hexToCSS(r, g, b, alpha), true
	case RGB:
		return rgbToCSS(r, g, b, alpha), true
	case HSL:
		return hslToCSS(r, g, b, alpha), true
	}
	return value, false
}

func to255(v float64) int {
	return int(math.Round(v * 255))
}

// hexToCSS writes #rrggbb, or #rrggbbaa for translucent colors
func hexToCSS(r, g, b, alpha float64) string {
	if alpha >= 0.999 {
		return fmt.Sprintf("#%02x%02x%02x", to255(r), to255(g), to255(b))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", to255(r), to255(g), to255(b), to255(alpha))
}

func rgbToCSS(r, g, b, alpha float64) string {
	if alpha >= 0.999 {
		return fmt.Sprintf("rgb(%d, %d, %d)", to255(r), to255(g), to255(b))
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", to255(r), to255(g), to255(b), alpha)
}

func hslToCSS(r, g, b, alpha float64) string {
	h, s, l := rgbToHSL(r, g, b)
	if alpha >= 0.999 {
		return fmt.Sprintf("hsl(%.1f, %.1f%%, %.1f%%)", h, s*100, l*100)
	}
	return fmt.Sprintf("hsla(%.1f, %.1f%%, %.1f%%, %.2f)", h, s*100, l*100, alpha)
}

// rgbToHSL converts sRGB components in [0,1] to hue in degrees and
// saturation and lightness in [0,1]
func rgbToHSL(r, g, b float64) (h, s, l float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2
	d := maxC - minC
	if d == 0 {
		return 0, 0, l
	}
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}
