package color_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		format   color.Format
		expected string
	}{
		{"short hex to hex", "#f00", color.Hex, "#ff0000"},
		{"named to hex", "rebeccapurple", color.Hex, "#663399"},
		{"rgb to hex", "rgb(255, 107, 53)", color.Hex, "#ff6b35"},
		{"translucent to hex", "rgba(255, 0, 0, 0.5)", color.Hex, "#ff000080"},
		{"hex to rgb", "#ff6b35", color.RGB, "rgb(255, 107, 53)"},
		{"translucent to rgb", "#ff000080", color.RGB, "rgba(255, 0, 0, 0.50)"},
		{"red to hsl", "#ff0000", color.HSL, "hsl(0.0, 100.0%, 50.0%)"},
		{"grey to hsl", "#808080", color.HSL, "hsl(0.0, 0.0%, 50.2%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := color.Convert(tt.input, tt.format)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("preserve keeps the value", func(t *testing.T) {
		got, ok := color.Convert("#F00", color.Preserve)
		assert.False(t, ok)
		assert.Equal(t, "#F00", got)
	})

	t.Run("non-colors pass through", func(t *testing.T) {
		got, ok := color.Convert("solid", color.Hex)
		assert.False(t, ok)
		assert.Equal(t, "solid", got)
	})
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "hex", "RGB", " hsl "} {
		_, err := color.ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := color.ParseFormat("cmyk")
	assert.Error(t, err)
}

func TestIsColor(t *testing.T) {
	assert.True(t, color.IsColor("#abc"))
	assert.True(t, color.IsColor("hsl(120, 50%, 50%)"))
	assert.False(t, color.IsColor("16px"))
}
