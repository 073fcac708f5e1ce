package position_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/position"
	"github.com/stretchr/testify/assert"
)

func TestUTF16ToByteOffset(t *testing.T) {
	tests := []struct {
		name string
		s    string
		col  int
		want int
	}{
		{"ascii", "div { }", 4, 4},
		{"negative", "div", -1, 0},
		{"past the end", "div", 10, 3},
		{"two-byte rune", "é{", 1, 2},
		{"cjk", "文字x", 2, 6},
		{"emoji", "😀a", 2, 4},
		{"inside a surrogate pair", "😀a", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, position.UTF16ToByteOffset(tt.s, tt.col))
		})
	}
}

func TestByteOffsetToUTF16(t *testing.T) {
	assert.Equal(t, 0, position.ByteOffsetToUTF16("abc", -3))
	assert.Equal(t, 3, position.ByteOffsetToUTF16("abc", 99))
	assert.Equal(t, 2, position.ByteOffsetToUTF16("😀a", 4))
	assert.Equal(t, 3, position.ByteOffsetToUTF16("😀a", 5))
	assert.Equal(t, 1, position.ByteOffsetToUTF16("é", 2))
	assert.Equal(t, 0, position.ByteOffsetToUTF16("é", 1), "partial rune")
	assert.Equal(t, 3, position.StringLengthUTF16("😀a"))
}

func TestRoundTrip(t *testing.T) {
	s := "p { text { \"日本😀\" } }"
	for col := 0; col <= position.StringLengthUTF16(s); col++ {
		offset := position.UTF16ToByteOffset(s, col)
		back := position.ByteOffsetToUTF16(s, offset)
		assert.LessOrEqual(t, back, col)
	}
}

func TestFromSource(t *testing.T) {
	content := "div {\n  文 span {\n}"
	line, char := position.FromSource(content, 2, 6)
	assert.Equal(t, uint32(1), line)
	assert.Equal(t, uint32(3), char)

	line, char = position.FromSource(content, 0, 0)
	assert.Equal(t, uint32(0), line)
	assert.Equal(t, uint32(0), char)

	assert.Equal(t, "", position.Line(content, 5))
	assert.Equal(t, "}", position.Line(content, 2))
}
