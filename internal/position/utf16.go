// Package position converts between source byte columns and LSP positions,
// which count UTF-16 code units.
package position

import (
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset returns the byte offset of the UTF-16 column in s. A
// column inside a surrogate pair clamps to the start of its rune.
func UTF16ToByteOffset(s string, utf16Col int) int {
	units, offset := 0, 0
	for offset < len(s) && units < utf16Col {
		r, size := utf8.DecodeRuneInString(s[offset:])
		n := 1
		if r != utf8.RuneError || size != 1 {
			n = utf16.RuneLen(r)
		}
		if units+n > utf16Col {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// ByteOffsetToUTF16 returns the UTF-16 column of a byte offset in s
func ByteOffsetToUTF16(s string, byteOffset int) int {
	byteOffset = min(max(byteOffset, 0), len(s))
	units := 0
	for offset := 0; offset < byteOffset; {
		r, size := utf8.DecodeRuneInString(s[offset:])
		if offset+size > byteOffset {
			break
		}
		if r == utf8.RuneError && size == 1 {
			units++
		} else {
			units += utf16.RuneLen(r)
		}
		offset += size
	}
	return units
}

// StringLengthUTF16 returns the length of s in UTF-16 code units
func StringLengthUTF16(s string) int {
	return ByteOffsetToUTF16(s, len(s))
}

// Line returns the zero-based line n of content, or "" past the end
func Line(content string, n int) string {
	for i := 0; i < n; i++ {
		nl := strings.IndexByte(content, '\n')
		if nl < 0 {
			return ""
		}
		content = content[nl+1:]
	}
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		return content[:nl]
	}
	return content
}

// FromSource converts a one-based line and byte column into a zero-based
// LSP line and UTF-16 character.
func FromSource(content string, line, column int) (uint32, uint32) {
	if line < 1 {
		return 0, 0
	}
	text := Line(content, line-1)
	return clamp(line - 1), clamp(ByteOffsetToUTF16(text, column-1))
}

func clamp(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
