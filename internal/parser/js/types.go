package js

// SyntaxError is a region tree-sitter could not parse
type SyntaxError struct {
	// Line and Column are 0-indexed
	Line   uint
	Column uint
	// Missing is set when tree-sitter inserted a token it expected
	Missing bool
	Text    string
}
