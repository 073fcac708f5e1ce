package css

// Position is a 0-based line and column in the parsed source
type Position struct {
	Line   uint
	Column uint
}

// Declaration is a `property: value` pair
type Declaration struct {
	Property string
	Value    string
	Start    Position
}

// Rule is a rule set with its comma-separated selectors split apart
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
	Start        Position
}

// ParseResult contains the results of parsing CSS
type ParseResult struct {
	Rules []*Rule
	// HasErrors reports whether tree-sitter recovered from syntax errors
	HasErrors bool
}
