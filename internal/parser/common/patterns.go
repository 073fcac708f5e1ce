package common

import "regexp"

// CurlyBraceReferenceRegexp matches curly brace token references: {token.reference.path}
var CurlyBraceReferenceRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// WholeReferenceRegexp matches a value that is exactly one curly brace reference
var WholeReferenceRegexp = regexp.MustCompile(`^\s*\{([^}]+)\}\s*$`)
