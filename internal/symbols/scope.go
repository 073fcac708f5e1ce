package symbols

import "strings"

// Separator joins namespace segments in qualified names
const Separator = "::"

// Scope is an immutable namespace path. Entering a namespace returns a new
// Scope, so the caller's scope is restored on every return path.
type Scope struct {
	path string
}

// Global returns the root scope
func Global() Scope {
	return Scope{}
}

// ScopeOf builds a scope from a qualified namespace name such as "a::b"
func ScopeOf(qualified string) Scope {
	return Scope{path: qualified}
}

// Push returns the scope nested one namespace deeper
func (s Scope) Push(name string) Scope {
	if name == "" {
		return s
	}
	return Scope{path: s.Qualify(name)}
}

// IsGlobal reports whether s is the root scope
func (s Scope) IsGlobal() bool {
	return s.path == ""
}

// Qualify prefixes name with the scope path
func (s Scope) Qualify(name string) string {
	if s.path == "" {
		return name
	}
	return s.path + Separator + name
}

// Prefixes lists the scope and each enclosing scope, innermost first and
// ending with the global scope
func (s Scope) Prefixes() []Scope {
	out := []Scope{s}
	path := s.path
	for path != "" {
		i := strings.LastIndex(path, Separator)
		if i < 0 {
			path = ""
		} else {
			path = path[:i]
		}
		out = append(out, Scope{path: path})
	}
	return out
}

func (s Scope) String() string {
	if s.path == "" {
		return "<global>"
	}
	return s.path
}
