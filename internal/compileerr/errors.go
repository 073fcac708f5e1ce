// Package compileerr defines the fatal error taxonomy of the compiler.
// Every error type unwraps to a sentinel so callers can use errors.Is, and
// carries the name or path needed to act on it.
package compileerr

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/chtl/internal/ast"
)

// Sentinel errors for error type checking
var (
	// ErrParse indicates malformed source
	ErrParse = errors.New("parse error")

	// ErrRedefinition indicates a template name already exists in its scope
	ErrRedefinition = errors.New("template redefinition")

	// ErrUnknownTemplate indicates a usage or inheritance names a missing template
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrUnknownSelector indicates a back-reference to an unregistered selector
	ErrUnknownSelector = errors.New("unknown selector")

	// ErrUnknownOrigin indicates an [Origin] reference to unregistered raw content
	ErrUnknownOrigin = errors.New("unknown origin")

	// ErrUnknownProperty indicates a back-reference to a key that was never set
	ErrUnknownProperty = errors.New("unknown property")

	// ErrMissingPlaceholderValue indicates a custom style usage left a placeholder empty
	ErrMissingPlaceholderValue = errors.New("missing placeholder value")

	// ErrCircularInheritance indicates a template inherits or expands itself
	ErrCircularInheritance = errors.New("circular inheritance")

	// ErrCircularImport indicates a file imports itself, directly or transitively
	ErrCircularImport = errors.New("circular import")

	// ErrCircularReference indicates a value reference chain loops
	ErrCircularReference = errors.New("circular reference")

	// ErrFileNotFound indicates an import path does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrConstraintViolation indicates an `except` exclusion was violated
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrSpecializationTarget indicates an insert or specialization anchor is missing
	ErrSpecializationTarget = errors.New("specialization target not found")

	// ErrEvaluation indicates a value expression cannot be computed
	ErrEvaluation = errors.New("evaluation error")
)

// Positioned is implemented by errors that know where in the source they occurred
type Positioned interface {
	Position() ast.Pos
}

// Position returns the source position carried by err, if any
func Position(err error) (ast.Pos, bool) {
	var p Positioned
	if errors.As(err, &p) {
		pos := p.Position()
		return pos, pos.IsValid()
	}
	return ast.Pos{}, false
}

func at(pos ast.Pos) string {
	if !pos.IsValid() {
		return ""
	}
	return pos.String() + ": "
}

// ParseError represents malformed source
type ParseError struct {
	Pos     ast.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s%s", at(e.Pos), e.Message)
}

func (e *ParseError) Unwrap() error     { return ErrParse }
func (e *ParseError) Position() ast.Pos { return e.Pos }

// NewParseError creates a new parse error
func NewParseError(pos ast.Pos, format string, args ...any) error {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// RedefinitionError represents a template defined twice in one scope
type RedefinitionError struct {
	Name     string
	Pos      ast.Pos
	Previous ast.Pos
}

func (e *RedefinitionError) Error() string {
	msg := fmt.Sprintf("%stemplate '%s' is already defined", at(e.Pos), e.Name)
	if e.Previous.IsValid() {
		msg += fmt.Sprintf(" (previous definition at %s)", e.Previous)
	}
	return msg + "\nSuggestion: Rename one of the templates or move it into a [Namespace]"
}

func (e *RedefinitionError) Unwrap() error     { return ErrRedefinition }
func (e *RedefinitionError) Position() ast.Pos { return e.Pos }

// NewRedefinitionError creates a new redefinition error
func NewRedefinitionError(name string, pos, previous ast.Pos) error {
	return &RedefinitionError{Name: name, Pos: pos, Previous: previous}
}

// UnknownTemplateError represents a reference to a template not in the symbol table
type UnknownTemplateError struct {
	Name string
	Kind ast.TemplateKind
	From string
	Pos  ast.Pos
}

func (e *UnknownTemplateError) Error() string {
	name := e.Name
	if e.From != "" {
		name += " from " + e.From
	}
	return fmt.Sprintf("%sunknown template: %s (%s)\nSuggestion: Define the template before use, import the file that defines it, or qualify it with 'from <namespace>'",
		at(e.Pos), name, e.Kind)
}

func (e *UnknownTemplateError) Unwrap() error     { return ErrUnknownTemplate }
func (e *UnknownTemplateError) Position() ast.Pos { return e.Pos }

// NewUnknownTemplateError creates a new unknown template error
func NewUnknownTemplateError(kind ast.TemplateKind, name, from string, pos ast.Pos) error {
	return &UnknownTemplateError{Name: name, Kind: kind, From: from, Pos: pos}
}

// UnknownSelectorError represents a back-reference to an unregistered selector
type UnknownSelectorError struct {
	Selector string
	Pos      ast.Pos
}

func (e *UnknownSelectorError) Error() string {
	return fmt.Sprintf("%sunknown selector '%s'\nSuggestion: References only see elements that appear earlier in the document",
		at(e.Pos), e.Selector)
}

func (e *UnknownSelectorError) Unwrap() error     { return ErrUnknownSelector }
func (e *UnknownSelectorError) Position() ast.Pos { return e.Pos }

// NewUnknownSelectorError creates a new unknown selector error
func NewUnknownSelectorError(selector string, pos ast.Pos) error {
	return &UnknownSelectorError{Selector: selector, Pos: pos}
}

// UnknownOriginError represents an `[Origin] @Kind Name;` reference with no
// matching named origin
type UnknownOriginError struct {
	Kind ast.RawKind
	Name string
	Pos  ast.Pos
}

func (e *UnknownOriginError) Error() string {
	return fmt.Sprintf("%sunknown origin %s %s\nSuggestion: Import the file with 'as %s' or declare a named [Origin] block before referencing it",
		at(e.Pos), e.Kind, e.Name, e.Name)
}

func (e *UnknownOriginError) Unwrap() error     { return ErrUnknownOrigin }
func (e *UnknownOriginError) Position() ast.Pos { return e.Pos }

// NewUnknownOriginError creates a new unknown origin error
func NewUnknownOriginError(kind ast.RawKind, name string, pos ast.Pos) error {
	return &UnknownOriginError{Kind: kind, Name: name, Pos: pos}
}

// UnknownPropertyError represents a key that is not set on a selector or Var template
type UnknownPropertyError struct {
	Owner string
	Key   string
	Pos   ast.Pos
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("%sproperty '%s' is not defined on '%s'", at(e.Pos), e.Key, e.Owner)
}

func (e *UnknownPropertyError) Unwrap() error     { return ErrUnknownProperty }
func (e *UnknownPropertyError) Position() ast.Pos { return e.Pos }

// NewUnknownPropertyError creates a new unknown property error
func NewUnknownPropertyError(owner, key string, pos ast.Pos) error {
	return &UnknownPropertyError{Owner: owner, Key: key, Pos: pos}
}

// MissingPlaceholderValueError represents an unfilled [Custom] placeholder
type MissingPlaceholderValueError struct {
	Template string
	Key      string
	Pos      ast.Pos
}

func (e *MissingPlaceholderValueError) Error() string {
	return fmt.Sprintf("%smissing value for placeholder '%s' in custom style '%s'\nSuggestion: Supply it in the usage block, e.g. @Style %s { %s: ...; }",
		at(e.Pos), e.Key, e.Template, e.Template, e.Key)
}

func (e *MissingPlaceholderValueError) Unwrap() error     { return ErrMissingPlaceholderValue }
func (e *MissingPlaceholderValueError) Position() ast.Pos { return e.Pos }

// NewMissingPlaceholderValueError creates a new missing placeholder error
func NewMissingPlaceholderValueError(template, key string, pos ast.Pos) error {
	return &MissingPlaceholderValueError{Template: template, Key: key, Pos: pos}
}

// CircularInheritanceError represents an inheritance or expansion cycle
type CircularInheritanceError struct {
	Name  string
	Chain []string
	Pos   ast.Pos
}

func (e *CircularInheritanceError) Error() string {
	chain := e.Name
	if len(e.Chain) > 0 {
		chain = strings.Join(e.Chain, " → ")
	}
	return fmt.Sprintf("%scircular inheritance involving template '%s': %s\nSuggestion: Break the circular dependency chain",
		at(e.Pos), e.Name, chain)
}

func (e *CircularInheritanceError) Unwrap() error     { return ErrCircularInheritance }
func (e *CircularInheritanceError) Position() ast.Pos { return e.Pos }

// NewCircularInheritanceError creates a new circular inheritance error
func NewCircularInheritanceError(name string, chain []string, pos ast.Pos) error {
	return &CircularInheritanceError{Name: name, Chain: chain, Pos: pos}
}

// CircularImportError represents an import cycle
type CircularImportError struct {
	Path  string
	Chain []string
	Pos   ast.Pos
}

func (e *CircularImportError) Error() string {
	msg := fmt.Sprintf("%scircular import of %s", at(e.Pos), e.Path)
	if len(e.Chain) > 0 {
		msg += ": " + strings.Join(e.Chain, " → ")
	}
	return msg + "\nSuggestion: Move shared templates into a file that neither side imports"
}

func (e *CircularImportError) Unwrap() error     { return ErrCircularImport }
func (e *CircularImportError) Position() ast.Pos { return e.Pos }

// NewCircularImportError creates a new circular import error
func NewCircularImportError(path string, chain []string, pos ast.Pos) error {
	return &CircularImportError{Path: path, Chain: chain, Pos: pos}
}

// CircularReferenceError represents a value reference chain that loops
type CircularReferenceError struct {
	Chain []string
	Pos   ast.Pos
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("%scircular reference detected: %s\nSuggestion: Break the circular dependency chain",
		at(e.Pos), strings.Join(e.Chain, " → "))
}

func (e *CircularReferenceError) Unwrap() error     { return ErrCircularReference }
func (e *CircularReferenceError) Position() ast.Pos { return e.Pos }

// NewCircularReferenceError creates a new circular reference error
func NewCircularReferenceError(chain []string, pos ast.Pos) error {
	return &CircularReferenceError{Chain: chain, Pos: pos}
}

// FileNotFoundError represents an import path that does not exist
type FileNotFoundError struct {
	Path         string
	ImportedFrom string
	Pos          ast.Pos
}

func (e *FileNotFoundError) Error() string {
	msg := fmt.Sprintf("%sfile not found: %s", at(e.Pos), e.Path)
	if e.ImportedFrom != "" {
		msg += fmt.Sprintf(" (imported from %s)", e.ImportedFrom)
	}
	return msg + "\nSuggestion: Import paths are relative to the importing file"
}

func (e *FileNotFoundError) Unwrap() error     { return ErrFileNotFound }
func (e *FileNotFoundError) Position() ast.Pos { return e.Pos }

// NewFileNotFoundError creates a new file not found error
func NewFileNotFoundError(path, importedFrom string, pos ast.Pos) error {
	return &FileNotFoundError{Path: path, ImportedFrom: importedFrom, Pos: pos}
}

// ConstraintViolationError represents content forbidden by an `except` clause
type ConstraintViolationError struct {
	Container  string
	Constraint string
	Pos        ast.Pos
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s'%s' is not allowed inside '%s' (except %s)",
		at(e.Pos), e.Constraint, e.Container, e.Constraint)
}

func (e *ConstraintViolationError) Unwrap() error     { return ErrConstraintViolation }
func (e *ConstraintViolationError) Position() ast.Pos { return e.Pos }

// NewConstraintViolationError creates a new constraint violation error
func NewConstraintViolationError(container, constraint string, pos ast.Pos) error {
	return &ConstraintViolationError{Container: container, Constraint: constraint, Pos: pos}
}

// SpecializationTargetError represents an insert or specialization anchor that matches nothing
type SpecializationTargetError struct {
	Template string
	Target   string
	Pos      ast.Pos
}

func (e *SpecializationTargetError) Error() string {
	return fmt.Sprintf("%starget '%s' not found in expansion of '%s'", at(e.Pos), e.Target, e.Template)
}

func (e *SpecializationTargetError) Unwrap() error     { return ErrSpecializationTarget }
func (e *SpecializationTargetError) Position() ast.Pos { return e.Pos }

// NewSpecializationTargetError creates a new specialization target error
func NewSpecializationTargetError(template, target string, pos ast.Pos) error {
	return &SpecializationTargetError{Template: template, Target: target, Pos: pos}
}

// EvaluationError represents a value expression that cannot be computed
type EvaluationError struct {
	Expr   string
	Reason string
	Pos    ast.Pos
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%scannot evaluate '%s': %s", at(e.Pos), e.Expr, e.Reason)
}

func (e *EvaluationError) Unwrap() error     { return ErrEvaluation }
func (e *EvaluationError) Position() ast.Pos { return e.Pos }

// NewEvaluationError creates a new evaluation error
func NewEvaluationError(expr, reason string, pos ast.Pos) error {
	return &EvaluationError{Expr: expr, Reason: reason, Pos: pos}
}
