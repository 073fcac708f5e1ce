// Package diagnostic turns compile errors into LSP diagnostics.
package diagnostic

import (
	"errors"
	"path/filepath"
	"strings"

	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/compiler"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/position"
	"bennypowers.dev/chtl/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source names the diagnostics' producer in the client
const Source = "chtl"

// GetDiagnostics compiles the open document and reports the failure, if
// any. Imports are read from open buffers first so unsaved edits count.
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	doc := ctx.Document(uri)
	if doc == nil {
		return nil, nil
	}

	opts, err := compiler.OptionsFromConfig(ctx.Config())
	if err != nil {
		return nil, err
	}
	opts.Read = ctx.DocumentManager().Read

	_, err = compiler.CompileSource(doc.Path(), []byte(doc.Content()), opts)
	if err == nil {
		return []protocol.Diagnostic{}, nil
	}
	log.Debug("Compile failed for %s: %v", uri, err)
	return []protocol.Diagnostic{FromError(err, doc.Path(), doc.Content())}, nil
}

// FromError converts a compile error. Errors positioned in the document
// span from their column to the end of the line; errors without a position,
// or positioned in another file, are reported at the top of the document
// with that file's location prefixed to the message.
func FromError(err error, path, content string) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := Source
	d := protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  Message(err),
	}
	if code := Code(err); code != "" {
		d.Code = &protocol.IntegerOrString{Value: code}
	}

	pos, ok := compileerr.Position(err)
	if !ok || !samePath(pos.File, path) {
		if ok && !strings.HasPrefix(d.Message, pos.String()) {
			d.Message = pos.String() + ": " + d.Message
		}
		return d
	}

	line, char := position.FromSource(content, pos.Line, pos.Column)
	end := position.StringLengthUTF16(position.Line(content, int(line)))
	d.Range = protocol.Range{
		Start: protocol.Position{Line: line, Character: char},
		End:   protocol.Position{Line: line, Character: max(uint32(end), char)}, //nolint:gosec // G115: line length fits
	}
	return d
}

// Message strips the location prefix, which the range already conveys
func Message(err error) string {
	msg := err.Error()
	if pos, ok := compileerr.Position(err); ok {
		msg = strings.TrimPrefix(msg, pos.String()+": ")
	}
	return msg
}

var codes = []struct {
	sentinel error
	code     string
}{
	{compileerr.ErrParse, "parse"},
	{compileerr.ErrRedefinition, "redefinition"},
	{compileerr.ErrUnknownTemplate, "unknown-template"},
	{compileerr.ErrUnknownSelector, "unknown-selector"},
	{compileerr.ErrUnknownOrigin, "unknown-origin"},
	{compileerr.ErrUnknownProperty, "unknown-property"},
	{compileerr.ErrMissingPlaceholderValue, "missing-placeholder-value"},
	{compileerr.ErrCircularInheritance, "circular-inheritance"},
	{compileerr.ErrCircularImport, "circular-import"},
	{compileerr.ErrCircularReference, "circular-reference"},
	{compileerr.ErrFileNotFound, "file-not-found"},
	{compileerr.ErrConstraintViolation, "constraint-violation"},
	{compileerr.ErrSpecializationTarget, "specialization-target"},
	{compileerr.ErrEvaluation, "evaluation"},
}

// Code names the error category, or "" for errors outside the taxonomy
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return ""
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
