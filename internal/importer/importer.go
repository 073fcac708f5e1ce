// Package importer resolves [Import] paths to parsed markup, raw origin
// content or design-token Var templates. It keeps no history between calls;
// import cycle detection belongs to the analyser.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/parser/asimonim"
	"bennypowers.dev/chtl/internal/parser/chtl"
)

// ReadFunc reads a file by absolute path
type ReadFunc func(path string) ([]byte, error)

// Unit is one resolved import. Exactly one of Program, Origin and Vars is set.
type Unit struct {
	// Path is the canonical absolute path of the imported file
	Path string
	Kind ast.ImportKind

	Program *ast.Program
	Origin  *ast.Origin
	Vars    *ast.Template
}

// Importer resolves imports relative to the importing file
type Importer struct {
	read ReadFunc
}

// New creates an importer. A nil read function reads from disk.
func New(read ReadFunc) *Importer {
	if read == nil {
		read = os.ReadFile
	}
	return &Importer{read: read}
}

var extensionKinds = map[string]ast.ImportKind{
	".chtl": ast.ImportChtl,
	".html": ast.ImportHTML,
	".htm":  ast.ImportHTML,
	".css":  ast.ImportStyle,
	".js":   ast.ImportJavaScript,
	".mjs":  ast.ImportJavaScript,
}

var defaultExtensions = map[ast.ImportKind]string{
	ast.ImportChtl:       ".chtl",
	ast.ImportHTML:       ".html",
	ast.ImportStyle:      ".css",
	ast.ImportJavaScript: ".js",
	ast.ImportVar:        ".json",
}

// KindOf infers the import kind from a file extension
func KindOf(path string) (ast.ImportKind, bool) {
	if asimonim.IsTokenFile(path) {
		return ast.ImportVar, true
	}
	kind, ok := extensionKinds[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// Canonical resolves importPath against the directory of currentFile.
// A path without an extension gets the default extension of kind.
func Canonical(currentFile, importPath string, kind ast.ImportKind) (string, error) {
	path := filepath.FromSlash(importPath)
	if filepath.Ext(path) == "" {
		path += defaultExtensions[kind]
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(currentFile), path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", importPath, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// CanonicalFile returns the canonical form of a source file path
func CanonicalFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Resolve loads the file named by imp relative to currentFile. Markup files
// are lexed and parsed; Html, Style and JavaScript files become Origin
// leaves; token files become Var templates. The raw kind follows the file
// extension when it is recognized.
func (im *Importer) Resolve(currentFile string, imp *ast.Import) (*Unit, error) {
	path, err := Canonical(currentFile, imp.Path, imp.Type)
	if err != nil {
		return nil, err
	}
	data, err := im.read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, compileerr.NewFileNotFoundError(path, currentFile, imp.Pos)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	kind := imp.Type
	if inferred, ok := KindOf(path); ok {
		kind = inferred
	}
	log.Debug("Resolved %s import %q from %s -> %s", kind, imp.Path, currentFile, path)

	unit := &Unit{Path: path, Kind: kind}
	switch kind {
	case ast.ImportChtl:
		prog, err := chtl.Parse(path, data)
		if err != nil {
			return nil, err
		}
		unit.Program = prog

	case ast.ImportVar:
		tokens, err := asimonim.Load(path, data)
		if err != nil {
			return nil, err
		}
		unit.Vars = asimonim.ToTemplate(varGroupName(imp.Alias, path), tokens, imp.Pos)

	default:
		raw, _ := kind.RawKind()
		unit.Origin = &ast.Origin{
			Pos:     imp.Pos,
			Raw:     raw,
			Name:    imp.Alias,
			Content: string(data),
		}
	}
	return unit, nil
}

// varGroupName is the alias, or the file's base name with an upper-case
// first letter so that Group(key) accesses can name it
func varGroupName(alias, path string) string {
	if alias != "" {
		return alias
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	for i, r := range base {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case r == '.' || r == ' ':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
