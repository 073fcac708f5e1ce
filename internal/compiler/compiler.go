// Package compiler runs the full pipeline: parse, analyse and generate.
package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/chtl/internal/analyser"
	"bennypowers.dev/chtl/internal/color"
	"bennypowers.dev/chtl/internal/config"
	"bennypowers.dev/chtl/internal/generator"
	"bennypowers.dev/chtl/internal/importer"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/parser/chtl"
)

// Options configures a compilation
type Options struct {
	ColorFormat color.Format
	// Read overrides how imported files are read, e.g. from editor buffers
	Read importer.ReadFunc
}

// OptionsFromConfig derives compile options from a project configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	format, err := color.ParseFormat(cfg.ColorFormat)
	if err != nil {
		return Options{}, err
	}
	return Options{ColorFormat: format}, nil
}

// CompileSource compiles src as if read from path. Imports are resolved
// relative to path.
func CompileSource(path string, src []byte, opts Options) (*generator.Output, error) {
	prog, err := chtl.Parse(path, src)
	if err != nil {
		return nil, err
	}
	res, err := analyser.Analyse(prog, analyser.Options{Importer: importer.New(opts.Read)})
	if err != nil {
		return nil, err
	}
	return generator.Generate(res.Program, generator.Options{ColorFormat: opts.ColorFormat})
}

// CompileFile reads and compiles one file
func CompileFile(path string, opts Options) (*generator.Output, error) {
	read := opts.Read
	if read == nil {
		read = os.ReadFile
	}
	src, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return CompileSource(path, src, opts)
}

// OutputPath maps a source file under root to its page under outDir
func OutputPath(root, outDir, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".html"), nil
}

// Build compiles every source file the configuration matches under root
// and writes one page per file into the output directory. It stops at the
// first failure and returns the pages written so far.
func Build(root string, cfg *config.Config) ([]string, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	files, err := cfg.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sources in %s: %w", root, err)
	}
	if len(files) == 0 {
		return nil, errors.New("no source files matched in " + root)
	}

	outDir := cfg.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}

	var written []string
	for _, file := range files {
		page, err := WritePage(root, outDir, file, opts)
		if err != nil {
			return written, err
		}
		written = append(written, page)
	}
	return written, nil
}

// WritePage compiles file and writes its page under outDir
func WritePage(root, outDir, file string, opts Options) (string, error) {
	out, err := CompileFile(file, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}
	page, err := OutputPath(root, outDir, file)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(page), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(page, []byte(out.Document()), 0o644); err != nil { //nolint:gosec // G306: generated pages are public
		return "", err
	}
	log.Info("Wrote %s", page)
	return page, nil
}
