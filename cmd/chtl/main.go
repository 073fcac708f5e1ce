// Command chtl compiles CHTL sources to HTML and serves the language server.
//
//	chtl [flags] <file|dir>...
//	chtl lsp
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bennypowers.dev/chtl/internal/compiler"
	"bennypowers.dev/chtl/internal/config"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/version"
	"bennypowers.dev/chtl/lsp"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	out         string
	configPath  string
	colorFormat string
	verbose     bool
	version     bool
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "lsp" {
		return runLSP(stderr)
	}

	var opts options
	fs := flag.NewFlagSet("chtl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.out, "o", "", "output file for a single source, or output directory")
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default: chtl.yaml, chtl.yml or chtl.json in the working directory)")
	fs.StringVar(&opts.colorFormat, "color", "", "normalize colors to hex, rgb or hsl")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: chtl [flags] <file|dir>...\n       chtl lsp\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "chtl %s\n", version.GetFullVersion())
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log.SetOutput(stderr)
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "chtl: %v\n", err)
		return 1
	}
	if err := compile(fs.Args(), cfg, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "chtl: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration and applies flag overrides
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	if opts.configPath != "" {
		data, err := os.ReadFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if cfg, err = config.Parse(opts.configPath, data); err != nil {
			return nil, err
		}
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if cfg, _, err = config.Load(wd); err != nil {
			return nil, err
		}
	}

	if opts.colorFormat != "" {
		cfg.ColorFormat = opts.colorFormat
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)
	return cfg, nil
}

// compile builds directories as projects and files one by one. A single
// file without -o prints its page to stdout.
func compile(targets []string, cfg *config.Config, opts options, stdout io.Writer) error {
	copts, err := compiler.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	single := len(targets) == 1
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return err
		}

		if info.IsDir() {
			dirCfg := *cfg
			if opts.out != "" {
				dirCfg.OutDir = opts.out
			}
			if _, err := compiler.Build(target, &dirCfg); err != nil {
				return err
			}
			continue
		}

		switch {
		case single && opts.out == "":
			out, err := compiler.CompileFile(target, copts)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, out.Document())

		case single && filepath.Ext(opts.out) == ".html":
			out, err := compiler.CompileFile(target, copts)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(opts.out, []byte(out.Document()), 0o644); err != nil { //nolint:gosec // G306: generated pages are public
				return err
			}
			log.Info("Wrote %s", opts.out)

		default:
			outDir := opts.out
			if outDir == "" {
				outDir = filepath.Dir(target)
			}
			if _, err := compiler.WritePage(filepath.Dir(target), outDir, target, copts); err != nil {
				return err
			}
		}
	}
	return nil
}

func runLSP(stderr io.Writer) int {
	log.SetOutput(stderr)
	server, err := lsp.NewServer()
	if err != nil {
		log.Error("Failed to create LSP server: %v", err)
		return 1
	}
	if err := server.RunStdio(); err != nil {
		log.Error("Server error: %v", err)
		return 1
	}
	return 0
}
