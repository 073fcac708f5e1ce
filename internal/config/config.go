// Package config loads project settings from chtl.yaml, chtl.yml or
// chtl.json in the project root.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileNames are the config files looked for, in order
var FileNames = []string{"chtl.yaml", "chtl.yml", "chtl.json"}

// Config is the project configuration
type Config struct {
	// Include and Exclude are doublestar globs relative to the project root
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`

	// OutDir receives generated pages, relative to the project root
	OutDir string `yaml:"outDir" json:"outDir"`

	// ColorFormat is hex, rgb, hsl or empty to keep colors as written
	ColorFormat string `yaml:"colorFormat" json:"colorFormat"`

	// LogLevel is debug, info, warn or error
	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Include:  []string{"**/*.chtl"},
		OutDir:   "dist",
		LogLevel: "info",
	}
}

// Load reads the first config file found in dir, filling unset fields from
// Default. It returns the path it read, or "" when no file exists.
func Load(dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) //nolint:gosec // G304: project config in the working tree
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		cfg, err := Parse(name, data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// Parse decodes config data; the file name's extension picks the format.
// JSON may contain comments.
func Parse(name string, data []byte) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if len(c.Include) == 0 {
		c.Include = def.Include
	}
	if c.OutDir == "" {
		c.OutDir = def.OutDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// matchGlobPattern matches with forward slashes on every platform
func matchGlobPattern(pattern, path string) (bool, error) {
	return doublestar.Match(pattern, filepath.ToSlash(path))
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := matchGlobPattern(pattern, relPath)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// Match reports whether a path relative to the project root is included
// and not excluded
func (c *Config) Match(relPath string) bool {
	return matchesAnyPattern(relPath, c.Include) && !matchesAnyPattern(relPath, c.Exclude)
}

// shouldSkipDirectory skips hidden directories and common dependency and
// output directories
func (c *Config) shouldSkipDirectory(root, path string, d fs.DirEntry) bool {
	if path == root {
		return false
	}
	name := d.Name()
	if strings.HasPrefix(name, ".") || slices.Contains([]string{"node_modules", "build"}, name) {
		return true
	}
	out := filepath.Clean(filepath.Join(root, c.OutDir))
	return filepath.Clean(path) == out
}

// Discover walks root and returns every matched source file, sorted
func (c *Config) Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if c.shouldSkipDirectory(root, path, d) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if c.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
