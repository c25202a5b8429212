// Package config loads fastfind settings.
//
// Settings are layered, each layer overriding the previous one:
//  1. built-in defaults (NewConfig)
//  2. user config ($XDG_CONFIG_HOME/fastfind/config.yaml or ~/.config/fastfind/config.yaml)
//  3. project config (.fastfind.yaml or .fastfind.yml in the project root)
//  4. FASTFIND_* environment variables
//
// Command line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
)

// Project config file names, in lookup order.
const (
	ProjectConfigYAML = ".fastfind.yaml"
	ProjectConfigYML  = ".fastfind.yml"
)

// Config is the complete fastfind configuration.
type Config struct {
	Version  int          `yaml:"version" json:"version"`
	Search   SearchConfig `yaml:"search" json:"search"`
	Walk     WalkConfig   `yaml:"walk" json:"walk"`
	Output   OutputConfig `yaml:"output" json:"output"`
	LogLevel string       `yaml:"log_level" json:"log_level"`
}

// SearchConfig configures line scanning and parallelism.
type SearchConfig struct {
	// Context is the number of lines reported before each match.
	Context int `yaml:"context" json:"context"`

	// BufferSize is the read buffer size for streamed files, in bytes.
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`

	// Workers bounds concurrent file scans (0 = one per CPU).
	Workers int `yaml:"workers" json:"workers"`

	// MapThreshold is the file size above which files are memory mapped.
	MapThreshold int64 `yaml:"map_threshold" json:"map_threshold"`

	// IgnoreCase makes both patterns case-insensitive.
	IgnoreCase bool `yaml:"ignore_case" json:"ignore_case"`

	// Unordered returns matches in completion order instead of sorting them.
	Unordered bool `yaml:"unordered" json:"unordered"`
}

// WalkConfig configures directory traversal.
type WalkConfig struct {
	Hidden         bool     `yaml:"hidden" json:"hidden"`
	NoIgnore       bool     `yaml:"no_ignore" json:"no_ignore"`
	FollowSymlinks bool     `yaml:"follow_symlinks" json:"follow_symlinks"`
	Exclude        []string `yaml:"exclude" json:"exclude"`
}

// OutputConfig configures how matches are printed.
type OutputConfig struct {
	// Color is "auto", "always" or "never".
	Color string `yaml:"color" json:"color"`

	// Format is "text" or "json".
	Format string `yaml:"format" json:"format"`

	// Stats prints a summary line after the matches.
	Stats bool `yaml:"stats" json:"stats"`
}

// Valid values for enumerated settings.
var (
	validColors    = []string{"auto", "always", "never"}
	validFormats   = []string{"text", "json"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchConfig{
			Context:      1,
			BufferSize:   8192,
			Workers:      0,        // one per CPU
			MapThreshold: 10 << 20, // 10 MiB
		},
		Walk: WalkConfig{
			Exclude: []string{},
		},
		Output: OutputConfig{
			Color:  "auto",
			Format: "text",
		},
		LogLevel: "warn",
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/fastfind/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fastfind", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "fastfind", "config.yaml")
	}
	return filepath.Join(home, ".config", "fastfind", "config.yaml")
}

// UserConfigExists reports whether a user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, or "" if there is none.
// .fastfind.yaml wins over .fastfind.yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigYML} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

// Load builds the effective configuration for a project directory.
// Missing files are not an error; malformed or invalid ones are.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if UserConfigExists() {
		if err := cfg.loadYAML(GetUserConfigPath()); err != nil {
			return nil, err
		}
	}

	if p := ProjectConfigPath(dir); p != "" {
		if err := cfg.loadYAML(p); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fferrors.ConfigError("invalid configuration", err).
			WithSuggestion("run 'fastfind config show' to inspect the effective settings")
	}
	return cfg, nil
}

// loadYAML overlays the settings present in a YAML file.
// Keys missing from the file keep their current value, so an explicit zero
// (e.g. "context: 0") overrides a default. Exclude globs accumulate.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fferrors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	prevExclude := c.Walk.Exclude
	c.Walk.Exclude = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		c.Walk.Exclude = prevExclude
		return fferrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}

	if c.Walk.Exclude == nil {
		c.Walk.Exclude = prevExclude
	} else {
		c.Walk.Exclude = appendUnique(prevExclude, c.Walk.Exclude...)
	}
	return nil
}

// applyEnvOverrides applies FASTFIND_* environment variables.
// Empty variables are ignored; unparsable ones are a config error.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"FASTFIND_CONTEXT", &c.Search.Context},
		{"FASTFIND_BUFFER_SIZE", &c.Search.BufferSize},
		{"FASTFIND_WORKERS", &c.Search.Workers},
	}
	for _, e := range ints {
		if v := os.Getenv(e.name); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return envError(e.name, v, err)
			}
			*e.dst = n
		}
	}

	if v := os.Getenv("FASTFIND_MAP_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return envError("FASTFIND_MAP_THRESHOLD", v, err)
		}
		c.Search.MapThreshold = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"FASTFIND_IGNORE_CASE", &c.Search.IgnoreCase},
		{"FASTFIND_HIDDEN", &c.Walk.Hidden},
		{"FASTFIND_NO_IGNORE", &c.Walk.NoIgnore},
		{"FASTFIND_FOLLOW", &c.Walk.FollowSymlinks},
	}
	for _, e := range bools {
		if v := os.Getenv(e.name); v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return envError(e.name, v, err)
			}
			*e.dst = b
		}
	}

	if v := os.Getenv("FASTFIND_COLOR"); v != "" {
		c.Output.Color = strings.ToLower(v)
	}
	if v := os.Getenv("FASTFIND_FORMAT"); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv("FASTFIND_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func envError(name, value string, err error) error {
	return fferrors.ConfigError(fmt.Sprintf("invalid value %q for %s", value, name), err).
		WithDetail("env", name)
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Search.Context < 0 {
		return fmt.Errorf("search.context must be non-negative, got %d", c.Search.Context)
	}
	if c.Search.BufferSize <= 0 {
		return fmt.Errorf("search.buffer_size must be positive, got %d", c.Search.BufferSize)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must be non-negative, got %d", c.Search.Workers)
	}
	if c.Search.MapThreshold < 0 {
		return fmt.Errorf("search.map_threshold must be non-negative, got %d", c.Search.MapThreshold)
	}
	if !slices.Contains(validColors, c.Output.Color) {
		return fmt.Errorf("output.color must be one of %s, got %q", strings.Join(validColors, ", "), c.Output.Color)
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Output.Format)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("log_level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.LogLevel)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot finds the directory whose project config applies to start.
// It walks up from start looking for a .git directory or a .fastfind.yaml/.yml
// file, and returns start itself (its directory, for a file) when none exists.
func FindProjectRoot(start string) (string, error) {
	absDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	if fileExists(absDir) {
		absDir = filepath.Dir(absDir)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) || ProjectConfigPath(currentDir) != "" {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached the filesystem root
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}
	return dst
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
