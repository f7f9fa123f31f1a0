// Package config loads sqlstyle CLI configuration.
//
// Values are layered with koanf: built-in defaults, then the YAML config
// file, then SQLSTYLE_ environment variables, then explicitly set
// command-line flags.
package config

import (
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// Default values.
const (
	DefaultConfigFile = ".sqlstyle.yaml"
	DefaultCachePath  = ".sqlstyle/cache.db"
	DefaultOutput     = "auto"
	EnvPrefix         = "SQLSTYLE_"
)

// configFileNames are searched in order in each directory.
var configFileNames = []string{".sqlstyle.yaml", ".sqlstyle.yml", "sqlstyle.yaml", "sqlstyle.yml"}

// Config holds all CLI configuration options.
type Config struct {
	Style   style.Config `koanf:"style" yaml:"style"`
	Lint    LintConfig   `koanf:"lint" yaml:"lint"`
	Cache   CacheConfig  `koanf:"cache" yaml:"cache"`
	Workers int          `koanf:"workers" yaml:"workers"`
	Output  string       `koanf:"output" yaml:"output"`
	Verbose bool         `koanf:"verbose" yaml:"verbose,omitempty"`

	// ProjectRoot is the directory relative paths are resolved against:
	// the config file's directory, or the working directory.
	ProjectRoot string `koanf:"-" yaml:"-"`
	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-" yaml:"-"`
}

// LintConfig selects rules and tunes them.
type LintConfig struct {
	// Disabled lists rule IDs that never run.
	Disabled []string `koanf:"disabled" yaml:"disabled,omitempty"`
	// Severity overrides default severities, keyed by rule ID.
	Severity map[string]string `koanf:"severity" yaml:"severity,omitempty"`
	// Rules holds rule options, keyed by rule ID.
	Rules map[string]map[string]any `koanf:"rules" yaml:"rules,omitempty"`
}

// CacheConfig controls the lint result cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Path    string `koanf:"path" yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Style:  style.Default(),
		Cache:  CacheConfig{Path: DefaultCachePath},
		Output: DefaultOutput,
	}
}

// defaultsMap is Default flattened for the confmap provider.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"style.keyword_case": string(d.Style.KeywordCase),
		"style.indent_width": d.Style.IndentWidth,
		"style.comma_style":  string(d.Style.CommaStyle),
		"style.quote_style":  string(d.Style.QuoteStyle),
		"style.alias_policy": string(d.Style.AliasPolicy),
		"style.join_style":   string(d.Style.JoinStyle),
		"cache.enabled":      d.Cache.Enabled,
		"cache.path":         d.Cache.Path,
		"workers":            d.Workers,
		"output":             d.Output,
		"verbose":            d.Verbose,
	}
}

// flagKeys maps command-line flags to config keys. Flags not listed here are
// command options and never reach the config.
var flagKeys = map[string]string{
	"keyword-case": "style.keyword_case",
	"indent-width": "style.indent_width",
	"comma-style":  "style.comma_style",
	"quote-style":  "style.quote_style",
	"alias-policy": "style.alias_policy",
	"join-style":   "style.join_style",
	"cache":        "cache.enabled",
	"cache-path":   "cache.path",
	"workers":      "workers",
	"output":       "output",
	"verbose":      "verbose",
}

// topLevelKeys are the config sections environment variables may set.
var topLevelKeys = map[string]bool{
	"style":   true,
	"lint":    true,
	"cache":   true,
	"workers": true,
	"output":  true,
	"verbose": true,
}
