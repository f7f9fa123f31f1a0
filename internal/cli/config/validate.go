package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules" // register rules for ID validation
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Style.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("style: %w", err))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Output != "" && !slices.Contains(output.ValidModes(), c.Output) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q",
			strings.Join(output.ValidModes(), ", "), c.Output))
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, errors.New("cache.path is required when the cache is enabled"))
	}

	for _, id := range c.Lint.Disabled {
		if err := knownRule(id); err != nil {
			errs = append(errs, fmt.Errorf("lint.disabled: %w", err))
		}
	}
	for _, id := range sortedKeys(c.Lint.Severity) {
		if err := knownRule(id); err != nil {
			errs = append(errs, fmt.Errorf("lint.severity: %w", err))
			continue
		}
		if _, err := lint.ParseSeverity(c.Lint.Severity[id]); err != nil {
			errs = append(errs, fmt.Errorf("lint.severity.%s: %w", id, err))
		}
	}
	for _, id := range sortedKeys(c.Lint.Rules) {
		if err := knownRule(id); err != nil {
			errs = append(errs, fmt.Errorf("lint.rules: %w", err))
		}
	}

	return errors.Join(errs...)
}

func knownRule(id string) error {
	if _, ok := lint.GetByID(strings.TrimSpace(id)); !ok {
		return fmt.Errorf("unknown rule %q (run 'sqlstyle rules' to list rules)", id)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LintOverrides are command-line rule selections applied on top of the
// config file.
type LintOverrides struct {
	Disable []string
	Only    []string
}

// BuildLintConfig turns the lint section and overrides into a lint.Config.
// Rule IDs are validated; config file entries were already checked by
// Validate.
func (c *Config) BuildLintConfig(overrides LintOverrides) (*lint.Config, error) {
	lintCfg := lint.NewConfig()

	// Apply project config first (lower precedence)
	for _, id := range c.Lint.Disabled {
		lintCfg.Disable(strings.TrimSpace(id))
	}
	for id, sev := range c.Lint.Severity {
		s, err := lint.ParseSeverity(sev)
		if err != nil {
			return nil, fmt.Errorf("lint.severity.%s: %w", id, err)
		}
		lintCfg.SetSeverity(id, s)
	}
	for id, opts := range c.Lint.Rules {
		lintCfg.SetRuleOptions(id, opts)
	}

	// Apply CLI overrides (higher precedence)
	for _, id := range overrides.Disable {
		id = strings.TrimSpace(id)
		if err := knownRule(id); err != nil {
			return nil, err
		}
		lintCfg.Disable(id)
	}
	var only []string
	for _, id := range overrides.Only {
		id = strings.TrimSpace(id)
		if err := knownRule(id); err != nil {
			return nil, err
		}
		only = append(only, id)
	}
	if len(only) > 0 {
		lintCfg.Only(only...)
	}

	return lintCfg, nil
}
