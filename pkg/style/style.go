// Package style defines the style configuration shared by the rule engine
// and the formatter.
//
// A Config is a plain value: copy it freely, it is never mutated after
// construction.
package style

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeywordCase is the required casing of SQL keywords.
type KeywordCase string

// Keyword casing options.
const (
	KeywordUpper KeywordCase = "upper"
	KeywordLower KeywordCase = "lower"
)

// CommaStyle is the placement of list separators in multi-line lists.
type CommaStyle string

// Comma placement options.
const (
	CommaTrailing CommaStyle = "trailing"
	CommaLeading  CommaStyle = "leading"
)

// QuoteStyle is the quote character used for string literals.
type QuoteStyle string

// Quote options.
const (
	QuoteSingle QuoteStyle = "single"
	QuoteDouble QuoteStyle = "double"
)

// AliasPolicy governs table aliasing.
type AliasPolicy string

// Alias policies.
const (
	// AliasNone forbids table aliases.
	AliasNone AliasPolicy = "none"
	// AliasMeaningful allows table aliases only when a join makes them useful.
	AliasMeaningful AliasPolicy = "meaningful"
	// AliasAlways allows table aliases everywhere.
	AliasAlways AliasPolicy = "always"
)

// AllowsTableAlias reports whether a table alias is acceptable in a query
// with or without joins.
func (a AliasPolicy) AllowsTableAlias(joined bool) bool {
	switch a {
	case AliasAlways:
		return true
	case AliasNone:
		return false
	default:
		return joined
	}
}

// JoinStyle governs whether implicit joins are allowed.
type JoinStyle string

// Join styles.
const (
	JoinExplicitInner JoinStyle = "explicit_inner"
	JoinAllowImplicit JoinStyle = "allow_implicit"
)

// MaxInlineInItems is the longest IN list laid out on a single line.
const MaxInlineInItems = 5

// Config is the immutable style configuration.
type Config struct {
	KeywordCase KeywordCase `koanf:"keyword_case" yaml:"keyword_case" json:"keyword_case"`
	IndentWidth int         `koanf:"indent_width" yaml:"indent_width" json:"indent_width"`
	CommaStyle  CommaStyle  `koanf:"comma_style" yaml:"comma_style" json:"comma_style"`
	QuoteStyle  QuoteStyle  `koanf:"quote_style" yaml:"quote_style" json:"quote_style"`
	AliasPolicy AliasPolicy `koanf:"alias_policy" yaml:"alias_policy" json:"alias_policy"`
	JoinStyle   JoinStyle   `koanf:"join_style" yaml:"join_style" json:"join_style"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		KeywordCase: KeywordUpper,
		IndentWidth: 4,
		CommaStyle:  CommaTrailing,
		QuoteStyle:  QuoteSingle,
		AliasPolicy: AliasMeaningful,
		JoinStyle:   JoinExplicitInner,
	}
}

// Option modifies a Config under construction.
type Option func(*Config)

// New returns the default configuration with opts applied.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithKeywordCase sets the keyword casing.
func WithKeywordCase(c KeywordCase) Option { return func(cfg *Config) { cfg.KeywordCase = c } }

// WithIndentWidth sets the indentation width.
func WithIndentWidth(n int) Option { return func(cfg *Config) { cfg.IndentWidth = n } }

// WithCommaStyle sets the comma placement.
func WithCommaStyle(c CommaStyle) Option { return func(cfg *Config) { cfg.CommaStyle = c } }

// WithQuoteStyle sets the string quote style.
func WithQuoteStyle(q QuoteStyle) Option { return func(cfg *Config) { cfg.QuoteStyle = q } }

// WithAliasPolicy sets the table alias policy.
func WithAliasPolicy(a AliasPolicy) Option { return func(cfg *Config) { cfg.AliasPolicy = a } }

// WithJoinStyle sets the join style.
func WithJoinStyle(j JoinStyle) Option { return func(cfg *Config) { cfg.JoinStyle = j } }

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.KeywordCase != KeywordUpper && c.KeywordCase != KeywordLower {
		errs = append(errs, invalid("keyword_case", string(c.KeywordCase), KeywordUpper, KeywordLower))
	}
	if c.IndentWidth < 1 || c.IndentWidth > 16 {
		errs = append(errs, fmt.Errorf("indent_width: must be between 1 and 16, got %d", c.IndentWidth))
	}
	if c.CommaStyle != CommaTrailing && c.CommaStyle != CommaLeading {
		errs = append(errs, invalid("comma_style", string(c.CommaStyle), CommaTrailing, CommaLeading))
	}
	if c.QuoteStyle != QuoteSingle && c.QuoteStyle != QuoteDouble {
		errs = append(errs, invalid("quote_style", string(c.QuoteStyle), QuoteSingle, QuoteDouble))
	}
	switch c.AliasPolicy {
	case AliasNone, AliasMeaningful, AliasAlways:
	default:
		errs = append(errs, invalid("alias_policy", string(c.AliasPolicy), AliasNone, AliasMeaningful, AliasAlways))
	}
	if c.JoinStyle != JoinExplicitInner && c.JoinStyle != JoinAllowImplicit {
		errs = append(errs, invalid("join_style", string(c.JoinStyle), JoinExplicitInner, JoinAllowImplicit))
	}
	return errors.Join(errs...)
}

func invalid[T ~string](field, got string, allowed ...T) error {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return fmt.Errorf("%s: invalid value %q (allowed: %s)", field, got, strings.Join(names, ", "))
}

// Indent returns the indentation string for the given depth.
func (c Config) Indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(" ", c.IndentWidth*depth)
}

// Keyword returns word in the configured keyword case.
func (c Config) Keyword(word string) string {
	// Casers carry state and are not shared between goroutines.
	if c.KeywordCase == KeywordLower {
		return cases.Lower(language.Und).String(word)
	}
	return cases.Upper(language.Und).String(word)
}

// Quote renders value as a string literal in the configured quote style.
func (c Config) Quote(value string) string {
	q := "'"
	if c.QuoteStyle == QuoteDouble {
		q = `"`
	}
	return q + strings.ReplaceAll(value, q, q+q) + q
}
