// Package sqlstyle is the entry point for linting and formatting SQL text.
//
// The package-level functions run every registered rule with its default
// severity. Use a Linter to select rules or override severities:
//
//	l := sqlstyle.New(sqlstyle.WithLintConfig(lint.NewConfig().Disable("boolean-prefix")))
//	violations, err := l.Lint(source, style.Default())
//
// Lexical and structural failures are returned as *parser.LexError and
// *parser.ParseError; match them with errors.As.
package sqlstyle

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/format"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/style"

	// Register the built-in rules.
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules"
)

// Diagnosis combines the violations of a document with its canonical form.
type Diagnosis struct {
	Violations []lint.Violation `json:"violations"`
	Formatted  string           `json:"formatted"`
}

// Linter lints and formats documents with a fixed rule configuration. It is
// safe for concurrent use.
type Linter struct {
	config   *lint.Config
	analyzer *lint.Analyzer
}

// Option configures a Linter.
type Option func(*Linter)

// WithLintConfig selects rules, severities and rule options.
func WithLintConfig(cfg *lint.Config) Option {
	return func(l *Linter) {
		if cfg != nil {
			l.config = cfg
		}
	}
}

// New creates a Linter over the registered rules.
func New(opts ...Option) *Linter {
	l := &Linter{config: lint.NewConfig()}
	for _, opt := range opts {
		opt(l)
	}
	l.analyzer = lint.NewAnalyzer(l.config)
	return l
}

// Config returns the rule configuration of the linter.
func (l *Linter) Config() *lint.Config {
	return l.config
}

// Rules returns the rules the linter runs.
func (l *Linter) Rules() []lint.RuleDef {
	return l.analyzer.Rules()
}

// Lint parses source and returns its violations sorted by position.
func (l *Linter) Lint(source string, cfg style.Config) ([]lint.Violation, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return l.analyzer.Analyze(tree, cfg), nil
}

// Format parses source and renders it in canonical layout.
func (l *Linter) Format(source string, cfg style.Config) (string, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	return format.Format(tree, cfg), nil
}

// Diagnose lints and formats source from a single parse.
func (l *Linter) Diagnose(source string, cfg style.Config) (*Diagnosis, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return l.diagnose(tree, cfg), nil
}

func (l *Linter) diagnose(tree *ast.Tree, cfg style.Config) *Diagnosis {
	violations := l.analyzer.Analyze(tree, cfg)
	if violations == nil {
		violations = []lint.Violation{}
	}
	return &Diagnosis{Violations: violations, Formatted: format.Format(tree, cfg)}
}

// Fix applies the non-overlapping fixes suggested by the rules to the
// original text. Unlike Format it keeps the author's layout wherever no
// rule objects to it.
func (l *Linter) Fix(source string, cfg style.Config) (*lint.FixResult, error) {
	violations, err := l.Lint(source, cfg)
	if err != nil {
		return nil, err
	}
	result := lint.ApplyFixes(source, violations)
	return &result, nil
}

var defaultLinter = New()

// Lint runs every registered rule against source.
func Lint(source string, cfg style.Config) ([]lint.Violation, error) {
	return defaultLinter.Lint(source, cfg)
}

// Format renders source in canonical layout.
func Format(source string, cfg style.Config) (string, error) {
	return defaultLinter.Format(source, cfg)
}

// Diagnose lints and formats source.
func Diagnose(source string, cfg style.Config) (*Diagnosis, error) {
	return defaultLinter.Diagnose(source, cfg)
}

// Fix applies suggested rule fixes to source.
func Fix(source string, cfg style.Config) (*lint.FixResult, error) {
	return defaultLinter.Fix(source, cfg)
}
