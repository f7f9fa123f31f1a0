package lint

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// CheckFunc analyzes a parsed document and returns violations.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(tree *ast.Tree, cfg style.Config, opts map[string]any) []Violation

// RuleDef is a data-driven rule definition.
// Rules are stateless; all context comes via the Check function parameters.
type RuleDef struct {
	ID          string    // Unique identifier, e.g., "keyword-case"
	Name        string    // Qualified name, e.g., "layout.keyword_case"
	Group       string    // Category, e.g., "layout", "structure"
	Description string    // Human-readable description
	Severity    Severity  // Default severity
	Check       CheckFunc // The check function
	ConfigKeys  []string  // Rule-specific option keys
	Fixable     bool      // Violations carry a suggested fix

	// Documentation fields
	Rationale   string // Why this rule exists
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the preferred pattern
}

// Rule is the interface the analyzer runs.
type Rule interface {
	ID() string
	Name() string
	Group() string
	Description() string
	DefaultSeverity() Severity
	ConfigKeys() []string
	Check(tree *ast.Tree, cfg style.Config, opts map[string]any) []Violation
}

// RuleInfo provides metadata about a rule for documentation and tooling.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Group           string   `json:"group"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	ConfigKeys      []string `json:"config_keys,omitempty"`
	Fixable         bool     `json:"fixable"`
	Rationale       string   `json:"rationale,omitempty"`
	BadExample      string   `json:"bad_example,omitempty"`
	GoodExample     string   `json:"good_example,omitempty"`
}

// Info returns the rule's documentation metadata.
func (d RuleDef) Info() RuleInfo {
	return RuleInfo{
		ID:              d.ID,
		Name:            d.Name,
		Group:           d.Group,
		Description:     d.Description,
		DefaultSeverity: d.Severity,
		ConfigKeys:      d.ConfigKeys,
		Fixable:         d.Fixable,
		Rationale:       d.Rationale,
		BadExample:      d.BadExample,
		GoodExample:     d.GoodExample,
	}
}

// wrappedRuleDef wraps a RuleDef to implement Rule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement the Rule interface.
func WrapRuleDef(def RuleDef) Rule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                { return w.def.ID }
func (w *wrappedRuleDef) Name() string              { return w.def.Name }
func (w *wrappedRuleDef) Group() string             { return w.def.Group }
func (w *wrappedRuleDef) Description() string       { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string      { return w.def.ConfigKeys }

func (w *wrappedRuleDef) Check(tree *ast.Tree, cfg style.Config, opts map[string]any) []Violation {
	return w.def.Check(tree, cfg, opts)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
