package lint

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// Analyzer runs lint rules against a parsed document.
type Analyzer struct {
	config *Config
	rules  []RuleDef
}

// NewAnalyzer creates an analyzer over the globally registered rules.
func NewAnalyzer(config *Config) *Analyzer {
	return NewAnalyzerWithRules(config, GetAll())
}

// NewAnalyzerWithRules creates an analyzer over an explicit rule set.
func NewAnalyzerWithRules(config *Config, rules []RuleDef) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config, rules: rules}
}

// Rules returns the rules the analyzer will run, in order.
func (a *Analyzer) Rules() []RuleDef {
	var out []RuleDef
	for _, rule := range a.rules {
		if !a.config.IsDisabled(rule.ID) {
			out = append(out, rule)
		}
	}
	return out
}

// Analyze runs every enabled rule against the tree. The result is sorted
// by position and rule ID, with duplicate findings removed.
func (a *Analyzer) Analyze(tree *ast.Tree, cfg style.Config) []Violation {
	if tree == nil || tree.Root == nil {
		return nil
	}

	var violations []Violation
	for _, rule := range a.Rules() {
		opts := a.config.GetRuleOptions(rule.ID)
		severity := a.config.GetSeverity(rule.ID, rule.Severity)
		for _, v := range rule.Check(tree, cfg, opts) {
			v.RuleID = rule.ID
			v.Severity = severity
			violations = append(violations, v)
		}
	}

	SortViolations(violations)
	return dedupe(violations)
}

// dedupe drops violations that repeat the rule and span of their
// predecessor. The input must be sorted.
func dedupe(vs []Violation) []Violation {
	if len(vs) < 2 {
		return vs
	}
	out := vs[:1]
	for _, v := range vs[1:] {
		last := out[len(out)-1]
		if v.RuleID == last.RuleID && v.Span == last.Span {
			continue
		}
		out = append(out, v)
	}
	return out
}
