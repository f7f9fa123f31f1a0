// Package lint provides the style rule engine.
//
// # Rule Registration
//
// Rules are registered via init() functions when their packages are imported:
//
//	import _ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules"
//
// Registration order is preserved; the analyzer runs rules in that order and
// then sorts the combined output by position and rule ID, so results are
// deterministic regardless of which rules are enabled.
//
// # Rule Groups
//
//   - layout: keyword casing, line breaks, comma and parenthesis placement
//   - convention: quoting, boolean comparisons, operator spelling
//   - naming: identifier casing and boolean column prefixes
//   - structure: joins, grouping, CTEs and the final select
//   - aliasing: column and table aliases
//
// # Configuration
//
// Use Config to control which rules run and their severity:
//
//	config := lint.NewConfig()
//	config.Disable("boolean-prefix")
//	config.SetSeverity("snake-case-identifier", lint.SeverityWarning)
//	config.SetRuleOptions("long-in-list", map[string]any{"max_items": 8})
//
// # Creating Rules
//
// A rule is a RuleDef with a pure Check function:
//
//	var MyRule = lint.RuleDef{
//		ID:          "my-rule",
//		Group:       "convention",
//		Description: "My custom rule description",
//		Severity:    lint.SeverityWarning,
//		Check:       checkMyRule,
//	}
//
//	func init() {
//		lint.Register(MyRule)
//	}
//
// Check functions report Message, Span and an optional Fix; the analyzer
// stamps the rule ID and effective severity.
package lint
