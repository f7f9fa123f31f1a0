// Package rules provides the SQL style rule set.
//
// Rules are organized by group:
//   - layout: keyword case, line breaks, commas, parentheses, IN lists
//   - convention: quoting, boolean comparisons, operator spelling
//   - naming: snake_case identifiers, boolean prefixes
//   - structure: joins, grouping, CTEs and the final select
//   - aliasing: column and table aliases
//
// To register all rules with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules"
//
// Individual groups can also be imported:
//
//	import _ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/layout"
package rules
