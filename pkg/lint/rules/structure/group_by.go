package structure

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(GroupByNameOrNumber)
	lint.Register(GroupByOrder)
}

// GroupByNameOrNumber flags GROUP BY lists that mix ordinals and expressions.
var GroupByNameOrNumber = lint.RuleDef{
	ID:          "group-by-name-or-number",
	Name:        "structure.group_by_name_or_number",
	Group:       "structure",
	Description: "GROUP BY should use either column names or ordinal positions, not both.",
	Severity:    lint.SeverityInfo,
	Check:       checkGroupByNameOrNumber,
	BadExample:  "SELECT country, city, count(*) AS n FROM users GROUP BY country, 2",
	GoodExample: "SELECT country, city, count(*) AS n FROM users GROUP BY 1, 2",
}

// GroupByOrder checks that grouping columns are listed before aggregates.
var GroupByOrder = lint.RuleDef{
	ID:          "group-by-order",
	Name:        "structure.group_by_order",
	Group:       "structure",
	Description: "Grouping columns should come before aggregate columns in the select list.",
	Severity:    lint.SeverityHint,
	Check:       checkGroupByOrder,
	BadExample:  "SELECT count(*) AS n, country FROM users GROUP BY country",
	GoodExample: "SELECT country, count(*) AS n FROM users GROUP BY country",
}

func checkGroupByNameOrNumber(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, core := range ast.Cores(tree.Root) {
		if core.GroupBy == nil {
			continue
		}
		var ordinals, names int
		for _, item := range core.GroupBy.Items {
			if lit, ok := item.(*ast.Literal); ok && lit.Kind == ast.LitNumber {
				ordinals++
			} else {
				names++
			}
		}
		if ordinals > 0 && names > 0 {
			violations = append(violations, lint.Violation{
				Message: "GROUP BY mixes column names and ordinal positions",
				Span:    core.GroupBy.Span(),
			})
		}
	}
	return violations
}

func checkGroupByOrder(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, core := range ast.Cores(tree.Root) {
		if core.GroupBy == nil || core.Columns == nil {
			continue
		}
		seenAggregate := false
		for _, col := range core.Columns.Items {
			if containsWindow(col.Expr) {
				continue
			}
			if ast.ContainsAggregate(col.Expr) {
				seenAggregate = true
				continue
			}
			if seenAggregate {
				violations = append(violations, lint.Violation{
					Message: "Grouping column listed after an aggregate",
					Span:    col.Span(),
				})
				break
			}
		}
	}
	return violations
}

func containsWindow(e ast.Expr) bool {
	found := false
	ast.Inspect(e, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FuncCall); ok && fn.IsWindow() {
			found = true
		}
		return !found
	})
	return found
}
