package structure

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(CTEOverSubquery)
}

// CTEOverSubquery flags subqueries used as tables.
var CTEOverSubquery = lint.RuleDef{
	ID:          "cte-over-subquery",
	Name:        "structure.cte_over_subquery",
	Group:       "structure",
	Description: "Prefer a CTE over a subquery in FROM or JOIN.",
	Severity:    lint.SeverityInfo,
	Check:       checkCTEOverSubquery,
	Rationale:   "CTEs read top to bottom and can be named; nested subqueries read inside out.",
	BadExample:  "SELECT * FROM (SELECT id FROM users) AS u",
	GoodExample: "WITH u AS (SELECT id FROM users) SELECT * FROM u",
}

func checkCTEOverSubquery(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, derived := range source.Collect[*ast.DerivedTable](tree.Root) {
		violations = append(violations, lint.Violation{
			Message: "Subquery in FROM or JOIN should be a CTE",
			Span:    derived.Span(),
		})
	}
	return violations
}
