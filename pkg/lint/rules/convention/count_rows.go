package convention

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(CountRows)
}

// CountRows enforces COUNT(*) over COUNT(1) and COUNT(0).
var CountRows = lint.RuleDef{
	ID:          "count-rows",
	Name:        "convention.count_rows",
	Group:       "convention",
	Description: "Prefer COUNT(*) over COUNT(1) for counting rows.",
	Severity:    lint.SeverityWarning,
	Check:       checkCountRows,
	Fixable:     true,
	BadExample:  "SELECT count(1) AS user_count FROM users",
	GoodExample: "SELECT count(*) AS user_count FROM users",
}

func checkCountRows(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, fn := range source.Collect[*ast.FuncCall](tree.Root) {
		if fn.FuncName() != "count" || fn.Star || fn.Distinct || len(fn.Args) != 1 {
			continue
		}
		lit, ok := fn.Args[0].(*ast.Literal)
		if !ok || lit.Kind != ast.LitNumber || (lit.Raw != "1" && lit.Raw != "0") {
			continue
		}
		violations = append(violations, lint.Violation{
			Message: "Prefer COUNT(*) over COUNT(" + lit.Raw + ") for counting rows",
			Span:    fn.Span(),
			Fix:     lint.Replace("Use COUNT(*)", lit.Span(), "*"),
		})
	}
	return violations
}
