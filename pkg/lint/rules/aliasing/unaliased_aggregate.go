package aliasing

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(UnaliasedAggregate)
}

// UnaliasedAggregate checks that function and cast select columns have an alias.
var UnaliasedAggregate = lint.RuleDef{
	ID:          "unaliased-aggregate",
	Name:        "aliasing.unaliased_aggregate",
	Group:       "aliasing",
	Description: "Aggregate and function-wrapped select columns should have an explicit alias.",
	Severity:    lint.SeverityWarning,
	Check:       checkUnaliasedAggregate,
	Fixable:     true,
	Rationale:   "Engines name unaliased expressions differently; an alias gives the column a stable name.",
	BadExample:  "SELECT count(*) FROM users",
	GoodExample: "SELECT count(*) AS user_count FROM users",
}

func checkUnaliasedAggregate(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, core := range ast.Cores(tree.Root) {
		if core.Columns == nil {
			continue
		}
		for _, col := range core.Columns.Items {
			if col.Alias != nil {
				continue
			}
			var what string
			switch col.Expr.(type) {
			case *ast.FuncCall:
				what = "Function call"
			case *ast.CastExpr:
				what = "Cast"
			default:
				continue
			}
			v := lint.Violation{
				Message: what + " " + tree.Text(col.Expr.Span()) + " should have an alias",
				Span:    col.Expr.Span(),
			}
			if name := suggestAlias(col.Expr); name != "" {
				end := col.Expr.End()
				v.Fix = lint.Replace("Add alias", token.Span{Start: end, End: end},
					" "+cfg.Keyword("AS")+" "+name)
			}
			violations = append(violations, v)
		}
	}
	return violations
}

// suggestAlias derives fn or fn_col for function calls and the column name
// for casts of a column.
func suggestAlias(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.FuncCall:
		name := v.FuncName()
		if len(v.Args) == 1 {
			if ref, ok := v.Args[0].(*ast.ColumnRef); ok && !ref.Column().Quoted {
				name += "_" + strings.ToLower(ref.Column().Name)
			}
		}
		return name
	case *ast.CastExpr:
		if ref, ok := v.Expr.(*ast.ColumnRef); ok && !ref.Column().Quoted {
			return strings.ToLower(ref.Column().Name)
		}
	}
	return ""
}
