package convention

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(ExplicitBooleanComparison)
}

// ExplicitBooleanComparison flags boolean columns used bare as conditions.
var ExplicitBooleanComparison = lint.RuleDef{
	ID:          "explicit-boolean-comparison",
	Name:        "convention.explicit_boolean_comparison",
	Group:       "convention",
	Description: "Compare boolean columns explicitly with = TRUE or = FALSE.",
	Severity:    lint.SeverityWarning,
	Check:       checkExplicitBoolean,
	Fixable:     true,
	BadExample:  "SELECT id FROM orders WHERE is_cancelled",
	GoodExample: "SELECT id FROM orders WHERE is_cancelled = TRUE",
}

func checkExplicitBoolean(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	doc := source.New(tree)
	var violations []lint.Violation

	for _, cond := range source.Conditions(tree.Root) {
		for _, operand := range source.Operands(cond) {
			switch v := operand.(type) {
			case *ast.ColumnRef:
				violations = append(violations, lint.Violation{
					Message: "Boolean column " + doc.Text(v.Span()) + " should be compared explicitly",
					Span:    v.Span(),
					Fix: lint.Replace("Compare with TRUE", token.Span{Start: v.End(), End: v.End()},
						" = "+cfg.Keyword("TRUE")),
				})
			case *ast.UnaryExpr:
				ref, ok := v.Expr.(*ast.ColumnRef)
				if v.Op != token.NOT || !ok {
					continue
				}
				violations = append(violations, lint.Violation{
					Message: "Negated boolean column " + doc.Text(ref.Span()) + " should be compared explicitly",
					Span:    v.Span(),
					Fix: lint.Replace("Compare with FALSE", v.Span(),
						doc.Text(ref.Span())+" = "+cfg.Keyword("FALSE")),
				})
			}
		}
	}
	return violations
}
