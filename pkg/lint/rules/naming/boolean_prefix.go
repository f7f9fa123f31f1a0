package naming

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(BooleanPrefix)
}

// BooleanPrefix checks that boolean output columns carry a boolean prefix.
var BooleanPrefix = lint.RuleDef{
	ID:          "boolean-prefix",
	Name:        "naming.boolean_prefix",
	Group:       "naming",
	Description: "Boolean columns should be prefixed with is_, has_ or does_.",
	Severity:    lint.SeverityInfo,
	Check:       checkBooleanPrefix,
	ConfigKeys:  []string{"prefixes"},
	Rationale:   "A boolean prefix tells the reader the column's type without looking it up.",
	BadExample:  "SELECT amount > 100 AS large FROM orders",
	GoodExample: "SELECT amount > 100 AS is_large FROM orders",
}

var defaultPrefixes = []string{"is_", "has_", "does_"}

// flagNames are column names that usually hold a boolean.
var flagNames = map[string]bool{
	"active": true, "enabled": true, "disabled": true, "deleted": true,
	"archived": true, "verified": true, "valid": true, "visible": true,
	"published": true, "approved": true, "flag": true,
}

func checkBooleanPrefix(tree *ast.Tree, _ style.Config, opts map[string]any) []lint.Violation {
	prefixes := lint.GetStringSliceOption(opts, "prefixes", defaultPrefixes)

	var violations []lint.Violation
	for _, core := range ast.Cores(tree.Root) {
		if core.Columns == nil {
			continue
		}
		for _, col := range core.Columns.Items {
			name := col.OutputName()
			if name == "" || hasPrefix(name, prefixes) {
				continue
			}
			span := col.Expr.Span()
			if col.Alias != nil {
				if col.Alias.Name.Quoted {
					continue
				}
				span = col.Alias.Name.Span()
			} else if col.Expr.(*ast.ColumnRef).Column().Quoted {
				continue
			}
			if !isFlagName(name) && (col.Alias == nil || !isBoolean(col.Expr)) {
				continue
			}
			violations = append(violations, lint.Violation{
				Message: fmt.Sprintf("Boolean column %q should start with one of %s", name, strings.Join(prefixes, ", ")),
				Span:    span,
			})
		}
	}
	return violations
}

func hasPrefix(name string, prefixes []string) bool {
	lower := strings.ToLower(name)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func isFlagName(name string) bool {
	lower := strings.ToLower(name)
	return flagNames[lower] || strings.HasSuffix(lower, "_flag")
}

// isBoolean reports whether e evaluates to a boolean.
func isBoolean(e ast.Expr) bool {
	switch v := ast.Unparen(e).(type) {
	case *ast.BinaryExpr:
		return v.IsLogical() || v.Op.IsComparison()
	case *ast.UnaryExpr:
		return v.Op == token.NOT
	case *ast.IsExpr, *ast.InExpr, *ast.LikeExpr, *ast.BetweenExpr, *ast.ExistsExpr:
		return true
	case *ast.Literal:
		return v.Kind == ast.LitTrue || v.Kind == ast.LitFalse
	case *ast.CaseExpr:
		if len(v.Whens) == 0 {
			return false
		}
		for _, w := range v.Whens {
			if !isBoolean(w.Result) {
				return false
			}
		}
		return v.Else == nil || isBoolean(v.Else)
	case *ast.CastExpr:
		if len(v.Type) == 0 {
			return false
		}
		typ := strings.ToLower(v.Type[0].Literal)
		return typ == "boolean" || typ == "bool"
	}
	return false
}
