package convention

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(NotEqual)
}

// NotEqual recommends != over <>. The lexer keeps the operator text, so
// both spellings can be told apart.
var NotEqual = lint.RuleDef{
	ID:          "not-equal",
	Name:        "convention.not_equal",
	Group:       "convention",
	Description: "Prefer != over <> for not equal.",
	Severity:    lint.SeverityWarning,
	Check:       checkNotEqual,
	Fixable:     true,
	BadExample:  "WHERE status <> 'closed'",
	GoodExample: "WHERE status != 'closed'",
}

func checkNotEqual(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, bin := range source.Collect[*ast.BinaryExpr](tree.Root) {
		if bin.Op != token.NE || bin.OpText != "<>" {
			continue
		}
		violations = append(violations, lint.Violation{
			Message: "Use != instead of <>",
			Span:    bin.OpSpan,
			Fix:     lint.Replace("Use !=", bin.OpSpan, "!="),
		})
	}
	return violations
}
