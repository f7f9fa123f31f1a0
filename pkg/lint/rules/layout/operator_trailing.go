package layout

import (
	"fmt"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(OperatorTrailing)
}

// OperatorTrailing checks that boolean and comparison operators end a line
// instead of starting one.
var OperatorTrailing = lint.RuleDef{
	ID:          "operator-trailing",
	Name:        "layout.operator_trailing",
	Group:       "layout",
	Description: "AND, OR and comparison operators belong at the end of a line, not the start.",
	Severity:    lint.SeverityWarning,
	Check:       checkOperatorTrailing,
	Fixable:     true,
	Rationale:   "Aligned conditions read like a list when the connecting operator trails.",
	BadExample:  "WHERE\n    a = 1\n    AND b = 2",
	GoodExample: "WHERE\n    a = 1 AND\n    b = 2",
}

func checkOperatorTrailing(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	doc := source.New(tree)
	var violations []lint.Violation

	for _, bin := range source.Collect[*ast.BinaryExpr](tree.Root) {
		if !bin.IsLogical() && !bin.Op.IsComparison() {
			continue
		}
		if !doc.FirstOnLine(bin.OpSpan.Start.Offset) {
			continue
		}
		violations = append(violations, lint.Violation{
			Message: fmt.Sprintf("Operator %q should be at the end of the previous line", bin.OpText),
			Span:    bin.OpSpan,
			Fix:     trailOperator(doc, bin),
		})
	}
	return violations
}

// trailOperator moves the operator to the end of the previous line and
// keeps the right operand at the operator's indentation.
func trailOperator(doc *source.Doc, bin *ast.BinaryExpr) *lint.Fix {
	prev, ok := doc.Prev(bin.OpSpan.Start.Offset)
	if !ok || prev.Type == token.COMMENT {
		return nil
	}
	next, ok := doc.Next(bin.OpSpan.End.Offset)
	if !ok || next.Type == token.COMMENT {
		return nil
	}
	indent := doc.Indent(bin.OpSpan.Start.Offset)
	return lint.Replace(
		"Move operator to the end of the previous line",
		source.Span(prev.End, next.Pos),
		" "+bin.OpText+"\n"+indent,
	)
}
