package structure

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(JoinConditionOrder)
}

// JoinConditionOrder checks that join conditions reference the earlier table
// first. It works from qualifiers only, so unqualified columns are ignored.
var JoinConditionOrder = lint.RuleDef{
	ID:          "join-condition-order",
	Name:        "structure.join_condition_order",
	Group:       "structure",
	Description: "Join conditions should reference the earlier table first (a.id = b.a_id, not b.a_id = a.id).",
	Severity:    lint.SeverityHint,
	Check:       checkJoinConditionOrder,
	BadExample:  "SELECT * FROM a INNER JOIN b ON b.a_id = a.id",
	GoodExample: "SELECT * FROM a INNER JOIN b ON a.id = b.a_id",
}

func checkJoinConditionOrder(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation

	for _, core := range ast.Cores(tree.Root) {
		if core.From == nil {
			continue
		}

		// Track tables in order: FROM source first, then each joined table
		earlier := map[string]bool{}
		if name := ast.RefName(core.From.Source); name != "" {
			earlier[strings.ToLower(name)] = true
		}

		for _, join := range core.From.Joins {
			joined := strings.ToLower(ast.RefName(join.Table))
			if join.On != nil && joined != "" {
				for _, cond := range source.AndChain(join.On) {
					if v, ok := checkConditionOrder(cond, earlier, joined); ok {
						violations = append(violations, v)
					}
				}
			}
			if joined != "" {
				earlier[joined] = true
			}
		}
	}
	return violations
}

// checkConditionOrder flags joined.x = earlier.y.
func checkConditionOrder(cond ast.Expr, earlier map[string]bool, joined string) (lint.Violation, bool) {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || bin.Op != token.EQ {
		return lint.Violation{}, false
	}
	left, leftOk := bin.Left.(*ast.ColumnRef)
	right, rightOk := bin.Right.(*ast.ColumnRef)
	if !leftOk || !rightOk || left.Qualifier() == nil || right.Qualifier() == nil {
		return lint.Violation{}, false
	}

	lq := strings.ToLower(left.Qualifier().Name)
	rq := strings.ToLower(right.Qualifier().Name)
	if lq != joined || !earlier[rq] {
		return lint.Violation{}, false
	}
	return lint.Violation{
		Message: fmt.Sprintf("Join condition should reference %s first; consider %s.%s = %s.%s",
			right.Qualifier().Name, right.Qualifier().Name, right.Column().Name,
			left.Qualifier().Name, left.Column().Name),
		Span: bin.Span(),
	}, true
}
