package structure

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(ExplicitJoinType)
}

// ExplicitJoinType flags bare JOIN and comma joins.
var ExplicitJoinType = lint.RuleDef{
	ID:          "explicit-join-type",
	Name:        "structure.explicit_join_type",
	Group:       "structure",
	Description: "Joins must state their type: INNER JOIN instead of JOIN, CROSS JOIN instead of a comma.",
	Severity:    lint.SeverityWarning,
	Check:       checkExplicitJoinType,
	Fixable:     true,
	Rationale:   "An explicit join type documents intent; a bare JOIN or comma hides it.",
	BadExample:  "SELECT * FROM a JOIN b ON a.id = b.a_id",
	GoodExample: "SELECT * FROM a INNER JOIN b ON a.id = b.a_id",
}

func checkExplicitJoinType(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	if cfg.JoinStyle != style.JoinExplicitInner {
		return nil
	}
	doc := source.New(tree)

	var violations []lint.Violation
	for _, join := range source.Collect[*ast.JoinClause](tree.Root) {
		switch join.Type {
		case ast.JoinPlain:
			v := lint.Violation{Message: "Use INNER JOIN instead of JOIN", Span: join.Keyword}
			if kw, ok := doc.PrevSignificant(join.Keyword.End.Offset); ok && kw.Type == token.JOIN {
				v.Fix = lint.Replace("Use INNER JOIN", kw.Span(), cfg.Keyword("INNER JOIN"))
			}
			violations = append(violations, v)
		case ast.JoinComma:
			text := " " + cfg.Keyword("CROSS JOIN")
			if next, ok := doc.Next(join.Keyword.End.Offset); ok && next.Pos.Offset == join.Keyword.End.Offset {
				text += " "
			}
			violations = append(violations, lint.Violation{
				Message: "Use CROSS JOIN instead of a comma join",
				Span:    join.Keyword,
				Fix:     lint.Replace("Use CROSS JOIN", join.Keyword, text),
			})
		}
	}
	return violations
}
