package layout

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(StarShorthand)
}

// StarShorthand allows the single-line SELECT * FROM t form only when the
// query has no filter or join.
var StarShorthand = lint.RuleDef{
	ID:          "star-shorthand",
	Name:        "layout.star_shorthand",
	Group:       "layout",
	Description: "SELECT * may share a line with FROM only when there is no WHERE or JOIN.",
	Severity:    lint.SeverityWarning,
	Check:       checkStarShorthand,
	Fixable:     true,
	Rationale:   "Filters and joins are the interesting part of a query and deserve their own lines.",
	BadExample:  "SELECT * FROM users WHERE email = 'x@y.com'",
	GoodExample: "SELECT *\nFROM users\nWHERE\n    email = 'x@y.com'",
}

func checkStarShorthand(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	doc := source.New(tree)
	var violations []lint.Violation

	for _, core := range ast.Cores(tree.Root) {
		if !core.IsStarOnly() || (core.Where == nil && !core.HasJoins()) {
			continue
		}
		line := core.Select.Pos.Line
		indent := doc.Indent(core.Select.Pos.Offset)

		var edits []lint.TextEdit
		clean := true
		for _, kw := range clauseStarts(core) {
			if kw.Line != line {
				continue
			}
			prev, ok := doc.Prev(kw.Offset)
			if !ok || prev.Type == token.COMMENT {
				clean = false
				continue
			}
			edits = append(edits, lint.TextEdit{
				Span:    source.Span(prev.End, kw),
				NewText: "\n" + indent,
			})
		}
		if len(edits) == 0 && clean {
			continue
		}

		v := lint.Violation{
			Message: "SELECT * with a WHERE or JOIN should put each clause on its own line",
			Span:    core.Span(),
		}
		if clean && len(edits) > 0 {
			v.Fix = &lint.Fix{Description: "Split clauses onto separate lines", Edits: edits}
		}
		violations = append(violations, v)
	}
	return violations
}

// clauseStarts returns the start of each clause keyword after the select list.
func clauseStarts(core *ast.SelectCore) []token.Position {
	var out []token.Position
	if core.From != nil {
		out = append(out, core.From.Pos())
		for _, j := range core.From.Joins {
			if j.Type != ast.JoinComma {
				out = append(out, j.Keyword.Start)
			}
		}
	}
	if core.Where != nil {
		out = append(out, core.Where.Pos())
	}
	if core.GroupBy != nil {
		out = append(out, core.GroupBy.Pos())
	}
	if core.Having != nil {
		out = append(out, core.Having.Pos())
	}
	if core.OrderBy != nil {
		out = append(out, core.OrderBy.Pos())
	}
	if core.Limit != nil {
		out = append(out, core.Limit.Pos())
	}
	for _, x := range core.Extra {
		out = append(out, x.Pos())
	}
	return out
}
