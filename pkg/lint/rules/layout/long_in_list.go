package layout

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(LongInList)
}

// LongInList checks that long IN lists are laid out one value per line.
var LongInList = lint.RuleDef{
	ID:          "long-in-list",
	Name:        "layout.long_in_list",
	Group:       "layout",
	Description: "IN lists longer than max_items values should have one value per indented line.",
	Severity:    lint.SeverityWarning,
	Check:       checkLongInList,
	ConfigKeys:  []string{"max_items"},
	Fixable:     true,
	BadExample:  "WHERE id IN (1, 2, 3, 4, 5, 6)",
	GoodExample: "WHERE id IN (\n    1,\n    2,\n    3,\n    4,\n    5,\n    6\n)",
}

func checkLongInList(tree *ast.Tree, cfg style.Config, opts map[string]any) []lint.Violation {
	maxItems := lint.GetIntOption(opts, "max_items", style.MaxInlineInItems)
	doc := source.New(tree)
	var violations []lint.Violation

	for _, in := range source.Collect[*ast.InExpr](tree.Root) {
		if len(in.Values) <= maxItems || onePerLine(doc, in) {
			continue
		}
		violations = append(violations, lint.Violation{
			Message: fmt.Sprintf("IN list with %d values should have one value per line", len(in.Values)),
			Span:    in.Span(),
			Fix:     explodeInList(doc, cfg, in),
		})
	}
	return violations
}

// onePerLine reports whether every value starts its own line and the list
// opens on a line of its own.
func onePerLine(doc *source.Doc, in *ast.InExpr) bool {
	if in.Values[0].Pos().Line == in.LParen.Start.Line {
		return false
	}
	for i := 1; i < len(in.Values); i++ {
		if in.Values[i].Pos().Line == in.Values[i-1].End().Line {
			return false
		}
	}
	return doc.FirstOnLine(in.RParen.Start.Offset)
}

func explodeInList(doc *source.Doc, cfg style.Config, in *ast.InExpr) *lint.Fix {
	inside := source.Span(in.LParen.End, in.RParen.Start)
	if doc.HasComment(inside) {
		return nil
	}
	outer := doc.Indent(in.Pos().Offset)
	inner := outer + cfg.Indent(1)

	var sb strings.Builder
	for i, v := range in.Values {
		sb.WriteString("\n" + inner)
		if i > 0 && cfg.CommaStyle == style.CommaLeading {
			sb.WriteString(", ")
		}
		sb.WriteString(doc.Text(v.Span()))
		if i < len(in.Values)-1 && cfg.CommaStyle != style.CommaLeading {
			sb.WriteString(",")
		}
	}
	sb.WriteString("\n" + outer)
	return lint.Replace("Put one value per line", inside, sb.String())
}
