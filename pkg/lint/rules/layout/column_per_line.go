package layout

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(ColumnPerLine)
}

// ColumnPerLine checks that multi-column select lists put each column on its
// own line.
var ColumnPerLine = lint.RuleDef{
	ID:          "column-per-line",
	Name:        "layout.column_per_line",
	Group:       "layout",
	Description: "Select lists with more than one column should have one column per line.",
	Severity:    lint.SeverityWarning,
	Check:       checkColumnPerLine,
	Fixable:     true,
	Rationale:   "One column per line keeps diffs small and makes columns easy to scan.",
	BadExample:  "SELECT id, email FROM users",
	GoodExample: "SELECT\n    id,\n    email\nFROM users",
}

func checkColumnPerLine(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	doc := source.New(tree)
	var violations []lint.Violation

	for _, core := range ast.Cores(tree.Root) {
		if core.Columns == nil || len(core.Columns.Items) < 2 {
			continue
		}
		items := core.Columns.Items
		indent := columnIndent(doc, cfg, core)
		for i := 1; i < len(items); i++ {
			prev, item := items[i-1], items[i]
			if item.Pos().Line != prev.End().Line {
				continue
			}
			violations = append(violations, lint.Violation{
				Message: "Each select column should be on its own line",
				Span:    item.Span(),
				Fix:     breakBeforeItem(doc, cfg, prev, item, indent),
			})
		}
	}
	return violations
}

// columnIndent is the indentation columns should have: that of the first
// column when it already starts a line, else one level below SELECT.
func columnIndent(doc *source.Doc, cfg style.Config, core *ast.SelectCore) string {
	first := core.Columns.Items[0]
	if doc.FirstOnLine(first.Pos().Offset) {
		return doc.Indent(first.Pos().Offset)
	}
	return doc.Indent(core.Select.Pos.Offset) + cfg.Indent(1)
}

func breakBeforeItem(doc *source.Doc, cfg style.Config, prev, item ast.Node, indent string) *lint.Fix {
	gap := source.Span(prev.End(), item.Pos())
	if doc.HasComment(gap) {
		return nil
	}
	comma, ok := doc.NextSignificant(prev.End().Offset)
	if !ok || comma.Type != token.COMMA {
		return nil
	}
	if cfg.CommaStyle == style.CommaLeading {
		return lint.Replace("Move column to its own line", gap, "\n"+indent+", ")
	}
	return lint.Replace("Move column to its own line", source.Span(comma.End, item.Pos()), "\n"+indent)
}
