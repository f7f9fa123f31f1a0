package structure

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(FinalSelectStar)
}

// FinalSelectStar checks that a query built from CTEs ends with a bare
// SELECT * FROM its last CTE.
var FinalSelectStar = lint.RuleDef{
	ID:          "final-select-star",
	Name:        "structure.final_select_star",
	Group:       "structure",
	Description: "When CTEs are used, the final statement should be SELECT * FROM the last CTE.",
	Severity:    lint.SeverityWarning,
	Check:       checkFinalSelectStar,
	Fixable:     true,
	Rationale:   "Ending on the last CTE makes it trivial to inspect any intermediate step by changing one name.",
	BadExample:  "WITH u AS (SELECT id FROM users) SELECT id FROM u WHERE id > 1",
	GoodExample: "WITH u AS (SELECT id FROM users),\nfinal AS (SELECT id FROM u WHERE id > 1)\nSELECT * FROM final",
}

func checkFinalSelectStar(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	root := tree.Root
	if root.With == nil || len(root.With.CTEs) == 0 || root.Body == nil {
		return nil
	}
	last := root.With.CTEs[len(root.With.CTEs)-1]
	if selectsStarFrom(root.Body, last.Name.Name) {
		return nil
	}

	return []lint.Violation{{
		Message: "Final select should be SELECT * FROM " + last.Name.Name,
		Span:    root.Body.Span(),
		Fix:     wrapFinalSelect(source.New(tree), cfg, root, last),
	}}
}

// selectsStarFrom reports whether body is exactly SELECT * FROM name.
func selectsStarFrom(body *ast.SelectBody, name string) bool {
	if body.Right != nil {
		return false
	}
	core := body.Left
	if !core.IsStarOnly() || core.Distinct || core.From == nil || core.HasJoins() {
		return false
	}
	if core.Where != nil || core.GroupBy != nil || core.Having != nil || core.OrderBy != nil || core.Limit != nil {
		return false
	}
	table, ok := core.From.Source.(*ast.TableName)
	return ok && len(table.Parts) == 1 && strings.EqualFold(table.Name().Name, name)
}

// wrapFinalSelect moves the final select into a new CTE and selects from it.
func wrapFinalSelect(doc *source.Doc, cfg style.Config, root *ast.Statement, last *ast.CTE) *lint.Fix {
	names := root.CTENames()
	name := "final"
	if names[name] {
		name = "final_select"
	}
	if names[name] {
		return nil
	}

	body := root.Body.Span()
	var sb strings.Builder
	sb.WriteString(",\n")
	sb.WriteString(name + " " + cfg.Keyword("AS") + " (\n")
	sb.WriteString(cfg.Indent(1))
	for _, tok := range doc.In(body) {
		if tok.Type == token.WHITESPACE {
			sb.WriteString(strings.ReplaceAll(tok.Literal, "\n", "\n"+cfg.Indent(1)))
			continue
		}
		sb.WriteString(tok.Literal)
	}
	sb.WriteString("\n)\n")
	sb.WriteString(cfg.Keyword("SELECT") + " * " + cfg.Keyword("FROM") + " " + name)

	return lint.Replace("Move the final select into a CTE",
		token.Span{Start: last.RParen.End, End: body.End}, sb.String())
}
