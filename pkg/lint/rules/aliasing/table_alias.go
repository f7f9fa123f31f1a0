package aliasing

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
	lint.Register(NoTableAliasWithoutJoin)
}

// NoTableAliasWithoutJoin checks table aliases against the alias policy.
var NoTableAliasWithoutJoin = lint.RuleDef{
	ID:          "no-table-alias-without-join",
	Name:        "aliasing.no_table_alias_without_join",
	Group:       "aliasing",
	Description: "Table aliases are only used where the alias policy allows them (by default, only with joins).",
	Severity:    lint.SeverityWarning,
	Check:       checkTableAlias,
	Fixable:     true,
	Rationale:   "An alias on a lone table adds a name to remember and buys nothing.",
	BadExample:  "SELECT u.id FROM users AS u",
	GoodExample: "SELECT id FROM users",
}

func checkTableAlias(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	if cfg.AliasPolicy == style.AliasAlways {
		return nil
	}
	doc := source.New(tree)

	var violations []lint.Violation
	for _, core := range ast.Cores(tree.Root) {
		if core.From == nil || cfg.AliasPolicy.AllowsTableAlias(core.HasJoins()) {
			continue
		}
		for _, ref := range core.From.Tables() {
			table, ok := ref.(*ast.TableName)
			if !ok || table.Alias == nil {
				continue
			}
			msg := fmt.Sprintf("Table alias %q is not needed without a join", table.Alias.Name.Name)
			if cfg.AliasPolicy == style.AliasNone {
				msg = fmt.Sprintf("Table alias %q is not allowed", table.Alias.Name.Name)
			}
			violations = append(violations, lint.Violation{
				Message: msg,
				Span:    table.Alias.Span(),
				Fix:     removeAlias(doc, core, table),
			})
		}
	}
	return violations
}

// removeAlias drops the alias and rewrites columns qualified with it. A lone
// table loses the qualifier, except inside nested queries where the table
// name keeps the reference unambiguous.
func removeAlias(doc *source.Doc, core *ast.SelectCore, table *ast.TableName) *lint.Fix {
	qualifier, ok := core.AliasQualifier(table)
	if !ok {
		return nil
	}
	alias := table.Alias.Name.Name
	name := table.Name()

	edits := []lint.TextEdit{{Span: token.Span{Start: name.End(), End: table.Alias.End()}}}
	requalify := func(q *ast.Ident, next token.Position, replacement string) {
		if !strings.EqualFold(q.Name, alias) {
			return
		}
		if replacement == "" {
			edits = append(edits, lint.TextEdit{Span: token.Span{Start: q.Pos(), End: next}})
			return
		}
		edits = append(edits, lint.TextEdit{Span: q.Span(), NewText: replacement})
	}

	var visit func(root *ast.SelectCore, replacement string)
	visit = func(root *ast.SelectCore, replacement string) {
		ast.Inspect(root, func(n ast.Node) bool {
			switch v := n.(type) {
			case *ast.SelectCore:
				if v != root && replacement == "" {
					visit(v, name.Raw)
					return false
				}
			case *ast.ColumnRef:
				if len(v.Parts) == 2 {
					requalify(v.Parts[0], v.Parts[1].Pos(), replacement)
				}
			case *ast.StarExpr:
				if len(v.Qualifier) == 1 {
					requalify(v.Qualifier[0], starPos(doc, v), replacement)
				}
			}
			return true
		})
	}
	visit(core, qualifier)
	return &lint.Fix{Description: "Remove table alias " + alias, Edits: edits}
}

// starPos returns the position of the * in t.*.
func starPos(doc *source.Doc, star *ast.StarExpr) token.Position {
	if tok, ok := doc.PrevSignificant(star.End().Offset); ok && tok.Type == token.STAR {
		return tok.Pos
	}
	return star.End()
}
