package convention

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(QuoteStyle)
}

// QuoteStyle checks that string values use the configured quote character.
var QuoteStyle = lint.RuleDef{
	ID:          "quote-style",
	Name:        "convention.quote_style",
	Group:       "convention",
	Description: "String values must use the configured quote style.",
	Severity:    lint.SeverityWarning,
	Check:       checkQuoteStyle,
	Fixable:     true,
	Rationale:   "Most engines read double quotes as identifiers, so a double-quoted value silently becomes a column reference.",
	BadExample:  `SELECT id FROM users WHERE status = "active"`,
	GoodExample: `SELECT id FROM users WHERE status = 'active'`,
}

func checkQuoteStyle(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	if cfg.QuoteStyle == style.QuoteDouble {
		return checkDoubleQuotes(tree, cfg)
	}

	var violations []lint.Violation
	for _, ref := range quotedValues(tree.Root) {
		id := ref.Column()
		violations = append(violations, lint.Violation{
			Message: fmt.Sprintf("Value %s should use single quotes", id.Raw),
			Span:    ref.Span(),
			Fix:     lint.Replace("Use single quotes", ref.Span(), cfg.Quote(id.Name)),
		})
	}
	return violations
}

func checkDoubleQuotes(tree *ast.Tree, cfg style.Config) []lint.Violation {
	var violations []lint.Violation
	for _, lit := range source.Collect[*ast.Literal](tree.Root) {
		if lit.Kind != ast.LitString || !strings.HasPrefix(lit.Raw, "'") {
			continue
		}
		violations = append(violations, lint.Violation{
			Message: fmt.Sprintf("String %s should use double quotes", lit.Raw),
			Span:    lit.Span(),
			Fix:     lint.Replace("Use double quotes", lit.Span(), cfg.Quote(lit.Value)),
		})
	}
	return violations
}

// quotedValues returns double-quoted single-part references used where a
// value is expected: the right side of a comparison with a plain column on
// the left, an IN list member or a LIKE pattern.
func quotedValues(root ast.Node) []*ast.ColumnRef {
	var out []*ast.ColumnRef
	add := func(e ast.Expr) {
		ref, ok := e.(*ast.ColumnRef)
		if !ok || len(ref.Parts) != 1 {
			return
		}
		id := ref.Parts[0]
		if id.Quoted && strings.HasPrefix(id.Raw, `"`) {
			out = append(out, ref)
		}
	}

	ast.Inspect(root, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.BinaryExpr:
			if v.Op.IsComparison() && isPlainColumn(v.Left) {
				add(v.Right)
			}
		case *ast.InExpr:
			for _, val := range v.Values {
				add(val)
			}
		case *ast.LikeExpr:
			add(v.Pattern)
		}
		return true
	})
	return out
}

func isPlainColumn(e ast.Expr) bool {
	ref, ok := e.(*ast.ColumnRef)
	return ok && !ref.Column().Quoted
}
