package layout

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(ParenSpacing)
}

// ParenSpacing checks for spaces directly inside parentheses.
var ParenSpacing = lint.RuleDef{
	ID:          "paren-spacing",
	Name:        "layout.paren_spacing",
	Group:       "layout",
	Description: "No spaces directly inside ( and ) on the same line.",
	Severity:    lint.SeverityWarning,
	Check:       checkParenSpacing,
	Fixable:     true,
	BadExample:  "WHERE id IN ( 1, 2 )",
	GoodExample: "WHERE id IN (1, 2)",
}

func checkParenSpacing(tree *ast.Tree, _ style.Config, _ map[string]any) []lint.Violation {
	toks := source.New(tree).Tokens()
	var violations []lint.Violation

	flag := func(ws token.Token, msg string) {
		violations = append(violations, lint.Violation{
			Message: msg,
			Span:    ws.Span(),
			Fix:     lint.Replace("Remove space", ws.Span(), ""),
		})
	}

	for i := 1; i < len(toks)-1; i++ {
		ws := toks[i]
		if ws.Type != token.WHITESPACE || strings.ContainsAny(ws.Literal, "\r\n") {
			continue
		}
		switch {
		case toks[i-1].Type == token.LPAREN:
			flag(ws, "Unexpected space after (")
		case toks[i+1].Type == token.RPAREN:
			flag(ws, "Unexpected space before )")
		}
	}
	return violations
}
