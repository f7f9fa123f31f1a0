package layout

import (
	"fmt"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(KeywordCase)
}

// KeywordCase checks that every keyword matches the configured case.
var KeywordCase = lint.RuleDef{
	ID:          "keyword-case",
	Name:        "layout.keyword_case",
	Group:       "layout",
	Description: "Keywords must use the configured case.",
	Severity:    lint.SeverityWarning,
	Check:       checkKeywordCase,
	Fixable:     true,
	Rationale:   "Consistent keyword casing separates SQL syntax from identifiers at a glance.",
	BadExample:  "select id from users",
	GoodExample: "SELECT id FROM users",
}

func checkKeywordCase(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	var violations []lint.Violation
	for _, tok := range tree.Tokens {
		if !tok.Type.IsKeyword() {
			continue
		}
		want := cfg.Keyword(tok.Literal)
		if want == tok.Literal {
			continue
		}
		violations = append(violations, lint.Violation{
			Message: fmt.Sprintf("Keyword %q should be %s case", tok.Literal, cfg.KeywordCase),
			Span:    tok.Span(),
			Fix:     lint.Replace("Change keyword case", tok.Span(), want),
		})
	}
	return violations
}
