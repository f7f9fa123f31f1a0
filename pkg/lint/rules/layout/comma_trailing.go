package layout

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/lint/internal/source"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func init() {
	lint.Register(CommaTrailing)
}

// CommaTrailing checks comma placement in multi-line lists.
var CommaTrailing = lint.RuleDef{
	ID:          "comma-trailing",
	Name:        "layout.comma_trailing",
	Group:       "layout",
	Description: "Commas in multi-line lists follow the configured comma style (trailing by default).",
	Severity:    lint.SeverityWarning,
	Check:       checkCommaTrailing,
	Fixable:     true,
	Rationale:   "A single comma convention keeps lists uniform across a codebase.",
	BadExample:  "SELECT\n    id\n    , email\nFROM users",
	GoodExample: "SELECT\n    id,\n    email\nFROM users",
}

func checkCommaTrailing(tree *ast.Tree, cfg style.Config, _ map[string]any) []lint.Violation {
	doc := source.New(tree)
	leading := cfg.CommaStyle == style.CommaLeading
	var violations []lint.Violation

	for _, tok := range doc.Tokens() {
		if tok.Type != token.COMMA {
			continue
		}
		switch {
		case !leading && doc.FirstOnLine(tok.Pos.Offset):
			violations = append(violations, lint.Violation{
				Message: "Comma should be at the end of the line",
				Span:    tok.Span(),
				Fix:     commaToTrailing(doc, tok),
			})
		case leading && doc.LastOnLine(tok.End.Offset) && !doc.FirstOnLine(tok.Pos.Offset):
			violations = append(violations, lint.Violation{
				Message: "Comma should be at the start of the line",
				Span:    tok.Span(),
				Fix:     commaToLeading(doc, tok),
			})
		}
	}
	return violations
}

func commaToTrailing(doc *source.Doc, comma token.Token) *lint.Fix {
	prev, ok := doc.Prev(comma.Pos.Offset)
	if !ok || prev.Type == token.COMMENT {
		return nil
	}
	next, ok := doc.Next(comma.End.Offset)
	if !ok {
		return nil
	}
	return &lint.Fix{
		Description: "Move comma to the end of the previous line",
		Edits: []lint.TextEdit{
			{Span: source.Span(prev.End, prev.End), NewText: ","},
			{Span: source.Span(comma.Pos, next.Pos), NewText: ""},
		},
	}
}

func commaToLeading(doc *source.Doc, comma token.Token) *lint.Fix {
	prev, ok := doc.Prev(comma.Pos.Offset)
	if !ok {
		return nil
	}
	next, ok := doc.Next(comma.End.Offset)
	if !ok || next.Type == token.COMMENT {
		return nil
	}
	return &lint.Fix{
		Description: "Move comma to the start of the next line",
		Edits: []lint.TextEdit{
			{Span: source.Span(prev.End, comma.End), NewText: ""},
			{Span: source.Span(next.Pos, next.Pos), NewText: ", "},
		},
	}
}
