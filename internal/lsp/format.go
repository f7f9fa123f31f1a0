package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
)

// formatting replaces the whole document with its canonical form.
// Documents that do not parse are left alone.
func (s *Server) formatting(raw json.RawMessage) (any, error) {
	params, err := decodeParams[DocumentFormattingParams](raw)
	if err != nil {
		return nil, err
	}

	edits := []TextEdit{}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc != nil {
		settings := s.currentSettings()
		formatted, err := settings.Linter.Format(doc.Content, settings.Style)
		switch {
		case err != nil:
			s.logger.Debug("not formatting unparsable document", "uri", doc.URI, "error", err)
		case formatted != doc.Content:
			edits = append(edits, TextEdit{Range: doc.FullRange(), NewText: formatted})
		}
	}

	return edits, nil
}

// hover documents the rules whose violations cover the position.
func (s *Server) hover(raw json.RawMessage) (any, error) {
	params, err := decodeParams[HoverParams](raw)
	if err != nil {
		return nil, err
	}
	return s.getHover(params), nil
}

func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	var sections []string
	var hoverRange *Range
	seen := make(map[string]bool)
	for _, v := range doc.Violations {
		r := doc.SpanToRange(v.Span)
		if !rangeContains(r, params.Position) || seen[v.RuleID] {
			continue
		}
		seen[v.RuleID] = true
		if hoverRange == nil {
			hoverRange = &r
		}
		sections = append(sections, ruleHover(v))
	}
	if len(sections) == 0 {
		return nil
	}

	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: strings.Join(sections, "\n\n---\n\n")},
		Range:    hoverRange,
	}
}

func ruleHover(v lint.Violation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s): %s", v.RuleID, v.Severity, v.Message)

	rule, ok := lint.GetByID(v.RuleID)
	if !ok {
		return b.String()
	}
	fmt.Fprintf(&b, "\n\n%s", rule.Description)
	if rule.Rationale != "" {
		fmt.Fprintf(&b, "\n\n%s", rule.Rationale)
	}
	if rule.GoodExample != "" {
		fmt.Fprintf(&b, "\n\n```sql\n%s\n```", rule.GoodExample)
	}
	return b.String()
}
