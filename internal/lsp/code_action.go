package lsp

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
)

func (s *Server) codeAction(raw json.RawMessage) (any, error) {
	params, err := decodeParams[CodeActionParams](raw)
	if err != nil {
		return nil, err
	}
	return s.getCodeActions(params), nil
}

// getCodeActions offers the fix of every fixable violation in the
// requested range, plus a fix-all action when more than one applies.
func (s *Server) getCodeActions(params CodeActionParams) []CodeAction {
	actions := []CodeAction{}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || doc.Violations == nil {
		return actions
	}

	wantQuickFix := wantsKind(params.Context.Only, CodeActionKindQuickFix)
	wantFixAll := wantsKind(params.Context.Only, CodeActionKindSourceFixAll)

	if wantQuickFix {
		for _, v := range doc.Violations {
			if v.Fix == nil {
				continue
			}
			diag := toDiagnostic(doc, v)
			if !rangesOverlap(diag.Range, params.Range) {
				continue
			}
			actions = append(actions, CodeAction{
				Title:       v.Fix.Description,
				Kind:        CodeActionKindQuickFix,
				Diagnostics: []Diagnostic{diag},
				IsPreferred: true,
				Edit: &WorkspaceEdit{
					Changes: map[string][]TextEdit{
						doc.URI: convertTextEdits(doc, v.Fix.Edits),
					},
				},
			})
		}
	}

	if wantFixAll {
		fixable := slices.ContainsFunc(doc.Violations, func(v lint.Violation) bool { return v.Fix != nil })
		if fixable {
			result := lint.ApplyFixes(doc.Content, doc.Violations)
			if result.Output != doc.Content {
				actions = append(actions, CodeAction{
					Title: "Fix all sqlstyle violations",
					Kind:  CodeActionKindSourceFixAll,
					Edit: &WorkspaceEdit{
						Changes: map[string][]TextEdit{
							doc.URI: {{Range: doc.FullRange(), NewText: result.Output}},
						},
					},
				})
			}
		}
	}

	return actions
}

// wantsKind reports whether kind passes the client's filter. An empty
// filter accepts everything; a filter entry accepts its sub-kinds.
func wantsKind(only []CodeActionKind, kind CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, k := range only {
		if k == kind || strings.HasPrefix(string(kind), string(k)+".") {
			return true
		}
	}
	return false
}

// convertTextEdits converts lint.TextEdit to LSP TextEdit.
func convertTextEdits(doc *Document, edits []lint.TextEdit) []TextEdit {
	result := make([]TextEdit, len(edits))
	for i, edit := range edits {
		result[i] = TextEdit{
			Range:   doc.SpanToRange(edit.Span),
			NewText: edit.NewText,
		}
	}
	return result
}
