package lsp

import (
	"errors"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// publishDiagnostics lints an open document and sends the result.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	diagnostics := s.analyze(doc)
	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

// analyze lints doc, records its violations and returns them as
// diagnostics. A document that does not parse yields one error diagnostic.
func (s *Server) analyze(doc *Document) []Diagnostic {
	settings := s.currentSettings()

	violations, err := settings.Linter.Lint(doc.Content, settings.Style)
	if err != nil {
		s.documents.SetViolations(doc.URI, doc.Version, nil)
		return []Diagnostic{s.syntaxDiagnostic(doc, err)}
	}

	s.documents.SetViolations(doc.URI, doc.Version, violations)
	diagnostics := make([]Diagnostic, 0, len(violations))
	for _, v := range violations {
		diagnostics = append(diagnostics, toDiagnostic(doc, v))
	}
	return diagnostics
}

func toDiagnostic(doc *Document, v lint.Violation) Diagnostic {
	return Diagnostic{
		Range:    doc.SpanToRange(v.Span),
		Severity: toSeverity(v.Severity),
		Code:     v.RuleID,
		Source:   diagnosticSource,
		Message:  v.Message,
	}
}

// syntaxDiagnostic reports a lex or parse failure at its position.
func (s *Server) syntaxDiagnostic(doc *Document, err error) Diagnostic {
	var pos token.Position
	var lexErr *parser.LexError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &lexErr):
		pos = lexErr.Pos
	case errors.As(err, &parseErr):
		pos = parseErr.Pos
	default:
		s.logger.Warn("unexpected lint error", "uri", doc.URI, "error", err)
	}

	start := doc.OffsetToPosition(pos.Offset)
	return Diagnostic{
		Range:    Range{Start: start, End: start},
		Severity: DiagnosticSeverityError,
		Code:     "syntax",
		Source:   diagnosticSource,
		Message:  err.Error(),
	}
}

func toSeverity(sev lint.Severity) DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return DiagnosticSeverityError
	case lint.SeverityWarning:
		return DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}
