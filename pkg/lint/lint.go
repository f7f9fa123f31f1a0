package lint

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Severity indicates the importance of a violation.
type Severity int

// Severity levels for violations.
const (
	// SeverityError indicates a critical issue that should be fixed.
	SeverityError Severity = iota
	// SeverityWarning indicates a style issue that should be fixed.
	SeverityWarning
	// SeverityInfo indicates advisory feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "hint":
		return SeverityHint, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(minimum Severity) bool {
	return s <= minimum
}

// Violation is a single style finding.
type Violation struct {
	RuleID   string     `json:"rule_id"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Span     token.Span `json:"span"`
	Fix      *Fix       `json:"fix,omitempty"`
}

// Fix is a suggested correction made of one or more text edits.
type Fix struct {
	Description string     `json:"description"`
	Edits       []TextEdit `json:"edits"`
}

// TextEdit replaces the text covered by Span with NewText.
type TextEdit struct {
	Span    token.Span `json:"span"`
	NewText string     `json:"new_text"`
}

// Replace builds a single-edit fix.
func Replace(description string, span token.Span, newText string) *Fix {
	return &Fix{Description: description, Edits: []TextEdit{{Span: span, NewText: newText}}}
}

// SortViolations orders violations by start offset, rule ID, end offset and
// message.
func SortViolations(vs []Violation) {
	slices.SortStableFunc(vs, func(a, b Violation) int {
		return cmp.Or(
			cmp.Compare(a.Span.Start.Offset, b.Span.Start.Offset),
			cmp.Compare(a.RuleID, b.RuleID),
			cmp.Compare(a.Span.End.Offset, b.Span.End.Offset),
			cmp.Compare(a.Message, b.Message),
		)
	})
}
