package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// LexErrorKind classifies lexical errors.
type LexErrorKind int

// Lexical error kinds.
const (
	UnterminatedString LexErrorKind = iota
	UnterminatedComment
	UnterminatedIdentifier
	UnterminatedTemplate
)

func (k LexErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string literal"
	case UnterminatedComment:
		return "unterminated block comment"
	case UnterminatedIdentifier:
		return "unterminated quoted identifier"
	case UnterminatedTemplate:
		return "unterminated template expression"
	}
	return fmt.Sprintf("LexErrorKind(%d)", int(k))
}

// LexError represents a lexical analysis error. Pos is the position of the
// opening delimiter.
type LexError struct {
	Kind LexErrorKind
	Pos  token.Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Kind)
}

// ParseErrorKind classifies structural errors.
type ParseErrorKind int

// Parse error kinds.
const (
	UnexpectedToken ParseErrorKind = iota
	UnbalancedParenthesis
	MissingClause
)

func (k ParseErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected token"
	case UnbalancedParenthesis:
		return "unbalanced parenthesis"
	case MissingClause:
		return "missing clause"
	}
	return fmt.Sprintf("ParseErrorKind(%d)", int(k))
}

// ParseError represents a parsing error with position information.
type ParseError struct {
	Kind     ParseErrorKind
	Pos      token.Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.message())
}

func (e *ParseError) message() string {
	switch e.Kind {
	case UnbalancedParenthesis:
		return fmt.Sprintf(ErrUnbalancedParen, e.Found)
	case MissingClause:
		return fmt.Sprintf(ErrMissingClause, e.Expected, e.Found)
	}
	return fmt.Sprintf(ErrUnexpectedToken, e.Found, e.Expected)
}

// Common error messages
const (
	ErrUnexpectedToken = "unexpected token %s, expected %s"
	ErrUnbalancedParen = "unmatched %s"
	ErrMissingClause   = "missing %s before %s"
)
