// Package token defines the lexical tokens produced by the SQL lexer.
//
// Every byte of the input belongs to exactly one token: whitespace runs and
// comments are tokens too, so the original text can be rebuilt by
// concatenating token literals.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // ALL_CAPS names follow SQL token conventions
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Trivia
	WHITESPACE
	COMMENT

	// Literals
	IDENT    // identifier
	QIDENT   // "quoted identifier" or `quoted identifier`
	NUMBER   // 123, 45.67, 1e10
	STRING   // 'hello'
	TEMPLATE // {{ ref('x') }} or {% if %}

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	DPIPE   // ||
	DCOLON  // ::
	EQ      // =
	NE      // != or <>
	LT      // <
	GT      // >
	LE      // <=
	GE      // >=

	// Punctuation
	DOT       // .
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	keywordStart

	// Keywords (alphabetical)
	ALL
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CROSS
	CURRENT
	DESC
	DISTINCT
	ELSE
	END
	EXCEPT
	EXISTS
	FALSE
	FIRST
	FOLLOWING
	FROM
	FULL
	GROUP
	HAVING
	ILIKE
	IN
	INNER
	INTERSECT
	IS
	JOIN
	LAST
	LEFT
	LIKE
	LIMIT
	NATURAL
	NOT
	NULL
	NULLS
	OFFSET
	ON
	OR
	ORDER
	OUTER
	OVER
	PARTITION
	PRECEDING
	RANGE
	RECURSIVE
	RIGHT
	ROW
	ROWS
	SELECT
	THEN
	TRUE
	UNBOUNDED
	UNION
	USING
	WHEN
	WHERE
	WITH

	keywordEnd
)

// Kind is the coarse lexical category of a token.
type Kind int

// Token kinds.
const (
	KindEOF Kind = iota
	KindKeyword
	KindIdentifier
	KindOperator
	KindPunctuation
	KindString
	KindNumber
	KindComment
	KindWhitespace
	KindTemplate
	KindIllegal
)

var kindNames = [...]string{
	KindEOF:         "eof",
	KindKeyword:     "keyword",
	KindIdentifier:  "identifier",
	KindOperator:    "operator",
	KindPunctuation: "punctuation",
	KindString:      "string_literal",
	KindNumber:      "number_literal",
	KindComment:     "comment",
	KindWhitespace:  "whitespace_run",
	KindTemplate:    "template",
	KindIllegal:     "illegal",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kind classifies the token type.
func (t TokenType) Kind() Kind {
	switch {
	case t == EOF:
		return KindEOF
	case t == ILLEGAL:
		return KindIllegal
	case t == WHITESPACE:
		return KindWhitespace
	case t == COMMENT:
		return KindComment
	case t == IDENT || t == QIDENT:
		return KindIdentifier
	case t == NUMBER:
		return KindNumber
	case t == STRING:
		return KindString
	case t == TEMPLATE:
		return KindTemplate
	case t >= PLUS && t <= GE:
		return KindOperator
	case t >= DOT && t <= RPAREN:
		return KindPunctuation
	case t.IsKeyword():
		return KindKeyword
	}
	return KindIllegal
}

// IsKeyword reports whether the type is a reserved or soft keyword.
func (t TokenType) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsTrivia reports whether the token carries no syntax (whitespace, comments).
func (t TokenType) IsTrivia() bool {
	return t == WHITESPACE || t == COMMENT
}

// IsComparison reports whether the type is a comparison operator.
func (t TokenType) IsComparison() bool {
	return t >= EQ && t <= GE
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	if t.IsKeyword() {
		for word, kw := range keywords {
			if kw == t {
				return strings.ToUpper(word)
			}
		}
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	WHITESPACE: "WHITESPACE",
	COMMENT:    "COMMENT",
	IDENT:      "IDENT",
	QIDENT:     "QIDENT",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	TEMPLATE:   "TEMPLATE",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	DPIPE:   "||",
	DCOLON:  "::",
	EQ:      "=",
	NE:      "!=",
	LT:      "<",
	GT:      ">",
	LE:      "<=",
	GE:      ">=",

	DOT:       ".",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
}

// keywords maps lowercase words to keyword token types.
var keywords = map[string]TokenType{
	"all":       ALL,
	"and":       AND,
	"as":        AS,
	"asc":       ASC,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"cast":      CAST,
	"cross":     CROSS,
	"current":   CURRENT,
	"desc":      DESC,
	"distinct":  DISTINCT,
	"else":      ELSE,
	"end":       END,
	"except":    EXCEPT,
	"exists":    EXISTS,
	"false":     FALSE,
	"first":     FIRST,
	"following": FOLLOWING,
	"from":      FROM,
	"full":      FULL,
	"group":     GROUP,
	"having":    HAVING,
	"ilike":     ILIKE,
	"in":        IN,
	"inner":     INNER,
	"intersect": INTERSECT,
	"is":        IS,
	"join":      JOIN,
	"last":      LAST,
	"left":      LEFT,
	"like":      LIKE,
	"limit":     LIMIT,
	"natural":   NATURAL,
	"not":       NOT,
	"null":      NULL,
	"nulls":     NULLS,
	"offset":    OFFSET,
	"on":        ON,
	"or":        OR,
	"order":     ORDER,
	"outer":     OUTER,
	"over":      OVER,
	"partition": PARTITION,
	"preceding": PRECEDING,
	"range":     RANGE,
	"recursive": RECURSIVE,
	"right":     RIGHT,
	"row":       ROW,
	"rows":      ROWS,
	"select":    SELECT,
	"then":      THEN,
	"true":      TRUE,
	"unbounded": UNBOUNDED,
	"union":     UNION,
	"using":     USING,
	"when":      WHEN,
	"where":     WHERE,
	"with":      WITH,
}

// softKeywords can also be used as identifiers (column and alias names).
var softKeywords = map[TokenType]bool{
	CURRENT:   true,
	FIRST:     true,
	FOLLOWING: true,
	LAST:      true,
	NULLS:     true,
	PARTITION: true,
	PRECEDING: true,
	RANGE:     true,
	ROW:       true,
	ROWS:      true,
	UNBOUNDED: true,
}

// LookupIdent returns the keyword type for word (any casing), or IDENT.
func LookupIdent(word string) TokenType {
	if tok, ok := keywords[strings.ToLower(word)]; ok {
		return tok
	}
	return IDENT
}

// IsSoftKeyword reports whether the keyword may double as an identifier.
func IsSoftKeyword(t TokenType) bool {
	return softKeywords[t]
}

// Token is a single lexical token.
type Token struct {
	Type    TokenType
	Literal string   // exact source text
	Pos     Position // start, inclusive
	End     Position // end, exclusive
}

// Kind returns the coarse category of the token.
func (t Token) Kind() Kind {
	return t.Type.Kind()
}

// Span returns the source range of the token.
func (t Token) Span() Span {
	return Span{Start: t.Pos, End: t.End}
}

// String returns a debugging representation.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Literal, t.Pos.Line, t.Pos.Column)
}
