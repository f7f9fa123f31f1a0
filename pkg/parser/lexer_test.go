package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"select id, email from users",
		"SELECT a -- trailing\n  FROM t /* block\n comment */ WHERE x <> 1",
		"select 'it''s', \"Quoted\"\"Name\", 1.5e-3, .5 from {{ ref('orders') }}",
		"select a::date, b->>'k', c || d from t;",
		"",
	}
	for _, input := range inputs {
		toks, err := Tokenize(input)
		require.NoError(t, err)

		var sb strings.Builder
		for _, tok := range toks {
			sb.WriteString(tok.Literal)
		}
		assert.Equal(t, input, sb.String(), "tokens must cover every byte")
		assert.Equal(t, token.EOF, toks[len(toks)-1].Type)
	}
}

func TestTokenKinds(t *testing.T) {
	toks, err := Tokenize("SeLeCt a, 'x' -- c\n")
	require.NoError(t, err)

	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind())
	}
	assert.Equal(t, []token.Kind{
		token.KindKeyword, token.KindWhitespace, token.KindIdentifier, token.KindPunctuation,
		token.KindWhitespace, token.KindString, token.KindWhitespace, token.KindComment,
		token.KindWhitespace, token.KindEOF,
	}, kinds)
	assert.Equal(t, "SeLeCt", toks[0].Literal, "keyword casing is preserved")
	assert.Equal(t, token.SELECT, toks[0].Type)
}

func TestTokenPositions(t *testing.T) {
	toks, err := Tokenize("select\n  id")
	require.NoError(t, err)

	id := toks[2]
	assert.Equal(t, "id", id.Literal)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 9}, id.Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 5, Offset: 11}, id.End)
}

func TestOperators(t *testing.T) {
	toks, err := Tokenize("<> != <= >= :: || ->> = <")
	require.NoError(t, err)

	var types []token.TokenType
	for _, tok := range toks {
		if tok.Type != token.WHITESPACE {
			types = append(types, tok.Type)
		}
	}
	assert.Equal(t, []token.TokenType{
		token.NE, token.NE, token.LE, token.GE, token.DCOLON, token.DPIPE,
		token.ILLEGAL, token.EQ, token.LT, token.EOF,
	}, types)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   LexErrorKind
		offset int
	}{
		{"unterminated string", "select * from users where email = 'abc", UnterminatedString, 34},
		{"unterminated comment", "select 1 /* never closed", UnterminatedComment, 9},
		{"unterminated identifier", "select \"abc from t", UnterminatedIdentifier, 7},
		{"unterminated template", "select * from {{ ref('x')", UnterminatedTemplate, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			var lexErr *LexError
			require.True(t, errors.As(err, &lexErr))
			assert.Equal(t, tt.kind, lexErr.Kind)
			assert.Equal(t, tt.offset, lexErr.Pos.Offset)
		})
	}
}

func TestTokensIsRestartableAndLazy(t *testing.T) {
	seq := Tokens("select a from t")

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	first := count()
	assert.Equal(t, first, count())

	taken := 0
	for range seq {
		taken++
		if taken == 2 {
			break
		}
	}
	assert.Equal(t, 2, taken)
}
