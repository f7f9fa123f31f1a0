package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		word string
		want TokenType
	}{
		{"select", SELECT},
		{"SeLeCt", SELECT},
		{"FROM", FROM},
		{"users", IDENT},
		{"rows", ROWS},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.word))
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindKeyword, SELECT.Kind())
	assert.Equal(t, KindKeyword, WITH.Kind())
	assert.Equal(t, KindIdentifier, QIDENT.Kind())
	assert.Equal(t, KindOperator, NE.Kind())
	assert.Equal(t, KindOperator, DCOLON.Kind())
	assert.Equal(t, KindPunctuation, COMMA.Kind())
	assert.Equal(t, KindString, STRING.Kind())
	assert.Equal(t, KindNumber, NUMBER.Kind())
	assert.Equal(t, KindComment, COMMENT.Kind())
	assert.Equal(t, KindWhitespace, WHITESPACE.Kind())
	assert.Equal(t, "whitespace_run", KindWhitespace.String())
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "SELECT", SELECT.String())
	assert.Equal(t, "<=", LE.String())
	assert.Equal(t, "IDENT", IDENT.String())
}

func TestIsSoftKeyword(t *testing.T) {
	assert.True(t, IsSoftKeyword(FIRST))
	assert.True(t, IsSoftKeyword(ROW))
	assert.False(t, IsSoftKeyword(SELECT))
	assert.False(t, IsSoftKeyword(FROM))
}

func TestSpan(t *testing.T) {
	a := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 5, Offset: 4}}
	b := Span{Start: Position{Line: 1, Column: 3, Offset: 2}, End: Position{Line: 1, Column: 9, Offset: 8}}
	c := Span{Start: Position{Line: 1, Column: 5, Offset: 4}, End: Position{Line: 1, Column: 6, Offset: 5}}

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "adjacent spans do not overlap")
	assert.True(t, a.Contains(3))
	assert.False(t, a.Contains(4))

	joined := Join(a, c)
	assert.Equal(t, 0, joined.Start.Offset)
	assert.Equal(t, 5, joined.End.Offset)
	assert.True(t, joined.Covers(a))
	assert.Equal(t, a, Join(Span{}, a))
}
