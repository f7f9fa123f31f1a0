// Package source provides token and line lookups over a parsed document for
// lint rules.
package source

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Doc indexes a tree's tokens by offset.
type Doc struct {
	Tree *ast.Tree
	src  string
	toks []token.Token // every token except EOF
}

// New builds a Doc for tree.
func New(tree *ast.Tree) *Doc {
	d := &Doc{Tree: tree, src: tree.Source}
	for _, tok := range tree.Tokens {
		if tok.Type != token.EOF {
			d.toks = append(d.toks, tok)
		}
	}
	return d
}

// Tokens returns every token, trivia included, in source order.
func (d *Doc) Tokens() []token.Token {
	return d.toks
}

// Text returns the source text of span.
func (d *Doc) Text(span token.Span) string {
	return d.Tree.Text(span)
}

// index returns the index of the first token starting at or after offset.
func (d *Doc) index(offset int) int {
	return sort.Search(len(d.toks), func(i int) bool {
		return d.toks[i].Pos.Offset >= offset
	})
}

// Prev returns the last non-whitespace token ending at or before offset.
// Comments are returned.
func (d *Doc) Prev(offset int) (token.Token, bool) {
	for i := d.index(offset) - 1; i >= 0; i-- {
		if d.toks[i].End.Offset > offset {
			continue
		}
		if d.toks[i].Type != token.WHITESPACE {
			return d.toks[i], true
		}
	}
	return token.Token{}, false
}

// PrevSignificant returns the last significant token ending at or before offset.
func (d *Doc) PrevSignificant(offset int) (token.Token, bool) {
	for i := d.index(offset) - 1; i >= 0; i-- {
		if d.toks[i].End.Offset <= offset && !d.toks[i].Type.IsTrivia() {
			return d.toks[i], true
		}
	}
	return token.Token{}, false
}

// Next returns the first non-whitespace token starting at or after offset.
// Comments are returned.
func (d *Doc) Next(offset int) (token.Token, bool) {
	for i := d.index(offset); i < len(d.toks); i++ {
		if d.toks[i].Type != token.WHITESPACE {
			return d.toks[i], true
		}
	}
	return token.Token{}, false
}

// NextSignificant returns the first significant token starting at or after offset.
func (d *Doc) NextSignificant(offset int) (token.Token, bool) {
	for i := d.index(offset); i < len(d.toks); i++ {
		if !d.toks[i].Type.IsTrivia() {
			return d.toks[i], true
		}
	}
	return token.Token{}, false
}

// In returns the tokens, trivia included, lying entirely within span.
func (d *Doc) In(span token.Span) []token.Token {
	var out []token.Token
	for i := d.index(span.Start.Offset); i < len(d.toks); i++ {
		if d.toks[i].End.Offset > span.End.Offset {
			break
		}
		out = append(out, d.toks[i])
	}
	return out
}

// HasComment reports whether a comment lies within span.
func (d *Doc) HasComment(span token.Span) bool {
	for _, tok := range d.In(span) {
		if tok.Type == token.COMMENT {
			return true
		}
	}
	return false
}

// LineStart returns the offset of the start of the line containing offset.
func (d *Doc) LineStart(offset int) int {
	return strings.LastIndexByte(d.src[:offset], '\n') + 1
}

// Indent returns the leading whitespace of the line containing offset.
func (d *Doc) Indent(offset int) string {
	start := d.LineStart(offset)
	end := start
	for end < len(d.src) && (d.src[end] == ' ' || d.src[end] == '\t') {
		end++
	}
	return d.src[start:end]
}

// FirstOnLine reports whether only spaces and tabs precede offset on its line.
func (d *Doc) FirstOnLine(offset int) bool {
	return strings.TrimLeft(d.src[d.LineStart(offset):offset], " \t") == ""
}

// LastOnLine reports whether only spaces and tabs follow offset on its line.
func (d *Doc) LastOnLine(offset int) bool {
	rest := d.src[offset:]
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimLeft(rest, " \t") == ""
}

// Span builds a span between two positions.
func Span(start, end token.Position) token.Span {
	return token.Span{Start: start, End: end}
}

// Collect returns every node of type T under root in source order.
func Collect[T ast.Node](root ast.Node) []T {
	var out []T
	ast.Inspect(root, func(n ast.Node) bool {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

// Conditions returns the filter conditions of the tree: WHERE, HAVING, ON
// and searched CASE WHEN conditions.
func Conditions(root ast.Node) []ast.Expr {
	var out []ast.Expr
	ast.Inspect(root, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.WhereClause:
			out = append(out, v.Cond)
		case *ast.HavingClause:
			out = append(out, v.Cond)
		case *ast.JoinClause:
			if v.On != nil {
				out = append(out, v.On)
			}
		case *ast.CaseExpr:
			if v.Operand == nil {
				for _, w := range v.Whens {
					out = append(out, w.Cond)
				}
			}
		}
		return true
	})
	return out
}

// Operands flattens an AND/OR tree, looking through parentheses, and
// returns its leaf conditions.
func Operands(e ast.Expr) []ast.Expr {
	switch v := e.(type) {
	case *ast.BinaryExpr:
		if v.IsLogical() {
			return append(Operands(v.Left), Operands(v.Right)...)
		}
	case *ast.ParenExpr:
		return Operands(v.Expr)
	}
	return []ast.Expr{e}
}

// AndChain returns the operands of a top-level AND chain.
func AndChain(e ast.Expr) []ast.Expr {
	if b, ok := e.(*ast.BinaryExpr); ok && b.Op == token.AND {
		return append(AndChain(b.Left), AndChain(b.Right)...)
	}
	return []ast.Expr{e}
}
