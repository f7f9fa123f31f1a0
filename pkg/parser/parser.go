// Package parser turns SQL text into a syntax tree.
//
// # Usage
//
//	tree, err := parser.Parse("select a, b from t")
//	if err != nil {
//	    var lexErr *parser.LexError
//	    var parseErr *parser.ParseError
//	    // errors.As(err, &lexErr) / errors.As(err, &parseErr)
//	}
//
// # Grammar Overview
//
// The parser is a recursive descent parser for the query subset of SQL:
//
//	statement     → [WITH [RECURSIVE] cte_list] select_body [;]
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] select_body]
//	select_core   → SELECT [DISTINCT|ALL] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	                [ORDER BY order_list] [LIMIT expr [OFFSET expr]]
//
// Expressions it does not model become ast.OpaqueExpr nodes that keep their
// tokens, so unfamiliar syntax degrades instead of failing the parse.
package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Parser parses a token stream into a syntax tree.
type Parser struct {
	source string
	tokens []token.Token // every token, trivia included
	sig    []int         // indexes of significant tokens; the last one is EOF
	cur    int           // index into sig
	err    *ParseError
}

// Parse lexes and parses source.
func Parse(source string) (*ast.Tree, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return ParseTokens(source, toks)
}

// ParseTokens parses an already lexed token stream. The slice is copied;
// soft keywords used as identifiers are re-typed to IDENT in the copy the
// tree keeps.
func ParseTokens(source string, toks []token.Token) (*ast.Tree, error) {
	p := newParser(source, toks)

	if err := p.checkParens(); err != nil {
		return nil, err
	}

	root := p.parseStatement()
	if !p.failed() && p.check(token.SEMICOLON) {
		p.next()
		root.Semicolon = true
	}
	if !p.failed() && !p.check(token.EOF) {
		p.fail(UnexpectedToken, "end of input")
	}
	if p.failed() {
		return nil, p.err
	}

	eof := p.tokens[len(p.tokens)-1]
	root.Extent = token.Span{Start: token.Position{Line: 1, Column: 1}, End: eof.End}

	tree := &ast.Tree{Source: source, Tokens: p.tokens, Root: root}
	for _, tok := range p.tokens {
		if tok.Type == token.COMMENT {
			tree.Comments = append(tree.Comments, token.NewComment(tok))
		}
	}
	return tree, nil
}

func newParser(source string, toks []token.Token) *Parser {
	tokens := slices.Clone(toks)
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		end := token.Position{Line: 1, Column: 1}
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].End
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Pos: end, End: end})
	}
	p := &Parser{source: source, tokens: tokens}
	for i, tok := range tokens {
		if !tok.Type.IsTrivia() {
			p.sig = append(p.sig, i)
		}
	}
	return p
}

// tok returns the current significant token.
func (p *Parser) tok() token.Token {
	return p.tokens[p.sig[p.cur]]
}

// peekTok returns the significant token n positions ahead.
func (p *Parser) peekTok(n int) token.Token {
	i := p.cur + n
	if i >= len(p.sig) {
		i = len(p.sig) - 1
	}
	return p.tokens[p.sig[i]]
}

// next advances to the next significant token, stopping at EOF.
func (p *Parser) next() {
	if p.cur < len(p.sig)-1 {
		p.cur++
	}
}

// check returns true if the current token is of type t.
func (p *Parser) check(t token.TokenType) bool {
	return p.tok().Type == t
}

// checkPeek returns true if the next token is of type t.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peekTok(1).Type == t
}

// match consumes the current token if it is of type t.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.next()
		return true
	}
	return false
}

// expect consumes a token of type t or records an error.
func (p *Parser) expect(t token.TokenType, expected string) (token.Token, bool) {
	tok := p.tok()
	if tok.Type != t {
		p.fail(UnexpectedToken, expected)
		return tok, false
	}
	p.next()
	return tok, true
}

// fail records the first error at the current token.
func (p *Parser) fail(kind ParseErrorKind, expected string) {
	p.failAt(kind, p.tok(), expected)
}

func (p *Parser) failAt(kind ParseErrorKind, tok token.Token, expected string) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Kind: kind, Pos: tok.Pos, Expected: expected, Found: describe(tok)}
}

func (p *Parser) failed() bool {
	return p.err != nil
}

// prevEnd returns the end of the last consumed significant token.
func (p *Parser) prevEnd() token.Position {
	if p.cur == 0 {
		return p.tok().Pos
	}
	return p.tokens[p.sig[p.cur-1]].End
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prevEnd()}
}

// retype changes the current token's type in the tree's token slice.
func (p *Parser) retype(t token.TokenType) {
	p.tokens[p.sig[p.cur]].Type = t
}

// checkParens reports the first unmatched parenthesis.
func (p *Parser) checkParens() error {
	var open []token.Token
	for _, i := range p.sig {
		tok := p.tokens[i]
		switch tok.Type {
		case token.LPAREN:
			open = append(open, tok)
		case token.RPAREN:
			if len(open) == 0 {
				return &ParseError{Kind: UnbalancedParenthesis, Pos: tok.Pos, Expected: "(", Found: describe(tok)}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return &ParseError{Kind: UnbalancedParenthesis, Pos: open[0].Pos, Expected: ")", Found: describe(open[0])}
	}
	return nil
}

// isIdentToken reports whether tok can be read as an identifier.
func isIdentToken(tok token.Token) bool {
	return tok.Type == token.IDENT || tok.Type == token.QIDENT || token.IsSoftKeyword(tok.Type)
}

// parseIdent reads an identifier, re-typing soft keywords.
func (p *Parser) parseIdent(expected string) *ast.Ident {
	tok := p.tok()
	if !isIdentToken(tok) {
		p.fail(UnexpectedToken, expected)
		return nil
	}
	if tok.Type != token.QIDENT {
		p.retype(token.IDENT)
	}
	p.next()
	return newIdent(tok)
}

func newIdent(tok token.Token) *ast.Ident {
	id := &ast.Ident{NodeInfo: ast.NodeInfo{Loc: tok.Span()}, Name: tok.Literal, Raw: tok.Literal}
	if tok.Type == token.QIDENT {
		id.Quoted = true
		id.Name = unquote(tok.Literal)
	}
	return id
}

// unquote strips the delimiters of a quoted token and collapses doubled quotes.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	q := raw[:1]
	return strings.ReplaceAll(raw[1:len(raw)-1], q+q, q)
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}
