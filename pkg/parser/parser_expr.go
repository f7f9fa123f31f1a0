package parser

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Operator precedence levels, lowest first.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCompare
	precConcat
	precAdditive
	precMultiplicative
	precUnary
	precCast
)

// parseExpr parses a full expression.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precOr)
}

// parseExprList parses: expr {, expr}
func (p *Parser) parseExprList() []ast.Expr {
	var out []ast.Expr
	for {
		e := p.parseExpr()
		if p.failed() {
			return out
		}
		out = append(out, e)
		if !p.match(token.COMMA) {
			return out
		}
	}
}

// parseBinary implements precedence climbing.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for !p.failed() {
		prec := p.infixPrecedence()
		if prec == precNone || prec < minPrec {
			break
		}
		left = p.parseInfix(left, prec)
	}
	return left
}

func (p *Parser) infixPrecedence() int {
	switch t := p.tok().Type; {
	case t == token.OR:
		return precOr
	case t == token.AND:
		return precAnd
	case t.IsComparison(), t == token.IS, t == token.IN, t == token.LIKE, t == token.ILIKE, t == token.BETWEEN:
		return precCompare
	case t == token.NOT:
		switch p.peekTok(1).Type {
		case token.IN, token.LIKE, token.ILIKE, token.BETWEEN:
			return precCompare
		}
	case t == token.DPIPE, t == token.ILLEGAL && len(p.tok().Literal) > 1:
		return precConcat
	case t == token.PLUS, t == token.MINUS:
		return precAdditive
	case t == token.STAR, t == token.SLASH, t == token.PERCENT:
		return precMultiplicative
	case t == token.DCOLON:
		return precCast
	}
	return precNone
}

// parsePrefix parses unary operators and primaries.
func (p *Parser) parsePrefix() ast.Expr {
	tok := p.tok()
	switch tok.Type {
	case token.NOT:
		p.next()
		operand := p.parseBinary(precNot)
		return &ast.UnaryExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(tok.Pos)}, Op: token.NOT, Expr: operand}
	case token.MINUS, token.PLUS:
		p.next()
		operand := p.parseBinary(precUnary)
		return &ast.UnaryExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(tok.Pos)}, Op: tok.Type, Expr: operand}
	}
	return p.parsePrimary()
}

// parseInfix parses the operator at the current token with left as its
// left operand.
func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	op := p.tok()
	start := left.Pos()

	switch op.Type {
	case token.IS:
		p.next()
		is := &ast.IsExpr{Expr: left, Not: p.match(token.NOT)}
		switch v := p.tok().Type; v {
		case token.NULL, token.TRUE, token.FALSE:
			is.Value = v
			p.next()
		case token.DISTINCT:
			p.next()
			if _, ok := p.expect(token.FROM, "FROM"); !ok {
				return left
			}
			is.Value = v
			is.Other = p.parseBinary(precConcat)
		default:
			p.fail(UnexpectedToken, "NULL, TRUE, FALSE or DISTINCT FROM")
			return left
		}
		is.Loc = p.spanFrom(start)
		return is

	case token.NOT:
		p.next()
		return p.parseNegatable(left, true)

	case token.IN, token.LIKE, token.ILIKE, token.BETWEEN:
		return p.parseNegatable(left, false)

	case token.DCOLON:
		p.next()
		typ := p.parseShortType()
		return &ast.CastExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(start)}, Expr: left, Type: typ, Shorthand: true}
	}

	p.next()
	right := p.parseBinary(prec + 1)
	return &ast.BinaryExpr{
		NodeInfo: ast.NodeInfo{Loc: p.spanFrom(start)},
		Op:       op.Type,
		OpText:   op.Literal,
		OpSpan:   op.Span(),
		Left:     left,
		Right:    right,
	}
}

// parseNegatable parses IN, LIKE, ILIKE and BETWEEN, after an optional NOT.
func (p *Parser) parseNegatable(left ast.Expr, not bool) ast.Expr {
	start := left.Pos()
	op := p.tok()
	p.next()

	switch op.Type {
	case token.IN:
		in := &ast.InExpr{Expr: left, Not: not}
		lparen, ok := p.expect(token.LPAREN, "(")
		if !ok {
			return in
		}
		in.LParen = lparen.Span()
		if p.startsStatement() {
			query, rparen := p.parseNestedStatement(lparen)
			in.Query = query
			in.RParen = rparen.Span()
		} else {
			in.Values = p.parseExprList()
			if p.failed() {
				return in
			}
			rparen, _ := p.expect(token.RPAREN, ")")
			in.RParen = rparen.Span()
		}
		in.Loc = p.spanFrom(start)
		return in

	case token.LIKE, token.ILIKE:
		like := &ast.LikeExpr{Expr: left, Not: not, ILike: op.Type == token.ILIKE}
		like.Pattern = p.parseBinary(precConcat)
		like.Loc = p.spanFrom(start)
		return like

	case token.BETWEEN:
		between := &ast.BetweenExpr{Expr: left, Not: not}
		between.Low = p.parseBinary(precConcat)
		if _, ok := p.expect(token.AND, "AND"); !ok {
			return between
		}
		between.High = p.parseBinary(precConcat)
		between.Loc = p.spanFrom(start)
		return between
	}

	p.failAt(UnexpectedToken, op, "IN, LIKE or BETWEEN")
	return left
}

// parsePrimary parses literals, references, calls and grouped expressions.
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.tok()
	info := ast.NodeInfo{Loc: tok.Span()}

	switch tok.Type {
	case token.NUMBER:
		p.next()
		return &ast.Literal{NodeInfo: info, Kind: ast.LitNumber, Raw: tok.Literal}
	case token.STRING:
		p.next()
		return &ast.Literal{NodeInfo: info, Kind: ast.LitString, Raw: tok.Literal, Value: unquote(tok.Literal)}
	case token.TRUE:
		p.next()
		return &ast.Literal{NodeInfo: info, Kind: ast.LitTrue, Raw: tok.Literal}
	case token.FALSE:
		p.next()
		return &ast.Literal{NodeInfo: info, Kind: ast.LitFalse, Raw: tok.Literal}
	case token.NULL:
		p.next()
		return &ast.Literal{NodeInfo: info, Kind: ast.LitNull, Raw: tok.Literal}
	case token.TEMPLATE:
		p.next()
		return &ast.TemplateExpr{NodeInfo: info, Text: tok.Literal}
	case token.LPAREN:
		return p.parseParen()
	case token.CASE:
		return p.parseCase()
	case token.CAST:
		return p.parseCast()
	case token.EXISTS:
		p.next()
		lparen, ok := p.expect(token.LPAREN, "(")
		if !ok {
			return nil
		}
		if !p.startsStatement() {
			p.fail(MissingClause, "SELECT")
			return nil
		}
		query, _ := p.parseNestedStatement(lparen)
		return &ast.ExistsExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(tok.Pos)}, Query: query}
	case token.LEFT, token.RIGHT:
		if p.checkPeek(token.LPAREN) {
			p.retype(token.IDENT)
			return p.parseFuncCall([]*ast.Ident{p.parseIdent("function name")})
		}
	}

	if isIdentToken(tok) {
		return p.parseReference()
	}
	return p.parseOpaque()
}

// parseParen parses a parenthesized expression or scalar subquery.
func (p *Parser) parseParen() ast.Expr {
	lparen := p.tok()
	p.next()
	if p.startsStatement() {
		query, _ := p.parseNestedStatement(lparen)
		return &ast.SubqueryExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(lparen.Pos)}, Query: query}
	}
	inner := p.parseExpr()
	if p.failed() {
		return inner
	}
	p.expect(token.RPAREN, ")")
	return &ast.ParenExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(lparen.Pos)}, Expr: inner}
}

// parseReference parses column references, t.*, function calls and typed
// literals such as date '2024-01-01'.
func (p *Parser) parseReference() ast.Expr {
	start := p.tok()
	if start.Type == token.IDENT && p.checkPeek(token.STRING) {
		return p.parseOpaque()
	}

	parts := []*ast.Ident{p.parseIdent("identifier")}
	for !p.failed() && p.check(token.DOT) {
		p.next()
		if p.check(token.STAR) {
			p.next()
			return &ast.StarExpr{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(start.Pos)}, Qualifier: parts}
		}
		parts = append(parts, p.parseIdent("identifier"))
	}
	if p.failed() {
		return nil
	}
	if p.check(token.LPAREN) && !parts[len(parts)-1].Quoted {
		return p.parseFuncCall(parts)
	}
	return &ast.ColumnRef{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(start.Pos)}, Parts: parts}
}

// parseFuncCall parses the argument list and optional OVER clause. Calls
// whose arguments use syntax the parser does not model (EXTRACT(x FROM y),
// ordered aggregates) keep their arguments as one opaque expression.
func (p *Parser) parseFuncCall(name []*ast.Ident) ast.Expr {
	lparen := p.tok()
	start := name[0].Pos()
	p.next() // (

	call := &ast.FuncCall{Name: name}
	save := p.cur
	switch {
	case p.check(token.STAR):
		p.next()
		call.Star = true
	case p.check(token.RPAREN):
	default:
		if p.match(token.DISTINCT) {
			call.Distinct = true
		}
		call.Args = p.parseExprList()
	}

	if p.failed() || !p.check(token.RPAREN) {
		p.err = nil
		p.cur = save
		call.Star, call.Distinct = false, false
		call.Args = []ast.Expr{p.parseBalanced(lparen)}
	}
	if _, ok := p.expect(token.RPAREN, ")"); !ok {
		return call
	}

	if p.check(token.OVER) {
		call.Over = p.parseOver()
	}
	call.Loc = p.spanFrom(start)
	return call
}

// parseBalanced consumes tokens up to the parenthesis matching lparen and
// returns them as an opaque expression.
func (p *Parser) parseBalanced(lparen token.Token) ast.Expr {
	start := p.cur
	depth := 0
	for !p.check(token.EOF) {
		switch p.tok().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return p.opaqueFrom(start)
			}
			depth--
		}
		p.next()
	}
	p.failAt(UnbalancedParenthesis, lparen, ")")
	return nil
}

// opaqueFrom builds an opaque expression from sig[start] to the current token.
func (p *Parser) opaqueFrom(start int) *ast.OpaqueExpr {
	op := &ast.OpaqueExpr{}
	for i := start; i < p.cur; i++ {
		op.Tokens = append(op.Tokens, p.tokens[p.sig[i]])
	}
	if len(op.Tokens) > 0 {
		op.Loc = token.Span{Start: op.Tokens[0].Pos, End: op.Tokens[len(op.Tokens)-1].End}
	} else {
		op.Loc = token.Span{Start: p.tok().Pos, End: p.tok().Pos}
	}
	return op
}

// parseOver parses: OVER name | OVER ([PARTITION BY ...] [ORDER BY ...] [frame])
func (p *Parser) parseOver() *ast.WindowSpec {
	over := p.tok()
	p.next()

	spec := &ast.WindowSpec{}
	if !p.check(token.LPAREN) {
		spec.Name = p.parseIdent("window name")
		spec.Loc = p.spanFrom(over.Pos)
		return spec
	}
	lparen := p.tok()
	p.next()

	if p.check(token.PARTITION) {
		p.next()
		if _, ok := p.expect(token.BY, "BY"); !ok {
			return spec
		}
		spec.PartitionBy = p.parseExprList()
	}
	if !p.failed() && p.check(token.ORDER) {
		p.next()
		if _, ok := p.expect(token.BY, "BY"); !ok {
			return spec
		}
		spec.OrderBy = p.parseOrderList()
	}
	if !p.failed() && !p.check(token.RPAREN) {
		frame := p.parseBalanced(lparen)
		if op, ok := frame.(*ast.OpaqueExpr); ok {
			spec.Frame = op.Tokens
		}
	}
	if p.failed() {
		return spec
	}
	p.expect(token.RPAREN, ")")
	spec.Loc = p.spanFrom(over.Pos)
	return spec
}

// parseCase parses: CASE [operand] WHEN cond THEN result ... [ELSE result] END
func (p *Parser) parseCase() ast.Expr {
	start := p.tok().Pos
	p.next() // CASE

	c := &ast.CaseExpr{}
	if !p.check(token.WHEN) {
		c.Operand = p.parseExpr()
	}
	for !p.failed() && p.check(token.WHEN) {
		whenStart := p.tok().Pos
		p.next()
		when := &ast.WhenClause{Cond: p.parseExpr()}
		if _, ok := p.expect(token.THEN, "THEN"); !ok {
			return c
		}
		when.Result = p.parseExpr()
		when.Loc = p.spanFrom(whenStart)
		c.Whens = append(c.Whens, when)
	}
	if p.failed() {
		return c
	}
	if len(c.Whens) == 0 {
		p.fail(MissingClause, "WHEN")
		return c
	}
	if p.match(token.ELSE) {
		c.Else = p.parseExpr()
	}
	if _, ok := p.expect(token.END, "END"); !ok {
		return c
	}
	c.Loc = p.spanFrom(start)
	return c
}

// parseCast parses: CAST(expr AS type)
func (p *Parser) parseCast() ast.Expr {
	start := p.tok().Pos
	p.next() // CAST
	lparen, ok := p.expect(token.LPAREN, "(")
	if !ok {
		return nil
	}
	cast := &ast.CastExpr{Expr: p.parseExpr()}
	if _, ok := p.expect(token.AS, "AS"); !ok {
		return cast
	}
	typ := p.parseBalanced(lparen)
	if op, ok := typ.(*ast.OpaqueExpr); ok {
		cast.Type = op.Tokens
	}
	if len(cast.Type) == 0 && !p.failed() {
		p.fail(MissingClause, "type name")
	}
	if _, ok := p.expect(token.RPAREN, ")"); !ok {
		return cast
	}
	cast.Loc = p.spanFrom(start)
	return cast
}

// parseShortType parses the type after `::`: name [(args)].
func (p *Parser) parseShortType() []token.Token {
	if !isIdentToken(p.tok()) && !p.tok().Type.IsKeyword() {
		p.fail(UnexpectedToken, "type name")
		return nil
	}
	start := p.cur
	p.next()
	if p.check(token.LPAREN) {
		lparen := p.tok()
		p.next()
		p.parseBalanced(lparen)
		p.expect(token.RPAREN, ")")
	}
	return p.opaqueFrom(start).Tokens
}

// parseOpaque captures tokens the parser does not model until a delimiter
// at parenthesis depth zero.
func (p *Parser) parseOpaque() ast.Expr {
	start := p.cur
	depth := 0
	for {
		tok := p.tok()
		if tok.Type == token.EOF {
			break
		}
		if depth == 0 && isOpaqueDelimiter(tok.Type) {
			break
		}
		switch tok.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		p.next()
	}
	if p.cur == start {
		p.fail(UnexpectedToken, "expression")
		return nil
	}
	return p.opaqueFrom(start)
}

func isOpaqueDelimiter(t token.TokenType) bool {
	if t.IsComparison() {
		return true
	}
	switch t {
	case token.COMMA, token.RPAREN, token.SEMICOLON,
		token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER, token.LIMIT, token.OFFSET,
		token.UNION, token.INTERSECT, token.EXCEPT,
		token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS, token.NATURAL,
		token.ON, token.USING, token.AS, token.AND, token.OR,
		token.WHEN, token.THEN, token.ELSE, token.END,
		token.ASC, token.DESC, token.NULLS, token.IS, token.IN, token.LIKE, token.ILIKE, token.BETWEEN, token.NOT:
		return true
	}
	return false
}

// atExprEnd reports whether the current token cannot start an expression.
func (p *Parser) atExprEnd() bool {
	switch p.tok().Type {
	case token.EOF, token.SEMICOLON, token.RPAREN, token.COMMA,
		token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER, token.LIMIT,
		token.UNION, token.INTERSECT, token.EXCEPT:
		return true
	}
	return false
}
