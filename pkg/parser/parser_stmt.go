package parser

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// parseStatement parses: [WITH cte_list] select_body
func (p *Parser) parseStatement() *ast.Statement {
	stmt := &ast.Statement{}
	start := p.tok().Pos

	if p.check(token.WITH) {
		stmt.With = p.parseWith()
		if p.failed() {
			return stmt
		}
		if !p.check(token.SELECT) {
			p.fail(MissingClause, "SELECT")
			return stmt
		}
	} else if !p.check(token.SELECT) {
		p.fail(UnexpectedToken, "SELECT or WITH")
		return stmt
	}

	stmt.Body = p.parseSelectBody()
	stmt.Loc = p.spanFrom(start)
	return stmt
}

// parseNestedStatement parses a statement enclosed in parentheses whose
// opening parenthesis has already been consumed.
func (p *Parser) parseNestedStatement(lparen token.Token) (*ast.Statement, token.Token) {
	stmt := p.parseStatement()
	if p.failed() {
		return stmt, p.tok()
	}
	rparen, _ := p.expect(token.RPAREN, ")")
	stmt.Extent = token.Span{Start: lparen.End, End: rparen.Pos}
	return stmt, rparen
}

// startsStatement reports whether the current token can begin a statement.
func (p *Parser) startsStatement() bool {
	return p.check(token.SELECT) || p.check(token.WITH)
}

// parseWith parses: WITH [RECURSIVE] cte {, cte}
func (p *Parser) parseWith() *ast.WithClause {
	start := p.tok().Pos
	p.next() // WITH

	with := &ast.WithClause{}
	if p.match(token.RECURSIVE) {
		with.Recursive = true
	}
	for {
		cte := p.parseCTE()
		if p.failed() {
			return with
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.match(token.COMMA) {
			break
		}
	}
	with.Loc = p.spanFrom(start)
	return with
}

// parseCTE parses: name [(col, ...)] AS (statement)
func (p *Parser) parseCTE() *ast.CTE {
	cte := &ast.CTE{}
	cte.Name = p.parseIdent("CTE name")
	if p.failed() {
		return cte
	}

	if p.match(token.LPAREN) {
		cte.Columns = p.parseIdentList("column name")
		if _, ok := p.expect(token.RPAREN, ")"); !ok {
			return cte
		}
	}
	if _, ok := p.expect(token.AS, "AS"); !ok {
		return cte
	}
	lparen, ok := p.expect(token.LPAREN, "(")
	if !ok {
		return cte
	}
	if !p.startsStatement() {
		p.fail(MissingClause, "SELECT")
		return cte
	}
	body, rparen := p.parseNestedStatement(lparen)
	cte.Body = body
	cte.LParen = lparen.Span()
	cte.RParen = rparen.Span()
	cte.Loc = p.spanFrom(cte.Name.Pos())
	return cte
}

// parseIdentList parses: ident {, ident}
func (p *Parser) parseIdentList(expected string) []*ast.Ident {
	var out []*ast.Ident
	for {
		id := p.parseIdent(expected)
		if p.failed() {
			return out
		}
		out = append(out, id)
		if !p.match(token.COMMA) {
			return out
		}
	}
}

// parseSelectBody parses: select_core [set_op select_body]
func (p *Parser) parseSelectBody() *ast.SelectBody {
	start := p.tok().Pos
	body := &ast.SelectBody{}
	body.Left = p.parseSelectCore()
	if p.failed() {
		return body
	}

	switch p.tok().Type {
	case token.UNION:
		body.Op = ast.SetUnion
	case token.INTERSECT:
		body.Op = ast.SetIntersect
	case token.EXCEPT:
		body.Op = ast.SetExcept
	default:
		body.Loc = p.spanFrom(start)
		return body
	}
	p.next()
	if p.match(token.ALL) {
		body.All = true
	} else if p.match(token.DISTINCT) {
		body.Distinct = true
	}
	if !p.check(token.SELECT) {
		p.fail(MissingClause, "SELECT")
		return body
	}
	body.Right = p.parseSelectBody()
	body.Loc = p.spanFrom(start)
	return body
}

// parseSelectCore parses a single SELECT block and its clauses.
func (p *Parser) parseSelectCore() *ast.SelectCore {
	core := &ast.SelectCore{Select: p.tok()}
	start := p.tok().Pos
	p.next() // SELECT

	if p.match(token.DISTINCT) {
		core.Distinct = true
	} else if p.match(token.ALL) {
		core.All = true
	}

	if p.atExprEnd() {
		p.fail(MissingClause, "select list")
		return core
	}
	core.Columns = p.parseSelectList()

	if !p.failed() && p.check(token.FROM) {
		core.From = p.parseFrom()
	}
	if !p.failed() && p.check(token.WHERE) {
		kw := p.tok()
		p.next()
		cond := p.parseCondition()
		core.Where = &ast.WhereClause{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(kw.Pos)}, Cond: cond}
	}
	if !p.failed() && p.check(token.GROUP) {
		kw := p.tok()
		p.next()
		if _, ok := p.expect(token.BY, "BY"); ok {
			items := p.parseExprList()
			core.GroupBy = &ast.GroupByClause{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(kw.Pos)}, Items: items}
		}
	}
	if !p.failed() && p.check(token.HAVING) {
		kw := p.tok()
		p.next()
		cond := p.parseCondition()
		core.Having = &ast.HavingClause{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(kw.Pos)}, Cond: cond}
	}
	p.parseExtraClauses(core, false)
	if !p.failed() && p.check(token.ORDER) {
		kw := p.tok()
		p.next()
		if _, ok := p.expect(token.BY, "BY"); ok {
			items := p.parseOrderList()
			core.OrderBy = &ast.OrderByClause{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(kw.Pos)}, Items: items}
		}
	}
	if !p.failed() && p.check(token.LIMIT) {
		kw := p.tok()
		p.next()
		limit := &ast.LimitClause{Count: p.parseExpr()}
		if !p.failed() && p.match(token.OFFSET) {
			limit.Offset = p.parseExpr()
		}
		limit.Loc = p.spanFrom(kw.Pos)
		core.Limit = limit
	}
	p.parseExtraClauses(core, true)

	core.Loc = p.spanFrom(start)
	return core
}

// extraClauses are the clause words the parser keeps without modeling.
// The lexer leaves them as identifiers.
var extraClauses = map[string]bool{
	"qualify": true,
	"window":  true,
}

// parseExtraClauses captures clauses the parser does not model, such as
// QUALIFY. A body that does not parse as one expression is kept as tokens.
func (p *Parser) parseExtraClauses(core *ast.SelectCore, afterLimit bool) {
	for !p.failed() && p.startsExtraClause() {
		kw := p.tok()
		p.next()

		clause := &ast.ExtraClause{Keyword: kw, AfterLimit: afterLimit}
		save := p.cur
		clause.Body = p.parseExpr()
		if p.failed() || !(p.endsClauseAt(0) || p.startsExtraClause()) {
			p.err = nil
			p.cur = save
			clause.Body = p.parseOpaqueClause()
		}
		clause.Loc = p.spanFrom(kw.Pos)
		core.Extra = append(core.Extra, clause)
	}
}

// startsExtraClause reports whether the current word opens an unmodeled
// clause. A clause word with nothing after it is an alias.
func (p *Parser) startsExtraClause() bool {
	tok := p.tok()
	return tok.Type == token.IDENT && extraClauses[strings.ToLower(tok.Literal)] && !p.endsClauseAt(1)
}

// endsClauseAt reports whether the token n ahead closes a select clause.
func (p *Parser) endsClauseAt(n int) bool {
	switch p.peekTok(n).Type {
	case token.EOF, token.SEMICOLON, token.RPAREN, token.ORDER, token.LIMIT,
		token.UNION, token.INTERSECT, token.EXCEPT:
		return true
	}
	return false
}

// parseOpaqueClause consumes the tokens of a clause body up to the end of
// the clause.
func (p *Parser) parseOpaqueClause() ast.Expr {
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
		case token.SEMICOLON, token.ORDER, token.LIMIT, token.UNION, token.INTERSECT, token.EXCEPT:
			if depth == 0 {
				return p.opaqueFrom(start)
			}
		case token.IDENT:
			if depth == 0 && p.cur > start && p.startsExtraClause() {
				return p.opaqueFrom(start)
			}
		}
		p.next()
	}
	return p.opaqueFrom(start)
}

// parseCondition parses the expression after WHERE/HAVING/ON.
func (p *Parser) parseCondition() ast.Expr {
	if p.atExprEnd() {
		p.fail(MissingClause, "condition")
		return nil
	}
	return p.parseExpr()
}

// parseSelectList parses: select_item {, select_item}
func (p *Parser) parseSelectList() *ast.SelectList {
	start := p.tok().Pos
	list := &ast.SelectList{}
	for {
		col := p.parseSelectColumn()
		if p.failed() {
			return list
		}
		list.Items = append(list.Items, col)
		if !p.match(token.COMMA) {
			break
		}
	}
	list.Loc = p.spanFrom(start)
	return list
}

// parseSelectColumn parses: * | expr [[AS] alias]
func (p *Parser) parseSelectColumn() *ast.SelectColumn {
	start := p.tok().Pos
	col := &ast.SelectColumn{}
	if p.check(token.STAR) {
		star := p.tok()
		p.next()
		col.Expr = &ast.StarExpr{NodeInfo: ast.NodeInfo{Loc: star.Span()}}
	} else {
		col.Expr = p.parseExpr()
	}
	if p.failed() {
		return col
	}
	col.Alias = p.parseOptionalAlias()
	col.Loc = p.spanFrom(start)
	return col
}

// parseOptionalAlias parses: [AS ident | ident]
func (p *Parser) parseOptionalAlias() *ast.Alias {
	start := p.tok().Pos
	if p.match(token.AS) {
		name := p.parseIdent("alias")
		if p.failed() {
			return nil
		}
		return &ast.Alias{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(start)}, Name: name, ExplicitAs: true}
	}
	if tok := p.tok(); (tok.Type == token.IDENT || tok.Type == token.QIDENT) && !p.startsExtraClause() {
		name := p.parseIdent("alias")
		return &ast.Alias{NodeInfo: ast.NodeInfo{Loc: p.spanFrom(start)}, Name: name}
	}
	return nil
}

// parseFrom parses: FROM table_ref {join}
func (p *Parser) parseFrom() *ast.FromClause {
	start := p.tok().Pos
	p.next() // FROM

	from := &ast.FromClause{}
	from.Source = p.parseTableRef()
	for !p.failed() {
		switch {
		case p.check(token.COMMA):
			comma := p.tok()
			p.next()
			join := &ast.JoinClause{Type: ast.JoinComma, Keyword: comma.Span()}
			join.Table = p.parseTableRef()
			join.Loc = p.spanFrom(comma.Pos)
			from.Joins = append(from.Joins, join)
		case p.isJoinStart():
			from.Joins = append(from.Joins, p.parseJoin())
		default:
			from.Loc = p.spanFrom(start)
			return from
		}
	}
	return from
}

func (p *Parser) isJoinStart() bool {
	switch p.tok().Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL, token.CROSS, token.NATURAL:
		return true
	}
	return false
}

// parseTableRef parses: (name | template | (statement)) [[AS] alias]
func (p *Parser) parseTableRef() ast.TableRef {
	tok := p.tok()
	switch {
	case tok.Type == token.LPAREN:
		p.next()
		if !p.startsStatement() {
			p.fail(UnexpectedToken, "SELECT")
			return nil
		}
		body, _ := p.parseNestedStatement(tok)
		if p.failed() {
			return nil
		}
		derived := &ast.DerivedTable{Body: body}
		derived.Alias = p.parseOptionalAlias()
		derived.Loc = p.spanFrom(tok.Pos)
		return derived

	case tok.Type == token.TEMPLATE:
		p.next()
		tmpl := &ast.TemplateTable{Text: tok.Literal}
		tmpl.Alias = p.parseOptionalAlias()
		tmpl.Loc = p.spanFrom(tok.Pos)
		return tmpl

	case isIdentToken(tok):
		table := &ast.TableName{}
		table.Parts = p.parseQualifiedName()
		if p.failed() {
			return nil
		}
		table.Alias = p.parseOptionalAlias()
		table.Loc = p.spanFrom(tok.Pos)
		return table
	}

	if p.atExprEnd() {
		p.fail(MissingClause, "table name")
	} else {
		p.fail(UnexpectedToken, "table name")
	}
	return nil
}

// parseQualifiedName parses: ident {. ident}
func (p *Parser) parseQualifiedName() []*ast.Ident {
	parts := []*ast.Ident{p.parseIdent("name")}
	for !p.failed() && p.check(token.DOT) {
		p.next()
		parts = append(parts, p.parseIdent("name"))
	}
	return parts
}

// parseJoin parses: [NATURAL] [join_type] JOIN table_ref [ON expr | USING (cols)]
func (p *Parser) parseJoin() *ast.JoinClause {
	start := p.tok().Pos
	join := &ast.JoinClause{}
	if p.match(token.NATURAL) {
		join.Natural = true
	}

	switch p.tok().Type {
	case token.INNER:
		join.Type = ast.JoinInner
		p.next()
	case token.LEFT:
		join.Type = ast.JoinLeft
		p.next()
		join.Outer = p.match(token.OUTER)
	case token.RIGHT:
		join.Type = ast.JoinRight
		p.next()
		join.Outer = p.match(token.OUTER)
	case token.FULL:
		join.Type = ast.JoinFull
		p.next()
		join.Outer = p.match(token.OUTER)
	case token.CROSS:
		join.Type = ast.JoinCross
		p.next()
	}
	kw, ok := p.expect(token.JOIN, "JOIN")
	if !ok {
		return join
	}
	join.Keyword = token.Span{Start: start, End: kw.End}

	join.Table = p.parseTableRef()
	if p.failed() {
		return join
	}

	switch {
	case p.check(token.ON):
		if join.Natural || join.Type == ast.JoinCross {
			p.fail(UnexpectedToken, "no join condition")
			return join
		}
		p.next()
		join.On = p.parseCondition()
	case p.check(token.USING):
		p.next()
		if _, ok := p.expect(token.LPAREN, "("); !ok {
			return join
		}
		join.Using = p.parseIdentList("column name")
		if p.failed() {
			return join
		}
		p.expect(token.RPAREN, ")")
	case !join.Natural && join.Type != ast.JoinCross:
		p.fail(MissingClause, "ON or USING")
		return join
	}

	join.Loc = p.spanFrom(start)
	return join
}

// parseOrderList parses: expr [ASC|DESC] [NULLS FIRST|LAST] {, ...}
func (p *Parser) parseOrderList() []*ast.OrderItem {
	var items []*ast.OrderItem
	for {
		start := p.tok().Pos
		item := &ast.OrderItem{Expr: p.parseExpr()}
		if p.failed() {
			return items
		}
		if p.match(token.ASC) {
			item.Dir = ast.SortAsc
		} else if p.match(token.DESC) {
			item.Dir = ast.SortDesc
		}
		if p.match(token.NULLS) {
			switch {
			case p.match(token.FIRST):
				item.Nulls = "first"
			case p.match(token.LAST):
				item.Nulls = "last"
			default:
				p.fail(UnexpectedToken, "FIRST or LAST")
				return items
			}
		}
		item.Loc = p.spanFrom(start)
		items = append(items, item)
		if !p.match(token.COMMA) {
			return items
		}
	}
}
