package format

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// formatStatement prints stmt and its comments. Like every block printer it
// leaves the cursor at the start of a fresh line.
func (p *Printer) formatStatement(stmt *ast.Statement) {
	if stmt == nil {
		return
	}

	p.formatComments(p.comments.leading(stmt))

	if stmt.With != nil {
		p.formatWithClause(stmt.With)
	}
	p.formatSelectBody(stmt.Body)

	if stmt.Semicolon {
		p.trimNewline()
		p.write(";")
		p.writeln()
	}

	p.formatComments(p.comments.trailing(stmt))
}

func (p *Printer) formatWithClause(with *ast.WithClause) {
	p.kw(token.WITH)
	if with.Recursive {
		p.space()
		p.kw(token.RECURSIVE)
	}
	p.space()

	leading := p.cfg.CommaStyle == style.CommaLeading
	for i, cte := range with.CTEs {
		if i > 0 {
			p.writeln()
			if leading {
				p.write(", ")
			}
		}
		p.write(cte.Name.Raw)
		if len(cte.Columns) > 0 {
			p.write(" (")
			p.formatList(len(cte.Columns), func(i int) { p.write(cte.Columns[i].Raw) }, ", ")
			p.write(")")
		}
		p.space()
		p.kw(token.AS)
		p.write(" (")
		p.writeln()
		p.writeln()

		p.indent()
		p.formatStatement(cte.Body)
		p.dedent()

		p.writeln()
		p.write(")")
		if !leading && i < len(with.CTEs)-1 {
			p.write(",")
		}
		p.writeln()
	}
	p.writeln()
}

func (p *Printer) formatSelectBody(body *ast.SelectBody) {
	if body == nil {
		return
	}

	p.formatSelectCore(body.Left)

	if body.Op == ast.SetNone {
		return
	}
	switch body.Op {
	case ast.SetUnion:
		p.kw(token.UNION)
	case ast.SetIntersect:
		p.kw(token.INTERSECT)
	case ast.SetExcept:
		p.kw(token.EXCEPT)
	}
	if body.All {
		p.space()
		p.kw(token.ALL)
	} else if body.Distinct {
		p.space()
		p.kw(token.DISTINCT)
	}
	p.writeln()
	p.formatSelectBody(body.Right)
}

func (p *Printer) formatSelectCore(sc *ast.SelectCore) {
	if sc == nil {
		return
	}
	defer p.enterScope(sc)()

	// SELECT [DISTINCT]
	p.kw(token.SELECT)
	if sc.Distinct {
		p.space()
		p.kw(token.DISTINCT)
	} else if sc.All {
		p.space()
		p.kw(token.ALL)
	}

	starOnly := p.isStarOnly(sc)
	switch {
	case starOnly && isBareStarSelect(sc):
		p.write(" * ")
		p.formatFromClause(sc.From)
		p.writeln()
		return
	case starOnly:
		p.write(" *")
		p.writeln()
	default:
		p.writeln()
		p.indent()
		p.formatLines(len(sc.Columns.Items), func(i int) { p.formatSelectColumn(sc.Columns.Items[i]) })
		p.dedent()
	}

	if sc.From != nil {
		p.formatFromClause(sc.From)
		p.writeln()
	}
	if sc.Where != nil {
		p.kw(token.WHERE)
		p.writeln()
		p.formatConditionBlock(sc.Where.Cond)
	}
	if sc.GroupBy != nil {
		p.kw(token.GROUP, token.BY)
		p.space()
		p.formatList(len(sc.GroupBy.Items), func(i int) { p.formatExpr(sc.GroupBy.Items[i]) }, ", ")
		p.writeln()
	}
	if sc.Having != nil {
		p.kw(token.HAVING)
		p.writeln()
		p.formatConditionBlock(sc.Having.Cond)
	}
	p.formatExtraClauses(sc.Extra, false)
	if sc.OrderBy != nil {
		p.kw(token.ORDER, token.BY)
		p.space()
		p.formatOrderItems(sc.OrderBy.Items)
		p.writeln()
	}
	if sc.Limit != nil {
		p.kw(token.LIMIT)
		p.space()
		p.formatExpr(sc.Limit.Count)
		if sc.Limit.Offset != nil {
			p.space()
			p.kw(token.OFFSET)
			p.space()
			p.formatExpr(sc.Limit.Offset)
		}
		p.writeln()
	}
	p.formatExtraClauses(sc.Extra, true)
}

// formatExtraClauses prints unmodeled clauses like WHERE: the opening word
// cased as a keyword, the body as an indented block.
func (p *Printer) formatExtraClauses(extra []*ast.ExtraClause, afterLimit bool) {
	for _, x := range extra {
		if x.AfterLimit != afterLimit {
			continue
		}
		p.keyword(x.Keyword.Literal)
		p.writeln()
		p.formatConditionBlock(x.Body)
	}
}

// isBareStarSelect reports whether the core is nothing more than a select
// from one named table, which keeps FROM on the SELECT line.
func isBareStarSelect(sc *ast.SelectCore) bool {
	if sc.From == nil || sc.HasJoins() {
		return false
	}
	if _, derived := sc.From.Source.(*ast.DerivedTable); derived {
		return false
	}
	return sc.Where == nil && sc.GroupBy == nil && sc.Having == nil &&
		sc.OrderBy == nil && sc.Limit == nil && len(sc.Extra) == 0
}

func (p *Printer) formatSelectColumn(col *ast.SelectColumn) {
	if c, ok := col.Expr.(*ast.CaseExpr); ok {
		p.formatCaseBlock(c)
	} else {
		p.formatExpr(col.Expr)
	}
	p.formatAlias(col.Alias)
}

func (p *Printer) formatAlias(alias *ast.Alias) {
	if alias == nil || alias.Name == nil {
		return
	}
	p.space()
	p.kw(token.AS)
	p.space()
	p.write(alias.Name.Raw)
}

// formatConditionBlock prints the and/or chain of cond one operand per
// indented line with the operator trailing. A chain nested in another
// continues one level deeper than its first line.
func (p *Printer) formatConditionBlock(cond ast.Expr) {
	p.indent()
	p.formatChain(cond, "", false)
	p.dedent()
}

// formatChain prints the chain of e and ends its last line with trailer.
func (p *Printer) formatChain(e ast.Expr, trailer string, nested bool) {
	op, operands := splitChain(e)
	for i, operand := range operands {
		if nested && i == 1 {
			p.indent()
		}
		next := op.String()
		if i == len(operands)-1 {
			next = trailer
		}
		if _, inner := splitChain(operand); len(inner) > 1 {
			p.formatChain(operand, next, true)
			continue
		}
		p.formatExpr(operand)
		if next != "" {
			p.space()
			p.keyword(next)
		}
		p.writeln()
	}
	if nested && len(operands) > 1 {
		p.dedent()
	}
}

// splitChain flattens the top-level run of one logical operator.
func splitChain(e ast.Expr) (token.TokenType, []ast.Expr) {
	b, ok := e.(*ast.BinaryExpr)
	if !ok || !b.IsLogical() {
		return token.AND, []ast.Expr{e}
	}
	return b.Op, flatten(e, b.Op)
}

func flatten(e ast.Expr, op token.TokenType) []ast.Expr {
	b, ok := e.(*ast.BinaryExpr)
	if !ok || b.Op != op {
		return []ast.Expr{e}
	}
	return append(flatten(b.Left, op), flatten(b.Right, op)...)
}

func (p *Printer) formatFromClause(from *ast.FromClause) {
	p.kw(token.FROM)
	p.space()
	p.formatTableRef(from.Source)

	for _, join := range from.Joins {
		if join.Type == ast.JoinComma && p.cfg.JoinStyle == style.JoinAllowImplicit {
			p.write(", ")
			p.formatTableRef(join.Table)
			continue
		}
		p.writeln()
		p.formatJoin(join)
	}
}

func (p *Printer) formatTableRef(ref ast.TableRef) {
	switch t := ref.(type) {
	case *ast.TableName:
		p.formatIdents(t.Parts)
	case *ast.DerivedTable:
		p.formatNested(t.Body)
	case *ast.TemplateTable:
		p.write(t.Text)
	default:
		return
	}
	if t, ok := ref.(*ast.TableName); ok && p.dropped[t] {
		return
	}
	p.formatAlias(ref.TableAlias())
}

// aliasRewrite is how a column qualifier naming a dropped alias is printed.
type aliasRewrite struct {
	qualifier string // "" drops the qualifier
	table     string
}

// enterScope applies the alias policy to the tables of sc and returns the
// function restoring the enclosing scope. Nested queries keep outer rewrites
// but qualify with the table name instead of dropping the qualifier.
func (p *Printer) enterScope(sc *ast.SelectCore) func() {
	outer := p.rewrites
	inner := make(map[string]aliasRewrite, len(outer))
	for alias, rw := range outer {
		rw.qualifier = rw.table
		inner[alias] = rw
	}
	p.rewrites = inner
	restore := func() { p.rewrites = outer }
	if sc.From == nil {
		return restore
	}

	for _, ref := range sc.From.Tables() {
		delete(inner, strings.ToLower(ast.RefName(ref)))
	}
	if !p.cfg.AliasPolicy.AllowsTableAlias(sc.HasJoins()) {
		for _, ref := range sc.From.Tables() {
			table, ok := ref.(*ast.TableName)
			if !ok || table.Alias == nil {
				continue
			}
			qualifier, ok := sc.AliasQualifier(table)
			if !ok {
				continue
			}
			p.dropped[table] = true
			inner[strings.ToLower(table.Alias.Name.Name)] = aliasRewrite{qualifier: qualifier, table: table.Name().Raw}
		}
	}
	return restore
}

// rewrite reports how a qualifier is printed under the current scope.
func (p *Printer) rewrite(qualifier *ast.Ident) (string, bool) {
	rw, ok := p.rewrites[strings.ToLower(qualifier.Name)]
	return rw.qualifier, ok
}

// isStarOnly is SelectCore.IsStarOnly after alias rewriting, so t.* on a
// table that loses its alias counts as a bare star.
func (p *Printer) isStarOnly(sc *ast.SelectCore) bool {
	if sc.IsStarOnly() {
		return true
	}
	if sc.Columns == nil || len(sc.Columns.Items) != 1 {
		return false
	}
	star, ok := sc.Columns.Items[0].Expr.(*ast.StarExpr)
	if !ok || len(star.Qualifier) != 1 {
		return false
	}
	q, ok := p.rewrite(star.Qualifier[0])
	return ok && q == ""
}

func (p *Printer) formatJoin(join *ast.JoinClause) {
	if join.Natural {
		p.kw(token.NATURAL)
		p.space()
	}
	p.keyword(p.joinKeyword(join.Type))
	p.space()
	p.formatTableRef(join.Table)

	switch {
	case join.On != nil:
		p.space()
		p.kw(token.ON)
		if _, operands := splitChain(join.On); len(operands) == 1 {
			p.space()
			p.formatExpr(join.On)
			return
		}
		p.writeln()
		p.formatConditionBlock(join.On)
		p.trimNewline()
	case len(join.Using) > 0:
		p.space()
		p.kw(token.USING)
		p.write(" (")
		p.formatIdentList(join.Using)
		p.write(")")
	}
}

// joinKeyword names the join in canonical form. OUTER is always dropped.
func (p *Printer) joinKeyword(t ast.JoinType) string {
	switch t {
	case ast.JoinPlain:
		if p.cfg.JoinStyle == style.JoinExplicitInner {
			return ast.JoinInner.String()
		}
	case ast.JoinComma:
		return ast.JoinCross.String()
	}
	return t.String()
}

func (p *Printer) formatOrderItems(items []*ast.OrderItem) {
	p.formatList(len(items), func(i int) {
		item := items[i]
		p.formatExpr(item.Expr)
		switch item.Dir {
		case ast.SortAsc:
			p.space()
			p.kw(token.ASC)
		case ast.SortDesc:
			p.space()
			p.kw(token.DESC)
		}
		switch item.Nulls {
		case "first":
			p.space()
			p.kw(token.NULLS, token.FIRST)
		case "last":
			p.space()
			p.kw(token.NULLS, token.LAST)
		}
	}, ", ")
}

// formatNested prints a parenthesized statement as an indented block and
// leaves the cursor after the closing parenthesis.
func (p *Printer) formatNested(stmt *ast.Statement) {
	p.write("(")
	p.writeln()
	p.indent()
	p.formatStatement(stmt)
	p.dedent()
	p.write(")")
}

func (p *Printer) formatIdents(parts []*ast.Ident) {
	p.formatList(len(parts), func(i int) { p.write(parts[i].Raw) }, ".")
}

func (p *Printer) formatIdentList(idents []*ast.Ident) {
	p.formatList(len(idents), func(i int) { p.write(idents[i].Raw) }, ", ")
}
