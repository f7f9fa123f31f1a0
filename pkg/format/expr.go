package format

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

func (p *Printer) formatExpr(e ast.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *ast.Literal:
		p.formatLiteral(expr)
	case *ast.ColumnRef:
		p.formatColumnRef(expr)
	case *ast.StarExpr:
		p.formatStar(expr)
	case *ast.BinaryExpr:
		p.formatBinaryExpr(expr)
	case *ast.UnaryExpr:
		p.formatUnaryExpr(expr)
	case *ast.ParenExpr:
		p.write("(")
		p.formatExpr(expr.Expr)
		p.write(")")
	case *ast.FuncCall:
		p.formatFuncCall(expr)
	case *ast.CaseExpr:
		p.formatCaseInline(expr)
	case *ast.CastExpr:
		p.formatCastExpr(expr)
	case *ast.InExpr:
		p.formatInExpr(expr)
	case *ast.BetweenExpr:
		p.formatBetweenExpr(expr)
	case *ast.IsExpr:
		p.formatExpr(expr.Expr)
		p.space()
		p.kw(token.IS)
		if expr.Not {
			p.space()
			p.kw(token.NOT)
		}
		p.space()
		p.kw(expr.Value)
		if expr.Other != nil {
			p.space()
			p.kw(token.FROM)
			p.space()
			p.formatExpr(expr.Other)
		}
	case *ast.LikeExpr:
		p.formatLikeExpr(expr)
	case *ast.SubqueryExpr:
		p.formatNested(expr.Query)
	case *ast.ExistsExpr:
		p.kw(token.EXISTS)
		p.space()
		p.formatNested(expr.Query)
	case *ast.TemplateExpr:
		// Templates are preserved exactly as written
		p.write(expr.Text)
	case *ast.OpaqueExpr:
		p.formatTokens(expr.Tokens)
	}
}

func (p *Printer) formatColumnRef(ref *ast.ColumnRef) {
	if len(ref.Parts) == 2 {
		if q, ok := p.rewrite(ref.Parts[0]); ok {
			if q != "" {
				p.write(q + ".")
			}
			p.write(ref.Parts[1].Raw)
			return
		}
	}
	p.formatIdents(ref.Parts)
}

func (p *Printer) formatStar(star *ast.StarExpr) {
	switch {
	case len(star.Qualifier) == 1:
		q, ok := p.rewrite(star.Qualifier[0])
		if !ok {
			q = star.Qualifier[0].Raw
		}
		if q != "" {
			p.write(q + ".")
		}
	case len(star.Qualifier) > 1:
		p.formatIdents(star.Qualifier)
		p.write(".")
	}
	p.write("*")
}

// formatValue prints an expression in value position. A double-quoted name
// there is a string written with the wrong quotes and is re-quoted.
func (p *Printer) formatValue(e ast.Expr) {
	if ref, ok := e.(*ast.ColumnRef); ok && len(ref.Parts) == 1 {
		if id := ref.Parts[0]; id.Quoted && strings.HasPrefix(id.Raw, `"`) {
			p.write(p.cfg.Quote(id.Name))
			return
		}
	}
	p.formatExpr(e)
}

// isPlainColumn reports whether e is an unquoted column reference.
func isPlainColumn(e ast.Expr) bool {
	ref, ok := e.(*ast.ColumnRef)
	return ok && !ref.Column().Quoted
}

func (p *Printer) formatLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case ast.LitString:
		p.write(p.cfg.Quote(lit.Value))
	case ast.LitTrue:
		p.kw(token.TRUE)
	case ast.LitFalse:
		p.kw(token.FALSE)
	case ast.LitNull:
		p.kw(token.NULL)
	default:
		p.write(lit.Raw)
	}
}

func (p *Printer) formatBinaryExpr(expr *ast.BinaryExpr) {
	p.formatExpr(expr.Left)
	p.space()
	p.write(p.operator(expr.Op, expr.OpText))
	p.space()
	if expr.Op.IsComparison() && isPlainColumn(expr.Left) {
		p.formatValue(expr.Right)
		return
	}
	p.formatExpr(expr.Right)
}

// operator renders an operator token: keywords are cased and <> becomes !=.
func (p *Printer) operator(t token.TokenType, text string) string {
	switch {
	case t == token.NE:
		return "!="
	case t.IsKeyword():
		return p.cfg.Keyword(text)
	}
	return text
}

func (p *Printer) formatUnaryExpr(expr *ast.UnaryExpr) {
	switch expr.Op {
	case token.NOT:
		p.kw(token.NOT)
		p.space()
	case token.MINUS:
		p.write("-")
	case token.PLUS:
		p.write("+")
	}
	p.formatExpr(expr.Expr)
}

func (p *Printer) formatFuncCall(fn *ast.FuncCall) {
	p.formatIdents(fn.Name)
	p.write("(")

	if fn.Distinct {
		p.kw(token.DISTINCT)
		p.space()
	}

	if fn.Star {
		p.write("*")
	} else {
		p.formatList(len(fn.Args), func(i int) { p.formatExpr(fn.Args[i]) }, ", ")
	}

	p.write(")")

	// OVER clause (window function)
	if fn.Over != nil {
		p.space()
		p.formatWindowSpec(fn.Over)
	}
}

func (p *Printer) formatWindowSpec(w *ast.WindowSpec) {
	p.kw(token.OVER)
	p.space()
	if w.Name != nil {
		p.write(w.Name.Raw)
		return
	}

	p.write("(")
	sep := func() {}
	if len(w.PartitionBy) > 0 {
		p.kw(token.PARTITION, token.BY)
		p.space()
		p.formatList(len(w.PartitionBy), func(i int) { p.formatExpr(w.PartitionBy[i]) }, ", ")
		sep = p.space
	}
	if len(w.OrderBy) > 0 {
		sep()
		p.kw(token.ORDER, token.BY)
		p.space()
		p.formatOrderItems(w.OrderBy)
		sep = p.space
	}
	if len(w.Frame) > 0 {
		sep()
		p.formatTokens(w.Frame)
	}
	p.write(")")
}

// formatCaseBlock prints a CASE expression over several lines. It is used
// for CASE expressions that make up a whole select column.
func (p *Printer) formatCaseBlock(c *ast.CaseExpr) {
	p.kw(token.CASE)
	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}
	p.writeln()

	p.indent()
	for _, w := range c.Whens {
		p.formatWhen(w)
		p.writeln()
	}
	if c.Else != nil {
		p.kw(token.ELSE)
		p.space()
		p.formatExpr(c.Else)
		p.writeln()
	}
	p.dedent()

	p.kw(token.END)
}

func (p *Printer) formatCaseInline(c *ast.CaseExpr) {
	p.kw(token.CASE)
	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}
	for _, w := range c.Whens {
		p.space()
		p.formatWhen(w)
	}
	if c.Else != nil {
		p.space()
		p.kw(token.ELSE)
		p.space()
		p.formatExpr(c.Else)
	}
	p.space()
	p.kw(token.END)
}

func (p *Printer) formatWhen(w *ast.WhenClause) {
	p.kw(token.WHEN)
	p.space()
	p.formatExpr(w.Cond)
	p.space()
	p.kw(token.THEN)
	p.space()
	p.formatExpr(w.Result)
}

func (p *Printer) formatCastExpr(c *ast.CastExpr) {
	if c.Shorthand {
		p.formatExpr(c.Expr)
		p.write("::")
		p.formatTokens(c.Type)
		return
	}
	p.kw(token.CAST)
	p.write("(")
	p.formatExpr(c.Expr)
	p.space()
	p.kw(token.AS)
	p.space()
	p.formatTokens(c.Type)
	p.write(")")
}

func (p *Printer) formatInExpr(in *ast.InExpr) {
	p.formatExpr(in.Expr)
	if in.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	p.kw(token.IN)
	p.space()

	switch {
	case in.Query != nil:
		p.formatNested(in.Query)
	case len(in.Values) > style.MaxInlineInItems:
		p.write("(")
		p.writeln()
		p.indent()
		p.formatLines(len(in.Values), func(i int) { p.formatValue(in.Values[i]) })
		p.dedent()
		p.write(")")
	default:
		p.write("(")
		p.formatList(len(in.Values), func(i int) { p.formatValue(in.Values[i]) }, ", ")
		p.write(")")
	}
}

func (p *Printer) formatBetweenExpr(b *ast.BetweenExpr) {
	p.formatExpr(b.Expr)
	if b.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	p.kw(token.BETWEEN)
	p.space()
	p.formatExpr(b.Low)
	p.space()
	p.kw(token.AND)
	p.space()
	p.formatExpr(b.High)
}

func (p *Printer) formatLikeExpr(like *ast.LikeExpr) {
	p.formatExpr(like.Expr)
	if like.Not {
		p.space()
		p.kw(token.NOT)
	}
	p.space()
	if like.ILike {
		p.kw(token.ILIKE)
	} else {
		p.kw(token.LIKE)
	}
	p.space()
	p.formatValue(like.Pattern)
}

// formatTokens prints tokens the parser keeps unstructured. Keywords are
// cased and a single space is kept wherever the source had a gap.
func (p *Printer) formatTokens(toks []token.Token) {
	for i, tok := range toks {
		if i > 0 && toks[i-1].End.Offset < tok.Pos.Offset {
			p.space()
		}
		p.write(p.operator(tok.Type, tok.Literal))
	}
}
