package ast

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// ColumnRef is a possibly qualified column reference (t.col, schema.t.col).
type ColumnRef struct {
	NodeInfo
	Parts []*Ident
}

func (*ColumnRef) exprNode() {}

// Column returns the unqualified column identifier.
func (c *ColumnRef) Column() *Ident { return c.Parts[len(c.Parts)-1] }

// Qualifier returns the table qualifier identifier, or nil.
func (c *ColumnRef) Qualifier() *Ident {
	if len(c.Parts) < 2 {
		return nil
	}
	return c.Parts[len(c.Parts)-2]
}

// StarExpr is `*` or `t.*`.
type StarExpr struct {
	NodeInfo
	Qualifier []*Ident
}

func (*StarExpr) exprNode() {}

// LiteralKind classifies literals.
type LiteralKind int

// Literal kinds.
const (
	LitNumber LiteralKind = iota
	LitString
	LitTrue
	LitFalse
	LitNull
)

// Literal is a number, string, boolean or NULL literal.
type Literal struct {
	NodeInfo
	Kind  LiteralKind
	Raw   string // source text
	Value string // unescaped string contents for LitString
}

func (*Literal) exprNode() {}

// BinaryExpr is an infix operation: comparison, arithmetic, ||, AND, OR.
type BinaryExpr struct {
	NodeInfo
	Op     token.TokenType
	OpText string
	OpSpan token.Span
	Left   Expr
	Right  Expr
}

func (*BinaryExpr) exprNode() {}

// IsLogical reports whether the operator is AND or OR.
func (b *BinaryExpr) IsLogical() bool {
	return b.Op == token.AND || b.Op == token.OR
}

// UnaryExpr is NOT expr, -expr or +expr.
type UnaryExpr struct {
	NodeInfo
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	NodeInfo
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// InExpr is expr [NOT] IN (values) or expr [NOT] IN (subquery).
type InExpr struct {
	NodeInfo
	Expr   Expr
	Not    bool
	Values []Expr
	Query  *Statement
	LParen token.Span
	RParen token.Span
}

func (*InExpr) exprNode() {}

// LikeExpr is expr [NOT] LIKE|ILIKE pattern.
type LikeExpr struct {
	NodeInfo
	Expr    Expr
	Not     bool
	ILike   bool
	Pattern Expr
}

func (*LikeExpr) exprNode() {}

// IsExpr is expr IS [NOT] NULL|TRUE|FALSE, or expr IS [NOT] DISTINCT FROM
// other, in which case Value is token.DISTINCT.
type IsExpr struct {
	NodeInfo
	Expr  Expr
	Not   bool
	Value token.TokenType
	Other Expr
}

func (*IsExpr) exprNode() {}

// BetweenExpr is expr [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// ExistsExpr is EXISTS (subquery).
type ExistsExpr struct {
	NodeInfo
	Query *Statement
}

func (*ExistsExpr) exprNode() {}

// SubqueryExpr is a scalar subquery.
type SubqueryExpr struct {
	NodeInfo
	Query *Statement
}

func (*SubqueryExpr) exprNode() {}

// CaseExpr is a CASE expression, searched or simple.
type CaseExpr struct {
	NodeInfo
	Operand Expr
	Whens   []*WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause is one WHEN ... THEN ... branch.
type WhenClause struct {
	NodeInfo
	Cond   Expr
	Result Expr
}

// FuncCall is a function call, optionally a window function.
type FuncCall struct {
	NodeInfo
	Name     []*Ident
	Distinct bool
	Star     bool
	Args     []Expr
	Over     *WindowSpec
}

func (*FuncCall) exprNode() {}

// FuncName returns the lowercase unqualified function name.
func (f *FuncCall) FuncName() string {
	return strings.ToLower(f.Name[len(f.Name)-1].Name)
}

// IsWindow reports whether the call has an OVER clause.
func (f *FuncCall) IsWindow() bool { return f.Over != nil }

var aggregateFuncs = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"array_agg": true, "string_agg": true, "listagg": true, "group_concat": true,
	"bool_and": true, "bool_or": true, "every": true, "any_value": true,
	"stddev": true, "stddev_pop": true, "stddev_samp": true,
	"variance": true, "var_pop": true, "var_samp": true,
	"median": true, "mode": true, "count_if": true, "approx_count_distinct": true,
}

// IsAggregate reports whether the call is a plain (non-window) aggregate.
func (f *FuncCall) IsAggregate() bool {
	return f.Over == nil && aggregateFuncs[f.FuncName()]
}

// WindowSpec is the OVER (...) part of a window function call.
type WindowSpec struct {
	NodeInfo
	Name        *Ident // OVER w
	PartitionBy []Expr
	OrderBy     []*OrderItem
	Frame       []token.Token
}

// CastExpr is CAST(expr AS type) or expr::type.
type CastExpr struct {
	NodeInfo
	Expr      Expr
	Type      []token.Token
	Shorthand bool
}

func (*CastExpr) exprNode() {}

// TemplateExpr is a template expression in expression position.
type TemplateExpr struct {
	NodeInfo
	Text string
}

func (*TemplateExpr) exprNode() {}

// OpaqueExpr is a run of tokens the parser does not model. It keeps the
// tokens so the formatter can reproduce them.
type OpaqueExpr struct {
	NodeInfo
	Tokens []token.Token
}

func (*OpaqueExpr) exprNode() {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

// ContainsAggregate reports whether e contains a non-window aggregate call
// outside of nested subqueries.
func ContainsAggregate(e Expr) bool {
	found := false
	Inspect(e, func(n Node) bool {
		if found {
			return false
		}
		switch v := n.(type) {
		case *Statement:
			return false
		case *FuncCall:
			if v.IsAggregate() {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
