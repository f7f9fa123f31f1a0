package ast

import (
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Statement is a complete query: optional CTEs followed by a select body.
type Statement struct {
	NodeInfo
	// Extent is the region whose comments belong to this statement: the whole
	// document for the root, the inside of the parentheses for nested ones.
	Extent    token.Span
	With      *WithClause
	Body      *SelectBody
	Semicolon bool
}

// WithClause holds the CTE definitions of a statement.
type WithClause struct {
	NodeInfo
	Recursive bool
	CTEs      []*CTE
}

// CTE is a single common table expression definition.
type CTE struct {
	NodeInfo
	Name    *Ident
	Columns []*Ident
	Body    *Statement
	LParen  token.Span
	RParen  token.Span
}

// SetOp is a set operator joining select cores.
type SetOp int

// Set operators.
const (
	SetNone SetOp = iota
	SetUnion
	SetIntersect
	SetExcept
)

// SelectBody is a select core optionally combined with more via set operators.
type SelectBody struct {
	NodeInfo
	Left     *SelectCore
	Op       SetOp
	All      bool
	Distinct bool // explicit UNION DISTINCT
	Right    *SelectBody
}

// Cores returns every select core of the body, left to right.
func (b *SelectBody) Cores() []*SelectCore {
	var out []*SelectCore
	for body := b; body != nil; body = body.Right {
		if body.Left != nil {
			out = append(out, body.Left)
		}
	}
	return out
}

// SelectCore is a single SELECT ... FROM ... block.
type SelectCore struct {
	NodeInfo
	Select   token.Token // the SELECT keyword
	Distinct bool
	All      bool
	Columns  *SelectList
	From     *FromClause
	Where    *WhereClause
	GroupBy  *GroupByClause
	Having   *HavingClause
	OrderBy  *OrderByClause
	Limit    *LimitClause
	Extra    []*ExtraClause
}

// IsStarOnly reports whether the select list is a lone unqualified `*`.
func (c *SelectCore) IsStarOnly() bool {
	if c.Columns == nil || len(c.Columns.Items) != 1 {
		return false
	}
	star, ok := c.Columns.Items[0].Expr.(*StarExpr)
	return ok && len(star.Qualifier) == 0
}

// HasJoins reports whether the FROM clause has any join.
func (c *SelectCore) HasJoins() bool {
	return c.From != nil && len(c.From.Joins) > 0
}

// AliasQualifier returns the qualifier that replaces the alias of table once
// the alias is dropped: "" for a lone table, the table name otherwise. ok is
// false when another table in the FROM clause goes by the same name.
func (c *SelectCore) AliasQualifier(table *TableName) (qualifier string, ok bool) {
	name := table.Name()
	if !c.HasJoins() {
		return "", true
	}
	for _, other := range c.From.Tables() {
		if other == TableRef(table) {
			continue
		}
		if strings.EqualFold(RefName(other), name.Name) {
			return "", false
		}
		if t, isTable := other.(*TableName); isTable && strings.EqualFold(t.Name().Name, name.Name) {
			return "", false
		}
	}
	return name.Raw, true
}

// SelectList is the comma-separated list of select columns.
type SelectList struct {
	NodeInfo
	Items []*SelectColumn
}

// SelectColumn is one item of a select list.
type SelectColumn struct {
	NodeInfo
	Expr  Expr
	Alias *Alias
}

// OutputName returns the alias name, or the column name for a bare column
// reference, or "".
func (c *SelectColumn) OutputName() string {
	if c.Alias != nil {
		return c.Alias.Name.Name
	}
	if ref, ok := c.Expr.(*ColumnRef); ok {
		return ref.Column().Name
	}
	return ""
}

// FromClause is the FROM source and its joins.
type FromClause struct {
	NodeInfo
	Source TableRef
	Joins  []*JoinClause
}

// Tables returns the source followed by each joined table.
func (f *FromClause) Tables() []TableRef {
	out := []TableRef{f.Source}
	for _, j := range f.Joins {
		out = append(out, j.Table)
	}
	return out
}

// TableName is a reference to a (possibly schema-qualified) table.
type TableName struct {
	NodeInfo
	Parts []*Ident
	Alias *Alias
}

func (*TableName) tableRef() {}

// TableAlias implements TableRef.
func (t *TableName) TableAlias() *Alias { return t.Alias }

// Name returns the unqualified table name.
func (t *TableName) Name() *Ident { return t.Parts[len(t.Parts)-1] }

// RefName returns the name other clauses use to qualify columns: the alias
// when present, otherwise the table name.
func (t *TableName) RefName() string {
	if t.Alias != nil {
		return t.Alias.Name.Name
	}
	return t.Name().Name
}

// DerivedTable is a parenthesized subquery used as a table.
type DerivedTable struct {
	NodeInfo
	Body  *Statement
	Alias *Alias
}

func (*DerivedTable) tableRef() {}

// TableAlias implements TableRef.
func (d *DerivedTable) TableAlias() *Alias { return d.Alias }

// TemplateTable is a template expression used as a table, e.g. {{ ref('x') }}.
type TemplateTable struct {
	NodeInfo
	Text  string
	Alias *Alias
}

func (*TemplateTable) tableRef() {}

// TableAlias implements TableRef.
func (t *TemplateTable) TableAlias() *Alias { return t.Alias }

// RefName returns the name columns use to qualify a table reference.
func RefName(ref TableRef) string {
	switch t := ref.(type) {
	case *TableName:
		return t.RefName()
	default:
		if a := ref.TableAlias(); a != nil {
			return a.Name.Name
		}
	}
	return ""
}

// JoinType is the kind of join.
type JoinType int

// Join types. JoinPlain is a bare JOIN, JoinComma is an implicit `FROM a, b`.
const (
	JoinPlain JoinType = iota
	JoinInner
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
	JoinComma
)

// String returns the canonical keyword text, uppercase.
func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	case JoinCross:
		return "CROSS JOIN"
	case JoinComma:
		return ","
	}
	return "JOIN"
}

// JoinClause is a single join in a FROM clause.
type JoinClause struct {
	NodeInfo
	Type    JoinType
	Natural bool
	Outer   bool
	// Keyword spans the join keywords (or the comma of an implicit join).
	Keyword token.Span
	Table   TableRef
	On      Expr
	Using   []*Ident
}

// WhereClause is a WHERE filter.
type WhereClause struct {
	NodeInfo
	Cond Expr
}

// GroupByClause is a GROUP BY list.
type GroupByClause struct {
	NodeInfo
	Items []Expr
}

// HavingClause is a HAVING filter.
type HavingClause struct {
	NodeInfo
	Cond Expr
}

// OrderByClause is an ORDER BY list.
type OrderByClause struct {
	NodeInfo
	Items []*OrderItem
}

// SortDir is an explicit sort direction.
type SortDir int

// Sort directions.
const (
	SortDefault SortDir = iota
	SortAsc
	SortDesc
)

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	NodeInfo
	Expr  Expr
	Dir   SortDir
	Nulls string // "first", "last" or ""
}

// LimitClause is LIMIT with an optional OFFSET.
type LimitClause struct {
	NodeInfo
	Count  Expr
	Offset Expr
}

// ExtraClause is a clause the parser does not model, such as QUALIFY or
// WINDOW. Keyword is the word that opens it; Body is a parsed expression
// when one fits and an opaque run of tokens otherwise.
type ExtraClause struct {
	NodeInfo
	Keyword    token.Token
	Body       Expr
	AfterLimit bool
}

// CTENames returns the lowercase names of the statement's CTEs.
func (s *Statement) CTENames() map[string]bool {
	out := map[string]bool{}
	if s.With == nil {
		return out
	}
	for _, cte := range s.With.CTEs {
		out[strings.ToLower(cte.Name.Name)] = true
	}
	return out
}
