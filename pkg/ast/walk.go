package ast

// Inspect traverses the tree rooted at node depth-first in source order,
// calling fn for each node. If fn returns false, the children of that node
// are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if isNil(node) {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, c := range children {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			add(e)
		}
	}
	addIdents := func(ids []*Ident) {
		for _, id := range ids {
			add(id)
		}
	}

	switch n := node.(type) {
	case *Statement:
		add(n.With, n.Body)
	case *WithClause:
		for _, cte := range n.CTEs {
			add(cte)
		}
	case *CTE:
		add(n.Name)
		addIdents(n.Columns)
		add(n.Body)
	case *SelectBody:
		add(n.Left, n.Right)
	case *SelectCore:
		add(n.Columns, n.From, n.Where, n.GroupBy, n.Having)
		for _, x := range n.Extra {
			if !x.AfterLimit {
				add(x)
			}
		}
		add(n.OrderBy, n.Limit)
		for _, x := range n.Extra {
			if x.AfterLimit {
				add(x)
			}
		}
	case *SelectList:
		for _, item := range n.Items {
			add(item)
		}
	case *SelectColumn:
		add(n.Expr, n.Alias)
	case *Alias:
		add(n.Name)
	case *FromClause:
		add(n.Source)
		for _, j := range n.Joins {
			add(j)
		}
	case *TableName:
		addIdents(n.Parts)
		add(n.Alias)
	case *DerivedTable:
		add(n.Body, n.Alias)
	case *TemplateTable:
		add(n.Alias)
	case *JoinClause:
		add(n.Table, n.On)
		addIdents(n.Using)
	case *WhereClause:
		add(n.Cond)
	case *GroupByClause:
		addExprs(n.Items)
	case *HavingClause:
		add(n.Cond)
	case *OrderByClause:
		for _, item := range n.Items {
			add(item)
		}
	case *OrderItem:
		add(n.Expr)
	case *LimitClause:
		add(n.Count, n.Offset)
	case *ExtraClause:
		add(n.Body)
	case *ColumnRef:
		addIdents(n.Parts)
	case *StarExpr:
		addIdents(n.Qualifier)
	case *BinaryExpr:
		add(n.Left, n.Right)
	case *UnaryExpr:
		add(n.Expr)
	case *ParenExpr:
		add(n.Expr)
	case *InExpr:
		add(n.Expr)
		addExprs(n.Values)
		add(n.Query)
	case *LikeExpr:
		add(n.Expr, n.Pattern)
	case *IsExpr:
		add(n.Expr, n.Other)
	case *BetweenExpr:
		add(n.Expr, n.Low, n.High)
	case *ExistsExpr:
		add(n.Query)
	case *SubqueryExpr:
		add(n.Query)
	case *CaseExpr:
		add(n.Operand)
		for _, w := range n.Whens {
			add(w)
		}
		add(n.Else)
	case *WhenClause:
		add(n.Cond, n.Result)
	case *FuncCall:
		addIdents(n.Name)
		addExprs(n.Args)
		add(n.Over)
	case *WindowSpec:
		add(n.Name)
		addExprs(n.PartitionBy)
		for _, item := range n.OrderBy {
			add(item)
		}
	case *CastExpr:
		add(n.Expr)
	}
	return out
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Statement:
		return v == nil
	case *WithClause:
		return v == nil
	case *CTE:
		return v == nil
	case *SelectBody:
		return v == nil
	case *SelectCore:
		return v == nil
	case *SelectList:
		return v == nil
	case *SelectColumn:
		return v == nil
	case *Alias:
		return v == nil
	case *Ident:
		return v == nil
	case *FromClause:
		return v == nil
	case *TableName:
		return v == nil
	case *DerivedTable:
		return v == nil
	case *TemplateTable:
		return v == nil
	case *JoinClause:
		return v == nil
	case *WhereClause:
		return v == nil
	case *GroupByClause:
		return v == nil
	case *HavingClause:
		return v == nil
	case *OrderByClause:
		return v == nil
	case *OrderItem:
		return v == nil
	case *LimitClause:
		return v == nil
	case *ExtraClause:
		return v == nil
	case *WindowSpec:
		return v == nil
	case *WhenClause:
		return v == nil
	case *ColumnRef:
		return v == nil
	case *StarExpr:
		return v == nil
	case *Literal:
		return v == nil
	case *BinaryExpr:
		return v == nil
	case *UnaryExpr:
		return v == nil
	case *ParenExpr:
		return v == nil
	case *InExpr:
		return v == nil
	case *LikeExpr:
		return v == nil
	case *IsExpr:
		return v == nil
	case *BetweenExpr:
		return v == nil
	case *ExistsExpr:
		return v == nil
	case *SubqueryExpr:
		return v == nil
	case *CaseExpr:
		return v == nil
	case *FuncCall:
		return v == nil
	case *CastExpr:
		return v == nil
	case *TemplateExpr:
		return v == nil
	case *OpaqueExpr:
		return v == nil
	}
	return false
}

// Cores returns every select core reachable from node, including those in
// CTEs and subqueries, in source order.
func Cores(node Node) []*SelectCore {
	var out []*SelectCore
	Inspect(node, func(n Node) bool {
		if c, ok := n.(*SelectCore); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}
