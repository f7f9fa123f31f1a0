// Package ast defines the syntax tree produced by the structural parser.
//
// The tree is a strict ownership hierarchy: every node is owned by exactly
// one parent and carries the source span it was parsed from. Rules and the
// formatter read the tree; nothing mutates it after parsing.
package ast

import "github.com/leapstack-labs/sqlstyle/pkg/token"

// Node is the base interface for all syntax nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
	// Span returns [Pos, End).
	Span() token.Span
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// TableRef is a marker interface for FROM/JOIN sources.
type TableRef interface {
	Node
	tableRef()
	// TableAlias returns the alias, or nil.
	TableAlias() *Alias
}

// NodeInfo holds the span shared by every node.
type NodeInfo struct {
	Loc token.Span
}

// Pos implements Node.
func (n *NodeInfo) Pos() token.Position { return n.Loc.Start }

// End implements Node.
func (n *NodeInfo) End() token.Position { return n.Loc.End }

// Span implements Node.
func (n *NodeInfo) Span() token.Span { return n.Loc }

// Tree is a parsed document.
type Tree struct {
	Source   string
	Tokens   []token.Token // every token, trivia included
	Comments []*token.Comment
	Root     *Statement
}

// Significant returns the tokens that are not whitespace or comments.
func (t *Tree) Significant() []token.Token {
	out := make([]token.Token, 0, len(t.Tokens))
	for _, tok := range t.Tokens {
		if !tok.Type.IsTrivia() && tok.Type != token.EOF {
			out = append(out, tok)
		}
	}
	return out
}

// Text returns the source text covered by span.
func (t *Tree) Text(span token.Span) string {
	if span.Start.Offset < 0 || span.End.Offset > len(t.Source) || span.Start.Offset > span.End.Offset {
		return ""
	}
	return t.Source[span.Start.Offset:span.End.Offset]
}

// Statements returns the root statement and every nested statement
// (CTE bodies, derived tables, subqueries) in source order.
func (t *Tree) Statements() []*Statement {
	var out []*Statement
	if t.Root == nil {
		return nil
	}
	Inspect(t.Root, func(n Node) bool {
		if s, ok := n.(*Statement); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Ident is a possibly quoted identifier.
type Ident struct {
	NodeInfo
	Name   string // unquoted name
	Raw    string // source text, quotes included
	Quoted bool
}

// String returns the identifier as written.
func (i *Ident) String() string { return i.Raw }

// Alias is an `AS name` suffix on a select column or table reference.
type Alias struct {
	NodeInfo
	Name       *Ident
	ExplicitAs bool
}
