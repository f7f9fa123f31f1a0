package format

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// StatementComments holds the comments attached to one statement.
type StatementComments struct {
	Leading  []*token.Comment // before the statement or inside it
	Trailing []*token.Comment // after the statement's last token
}

// Attachments maps statements to their comments. The tree itself is left
// untouched so that rules and the formatter can share it.
type Attachments map[*ast.Statement]*StatementComments

// Decorate attaches every comment of tree to the innermost statement whose
// extent contains it. Comments keep their source order within a statement.
func Decorate(tree *ast.Tree) Attachments {
	out := Attachments{}
	if tree == nil || tree.Root == nil || len(tree.Comments) == 0 {
		return out
	}

	stmts := tree.Statements()
	for _, c := range tree.Comments {
		owner := innermost(stmts, c.Span)
		if owner == nil {
			owner = tree.Root
		}
		set := out[owner]
		if set == nil {
			set = &StatementComments{}
			out[owner] = set
		}
		if c.Span.Start.Offset >= owner.End().Offset {
			set.Trailing = append(set.Trailing, c)
		} else {
			set.Leading = append(set.Leading, c)
		}
	}
	return out
}

func innermost(stmts []*ast.Statement, span token.Span) *ast.Statement {
	var best *ast.Statement
	for _, s := range stmts {
		if !s.Extent.IsValid() || !s.Extent.Covers(span) {
			continue
		}
		if best == nil || s.Extent.Len() < best.Extent.Len() {
			best = s
		}
	}
	return best
}

func (a Attachments) leading(s *ast.Statement) []*token.Comment {
	if set := a[s]; set != nil {
		return set.Leading
	}
	return nil
}

func (a Attachments) trailing(s *ast.Statement) []*token.Comment {
	if set := a[s]; set != nil {
		return set.Trailing
	}
	return nil
}
