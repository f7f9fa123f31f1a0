package format

import (
	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// Format renders tree in canonical layout. Comments are carried over and
// the output always ends with exactly one newline. Formatting its own
// output yields the same text.
func Format(tree *ast.Tree, cfg style.Config) string {
	if tree == nil || tree.Root == nil {
		return "\n"
	}
	p := newPrinter(cfg, Decorate(tree))
	p.formatStatement(tree.Root)
	return p.String()
}
