package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gertd/go-pluralize"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func init() {
	lint.Register(SnakeCaseIdentifier)
}

var (
	snakeCase  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	pluralizer = pluralize.NewClient()
)

// SnakeCaseIdentifier checks identifier casing and plural table names.
var SnakeCaseIdentifier = lint.RuleDef{
	ID:          "snake-case-identifier",
	Name:        "naming.snake_case_identifier",
	Group:       "naming",
	Description: "Table, column, alias and CTE names should be snake_case; table names should be plural.",
	Severity:    lint.SeverityInfo,
	Check:       checkSnakeCase,
	ConfigKeys:  []string{"plural_tables"},
	Rationale:   "snake_case never needs quoting and reads the same in every engine.",
	BadExample:  "SELECT firstName FROM UserAccount",
	GoodExample: "SELECT first_name FROM user_accounts",
}

func checkSnakeCase(tree *ast.Tree, _ style.Config, opts map[string]any) []lint.Violation {
	pluralTables := lint.GetBoolOption(opts, "plural_tables", true)
	cteNames := map[string]bool{}
	for _, stmt := range tree.Statements() {
		for name := range stmt.CTENames() {
			cteNames[name] = true
		}
	}

	var violations []lint.Violation
	check := func(id *ast.Ident, what string) bool {
		if id == nil || id.Quoted || snakeCase.MatchString(id.Name) {
			return true
		}
		violations = append(violations, lint.Violation{
			Message: fmt.Sprintf("%s %q should be snake_case", what, id.Name),
			Span:    id.Span(),
		})
		return false
	}

	ast.Inspect(tree.Root, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.CTE:
			check(v.Name, "CTE name")
			for _, col := range v.Columns {
				check(col, "Column name")
			}
		case *ast.TableName:
			if len(v.Parts) == 1 && cteNames[strings.ToLower(v.Name().Name)] {
				return true
			}
			ok := true
			for _, part := range v.Parts {
				ok = check(part, "Table name") && ok
			}
			name := v.Name()
			if ok && pluralTables && !name.Quoted && !isPlural(name.Name) {
				violations = append(violations, lint.Violation{
					Message: fmt.Sprintf("Table name %q should be plural", name.Name),
					Span:    name.Span(),
				})
			}
		case *ast.Alias:
			check(v.Name, "Alias")
		case *ast.ColumnRef:
			check(v.Column(), "Column name")
			return false
		}
		return true
	})
	return violations
}

// isPlural checks the last word of a snake_case name.
func isPlural(name string) bool {
	words := strings.Split(name, "_")
	last := words[len(words)-1]
	if last == "" {
		return true
	}
	return pluralizer.IsPlural(last)
}
