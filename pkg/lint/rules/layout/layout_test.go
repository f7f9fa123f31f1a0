package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/layout" // register rules
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// runRule parses sql and runs a single rule against it.
func runRule(t *testing.T, sql string, ruleID string, cfg style.Config) []lint.Violation {
	t.Helper()
	tree, err := parser.Parse(sql)
	require.NoError(t, err)

	analyzer := lint.NewAnalyzer(lint.NewConfig().Only(ruleID))
	violations := analyzer.Analyze(tree, cfg)
	for _, v := range violations {
		require.Equal(t, ruleID, v.RuleID)
	}
	return violations
}

// fixRule applies the rule's fixes to sql.
func fixRule(t *testing.T, sql string, ruleID string, cfg style.Config) string {
	t.Helper()
	return lint.ApplyFixes(sql, runRule(t, sql, ruleID, cfg)).Output
}

func TestKeywordCase(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		cfg   style.Config
		count int
		fixed string
	}{
		{
			name:  "lowercase keywords",
			sql:   "select id from users",
			cfg:   style.Default(),
			count: 2,
			fixed: "SELECT id FROM users",
		},
		{
			name:  "mixed case",
			sql:   "Select id From users",
			cfg:   style.Default(),
			count: 2,
			fixed: "SELECT id FROM users",
		},
		{
			name:  "already upper",
			sql:   "SELECT id FROM users",
			cfg:   style.Default(),
			count: 0,
			fixed: "SELECT id FROM users",
		},
		{
			name:  "lower config",
			sql:   "SELECT id FROM users WHERE active IS NULL",
			cfg:   style.New(style.WithKeywordCase(style.KeywordLower)),
			count: 5,
			fixed: "select id from users where active is null",
		},
		{
			name:  "soft keyword used as column",
			sql:   "SELECT first FROM users",
			cfg:   style.Default(),
			count: 0,
			fixed: "SELECT first FROM users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "keyword-case", tt.cfg), tt.count)
			assert.Equal(t, tt.fixed, fixRule(t, tt.sql, "keyword-case", tt.cfg))
		})
	}
}

func TestColumnPerLine(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		cfg   style.Config
		count int
		fixed string
	}{
		{
			name:  "two columns on one line",
			sql:   "SELECT id, email FROM users",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT id,\n    email FROM users",
		},
		{
			name:  "one column per line",
			sql:   "SELECT\n    id,\n    email\nFROM users",
			cfg:   style.Default(),
			count: 0,
		},
		{
			name:  "single column",
			sql:   "SELECT id FROM users",
			cfg:   style.Default(),
			count: 0,
		},
		{
			name:  "second and third share a line",
			sql:   "SELECT\n    id,\n    email, name\nFROM users",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT\n    id,\n    email,\n    name\nFROM users",
		},
		{
			name:  "leading comma style",
			sql:   "SELECT id, email FROM users",
			cfg:   style.New(style.WithCommaStyle(style.CommaLeading)),
			count: 1,
			fixed: "SELECT id\n    , email FROM users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "column-per-line", tt.cfg), tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, fixRule(t, tt.sql, "column-per-line", tt.cfg))
			}
		})
	}
}

func TestStarShorthand(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
		fixed string
	}{
		{
			name:  "star with where on one line",
			sql:   "SELECT * FROM users WHERE email = 'x@y.com'",
			count: 1,
			fixed: "SELECT *\nFROM users\nWHERE email = 'x@y.com'",
		},
		{
			name:  "star with join on one line",
			sql:   "SELECT * FROM a INNER JOIN b ON a.id = b.a_id",
			count: 1,
			fixed: "SELECT *\nFROM a\nINNER JOIN b ON a.id = b.a_id",
		},
		{
			name:  "star with from only",
			sql:   "SELECT * FROM users",
			count: 0,
		},
		{
			name:  "already multi-line",
			sql:   "SELECT *\nFROM users\nWHERE email = 'x@y.com'",
			count: 0,
		},
		{
			name:  "explicit columns",
			sql:   "SELECT id FROM users WHERE email = 'x'",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "star-shorthand", style.Default()), tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, fixRule(t, tt.sql, "star-shorthand", style.Default()))
			}
		})
	}
}

func TestOperatorTrailing(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
		fixed string
	}{
		{
			name:  "leading AND",
			sql:   "SELECT a FROM t WHERE a = 1\n    AND b = 2",
			count: 1,
			fixed: "SELECT a FROM t WHERE a = 1 AND\n    b = 2",
		},
		{
			name:  "trailing AND",
			sql:   "SELECT a FROM t WHERE a = 1 AND\n    b = 2",
			count: 0,
		},
		{
			name:  "leading comparison",
			sql:   "SELECT a FROM t WHERE a\n    = 1",
			count: 1,
			fixed: "SELECT a FROM t WHERE a =\n    1",
		},
		{
			name:  "single line",
			sql:   "SELECT a FROM t WHERE a = 1 OR b = 2",
			count: 0,
		},
		{
			name:  "comment before operator has no fix",
			sql:   "SELECT a FROM t WHERE a = 1 -- first\n    AND b = 2",
			count: 1,
			fixed: "SELECT a FROM t WHERE a = 1 -- first\n    AND b = 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "operator-trailing", style.Default()), tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, fixRule(t, tt.sql, "operator-trailing", style.Default()))
			}
		})
	}
}

func TestCommaTrailing(t *testing.T) {
	leading := style.New(style.WithCommaStyle(style.CommaLeading))
	tests := []struct {
		name  string
		sql   string
		cfg   style.Config
		count int
		fixed string
	}{
		{
			name:  "leading comma under trailing style",
			sql:   "SELECT\n    id\n    , email\nFROM users",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT\n    id,\n    email\nFROM users",
		},
		{
			name:  "trailing comma under trailing style",
			sql:   "SELECT\n    id,\n    email\nFROM users",
			cfg:   style.Default(),
			count: 0,
		},
		{
			name:  "trailing comma under leading style",
			sql:   "SELECT\n    id,\n    email\nFROM users",
			cfg:   leading,
			count: 1,
			fixed: "SELECT\n    id\n    , email\nFROM users",
		},
		{
			name:  "inline commas",
			sql:   "SELECT id, email FROM users",
			cfg:   leading,
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "comma-trailing", tt.cfg), tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, fixRule(t, tt.sql, "comma-trailing", tt.cfg))
			}
		})
	}
}

func TestParenSpacing(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
		fixed string
	}{
		{
			name:  "spaces inside IN list",
			sql:   "SELECT a FROM t WHERE id IN ( 1, 2 )",
			count: 2,
			fixed: "SELECT a FROM t WHERE id IN (1, 2)",
		},
		{
			name:  "space inside function call",
			sql:   "SELECT count( id) AS n FROM t",
			count: 1,
			fixed: "SELECT count(id) AS n FROM t",
		},
		{
			name:  "newline inside parens",
			sql:   "SELECT a FROM t WHERE id IN (\n    1,\n    2\n)",
			count: 0,
		},
		{
			name:  "tight parens",
			sql:   "SELECT a FROM t WHERE id IN (1, 2)",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "paren-spacing", style.Default()), tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, fixRule(t, tt.sql, "paren-spacing", style.Default()))
			}
		})
	}
}

func TestLongInList(t *testing.T) {
	t.Run("six values inline", func(t *testing.T) {
		sql := "SELECT a FROM t WHERE id IN (1, 2, 3, 4, 5, 6)"
		assert.Len(t, runRule(t, sql, "long-in-list", style.Default()), 1)
		assert.Equal(t,
			"SELECT a FROM t WHERE id IN (\n    1,\n    2,\n    3,\n    4,\n    5,\n    6\n)",
			fixRule(t, sql, "long-in-list", style.Default()))
	})

	t.Run("five values inline", func(t *testing.T) {
		sql := "SELECT a FROM t WHERE id IN (1, 2, 3, 4, 5)"
		assert.Empty(t, runRule(t, sql, "long-in-list", style.Default()))
	})

	t.Run("already one per line", func(t *testing.T) {
		sql := "SELECT a FROM t WHERE id IN (\n    1,\n    2,\n    3,\n    4,\n    5,\n    6\n)"
		assert.Empty(t, runRule(t, sql, "long-in-list", style.Default()))
	})

	t.Run("max_items option", func(t *testing.T) {
		tree, err := parser.Parse("SELECT a FROM t WHERE id IN (1, 2, 3, 4, 5, 6)")
		require.NoError(t, err)
		cfg := lint.NewConfig().Only("long-in-list").
			SetRuleOptions("long-in-list", map[string]any{"max_items": 8})
		assert.Empty(t, lint.NewAnalyzer(cfg).Analyze(tree, style.Default()))
	})
}
