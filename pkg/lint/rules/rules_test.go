package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules"
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// Each input breaks exactly one rule under the default configuration.
var soundnessCases = map[string]string{
	"keyword-case":                "select\n    id,\n    email\nFROM users",
	"column-per-line":             "SELECT id, email\nFROM users",
	"star-shorthand":              "SELECT * FROM users WHERE\n    email = 'x@y.com'",
	"operator-trailing":           "SELECT id\nFROM users\nWHERE\n    id > 1\n    AND email = 'x'",
	"comma-trailing":              "SELECT\n    id\n    , email\nFROM users",
	"paren-spacing":               "SELECT id\nFROM users\nWHERE\n    id IN ( 1, 2)",
	"long-in-list":                "SELECT id\nFROM users\nWHERE\n    id IN (1, 2, 3, 4, 5, 6)",
	"quote-style":                 "SELECT id\nFROM users\nWHERE\n    email = \"x\"",
	"explicit-boolean-comparison": "SELECT id\nFROM users\nWHERE\n    is_active",
	"not-equal":                   "SELECT id\nFROM users\nWHERE\n    id <> 1",
	"count-rows":                  "SELECT count(1) AS user_count\nFROM users",
	"snake-case-identifier":       "SELECT\n    id,\n    firstName\nFROM users",
	"boolean-prefix":              "SELECT\n    id,\n    active\nFROM users",
	"explicit-join-type":          "SELECT\n    u.id,\n    o.id AS order_id\nFROM users AS u\nJOIN orders AS o ON u.id = o.user_id",
	"join-condition-order":        "SELECT\n    u.id,\n    o.id AS order_id\nFROM users AS u\nINNER JOIN orders AS o ON o.user_id = u.id",
	"group-by-name-or-number":     "SELECT\n    country,\n    city,\n    count(*) AS user_count\nFROM users\nGROUP BY country, 2",
	"group-by-order":              "SELECT\n    count(*) AS user_count,\n    country\nFROM users\nGROUP BY country",
	"cte-over-subquery":           "SELECT id\nFROM (SELECT id FROM users) AS active_users",
	"final-select-star":           "WITH active_users AS (\n    SELECT id FROM users\n)\n\nSELECT id\nFROM active_users",
	"unaliased-aggregate":         "SELECT count(*)\nFROM users",
	"no-table-alias-without-join": "SELECT id\nFROM users AS u",
}

func TestRegistry(t *testing.T) {
	all := lint.GetAll()
	assert.Equal(t, len(soundnessCases), lint.Count())

	seen := map[string]bool{}
	for _, rule := range all {
		assert.False(t, seen[rule.ID], "duplicate rule %s", rule.ID)
		seen[rule.ID] = true
		assert.NotEmpty(t, rule.Name, rule.ID)
		assert.NotEmpty(t, rule.Description, rule.ID)
		assert.NotNil(t, rule.Check, rule.ID)
		assert.Contains(t, []string{"layout", "convention", "naming", "structure", "aliasing"}, rule.Group)
		assert.Contains(t, soundnessCases, rule.ID)
	}
	assert.Len(t, lint.GetByGroup("layout"), 7)
}

func TestRuleSoundness(t *testing.T) {
	for id, sql := range soundnessCases {
		t.Run(id, func(t *testing.T) {
			tree, err := parser.Parse(sql)
			require.NoError(t, err)

			violations := lint.NewAnalyzer(nil).Analyze(tree, style.Default())
			require.Len(t, violations, 1, "violations: %+v", violations)
			assert.Equal(t, id, violations[0].RuleID)
		})
	}
}

func TestCleanQuery(t *testing.T) {
	sql := "WITH active_users AS (\n    SELECT\n        id,\n        email\n    FROM users\n    WHERE\n        is_active = TRUE\n)\n\nSELECT * FROM active_users;\n"
	tree, err := parser.Parse(sql)
	require.NoError(t, err)
	assert.Empty(t, lint.NewAnalyzer(nil).Analyze(tree, style.Default()))
}

func TestFixesConverge(t *testing.T) {
	for id, sql := range soundnessCases {
		rule, ok := lint.GetByID(id)
		require.True(t, ok)
		if !rule.Fixable {
			continue
		}
		t.Run(id, func(t *testing.T) {
			tree, err := parser.Parse(sql)
			require.NoError(t, err)
			analyzer := lint.NewAnalyzer(lint.NewConfig().Only(id))

			result := lint.ApplyFixes(sql, analyzer.Analyze(tree, style.Default()))
			require.Len(t, result.Applied, 1)

			fixed, err := parser.Parse(result.Output)
			require.NoError(t, err, result.Output)
			assert.Empty(t, analyzer.Analyze(fixed, style.Default()), result.Output)
		})
	}
}
