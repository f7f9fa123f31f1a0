package structure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/structure" // register rules
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

// Helper to run analysis and filter by rule ID
func runRule(t *testing.T, sql string, ruleID string, cfg style.Config) []lint.Violation {
	t.Helper()
	tree, err := parser.Parse(sql)
	require.NoError(t, err)

	violations := lint.NewAnalyzer(lint.NewConfig().Only(ruleID)).Analyze(tree, cfg)
	for _, v := range violations {
		require.Equal(t, ruleID, v.RuleID)
	}
	return violations
}

func TestExplicitJoinType(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		cfg   style.Config
		count int
		fixed string
	}{
		{
			name:  "bare join",
			sql:   "SELECT * FROM a JOIN b ON a.id = b.a_id",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT * FROM a INNER JOIN b ON a.id = b.a_id",
		},
		{
			name:  "comma join",
			sql:   "SELECT * FROM a, b WHERE a.id = b.a_id",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT * FROM a CROSS JOIN b WHERE a.id = b.a_id",
		},
		{
			name:  "comma join without space",
			sql:   "SELECT * FROM a,b",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT * FROM a CROSS JOIN b",
		},
		{
			name:  "explicit types",
			sql:   "SELECT * FROM a INNER JOIN b ON a.id = b.a_id LEFT JOIN c ON b.id = c.b_id",
			cfg:   style.Default(),
			count: 0,
		},
		{
			name:  "implicit joins allowed",
			sql:   "SELECT * FROM a JOIN b ON a.id = b.a_id",
			cfg:   style.New(style.WithJoinStyle(style.JoinAllowImplicit)),
			count: 0,
		},
		{
			name:  "lowercase keywords",
			sql:   "select * from a join b on a.id = b.a_id",
			cfg:   style.New(style.WithKeywordCase(style.KeywordLower)),
			count: 1,
			fixed: "select * from a inner join b on a.id = b.a_id",
		},
		{
			name:  "lowercase join under upper case",
			sql:   "SELECT * FROM a join b ON a.id = b.a_id",
			cfg:   style.Default(),
			count: 1,
			fixed: "SELECT * FROM a INNER JOIN b ON a.id = b.a_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runRule(t, tt.sql, "explicit-join-type", tt.cfg)
			assert.Len(t, violations, tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, lint.ApplyFixes(tt.sql, violations).Output)
			}
		})
	}
}

func TestJoinConditionOrder(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
	}{
		{"joined table first", "SELECT * FROM a INNER JOIN b ON b.a_id = a.id", 1},
		{"earlier table first", "SELECT * FROM a INNER JOIN b ON a.id = b.a_id", 0},
		{"aliases", "SELECT * FROM users AS u INNER JOIN orders AS o ON o.user_id = u.id", 1},
		{"second condition in AND chain", "SELECT * FROM a INNER JOIN b ON a.id = b.a_id AND b.k = a.k", 1},
		{"unqualified columns", "SELECT * FROM a INNER JOIN b ON id = a_id", 0},
		{"third table", "SELECT * FROM a INNER JOIN b ON a.id = b.a_id INNER JOIN c ON c.b_id = b.id", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runRule(t, tt.sql, "join-condition-order", style.Default())
			assert.Len(t, violations, tt.count)
			for _, v := range violations {
				assert.Equal(t, lint.SeverityHint, v.Severity)
			}
		})
	}
}

func TestGroupByNameOrNumber(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
	}{
		{"mixed", "SELECT country, city, count(*) AS n FROM users GROUP BY country, 2", 1},
		{"ordinals", "SELECT country, city, count(*) AS n FROM users GROUP BY 1, 2", 0},
		{"names", "SELECT country, city, count(*) AS n FROM users GROUP BY country, city", 0},
		{"no group by", "SELECT country FROM users", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "group-by-name-or-number", style.Default()), tt.count)
		})
	}
}

func TestGroupByOrder(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
	}{
		{"aggregate first", "SELECT count(*) AS n, country FROM users GROUP BY country", 1},
		{"grouping first", "SELECT country, count(*) AS n FROM users GROUP BY country", 0},
		{"several misplaced reports once", "SELECT count(*) AS n, country, city FROM users GROUP BY country, city", 1},
		{"no group by", "SELECT count(*) AS n, max(id) AS m FROM users", 0},
		{"window function is not an aggregate", "SELECT country, count(*) AS n, rank() OVER (ORDER BY country) AS r FROM users GROUP BY country", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "group-by-order", style.Default()), tt.count)
		})
	}
}

func TestCTEOverSubquery(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
	}{
		{"subquery in from", "SELECT * FROM (SELECT id FROM users) AS u", 1},
		{"subquery in join", "SELECT * FROM a INNER JOIN (SELECT id FROM b) AS bb ON a.id = bb.id", 1},
		{"cte", "WITH u AS (SELECT id FROM users) SELECT * FROM u", 0},
		{"subquery in where is fine", "SELECT id FROM users WHERE id IN (SELECT user_id FROM orders)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, runRule(t, tt.sql, "cte-over-subquery", style.Default()), tt.count)
		})
	}
}

func TestFinalSelectStar(t *testing.T) {
	tests := []struct {
		name  string
		sql   string
		count int
		fixed string
	}{
		{
			name:  "filtered final select",
			sql:   "WITH u AS (SELECT id FROM users) SELECT id FROM u WHERE id > 1",
			count: 1,
			fixed: "WITH u AS (SELECT id FROM users),\nfinal AS (\n    SELECT id FROM u WHERE id > 1\n)\nSELECT * FROM final",
		},
		{
			name:  "bare select star from last cte",
			sql:   "WITH u AS (SELECT id FROM users) SELECT * FROM u",
			count: 0,
		},
		{
			name:  "select star from earlier cte",
			sql:   "WITH a AS (SELECT id FROM users), b AS (SELECT id FROM a) SELECT * FROM a",
			count: 1,
		},
		{
			name:  "final already taken",
			sql:   "WITH final AS (SELECT id FROM users) SELECT id FROM final",
			count: 1,
			fixed: "WITH final AS (SELECT id FROM users),\nfinal_select AS (\n    SELECT id FROM final\n)\nSELECT * FROM final_select",
		},
		{
			name:  "multi-line body is re-indented",
			sql:   "WITH u AS (SELECT id FROM users)\nSELECT id\nFROM u",
			count: 1,
			fixed: "WITH u AS (SELECT id FROM users),\nfinal AS (\n    SELECT id\n    FROM u\n)\nSELECT * FROM final",
		},
		{
			name:  "no cte",
			sql:   "SELECT id FROM users",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := runRule(t, tt.sql, "final-select-star", style.Default())
			assert.Len(t, violations, tt.count)
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, lint.ApplyFixes(tt.sql, violations).Output)
			}
		})
	}
}
