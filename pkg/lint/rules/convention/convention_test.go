package convention_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/convention" // register rules
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

type ruleCase struct {
	name  string
	sql   string
	cfg   *style.Config
	count int
	fixed string
}

func runCases(t *testing.T, ruleID string, tests []ruleCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := style.Default()
			if tt.cfg != nil {
				cfg = *tt.cfg
			}
			tree, err := parser.Parse(tt.sql)
			require.NoError(t, err)

			violations := lint.NewAnalyzer(lint.NewConfig().Only(ruleID)).Analyze(tree, cfg)
			assert.Len(t, violations, tt.count)
			for _, v := range violations {
				assert.Equal(t, ruleID, v.RuleID)
			}
			if tt.fixed != "" {
				assert.Equal(t, tt.fixed, lint.ApplyFixes(tt.sql, violations).Output)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestQuoteStyle(t *testing.T) {
	runCases(t, "quote-style", []ruleCase{
		{
			name:  "double-quoted comparison value",
			sql:   `SELECT id FROM users WHERE status = "active"`,
			count: 1,
			fixed: `SELECT id FROM users WHERE status = 'active'`,
		},
		{
			name:  "double-quoted IN member",
			sql:   `SELECT id FROM users WHERE status IN ("a", 'b')`,
			count: 1,
			fixed: `SELECT id FROM users WHERE status IN ('a', 'b')`,
		},
		{
			name:  "double-quoted LIKE pattern",
			sql:   `SELECT id FROM users WHERE name LIKE "a%"`,
			count: 1,
		},
		{
			name:  "quoted identifiers in column positions",
			sql:   `SELECT "id" FROM users WHERE "status" = 'active'`,
			count: 0,
		},
		{
			name:  "qualified quoted column",
			sql:   `SELECT a.id FROM a INNER JOIN b ON a.id = "b"."id"`,
			count: 0,
		},
		{
			name:  "double style flags single quotes",
			sql:   `SELECT id FROM users WHERE status = 'it''s'`,
			cfg:   ptr(style.New(style.WithQuoteStyle(style.QuoteDouble))),
			count: 1,
			fixed: `SELECT id FROM users WHERE status = "it's"`,
		},
	})
}

func TestExplicitBooleanComparison(t *testing.T) {
	runCases(t, "explicit-boolean-comparison", []ruleCase{
		{
			name:  "bare column",
			sql:   "SELECT id FROM orders WHERE is_cancelled",
			count: 1,
			fixed: "SELECT id FROM orders WHERE is_cancelled = TRUE",
		},
		{
			name:  "negated column",
			sql:   "SELECT id FROM orders WHERE NOT is_cancelled",
			count: 1,
			fixed: "SELECT id FROM orders WHERE is_cancelled = FALSE",
		},
		{
			name:  "explicit comparison",
			sql:   "SELECT id FROM orders WHERE is_cancelled = TRUE",
			count: 0,
		},
		{
			name:  "inside AND and OR",
			sql:   "SELECT id FROM orders WHERE a = 1 AND (is_paid OR is_free)",
			count: 2,
		},
		{
			name:  "searched CASE condition",
			sql:   "SELECT CASE WHEN is_paid THEN 1 ELSE 0 END AS paid_count FROM orders",
			count: 1,
		},
		{
			name:  "lowercase keywords",
			sql:   "select id from orders where is_cancelled",
			cfg:   ptr(style.New(style.WithKeywordCase(style.KeywordLower))),
			count: 1,
			fixed: "select id from orders where is_cancelled = true",
		},
	})
}

func TestNotEqual(t *testing.T) {
	runCases(t, "not-equal", []ruleCase{
		{name: "angle brackets", sql: "SELECT id FROM t WHERE a <> 1", count: 1, fixed: "SELECT id FROM t WHERE a != 1"},
		{name: "bang equals", sql: "SELECT id FROM t WHERE a != 1", count: 0},
	})
}

func TestCountRows(t *testing.T) {
	runCases(t, "count-rows", []ruleCase{
		{name: "count one", sql: "SELECT count(1) AS n FROM t", count: 1, fixed: "SELECT count(*) AS n FROM t"},
		{name: "count zero", sql: "SELECT count(0) AS n FROM t", count: 1},
		{name: "count star", sql: "SELECT count(*) AS n FROM t", count: 0},
		{name: "count column", sql: "SELECT count(id) AS n FROM t", count: 0},
	})
}
