package sqlstyle_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/parser"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func byRule(vs []lint.Violation, id string) []lint.Violation {
	var out []lint.Violation
	for _, v := range vs {
		if v.RuleID == id {
			out = append(out, v)
		}
	}
	return out
}

func TestFormat_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "column list",
			input:    "select id, email from users",
			expected: "SELECT\n    id,\n    email\nFROM users\n",
		},
		{
			name:     "star with filter",
			input:    "select * from users where email = 'x@y.com'",
			expected: "SELECT *\nFROM users\nWHERE\n    email = 'x@y.com'\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := sqlstyle.Format(tt.input, style.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)

			violations, err := sqlstyle.Lint(out, style.Default())
			require.NoError(t, err)
			assert.Empty(t, violations, "formatted output should lint clean")
		})
	}
}

func TestFormat_OutputLintsCleanUnderStyle(t *testing.T) {
	tests := []struct {
		name  string
		cfg   style.Config
		input string
		rule  string
	}{
		{
			name:  "alias without join",
			cfg:   style.Default(),
			input: "select u.id, u.email from users u where u.active = true",
			rule:  "no-table-alias-without-join",
		},
		{
			name:  "alias star without join",
			cfg:   style.Default(),
			input: "select u.* from users u",
			rule:  "no-table-alias-without-join",
		},
		{
			name:  "correlated subquery",
			cfg:   style.Default(),
			input: "select u.id from users u where exists (select 1 from orders o where o.user_id = u.id)",
			rule:  "no-table-alias-without-join",
		},
		{
			name:  "aliases under none",
			cfg:   style.New(style.WithAliasPolicy(style.AliasNone)),
			input: "select u.id, o.total from users u join orders o on u.id = o.user_id",
			rule:  "no-table-alias-without-join",
		},
		{
			name:  "leading commas between ctes",
			cfg:   style.New(style.WithCommaStyle(style.CommaLeading)),
			input: "with a as (select 1 as x), b as (select x from a) select x, x as y from b",
			rule:  "comma-trailing",
		},
		{
			name:  "double quoted values",
			cfg:   style.Default(),
			input: `select id from users where status = "active" and kind in ("a", "b") and name like "j%"`,
			rule:  "quote-style",
		},
		{
			name:  "nested chain",
			cfg:   style.Default(),
			input: "select a from t where x = 1 and y = 2 or z = 3",
			rule:  "operator-trailing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := sqlstyle.Format(tt.input, tt.cfg)
			require.NoError(t, err)

			violations, err := sqlstyle.Lint(out, tt.cfg)
			require.NoError(t, err, out)
			assert.Empty(t, byRule(violations, tt.rule), out)
		})
	}
}

func TestLint_StarWithFilterOnOneLine(t *testing.T) {
	violations, err := sqlstyle.Lint("select * from users where email = 'x@y.com'", style.Default())
	require.NoError(t, err)
	assert.Len(t, byRule(violations, "star-shorthand"), 1)
}

func TestLint_UnaliasedAggregate(t *testing.T) {
	violations, err := sqlstyle.Lint("select count(*) from users", style.Default())
	require.NoError(t, err)

	found := byRule(violations, "unaliased-aggregate")
	require.Len(t, found, 1)
	assert.Equal(t, 7, found[0].Span.Start.Offset)
	assert.Equal(t, 15, found[0].Span.End.Offset)
	assert.Equal(t, lint.SeverityWarning, found[0].Severity)
}

func TestLint_UnterminatedString(t *testing.T) {
	_, err := sqlstyle.Lint("select * from users where email = 'abc", style.Default())
	require.Error(t, err)

	var lexErr *parser.LexError
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, parser.UnterminatedString, lexErr.Kind)
	assert.Equal(t, 34, lexErr.Pos.Offset)

	_, err = sqlstyle.Format("select * from users where email = 'abc", style.Default())
	assert.True(t, errors.As(err, &lexErr))

	_, err = sqlstyle.Diagnose("select * from users where email = 'abc", style.Default())
	assert.True(t, errors.As(err, &lexErr))
}

func TestLint_ParseError(t *testing.T) {
	_, err := sqlstyle.Lint("select a from (select b from t", style.Default())
	require.Error(t, err)

	var parseErr *parser.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, parser.UnbalancedParenthesis, parseErr.Kind)
}

func TestDiagnose(t *testing.T) {
	source := "select u.id, count(*) from users u join orders o on u.id = o.user_id group by u.id"

	diag, err := sqlstyle.Diagnose(source, style.Default())
	require.NoError(t, err)

	violations, err := sqlstyle.Lint(source, style.Default())
	require.NoError(t, err)
	formatted, err := sqlstyle.Format(source, style.Default())
	require.NoError(t, err)

	assert.Equal(t, violations, diag.Violations)
	assert.Equal(t, formatted, diag.Formatted)
	assert.NotEmpty(t, byRule(diag.Violations, "explicit-join-type"))
}

func TestDiagnose_CleanInputHasEmptyViolations(t *testing.T) {
	diag, err := sqlstyle.Diagnose("SELECT * FROM users\n", style.Default())
	require.NoError(t, err)
	assert.NotNil(t, diag.Violations)
	assert.Empty(t, diag.Violations)
	assert.Equal(t, "SELECT * FROM users\n", diag.Formatted)
}

func TestDeterminism(t *testing.T) {
	source := "select a, b, count(*) from t1, t2 where a <> 1 and b = \"x\" group by 1, 2"
	first, err := sqlstyle.Diagnose(source, style.Default())
	require.NoError(t, err)
	for range 10 {
		again, err := sqlstyle.Diagnose(source, style.Default())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"select id, email from users",
		"with a as (select id, count(*) as n from t group by id) select * from a order by n desc;",
		"select u.id from users u left join orders o on u.id = o.user_id and o.total > 10 where u.id in (1, 2, 3, 4, 5, 6)",
	}
	for _, input := range inputs {
		once, err := sqlstyle.Format(input, style.Default())
		require.NoError(t, err)
		twice, err := sqlstyle.Format(once, style.Default())
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestFix(t *testing.T) {
	result, err := sqlstyle.Fix("select id from users where a <> 1", style.Default())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Applied)
	assert.Contains(t, result.Output, "SELECT id")
	assert.Contains(t, result.Output, "!=")
	assert.NotContains(t, result.Output, "select")
}

func TestFix_JoinKeywordFollowsCase(t *testing.T) {
	result, err := sqlstyle.Fix("SELECT * FROM a join b ON a.id = b.a_id", style.Default())
	require.NoError(t, err)
	assert.Contains(t, result.Output, "INNER JOIN b")
	assert.NotContains(t, result.Output, "join")

	lower := style.New(style.WithKeywordCase(style.KeywordLower))
	result, err = sqlstyle.Fix("select * from a join b on a.id = b.a_id", lower)
	require.NoError(t, err)
	assert.Contains(t, result.Output, "inner join b")
}

func TestLinter_Options(t *testing.T) {
	cfg := lint.NewConfig().
		Disable("keyword-case").
		SetSeverity("unaliased-aggregate", lint.SeverityError)
	l := sqlstyle.New(sqlstyle.WithLintConfig(cfg))

	for _, rule := range l.Rules() {
		assert.NotEqual(t, "keyword-case", rule.ID)
	}

	violations, err := l.Lint("select count(*) from users", style.Default())
	require.NoError(t, err)
	assert.Empty(t, byRule(violations, "keyword-case"))

	found := byRule(violations, "unaliased-aggregate")
	require.Len(t, found, 1)
	assert.Equal(t, lint.SeverityError, found[0].Severity)

	assert.Same(t, cfg, l.Config())
}

func TestLinter_NilConfigKeepsDefaults(t *testing.T) {
	l := sqlstyle.New(sqlstyle.WithLintConfig(nil))
	assert.Len(t, l.Rules(), lint.Count())
}
