package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/testutil"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name     string
		checks   []HealthCheck
		summary  ProjectSummary
		minScore int
		maxScore int
	}{
		{
			name:     "no checks returns 100",
			summary:  ProjectSummary{Files: 10},
			minScore: 100,
			maxScore: 100,
		},
		{
			name: "all passing returns 100",
			checks: []HealthCheck{
				{RuleID: "keyword-case", Status: "pass"},
				{RuleID: "not-equal", Status: "pass"},
			},
			summary:  ProjectSummary{Files: 10},
			minScore: 100,
			maxScore: 100,
		},
		{
			name: "warnings reduce score",
			checks: []HealthCheck{
				{RuleID: "keyword-case", Status: "pass"},
				{RuleID: "not-equal", Status: "warn", IssueCount: 2},
			},
			summary:  ProjectSummary{Files: 10},
			minScore: 80,
			maxScore: 99,
		},
		{
			name: "errors reduce score more",
			checks: []HealthCheck{
				{RuleID: "keyword-case", Status: "error", IssueCount: 2},
			},
			summary:  ProjectSummary{Files: 10},
			minScore: 70,
			maxScore: 80,
		},
		{
			name:     "unparsable files count as errors",
			summary:  ProjectSummary{Files: 10, Unparsable: 1},
			minScore: 90,
			maxScore: 90,
		},
		{
			name: "more files means less impact per issue",
			checks: []HealthCheck{
				{RuleID: "keyword-case", Status: "warn", IssueCount: 5},
			},
			summary:  ProjectSummary{Files: 200},
			minScore: 95,
			maxScore: 95,
		},
		{
			name: "many issues clamp to 0",
			checks: []HealthCheck{
				{RuleID: "keyword-case", Status: "error", IssueCount: 20},
				{RuleID: "not-equal", Status: "error", IssueCount: 20},
			},
			summary:  ProjectSummary{Files: 5},
			minScore: 0,
			maxScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := calculateHealthScore(tt.checks, tt.summary)
			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
		})
	}
}

func TestGroupRecommendation(t *testing.T) {
	for _, group := range ruleGroups() {
		assert.NotEmpty(t, groupRecommendation(group), "group %q should have a recommendation", group)
	}
	assert.Empty(t, groupRecommendation("unknown"))
}

func TestGenerateRecommendations(t *testing.T) {
	checks := []HealthCheck{
		{RuleID: "keyword-case", Group: "layout", Status: "warn", IssueCount: 1},
		{RuleID: "column-per-line", Group: "layout", Status: "warn", IssueCount: 2},
		{RuleID: "not-equal", Group: "convention", Status: "pass"},
		{RuleID: "boolean-prefix", Group: "naming", Status: "warn", IssueCount: 1},
	}

	recommendations := generateRecommendations(checks, ProjectSummary{Files: 3, Unformatted: 2})

	require.Len(t, recommendations, 3)
	assert.Contains(t, recommendations[0], "sqlstyle format --write")
	assert.Equal(t, groupRecommendation("layout"), recommendations[1])
	assert.Equal(t, groupRecommendation("naming"), recommendations[2])
}

func TestGenerateRecommendations_Limit(t *testing.T) {
	var checks []HealthCheck
	for _, group := range ruleGroups() {
		checks = append(checks, HealthCheck{RuleID: group + "-rule", Group: group, Status: "warn", IssueCount: 1})
	}

	recommendations := generateRecommendations(checks, ProjectSummary{Unparsable: 1, Unformatted: 1, Fixable: 1})

	assert.Len(t, recommendations, maxRecommendations)
	assert.Contains(t, recommendations[0], "syntax errors")
}

func TestDoctorCommand_JSON(t *testing.T) {
	dir := testutil.SetupTestProject(t, nil)

	res := testutil.ExecuteCommand(t, NewDoctorCommand(), nil, "", dir, "--format", "json")
	require.NoError(t, res.Err)

	var out DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out))

	assert.Equal(t, 2, out.Summary.Files)
	assert.Zero(t, out.Summary.Unparsable)
	assert.Equal(t, 1, out.Summary.Unformatted)
	assert.Positive(t, out.Summary.Fixable)
	assert.Less(t, out.Score, 100)
	assert.NotEmpty(t, out.Recommendations)

	byID := make(map[string]HealthCheck)
	for _, check := range out.HealthChecks {
		byID[check.RuleID] = check
	}
	keywordCase := byID["keyword-case"]
	assert.Equal(t, "warn", keywordCase.Status)
	assert.Positive(t, keywordCase.IssueCount)
	assert.Contains(t, keywordCase.Details[0], "messy.sql:1:1")
	assert.Equal(t, "pass", byID["not-equal"].Status)
}

func TestDoctorCommand_DisabledRulesOmitted(t *testing.T) {
	dir := testutil.SetupTestProject(t, nil)
	cfg := config.Default()
	cfg.Lint.Disabled = []string{"keyword-case"}

	res := testutil.ExecuteCommand(t, NewDoctorCommand(), cfg, "", dir, "--format", "json")
	require.NoError(t, res.Err)

	var out DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
	for _, check := range out.HealthChecks {
		assert.NotEqual(t, "keyword-case", check.RuleID)
	}
}

func TestDoctorCommand_Markdown(t *testing.T) {
	dir := testutil.SetupTestProject(t, map[string]string{"models/clean.sql": testutil.CleanSQL})

	res := testutil.ExecuteCommand(t, NewDoctorCommand(), nil, "", dir, "--format", "markdown")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, "# SQL Style Health Report")
	assert.Contains(t, res.Out, "### Layout")
	assert.Contains(t, res.Out, "- **[PASS]** keyword-case")
	assert.Contains(t, res.Out, "**100/100**")
	assert.NotContains(t, res.Out, "## Recommendations")
	testutil.AssertValidMarkdown(t, res.Out)
}
