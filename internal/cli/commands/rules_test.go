package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/cli/testutil"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
)

func TestRulesCommand_ListJSON(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "--format", "json")
	require.NoError(t, res.Err)

	var out RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
	assert.Equal(t, lint.Count(), out.Count)
	assert.Len(t, out.Rules, out.Count)
}

func TestRulesCommand_ListMarkdown(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "--verbose")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, "# Lint Rules")
	assert.Contains(t, res.Out, "## Layout")
	assert.Contains(t, res.Out, "**keyword-case**")
	testutil.AssertValidMarkdown(t, res.Out)
	testutil.AssertNoANSI(t, res.Out)
}

func TestRulesCommand_ListText(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "--format", "text")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, "Lint Rules (")
	assert.Contains(t, res.Out, "keyword-case")
	assert.Contains(t, res.Out, "sqlstyle rules <rule-id>")
}

func TestRulesCommand_FilterByGroup(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "--group", "structure", "--format", "json")
	require.NoError(t, res.Err)

	var out RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &out))
	require.NotEmpty(t, out.Rules)
	assert.Len(t, out.Rules, len(lint.GetByGroup("structure")))
	for _, rule := range out.Rules {
		assert.Equal(t, "structure", rule.Group)
	}
}

func TestRulesCommand_UnknownGroup(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "--group", "nope")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "unknown rule group")
}

func TestRulesCommand_Show(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "long-in-list")
		require.NoError(t, res.Err)

		assert.Contains(t, res.Out, "# long-in-list")
		assert.Contains(t, res.Out, "## Configuration")
		assert.Contains(t, res.Out, "`max_items`")
		testutil.AssertValidMarkdown(t, res.Out)
	})

	t.Run("json", func(t *testing.T) {
		res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "keyword-case", "--format", "json")
		require.NoError(t, res.Err)

		var info lint.RuleInfo
		require.NoError(t, json.Unmarshal([]byte(res.Out), &info))
		assert.Equal(t, "keyword-case", info.ID)
		assert.Equal(t, "layout", info.Group)
		assert.True(t, info.Fixable)
	})

	t.Run("unknown", func(t *testing.T) {
		res := testutil.ExecuteCommand(t, NewRulesCommand(), nil, "", "no-such-rule")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "not found")
	})
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "short", truncateOneLine("short", 10))
	assert.Equal(t, "first", truncateOneLine("first\nsecond", 10))
	assert.Equal(t, "abcdefg...", truncateOneLine("abcdefghijklmnop", 10))
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "Layout", capitalizeFirst("layout"))
	assert.Empty(t, capitalizeFirst(""))
}
