package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/internal/cli/testutil"
)

func TestDiagnoseCommand(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewDiagnoseCommand(), nil, testutil.MessySQL, "-")
	require.NoError(t, res.Err)

	var files []output.DiagnoseFileResult
	require.NoError(t, json.Unmarshal([]byte(res.Out), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "-", files[0].Path)
	assert.Equal(t, testutil.CleanSQL, files[0].Formatted)
	assert.NotEmpty(t, files[0].Diagnostics)
	assert.Empty(t, files[0].Error)
}

func TestDiagnoseCommand_ParseError(t *testing.T) {
	res := testutil.ExecuteCommand(t, NewDiagnoseCommand(), nil, "select (1", "-")
	require.NoError(t, res.Err)

	var files []output.DiagnoseFileResult
	require.NoError(t, json.Unmarshal([]byte(res.Out), &files))
	require.Len(t, files, 1)
	assert.NotEmpty(t, files[0].Error)
	assert.Empty(t, files[0].Diagnostics)
}
