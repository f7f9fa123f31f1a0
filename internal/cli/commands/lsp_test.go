package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/testutil"
	"github.com/leapstack-labs/sqlstyle/internal/lsp"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

func frame(t *testing.T, msg map[string]any) string {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestLSPCommand_Session(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile),
		[]byte("style:\n  keyword_case: lower\n"), 0600))

	stdin := frame(t, map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "initialize",
		"params": map[string]any{"rootUri": lsp.PathToURI(dir)},
	}) + frame(t, map[string]any{
		"jsonrpc": "2.0", "id": 2, "method": "textDocument/formatting",
		"params": map[string]any{"textDocument": map[string]string{"uri": "file:///missing.sql"}},
	}) + frame(t, map[string]any{
		"jsonrpc": "2.0", "id": 3, "method": "shutdown",
	}) + frame(t, map[string]any{"jsonrpc": "2.0", "method": "exit"})

	res := testutil.ExecuteCommand(t, NewLSPCommand("9.9.9"), nil, stdin)
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, `"name":"sqlstyle","version":"9.9.9"`)
	assert.Contains(t, res.Out, `"id":2,"result":[]`)
	assert.NotContains(t, res.Out, "window/showMessage")
}

func TestLSPCommand_ExitWithoutShutdown(t *testing.T) {
	stdin := frame(t, map[string]any{"jsonrpc": "2.0", "method": "exit"})

	res := testutil.ExecuteCommand(t, NewLSPCommand("dev"), nil, stdin)
	assert.ErrorIs(t, res.Err, lsp.ErrExitWithoutShutdown)
}

func TestLoadLSPSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile),
		[]byte("style:\n  keyword_case: lower\n  indent_width: 2\n"), 0600))

	settings, err := loadLSPSettings(dir)
	require.NoError(t, err)
	require.NotNil(t, settings.Linter)
	assert.Equal(t, style.KeywordLower, settings.Style.KeywordCase)

	out, err := settings.Linter.Format("SELECT id, email FROM users", settings.Style)
	require.NoError(t, err)
	assert.Equal(t, "select\n  id,\n  email\nfrom users\n", out)
}

func TestLoadLSPSettings_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile),
		[]byte("style:\n  keyword_case: shouty\n"), 0600))

	_, err := loadLSPSettings(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
