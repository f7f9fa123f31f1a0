package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/cli/commands"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"lint", "format", "diagnose", "doctor", "rules", "init", "lsp", "version", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCmd_StyleFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := runRoot(t, "select id, email from users", "format", "--indent-width", "2", "-")

	require.NoError(t, err)
	assert.Equal(t, "SELECT\n  id,\n  email\nFROM users\n", out)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sqlstyle.yaml"),
		[]byte("style:\n  keyword_case: lower\n"), 0600))
	t.Chdir(dir)

	out, _, err := runRoot(t, "SELECT id, email FROM users", "format", "-")

	require.NoError(t, err)
	assert.Equal(t, "select\n    id,\n    email\nfrom users\n", out)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sqlstyle.yaml"),
		[]byte("style:\n  keyword_case: shouty\n"), 0600))
	t.Chdir(dir)

	_, _, err := runRoot(t, "select 1", "format", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRootCmd_LintExitStatus(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runRoot(t, "select id, email from users", "lint", "-")

	require.ErrorIs(t, err, commands.ErrViolationsFound)
}

func TestRootCmd_Completion(t *testing.T) {
	out, _, err := runRoot(t, "", "completion", "bash")

	require.NoError(t, err)
	assert.Contains(t, out, "sqlstyle")
}
