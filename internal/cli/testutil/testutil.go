// Package testutil holds fixtures and helpers for command tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/testutil"
)

// Sample documents used across command tests.
const (
	CleanSQL = "SELECT\n    id,\n    email\nFROM users\n"
	MessySQL = "select id, email from users\n"
)

// SetupTestProject creates a temporary directory holding files, keyed by
// slash-separated relative path. With no files a clean and a messy query
// are written under models/.
func SetupTestProject(t *testing.T, files map[string]string) string {
	t.Helper()

	if files == nil {
		files = map[string]string{
			"models/clean.sql": CleanSQL,
			"models/messy.sql": MessySQL,
		}
	}

	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return tmpDir
}

// ReadFile returns the content of a project file.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// CommandResult holds the captured streams of a command run.
type CommandResult struct {
	Out    string
	ErrOut string
	Err    error
}

// ExecuteCommand runs cmd with args and the given config in its context.
// A nil cfg uses the defaults with the cache disabled.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) CommandResult {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}
	ctx := config.NewContext(context.Background(), cfg, testutil.NewTestLogger(t))

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	return CommandResult{Out: out.String(), ErrOut: errOut.String(), Err: err}
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
