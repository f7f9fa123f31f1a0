package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewLintCommand(), "lint [path...]", []string{"format", "disable", "severity", "rule", "watch", "no-cache"}},
		{NewFormatCommand(), "format [path...]", []string{"format", "check", "write", "diff", "suggest"}},
		{NewDiagnoseCommand(), "diagnose [path...]", []string{"disable"}},
		{NewDoctorCommand(), "doctor [path...]", []string{"format"}},
		{NewRulesCommand(), "rules [rule-id]", []string{"group", "verbose", "format"}},
		{NewInitCommand(), "init [directory]", []string{"force"}},
		{NewLSPCommand("1.0.0"), "lsp", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestFormatCommand_Alias(t *testing.T) {
	cmd := NewFormatCommand()
	assert.Equal(t, []string{"fmt"}, cmd.Aliases)
}
