package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/lsp"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It publishes
lint diagnostics, offers rule fixes as code actions and formats whole
documents. Style settings are read from the .sqlstyle.yaml found from
the client's workspace root (rootUri parameter).`,
		Example: `  # Start LSP server (usually called by an editor)
  sqlstyle lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cmdCtx := NewCommandContext(cmd, "")

	settings, err := lspSettings(cmdCtx.Cfg)
	if err != nil {
		return err
	}

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), settings,
		lsp.WithLogger(cmdCtx.Logger),
		lsp.WithVersion(version),
		lsp.WithSettingsLoader(loadLSPSettings),
	)
	return server.Run(cmd.Context())
}

// loadLSPSettings resolves the configuration for a workspace root.
func loadLSPSettings(root string) (lsp.Settings, error) {
	cfg, err := config.LoadConfigFrom(root, "", nil)
	if err != nil {
		return lsp.Settings{}, err
	}
	return lspSettings(cfg)
}

func lspSettings(cfg *config.Config) (lsp.Settings, error) {
	lintCfg, err := cfg.BuildLintConfig(config.LintOverrides{})
	if err != nil {
		return lsp.Settings{}, err
	}
	return lsp.Settings{
		Linter: sqlstyle.New(sqlstyle.WithLintConfig(lintCfg)),
		Style:  cfg.Style,
	}, nil
}
