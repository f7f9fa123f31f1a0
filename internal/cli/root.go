// Package cli provides the command-line interface for sqlstyle.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/cli/commands"
	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlstyle",
		Short: "sqlstyle - SQL style linter and formatter",
		Long: `sqlstyle checks SQL files against a configurable house style and
rewrites them into a canonical layout.

Settings are read from .sqlstyle.yaml in the working directory or one of
its parents, from SQLSTYLE_ environment variables and from flags.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd, cfg.Verbose)
			if cfg.ConfigFile != "" {
				logger.Debug("using config file", slog.String("path", cfg.ConfigFile))
			}

			cmd.SetContext(config.NewContext(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: nearest .sqlstyle.yaml)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json)")
	pf.Int("workers", 0, "Files processed in parallel (0 = number of CPUs)")
	pf.Bool("cache", false, "Cache lint results between runs")
	pf.String("cache-path", "", "Path to the lint cache database")

	// Style flags
	pf.String("keyword-case", "", "Keyword case (upper|lower)")
	pf.Int("indent-width", 0, "Spaces per indentation level")
	pf.String("comma-style", "", "Comma placement (trailing|leading)")
	pf.String("quote-style", "", "String literal quotes (single|double)")
	pf.String("alias-policy", "", "Table alias policy (none|meaningful|always)")
	pf.String("join-style", "", "Join style (explicit_inner|allow_implicit)")

	completions := map[string][]string{
		"output":       output.ValidModes(),
		"keyword-case": {string(style.KeywordUpper), string(style.KeywordLower)},
		"comma-style":  {string(style.CommaTrailing), string(style.CommaLeading)},
		"quote-style":  {string(style.QuoteSingle), string(style.QuoteDouble)},
		"alias-policy": {string(style.AliasNone), string(style.AliasMeaningful), string(style.AliasAlways)},
		"join-style":   {string(style.JoinExplicitInner), string(style.JoinAllowImplicit)},
	}
	for name, values := range completions {
		_ = rootCmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		})
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewFormatCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewLSPCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command. Violations are reported by the command
// itself, so only other errors are printed.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrViolationsFound) {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlstyle.

To load completions:

Bash:
  $ source <(sqlstyle completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqlstyle completion bash > /etc/bash_completion.d/sqlstyle
  # macOS:
  $ sqlstyle completion bash > $(brew --prefix)/etc/bash_completion.d/sqlstyle

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sqlstyle completion zsh > "${fpath[1]}/_sqlstyle"

Fish:
  $ sqlstyle completion fish | source

  # To load completions for each session, execute once:
  $ sqlstyle completion fish > ~/.config/fish/completions/sqlstyle.fish

PowerShell:
  PS> sqlstyle completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
