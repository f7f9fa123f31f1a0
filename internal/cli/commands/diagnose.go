package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/batch"
	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
)

// NewDiagnoseCommand creates the diagnose command.
func NewDiagnoseCommand() *cobra.Command {
	var disable []string

	cmd := &cobra.Command{
		Use:   "diagnose [path...]",
		Short: "Lint and format in one pass, as JSON",
		Long: `Parse each file once and report its violations together with its
canonical formatting. Output is always JSON, intended for editors and
other tools.`,
		Example: `  # Diagnose a query from standard input
  cat query.sql | sqlstyle diagnose -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd, string(output.ModeJSON))

			docs, err := LoadDocuments(cmd, args)
			if err != nil {
				return err
			}
			linter, err := cmdCtx.Linter(config.LintOverrides{Disable: disable})
			if err != nil {
				return err
			}

			proc := batch.NewProcessor(linter, cmdCtx.Cfg.Style,
				batch.WithFormat(true),
				batch.WithWorkers(cmdCtx.Cfg.Workers),
				batch.WithLogger(cmdCtx.Logger),
			)
			results, err := proc.Run(cmd.Context(), docs)
			if err != nil {
				return err
			}

			files := make([]output.DiagnoseFileResult, 0, len(results))
			for _, res := range results {
				file := output.DiagnoseFileResult{
					Path:        res.Path,
					Diagnostics: toDiagnostics(res.Violations),
					Formatted:   res.Formatted,
				}
				if res.Err != nil {
					file.Error = res.Err.Error()
				}
				files = append(files, file)
			}
			return cmdCtx.Renderer.JSON(files)
		},
	}

	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Rule IDs to disable")

	return cmd
}
