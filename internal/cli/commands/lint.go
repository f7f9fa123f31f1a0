package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/batch"
	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/internal/watch"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Format   string   // Output format: text, markdown, json
	Disable  []string // Rule IDs to disable
	Severity string   // Minimum severity: error, warning, info, hint
	Rules    []string // Run only specific rules
	Watch    bool     // Re-lint on change
	NoCache  bool     // Bypass the lint cache
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Check SQL files against the style rules",
		Long: `Check SQL files for style violations.

Paths may be files or directories; directories are searched recursively
for *.sql files. Use "-" to read from standard input. Rules can be
configured in .sqlstyle.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Lint the current directory
  sqlstyle lint

  # Lint specific files
  sqlstyle lint models/orders.sql models/customers.sql

  # Output as JSON
  sqlstyle lint --format json

  # Disable specific rules
  sqlstyle lint --disable boolean-prefix,count-rows

  # Only report errors and warnings
  sqlstyle lint --severity warning

  # Re-lint whenever a file changes
  sqlstyle lint models --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "info", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch paths and re-lint on change")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not read or write the lint cache")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "hint"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runLint(cmd *cobra.Command, args []string, opts *LintOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	ctx := cmd.Context()

	threshold, err := lint.ParseSeverity(opts.Severity)
	if err != nil {
		return fmt.Errorf("invalid --severity: %w", err)
	}

	linter, err := cmdCtx.Linter(config.LintOverrides{Disable: opts.Disable, Only: opts.Rules})
	if err != nil {
		return err
	}

	lc, closeCache := cmdCtx.OpenCache(ctx, opts.NoCache)
	defer closeCache()

	proc := batch.NewProcessor(linter, cmdCtx.Cfg.Style,
		batch.WithCache(lc),
		batch.WithWorkers(cmdCtx.Cfg.Workers),
		batch.WithLogger(cmdCtx.Logger),
	)

	lintOnce := func(ctx context.Context, args []string) error {
		docs, err := LoadDocuments(cmd, args)
		if err != nil {
			return err
		}
		results, err := proc.Run(ctx, docs)
		if err != nil {
			return err
		}
		if renderLintResults(cmdCtx.Renderer, filterBySeverity(results, threshold)) {
			return ErrViolationsFound
		}
		return nil
	}

	if !opts.Watch {
		return lintOnce(ctx, args)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	for _, arg := range args {
		if arg == batch.StdinPath {
			return fmt.Errorf("--watch cannot read from standard input")
		}
	}

	if err := lintOnce(ctx, args); err != nil && !errors.Is(err, ErrViolationsFound) {
		return err
	}
	w := watch.New(args, watch.WithLogger(cmdCtx.Logger))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		var existing []string
		for _, path := range changed {
			if _, err := os.Stat(path); err == nil {
				existing = append(existing, path)
			}
		}
		if len(existing) == 0 {
			return
		}
		cmdCtx.Renderer.Println(cmdCtx.Renderer.Styles().Muted.Render(
			fmt.Sprintf("Change detected in %d file(s)", len(existing))))
		if err := lintOnce(ctx, existing); err != nil && !errors.Is(err, ErrViolationsFound) {
			cmdCtx.Logger.Error("lint failed", slog.Any("error", err))
		}
	})
}

func filterBySeverity(results []batch.Result, threshold lint.Severity) []batch.Result {
	filtered := make([]batch.Result, 0, len(results))
	for _, res := range results {
		var kept []lint.Violation
		for _, v := range res.Violations {
			if v.Severity.AtLeast(threshold) {
				kept = append(kept, v)
			}
		}
		res.Violations = kept
		filtered = append(filtered, res)
	}
	return filtered
}

func summarize(results []batch.Result) output.LintSummary {
	summary := output.LintSummary{FilesAnalyzed: len(results)}
	for _, res := range results {
		if res.Failed() {
			summary.FilesFailed++
			continue
		}
		summary.TotalIssues += len(res.Violations)
		for _, v := range res.Violations {
			switch v.Severity {
			case lint.SeverityError:
				summary.Errors++
			case lint.SeverityWarning:
				summary.Warnings++
			case lint.SeverityInfo:
				summary.Info++
			case lint.SeverityHint:
				summary.Hints++
			}
		}
	}
	return summary
}

// renderLintResults writes the results and reports whether anything was
// found, including files that failed to parse.
func renderLintResults(r *output.Renderer, results []batch.Result) bool {
	summary := summarize(results)
	hasIssues := summary.TotalIssues > 0 || summary.FilesFailed > 0

	if r.EffectiveMode() == output.ModeJSON {
		jsonOutput := output.LintOutput{Summary: summary, Files: []output.LintFileResult{}}
		for _, res := range results {
			fileResult := output.LintFileResult{Path: res.Path}
			if res.Err != nil {
				fileResult.Error = res.Err.Error()
			}
			fileResult.Diagnostics = toDiagnostics(res.Violations)
			jsonOutput.Files = append(jsonOutput.Files, fileResult)
		}
		_ = r.JSON(jsonOutput)
		return hasIssues
	}

	if !hasIssues {
		r.Success(fmt.Sprintf("No style issues found in %d files", summary.FilesAnalyzed))
		return false
	}

	styles := r.Styles()
	for _, res := range results {
		if res.Err == nil && len(res.Violations) == 0 {
			continue
		}
		r.Println(styles.Path.Render(res.Path))
		if res.Err != nil {
			r.Printf("  %s  %s\n", styles.Error.Render("failed "), res.Err)
		}
		for _, v := range res.Violations {
			loc := fmt.Sprintf("%d:%d", v.Span.Start.Line, v.Span.Start.Column)
			r.Printf("  %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-7s", loc)),
				severityLabel(styles, v.Severity),
				styles.Bold.Render(v.RuleID),
				v.Message,
			)
		}
		r.Println("")
	}

	summaryParts := []string{fmt.Sprintf("%d issues", summary.TotalIssues)}
	if summary.Errors > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d errors", summary.Errors))
	}
	if summary.Warnings > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d warnings", summary.Warnings))
	}
	if summary.Info > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d info", summary.Info))
	}
	if summary.Hints > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d hints", summary.Hints))
	}
	if summary.FilesFailed > 0 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d unparsable files", summary.FilesFailed))
	}
	r.Printf("Summary: %s in %d files\n", strings.Join(summaryParts, ", "), summary.FilesAnalyzed)

	return true
}

func severityLabel(styles *output.Styles, sev lint.Severity) string {
	return severityStyle(styles, sev).Render(fmt.Sprintf("%-7s", sev.String()))
}

func toDiagnostics(violations []lint.Violation) []output.LintDiagnostic {
	diags := make([]output.LintDiagnostic, 0, len(violations))
	for _, v := range violations {
		diags = append(diags, output.LintDiagnostic{
			RuleID:   v.RuleID,
			Severity: v.Severity.String(),
			Message:  v.Message,
			Line:     v.Span.Start.Line,
			Column:   v.Span.Start.Column,
			EndLine:  v.Span.End.Line,
			EndCol:   v.Span.End.Column,
			Fixable:  v.Fix != nil,
		})
	}
	return diags
}
