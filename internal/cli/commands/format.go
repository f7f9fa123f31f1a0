package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/batch"
	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
)

// FormatOptions holds options for the format command.
type FormatOptions struct {
	Format  string // Output format: text, markdown, json
	Check   bool   // Report files that would change
	Write   bool   // Rewrite files in place
	Diff    bool   // Print unified diffs
	Suggest bool   // Apply rule fixes instead of the canonical layout
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}
	cmd := &cobra.Command{
		Use:     "format [path...]",
		Aliases: []string{"fmt"},
		Short:   "Rewrite SQL files in the canonical style",
		Long: `Rewrite SQL files in the canonical layout.

By default the formatted text is printed to standard output. Use --write
to update files in place, --check to only report files that would change,
or --diff to print a unified diff.

With --suggest the fixes proposed by the lint rules are applied to the
original text instead, keeping the existing layout wherever no rule
objects to it.`,
		Example: `  # Print the formatted query
  sqlstyle format query.sql

  # Format from standard input
  cat query.sql | sqlstyle format -

  # Rewrite every file under models/
  sqlstyle format --write models

  # Fail in CI when a file is not formatted
  sqlstyle format --check models

  # Preview changes
  sqlstyle format --diff models`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Report files that would change without writing")
	cmd.Flags().BoolVar(&opts.Write, "write", false, "Write the result back to the files")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "Print a unified diff of the changes")
	cmd.Flags().BoolVar(&opts.Suggest, "suggest", false, "Apply rule fixes instead of reformatting")
	cmd.MarkFlagsMutuallyExclusive("check", "write", "diff")

	return cmd
}

// formatted is the outcome for one document.
type formatted struct {
	Path     string
	Original string
	Output   string
	Err      error
}

func (f formatted) changed() bool {
	return f.Err == nil && f.Output != f.Original
}

func runFormat(cmd *cobra.Command, args []string, opts *FormatOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)

	docs, err := LoadDocuments(cmd, args)
	if err != nil {
		return err
	}

	linter, err := cmdCtx.Linter(config.LintOverrides{})
	if err != nil {
		return err
	}

	results, err := formatDocuments(cmd, cmdCtx, linter, docs, opts.Suggest)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return renderFormatJSON(r, results, opts)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.Error(fmt.Sprintf("%s: %v", res.Path, res.Err))
		}
	}

	var changed int
	switch {
	case opts.Write:
		for _, res := range results {
			if !res.changed() {
				continue
			}
			if res.Path == batch.StdinPath {
				r.Printf("%s", res.Output)
				continue
			}
			if err := writeFilePreservingMode(res.Path, res.Output); err != nil {
				return err
			}
			changed++
			cmdCtx.Logger.Debug("formatted", "path", res.Path)
		}
		r.Success(fmt.Sprintf("Formatted %d of %d files", changed, len(results)))

	case opts.Check:
		for _, res := range results {
			if res.changed() {
				changed++
				r.Printf("%s %s\n", r.Styles().Warning.Render("would reformat"), res.Path)
			}
		}
		if changed == 0 && failed == 0 {
			r.Success(fmt.Sprintf("%d files already formatted", len(results)))
		}

	case opts.Diff:
		styles := r.Styles()
		for _, res := range results {
			if !res.changed() {
				continue
			}
			changed++
			text, err := unifiedDiff(res)
			if err != nil {
				return err
			}
			for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
				switch {
				case strings.HasPrefix(line, "+") && !isDiffHeader(line):
					r.Println(styles.Added.Render(line))
				case strings.HasPrefix(line, "-") && !isDiffHeader(line):
					r.Println(styles.Removed.Render(line))
				default:
					r.Println(line)
				}
			}
		}

	default:
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			if len(results) > 1 {
				r.Println("-- " + res.Path)
			}
			r.Printf("%s", res.Output)
		}
		return failedErr(failed)
	}

	if changed > 0 && !opts.Write {
		return ErrViolationsFound
	}
	return failedErr(failed)
}

func failedErr(failed int) error {
	if failed > 0 {
		return fmt.Errorf("%d files could not be parsed", failed)
	}
	return nil
}

func formatDocuments(cmd *cobra.Command, cmdCtx *CommandContext, linter *sqlstyle.Linter, docs []batch.Document, suggest bool) ([]formatted, error) {
	results := make([]formatted, len(docs))

	if suggest {
		for i, doc := range docs {
			results[i] = formatted{Path: doc.Path, Original: doc.Source}
			fix, err := linter.Fix(doc.Source, cmdCtx.Cfg.Style)
			if err != nil {
				results[i].Err = err
				continue
			}
			results[i].Output = fix.Output
			if len(fix.Skipped) > 0 {
				cmdCtx.Logger.Info("overlapping fixes skipped", "path", doc.Path, "count", len(fix.Skipped))
			}
		}
		return results, nil
	}

	proc := batch.NewProcessor(linter, cmdCtx.Cfg.Style,
		batch.WithFormat(true),
		batch.WithWorkers(cmdCtx.Cfg.Workers),
		batch.WithLogger(cmdCtx.Logger),
	)
	batchResults, err := proc.Run(cmd.Context(), docs)
	if err != nil {
		return nil, err
	}
	for i, res := range batchResults {
		results[i] = formatted{Path: res.Path, Original: docs[i].Source, Output: res.Formatted, Err: res.Err}
	}
	return results, nil
}

func unifiedDiff(res formatted) (string, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.Original),
		B:        difflib.SplitLines(res.Output),
		FromFile: res.Path,
		ToFile:   res.Path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", res.Path, err)
	}
	return text, nil
}

func isDiffHeader(line string) bool {
	return strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")
}

func writeFilePreservingMode(path, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func renderFormatJSON(r *output.Renderer, results []formatted, opts *FormatOptions) error {
	out := output.FormatOutput{Files: []output.FormatFileResult{}}
	for _, res := range results {
		file := output.FormatFileResult{Path: res.Path, Changed: res.changed()}
		switch {
		case res.Err != nil:
			file.Error = res.Err.Error()
			out.Failed++
		case file.Changed:
			out.Changed++
		default:
			out.Unchanged++
		}
		if opts.Write && file.Changed && res.Path != batch.StdinPath {
			if err := writeFilePreservingMode(res.Path, res.Output); err != nil {
				return err
			}
		}
		out.Files = append(out.Files, file)
	}
	if err := r.JSON(out); err != nil {
		return err
	}
	if out.Changed > 0 && !opts.Write && (opts.Check || opts.Diff) {
		return ErrViolationsFound
	}
	return failedErr(out.Failed)
}
