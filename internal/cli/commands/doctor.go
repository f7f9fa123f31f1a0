package commands

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/batch"
	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/pkg/lint"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor [path...]",
		Short: "Run a style health check over a set of SQL files",
		Long: `Analyze SQL files and summarize how closely they follow the house style.

The report includes:
- A summary of files analyzed, unparsable files and files that are not
  in canonical layout
- One health check per enabled rule, grouped by rule group
- A health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check the current directory
  sqlstyle doctor

  # Output as JSON
  sqlstyle doctor models --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains file-level statistics.
type ProjectSummary struct {
	Files       int `json:"files"`
	Unparsable  int `json:"unparsable"`
	Unformatted int `json:"unformatted"`
	Fixable     int `json:"fixable"`
}

// HealthCheck is the outcome of one rule across all files.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	r := cmdCtx.Renderer

	docs, err := LoadDocuments(cmd, args)
	if err != nil {
		return err
	}

	lintCfg, err := cmdCtx.Cfg.BuildLintConfig(config.LintOverrides{})
	if err != nil {
		return err
	}
	linter := sqlstyle.New(sqlstyle.WithLintConfig(lintCfg))

	proc := batch.NewProcessor(linter, cmdCtx.Cfg.Style,
		batch.WithFormat(true),
		batch.WithWorkers(cmdCtx.Cfg.Workers),
		batch.WithLogger(cmdCtx.Logger),
	)
	results, err := proc.Run(cmd.Context(), docs)
	if err != nil {
		return err
	}

	doctorOutput := buildDoctorOutput(lintCfg, docs, results)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func buildDoctorOutput(lintCfg *lint.Config, docs []batch.Document, results []batch.Result) *DoctorOutput {
	summary := ProjectSummary{Files: len(results)}

	// Group violations by rule
	byRule := make(map[string][]string)
	severities := make(map[string]lint.Severity)
	issues := 0
	for i, res := range results {
		if res.Failed() {
			summary.Unparsable++
			continue
		}
		if res.Formatted != docs[i].Source {
			summary.Unformatted++
		}
		for _, v := range res.Violations {
			issues++
			if v.Fix != nil {
				summary.Fixable++
			}
			byRule[v.RuleID] = append(byRule[v.RuleID],
				fmt.Sprintf("%s:%d:%d %s", res.Path, v.Span.Start.Line, v.Span.Start.Column, v.Message))
			severities[v.RuleID] = v.Severity
		}
	}

	var healthChecks []HealthCheck
	for _, rule := range lint.GetAll() {
		if lintCfg.IsDisabled(rule.ID) {
			continue
		}
		details := byRule[rule.ID]
		status := "pass"
		if len(details) > 0 {
			status = "warn"
			if severities[rule.ID] == lint.SeverityError {
				status = "error"
			}
		}
		healthChecks = append(healthChecks, HealthCheck{
			RuleID:     rule.ID,
			Name:       rule.Name,
			Group:      rule.Group,
			Status:     status,
			IssueCount: len(details),
			Details:    details,
		})
	}

	// Sort health checks by group then by rule ID
	sort.SliceStable(healthChecks, func(i, j int) bool {
		if healthChecks[i].Group != healthChecks[j].Group {
			return healthChecks[i].Group < healthChecks[j].Group
		}
		return healthChecks[i].RuleID < healthChecks[j].RuleID
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks, summary),
		Recommendations: generateRecommendations(healthChecks, summary),
		IssueCount:      issues,
	}
}

// calculateHealthScore computes a health score from 0-100. Each issue
// costs points; errors and unparsable files count double, and the cost
// shrinks as the number of files grows.
func calculateHealthScore(checks []HealthCheck, summary ProjectSummary) int {
	score := 100.0

	basePenalty := 5.0
	if summary.Files > 10 {
		basePenalty = 3.0
	}
	if summary.Files > 50 {
		basePenalty = 2.0
	}
	if summary.Files > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}
	score -= float64(summary.Unparsable) * basePenalty * 2

	return int(max(0, min(100, score)))
}

// maxRecommendations caps the recommendation list.
const maxRecommendations = 5

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck, summary ProjectSummary) []string {
	recommendations := []string{}
	if summary.Unparsable > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Fix syntax errors in %d files; they are skipped by every rule", summary.Unparsable))
	}
	if summary.Unformatted > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Run 'sqlstyle format --write' to put %d files in canonical layout", summary.Unformatted))
	}
	if summary.Fixable > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Run 'sqlstyle format --suggest --write' to apply %d automatic fixes", summary.Fixable))
	}

	seen := make(map[string]bool)
	for _, check := range checks {
		if check.IssueCount == 0 || seen[check.Group] {
			continue
		}
		seen[check.Group] = true
		if rec := groupRecommendation(check.Group); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// groupRecommendation returns the advice for issues in a rule group.
func groupRecommendation(group string) string {
	switch group {
	case "structure":
		return "Restructure queries: prefer CTEs to subqueries and spell out join types"
	case "convention":
		return "Use the configured quoting and comparison conventions consistently"
	case "aliasing":
		return "Alias aggregates and drop table aliases from single-table queries"
	case "layout":
		return "Keep one column per line with trailing commas and operators"
	case "naming":
		return "Rename identifiers to snake_case and prefix boolean columns"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("SQL Style Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Summary
	r.Println(styles.Header2.Render("Summary"))
	r.Printf("   Files: %d | Unparsable: %d | Not formatted: %d\n",
		out.Summary.Files, out.Summary.Unparsable, out.Summary.Unformatted)
	r.Printf("   Issues: %d | Automatically fixable: %d\n", out.IssueCount, out.Summary.Fixable)
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.Error.Render("✗")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		// Show first 3 details for issues
		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println(output.FormatHeader(1, "SQL Style Health Report"))
	r.Println("")

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println("")
	r.Printf("- **Files**: %d\n", out.Summary.Files)
	r.Printf("- **Unparsable**: %d\n", out.Summary.Unparsable)
	r.Printf("- **Not formatted**: %d\n", out.Summary.Unformatted)
	r.Printf("- **Issues**: %d\n", out.IssueCount)
	r.Printf("- **Automatically fixable**: %d\n", out.Summary.Fixable)
	r.Println("")

	r.Println(output.FormatHeader(2, "Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(output.FormatHeader(3, titleCaser.String(currentGroup)))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Health Score"))
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(output.FormatHeader(2, "Recommendations"))
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
