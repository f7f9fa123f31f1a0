package output

// LintSummary counts findings across a lint run.
type LintSummary struct {
	FilesAnalyzed int `json:"files_analyzed"`
	FilesFailed   int `json:"files_failed"`
	TotalIssues   int `json:"total_issues"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
	Info          int `json:"info"`
	Hints         int `json:"hints"`
}

// LintDiagnostic is one violation in JSON output.
type LintDiagnostic struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	EndLine  int    `json:"end_line"`
	EndCol   int    `json:"end_column"`
	Fixable  bool   `json:"fixable"`
}

// LintFileResult groups the diagnostics of one file.
type LintFileResult struct {
	Path        string           `json:"path"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []LintDiagnostic `json:"diagnostics"`
}

// LintOutput is the JSON document written by the lint command.
type LintOutput struct {
	Summary LintSummary      `json:"summary"`
	Files   []LintFileResult `json:"files"`
}

// FormatFileResult reports the outcome of formatting one file.
type FormatFileResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// FormatOutput is the JSON document written by the format command.
type FormatOutput struct {
	Files     []FormatFileResult `json:"files"`
	Changed   int                `json:"changed"`
	Unchanged int                `json:"unchanged"`
	Failed    int                `json:"failed"`
}

// DiagnoseFileResult pairs the diagnostics of one file with its canonical
// form.
type DiagnoseFileResult struct {
	Path        string           `json:"path"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []LintDiagnostic `json:"diagnostics"`
	Formatted   string           `json:"formatted,omitempty"`
}
