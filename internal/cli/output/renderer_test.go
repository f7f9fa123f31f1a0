package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"text", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"json", ModeJSON},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"empty piped", "", false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text piped", ModeText, false, ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_NoANSIWhenPiped(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeText)

	r.Println(r.Styles().Error.Render("boom"))
	r.Success("done")

	assert.False(t, ansiPattern.MatchString(out.String()), "unexpected ANSI in %q", out.String())
	assert.Equal(t, "boom\ndone\n", out.String())
}

func TestRenderer_NewRendererOnBuffer(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeJSON)

	r.Success("suppressed in json mode")
	require.NoError(t, r.JSON(LintOutput{Summary: LintSummary{TotalIssues: 2}}))

	var decoded LintOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Summary.TotalIssues)
}

func TestRenderer_WarningAndError(t *testing.T) {
	errOut := &bytes.Buffer{}
	r := NewRendererWithTTY(&bytes.Buffer{}, errOut, false, ModeText)

	r.Warning("careful")
	r.Error("failed")
	assert.Equal(t, "warning: careful\nerror: failed\n", errOut.String())
}

func TestRenderer_Table(t *testing.T) {
	header := []string{"ID", "Group"}
	rows := [][]string{{"keyword-case", "layout"}}

	md := &bytes.Buffer{}
	NewRendererWithTTY(md, &bytes.Buffer{}, false, ModeMarkdown).Table(header, rows)
	assert.Contains(t, md.String(), "| keyword-case | layout |")

	text := &bytes.Buffer{}
	NewRendererWithTTY(text, &bytes.Buffer{}, false, ModeText).Table(header, rows)
	assert.Contains(t, text.String(), "keyword-case")
	assert.Contains(t, text.String(), "┌")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Rules", FormatHeader(2, "Rules"))
	assert.Equal(t, "# Top", FormatHeader(0, "Top"))
	assert.Equal(t, "- **Group**: layout", FormatKeyValue("Group", "layout"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}
