// Package format renders a parsed SQL statement in canonical layout.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/sqlstyle/pkg/ast"
	"github.com/leapstack-labs/sqlstyle/pkg/style"
	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Printer handles SQL formatting with proper indentation and style.
type Printer struct {
	cfg         style.Config
	comments    Attachments
	output      *bytes.Buffer
	depth       int
	atLineStart bool

	// Table aliases removed under the alias policy, and the rewrites for
	// columns qualified with them, keyed by lower-case alias.
	dropped  map[*ast.TableName]bool
	rewrites map[string]aliasRewrite
}

func newPrinter(cfg style.Config, comments Attachments) *Printer {
	if cfg.IndentWidth <= 0 {
		cfg.IndentWidth = style.Default().IndentWidth
	}
	return &Printer{
		cfg:         cfg,
		comments:    comments,
		output:      &bytes.Buffer{},
		atLineStart: true,
		dropped:     map[*ast.TableName]bool{},
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	p.output.WriteString(p.cfg.Indent(p.depth))
	p.atLineStart = false
}

// trimNewline moves the cursor back to the end of the last written line.
func (p *Printer) trimNewline() {
	b := p.output.Bytes()
	n := len(b)
	for n > 0 && b[n-1] == '\n' {
		n--
	}
	p.output.Truncate(n)
	p.atLineStart = n == 0
}

func (p *Printer) keyword(s string) {
	p.write(p.cfg.Keyword(s))
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords separated by single spaces, cased per the config.
func (p *Printer) kw(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.space()
		}
		p.keyword(t.String())
	}
}

// formatComments prints each comment on a line of its own.
func (p *Printer) formatComments(comments []*token.Comment) {
	for _, c := range comments {
		p.write(c.Text)
		p.writeln()
	}
}

// formatList prints count items on the current line separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}

// formatLines prints count items one per line, with commas placed per the
// configured comma style. Every item, the last included, ends its line.
func (p *Printer) formatLines(count int, format func(i int)) {
	leading := p.cfg.CommaStyle == style.CommaLeading
	for i := 0; i < count; i++ {
		if leading && i > 0 {
			p.write(", ")
		}
		format(i)
		if !leading && i < count-1 {
			p.write(",")
		}
		p.writeln()
	}
}
