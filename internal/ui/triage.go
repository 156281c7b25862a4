package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/acarl005/stripansi"

	"shcompat/internal/domain"
	"shcompat/internal/parser"
)

// Triage renders a digest of the failures and timeouts of a stored run
type Triage struct {
	palette *Palette
	w       io.Writer
}

// NewTriage creates a new Triage renderer writing to w
func NewTriage(out OutputConfig, w io.Writer) *Triage {
	return &Triage{palette: NewPalette(out), w: w}
}

// Render writes timeouts first, then failures with at most maxLines diff
// lines each.
func (t *Triage) Render(suite *domain.SuiteResult, maxLines int) {
	p := t.palette
	sep := p.Header.Sprint(strings.Repeat("=", separatorWidth))

	fmt.Fprintln(t.w, sep)
	fmt.Fprintln(t.w, p.Bold.Sprintf("Triage Report for Suite: %s", suite.SuiteName))
	fmt.Fprintln(t.w, sep)

	failed := suite.WithStatus(domain.StatusFail)
	timedOut := suite.WithStatus(domain.StatusTimeout)
	if len(failed) == 0 && len(timedOut) == 0 {
		fmt.Fprintln(t.w, p.Pass.Sprint("No failures or timeouts to triage!"))
		return
	}

	if len(timedOut) > 0 {
		fmt.Fprintf(t.w, "\n%s\n", p.Warn.Sprint("TIMEOUT TESTS:"))
		for _, test := range timedOut {
			t.testHeading(test)
			if test.Error != "" {
				fmt.Fprintf(t.w, "    %s\n", p.Dim.Sprint(clean(test.Error)))
			}
		}
	}

	if len(failed) > 0 {
		fmt.Fprintf(t.w, "\n%s\n", p.Fail.Sprint("FAILED TESTS:"))
		for _, test := range failed {
			t.testHeading(test)
			t.diffExcerpt(test.Error, maxLines)
		}
	}

	fmt.Fprintf(t.w, "\n%s\n", sep)
	fmt.Fprintf(t.w, "Total: %s failed, %s timeout\n",
		p.Fail.Sprint(len(failed)), p.Warn.Sprint(len(timedOut)))
	fmt.Fprintln(t.w, sep)
}

func (t *Triage) testHeading(test domain.TestResult) {
	fmt.Fprintf(t.w, "\n  %s %s (%.2fs)\n",
		t.palette.Symbol(test.Status), t.palette.Bold.Sprint(test.Name), test.Duration.Seconds())
}

func (t *Triage) diffExcerpt(diff string, maxLines int) {
	p := t.palette
	body := parser.DiffBody(clean(diff))
	if len(body) == 0 {
		fmt.Fprintf(t.w, "    %s\n", p.Dim.Sprint("(no diff output)"))
		return
	}
	if maxLines < 0 {
		maxLines = 0
	}

	shown := body
	if len(shown) > maxLines {
		shown = shown[:maxLines]
	}
	for _, line := range shown {
		switch {
		case strings.HasPrefix(line, "-"):
			fmt.Fprintf(t.w, "    %s\n", p.Removed.Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintf(t.w, "    %s\n", p.Added.Sprint(line))
		default:
			fmt.Fprintf(t.w, "    %s\n", p.Dim.Sprint(line))
		}
	}
	if rest := len(body) - len(shown); rest > 0 {
		fmt.Fprintf(t.w, "    %s\n", p.Dim.Sprintf("... (%d more lines)", rest))
	}
}

// clean removes escape sequences the tested shell may have printed, so
// they cannot garble the report.
func clean(s string) string {
	return stripansi.Strip(s)
}

// triageEntries returns the tests worth triaging: timeouts, then failures.
func triageEntries(suite *domain.SuiteResult) []domain.TestResult {
	entries := suite.WithStatus(domain.StatusTimeout)
	return append(entries, suite.WithStatus(domain.StatusFail)...)
}
