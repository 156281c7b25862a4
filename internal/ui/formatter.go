package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"shcompat/internal/domain"
)

const separatorWidth = 70

// Formatter formats and displays run reports
type Formatter struct {
	out     OutputConfig
	palette *Palette
	w       io.Writer
	errW    io.Writer
}

// NewFormatter creates a new Formatter. Reports go to w, run chatter to errW.
func NewFormatter(out OutputConfig, w, errW io.Writer) *Formatter {
	return &Formatter{
		out:     out,
		palette: NewPalette(out),
		w:       w,
		errW:    errW,
	}
}

func (f *Formatter) separator() string {
	return f.palette.Header.Sprint(strings.Repeat("=", separatorWidth))
}

// PrintList prints one name per line
func (f *Formatter) PrintList(names []string) {
	for _, name := range names {
		fmt.Fprintln(f.w, name)
	}
}

// SuiteBanner separates suites when several run in one invocation
func (f *Formatter) SuiteBanner(name string) {
	sep := f.separator()
	fmt.Fprintf(f.errW, "\n%s\n%s\n%s\n", sep, f.palette.Bold.Sprintf("Running suite: %s", name), sep)
}

// SuiteHeader announces how many tests are about to run
func (f *Formatter) SuiteHeader(count, workers int) {
	header := fmt.Sprintf("Running %d %s", count, plural(count, "test"))
	if workers > 1 {
		header += fmt.Sprintf(" with %d %s", workers, plural(workers, "worker"))
	}
	fmt.Fprintln(f.errW, f.palette.Info.Sprint(header))
}

// Notef prints a dimmed side note to the run chatter stream
func (f *Formatter) Notef(format string, args ...interface{}) {
	fmt.Fprintln(f.errW, f.palette.Dim.Sprintf(format, args...))
}

// SuiteSummary prints the counts of a finished suite and enumerates every
// test that did not pass. Diffs are shown only in verbose mode.
func (f *Formatter) SuiteSummary(suite *domain.SuiteResult) {
	sep := f.separator()
	fmt.Fprintf(f.w, "\n%s\n%s\n%s\n", sep, f.palette.Bold.Sprintf("Test Suite: %s", suite.SuiteName), sep)

	fmt.Fprintf(f.w, "Total:    %d\n", suite.Total)
	fmt.Fprintf(f.w, "Passed:   %s (%.1f%%)\n", f.count(suite.Passed, f.palette.Pass), suite.PassRate())
	fmt.Fprintf(f.w, "Failed:   %s\n", f.count(suite.Failed, f.palette.Fail))
	fmt.Fprintf(f.w, "Timeout:  %s\n", f.count(suite.Timeout, f.palette.Warn))
	fmt.Fprintf(f.w, "Error:    %s\n", f.count(suite.Error, f.palette.Warn))
	fmt.Fprintf(f.w, "Duration: %s\n", f.palette.Info.Sprintf("%.2fs", suite.Duration.Seconds()))
	fmt.Fprintln(f.w, sep)

	sections := []struct {
		status domain.Status
		title  string
	}{
		{domain.StatusFail, "Failed Tests:"},
		{domain.StatusTimeout, "Timeout Tests:"},
		{domain.StatusError, "Error Tests:"},
	}
	for _, section := range sections {
		tests := suite.WithStatus(section.status)
		if len(tests) == 0 {
			continue
		}
		fmt.Fprintf(f.w, "\n%s\n", f.palette.Status(section.status).Sprint(section.title))
		for _, test := range tests {
			fmt.Fprintf(f.w, "  %s %s\n", f.palette.Symbol(test.Status), test.Name)
			if f.out.Verbose && test.Error != "" {
				f.indented(test.Error, "    ")
			}
		}
	}
}

// TestReport prints the outcome of a single test
func (f *Formatter) TestReport(result domain.TestResult, showOutput bool) {
	fmt.Fprintln(f.w, f.palette.Bold.Sprintf("Test: %s", result.Name))
	fmt.Fprintf(f.w, "Status: %s\n", f.palette.Status(result.Status).Sprintf("%s %s", result.Status.Symbol(), result.Status))
	fmt.Fprintf(f.w, "Duration: %s\n", f.palette.Info.Sprintf("%.2fs", result.Duration.Seconds()))

	if showOutput {
		if result.Output != "" {
			fmt.Fprintf(f.w, "\n%s\n%s", f.palette.Bold.Sprint("Output:"), withNewline(result.Output))
		} else {
			fmt.Fprintf(f.w, "\n%s %s\n", f.palette.Bold.Sprint("Output:"), f.palette.Dim.Sprint("(empty)"))
		}
	}

	if result.Error != "" && (result.Status != domain.StatusPass || showOutput) {
		fmt.Fprintf(f.w, "\n%s\n%s", f.palette.Fail.Sprint("Error/Diff:"), withNewline(result.Error))
	}
}

// Overall prints a table comparing several suites with a TOTAL footer
func (f *Formatter) Overall(suites []*domain.SuiteResult) {
	t := table.NewWriter()
	t.SetOutputMirror(f.w)
	t.SetTitle("Overall Summary")
	t.AppendHeader(table.Row{"Suite", "Total", "Passed", "Failed", "Timeout", "Error", "Pass Rate"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Total", Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Name: "Timeout", Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Name: "Error", Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Name: "Pass Rate", Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var total domain.SuiteResult
	for _, suite := range suites {
		t.AppendRow(table.Row{
			suite.SuiteName,
			suite.Total,
			f.count(suite.Passed, f.palette.Pass),
			f.count(suite.Failed, f.palette.Fail),
			f.count(suite.Timeout, f.palette.Warn),
			f.count(suite.Error, f.palette.Warn),
			f.rate(suite),
		})
		total.Total += suite.Total
		total.Passed += suite.Passed
		total.Failed += suite.Failed
		total.Timeout += suite.Timeout
		total.Error += suite.Error
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		total.Total,
		total.Passed,
		total.Failed,
		total.Timeout,
		total.Error,
		f.rate(&total),
	})
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}

// count colors n only when it is worth noticing
func (f *Formatter) count(n int, c *color.Color) string {
	if n == 0 {
		return "0"
	}
	return c.Sprint(n)
}

func (f *Formatter) rate(suite *domain.SuiteResult) string {
	rate := suite.PassRate()
	s := fmt.Sprintf("%.1f%%", rate)
	switch {
	case suite.Total == 0:
		return s
	case rate == 100:
		return f.palette.Pass.Sprint(s)
	case rate >= 80:
		return f.palette.Warn.Sprint(s)
	default:
		return f.palette.Fail.Sprint(s)
	}
}

func (f *Formatter) indented(block, prefix string) {
	for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
		fmt.Fprintf(f.w, "%s%s\n", prefix, line)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
