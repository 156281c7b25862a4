package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"shcompat/internal/domain"
	"shcompat/internal/execution"
)

// tally keeps the running counts shown while a suite executes
type tally struct {
	total   int
	counts  map[domain.Status]int
	started time.Time
}

func (t *tally) start(total int) {
	t.total = total
	t.counts = make(map[domain.Status]int, len(domain.Statuses))
	t.started = time.Now()
}

func (t *tally) add(s domain.Status) int {
	t.counts[s]++
	done := 0
	for _, n := range t.counts {
		done += n
	}
	return done
}

// finishedLine renders "Finished in 1.23s: ✓ 3 passed: ✗ 1 failed"
func (t *tally) finishedLine(p *Palette) string {
	parts := []string{"Finished in " + p.Info.Sprintf("%.2fs", time.Since(t.started).Seconds())}
	labels := map[domain.Status]string{
		domain.StatusPass:    "passed",
		domain.StatusFail:    "failed",
		domain.StatusTimeout: "timeout",
		domain.StatusError:   "error",
	}
	for _, s := range domain.Statuses {
		if n := t.counts[s]; n > 0 {
			parts = append(parts, p.Status(s).Sprintf("%s %d %s", s.Symbol(), n, labels[s]))
		}
	}
	return strings.Join(parts, ": ")
}

// BarProgress renders a single, overwriting progress bar. Only use it on a
// terminal.
type BarProgress struct {
	w       io.Writer
	palette *Palette
	bar     *progressbar.ProgressBar
	tally   tally
}

// NewBarProgress creates a new BarProgress writing to w
func NewBarProgress(w io.Writer, palette *Palette) *BarProgress {
	return &BarProgress{w: w, palette: palette}
}

// Start draws an empty bar for total tests
func (p *BarProgress) Start(total int) {
	p.tally.start(total)
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(p.describe("")),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        p.palette.Info.Sprint("█"),
			SaucerHead:    p.palette.Info.Sprint("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Running names the test that just started
func (p *BarProgress) Running(name string) {
	if p.bar != nil {
		p.bar.Describe(p.describe(p.palette.Dim.Sprint("Running ") + name))
	}
}

// Done advances the bar by one finished test
func (p *BarProgress) Done(result domain.TestResult) {
	done := p.tally.add(result.Status)
	if p.bar == nil {
		return
	}
	p.bar.Describe(p.describe(p.palette.Dim.Sprint("Completed ") + result.Name))
	_ = p.bar.Set(done)
}

// Finish clears the bar and prints the one-line outcome
func (p *BarProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
	fmt.Fprintln(p.w, p.tally.finishedLine(p.palette))
}

func (p *BarProgress) describe(current string) string {
	var b strings.Builder
	if n := p.tally.counts[domain.StatusPass]; n > 0 {
		b.WriteString(p.palette.Pass.Sprintf("✓ %d ", n))
	}
	if n := p.tally.counts[domain.StatusFail]; n > 0 {
		b.WriteString(p.palette.Fail.Sprintf("✗ %d ", n))
	}
	b.WriteString(current)
	return b.String()
}

// LineProgress writes one append-only line per finished test. It never
// redraws, so it is safe for pipes and log files.
type LineProgress struct {
	w       io.Writer
	palette *Palette
	tally   tally
}

// NewLineProgress creates a new LineProgress writing to w
func NewLineProgress(w io.Writer, palette *Palette) *LineProgress {
	return &LineProgress{w: w, palette: palette}
}

func (p *LineProgress) Start(total int) {
	p.tally.start(total)
}

func (p *LineProgress) Running(string) {}

// Done prints "[i/n] ✓ name (0.12s)"
func (p *LineProgress) Done(result domain.TestResult) {
	done := p.tally.add(result.Status)
	duration := fmt.Sprintf("(%.2fs)", result.Duration.Seconds())
	if result.Status == domain.StatusPass {
		duration = p.palette.Dim.Sprint(duration)
	}
	fmt.Fprintf(p.w, "%s %s %s %s\n",
		p.palette.Header.Sprintf("[%d/%d]", done, p.tally.total),
		p.palette.Symbol(result.Status),
		result.Name,
		duration,
	)
}

func (p *LineProgress) Finish() {
	fmt.Fprintln(p.w, p.tally.finishedLine(p.palette))
}

// NopProgress discards every event
type NopProgress struct{}

func (NopProgress) Start(int) {}

func (NopProgress) Running(string) {}

func (NopProgress) Done(domain.TestResult) {}

func (NopProgress) Finish() {}

// NewProgress picks the renderer for out: a bar on an interactive terminal,
// plain lines otherwise or when verbose.
func NewProgress(out OutputConfig, w io.Writer) execution.Progress {
	palette := NewPalette(out)
	if out.Interactive && !out.Verbose {
		return NewBarProgress(w, palette)
	}
	return NewLineProgress(w, palette)
}
