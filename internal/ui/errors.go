package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"shcompat/internal/domain"
	"shcompat/internal/parser"
)

// FailureViewer browses the failures and timeouts of a stored run in an
// interactive TUI
type FailureViewer struct {
	w       io.Writer
	palette *Palette
}

// NewFailureViewer creates a new FailureViewer. Messages that do not need
// the TUI go to w.
func NewFailureViewer(out OutputConfig, w io.Writer) *FailureViewer {
	return &FailureViewer{w: w, palette: NewPalette(out)}
}

// View opens the viewer over the suite's timeouts and failures
func (fv *FailureViewer) View(suite *domain.SuiteResult) error {
	entries := triageEntries(suite)
	if len(entries) == 0 {
		fmt.Fprintln(fv.w, fv.palette.Pass.Sprint("✓ No failures or timeouts to triage!"))
		return nil
	}

	// Marks last for this session only; the stored run is never modified.
	reviewed := make(map[int]bool)

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i, entry := range entries {
		list.AddItem(listItemText(entry, i, false), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 2, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(suite, len(entries), len(reviewed)))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(entries) {
			return
		}
		statsView.SetText(statsText(entries[index], suite.SuiteName))
		detailsView.SetText(detailsText(entries[index]))
		detailsView.ScrollToBeginning()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
				return nil
			case 'r', 'R':
				index := list.GetCurrentItem()
				if index < 0 || index >= len(entries) {
					return nil
				}
				if reviewed[index] {
					delete(reviewed, index)
				} else {
					reviewed[index] = true
				}
				list.SetItemText(index, listItemText(entries[index], index, reviewed[index]), "")
				updateHeader()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("run failure viewer: %w", err)
	}
	return nil
}

func headerText(suite *domain.SuiteResult, entries, reviewed int) string {
	return fmt.Sprintf(" %s: [red]%d failed[white], [yellow]%d timeout[white] (%d reviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, q quit ",
		tview.Escape(suite.SuiteName), suite.Failed, suite.Timeout, reviewed)
}

func listItemText(test domain.TestResult, index int, reviewed bool) string {
	name := tview.Escape(test.Name)
	if reviewed {
		return fmt.Sprintf("[gray]✓ %d. %s[white]", index+1, name)
	}
	tag := "red"
	if test.Status == domain.StatusTimeout {
		tag = "yellow"
	}
	return fmt.Sprintf("[%s]%s[white] %d. %s", tag, test.Status.Symbol(), index+1, name)
}

func statsText(test domain.TestResult, suiteName string) string {
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]  [cyan]test:[white] [yellow]%s[white]  [cyan]status:[white] %s  [cyan]duration:[white] %.2fs\n",
		tview.Escape(suiteName), tview.Escape(test.Name), test.Status, test.Duration.Seconds())
}

// detailsText formats one entry using tview color tags
func detailsText(test domain.TestResult) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if test.Status == domain.StatusTimeout {
		fmt.Fprintf(w, "[yellow]⏱ Timed out: %s[white]\n\n", tview.Escape(test.Name))
		if test.Error != "" {
			fmt.Fprintf(w, "%s\n\n", tview.Escape(clean(test.Error)))
		}
	} else {
		fmt.Fprintf(w, "[red]✗ Failed: %s[white]\n\n", tview.Escape(test.Name))
		body := parser.DiffBody(clean(test.Error))
		if len(body) == 0 {
			fmt.Fprintf(w, "[gray](no diff output)[white]\n\n")
		} else {
			fmt.Fprintf(w, "[yellow]Diff:[white]\n")
			for _, line := range body {
				fmt.Fprintf(w, "%s%s[white]\n", diffLineTag(line), tview.Escape(line))
			}
			fmt.Fprintln(w)
		}
	}

	if test.Output != "" {
		fmt.Fprintf(w, "[yellow]Output:[white]\n%s\n", tview.Escape(clean(test.Output)))
	}

	w.Flush()
	return builder.String()
}

func diffLineTag(line string) string {
	switch {
	case strings.HasPrefix(line, "-"):
		return "[red]"
	case strings.HasPrefix(line, "+"):
		return "[green]"
	default:
		return "[gray]"
	}
}
