package cli

import (
	"fmt"

	"shcompat/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	// Global
	BashSource string
	Shell      string
	Timeout    string
	Jobs       int
	Verbose    bool
	NoColor    bool
	LogLevel   string

	// list
	ListSuites bool

	// test
	ShowOutput bool
	Raw        bool

	// suite
	NameFilter string
	JSONOutput string
	OutputDir  string
	ResultsDSN string

	// triage
	DiffLines   int
	Interactive bool
	RunID       string
}

// ToConfigFlags converts CLI flags to config flags. The timeout accepts a
// bare number of seconds as well as a Go duration.
func (f *Flags) ToConfigFlags() (config.Flags, error) {
	timeout, err := config.ParseTimeout(f.Timeout)
	if err != nil {
		return config.Flags{}, fmt.Errorf("invalid --timeout %q: %w", f.Timeout, err)
	}
	return config.Flags{
		BashSource:  f.BashSource,
		Shell:       f.Shell,
		Timeout:     timeout,
		Jobs:        f.Jobs,
		Verbose:     f.Verbose,
		NoColor:     f.NoColor,
		LogLevel:    f.LogLevel,
		NameFilter:  f.NameFilter,
		JSONOutput:  f.JSONOutput,
		OutputDir:   f.OutputDir,
		ResultsDSN:  f.ResultsDSN,
		ShowOutput:  f.ShowOutput,
		Raw:         f.Raw,
		ListSuites:  f.ListSuites,
		DiffLines:   f.DiffLines,
		Interactive: f.Interactive,
		RunID:       f.RunID,
	}, nil
}
