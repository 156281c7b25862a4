package ui

import (
	"github.com/fatih/color"

	"shcompat/internal/domain"
)

// OutputConfig describes the terminal the reports are written to. It is
// built once in main and handed to every renderer.
type OutputConfig struct {
	ColorEnabled bool
	Interactive  bool
	Verbose      bool
}

// Palette holds the color objects of one renderer. Colors are switched on
// or off per instance, never through fatih/color's global flag.
type Palette struct {
	Header  *color.Color
	Bold    *color.Color
	Pass    *color.Color
	Fail    *color.Color
	Warn    *color.Color
	Info    *color.Color
	Dim     *color.Color
	Added   *color.Color
	Removed *color.Color
}

// NewPalette creates a palette honoring out.ColorEnabled
func NewPalette(out OutputConfig) *Palette {
	p := &Palette{
		Header:  color.New(color.FgHiBlue),
		Bold:    color.New(color.Bold),
		Pass:    color.New(color.FgHiGreen),
		Fail:    color.New(color.FgHiRed),
		Warn:    color.New(color.FgYellow),
		Info:    color.New(color.FgHiCyan),
		Dim:     color.New(color.Faint),
		Added:   color.New(color.FgGreen),
		Removed: color.New(color.FgRed),
	}
	for _, c := range p.all() {
		if out.ColorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Palette) all() []*color.Color {
	return []*color.Color{p.Header, p.Bold, p.Pass, p.Fail, p.Warn, p.Info, p.Dim, p.Added, p.Removed}
}

// Status returns the color used for a test status
func (p *Palette) Status(s domain.Status) *color.Color {
	switch s {
	case domain.StatusPass:
		return p.Pass
	case domain.StatusFail:
		return p.Fail
	default:
		return p.Warn
	}
}

// Symbol renders the status symbol in its color
func (p *Palette) Symbol(s domain.Status) string {
	return p.Status(s).Sprint(s.Symbol())
}
