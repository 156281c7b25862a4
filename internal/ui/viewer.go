package ui

import "shcompat/internal/domain"

// Viewer displays the failures of a stored run in an interactive TUI
type Viewer interface {
	View(suite *domain.SuiteResult) error
}

var _ Viewer = (*FailureViewer)(nil)
