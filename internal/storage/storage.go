package storage

import (
	"context"

	"shcompat/internal/domain"
)

// Storage persists suite results and loads them back for triage
type Storage interface {
	Save(path string, suite *domain.SuiteResult) error
	Load(path string) (*domain.SuiteResult, error)
}

// RunRecorder keeps a history of suite runs
type RunRecorder interface {
	Save(ctx context.Context, suite *domain.SuiteResult) (string, error)
	Close() error
}

// RunStore records runs and reads them back by run id
type RunStore interface {
	RunRecorder
	LoadRun(ctx context.Context, runID string) (*domain.SuiteResult, error)
}

var (
	_ Storage     = (*JSONStorage)(nil)
	_ RunRecorder = (*MySQLStore)(nil)
	_ RunStore    = (*MySQLStore)(nil)
)
