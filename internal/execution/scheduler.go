package execution

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shcompat/internal/domain"
)

// Sequential runs tests one after another on the calling goroutine
type Sequential struct {
	runner   TestRunner
	progress Progress
	log      zerolog.Logger
}

// NewSequential creates a new Sequential executor
func NewSequential(runner TestRunner, progress Progress, log zerolog.Logger) *Sequential {
	return &Sequential{runner: runner, progress: progress, log: log}
}

// Execute runs every test in order. A cancelled context turns the
// remaining tests into error results.
func (s *Sequential) Execute(ctx context.Context, tests []string) ([]domain.TestResult, time.Duration) {
	startTime := time.Now()
	results := make([]domain.TestResult, 0, len(tests))

	s.progress.Start(len(tests))
	for _, name := range tests {
		var result domain.TestResult
		if err := ctx.Err(); err != nil {
			result = domain.Errored(name, 0, err)
		} else {
			s.progress.Running(name)
			result = runSafely(ctx, s.runner, name, s.log)
		}
		results = append(results, result)
		s.progress.Done(result)
	}
	s.progress.Finish()

	return results, time.Since(startTime)
}
