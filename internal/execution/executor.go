package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shcompat/internal/config"
	"shcompat/internal/domain"
)

// Executor executes tests and returns their results in input order
type Executor interface {
	Execute(ctx context.Context, tests []string) ([]domain.TestResult, time.Duration)
}

// Progress receives execution events. Calls are never concurrent.
//
// Progress may redraw the diagnostic stream in place, so per-test events
// are logged at debug level only.
type Progress interface {
	Start(total int)
	Running(name string)
	Done(result domain.TestResult)
	Finish()
}

// NewExecutor picks the execution strategy for the configured job count
func NewExecutor(cfg *config.Config, runner TestRunner, progress Progress, log zerolog.Logger) Executor {
	if progress == nil {
		progress = nopProgress{}
	}
	workers := cfg.JobCount()
	if workers <= 1 {
		return NewSequential(runner, progress, log)
	}
	return NewWorkerPool(runner, progress, workers, log)
}

// runSafely runs one test, converting a panic anywhere below into an
// error result for that test.
func runSafely(ctx context.Context, runner TestRunner, name string, log zerolog.Logger) (result domain.TestResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			log.Debug().Str("test", name).Interface("panic", p).Msg("recovered panic in executor")
			result = domain.Errored(name, time.Since(start), fmt.Errorf("executor panic: %v", p))
		}
	}()
	return runner.Run(ctx, name)
}

type nopProgress struct{}

func (nopProgress) Start(int) {}

func (nopProgress) Running(string) {}

func (nopProgress) Done(domain.TestResult) {}

func (nopProgress) Finish() {}
