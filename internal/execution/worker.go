package execution

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shcompat/internal/domain"
)

// task is one test tagged with its position in the input
type task struct {
	index int
	name  string
}

type completion struct {
	index  int
	result domain.TestResult
}

// WorkerPool runs tests on a fixed number of goroutines. Each test is
// still its own OS process.
type WorkerPool struct {
	runner   TestRunner
	progress Progress
	workers  int
	log      zerolog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(runner TestRunner, progress Progress, workers int, log zerolog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{runner: runner, progress: progress, workers: workers, log: log}
}

// Execute runs tests in parallel. Results come back in input order no
// matter which worker finished first.
func (wp *WorkerPool) Execute(ctx context.Context, tests []string) ([]domain.TestResult, time.Duration) {
	startTime := time.Now()
	wp.progress.Start(len(tests))
	if len(tests) == 0 {
		wp.progress.Finish()
		return []domain.TestResult{}, time.Since(startTime)
	}

	taskQueue := make(chan task, len(tests))
	for i, name := range tests {
		taskQueue <- task{index: i, name: name}
	}
	close(taskQueue)

	completions := make(chan completion, len(tests))
	workerCount := min(wp.workers, len(tests))

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			log := wp.log.With().Int("worker", workerID).Logger()
			for t := range taskQueue {
				var result domain.TestResult
				if err := ctx.Err(); err != nil {
					result = domain.Errored(t.name, 0, err)
				} else {
					result = runSafely(ctx, wp.runner, t.name, log)
				}
				completions <- completion{index: t.index, result: result}
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(completions)
	}()

	results := make([]domain.TestResult, len(tests))
	for c := range completions {
		results[c.index] = c.result
		wp.progress.Done(c.result)
	}
	wp.progress.Finish()

	return results, time.Since(startTime)
}
