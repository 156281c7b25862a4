package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"shcompat/internal/config"
	"shcompat/internal/discovery"
	"shcompat/internal/domain"
	"shcompat/internal/parser"
)

// waitDelay bounds how long Wait keeps draining output pipes after the
// test process is gone but a straggler still holds them open.
const waitDelay = 2 * time.Second

// TestRunner runs a single atomic test
type TestRunner interface {
	Run(ctx context.Context, name string) domain.TestResult
}

// Runner executes one atomic test against the shell under test
type Runner struct {
	config *config.Config
	corpus *discovery.Corpus
	log    zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, corpus *discovery.Corpus, log zerolog.Logger) *Runner {
	return &Runner{
		config: cfg,
		corpus: corpus,
		log:    log.With().Str("component", "runner").Logger(),
	}
}

// invocation is what a finished test process left behind
type invocation struct {
	stdout   []byte
	stderr   []byte
	exitCode int
	timedOut bool
}

func (inv *invocation) combined() string {
	return string(inv.stdout) + string(inv.stderr)
}

// Run executes test name and classifies the outcome. It always returns a
// result: every failure mode is reported through the result's status.
func (r *Runner) Run(ctx context.Context, name string) (result domain.TestResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.log.Debug().Str("test", name).Interface("panic", p).Msg("test execution panicked")
			result = domain.Errored(name, time.Since(start), fmt.Errorf("panic while running test: %v", p))
		}
	}()

	scratch, err := os.MkdirTemp("", "shcompat-*")
	if err != nil {
		return domain.Errored(name, time.Since(start), fmt.Errorf("create scratch directory: %w", err))
	}
	defer os.RemoveAll(scratch)

	outPath := filepath.Join(scratch, "test.out")
	env := append(r.config.TestEnv(), config.EnvTestOut+"="+outPath)

	if script, ok := r.corpus.SuiteScript(name); ok {
		return r.runSelfDiffing(ctx, name, script, env, start)
	}
	if tests, ok := r.corpus.TestScript(name); ok {
		return r.runGolden(ctx, name, tests, outPath, env, start)
	}

	return domain.Errored(name, time.Since(start),
		fmt.Errorf("neither %s%s nor %s%s found", discovery.SuitePrefix, name, name, discovery.TestSuffix))
}

// runSelfDiffing runs a run-<name> script that compares output itself and
// reports through its exit code.
func (r *Runner) runSelfDiffing(ctx context.Context, name, script string, env []string, start time.Time) domain.TestResult {
	inv, err := r.invoke(ctx, name, env, "sh", script)
	elapsed := time.Since(start)
	if err != nil {
		return domain.Errored(name, elapsed, err)
	}
	if inv.timedOut {
		return domain.TimedOut(name, elapsed, r.config.Timeout, inv.combined())
	}
	if inv.exitCode == 0 {
		return domain.Passed(name, elapsed, inv.combined())
	}
	return domain.Failed(name, elapsed, string(inv.stdout), string(inv.stderr))
}

// runGolden runs <name>.tests with the shell under test and compares its
// output byte for byte with <name>.right.
func (r *Runner) runGolden(ctx context.Context, name, tests, outPath string, env []string, start time.Time) domain.TestResult {
	inv, err := r.invoke(ctx, name, env, r.config.ShellPath, tests)
	elapsed := time.Since(start)
	if err != nil {
		return domain.Errored(name, elapsed, err)
	}
	if inv.timedOut {
		return domain.TimedOut(name, elapsed, r.config.Timeout, inv.combined())
	}

	expectedPath, ok := r.corpus.ExpectedOutput(name)
	if !ok {
		if inv.exitCode == 0 {
			return domain.Passed(name, elapsed, inv.combined())
		}
		return domain.Failed(name, elapsed, string(inv.stdout), string(inv.stderr))
	}

	actual := []byte(inv.combined())
	if data, err := os.ReadFile(outPath); err == nil {
		actual = data
	}
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return domain.Errored(name, elapsed, fmt.Errorf("read expected output: %w", err))
	}

	if bytes.Equal(actual, expected) {
		return domain.Passed(name, elapsed, string(actual))
	}
	diff := parser.UnifiedDiff(string(expected), string(actual), filepath.Base(expectedPath), "-")
	return domain.Failed(name, elapsed, string(actual), diff)
}

// invoke runs argv in the tests root under the per-test timeout. A process
// that runs out of time is killed together with its process group.
func (r *Runner) invoke(ctx context.Context, name string, env []string, argv ...string) (*invocation, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = r.config.TestsDir
	cmd.Env = env
	isolate(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug().Str("test", name).Strs("argv", argv).Msg("starting test process")
	err := cmd.Run()

	// Reap anything the test left running in its group.
	if cmd.Process != nil {
		_ = killGroup(cmd.Process)
	}

	inv := &invocation{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		r.log.Debug().Str("test", name).Dur("timeout", r.config.Timeout).Msg("test timed out, process group killed")
		inv.timedOut = true
		return inv, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("test run cancelled: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		inv.exitCode = 0
	case errors.As(err, &exitErr):
		inv.exitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil:
		inv.exitCode = cmd.ProcessState.ExitCode()
	default:
		return nil, fmt.Errorf("run %s: %w", argv[0], err)
	}

	r.log.Debug().Str("test", name).Int("exit_code", inv.exitCode).Msg("test process finished")
	return inv, nil
}

// RunRaw runs <name>.tests with the shell under test, streaming its output
// instead of comparing it. It returns the shell's exit code.
func (r *Runner) RunRaw(ctx context.Context, name string, stdout, stderr io.Writer) (int, error) {
	tests, ok := r.corpus.TestScript(name)
	if !ok {
		return 0, fmt.Errorf("test script %s%s not found", name, discovery.TestSuffix)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.config.ShellPath, tests)
	cmd.Dir = r.config.TestsDir
	cmd.Env = r.config.TestEnv()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	isolate(cmd)
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if cmd.Process != nil {
		_ = killGroup(cmd.Process)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return 0, fmt.Errorf("test exceeded timeout of %s", r.config.Timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", r.config.ShellPath, err)
	}
	return 0, nil
}
