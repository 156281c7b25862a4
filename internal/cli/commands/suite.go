package commands

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"shcompat/internal/domain"
	"shcompat/internal/execution"
	"shcompat/internal/storage"
	"shcompat/internal/ui"
)

// SuiteCommand handles the suite command
type SuiteCommand struct {
	env *Env
}

// NewSuiteCommand creates a new SuiteCommand
func NewSuiteCommand(env *Env) *SuiteCommand {
	return &SuiteCommand{env: env}
}

// Execute resolves and runs every named suite. A suite that cannot be
// resolved is reported and skipped; the others still run. The exit status
// is 0 only if every suite ran and none had a fail, timeout or error.
func (sc *SuiteCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := sc.env.Config

	if cfg.Jobs == 0 && !cfg.Verbose {
		sc.env.Formatter.Notef("Auto-detected %d CPUs", cfg.JobCount())
	}

	var recorder storage.RunRecorder
	if cfg.ResultsDSN != "" {
		store, err := sc.env.OpenRunStore(ctx, cfg.ResultsDSN)
		if err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	multi := len(args) > 1
	var (
		errs   *multierror.Error
		suites []*domain.SuiteResult
	)
	for _, name := range args {
		if multi {
			sc.env.Formatter.SuiteBanner(name)
		}

		suite, err := sc.runSuite(ctx, name)
		if err != nil {
			sc.env.Log.Error().Err(err).Str("suite", name).Msg("suite not run")
			errs = multierror.Append(errs, err)
			continue
		}
		suites = append(suites, suite)
		sc.env.Formatter.SuiteSummary(suite)

		if err := sc.persist(ctx, suite, multi, recorder); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if len(suites) > 1 {
		sc.env.Formatter.Overall(suites)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	for _, suite := range suites {
		if suite.HasFailures() {
			return &ExitError{Code: 1}
		}
	}
	return nil
}

func (sc *SuiteCommand) runSuite(ctx context.Context, name string) (*domain.SuiteResult, error) {
	cfg := sc.env.Config

	tests, err := sc.env.Resolver.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolve suite %s: %w", name, err)
	}
	tests = sc.env.Filter.ByName(tests, cfg.Flags.NameFilter)

	sc.env.Formatter.SuiteHeader(len(tests), cfg.JobCount())
	progress := ui.NewProgress(sc.env.Out, sc.env.Streams.Stderr)
	executor := execution.NewExecutor(cfg, sc.env.Runner, progress, sc.env.Log)

	results, duration := executor.Execute(ctx, tests)
	return domain.NewSuiteResult(name, results, duration), nil
}

// persist writes the suite where the flags ask for it. With several suites
// --json names a directory, like --output-dir.
func (sc *SuiteCommand) persist(ctx context.Context, suite *domain.SuiteResult, multi bool, recorder storage.RunRecorder) error {
	flags := sc.env.Config.Flags
	out := sc.env.Streams

	switch {
	case flags.OutputDir != "" || (multi && flags.JSONOutput != ""):
		dir := flags.OutputDir
		if dir == "" {
			dir = flags.JSONOutput
		}
		path, err := sc.env.Storage.SaveToDir(dir, suite)
		if err != nil {
			return fmt.Errorf("save suite %s: %w", suite.SuiteName, err)
		}
		if sc.env.Config.Verbose {
			fmt.Fprintf(out.Stderr, "Results written to: %s\n", path)
		}
	case flags.JSONOutput != "":
		if err := sc.env.Storage.Save(flags.JSONOutput, suite); err != nil {
			return fmt.Errorf("save suite %s: %w", suite.SuiteName, err)
		}
		fmt.Fprintf(out.Stdout, "\nJSON results written to: %s\n", flags.JSONOutput)
	}

	if recorder != nil {
		runID, err := recorder.Save(ctx, suite)
		if err != nil {
			return fmt.Errorf("record suite %s: %w", suite.SuiteName, err)
		}
		sc.env.Log.Info().Str("suite", suite.SuiteName).Str("run_id", runID).Msg("run recorded")
	}
	return nil
}
