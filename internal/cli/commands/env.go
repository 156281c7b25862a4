package commands

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"shcompat/internal/config"
	"shcompat/internal/discovery"
	"shcompat/internal/execution"
	"shcompat/internal/logging"
	"shcompat/internal/storage"
	"shcompat/internal/ui"
)

// Streams are the process' output streams and whether they reach a terminal
type Streams struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Terminal bool
}

// Env holds the dependencies shared by all commands. It is filled in by
// prepare once flags are parsed.
type Env struct {
	Config  *config.Config
	Streams Streams

	Out       ui.OutputConfig
	Log       zerolog.Logger
	Formatter *ui.Formatter
	Storage   *storage.JSONStorage

	// OpenRunStore connects to the run history named by a DSN
	OpenRunStore func(ctx context.Context, dsn string) (storage.RunStore, error)

	Corpus   *discovery.Corpus
	Scanner  *discovery.Scanner
	Resolver *discovery.Resolver
	Filter   *discovery.Filter
	Runner   *execution.Runner
}

// NewEnv creates an Env; nothing is usable before prepare runs
func NewEnv(cfg *config.Config, streams Streams) *Env {
	return &Env{
		Config:  cfg,
		Streams: streams,
		Log:     zerolog.Nop(),
		Storage: storage.NewJSONStorage(),
		Filter:  discovery.NewFilter(),

		OpenRunStore: func(ctx context.Context, dsn string) (storage.RunStore, error) {
			return storage.OpenMySQL(ctx, dsn)
		},
	}
}

// prepare applies flags to the config and builds the output stack. When
// needCorpus is set it also validates the corpus and shell paths.
func (e *Env) prepare(flags config.Flags, changed func(string) bool, needCorpus bool) error {
	cfg := e.Config
	if err := cfg.Apply(flags, changed); err != nil {
		return err
	}

	e.Out = ui.OutputConfig{
		ColorEnabled: e.Streams.Terminal && !cfg.NoColor && os.Getenv("NO_COLOR") == "",
		Interactive:  e.Streams.Terminal,
		Verbose:      cfg.Verbose,
	}
	log, err := logging.New(cfg.LogLevel, e.Streams.Stderr, e.Out.ColorEnabled)
	if err != nil {
		return err
	}
	e.Log = log
	e.Formatter = ui.NewFormatter(e.Out, e.Streams.Stdout, e.Streams.Stderr)

	if !needCorpus {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.Log.Debug().
		Str("tests_dir", cfg.TestsDir).
		Str("shell", cfg.ShellPath).
		Dur("timeout", cfg.Timeout).
		Int("jobs", cfg.JobCount()).
		Msg("configuration resolved")

	e.Corpus = discovery.NewCorpus(cfg.TestsDir)
	e.Scanner = discovery.NewScanner(e.Corpus)
	e.Resolver = discovery.NewResolver(e.Corpus, e.Scanner, e.Log)
	e.Runner = execution.NewRunner(cfg, e.Corpus, e.Log)
	return nil
}
