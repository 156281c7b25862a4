package commands

import (
	"github.com/spf13/cobra"

	"shcompat/internal/cli"
	"shcompat/internal/config"
)

// Commands holds all CLI commands
type Commands struct {
	env    *Env
	List   *ListCommand
	Test   *TestCommand
	Suite  *SuiteCommand
	Triage *TriageCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, streams Streams) *Commands {
	env := NewEnv(cfg, streams)
	return &Commands{
		env:    env,
		List:   NewListCommand(env),
		Test:   NewTestCommand(env),
		Suite:  NewSuiteCommand(env),
		Triage: NewTriageCommand(env),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	prepare := func(needCorpus bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			// Update config with flags after parsing
			cfgFlags, err := flags.ToConfigFlags()
			if err != nil {
				return err
			}
			return c.env.prepare(cfgFlags, cmd.Flags().Changed, needCorpus)
		}
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.BashSource, "bash-source", "b", "", "Path to the bash source tree containing tests/ (env "+config.EnvBashSource+")")
	pf.StringVarP(&flags.Shell, "shell", "s", "", "Shell under test (default <bash-source>/bash, env "+config.EnvShell+")")
	pf.StringVarP(&flags.Timeout, "timeout", "t", config.DefaultTimeout.String(), "Per-test timeout, seconds or a duration like 1m30s (env "+config.EnvTimeout+")")
	pf.IntVarP(&flags.Jobs, "jobs", "j", config.DefaultJobs, "Parallel jobs, 0 for one per CPU (env "+config.EnvJobs+")")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Print one line per test and show diffs in summaries")
	pf.BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")
	pf.StringVar(&flags.LogLevel, "log-level", config.DefaultLogLevel, "Diagnostic log level: debug, info, warn, error (env "+config.EnvLogLevel+")")

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List atomic tests or suites",
		Long:    "List the atomic tests (<name>.tests) of the corpus, or its suites (run-<name>) with --suites",
		Args:    cobra.NoArgs,
		RunE:    c.List.Execute,
		PreRunE: prepare(true),
	}
	listCmd.Flags().BoolVar(&flags.ListSuites, "suites", false, "List suites instead of tests")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Only list names containing this substring (or matching a * ? pattern)")
	rootCmd.AddCommand(listCmd)

	// Test command
	testCmd := &cobra.Command{
		Use:     "test <name>",
		Short:   "Run a single atomic test",
		Long:    "Run one atomic test and report its outcome; exits 0 only if it passed",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Test.Execute,
		PreRunE: prepare(true),
	}
	testCmd.Flags().BoolVar(&flags.ShowOutput, "show-output", false, "Show the captured output of the test")
	testCmd.Flags().BoolVar(&flags.Raw, "raw", false, "Run <name>.tests with the shell and stream its output without comparing")
	rootCmd.AddCommand(testCmd)

	// Suite command
	suiteCmd := &cobra.Command{
		Use:     "suite <name>...",
		Short:   "Run one or more suites",
		Long:    "Resolve suites (e.g. minimal, all) into atomic tests and run them; exits 0 only if every test passed",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.Suite.Execute,
		PreRunE: prepare(true),
	}
	suiteCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Only run tests whose name contains this substring (or matches a * ? pattern)")
	suiteCmd.Flags().StringVar(&flags.JSONOutput, "json", "", "Write JSON results to this file; with several suites this names a directory receiving <suite>.json each")
	suiteCmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "Write <suite>.json for every suite into this directory")
	suiteCmd.Flags().StringVar(&flags.ResultsDSN, "results-dsn", "", "Record runs in MySQL, e.g. user:pass@tcp(host:3306)/db (env "+config.EnvResultsDSN+")")
	rootCmd.AddCommand(suiteCmd)

	// Triage command
	triageCmd := &cobra.Command{
		Use:     "triage [json-file]",
		Short:   "Summarize failures and timeouts of a stored run",
		Long:    "Render the failed and timed out tests of a JSON results file, or of a run recorded with --results-dsn (--run-id), with a few lines of diff each",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.Triage.Execute,
		PreRunE: prepare(false),
	}
	triageCmd.Flags().IntVarP(&flags.DiffLines, "num-lines", "n", config.DefaultDiffLines, "Diff lines to show per failed test")
	triageCmd.Flags().BoolVar(&flags.Interactive, "interactive", false, "Browse the failures in a terminal UI")
	triageCmd.Flags().StringVar(&flags.RunID, "run-id", "", "Triage a run recorded in the run history instead of a JSON file")
	triageCmd.Flags().StringVar(&flags.ResultsDSN, "results-dsn", "", "Run history to read --run-id from (env "+config.EnvResultsDSN+")")
	rootCmd.AddCommand(triageCmd)
}
