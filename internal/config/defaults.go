package config

import "time"

const (
	// DefaultTimeout bounds a single test invocation
	DefaultTimeout = 30 * time.Second
	// DefaultJobs runs tests sequentially
	DefaultJobs = 1
	// DefaultLogLevel keeps the logger quiet unless something goes wrong
	DefaultLogLevel = "warn"
	// DefaultDiffLines is the number of diff lines triage shows per test
	DefaultDiffLines = 5
	// DefaultEnvFile is loaded from the working directory if present
	DefaultEnvFile = ".env"

	// TestsDirName is the corpus directory inside the bash source tree
	TestsDirName = "tests"
	// DefaultShellName is the shell looked up in the bash source tree when none is given
	DefaultShellName = "bash"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvBashSource = "SHCOMPAT_BASH_SOURCE"
	EnvShell      = "SHCOMPAT_SHELL"
	EnvTimeout    = "SHCOMPAT_TIMEOUT"
	EnvJobs       = "SHCOMPAT_JOBS"
	EnvResultsDSN = "SHCOMPAT_RESULTS_DSN"
	EnvLogLevel   = "SHCOMPAT_LOG_LEVEL"
)

// Variables of the corpus' test framework contract.
const (
	EnvBuildDir  = "BUILD_DIR"
	EnvThisShell = "THIS_SH"
	EnvTestOut   = "BASH_TSTOUT"
	EnvPath      = "PATH"
)
