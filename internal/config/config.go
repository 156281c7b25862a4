package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	// ErrNoBashSource is returned when no bash source tree was configured.
	ErrNoBashSource = errors.New("bash source directory is required (--bash-source or " + EnvBashSource + ")")
	// ErrNoTestsDir is returned when the source tree has no tests directory.
	ErrNoTestsDir = errors.New("tests directory not found")
	// ErrShellNotFound is returned when the shell under test cannot be resolved.
	ErrShellNotFound = errors.New("shell not found")
)

// Config holds all configuration for the application
type Config struct {
	// Corpus settings
	BashSourceDir string
	TestsDir      string
	ShellPath     string

	// Execution settings
	Timeout time.Duration
	Jobs    int

	// Output settings
	Verbose  bool
	NoColor  bool
	LogLevel string

	// Optional MySQL run history
	ResultsDSN string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	BashSource  string
	Shell       string
	Timeout     time.Duration
	Jobs        int
	Verbose     bool
	NoColor     bool
	LogLevel    string
	NameFilter  string
	JSONOutput  string
	OutputDir   string
	ResultsDSN  string
	ShowOutput  bool
	Raw         bool
	ListSuites  bool
	DiffLines   int
	Interactive bool
	RunID       string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		Timeout:  DefaultTimeout,
		Jobs:     DefaultJobs,
		LogLevel: DefaultLogLevel,
		Flags: Flags{
			Timeout:   DefaultTimeout,
			Jobs:      DefaultJobs,
			LogLevel:  DefaultLogLevel,
			DiffLines: DefaultDiffLines,
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Apply copies flags into the config. changed reports whether a flag was
// given explicitly on the command line; flags that were not fall back to
// their environment variable.
func (c *Config) Apply(flags Flags, changed func(name string) bool) error {
	if changed == nil {
		changed = func(string) bool { return true }
	}
	c.Flags = flags

	c.BashSourceDir = pick(flags.BashSource, EnvBashSource)
	c.ShellPath = pick(flags.Shell, EnvShell)
	c.ResultsDSN = pick(flags.ResultsDSN, EnvResultsDSN)
	c.Verbose = flags.Verbose
	c.NoColor = flags.NoColor

	c.LogLevel = flags.LogLevel
	if v := os.Getenv(EnvLogLevel); v != "" && !changed("log-level") {
		c.LogLevel = v
	}

	c.Timeout = flags.Timeout
	if v := os.Getenv(EnvTimeout); v != "" && !changed("timeout") {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}

	c.Jobs = flags.Jobs
	if v := os.Getenv(EnvJobs); v != "" && !changed("jobs") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvJobs, err)
		}
		c.Jobs = n
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	return nil
}

// Validate resolves the corpus and shell paths. It must succeed before any
// command touches the corpus.
func (c *Config) Validate() error {
	if c.BashSourceDir == "" {
		return ErrNoBashSource
	}
	src, err := filepath.Abs(c.BashSourceDir)
	if err != nil {
		return fmt.Errorf("resolve bash source %s: %w", c.BashSourceDir, err)
	}
	c.BashSourceDir = src

	c.TestsDir = filepath.Join(src, TestsDirName)
	info, err := os.Stat(c.TestsDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoTestsDir, c.TestsDir)
	}

	shell := c.ShellPath
	if shell == "" {
		shell = filepath.Join(src, DefaultShellName)
	}
	resolved, err := exec.LookPath(shell)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrShellNotFound, shell)
	}
	if resolved, err = filepath.Abs(resolved); err != nil {
		return fmt.Errorf("resolve shell %s: %w", shell, err)
	}
	c.ShellPath = resolved
	return nil
}

// JobCount returns the worker count to use; 0 means available parallelism.
func (c *Config) JobCount() int {
	if c.Jobs <= 0 {
		return runtime.NumCPU()
	}
	return c.Jobs
}

// TestEnv returns the environment handed to every test process: the current
// environment extended with the test framework contract variables.
func (c *Config) TestEnv() []string {
	env := os.Environ()
	env = append(env,
		EnvBuildDir+"="+c.BashSourceDir,
		EnvThisShell+"="+c.ShellPath,
		EnvPath+"="+c.TestsDir+string(os.PathListSeparator)+os.Getenv(EnvPath),
	)
	return env
}

func pick(flagValue, envName string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envName)
}

// ParseTimeout accepts a Go duration ("1m30s") or a bare number of seconds.
func ParseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}
