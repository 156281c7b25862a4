package execution

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shcompat/internal/config"
	"shcompat/internal/discovery"
	"shcompat/internal/domain"
	"shcompat/internal/logging"
)

func newTestRunner(t *testing.T, files map[string]string) (*Runner, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0755))
	}
	cfg := config.New()
	cfg.BashSourceDir = filepath.Dir(dir)
	cfg.TestsDir = dir
	cfg.ShellPath = "/bin/sh"
	cfg.Timeout = 10 * time.Second
	return NewRunner(cfg, discovery.NewCorpus(dir), zerolog.Nop()), cfg
}

func TestRunner_SelfDiffing(t *testing.T) {
	runner, _ := newTestRunner(t, map[string]string{
		"run-good": "echo checking\nexit 0\n",
		"run-bad":  "echo out\necho oops >&2\nexit 1\n",
	})

	good := runner.Run(context.Background(), "good")
	assert.Equal(t, domain.StatusPass, good.Status)
	assert.Contains(t, good.Output, "checking")

	bad := runner.Run(context.Background(), "bad")
	assert.Equal(t, domain.StatusFail, bad.Status)
	assert.Equal(t, "out\n", bad.Output)
	assert.Equal(t, "oops\n", bad.Error)
}

func TestRunner_SelfDiffingAlias(t *testing.T) {
	runner, _ := newTestRunner(t, map[string]string{
		"run-ifs": "exit 0\n",
	})

	result := runner.Run(context.Background(), "ifs-tests")
	assert.Equal(t, domain.StatusPass, result.Status)
	assert.Equal(t, "ifs-tests", result.Name)
}

func TestRunner_GoldenFile(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		right    string
		expected domain.Status
	}{
		{name: "match", script: "echo alpha\necho beta\n", right: "alpha\nbeta\n", expected: domain.StatusPass},
		{name: "one_char", script: "echo alpha\necho betA\n", right: "alpha\nbeta\n", expected: domain.StatusFail},
		{name: "missing_newline", script: "printf alpha\n", right: "alpha\n", expected: domain.StatusFail},
		{name: "stderr_counts", script: "echo alpha\necho noise >&2\n", right: "alpha\n", expected: domain.StatusFail},
		{name: "scratch_file", script: "echo ignored\necho kept > \"$BASH_TSTOUT\"\n", right: "kept\n", expected: domain.StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, _ := newTestRunner(t, map[string]string{
				tt.name + ".tests": tt.script,
				tt.name + ".right": tt.right,
			})

			result := runner.Run(context.Background(), tt.name)
			assert.Equal(t, tt.expected, result.Status, "output=%q error=%q", result.Output, result.Error)
			if tt.expected == domain.StatusFail {
				assert.True(t, strings.HasPrefix(result.Error, "--- "+tt.name+".right\n+++ -\n"), result.Error)
			}
		})
	}
}

func TestRunner_GoldenFileWithoutExpectedOutput(t *testing.T) {
	runner, _ := newTestRunner(t, map[string]string{
		"ok.tests":   "echo fine\n",
		"nope.tests": "exit 3\n",
	})

	assert.Equal(t, domain.StatusPass, runner.Run(context.Background(), "ok").Status)
	assert.Equal(t, domain.StatusFail, runner.Run(context.Background(), "nope").Status)
}

func TestRunner_Environment(t *testing.T) {
	runner, cfg := newTestRunner(t, map[string]string{
		"env.tests": "echo \"$THIS_SH\"\necho \"$BUILD_DIR\"\npwd\n",
	})
	cfg.ShellPath = "/bin/sh"

	result := runner.Run(context.Background(), "env")
	require.Equal(t, domain.StatusPass, result.Status)

	lines := strings.Split(strings.TrimSpace(result.Output), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "/bin/sh", lines[0])
	assert.Equal(t, cfg.BashSourceDir, lines[1])

	wd, err := filepath.EvalSymlinks(lines[2])
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(cfg.TestsDir)
	require.NoError(t, err)
	assert.Equal(t, want, wd)
}

func TestRunner_MissingArtifacts(t *testing.T) {
	runner, _ := newTestRunner(t, map[string]string{})

	result := runner.Run(context.Background(), "ghost")
	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, "neither run-ghost nor ghost.tests found", result.Error)
}

func TestRunner_TimeoutKillsProcessGroup(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	runner, cfg := newTestRunner(t, map[string]string{
		"hang.tests": fmt.Sprintf("sleep 60 &\necho $! > %q\nwait\n", pidFile),
	})
	cfg.Timeout = 500 * time.Millisecond

	start := time.Now()
	result := runner.Run(context.Background(), "hang")
	assert.Less(t, time.Since(start), 10*time.Second)

	assert.Equal(t, domain.StatusTimeout, result.Status)
	assert.Equal(t, "test exceeded timeout of 500ms", result.Error)

	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !processAlive(pid) }, 5*time.Second, 50*time.Millisecond,
		"background child %d survived the timeout", pid)
}

func TestRunner_TimeoutQuietAtDefaultLevel(t *testing.T) {
	runner, cfg := newTestRunner(t, map[string]string{
		"hang.tests": "sleep 30\n",
	})
	cfg.Timeout = 300 * time.Millisecond

	var logs bytes.Buffer
	log, err := logging.New(config.DefaultLogLevel, &logs, false)
	require.NoError(t, err)
	runner.log = log.With().Str("component", "runner").Logger()

	result := runner.Run(context.Background(), "hang")
	assert.Equal(t, domain.StatusTimeout, result.Status)
	assert.Empty(t, logs.String())
}

func TestRunner_CancelledContext(t *testing.T) {
	runner, _ := newTestRunner(t, map[string]string{
		"slow.tests": "sleep 30\n",
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	result := runner.Run(ctx, "slow")
	assert.Equal(t, domain.StatusError, result.Status)
	assert.Contains(t, result.Error, "cancel")
}

func TestRunner_RunRaw(t *testing.T) {
	runner, _ := newTestRunner(t, map[string]string{
		"raw.tests": "echo to-out\necho to-err >&2\nexit 4\n",
	})

	var stdout, stderr bytes.Buffer
	code, err := runner.RunRaw(context.Background(), "raw", &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 4, code)
	assert.Equal(t, "to-out\n", stdout.String())
	assert.Equal(t, "to-err\n", stderr.String())

	_, err = runner.RunRaw(context.Background(), "absent", &stdout, &stderr)
	assert.Error(t, err)
}

// processAlive reports whether pid is a live, non-zombie process.
func processAlive(pid int) bool {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	// The state follows the parenthesised command name.
	stat := string(data)
	i := strings.LastIndexByte(stat, ')')
	if i < 0 || i+2 >= len(stat) {
		return false
	}
	return stat[i+2] != 'Z'
}
