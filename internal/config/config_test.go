package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSourceTree(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, TestsDirName), 0755))
	return src
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultJobs, cfg.Jobs)
	assert.Equal(t, DefaultDiffLines, cfg.Flags.DiffLines)
}

func TestConfig_Validate(t *testing.T) {
	src := newSourceTree(t)

	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:    "missing bash source",
			config:  &Config{},
			wantErr: ErrNoBashSource,
		},
		{
			name:    "no tests directory",
			config:  &Config{BashSourceDir: t.TempDir(), ShellPath: "/bin/sh"},
			wantErr: ErrNoTestsDir,
		},
		{
			name:    "default shell missing from source tree",
			config:  &Config{BashSourceDir: src},
			wantErr: ErrShellNotFound,
		},
		{
			name:    "explicit shell resolved",
			config:  &Config{BashSourceDir: src, ShellPath: "/bin/sh"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestConfig_ValidateResolvesPaths(t *testing.T) {
	src := newSourceTree(t)
	cfg := &Config{BashSourceDir: src, ShellPath: "sh"}

	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.ShellPath))
	assert.Equal(t, filepath.Join(src, TestsDirName), cfg.TestsDir)
}

func TestConfig_ApplyEnvFallback(t *testing.T) {
	t.Setenv(EnvBashSource, "/from/env")
	t.Setenv(EnvTimeout, "2")
	t.Setenv(EnvJobs, "3")

	cfg := New()
	notChanged := func(string) bool { return false }
	require.NoError(t, cfg.Apply(Flags{Timeout: DefaultTimeout, Jobs: 1}, notChanged))

	assert.Equal(t, "/from/env", cfg.BashSourceDir)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Jobs)
}

func TestConfig_ApplyFlagsWin(t *testing.T) {
	t.Setenv(EnvBashSource, "/from/env")
	t.Setenv(EnvJobs, "3")

	cfg := New()
	changed := func(name string) bool { return name == "jobs" }
	require.NoError(t, cfg.Apply(Flags{BashSource: "/from/flag", Timeout: time.Second, Jobs: 0}, changed))

	assert.Equal(t, "/from/flag", cfg.BashSourceDir)
	assert.Equal(t, 0, cfg.Jobs)
	assert.Equal(t, runtime.NumCPU(), cfg.JobCount())
}

func TestConfig_ApplyRejectsBadValues(t *testing.T) {
	cfg := New()
	require.Error(t, cfg.Apply(Flags{Timeout: 0, Jobs: 1}, nil))
	require.Error(t, cfg.Apply(Flags{Timeout: time.Second, Jobs: -1}, nil))

	t.Setenv(EnvTimeout, "soon")
	require.Error(t, cfg.Apply(Flags{Timeout: time.Second}, func(string) bool { return false }))
}

func TestConfig_TestEnv(t *testing.T) {
	cfg := &Config{BashSourceDir: "/src/bash", TestsDir: "/src/bash/tests", ShellPath: "/usr/bin/brush"}
	env := cfg.TestEnv()

	lookup := func(key string) string {
		val := ""
		for _, kv := range env {
			if strings.HasPrefix(kv, key+"=") {
				val = strings.TrimPrefix(kv, key+"=")
			}
		}
		return val
	}

	assert.Equal(t, "/src/bash", lookup(EnvBuildDir))
	assert.Equal(t, "/usr/bin/brush", lookup(EnvThisShell))
	assert.True(t, strings.HasPrefix(lookup(EnvPath), "/src/bash/tests"+string(os.PathListSeparator)))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHCOMPAT_TEST_ONLY_VAR=hello\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SHCOMPAT_TEST_ONLY_VAR") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("SHCOMPAT_TEST_ONLY_VAR"))

	require.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}
