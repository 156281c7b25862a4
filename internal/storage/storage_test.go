package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shcompat/internal/domain"
)

func sampleSuite() *domain.SuiteResult {
	return domain.NewSuiteResult("minimal", []domain.TestResult{
		domain.Passed("colon", 250*time.Millisecond, "ok\n"),
		domain.Failed("arith", time.Second, "3\n", "--- arith.right\n+++ -\n-2\n+3\n"),
		domain.TimedOut("jobs", 2*time.Second, 2*time.Second, ""),
	}, 4*time.Second)
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	st := NewJSONStorage()
	path := filepath.Join(t.TempDir(), "nested", "minimal.json")

	require.NoError(t, st.Save(path, sampleSuite()))

	loaded, err := st.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", loaded.SuiteName)
	assert.Equal(t, 3, loaded.Total)
	assert.Equal(t, 1, loaded.Timeout)
	assert.Equal(t, []string{"colon", "arith", "jobs"}, names(loaded.Tests))
	assert.Equal(t, domain.StatusFail, loaded.Tests[1].Status)
	assert.Equal(t, 4*time.Second, loaded.Duration)
}

func TestJSONStorage_Indented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, NewJSONStorage().Save(path, sampleSuite()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"suite_name\": \"minimal\""), string(data))
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
}

func TestJSONStorage_SaveToDir(t *testing.T) {
	dir := t.TempDir()
	path, err := NewJSONStorage().SaveToDir(dir, sampleSuite())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "minimal.json"), path)
	assert.FileExists(t, path)
}

func TestJSONStorage_LoadRejectsInconsistentCounts(t *testing.T) {
	suite := sampleSuite()
	suite.Passed = 3
	data, err := json.Marshal(suite)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = NewJSONStorage().Load(path)
	assert.ErrorContains(t, err, "invalid results")
}

func TestJSONStorage_LoadErrors(t *testing.T) {
	st := NewJSONStorage()

	_, err := st.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = st.Load(path)
	assert.ErrorContains(t, err, "parse results")

	path = filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"suite_name":"x","total":1,"passed":1,"tests":[{"name":"x","status":"skipped"}]}`), 0644))
	_, err = st.Load(path)
	assert.Error(t, err)
}

func TestNormalizeDSN(t *testing.T) {
	dsn, err := NormalizeDSN("shcompat:secret@tcp(127.0.0.1:3306)/results")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "/results")

	_, err = NormalizeDSN("")
	assert.ErrorIs(t, err, ErrNoDSN)

	_, err = NormalizeDSN("user@tcp(127.0.0.1:3306)/")
	assert.ErrorContains(t, err, "must name a database")

	_, err = NormalizeDSN("not a dsn")
	assert.Error(t, err)
}

// TestMySQLStore_RoundTrip needs a reachable server, e.g.
// SHCOMPAT_TEST_MYSQL_DSN="root:root@tcp(127.0.0.1:3306)/shcompat_test".
func TestMySQLStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("SHCOMPAT_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("SHCOMPAT_TEST_MYSQL_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenMySQL(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	runID, err := store.Save(ctx, sampleSuite())
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	loaded, err := store.LoadRun(ctx, runID)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, []string{"colon", "arith", "jobs"}, names(loaded.Tests))
	assert.Equal(t, sampleSuite().Tests[1].Error, loaded.Tests[1].Error)
}

func names(tests []domain.TestResult) []string {
	out := make([]string, len(tests))
	for i, t := range tests {
		out[i] = t.Name
	}
	return out
}
