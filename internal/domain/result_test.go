package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuiteResult_Counts(t *testing.T) {
	tests := []TestResult{
		Passed("a", time.Second, "ok"),
		Failed("b", time.Second, "", "diff"),
		TimedOut("c", 2*time.Second, time.Second, ""),
		Errored("d", 0, errors.New("boom")),
		Passed("e", time.Second, ""),
	}

	sr := NewSuiteResult("mixed", tests, 5*time.Second)

	assert.Equal(t, 5, sr.Total)
	assert.Equal(t, 2, sr.Passed)
	assert.Equal(t, 1, sr.Failed)
	assert.Equal(t, 1, sr.Timeout)
	assert.Equal(t, 1, sr.Error)
	assert.Equal(t, sr.Total, sr.Passed+sr.Failed+sr.Timeout+sr.Error)
	assert.True(t, sr.HasFailures())
	assert.InDelta(t, 40.0, sr.PassRate(), 0.001)
	require.NoError(t, sr.Validate())
}

func TestNewSuiteResult_Empty(t *testing.T) {
	sr := NewSuiteResult("empty", nil, 0)

	assert.Equal(t, 0, sr.Total)
	assert.False(t, sr.HasFailures())
	assert.Equal(t, 0.0, sr.PassRate())
	assert.NotNil(t, sr.Tests)
}

func TestPassedNeverCarriesError(t *testing.T) {
	r := Passed("colon", time.Millisecond, "")
	assert.Equal(t, StatusPass, r.Status)
	assert.Empty(t, r.Error)
}

func TestTimedOutDescribesLimit(t *testing.T) {
	r := TimedOut("slow", 1100*time.Millisecond, time.Second, "")
	assert.Equal(t, StatusTimeout, r.Status)
	assert.Contains(t, r.Error, "1s")
}

func TestSuiteResult_JSONSchema(t *testing.T) {
	sr := NewSuiteResult("colon", []TestResult{Passed("colon", 1500*time.Millisecond, "")}, 2*time.Second)

	data, err := json.Marshal(sr)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	for _, key := range []string{"suite_name", "total", "passed", "failed", "timeout", "error", "duration", "tests"} {
		assert.Contains(t, generic, key)
	}
	assert.Equal(t, 2.0, generic["duration"])

	tests := generic["tests"].([]any)
	require.Len(t, tests, 1)
	first := tests[0].(map[string]any)
	assert.Equal(t, "colon", first["name"])
	assert.Equal(t, "pass", first["status"])
	assert.Equal(t, 1.5, first["duration"])
	assert.Equal(t, "", first["error"])

	var back SuiteResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sr.SuiteName, back.SuiteName)
	assert.Equal(t, sr.Tests[0].Duration, back.Tests[0].Duration)
	require.NoError(t, back.Validate())
}

func TestStatus_RejectsUnknownValues(t *testing.T) {
	var r TestResult
	err := json.Unmarshal([]byte(`{"name":"x","status":"skipped","duration":0}`), &r)
	require.Error(t, err)

	_, err = Status(42).MarshalText()
	require.Error(t, err)
}

func TestSuiteResult_ValidateDetectsTampering(t *testing.T) {
	sr := NewSuiteResult("s", []TestResult{Passed("a", 0, "")}, 0)
	sr.Failed = 1
	require.Error(t, sr.Validate())

	// counts that still sum to the total but disagree with the tests
	sr = NewSuiteResult("s", []TestResult{Passed("a", 0, ""), Failed("b", 0, "", "diff")}, 0)
	sr.Passed, sr.Failed = 2, 0
	assert.ErrorContains(t, sr.Validate(), "pass count is 2, tests hold 1")

	sr = NewSuiteResult("s", []TestResult{{Name: "a", Status: StatusPass, Error: "oops"}}, 0)
	require.Error(t, sr.Validate())
}

func TestWithStatus_KeepsOrder(t *testing.T) {
	sr := NewSuiteResult("s", []TestResult{
		Failed("z", 0, "", ""),
		Passed("a", 0, ""),
		Failed("b", 0, "", ""),
	}, 0)

	failed := sr.WithStatus(StatusFail)
	require.Len(t, failed, 2)
	assert.Equal(t, "z", failed[0].Name)
	assert.Equal(t, "b", failed[1].Name)
}
