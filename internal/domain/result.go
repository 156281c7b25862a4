package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TestResult is the outcome of running one atomic test.
// Use the constructors below; a passing result never carries an error.
type TestResult struct {
	Name     string        // Atomic test name
	Status   Status        // Verdict
	Duration time.Duration // Wall time including process setup
	Output   string        // Captured output (actual output for golden tests)
	Error    string        // stderr, unified diff, or failure description
}

// Passed builds a passing result.
func Passed(name string, d time.Duration, output string) TestResult {
	return TestResult{Name: name, Status: StatusPass, Duration: d, Output: output}
}

// Failed builds a failing result. errText is stderr or a diff.
func Failed(name string, d time.Duration, output, errText string) TestResult {
	return TestResult{Name: name, Status: StatusFail, Duration: d, Output: output, Error: errText}
}

// TimedOut builds a timeout result for a test killed after limit.
func TimedOut(name string, d, limit time.Duration, output string) TestResult {
	return TestResult{
		Name:     name,
		Status:   StatusTimeout,
		Duration: d,
		Output:   output,
		Error:    fmt.Sprintf("test exceeded timeout of %s", limit),
	}
}

// Errored builds an infrastructure error result.
func Errored(name string, d time.Duration, err error) TestResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return TestResult{Name: name, Status: StatusError, Duration: d, Error: msg}
}

type testResultJSON struct {
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Duration float64 `json:"duration"`
	Output   string  `json:"output"`
	Error    string  `json:"error"`
}

// MarshalJSON writes the result with its duration in seconds.
func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(testResultJSON{
		Name:     r.Name,
		Status:   r.Status,
		Duration: r.Duration.Seconds(),
		Output:   r.Output,
		Error:    r.Error,
	})
}

// UnmarshalJSON reads a result written by MarshalJSON.
func (r *TestResult) UnmarshalJSON(data []byte) error {
	var raw testResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = TestResult{
		Name:     raw.Name,
		Status:   raw.Status,
		Duration: secondsToDuration(raw.Duration),
		Output:   raw.Output,
		Error:    raw.Error,
	}
	return nil
}

// SuiteResult aggregates the results of one suite run. Counts are derived
// from Tests by NewSuiteResult and must not be edited afterwards.
type SuiteResult struct {
	SuiteName string
	Total     int
	Passed    int
	Failed    int
	Timeout   int
	Error     int
	Duration  time.Duration
	Tests     []TestResult // Resolved suite order
}

// NewSuiteResult counts statuses over tests, which must already be in
// resolved-suite order.
func NewSuiteResult(name string, tests []TestResult, duration time.Duration) *SuiteResult {
	sr := &SuiteResult{
		SuiteName: name,
		Total:     len(tests),
		Duration:  duration,
		Tests:     tests,
	}
	if sr.Tests == nil {
		sr.Tests = []TestResult{}
	}
	for _, t := range tests {
		switch t.Status {
		case StatusPass:
			sr.Passed++
		case StatusFail:
			sr.Failed++
		case StatusTimeout:
			sr.Timeout++
		case StatusError:
			sr.Error++
		}
	}
	return sr
}

// HasFailures reports whether any test did not pass.
func (s *SuiteResult) HasFailures() bool {
	return s.Failed > 0 || s.Timeout > 0 || s.Error > 0
}

// PassRate returns the percentage of passing tests, 0 for an empty suite.
func (s *SuiteResult) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

// WithStatus returns the tests with the given status, in suite order.
func (s *SuiteResult) WithStatus(status Status) []TestResult {
	var out []TestResult
	for _, t := range s.Tests {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks the count invariants, e.g. on a document loaded from disk.
func (s *SuiteResult) Validate() error {
	if s.Total != len(s.Tests) {
		return fmt.Errorf("suite %s: total %d does not match %d tests", s.SuiteName, s.Total, len(s.Tests))
	}
	want := NewSuiteResult(s.SuiteName, s.Tests, s.Duration)
	for _, c := range []struct {
		status     Status
		got, count int
	}{
		{StatusPass, s.Passed, want.Passed},
		{StatusFail, s.Failed, want.Failed},
		{StatusTimeout, s.Timeout, want.Timeout},
		{StatusError, s.Error, want.Error},
	} {
		if c.got != c.count {
			return fmt.Errorf("suite %s: %s count is %d, tests hold %d", s.SuiteName, c.status, c.got, c.count)
		}
	}
	for _, t := range s.Tests {
		if t.Status == StatusPass && t.Error != "" {
			return fmt.Errorf("suite %s: passing test %s carries an error", s.SuiteName, t.Name)
		}
	}
	return nil
}

type suiteResultJSON struct {
	SuiteName string       `json:"suite_name"`
	Total     int          `json:"total"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Timeout   int          `json:"timeout"`
	Error     int          `json:"error"`
	Duration  float64      `json:"duration"`
	Tests     []TestResult `json:"tests"`
}

// MarshalJSON writes the suite in the persisted results schema.
func (s SuiteResult) MarshalJSON() ([]byte, error) {
	tests := s.Tests
	if tests == nil {
		tests = []TestResult{}
	}
	return json.Marshal(suiteResultJSON{
		SuiteName: s.SuiteName,
		Total:     s.Total,
		Passed:    s.Passed,
		Failed:    s.Failed,
		Timeout:   s.Timeout,
		Error:     s.Error,
		Duration:  s.Duration.Seconds(),
		Tests:     tests,
	})
}

// UnmarshalJSON reads a suite document. Counts are taken as written;
// call Validate to check them.
func (s *SuiteResult) UnmarshalJSON(data []byte) error {
	var raw suiteResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SuiteResult{
		SuiteName: raw.SuiteName,
		Total:     raw.Total,
		Passed:    raw.Passed,
		Failed:    raw.Failed,
		Timeout:   raw.Timeout,
		Error:     raw.Error,
		Duration:  secondsToDuration(raw.Duration),
		Tests:     raw.Tests,
	}
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
