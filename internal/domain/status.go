package domain

import "fmt"

// Status is the verdict of a single test execution.
type Status int

const (
	// StatusPass means the test produced the expected outcome.
	StatusPass Status = iota
	// StatusFail means a deterministic mismatch (exit code or output diff).
	StatusFail
	// StatusTimeout means the test ran past its deadline and was killed.
	StatusTimeout
	// StatusError means the test could not be run at all.
	StatusError
)

// Statuses lists every status in reporting order.
var Statuses = []Status{StatusPass, StatusFail, StatusTimeout, StatusError}

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Symbol returns the single-glyph marker used in progress and summaries.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusFail:
		return "✗"
	case StatusTimeout:
		return "⏱"
	case StatusError:
		return "⚠"
	}
	return "?"
}

// ParseStatus converts the serialized form back into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown test status %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusPass, StatusFail, StatusTimeout, StatusError:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
