package commands

import "fmt"

// ExitError carries the process exit status out of a command. Err is
// printed by main when set; a bare code exits silently because the report
// already explained the outcome.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
