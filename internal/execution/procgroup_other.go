//go:build !unix

package execution

import (
	"errors"
	"os"
	"os/exec"
)

// isolate falls back to killing the direct child only.
func isolate(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return killGroup(cmd.Process)
	}
}

func killGroup(proc *os.Process) error {
	if proc == nil {
		return os.ErrProcessDone
	}
	err := proc.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return os.ErrProcessDone
	}
	return err
}
