//go:build unix

package execution

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate starts cmd in a process group of its own so that cancelling it
// kills every descendant, not just the direct child.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killGroup(cmd.Process)
	}
}

// killGroup sends SIGKILL to the process group led by proc. A group that
// is already gone is reported as os.ErrProcessDone.
func killGroup(proc *os.Process) error {
	if proc == nil {
		return os.ErrProcessDone
	}
	err := unix.Kill(-proc.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
