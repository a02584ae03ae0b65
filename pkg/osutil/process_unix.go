//go:build unix

package osutil

import (
	"os/exec"
	"syscall"
)

// killTree starts cmd as the leader of a new process group and makes context
// cancellation signal the whole group, so validators that fork do not outlive
// their timeout.
func killTree(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
