//go:build !windows

package procutil

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepare puts the command in its own process group so a timeout also kills the
// children spawned by wrapper scripts such as wg-quick.
func prepare(cmd *exec.Cmd) *exec.Cmd {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	return cmd
}
