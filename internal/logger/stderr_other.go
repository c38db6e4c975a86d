//go:build !windows

package logger

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStderr points fd 2 at the log file so runtime panics are captured.
func redirectStderr(f *os.File) error {
	return unix.Dup2(int(f.Fd()), int(os.Stderr.Fd()))
}
