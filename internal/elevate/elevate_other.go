//go:build !linux && !windows

package elevate

import "golang.org/x/sys/unix"

// IsAdmin returns true if the current process is running as root.
func IsAdmin() bool {
	return unix.Geteuid() == 0
}
