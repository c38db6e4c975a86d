//go:build windows

package elevate

import "golang.org/x/sys/windows"

// IsAdmin returns true if the current process token is elevated.
func IsAdmin() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
