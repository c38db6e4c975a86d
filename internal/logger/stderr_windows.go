//go:build windows

package logger

import "os"

// redirectStderr is a no-op on Windows; wg-quick does not exist there.
func redirectStderr(f *os.File) error {
	return nil
}
