// Package elevate checks whether the process may manage WireGuard interfaces.
package elevate

import "fmt"

// Check returns an error describing the missing privilege, or nil.
func Check() error {
	if IsAdmin() {
		return nil
	}
	return fmt.Errorf("not running as root; wg and wg-quick will likely fail")
}
