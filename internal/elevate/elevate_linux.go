//go:build linux

package elevate

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsAdmin returns true if the process is root or holds CAP_NET_ADMIN, which is
// enough for `wg show` and `wg-quick` when run from a unit with
// AmbientCapabilities=CAP_NET_ADMIN.
func IsAdmin() bool {
	if os.Geteuid() == 0 {
		return true
	}
	return hasCapability(unix.CAP_NET_ADMIN)
}

func hasCapability(capability int) bool {
	hdr := unix.CapUserHeader{Version: unix.LINUX_CAPABILITY_VERSION_3}
	var data [2]unix.CapUserData
	if err := unix.Capget(&hdr, &data[0]); err != nil {
		return false
	}
	return data[capability/32].Effective&(1<<(uint(capability)%32)) != 0
}
