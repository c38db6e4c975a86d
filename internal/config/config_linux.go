//go:build linux

package config

// DefaultSettingsPath returns the settings file location on Linux.
func DefaultSettingsPath() string {
	return "/etc/wg-ddns/config.yaml"
}
