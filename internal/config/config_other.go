//go:build !linux

package config

import (
	"os"
	"path/filepath"
)

// DefaultSettingsPath returns the settings file location next to the executable.
func DefaultSettingsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}
