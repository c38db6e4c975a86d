// Package config handles daemon settings and WireGuard tunnel configuration files.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ProbeMode selects how the live endpoint is read.
type ProbeMode string

const (
	ProbeCommand ProbeMode = "command"
	ProbeWgctrl  ProbeMode = "wgctrl"
)

// ResolverMode selects how the endpoint domain is resolved.
type ResolverMode string

const (
	ResolverSystem ResolverMode = "system"
	ResolverDirect ResolverMode = "direct"
)

// Duration is a time.Duration that reads and writes as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML parses values such as "5s" or "2m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the daemon settings.
type Config struct {
	Version  int      `yaml:"version"`
	Interval Duration `yaml:"interval"`
	Tunnels  []string `yaml:"tunnels"`
	Probe    Probe    `yaml:"probe"`
	Resolver Resolver `yaml:"resolver"`
	Restart  Restart  `yaml:"restart"`
	Timeouts Timeouts `yaml:"timeouts"`
	Verify   Verify   `yaml:"verify"`
	Remote   Remote   `yaml:"remote"`
	Log      Log      `yaml:"log"`
}

// Probe configures the status probe.
type Probe struct {
	Mode ProbeMode `yaml:"mode"`
	// Command is invoked with the tunnel identifier appended.
	Command []string `yaml:"command,omitempty"`
}

// Resolver configures name resolution.
type Resolver struct {
	Mode ResolverMode `yaml:"mode"`
	// Network is "ip4", "ip6" or "ip" (IPv4 answers first).
	Network    string `yaml:"network"`
	Nameserver string `yaml:"nameserver,omitempty"` // direct mode only; empty = resolv.conf
}

// Restart configures the tunnel restart tool.
type Restart struct {
	Command string `yaml:"command"`
}

// Timeouts bound every external call.
type Timeouts struct {
	Probe   Duration `yaml:"probe"`
	Resolve Duration `yaml:"resolve"`
	Restart Duration `yaml:"restart"`
}

// Verify configures the post-restart check. Attempts = 0 disables it.
type Verify struct {
	Attempts int      `yaml:"attempts"`
	Delay    Duration `yaml:"delay"`
}

// Remote points the tunnel tooling at another host over SSH.
type Remote struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	KeyPath  string `yaml:"key_path,omitempty"`
	Password string `yaml:"password,omitempty"`
	// KnownHosts defaults to ~/.ssh/known_hosts.
	KnownHosts            string `yaml:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key,omitempty"`
}

// Enabled reports whether commands run on a remote host.
func (r *Remote) Enabled() bool {
	return r.Host != ""
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
	JSON  bool   `yaml:"json"`
}

// DefaultTunnelPath is the wg-quick configuration watched when none is given.
const DefaultTunnelPath = "/etc/wireguard/wg0.conf"

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Interval: Duration(5 * time.Second),
		Tunnels:  []string{DefaultTunnelPath},
		Probe: Probe{
			Mode:    ProbeCommand,
			Command: []string{"wg", "show"},
		},
		Resolver: Resolver{
			Mode:    ResolverSystem,
			Network: "ip",
		},
		Restart: Restart{
			Command: "wg-quick",
		},
		Timeouts: Timeouts{
			Probe:   Duration(10 * time.Second),
			Resolve: Duration(5 * time.Second),
			Restart: Duration(30 * time.Second),
		},
		Verify: Verify{
			Attempts: 0,
			Delay:    Duration(2 * time.Second),
		},
		Remote: Remote{
			Port: 22,
			User: "root",
		},
		Log: Log{
			Level: "info",
		},
	}
}
