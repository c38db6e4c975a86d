package config

import (
	"fmt"
	"net"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if len(c.Tunnels) == 0 {
		return fmt.Errorf("at least one tunnel config is required")
	}

	if err := c.Probe.Validate(); err != nil {
		return fmt.Errorf("probe config: %w", err)
	}
	if err := c.Resolver.Validate(); err != nil {
		return fmt.Errorf("resolver config: %w", err)
	}
	if c.Restart.Command == "" {
		return fmt.Errorf("restart config: command is required")
	}
	if err := c.Timeouts.Validate(); err != nil {
		return fmt.Errorf("timeouts config: %w", err)
	}
	if c.Verify.Attempts < 0 {
		return fmt.Errorf("verify config: attempts cannot be negative")
	}
	if c.Verify.Attempts > 0 && c.Verify.Delay <= 0 {
		return fmt.Errorf("verify config: delay must be positive")
	}

	if c.Remote.Enabled() {
		if err := c.Remote.Validate(); err != nil {
			return fmt.Errorf("remote config: %w", err)
		}
		if c.Probe.Mode == ProbeWgctrl {
			return fmt.Errorf("probe mode %s cannot read a remote host", ProbeWgctrl)
		}
	}

	return nil
}

// Validate validates probe configuration.
func (p *Probe) Validate() error {
	switch p.Mode {
	case ProbeCommand:
		if len(p.Command) == 0 || p.Command[0] == "" {
			return fmt.Errorf("command is required for mode %s", ProbeCommand)
		}
	case ProbeWgctrl:
	default:
		return fmt.Errorf("unknown mode: %s", p.Mode)
	}
	return nil
}

// Validate validates resolver configuration.
func (r *Resolver) Validate() error {
	switch r.Mode {
	case ResolverSystem, ResolverDirect:
	default:
		return fmt.Errorf("unknown mode: %s", r.Mode)
	}

	switch r.Network {
	case "ip", "ip4", "ip6":
	default:
		return fmt.Errorf("unknown network: %s", r.Network)
	}

	if r.Nameserver != "" {
		host := r.Nameserver
		if h, _, err := net.SplitHostPort(r.Nameserver); err == nil {
			host = h
		}
		if net.ParseIP(host) == nil {
			return fmt.Errorf("invalid nameserver: %s", r.Nameserver)
		}
	}
	return nil
}

// Validate validates timeouts.
func (t *Timeouts) Validate() error {
	if t.Probe <= 0 {
		return fmt.Errorf("probe must be positive")
	}
	if t.Resolve <= 0 {
		return fmt.Errorf("resolve must be positive")
	}
	if t.Restart <= 0 {
		return fmt.Errorf("restart must be positive")
	}
	return nil
}

// Validate validates remote host configuration.
func (r *Remote) Validate() error {
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if r.User == "" {
		return fmt.Errorf("user is required")
	}
	if r.KeyPath == "" && r.Password == "" {
		return fmt.Errorf("key_path or password is required")
	}
	return nil
}
