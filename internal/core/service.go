// Package core wires the probes, the resolver and the restarters into one monitor
// per watched tunnel.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.zx2c4.com/wireguard/wgctrl"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/logger"
	"github.com/user/wg-ddns/internal/monitor"
	"github.com/user/wg-ddns/internal/probe"
	"github.com/user/wg-ddns/internal/procutil"
	"github.com/user/wg-ddns/internal/resolver"
	"github.com/user/wg-ddns/internal/tunnel"
)

// Service owns the long-lived collaborators shared by all monitors.
type Service struct {
	mu       sync.Mutex
	cfg      *config.Config
	runner   procutil.Runner
	resolver resolver.Resolver
	wg       *wgctrl.Client
	monitors []*monitor.Monitor
}

// NewService reads every tunnel config and builds its monitor. Any unreadable
// config or missing endpoint aborts startup.
func NewService(cfg *config.Config, dryRun bool) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{cfg: cfg}

	if cfg.Remote.Enabled() {
		r, err := procutil.NewSSHRunner(procutil.SSHConfig{
			Host:                  cfg.Remote.Host,
			Port:                  cfg.Remote.Port,
			User:                  cfg.Remote.User,
			KeyPath:               cfg.Remote.KeyPath,
			Password:              cfg.Remote.Password,
			KnownHosts:            cfg.Remote.KnownHosts,
			InsecureIgnoreHostKey: cfg.Remote.InsecureIgnoreHostKey,
		})
		if err != nil {
			return nil, err
		}
		s.runner = r
		logger.Info("Running tunnel commands on %s@%s:%d", cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Port)
	} else {
		s.runner = procutil.NewLocalRunner()
	}

	res, err := resolver.New(cfg.Resolver, cfg.Timeouts.Resolve.Std())
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	s.resolver = res

	if cfg.Probe.Mode == config.ProbeWgctrl {
		client, err := wgctrl.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create wgctrl client: %w", err)
		}
		s.wg = client
	}

	restarter := tunnel.NewRestarter(s.runner, cfg.Restart.Command, cfg.Timeouts.Restart.Std())
	opts := monitor.Options{
		Interval: cfg.Interval.Std(),
		DryRun:   dryRun,
		Verify: monitor.VerifyOptions{
			Attempts: cfg.Verify.Attempts,
			Delay:    cfg.Verify.Delay.Std(),
		},
	}

	seen := make(map[string]bool)
	for _, path := range cfg.Tunnels {
		t, err := config.LoadTunnel(path)
		if err != nil {
			s.Close()
			return nil, err
		}
		if seen[t.ID] {
			s.Close()
			return nil, fmt.Errorf("tunnel %s configured twice", t.ID)
		}
		seen[t.ID] = true

		logger.Info("Tunnel %s: endpoint domain %s (from %s)", t.ID, t.Domain, t.Path)
		s.monitors = append(s.monitors, monitor.New(*t, s.probeFor(t.ID), s.resolver, restarter, opts))
	}

	return s, nil
}

func (s *Service) probeFor(tunnelID string) probe.Probe {
	if s.wg != nil {
		return probe.NewWgctrlProbe(s.wg, tunnelID)
	}
	return probe.NewCommandProbe(s.runner, s.cfg.Probe.Command, tunnelID, s.cfg.Timeouts.Probe.Std())
}

// Monitors returns the per-tunnel monitors.
func (s *Service) Monitors() []*monitor.Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*monitor.Monitor(nil), s.monitors...)
}

// Run drives every monitor until ctx is cancelled. A monitor that panics stops
// all of them and Run returns the panic as an error, so a supervisor restarts the
// process instead of leaving a tunnel unwatched.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range s.Monitors() {
		m := m
		g.Go(func() (err error) {
			defer logger.RecoverError("monitor "+m.Tunnel().ID, &err)
			return m.Run(ctx)
		})
	}
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Check runs a single cycle per tunnel, in order.
func (s *Service) Check(ctx context.Context) []Status {
	var out []Status
	for _, m := range s.Monitors() {
		out = append(out, newStatus(m.Tunnel(), m.RunOnce(ctx)))
	}
	return out
}

// Close releases the wgctrl client, if any.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wg != nil {
		err := s.wg.Close()
		s.wg = nil
		return err
	}
	return nil
}
