// Package monitor detects endpoint drift on a tunnel and restarts it.
//
// Each cycle probes the live endpoint, resolves the configured domain, compares the
// two and, on divergence, restarts the tunnel. Nothing observed in one cycle is
// reused by the next.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/logger"
	"github.com/user/wg-ddns/internal/probe"
	"github.com/user/wg-ddns/internal/resolver"
	"github.com/user/wg-ddns/internal/tunnel"
)

// Restarter is implemented by *tunnel.Restarter.
type Restarter interface {
	Restart(ctx context.Context, tunnelID string) (tunnel.Outcome, error)
}

// Cycle is the record of one probe/resolve/decide pass.
type Cycle struct {
	Current  Observation
	Resolved Observation
	Drift    bool
	// Restarted is true once the down/up pair has been issued.
	Restarted bool
	Restart   tunnel.Outcome
	// Verified is set only when verification is enabled and a restart happened.
	Verified bool
	Err      error
}

// Options configures a Monitor.
type Options struct {
	Interval time.Duration
	// DryRun detects drift without restarting.
	DryRun bool
	Verify VerifyOptions
}

// Monitor watches one tunnel.
type Monitor struct {
	tunnel    config.Tunnel
	probe     probe.Probe
	resolver  resolver.Resolver
	restarter Restarter
	opts      Options
	log       zerolog.Logger

	mu       sync.Mutex
	restarts int
}

// New creates a monitor for the tunnel. The resolver is shared and owned by the caller.
func New(t config.Tunnel, p probe.Probe, r resolver.Resolver, rs Restarter, opts Options) *Monitor {
	return &Monitor{
		tunnel:    t,
		probe:     p,
		resolver:  r,
		restarter: rs,
		opts:      opts,
		log:       logger.For(t.ID),
	}
}

// Tunnel returns the watched tunnel.
func (m *Monitor) Tunnel() config.Tunnel {
	return m.tunnel
}

// Restarts returns how many restarts this monitor has issued.
func (m *Monitor) Restarts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restarts
}

// Run performs a cycle immediately and then one cycle per interval until ctx is
// cancelled. Failed cycles never stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info().
		Str("domain", m.tunnel.Domain).
		Dur("interval", m.opts.Interval).
		Msg("watching tunnel endpoint")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("stopped watching tunnel")
			return nil
		case <-timer.C:
			m.RunOnce(ctx)
			// The wait starts after the cycle so slow cycles never overlap.
			timer.Reset(m.opts.Interval)
		}
	}
}

// RunOnce performs a single cycle.
func (m *Monitor) RunOnce(ctx context.Context) Cycle {
	var c Cycle

	addr, ok, err := m.probe.CurrentEndpoint(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Error().Err(err).Msg("failed to read tunnel status")
		}
		c.Err = err
		return c
	}
	c.Current = Observation{Addr: addr, OK: ok}
	if !ok {
		m.log.Info().Msg("tunnel has no active endpoint")
		return c
	}

	addr, ok = m.resolver.Resolve(ctx, m.tunnel.Domain)
	c.Resolved = Observation{Addr: addr, OK: ok}
	if !ok {
		return c
	}

	c.Drift = Decide(c.Current, c.Resolved)
	if !c.Drift {
		m.log.Debug().Str("endpoint", c.Current.Addr).Msg("endpoint matches domain")
		return c
	}

	logger.Drift(m.tunnel.ID, c.Current.Addr, c.Resolved.Addr)
	if m.opts.DryRun {
		return c
	}

	c.Restart, c.Err = m.restarter.Restart(ctx, m.tunnel.ID)
	c.Restarted = true
	m.mu.Lock()
	m.restarts++
	m.mu.Unlock()
	logger.Restart(m.tunnel.ID, c.Restart.DownExit, c.Restart.UpExit, c.Err)

	if m.opts.Verify.Attempts > 0 {
		c.Verified = m.verify(ctx, c.Resolved.Addr)
	}
	return c
}
