package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/monitor"
	"github.com/user/wg-ddns/internal/tunnel"
)

func writeTunnel(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".conf")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const peerConf = `[Interface]
PrivateKey = aaaa
[Peer]
PublicKey = bbbb
Endpoint = vpn.example.com:51820
`

func TestNewServiceBuildsOneMonitorPerTunnel(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Tunnels = []string{
		writeTunnel(t, dir, "wg0", peerConf),
		writeTunnel(t, dir, "wg1", strings.Replace(peerConf, "vpn.example.com", "alt.example.org", 1)),
	}

	s, err := NewService(cfg, true)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer s.Close()

	ms := s.Monitors()
	if len(ms) != 2 {
		t.Fatalf("got %d monitors, want 2", len(ms))
	}
	if got := ms[1].Tunnel(); got.ID != "wg1" || got.Domain != "alt.example.org" {
		t.Errorf("second tunnel = %+v", got)
	}
}

func TestNewServiceMissingEndpointIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Tunnels = []string{writeTunnel(t, dir, "wg0", "[Interface]\nPrivateKey = aaaa\n")}

	_, err := NewService(cfg, false)
	if !errors.Is(err, config.ErrNoEndpoint) {
		t.Fatalf("err = %v, want ErrNoEndpoint", err)
	}
}

func TestNewServiceRejectsDuplicateTunnel(t *testing.T) {
	dir := t.TempDir()
	path := writeTunnel(t, dir, "wg0", peerConf)
	cfg := config.DefaultConfig()
	cfg.Tunnels = []string{path, path}

	if _, err := NewService(cfg, false); err == nil {
		t.Fatal("expected error for duplicate tunnel")
	}
}

func TestNewServiceUnreadableConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tunnels = []string{filepath.Join(t.TempDir(), "missing.conf")}

	if _, err := NewService(cfg, false); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		name string
		st   Status
		want string
	}{
		{
			"drift",
			Status{Tunnel: "wg0", Domain: "vpn.example.com", Endpoint: "203.0.113.5", Resolved: "203.0.113.9", Drift: true},
			"wg0: domain=vpn.example.com endpoint=203.0.113.5 resolved=203.0.113.9 drift=yes",
		},
		{
			"in sync",
			Status{Tunnel: "wg0", Domain: "vpn.example.com", Endpoint: "203.0.113.5", Resolved: "203.0.113.5"},
			"wg0: domain=vpn.example.com endpoint=203.0.113.5 resolved=203.0.113.5 drift=no",
		},
		{
			"down",
			Status{Tunnel: "wg0", Domain: "vpn.example.com", Resolved: "203.0.113.5"},
			"wg0: domain=vpn.example.com endpoint=(none) resolved=203.0.113.5 drift=unknown",
		},
		{
			"error",
			Status{Tunnel: "wg0", Domain: "vpn.example.com", Error: "exec: wg not found"},
			`wg0: domain=vpn.example.com endpoint=(none) resolved=(none) error="exec: wg not found"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.st.String(); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

type panickingProbe struct {
	calls atomic.Int32
}

func (p *panickingProbe) CurrentEndpoint(context.Context) (string, bool, error) {
	p.calls.Add(1)
	panic("nil device")
}

type steadyProbe struct {
	calls atomic.Int32
}

func (p *steadyProbe) CurrentEndpoint(context.Context) (string, bool, error) {
	p.calls.Add(1)
	return "", false, nil
}

type nopResolver struct{}

func (nopResolver) Resolve(context.Context, string) (string, bool) { return "", false }

type nopRestarter struct{}

func (nopRestarter) Restart(context.Context, string) (tunnel.Outcome, error) {
	return tunnel.Outcome{}, nil
}

func TestRunFailsWhenMonitorPanics(t *testing.T) {
	bad := &panickingProbe{}
	good := &steadyProbe{}
	opts := monitor.Options{Interval: 10 * time.Millisecond}
	s := &Service{monitors: []*monitor.Monitor{
		monitor.New(config.Tunnel{ID: "wg0", Domain: "vpn.example.com"}, bad, nopResolver{}, nopRestarter{}, opts),
		monitor.New(config.Tunnel{ID: "wg1", Domain: "alt.example.org"}, good, nopResolver{}, nopRestarter{}, opts),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "monitor wg0 panicked") {
		t.Fatalf("Run = %v, want panic error", err)
	}
	if ctx.Err() != nil {
		t.Error("Run waited for the outer context instead of failing fast")
	}
	if bad.calls.Load() != 1 {
		t.Errorf("panicking probe called %d times, want 1", bad.calls.Load())
	}
}

func TestRunReturnsNilOnCancel(t *testing.T) {
	p := &steadyProbe{}
	s := &Service{monitors: []*monitor.Monitor{
		monitor.New(config.Tunnel{ID: "wg0", Domain: "vpn.example.com"}, p, nopResolver{}, nopRestarter{},
			monitor.Options{Interval: 10 * time.Millisecond}),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if p.calls.Load() == 0 {
		t.Error("monitor never ran a cycle")
	}
}
