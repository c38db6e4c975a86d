// Package resolver resolves the tunnel's endpoint domain to one current address.
package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"time"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/logger"
)

// Resolver returns the first current address of a domain, or ok=false when the
// lookup fails or yields nothing. Failures are never fatal to the caller.
type Resolver interface {
	Resolve(ctx context.Context, domain string) (addr string, ok bool)
}

// New builds the process-wide resolver described by cfg.
func New(cfg config.Resolver, timeout time.Duration) (Resolver, error) {
	switch cfg.Mode {
	case config.ResolverSystem:
		return NewSystem(cfg.Network, timeout), nil
	case config.ResolverDirect:
		return NewDirect(cfg.Network, cfg.Nameserver, timeout)
	default:
		return nil, fmt.Errorf("unknown resolver mode: %s", cfg.Mode)
	}
}

// System uses the platform resolver (nsswitch, /etc/hosts, libc or Go's stub).
type System struct {
	resolver *net.Resolver
	network  string
	timeout  time.Duration
}

// NewSystem creates a resolver backed by net.DefaultResolver.
func NewSystem(network string, timeout time.Duration) *System {
	return &System{
		resolver: net.DefaultResolver,
		network:  network,
		timeout:  timeout,
	}
}

// Resolve implements Resolver.
func (s *System) Resolve(ctx context.Context, domain string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addrs, err := s.resolver.LookupNetIP(ctx, s.network, domain)
	if err != nil {
		logger.Info("failed to resolve %s: %v", domain, err)
		return "", false
	}

	addr, ok := first(addrs, s.network)
	if !ok {
		logger.Info("no addresses returned for %s", domain)
		return "", false
	}
	return addr, true
}

// first picks the address to compare against. For network "ip" IPv4 answers come
// before IPv6 ones; otherwise the resolver's order is kept.
func first(addrs []netip.Addr, network string) (string, bool) {
	if len(addrs) == 0 {
		return "", false
	}
	if network == "ip" {
		sort.SliceStable(addrs, func(i, j int) bool {
			return addrs[i].Unmap().Is4() && !addrs[j].Unmap().Is4()
		})
	}
	return addrs[0].Unmap().String(), true
}
