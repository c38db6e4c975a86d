package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/user/wg-ddns/internal/logger"
)

// ResolvConf is read when no nameserver is configured.
const ResolvConf = "/etc/resolv.conf"

// Direct queries A/AAAA records straight from a nameserver, skipping local caches
// (nscd, systemd-resolved) that can keep serving a stale DDNS answer.
type Direct struct {
	client  *dns.Client
	server  string
	network string
	timeout time.Duration
}

// NewDirect creates a direct resolver. An empty nameserver means the first server
// listed in /etc/resolv.conf; a nameserver without a port uses 53.
func NewDirect(network, nameserver string, timeout time.Duration) (*Direct, error) {
	server, err := pickServer(nameserver, ResolvConf)
	if err != nil {
		return nil, err
	}
	return &Direct{
		client:  &dns.Client{Timeout: timeout},
		server:  server,
		network: network,
		timeout: timeout,
	}, nil
}

func pickServer(nameserver, resolvConf string) (string, error) {
	if nameserver != "" {
		if _, _, err := net.SplitHostPort(nameserver); err == nil {
			return nameserver, nil
		}
		return net.JoinHostPort(nameserver, "53"), nil
	}

	cfg, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", resolvConf, err)
	}
	if len(cfg.Servers) == 0 {
		return "", fmt.Errorf("no nameserver in %s", resolvConf)
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port), nil
}

// Resolve implements Resolver.
func (d *Direct) Resolve(ctx context.Context, domain string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var qtypes []uint16
	switch d.network {
	case "ip4":
		qtypes = []uint16{dns.TypeA}
	case "ip6":
		qtypes = []uint16{dns.TypeAAAA}
	default:
		qtypes = []uint16{dns.TypeA, dns.TypeAAAA}
	}

	for _, qtype := range qtypes {
		addrs, err := d.query(ctx, domain, qtype)
		if err != nil {
			logger.Info("failed to resolve %s %s via %s: %v", domain, dns.TypeToString[qtype], d.server, err)
			continue
		}
		if len(addrs) > 0 {
			return addrs[0], true
		}
	}

	logger.Info("no addresses returned for %s from %s", domain, d.server)
	return "", false
}

func (d *Direct) query(ctx context.Context, host string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	r, _, err := d.client.ExchangeContext(ctx, m, d.server)
	if err != nil {
		return nil, err
	}
	if r.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("rcode %s", dns.RcodeToString[r.Rcode])
	}

	var out []string
	for _, a := range r.Answer {
		switch rr := a.(type) {
		case *dns.A:
			if qtype == dns.TypeA {
				out = append(out, rr.A.String())
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA {
				out = append(out, rr.AAAA.String())
			}
		}
	}
	return out, nil
}
