package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoEndpoint is returned when a tunnel configuration has no usable Endpoint line.
var ErrNoEndpoint = errors.New("no endpoint domain in tunnel config")

// Tunnel identifies a watched WireGuard tunnel. It is fixed for the process lifetime.
type Tunnel struct {
	// ID is the wg-quick interface name, the file base name without extension.
	ID string
	// Path is the configuration file the tunnel was read from.
	Path string
	// Domain is the host part of the first peer Endpoint.
	Domain string
}

// LoadTunnel reads a wg-quick configuration file and extracts the tunnel identifier
// and endpoint domain.
func LoadTunnel(path string) (*Tunnel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tunnel config: %w", err)
	}
	defer f.Close()

	domain, err := ParseEndpointDomain(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Tunnel{
		ID:     TunnelID(path),
		Path:   path,
		Domain: domain,
	}, nil
}

// TunnelID derives the interface name from a configuration path
// ("/etc/wireguard/wg0.conf" -> "wg0").
func TunnelID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseEndpointDomain returns the domain of the first "Endpoint = domain:port" line.
// The domain is the text between '=' and the first following ':', trimmed.
func ParseEndpointDomain(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(parts[0]), "Endpoint") {
			continue
		}

		val := parts[1]
		end := strings.Index(val, ":")
		if end < 0 {
			return "", fmt.Errorf("line %d: endpoint has no port: %w", ln, ErrNoEndpoint)
		}
		domain := strings.TrimSpace(val[:end])
		if domain == "" {
			return "", fmt.Errorf("line %d: endpoint domain is empty: %w", ln, ErrNoEndpoint)
		}
		return domain, nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to scan tunnel config: %w", err)
	}
	return "", ErrNoEndpoint
}
