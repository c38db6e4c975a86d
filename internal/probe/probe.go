// Package probe reads the peer endpoint a WireGuard tunnel is currently using.
package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/user/wg-ddns/internal/logger"
	"github.com/user/wg-ddns/internal/procutil"
)

// endpointTag marks the endpoint field in `wg show` output.
const endpointTag = "endpoint"

// Probe returns the live endpoint address of a tunnel.
//
// ok is false when the tunnel has no active endpoint yet or the status did not
// have the expected shape. err is reserved for failures to query the status at all.
type Probe interface {
	CurrentEndpoint(ctx context.Context) (addr string, ok bool, err error)
}

// ExtractEndpoint finds the endpoint address in status text: the text between the
// first digit after the "endpoint" tag and the first ':' after that digit, trimmed.
func ExtractEndpoint(status string) (string, bool) {
	idx := strings.Index(status, endpointTag)
	if idx < 0 {
		return "", false
	}
	rest := status[idx+len(endpointTag):]

	begin := strings.IndexFunc(rest, func(r rune) bool { return r >= '0' && r <= '9' })
	if begin < 0 {
		return "", false
	}

	end := strings.IndexByte(rest[begin:], ':')
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(rest[begin : begin+end]), true
}

// CommandProbe runs the tunnel tool's status command and parses its output.
type CommandProbe struct {
	runner  procutil.Runner
	name    string
	args    []string
	timeout time.Duration
}

// NewCommandProbe builds a probe for `command... tunnelID`, e.g. `wg show wg0`.
func NewCommandProbe(runner procutil.Runner, command []string, tunnelID string, timeout time.Duration) *CommandProbe {
	args := append(append([]string{}, command[1:]...), tunnelID)
	return &CommandProbe{
		runner:  runner,
		name:    command[0],
		args:    args,
		timeout: timeout,
	}
}

// CurrentEndpoint implements Probe.
func (p *CommandProbe) CurrentEndpoint(ctx context.Context) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.runner.Run(ctx, p.name, p.args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Info("status query timed out after %s: %s", p.timeout, procutil.CommandLine(p.name, p.args...))
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query tunnel status: %w", err)
	}
	if res.ExitCode != 0 {
		logger.Debug("%s exited with %d: %s", procutil.CommandLine(p.name, p.args...), res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	if !utf8.Valid(res.Output) {
		return "", false, fmt.Errorf("tunnel status output is not valid UTF-8")
	}

	addr, ok := ExtractEndpoint(string(res.Output))
	return addr, ok, nil
}
