package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// VerifyOptions configures the post-restart check. Attempts = 0 disables it.
type VerifyOptions struct {
	Attempts int
	Delay    time.Duration
}

var errNoEndpoint = errors.New("tunnel has no active endpoint")

// verify re-probes the tunnel until it reports the expected address. It only
// observes: a failed verification is logged and left to the next cycle.
func (m *Monitor) verify(ctx context.Context, want string) bool {
	err := retry.Do(
		func() error {
			addr, ok, err := m.probe.CurrentEndpoint(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errNoEndpoint
			}
			if Diverged(addr, want) {
				return fmt.Errorf("endpoint is %s, want %s", addr, want)
			}
			return nil
		},
		retry.Attempts(uint(m.opts.Verify.Attempts)),
		retry.Delay(m.opts.Verify.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			m.log.Debug().
				Uint64("attempt", uint64(n+1)).
				Err(err).
				Msg("restart not confirmed yet")
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		m.log.Warn().Err(err).Str("want", want).Msg("tunnel did not pick up the new endpoint")
		return false
	}
	m.log.Info().Str("endpoint", want).Msg("tunnel re-established with the new endpoint")
	return true
}
