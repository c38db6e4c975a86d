// Package tunnel restarts a wg-quick tunnel so it renegotiates its peer endpoint.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/wg-ddns/internal/logger"
	"github.com/user/wg-ddns/internal/procutil"
)

// Step names one half of a restart.
type Step string

const (
	StepDown Step = "down"
	StepUp   Step = "up"
)

// RestartError reports a restart sub-command that could not be issued at all.
type RestartError struct {
	Tunnel string
	Step   Step
	Err    error
}

func (e *RestartError) Error() string {
	return fmt.Sprintf("failed to bring tunnel %s %s: %v", e.Tunnel, e.Step, e.Err)
}

func (e *RestartError) Unwrap() error {
	return e.Err
}

// Outcome records what each sub-command reported. Exit codes are observed only;
// -1 means the step could not be issued.
type Outcome struct {
	DownExit   int
	UpExit     int
	DownOutput string
	UpOutput   string
}

// Restarter tears a tunnel down and brings it back up.
type Restarter struct {
	runner  procutil.Runner
	command string
	timeout time.Duration
}

// NewRestarter creates a restarter that drives `command down|up <tunnel>`.
func NewRestarter(runner procutil.Runner, command string, timeout time.Duration) *Restarter {
	return &Restarter{
		runner:  runner,
		command: command,
		timeout: timeout,
	}
}

// Restart issues down then up for the tunnel. Up is attempted even when down fails
// or exits non-zero (an already-down tunnel is fine). The returned error is non-nil
// only if a step could not be issued; both failures are joined.
//
// Once started, a restart runs to completion: cancelling ctx does not interrupt
// either step, which stays bounded by the restart timeout only.
func (r *Restarter) Restart(ctx context.Context, tunnelID string) (Outcome, error) {
	var out Outcome

	downExit, downOutput, downErr := r.step(ctx, tunnelID, StepDown)
	out.DownExit, out.DownOutput = downExit, downOutput

	upExit, upOutput, upErr := r.step(ctx, tunnelID, StepUp)
	out.UpExit, out.UpOutput = upExit, upOutput

	return out, errors.Join(downErr, upErr)
}

func (r *Restarter) step(ctx context.Context, tunnelID string, step Step) (int, string, error) {
	// A half-finished down leaves the tunnel without its interface.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	res, err := r.runner.Run(ctx, r.command, string(step), tunnelID)
	if err != nil {
		return -1, "", &RestartError{Tunnel: tunnelID, Step: step, Err: err}
	}

	output := strings.TrimSpace(string(res.Output) + "\n" + string(res.Stderr))
	if res.ExitCode != 0 {
		logger.Warning("%s %s %s exited with %d: %s", r.command, step, tunnelID, res.ExitCode, output)
	} else {
		logger.Debug("%s %s %s: %s", r.command, step, tunnelID, output)
	}
	return res.ExitCode, output, nil
}
