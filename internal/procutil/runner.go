// Package procutil runs the external tunnel tooling, locally or on a remote host.
package procutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result is the outcome of a command that was started.
type Result struct {
	// Output is the command's stdout.
	Output []byte
	// Stderr is kept for logging failed tool invocations.
	Stderr   []byte
	ExitCode int
}

// Runner executes a command and waits for it.
//
// A non-zero exit status is reported through Result.ExitCode, not as an error.
// An error means the command could not be run at all, or ctx expired first.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// LocalRunner runs commands on this host.
type LocalRunner struct{}

// NewLocalRunner creates a runner for local commands.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run implements Runner.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := prepare(exec.CommandContext(ctx, name, args...))
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Output: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s: %w", CommandLine(name, args...), ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("failed to run %s: %w", CommandLine(name, args...), err)
	}
	return res, nil
}

// CommandLine renders a command for logs and for remote shells.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(name))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, c := range s {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			strings.ContainsRune("-_./=:@+,", c)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
