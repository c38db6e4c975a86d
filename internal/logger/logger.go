// Package logger provides centralized logging for the daemon.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	Level string
	// File, when set, receives JSON lines in addition to the console output.
	File string
	// JSON switches console output from human-readable to JSON lines.
	JSON bool
	// RedirectStderr duplicates stderr into File so runtime panics are kept.
	RedirectStderr bool
}

var (
	logMutex sync.Mutex
	logFile  *os.File
	logPath  string
	log      = newLogger(os.Stderr, false, nil)
)

func newLogger(console io.Writer, json bool, file io.Writer) zerolog.Logger {
	var out io.Writer = console
	if !json {
		out = zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime}
	}
	if file != nil {
		out = zerolog.MultiLevelWriter(out, file)
	}
	return zerolog.New(zerolog.SyncWriter(out)).With().Timestamp().Logger()
}

// Init initializes the logger.
func Init(opts Options) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if opts.File == "" {
		log = newLogger(os.Stderr, opts.JSON, nil)
		return nil
	}

	logPath = opts.File
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f

	console := io.Writer(os.Stderr)
	if opts.RedirectStderr {
		// fd 2 now points at the file; console output goes to stdout.
		if err := redirectStderr(f); err != nil {
			return fmt.Errorf("failed to redirect stderr: %w", err)
		}
		console = os.Stdout
	}

	log = newLogger(console, opts.JSON, f)
	return nil
}

// Close closes the log file
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	log = newLogger(os.Stderr, false, nil)
}

func current() zerolog.Logger {
	logMutex.Lock()
	defer logMutex.Unlock()
	return log
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	l := current()
	l.Info().Msgf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	l := current()
	l.Error().Msgf(format, args...)
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	l := current()
	l.Debug().Msgf(format, args...)
}

// Warning logs a warning message
func Warning(format string, args ...interface{}) {
	l := current()
	l.Warn().Msgf(format, args...)
}

// For returns a logger carrying the tunnel identifier on every event.
func For(tunnelID string) zerolog.Logger {
	return current().With().Str("tunnel", tunnelID).Logger()
}

// Drift logs a detected divergence between the in-use and resolved endpoint.
func Drift(tunnelID, oldAddr, newAddr string) {
	l := current()
	l.Warn().
		Str("tunnel", tunnelID).
		Str("old", oldAddr).
		Str("new", newAddr).
		Msgf("wireguard endpoint old ip is %s, new ip is %s, restarting %s", oldAddr, newAddr, tunnelID)
}

// Restart logs the outcome of a restart attempt.
func Restart(tunnelID string, downExit, upExit int, err error) {
	l := current()
	var ev *zerolog.Event
	switch {
	case err != nil:
		ev = l.Error().Err(err)
	case downExit != 0 || upExit != 0:
		ev = l.Warn()
	default:
		ev = l.Info()
	}
	ev.Str("tunnel", tunnelID).
		Int("down_exit", downExit).
		Int("up_exit", upExit).
		Msg("tunnel restart attempted")
}

// GetLogPath returns the path to the log file
func GetLogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

// Recover should be deferred at the top of every goroutine to catch panics.
// Usage: go func() { defer logger.Recover("myGoroutine"); ... }()
func Recover(name string) {
	if r := recover(); r != nil {
		l := current()
		l.Error().
			Str("goroutine", name).
			Str("stack", string(debug.Stack())).
			Msgf("PANIC in %s: %v", name, r)
	}
}

// RecoverError is Recover for goroutines that return an error: a panic is logged
// and stored in *errp so the caller sees the goroutine fail.
// Usage: func() (err error) { defer logger.RecoverError("worker", &err); ... }
func RecoverError(name string, errp *error) {
	if r := recover(); r != nil {
		l := current()
		l.Error().
			Str("goroutine", name).
			Str("stack", string(debug.Stack())).
			Msgf("PANIC in %s: %v", name, r)
		*errp = fmt.Errorf("%s panicked: %v", name, r)
	}
}
