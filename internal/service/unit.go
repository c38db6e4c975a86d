// Package service renders the systemd unit that runs the daemon.
package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/user/wg-ddns/internal/config"
)

// UnitOptions describes the daemon invocation to install.
type UnitOptions struct {
	// Executable is the absolute path of the wg-ddns binary.
	Executable string
	// Tunnels are wg-quick configuration files, one -c flag each.
	Tunnels []string
	// Settings is an optional settings file path.
	Settings string
	// Interval, LogLevel and DryRun are passed through when set.
	Interval time.Duration
	LogLevel string
	DryRun   bool
}

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=Restart WireGuard tunnels when their DDNS endpoint changes ({{.IDs}})
Wants=network-online.target
After=network-online.target{{range .Units}} {{.}}{{end}}

[Service]
Type=simple
ExecStart={{.ExecStart}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`))

// Unit returns the unit file contents.
func Unit(opts UnitOptions) (string, error) {
	if !filepath.IsAbs(opts.Executable) {
		return "", fmt.Errorf("executable path must be absolute: %s", opts.Executable)
	}
	if len(opts.Tunnels) == 0 {
		return "", fmt.Errorf("at least one tunnel config is required")
	}

	args := []string{opts.Executable, "run"}
	var ids, units []string
	for _, path := range opts.Tunnels {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		args = append(args, "-c", abs)
		id := config.TunnelID(abs)
		ids = append(ids, id)
		units = append(units, "wg-quick@"+id+".service")
	}
	if opts.Settings != "" {
		args = append(args, "--settings", opts.Settings)
	}
	if opts.Interval > 0 {
		args = append(args, "--interval", opts.Interval.String())
	}
	if opts.LogLevel != "" {
		args = append(args, "--log-level", opts.LogLevel)
	}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}

	var buf bytes.Buffer
	err := unitTemplate.Execute(&buf, struct {
		IDs       string
		Units     []string
		ExecStart string
	}{
		IDs:       strings.Join(ids, ", "),
		Units:     units,
		ExecStart: strings.Join(quoted, " "),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render unit: %w", err)
	}
	return buf.String(), nil
}

var (
	specifierEscaper = strings.NewReplacer("%", "%%", "$", "$$")
	quoteEscaper     = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
)

// quoteArg renders one ExecStart argument. systemd expands % specifiers and $
// variables even inside quotes, so those are always doubled.
func quoteArg(s string) string {
	s = specifierEscaper.Replace(s)
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\;") {
		return s
	}
	return `"` + quoteEscaper.Replace(s) + `"`
}
