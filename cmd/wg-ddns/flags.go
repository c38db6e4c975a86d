package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/logger"
)

type flags struct {
	tunnels  []string
	settings string
	interval time.Duration
	logLevel string
	dryRun   bool
}

func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringArrayVarP(&f.tunnels, "config", "c", nil, "wg-quick tunnel config to watch (repeatable, default "+config.DefaultTunnelPath+")")
	pf.StringVar(&f.settings, "settings", config.DefaultSettingsPath(), "settings file path")
	pf.DurationVar(&f.interval, "interval", 0, "time between checks (overrides settings)")
	pf.StringVarP(&f.logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	pf.BoolVar(&f.dryRun, "dry-run", false, "detect drift without restarting")
}

// load reads the settings file and applies command-line overrides.
func (f *flags) load() (*config.Config, error) {
	m := config.NewManager(f.settings)
	if err := m.Load(); err != nil {
		return nil, err
	}
	cfg := m.Get()
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func (f *flags) apply(cfg *config.Config) {
	if len(f.tunnels) > 0 {
		cfg.Tunnels = append([]string(nil), f.tunnels...)
	}
	if f.interval > 0 {
		cfg.Interval = config.Duration(f.interval)
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}

func initLogging(cfg *config.Config) error {
	return logger.Init(logger.Options{
		Level:          cfg.Log.Level,
		File:           cfg.Log.File,
		JSON:           cfg.Log.JSON,
		RedirectStderr: cfg.Log.File != "",
	})
}
