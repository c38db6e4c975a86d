package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/core"
	"github.com/user/wg-ddns/internal/elevate"
	"github.com/user/wg-ddns/internal/logger"
	"github.com/user/wg-ddns/internal/service"
)

func newRunCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the tunnels and restart them on endpoint drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, f)
		},
	}
}

func runDaemon(cmd *cobra.Command, f *flags) error {
	cfg, err := f.load()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	logger.Info("wg-ddns %s starting", Version)
	if !cfg.Remote.Enabled() {
		if err := elevate.Check(); err != nil {
			logger.Warning("%v", err)
		}
	}

	svc, err := core.NewService(cfg, f.dryRun)
	if err != nil {
		logger.Error("Startup failed: %v", err)
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		logger.Error("Monitor failed: %v", err)
		return err
	}
	logger.Info("Shutting down")
	return nil
}

func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one detection pass and print the result without restarting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			if err := initLogging(cfg); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Close()

			svc, err := core.NewService(cfg, true)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			failed := false
			for _, st := range svc.Check(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), st)
				if st.Error != "" {
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("one or more tunnels could not be checked")
			}
			return nil
		},
	}
}

func newUnitCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "unit",
		Short: "Print a systemd unit that runs the watcher",
		Long: `Print a systemd unit that runs the watcher with the given -c, --settings,
--interval, --log-level and --dry-run options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to locate executable: %w", err)
			}
			tunnels := f.tunnels
			if len(tunnels) == 0 {
				tunnels = []string{config.DefaultTunnelPath}
			}
			opts := service.UnitOptions{
				Executable: exe,
				Tunnels:    tunnels,
				Interval:   f.interval,
				LogLevel:   f.logLevel,
				DryRun:     f.dryRun,
			}
			if cmd.Flags().Changed("settings") {
				opts.Settings = f.settings
			}
			unit, err := service.Unit(opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), unit)
			return nil
		},
	}
}

func newInitConfigCmd(f *flags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a settings file populated with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(f.settings); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", f.settings)
			}
			cfg := config.DefaultConfig()
			f.apply(cfg)

			m := config.NewManager(f.settings)
			if err := m.Update(cfg); err != nil {
				return err
			}
			if err := m.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", m.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
