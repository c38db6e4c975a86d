// wg-ddns restarts WireGuard tunnels whose peer endpoint no longer matches the
// address its DDNS name resolves to.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "wg-ddns",
		Short: "Restart WireGuard tunnels when their DDNS endpoint moves",
		Long: `wg-ddns watches WireGuard tunnels whose peer is configured by domain name.

Every interval it reads the endpoint the tunnel is using, resolves the
configured domain and, when the two differ, restarts the tunnel with
wg-quick down/up so the new address is picked up.

Examples:
  # Watch the default tunnel (/etc/wireguard/wg0.conf)
  wg-ddns

  # Watch two tunnels every 30 seconds
  wg-ddns run -c /etc/wireguard/wg0.conf -c /etc/wireguard/wg1.conf --interval 30s

  # Report drift once without restarting anything
  wg-ddns check`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, f)
		},
	}
	f.register(rootCmd)

	rootCmd.AddCommand(
		newRunCmd(f),
		newCheckCmd(f),
		newUnitCmd(f),
		newInitConfigCmd(f),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "wg-ddns %s (commit %s, built %s)\n", Version, Commit, BuildTime)
			},
		},
	)

	return rootCmd
}
