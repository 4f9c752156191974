// Command fleetvoice scrapes vehicle positions from a tracking dashboard and
// serves them as spoken-response XML for telephony callers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "fleetvoice",
		Short:         "Vehicle address lookups served as voice responses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML/JSON config file (default: FLEETVOICE_CONFIG_PATH, then ./config.yaml)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(newServeCmd(&configPath), newRefreshCmd(&configPath), versionCmd)
	return rootCmd
}
