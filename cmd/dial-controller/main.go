// Dial-controller is a client utility for DIAL-capable receivers.
//
// It provides receiver discovery over SSDP, application status queries, and
// application launch/stop against the receivers' app-control endpoints.
// Running without arguments launches an interactive terminal UI.
//
// Usage:
//
//	dial-controller [command] [flags]
//
// See 'dial-controller --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dialproto/godial/internal/logging"
	"github.com/dialproto/godial/internal/urls"
	"github.com/dialproto/godial/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dial-controller",
	Short: "DIAL Receiver Control Utility",
	Long: `A standalone utility for controlling DIAL-capable receivers.

Provides receiver discovery over SSDP multicast, application status queries,
and application launch/stop through the DIAL app-control endpoints.

The protocol is specified at ` + urls.DIALProtocol + `

If no command is specified, the interactive controller will launch automatically.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Logging stays silent unless the env var asks for it
		return logging.InitializeFromEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the interactive UI when no subcommand provided
		return runInteractive(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dial-controller %s (commit: %s)\n", version.Version, version.Commit)
	},
}
