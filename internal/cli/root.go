// Package cli wires the cobra command surface for fabric-pulse.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for fabric-pulse.
var rootCmd = &cobra.Command{
	Use:   "fabric-pulse",
	Short: "Live health dashboard for an EOS fabric",
	Long: `fabric-pulse polls every switch in a fabric over eAPI and renders
a live terminal dashboard of their health: CPU, temperature, BGP
adjacencies, MLAG state, and link counts.

Each device is polled independently, so one dead switch never delays
the rest of the view. Devices that stop answering keep their last
known state on screen, flagged as stale.

Credentials come from the environment: the password is read from the
variable named by eapi.password_env (default FABRIC_PULSE_PASSWORD)
and is never stored in the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
