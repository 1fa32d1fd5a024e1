// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
// A bare invocation executes a default simulation run: 100 cycles,
// seed 42, anomaly rate 0.1.
var rootCmd = &cobra.Command{
	Use:   "strix",
	Short: "Strix - UAV telemetry link simulator and anomaly detector",
	Long: `Strix simulates a fleet of unmanned-vehicle telemetry links and
statistically detects anomalous traffic patterns in near-real time.

A seeded packet source injects loss, payload corruption and identity
spoofing; a lossy jittered channel delivers packets in order; the
streaming detector classifies each arrival against rolling statistics
and raises threshold-crossing alerts with bounded memory.

Run with no arguments for a default run (100 cycles, seed 42, anomaly
rate 0.1). Reports and the anomaly log are written under the output
directory (default: logs/).`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (empty = built-in defaults)")

	addRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
