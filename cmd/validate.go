package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"configuration OK: %d cycles, seed %d, anomaly rate %g, fleet size %d\n",
			cfg.Run.Cycles, cfg.Run.Seed, cfg.Run.AnomalyRate, cfg.Fleet.Size)
		return nil
	},
}
