package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/report"
	"firestige.xyz/strix/internal/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation",
	Long: `
Run one simulation with the given configuration.

Examples:
  strix run                              # default run (100 cycles, seed 42, anomaly rate 0.1)
  strix run -c config.yml                # run with config.yml
  strix run --cycles 500 --seed 7        # override run parameters
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation(cmd)
	},
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("cycles", 0, "override run.cycles")
	cmd.Flags().Int64("seed", 0, "override run.seed")
	cmd.Flags().Float64("anomaly-rate", 0, "override run.anomaly_rate")
}

func init() {
	addRunFlags(runCmd)
}

// runSimulation loads configuration, applies flag overrides and drives
// a full run: pipeline, anomaly log, report documents. Configuration
// errors surface before any cycle executes.
func runSimulation(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}

	logCfg := cfg.Log
	if logCfg == nil {
		logCfg = log.DefaultConfig()
	}
	log.Init(logCfg)
	logger := log.GetLogger()

	anomalyLog, err := report.NewAnomalyLog(cfg.Output.Dir, time.Now())
	if err != nil {
		return err
	}
	// Closed unconditionally so a failed run still flushes the partial stream.
	defer anomalyLog.Close()

	runner, err := sim.NewRunner(cfg, sim.WithAlertSink(anomalyLog))
	if err != nil {
		return err
	}

	summary, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	generator, err := report.NewGenerator(cfg.Output.Dir)
	if err != nil {
		return err
	}
	paths, err := generator.Generate(cfg.Output.Reports, summary)
	if err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"anomaly_log": anomalyLog.Path(),
		"reports":     paths,
	}).Info("run artifacts written")
	return nil
}

// applyOverrides folds changed run flags into the loaded config and
// re-validates, so overrides obey the same domain rules.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	changed := false
	if cmd.Flags().Changed("cycles") {
		cfg.Run.Cycles, _ = cmd.Flags().GetInt("cycles")
		changed = true
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed, _ = cmd.Flags().GetInt64("seed")
		changed = true
	}
	if cmd.Flags().Changed("anomaly-rate") {
		cfg.Run.AnomalyRate, _ = cmd.Flags().GetFloat64("anomaly-rate")
		changed = true
	}
	if changed {
		return cfg.Validate()
	}
	return nil
}
