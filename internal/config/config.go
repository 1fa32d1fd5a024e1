// Package config handles simulation configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
)

// Config is the top-level static configuration.
// Maps to the `strix:` root key in YAML.
type Config struct {
	Run      RunConfig         `mapstructure:"run"`
	Channel  ChannelConfig     `mapstructure:"channel"`
	Detector DetectorConfig    `mapstructure:"detector"`
	Fleet    FleetConfig       `mapstructure:"fleet"`
	Output   OutputConfig      `mapstructure:"output"`
	Log      *log.LoggerConfig `mapstructure:"log"`
}

// RunConfig drives one simulation run.
type RunConfig struct {
	Cycles      int     `mapstructure:"cycles"`
	Seed        int64   `mapstructure:"seed"`
	AnomalyRate float64 `mapstructure:"anomaly_rate"`
}

// ChannelConfig models the transport conduit between source and detector.
type ChannelConfig struct {
	Capacity  int           `mapstructure:"capacity"`
	JitterMin time.Duration `mapstructure:"jitter_min"`
	JitterMax time.Duration `mapstructure:"jitter_max"`
}

// DetectorConfig holds the statistical thresholds and window capacities.
type DetectorConfig struct {
	LatencyThreshold  float64       `mapstructure:"latency_threshold"`  // variance, s²
	ChecksumThreshold float64       `mapstructure:"checksum_threshold"` // rolling mismatch rate
	RepeatIDThreshold float64       `mapstructure:"repeat_id_threshold"`
	LatencyWindow     int           `mapstructure:"latency_window"`
	HistoryWindow     int           `mapstructure:"history_window"`
	MinLatencySamples int           `mapstructure:"min_latency_samples"`
	MaxPacketAge      time.Duration `mapstructure:"max_packet_age"`
}

// FleetConfig describes the authorized fleet roster.
type FleetConfig struct {
	File                  string  `mapstructure:"file"` // optional YAML roster
	Size                  int     `mapstructure:"size"`
	ConnectionProbability float64 `mapstructure:"connection_probability"`
}

// OutputConfig selects report documents and their destination.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Reports []string `mapstructure:"reports"`
}

// configRoot is the top-level wrapper matching the YAML structure `strix: ...`.
type configRoot struct {
	Strix Config `mapstructure:"strix"`
}

// knownReports are the report documents the report package can emit.
var knownReports = map[string]bool{
	"summary":  true,
	"detailed": true,
	"alerts":   true,
	"metrics":  true,
}

// Load loads configuration from file. An empty path yields the
// documented defaults. The YAML file uses `strix:` as root key; env
// vars override via the key replacer (e.g. STRIX_RUN_CYCLES).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Strix

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "strix." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Run defaults
	v.SetDefault("strix.run.cycles", 100)
	v.SetDefault("strix.run.seed", 42)
	v.SetDefault("strix.run.anomaly_rate", 0.1)

	// Channel defaults
	v.SetDefault("strix.channel.capacity", 64)
	v.SetDefault("strix.channel.jitter_min", "10ms")
	v.SetDefault("strix.channel.jitter_max", "50ms")

	// Detector defaults
	v.SetDefault("strix.detector.latency_threshold", 0.1)
	v.SetDefault("strix.detector.checksum_threshold", 0.05)
	v.SetDefault("strix.detector.repeat_id_threshold", 0.3)
	v.SetDefault("strix.detector.latency_window", 50)
	v.SetDefault("strix.detector.history_window", 100)
	v.SetDefault("strix.detector.min_latency_samples", 10)
	v.SetDefault("strix.detector.max_packet_age", "60s")

	// Fleet defaults
	v.SetDefault("strix.fleet.size", 10)
	v.SetDefault("strix.fleet.connection_probability", 0.3)

	// Output defaults
	v.SetDefault("strix.output.dir", "logs")
	v.SetDefault("strix.output.reports", []string{"summary", "detailed", "alerts", "metrics"})

	// Log defaults
	v.SetDefault("strix.log.level", "info")
	v.SetDefault("strix.log.pattern", "%time [%level] %msg %field%n")
	v.SetDefault("strix.log.time", "2006-01-02 15:04:05")
}

// Validate checks every recognized option's domain. Violations are
// fatal to the run before any cycle executes.
func (cfg *Config) Validate() error {
	if cfg.Run.Cycles <= 0 {
		return fmt.Errorf("%w: run.cycles must be > 0, got %d", core.ErrConfigInvalid, cfg.Run.Cycles)
	}
	if cfg.Run.AnomalyRate < 0 || cfg.Run.AnomalyRate > 1 {
		return fmt.Errorf("%w: run.anomaly_rate must be in [0,1], got %g", core.ErrConfigInvalid, cfg.Run.AnomalyRate)
	}

	if cfg.Channel.Capacity <= 0 {
		return fmt.Errorf("%w: channel.capacity must be > 0, got %d", core.ErrConfigInvalid, cfg.Channel.Capacity)
	}
	if cfg.Channel.JitterMin < 0 {
		return fmt.Errorf("%w: channel.jitter_min must be >= 0, got %s", core.ErrConfigInvalid, cfg.Channel.JitterMin)
	}
	if cfg.Channel.JitterMax < cfg.Channel.JitterMin {
		return fmt.Errorf("%w: channel.jitter_max must be >= jitter_min, got %s < %s",
			core.ErrConfigInvalid, cfg.Channel.JitterMax, cfg.Channel.JitterMin)
	}

	if cfg.Detector.LatencyThreshold <= 0 {
		return fmt.Errorf("%w: detector.latency_threshold must be > 0, got %g", core.ErrConfigInvalid, cfg.Detector.LatencyThreshold)
	}
	if cfg.Detector.ChecksumThreshold <= 0 {
		return fmt.Errorf("%w: detector.checksum_threshold must be > 0, got %g", core.ErrConfigInvalid, cfg.Detector.ChecksumThreshold)
	}
	if cfg.Detector.RepeatIDThreshold <= 0 {
		return fmt.Errorf("%w: detector.repeat_id_threshold must be > 0, got %g", core.ErrConfigInvalid, cfg.Detector.RepeatIDThreshold)
	}
	if cfg.Detector.LatencyWindow <= 0 {
		return fmt.Errorf("%w: detector.latency_window must be > 0, got %d", core.ErrConfigInvalid, cfg.Detector.LatencyWindow)
	}
	if cfg.Detector.HistoryWindow <= 0 {
		return fmt.Errorf("%w: detector.history_window must be > 0, got %d", core.ErrConfigInvalid, cfg.Detector.HistoryWindow)
	}
	if cfg.Detector.MinLatencySamples < 2 {
		return fmt.Errorf("%w: detector.min_latency_samples must be >= 2, got %d", core.ErrConfigInvalid, cfg.Detector.MinLatencySamples)
	}

	if cfg.Fleet.File == "" && cfg.Fleet.Size <= 0 {
		return fmt.Errorf("%w: fleet.size must be > 0 when no roster file is set, got %d", core.ErrConfigInvalid, cfg.Fleet.Size)
	}
	if cfg.Fleet.ConnectionProbability < 0 || cfg.Fleet.ConnectionProbability > 1 {
		return fmt.Errorf("%w: fleet.connection_probability must be in [0,1], got %g",
			core.ErrConfigInvalid, cfg.Fleet.ConnectionProbability)
	}

	if cfg.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir must not be empty", core.ErrConfigInvalid)
	}
	for _, r := range cfg.Output.Reports {
		if !knownReports[r] {
			return fmt.Errorf("%w: unknown report kind %q (must be summary/detailed/alerts/metrics)",
				core.ErrConfigInvalid, r)
		}
	}

	if cfg.Log != nil {
		switch strings.ToLower(cfg.Log.Level) {
		case "trace", "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("%w: invalid log level: %s", core.ErrConfigInvalid, cfg.Log.Level)
		}
	}

	return nil
}
