package sim

import (
	"time"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/detector"
	"firestige.xyz/strix/internal/fleet"
	"firestige.xyz/strix/internal/stats"
)

// Summary is the finalized, read-only aggregate of one simulation run.
// The runner owns the single instance exclusively while the run is in
// flight; collaborators only ever see the finalized snapshot.
type Summary struct {
	RunID       string    `json:"run_id"`
	Cycles      int       `json:"simulation_cycles"`
	Seed        int64     `json:"seed"`
	AnomalyRate float64   `json:"anomaly_rate"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationSec float64   `json:"duration_seconds"`

	PacketsGenerated int            `json:"packets_generated"`
	PacketsProcessed int            `json:"total_packets"`
	PacketsDropped   int            `json:"packets_dropped"`
	InjectedByClass  map[string]int `json:"injected_by_class"`
	WellFormed       int            `json:"well_formed_packets"`

	ChecksumMismatches   int     `json:"checksum_mismatches"`
	ChecksumMismatchRate float64 `json:"checksum_mismatch_rate"`
	AverageLatency       float64 `json:"average_latency"`
	LatencyVariance      float64 `json:"latency_variance"`
	UniqueVehicles       int     `json:"unique_uav_ids"`

	TotalAlerts      int            `json:"total_alerts"`
	AlertsByType     map[string]int `json:"alerts_by_type"`
	AlertsBySeverity map[string]int `json:"alerts_by_severity"`
	Alerts           []core.Alert   `json:"all_alerts"`

	Network    fleet.NetworkStats       `json:"network_statistics"`
	Validation detector.ValidationStats `json:"validation_statistics"`
	Advanced   stats.Comprehensive      `json:"advanced_statistics"`

	finalized bool
}

func newSummary(runID string, cycles int, seed int64, anomalyRate float64, start time.Time) *Summary {
	return &Summary{
		RunID:            runID,
		Cycles:           cycles,
		Seed:             seed,
		AnomalyRate:      anomalyRate,
		StartTime:        start,
		InjectedByClass:  make(map[string]int),
		AlertsByType:     make(map[string]int),
		AlertsBySeverity: make(map[string]int),
		Alerts:           make([]core.Alert, 0),
	}
}

func (s *Summary) countEmission(e core.Emission) {
	s.PacketsGenerated++
	if e.Injected == core.AnomalyNone {
		s.WellFormed++
	} else {
		s.InjectedByClass[e.Injected.String()]++
	}
}

func (s *Summary) addAlert(a core.Alert) {
	s.Alerts = append(s.Alerts, a)
	s.AlertsByType[string(a.Category)]++
	s.AlertsBySeverity[string(a.Severity)]++
	s.TotalAlerts++
}

// finalize freezes the summary once, at run end.
func (s *Summary) finalize(
	snap detector.Snapshot,
	dropped uint64,
	network fleet.NetworkStats,
	validation detector.ValidationStats,
	advanced stats.Comprehensive,
	end time.Time,
) {
	if s.finalized {
		return
	}
	s.finalized = true

	s.EndTime = end
	s.DurationSec = end.Sub(s.StartTime).Seconds()
	s.PacketsProcessed = int(snap.Observed)
	s.PacketsDropped = int(dropped)
	s.ChecksumMismatches = int(snap.ChecksumMismatches)
	s.ChecksumMismatchRate = snap.MismatchRate
	s.AverageLatency = snap.LatencyMean
	s.LatencyVariance = snap.LatencyVariance
	s.UniqueVehicles = snap.UniqueVehicles
	s.Network = network
	s.Validation = validation
	s.Advanced = advanced
}
