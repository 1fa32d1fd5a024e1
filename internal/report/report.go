package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/sim"
)

// Generator serializes finalized run summaries into structured JSON
// documents under a single output directory.
type Generator struct {
	dir string
}

func NewGenerator(dir string) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	return &Generator{dir: dir}, nil
}

// Generate emits the selected report kinds for one summary and returns
// the written paths in order.
func (g *Generator) Generate(kinds []string, s *sim.Summary) ([]string, error) {
	var paths []string
	for _, kind := range kinds {
		var (
			path string
			err  error
		)
		switch kind {
		case "summary":
			path, err = g.Summary(s)
		case "detailed":
			path, err = g.Detailed(s)
		case "alerts":
			path, err = g.Alerts(s)
		case "metrics":
			path, err = g.Metrics(s)
		default:
			return paths, fmt.Errorf("%w: unknown report kind %q", core.ErrConfigInvalid, kind)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	ReportType  string    `json:"report_type"`
	RunID       string    `json:"run_id"`
}

type runBlock struct {
	Cycles      int       `json:"cycles"`
	Seed        int64     `json:"seed"`
	AnomalyRate float64   `json:"anomaly_rate"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationSec float64   `json:"duration_seconds"`
}

type packetBlock struct {
	TotalPackets         int            `json:"total_packets"`
	PacketsGenerated     int            `json:"packets_generated"`
	PacketsDropped       int            `json:"packets_dropped"`
	WellFormed           int            `json:"well_formed_packets"`
	InjectedByClass      map[string]int `json:"injected_by_class"`
	ChecksumMismatches   int            `json:"checksum_mismatches"`
	ChecksumMismatchRate float64        `json:"checksum_mismatch_rate"`
	UniqueVehicles       int            `json:"unique_uav_ids"`
}

type latencyBlock struct {
	AverageLatency  float64 `json:"average_latency"`
	LatencyVariance float64 `json:"latency_variance"`
}

type alertBlock struct {
	TotalAlerts      int            `json:"total_alerts"`
	AlertsByType     map[string]int `json:"alerts_by_type"`
	AlertsBySeverity map[string]int `json:"alerts_by_severity"`
}

func runBlockOf(s *sim.Summary) runBlock {
	return runBlock{
		Cycles:      s.Cycles,
		Seed:        s.Seed,
		AnomalyRate: s.AnomalyRate,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		DurationSec: s.DurationSec,
	}
}

func packetBlockOf(s *sim.Summary) packetBlock {
	return packetBlock{
		TotalPackets:         s.PacketsProcessed,
		PacketsGenerated:     s.PacketsGenerated,
		PacketsDropped:       s.PacketsDropped,
		WellFormed:           s.WellFormed,
		InjectedByClass:      s.InjectedByClass,
		ChecksumMismatches:   s.ChecksumMismatches,
		ChecksumMismatchRate: s.ChecksumMismatchRate,
		UniqueVehicles:       s.UniqueVehicles,
	}
}

func alertBlockOf(s *sim.Summary) alertBlock {
	return alertBlock{
		TotalAlerts:      s.TotalAlerts,
		AlertsByType:     s.AlertsByType,
		AlertsBySeverity: s.AlertsBySeverity,
	}
}

// Summary writes the run summary document, analysis_run_<date>.json.
func (g *Generator) Summary(s *sim.Summary) (string, error) {
	doc := struct {
		Metadata metadata     `json:"report_metadata"`
		Run      runBlock     `json:"simulation_summary"`
		Packets  packetBlock  `json:"packet_statistics"`
		Latency  latencyBlock `json:"latency_metrics"`
		Alerts   alertBlock   `json:"alert_summary"`
		All      []core.Alert `json:"all_alerts"`
	}{
		Metadata: metadata{GeneratedAt: s.EndTime, ReportType: "simulation_summary", RunID: s.RunID},
		Run:      runBlockOf(s),
		Packets:  packetBlockOf(s),
		Latency:  latencyBlock{AverageLatency: s.AverageLatency, LatencyVariance: s.LatencyVariance},
		Alerts:   alertBlockOf(s),
		All:      s.Alerts,
	}
	name := fmt.Sprintf("analysis_run_%s.json", s.StartTime.Format("20060102"))
	return g.write(name, doc)
}

// Detailed writes the detailed analysis document, which additionally
// carries the validator counters, the comprehensive statistics block
// and the fleet topology statistics.
func (g *Generator) Detailed(s *sim.Summary) (string, error) {
	doc := struct {
		Metadata   metadata     `json:"report_metadata"`
		Run        runBlock     `json:"simulation_summary"`
		Packets    packetBlock  `json:"packet_statistics"`
		Latency    latencyBlock `json:"latency_metrics"`
		Advanced   any          `json:"advanced_statistics"`
		Validation any          `json:"validation_statistics"`
		Network    any          `json:"network_statistics"`
		Alerts     alertBlock   `json:"alert_summary"`
		All        []core.Alert `json:"all_alerts"`
	}{
		Metadata:   metadata{GeneratedAt: s.EndTime, ReportType: "detailed_analysis", RunID: s.RunID},
		Run:        runBlockOf(s),
		Packets:    packetBlockOf(s),
		Latency:    latencyBlock{AverageLatency: s.AverageLatency, LatencyVariance: s.LatencyVariance},
		Advanced:   s.Advanced,
		Validation: s.Validation,
		Network:    s.Network,
		Alerts:     alertBlockOf(s),
		All:        s.Alerts,
	}
	name := fmt.Sprintf("detailed_analysis_%s.json", s.StartTime.Format("20060102_150405"))
	return g.write(name, doc)
}

// Alerts writes the alert analysis document with alerts grouped by
// severity and category plus the chronological stream.
func (g *Generator) Alerts(s *sim.Summary) (string, error) {
	bySeverity := make(map[string][]core.Alert)
	byType := make(map[string][]core.Alert)
	for _, a := range s.Alerts {
		bySeverity[string(a.Severity)] = append(bySeverity[string(a.Severity)], a)
		byType[string(a.Category)] = append(byType[string(a.Category)], a)
	}

	doc := struct {
		Metadata      metadata                `json:"report_metadata"`
		BySeverity    map[string][]core.Alert `json:"alerts_by_severity"`
		ByType        map[string][]core.Alert `json:"alerts_by_type"`
		Chronological []core.Alert            `json:"chronological_alerts"`
		Critical      []core.Alert            `json:"critical_alerts"`
	}{
		Metadata:      metadata{GeneratedAt: s.EndTime, ReportType: "alert_analysis", RunID: s.RunID},
		BySeverity:    bySeverity,
		ByType:        byType,
		Chronological: s.Alerts,
		Critical:      bySeverity[string(core.SeverityCritical)],
	}
	name := fmt.Sprintf("alerts_%s.json", s.StartTime.Format("20060102_150405"))
	return g.write(name, doc)
}

// Metrics writes the performance metrics document.
func (g *Generator) Metrics(s *sim.Summary) (string, error) {
	doc := struct {
		Metadata metadata `json:"report_metadata"`
		Packets  struct {
			PacketRate      float64 `json:"packet_rate"`
			TotalObserved   int     `json:"total_packets_processed"`
			TimeSpanSeconds float64 `json:"time_span_seconds"`
		} `json:"packet_metrics"`
		Latency  any `json:"latency_metrics"`
		Checksum struct {
			ErrorRate float64 `json:"error_rate"`
		} `json:"checksum_metrics"`
		Vehicles  any `json:"uav_distribution"`
		Anomalies any `json:"anomaly_distribution"`
		Network   any `json:"network_statistics"`
	}{
		Metadata:  metadata{GeneratedAt: s.EndTime, ReportType: "performance_metrics", RunID: s.RunID},
		Latency:   s.Advanced.LatencyStatistics,
		Vehicles:  s.Advanced.VehicleDistribution,
		Anomalies: s.Advanced.AnomalyDistribution,
		Network:   s.Network,
	}
	doc.Packets.PacketRate = s.Advanced.PacketRate
	doc.Packets.TotalObserved = s.Advanced.TotalPacketsObserved
	doc.Packets.TimeSpanSeconds = s.Advanced.TimeSpanSeconds
	doc.Checksum.ErrorRate = s.Advanced.ChecksumErrorRate
	name := fmt.Sprintf("metrics_%s.json", s.StartTime.Format("20060102_150405"))
	return g.write(name, doc)
}

func (g *Generator) write(name string, doc any) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report %s: %w", name, err)
	}
	path := filepath.Join(g.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", name, err)
	}
	return path, nil
}
