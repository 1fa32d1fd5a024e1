// Package stats aggregates extended per-run statistics beyond the
// detector's own rolling features: packet rate, latency percentiles,
// per-vehicle and per-anomaly distributions and alert tallies.
package stats

import (
	"math"
	"sort"
	"time"

	"firestige.xyz/strix/internal/core"
)

// LatencyStats describes the latency sample window.
type LatencyStats struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"std_dev"`
	Variance float64 `json:"variance"`
}

// Share is a count with its fraction of the whole.
type Share struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AlertStats tallies emitted alerts.
type AlertStats struct {
	TotalAlerts      int            `json:"total_alerts"`
	AlertsByType     map[string]int `json:"alerts_by_type"`
	AlertsBySeverity map[string]int `json:"alerts_by_severity"`
	UniqueAlertTypes int            `json:"unique_alert_types"`
}

// Comprehensive is the full aggregate block embedded in detailed and
// metrics reports.
type Comprehensive struct {
	PacketRate           float64          `json:"packet_rate"`
	LatencyStatistics    LatencyStats     `json:"latency_statistics"`
	ChecksumErrorRate    float64          `json:"checksum_error_rate"`
	VehicleDistribution  map[string]Share `json:"uav_distribution"`
	AnomalyDistribution  map[string]Share `json:"anomaly_distribution"`
	AlertStatistics      AlertStats       `json:"alert_statistics"`
	TotalPacketsObserved int              `json:"total_packets_processed"`
	TimeSpanSeconds      float64          `json:"time_span_seconds"`
	UniqueVehicles       int              `json:"unique_uavs"`
	UniqueAnomalyTypes   int              `json:"unique_anomaly_types"`
}

// Aggregator accumulates run statistics. Sample series are bounded by
// a window capacity with FIFO eviction; count maps are keyed by a
// small fixed vocabulary and per-vehicle IDs.
type Aggregator struct {
	capacity int

	arrivals  []time.Time
	latencies []float64
	checksums []bool

	vehicleCounts    map[string]int
	anomalyCounts    map[string]int
	alertsByType     map[string]int
	alertsBySeverity map[string]int
}

func NewAggregator(windowCapacity int) *Aggregator {
	if windowCapacity <= 0 {
		windowCapacity = 100
	}
	return &Aggregator{
		capacity:         windowCapacity,
		vehicleCounts:    make(map[string]int),
		anomalyCounts:    make(map[string]int),
		alertsByType:     make(map[string]int),
		alertsBySeverity: make(map[string]int),
	}
}

// RecordEmission tallies the generated packet's vehicle and any
// injected anomaly class.
func (a *Aggregator) RecordEmission(e core.Emission) {
	if e.Packet != nil {
		a.vehicleCounts[e.Packet.VehicleID]++
	}
	if e.Injected != core.AnomalyNone {
		a.anomalyCounts[e.Injected.String()]++
	}
}

// RecordDelivery appends arrival time and realized latency samples.
func (a *Aggregator) RecordDelivery(d *core.Delivery) {
	a.arrivals = pushBounded(a.arrivals, d.At, a.capacity)
	a.latencies = pushBounded(a.latencies, d.Latency.Seconds(), a.capacity)
}

// RecordChecksum appends one checksum verification outcome.
func (a *Aggregator) RecordChecksum(mismatch bool) {
	a.checksums = pushBounded(a.checksums, mismatch, a.capacity)
}

// RecordAlert tallies one emitted alert.
func (a *Aggregator) RecordAlert(al core.Alert) {
	a.alertsByType[string(al.Category)]++
	a.alertsBySeverity[string(al.Severity)]++
}

func pushBounded[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// PacketRate is packets per second over the arrival window.
func (a *Aggregator) PacketRate() float64 {
	if len(a.arrivals) < 2 {
		return 0
	}
	span := a.arrivals[len(a.arrivals)-1].Sub(a.arrivals[0]).Seconds()
	if span == 0 {
		return 0
	}
	return float64(len(a.arrivals)-1) / span
}

// Latency computes window statistics over the latency samples.
func (a *Aggregator) Latency() LatencyStats {
	n := len(a.latencies)
	if n == 0 {
		return LatencyStats{}
	}
	sorted := make([]float64, n)
	copy(sorted, a.latencies)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var median float64
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}

	var variance float64
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return LatencyStats{
		Mean:     mean,
		Median:   median,
		Min:      sorted[0],
		Max:      sorted[n-1],
		StdDev:   math.Sqrt(variance),
		Variance: variance,
	}
}

// ChecksumErrorRate is the mismatch fraction within the window.
func (a *Aggregator) ChecksumErrorRate() float64 {
	if len(a.checksums) == 0 {
		return 0
	}
	bad := 0
	for _, mismatch := range a.checksums {
		if mismatch {
			bad++
		}
	}
	return float64(bad) / float64(len(a.checksums))
}

// VehicleDistribution returns per-vehicle packet shares.
func (a *Aggregator) VehicleDistribution() map[string]Share {
	return distribution(a.vehicleCounts)
}

// AnomalyDistribution returns per-anomaly-class injection shares.
func (a *Aggregator) AnomalyDistribution() map[string]Share {
	return distribution(a.anomalyCounts)
}

func distribution(counts map[string]int) map[string]Share {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make(map[string]Share, len(counts))
	if total == 0 {
		return out
	}
	for k, c := range counts {
		out[k] = Share{Count: c, Percentage: float64(c) / float64(total) * 100}
	}
	return out
}

// Alerts returns the alert tallies.
func (a *Aggregator) Alerts() AlertStats {
	total := 0
	byType := make(map[string]int, len(a.alertsByType))
	for k, c := range a.alertsByType {
		byType[k] = c
		total += c
	}
	bySeverity := make(map[string]int, len(a.alertsBySeverity))
	for k, c := range a.alertsBySeverity {
		bySeverity[k] = c
	}
	return AlertStats{
		TotalAlerts:      total,
		AlertsByType:     byType,
		AlertsBySeverity: bySeverity,
		UniqueAlertTypes: len(byType),
	}
}

// Comprehensive assembles the full aggregate block.
func (a *Aggregator) Comprehensive() Comprehensive {
	var span float64
	if len(a.arrivals) >= 2 {
		span = a.arrivals[len(a.arrivals)-1].Sub(a.arrivals[0]).Seconds()
	}
	return Comprehensive{
		PacketRate:           a.PacketRate(),
		LatencyStatistics:    a.Latency(),
		ChecksumErrorRate:    a.ChecksumErrorRate(),
		VehicleDistribution:  a.VehicleDistribution(),
		AnomalyDistribution:  a.AnomalyDistribution(),
		AlertStatistics:      a.Alerts(),
		TotalPacketsObserved: len(a.arrivals),
		TimeSpanSeconds:      span,
		UniqueVehicles:       len(a.vehicleCounts),
		UniqueAnomalyTypes:   len(a.anomalyCounts),
	}
}
