package core

import "time"

// Category classifies a detector alert.
type Category string

const (
	CategorySpoofedID       Category = "spoofed_id"
	CategoryChecksumRate    Category = "checksum_rate"
	CategoryLatencyVariance Category = "latency_variance"
	CategoryIDRepetition    Category = "id_repetition"
)

// Severity grades an alert. Critical is reserved for identity
// violations; threshold-driven categories band between low and high
// based on how far the metric exceeds the threshold.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// BandSeverity maps a metric/threshold ratio onto a severity band.
// Ratios at or below 1 never reach here; callers gate on strict
// threshold excess first.
func BandSeverity(metric, threshold float64) Severity {
	ratio := metric / threshold
	switch {
	case ratio > 2.5:
		return SeverityHigh
	case ratio > 1.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Alert is a detector-emitted classification event. Alerts are
// immutable once emitted; the orchestrator owns them for the rest of
// the run.
type Alert struct {
	Category  Category  `json:"type"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Cycle     int       `json:"cycle"`
	VehicleID string    `json:"uav_id,omitempty"`
	Metric    float64   `json:"metric"`
	Threshold float64   `json:"threshold,omitempty"`
}
