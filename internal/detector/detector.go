// Package detector implements the streaming anomaly-detection engine.
//
// The detector consumes delivered packets one at a time, maintains
// rolling per-feature statistics in bounded windows, classifies each
// packet through an ordered sequence of independent feature checks and
// emits zero or more alerts per observation. Multiple anomaly
// categories can co-occur on one packet.
//
// Policy note: packets carrying an unauthorized identifier still feed
// the checksum, latency and repetition windows. A spoofer's traffic is
// traffic; quarantining it would blind the statistical features to
// exactly the link it pollutes.
package detector

import (
	"fmt"
	"time"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/fleet"
)

// Config holds the detector thresholds and window capacities.
type Config struct {
	LatencyThreshold  float64 // latency variance bound, s²
	ChecksumThreshold float64 // rolling mismatch rate bound
	RepeatIDThreshold float64 // per-identifier sighting frequency bound

	LatencyWindow     int // latency sample window capacity
	HistoryWindow     int // checksum outcome and id sighting capacity
	MinLatencySamples int // below this, variance alerting is suppressed

	MaxPacketAge time.Duration
}

// Detector is the stateful analyzer. It is single-consumer: Observe is
// called once per delivered packet, in generation order, and never for
// dropped ones.
type Detector struct {
	cfg       Config
	fleet     *fleet.Fleet
	validator *Validator

	latencies *floatWindow
	checksums *boolWindow
	sightings *idWindow

	observed   uint64
	mismatches uint64
	seen       map[string]struct{}
}

// Snapshot is the externally visible view of detector state, taken for
// the run summary. The windows themselves are never exposed.
type Snapshot struct {
	Observed           uint64
	ChecksumMismatches uint64
	MismatchRate       float64 // cumulative, over all observed packets
	LatencyMean        float64 // over the current window, seconds
	LatencyVariance    float64 // over the current window, s²
	LatencySamples     []float64
	UniqueVehicles     int

	// Current per-feature retained sample counts.
	LatencyWindowLen  int
	ChecksumWindowLen int
	SightingWindowLen int
}

// New builds a detector over the authorized fleet roster.
func New(cfg Config, f *fleet.Fleet) (*Detector, error) {
	if f == nil || f.Size() == 0 {
		return nil, core.ErrRosterEmpty
	}
	if cfg.LatencyThreshold <= 0 || cfg.ChecksumThreshold <= 0 || cfg.RepeatIDThreshold <= 0 {
		return nil, fmt.Errorf("%w: thresholds must be positive", core.ErrConfigInvalid)
	}
	if cfg.MinLatencySamples < 2 {
		cfg.MinLatencySamples = 2
	}

	latencies, err := newFloatWindow(cfg.LatencyWindow)
	if err != nil {
		return nil, fmt.Errorf("latency window: %w", err)
	}
	checksums, err := newBoolWindow(cfg.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("checksum window: %w", err)
	}
	sightings, err := newIDWindow(cfg.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("sighting window: %w", err)
	}

	return &Detector{
		cfg:       cfg,
		fleet:     f,
		validator: NewValidator(f, cfg.MaxPacketAge),
		latencies: latencies,
		checksums: checksums,
		sightings: sightings,
		seen:      make(map[string]struct{}),
	}, nil
}

// Observe classifies one delivered packet and returns the alerts it
// triggered. Packet-level anomalies are domain events, not faults:
// nothing here propagates an error or panics past the boundary. An
// unparseable payload is scored as a checksum mismatch, failing closed
// toward suspicion.
func (d *Detector) Observe(delivery *core.Delivery) []core.Alert {
	if delivery == nil || delivery.Packet == nil {
		return nil
	}
	d.observed++
	pkt := delivery.Packet
	validation := d.validator.Validate(delivery)

	var alerts []core.Alert

	// 1. Identity. Violations are never borderline: fixed maximum
	// severity, exactly one alert per spoofed packet.
	if !validation.Authorized {
		alerts = append(alerts, core.Alert{
			Category:  core.CategorySpoofedID,
			Severity:  core.SeverityCritical,
			Timestamp: delivery.At,
			Cycle:     delivery.Cycle,
			VehicleID: pkt.VehicleID,
			Metric:    1,
		})
	} else {
		d.fleet.MarkSeen(pkt.VehicleID, delivery.At)
	}
	d.seen[pkt.VehicleID] = struct{}{}

	// 2. Checksum rate over the rolling history window. Fires only on
	// strict excess; a rate equal to the threshold stays quiet.
	mismatch := !validation.ChecksumOK
	d.checksums.Push(mismatch)
	if mismatch {
		d.mismatches++
	}
	if rate := d.checksums.Rate(); rate > d.cfg.ChecksumThreshold {
		alerts = append(alerts, core.Alert{
			Category:  core.CategoryChecksumRate,
			Severity:  core.BandSeverity(rate, d.cfg.ChecksumThreshold),
			Timestamp: delivery.At,
			Cycle:     delivery.Cycle,
			Metric:    rate,
			Threshold: d.cfg.ChecksumThreshold,
		})
	}

	// 3. Latency variance. Cold-start suppression until the window
	// holds enough samples for variance to mean anything.
	d.latencies.Push(delivery.Latency.Seconds())
	if d.latencies.Len() >= d.cfg.MinLatencySamples {
		if variance := d.latencies.Variance(); variance > d.cfg.LatencyThreshold {
			alerts = append(alerts, core.Alert{
				Category:  core.CategoryLatencyVariance,
				Severity:  core.BandSeverity(variance, d.cfg.LatencyThreshold),
				Timestamp: delivery.At,
				Cycle:     delivery.Cycle,
				Metric:    variance,
				Threshold: d.cfg.LatencyThreshold,
			})
		}
	}

	// 4. Identifier repetition within the sighting window. Catches
	// both duplicate replay and abnormal polling from one source.
	d.sightings.Push(pkt.VehicleID)
	if freq := d.sightings.Freq(pkt.VehicleID); freq > d.cfg.RepeatIDThreshold {
		alerts = append(alerts, core.Alert{
			Category:  core.CategoryIDRepetition,
			Severity:  core.BandSeverity(freq, d.cfg.RepeatIDThreshold),
			Timestamp: delivery.At,
			Cycle:     delivery.Cycle,
			VehicleID: pkt.VehicleID,
			Metric:    freq,
			Threshold: d.cfg.RepeatIDThreshold,
		})
	}

	return alerts
}

// Observed returns how many deliveries the detector has processed.
func (d *Detector) Observed() uint64 { return d.observed }

// Mismatches returns the cumulative checksum mismatch count.
func (d *Detector) Mismatches() uint64 { return d.mismatches }

// ValidationStats exposes the embedded validator's counters.
func (d *Detector) ValidationStats() ValidationStats { return d.validator.Stats() }

// Snapshot captures the detector's externally visible state.
func (d *Detector) Snapshot() Snapshot {
	snap := Snapshot{
		Observed:           d.observed,
		ChecksumMismatches: d.mismatches,
		LatencyMean:        d.latencies.Mean(),
		LatencyVariance:    d.latencies.Variance(),
		LatencySamples:     d.latencies.Samples(),
		UniqueVehicles:     len(d.seen),
		LatencyWindowLen:   d.latencies.Len(),
		ChecksumWindowLen:  d.checksums.Len(),
		SightingWindowLen:  d.sightings.Len(),
	}
	if d.observed > 0 {
		snap.MismatchRate = float64(d.mismatches) / float64(d.observed)
	}
	return snap
}
