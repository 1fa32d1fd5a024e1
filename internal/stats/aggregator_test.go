package stats

import (
	"math"
	"testing"
	"time"

	"firestige.xyz/strix/internal/core"
)

func delivery(at time.Time, latency time.Duration) *core.Delivery {
	return &core.Delivery{
		Packet:  &core.Packet{VehicleID: "UAV_001"},
		Latency: latency,
		At:      at,
	}
}

func TestLatency_MedianOddEven(t *testing.T) {
	a := NewAggregator(10)
	base := time.Now()

	for i, l := range []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond} {
		a.RecordDelivery(delivery(base.Add(time.Duration(i)*time.Second), l))
	}
	stats := a.Latency()
	if stats.Median != 0.02 {
		t.Errorf("odd median: got %g, want 0.02", stats.Median)
	}
	if stats.Min != 0.01 || stats.Max != 0.03 {
		t.Errorf("min/max: got %g/%g", stats.Min, stats.Max)
	}
	if math.Abs(stats.Mean-0.02) > 1e-12 {
		t.Errorf("mean: got %g", stats.Mean)
	}

	a.RecordDelivery(delivery(base.Add(3*time.Second), 40*time.Millisecond))
	if got := a.Latency().Median; math.Abs(got-0.025) > 1e-12 {
		t.Errorf("even median: got %g, want 0.025", got)
	}
}

func TestLatency_VarianceAndStdDev(t *testing.T) {
	a := NewAggregator(10)
	base := time.Now()
	for i, l := range []time.Duration{2 * time.Second, 4 * time.Second, 4 * time.Second, 6 * time.Second} {
		a.RecordDelivery(delivery(base.Add(time.Duration(i)*time.Second), l))
	}
	// Samples {2,4,4,6}: mean 4, population variance 2.
	stats := a.Latency()
	if math.Abs(stats.Variance-2) > 1e-9 {
		t.Errorf("variance: got %g, want 2", stats.Variance)
	}
	if math.Abs(stats.StdDev-math.Sqrt(2)) > 1e-9 {
		t.Errorf("stddev: got %g", stats.StdDev)
	}
}

func TestLatency_Empty(t *testing.T) {
	a := NewAggregator(10)
	if got := a.Latency(); got != (LatencyStats{}) {
		t.Errorf("empty latency stats: got %+v", got)
	}
	if got := a.PacketRate(); got != 0 {
		t.Errorf("empty packet rate: got %g", got)
	}
}

func TestPacketRate(t *testing.T) {
	a := NewAggregator(10)
	base := time.Now()
	// 5 arrivals spread over 2 seconds: 4 intervals / 2s = 2 pkt/s.
	for i := 0; i < 5; i++ {
		a.RecordDelivery(delivery(base.Add(time.Duration(i)*500*time.Millisecond), time.Millisecond))
	}
	if got := a.PacketRate(); math.Abs(got-2) > 1e-9 {
		t.Errorf("PacketRate: got %g, want 2", got)
	}
}

func TestChecksumErrorRate(t *testing.T) {
	a := NewAggregator(10)
	if got := a.ChecksumErrorRate(); got != 0 {
		t.Errorf("empty rate: got %g", got)
	}
	a.RecordChecksum(true)
	a.RecordChecksum(false)
	a.RecordChecksum(false)
	a.RecordChecksum(true)
	if got := a.ChecksumErrorRate(); got != 0.5 {
		t.Errorf("rate: got %g, want 0.5", got)
	}
}

func TestBoundedWindows(t *testing.T) {
	a := NewAggregator(3)
	base := time.Now()
	for i := 0; i < 10; i++ {
		a.RecordDelivery(delivery(base.Add(time.Duration(i)*time.Second), time.Duration(i)*time.Millisecond))
		a.RecordChecksum(i < 5)
	}
	if got := len(a.latencies); got != 3 {
		t.Errorf("latency window: got %d, want 3", got)
	}
	if got := len(a.checksums); got != 3 {
		t.Errorf("checksum window: got %d, want 3", got)
	}
	// Only the last three outcomes (all clean) survive.
	if got := a.ChecksumErrorRate(); got != 0 {
		t.Errorf("windowed rate: got %g, want 0", got)
	}
}

func TestDistributions(t *testing.T) {
	a := NewAggregator(10)
	emit := func(id string, class core.AnomalyClass) {
		a.RecordEmission(core.Emission{
			Packet:   &core.Packet{VehicleID: id},
			Injected: class,
		})
	}
	emit("UAV_001", core.AnomalyNone)
	emit("UAV_001", core.AnomalyNone)
	emit("UAV_002", core.AnomalyMalformed)
	emit("UAV_003", core.AnomalySpoofed)

	vehicles := a.VehicleDistribution()
	if got := vehicles["UAV_001"]; got.Count != 2 || got.Percentage != 50 {
		t.Errorf("UAV_001 share: got %+v", got)
	}

	anomalies := a.AnomalyDistribution()
	if got := anomalies["malformed_payload"]; got.Count != 1 || got.Percentage != 50 {
		t.Errorf("malformed share: got %+v", got)
	}
	if _, ok := anomalies["none"]; ok {
		t.Error("well-formed packets leaked into anomaly distribution")
	}
}

func TestComprehensive(t *testing.T) {
	a := NewAggregator(10)
	base := time.Now()
	a.RecordEmission(core.Emission{Packet: &core.Packet{VehicleID: "UAV_001"}})
	a.RecordEmission(core.Emission{Injected: core.AnomalyLoss})
	a.RecordDelivery(delivery(base, 20*time.Millisecond))
	a.RecordDelivery(delivery(base.Add(time.Second), 40*time.Millisecond))
	a.RecordChecksum(false)
	a.RecordChecksum(true)
	a.RecordAlert(core.Alert{Category: core.CategoryChecksumRate, Severity: core.SeverityLow})
	a.RecordAlert(core.Alert{Category: core.CategoryChecksumRate, Severity: core.SeverityMedium})

	c := a.Comprehensive()
	if c.TotalPacketsObserved != 2 {
		t.Errorf("TotalPacketsObserved: got %d", c.TotalPacketsObserved)
	}
	if c.TimeSpanSeconds != 1 {
		t.Errorf("TimeSpanSeconds: got %g", c.TimeSpanSeconds)
	}
	if c.ChecksumErrorRate != 0.5 {
		t.Errorf("ChecksumErrorRate: got %g", c.ChecksumErrorRate)
	}
	if c.UniqueVehicles != 1 || c.UniqueAnomalyTypes != 1 {
		t.Errorf("uniques: got %d/%d", c.UniqueVehicles, c.UniqueAnomalyTypes)
	}
	if c.AlertStatistics.TotalAlerts != 2 || c.AlertStatistics.UniqueAlertTypes != 1 {
		t.Errorf("alert stats: got %+v", c.AlertStatistics)
	}
	if got := c.AlertStatistics.AlertsBySeverity["medium"]; got != 1 {
		t.Errorf("medium alerts: got %d", got)
	}
}
