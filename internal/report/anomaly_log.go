// Package report implements the external reporting collaborators: the
// human-readable anomaly log stream and the structured JSON run
// reports. The core pipeline only ever hands over structured values;
// all formatting and file handling lives here.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"firestige.xyz/strix/internal/core"
)

// AnomalyLog appends human-readable anomaly records to a timestamped
// file, one per run, in emission order.
type AnomalyLog struct {
	file *os.File
	path string
}

// NewAnomalyLog creates logs/anomalies_<timestamp>.log under dir.
func NewAnomalyLog(dir string, start time.Time) (*AnomalyLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("anomalies_%s.log", start.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create anomaly log: %w", err)
	}
	return &AnomalyLog{file: f, path: path}, nil
}

// Record appends one alert line. Implements sim.AlertSink.
func (l *AnomalyLog) Record(a core.Alert) error {
	line := fmt.Sprintf("[Cycle %d] Alert: %s - Severity: %s - metric=%.6f",
		a.Cycle, a.Category, a.Severity, a.Metric)
	if a.VehicleID != "" {
		line += " - UAV: " + a.VehicleID
	}
	line += " - " + a.Timestamp.Format(time.RFC3339Nano) + "\n"
	_, err := l.file.WriteString(line)
	return err
}

// Path returns the log file location.
func (l *AnomalyLog) Path() string { return l.path }

// Close flushes and closes the stream.
func (l *AnomalyLog) Close() error {
	return l.file.Close()
}
