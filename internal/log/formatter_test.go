package log

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFormatter_Pattern(t *testing.T) {
	f := &formatter{
		pattern: "%time [%level] %msg %field%n",
		time:    "2006-01-02 15:04:05",
	}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "simulation started",
		Data:    logrus.Fields{},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "2025-06-01 12:30:00 [info] simulation started \n"
	if string(out) != want {
		t.Errorf("got %q, want %q", string(out), want)
	}
}

func TestFormatter_FieldsSorted(t *testing.T) {
	f := &formatter{pattern: "%field", time: time.RFC3339}
	entry := &logrus.Entry{
		Level: logrus.WarnLevel,
		Data: logrus.Fields{
			"cycle":    7,
			"severity": "high",
			"category": "latency_variance",
		},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "category=latency_variance,cycle=7,severity=high"
	if string(out) != want {
		t.Errorf("got %q, want %q", string(out), want)
	}
}
