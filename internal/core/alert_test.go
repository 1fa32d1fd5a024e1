package core

import "testing"

func TestBandSeverity(t *testing.T) {
	cases := []struct {
		name      string
		metric    float64
		threshold float64
		want      Severity
	}{
		{"barely over", 0.051, 0.05, SeverityLow},
		{"ratio at 1.5 stays low", 0.15, 0.1, SeverityLow},
		{"ratio 2.0", 0.2, 0.1, SeverityMedium},
		{"ratio at 2.5 stays medium", 0.25, 0.1, SeverityMedium},
		{"ratio 3.0", 0.3, 0.1, SeverityHigh},
		{"far over", 10, 0.1, SeverityHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BandSeverity(tc.metric, tc.threshold); got != tc.want {
				t.Errorf("BandSeverity(%g, %g): got %s, want %s", tc.metric, tc.threshold, got, tc.want)
			}
		})
	}
}

func TestAnomalyClass_String(t *testing.T) {
	cases := map[AnomalyClass]string{
		AnomalyNone:      "none",
		AnomalyLoss:      "packet_loss",
		AnomalyMalformed: "malformed_payload",
		AnomalySpoofed:   "spoofed_id",
		AnomalyClass(99): "unknown",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Errorf("AnomalyClass(%d).String(): got %q, want %q", class, got, want)
		}
	}
}
