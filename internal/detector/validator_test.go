package detector

import (
	"encoding/base64"
	"math/rand"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"firestige.xyz/strix/internal/codec"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/fleet"
)

func testFleet(t *testing.T) *fleet.Fleet {
	t.Helper()
	f, err := fleet.Generate(3, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("fleet.Generate: %v", err)
	}
	return f
}

// wellFormedDelivery builds a delivery whose packet passes every check.
func wellFormedDelivery(t *testing.T, vehicleID string, at time.Time) *core.Delivery {
	t.Helper()
	payload, checksum, err := codec.Encode(core.Telemetry{
		VehicleID: vehicleID,
		Timestamp: float64(at.UnixNano()) / float64(time.Second),
		Altitude:  1000,
		Speed:     50,
		Heading:   90,
		Battery:   80,
		Status:    "operational",
	})
	if err != nil {
		t.Fatalf("codec.Encode: %v", err)
	}
	return &core.Delivery{
		Cycle: 1,
		Packet: &core.Packet{
			PacketID:  1,
			VehicleID: vehicleID,
			Timestamp: at,
			Payload:   payload,
			Checksum:  checksum,
		},
		Latency: 20 * time.Millisecond,
		At:      at,
	}
}

func TestValidate_WellFormed(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := NewValidator(testFleet(t), time.Minute)

	result := v.Validate(wellFormedDelivery(t, "UAV_001", at))
	if !result.Authorized || !result.ChecksumOK || !result.PayloadOK || !result.TimestampOK {
		t.Errorf("well-formed packet failed validation: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors: got %v", result.Errors)
	}
	if result.Telemetry == nil || result.Telemetry.VehicleID != "UAV_001" {
		t.Errorf("Telemetry: got %+v", result.Telemetry)
	}

	stats := v.Stats()
	if stats.TotalValidated != 1 || stats.TotalInvalid != 0 || stats.ValidationRate != 1 {
		t.Errorf("Stats: got %+v", stats)
	}
}

func TestValidate_ForgedChecksum(t *testing.T) {
	at := time.Now()
	v := NewValidator(testFleet(t), 0)

	d := wellFormedDelivery(t, "UAV_001", at)
	raw, _ := codec.DecodeRaw(d.Packet.Payload)
	d.Packet.Checksum = core.ForgeChecksum(raw, 1234)

	result := v.Validate(d)
	if result.ChecksumOK {
		t.Error("forged checksum passed")
	}
	if result.Expected == result.Actual {
		t.Errorf("expected/actual should differ: %d", result.Expected)
	}
	if !containsError(result, "checksum_mismatch") {
		t.Errorf("Errors: got %v", result.Errors)
	}
	// The payload itself still decodes.
	if !result.PayloadOK {
		t.Error("payload shape should still validate")
	}

	if got := v.Stats().TotalInvalid; got != 1 {
		t.Errorf("TotalInvalid: got %d, want 1", got)
	}
}

func TestValidate_UnauthorizedID(t *testing.T) {
	v := NewValidator(testFleet(t), 0)

	result := v.Validate(wellFormedDelivery(t, "UAV_666", time.Now()))
	if result.Authorized {
		t.Error("unknown vehicle authorized")
	}
	if !containsError(result, "invalid_uav_id") {
		t.Errorf("Errors: got %v", result.Errors)
	}
	// Identity and integrity are independent dimensions.
	if !result.ChecksumOK {
		t.Error("checksum should still verify")
	}
}

func TestValidate_UndecodablePayloadFailsClosed(t *testing.T) {
	v := NewValidator(testFleet(t), 0)

	d := wellFormedDelivery(t, "UAV_001", time.Now())
	d.Packet.Payload = "%%% not base64 %%%"

	result := v.Validate(d)
	if result.ChecksumOK || result.PayloadOK {
		t.Errorf("undecodable payload passed: %+v", result)
	}
	if !containsError(result, "undecodable_payload") {
		t.Errorf("Errors: got %v", result.Errors)
	}
}

func TestValidate_MissingTelemetryField(t *testing.T) {
	v := NewValidator(testFleet(t), 0)

	// Hand-built payload without the battery field.
	raw, _ := json.Marshal(map[string]any{
		"uav_id": "UAV_001", "timestamp": 1.0, "altitude": 1000.0,
		"speed": 50.0, "heading": 90.0, "status": "operational",
	})
	d := wellFormedDelivery(t, "UAV_001", time.Now())
	d.Packet.Payload = base64.StdEncoding.EncodeToString(raw)
	d.Packet.Checksum = core.Checksum(raw)

	result := v.Validate(d)
	if result.PayloadOK {
		t.Error("incomplete telemetry passed shape check")
	}
	if !result.ChecksumOK {
		t.Error("checksum should verify independently of shape")
	}
	if !containsError(result, "invalid_payload_format") {
		t.Errorf("Errors: got %v", result.Errors)
	}
}

func TestValidate_EmptyFields(t *testing.T) {
	v := NewValidator(testFleet(t), 0)

	result := v.Validate(&core.Delivery{Packet: &core.Packet{}})
	if !containsError(result, "missing_required_field") {
		t.Errorf("Errors: got %v", result.Errors)
	}
	if got := v.Stats().TotalInvalid; got != 1 {
		t.Errorf("TotalInvalid: got %d, want 1", got)
	}
}

func TestValidate_StaleTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := NewValidator(testFleet(t), time.Minute)

	d := wellFormedDelivery(t, "UAV_001", at)
	d.Packet.Timestamp = at.Add(-2 * time.Minute)

	result := v.Validate(d)
	if result.TimestampOK {
		t.Error("stale timestamp passed age check")
	}
	// Age is a warning dimension, not an integrity error.
	if len(result.Errors) != 0 {
		t.Errorf("Errors: got %v", result.Errors)
	}
}

func containsError(v Validation, code string) bool {
	for _, e := range v.Errors {
		if e == code {
			return true
		}
	}
	return false
}
