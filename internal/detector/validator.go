package detector

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"firestige.xyz/strix/internal/codec"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/fleet"
)

// requiredTelemetryFields must be present in a decoded payload for it
// to count as well-shaped.
var requiredTelemetryFields = []string{
	"uav_id", "timestamp", "altitude", "speed", "heading", "battery", "status",
}

// Validation is the outcome of full packet validation. A failure in
// any integrity dimension never aborts processing; the detector
// treats it as evidence, not as a fault.
type Validation struct {
	Authorized  bool
	ChecksumOK  bool
	Expected    uint32
	Actual      uint32
	PayloadOK   bool
	Telemetry   *core.Telemetry
	TimestampOK bool
	Errors      []string
}

// Validator checks packet structure, checksum, roster membership,
// payload shape and timestamp age.
type Validator struct {
	fleet  *fleet.Fleet
	maxAge time.Duration

	validated uint64
	invalid   uint64
}

// ValidationStats summarizes validator activity for reporting.
type ValidationStats struct {
	TotalValidated uint64  `json:"total_validated"`
	TotalInvalid   uint64  `json:"total_invalid"`
	ValidationRate float64 `json:"validation_rate"`
}

func NewValidator(f *fleet.Fleet, maxAge time.Duration) *Validator {
	return &Validator{fleet: f, maxAge: maxAge}
}

// Validate runs every integrity dimension over a delivered packet.
// Undecodable payloads fail closed: checksum and payload shape are
// both marked bad rather than dropped silently.
func (v *Validator) Validate(d *core.Delivery) Validation {
	result := Validation{TimestampOK: true}
	pkt := d.Packet

	if pkt == nil || pkt.VehicleID == "" || pkt.Payload == "" {
		result.Errors = append(result.Errors, "missing_required_field")
		v.invalid++
		return result
	}

	result.Authorized = v.fleet.IsAuthorized(pkt.VehicleID)
	if !result.Authorized {
		result.Errors = append(result.Errors, "invalid_uav_id")
	}

	raw, err := codec.DecodeRaw(pkt.Payload)
	if err != nil {
		result.Errors = append(result.Errors, "undecodable_payload")
		result.Actual = pkt.Checksum
	} else {
		result.Expected = core.Checksum(raw)
		result.Actual = pkt.Checksum
		result.ChecksumOK = result.Expected == result.Actual
		if !result.ChecksumOK {
			result.Errors = append(result.Errors, "checksum_mismatch")
		}

		if telemetry, ok := decodeTelemetry(raw); ok {
			result.PayloadOK = true
			result.Telemetry = telemetry
		} else {
			result.Errors = append(result.Errors, "invalid_payload_format")
		}
	}

	if v.maxAge > 0 {
		age := d.At.Sub(pkt.Timestamp)
		if age < 0 || age > v.maxAge {
			// Out-of-range timestamps are a warning, not an integrity error.
			result.TimestampOK = false
		}
	}

	if len(result.Errors) > 0 {
		v.invalid++
	} else {
		v.validated++
	}
	return result
}

// Stats returns cumulative validation counters.
func (v *Validator) Stats() ValidationStats {
	total := v.validated + v.invalid
	stats := ValidationStats{
		TotalValidated: v.validated,
		TotalInvalid:   v.invalid,
	}
	if total > 0 {
		stats.ValidationRate = float64(v.validated) / float64(total)
	}
	return stats
}

// decodeTelemetry decodes the raw payload through a loose map so that
// field presence can be checked before the typed decode. mapstructure
// tolerates numeric representation differences the typed JSON decode
// would reject outright.
func decodeTelemetry(raw []byte) (*core.Telemetry, bool) {
	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, false
	}
	for _, field := range requiredTelemetryFields {
		if _, ok := loose[field]; !ok {
			return nil, false
		}
	}
	var t core.Telemetry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &t,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(loose); err != nil {
		return nil, false
	}
	return &t, true
}
