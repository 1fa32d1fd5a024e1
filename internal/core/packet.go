// Package core defines core data structures with zero external dependencies.
package core

import "time"

// AnomalyClass identifies the anomaly injected into an emission at
// generation time. AnomalyNone marks a well-formed packet.
type AnomalyClass uint8

const (
	AnomalyNone AnomalyClass = iota
	AnomalyLoss
	AnomalyMalformed
	AnomalySpoofed
)

func (a AnomalyClass) String() string {
	switch a {
	case AnomalyNone:
		return "none"
	case AnomalyLoss:
		return "packet_loss"
	case AnomalyMalformed:
		return "malformed_payload"
	case AnomalySpoofed:
		return "spoofed_id"
	default:
		return "unknown"
	}
}

// Telemetry is the flight metric block carried inside a packet payload.
// Field tags cover both the JSON wire form and loose-map decoding.
type Telemetry struct {
	VehicleID string  `json:"uav_id" mapstructure:"uav_id"`
	Timestamp float64 `json:"timestamp" mapstructure:"timestamp"`
	Altitude  float64 `json:"altitude" mapstructure:"altitude"`
	Speed     float64 `json:"speed" mapstructure:"speed"`
	Heading   float64 `json:"heading" mapstructure:"heading"`
	Battery   float64 `json:"battery" mapstructure:"battery"`
	Status    string  `json:"status" mapstructure:"status"`
}

// Packet is one simulated telemetry transmission unit.
// Payload is a reversible text encoding (base64 over JSON) of the
// telemetry block; Checksum is computed over the unencoded payload.
type Packet struct {
	PacketID  uint64    `json:"packet_id"`
	VehicleID string    `json:"uav_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   string    `json:"payload"`
	Checksum  uint32    `json:"checksum"`
}

// Emission is what the source hands to the transport channel for one
// cycle. Packet is nil when the source signaled loss. Jitter is the
// pre-drawn delivery delay, threaded as data so no wall clock is
// involved in the simulation itself.
type Emission struct {
	Cycle    int
	Packet   *Packet
	Injected AnomalyClass
	Jitter   time.Duration
}

// Delivery is a packet as seen downstream of the channel. Latency is
// the realized inter-arrival delay and is what feeds the detector's
// latency feature, not the packet's nominal timestamp.
type Delivery struct {
	Cycle   int
	Packet  *Packet
	Latency time.Duration
	At      time.Time
}
