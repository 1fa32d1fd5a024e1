// Package source implements the telemetry packet source.
//
// The source is deterministic: given the same seed and cycle count it
// produces a bit-identical emission sequence. All randomness comes
// from the single *rand.Rand it owns; wall clocks never influence the
// generation decision. Per emission the draw order is fixed (jitter,
// anomaly roll, then class-specific draws) so consumers downstream
// cannot perturb the stream.
package source

import (
	"fmt"
	"math/rand"
	"time"

	"firestige.xyz/strix/internal/codec"
	"firestige.xyz/strix/internal/core"
)

// Telemetry value ranges of the simulated airframe.
const (
	altitudeMin = 100.0
	altitudeMax = 5000.0
	speedMin    = 10.0
	speedMax    = 100.0
	headingMax  = 360.0
	batteryMin  = 20.0
	batteryMax  = 100.0
)

// Config parameterizes a Source.
type Config struct {
	Roster      []string // authorized vehicle IDs
	AnomalyRate float64  // probability of injecting one anomaly class
	JitterMin   time.Duration
	JitterMax   time.Duration
}

// Source produces one emission per cycle with probabilistic anomaly
// injection.
type Source struct {
	rng     *rand.Rand
	cfg     Config
	counter uint64
}

// New creates a Source that draws from r. The caller hands over
// ownership of r; nothing else may consume from it during a run.
func New(cfg Config, r *rand.Rand) (*Source, error) {
	if len(cfg.Roster) == 0 {
		return nil, core.ErrRosterEmpty
	}
	if cfg.AnomalyRate < 0 || cfg.AnomalyRate > 1 {
		return nil, fmt.Errorf("%w: anomaly rate %g outside [0,1]", core.ErrConfigInvalid, cfg.AnomalyRate)
	}
	if cfg.JitterMax < cfg.JitterMin || cfg.JitterMin < 0 {
		return nil, fmt.Errorf("%w: jitter bounds [%s, %s]", core.ErrConfigInvalid, cfg.JitterMin, cfg.JitterMax)
	}
	return &Source{rng: r, cfg: cfg}, nil
}

// Emit produces the emission for one cycle. now is the simulated clock
// at generation time and becomes the packet's nominal timestamp; it is
// metadata only. A nil Packet with Injected == AnomalyLoss signals the
// channel to drop the cycle.
func (s *Source) Emit(cycle int, now time.Time) (core.Emission, error) {
	s.counter++

	jitter := s.drawJitter()
	emission := core.Emission{
		Cycle:  cycle,
		Jitter: jitter,
	}

	if s.rng.Float64() < s.cfg.AnomalyRate {
		switch core.AnomalyClass(1 + s.rng.Intn(3)) {
		case core.AnomalyLoss:
			emission.Injected = core.AnomalyLoss
			return emission, nil
		case core.AnomalyMalformed:
			pkt, err := s.buildPacket(s.pickRosterID(), now, true)
			if err != nil {
				return core.Emission{}, err
			}
			emission.Injected = core.AnomalyMalformed
			emission.Packet = pkt
			return emission, nil
		case core.AnomalySpoofed:
			pkt, err := s.buildPacket(s.spoofedID(), now, false)
			if err != nil {
				return core.Emission{}, err
			}
			emission.Injected = core.AnomalySpoofed
			emission.Packet = pkt
			return emission, nil
		}
	}

	pkt, err := s.buildPacket(s.pickRosterID(), now, false)
	if err != nil {
		return core.Emission{}, err
	}
	emission.Packet = pkt
	return emission, nil
}

// Emitted returns how many emission attempts the source has made,
// including lost ones.
func (s *Source) Emitted() uint64 { return s.counter }

func (s *Source) drawJitter() time.Duration {
	span := s.cfg.JitterMax - s.cfg.JitterMin
	if span == 0 {
		return s.cfg.JitterMin
	}
	return s.cfg.JitterMin + time.Duration(s.rng.Float64()*float64(span))
}

func (s *Source) pickRosterID() string {
	return s.cfg.Roster[s.rng.Intn(len(s.cfg.Roster))]
}

// spoofedID draws an identifier from outside the authorized numbering
// block. The default roster occupies UAV_001..UAV_010; spoofed IDs sit
// in UAV_100..UAV_999.
func (s *Source) spoofedID() string {
	return fmt.Sprintf("UAV_%03d", 100+s.rng.Intn(900))
}

func (s *Source) buildPacket(vehicleID string, now time.Time, forgeChecksum bool) (*core.Packet, error) {
	telemetry := core.Telemetry{
		VehicleID: vehicleID,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		Altitude:  altitudeMin + s.rng.Float64()*(altitudeMax-altitudeMin),
		Speed:     speedMin + s.rng.Float64()*(speedMax-speedMin),
		Heading:   s.rng.Float64() * headingMax,
		Battery:   batteryMin + s.rng.Float64()*(batteryMax-batteryMin),
		Status:    "operational",
	}

	payload, checksum, err := codec.Encode(telemetry)
	if err != nil {
		return nil, fmt.Errorf("build packet for %s: %w", vehicleID, err)
	}
	if forgeChecksum {
		raw, _ := codec.DecodeRaw(payload)
		checksum = core.ForgeChecksum(raw, uint32(1000+s.rng.Intn(9000)))
	}

	return &core.Packet{
		PacketID:  s.counter,
		VehicleID: vehicleID,
		Timestamp: now,
		Payload:   payload,
		Checksum:  checksum,
	}, nil
}
