// Package channel models the transport conduit between the packet
// source and the anomaly detector: a bounded asynchronous hand-off
// that realizes loss and delivery jitter.
package channel

import (
	"context"
	"fmt"
	"time"

	"firestige.xyz/strix/internal/core"
)

// Channel is a bounded FIFO conduit. A single producer feeds emissions
// in generation order and a single consumer drains them, so delivered
// packets are never reordered even though per-packet delivery delay
// varies. The simulated clock advances by each emission's jitter; no
// wall-clock sleeping is involved.
type Channel struct {
	emissions chan core.Emission

	now       time.Time
	delivered uint64
	dropped   uint64
}

// New creates a Channel with the given buffer capacity. start seeds
// the simulated clock.
func New(capacity int, start time.Time) (*Channel, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: channel capacity %d", core.ErrConfigInvalid, capacity)
	}
	return &Channel{
		emissions: make(chan core.Emission, capacity),
		now:       start,
	}, nil
}

// Send hands one emission to the conduit, blocking while the buffer is
// full. Producer side only.
func (c *Channel) Send(ctx context.Context, e core.Emission) error {
	select {
	case c.emissions <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the producer done. Next drains the remaining buffer.
func (c *Channel) Close() {
	close(c.emissions)
}

// Next returns the next emission in generation order. ok is false once
// the channel is closed and drained or the context is cancelled.
// Consumer side only.
func (c *Channel) Next(ctx context.Context) (core.Emission, bool) {
	select {
	case e, open := <-c.emissions:
		return e, open
	case <-ctx.Done():
		return core.Emission{}, false
	}
}

// Deliver realizes one emission. Loss-signaled emissions yield nil:
// the packet never arrives downstream, which is distinct from a
// malformed arrival. Everything else arrives after the pre-drawn
// jitter, which becomes the delivery's realized latency. The simulated
// clock advances by the jitter in both cases.
func (c *Channel) Deliver(e core.Emission) *core.Delivery {
	c.now = c.now.Add(e.Jitter)

	if e.Injected == core.AnomalyLoss || e.Packet == nil {
		c.dropped++
		return nil
	}

	c.delivered++
	return &core.Delivery{
		Cycle:   e.Cycle,
		Packet:  e.Packet,
		Latency: e.Jitter,
		At:      c.now,
	}
}

// Delivered returns how many packets have been handed downstream.
func (c *Channel) Delivered() uint64 { return c.delivered }

// Dropped returns how many emissions were lost in transit.
func (c *Channel) Dropped() uint64 { return c.dropped }

// Now returns the simulated clock after the last delivery.
func (c *Channel) Now() time.Time { return c.now }
