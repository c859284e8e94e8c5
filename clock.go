package shaderfx

import (
	"time"
)

// Clock is the animation clock shared by the effects of one host loop.
// Tick once per frame before updating effects.
type Clock struct {
	Elapsed time.Duration
	Dt      time.Duration

	source func() time.Duration
}

// NewClock follows wall time from now.
func NewClock() *Clock {
	start := time.Now()
	return &Clock{source: func() time.Duration { return time.Since(start) }}
}

// NewManualClock only moves when Advance is called.
func NewManualClock() *Clock {
	return &Clock{}
}

func (c *Clock) Tick() {
	if c.source == nil {
		return
	}
	now := c.source()
	c.Dt = now - c.Elapsed
	c.Elapsed = now
}

// Advance moves a manual clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.Dt = d
	c.Elapsed += d
}

// Seconds is Elapsed in seconds.
func (c *Clock) Seconds() float32 {
	return float32(c.Elapsed.Seconds())
}
