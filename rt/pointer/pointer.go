// Package pointer derives per-frame pointer motion and device-scaled sizes.
package pointer

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// State is the pointer as seen by one frame.
type State struct {
	Current  mgl32.Vec2
	Previous mgl32.Vec2
	Delta    mgl32.Vec2
	// Velocity is in pointer units per millisecond.
	Velocity mgl32.Vec2
	// DidMove reports a non-zero velocity in this sample.
	DidMove bool
	// HasMoved latches once any movement has been seen.
	HasMoved bool
}

// Tracker turns raw pointer samples into State. Each effect owns one.
type Tracker struct {
	started  bool
	hasMoved bool
	last     time.Duration
	prev     mgl32.Vec2
}

// Sample records pos observed at now, a monotonic timestamp.
func (t *Tracker) Sample(pos mgl32.Vec2, now time.Duration) State {
	if !t.started {
		t.started = true
		t.last = now
		t.prev = pos
	}
	elapsed := float32(now-t.last) / float32(time.Millisecond)
	if elapsed < 1 {
		elapsed = 1
	}
	t.last = now

	velocity := pos.Sub(t.prev).Mul(1 / elapsed)
	moved := velocity.Len() > 0
	previous := pos
	if t.hasMoved {
		previous = t.prev
	}
	if moved {
		t.hasMoved = true
	}
	t.prev = pos
	return State{
		Current:  pos,
		Previous: previous,
		Delta:    pos.Sub(previous),
		Velocity: velocity,
		DidMove:  moved,
		HasMoved: t.hasMoved,
	}
}

// Reset forgets all history.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
