package shaderfx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	c.Tick()
	assert.Zero(t, c.Elapsed)

	c.Advance(500 * time.Millisecond)
	c.Advance(250 * time.Millisecond)
	assert.Equal(t, 750*time.Millisecond, c.Elapsed)
	assert.Equal(t, 250*time.Millisecond, c.Dt)
	assert.InDelta(t, 0.75, c.Seconds(), 1e-6)
}

func TestWallClockMovesForward(t *testing.T) {
	c := NewClock()
	c.Tick()
	first := c.Elapsed
	time.Sleep(2 * time.Millisecond)
	c.Tick()
	assert.Greater(t, c.Elapsed, first)
	assert.Equal(t, c.Elapsed-first, c.Dt)
}

func TestProfilerCounts(t *testing.T) {
	p := NewProfiler()
	p.BeginScope("fluid")
	p.AddCount("fluid.passes", 3)
	p.AddCount("fluid.passes", 2)
	p.EndScope("fluid")
	assert.Equal(t, 5, p.Counts["fluid.passes"])
	assert.Equal(t, 1, p.Scopes["fluid"].Calls)
	assert.True(t, strings.Contains(p.StatsString(), "fluid.passes"))

	p.Reset()
	assert.Zero(t, p.Counts["fluid.passes"])
	assert.Zero(t, p.Scopes["fluid"].Calls)
	assert.Equal(t, []string{"fluid"}, p.Order)
}

func TestProfilerAccumulatesAndAverages(t *testing.T) {
	p := NewProfiler()
	now := time.Unix(0, 0)
	p.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		p.BeginScope("blur")
		now = now.Add(10 * time.Millisecond)
		p.EndScope("blur")
	}
	p.EndScope("blur")
	s := p.Scopes["blur"]
	assert.Equal(t, 20*time.Millisecond, s.Frame)
	assert.Equal(t, 2, s.Calls)

	p.Reset()
	assert.Equal(t, 20*time.Millisecond, s.Average)

	p.BeginScope("blur")
	now = now.Add(10 * time.Millisecond)
	p.EndScope("blur")
	p.Reset()
	assert.Equal(t, 18*time.Millisecond, s.Average)
}

func TestLoggerOrNeverNil(t *testing.T) {
	l := loggerOr(nil)
	assert.NotNil(t, l)
	assert.False(t, l.DebugEnabled())

	d := NewDefaultLogger("fx", false)
	d.SetDebug(true)
	assert.True(t, d.DebugEnabled())
	assert.Same(t, d, loggerOr(d))
}

func TestDefaultLoggerStreams(t *testing.T) {
	var out, errOut strings.Builder
	l := NewDefaultLoggerTo("fx", false, &out, &errOut)

	l.Debugf("hidden")
	l.Infof("hello %d", 1)
	scoped(l, "fluid").Errorf("bad key %q", "k")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[fx] INFO: hello 1")
	assert.Contains(t, errOut.String(), `[fx] ERROR: fluid: bad key "k"`)

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}
