package shaderfx

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ScopeStats is the CPU time spent in one scope.
type ScopeStats struct {
	// Frame is the time accumulated since the last Reset.
	Frame time.Duration
	// Average is an exponential moving average of Frame across resets.
	Average time.Duration
	Calls   int
}

// Profiler records CPU time per effect and arbitrary counters. It is not
// safe for concurrent use; effects run on the render loop only.
type Profiler struct {
	Scopes map[string]*ScopeStats
	Counts map[string]int
	Order  []string

	open map[string]time.Time
	now  func() time.Time
}

const profilerSmoothing = 0.2

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes: make(map[string]*ScopeStats),
		Counts: make(map[string]int),
		open:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.open[name] = p.now()
	if _, ok := p.Scopes[name]; !ok {
		p.Scopes[name] = &ScopeStats{}
		p.Order = append(p.Order, name)
	}
}

// EndScope adds the time since the matching BeginScope. Unmatched calls are
// ignored.
func (p *Profiler) EndScope(name string) {
	start, ok := p.open[name]
	if !ok {
		return
	}
	delete(p.open, name)
	s := p.Scopes[name]
	s.Frame += p.now().Sub(start)
	s.Calls++
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

func (p *Profiler) AddCount(name string, delta int) {
	p.Counts[name] += delta
}

// Reset folds the frame timings into the averages and zeroes timings and
// counters. Scope order is kept.
func (p *Profiler) Reset() {
	for _, s := range p.Scopes {
		if s.Average == 0 {
			s.Average = s.Frame
		} else {
			s.Average += time.Duration(profilerSmoothing * float64(s.Frame-s.Average))
		}
		s.Frame = 0
		s.Calls = 0
	}
	for k := range p.Counts {
		p.Counts[k] = 0
	}
}

func (p *Profiler) StatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		s := p.Scopes[name]
		fmt.Fprintf(&sb, "  %-18s: %6.2f ms (avg %6.2f ms, %d calls)\n",
			name, ms(s.Frame), ms(s.Average), s.Calls)
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-18s: %d\n", k, p.Counts[k])
	}
	return sb.String()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
