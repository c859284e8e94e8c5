package shaderfx

import (
	"errors"
	"fmt"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
)

// FeedFunc turns the previous stage's output into a patch for the next stage.
// prev is nil for the first stage.
type FeedFunc func(prev gpu.Texture) params.Patch

// Configurable effects accept patches outside of Update.
type Configurable interface {
	SetParams(p params.Patch) error
}

type stage struct {
	name    string
	effect  Effect
	feed    FeedFunc
	pending params.Patch
}

type ChainBuilder struct {
	chain *Chain
	err   error
}

func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{chain: &Chain{index: make(map[string]int)}}
}

// Use appends a stage. feed may be nil.
func (b *ChainBuilder) Use(name string, effect Effect, feed FeedFunc) *ChainBuilder {
	if b.err != nil {
		return b
	}
	if effect == nil {
		b.err = fmt.Errorf("chain stage %q: nil effect", name)
		return b
	}
	if _, dup := b.chain.index[name]; dup {
		b.err = fmt.Errorf("chain stage %q: duplicate name", name)
		return b
	}
	b.chain.index[name] = len(b.chain.stages)
	b.chain.stages = append(b.chain.stages, &stage{name: name, effect: effect, feed: feed})
	return b
}

// Build returns the chain. On error the effects already added are destroyed.
func (b *ChainBuilder) Build() (*Chain, error) {
	if b.err != nil {
		b.chain.Destroy()
		return nil, b.err
	}
	return b.chain, nil
}

// Chain runs effects in order every frame, optionally feeding each output
// into the next stage.
type Chain struct {
	stages []*stage
	index  map[string]int
}

func (c *Chain) Len() int { return len(c.stages) }

// Effect returns the named stage's effect.
func (c *Chain) Effect(name string) (Effect, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.stages[i].effect, true
}

// Queue merges p into the named stage's patch for the next Update.
func (c *Chain) Queue(name string, p params.Patch) error {
	i, ok := c.index[name]
	if !ok {
		return &ConfigError{Key: name, Reason: "no such stage"}
	}
	s := c.stages[i]
	if s.pending == nil {
		s.pending = make(params.Patch, len(p))
	}
	for k, v := range p {
		s.pending[k] = v
	}
	return nil
}

// Apply sends a preset to the stages it names, in chain order.
func (c *Chain) Apply(p Preset) error {
	var errs []error
	for name := range p {
		if _, ok := c.index[name]; !ok {
			errs = append(errs, &ConfigError{Key: name, Reason: "no such stage"})
		}
	}
	for _, s := range c.stages {
		patch, ok := p[s.name]
		if !ok {
			continue
		}
		cfg, ok := s.effect.(Configurable)
		if !ok {
			errs = append(errs, &ConfigError{Key: s.name, Reason: "stage does not accept params"})
			continue
		}
		if err := cfg.SetParams(patch); err != nil {
			errs = append(errs, fmt.Errorf("stage %s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Update runs every stage and returns the last output.
func (c *Chain) Update(f *Frame) (gpu.Texture, error) {
	var out gpu.Texture
	for _, s := range c.stages {
		p := s.pending
		s.pending = nil
		if s.feed != nil {
			fed := s.feed(out)
			if p == nil {
				p = fed
			} else {
				for k, v := range fed {
					p[k] = v
				}
			}
		}
		tex, err := s.effect.Update(f, p)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.name, err)
		}
		out = tex
	}
	return out, nil
}

// Destroy tears down every stage in reverse order.
func (c *Chain) Destroy() {
	for i := len(c.stages) - 1; i >= 0; i-- {
		c.stages[i].effect.Destroy()
	}
}

// Texture feeds the previous output into key.
func Texture(key string) FeedFunc {
	return func(prev gpu.Texture) params.Patch {
		if prev == nil {
			return nil
		}
		return params.Patch{key: prev}
	}
}
