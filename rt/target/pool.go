package target

import (
	"fmt"

	"github.com/gekko3d/shaderfx/rt/gpu"
)

type PoolOptions struct {
	Label string
	// TrackSize makes Resize reallocate live targets. Without it targets keep
	// their creation size.
	TrackSize bool
}

// Single is a one-buffer off-screen target.
type Single struct {
	rt gpu.RenderTarget
}

func (s *Single) Target() gpu.RenderTarget { return s.rt }
func (s *Single) Texture() gpu.Texture     { return s.rt.Texture() }
func (s *Single) Size() (int, int)         { return s.rt.Size() }
func (s *Single) Released() bool           { return s.rt.Released() }

func (s *Single) release() { s.rt.Release() }

// PingPong is a pair of targets used alternately as read and write buffers.
type PingPong struct {
	read  gpu.RenderTarget
	write gpu.RenderTarget
}

func (p *PingPong) Read() gpu.RenderTarget  { return p.read }
func (p *PingPong) Write() gpu.RenderTarget { return p.write }
func (p *PingPong) Size() (int, int)        { return p.read.Size() }
func (p *PingPong) Released() bool          { return p.read.Released() }

// Swap exchanges the read and write labels without reallocating.
func (p *PingPong) Swap() {
	p.read, p.write = p.write, p.read
}

func (p *PingPong) release() {
	p.read.Release()
	p.write.Release()
}

// Releasable is anything a Pool hands out.
type Releasable interface {
	release()
}

// Pool owns every off-screen target of one effect.
type Pool struct {
	device  gpu.Device
	opts    PoolOptions
	singles []*Single
	pairs   []*PingPong
}

func NewPool(device gpu.Device, opts PoolOptions) *Pool {
	if opts.Label == "" {
		opts.Label = "fx"
	}
	return &Pool{device: device, opts: opts}
}

func (p *Pool) Options() PoolOptions { return p.opts }

func (p *Pool) allocate(suffix string, width, height int) (gpu.RenderTarget, error) {
	rt, err := p.device.CreateRenderTarget(gpu.HalfFloatTarget(p.opts.Label+suffix, width, height))
	if err != nil {
		return nil, fmt.Errorf("allocate %s%s %dx%d: %w", p.opts.Label, suffix, width, height, err)
	}
	return rt, nil
}

func (p *Pool) AcquireSingle(width, height int) (*Single, error) {
	rt, err := p.allocate(fmt.Sprintf(".single%d", len(p.singles)), width, height)
	if err != nil {
		return nil, err
	}
	s := &Single{rt: rt}
	p.singles = append(p.singles, s)
	return s, nil
}

func (p *Pool) AcquireDoubleBuffer(width, height int) (*PingPong, error) {
	label := fmt.Sprintf(".pair%d", len(p.pairs))
	read, err := p.allocate(label+".a", width, height)
	if err != nil {
		return nil, err
	}
	write, err := p.allocate(label+".b", width, height)
	if err != nil {
		read.Release()
		return nil, err
	}
	pp := &PingPong{read: read, write: write}
	p.pairs = append(p.pairs, pp)
	return pp, nil
}

// AcquireMany allocates n single targets of the same size. Either all of
// them are returned or none are kept.
func (p *Pool) AcquireMany(n, width, height int) ([]*Single, error) {
	out := make([]*Single, 0, n)
	for i := 0; i < n; i++ {
		s, err := p.AcquireSingle(width, height)
		if err != nil {
			for _, done := range out {
				p.Release(done)
			}
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Resize reallocates every live target when the pool tracks size.
func (p *Pool) Resize(width, height int) error {
	if !p.opts.TrackSize {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize %s to %dx%d", p.opts.Label, width, height)
	}
	for _, s := range p.singles {
		if err := s.rt.SetSize(width, height); err != nil {
			return err
		}
	}
	for _, pp := range p.pairs {
		if err := pp.read.SetSize(width, height); err != nil {
			return err
		}
		if err := pp.write.SetSize(width, height); err != nil {
			return err
		}
	}
	return nil
}

// Release frees a target. Releasing twice, or releasing something the pool
// no longer owns, does nothing.
func (p *Pool) Release(t Releasable) {
	switch v := t.(type) {
	case *Single:
		for i, s := range p.singles {
			if s == v {
				p.singles = append(p.singles[:i], p.singles[i+1:]...)
				break
			}
		}
	case *PingPong:
		for i, pp := range p.pairs {
			if pp == v {
				p.pairs = append(p.pairs[:i], p.pairs[i+1:]...)
				break
			}
		}
	}
	t.release()
}

func (p *Pool) ReleaseAll() {
	for _, s := range p.singles {
		s.release()
	}
	for _, pp := range p.pairs {
		pp.release()
	}
	p.singles = nil
	p.pairs = nil
}

// Live is the number of targets still owned by the pool. A pair counts once.
func (p *Pool) Live() int {
	return len(p.singles) + len(p.pairs)
}
