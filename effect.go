package shaderfx

import (
	"errors"
	"fmt"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/google/uuid"
)

// ErrDestroyed is returned by Update after Destroy.
var ErrDestroyed = errors.New("effect destroyed")

// Effect is one post-processing unit driven once per frame.
type Effect interface {
	// Update applies patch, runs the effect's passes and returns its output.
	// Dropped patch keys are logged; the frame still renders.
	Update(f *Frame, patch params.Patch) (gpu.Texture, error)
	Destroy()
}

// Config is shared by every effect constructor.
type Config struct {
	Size   pointer.Size
	DPR    float32
	Logger Logger
}

func (c Config) pixels() (int, int) {
	return pointer.Pixels(pointer.Resolution(c.Size, c.DPR))
}

// base owns the device resources of one effect.
type base struct {
	id        uuid.UUID
	name      string
	device    gpu.Device
	pool      *target.Pool
	materials []*gpu.Material
	logger    Logger
	resolver  pointer.Resolver
	destroyed bool
}

func newBase(name string, device gpu.Device, cfg Config, trackSize bool) *base {
	b := &base{
		id:     uuid.New(),
		name:   name,
		device: device,
		logger: scoped(cfg.Logger, name),
	}
	b.pool = target.NewPool(device, target.PoolOptions{Label: name, TrackSize: trackSize})
	b.resolver.Resolve(cfg.Size, cfg.DPR)
	return b
}

func (b *base) ID() uuid.UUID { return b.id }

func (b *base) material(k shaders.Kernel) (*gpu.Material, error) {
	m, err := gpu.NewMaterial(b.device, k)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	b.materials = append(b.materials, m)
	return m, nil
}

// materialsFor compiles kernels in order. On error everything created so
// far is released by the caller's Destroy.
func (b *base) materialsFor(kernels ...shaders.Kernel) ([]*gpu.Material, error) {
	out := make([]*gpu.Material, 0, len(kernels))
	for _, k := range kernels {
		m, err := b.material(k)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Destroy releases every target and material. Calling it again is a no-op.
func (b *base) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.pool.ReleaseAll()
	for _, m := range b.materials {
		m.Release()
	}
	b.materials = nil
	b.logger.Debugf("%s destroyed", b.id)
}

// begin validates the frame and keeps size-tracking targets in sync with it.
func (b *base) begin(f *Frame) error {
	if b.destroyed {
		return fmt.Errorf("%s: %w", b.name, ErrDestroyed)
	}
	if f == nil || f.Device == nil {
		return preconditionf(b.name, "frame has no device")
	}
	if f.Device != b.device {
		return preconditionf(b.name, "frame device differs from the creating device")
	}
	if b.pool.Options().TrackSize && b.resolver.Changed(f.Size, f.DPR) {
		w, h := pointer.Pixels(b.resolver.Resolve(f.Size, f.DPR))
		if err := b.pool.Resize(w, h); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
		b.logger.Debugf("resized to %dx%d", w, h)
	}
	return nil
}

func (b *base) pass(f *Frame, dst *target.Single, m *gpu.Material, bind target.BindFunc, opts ...target.PassOptions) (gpu.Texture, error) {
	if f.Profiler != nil {
		f.Profiler.AddCount(b.name+".passes", 1)
	}
	return target.RunPass(f.Device, dst, m, bind, opts...)
}

func (b *base) pingPong(f *Frame, pair *target.PingPong, m *gpu.Material, bind target.BindFunc, opts ...target.PassOptions) (gpu.Texture, error) {
	if f.Profiler != nil {
		f.Profiler.AddCount(b.name+".passes", 1)
	}
	return target.RunDoubleBufferPass(f.Device, pair, m, bind, opts...)
}

// patch applies p to store. Dropped keys were already logged by the store.
func patch[T any](store *params.Store[T], p params.Patch) {
	_ = store.Update(p)
}
