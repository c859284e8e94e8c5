package target

import (
	"fmt"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

type PassOptions struct {
	Blend      gpu.BlendMode
	Load       bool
	ClearColor mgl32.Vec4
}

// PassInputs are the buffers of the destination. For a ping-pong pass Read is
// the previous result; Write is only useful for its size.
type PassInputs struct {
	Read  gpu.Texture
	Write gpu.Texture
}

// BindFunc wires uniforms right before the draw.
type BindFunc func(u *gpu.Uniforms, in PassInputs)

func drawOptions(opts []PassOptions) gpu.DrawOptions {
	if len(opts) == 0 {
		return gpu.DrawOptions{}
	}
	o := opts[0]
	return gpu.DrawOptions{Blend: o.Blend, Load: o.Load, ClearColor: o.ClearColor}
}

func draw(device gpu.Device, rt gpu.RenderTarget, m *gpu.Material, bind BindFunc, in PassInputs, opts gpu.DrawOptions) error {
	device.SetRenderTarget(rt)
	defer device.SetRenderTarget(nil)
	if bind != nil {
		bind(m.Uniforms, in)
	}
	if err := device.Draw(m.Program, m.Uniforms, opts); err != nil {
		return fmt.Errorf("pass %s: %w", m.Name(), err)
	}
	return nil
}

// RunPass draws m once into dst and returns dst's texture. The default
// destination is restored afterwards, including on error.
func RunPass(device gpu.Device, dst *Single, m *gpu.Material, bind BindFunc, opts ...PassOptions) (gpu.Texture, error) {
	if dst.Released() {
		return nil, fmt.Errorf("pass %s: %w", m.Name(), gpu.ErrReleased)
	}
	in := PassInputs{Read: dst.Texture(), Write: dst.Texture()}
	if err := draw(device, dst.rt, m, bind, in, drawOptions(opts)); err != nil {
		return nil, err
	}
	return dst.Texture(), nil
}

// RunDoubleBufferPass draws m into the write buffer, swaps, and returns the
// new read texture.
func RunDoubleBufferPass(device gpu.Device, pair *PingPong, m *gpu.Material, bind BindFunc, opts ...PassOptions) (gpu.Texture, error) {
	if pair.Released() {
		return nil, fmt.Errorf("pass %s: %w", m.Name(), gpu.ErrReleased)
	}
	in := PassInputs{Read: pair.read.Texture(), Write: pair.write.Texture()}
	if err := draw(device, pair.write, m, bind, in, drawOptions(opts)); err != nil {
		return nil, err
	}
	pair.Swap()
	return pair.read.Texture(), nil
}
