package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/go-gl/mathgl/mgl32"
)

type BlurParams struct {
	Texture  gpu.Texture `fx:"texture"`
	BlurSize float32     `fx:"blur_size"`
	// BlurPower is the number of extra box-blur iterations.
	BlurPower int `fx:"blur_power"`
}

func DefaultBlurParams() BlurParams {
	return BlurParams{BlurSize: 3, BlurPower: 5}
}

// Blur box-blurs a texture repeatedly through a ping-pong pair and copies the
// result into a stable output target.
type Blur struct {
	*base
	store   *params.Store[BlurParams]
	box     *gpu.Material
	scratch *target.PingPong
	output  *target.Single
}

func NewBlur(device gpu.Device, cfg Config) (*Blur, error) {
	fx := &Blur{base: newBase("blur", device, cfg, false)}
	fx.store = params.NewStore(DefaultBlurParams(), fx.logger)
	var err error
	if fx.box, err = fx.material(shaders.Blur); err != nil {
		fx.Destroy()
		return nil, err
	}
	w, h := cfg.pixels()
	if fx.scratch, err = fx.pool.AcquireDoubleBuffer(w, h); err != nil {
		fx.Destroy()
		return nil, err
	}
	if fx.output, err = fx.pool.AcquireSingle(w, h); err != nil {
		fx.Destroy()
		return nil, err
	}
	return fx, nil
}

func (fx *Blur) Params() BlurParams { return fx.store.Get() }

func (fx *Blur) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Blur) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	defer f.begin(fx.name)()
	patch(fx.store, p)
	prm := fx.store.Get()
	if prm.Texture == nil {
		return nil, &ResourceError{Effect: fx.name, Resource: "texture"}
	}

	tw, th := prm.Texture.Size()
	fx.box.Uniforms.SetVec2("uResolution", mgl32.Vec2{float32(tw), float32(th)})
	fx.box.Uniforms.SetFloat("uBlurSize", prm.BlurSize)

	src, err := fx.pingPong(f, fx.scratch, fx.box, func(u *gpu.Uniforms, _ target.PassInputs) {
		u.SetTexture("uTexture", prm.Texture)
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < prm.BlurPower; i++ {
		if src, err = fx.pingPong(f, fx.scratch, fx.box, func(u *gpu.Uniforms, in target.PassInputs) {
			u.SetTexture("uTexture", in.Read)
		}); err != nil {
			return nil, err
		}
	}
	return fx.pass(f, fx.output, fx.box, func(u *gpu.Uniforms, _ target.PassInputs) {
		u.SetTexture("uTexture", src)
	})
}
