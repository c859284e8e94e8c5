package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

type ColorStrataParams struct {
	// Texture, when set, drives the strata positions from its red/green channels.
	Texture          gpu.Texture `fx:"texture"`
	Scale            float32     `fx:"scale"`
	LaminateLayer    float32     `fx:"laminate_layer"`
	LaminateInterval mgl32.Vec2  `fx:"laminate_interval"`
	LaminateDetail   mgl32.Vec2  `fx:"laminate_detail"`
	Distortion       mgl32.Vec2  `fx:"distortion"`
	ColorFactor      mgl32.Vec3  `fx:"color_factor"`
	TimeStrength     mgl32.Vec2  `fx:"time_strength"`
	Noise            gpu.Texture `fx:"noise"`
	NoiseStrength    mgl32.Vec2  `fx:"noise_strength"`
}

func DefaultColorStrataParams() ColorStrataParams {
	return ColorStrataParams{
		Scale:            1,
		LaminateLayer:    1,
		LaminateInterval: mgl32.Vec2{0.1, 0.1},
		LaminateDetail:   mgl32.Vec2{1, 1},
		ColorFactor:      mgl32.Vec3{1, 1, 1},
	}
}

// ColorStrata renders laminated interference bands.
type ColorStrata struct {
	*singlePass
	store *params.Store[ColorStrataParams]
}

func NewColorStrata(device gpu.Device, cfg Config) (*ColorStrata, error) {
	sp, err := newSinglePass("color_strata", device, cfg, false, shaders.ColorStrata)
	if err != nil {
		return nil, err
	}
	return &ColorStrata{singlePass: sp, store: params.NewStore(DefaultColorStrataParams(), sp.logger)}, nil
}

func (fx *ColorStrata) Params() ColorStrataParams      { return fx.store.Get() }
func (fx *ColorStrata) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *ColorStrata) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	var elapsed float32
	if f.Clock != nil {
		elapsed = f.Clock.Seconds()
	}
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetTexture("uTexture", prm.Texture)
		u.SetBool("isTexture", prm.Texture != nil)
		u.SetTexture("noise", prm.Noise)
		u.SetBool("isNoise", prm.Noise != nil)
		u.SetVec2("noiseStrength", prm.NoiseStrength)
		u.SetFloat("laminateLayer", prm.LaminateLayer)
		u.SetVec2("laminateInterval", prm.LaminateInterval)
		u.SetVec2("laminateDetail", prm.LaminateDetail)
		u.SetVec2("distortion", prm.Distortion)
		u.SetVec3("colorFactor", prm.ColorFactor)
		u.SetFloat("uTime", elapsed)
		u.SetVec2("timeStrength", prm.TimeStrength)
		u.SetFloat("scale", prm.Scale)
	})
}
