package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/go-gl/mathgl/mgl32"
)

// singlePass is the shared shape of effects that draw one material into one
// target per frame.
type singlePass struct {
	*base
	filter *gpu.Material
	output *target.Single
}

func newSinglePass(name string, device gpu.Device, cfg Config, trackSize bool, k shaders.Kernel) (*singlePass, error) {
	sp := &singlePass{base: newBase(name, device, cfg, trackSize)}
	var err error
	if sp.filter, err = sp.material(k); err != nil {
		sp.Destroy()
		return nil, err
	}
	w, h := cfg.pixels()
	if sp.output, err = sp.pool.AcquireSingle(w, h); err != nil {
		sp.Destroy()
		return nil, err
	}
	return sp, nil
}

func (sp *singlePass) run(f *Frame, bind func(u *gpu.Uniforms)) (gpu.Texture, error) {
	defer f.begin(sp.name)()
	return sp.pass(f, sp.output, sp.filter, func(u *gpu.Uniforms, _ target.PassInputs) {
		bind(u)
	})
}

// resolution is the current output size in pixels.
func (sp *singlePass) resolution() mgl32.Vec2 {
	w, h := sp.output.Size()
	return mgl32.Vec2{float32(w), float32(h)}
}

type DuotoneParams struct {
	Texture gpu.Texture `fx:"texture"`
	Color0  mgl32.Vec3  `fx:"color0"`
	Color1  mgl32.Vec3  `fx:"color1"`
}

func DefaultDuotoneParams() DuotoneParams {
	return DuotoneParams{Color0: mgl32.Vec3{1, 1, 1}, Color1: mgl32.Vec3{0, 0, 0}}
}

// Duotone maps luminance onto a two-color gradient.
type Duotone struct {
	*singlePass
	store *params.Store[DuotoneParams]
}

func NewDuotone(device gpu.Device, cfg Config) (*Duotone, error) {
	sp, err := newSinglePass("duotone", device, cfg, false, shaders.Duotone)
	if err != nil {
		return nil, err
	}
	return &Duotone{singlePass: sp, store: params.NewStore(DefaultDuotoneParams(), sp.logger)}, nil
}

func (fx *Duotone) Params() DuotoneParams          { return fx.store.Get() }
func (fx *Duotone) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Duotone) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetTexture("uTexture", prm.Texture)
		u.SetVec3("uColor0", prm.Color0)
		u.SetVec3("uColor1", prm.Color1)
	})
}

type BlendingParams struct {
	Texture      gpu.Texture `fx:"texture"`
	Map          gpu.Texture `fx:"map"`
	MapIntensity float32     `fx:"map_intensity"`
	Brightness   mgl32.Vec3  `fx:"brightness"`
	Min          float32     `fx:"min"`
	Max          float32     `fx:"max"`
	// Color tints the pixels whose brightness falls in [Min, Max].
	Color mgl32.Vec3 `fx:"color"`
}

func DefaultBlendingParams() BlendingParams {
	return BlendingParams{
		MapIntensity: 0.3,
		Brightness:   mgl32.Vec3{0.5, 0.5, 0.5},
		Max:          1,
		Color:        mgl32.Vec3{1, 1, 1},
	}
}

// Blending distorts a texture by a map and tints a brightness band.
type Blending struct {
	*singlePass
	store *params.Store[BlendingParams]
}

func NewBlending(device gpu.Device, cfg Config) (*Blending, error) {
	sp, err := newSinglePass("blending", device, cfg, false, shaders.Blending)
	if err != nil {
		return nil, err
	}
	return &Blending{singlePass: sp, store: params.NewStore(DefaultBlendingParams(), sp.logger)}, nil
}

func (fx *Blending) Params() BlendingParams         { return fx.store.Get() }
func (fx *Blending) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Blending) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetTexture("u_texture", prm.Texture)
		u.SetTexture("u_map", prm.Map)
		u.SetFloat("u_mapIntensity", prm.MapIntensity)
		u.SetVec3("u_brightness", prm.Brightness)
		u.SetFloat("u_min", prm.Min)
		u.SetFloat("u_max", prm.Max)
		u.SetVec3("u_color", prm.Color)
	})
}

type FxBlendingParams struct {
	Texture      gpu.Texture `fx:"texture"`
	Map          gpu.Texture `fx:"map"`
	MapIntensity float32     `fx:"map_intensity"`
}

func DefaultFxBlendingParams() FxBlendingParams {
	return FxBlendingParams{MapIntensity: 0.3}
}

// FxBlending displaces a texture by the brightness of a map.
type FxBlending struct {
	*singlePass
	store *params.Store[FxBlendingParams]
}

func NewFxBlending(device gpu.Device, cfg Config) (*FxBlending, error) {
	sp, err := newSinglePass("fx_blending", device, cfg, false, shaders.FxBlending)
	if err != nil {
		return nil, err
	}
	return &FxBlending{singlePass: sp, store: params.NewStore(DefaultFxBlendingParams(), sp.logger)}, nil
}

func (fx *FxBlending) Params() FxBlendingParams       { return fx.store.Get() }
func (fx *FxBlending) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *FxBlending) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetTexture("u_texture", prm.Texture)
		u.SetTexture("u_map", prm.Map)
		u.SetFloat("u_mapIntensity", prm.MapIntensity)
	})
}

type BrightnessPickerParams struct {
	Texture    gpu.Texture `fx:"texture"`
	Brightness mgl32.Vec3  `fx:"brightness"`
	Min        float32     `fx:"min"`
	Max        float32     `fx:"max"`
}

func DefaultBrightnessPickerParams() BrightnessPickerParams {
	return BrightnessPickerParams{Brightness: mgl32.Vec3{0.5, 0.5, 0.5}, Max: 1}
}

// BrightnessPicker keeps only the pixels whose weighted brightness is in range.
type BrightnessPicker struct {
	*singlePass
	store *params.Store[BrightnessPickerParams]
}

func NewBrightnessPicker(device gpu.Device, cfg Config) (*BrightnessPicker, error) {
	sp, err := newSinglePass("brightness_picker", device, cfg, false, shaders.BrightnessPicker)
	if err != nil {
		return nil, err
	}
	return &BrightnessPicker{singlePass: sp, store: params.NewStore(DefaultBrightnessPickerParams(), sp.logger)}, nil
}

func (fx *BrightnessPicker) Params() BrightnessPickerParams { return fx.store.Get() }
func (fx *BrightnessPicker) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *BrightnessPicker) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetTexture("u_texture", prm.Texture)
		u.SetVec3("u_brightness", prm.Brightness)
		u.SetFloat("u_min", prm.Min)
		u.SetFloat("u_max", prm.Max)
	})
}
