package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

type WaveMode string

const (
	WaveCenter     WaveMode = "center"
	WaveHorizontal WaveMode = "horizontal"
	WaveVertical   WaveMode = "vertical"
)

func (m WaveMode) index() int32 {
	switch m {
	case WaveCenter:
		return 0
	case WaveHorizontal:
		return 1
	}
	return 2
}

type WaveParams struct {
	Epicenter mgl32.Vec2 `fx:"epicenter"`
	Progress  float32    `fx:"progress"`
	Width     float32    `fx:"width"`
	Strength  float32    `fx:"strength"`
	Mode      WaveMode   `fx:"mode"`
}

func DefaultWaveParams() WaveParams {
	return WaveParams{Mode: WaveCenter}
}

// Wave renders an expanding band from an epicenter. Its target follows the
// viewport size.
type Wave struct {
	*singlePass
	store *params.Store[WaveParams]
}

func NewWave(device gpu.Device, cfg Config) (*Wave, error) {
	sp, err := newSinglePass("wave", device, cfg, true, shaders.Wave)
	if err != nil {
		return nil, err
	}
	return &Wave{singlePass: sp, store: params.NewStore(DefaultWaveParams(), sp.logger)}, nil
}

func (fx *Wave) Params() WaveParams             { return fx.store.Get() }
func (fx *Wave) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Wave) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	res := fx.resolution()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetVec2("uEpicenter", prm.Epicenter)
		u.SetFloat("uProgress", prm.Progress)
		u.SetFloat("uWidth", prm.Width)
		u.SetFloat("uStrength", prm.Strength)
		u.SetInt("uMode", prm.Mode.index())
		u.SetVec2("uResolution", res)
	})
}

type NoiseParams struct {
	Scale         float32    `fx:"scale"`
	TimeStrength  float32    `fx:"time_strength"`
	NoiseOctaves  int        `fx:"noise_octaves"`
	FbmOctaves    int        `fx:"fbm_octaves"`
	WarpOctaves   int        `fx:"warp_octaves"`
	WarpDirection mgl32.Vec2 `fx:"warp_direction"`
	WarpStrength  float32    `fx:"warp_strength"`
}

func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Scale:         0.004,
		TimeStrength:  0.3,
		NoiseOctaves:  2,
		FbmOctaves:    2,
		WarpOctaves:   2,
		WarpDirection: mgl32.Vec2{2, 2},
		WarpStrength:  8,
	}
}

// maxOctaves bounds the shader loops.
const maxOctaves = 8

// Noise renders animated domain-warped fractal noise.
type Noise struct {
	*singlePass
	store *params.Store[NoiseParams]
}

func NewNoise(device gpu.Device, cfg Config) (*Noise, error) {
	sp, err := newSinglePass("noise", device, cfg, false, shaders.Noise)
	if err != nil {
		return nil, err
	}
	return &Noise{singlePass: sp, store: params.NewStore(DefaultNoiseParams(), sp.logger)}, nil
}

func (fx *Noise) Params() NoiseParams { return fx.store.Get() }

func (fx *Noise) SetParams(p params.Patch) error {
	err := fx.store.Update(p)
	fx.clampOctaves()
	return err
}

func (fx *Noise) clampOctaves() {
	prm := fx.store.Ptr()
	for _, o := range []*int{&prm.NoiseOctaves, &prm.FbmOctaves, &prm.WarpOctaves} {
		if *o < 0 || *o > maxOctaves {
			fx.logger.Warnf("octaves %d clamped to [0, %d]", *o, maxOctaves)
			*o = min(max(*o, 0), maxOctaves)
		}
	}
}

func (fx *Noise) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	_ = fx.SetParams(p)
	prm := fx.store.Get()
	var elapsed float32
	if f.Clock != nil {
		elapsed = f.Clock.Seconds()
	}
	res := fx.resolution()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetFloat("uTime", elapsed)
		u.SetFloat("timeStrength", prm.TimeStrength)
		u.SetInt("noiseOctaves", int32(prm.NoiseOctaves))
		u.SetInt("fbmOctaves", int32(prm.FbmOctaves))
		u.SetInt("warpOctaves", int32(prm.WarpOctaves))
		u.SetVec2("warpDirection", prm.WarpDirection)
		u.SetFloat("warpStrength", prm.WarpStrength)
		u.SetFloat("scale", prm.Scale)
		u.SetVec2("uResolution", res)
	})
}
