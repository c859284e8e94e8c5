package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

type DistortionParams struct {
	Texture0 gpu.Texture `fx:"texture0"`
	Texture1 gpu.Texture `fx:"texture1"`
	// TextureResolution is the source image size used for cover fitting.
	TextureResolution mgl32.Vec2  `fx:"texture_resolution"`
	Padding           float32     `fx:"padding"`
	Map               gpu.Texture `fx:"map"`
	MapIntensity      float32     `fx:"map_intensity"`
	EdgeIntensity     float32     `fx:"edge_intensity"`
	Epicenter         mgl32.Vec2  `fx:"epicenter"`
	// Progress runs the transition from Texture0 (0) to Texture1 (1).
	Progress float32    `fx:"progress"`
	Dir      mgl32.Vec2 `fx:"dir"`
}

func DefaultDistortionParams() DistortionParams {
	return DistortionParams{}
}

// Distortion transitions between two textures through a displacement map.
// Its target follows the viewport size.
type Distortion struct {
	*singlePass
	store *params.Store[DistortionParams]
}

func NewDistortion(device gpu.Device, cfg Config) (*Distortion, error) {
	sp, err := newSinglePass("distortion", device, cfg, true, shaders.FxTexture)
	if err != nil {
		return nil, err
	}
	return &Distortion{singlePass: sp, store: params.NewStore(DefaultDistortionParams(), sp.logger)}, nil
}

func (fx *Distortion) Params() DistortionParams       { return fx.store.Get() }
func (fx *Distortion) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Distortion) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	patch(fx.store, p)
	prm := fx.store.Get()
	res := fx.resolution()
	return fx.run(f, func(u *gpu.Uniforms) {
		u.SetVec2("uResolution", res)
		u.SetVec2("uTextureResolution", prm.TextureResolution)
		u.SetTexture("uTexture0", prm.Texture0)
		u.SetTexture("uTexture1", prm.Texture1)
		u.SetTexture("uMap", prm.Map)
		u.SetFloat("mapIntensity", prm.MapIntensity)
		u.SetFloat("edgeIntensity", prm.EdgeIntensity)
		u.SetFloat("progress", prm.Progress)
		u.SetFloat("dirX", prm.Dir.X())
		u.SetFloat("dirY", prm.Dir.Y())
		u.SetVec2("epicenter", prm.Epicenter)
		u.SetFloat("padding", prm.Padding)
	})
}
