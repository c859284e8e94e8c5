package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/go-gl/mathgl/mgl32"
)

type BrushParams struct {
	// Texture is painted instead of Color when set.
	Texture      gpu.Texture              `fx:"texture"`
	Radius       float32                  `fx:"radius"`
	Smudge       float32                  `fx:"smudge"`
	Dissipation  float32                  `fx:"dissipation"`
	MotionBlur   float32                  `fx:"motion_blur"`
	MotionSample int                      `fx:"motion_sample"`
	Color        params.Value[mgl32.Vec3] `fx:"color"`
}

func DefaultBrushParams() BrushParams {
	return BrushParams{
		Radius:       0.05,
		Dissipation:  1,
		MotionSample: 5,
		Color:        params.Literal(mgl32.Vec3{1, 1, 1}),
	}
}

// Brush paints the pointer stroke into a feedback buffer.
type Brush struct {
	*base
	store   *params.Store[BrushParams]
	tracker pointer.Tracker
	paint   *gpu.Material
	canvas  *target.PingPong
}

func NewBrush(device gpu.Device, cfg Config) (*Brush, error) {
	fx := &Brush{base: newBase("brush", device, cfg, false)}
	fx.store = params.NewStore(DefaultBrushParams(), fx.logger)
	var err error
	if fx.paint, err = fx.material(shaders.Brush); err != nil {
		fx.Destroy()
		return nil, err
	}
	w, h := cfg.pixels()
	if fx.canvas, err = fx.pool.AcquireDoubleBuffer(w, h); err != nil {
		fx.Destroy()
		return nil, err
	}
	fx.paint.Uniforms.SetFloat("uAspect", float32(w)/float32(h))
	fx.paint.Uniforms.SetVec2("uResolution", mgl32.Vec2{float32(w), float32(h)})
	return fx, nil
}

func (fx *Brush) Params() BrushParams { return fx.store.Get() }

func (fx *Brush) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Brush) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	defer f.begin(fx.name)()
	patch(fx.store, p)
	prm := fx.store.Get()
	ptr := fx.tracker.Sample(f.Pointer, pointerTime(f))

	return fx.pingPong(f, fx.canvas, fx.paint, func(u *gpu.Uniforms, in target.PassInputs) {
		u.SetTexture("uMap", in.Read)
		u.SetTexture("uTexture", prm.Texture)
		u.SetFloat("uRadius", prm.Radius)
		u.SetFloat("uSmudge", prm.Smudge)
		u.SetFloat("uDissipation", prm.Dissipation)
		u.SetFloat("uMotionBlur", prm.MotionBlur)
		u.SetInt("uMotionSample", int32(prm.MotionSample))
		u.SetVec3("uColor", prm.Color.Resolve(ptr.Velocity))
		u.SetVec2("uMouse", ptr.Current)
		u.SetVec2("uPrevMouse", ptr.Previous)
		u.SetVec2("uVelocity", ptr.Velocity)
	})
}
