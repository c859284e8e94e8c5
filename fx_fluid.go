package shaderfx

import (
	"time"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/go-gl/mathgl/mgl32"
)

type FluidParams struct {
	DensityDissipation   float32                  `fx:"density_dissipation"`
	VelocityDissipation  float32                  `fx:"velocity_dissipation"`
	VelocityAcceleration float32                  `fx:"velocity_acceleration"`
	PressureDissipation  float32                  `fx:"pressure_dissipation"`
	PressureIterations   int                      `fx:"pressure_iterations"`
	CurlStrength         float32                  `fx:"curl_strength"`
	SplatRadius          float32                  `fx:"splat_radius"`
	FluidColor           params.Value[mgl32.Vec3] `fx:"fluid_color"`
}

func DefaultFluidParams() FluidParams {
	return FluidParams{
		DensityDissipation:   0.98,
		VelocityDissipation:  0.99,
		VelocityAcceleration: 10,
		PressureDissipation:  0.9,
		PressureIterations:   20,
		CurlStrength:         35,
		SplatRadius:          0.002,
		FluidColor:           params.Literal(mgl32.Vec3{1, 1, 1}),
	}
}

// maxFluidStep caps the integration step in seconds.
const maxFluidStep = 0.02

// FluidTargets are the simulation buffers.
type FluidTargets struct {
	Velocity   *target.PingPong
	Density    *target.PingPong
	Curl       *target.Single
	Divergence *target.Single
	Pressure   *target.PingPong
}

// Fluid is a semi-Lagrangian incompressible solver stirred by the pointer.
// The output is the density field.
type Fluid struct {
	*base
	store   *params.Store[FluidParams]
	tracker pointer.Tracker
	targets FluidTargets

	advection, splat, curl, vorticity, divergence, clear, pressure, gradient *gpu.Material

	lastElapsed time.Duration
	started     bool
}

func NewFluid(device gpu.Device, cfg Config) (*Fluid, error) {
	fx := &Fluid{base: newBase("fluid", device, cfg, false)}
	fx.store = params.NewStore(DefaultFluidParams(), fx.logger)
	if err := fx.init(cfg); err != nil {
		fx.Destroy()
		return nil, err
	}
	return fx, nil
}

func (fx *Fluid) init(cfg Config) error {
	ms, err := fx.materialsFor(
		shaders.Advection, shaders.Splat, shaders.Curl, shaders.Vorticity,
		shaders.Divergence, shaders.Clear, shaders.Pressure, shaders.GradientSubtract,
	)
	if err != nil {
		return err
	}
	fx.advection, fx.splat, fx.curl, fx.vorticity = ms[0], ms[1], ms[2], ms[3]
	fx.divergence, fx.clear, fx.pressure, fx.gradient = ms[4], ms[5], ms[6], ms[7]

	w, h := cfg.pixels()
	texel := mgl32.Vec2{1 / float32(w), 1 / float32(h)}
	for _, m := range ms {
		m.Uniforms.SetVec2("texelSize", texel)
	}
	fx.splat.Uniforms.SetFloat("aspectRatio", float32(w)/float32(h))

	t := &fx.targets
	if t.Velocity, err = fx.pool.AcquireDoubleBuffer(w, h); err != nil {
		return err
	}
	if t.Density, err = fx.pool.AcquireDoubleBuffer(w, h); err != nil {
		return err
	}
	if t.Curl, err = fx.pool.AcquireSingle(w, h); err != nil {
		return err
	}
	if t.Divergence, err = fx.pool.AcquireSingle(w, h); err != nil {
		return err
	}
	t.Pressure, err = fx.pool.AcquireDoubleBuffer(w, h)
	return err
}

func (fx *Fluid) Params() FluidParams { return fx.store.Get() }

// SetParams applies a patch and returns the dropped keys.
func (fx *Fluid) SetParams(p params.Patch) error { return fx.store.Update(p) }

func (fx *Fluid) Targets() FluidTargets { return fx.targets }

// step returns the integration step for this frame. The first frame has dt 0.
func (fx *Fluid) step(c *Clock) float32 {
	if c == nil {
		return 0
	}
	if !fx.started {
		fx.started = true
		fx.lastElapsed = c.Elapsed
	}
	dt := float32((c.Elapsed - fx.lastElapsed).Seconds()) / 3
	fx.lastElapsed = c.Elapsed
	if dt > maxFluidStep {
		dt = maxFluidStep
	}
	return dt
}

func (fx *Fluid) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	defer f.begin(fx.name)()
	patch(fx.store, p)
	prm := fx.store.Get()
	dt := fx.step(f.Clock)
	t := fx.targets

	velocity, err := fx.pingPong(f, t.Velocity, fx.advection, func(u *gpu.Uniforms, in target.PassInputs) {
		u.SetTexture("uVelocity", in.Read)
		u.SetTexture("uSource", in.Read)
		u.SetFloat("dt", dt)
		u.SetFloat("dissipation", prm.VelocityDissipation)
	})
	if err != nil {
		return nil, err
	}
	density, err := fx.pingPong(f, t.Density, fx.advection, func(u *gpu.Uniforms, in target.PassInputs) {
		u.SetTexture("uVelocity", velocity)
		u.SetTexture("uSource", in.Read)
		u.SetFloat("dissipation", prm.DensityDissipation)
	})
	if err != nil {
		return nil, err
	}

	ptr := fx.tracker.Sample(f.Pointer, pointerTime(f))
	if ptr.DidMove {
		force := splatForce(ptr.Delta, f.Size, prm.VelocityAcceleration)
		if _, err = fx.pingPong(f, t.Velocity, fx.splat, func(u *gpu.Uniforms, in target.PassInputs) {
			u.SetTexture("uTarget", in.Read)
			u.SetVec2("point", ptr.Current)
			u.SetVec3("color", mgl32.Vec3{force[0], force[1], 1})
			u.SetFloat("radius", prm.SplatRadius)
		}); err != nil {
			return nil, err
		}
		if density, err = fx.pingPong(f, t.Density, fx.splat, func(u *gpu.Uniforms, in target.PassInputs) {
			u.SetTexture("uTarget", in.Read)
			u.SetVec3("color", prm.FluidColor.Resolve(ptr.Velocity))
		}); err != nil {
			return nil, err
		}
	}

	curl, err := fx.pass(f, t.Curl, fx.curl, func(u *gpu.Uniforms, _ target.PassInputs) {
		u.SetTexture("uVelocity", t.Velocity.Read().Texture())
	})
	if err != nil {
		return nil, err
	}
	if _, err = fx.pingPong(f, t.Velocity, fx.vorticity, func(u *gpu.Uniforms, in target.PassInputs) {
		u.SetTexture("uVelocity", in.Read)
		u.SetTexture("uCurl", curl)
		u.SetFloat("curl", prm.CurlStrength)
		u.SetFloat("dt", dt)
	}); err != nil {
		return nil, err
	}
	divergence, err := fx.pass(f, t.Divergence, fx.divergence, func(u *gpu.Uniforms, _ target.PassInputs) {
		u.SetTexture("uVelocity", t.Velocity.Read().Texture())
	})
	if err != nil {
		return nil, err
	}

	pressure, err := fx.pingPong(f, t.Pressure, fx.clear, func(u *gpu.Uniforms, in target.PassInputs) {
		u.SetTexture("uTexture", in.Read)
		u.SetFloat("value", prm.PressureDissipation)
	})
	if err != nil {
		return nil, err
	}
	fx.pressure.Uniforms.SetTexture("uDivergence", divergence)
	for i := 0; i < prm.PressureIterations; i++ {
		if pressure, err = fx.pingPong(f, t.Pressure, fx.pressure, func(u *gpu.Uniforms, in target.PassInputs) {
			u.SetTexture("uPressure", in.Read)
		}); err != nil {
			return nil, err
		}
	}

	if _, err = fx.pingPong(f, t.Velocity, fx.gradient, func(u *gpu.Uniforms, in target.PassInputs) {
		u.SetTexture("uPressure", pressure)
		u.SetTexture("uVelocity", in.Read)
	}); err != nil {
		return nil, err
	}
	return density, nil
}

// splatForce scales a pointer delta by the viewport size in layout pixels.
func splatForce(delta mgl32.Vec2, size pointer.Size, accel float32) mgl32.Vec2 {
	return mgl32.Vec2{delta[0] * size.Width, delta[1] * size.Height}.Mul(accel)
}

func pointerTime(f *Frame) time.Duration {
	if f.Clock == nil {
		return 0
	}
	return f.Clock.Elapsed
}
