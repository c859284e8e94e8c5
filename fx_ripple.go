package shaderfx

import (
	"math"
	"math/rand"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/go-gl/mathgl/mgl32"
)

type RippleParams struct {
	// Frequency is the pointer travel, in NDC units, that spawns a sprite.
	Frequency    float32 `fx:"frequency"`
	Rotation     float32 `fx:"rotation"`
	FadeoutSpeed float32 `fx:"fadeout_speed"`
	// Scale is added to every visible sprite's scale each frame.
	Scale float32 `fx:"scale"`
	Alpha float32 `fx:"alpha"`
}

func DefaultRippleParams() RippleParams {
	return RippleParams{
		Frequency:    0.01,
		Rotation:     0.05,
		FadeoutSpeed: 0.9,
		Scale:        0.3,
		Alpha:        0.6,
	}
}

// RippleConfig fixes the sprite pool at construction.
type RippleConfig struct {
	Config
	// Texture is the sprite image. Nil draws plain white sprites.
	Texture gpu.Texture
	// Scale is the sprite side in pixels. Zero means 64.
	Scale float32
	// Max is the pool size. Zero means 100.
	Max  int
	Seed int64
}

const rippleMinOpacity = 0.002

type rippleSprite struct {
	visible  bool
	center   mgl32.Vec2
	rotation float32
	scale    float32
	opacity  float32
}

// Ripple stamps fading, growing sprites along the pointer path.
type Ripple struct {
	*base
	store   *params.Store[RippleParams]
	tracker pointer.Tracker
	sprite  *gpu.Material
	output  *target.Single
	texture gpu.Texture
	side    float32
	sprites []rippleSprite
	next    int
}

func NewRipple(device gpu.Device, cfg RippleConfig) (*Ripple, error) {
	fx := &Ripple{base: newBase("ripple", device, cfg.Config, false)}
	fx.store = params.NewStore(DefaultRippleParams(), fx.logger)
	fx.texture = cfg.Texture
	fx.side = cfg.Scale
	if fx.side <= 0 {
		fx.side = 64
	}
	n := cfg.Max
	if n <= 0 {
		n = 100
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	fx.sprites = make([]rippleSprite, n)
	for i := range fx.sprites {
		fx.sprites[i].rotation = 2 * math.Pi * rng.Float32()
	}

	var err error
	if fx.sprite, err = fx.material(shaders.Ripple); err != nil {
		fx.Destroy()
		return nil, err
	}
	w, h := cfg.pixels()
	if fx.output, err = fx.pool.AcquireSingle(w, h); err != nil {
		fx.Destroy()
		return nil, err
	}
	return fx, nil
}

func (fx *Ripple) Params() RippleParams { return fx.store.Get() }

func (fx *Ripple) SetParams(p params.Patch) error { return fx.store.Update(p) }

// Visible is the number of sprites currently drawn.
func (fx *Ripple) Visible() int {
	n := 0
	for _, s := range fx.sprites {
		if s.visible {
			n++
		}
	}
	return n
}

func (fx *Ripple) spawn(ptr pointer.State, prm RippleParams) {
	if ptr.Delta.Len() <= prm.Frequency {
		return
	}
	s := &fx.sprites[fx.next]
	s.visible = true
	s.center = ptr.Current
	s.scale = 0
	s.opacity = prm.Alpha
	fx.next = (fx.next + 1) % len(fx.sprites)
}

func (fx *Ripple) animate(prm RippleParams) {
	for i := range fx.sprites {
		s := &fx.sprites[i]
		if !s.visible {
			continue
		}
		s.rotation += prm.Rotation
		s.opacity *= prm.FadeoutSpeed
		s.scale = prm.FadeoutSpeed*s.scale + prm.Scale
		if s.opacity < rippleMinOpacity {
			s.visible = false
		}
	}
}

func (fx *Ripple) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	defer f.begin(fx.name)()
	patch(fx.store, p)
	prm := fx.store.Get()

	fx.spawn(fx.tracker.Sample(f.Pointer, pointerTime(f)), prm)
	fx.animate(prm)

	viewport := mgl32.Vec2{f.Size.Width, f.Size.Height}
	drawn := 0
	for i := range fx.sprites {
		s := fx.sprites[i]
		if !s.visible {
			continue
		}
		half := fx.side * s.scale / 2
		opts := target.PassOptions{Blend: gpu.BlendAdditive, Load: drawn > 0}
		if _, err := fx.pass(f, fx.output, fx.sprite, func(u *gpu.Uniforms, _ target.PassInputs) {
			u.SetTexture("uTexture", fx.texture)
			u.SetBool("isTexture", fx.texture != nil)
			u.SetFloat("uOpacity", s.opacity)
			u.SetVec4("u_rect", mgl32.Vec4{s.center[0], s.center[1], half, half})
			u.SetFloat("u_rotation", s.rotation)
			u.SetVec2("u_viewport", viewport)
		}, opts); err != nil {
			return nil, err
		}
		drawn++
	}
	if drawn == 0 {
		// Nothing visible: clear with a zero-sized quad.
		if _, err := fx.pass(f, fx.output, fx.sprite, func(u *gpu.Uniforms, _ target.PassInputs) {
			u.SetTexture("uTexture", fx.texture)
			u.SetBool("isTexture", fx.texture != nil)
			u.SetVec4("u_rect", mgl32.Vec4{})
			u.SetVec2("u_viewport", viewport)
		}); err != nil {
			return nil, err
		}
	}
	return fx.output.Texture(), nil
}
