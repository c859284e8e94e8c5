package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/target"
	"github.com/go-gl/mathgl/mgl32"
)

// Rect is a layout box in viewport pixels, origin top-left.
type Rect struct {
	Left, Top, Width, Height float32
}

func (r Rect) intersects(viewport mgl32.Vec2) bool {
	return r.Width > 0 && r.Height > 0 &&
		r.Left < viewport[0] && r.Left+r.Width > 0 &&
		r.Top < viewport[1] && r.Top+r.Height > 0
}

// Element is anything laid out on the page that a texture follows.
type Element interface {
	Rect() Rect
}

// StaticElement is an Element with a fixed rect.
type StaticElement Rect

func (e StaticElement) Rect() Rect { return Rect(e) }

type DomSyncerParams struct {
	Textures     []gpu.Texture `fx:"texture"`
	Elements     []Element     `fx:"dom"`
	Resolutions  []mgl32.Vec2  `fx:"resolution"`
	BorderRadius []float32     `fx:"border_radius"`
	// Rotation is the z rotation of each quad in radians.
	Rotation []float32 `fx:"rotation"`
	// OnIntersect[i] is called when element i enters or leaves the viewport.
	OnIntersect []func(intersecting bool) `fx:"on_intersect"`
}

func DefaultDomSyncerParams() DomSyncerParams {
	return DomSyncerParams{}
}

// AllElements makes IsIntersecting report on every element.
const AllElements = -1

// DomSyncer draws one textured quad per element, positioned over the element.
// Its target follows the viewport size.
type DomSyncer struct {
	*singlePass
	store        *params.Store[DomSyncerParams]
	rects        []Rect
	intersecting []bool
	seen         []bool
}

func NewDomSyncer(device gpu.Device, cfg Config) (*DomSyncer, error) {
	sp, err := newSinglePass("dom_syncer", device, cfg, true, shaders.DomSyncer)
	if err != nil {
		return nil, err
	}
	return &DomSyncer{singlePass: sp, store: params.NewStore(DefaultDomSyncerParams(), sp.logger)}, nil
}

func (fx *DomSyncer) Params() DomSyncerParams        { return fx.store.Get() }
func (fx *DomSyncer) SetParams(p params.Patch) error { return fx.store.Update(p) }

// Rects are the element rects sampled by the last Update.
func (fx *DomSyncer) Rects() []Rect { return fx.rects }

// IsIntersecting reports whether element index (or every element, for
// AllElements) was in the viewport at the last Update. With once set, a true
// result is returned only the first time it is observed.
func (fx *DomSyncer) IsIntersecting(index int, once bool) bool {
	check := func(i int) bool {
		if i < 0 || i >= len(fx.intersecting) || !fx.intersecting[i] {
			return false
		}
		if !once {
			return true
		}
		if fx.seen[i] {
			return false
		}
		fx.seen[i] = true
		return true
	}
	if index != AllElements {
		return check(index)
	}
	if len(fx.intersecting) == 0 {
		return false
	}
	for i := range fx.intersecting {
		if !fx.intersecting[i] || (once && fx.seen[i]) {
			return false
		}
	}
	for i := range fx.intersecting {
		check(i)
	}
	return true
}

func (fx *DomSyncer) validate(prm DomSyncerParams) error {
	n := len(prm.Elements)
	if n == 0 || len(prm.Textures) == 0 || len(prm.Resolutions) == 0 {
		return preconditionf(fx.name, "no dom, texture or resolution is set")
	}
	if len(prm.Textures) != n || len(prm.Resolutions) != n {
		return preconditionf(fx.name, "dom (%d), texture (%d) and resolution (%d) lengths differ",
			n, len(prm.Textures), len(prm.Resolutions))
	}
	for i := 0; i < n; i++ {
		if prm.Elements[i] == nil {
			return &ResourceError{Effect: fx.name, Resource: "dom", Index: i}
		}
		if prm.Textures[i] == nil {
			return &ResourceError{Effect: fx.name, Resource: "texture", Index: i}
		}
	}
	return nil
}

// observe samples every element rect and fires OnIntersect on changes.
func (fx *DomSyncer) observe(prm DomSyncerParams, viewport mgl32.Vec2) {
	n := len(prm.Elements)
	if len(fx.intersecting) != n {
		fx.intersecting = make([]bool, n)
		fx.seen = make([]bool, n)
		fx.rects = make([]Rect, n)
	}
	for i, el := range prm.Elements {
		fx.rects[i] = el.Rect()
		in := fx.rects[i].intersects(viewport)
		if in != fx.intersecting[i] && i < len(prm.OnIntersect) && prm.OnIntersect[i] != nil {
			prm.OnIntersect[i](in)
		}
		fx.intersecting[i] = in
	}
}

func (fx *DomSyncer) Update(f *Frame, p params.Patch) (gpu.Texture, error) {
	if err := fx.begin(f); err != nil {
		return nil, err
	}
	defer f.begin(fx.name)()
	patch(fx.store, p)
	prm := fx.store.Get()
	if err := fx.validate(prm); err != nil {
		return nil, err
	}

	viewport := mgl32.Vec2{f.Size.Width, f.Size.Height}
	fx.observe(prm, viewport)

	drawn := 0
	for i, r := range fx.rects {
		if !fx.intersecting[i] {
			continue
		}
		center := mgl32.Vec2{
			(r.Left + r.Width/2 - viewport[0]/2) / (viewport[0] / 2),
			(-r.Top - r.Height/2 + viewport[1]/2) / (viewport[1] / 2),
		}
		var radius, rotation float32
		if i < len(prm.BorderRadius) {
			radius = prm.BorderRadius[i]
		}
		if i < len(prm.Rotation) {
			rotation = prm.Rotation[i]
		}
		opts := target.PassOptions{Blend: gpu.BlendAlpha, Load: drawn > 0}
		if _, err := fx.pass(f, fx.output, fx.filter, func(u *gpu.Uniforms, _ target.PassInputs) {
			u.SetTexture("u_texture", prm.Textures[i])
			u.SetVec2("u_textureResolution", prm.Resolutions[i])
			u.SetVec2("u_resolution", mgl32.Vec2{r.Width, r.Height})
			u.SetFloat("u_borderRadius", radius)
			u.SetVec4("u_rect", mgl32.Vec4{center[0], center[1], r.Width / 2, r.Height / 2})
			u.SetFloat("u_rotation", rotation)
			u.SetVec2("u_viewport", viewport)
		}, opts); err != nil {
			return nil, err
		}
		drawn++
	}
	if drawn == 0 {
		if _, err := fx.pass(f, fx.output, fx.filter, func(u *gpu.Uniforms, _ target.PassInputs) {
			u.SetVec4("u_rect", mgl32.Vec4{})
			u.SetVec2("u_viewport", viewport)
		}); err != nil {
			return nil, err
		}
	}
	return fx.output.Texture(), nil
}
