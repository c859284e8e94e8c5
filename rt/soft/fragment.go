package soft

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Fragment is the per-pixel input of a Shader.
type Fragment struct {
	UV mgl32.Vec2
	U  *gpu.Uniforms
}

// Shader computes one output color.
type Shader func(f *Fragment) mgl32.Vec4

// Sample reads a texture slot with bilinear filtering and clamp-to-edge
// addressing. uv has its origin at the bottom left. Unbound slots read zero.
func (f *Fragment) Sample(slot string, uv mgl32.Vec2) mgl32.Vec4 {
	t, _ := f.U.Texture(slot).(*texture)
	if t == nil {
		return mgl32.Vec4{}
	}
	return t.bilinear(uv)
}

func (t *texture) bilinear(uv mgl32.Vec2) mgl32.Vec4 {
	fx := clamp(uv[0], 0, 1)*float32(t.width) - 0.5
	fy := clamp(uv[1], 0, 1)*float32(t.height) - 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := fx - x0
	ty := fy - y0
	ix, iy := int(x0), int(y0)
	a := t.at(ix, iy)
	b := t.at(ix+1, iy)
	c := t.at(ix, iy+1)
	d := t.at(ix+1, iy+1)
	return mix4(mix4(a, b, tx), mix4(c, d, tx), ty)
}

func sin(x float32) float32 { return math32.Sin(x) }
func cos(x float32) float32 { return math32.Cos(x) }

func clamp(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}

func fract(x float32) float32 { return x - math32.Floor(x) }

func glslMod(x, y float32) float32 { return x - y*math32.Floor(x/y) }

func mix(a, b, t float32) float32 { return a*(1-t) + b*t }

func mix3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func mix4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

func smoothstep(e0, e1, x float32) float32 {
	t := clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func boundary(uv mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{clamp(uv[0], 0, 1), clamp(uv[1], 0, 1)}
}

func mulVec2(a, b mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{a[0] * b[0], a[1] * b[1]} }
func divVec2(a, b mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{a[0] / b[0], a[1] / b[1]} }

func abs2(v mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{math32.Abs(v[0]), math32.Abs(v[1])} }

func vec4(rgb mgl32.Vec3, a float32) mgl32.Vec4 { return mgl32.Vec4{rgb[0], rgb[1], rgb[2], a} }
