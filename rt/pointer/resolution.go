package pointer

import "github.com/go-gl/mathgl/mgl32"

// Size is a viewport size in CSS-like pixels.
type Size struct {
	Width  float32
	Height float32
}

// Resolution scales size by dpr. A dpr of zero leaves the size unscaled.
func Resolution(size Size, dpr float32) mgl32.Vec2 {
	if dpr == 0 {
		return mgl32.Vec2{size.Width, size.Height}
	}
	return mgl32.Vec2{size.Width * dpr, size.Height * dpr}
}

// Pixels rounds a resolution to whole pixels, at least 1x1.
func Pixels(res mgl32.Vec2) (width, height int) {
	width, height = int(res[0]+0.5), int(res[1]+0.5)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Resolver memoises Resolution on its inputs. The returned vector is stable
// until the inputs change.
type Resolver struct {
	valid bool
	size  Size
	dpr   float32
	res   mgl32.Vec2
}

func (r *Resolver) Resolve(size Size, dpr float32) mgl32.Vec2 {
	if r.valid && r.size == size && r.dpr == dpr {
		return r.res
	}
	r.valid, r.size, r.dpr = true, size, dpr
	r.res = Resolution(size, dpr)
	return r.res
}

// Changed reports whether the next Resolve with these inputs would recompute.
func (r *Resolver) Changed(size Size, dpr float32) bool {
	return !r.valid || r.size != size || r.dpr != dpr
}
