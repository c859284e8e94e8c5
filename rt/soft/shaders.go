package soft

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shaders maps kernel names to their CPU twins.
var Shaders = map[string]Shader{
	"advection":         advection,
	"splat":             splat,
	"curl":              curl,
	"vorticity":         vorticity,
	"divergence":        divergence,
	"clear":             clearShader,
	"pressure":          pressure,
	"gradient_subtract": gradientSubtract,
	"brush":             brush,
	"duotone":           duotone,
	"blending":          blending,
	"fx_blending":       fxBlending,
	"fx_texture":        fxTexture,
	"wave":              wave,
	"noise":             noise,
	"blur":              blur,
	"color_strata":      colorStrata,
	"brightness_picker": brightnessPicker,
	"dom_syncer":        domSyncer,
	"ripple":            ripple,
}

func advection(f *Fragment) mgl32.Vec4 {
	vel := f.Sample("uVelocity", f.UV).Vec2()
	coord := f.UV.Sub(mulVec2(vel.Mul(f.U.Float("dt")), f.U.Vec2("texelSize")))
	c := f.Sample("uSource", coord).Mul(f.U.Float("dissipation"))
	c[3] = 1
	return c
}

func splat(f *Fragment) mgl32.Vec4 {
	n := f.U.Vec2("point").Add(mgl32.Vec2{1, 1}).Mul(0.5)
	p := f.UV.Sub(n)
	p[0] *= f.U.Float("aspectRatio")
	s := f.U.Vec3("color").Mul(math32.Exp(-p.Dot(p) / f.U.Float("radius")))
	base := f.Sample("uTarget", f.UV).Vec3()
	return vec4(base.Add(s), 1)
}

func neighbours(f *Fragment, slot string, clampUV bool) (l, r, t, b mgl32.Vec4) {
	ts := f.U.Vec2("texelSize")
	at := func(o mgl32.Vec2) mgl32.Vec4 {
		uv := f.UV.Add(o)
		if clampUV {
			uv = boundary(uv)
		}
		return f.Sample(slot, uv)
	}
	return at(mgl32.Vec2{-ts[0], 0}), at(mgl32.Vec2{ts[0], 0}), at(mgl32.Vec2{0, ts[1]}), at(mgl32.Vec2{0, -ts[1]})
}

func curl(f *Fragment) mgl32.Vec4 {
	l, r, t, b := neighbours(f, "uVelocity", false)
	v := r[1] - l[1] - t[0] + b[0]
	return mgl32.Vec4{v, 0, 0, 1}
}

func vorticity(f *Fragment) mgl32.Vec4 {
	ts := f.U.Vec2("texelSize")
	t := f.Sample("uCurl", f.UV.Add(mgl32.Vec2{0, ts[1]}))[0]
	b := f.Sample("uCurl", f.UV.Sub(mgl32.Vec2{0, ts[1]}))[0]
	c := f.Sample("uCurl", f.UV)[0]
	force := mgl32.Vec2{math32.Abs(t) - math32.Abs(b), 0}
	force = force.Mul(1 / force.Add(mgl32.Vec2{1e-5, 1e-5}).Len() * f.U.Float("curl") * c)
	vel := f.Sample("uVelocity", f.UV).Vec2().Add(force.Mul(f.U.Float("dt")))
	return mgl32.Vec4{vel[0], vel[1], 0, 1}
}

func sampleVelocity(f *Fragment, uv mgl32.Vec2) mgl32.Vec2 {
	m := mgl32.Vec2{1, 1}
	for i := 0; i < 2; i++ {
		if uv[i] < 0 {
			uv[i], m[i] = 0, -1
		}
		if uv[i] > 1 {
			uv[i], m[i] = 1, -1
		}
	}
	return mulVec2(m, f.Sample("uVelocity", uv).Vec2())
}

func divergence(f *Fragment) mgl32.Vec4 {
	ts := f.U.Vec2("texelSize")
	l := sampleVelocity(f, f.UV.Sub(mgl32.Vec2{ts[0], 0}))[0]
	r := sampleVelocity(f, f.UV.Add(mgl32.Vec2{ts[0], 0}))[0]
	t := sampleVelocity(f, f.UV.Add(mgl32.Vec2{0, ts[1]}))[1]
	b := sampleVelocity(f, f.UV.Sub(mgl32.Vec2{0, ts[1]}))[1]
	return mgl32.Vec4{0.5 * (r - l + t - b), 0, 0, 1}
}

func clearShader(f *Fragment) mgl32.Vec4 {
	return f.Sample("uTexture", f.UV).Mul(f.U.Float("value"))
}

func pressure(f *Fragment) mgl32.Vec4 {
	l, r, t, b := neighbours(f, "uPressure", true)
	div := f.Sample("uDivergence", f.UV)[0]
	return mgl32.Vec4{(l[0] + r[0] + b[0] + t[0] - div) * 0.25, 0, 0, 1}
}

func gradientSubtract(f *Fragment) mgl32.Vec4 {
	l, r, t, b := neighbours(f, "uPressure", true)
	vel := f.Sample("uVelocity", f.UV).Vec2().Sub(mgl32.Vec2{r[0] - l[0], t[0] - b[0]})
	return mgl32.Vec4{vel[0], vel[1], 0, 1}
}

func isOnLine(point, start, end mgl32.Vec2, width, aspect float32) float32 {
	point[0] *= aspect
	start[0] *= aspect
	end[0] *= aspect
	dir := end.Sub(start).Normalize()
	n := mgl32.Vec2{dir[1], -dir[0]}
	p0 := point.Sub(start)
	distToLine := math32.Abs(p0.Dot(n))
	distAlongLine := p0.Dot(dir)
	total := end.Sub(start).Len()
	fromStart := point.Sub(start).Len()
	fromEnd := point.Sub(end).Len()
	if (distToLine < width && distAlongLine > 0 && distAlongLine < total) || fromStart < width || fromEnd < width {
		return 1
	}
	return 0
}

func brush(f *Fragment) mgl32.Vec4 {
	res := f.U.Vec2("uResolution")
	st := f.UV.Mul(2).Sub(mgl32.Vec2{1, 1})
	velocity := mulVec2(f.U.Vec2("uVelocity"), res)

	var smudged mgl32.Vec4
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			off := divVec2(mgl32.Vec2{float32(x), float32(y)}.Mul(f.U.Float("uSmudge")), res)
			smudged = smudged.Add(f.Sample("uMap", f.UV.Add(off)))
		}
	}
	smudged = smudged.Mul(1.0 / 9)

	samples := int(f.U.Int("uMotionSample"))
	blurred := smudged
	scaled := velocity.Mul(f.U.Float("uMotionBlur"))
	for i := 1; i < samples; i++ {
		t := float32(i) / float32(samples-1)
		blurred = blurred.Add(f.Sample("uMap", f.UV.Add(divVec2(scaled.Mul(t), res))))
	}
	if samples < 1 {
		samples = 1
	}
	blurred = blurred.Mul(1 / float32(samples))

	buffer := blurred.Mul(f.U.Float("uDissipation"))
	radius := math32.Max(0, f.U.Float("uRadius"))
	tex := f.Sample("uTexture", f.UV)
	final := mix3(f.U.Vec3("uColor"), tex.Vec3(), tex[3])
	on := isOnLine(st, f.U.Vec2("uPrevMouse"), f.U.Vec2("uMouse"), radius, f.U.Float("uAspect"))
	return vec4(mix3(buffer.Vec3(), final, on), 1)
}

func duotone(f *Fragment) mgl32.Vec4 {
	c := f.Sample("uTexture", f.UV)
	g := c.Vec3().Dot(mgl32.Vec3{0.299, 0.587, 0.114})
	return vec4(mix3(f.U.Vec3("uColor0"), f.U.Vec3("uColor1"), g), c[3])
}

func warpByMap(uv, m mgl32.Vec2, intensity float32) mgl32.Vec2 {
	n := abs2(m.Mul(2).Sub(mgl32.Vec2{1, 1}))
	uv = uv.Mul(2).Sub(mgl32.Vec2{1, 1})
	scale := mgl32.Vec2{mix(1, n[0], intensity), mix(1, n[1], intensity)}
	uv = mulVec2(uv, scale)
	return uv.Add(mgl32.Vec2{1, 1}).Mul(0.5)
}

func blending(f *Fragment) mgl32.Vec4 {
	m := f.Sample("u_map", f.UV).Vec3()
	brightness := m.Dot(f.U.Vec3("u_brightness"))
	uv := warpByMap(f.UV, m.Vec2(), f.U.Float("u_mapIntensity"))
	tex := f.Sample("u_texture", uv)
	b := smoothstep(f.U.Float("u_min"), f.U.Float("u_max"), brightness)
	out := f.U.Vec3("u_color").Mul(b).Add(tex.Vec3().Mul(1 - b))
	return vec4(out, tex[3])
}

func fxBlending(f *Fragment) mgl32.Vec4 {
	m := f.Sample("u_map", f.UV).Vec2()
	return f.Sample("u_texture", warpByMap(f.UV, m, f.U.Float("u_mapIntensity")))
}

func coverRatio(res, texRes mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		math32.Min((res[0]/res[1])/(texRes[0]/texRes[1]), 1),
		math32.Min((res[1]/res[0])/(texRes[1]/texRes[0]), 1),
	}
}

func fxTexture(f *Fragment) mgl32.Vec4 {
	ratio := coverRatio(f.U.Vec2("uResolution"), f.U.Vec2("uTextureResolution"))
	uv := mulVec2(f.UV, ratio).Add(mgl32.Vec2{1 - ratio[0], 1 - ratio[1]}.Mul(0.5))
	m := f.Sample("uMap", uv).Vec2()
	normalized := m.Mul(2).Sub(mgl32.Vec2{1, 1})
	uv = uv.Mul(2).Sub(mgl32.Vec2{1, 1})
	dist := f.U.Vec2("epicenter").Sub(uv).Len()
	uv = mulVec2(uv, m.Mul(dist*f.U.Float("edgeIntensity")).Add(mgl32.Vec2{1, 1}))
	uv = uv.Add(mgl32.Vec2{1, 1}).Mul(0.5)

	padding := f.U.Float("padding")
	if uv[0] < padding || uv[0] > 1-padding || uv[1] < padding || uv[1] > 1-padding {
		return mgl32.Vec4{}
	}
	padded := uv.Mul(1 + 2*padding).Sub(mgl32.Vec2{padding, padding})
	centered := padded.Sub(mgl32.Vec2{0.5, 0.5})
	centered = mulVec2(centered, mulVec2(normalized, m).Mul(f.U.Float("mapIntensity")).Add(mgl32.Vec2{1, 1}))

	progress := f.U.Float("progress")
	dirX, dirY := f.U.Float("dirX"), f.U.Float("dirY")
	p0 := mgl32.Vec2{0.5 - dirX*progress, 0.5 - dirY*progress}.Add(centered)
	p1 := mgl32.Vec2{0.5 + dirX*(1-progress), 0.5 + dirY*(1-progress)}.Add(centered)
	return mix4(f.Sample("uTexture0", p0), f.Sample("uTexture1", p1), progress)
}

func wave(f *Fragment) mgl32.Vec4 {
	progress := math32.Min(f.U.Float("uProgress"), 1)
	pf := sin(progress * math32.Pi)
	border := progress - progress*pf*f.U.Float("uWidth")
	edge := f.U.Float("uStrength") * pf
	center := f.U.Vec2("uEpicenter").Add(mgl32.Vec2{1, 1}).Mul(0.5)

	dist := f.UV.Sub(center).Len()
	switch f.U.Int("uMode") {
	case 1:
		dist = math32.Abs(f.UV[0] - center[0])
	case 2:
		dist = math32.Abs(f.UV[1] - center[1])
	}
	maxDist := float32(0)
	for _, corner := range []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		maxDist = math32.Max(maxDist, corner.Sub(center).Len())
	}
	if maxDist > 0 {
		dist /= maxDist
	}
	v := (smoothstep(border-edge, border, dist) - smoothstep(progress, progress+edge, dist)) * pf
	return mgl32.Vec4{v, v, v, 1}
}

func blur(f *Fragment) mgl32.Vec4 {
	size := f.U.Float("uBlurSize")
	per := divVec2(mgl32.Vec2{size, size}, f.U.Vec2("uResolution"))
	var sum mgl32.Vec4
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			sum = sum.Add(f.Sample("uTexture", f.UV.Add(mulVec2(per, mgl32.Vec2{float32(x), float32(y)}))))
		}
	}
	return sum.Mul(1.0 / 9)
}

func colorStrata(f *Fragment) mgl32.Vec4 {
	texel := f.Sample("uTexture", f.UV)
	pos := f.UV.Mul(f.U.Float("scale"))
	alpha := float32(1)
	if f.U.Bool("isTexture") {
		pos = texel.Vec2()
		alpha = texel[3]
	}
	var nrg mgl32.Vec2
	if f.U.Bool("isNoise") {
		nrg = f.Sample("noise", f.UV).Vec2()
	}
	if alpha < 1e-10 {
		alpha = 0
	}
	var (
		layers   = f.U.Float("laminateLayer")
		interval = f.U.Vec2("laminateInterval")
		detail   = f.U.Vec2("laminateDetail")
		dist     = f.U.Vec2("distortion")
		ns       = f.U.Vec2("noiseStrength")
		ts       = f.U.Vec2("timeStrength")
		tm       = f.U.Float("uTime")
	)
	var col mgl32.Vec3
	for j := 0; j < 3; j++ {
		fj := float32(j)
		for i := float32(1); i < layers; i++ {
			tsin := sin(tm/(i+fj))*ts[0] + nrg[0]*ns[0]
			tcos := cos(tm/(i+fj))*ts[1] + nrg[1]*ns[1]
			pos[0] += interval[0] / (i + fj) * cos(i*dist[0]*pos[1]+tsin+sin(i+fj))
			pos[1] += interval[1] / (i + fj) * cos(i*dist[1]*pos[0]+tcos+sin(i+fj))
		}
		col[j] = sin(pos[0]*pos[0]*detail[0]*detail[0]) + sin(pos[1]*pos[1]*detail[1]*detail[1])
	}
	factor := f.U.Vec3("colorFactor")
	for i := range col {
		col[i] = clamp(col[i]*factor[i]*alpha, 0, 1)
	}
	return vec4(col, alpha)
}

func brightnessPicker(f *Fragment) mgl32.Vec4 {
	c := f.Sample("u_texture", f.UV).Vec3()
	b := c.Dot(f.U.Vec3("u_brightness"))
	return vec4(c, clamp(smoothstep(f.U.Float("u_min"), f.U.Float("u_max"), b), 0, 1))
}

func domSyncer(f *Fragment) mgl32.Vec4 {
	res := f.U.Vec2("u_resolution")
	ratio := coverRatio(res, f.U.Vec2("u_textureResolution"))
	adjusted := mulVec2(f.UV, ratio).Add(mgl32.Vec2{1 - ratio[0], 1 - ratio[1]}.Mul(0.5))
	texel := f.Sample("u_texture", adjusted)

	maxSide := math32.Max(res[0], res[1])
	minSide := math32.Min(res[0], res[1])
	aspect := res.Mul(1 / maxSide)
	a := abs2(f.UV.Sub(mgl32.Vec2{0.5, 0.5}))
	radiusPx := math32.Min(f.U.Float("u_borderRadius"), minSide*0.5)
	off := divVec2(mgl32.Vec2{radiusPx, radiusPx}, res)
	ax := smoothstep(0.5-off[0], 0.5-off[0]-0.001, a[0])
	ay := smoothstep(0.5-off[1], 0.5-off[1]-0.001, a[1])
	alpha := math32.Min(1, ax+ay)

	radius := radiusPx / maxSide
	corner := mulVec2(a.Sub(mgl32.Vec2{0.5, 0.5}), aspect).Add(mgl32.Vec2{radius, radius})
	round := smoothstep(radius+0.001, radius, corner.Len())
	alpha = math32.Min(1, alpha+round) * texel[3]
	return vec4(texel.Vec3(), alpha)
}

func ripple(f *Fragment) mgl32.Vec4 {
	t := mgl32.Vec4{1, 1, 1, 1}
	if f.U.Bool("isTexture") {
		t = f.Sample("uTexture", f.UV)
	}
	t[3] *= f.U.Float("uOpacity")
	return t
}

func rnd(n mgl32.Vec2) float32 {
	d := n.Dot(mgl32.Vec2{0.129898, 0.78233})
	return fract(sin(glslMod(d, math32.Pi)) * 437.585453)
}

func interpolate(a, b, x float32) float32 {
	f := (1 - cos(x*math32.Pi)) * 0.5
	return a*(1-f) + b*f
}

func irnd(p mgl32.Vec2) float32 {
	ix, iy := math32.Floor(p[0]), math32.Floor(p[1])
	fx, fy := p[0]-ix, p[1]-iy
	v0 := rnd(mgl32.Vec2{ix, iy})
	v1 := rnd(mgl32.Vec2{ix + 1, iy})
	v2 := rnd(mgl32.Vec2{ix, iy + 1})
	v3 := rnd(mgl32.Vec2{ix + 1, iy + 1})
	return interpolate(interpolate(v0, v1, fx), interpolate(v2, v3, fx), fy)
}

func octaveNoise(octaves int, p mgl32.Vec2, time float32) float32 {
	var t float32
	for i := 0; i < octaves; i++ {
		freq := math32.Pow(2, float32(i))
		amp := math32.Pow(0.5, float32(octaves-i))
		t += irnd(mgl32.Vec2{p[1]/freq + time, p[0]/freq + time}) * amp
	}
	return t
}

func fbm(f *Fragment, x mgl32.Vec2, time float32) float32 {
	var v float32
	a := float32(0.5)
	c, s := cos(0.5), sin(0.5)
	flip := float32(1)
	octaves := int(f.U.Int("noiseOctaves"))
	for i := 0; i < int(f.U.Int("fbmOctaves")); i++ {
		v += a * octaveNoise(octaves, x, time*flip)
		x = mgl32.Vec2{c*x[0] - s*x[1], s*x[0] + c*x[1]}.Mul(2).Add(mgl32.Vec2{100, 100})
		a *= 0.5
		flip = -flip
	}
	return v
}

func noise(f *Fragment) mgl32.Vec4 {
	p := mulVec2(f.UV, f.U.Vec2("uResolution")).Mul(f.U.Float("scale"))
	g := f.U.Float("warpStrength")
	dir := f.U.Vec2("warpDirection")
	time := f.U.Float("uTime") * f.U.Float("timeStrength")
	var val float32
	for i := 0; i < int(f.U.Int("warpOctaves")); i++ {
		val = fbm(f, p.Add(mgl32.Vec2{cos(dir[0] * val), sin(dir[1] * val)}.Mul(g)), time)
	}
	return mgl32.Vec4{val, val, val, 1}
}
