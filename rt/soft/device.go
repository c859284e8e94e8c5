// Package soft is a CPU implementation of gpu.Device. Every kernel has a Go
// twin that mirrors its WGSL fragment, which lets effects run headless.
package soft

import (
	"fmt"
	"sync"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type texture struct {
	id     uuid.UUID
	width  int
	height int
	pix    []float32
}

func newTexture(width, height int) *texture {
	return &texture{id: uuid.New(), width: width, height: height, pix: make([]float32, width*height*4)}
}

func (t *texture) ID() uuid.UUID             { return t.id }
func (t *texture) Size() (width, height int) { return t.width, t.height }

func (t *texture) at(x, y int) mgl32.Vec4 {
	if x < 0 {
		x = 0
	} else if x >= t.width {
		x = t.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.height {
		y = t.height - 1
	}
	i := (y*t.width + x) * 4
	return mgl32.Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *texture) set(x, y int, c mgl32.Vec4) {
	i := (y*t.width + x) * 4
	copy(t.pix[i:i+4], c[:])
}

type target struct {
	device   *Device
	desc     gpu.TargetDescriptor
	tex      *texture
	released bool
}

func (t *target) Texture() gpu.Texture             { return t.tex }
func (t *target) Size() (int, int)                 { return t.desc.Width, t.desc.Height }
func (t *target) Descriptor() gpu.TargetDescriptor { return t.desc }
func (t *target) Released() bool                   { return t.released }

func (t *target) SetSize(width, height int) error {
	if t.released {
		return gpu.ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if width == t.desc.Width && height == t.desc.Height {
		return nil
	}
	id := t.tex.id
	t.tex = newTexture(width, height)
	t.tex.id = id
	t.desc.Width, t.desc.Height = width, height
	return nil
}

func (t *target) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.device != nil {
		t.device.mu.Lock()
		t.device.live--
		t.device.mu.Unlock()
	}
}

type program struct {
	kernel   shaders.Kernel
	shader   Shader
	released bool
}

func (p *program) Kernel() shaders.Kernel { return p.kernel }
func (p *program) Release()               { p.released = true }

// Device renders on the CPU. The default destination is a screen buffer of
// the size given to NewDevice.
type Device struct {
	mu      sync.Mutex
	screen  *target
	current *target
	draws   map[string]int
	live    int
}

var _ gpu.Device = (*Device)(nil)

func NewDevice(screenWidth, screenHeight int) *Device {
	return &Device{
		screen: &target{
			desc: gpu.TargetDescriptor{Label: "screen", Width: screenWidth, Height: screenHeight, Format: gpu.TextureFormatRGBA8Unorm},
			tex:  newTexture(screenWidth, screenHeight),
		},
		draws: make(map[string]int),
	}
}

// Screen is the default destination.
func (d *Device) Screen() gpu.RenderTarget {
	return d.screen
}

func (d *Device) CreateRenderTarget(desc gpu.TargetDescriptor) (gpu.RenderTarget, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", desc.Width, desc.Height)
	}
	d.mu.Lock()
	d.live++
	d.mu.Unlock()
	return &target{device: d, desc: desc, tex: newTexture(desc.Width, desc.Height)}, nil
}

// LiveTargets is the number of render targets created and not yet released.
func (d *Device) LiveTargets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *Device) CreateTexture(width, height int, pixels []float32) (gpu.Texture, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("texture %dx%d needs %d floats, got %d", width, height, width*height*4, len(pixels))
	}
	t := newTexture(width, height)
	copy(t.pix, pixels)
	return t, nil
}

func (d *Device) CreateProgram(kernel shaders.Kernel) (gpu.Program, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	shader, ok := Shaders[kernel.Name]
	if !ok {
		return nil, fmt.Errorf("no software shader for kernel %s", kernel.Name)
	}
	return &program{kernel: kernel, shader: shader}, nil
}

func unwrap(rt gpu.RenderTarget) (*target, bool) {
	t, ok := rt.(*target)
	return t, ok && t != nil
}

func (d *Device) SetRenderTarget(rt gpu.RenderTarget) {
	if rt == nil {
		d.current = nil
		return
	}
	t, ok := unwrap(rt)
	if !ok {
		panic(fmt.Sprintf("soft device cannot bind %T", rt))
	}
	d.current = t
}

func (d *Device) RenderTarget() gpu.RenderTarget {
	if d.current == nil {
		return nil
	}
	return d.current
}

// Draws reports how many draws were made with the named kernel.
func (d *Device) Draws(kernel string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws[kernel]
}

func (d *Device) ResetCounters() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = make(map[string]int)
}

func (d *Device) Draw(prog gpu.Program, uniforms *gpu.Uniforms, opts gpu.DrawOptions) error {
	p, ok := prog.(*program)
	if !ok || p.released {
		return gpu.ErrReleased
	}
	dst := d.current
	if dst == nil {
		dst = d.screen
	}
	if dst.released {
		return gpu.ErrReleased
	}
	if uniforms.Samples(dst.tex) {
		return gpu.ErrFeedbackLoop
	}
	for _, t := range uniforms.Textures() {
		if t == nil {
			continue
		}
		if _, ok := t.(*texture); !ok {
			return fmt.Errorf("soft device cannot sample %T", t)
		}
	}

	d.mu.Lock()
	d.draws[p.kernel.Name]++
	d.mu.Unlock()

	out := dst.tex
	if !opts.Load {
		for i := 0; i < len(out.pix); i += 4 {
			copy(out.pix[i:i+4], opts.ClearColor[:])
		}
	}

	frag := &Fragment{U: uniforms}
	place := fullscreen
	if p.kernel.Vertex == shaders.VertexRect {
		place = rect(uniforms)
	}
	w, h := out.width, out.height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ndc := mgl32.Vec2{(float32(x)+0.5)/float32(w)*2 - 1, (float32(y)+0.5)/float32(h)*2 - 1}
			uv, inside := place(ndc)
			if !inside {
				continue
			}
			frag.UV = uv
			src := p.shader(frag)
			out.set(x, y, blend(opts.Blend, src, out.at(x, y)))
		}
	}
	return nil
}

func blend(mode gpu.BlendMode, src, dst mgl32.Vec4) mgl32.Vec4 {
	a := src[3]
	switch mode {
	case gpu.BlendAdditive:
		return dst.Add(src.Mul(a))
	case gpu.BlendAlpha:
		rgb := src.Vec3().Mul(a).Add(dst.Vec3().Mul(1 - a))
		return mgl32.Vec4{rgb[0], rgb[1], rgb[2], a + dst[3]*(1-a)}
	}
	return src
}

func fullscreen(ndc mgl32.Vec2) (mgl32.Vec2, bool) {
	return ndc.Mul(0.5).Add(mgl32.Vec2{0.5, 0.5}), true
}

// rect inverts the rect vertex placement: NDC back to quad space.
func rect(u *gpu.Uniforms) func(mgl32.Vec2) (mgl32.Vec2, bool) {
	r := u.Vec4("u_rect")
	rotation := u.Float("u_rotation")
	viewport := u.Vec2("u_viewport")
	c, s := cos(-rotation), sin(-rotation)
	return func(ndc mgl32.Vec2) (mgl32.Vec2, bool) {
		if r[2] <= 0 || r[3] <= 0 {
			return mgl32.Vec2{}, false
		}
		dx := (ndc[0] - r[0]) * viewport[0] * 0.5
		dy := (ndc[1] - r[1]) * viewport[1] * 0.5
		qx := (dx*c - dy*s) / r[2]
		qy := (dx*s + dy*c) / r[3]
		if qx < -1 || qx > 1 || qy < -1 || qy > 1 {
			return mgl32.Vec2{}, false
		}
		return mgl32.Vec2{qx*0.5 + 0.5, qy*0.5 + 0.5}, true
	}
}

func (d *Device) ReadPixels(rt gpu.RenderTarget) ([]float32, error) {
	t, ok := unwrap(rt)
	if !ok || t.released {
		return nil, gpu.ErrReleased
	}
	out := make([]float32, len(t.tex.pix))
	copy(out, t.tex.pix)
	return out, nil
}

func (d *Device) WritePixels(rt gpu.RenderTarget, pixels []float32) error {
	t, ok := unwrap(rt)
	if !ok || t.released {
		return gpu.ErrReleased
	}
	if len(pixels) != len(t.tex.pix) {
		return fmt.Errorf("target %dx%d needs %d floats, got %d", t.tex.width, t.tex.height, len(t.tex.pix), len(pixels))
	}
	copy(t.tex.pix, pixels)
	return nil
}
