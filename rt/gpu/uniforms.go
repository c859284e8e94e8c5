package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

type uniformValue struct {
	slot shaders.Slot
	vec  mgl32.Vec4
	i    int32
	b    bool
	tex  Texture
}

// Uniforms is the slot table of one kernel. Values are mutated in place every
// frame; the table itself never grows or shrinks.
type Uniforms struct {
	kernel shaders.Kernel
	values []uniformValue
	index  map[string]int
}

func NewUniforms(kernel shaders.Kernel) *Uniforms {
	u := &Uniforms{
		kernel: kernel,
		values: make([]uniformValue, len(kernel.Slots)),
		index:  make(map[string]int, len(kernel.Slots)),
	}
	for i, s := range kernel.Slots {
		u.values[i].slot = s
		u.index[s.Name] = i
	}
	return u
}

func (u *Uniforms) Kernel() shaders.Kernel {
	return u.kernel
}

func (u *Uniforms) slot(name string, kind shaders.Kind) *uniformValue {
	i, ok := u.index[name]
	if !ok {
		panic(fmt.Sprintf("kernel %s has no uniform %q", u.kernel.Name, name))
	}
	v := &u.values[i]
	if v.slot.Kind != kind {
		panic(fmt.Sprintf("kernel %s: uniform %q is %s, not %s", u.kernel.Name, name, v.slot.Kind, kind))
	}
	return v
}

func (u *Uniforms) SetFloat(name string, f float32) { u.slot(name, shaders.KindFloat).vec[0] = f }
func (u *Uniforms) SetInt(name string, i int32)     { u.slot(name, shaders.KindInt).i = i }
func (u *Uniforms) SetBool(name string, b bool)     { u.slot(name, shaders.KindBool).b = b }
func (u *Uniforms) SetVec2(name string, v mgl32.Vec2) {
	u.slot(name, shaders.KindVec2).vec = mgl32.Vec4{v[0], v[1], 0, 0}
}
func (u *Uniforms) SetVec3(name string, v mgl32.Vec3) {
	u.slot(name, shaders.KindVec3).vec = mgl32.Vec4{v[0], v[1], v[2], 0}
}
func (u *Uniforms) SetVec4(name string, v mgl32.Vec4) { u.slot(name, shaders.KindVec4).vec = v }

// SetTexture binds a texture. nil binds the device's blank texture.
func (u *Uniforms) SetTexture(name string, t Texture) { u.slot(name, shaders.KindTexture).tex = t }

func (u *Uniforms) Float(name string) float32 { return u.slot(name, shaders.KindFloat).vec[0] }
func (u *Uniforms) Int(name string) int32     { return u.slot(name, shaders.KindInt).i }
func (u *Uniforms) Bool(name string) bool     { return u.slot(name, shaders.KindBool).b }
func (u *Uniforms) Vec2(name string) mgl32.Vec2 {
	return u.slot(name, shaders.KindVec2).vec.Vec2()
}
func (u *Uniforms) Vec3(name string) mgl32.Vec3 {
	return u.slot(name, shaders.KindVec3).vec.Vec3()
}
func (u *Uniforms) Vec4(name string) mgl32.Vec4 { return u.slot(name, shaders.KindVec4).vec }
func (u *Uniforms) Texture(name string) Texture { return u.slot(name, shaders.KindTexture).tex }

// Textures returns the bound textures in binding order.
func (u *Uniforms) Textures() []Texture {
	var out []Texture
	for _, v := range u.values {
		if v.slot.Kind == shaders.KindTexture {
			out = append(out, v.tex)
		}
	}
	return out
}

// Samples reports whether any texture slot currently holds t.
func (u *Uniforms) Samples(t Texture) bool {
	if t == nil {
		return false
	}
	for _, v := range u.values {
		if v.slot.Kind == shaders.KindTexture && v.tex != nil && v.tex.ID() == t.ID() {
			return true
		}
	}
	return false
}

func layoutOf(kind shaders.Kind) (align, size int) {
	switch kind {
	case shaders.KindFloat, shaders.KindInt, shaders.KindBool:
		return 4, 4
	case shaders.KindVec2:
		return 8, 8
	case shaders.KindVec3:
		return 16, 12
	case shaders.KindVec4:
		return 16, 16
	}
	panic(fmt.Sprintf("no uniform layout for %s", kind))
}

func roundUp(align, n int) int {
	return (n + align - 1) / align * align
}

// PackedSize is the byte size of the uniform block, padded to 16 bytes.
func PackedSize(kernel shaders.Kernel) int {
	offset := 0
	for _, s := range kernel.Scalars() {
		align, size := layoutOf(s.Kind)
		offset = roundUp(align, offset) + size
	}
	return roundUp(16, offset)
}

// Pack serialises the non-texture slots following WGSL uniform layout rules.
func (u *Uniforms) Pack() []byte {
	buf := make([]byte, PackedSize(u.kernel))
	offset := 0
	for _, v := range u.values {
		if v.slot.Kind == shaders.KindTexture {
			continue
		}
		align, size := layoutOf(v.slot.Kind)
		offset = roundUp(align, offset)
		switch v.slot.Kind {
		case shaders.KindInt:
			binary.LittleEndian.PutUint32(buf[offset:], uint32(v.i))
		case shaders.KindBool:
			if v.b {
				binary.LittleEndian.PutUint32(buf[offset:], 1)
			}
		default:
			for c := 0; c < size/4; c++ {
				binary.LittleEndian.PutUint32(buf[offset+c*4:], math.Float32bits(v.vec[c]))
			}
		}
		offset += size
	}
	return buf
}

// Material is a compiled kernel plus its slot table, created once per effect.
type Material struct {
	Program  Program
	Uniforms *Uniforms
}

func NewMaterial(device Device, kernel shaders.Kernel) (*Material, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	program, err := device.CreateProgram(kernel)
	if err != nil {
		return nil, fmt.Errorf("compile kernel %s: %w", kernel.Name, err)
	}
	return &Material{Program: program, Uniforms: NewUniforms(kernel)}, nil
}

func (m *Material) Name() string {
	return m.Uniforms.kernel.Name
}

func (m *Material) Release() {
	if m == nil || m.Program == nil {
		return
	}
	m.Program.Release()
	m.Program = nil
}
