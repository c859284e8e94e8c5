package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct{ id uuid.UUID }

func (f fakeTexture) ID() uuid.UUID    { return f.id }
func (f fakeTexture) Size() (int, int) { return 1, 1 }

func f32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestPackFollowsUniformLayout(t *testing.T) {
	// float at 0, vec3 aligned to 16, vec2 aligned to 8 after the vec3, float.
	u := NewUniforms(shaders.Splat)
	u.SetFloat("aspectRatio", 1.5)
	u.SetVec3("color", mgl32.Vec3{1, 2, 3})
	u.SetVec2("point", mgl32.Vec2{4, 5})
	u.SetFloat("radius", 6)
	u.SetVec2("texelSize", mgl32.Vec2{7, 8})

	buf := u.Pack()
	require.Len(t, buf, 64)
	assert.Equal(t, float32(1.5), f32At(buf, 0))
	assert.Equal(t, float32(1), f32At(buf, 16))
	assert.Equal(t, float32(2), f32At(buf, 20))
	assert.Equal(t, float32(3), f32At(buf, 24))
	// vec2 cannot fit in the vec3 tail, so it starts at the next 8-byte boundary.
	assert.Equal(t, float32(4), f32At(buf, 32))
	assert.Equal(t, float32(5), f32At(buf, 36))
	assert.Equal(t, float32(6), f32At(buf, 40))
	assert.Equal(t, float32(7), f32At(buf, 48))
	assert.Equal(t, float32(8), f32At(buf, 52))
	assert.Equal(t, 64, PackedSize(shaders.Splat))
}

func TestPackIntsAndBools(t *testing.T) {
	u := NewUniforms(shaders.Brush)
	u.SetInt("uMotionSample", 5)
	buf := u.Pack()
	assert.Equal(t, 0, len(buf)%16)
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(buf[len(buf)-16:]))

	c := NewUniforms(shaders.ColorStrata)
	c.SetBool("isTexture", true)
	buf = c.Pack()
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[4:]))
}

func TestUniformsPanicOnMisuse(t *testing.T) {
	u := NewUniforms(shaders.Curl)
	assert.Panics(t, func() { u.SetFloat("missing", 1) })
	assert.Panics(t, func() { u.SetFloat("texelSize", 1) })
	assert.NotPanics(t, func() { u.SetVec2("texelSize", mgl32.Vec2{1, 1}) })
}

func TestSamples(t *testing.T) {
	a := fakeTexture{uuid.New()}
	b := fakeTexture{uuid.New()}
	u := NewUniforms(shaders.Vorticity)
	u.SetTexture("uVelocity", a)

	assert.True(t, u.Samples(a))
	assert.False(t, u.Samples(b))
	assert.False(t, u.Samples(nil))
	assert.Equal(t, []Texture{a, nil}, u.Textures())
}
