package soft

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTarget(t *testing.T, d *Device, w, h int) gpu.RenderTarget {
	t.Helper()
	rt, err := d.CreateRenderTarget(gpu.HalfFloatTarget("test", w, h))
	require.NoError(t, err)
	return rt
}

func TestEveryKernelHasAShader(t *testing.T) {
	d := NewDevice(4, 4)
	for _, k := range shaders.All {
		_, err := d.CreateProgram(k)
		assert.NoError(t, err, k.Name)
	}
	_, err := d.CreateProgram(shaders.Kernel{Name: "unknown", Slots: []shaders.Slot{{Name: "a", Kind: shaders.KindFloat}}})
	assert.Error(t, err)
}

func TestCopyPreservesPixels(t *testing.T) {
	d := NewDevice(4, 4)
	src := newTarget(t, d, 4, 3)
	dst := newTarget(t, d, 4, 3)

	pixels := make([]float32, 4*3*4)
	for i := range pixels {
		pixels[i] = float32(i) / 10
	}
	require.NoError(t, d.WritePixels(src, pixels))

	m, err := gpu.NewMaterial(d, shaders.Clear)
	require.NoError(t, err)
	m.Uniforms.SetTexture("uTexture", src.Texture())
	m.Uniforms.SetFloat("value", 1)

	d.SetRenderTarget(dst)
	require.NoError(t, d.Draw(m.Program, m.Uniforms, gpu.DrawOptions{}))

	got, err := d.ReadPixels(dst)
	require.NoError(t, err)
	assert.InDeltaSlice(t, pixels, got, 1e-5)
	assert.Equal(t, 1, d.Draws("clear"))
}

func TestDrawIntoSampledTargetFails(t *testing.T) {
	d := NewDevice(4, 4)
	rt := newTarget(t, d, 4, 4)
	m, err := gpu.NewMaterial(d, shaders.Clear)
	require.NoError(t, err)
	m.Uniforms.SetTexture("uTexture", rt.Texture())

	d.SetRenderTarget(rt)
	assert.ErrorIs(t, d.Draw(m.Program, m.Uniforms, gpu.DrawOptions{}), gpu.ErrFeedbackLoop)
	assert.Equal(t, 0, d.Draws("clear"))
}

func TestReleasedTargetRejectsUse(t *testing.T) {
	d := NewDevice(4, 4)
	rt := newTarget(t, d, 2, 2)
	assert.Equal(t, 1, d.LiveTargets())
	rt.Release()
	rt.Release()
	assert.Equal(t, 0, d.LiveTargets())
	assert.True(t, rt.Released())

	_, err := d.ReadPixels(rt)
	assert.ErrorIs(t, err, gpu.ErrReleased)
	assert.ErrorIs(t, rt.SetSize(4, 4), gpu.ErrReleased)
}

func TestRectPlacementAndAdditiveBlend(t *testing.T) {
	d := NewDevice(8, 8)
	white, err := d.CreateTexture(1, 1, []float32{1, 1, 1, 1})
	require.NoError(t, err)
	rt := newTarget(t, d, 8, 8)

	m, err := gpu.NewMaterial(d, shaders.Ripple)
	require.NoError(t, err)
	m.Uniforms.SetTexture("uTexture", white)
	m.Uniforms.SetFloat("uOpacity", 0.5)
	m.Uniforms.SetVec2("u_viewport", mgl32.Vec2{8, 8})
	// Centered sprite, 2px half extent.
	m.Uniforms.SetVec4("u_rect", mgl32.Vec4{0, 0, 2, 2})

	d.SetRenderTarget(rt)
	require.NoError(t, d.Draw(m.Program, m.Uniforms, gpu.DrawOptions{Blend: gpu.BlendAdditive}))
	require.NoError(t, d.Draw(m.Program, m.Uniforms, gpu.DrawOptions{Blend: gpu.BlendAdditive, Load: true}))

	px, err := d.ReadPixels(rt)
	require.NoError(t, err)
	covered := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r := px[(y*8+x)*4]
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				covered++
				// Two draws of 1 * 0.5 alpha.
				assert.InDelta(t, 1.0, r, 1e-6)
			} else {
				assert.Zero(t, r)
			}
		}
	}
	assert.Equal(t, 16, covered)
}

func TestJacobiIterationsConverge(t *testing.T) {
	const n = 16
	d := NewDevice(n, n)
	div := newTarget(t, d, n, n)
	read := newTarget(t, d, n, n)
	write := newTarget(t, d, n, n)

	pixels := make([]float32, n*n*4)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			pixels[(y*n+x)*4] = math32.Cos(math32.Pi * (float32(x) + 0.5) / n)
		}
	}
	require.NoError(t, d.WritePixels(div, pixels))

	m, err := gpu.NewMaterial(d, shaders.Pressure)
	require.NoError(t, err)
	m.Uniforms.SetVec2("texelSize", mgl32.Vec2{1.0 / n, 1.0 / n})
	m.Uniforms.SetTexture("uDivergence", div.Texture())

	prev, err := d.ReadPixels(read)
	require.NoError(t, err)
	lastNorm := float32(math32.Inf(1))
	for i := 0; i < 20; i++ {
		m.Uniforms.SetTexture("uPressure", read.Texture())
		d.SetRenderTarget(write)
		require.NoError(t, d.Draw(m.Program, m.Uniforms, gpu.DrawOptions{}))
		read, write = write, read

		cur, err := d.ReadPixels(read)
		require.NoError(t, err)
		var sum float32
		for j := 0; j < len(cur); j += 4 {
			diff := cur[j] - prev[j]
			sum += diff * diff
		}
		norm := math32.Sqrt(sum)
		assert.Less(t, norm, lastNorm, "iteration %d", i)
		lastNorm = norm
		prev = cur
	}
	d.SetRenderTarget(nil)
}
