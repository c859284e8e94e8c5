package shaderfx

import (
	"testing"
	"time"

	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFluidStillPointerAddsNoEnergy(t *testing.T) {
	d := soft.NewDevice(16, 16)
	fx, err := NewFluid(d, testConfig(16, 16))
	require.NoError(t, err)
	defer fx.Destroy()

	f := testFrame(d, 16, 16)
	for i := 0; i < 5; i++ {
		advance(f, mgl32.Vec2{0.2, -0.3})
		out, err := fx.Update(f, nil)
		require.NoError(t, err)
		require.NotNil(t, out)
	}
	assert.Equal(t, 0, d.Draws("splat"))
	// Advection writes alpha 1, so only color channels carry energy.
	assert.Zero(t, maxAbsRGB(readTexture(t, d, fx.Targets().Density.Read())))
	assert.Zero(t, maxAbsRGB(readTexture(t, d, fx.Targets().Velocity.Read())))
}

func TestFluidSplatsOnMovement(t *testing.T) {
	d := soft.NewDevice(16, 16)
	fx, err := NewFluid(d, testConfig(16, 16))
	require.NoError(t, err)
	defer fx.Destroy()

	f := testFrame(d, 16, 16)
	advance(f, mgl32.Vec2{0, 0})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)

	advance(f, mgl32.Vec2{0.1, 0})
	_, err = fx.Update(f, params.Patch{"fluid_color": mgl32.Vec3{1, 0, 0}})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Draws("splat"))
	density := readTexture(t, d, fx.Targets().Density.Read())
	assert.Greater(t, maxAbs(density), float32(0.1))
	for i := 0; i < len(density); i += 4 {
		assert.Zero(t, density[i+1], "green stays empty")
	}
}

func TestFluidPassCount(t *testing.T) {
	d := soft.NewDevice(8, 8)
	fx, err := NewFluid(d, testConfig(8, 8))
	require.NoError(t, err)
	defer fx.Destroy()

	f := testFrame(d, 8, 8)
	advance(f, mgl32.Vec2{})
	_, err = fx.Update(f, params.Patch{"pressure_iterations": 4})
	require.NoError(t, err)

	// two advections, curl, vorticity, divergence, clear, iterations, gradient
	assert.Equal(t, 2+1+1+1+1+4+1, f.Profiler.Counts["fluid.passes"])
	assert.Equal(t, 4, d.Draws("pressure"))
}

func TestFluidStep(t *testing.T) {
	d := soft.NewDevice(8, 8)
	fx, err := NewFluid(d, testConfig(8, 8))
	require.NoError(t, err)
	defer fx.Destroy()

	c := NewManualClock()
	c.Advance(time.Second)
	assert.Zero(t, fx.step(c), "first frame")

	c.Advance(30 * time.Millisecond)
	assert.InDelta(t, 0.01, fx.step(c), 1e-6)

	c.Advance(time.Second)
	assert.Equal(t, float32(maxFluidStep), fx.step(c))
}

func TestFluidComputedColor(t *testing.T) {
	d := soft.NewDevice(8, 8)
	fx, err := NewFluid(d, testConfig(8, 8))
	require.NoError(t, err)
	defer fx.Destroy()

	var seen mgl32.Vec2
	err = fx.SetParams(params.Patch{"fluid_color": func(v mgl32.Vec2) mgl32.Vec3 {
		seen = v
		return mgl32.Vec3{v.Len(), 0, 0}
	}})
	require.NoError(t, err)
	assert.True(t, fx.Params().FluidColor.IsComputed())

	f := testFrame(d, 8, 8)
	advance(f, mgl32.Vec2{})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	advance(f, mgl32.Vec2{0.16, 0})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, seen.X(), 1e-6)
}

func TestFluidDestroy(t *testing.T) {
	d := soft.NewDevice(8, 8)
	fx, err := NewFluid(d, testConfig(8, 8))
	require.NoError(t, err)
	assert.Equal(t, 8, d.LiveTargets())

	fx.Destroy()
	fx.Destroy()
	assert.Equal(t, 0, d.LiveTargets())

	_, err = fx.Update(testFrame(d, 8, 8), nil)
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestFluidSplatForceUsesLayoutSize(t *testing.T) {
	delta := mgl32.Vec2{0.1, -0.05}
	assert.Equal(t, mgl32.Vec2{10, -2.5}, splatForce(delta, pointer.Size{Width: 100, Height: 50}, 1))
	assert.Equal(t, mgl32.Vec2{100, -25}, splatForce(delta, pointer.Size{Width: 100, Height: 50}, 10))

	// A high-DPR fluid still splats with the layout size, not its buffer size.
	d := soft.NewDevice(16, 16)
	cfg := testConfig(16, 16)
	cfg.DPR = 2
	fx, err := NewFluid(d, cfg)
	require.NoError(t, err)
	defer fx.Destroy()
	w, h := fx.Targets().Velocity.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 32, h)

	f := testFrame(d, 16, 16)
	f.DPR = 2
	advance(f, mgl32.Vec2{0, 0})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	f.Size = pointer.Size{Width: 40, Height: 20}
	advance(f, mgl32.Vec2{0.1, 0})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Draws("splat"))
}
