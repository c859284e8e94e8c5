package shaderfx

import (
	"testing"

	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRipple(t *testing.T, d *soft.Device, size float32) *Ripple {
	t.Helper()
	tex := solidTexture(t, d, 4, 4, mgl32.Vec4{1, 1, 1, 1})
	fx, err := NewRipple(d, RippleConfig{Config: testConfig(size, size), Texture: tex, Max: 8, Seed: 1})
	require.NoError(t, err)
	t.Cleanup(fx.Destroy)
	return fx
}

func TestRippleFrequencyUpdate(t *testing.T) {
	d := soft.NewDevice(32, 32)
	fx := newTestRipple(t, d, 32)

	f := testFrame(d, 32, 32)
	_, err := fx.Update(f, params.Patch{"frequency": 0.5})
	require.NoError(t, err)

	p := fx.Params()
	assert.Equal(t, float32(0.5), p.Frequency)
	assert.Equal(t, DefaultRippleParams().Rotation, p.Rotation)
	assert.Equal(t, DefaultRippleParams().Alpha, p.Alpha)

	// Movement below the threshold spawns nothing.
	for _, x := range []float32{0.1, 0.2, 0.3} {
		advance(f, mgl32.Vec2{x, 0})
		_, err = fx.Update(f, nil)
		require.NoError(t, err)
	}
	assert.Zero(t, fx.Visible())

	advance(f, mgl32.Vec2{0.9, 0})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.Visible())
}

func TestRippleUnknownKey(t *testing.T) {
	d := soft.NewDevice(8, 8)
	log := &recordingLogger{}
	tex := solidTexture(t, d, 1, 1, mgl32.Vec4{1, 1, 1, 1})
	fx, err := NewRipple(d, RippleConfig{Config: Config{Size: testConfig(8, 8).Size, Logger: log}, Texture: tex})
	require.NoError(t, err)
	defer fx.Destroy()

	err = fx.SetParams(params.Patch{"nope": 1, "alpha": 0.25})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "nope", cfgErr.Key)
	assert.Equal(t, float32(0.25), fx.Params().Alpha)
	assert.Len(t, log.errors, 1)

	_, err = fx.Update(testFrame(d, 8, 8), params.Patch{"nope": 2})
	assert.NoError(t, err, "dropped keys do not fail the frame")
	assert.Len(t, log.errors, 2)
}

func TestRippleSpriteLifecycle(t *testing.T) {
	d := soft.NewDevice(32, 32)
	fx := newTestRipple(t, d, 32)

	f := testFrame(d, 32, 32)
	for _, x := range []float32{0, 0.2, 0} {
		advance(f, mgl32.Vec2{x, 0})
		_, err := fx.Update(f, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 1, fx.Visible())
	s := fx.sprites[0]
	assert.InDelta(t, 0.6*0.9, s.opacity, 1e-6)
	assert.InDelta(t, 0.3, s.scale, 1e-6)

	pix := readTexture(t, d, fx.output.Target())
	center := ((16 * 32) + 16) * 4
	assert.InDelta(t, 0.54, pix[center], 1e-4)
	assert.Zero(t, pix[0], "corner is outside the sprite")

	// Still pointer: the sprite fades out after enough frames.
	for i := 0; i < 60; i++ {
		advance(f, mgl32.Vec2{0, 0})
		_, err := fx.Update(f, nil)
		require.NoError(t, err)
	}
	assert.Zero(t, fx.Visible())
	assert.Zero(t, maxAbs(readTexture(t, d, fx.output.Target())))
}

func TestRippleRoundRobin(t *testing.T) {
	d := soft.NewDevice(16, 16)
	fx := newTestRipple(t, d, 16)

	f := testFrame(d, 16, 16)
	advance(f, mgl32.Vec2{-0.9, 0})
	_, err := fx.Update(f, nil)
	require.NoError(t, err)
	advance(f, mgl32.Vec2{0.9, 0})
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		x := float32(-0.9)
		if i%2 == 1 {
			x = 0.9
		}
		advance(f, mgl32.Vec2{x, 0})
		_, err = fx.Update(f, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 8, fx.Visible())
	assert.Equal(t, 10%8, fx.next)
}

func TestRipplePlainSprites(t *testing.T) {
	d := soft.NewDevice(32, 32)
	fx, err := NewRipple(d, RippleConfig{Config: testConfig(32, 32), Max: 4, Seed: 1})
	require.NoError(t, err)
	defer fx.Destroy()

	f := testFrame(d, 32, 32)
	for _, x := range []float32{0, 0.2, 0} {
		advance(f, mgl32.Vec2{x, 0})
		_, err := fx.Update(f, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 1, fx.Visible())

	pix := readTexture(t, d, fx.output.Target())
	center := ((16 * 32) + 16) * 4
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 0.54, pix[center+c], 1e-4, "untextured sprites are white")
	}
	assert.Zero(t, pix[0])

	fx.Destroy()
	assert.Zero(t, d.LiveTargets())
}
