package target

import (
	"testing"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyMaterial(t *testing.T, d gpu.Device) *gpu.Material {
	t.Helper()
	m, err := gpu.NewMaterial(d, shaders.Clear)
	require.NoError(t, err)
	m.Uniforms.SetFloat("value", 1)
	return m
}

func TestSwapIsSelfInverse(t *testing.T) {
	d := soft.NewDevice(8, 8)
	pool := NewPool(d, PoolOptions{})
	pair, err := pool.AcquireDoubleBuffer(4, 4)
	require.NoError(t, err)

	read, write := pair.Read(), pair.Write()
	pair.Swap()
	assert.Equal(t, write, pair.Read())
	assert.Equal(t, read, pair.Write())
	pair.Swap()
	assert.Equal(t, read, pair.Read())
	assert.Equal(t, write, pair.Write())
}

func TestDoubleBufferPassParity(t *testing.T) {
	d := soft.NewDevice(8, 8)
	pool := NewPool(d, PoolOptions{})
	pair, err := pool.AcquireDoubleBuffer(4, 4)
	require.NoError(t, err)
	m := copyMaterial(t, d)
	a, b := pair.Read(), pair.Write()

	bind := func(u *gpu.Uniforms, in PassInputs) { u.SetTexture("uTexture", in.Read) }
	for _, n := range []int{1, 2, 3, 6} {
		t.Run("", func(t *testing.T) {
			start := pair.Read()
			for i := 0; i < n; i++ {
				tex, err := RunDoubleBufferPass(d, pair, m, bind)
				require.NoError(t, err)
				assert.Equal(t, pair.Read().Texture(), tex)
			}
			if n%2 == 0 {
				assert.Equal(t, start, pair.Read())
			} else {
				assert.NotEqual(t, start, pair.Read())
			}
		})
	}
	// 12 passes in total.
	assert.Equal(t, a, pair.Read())
	assert.Equal(t, b, pair.Write())
}

func TestPassBindsTargetThenRestoresDefault(t *testing.T) {
	d := soft.NewDevice(8, 8)
	pool := NewPool(d, PoolOptions{})
	dst, err := pool.AcquireSingle(4, 4)
	require.NoError(t, err)
	src, err := pool.AcquireSingle(4, 4)
	require.NoError(t, err)
	m := copyMaterial(t, d)

	var bound gpu.RenderTarget
	tex, err := RunPass(d, dst, m, func(u *gpu.Uniforms, in PassInputs) {
		bound = d.RenderTarget()
		u.SetTexture("uTexture", src.Texture())
	})
	require.NoError(t, err)
	assert.Equal(t, dst.Target(), bound)
	assert.Equal(t, dst.Texture(), tex)
	assert.Nil(t, d.RenderTarget())
}

func TestPassRestoresDefaultOnError(t *testing.T) {
	d := soft.NewDevice(8, 8)
	pool := NewPool(d, PoolOptions{})
	dst, err := pool.AcquireSingle(4, 4)
	require.NoError(t, err)
	m := copyMaterial(t, d)

	_, err = RunPass(d, dst, m, func(u *gpu.Uniforms, in PassInputs) {
		u.SetTexture("uTexture", in.Read)
	})
	assert.ErrorIs(t, err, gpu.ErrFeedbackLoop)
	assert.Nil(t, d.RenderTarget())
}

func TestResizeWithTracking(t *testing.T) {
	d := soft.NewDevice(8, 8)
	m := copyMaterial(t, d)

	tracked := NewPool(d, PoolOptions{TrackSize: true})
	fixed := NewPool(d, PoolOptions{})
	for _, tt := range []struct {
		pool   *Pool
		expect int
	}{{tracked, 50}, {fixed, 100}} {
		single, err := tt.pool.AcquireSingle(100, 100)
		require.NoError(t, err)
		pair, err := tt.pool.AcquireDoubleBuffer(100, 100)
		require.NoError(t, err)
		require.NoError(t, tt.pool.Resize(50, 50))

		tex, err := RunDoubleBufferPass(d, pair, m, func(u *gpu.Uniforms, in PassInputs) {
			u.SetTexture("uTexture", in.Read)
		})
		require.NoError(t, err)
		w, h := tex.Size()
		assert.Equal(t, tt.expect, w)
		assert.Equal(t, tt.expect, h)

		tex, err = RunPass(d, single, m, func(u *gpu.Uniforms, in PassInputs) {
			u.SetTexture("uTexture", pair.Read().Texture())
		})
		require.NoError(t, err)
		w, h = tex.Size()
		assert.Equal(t, tt.expect, w)
		assert.Equal(t, tt.expect, h)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	d := soft.NewDevice(8, 8)
	pool := NewPool(d, PoolOptions{})
	single, err := pool.AcquireSingle(4, 4)
	require.NoError(t, err)
	pair, err := pool.AcquireDoubleBuffer(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, d.LiveTargets())

	pool.Release(single)
	pool.Release(single)
	assert.Equal(t, 2, d.LiveTargets())
	assert.Equal(t, 1, pool.Live())

	pool.ReleaseAll()
	pool.Release(pair)
	pool.ReleaseAll()
	assert.Equal(t, 0, d.LiveTargets())
	assert.Equal(t, 0, pool.Live())

	_, err = RunPass(d, single, copyMaterial(t, d), nil)
	assert.ErrorIs(t, err, gpu.ErrReleased)
}

func TestAcquireMany(t *testing.T) {
	d := soft.NewDevice(8, 8)
	pool := NewPool(d, PoolOptions{})
	targets, err := pool.AcquireMany(3, 2, 2)
	require.NoError(t, err)
	assert.Len(t, targets, 3)
	assert.Equal(t, 3, pool.Live())

	_, err = pool.AcquireMany(2, 0, 2)
	assert.Error(t, err)
	assert.Equal(t, 3, pool.Live())
}
