package shaderfx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresetDrivesFluid(t *testing.T) {
	preset, err := LoadPreset(strings.NewReader(`
fluid:
  density_dissipation: 0.5
  pressure_iterations: 3
  fluid_color: "#ff0000"
`))
	require.NoError(t, err)
	require.Contains(t, preset, "fluid")

	d := soft.NewDevice(4, 4)
	fx, err := NewFluid(d, testConfig(4, 4))
	require.NoError(t, err)
	defer fx.Destroy()

	require.NoError(t, fx.SetParams(preset["fluid"]))
	p := fx.Params()
	assert.Equal(t, float32(0.5), p.DensityDissipation)
	assert.Equal(t, 3, p.PressureIterations)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, p.FluidColor.Resolve(mgl32.Vec2{}))
	assert.Equal(t, DefaultFluidParams().CurlStrength, p.CurlStrength)
}

func TestLoadPresetEmpty(t *testing.T) {
	preset, err := LoadPreset(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, preset)

	_, err = LoadPreset(strings.NewReader("fluid: [1, 2"))
	assert.Error(t, err)
}

func TestSavePresetRoundTrip(t *testing.T) {
	in := Preset{"ripple": params.Patch{"frequency": 0.5, "alpha": 1.0}}
	var buf bytes.Buffer
	require.NoError(t, SavePreset(&buf, in))

	out, err := LoadPreset(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0.5, out["ripple"]["frequency"])
}
