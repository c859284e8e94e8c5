package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllKernelsValidate(t *testing.T) {
	names := map[string]bool{}
	for _, k := range All {
		require.NoError(t, k.Validate(), k.Name)
		assert.False(t, names[k.Name], "duplicate kernel name %s", k.Name)
		names[k.Name] = true
		assert.Contains(t, k.Fragment, "fn fs_main", k.Name)
	}
}

func TestWGSLBindings(t *testing.T) {
	src := Vorticity.WGSL()

	assert.Contains(t, src, "@group(0) @binding(0) var<uniform> params: Params;")
	assert.Contains(t, src, "@group(0) @binding(1) var uVelocity: texture_2d<f32>;")
	assert.Contains(t, src, "@group(0) @binding(2) var uCurl: texture_2d<f32>;")
	assert.Contains(t, src, "@group(0) @binding(3) var fx_sampler: sampler;")
	assert.Equal(t, uint32(3), Vorticity.SamplerBinding())

	// Scalars are declared in slot order.
	curl := strings.Index(src, "  curl: f32,")
	dt := strings.Index(src, "  dt: f32,")
	texel := strings.Index(src, "  texelSize: vec2<f32>,")
	require.True(t, curl >= 0 && dt >= 0 && texel >= 0)
	assert.Less(t, curl, dt)
	assert.Less(t, dt, texel)
}

func TestWGSLVertexPlacement(t *testing.T) {
	assert.Contains(t, Advection.WGSL(), "return q;")
	assert.Contains(t, Ripple.WGSL(), "params.u_rect.xy")
	assert.Contains(t, ColorStrata.WGSL(), "isTexture: u32,")
}

func TestValidateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name   string
		kernel Kernel
	}{
		{"no name", Kernel{Slots: []Slot{{"a", KindFloat}}}},
		{"duplicate", Kernel{Name: "dup", Slots: []Slot{{"a", KindFloat}, {"a", KindVec2}}}},
		{"textures only", Kernel{Name: "tex", Slots: []Slot{{"t", KindTexture}}}},
		{"rect without slots", Kernel{Name: "rect", Vertex: VertexRect, Slots: []Slot{{"a", KindFloat}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.kernel.Validate())
		})
	}
}
