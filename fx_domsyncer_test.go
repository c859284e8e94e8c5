package shaderfx

import (
	"testing"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"
	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movingElement struct{ rect Rect }

func (m *movingElement) Rect() Rect { return m.rect }

func TestDomSyncerPreconditions(t *testing.T) {
	d := soft.NewDevice(8, 8)
	fx, err := NewDomSyncer(d, testConfig(8, 8))
	require.NoError(t, err)
	defer fx.Destroy()
	tex := solidTexture(t, d, 1, 1, mgl32.Vec4{1, 0, 0, 1})
	el := StaticElement{Width: 4, Height: 4}

	tests := []struct {
		name  string
		patch params.Patch
		check func(t *testing.T, err error)
	}{
		{
			name:  "nothing set",
			patch: nil,
			check: func(t *testing.T, err error) {
				var pe *PreconditionError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name: "length mismatch",
			patch: params.Patch{
				"dom":        []Element{el, el},
				"texture":    []gpu.Texture{tex},
				"resolution": []mgl32.Vec2{{1, 1}, {1, 1}},
			},
			check: func(t *testing.T, err error) {
				var pe *PreconditionError
				require.ErrorAs(t, err, &pe)
				assert.Contains(t, pe.Reason, "lengths differ")
			},
		},
		{
			name: "nil element",
			patch: params.Patch{
				"dom":        []Element{el, nil},
				"texture":    []gpu.Texture{tex, tex},
				"resolution": []mgl32.Vec2{{1, 1}, {1, 1}},
			},
			check: func(t *testing.T, err error) {
				var re *ResourceError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "dom", re.Resource)
				assert.Equal(t, 1, re.Index)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.Update(testFrame(d, 8, 8), tt.patch)
			tt.check(t, err)
		})
	}
}

func TestDomSyncerDrawsOverElement(t *testing.T) {
	d := soft.NewDevice(32, 32)
	fx, err := NewDomSyncer(d, testConfig(32, 32))
	require.NoError(t, err)
	defer fx.Destroy()
	tex := solidTexture(t, d, 1, 1, mgl32.Vec4{1, 0, 0, 1})

	out, err := fx.Update(testFrame(d, 32, 32), params.Patch{
		"dom":        []Element{StaticElement{Left: 0, Top: 0, Width: 16, Height: 32}},
		"texture":    []gpu.Texture{tex},
		"resolution": []mgl32.Vec2{{1, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, fx.output.Texture().ID(), out.ID())

	pix := readTexture(t, d, fx.output.Target())
	at := func(x, y int) float32 { return pix[(y*32+x)*4] }
	assert.InDelta(t, 1, at(4, 10), 1e-4)
	assert.Zero(t, at(28, 10))
}

func TestDomSyncerIntersection(t *testing.T) {
	d := soft.NewDevice(16, 16)
	fx, err := NewDomSyncer(d, testConfig(16, 16))
	require.NoError(t, err)
	defer fx.Destroy()
	tex := solidTexture(t, d, 1, 1, mgl32.Vec4{1, 1, 1, 1})

	el := &movingElement{rect: Rect{Left: 0, Top: 40, Width: 8, Height: 8}}
	var events []bool
	f := testFrame(d, 16, 16)
	_, err = fx.Update(f, params.Patch{
		"dom":          []Element{el},
		"texture":      []gpu.Texture{tex},
		"resolution":   []mgl32.Vec2{{1, 1}},
		"on_intersect": []func(bool){func(in bool) { events = append(events, in) }},
	})
	require.NoError(t, err)
	assert.False(t, fx.IsIntersecting(0, false))
	assert.Equal(t, 1, d.Draws("dom_syncer"), "only the clearing draw")

	el.rect.Top = 4
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	assert.True(t, fx.IsIntersecting(0, false))
	assert.True(t, fx.IsIntersecting(AllElements, true))
	assert.False(t, fx.IsIntersecting(0, true), "once reports a single time")
	assert.Equal(t, []bool{true}, events)

	el.rect.Top = -20
	_, err = fx.Update(f, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, events)
	assert.Equal(t, float32(-20), fx.Rects()[0].Top)
}

func TestDomSyncerFollowsViewport(t *testing.T) {
	d := soft.NewDevice(8, 8)
	fx, err := NewDomSyncer(d, testConfig(100, 100))
	require.NoError(t, err)
	defer fx.Destroy()
	tex := solidTexture(t, d, 1, 1, mgl32.Vec4{1, 1, 1, 1})

	f := testFrame(d, 50, 50)
	out, err := fx.Update(f, params.Patch{
		"dom":        []Element{StaticElement{Width: 10, Height: 10}},
		"texture":    []gpu.Texture{tex},
		"resolution": []mgl32.Vec2{{1, 1}},
	})
	require.NoError(t, err)
	w, h := out.Size()
	assert.Equal(t, 50, w)
	assert.Equal(t, 50, h)
}
