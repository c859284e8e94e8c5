package shaderfx

import (
	"testing"
	"time"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

const frameStep = 16 * time.Millisecond

type recordingLogger struct {
	nopLogger
	errors []string
}

func (l *recordingLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, format)
}

func testConfig(w, h float32) Config {
	return Config{Size: pointer.Size{Width: w, Height: h}, DPR: 1}
}

func testFrame(d gpu.Device, w, h float32) *Frame {
	return &Frame{
		Device:   d,
		Clock:    NewManualClock(),
		Size:     pointer.Size{Width: w, Height: h},
		DPR:      1,
		Profiler: NewProfiler(),
	}
}

// advance moves the frame clock one step and sets the pointer.
func advance(f *Frame, pos mgl32.Vec2) {
	f.Clock.Advance(frameStep)
	f.Pointer = pos
}

func readTexture(t *testing.T, d *soft.Device, rt gpu.RenderTarget) []float32 {
	t.Helper()
	pix, err := d.ReadPixels(rt)
	require.NoError(t, err)
	return pix
}

func maxAbs(pix []float32) float32 {
	var m float32
	for _, v := range pix {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// maxAbsRGB is maxAbs over the color channels only.
func maxAbsRGB(pix []float32) float32 {
	var m float32
	for i, v := range pix {
		if i%4 == 3 {
			continue
		}
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// solidTexture uploads a w×h texture filled with c.
func solidTexture(t *testing.T, d gpu.Device, w, h int, c mgl32.Vec4) gpu.Texture {
	t.Helper()
	pix := make([]float32, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		pix = append(pix, c[0], c[1], c[2], c[3])
	}
	tex, err := d.CreateTexture(w, h, pix)
	require.NoError(t, err)
	return tex
}
