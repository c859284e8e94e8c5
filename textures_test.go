package shaderfx

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gekko3d/shaderfx/rt/soft"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestImagePixelsBottomRowFirst(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})

	w, h, pix := imagePixels(img)
	assert.Equal(t, 1, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, []float32{0, 0, 1, 1, 1, 0, 0, 1}, pix)
}

func TestLoadTextureScalesDown(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	d := soft.NewDevice(4, 4)
	tex, res, err := LoadTexture(d, &buf, 4)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec2{8, 4}, res)
	w, h := tex.Size()
	assert.Equal(t, []int{4, 2}, []int{w, h})

	_, _, err = LoadTexture(d, bytes.NewReader([]byte("not an image")), 0)
	assert.Error(t, err)
}

func TestRenderText(t *testing.T) {
	img, err := RenderText(goregular.TTF, "fx\nfx", TextOptions{Size: 24, Padding: 2})
	require.NoError(t, err)
	b := img.Bounds()
	assert.Greater(t, b.Dy(), 40)

	var ink int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			ink++
		}
	}
	assert.Greater(t, ink, 0)

	d := soft.NewDevice(4, 4)
	tex, res, err := TextTexture(d, goregular.TTF, "fx", TextOptions{})
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, mgl32.Vec2{float32(w), float32(h)}, res)

	_, err = RenderText([]byte("nope"), "fx", TextOptions{})
	assert.Error(t, err)
}
