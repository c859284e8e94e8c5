package shaderfx

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadTexture decodes a png, jpeg, bmp, tiff or webp image and uploads it.
// Images larger than maxSide on either axis are scaled down; zero keeps the
// original size. The returned resolution is the decoded image size, for
// cover fitting.
func LoadTexture(device gpu.Device, r io.Reader, maxSide int) (gpu.Texture, mgl32.Vec2, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, mgl32.Vec2{}, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	res := mgl32.Vec2{float32(b.Dx()), float32(b.Dy())}
	tex, err := UploadImage(device, fitImage(img, maxSide))
	if err != nil {
		return nil, mgl32.Vec2{}, err
	}
	return tex, res, nil
}

func fitImage(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	scale := float64(maxSide) / float64(max(w, h))
	dw, dh := max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// UploadImage copies img into a new device texture.
func UploadImage(device gpu.Device, img image.Image) (gpu.Texture, error) {
	w, h, pix := imagePixels(img)
	tex, err := device.CreateTexture(w, h, pix)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %dx%d image: %w", w, h, err)
	}
	return tex, nil
}

// imagePixels converts img to straight-alpha RGBA floats, bottom row first.
func imagePixels(img image.Image) (int, int, []float32) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		row := h - 1 - y
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (row*w + x) * 4
			pix[i+0] = float32(c.R) / 255
			pix[i+1] = float32(c.G) / 255
			pix[i+2] = float32(c.B) / 255
			pix[i+3] = float32(c.A) / 255
		}
	}
	return w, h, pix
}

type TextOptions struct {
	// Size is the font size in points at 72 DPI.
	Size    float64
	Padding int
	Color   color.Color
}

// RenderText draws text, one line per '\n', into a tightly sized image.
func RenderText(fontBytes []byte, text string, opts TextOptions) (*image.NRGBA, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	size := opts.Size
	if size <= 0 {
		size = 48
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	defer face.Close()

	src := opts.Color
	if src == nil {
		src = color.White
	}
	lines := strings.Split(text, "\n")
	d := &font.Drawer{Face: face, Src: image.NewUniform(src)}
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()

	width := 0
	for _, line := range lines {
		width = max(width, d.MeasureString(line).Ceil())
	}
	pad := opts.Padding
	img := image.NewNRGBA(image.Rect(0, 0, max(1, width+2*pad), max(1, len(lines)*lineHeight+2*pad)))
	d.Dst = img
	for i, line := range lines {
		d.Dot = fixed.P(pad, pad+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
	return img, nil
}

// TextTexture renders text and uploads it. The resolution is the image size.
func TextTexture(device gpu.Device, fontBytes []byte, text string, opts TextOptions) (gpu.Texture, mgl32.Vec2, error) {
	img, err := RenderText(fontBytes, text, opts)
	if err != nil {
		return nil, mgl32.Vec2{}, err
	}
	tex, err := UploadImage(device, img)
	if err != nil {
		return nil, mgl32.Vec2{}, err
	}
	b := img.Bounds()
	return tex, mgl32.Vec2{float32(b.Dx()), float32(b.Dy())}, nil
}
