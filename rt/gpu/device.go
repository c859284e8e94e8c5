package gpu

import (
	"errors"

	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	// ErrFeedbackLoop is returned when a draw samples the texture it renders into.
	ErrFeedbackLoop = errors.New("gpu: draw reads from its own render target")
	// ErrReleased is returned when a released resource is used.
	ErrReleased = errors.New("gpu: resource already released")
	// ErrNoDestination is returned when there is neither a bound target nor a screen.
	ErrNoDestination = errors.New("gpu: no render destination")
)

type TextureFormat int

const (
	TextureFormatRGBA16Float TextureFormat = iota
	TextureFormatRGBA8Unorm
)

type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// TargetDescriptor describes an off-screen color buffer.
type TargetDescriptor struct {
	Label         string
	Width         int
	Height        int
	Format        TextureFormat
	Filter        FilterMode
	DepthBuffer   bool
	StencilBuffer bool
}

// HalfFloatTarget is the allocation used by every effect: half-float color,
// linear filtering, no depth or stencil.
func HalfFloatTarget(label string, width, height int) TargetDescriptor {
	return TargetDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: TextureFormatRGBA16Float,
		Filter: FilterLinear,
	}
}

// Texture is a sampleable image owned by a Device.
type Texture interface {
	ID() uuid.UUID
	Size() (width, height int)
}

// RenderTarget is an off-screen color buffer that can be drawn into and sampled.
type RenderTarget interface {
	Texture() Texture
	Size() (width, height int)
	Descriptor() TargetDescriptor
	// SetSize reallocates storage. Contents are lost.
	SetSize(width, height int) error
	Release()
	Released() bool
}

// Program is a compiled kernel.
type Program interface {
	Kernel() shaders.Kernel
	Release()
}

type BlendMode int

const (
	BlendNone BlendMode = iota
	// BlendAdditive is src*srcAlpha + dst on every channel.
	BlendAdditive
	// BlendAlpha is regular "over" compositing.
	BlendAlpha
)

type DrawOptions struct {
	Blend BlendMode
	// Load keeps the existing contents of the destination instead of clearing it.
	Load       bool
	ClearColor mgl32.Vec4
}

// Device is the host rendering context every effect draws through.
// Only one render destination is bound at a time; nil means the default
// (on-screen) destination.
type Device interface {
	CreateRenderTarget(desc TargetDescriptor) (RenderTarget, error)
	// CreateTexture uploads RGBA pixels, rows bottom-up.
	CreateTexture(width, height int, pixels []float32) (Texture, error)
	CreateProgram(kernel shaders.Kernel) (Program, error)

	SetRenderTarget(target RenderTarget)
	RenderTarget() RenderTarget
	Draw(program Program, uniforms *Uniforms, opts DrawOptions) error

	// ReadPixels returns RGBA pixels of a target, rows bottom-up.
	ReadPixels(target RenderTarget) ([]float32, error)
	WritePixels(target RenderTarget, pixels []float32) error
}
