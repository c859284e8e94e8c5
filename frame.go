package shaderfx

import (
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the render context handed to every Update call.
type Frame struct {
	Device gpu.Device
	// Pointer is the raw pointer sample in normalized device coordinates.
	Pointer mgl32.Vec2
	Clock   *Clock
	// Size is the viewport size in layout pixels.
	Size pointer.Size
	DPR  float32
	// Profiler is optional.
	Profiler *Profiler
}

func (f *Frame) begin(scope string) func() {
	if f.Profiler == nil {
		return func() {}
	}
	f.Profiler.BeginScope(scope)
	return func() { f.Profiler.EndScope(scope) }
}
