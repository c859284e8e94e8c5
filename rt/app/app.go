// Package app hosts effects in a glfw window with a WebGPU swapchain.
package app

import (
	"fmt"

	"github.com/gekko3d/shaderfx"
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/pointer"
	"github.com/gekko3d/shaderfx/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	FX       *gpu.WgpuDevice
	Clock    *shaderfx.Clock
	Profiler *shaderfx.Profiler
	Logger   shaderfx.Logger

	blit *gpu.Material

	MouseX, MouseY float64
	DebugMode      bool

	FrameCount int
	FPS        float64
	FPSTime    float64
	lastRender float64
}

func NewApp(window *glfw.Window, logger shaderfx.Logger) *App {
	if logger == nil {
		logger = shaderfx.NewDefaultLogger("fxdemo", false)
	}
	return &App{
		Window:   window,
		Clock:    shaderfx.NewClock(),
		Profiler: shaderfx.NewProfiler(),
		Logger:   logger,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return err
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "shaderfx device"})
	if err != nil {
		return err
	}

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	if a.FX, err = gpu.NewWgpuDevice(a.Device, format); err != nil {
		return fmt.Errorf("failed to create effect device: %w", err)
	}
	if a.blit, err = gpu.NewMaterial(a.FX, shaders.Clear); err != nil {
		return fmt.Errorf("failed to create blit: %w", err)
	}
	a.blit.Uniforms.SetFloat("value", 1)
	return nil
}

func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Config.Width = uint32(w)
		a.Config.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
	}
}

// Size is the window size in layout pixels and its device pixel ratio.
func (a *App) Size() (pointer.Size, float32) {
	w, h := a.Window.GetSize()
	fw, _ := a.Window.GetFramebufferSize()
	dpr := float32(1)
	if w > 0 {
		dpr = float32(fw) / float32(w)
	}
	return pointer.Size{Width: float32(w), Height: float32(h)}, dpr
}

// PointerNDC maps the cursor to normalized device coordinates, y up.
func (a *App) PointerNDC() mgl32.Vec2 {
	w, h := a.Window.GetSize()
	if w == 0 || h == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(a.MouseX/float64(w))*2 - 1,
		-(float32(a.MouseY/float64(h))*2 - 1),
	}
}

// Frame ticks the clock and returns the context for this frame's updates.
func (a *App) Frame() *shaderfx.Frame {
	a.Clock.Tick()
	size, dpr := a.Size()
	return &shaderfx.Frame{
		Device:   a.FX,
		Pointer:  a.PointerNDC(),
		Clock:    a.Clock,
		Size:     size,
		DPR:      dpr,
		Profiler: a.Profiler,
	}
}

// Present draws tex over the whole swapchain image.
func (a *App) Present(tex gpu.Texture) {
	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	a.FX.SetScreen(view, int(a.Config.Width), int(a.Config.Height))
	a.FX.SetRenderTarget(nil)
	a.blit.Uniforms.SetTexture("uTexture", tex)
	if err := a.FX.Draw(a.blit.Program, a.blit.Uniforms, gpu.DrawOptions{ClearColor: mgl32.Vec4{0, 0, 0, 1}}); err != nil {
		a.Logger.Errorf("blit failed: %v", err)
		return
	}
	a.Surface.Present()

	now := glfw.GetTime()
	if a.lastRender > 0 {
		a.FrameCount++
		a.FPSTime += now - a.lastRender
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
			if a.DebugMode {
				a.Logger.Infof("%.1f fps\n%s", a.FPS, a.Profiler.StatsString())
			}
			a.Profiler.Reset()
		}
	}
	a.lastRender = now
}

func (a *App) Release() {
	a.blit.Release()
	if a.FX != nil {
		a.FX.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
