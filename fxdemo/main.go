package main

import (
	"flag"
	"runtime"

	"github.com/gekko3d/shaderfx"
	"github.com/gekko3d/shaderfx/rt/app"
	"github.com/gekko3d/shaderfx/rt/gpu"
	"github.com/gekko3d/shaderfx/rt/params"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/gobold"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	debug := flag.Bool("debug", false, "Log frame timings and pass counts")
	presetPath := flag.String("preset", "", "YAML preset applied to the effect chain")
	flag.Parse()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "shaderfx", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	logger := shaderfx.NewDefaultLogger("fxdemo", *debug)
	application := app.NewApp(window, logger)
	application.DebugMode = *debug
	if err := application.Init(); err != nil {
		panic(err)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.MouseX = xpos
		application.MouseY = ypos
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	size, dpr := application.Size()
	cfg := shaderfx.Config{Size: size, DPR: dpr, Logger: logger}

	title, res, err := shaderfx.TextTexture(application.FX, gobold.TTF, "shaderfx", shaderfx.TextOptions{Size: 160, Padding: 32})
	if err != nil {
		panic(err)
	}
	fluid, err := shaderfx.NewFluid(application.FX, cfg)
	if err != nil {
		panic(err)
	}
	blend, err := shaderfx.NewFxBlending(application.FX, cfg)
	if err != nil {
		panic(err)
	}
	duotone, err := shaderfx.NewDuotone(application.FX, cfg)
	if err != nil {
		panic(err)
	}
	if err := fluid.SetParams(params.Patch{
		"fluid_color": func(v mgl32.Vec2) mgl32.Vec3 {
			s := v.Len() * 40
			return mgl32.Vec3{s, s * 0.5, 1}
		},
	}); err != nil {
		panic(err)
	}
	logger.Debugf("title texture %v", res)

	chain, err := shaderfx.NewChainBuilder().
		Use("fluid", fluid, nil).
		Use("fx_blending", blend, func(prev gpu.Texture) params.Patch {
			return params.Patch{"texture": title, "map": prev, "map_intensity": 0.4}
		}).
		Use("duotone", duotone, shaderfx.Texture("texture")).
		Build()
	if err != nil {
		panic(err)
	}
	defer chain.Destroy()

	if *presetPath != "" {
		preset, err := shaderfx.LoadPresetFile(*presetPath)
		if err != nil {
			panic(err)
		}
		if err := chain.Apply(preset); err != nil {
			logger.Warnf("preset: %v", err)
		}
	}

	for !window.ShouldClose() {
		glfw.PollEvents()
		out, err := chain.Update(application.Frame())
		if err != nil {
			logger.Errorf("frame: %v", err)
			continue
		}
		application.Present(out)
	}
}
