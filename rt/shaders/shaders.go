package shaders

import (
	_ "embed"
)

//go:embed common.wgsl
var CommonWGSL string

//go:embed advection.wgsl
var AdvectionWGSL string

//go:embed splat.wgsl
var SplatWGSL string

//go:embed curl.wgsl
var CurlWGSL string

//go:embed vorticity.wgsl
var VorticityWGSL string

//go:embed divergence.wgsl
var DivergenceWGSL string

//go:embed clear.wgsl
var ClearWGSL string

//go:embed pressure.wgsl
var PressureWGSL string

//go:embed gradient_subtract.wgsl
var GradientSubtractWGSL string

//go:embed brush.wgsl
var BrushWGSL string

//go:embed duotone.wgsl
var DuotoneWGSL string

//go:embed blending.wgsl
var BlendingWGSL string

//go:embed fx_blending.wgsl
var FxBlendingWGSL string

//go:embed fx_texture.wgsl
var FxTextureWGSL string

//go:embed wave.wgsl
var WaveWGSL string

//go:embed noise.wgsl
var NoiseWGSL string

//go:embed blur.wgsl
var BlurWGSL string

//go:embed color_strata.wgsl
var ColorStrataWGSL string

//go:embed brightness_picker.wgsl
var BrightnessPickerWGSL string

//go:embed dom_syncer.wgsl
var DomSyncerWGSL string

//go:embed ripple.wgsl
var RippleWGSL string

// Fluid kernels.
var (
	Advection = Kernel{
		Name: "advection",
		Slots: []Slot{
			{"uVelocity", KindTexture},
			{"uSource", KindTexture},
			{"texelSize", KindVec2},
			{"dt", KindFloat},
			{"dissipation", KindFloat},
		},
		Fragment: AdvectionWGSL,
	}
	Splat = Kernel{
		Name: "splat",
		Slots: []Slot{
			{"uTarget", KindTexture},
			{"aspectRatio", KindFloat},
			{"color", KindVec3},
			{"point", KindVec2},
			{"radius", KindFloat},
			{"texelSize", KindVec2},
		},
		Fragment: SplatWGSL,
	}
	Curl = Kernel{
		Name: "curl",
		Slots: []Slot{
			{"uVelocity", KindTexture},
			{"texelSize", KindVec2},
		},
		Fragment: CurlWGSL,
	}
	Vorticity = Kernel{
		Name: "vorticity",
		Slots: []Slot{
			{"uVelocity", KindTexture},
			{"uCurl", KindTexture},
			{"curl", KindFloat},
			{"dt", KindFloat},
			{"texelSize", KindVec2},
		},
		Fragment: VorticityWGSL,
	}
	Divergence = Kernel{
		Name: "divergence",
		Slots: []Slot{
			{"uVelocity", KindTexture},
			{"texelSize", KindVec2},
		},
		Fragment: DivergenceWGSL,
	}
	// Clear scales a texture by value. Besides damping pressure it doubles as a copy pass.
	Clear = Kernel{
		Name: "clear",
		Slots: []Slot{
			{"uTexture", KindTexture},
			{"value", KindFloat},
			{"texelSize", KindVec2},
		},
		Fragment: ClearWGSL,
	}
	Pressure = Kernel{
		Name: "pressure",
		Slots: []Slot{
			{"uPressure", KindTexture},
			{"uDivergence", KindTexture},
			{"texelSize", KindVec2},
		},
		Fragment: PressureWGSL,
	}
	GradientSubtract = Kernel{
		Name: "gradient_subtract",
		Slots: []Slot{
			{"uPressure", KindTexture},
			{"uVelocity", KindTexture},
			{"texelSize", KindVec2},
		},
		Fragment: GradientSubtractWGSL,
	}
)

// Image effect kernels.
var (
	Brush = Kernel{
		Name: "brush",
		Slots: []Slot{
			{"uMap", KindTexture},
			{"uTexture", KindTexture},
			{"uRadius", KindFloat},
			{"uDissipation", KindFloat},
			{"uResolution", KindVec2},
			{"uSmudge", KindFloat},
			{"uAspect", KindFloat},
			{"uMouse", KindVec2},
			{"uPrevMouse", KindVec2},
			{"uVelocity", KindVec2},
			{"uColor", KindVec3},
			{"uMotionBlur", KindFloat},
			{"uMotionSample", KindInt},
		},
		Fragment: BrushWGSL,
	}
	Duotone = Kernel{
		Name: "duotone",
		Slots: []Slot{
			{"uTexture", KindTexture},
			{"uColor0", KindVec3},
			{"uColor1", KindVec3},
		},
		Fragment: DuotoneWGSL,
	}
	Blending = Kernel{
		Name: "blending",
		Slots: []Slot{
			{"u_texture", KindTexture},
			{"u_map", KindTexture},
			{"u_mapIntensity", KindFloat},
			{"u_brightness", KindVec3},
			{"u_min", KindFloat},
			{"u_max", KindFloat},
			{"u_color", KindVec3},
		},
		Fragment: BlendingWGSL,
	}
	FxBlending = Kernel{
		Name: "fx_blending",
		Slots: []Slot{
			{"u_texture", KindTexture},
			{"u_map", KindTexture},
			{"u_mapIntensity", KindFloat},
		},
		Fragment: FxBlendingWGSL,
	}
	FxTexture = Kernel{
		Name: "fx_texture",
		Slots: []Slot{
			{"uResolution", KindVec2},
			{"uTextureResolution", KindVec2},
			{"uTexture0", KindTexture},
			{"uTexture1", KindTexture},
			{"uMap", KindTexture},
			{"mapIntensity", KindFloat},
			{"edgeIntensity", KindFloat},
			{"progress", KindFloat},
			{"dirX", KindFloat},
			{"dirY", KindFloat},
			{"epicenter", KindVec2},
			{"padding", KindFloat},
		},
		Fragment: FxTextureWGSL,
	}
	Wave = Kernel{
		Name: "wave",
		Slots: []Slot{
			{"uEpicenter", KindVec2},
			{"uProgress", KindFloat},
			{"uStrength", KindFloat},
			{"uWidth", KindFloat},
			{"uResolution", KindVec2},
			{"uMode", KindInt},
		},
		Fragment: WaveWGSL,
	}
	Noise = Kernel{
		Name: "noise",
		Slots: []Slot{
			{"uTime", KindFloat},
			{"timeStrength", KindFloat},
			{"noiseOctaves", KindInt},
			{"fbmOctaves", KindInt},
			{"warpOctaves", KindInt},
			{"warpDirection", KindVec2},
			{"warpStrength", KindFloat},
			{"scale", KindFloat},
			{"uResolution", KindVec2},
		},
		Fragment: NoiseWGSL,
	}
	Blur = Kernel{
		Name: "blur",
		Slots: []Slot{
			{"uTexture", KindTexture},
			{"uResolution", KindVec2},
			{"uBlurSize", KindFloat},
		},
		Fragment: BlurWGSL,
	}
	ColorStrata = Kernel{
		Name: "color_strata",
		Slots: []Slot{
			{"uTexture", KindTexture},
			{"isTexture", KindBool},
			{"noise", KindTexture},
			{"isNoise", KindBool},
			{"noiseStrength", KindVec2},
			{"laminateLayer", KindFloat},
			{"laminateInterval", KindVec2},
			{"laminateDetail", KindVec2},
			{"distortion", KindVec2},
			{"colorFactor", KindVec3},
			{"uTime", KindFloat},
			{"timeStrength", KindVec2},
			{"scale", KindFloat},
		},
		Fragment: ColorStrataWGSL,
	}
	BrightnessPicker = Kernel{
		Name: "brightness_picker",
		Slots: []Slot{
			{"u_texture", KindTexture},
			{"u_brightness", KindVec3},
			{"u_min", KindFloat},
			{"u_max", KindFloat},
		},
		Fragment: BrightnessPickerWGSL,
	}
	DomSyncer = Kernel{
		Name:   "dom_syncer",
		Vertex: VertexRect,
		Slots: []Slot{
			{"u_texture", KindTexture},
			{"u_textureResolution", KindVec2},
			{"u_resolution", KindVec2},
			{"u_borderRadius", KindFloat},
			{"u_rect", KindVec4},
			{"u_rotation", KindFloat},
			{"u_viewport", KindVec2},
		},
		Fragment: DomSyncerWGSL,
	}
	Ripple = Kernel{
		Name:   "ripple",
		Vertex: VertexRect,
		Slots: []Slot{
			{"uTexture", KindTexture},
			{"uOpacity", KindFloat},
			{"isTexture", KindBool},
			{"u_rect", KindVec4},
			{"u_rotation", KindFloat},
			{"u_viewport", KindVec2},
		},
		Fragment: RippleWGSL,
	}
)

// All lists every kernel shipped with the library.
var All = []Kernel{
	Advection, Splat, Curl, Vorticity, Divergence, Clear, Pressure, GradientSubtract,
	Brush, Duotone, Blending, FxBlending, FxTexture, Wave, Noise, Blur, ColorStrata,
	BrightnessPicker, DomSyncer, Ripple,
}
