package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shaderfx/rt/shaders"
	"github.com/google/uuid"
	"github.com/x448/float16"
)

const halfFloatPixelBytes = 8

func wgpuFormat(f TextureFormat) wgpu.TextureFormat {
	if f == TextureFormatRGBA8Unorm {
		return wgpu.TextureFormatRGBA8Unorm
	}
	return wgpu.TextureFormatRGBA16Float
}

type wgpuTexture struct {
	id      uuid.UUID
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   int
	height  int
}

func (t *wgpuTexture) ID() uuid.UUID             { return t.id }
func (t *wgpuTexture) Size() (width, height int) { return t.width, t.height }

func (t *wgpuTexture) release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type wgpuTarget struct {
	device   *WgpuDevice
	desc     TargetDescriptor
	tex      *wgpuTexture
	released bool
}

func (t *wgpuTarget) Texture() Texture { return t.tex }
func (t *wgpuTarget) Size() (int, int) { return t.desc.Width, t.desc.Height }

func (t *wgpuTarget) Descriptor() TargetDescriptor { return t.desc }
func (t *wgpuTarget) Released() bool               { return t.released }

func (t *wgpuTarget) SetSize(width, height int) error {
	if t.released {
		return ErrReleased
	}
	if width == t.desc.Width && height == t.desc.Height {
		return nil
	}
	desc := t.desc
	desc.Width, desc.Height = width, height
	tex, err := t.device.allocate(desc)
	if err != nil {
		return err
	}
	// The texture identity survives a resize so bound uniforms stay valid.
	tex.id = t.tex.id
	t.tex.release()
	t.tex = tex
	t.desc = desc
	return nil
}

func (t *wgpuTarget) Release() {
	if t.released {
		return
	}
	t.released = true
	t.tex.release()
}

type wgpuProgram struct {
	device    *WgpuDevice
	kernel    shaders.Kernel
	module    *wgpu.ShaderModule
	bgl       *wgpu.BindGroupLayout
	layout    *wgpu.PipelineLayout
	uniforms  *wgpu.Buffer
	pipelines map[pipelineKey]*wgpu.RenderPipeline
	released  bool
}

type pipelineKey struct {
	format wgpu.TextureFormat
	blend  BlendMode
}

func (p *wgpuProgram) Kernel() shaders.Kernel { return p.kernel }

func (p *wgpuProgram) Release() {
	if p.released {
		return
	}
	p.released = true
	for _, pl := range p.pipelines {
		pl.Release()
	}
	p.pipelines = nil
	p.uniforms.Release()
	p.layout.Release()
	p.bgl.Release()
	p.module.Release()
}

// WgpuDevice draws kernels with WebGPU. The default destination is the view
// handed to SetScreen, usually the current swapchain texture.
type WgpuDevice struct {
	device       *wgpu.Device
	queue        *wgpu.Queue
	sampler      *wgpu.Sampler
	blank        *wgpuTexture
	screenFormat wgpu.TextureFormat
	screen       *wgpu.TextureView
	screenW      int
	screenH      int
	current      *wgpuTarget
}

func NewWgpuDevice(device *wgpu.Device, screenFormat wgpu.TextureFormat) (*WgpuDevice, error) {
	d := &WgpuDevice{
		device:       device,
		queue:        device.GetQueue(),
		screenFormat: screenFormat,
	}
	var err error
	d.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	blank, err := d.CreateTexture(1, 1, make([]float32, 4))
	if err != nil {
		d.sampler.Release()
		return nil, err
	}
	d.blank = blank.(*wgpuTexture)
	return d, nil
}

// SetScreen sets the default destination for draws made with no bound target.
func (d *WgpuDevice) SetScreen(view *wgpu.TextureView, width, height int) {
	d.screen = view
	d.screenW, d.screenH = width, height
}

func (d *WgpuDevice) allocate(desc TargetDescriptor) (*wgpuTexture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", desc.Width, desc.Height)
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          wgpu.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		Format:        wgpuFormat(desc.Format),
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &wgpuTexture{id: uuid.New(), texture: tex, view: view, width: desc.Width, height: desc.Height}, nil
}

func (d *WgpuDevice) CreateRenderTarget(desc TargetDescriptor) (RenderTarget, error) {
	tex, err := d.allocate(desc)
	if err != nil {
		return nil, err
	}
	return &wgpuTarget{device: d, desc: desc, tex: tex}, nil
}

func (d *WgpuDevice) CreateTexture(width, height int, pixels []float32) (Texture, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("texture %dx%d needs %d floats, got %d", width, height, width*height*4, len(pixels))
	}
	tex, err := d.allocate(TargetDescriptor{Label: "uploaded", Width: width, Height: height})
	if err != nil {
		return nil, err
	}
	if err := d.upload(tex, pixels); err != nil {
		tex.release()
		return nil, err
	}
	return tex, nil
}

func (d *WgpuDevice) upload(tex *wgpuTexture, pixels []float32) error {
	w, h := tex.width, tex.height
	data := make([]byte, w*h*halfFloatPixelBytes)
	// Incoming rows are bottom-up, GPU rows top-down.
	for y := 0; y < h; y++ {
		src := pixels[(h-1-y)*w*4 : (h-y)*w*4]
		dst := data[y*w*halfFloatPixelBytes:]
		for i, f := range src {
			binary.LittleEndian.PutUint16(dst[i*2:], float16.Fromfloat32(f).Bits())
		}
	}
	return d.queue.WriteTexture(tex.texture.AsImageCopy(), data, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w * halfFloatPixelBytes),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
}

func (d *WgpuDevice) CreateProgram(kernel shaders.Kernel) (Program, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          kernel.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: kernel.WGSL()},
	})
	if err != nil {
		return nil, err
	}

	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	entries := []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: uint64(PackedSize(kernel)),
		},
	}}
	for i := range kernel.Textures() {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i + 1),
			Visibility: visibility,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	entries = append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    kernel.SamplerBinding(),
		Visibility: visibility,
		Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
	})
	bgl, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   kernel.Name + "BGL",
		Entries: entries,
	})
	if err != nil {
		module.Release()
		return nil, err
	}
	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		module.Release()
		return nil, err
	}
	uniforms, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: kernel.Name + "Params",
		Size:  uint64(PackedSize(kernel)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		layout.Release()
		bgl.Release()
		module.Release()
		return nil, err
	}
	return &wgpuProgram{
		device:    d,
		kernel:    kernel,
		module:    module,
		bgl:       bgl,
		layout:    layout,
		uniforms:  uniforms,
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
	}, nil
}

func blendState(mode BlendMode) *wgpu.BlendState {
	switch mode {
	case BlendAdditive:
		c := wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOne,
		}
		return &wgpu.BlendState{Color: c, Alpha: c}
	case BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	}
	return nil
}

func (p *wgpuProgram) pipeline(format wgpu.TextureFormat, blend BlendMode) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{format: format, blend: blend}
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}
	pl, err := p.device.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.kernel.Name + "Pipeline",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     blendState(blend),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	p.pipelines[key] = pl
	return pl, nil
}

func (d *WgpuDevice) SetRenderTarget(target RenderTarget) {
	if target == nil {
		d.current = nil
		return
	}
	d.current = target.(*wgpuTarget)
}

func (d *WgpuDevice) RenderTarget() RenderTarget {
	if d.current == nil {
		return nil
	}
	return d.current
}

func (d *WgpuDevice) destination() (*wgpu.TextureView, wgpu.TextureFormat, error) {
	if d.current != nil {
		if d.current.released {
			return nil, 0, ErrReleased
		}
		return d.current.tex.view, wgpuFormat(d.current.desc.Format), nil
	}
	if d.screen == nil {
		return nil, 0, ErrNoDestination
	}
	return d.screen, d.screenFormat, nil
}

func (d *WgpuDevice) Draw(program Program, uniforms *Uniforms, opts DrawOptions) error {
	p, ok := program.(*wgpuProgram)
	if !ok || p.released {
		return ErrReleased
	}
	if d.current != nil && uniforms.Samples(d.current.tex) {
		return ErrFeedbackLoop
	}
	view, format, err := d.destination()
	if err != nil {
		return err
	}
	pipeline, err := p.pipeline(format, opts.Blend)
	if err != nil {
		return err
	}
	if err := d.queue.WriteBuffer(p.uniforms, 0, uniforms.Pack()); err != nil {
		return err
	}

	entries := []wgpu.BindGroupEntry{{Binding: 0, Buffer: p.uniforms, Size: uint64(PackedSize(p.kernel))}}
	for i, t := range uniforms.Textures() {
		tex := d.blank
		if t != nil {
			wt, ok := t.(*wgpuTexture)
			if !ok || wt.view == nil {
				return ErrReleased
			}
			tex = wt
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i + 1), TextureView: tex.view})
	}
	entries = append(entries, wgpu.BindGroupEntry{Binding: p.kernel.SamplerBinding(), Sampler: d.sampler})
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  p.bgl,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	defer bg.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	loadOp := wgpu.LoadOpClear
	if opts.Load {
		loadOp = wgpu.LoadOpLoad
	}
	c := opts.ClearColor
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(6, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	d.queue.Submit(cmd)
	return nil
}

func alignedRowBytes(width int) uint32 {
	return (uint32(width*halfFloatPixelBytes) + 255) & ^uint32(255)
}

func (d *WgpuDevice) ReadPixels(target RenderTarget) ([]float32, error) {
	t, ok := target.(*wgpuTarget)
	if !ok || t.released {
		return nil, ErrReleased
	}
	if t.desc.Format != TextureFormatRGBA16Float {
		return nil, fmt.Errorf("readback supports half-float targets only")
	}
	w, h := t.desc.Width, t.desc.Height
	bytesPerRow := alignedRowBytes(w)
	size := uint64(bytesPerRow) * uint64(h)
	readback, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	defer readback.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: uint32(h),
			},
		},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	d.queue.Submit(cmd)

	var mapErr error
	mapped := false
	readback.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			mapped = true
		} else {
			mapErr = fmt.Errorf("map readback buffer: status %v", status)
		}
	})
	d.device.Poll(true, nil)
	if !mapped {
		if mapErr == nil {
			mapErr = fmt.Errorf("map readback buffer: callback did not run")
		}
		return nil, mapErr
	}
	defer readback.Unmap()

	data := readback.GetMappedRange(0, uint(size))
	out := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		row := data[uint32(y)*bytesPerRow:]
		dst := out[(h-1-y)*w*4 : (h-y)*w*4]
		for i := range dst {
			dst[i] = float16.Frombits(binary.LittleEndian.Uint16(row[i*2:])).Float32()
		}
	}
	return out, nil
}

func (d *WgpuDevice) WritePixels(target RenderTarget, pixels []float32) error {
	t, ok := target.(*wgpuTarget)
	if !ok || t.released {
		return ErrReleased
	}
	if t.desc.Format != TextureFormatRGBA16Float {
		return fmt.Errorf("upload supports half-float targets only")
	}
	if len(pixels) != t.desc.Width*t.desc.Height*4 {
		return fmt.Errorf("target %dx%d needs %d floats, got %d", t.desc.Width, t.desc.Height, t.desc.Width*t.desc.Height*4, len(pixels))
	}
	return d.upload(t.tex, pixels)
}

func (d *WgpuDevice) Release() {
	if d.blank != nil {
		d.blank.release()
		d.blank = nil
	}
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
}
