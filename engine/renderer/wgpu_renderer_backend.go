package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/sandbox.wgsl
var sandboxShader string

const (
	cameraGroup  = 0
	modelGroup   = 1
	textureGroup = 2

	// minModelCapacity is the initial per-slot model uniform buffer size: 64 draws.
	minModelCapacity = 64 * UniformOffsetAlignment
)

// sandboxVertexLayout describes common.Vertex as packed by MarshalVertices.
var sandboxVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: VertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
	},
}

// wgpuSlot is the per-frame-slot state. A slot's fence is the queue submission index of the
// last work submitted with it.
type wgpuSlot struct {
	camera bind_group_provider.BindGroupProvider
	models bind_group_provider.BindGroupProvider

	cameraBytes []byte
	modelBytes  []byte
	commands    *wgpu.CommandBuffer

	surfaceTexture *wgpu.Texture
	surfaceView    *wgpu.TextureView

	submitted  bool
	submission wgpu.SubmissionIndex
}

// releaseImage drops the slot's reference to an acquired surface image.
func (s *wgpuSlot) releaseImage() {
	if s.surfaceView != nil {
		s.surfaceView.Release()
		s.surfaceView = nil
	}
	if s.surfaceTexture != nil {
		s.surfaceTexture.Release()
		s.surfaceTexture = nil
	}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *log.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount

	configured    bool
	surfaceFormat wgpu.TextureFormat
	msaaTexture   *wgpu.Texture
	msaaView      *wgpu.TextureView
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	cameraLayout  *wgpu.BindGroupLayout
	modelLayout   *wgpu.BindGroupLayout
	textureLayout *wgpu.BindGroupLayout
	pipeline      pipeline.Pipeline

	geometry bind_group_provider.BindGroupProvider
	textures []bind_group_provider.BindGroupProvider
	slots    []wgpuSlot
	images   uint32
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates a WebGPU backend presenting to the surface described by
// surfaceDescriptor, and configures the surface at the given size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, typically from wgpuglfw.GetSurfaceDescriptor
//   - width, height: the initial framebuffer size in pixels
//   - options: variadic list of WGPUBackendOption functions
//
// Returns:
//   - RendererBackend: the backend
//   - error: an error if no adapter or device is available or the surface cannot be configured
func NewWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUBackendOption) (RendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      log.WithPrefix("wgpu"),
		presentMode: PresentModeVSync,
		sampleCount: MSAAOff,
		geometry:    bind_group_provider.NewBindGroupProvider("Sandbox Geometry"),
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Sandbox Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.createLayouts(); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.RebuildSurface(width, height); err != nil {
		b.Release()
		return nil, err
	}

	b.logger.Info("device ready", "msaa", uint32(b.sampleCount), "width", width, "height", height)
	return b, nil
}

// createLayouts creates the three bind group layouts the sandbox shader declares.
func (b *wgpuRendererBackendImpl) createLayouts() error {
	var err error
	b.cameraLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: camera.UniformSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("create camera layout: %w", err)
	}

	b.modelLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Model Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   ModelUniformSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("create model layout: %w", err)
	}

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create texture layout: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) PrepareSlots(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.slots = make([]wgpuSlot, n)
	for i := range b.slots {
		slot := &b.slots[i]
		slot.models = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Slot %d Models", i))

		label := fmt.Sprintf("Slot %d Camera", i)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Buffer",
			Size:  camera.UniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create slot %d camera buffer: %w", i, err)
		}
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   label + " Bind Group",
			Layout:  b.cameraLayout,
			Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize}},
		})
		if err != nil {
			buf.Release()
			return fmt.Errorf("create slot %d camera bind group: %w", i, err)
		}
		slot.camera = bind_group_provider.NewBindGroupProvider(label,
			bind_group_provider.WithBuffer(0, buf, camera.UniformSize),
			bind_group_provider.WithBindGroup(bg),
		)

		if err := b.ensureModelCapacity(slot, minModelCapacity); err != nil {
			return err
		}
	}
	return nil
}

// ensureModelCapacity grows the slot's model uniform buffer to hold need bytes.
// Caller must hold the mutex, and the slot's fence must have been waited on.
func (b *wgpuRendererBackendImpl) ensureModelCapacity(slot *wgpuSlot, need uint64) error {
	current := slot.models.Capacity(0)
	size := bind_group_provider.GrowCapacity(current, need, minModelCapacity)
	if size == current && slot.models.Buffer(0) != nil {
		return nil
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: slot.models.Label() + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s buffer (%d bytes): %w", slot.models.Label(), size, err)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   slot.models.Label() + " Bind Group",
		Layout:  b.modelLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Offset: 0, Size: ModelUniformSize}},
	})
	if err != nil {
		buf.Release()
		return fmt.Errorf("create %s bind group: %w", slot.models.Label(), err)
	}
	slot.models.SetBindGroup(bg)
	slot.models.SetBuffer(0, buf, size)
	if current > 0 {
		b.logger.Debug("model uniforms grown", "slot", slot.models.Label(), "bytes", size)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) WaitForFence(slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(slot)
	if err != nil {
		return err
	}
	if !s.submitted {
		return nil
	}
	b.device.Poll(true, &wgpu.WrappedSubmissionIndex{
		Queue:           b.queue,
		SubmissionIndex: s.submission,
	})
	s.submitted = false
	return nil
}

func (b *wgpuRendererBackendImpl) ResetFence(slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(slot)
	if err != nil {
		return err
	}
	s.submitted = false
	s.submission = 0
	return nil
}

func (b *wgpuRendererBackendImpl) AcquireNextImage(slot int) (uint32, SurfaceStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(slot)
	if err != nil {
		return 0, SurfaceFatal, err
	}
	if !b.configured {
		return 0, SurfaceStale, ErrSurfaceStale
	}
	s.releaseImage()

	texture, err := b.surface.GetCurrentTexture()
	if err != nil {
		if status := surfaceErrorStatus(err); status == SurfaceFatal {
			return 0, status, fmt.Errorf("acquire surface texture: %w", err)
		}
		return 0, SurfaceStale, fmt.Errorf("%w: %w", ErrSurfaceStale, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return 0, SurfaceFatal, fmt.Errorf("create surface view: %w", err)
	}
	s.surfaceTexture = texture
	s.surfaceView = view

	image := b.images
	b.images++
	return image, SurfaceSuccess, nil
}

func (b *wgpuRendererBackendImpl) Record(frame FrameData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(frame.Slot)
	if err != nil {
		return err
	}
	if s.surfaceView == nil {
		return fmt.Errorf("slot %d has no acquired image", frame.Slot)
	}

	s.cameraBytes = frame.Camera.MarshalTo(s.cameraBytes)
	writes := []bind_group_provider.BufferWrite{{
		Provider: s.camera,
		Binding:  0,
		Data:     s.cameraBytes,
	}}
	if len(frame.Draws) > 0 {
		if err := b.ensureModelCapacity(s, uint64(len(frame.Draws))*UniformOffsetAlignment); err != nil {
			return err
		}
		s.modelBytes = marshalModels(s.modelBytes, frame.Draws)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.models,
			Binding:  0,
			Data:     s.modelBytes,
		})
	}
	b.writeBuffers(writes)

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(b.renderPassDescriptor(s.surfaceView, frame.ClearColor))
	if rp := b.pipeline.RenderPipeline(); rp != nil && b.geometry.IndexBuffer() != nil && len(frame.Draws) > 0 {
		pass.SetPipeline(rp)
		pass.SetVertexBuffer(0, b.geometry.VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(b.geometry.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.SetBindGroup(cameraGroup, s.camera.BindGroup(), nil)

		boundTexture := -1
		for i, d := range frame.Draws {
			if d.TextureSlot < 0 || d.TextureSlot >= len(b.textures) {
				continue
			}
			if d.TextureSlot != boundTexture {
				pass.SetBindGroup(textureGroup, b.textures[d.TextureSlot].BindGroup(), nil)
				boundTexture = d.TextureSlot
			}
			pass.SetBindGroup(modelGroup, s.models.BindGroup(), []uint32{modelOffset(i)})
			pass.DrawIndexed(d.IndexCount, 1, d.FirstIndex, d.BaseVertex, 0)
		}
	}
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish slot %d commands: %w", frame.Slot, err)
	}
	if s.commands != nil {
		s.commands.Release()
	}
	s.commands = commands
	return nil
}

// renderPassDescriptor builds the main pass. With MSAA the multisampled texture is drawn into
// and resolved to the surface view; without it the surface view is drawn into directly.
func (b *wgpuRendererBackendImpl) renderPassDescriptor(target *wgpu.TextureView, clear [4]float64) *wgpu.RenderPassDescriptor {
	color := wgpu.RenderPassColorAttachment{
		View:       target,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]},
	}
	if b.sampleCount > 1 {
		color.View = b.msaaView
		color.ResolveTarget = target
		color.StoreOp = wgpu.StoreOpDiscard
	}
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// writeBuffers writes staged uniform data. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil || len(w.Data) == 0 {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) Submit(slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(slot)
	if err != nil {
		return err
	}
	if s.commands == nil {
		return fmt.Errorf("slot %d has nothing recorded", slot)
	}
	s.submission = b.queue.Submit(s.commands)
	s.submitted = true
	s.commands.Release()
	s.commands = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present(slot int, image uint32) (SurfaceStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.slot(slot)
	if err != nil {
		return SurfaceFatal, err
	}
	if s.surfaceTexture == nil {
		return SurfaceStale, fmt.Errorf("%w: image %d was not acquired by slot %d", ErrSurfaceStale, image, slot)
	}
	b.surface.Present()
	s.releaseImage()
	return SurfaceSuccess, nil
}

func (b *wgpuRendererBackendImpl) RebuildSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}
	for i := range b.slots {
		b.slots[i].releaseImage()
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.resolvePresentMode(capabilities.PresentModes),
		AlphaMode:   alphaMode,
	})

	if err := b.createAttachments(width, height); err != nil {
		return err
	}
	if b.pipeline == nil {
		if err := b.createPipeline(); err != nil {
			return err
		}
	}
	b.configured = true
	return nil
}

// resolvePresentMode maps the configured PresentMode onto a mode the surface supports.
// FIFO is always supported.
func (b *wgpuRendererBackendImpl) resolvePresentMode(supported []wgpu.PresentMode) wgpu.PresentMode {
	want := wgpu.PresentModeFifo
	switch b.presentMode {
	case PresentModeUncapped:
		want = wgpu.PresentModeImmediate
	case PresentModeMailbox:
		want = wgpu.PresentModeMailbox
	}
	if want != wgpu.PresentModeFifo && !slices.Contains(supported, want) {
		b.logger.Warn("present mode unsupported, using fifo", "mode", b.presentMode)
		return wgpu.PresentModeFifo
	}
	return want
}

// createAttachments recreates the size-dependent depth and MSAA textures. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createAttachments(width, height int) error {
	b.releaseAttachments()

	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	count := uint32(b.sampleCount)

	if count > 1 {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("create msaa texture: %w", err)
		}
		b.msaaTexture = tex
		if b.msaaView, err = tex.CreateView(nil); err != nil {
			return fmt.Errorf("create msaa view: %w", err)
		}
	}

	// Depth sample count must match the color attachment.
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	b.depthTexture = tex
	if b.depthView, err = tex.CreateView(nil); err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) releaseAttachments() {
	for _, v := range []*wgpu.TextureView{b.msaaView, b.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.msaaTexture, b.depthTexture} {
		if t != nil {
			t.Release()
		}
	}
	b.msaaView, b.depthView = nil, nil
	b.msaaTexture, b.depthTexture = nil, nil
}

// createPipeline builds the sandbox render pipeline for the configured surface format.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createPipeline() error {
	p := pipeline.NewPipeline("Sandbox",
		pipeline.WithSource(sandboxShader, "vs_main", "fs_main"),
		pipeline.WithVertexLayouts(sandboxVertexLayout),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	)
	if err := p.Validate(); err != nil {
		return err
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey() + " Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	defer module.Release()

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout, b.modelLayout, b.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	defer layout.Release()

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: p.WriteMask(),
		Blend:     p.BlendState(),
	}
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.VertexEntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      p.DepthCompare(),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.SetRenderPipeline(created)
	b.pipeline = p
	return nil
}

func (b *wgpuRendererBackendImpl) UploadGeometry(vertices []common.Vertex, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertices) == 0 || len(indices) == 0 {
		return errors.New("geometry must have vertices and indices")
	}

	vertexData := MarshalVertices(vertices)
	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.geometry.Label() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	indexData := MarshalIndices(indices)
	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.geometry.Label() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return fmt.Errorf("create index buffer: %w", err)
	}
	b.queue.WriteBuffer(vb, 0, vertexData)
	b.queue.WriteBuffer(ib, 0, indexData)

	// Frames still in flight keep their own references to the previous buffers.
	b.geometry.SetGeometry(vb, ib, len(indices))
	return nil
}

func (b *wgpuRendererBackendImpl) UploadTexture(data common.TextureStagingData) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if data.Width == 0 || data.Height == 0 || len(data.Pixels) < int(data.Width*data.Height*4) {
		return 0, fmt.Errorf("invalid texture %dx%d with %d bytes", data.Width, data.Height, len(data.Pixels))
	}

	slot := len(b.textures)
	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Texture %d", slot))

	size := wgpu.Extent3D{Width: data.Width, Height: data.Height, DepthOrArrayLayers: 1}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label(),
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("create texture: %w", err)
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, fmt.Errorf("create texture view: %w", err)
	}
	provider.SetTexture(0, tex, view)

	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		provider.Release()
		return 0, fmt.Errorf("create sampler: %w", err)
	}
	provider.SetSampler(1, sampler)

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		provider.Release()
		return 0, fmt.Errorf("create texture bind group: %w", err)
	}
	provider.SetBindGroup(bg)

	b.textures = append(b.textures, provider)
	return slot, nil
}

func (b *wgpuRendererBackendImpl) WaitIdle() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return nil
	}
	b.device.Poll(true, nil)
	for i := range b.slots {
		b.slots[i].submitted = false
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.slots {
		s := &b.slots[i]
		s.releaseImage()
		if s.commands != nil {
			s.commands.Release()
			s.commands = nil
		}
		for _, p := range []bind_group_provider.BindGroupProvider{s.camera, s.models} {
			if p != nil {
				p.Release()
			}
		}
	}
	b.slots = nil
	for _, t := range b.textures {
		t.Release()
	}
	b.textures = nil
	b.geometry.Release()
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	for _, l := range []*wgpu.BindGroupLayout{b.cameraLayout, b.modelLayout, b.textureLayout} {
		if l != nil {
			l.Release()
		}
	}
	b.cameraLayout, b.modelLayout, b.textureLayout = nil, nil, nil
	b.releaseAttachments()

	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.configured = false
}

// slot returns the state for slot i. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) slot(i int) (*wgpuSlot, error) {
	if i < 0 || i >= len(b.slots) {
		return nil, fmt.Errorf("frame slot %d out of range [0, %d)", i, len(b.slots))
	}
	return &b.slots[i], nil
}

// surfaceErrorStatus classifies an error from acquiring the surface texture. The binding only
// reports the message text, so a lost surface, a lost device and out-of-memory are recognised by
// their wording; anything else (timeout, outdated) is treated as stale.
func surfaceErrorStatus(err error) SurfaceStatus {
	msg := strings.ToLower(err.Error())
	for _, fatal := range []string{"lost", "out of memory", "out-of-memory", "outofmemory"} {
		if strings.Contains(msg, fatal) {
			return SurfaceFatal
		}
	}
	return SurfaceStale
}
