package pipeline

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSource is returned by Validate when a pipeline has no shader source or entry points.
var ErrNoSource = errors.New("pipeline: shader source and entry points are required")

// pipeline is the implementation of the Pipeline interface.
// It describes the render state of one render pipeline and holds the created GPU object.
type pipeline struct {
	// pipelineKey labels the GPU objects created for this pipeline
	pipelineKey string

	// source is WGSL containing both the vertex and fragment entry points
	source         string
	vertexEntry    string
	fragmentEntry  string
	vertexLayouts  []wgpu.VertexBufferLayout
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a render pipeline: its WGSL module, vertex input layout, and the depth,
// cull, and blend state used when the backend creates it. The backend sets the created
// *wgpu.RenderPipeline back on the Pipeline.
type Pipeline interface {
	// PipelineKey returns the key used to label GPU objects created for this pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Source returns the WGSL source holding both shader stages.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// VertexEntryPoint returns the name of the vertex stage entry point.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the fragment stage entry point.
	FragmentEntryPoint() string

	// VertexLayouts returns the vertex buffer layouts the vertex stage reads.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per bound vertex buffer
	VertexLayouts() []wgpu.VertexBufferLayout

	// Validate reports whether the pipeline has enough information to be created.
	//
	// Returns:
	//   - error: ErrNoSource if the source or an entry point is missing
	Validate() error

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function implied by DepthTestEnabled.
	//
	// Returns:
	//   - wgpu.CompareFunction: CompareFunctionLess when depth testing, CompareFunctionAlways otherwise
	DepthCompare() wgpu.CompareFunction

	// BlendEnabled returns whether blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state, or nil if blending is not enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state or nil
	BlendState() *wgpu.BlendState

	// RenderPipeline returns the created GPU pipeline, or nil before the backend has created it.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the created GPU pipeline.
	//
	// Parameters:
	//   - rp: the WebGPU render pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)

	// Release releases the created GPU pipeline, if any.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description with depth testing on, no culling,
// counter-clockwise front faces, and triangle lists.
//
// Parameters:
//   - pipelineKey: the key used to label GPU objects
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		vertexEntry:       "vs_main",
		fragmentEntry:     "fs_main",
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Source() string {
	return p.source
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntry
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) Validate() error {
	if p.source == "" || p.vertexEntry == "" || p.fragmentEntry == "" {
		return ErrNoSource
	}
	return nil
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	if !p.depthTestEnabled {
		return wgpu.CompareFunctionAlways
	}
	return wgpu.CompareFunctionLess
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
