// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// VertexFmt describes the format of a vertex attribute component
// (spec §6, minimum set).
type VertexFmt int

// Vertex formats.
const (
	Int8 VertexFmt = iota
	Int8x2
	Int8x3
	Int8x4
	Int16
	Int16x2
	Int16x3
	Int16x4
	Int32
	Int32x2
	Int32x3
	Int32x4
	UInt8
	UInt8x2
	UInt8x3
	UInt8x4
	UInt16
	UInt16x2
	UInt16x3
	UInt16x4
	UInt32
	UInt32x2
	UInt32x3
	UInt32x4
	Float32
	Float32x2
	Float32x3
	Float32x4
	Byte4Norm
	UByte4Norm
	Short2Norm
	UShort2Norm
	Half2
	Half4
)

// VertexIn describes one vertex buffer binding's per-element layout.
type VertexIn struct {
	Format VertexFmt
	Stride int
}

// Topology is the type of primitive topology.
type Topology int

const (
	TPoint Topology = iota
	TLine
	TLineStrip
	TTriangle
	TTriangleStrip
)

// CullMode selects which triangle winding is culled.
type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// BlendFactor is the type of blend equation factors.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendOp is the type of blend equation operators.
type BlendOp int

const (
	BlendAdd BlendOp = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

// ColorBlend describes per-render-target blend state.
type ColorBlend struct {
	Enabled                         bool
	SrcColor, DstColor              BlendFactor
	ColorOp                         BlendOp
	SrcAlpha, DstAlpha              BlendFactor
	AlphaOp                         BlendOp
	WriteMask                       int
}

// DepthStencil describes depth/stencil test state.
type DepthStencil struct {
	DepthTestEnabled  bool
	DepthWriteEnabled bool
	DepthFunc         CmpFunc
	StencilEnabled    bool
}

// GraphState is the full description of a graphics pipeline's fixed
// function and programmable state. It is hashed (FNV-1a, over its
// canonicalized byte encoding) to key the pipeline cache.
type GraphState struct {
	VertexShader   Shader
	FragmentShader Shader
	GeometryShader Shader

	VertexIn []VertexIn
	Topology Topology

	CullMode   CullMode
	FrontCCW   bool
	Wireframe  bool

	SampleCount int
	Blend       []ColorBlend
	DepthStencil DepthStencil

	RenderPass RenderPass
	Subpass    int

	DebugName string
}

// CompState is the full description of a compute pipeline.
type CompState struct {
	ComputeShader Shader
	DebugName     string
}

// Pipeline is the interface that defines a pipeline state object,
// the compiled, immutable union of shader stages and fixed-function
// state used to record draw or dispatch commands.
type Pipeline interface {
	Destroyer
	// IsCompute reports whether this pipeline was created from a
	// CompState rather than a GraphState.
	IsCompute() bool
}

// LoadOp is the type of render pass attachment load operations.
type LoadOp int

const (
	LoadDontCare LoadOp = iota
	LoadLoad
	LoadClear
)

// StoreOp is the type of render pass attachment store operations.
type StoreOp int

const (
	StoreDontCare StoreOp = iota
	StoreStore
)

// AttachDesc describes one render pass attachment.
type AttachDesc struct {
	Format     PixelFmt
	Samples    int
	LoadOp     LoadOp
	StoreOp    StoreOp
	StencilLoadOp  LoadOp
	StencilStoreOp StoreOp
}

// RenderPassDesc describes the parameters used to create a
// RenderPass: the shape of the attachments its subpasses reference,
// independent of the concrete textures bound at recording time.
type RenderPassDesc struct {
	ColorAttachments []AttachDesc
	DepthAttachment  *AttachDesc
	DebugName        string
}

// RenderPass is the interface that defines a render pass: a
// reusable description of attachment layout and subpass structure
// shared across pipelines and frame buffers.
type RenderPass interface {
	Destroyer
}
