// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Capabilities is an immutable per-device record of backend feature
// flags and numeric limits, derived once at device init (spec §3).
type Capabilities struct {
	SupportsRayTracing   bool
	SupportsMeshShaders  bool
	SupportsCompute      bool
	SupportsGeometry     bool
	SupportsTessellation bool
	SupportsBindless     bool
	SupportsAsyncCompute bool

	MaxTextureSize     int
	MaxRenderTargets   int
	MaxVertexAttributes int
	MaxUniformBindings int
	MaxTextureBindings int
}

// GPU is the main interface to an underlying backend implementation.
// It is obtained from Driver.Open and is used to create resources,
// record frames, and submit work. A GPU embeds the behavior of
// backend.Base through composition in each concrete backend; this
// interface only specifies what callers may observe.
type GPU interface {
	// Driver returns the Driver that owns this GPU.
	Driver() Driver

	// Capabilities returns the immutable capability record derived
	// at init.
	Capabilities() Capabilities

	// BeginFrame opens the profiler's root marker for a new frame.
	// Calling BeginFrame twice without an intervening EndFrame is an
	// InvalidOperation.
	BeginFrame() error

	// EndFrame closes all open markers and submits accumulated
	// profiler metrics. EndFrame without a matching BeginFrame is an
	// InvalidOperation.
	EndFrame() error

	// Commit submits a batch of command buffers for execution.
	// Command buffers cannot be reused for recording until the send
	// on ch (if non-nil) reports completion. The order of cb within
	// one Commit call is meaningful: wait operations recorded in one
	// buffer apply to the batch as a whole.
	Commit(cb []CmdBuffer, ch chan<- error)

	// NewCmdBuffer creates a new command buffer in the initial
	// state.
	NewCmdBuffer() (CmdBuffer, error)

	// NewBuffer creates a new buffer. A zero size returns success
	// with a distinguished null-ish Buffer that is safe to destroy.
	NewBuffer(desc *BufferDesc) (Buffer, error)

	// NewTexture creates a new texture. A zero-sized descriptor
	// returns success with a distinguished null-ish Texture that is
	// safe to destroy.
	NewTexture(desc *TextureDesc) (Texture, error)

	// NewSampler creates a new sampler.
	NewSampler(desc *Sampling) (Sampler, error)

	// NewShader creates a new shader. If source.Kind is SourceAuto,
	// the kind is detected per shaderutil's rules.
	NewShader(source *ShaderSource, stage Stage, opts *ShaderOptions) (Shader, error)

	// NewPipeline creates a new pipeline. It must round-trip through
	// the pipeline cache: an identical canonicalised descriptor
	// returns the same Pipeline object (spec §4.6, §8 property 2).
	// state must be a *GraphState or a *CompState.
	NewPipeline(state any) (Pipeline, error)

	// NewRenderPass creates a new render pass.
	NewRenderPass(desc *RenderPassDesc) (RenderPass, error)

	// NewRenderTarget creates a render-target texture: desc's usage
	// gets URenderTarget (or UDepthStencil for depth/stencil formats)
	// added, and the texture is registered as a render target. No
	// view is created.
	NewRenderTarget(desc *TextureDesc) (Texture, error)

	// Deinit destroys all resources still in the registry, in the
	// order render targets, pipelines, shaders, samplers, buffers,
	// textures, leaving the registry empty. Swap chains are not held
	// in the registry and Deinit does not destroy them.
	Deinit()
}

// Destroyer is the interface wrapping the Destroy method, for types
// allocating external memory the GC does not manage.
type Destroyer interface {
	Destroy()
}

// Stage is a mask of programmable shader stages.
type Stage int

// Shader stages.
const (
	StageVertex Stage = 1 << iota
	StageFragment
	StageCompute
	StageGeometry
	StageTessCtrl
	StageTessEval
)

// SourceKind identifies the encoding of shader source bytes.
type SourceKind int

// Source kinds.
const (
	SourceAuto SourceKind = iota
	SourceGLSL
	SourceHLSL
	SourceSPIRV
	SourceMetal
	SourceWGSL
	SourceBinary
)

// ShaderSource describes raw shader input before compilation.
type ShaderSource struct {
	Kind       SourceKind
	Data       []byte
	EntryPoint string
	// IncludeDirs is searched, in order, to resolve #include "..."
	// directives (spec §4.7).
	IncludeDirs []string
}

// ShaderOptions controls shader creation.
type ShaderOptions struct {
	Defines    map[string]string
	Reflect    bool
	DebugName  string
}

// Shader is the interface that defines a compiled shader for use in
// a programmable pipeline stage.
type Shader interface {
	Destroyer
	Stage() Stage
	SourceKind() SourceKind
	EntryPoint() string
	// Reflection returns the reflection record, or nil if it was not
	// requested at creation.
	Reflection() *ReflectionInfo
}

// ReflectionInfo enumerates the interface a shader exposes to the
// pipeline that binds it (spec §4.7).
type ReflectionInfo struct {
	Uniforms      []UniformInfo
	Textures      []TextureBindingInfo
	Inputs        []VertexInputInfo
	Outputs       []OutputInfo
	PushConstants []PushConstantInfo
}

// UniformInfo describes one reflected uniform.
type UniformInfo struct {
	Name    string
	Type    string
	Size    int
	Offset  int
	Set     int
	Binding int
}

// TextureBindingInfo describes one reflected texture binding.
type TextureBindingInfo struct {
	Name      string
	Set       int
	Binding   int
	Dimension ViewType
}

// VertexInputInfo describes one reflected vertex shader input.
type VertexInputInfo struct {
	Name     string
	Location int
	Format   VertexFmt
}

// OutputInfo describes one reflected fragment shader output.
type OutputInfo struct {
	Name     string
	Location int
}

// PushConstantInfo describes one reflected push-constant range.
type PushConstantInfo struct {
	Name   string
	Offset int
	Size   int
	Stages Stage
}

// Usage is a mask indicating valid uses for a Buffer or Texture.
type Usage int

// Usage flags. Once set on a resource, usage flags are monotonic —
// they are never cleared for the lifetime of the resource.
const (
	UVertexData Usage = 1 << iota
	UIndexData
	UUniform
	UStorage
	UTransferSrc
	UTransferDst
	UIndirect
	USampled
	URenderTarget
	UDepthStencil
	UGeneric Usage = 1<<iota - 1
)

// MemoryClass describes how a Buffer's backing memory is visible to
// the host (spec §3).
type MemoryClass int

const (
	DeviceLocal MemoryClass = iota
	HostVisible
	HostCoherent
	HostCached
)

// BufferDesc describes the parameters used to create a Buffer.
type BufferDesc struct {
	Size      int64
	Usage     Usage
	Memory    MemoryClass
	DebugName string
}

// Buffer is the interface that defines a GPU buffer. Size is fixed
// at creation; a larger buffer requires creating a new one and
// copying data explicitly.
type Buffer interface {
	Destroyer
	// Visible returns whether the buffer is host visible. Buffers
	// advertised host-visible always support mapping.
	Visible() bool
	// Bytes returns a slice of length Size referring to the
	// underlying mapped storage, or nil if the buffer is not host
	// visible. The slice is valid for the buffer's lifetime.
	Bytes() []byte
	// Size returns the buffer's capacity in bytes, which may be
	// greater than the size requested at creation.
	Size() int64
	// Usage returns the usage flags the buffer was created with.
	Usage() Usage
}

// PixelFmt describes the format of a pixel (spec §6, minimum set).
type PixelFmt int

// Pixel formats.
const (
	RGBA8Unorm PixelFmt = iota
	BGRA8Unorm
	RGB8Unorm
	RG8Unorm
	R8Unorm
	Depth24Stencil8
	Depth32Float
)

// BytesPerPixel returns the per-pixel byte size of f, or 0 for an
// unrecognized format (spec §6, §8 property 6).
func BytesPerPixel(f PixelFmt) int {
	switch f {
	case RGBA8Unorm, BGRA8Unorm, Depth24Stencil8:
		return 4
	case Depth32Float:
		return 4
	case RGB8Unorm:
		return 3
	case RG8Unorm:
		return 2
	case R8Unorm:
		return 1
	default:
		return 0
	}
}

// IsDepthFormat reports whether f is a depth/stencil format (such
// formats have no color components, spec §6).
func IsDepthFormat(f PixelFmt) bool {
	return f == Depth24Stencil8 || f == Depth32Float
}

// SizeOfMip0 returns the byte size of mip level 0 of a
// width x height image in format f (spec §8 property 6).
func SizeOfMip0(f PixelFmt, width, height int) int64 {
	return int64(BytesPerPixel(f)) * int64(width) * int64(height)
}

// Dim3D is a three-dimensional size.
type Dim3D struct{ Width, Height, Depth int }

// Off3D is a three-dimensional offset.
type Off3D struct{ X, Y, Z int }

// TextureDesc describes the parameters used to create a Texture.
type TextureDesc struct {
	Dim3D
	Format    PixelFmt
	Layers    int
	Levels    int
	Samples   int
	Usage     Usage
	DebugName string
}

// ViewType is the type of a resource view.
type ViewType int

const (
	View1D ViewType = iota
	View2D
	View3D
	ViewCube
	View1DArray
	View2DArray
	ViewCubeArray
	View2DMS
	View2DMSArray
)

// Texture is the interface that defines a GPU image. Direct CPU
// access is not provided; copying data to a texture requires a
// staging buffer and a command-buffer copy.
type Texture interface {
	Destroyer
	Dim() Dim3D
	Format() PixelFmt
	Layers() int
	Levels() int
	Samples() int
	Usage() Usage
	// NewView creates a typed view of the texture. All views
	// created from a texture must be destroyed before the texture
	// itself is destroyed.
	NewView(typ ViewType, layer, layers, level, levels int) (TextureView, error)
}

// TextureView is a typed view of a Texture resource.
type TextureView interface {
	Destroyer
}

// Filter is the type of sampler filters.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	// FilterNoMipmap forces mip level 0; only valid as the mip
	// filter of a Sampling.
	FilterNoMipmap
)

// AddrMode is the type of sampler address modes.
type AddrMode int

const (
	AddrWrap AddrMode = iota
	AddrMirror
	AddrClamp
)

// CmpFunc is the type of comparison functions.
type CmpFunc int

const (
	CmpNever CmpFunc = iota
	CmpLess
	CmpEqual
	CmpLessEqual
	CmpGreater
	CmpNotEqual
	CmpGreaterEqual
	CmpAlways
)

// Sampling describes image sampler state.
type Sampling struct {
	Min, Mag, Mipmap Filter
	AddrU, AddrV, AddrW AddrMode
	MaxAniso         int
	Cmp              CmpFunc
	MinLOD, MaxLOD   float32
}

// Sampler is the interface that defines an image sampler.
type Sampler interface {
	Destroyer
}
