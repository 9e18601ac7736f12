// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/shaderutil"
)

// Buffer is the WebGPU backend's driver.Buffer.
type Buffer struct {
	gpu    *GPU
	handle *wgpu.Buffer
	size   int64
	usage  driver.Usage
	memory driver.MemoryClass
}

func (b *Buffer) Destroy() {
	if b.handle != nil {
		b.handle.Release()
	}
}

// Visible reports whether the buffer was created with a host-visible
// memory class; such buffers are mapped through GetMappedRange after
// MapAsync completes, not exposed as a live byte slice here.
func (b *Buffer) Visible() bool {
	return b.memory != driver.DeviceLocal
}

// Bytes always returns nil: a wgpu.Buffer's host-visible range is
// only valid between a completed MapAsync and the matching Unmap,
// not for the buffer's whole lifetime, so it cannot be handed out as
// a persistent slice the way this interface promises.
func (b *Buffer) Bytes() []byte { return nil }

func (b *Buffer) Size() int64 { return b.size }

func (b *Buffer) Usage() driver.Usage { return b.usage }

// Texture is the WebGPU backend's driver.Texture.
type Texture struct {
	gpu    *GPU
	handle *wgpu.Texture
	desc   driver.TextureDesc
	owned  bool
}

func (t *Texture) Destroy() {
	if t.handle != nil && t.owned {
		t.handle.Release()
	}
}

func (t *Texture) Dim() driver.Dim3D { return t.desc.Dim3D }

func (t *Texture) Format() driver.PixelFmt { return t.desc.Format }

func (t *Texture) Layers() int { return t.desc.Layers }

func (t *Texture) Levels() int { return t.desc.Levels }

func (t *Texture) Samples() int { return t.desc.Samples }

func (t *Texture) Usage() driver.Usage { return t.desc.Usage }

func (t *Texture) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.TextureView, error) {
	if t.handle == nil {
		return &TextureView{owner: t}, nil
	}
	view, err := t.handle.CreateView(&wgpu.TextureViewDescriptor{
		Format:          waFormat(t.desc.Format),
		Dimension:       waViewDimension(typ),
		BaseMipLevel:    uint32(level),
		MipLevelCount:   uint32(levels),
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: uint32(layers),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil || view == nil {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &TextureView{owner: t, handle: view, typ: typ}, nil
}

func waViewDimension(typ driver.ViewType) wgpu.TextureViewDimension {
	switch typ {
	case driver.View1D:
		return wgpu.TextureViewDimension1D
	case driver.View3D:
		return wgpu.TextureViewDimension3D
	case driver.ViewCube:
		return wgpu.TextureViewDimensionCube
	case driver.View1DArray:
		return wgpu.TextureViewDimension1D
	case driver.View2DArray, driver.View2DMSArray:
		return wgpu.TextureViewDimension2DArray
	case driver.ViewCubeArray:
		return wgpu.TextureViewDimensionCubeArray
	default:
		return wgpu.TextureViewDimension2D
	}
}

// TextureView is the WebGPU backend's driver.TextureView.
type TextureView struct {
	owner  *Texture
	typ    driver.ViewType
	handle *wgpu.TextureView
}

func (v *TextureView) Destroy() {
	if v.handle != nil {
		v.handle.Release()
	}
}

// Sampler is the WebGPU backend's driver.Sampler.
type Sampler struct {
	gpu    *GPU
	handle *wgpu.Sampler
}

func (s *Sampler) Destroy() {
	if s.handle != nil {
		s.handle.Release()
	}
}

func newSampler(g *GPU, desc *driver.Sampling) (*Sampler, error) {
	out, err := g.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  waAddr(desc.AddrU),
		AddressModeV:  waAddr(desc.AddrV),
		AddressModeW:  waAddr(desc.AddrW),
		MagFilter:     waFilter(desc.Mag),
		MinFilter:     waFilter(desc.Min),
		MipmapFilter:  waMipFilter(desc.Mipmap),
		LodMinClamp:   desc.MinLOD,
		LodMaxClamp:   desc.MaxLOD,
		Compare:       waCompare(desc.Cmp),
		MaxAnisotropy: uint16(maxInt(desc.MaxAniso, 1)),
	})
	if err != nil || out == nil {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &Sampler{gpu: g, handle: out}, nil
}

func waFilter(f driver.Filter) wgpu.FilterMode {
	if f == driver.FilterLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func waMipFilter(f driver.Filter) wgpu.MipmapFilterMode {
	if f == driver.FilterLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func waAddr(m driver.AddrMode) wgpu.AddressMode {
	switch m {
	case driver.AddrMirror:
		return wgpu.AddressModeMirrorRepeat
	case driver.AddrClamp:
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}

func waCompare(f driver.CmpFunc) wgpu.CompareFunction {
	switch f {
	case driver.CmpNever:
		return wgpu.CompareFunctionNever
	case driver.CmpLess:
		return wgpu.CompareFunctionLess
	case driver.CmpEqual:
		return wgpu.CompareFunctionEqual
	case driver.CmpLessEqual:
		return wgpu.CompareFunctionLessEqual
	case driver.CmpGreater:
		return wgpu.CompareFunctionGreater
	case driver.CmpNotEqual:
		return wgpu.CompareFunctionNotEqual
	case driver.CmpGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	default:
		return wgpu.CompareFunctionAlways
	}
}

// Shader is the WebGPU backend's driver.Shader, backed by a WGSL
// module. Only WGSL source is accepted; SPIR-V/GLSL/HLSL/MSL sources
// must go through a cross-compiling caller, mirroring how the
// corpus's D3D11 backend only accepts precompiled HLSL and rejects
// everything else at NewShader.
type Shader struct {
	stage      driver.Stage
	entry      string
	reflection *driver.ReflectionInfo
	handle     *wgpu.ShaderModule
}

func (s *Shader) Destroy() {
	if s.handle != nil {
		s.handle.Release()
	}
}

func (s *Shader) Stage() driver.Stage { return s.stage }

func (s *Shader) SourceKind() driver.SourceKind { return driver.SourceWGSL }

func (s *Shader) EntryPoint() string { return s.entry }

func (s *Shader) Reflection() *driver.ReflectionInfo { return s.reflection }

func newShader(g *GPU, source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (*Shader, error) {
	kind := source.Kind
	if kind == driver.SourceAuto {
		kind = shaderutil.DetectKind(source.Data, "")
	}
	if kind != driver.SourceWGSL {
		return nil, driverErr(gerr.UnsupportedFormat)
	}
	if len(source.Data) == 0 {
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	data, err := shaderutil.Prepare(source.Data, name, kind, stage, source.IncludeDirs)
	if err != nil {
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	entry := source.EntryPoint
	if entry == "" {
		entry = "main"
	}
	mod, err := g.device.CreateShaderModuleWGSL(name, string(data))
	if err != nil || mod == nil {
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	sh := &Shader{stage: stage, entry: entry, handle: mod}
	if opts != nil && opts.Reflect {
		sh.reflection = &driver.ReflectionInfo{}
	}
	return sh, nil
}

// RenderPass is the WebGPU backend's driver.RenderPass. WebGPU has no
// native render-pass object; attachments are bound directly via
// CommandEncoder.BeginRenderPass when a CmdBuffer begins a pass.
type RenderPass struct {
	desc driver.RenderPassDesc
}

func (r *RenderPass) Destroy() {}
