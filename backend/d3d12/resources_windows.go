// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/shaderutil"
)

// Buffer is the D3D12 backend's driver.Buffer: a committed resource on
// either the default, upload, or readback heap, plus the resource
// state it is currently tracked at for barrier transitions.
type Buffer struct {
	gpu    *GPU
	handle *_ID3D12Resource
	size   int64
	usage  driver.Usage
	state  uint32
}

func (b *Buffer) Destroy() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}
func (b *Buffer) Visible() bool     { return true }
func (b *Buffer) Size() int64       { return b.size }
func (b *Buffer) Usage() driver.Usage { return b.usage }

// Bytes maps the resource and returns a slice over its contents. Only
// upload/readback-heap buffers (state includes GenericRead or
// CopyDest) are CPU-visible; device-local buffers return nil, the
// same contract the software and d3d11 backends use for non-mappable
// memory.
func (b *Buffer) Bytes() []byte {
	if b.handle == nil || b.size == 0 {
		return nil
	}
	var ptr unsafe.Pointer
	hr := b.handle.call(b.handle.vtbl.Map, 0, 0, uintptr(unsafe.Pointer(&ptr)))
	if hr != 0 || ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), b.size)
}

// Texture is the D3D12 backend's driver.Texture: a committed 2D
// resource (or array/cube via DepthOrArraySize), plus the usage it was
// created with. It does not track mip-level subresource state
// individually; every subresource transitions together.
type Texture struct {
	gpu    *GPU
	handle *_ID3D12Resource
	desc   driver.TextureDesc
	state  uint32
	owned  bool
}

func (t *Texture) Destroy() {
	if t.owned && t.handle != nil {
		t.handle.Release()
	}
	t.handle = nil
}
func (t *Texture) Dim() driver.Dim3D       { return t.desc.Dim3D }
func (t *Texture) Format() driver.PixelFmt { return t.desc.Format }
func (t *Texture) Layers() int             { return t.desc.Layers }
func (t *Texture) Levels() int             { return t.desc.Levels }
func (t *Texture) Samples() int            { return t.desc.Samples }
func (t *Texture) Usage() driver.Usage     { return t.desc.Usage }

func (t *Texture) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.TextureView, error) {
	return &TextureView{owner: t, typ: typ, layer: layer, layers: layers, level: level, levels: levels}, nil
}

// TextureView carries only the view parameters: this backend creates
// no SRV/RTV/DSV descriptor for a view, neither here nor at the point
// of use, so views are never bound to the pipeline.
type TextureView struct {
	owner                      *Texture
	typ                        driver.ViewType
	layer, layers, level, levels int
}

func (v *TextureView) Destroy() {}

type Sampler struct {
	gpu  *GPU
	desc driver.Sampling
}

func (s *Sampler) Destroy() {}

// Shader holds HLSL source text after include resolution; only
// SourceHLSL is accepted. The text is not compiled to DXIL: bytecode
// is the preprocessed source, not driver-ready bytecode.
type Shader struct {
	stage      driver.Stage
	entry      string
	bytecode   []byte
	reflection *driver.ReflectionInfo
}

func (s *Shader) Destroy()                            {}
func (s *Shader) Stage() driver.Stage                 { return s.stage }
func (s *Shader) SourceKind() driver.SourceKind       { return driver.SourceHLSL }
func (s *Shader) EntryPoint() string                  { return s.entry }
func (s *Shader) Reflection() *driver.ReflectionInfo  { return s.reflection }

func newShader(g *GPU, source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (*Shader, error) {
	kind := source.Kind
	if kind == driver.SourceAuto {
		name := ""
		if opts != nil {
			name = opts.DebugName
		}
		kind = shaderutil.DetectKind(source.Data, name)
	}
	if kind != driver.SourceHLSL {
		g.LogError(gerr.Error, gerr.UnsupportedFormat, "d3d12 shaders must be HLSL source, got %v", kind)
		return nil, driverErr(gerr.UnsupportedFormat)
	}
	if len(source.Data) == 0 {
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "empty shader source")
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	data, err := shaderutil.Prepare(source.Data, name, kind, stage, source.IncludeDirs)
	if err != nil {
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "shader preprocessing failed: %v", err)
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	entry := source.EntryPoint
	if entry == "" {
		entry = "main"
	}
	return &Shader{stage: stage, entry: entry, bytecode: data}, nil
}

// RenderPass is a pure attachment-layout descriptor: D3D12 has no
// render-pass object to allocate here.
type RenderPass struct{ desc driver.RenderPassDesc }

func (r *RenderPass) Destroy() {}
