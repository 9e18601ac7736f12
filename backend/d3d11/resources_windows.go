// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/shaderutil"
)

type _ID3D11Buffer struct{ vtbl *_IUnknownVtbl }
type _ID3D11Texture2D struct{ vtbl *_IUnknownVtbl }
type _ID3D11ShaderResourceView struct{ vtbl *_IUnknownVtbl }
type _ID3D11RenderTargetView struct{ vtbl *_IUnknownVtbl }
type _ID3D11DepthStencilView struct{ vtbl *_IUnknownVtbl }
type _ID3D11SamplerState struct{ vtbl *_IUnknownVtbl }
type _ID3D11VertexShader struct{ vtbl *_IUnknownVtbl }
type _ID3D11PixelShader struct{ vtbl *_IUnknownVtbl }
type _ID3D11InputLayout struct{ vtbl *_IUnknownVtbl }
type _ID3D11RasterizerState struct{ vtbl *_IUnknownVtbl }
type _ID3D11BlendState struct{ vtbl *_IUnknownVtbl }
type _ID3D11DepthStencilState struct{ vtbl *_IUnknownVtbl }

func comObjRelease(obj unsafe.Pointer, vtbl *_IUnknownVtbl) {
	if obj != nil && vtbl != nil {
		comRelease(obj, vtbl.Release)
	}
}

// Buffer is the D3D11 backend's driver.Buffer.
type Buffer struct {
	gpu    *GPU
	handle *_ID3D11Buffer
	size   int64
	usage  driver.Usage
	bind   uint32
}

func (b *Buffer) Destroy() {
	if b.handle != nil {
		comObjRelease(unsafe.Pointer(b.handle), b.handle.vtbl)
	}
}

func (b *Buffer) Visible() bool { return false }

func (b *Buffer) Bytes() []byte { return nil }

func (b *Buffer) Size() int64 { return b.size }

func (b *Buffer) Usage() driver.Usage { return b.usage }

// Texture is the D3D11 backend's driver.Texture, an ID3D11Texture2D.
type Texture struct {
	gpu    *GPU
	handle *_ID3D11Texture2D
	desc   driver.TextureDesc
}

func (t *Texture) Destroy() {
	if t.handle != nil {
		comObjRelease(unsafe.Pointer(t.handle), t.handle.vtbl)
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
	if driver.IsDepthFormat(t.desc.Format) {
		var view *_ID3D11DepthStencilView
		hr := t.gpu.dev.call(t.gpu.dev.vtbl.CreateDepthStencilView, uintptr(unsafe.Pointer(t.handle)), 0, uintptr(unsafe.Pointer(&view)))
		if hr != 0 {
			return nil, driverErr(gerr.ResourceCreationFailed)
		}
		return &TextureView{owner: t, dsv: view, typ: typ}, nil
	}
	if t.desc.Usage&driver.URenderTarget != 0 {
		var view *_ID3D11RenderTargetView
		hr := t.gpu.dev.call(t.gpu.dev.vtbl.CreateRenderTargetView, uintptr(unsafe.Pointer(t.handle)), 0, uintptr(unsafe.Pointer(&view)))
		if hr != 0 {
			return nil, driverErr(gerr.ResourceCreationFailed)
		}
		return &TextureView{owner: t, rtv: view, typ: typ}, nil
	}
	var srv *_ID3D11ShaderResourceView
	hr := t.gpu.dev.call(t.gpu.dev.vtbl.CreateShaderResourceView, uintptr(unsafe.Pointer(t.handle)), 0, uintptr(unsafe.Pointer(&srv)))
	if hr != 0 {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &TextureView{owner: t, srv: srv, typ: typ}, nil
}

// TextureView is the D3D11 backend's driver.TextureView: exactly one
// of srv, rtv, dsv is populated depending on the parent texture's
// usage, since D3D11 has no single view type that serves all three.
type TextureView struct {
	owner *Texture
	typ   driver.ViewType
	srv   *_ID3D11ShaderResourceView
	rtv   *_ID3D11RenderTargetView
	dsv   *_ID3D11DepthStencilView
}

func (v *TextureView) Destroy() {
	if v.srv != nil {
		comObjRelease(unsafe.Pointer(v.srv), v.srv.vtbl)
	}
	if v.rtv != nil {
		comObjRelease(unsafe.Pointer(v.rtv), v.rtv.vtbl)
	}
	if v.dsv != nil {
		comObjRelease(unsafe.Pointer(v.dsv), v.dsv.vtbl)
	}
}

// Sampler is the D3D11 backend's driver.Sampler.
type Sampler struct {
	gpu    *GPU
	handle *_ID3D11SamplerState
}

func (s *Sampler) Destroy() {
	if s.handle != nil {
		comObjRelease(unsafe.Pointer(s.handle), s.handle.vtbl)
	}
}

func newSampler(g *GPU, desc *driver.Sampling) (*Sampler, error) {
	d3ddesc := struct {
		Filter         uint32
		AddressU       uint32
		AddressV       uint32
		AddressW       uint32
		MipLODBias     float32
		MaxAnisotropy  uint32
		ComparisonFunc uint32
		BorderColor    [4]float32
		MinLOD         float32
		MaxLOD         float32
	}{
		Filter:        d3dFilter(desc.Min, desc.Mag, desc.Mipmap),
		AddressU:      d3dAddr(desc.AddrU),
		AddressV:      d3dAddr(desc.AddrV),
		AddressW:      d3dAddr(desc.AddrW),
		MaxAnisotropy: uint32(maxInt(desc.MaxAniso, 1)),
		MinLOD:        desc.MinLOD,
		MaxLOD:        desc.MaxLOD,
	}
	var out *_ID3D11SamplerState
	hr := g.dev.call(g.dev.vtbl.CreateSamplerState, uintptr(unsafe.Pointer(&d3ddesc)), uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &Sampler{gpu: g, handle: out}, nil
}

func d3dFilter(min, mag, mip driver.Filter) uint32 {
	// D3D11_FILTER is a packed bitfield of (min, mag, mip); only the
	// all-point and all-linear combinations are distinguished here,
	// mirroring the reduced filter set the corpus's D3D11 backend
	// itself supports.
	if min == driver.FilterLinear && mag == driver.FilterLinear {
		return 0x15 // D3D11_FILTER_MIN_MAG_MIP_LINEAR
	}
	return 0 // D3D11_FILTER_MIN_MAG_MIP_POINT
}

func d3dAddr(m driver.AddrMode) uint32 {
	switch m {
	case driver.AddrMirror:
		return 2 // D3D11_TEXTURE_ADDRESS_MIRROR
	case driver.AddrClamp:
		return 3 // D3D11_TEXTURE_ADDRESS_CLAMP
	default:
		return 1 // D3D11_TEXTURE_ADDRESS_WRAP
	}
}

// Shader is the D3D11 backend's driver.Shader: a compiled HLSL
// shader object. Source must already be compiled bytecode
// (SourceBinary); this backend does not invoke d3dcompiler at
// runtime, mirroring how the corpus's D3D11 backend accepts
// precompiled HLSL blobs rather than source text.
type Shader struct {
	stage      driver.Stage
	kind       driver.SourceKind
	entry      string
	reflection *driver.ReflectionInfo
	vs         *_ID3D11VertexShader
	ps         *_ID3D11PixelShader
}

func (s *Shader) Destroy() {
	if s.vs != nil {
		comObjRelease(unsafe.Pointer(s.vs), s.vs.vtbl)
	}
	if s.ps != nil {
		comObjRelease(unsafe.Pointer(s.ps), s.ps.vtbl)
	}
}

func (s *Shader) Stage() driver.Stage { return s.stage }

func (s *Shader) SourceKind() driver.SourceKind { return s.kind }

func (s *Shader) EntryPoint() string { return s.entry }

func (s *Shader) Reflection() *driver.ReflectionInfo { return s.reflection }

func newShader(g *GPU, source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (*Shader, error) {
	kind := source.Kind
	if kind == driver.SourceAuto {
		kind = shaderutil.DetectKind(source.Data, "")
	}
	if kind != driver.SourceHLSL && kind != driver.SourceBinary {
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
	sh := &Shader{stage: stage, kind: kind, entry: entry}

	switch stage {
	case driver.StageVertex:
		var vs *_ID3D11VertexShader
		hr := g.dev.call(g.dev.vtbl.CreateVertexShader, uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)), 0, uintptr(unsafe.Pointer(&vs)))
		if hr != 0 {
			return nil, driverErr(gerr.ShaderCompilationFailed)
		}
		sh.vs = vs
	case driver.StageFragment:
		var ps *_ID3D11PixelShader
		hr := g.dev.call(g.dev.vtbl.CreatePixelShader, uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)), 0, uintptr(unsafe.Pointer(&ps)))
		if hr != 0 {
			return nil, driverErr(gerr.ShaderCompilationFailed)
		}
		sh.ps = ps
	default:
		return nil, driverErr(gerr.UnsupportedFormat)
	}

	if opts != nil && opts.Reflect {
		sh.reflection = &driver.ReflectionInfo{}
	}
	return sh, nil
}

// RenderPass is the D3D11 backend's driver.RenderPass. D3D11 has no
// native render pass object; attachments are bound directly via
// OMSetRenderTargets when a CmdBuffer begins a pass.
type RenderPass struct {
	desc driver.RenderPassDesc
}

func (r *RenderPass) Destroy() {}
