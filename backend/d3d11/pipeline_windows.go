// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
)

// Pipeline is the D3D11 backend's driver.Pipeline: the vertex/pixel
// shader pair plus the rasterizer, depth-stencil, and blend state
// objects D3D11 keeps as separate bindable objects rather than baked
// into one pipeline object the way Vulkan does. SetPipeline replays
// all of them together against the immediate context.
type Pipeline struct {
	graph *driver.GraphState

	vs *_ID3D11VertexShader
	ps *_ID3D11PixelShader

	rasterizer  *_ID3D11RasterizerState
	depthStencil *_ID3D11DepthStencilState
	blend       *_ID3D11BlendState
	topology    uint32
}

func (p *Pipeline) Destroy() {
	if p.rasterizer != nil {
		comObjRelease(unsafe.Pointer(p.rasterizer), p.rasterizer.vtbl)
	}
	if p.depthStencil != nil {
		comObjRelease(unsafe.Pointer(p.depthStencil), p.depthStencil.vtbl)
	}
	if p.blend != nil {
		comObjRelease(unsafe.Pointer(p.blend), p.blend.vtbl)
	}
}

func (p *Pipeline) IsCompute() bool { return false }

func (g *GPU) newGraphicsPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	key := pipelinecache.HashGraphState(s)
	p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
		return g.buildGraphicsPipeline(s)
	})
	return p, err
}

func (g *GPU) buildGraphicsPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	var vs *_ID3D11VertexShader
	var ps *_ID3D11PixelShader
	if sh, ok := s.VertexShader.(*Shader); ok {
		vs = sh.vs
	}
	if sh, ok := s.FragmentShader.(*Shader); ok {
		ps = sh.ps
	}

	rastDesc := struct {
		FillMode              uint32
		CullMode               uint32
		FrontCounterClockwise  int32
		DepthBias              int32
		DepthBiasClamp         float32
		SlopeScaledDepthBias   float32
		DepthClipEnable        int32
		ScissorEnable          int32
		MultisampleEnable      int32
		AntialiasedLineEnable  int32
	}{
		FillMode:             fillMode(s.Wireframe),
		CullMode:             cullMode(s.CullMode),
		DepthClipEnable:      1,
		MultisampleEnable:    boolToInt32(s.SampleCount > 1),
	}
	if s.FrontCCW {
		rastDesc.FrontCounterClockwise = 1
	}
	var raster *_ID3D11RasterizerState
	if hr := g.dev.call(g.dev.vtbl.CreateRasterizerState, uintptr(unsafe.Pointer(&rastDesc)), uintptr(unsafe.Pointer(&raster))); hr != 0 {
		return nil, driverErr(gerr.InvalidPipelineState)
	}

	dsDesc := struct {
		DepthEnable    int32
		DepthWriteMask uint32
		DepthFunc      uint32
		StencilEnable  int32
	}{
		DepthWriteMask: depthWriteMaskZero,
		DepthFunc:      comparisonLess,
	}
	if s.DepthStencil.DepthTestEnabled {
		dsDesc.DepthEnable = 1
	}
	if s.DepthStencil.DepthWriteEnabled {
		dsDesc.DepthWriteMask = depthWriteMaskAll
	}
	dsDesc.DepthFunc = cmpFunc(s.DepthStencil.DepthFunc)
	if s.DepthStencil.StencilEnabled {
		dsDesc.StencilEnable = 1
	}
	var depthStencil *_ID3D11DepthStencilState
	if hr := g.dev.call(g.dev.vtbl.CreateDepthStencilState, uintptr(unsafe.Pointer(&dsDesc)), uintptr(unsafe.Pointer(&depthStencil))); hr != 0 {
		comObjRelease(unsafe.Pointer(raster), raster.vtbl)
		return nil, driverErr(gerr.InvalidPipelineState)
	}

	var blendDesc struct {
		AlphaToCoverageEnable  int32
		IndependentBlendEnable int32
		RenderTarget [1]struct {
			BlendEnable           int32
			SrcBlend, DestBlend   uint32
			BlendOp               uint32
			SrcBlendAlpha, DestBlendAlpha uint32
			BlendOpAlpha          uint32
			RenderTargetWriteMask byte
		}
	}
	blendDesc.RenderTarget[0].BlendOp = blendOpAdd
	blendDesc.RenderTarget[0].BlendOpAlpha = blendOpAdd
	blendDesc.RenderTarget[0].RenderTargetWriteMask = colorWriteEnableAll
	blendDesc.RenderTarget[0].SrcBlend, blendDesc.RenderTarget[0].SrcBlendAlpha = blendOne, blendOne
	blendDesc.RenderTarget[0].DestBlend, blendDesc.RenderTarget[0].DestBlendAlpha = blendZero, blendZero
	if len(s.Blend) > 0 && s.Blend[0].Enabled {
		cb := s.Blend[0]
		blendDesc.RenderTarget[0].BlendEnable = 1
		blendDesc.RenderTarget[0].SrcBlend = blendFactor(cb.SrcColor)
		blendDesc.RenderTarget[0].DestBlend = blendFactor(cb.DstColor)
		blendDesc.RenderTarget[0].SrcBlendAlpha = blendFactor(cb.SrcAlpha)
		blendDesc.RenderTarget[0].DestBlendAlpha = blendFactor(cb.DstAlpha)
	}
	var blend *_ID3D11BlendState
	if hr := g.dev.call(g.dev.vtbl.CreateBlendState, uintptr(unsafe.Pointer(&blendDesc)), uintptr(unsafe.Pointer(&blend))); hr != 0 {
		comObjRelease(unsafe.Pointer(raster), raster.vtbl)
		comObjRelease(unsafe.Pointer(depthStencil), depthStencil.vtbl)
		return nil, driverErr(gerr.InvalidPipelineState)
	}

	p := &Pipeline{
		graph:        s,
		vs:           vs,
		ps:           ps,
		rasterizer:   raster,
		depthStencil: depthStencil,
		blend:        blend,
		topology:     d3dTopology(s.Topology),
	}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

func fillMode(wireframe bool) uint32 {
	if wireframe {
		return fillWireframe
	}
	return fillSolid
}

func cullMode(c driver.CullMode) uint32 {
	switch c {
	case driver.CullFront:
		return cullFront
	case driver.CullBack:
		return cullBack
	default:
		return cullNone
	}
}

func cmpFunc(f driver.CmpFunc) uint32 {
	switch f {
	case driver.CmpNever:
		return comparisonNever
	case driver.CmpEqual:
		return comparisonEqual
	case driver.CmpLessEqual:
		return comparisonLessEqual
	case driver.CmpGreater:
		return comparisonGreater
	case driver.CmpNotEqual:
		return comparisonNotEqual
	case driver.CmpGreaterEqual:
		return comparisonGreaterEqual
	case driver.CmpAlways:
		return comparisonAlways
	default:
		return comparisonLess
	}
}

func blendFactor(f driver.BlendFactor) uint32 {
	switch f {
	case driver.BlendOne:
		return blendOne
	case driver.BlendSrcColor:
		return blendSrcColor
	case driver.BlendOneMinusSrcColor:
		return blendInvSrcColor
	case driver.BlendSrcAlpha:
		return blendSrcAlpha
	case driver.BlendOneMinusSrcAlpha:
		return blendInvSrcAlpha
	case driver.BlendDstColor:
		return blendDestColor
	case driver.BlendOneMinusDstColor:
		return blendInvDestColor
	case driver.BlendDstAlpha:
		return blendDestAlpha
	case driver.BlendOneMinusDstAlpha:
		return blendInvDestAlpha
	default:
		return blendZero
	}
}

func d3dTopology(t driver.Topology) uint32 {
	switch t {
	case driver.TTriangleStrip:
		return primitiveTopologyTriangleStrip
	case driver.TLine, driver.TLineStrip:
		return primitiveTopologyLineList
	case driver.TPoint:
		return primitiveTopologyPointList
	default:
		return primitiveTopologyTriangleList
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
