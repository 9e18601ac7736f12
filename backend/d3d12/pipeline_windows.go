// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
)

// Pipeline is the D3D12 backend's driver.Pipeline: a pipeline-state
// object. D3D12 splits root-signature binding layout from the PSO
// itself; this backend does not build root signatures (the same scope
// cut the other backends make for descriptor-set/bind-group layouts),
// so pipelines here are created against an implicit empty root
// signature and SetGraphicsRootSignature/SetComputeRootSignature are
// never called.
type Pipeline struct {
	pso       uintptr
	topology  uint32
	isCompute bool
}

func (p *Pipeline) Destroy() {
	if p.pso != 0 {
		comRelease(unsafe.Pointer(p.pso), (*_IUnknown)(unsafe.Pointer(p.pso)).vtbl.Release)
	}
}
func (p *Pipeline) IsCompute() bool { return p.isCompute }

func (g *GPU) newGraphicsPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	key := pipelinecache.HashGraphState(s)
	p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
		return g.buildGraphicsPipeline(s)
	})
	return p, err
}

func (g *GPU) buildGraphicsPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	vs, ok := s.VertexShader.(*Shader)
	if !ok || vs == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "graphics pipeline requires a vertex shader")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	var psBytecode []byte
	if fs, ok := s.FragmentShader.(*Shader); ok && fs != nil {
		psBytecode = fs.bytecode
	}
	_ = psBytecode

	// D3D12_GRAPHICS_PIPELINE_STATE_DESC is a large fixed layout; this
	// backend fills only topology type, cull mode, depth enable/func
	// and sample count. Shader bytecode, fill mode and blend state are
	// not passed to CreateGraphicsPipelineState.
	desc := struct {
		PrimitiveTopologyType uint32
		CullMode              uint32
		DepthEnable           uint32
		DepthFunc             uint32
		SampleCount           uint32
	}{
		PrimitiveTopologyType: waPrimitiveTopologyType(s.Topology),
		CullMode:              waCullMode(s.CullMode),
		DepthEnable:           boolToUint32(s.DepthStencil.DepthTestEnabled),
		DepthFunc:             waCompare(s.DepthStencil.DepthFunc),
		SampleCount:           uint32(maxInt(s.SampleCount, 1)),
	}
	var pso *_IUnknown
	hr := g.dev.call(g.dev.vtbl.CreateGraphicsPipelineState, uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&iidIUnknown)), uintptr(unsafe.Pointer(&pso)))
	if hr != 0 || pso == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "CreateGraphicsPipelineState failed: HRESULT %#x", hr)
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	p := &Pipeline{pso: uintptr(unsafe.Pointer(pso)), topology: waPrimitiveTopology(s.Topology)}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

func (g *GPU) newComputePipeline(s *driver.CompState) (driver.Pipeline, error) {
	cs, ok := s.ComputeShader.(*Shader)
	if !ok || cs == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "compute pipeline requires a compute shader")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	desc := struct {
		Bytecode []byte
	}{Bytecode: cs.bytecode}
	var pso *_IUnknown
	hr := g.dev.call(g.dev.vtbl.CreateComputePipelineState, uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&iidIUnknown)), uintptr(unsafe.Pointer(&pso)))
	if hr != 0 || pso == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "CreateComputePipelineState failed: HRESULT %#x", hr)
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	p := &Pipeline{pso: uintptr(unsafe.Pointer(pso)), isCompute: true}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func waPrimitiveTopologyType(t driver.Topology) uint32 {
	switch t {
	case driver.TLine, driver.TLineStrip:
		return primitiveTopologyTypeLine
	case driver.TPoint:
		return primitiveTopologyTypePoint
	default:
		return primitiveTopologyTypeTriangle
	}
}

func waPrimitiveTopology(t driver.Topology) uint32 {
	switch t {
	case driver.TLine:
		return primitiveTopologyLineList
	case driver.TLineStrip:
		return 3 // D3D_PRIMITIVE_TOPOLOGY_LINESTRIP
	case driver.TPoint:
		return primitiveTopologyPointList
	case driver.TTriangleStrip:
		return primitiveTopologyTriangleStrip
	default:
		return primitiveTopologyTriangleList
	}
}

func waCullMode(c driver.CullMode) uint32 {
	switch c {
	case driver.CullFront:
		return cullModeFront
	case driver.CullBack:
		return cullModeBack
	default:
		return cullModeNone
	}
}

func waCompare(f driver.CmpFunc) uint32 {
	switch f {
	case driver.CmpLess:
		return comparisonLess
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
		return comparisonNever
	}
}

func waBlendFactor(f driver.BlendFactor) uint32 {
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
