// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
)

// Pipeline is the WebGPU backend's driver.Pipeline: exactly one of
// graph or comp is populated, mirroring how WebGPU splits render and
// compute pipelines into distinct object types.
type Pipeline struct {
	graph     *wgpu.RenderPipeline
	comp      *wgpu.ComputePipeline
	isCompute bool
}

func (p *Pipeline) Destroy() {
	if p.graph != nil {
		p.graph.Release()
	}
	if p.comp != nil {
		p.comp.Release()
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

	var buffers []wgpu.VertexBufferLayout
	for i, in := range s.VertexIn {
		buffers = append(buffers, wgpu.VertexBufferLayout{
			ArrayStride: uint64(in.Stride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         waVertexFormat(in.Format),
				Offset:         0,
				ShaderLocation: uint32(i),
			}},
		})
	}

	var targets []wgpu.ColorTargetState
	if len(s.Blend) == 0 {
		targets = append(targets, wgpu.ColorTargetState{
			Format:    wgpu.TextureFormatRGBA8Unorm,
			WriteMask: wgpu.ColorWriteMaskAll,
		})
	}
	for _, b := range s.Blend {
		var blendState *wgpu.BlendState
		if b.Enabled {
			blendState = &wgpu.BlendState{
				Color: wgpu.BlendComponent{
					Operation: waBlendOp(b.ColorOp),
					SrcFactor: waBlendFactor(b.SrcColor),
					DstFactor: waBlendFactor(b.DstColor),
				},
				Alpha: wgpu.BlendComponent{
					Operation: waBlendOp(b.AlphaOp),
					SrcFactor: waBlendFactor(b.SrcAlpha),
					DstFactor: waBlendFactor(b.DstAlpha),
				},
			}
		}
		targets = append(targets, wgpu.ColorTargetState{
			Format:    wgpu.TextureFormatRGBA8Unorm,
			Blend:     blendState,
			WriteMask: wgpu.ColorWriteMask(b.WriteMask),
		})
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label: s.DebugName,
		Vertex: wgpu.VertexState{
			Module:     vs.handle,
			EntryPoint: vs.entry,
			Buffers:    buffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  waTopology(s.Topology),
			CullMode:  waCullMode(s.CullMode),
			FrontFace: waFrontFace(s.FrontCCW),
		},
		Multisample: wgpu.MultisampleState{
			Count:                  uint32(maxInt(s.SampleCount, 1)),
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	}
	if s.DepthStencil.DepthTestEnabled || s.DepthStencil.StencilEnabled {
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: s.DepthStencil.DepthWriteEnabled,
			DepthCompare:      waCompare(s.DepthStencil.DepthFunc),
		}
	}
	if fs, ok := s.FragmentShader.(*Shader); ok && fs != nil {
		desc.Fragment = &wgpu.FragmentState{
			Module:     fs.handle,
			EntryPoint: fs.entry,
			Targets:    targets,
		}
	}

	rp, err := g.device.CreateRenderPipeline(desc)
	if err != nil || rp == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "CreateRenderPipeline failed")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	p := &Pipeline{graph: rp}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

func (g *GPU) newComputePipeline(s *driver.CompState) (driver.Pipeline, error) {
	cs, ok := s.ComputeShader.(*Shader)
	if !ok || cs == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "compute pipeline requires a compute shader")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	cp, err := g.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: s.DebugName,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     cs.handle,
			EntryPoint: cs.entry,
		},
	})
	if err != nil || cp == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "CreateComputePipeline failed")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	p := &Pipeline{comp: cp, isCompute: true}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

func waVertexFormat(f driver.VertexFmt) wgpu.VertexFormat {
	switch f {
	case driver.Float32:
		return wgpu.VertexFormatFloat32
	case driver.Float32x2:
		return wgpu.VertexFormatFloat32x2
	case driver.Float32x3:
		return wgpu.VertexFormatFloat32x3
	case driver.Float32x4:
		return wgpu.VertexFormatFloat32x4
	case driver.Int32:
		return wgpu.VertexFormatSint32
	case driver.Int32x2:
		return wgpu.VertexFormatSint32x2
	case driver.Int32x3:
		return wgpu.VertexFormatSint32x3
	case driver.Int32x4:
		return wgpu.VertexFormatSint32x4
	case driver.UInt32:
		return wgpu.VertexFormatUint32
	case driver.UByte4Norm:
		return wgpu.VertexFormatUnorm8x4
	case driver.Half2:
		return wgpu.VertexFormatFloat16x2
	case driver.Half4:
		return wgpu.VertexFormatFloat16x4
	default:
		return wgpu.VertexFormatFloat32x4
	}
}

func waTopology(t driver.Topology) wgpu.PrimitiveTopology {
	switch t {
	case driver.TLine:
		return wgpu.PrimitiveTopologyLineList
	case driver.TLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case driver.TPoint:
		return wgpu.PrimitiveTopologyPointList
	case driver.TTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func waCullMode(c driver.CullMode) wgpu.CullMode {
	switch c {
	case driver.CullFront:
		return wgpu.CullModeFront
	case driver.CullBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func waFrontFace(ccw bool) wgpu.FrontFace {
	if ccw {
		return wgpu.FrontFaceCCW
	}
	return wgpu.FrontFaceCW
}

func waBlendOp(o driver.BlendOp) wgpu.BlendOperation {
	switch o {
	case driver.BlendSubtract:
		return wgpu.BlendOperationSubtract
	case driver.BlendReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	case driver.BlendMin:
		return wgpu.BlendOperationMin
	case driver.BlendMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func waBlendFactor(f driver.BlendFactor) wgpu.BlendFactor {
	switch f {
	case driver.BlendOne:
		return wgpu.BlendFactorOne
	case driver.BlendSrcColor:
		return wgpu.BlendFactorSrc
	case driver.BlendOneMinusSrcColor:
		return wgpu.BlendFactorOneMinusSrc
	case driver.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case driver.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case driver.BlendDstColor:
		return wgpu.BlendFactorDst
	case driver.BlendOneMinusDstColor:
		return wgpu.BlendFactorOneMinusDst
	case driver.BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case driver.BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		return wgpu.BlendFactorZero
	}
}

func waFormat(f driver.PixelFmt) wgpu.TextureFormat {
	switch f {
	case driver.BGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case driver.RGB8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case driver.RG8Unorm:
		return wgpu.TextureFormatRG8Unorm
	case driver.R8Unorm:
		return wgpu.TextureFormatR8Unorm
	case driver.Depth24Stencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	case driver.Depth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}
