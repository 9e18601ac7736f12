// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
)

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
@import Metal;
#include <CoreFoundation/CoreFoundation.h>
#include <Metal/Metal.h>

static CFTypeRef newRenderPipeline(CFTypeRef devRef, CFTypeRef vertFunc, CFTypeRef fragFunc,
		MTLPixelFormat colorFormat, int blendEnabled, MTLBlendFactor srcFactor, MTLBlendFactor dstFactor,
		MTLPixelFormat depthFormat, NSUInteger nAttrs, MTLVertexFormat *fmts, NSUInteger *offsets, NSUInteger *bufIdx, NSUInteger *strides, NSUInteger nBufs,
		char *errOut, size_t errCap) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		id<MTLFunction> vfn = (__bridge id<MTLFunction>)vertFunc;
		id<MTLFunction> ffn = (__bridge id<MTLFunction>)fragFunc;

		MTLVertexDescriptor *vdesc = [MTLVertexDescriptor vertexDescriptor];
		for (NSUInteger i = 0; i < nAttrs; i++) {
			vdesc.attributes[i].format = fmts[i];
			vdesc.attributes[i].offset = offsets[i];
			vdesc.attributes[i].bufferIndex = bufIdx[i];
		}
		for (NSUInteger i = 0; i < nBufs; i++) {
			vdesc.layouts[i].stride = strides[i] > 0 ? strides[i] : 4;
		}

		MTLRenderPipelineDescriptor *desc = [MTLRenderPipelineDescriptor new];
		desc.vertexFunction = vfn;
		desc.fragmentFunction = ffn;
		desc.vertexDescriptor = vdesc;
		desc.colorAttachments[0].pixelFormat = colorFormat;
		desc.colorAttachments[0].blendingEnabled = blendEnabled ? YES : NO;
		desc.colorAttachments[0].sourceRGBBlendFactor = srcFactor;
		desc.colorAttachments[0].sourceAlphaBlendFactor = srcFactor;
		desc.colorAttachments[0].destinationRGBBlendFactor = dstFactor;
		desc.colorAttachments[0].destinationAlphaBlendFactor = dstFactor;
		if (depthFormat != MTLPixelFormatInvalid) {
			desc.depthAttachmentPixelFormat = depthFormat;
		}

		NSError *err = nil;
		id<MTLRenderPipelineState> pso = [dev newRenderPipelineStateWithDescriptor:desc error:&err];
		if (pso == nil) {
			if (err != nil && errOut != NULL) {
				strlcpy(errOut, [[err localizedDescription] UTF8String], errCap);
			}
			return NULL;
		}
		return CFBridgingRetain(pso);
	}
}

static CFTypeRef newDepthStencilState(int depthEnabled, int depthWriteEnabled, MTLCompareFunction cmp) {
	@autoreleasepool {
		MTLDepthStencilDescriptor *desc = [MTLDepthStencilDescriptor new];
		desc.depthCompareFunction = depthEnabled ? cmp : MTLCompareFunctionAlways;
		desc.depthWriteEnabled = depthWriteEnabled ? YES : NO;
		id<MTLDevice> dev = MTLCreateSystemDefaultDevice();
		id<MTLDepthStencilState> state = [dev newDepthStencilStateWithDescriptor:desc];
		return CFBridgingRetain(state);
	}
}

static CFTypeRef newComputePipeline(CFTypeRef devRef, CFTypeRef fn, char *errOut, size_t errCap) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		id<MTLFunction> func = (__bridge id<MTLFunction>)fn;
		NSError *err = nil;
		id<MTLComputePipelineState> pso = [dev newComputePipelineStateWithFunction:func error:&err];
		if (pso == nil) {
			if (err != nil && errOut != NULL) {
				strlcpy(errOut, [[err localizedDescription] UTF8String], errCap);
			}
			return NULL;
		}
		return CFBridgingRetain(pso);
	}
}
*/
import "C"

// Pipeline is the Metal backend's driver.Pipeline: either an
// MTLRenderPipelineState plus the MTLDepthStencilState and
// MTLCullMode/MTLPrimitiveType it was created with, or an
// MTLComputePipelineState. Metal, unlike D3D12's root signatures or
// Vulkan's pipeline layouts, needs no separate binding-layout object:
// buffer/texture/sampler arguments are bound directly by index on the
// encoder, so there is nothing more to build here.
type Pipeline struct {
	renderPSO    C.CFTypeRef
	depthStencil C.CFTypeRef
	computePSO   C.CFTypeRef
	cullMode     C.MTLCullMode
	primitive    C.MTLPrimitiveType
	isCompute    bool
}

func (p *Pipeline) Destroy() {
	cfRelease(p.renderPSO)
	cfRelease(p.depthStencil)
	cfRelease(p.computePSO)
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
	var fragFn C.CFTypeRef
	if fs, ok := s.FragmentShader.(*Shader); ok && fs != nil {
		fragFn = fs.function
	}

	nAttrs := len(s.VertexIn)
	fmts := make([]C.MTLVertexFormat, maxInt(nAttrs, 1))
	offsets := make([]C.NSUInteger, maxInt(nAttrs, 1))
	bufIdx := make([]C.NSUInteger, maxInt(nAttrs, 1))
	strides := make([]C.NSUInteger, maxInt(nAttrs, 1))
	offset := 0
	for i, in := range s.VertexIn {
		fmts[i] = mtlVertexFormat(in.Format)
		offsets[i] = C.NSUInteger(offset)
		bufIdx[i] = C.NSUInteger(i)
		strides[i] = C.NSUInteger(in.Stride)
		offset += in.Stride
	}

	colorFormat := mtlPixelFormatBGRA8Unorm
	blendEnabled := 0
	var srcFactor, dstFactor C.MTLBlendFactor = mtlBlendFactorOne, mtlBlendFactorZero
	if len(s.Blend) > 0 && s.Blend[0].Enabled {
		blendEnabled = 1
		srcFactor = mtlBlendFactor(s.Blend[0].SrcColor)
		dstFactor = mtlBlendFactor(s.Blend[0].DstColor)
	}
	depthFormat := C.MTLPixelFormat(C.MTLPixelFormatInvalid)
	if s.DepthStencil.DepthTestEnabled {
		depthFormat = mtlPixelFormatDepth32Float
	}

	errBuf := make([]byte, 256)
	var fmtPtr *C.MTLVertexFormat
	var offPtr, bufPtr, stridePtr *C.NSUInteger
	if nAttrs > 0 {
		fmtPtr, offPtr, bufPtr, stridePtr = &fmts[0], &offsets[0], &bufIdx[0], &strides[0]
	}
	pso := C.newRenderPipeline(g.dev, vs.function, fragFn, colorFormat, C.int(blendEnabled), srcFactor, dstFactor,
		depthFormat, C.NSUInteger(nAttrs), fmtPtr, offPtr, bufPtr, stridePtr, C.NSUInteger(maxInt(nAttrs, 1)),
		(*C.char)(unsafe.Pointer(&errBuf[0])), C.size_t(len(errBuf)))
	if pso == 0 {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "newRenderPipelineStateWithDescriptor: failed: %s", cString(errBuf))
		return nil, driverErr(gerr.InvalidPipelineState)
	}

	depthEnabled := 0
	if s.DepthStencil.DepthTestEnabled {
		depthEnabled = 1
	}
	depthWrite := 0
	if s.DepthStencil.DepthWriteEnabled {
		depthWrite = 1
	}
	ds := C.newDepthStencilState(C.int(depthEnabled), C.int(depthWrite), mtlCompareFunction(s.DepthStencil.DepthFunc))

	p := &Pipeline{renderPSO: pso, depthStencil: ds, cullMode: mtlCullMode(s.CullMode), primitive: mtlPrimitiveType(s.Topology)}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

func (g *GPU) newComputePipeline(s *driver.CompState) (driver.Pipeline, error) {
	cs, ok := s.ComputeShader.(*Shader)
	if !ok || cs == nil {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "compute pipeline requires a compute shader")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	errBuf := make([]byte, 256)
	pso := C.newComputePipeline(g.dev, cs.function, (*C.char)(unsafe.Pointer(&errBuf[0])), C.size_t(len(errBuf)))
	if pso == 0 {
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "newComputePipelineStateWithFunction: failed: %s", cString(errBuf))
		return nil, driverErr(gerr.InvalidPipelineState)
	}
	p := &Pipeline{computePSO: pso, isCompute: true}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}
