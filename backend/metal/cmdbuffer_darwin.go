// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"sync"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
@import Metal;
#include <CoreFoundation/CoreFoundation.h>
#include <Metal/Metal.h>

static CFTypeRef newCommandBuffer(CFTypeRef queueRef) {
	@autoreleasepool {
		id<MTLCommandQueue> q = (__bridge id<MTLCommandQueue>)queueRef;
		id<MTLCommandBuffer> cb = [q commandBuffer];
		return CFBridgingRetain(cb);
	}
}

static CFTypeRef beginRenderPass(CFTypeRef cmdRef, CFTypeRef colorTexRef, MTLLoadAction colorLoad,
		float cr, float cg, float cb_, float ca, CFTypeRef depthTexRef, MTLLoadAction depthLoad, double clearDepth, int hasDepth) {
	@autoreleasepool {
		id<MTLCommandBuffer> cmd = (__bridge id<MTLCommandBuffer>)cmdRef;
		MTLRenderPassDescriptor *desc = [MTLRenderPassDescriptor renderPassDescriptor];
		if (colorTexRef != NULL) {
			id<MTLTexture> colorTex = (__bridge id<MTLTexture>)colorTexRef;
			desc.colorAttachments[0].texture = colorTex;
			desc.colorAttachments[0].loadAction = colorLoad;
			desc.colorAttachments[0].storeAction = MTLStoreActionStore;
			desc.colorAttachments[0].clearColor = MTLClearColorMake(cr, cg, cb_, ca);
		}
		if (hasDepth && depthTexRef != NULL) {
			id<MTLTexture> depthTex = (__bridge id<MTLTexture>)depthTexRef;
			desc.depthAttachment.texture = depthTex;
			desc.depthAttachment.loadAction = depthLoad;
			desc.depthAttachment.storeAction = MTLStoreActionStore;
			desc.depthAttachment.clearDepth = clearDepth;
		}
		id<MTLRenderCommandEncoder> enc = [cmd renderCommandEncoderWithDescriptor:desc];
		return CFBridgingRetain(enc);
	}
}

static void renderSetPipelineState(CFTypeRef encRef, CFTypeRef psoRef) {
	id<MTLRenderCommandEncoder> enc = (__bridge id<MTLRenderCommandEncoder>)encRef;
	[enc setRenderPipelineState:(__bridge id<MTLRenderPipelineState>)psoRef];
}

static void renderSetDepthStencilState(CFTypeRef encRef, CFTypeRef dsRef) {
	id<MTLRenderCommandEncoder> enc = (__bridge id<MTLRenderCommandEncoder>)encRef;
	[enc setDepthStencilState:(__bridge id<MTLDepthStencilState>)dsRef];
}

static void renderSetCullMode(CFTypeRef encRef, MTLCullMode mode) {
	[(__bridge id<MTLRenderCommandEncoder>)encRef setCullMode:mode];
}

static void renderSetViewport(CFTypeRef encRef, double x, double y, double w, double h, double minD, double maxD) {
	MTLViewport vp = {x, y, w, h, minD, maxD};
	[(__bridge id<MTLRenderCommandEncoder>)encRef setViewport:vp];
}

static void renderSetScissor(CFTypeRef encRef, NSUInteger x, NSUInteger y, NSUInteger w, NSUInteger h) {
	MTLScissorRect r = {x, y, w, h};
	[(__bridge id<MTLRenderCommandEncoder>)encRef setScissorRect:r];
}

static void renderSetVertexBuffer(CFTypeRef encRef, CFTypeRef bufRef, NSUInteger offset, NSUInteger index) {
	[(__bridge id<MTLRenderCommandEncoder>)encRef setVertexBuffer:(__bridge id<MTLBuffer>)bufRef offset:offset atIndex:index];
}

static void renderSetFragmentBuffer(CFTypeRef encRef, CFTypeRef bufRef, NSUInteger offset, NSUInteger index) {
	[(__bridge id<MTLRenderCommandEncoder>)encRef setFragmentBuffer:(__bridge id<MTLBuffer>)bufRef offset:offset atIndex:index];
}

static void renderSetFragmentTexture(CFTypeRef encRef, CFTypeRef texRef, NSUInteger index) {
	[(__bridge id<MTLRenderCommandEncoder>)encRef setFragmentTexture:(__bridge id<MTLTexture>)texRef atIndex:index];
}

static void renderSetFragmentSampler(CFTypeRef encRef, CFTypeRef sampRef, NSUInteger index) {
	[(__bridge id<MTLRenderCommandEncoder>)encRef setFragmentSamplerState:(__bridge id<MTLSamplerState>)sampRef atIndex:index];
}

static void renderDraw(CFTypeRef encRef, MTLPrimitiveType prim, NSUInteger start, NSUInteger count, NSUInteger instances, NSUInteger baseInstance) {
	id<MTLRenderCommandEncoder> enc = (__bridge id<MTLRenderCommandEncoder>)encRef;
	[enc drawPrimitives:prim vertexStart:start vertexCount:count instanceCount:instances baseInstance:baseInstance];
}

static void renderDrawIndexed(CFTypeRef encRef, MTLPrimitiveType prim, NSUInteger count, MTLIndexType idxType,
		CFTypeRef idxBufRef, NSUInteger idxOffset, NSUInteger instances, NSInteger baseVertex, NSUInteger baseInstance) {
	id<MTLRenderCommandEncoder> enc = (__bridge id<MTLRenderCommandEncoder>)encRef;
	id<MTLBuffer> idxBuf = (__bridge id<MTLBuffer>)idxBufRef;
	[enc drawIndexedPrimitives:prim indexCount:count indexType:idxType indexBuffer:idxBuf indexBufferOffset:idxOffset
		instanceCount:instances baseVertex:baseVertex baseInstance:baseInstance];
}

static void renderEndEncoding(CFTypeRef encRef) {
	[(__bridge id<MTLRenderCommandEncoder>)encRef endEncoding];
}

static CFTypeRef newComputeEncoder(CFTypeRef cmdRef) {
	@autoreleasepool {
		id<MTLCommandBuffer> cmd = (__bridge id<MTLCommandBuffer>)cmdRef;
		id<MTLComputeCommandEncoder> enc = [cmd computeCommandEncoder];
		return CFBridgingRetain(enc);
	}
}

static void computeSetPipelineState(CFTypeRef encRef, CFTypeRef psoRef) {
	[(__bridge id<MTLComputeCommandEncoder>)encRef setComputePipelineState:(__bridge id<MTLComputePipelineState>)psoRef];
}

static void computeSetBuffer(CFTypeRef encRef, CFTypeRef bufRef, NSUInteger offset, NSUInteger index) {
	[(__bridge id<MTLComputeCommandEncoder>)encRef setBuffer:(__bridge id<MTLBuffer>)bufRef offset:offset atIndex:index];
}

static void computeSetTexture(CFTypeRef encRef, CFTypeRef texRef, NSUInteger index) {
	[(__bridge id<MTLComputeCommandEncoder>)encRef setTexture:(__bridge id<MTLTexture>)texRef atIndex:index];
}

static void computeDispatch(CFTypeRef encRef, NSUInteger gx, NSUInteger gy, NSUInteger gz) {
	id<MTLComputeCommandEncoder> enc = (__bridge id<MTLComputeCommandEncoder>)encRef;
	MTLSize groups = {gx, gy, gz};
	MTLSize threads = {1, 1, 1};
	[enc dispatchThreadgroups:groups threadsPerThreadgroup:threads];
}

static void computeEndEncoding(CFTypeRef encRef) {
	[(__bridge id<MTLComputeCommandEncoder>)encRef endEncoding];
}

static CFTypeRef newBlitEncoder(CFTypeRef cmdRef) {
	@autoreleasepool {
		id<MTLCommandBuffer> cmd = (__bridge id<MTLCommandBuffer>)cmdRef;
		id<MTLBlitCommandEncoder> enc = [cmd blitCommandEncoder];
		return CFBridgingRetain(enc);
	}
}

static void blitCopyBuffer(CFTypeRef encRef, CFTypeRef srcRef, NSUInteger srcOff, CFTypeRef dstRef, NSUInteger dstOff, NSUInteger size) {
	id<MTLBlitCommandEncoder> enc = (__bridge id<MTLBlitCommandEncoder>)encRef;
	[enc copyFromBuffer:(__bridge id<MTLBuffer>)srcRef sourceOffset:srcOff toBuffer:(__bridge id<MTLBuffer>)dstRef destinationOffset:dstOff size:size];
}

static void blitCopyBufferToTexture(CFTypeRef encRef, CFTypeRef srcRef, NSUInteger srcOff, NSUInteger bytesPerRow, NSUInteger bytesPerImage,
		NSUInteger w, NSUInteger h, NSUInteger d, CFTypeRef dstRef, NSUInteger dstLevel, NSUInteger ox, NSUInteger oy, NSUInteger oz) {
	id<MTLBlitCommandEncoder> enc = (__bridge id<MTLBlitCommandEncoder>)encRef;
	MTLSize size = {w, h, d};
	MTLOrigin origin = {ox, oy, oz};
	[enc copyFromBuffer:(__bridge id<MTLBuffer>)srcRef sourceOffset:srcOff sourceBytesPerRow:bytesPerRow sourceBytesPerImage:bytesPerImage
		sourceSize:size toTexture:(__bridge id<MTLTexture>)dstRef destinationSlice:0 destinationLevel:dstLevel destinationOrigin:origin];
}

static void blitCopyTexture(CFTypeRef encRef, CFTypeRef srcRef, NSUInteger srcLevel, NSUInteger sx, NSUInteger sy, NSUInteger sz,
		NSUInteger w, NSUInteger h, NSUInteger d, CFTypeRef dstRef, NSUInteger dstLevel, NSUInteger dx, NSUInteger dy, NSUInteger dz) {
	id<MTLBlitCommandEncoder> enc = (__bridge id<MTLBlitCommandEncoder>)encRef;
	MTLOrigin srcOrigin = {sx, sy, sz};
	MTLOrigin dstOrigin = {dx, dy, dz};
	MTLSize size = {w, h, d};
	[enc copyFromTexture:(__bridge id<MTLTexture>)srcRef sourceSlice:0 sourceLevel:srcLevel sourceOrigin:srcOrigin sourceSize:size
		toTexture:(__bridge id<MTLTexture>)dstRef destinationSlice:0 destinationLevel:dstLevel destinationOrigin:dstOrigin];
}

static void blitFillBuffer(CFTypeRef encRef, CFTypeRef bufRef, NSUInteger offset, NSUInteger size, unsigned char value) {
	id<MTLBlitCommandEncoder> enc = (__bridge id<MTLBlitCommandEncoder>)encRef;
	NSRange range = {offset, size};
	[enc fillBuffer:(__bridge id<MTLBuffer>)bufRef range:range value:value];
}

static void blitEndEncoding(CFTypeRef encRef) {
	[(__bridge id<MTLBlitCommandEncoder>)encRef endEncoding];
}

static void commitAndWait(CFTypeRef cmdRef, int wait) {
	id<MTLCommandBuffer> cmd = (__bridge id<MTLCommandBuffer>)cmdRef;
	[cmd commit];
	if (wait) {
		[cmd waitUntilCompleted];
	}
}
*/
import "C"

// CmdBuffer is the Metal backend's driver.CmdBuffer. Unlike the D3D11
// backend, which defers every recorded call against its single
// immediate context, this backend issues native encoder calls
// immediately during recording: Metal, like Vulkan, has a genuine
// native command-buffer object (MTLCommandBuffer) plus per-scope
// encoders (render/compute/blit) to record into ahead of submission.
type CmdBuffer struct {
	gpu    *GPU
	handle C.CFTypeRef

	mu    sync.Mutex
	state driver.CBState

	inPass bool
	inWork bool
	inBlit bool

	renderEnc  C.CFTypeRef
	computeEnc C.CFTypeRef
	blitEnc    C.CFTypeRef

	curPipeline *Pipeline
	curPass     *RenderPass
	passClear   []float32
	passTargets []driver.Texture

	indexBuf    *Buffer
	indexOffset int64
	indexType   C.MTLIndexType

	debugGroup []string
}

func newCmdBuffer(g *GPU) *CmdBuffer {
	return &CmdBuffer{gpu: g, state: driver.CBInitial}
}

func (cb *CmdBuffer) State() driver.CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CmdBuffer) fail(kind gerr.Kind, msg string) error {
	cb.gpu.LogError(gerr.Error, kind, "%s", msg)
	return driverErr(kind)
}

func (cb *CmdBuffer) Begin() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != driver.CBInitial {
		return cb.fail(gerr.InvalidCommandBuffer, "Begin called on a buffer not in the initial state")
	}
	cb.handle = C.newCommandBuffer(cb.gpu.queue)
	if cb.handle == 0 {
		return cb.fail(gerr.InvalidCommandBuffer, "commandQueue.commandBuffer returned nil")
	}
	cb.state = driver.CBRecording
	return nil
}

func (cb *CmdBuffer) requireRecording() error {
	if cb.state != driver.CBRecording {
		return cb.fail(gerr.InvalidCommandBuffer, "command recorded outside of the recording state")
	}
	return nil
}

func (cb *CmdBuffer) BeginPass(pass driver.RenderPass, targets []driver.Texture, clear []float32) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err := cb.requireRecording(); err != nil {
		return err
	}
	if cb.inPass {
		return cb.fail(gerr.RenderPassInProgress, "BeginPass called while already inside a render pass")
	}
	mp, ok := pass.(*RenderPass)
	if !ok {
		return cb.fail(gerr.InvalidResource, "BeginPass called with a render pass from another backend")
	}

	var colorTex, depthTex C.CFTypeRef
	var colorLoad C.MTLLoadAction = mtlLoadActionClear
	var depthLoad C.MTLLoadAction = mtlLoadActionClear
	hasDepth := 0
	if len(mp.desc.ColorAttachments) > 0 {
		colorLoad = mtlLoadAction(mp.desc.ColorAttachments[0].LoadOp)
	}
	for i, t := range targets {
		mt, ok := t.(*Texture)
		if !ok {
			continue
		}
		if driver.IsDepthFormat(mt.desc.Format) {
			depthTex = mt.handle
			hasDepth = 1
			if mp.desc.DepthAttachment != nil {
				depthLoad = mtlLoadAction(mp.desc.DepthAttachment.LoadOp)
			}
		} else if i == 0 || colorTex == 0 {
			colorTex = mt.handle
		}
	}
	var cr, cg, cbl, ca float32
	if len(clear) >= 4 {
		cr, cg, cbl, ca = clear[0], clear[1], clear[2], clear[3]
	}

	enc := C.beginRenderPass(cb.handle, colorTex, colorLoad, C.float(cr), C.float(cg), C.float(cbl), C.float(ca),
		depthTex, depthLoad, C.double(1.0), C.int(hasDepth))
	if enc == 0 {
		return cb.fail(gerr.RenderPassInProgress, "renderCommandEncoderWithDescriptor returned nil")
	}
	cb.renderEnc = enc
	cb.inPass = true
	cb.curPass = mp
	cb.passTargets = targets
	cb.passClear = clear
	return nil
}

func (cb *CmdBuffer) NextSubpass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "NextSubpass called outside of a render pass")
	}
	// Metal has no subpass concept; a render pass encoder already
	// spans every subpass the caller will record into.
	return nil
}

func (cb *CmdBuffer) EndPass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "EndPass called outside of a render pass")
	}
	C.renderEndEncoding(cb.renderEnc)
	cfRelease(cb.renderEnc)
	cb.renderEnc = 0
	cb.inPass = false
	cb.curPass = nil
	return nil
}

func (cb *CmdBuffer) BeginWork() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err := cb.requireRecording(); err != nil {
		return err
	}
	enc := C.newComputeEncoder(cb.handle)
	if enc == 0 {
		return cb.fail(gerr.InvalidOperation, "computeCommandEncoder returned nil")
	}
	cb.computeEnc = enc
	cb.inWork = true
	return nil
}

func (cb *CmdBuffer) EndWork() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.inWork {
		C.computeEndEncoding(cb.computeEnc)
		cfRelease(cb.computeEnc)
		cb.computeEnc = 0
	}
	cb.inWork = false
	return nil
}

func (cb *CmdBuffer) BeginBlit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err := cb.requireRecording(); err != nil {
		return err
	}
	enc := C.newBlitEncoder(cb.handle)
	if enc == 0 {
		return cb.fail(gerr.InvalidOperation, "blitCommandEncoder returned nil")
	}
	cb.blitEnc = enc
	cb.inBlit = true
	return nil
}

func (cb *CmdBuffer) EndBlit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.inBlit {
		C.blitEndEncoding(cb.blitEnc)
		cfRelease(cb.blitEnc)
		cb.blitEnc = 0
	}
	cb.inBlit = false
	return nil
}

func (cb *CmdBuffer) SetPipeline(p driver.Pipeline) {
	mp, ok := p.(*Pipeline)
	if !ok {
		return
	}
	cb.curPipeline = mp
	if mp.isCompute {
		if cb.inWork {
			C.computeSetPipelineState(cb.computeEnc, mp.computePSO)
		}
		return
	}
	if cb.inPass {
		C.renderSetPipelineState(cb.renderEnc, mp.renderPSO)
		C.renderSetDepthStencilState(cb.renderEnc, mp.depthStencil)
		C.renderSetCullMode(cb.renderEnc, mp.cullMode)
	}
}

func (cb *CmdBuffer) SetViewport(v driver.Viewport) {
	if !cb.inPass {
		return
	}
	C.renderSetViewport(cb.renderEnc, C.double(v.X), C.double(v.Y), C.double(v.Width), C.double(v.Height), C.double(v.MinDepth), C.double(v.MaxDepth))
}

func (cb *CmdBuffer) SetScissor(s driver.Scissor) {
	if !cb.inPass {
		return
	}
	C.renderSetScissor(cb.renderEnc, C.NSUInteger(s.X), C.NSUInteger(s.Y), C.NSUInteger(s.Width), C.NSUInteger(s.Height))
}

func (cb *CmdBuffer) SetVertexBuffer(slot int, b driver.Buffer, offset int64) {
	mb, ok := b.(*Buffer)
	if !ok || !cb.inPass {
		return
	}
	C.renderSetVertexBuffer(cb.renderEnc, mb.handle, C.NSUInteger(offset), C.NSUInteger(slot))
}

func (cb *CmdBuffer) SetIndexBuffer(b driver.Buffer, offset int64, fmt driver.IndexFmt) {
	mb, ok := b.(*Buffer)
	if !ok {
		return
	}
	cb.indexBuf = mb
	cb.indexOffset = offset
	cb.indexType = mtlIndexTypeUInt16
	if fmt == driver.Index32 {
		cb.indexType = mtlIndexTypeUInt32
	}
}

func (cb *CmdBuffer) SetUniformBuffer(slot int, b driver.Buffer, offset, size int64) {
	mb, ok := b.(*Buffer)
	if !ok {
		return
	}
	if cb.inPass {
		C.renderSetFragmentBuffer(cb.renderEnc, mb.handle, C.NSUInteger(offset), C.NSUInteger(slot))
		C.renderSetVertexBuffer(cb.renderEnc, mb.handle, C.NSUInteger(offset), C.NSUInteger(slot))
	}
	if cb.inWork {
		C.computeSetBuffer(cb.computeEnc, mb.handle, C.NSUInteger(offset), C.NSUInteger(slot))
	}
}

func (cb *CmdBuffer) SetTexture(slot int, t driver.TextureView, s driver.Sampler) {
	mv, ok := t.(*TextureView)
	if !ok || mv.owner == nil {
		return
	}
	if cb.inPass {
		C.renderSetFragmentTexture(cb.renderEnc, mv.owner.handle, C.NSUInteger(slot))
		if ms, ok := s.(*Sampler); ok {
			C.renderSetFragmentSampler(cb.renderEnc, ms.handle, C.NSUInteger(slot))
		}
	}
	if cb.inWork {
		C.computeSetTexture(cb.computeEnc, mv.owner.handle, C.NSUInteger(slot))
	}
}

func (cb *CmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	if !cb.inPass || cb.curPipeline == nil {
		return
	}
	C.renderDraw(cb.renderEnc, cb.curPipeline.primitive, C.NSUInteger(firstVertex), C.NSUInteger(vertexCount),
		C.NSUInteger(maxInt(instanceCount, 1)), C.NSUInteger(firstInstance))
}

func (cb *CmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	if !cb.inPass || cb.curPipeline == nil || cb.indexBuf == nil {
		return
	}
	idxSize := int64(2)
	if cb.indexType == mtlIndexTypeUInt32 {
		idxSize = 4
	}
	offset := cb.indexOffset + int64(firstIndex)*idxSize
	C.renderDrawIndexed(cb.renderEnc, cb.curPipeline.primitive, C.NSUInteger(indexCount), cb.indexType,
		cb.indexBuf.handle, C.NSUInteger(offset), C.NSUInteger(maxInt(instanceCount, 1)), C.NSInteger(vertexOffset), C.NSUInteger(firstInstance))
}

func (cb *CmdBuffer) Dispatch(groupsX, groupsY, groupsZ int) {
	if !cb.inWork {
		return
	}
	C.computeDispatch(cb.computeEnc, C.NSUInteger(maxInt(groupsX, 1)), C.NSUInteger(maxInt(groupsY, 1)), C.NSUInteger(maxInt(groupsZ, 1)))
}

func (cb *CmdBuffer) CopyBuffer(dst driver.Buffer, dstOffset int64, src driver.Buffer, srcOffset, size int64) {
	mdst, ok1 := dst.(*Buffer)
	msrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 || !cb.inBlit {
		return
	}
	C.blitCopyBuffer(cb.blitEnc, msrc.handle, C.NSUInteger(srcOffset), mdst.handle, C.NSUInteger(dstOffset), C.NSUInteger(size))
}

func (cb *CmdBuffer) CopyToTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Buffer, srcOffset int64, extent driver.Dim3D) {
	mdst, ok1 := dst.(*Texture)
	msrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 || !cb.inBlit {
		return
	}
	bytesPerPixel := 4
	bytesPerRow := extent.Width * bytesPerPixel
	C.blitCopyBufferToTexture(cb.blitEnc, msrc.handle, C.NSUInteger(srcOffset), C.NSUInteger(bytesPerRow), C.NSUInteger(bytesPerRow*extent.Height),
		C.NSUInteger(extent.Width), C.NSUInteger(extent.Height), C.NSUInteger(maxInt(extent.Depth, 1)),
		mdst.handle, C.NSUInteger(dstLevel), C.NSUInteger(dstOrigin.X), C.NSUInteger(dstOrigin.Y), C.NSUInteger(dstOrigin.Z))
}

func (cb *CmdBuffer) CopyTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Texture, srcOrigin driver.Off3D, srcLevel int, extent driver.Dim3D) {
	mdst, ok1 := dst.(*Texture)
	msrc, ok2 := src.(*Texture)
	if !ok1 || !ok2 || !cb.inBlit {
		return
	}
	C.blitCopyTexture(cb.blitEnc, msrc.handle, C.NSUInteger(srcLevel), C.NSUInteger(srcOrigin.X), C.NSUInteger(srcOrigin.Y), C.NSUInteger(srcOrigin.Z),
		C.NSUInteger(extent.Width), C.NSUInteger(extent.Height), C.NSUInteger(maxInt(extent.Depth, 1)),
		mdst.handle, C.NSUInteger(dstLevel), C.NSUInteger(dstOrigin.X), C.NSUInteger(dstOrigin.Y), C.NSUInteger(dstOrigin.Z))
}

func (cb *CmdBuffer) Fill(dst driver.Buffer, offset, size int64, value byte) {
	mdst, ok := dst.(*Buffer)
	if !ok || !cb.inBlit {
		return
	}
	C.blitFillBuffer(cb.blitEnc, mdst.handle, C.NSUInteger(offset), C.NSUInteger(size), C.uchar(value))
}

// Barrier and Transition are no-ops: Metal tracks resource hazards
// automatically for MTLBuffer/MTLTexture objects created with the
// default hazard-tracking mode, the same implicit-synchronization
// behavior the corpus's Metal backend relies on rather than issuing
// explicit MTLFence waits.
func (cb *CmdBuffer) Barrier(barriers []driver.Barrier) {}

func (cb *CmdBuffer) Transition(t driver.Texture, dstUsage driver.Usage) {}

func (cb *CmdBuffer) BeginDebugGroup(name string) {
	cb.mu.Lock()
	cb.debugGroup = append(cb.debugGroup, name)
	cb.mu.Unlock()
}

func (cb *CmdBuffer) EndDebugGroup() {
	cb.mu.Lock()
	if n := len(cb.debugGroup); n > 0 {
		cb.debugGroup = cb.debugGroup[:n-1]
	}
	cb.mu.Unlock()
}

func (cb *CmdBuffer) SetDebugName(obj driver.Destroyer, name string) {}

func (cb *CmdBuffer) End() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != driver.CBRecording {
		return cb.fail(gerr.InvalidCommandBuffer, "End called on a buffer not in the recording state")
	}
	if cb.inPass {
		return cb.fail(gerr.RenderPassInProgress, "End called with an open render pass")
	}
	if cb.inWork || cb.inBlit {
		return cb.fail(gerr.InvalidOperation, "End called with an open work or blit scope")
	}
	cb.state = driver.CBExecutable
	return nil
}

// commit submits the native command buffer and blocks until the GPU
// signals completion, mirroring the corpus's Metal backend's own
// EndFrame/endCmdBuffer(wait bool) pattern: waitUntilCompleted is the
// idiomatic synchronous join on this API, unlike Vulkan's
// fence-and-poll submission.
func (cb *CmdBuffer) commit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != driver.CBExecutable {
		return cb.fail(gerr.InvalidCommandBuffer, "commit attempted on a buffer not in the executable state")
	}
	C.commitAndWait(cb.handle, C.int(1))
	cfRelease(cb.handle)
	cb.handle = 0
	cb.state = driver.CBInitial
	return nil
}

func (cb *CmdBuffer) Reset() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == driver.CBPending {
		return cb.fail(gerr.InvalidCommandBuffer, "Reset called while the buffer is pending")
	}
	if cb.handle != 0 {
		cfRelease(cb.handle)
		cb.handle = 0
	}
	cb.state = driver.CBInitial
	cb.inPass, cb.inWork, cb.inBlit = false, false, false
	cb.curPass, cb.curPipeline = nil, nil
	cb.indexBuf = nil
	cb.debugGroup = nil
	return nil
}
