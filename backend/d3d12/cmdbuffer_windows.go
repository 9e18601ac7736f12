// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

import (
	"sync"
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// CmdBuffer is the D3D12 backend's driver.CmdBuffer: one command
// allocator plus the one graphics command list recorded against it.
// Unlike D3D11's direct replay against a shared immediate context,
// every D3D12 CmdBuffer owns its own list and must be explicitly
// Reset before reuse once the GPU has finished consuming it.
type CmdBuffer struct {
	gpu   *GPU
	alloc *_ID3D12CommandAllocator
	list  *_ID3D12GraphicsCommandList

	mu      sync.Mutex
	state   driver.CBState
	inPass  bool
	inWork  bool
	inBlit  bool

	debugGroup []string
}

func newCmdBuffer(g *GPU) (*CmdBuffer, error) {
	var alloc *_ID3D12CommandAllocator
	hr := g.dev.call(g.dev.vtbl.CreateCommandAllocator, uintptr(commandListTypeDirect), uintptr(unsafe.Pointer(&iidIUnknown)), uintptr(unsafe.Pointer(&alloc)))
	if hr != 0 {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "CreateCommandAllocator failed: HRESULT %#x", hr)
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	var list *_ID3D12GraphicsCommandList
	hr = g.dev.call(g.dev.vtbl.CreateCommandList, 0, uintptr(commandListTypeDirect), uintptr(unsafe.Pointer(alloc)), 0, uintptr(unsafe.Pointer(&iidIUnknown)), uintptr(unsafe.Pointer(&list)))
	if hr != 0 {
		alloc.Release()
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "CreateCommandList failed: HRESULT %#x", hr)
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	// A freshly created command list starts in the recording state; it
	// is closed immediately so state tracking below starts from
	// CBInitial like every other backend's CmdBuffer.
	list.call(list.vtbl.Close)
	return &CmdBuffer{gpu: g, alloc: alloc, list: list, state: driver.CBInitial}, nil
}

func (cb *CmdBuffer) State() driver.CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CmdBuffer) fail(kind gerr.Kind, msg string) error {
	cb.gpu.LogError(gerr.Error, kind, msg)
	return driverErr(kind)
}

func (cb *CmdBuffer) Begin() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != driver.CBInitial {
		return cb.fail(gerr.InvalidCommandBuffer, "Begin called on a command buffer not in the initial state")
	}
	cb.alloc.call(cb.alloc.vtbl.Reset)
	cb.list.call(cb.list.vtbl.Reset, uintptr(unsafe.Pointer(cb.alloc)), 0)
	cb.state = driver.CBRecording
	return nil
}

func (cb *CmdBuffer) requireRecording() error {
	if cb.state != driver.CBRecording {
		return cb.fail(gerr.InvalidCommandBuffer, "operation requires a recording command buffer")
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
		return cb.fail(gerr.RenderPassInProgress, "BeginPass called while a render pass is already open")
	}
	for i, t := range targets {
		dt, ok := t.(*Texture)
		if !ok || dt.handle == nil {
			continue
		}
		if i*4+3 < len(clear) {
			rgba := [4]float32{clear[i*4], clear[i*4+1], clear[i*4+2], clear[i*4+3]}
			if driver.IsDepthFormat(dt.desc.Format) {
				cb.list.call(cb.list.vtbl.ClearDepthStencilView, 0, uintptr(resourceStateDepthWrite), uintptr(unsafe.Pointer(&rgba[0])), 0, 0, 0)
			} else {
				cb.list.call(cb.list.vtbl.ClearRenderTargetView, 0, uintptr(unsafe.Pointer(&rgba[0])), 0, 0)
			}
		}
	}
	// OMSetRenderTargets needs real CPU descriptor handles from an
	// RTV/DSV heap. This backend creates no such heap, so BeginPass
	// never calls OMSetRenderTargets and the targets are not bound.
	cb.inPass = true
	return nil
}

func (cb *CmdBuffer) NextSubpass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "NextSubpass called without an open render pass")
	}
	return nil
}

func (cb *CmdBuffer) EndPass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "EndPass called without an open render pass")
	}
	cb.inPass = false
	return nil
}

func (cb *CmdBuffer) BeginWork() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err := cb.requireRecording(); err != nil {
		return err
	}
	cb.inWork = true
	return nil
}

func (cb *CmdBuffer) EndWork() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inWork {
		return cb.fail(gerr.InvalidOperation, "EndWork called without a matching BeginWork")
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
	cb.inBlit = true
	return nil
}

func (cb *CmdBuffer) EndBlit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inBlit {
		return cb.fail(gerr.InvalidOperation, "EndBlit called without a matching BeginBlit")
	}
	cb.inBlit = false
	return nil
}

func (cb *CmdBuffer) SetPipeline(p driver.Pipeline) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	dp, ok := p.(*Pipeline)
	if !ok || dp == nil {
		return cb.fail(gerr.InvalidPipelineState, "SetPipeline called with a non-d3d12 pipeline")
	}
	cb.list.call(cb.list.vtbl.SetPipelineState, dp.pso)
	if !dp.isCompute {
		cb.list.call(cb.list.vtbl.IASetPrimitiveTopology, uintptr(dp.topology))
	}
	return nil
}

func (cb *CmdBuffer) SetViewport(v driver.Viewport) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	d3dv := struct{ X, Y, Width, Height, MinDepth, MaxDepth float32 }{v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth}
	cb.list.call(cb.list.vtbl.RSSetViewports, 1, uintptr(unsafe.Pointer(&d3dv)))
	return nil
}

func (cb *CmdBuffer) SetScissor(s driver.Scissor) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	rect := struct{ Left, Top, Right, Bottom int32 }{int32(s.X), int32(s.Y), int32(s.X + s.Width), int32(s.Y + s.Height)}
	cb.list.call(cb.list.vtbl.RSSetScissorRects, 1, uintptr(unsafe.Pointer(&rect)))
	return nil
}

func (cb *CmdBuffer) SetVertexBuffer(slot int, b driver.Buffer, offset int64) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	_, ok := b.(*Buffer)
	if !ok {
		return cb.fail(gerr.InvalidResource, "SetVertexBuffer called with a non-d3d12 buffer")
	}
	// IASetVertexBuffers needs a D3D12_VERTEX_BUFFER_VIEW built from
	// the resource's GPU virtual address, which this backend does not
	// query (see resources_windows.go); recorded as a validated no-op
	// until that plumbing exists.
	return nil
}

func (cb *CmdBuffer) SetIndexBuffer(b driver.Buffer, offset int64, fmt driver.IndexFmt) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	_, ok := b.(*Buffer)
	if !ok {
		return cb.fail(gerr.InvalidResource, "SetIndexBuffer called with a non-d3d12 buffer")
	}
	return nil
}

// SetUniformBuffer and SetTexture are no-ops: binding either requires
// a root signature and a CBV/SRV/UAV descriptor table, which this
// backend does not build, the same scope cut the Vulkan backend makes
// for descriptor sets.
func (cb *CmdBuffer) SetUniformBuffer(slot int, b driver.Buffer, offset, size int64) error { return nil }
func (cb *CmdBuffer) SetTexture(slot int, t driver.TextureView, s driver.Sampler) error    { return nil }

func (cb *CmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "Draw called without an open render pass")
	}
	cb.list.call(cb.list.vtbl.DrawInstanced, uintptr(vertexCount), uintptr(instanceCount), uintptr(firstVertex), uintptr(firstInstance))
	return nil
}

func (cb *CmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "DrawIndexed called without an open render pass")
	}
	cb.list.call(cb.list.vtbl.DrawIndexedInstanced, uintptr(indexCount), uintptr(instanceCount), uintptr(firstIndex), uintptr(vertexOffset), uintptr(firstInstance))
	return nil
}

func (cb *CmdBuffer) Dispatch(x, y, z int) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inWork {
		return cb.fail(gerr.InvalidOperation, "Dispatch called without an open compute scope")
	}
	cb.list.call(cb.list.vtbl.Dispatch, uintptr(x), uintptr(y), uintptr(z))
	return nil
}

func (cb *CmdBuffer) CopyBuffer(dst driver.Buffer, dstOffset int64, src driver.Buffer, srcOffset, size int64) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	d, ok1 := dst.(*Buffer)
	s, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return cb.fail(gerr.InvalidResource, "CopyBuffer called with non-d3d12 buffers")
	}
	cb.list.call(cb.list.vtbl.CopyBufferRegion, uintptr(unsafe.Pointer(d.handle)), uintptr(dstOffset), uintptr(unsafe.Pointer(s.handle)), uintptr(srcOffset), uintptr(size))
	return nil
}

func (cb *CmdBuffer) CopyToTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Buffer, srcOffset int64, extent driver.Dim3D) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	_, ok1 := dst.(*Texture)
	_, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return cb.fail(gerr.InvalidResource, "CopyToTexture called with non-d3d12 resources")
	}
	// CopyTextureRegion needs fully populated D3D12_TEXTURE_COPY_LOCATION
	// structs (subresource footprints for the buffer side); recorded
	// as a validated no-op until that layout math is built.
	return nil
}

func (cb *CmdBuffer) CopyTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Texture, srcOrigin driver.Off3D, srcLevel int, extent driver.Dim3D) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	d, ok1 := dst.(*Texture)
	s, ok2 := src.(*Texture)
	if !ok1 || !ok2 {
		return cb.fail(gerr.InvalidResource, "CopyTexture called with non-d3d12 textures")
	}
	cb.list.call(cb.list.vtbl.CopyResource, uintptr(unsafe.Pointer(d.handle)), uintptr(unsafe.Pointer(s.handle)))
	return nil
}

// Fill only validates dst: D3D12 has no native buffer-fill command and
// this backend records no upload in its place, so the buffer's
// contents are left unchanged.
func (cb *CmdBuffer) Fill(dst driver.Buffer, offset, size int64, value byte) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	_, ok := dst.(*Buffer)
	if !ok {
		return cb.fail(gerr.InvalidResource, "Fill called with a non-d3d12 buffer")
	}
	return nil
}

func (cb *CmdBuffer) Barrier(barriers []driver.Barrier) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	for _, b := range barriers {
		if b.Kind != driver.BarrierBuffer {
			continue
		}
		buf, ok := b.Buffer.(*Buffer)
		if !ok {
			continue
		}
		before := buf.state
		after := waResourceState(b.DstUsage)
		if before == after {
			continue
		}
		desc := struct {
			Type       uint32
			Flags      uint32
			Resource   uintptr
			Subresource uint32
			StateBefore uint32
			StateAfter  uint32
		}{
			Resource: uintptr(unsafe.Pointer(buf.handle)), Subresource: 0xffffffff,
			StateBefore: before, StateAfter: after,
		}
		cb.list.call(cb.list.vtbl.ResourceBarrier, 1, uintptr(unsafe.Pointer(&desc)))
		buf.state = after
	}
	return nil
}

func (cb *CmdBuffer) Transition(t driver.Texture, dstUsage driver.Usage) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	dt, ok := t.(*Texture)
	if !ok {
		return cb.fail(gerr.InvalidResource, "Transition called with a non-d3d12 texture")
	}
	before := dt.state
	after := waResourceState(dstUsage)
	if before == after {
		return nil
	}
	desc := struct {
		Type        uint32
		Flags       uint32
		Resource    uintptr
		Subresource uint32
		StateBefore uint32
		StateAfter  uint32
	}{
		Resource: uintptr(unsafe.Pointer(dt.handle)), Subresource: 0xffffffff,
		StateBefore: before, StateAfter: after,
	}
	cb.list.call(cb.list.vtbl.ResourceBarrier, 1, uintptr(unsafe.Pointer(&desc)))
	dt.state = after
	return nil
}

func waResourceState(u driver.Usage) uint32 {
	switch {
	case u&driver.URenderTarget != 0:
		return resourceStateRenderTarget
	case u&driver.UDepthStencil != 0:
		return resourceStateDepthWrite
	case u&driver.UTransferSrc != 0:
		return resourceStateCopySource
	case u&driver.UTransferDst != 0:
		return resourceStateCopyDest
	case u&driver.USampled != 0:
		return resourceStatePixelSRV
	default:
		return resourceStateCommon
	}
}

// BeginDebugGroup/EndDebugGroup are bookkeeping only: PIX markers are
// a separate WinPixEventRuntime dependency this backend does not pull
// in, so groups are tracked only to check begin/end pairing and never
// surface to a GPU debugger.
func (cb *CmdBuffer) BeginDebugGroup(name string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.debugGroup = append(cb.debugGroup, name)
	return nil
}

func (cb *CmdBuffer) EndDebugGroup() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.debugGroup) == 0 {
		return cb.fail(gerr.InvalidOperation, "EndDebugGroup called without a matching BeginDebugGroup")
	}
	cb.debugGroup = cb.debugGroup[:len(cb.debugGroup)-1]
	return nil
}

func (cb *CmdBuffer) SetDebugName(obj driver.Destroyer, name string) error { return nil }

func (cb *CmdBuffer) End() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err := cb.requireRecording(); err != nil {
		return err
	}
	cb.state = driver.CBExecutable
	return nil
}

// close issues the real ID3D12GraphicsCommandList::Close call, called
// only from GPU.Commit right before submission, mirroring the
// End()/private-finish split the Vulkan and WebGPU backends use.
func (cb *CmdBuffer) close() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != driver.CBExecutable {
		return cb.fail(gerr.InvalidCommandBuffer, "close called on a command buffer not in the executable state")
	}
	cb.list.call(cb.list.vtbl.Close)
	cb.state = driver.CBPending
	return nil
}

func (cb *CmdBuffer) Reset() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.inPass, cb.inWork, cb.inBlit = false, false, false
	cb.debugGroup = nil
	cb.state = driver.CBInitial
	return nil
}
