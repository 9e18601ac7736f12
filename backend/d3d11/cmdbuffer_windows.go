// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"sync"
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// CmdBuffer is the D3D11 backend's driver.CmdBuffer. Like the OpenGL
// backend, D3D11 has no native command-buffer object to record into
// ahead of time; calls are captured as closures and replayed against
// the device's single immediate context on execute().
type CmdBuffer struct {
	gpu *GPU

	mu    sync.Mutex
	state driver.CBState
	ops   []func()

	inPass bool
	inWork bool
	inBlit bool

	curPipeline *Pipeline
	debugGroup  []string
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
	cb.ops = cb.ops[:0]
	cb.state = driver.CBRecording
	return nil
}

func (cb *CmdBuffer) requireRecording() error {
	if cb.state != driver.CBRecording {
		return cb.fail(gerr.InvalidCommandBuffer, "command recorded outside of the recording state")
	}
	return nil
}

func (cb *CmdBuffer) record(op func()) {
	cb.ops = append(cb.ops, op)
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
	cb.inPass = true

	var col [4]float32 = [4]float32{0, 0, 0, 1}
	if len(clear) >= 4 {
		copy(col[:], clear[:4])
	}
	views := make([]*Texture, 0, len(targets))
	for _, t := range targets {
		if dt, ok := t.(*Texture); ok {
			views = append(views, dt)
		}
	}
	cb.record(func() {
		var rtvs []*_ID3D11RenderTargetView
		var dsv *_ID3D11DepthStencilView
		for _, t := range views {
			if t.handle == nil {
				continue
			}
			v, err := t.NewView(driver.View2D, 0, t.desc.Layers, 0, t.desc.Levels)
			if err != nil {
				continue
			}
			tv := v.(*TextureView)
			if tv.rtv != nil {
				rtvs = append(rtvs, tv.rtv)
				cb.gpu.ctx.call(cb.gpu.ctx.vtbl.ClearRenderTargetView, uintptr(unsafe.Pointer(tv.rtv)), uintptr(unsafe.Pointer(&col[0])))
			}
			if tv.dsv != nil {
				dsv = tv.dsv
				cb.gpu.ctx.call(cb.gpu.ctx.vtbl.ClearDepthStencilView, uintptr(unsafe.Pointer(tv.dsv)), uintptr(3), uintptr(0), uintptr(0))
			}
		}
		var rtvPtr unsafe.Pointer
		if len(rtvs) > 0 {
			rtvPtr = unsafe.Pointer(&rtvs[0])
		}
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.OMSetRenderTargets, uintptr(len(rtvs)), uintptr(rtvPtr), uintptr(unsafe.Pointer(dsv)))
	})
	return nil
}

func (cb *CmdBuffer) NextSubpass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "NextSubpass called outside of a render pass")
	}
	return nil
}

func (cb *CmdBuffer) EndPass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "EndPass called outside of a render pass")
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
	cb.inBlit = false
	return nil
}

func (cb *CmdBuffer) SetPipeline(p driver.Pipeline) {
	dp, ok := p.(*Pipeline)
	if !ok {
		return
	}
	cb.curPipeline = dp
	cb.record(func() {
		ctx := cb.gpu.ctx
		if dp.vs != nil {
			ctx.call(ctx.vtbl.VSSetShader, uintptr(unsafe.Pointer(dp.vs)), 0, 0)
		}
		if dp.ps != nil {
			ctx.call(ctx.vtbl.PSSetShader, uintptr(unsafe.Pointer(dp.ps)), 0, 0)
		}
		ctx.call(ctx.vtbl.RSSetState, uintptr(unsafe.Pointer(dp.rasterizer)))
		black := [4]float32{0, 0, 0, 0}
		ctx.call(ctx.vtbl.OMSetBlendState, uintptr(unsafe.Pointer(dp.blend)), uintptr(unsafe.Pointer(&black[0])), uintptr(0xffffffff))
		ctx.call(ctx.vtbl.OMSetDepthStencilState, uintptr(unsafe.Pointer(dp.depthStencil)), 0)
		ctx.call(ctx.vtbl.IASetPrimitiveTopology, uintptr(dp.topology))
	})
}

func (cb *CmdBuffer) SetViewport(v driver.Viewport) {
	cb.record(func() {
		vp := struct {
			TopLeftX, TopLeftY float32
			Width, Height      float32
			MinDepth, MaxDepth float32
		}{v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth}
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.RSSetViewports, 1, uintptr(unsafe.Pointer(&vp)))
	})
}

// SetScissor is bookkeeping-only: this backend's rasterizer state
// never enables ScissorEnable, so D3D11SetScissorRects has nothing to
// apply against.
func (cb *CmdBuffer) SetScissor(s driver.Scissor) {}

func (cb *CmdBuffer) SetVertexBuffer(slot int, b driver.Buffer, offset int64) {
	db, ok := b.(*Buffer)
	if !ok {
		return
	}
	stride := uint32(0)
	if cb.curPipeline != nil && len(cb.curPipeline.graph.VertexIn) > slot {
		stride = uint32(cb.curPipeline.graph.VertexIn[slot].Stride)
	}
	off := uint32(offset)
	cb.record(func() {
		handle := db.handle
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.IASetVertexBuffers, uintptr(slot), 1,
			uintptr(unsafe.Pointer(&handle)), uintptr(unsafe.Pointer(&stride)), uintptr(unsafe.Pointer(&off)))
	})
}

func (cb *CmdBuffer) SetIndexBuffer(b driver.Buffer, offset int64, fmt driver.IndexFmt) {
	db, ok := b.(*Buffer)
	if !ok {
		return
	}
	f := fmtR16Uint
	if fmt == driver.Index32 {
		f = fmtR32Uint
	}
	cb.record(func() {
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.IASetIndexBuffer, uintptr(unsafe.Pointer(db.handle)), uintptr(f), uintptr(offset))
	})
}

func (cb *CmdBuffer) SetUniformBuffer(slot int, b driver.Buffer, offset, size int64) {
	db, ok := b.(*Buffer)
	if !ok {
		return
	}
	cb.record(func() {
		handle := db.handle
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.VSSetConstantBuffers, uintptr(slot), 1, uintptr(unsafe.Pointer(&handle)))
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.PSSetConstantBuffers, uintptr(slot), 1, uintptr(unsafe.Pointer(&handle)))
	})
}

func (cb *CmdBuffer) SetTexture(slot int, t driver.TextureView, s driver.Sampler) {
	view, ok := t.(*TextureView)
	if !ok || view.srv == nil {
		return
	}
	var samp *_ID3D11SamplerState
	if ds, ok := s.(*Sampler); ok {
		samp = ds.handle
	}
	cb.record(func() {
		srv := view.srv
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.PSSetShaderResources, uintptr(slot), 1, uintptr(unsafe.Pointer(&srv)))
		if samp != nil {
			cb.gpu.ctx.call(cb.gpu.ctx.vtbl.PSSetSamplers, uintptr(slot), 1, uintptr(unsafe.Pointer(&samp)))
		}
	})
}

func (cb *CmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	cb.record(func() {
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.Draw, uintptr(vertexCount), uintptr(firstVertex))
	})
}

func (cb *CmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	cb.record(func() {
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.DrawIndexed, uintptr(indexCount), uintptr(firstIndex), uintptr(vertexOffset))
	})
}

// Dispatch is a no-op: compute shader creation is not wired on this
// backend (see GPU.NewPipeline), so there is never a compute pipeline
// bound to dispatch against.
func (cb *CmdBuffer) Dispatch(groupsX, groupsY, groupsZ int) {}

func (cb *CmdBuffer) CopyBuffer(dst driver.Buffer, dstOffset int64, src driver.Buffer, srcOffset, size int64) {
	ddst, ok1 := dst.(*Buffer)
	dsrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	cb.record(func() {
		box := struct{ Left, Top, Front, Right, Bottom, Back uint32 }{
			Left: uint32(srcOffset), Right: uint32(srcOffset + size), Top: 0, Bottom: 1, Front: 0, Back: 1,
		}
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.CopySubresourceRegion,
			uintptr(unsafe.Pointer(ddst.handle)), 0, uintptr(dstOffset), 0, 0,
			uintptr(unsafe.Pointer(dsrc.handle)), 0, uintptr(unsafe.Pointer(&box)))
	})
}

// CopyToTexture is a documented no-op: this backend's Buffer has no
// host-visible byte storage (Buffer.Bytes always returns nil), so
// there is no source pointer to hand UpdateSubresource. A complete
// implementation would map a staging buffer and pass its pointer.
func (cb *CmdBuffer) CopyToTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Buffer, srcOffset int64, extent driver.Dim3D) {
}

// CopyTexture copies a region between two textures via
// CopySubresourceRegion, D3D11's direct GPU-side image copy.
func (cb *CmdBuffer) CopyTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Texture, srcOrigin driver.Off3D, srcLevel int, extent driver.Dim3D) {
	ddst, ok1 := dst.(*Texture)
	dsrc, ok2 := src.(*Texture)
	if !ok1 || !ok2 {
		return
	}
	cb.record(func() {
		box := struct{ Left, Top, Front, Right, Bottom, Back uint32 }{
			Left: uint32(srcOrigin.X), Top: uint32(srcOrigin.Y), Front: 0,
			Right: uint32(srcOrigin.X + extent.Width), Bottom: uint32(srcOrigin.Y + extent.Height), Back: 1,
		}
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.CopySubresourceRegion,
			uintptr(unsafe.Pointer(ddst.handle)), uintptr(dstLevel), uintptr(dstOrigin.X), uintptr(dstOrigin.Y), 0,
			uintptr(unsafe.Pointer(dsrc.handle)), uintptr(srcLevel), uintptr(unsafe.Pointer(&box)))
	})
}

// Fill writes a size-byte block of the repeated value via
// UpdateSubresource: D3D11's immediate context has no buffer-fill call
// of its own, unlike Vulkan's vkCmdFillBuffer.
func (cb *CmdBuffer) Fill(dst driver.Buffer, offset, size int64, value byte) {
	ddst, ok := dst.(*Buffer)
	if !ok {
		return
	}
	fill := make([]byte, size)
	for i := range fill {
		fill[i] = value
	}
	cb.record(func() {
		if len(fill) == 0 {
			return
		}
		box := struct{ Left, Top, Front, Right, Bottom, Back uint32 }{
			Left: uint32(offset), Right: uint32(offset + size), Top: 0, Bottom: 1, Front: 0, Back: 1,
		}
		cb.gpu.ctx.call(cb.gpu.ctx.vtbl.UpdateSubresource,
			uintptr(unsafe.Pointer(ddst.handle)), 0, uintptr(unsafe.Pointer(&box)), uintptr(unsafe.Pointer(&fill[0])), 0, 0)
	})
}

// Barrier and Transition are no-ops: the immediate context executes
// commands in submission order with implicit synchronization, the way
// the corpus's D3D11 backend relies on it.
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

func (cb *CmdBuffer) Reset() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == driver.CBPending {
		return cb.fail(gerr.InvalidCommandBuffer, "Reset called while the buffer is pending")
	}
	cb.ops = cb.ops[:0]
	cb.state = driver.CBInitial
	cb.inPass, cb.inWork, cb.inBlit = false, false, false
	cb.debugGroup = nil
	return nil
}

func (cb *CmdBuffer) execute() error {
	cb.mu.Lock()
	if cb.state != driver.CBExecutable {
		cb.mu.Unlock()
		return cb.fail(gerr.InvalidCommandBuffer, "commit attempted on a buffer not in the executable state")
	}
	cb.state = driver.CBPending
	ops := cb.ops
	cb.mu.Unlock()

	cb.gpu.PushMarker("cmd_buffer")
	for _, op := range ops {
		op()
	}
	cb.gpu.PopMarker()

	cb.mu.Lock()
	cb.state = driver.CBInitial
	cb.mu.Unlock()
	return nil
}
