// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package opengl

import (
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// CmdBuffer is the OpenGL backend's driver.CmdBuffer. GL has no
// native command-buffer object; commands are recorded as closures
// exactly the way the software backend does, and replayed against the
// shared context on execute(), since GL's single global state machine
// cannot itself be "recorded" ahead of time.
type CmdBuffer struct {
	gpu *GPU

	mu    sync.Mutex
	state driver.CBState
	ops   []func()

	inPass bool
	inWork bool
	inBlit bool

	curVAO     uint32
	curProgram uint32
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

	var r, gg, b, a float32 = 0, 0, 0, 1
	if len(clear) >= 4 {
		r, gg, b, a = clear[0], clear[1], clear[2], clear[3]
	}
	cb.record(func() {
		gl.ClearColor(r, gg, b, a)
		mask := uint32(gl.COLOR_BUFFER_BIT)
		if pass != nil {
			if rp, ok := pass.(*RenderPass); ok && rp.desc.DepthAttachment != nil {
				mask |= gl.DEPTH_BUFFER_BIT
			}
		}
		gl.Clear(mask)
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
	gp, ok := p.(*Pipeline)
	if !ok {
		return
	}
	cb.record(func() {
		gl.UseProgram(gp.program)
		applyGraphState(gp.graph)
	})
}

func applyGraphState(s *driver.GraphState) {
	if s == nil {
		return
	}
	if s.CullMode == driver.CullNone {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(glCullFace(s.CullMode))
	}
	if s.FrontCCW {
		gl.FrontFace(gl.CCW)
	} else {
		gl.FrontFace(gl.CW)
	}
	if s.DepthStencil.DepthTestEnabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.DepthStencil.DepthWriteEnabled)
}

func glCullFace(c driver.CullMode) uint32 {
	if c == driver.CullFront {
		return gl.FRONT
	}
	return gl.BACK
}

func (cb *CmdBuffer) SetViewport(v driver.Viewport) {
	cb.record(func() {
		gl.Viewport(int32(v.X), int32(v.Y), int32(v.Width), int32(v.Height))
		gl.DepthRange(float64(v.MinDepth), float64(v.MaxDepth))
	})
}

func (cb *CmdBuffer) SetScissor(s driver.Scissor) {
	cb.record(func() {
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(int32(s.X), int32(s.Y), int32(s.Width), int32(s.Height))
	})
}

func (cb *CmdBuffer) SetVertexBuffer(slot int, b driver.Buffer, offset int64) {
	gb, ok := b.(*Buffer)
	if !ok {
		return
	}
	cb.record(func() {
		gl.BindBuffer(gl.ARRAY_BUFFER, gb.handle)
		gl.EnableVertexAttribArray(uint32(slot))
		gl.VertexAttribPointer(uint32(slot), 4, gl.FLOAT, false, 0, gl.PtrOffset(int(offset)))
	})
}

func (cb *CmdBuffer) SetIndexBuffer(b driver.Buffer, offset int64, fmt driver.IndexFmt) {
	gb, ok := b.(*Buffer)
	if !ok {
		return
	}
	cb.record(func() {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gb.handle)
	})
}

func (cb *CmdBuffer) SetUniformBuffer(slot int, b driver.Buffer, offset, size int64) {
	gb, ok := b.(*Buffer)
	if !ok {
		return
	}
	cb.record(func() {
		gl.BindBufferRange(gl.UNIFORM_BUFFER, uint32(slot), gb.handle, int(offset), int(size))
	})
}

func (cb *CmdBuffer) SetTexture(slot int, t driver.TextureView, s driver.Sampler) {
	view, ok := t.(*TextureView)
	if !ok || view.owner == nil {
		return
	}
	var samplerHandle uint32
	if gs, ok := s.(*Sampler); ok {
		samplerHandle = gs.handle
	}
	tex := view.owner
	cb.record(func() {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
		gl.BindTexture(gl.TEXTURE_2D, tex.handle)
		gl.BindSampler(uint32(slot), samplerHandle)
	})
}

func (cb *CmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	cb.record(func() {
		gl.DrawArraysInstanced(gl.TRIANGLES, int32(firstVertex), int32(vertexCount), int32(instanceCount))
	})
}

func (cb *CmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	cb.record(func() {
		gl.DrawElementsInstanced(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT,
			gl.PtrOffset(firstIndex*4), int32(instanceCount))
	})
}

func (cb *CmdBuffer) Dispatch(groupsX, groupsY, groupsZ int) {
	// Desktop GL 3.3 core predates compute shaders (GL 4.3); dispatch
	// recording is accepted but never produces native work.
}

func (cb *CmdBuffer) CopyBuffer(dst driver.Buffer, dstOffset int64, src driver.Buffer, srcOffset, size int64) {
	gdst, ok1 := dst.(*Buffer)
	gsrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	cb.record(func() {
		gl.BindBuffer(gl.COPY_READ_BUFFER, gsrc.handle)
		gl.BindBuffer(gl.COPY_WRITE_BUFFER, gdst.handle)
		gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, int(srcOffset), int(dstOffset), int(size))
	})
}

func (cb *CmdBuffer) CopyToTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Buffer, srcOffset int64, extent driver.Dim3D) {
	gdst, ok1 := dst.(*Texture)
	gsrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	cb.record(func() {
		_, format, typ := glFormat(gdst.desc.Format)
		gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, gsrc.handle)
		gl.BindTexture(gl.TEXTURE_2D, gdst.handle)
		gl.TexSubImage2D(gl.TEXTURE_2D, int32(dstLevel), int32(dstOrigin.X), int32(dstOrigin.Y),
			int32(extent.Width), int32(extent.Height), format, typ, gl.PtrOffset(int(srcOffset)))
		gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, 0)
	})
}

// CopyTexture copies a region between two 2D textures via a scratch
// read framebuffer and glCopyTexSubImage2D, since desktop GL 3.3 core
// has no direct image-to-image copy (that needs ARB_copy_image, core
// only since GL 4.3).
func (cb *CmdBuffer) CopyTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Texture, srcOrigin driver.Off3D, srcLevel int, extent driver.Dim3D) {
	gdst, ok1 := dst.(*Texture)
	gsrc, ok2 := src.(*Texture)
	if !ok1 || !ok2 {
		return
	}
	cb.record(func() {
		var fbo uint32
		gl.GenFramebuffers(1, &fbo)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
		gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, gsrc.handle, int32(srcLevel))

		gl.BindTexture(gl.TEXTURE_2D, gdst.handle)
		gl.CopyTexSubImage2D(gl.TEXTURE_2D, int32(dstLevel), int32(dstOrigin.X), int32(dstOrigin.Y),
			int32(srcOrigin.X), int32(srcOrigin.Y), int32(extent.Width), int32(extent.Height))

		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fbo)
	})
}

// Fill uploads a size-byte block of the repeated value via
// glBufferSubData: GL 3.3 core has no native buffer-clear call (that
// is glClearBufferSubData, core only since GL 4.3).
func (cb *CmdBuffer) Fill(dst driver.Buffer, offset, size int64, value byte) {
	gdst, ok := dst.(*Buffer)
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
		gl.BindBuffer(gl.ARRAY_BUFFER, gdst.handle)
		gl.BufferSubData(gl.ARRAY_BUFFER, int(offset), len(fill), gl.Ptr(fill))
	})
}

// Barrier and Transition are no-ops: a single GL context already
// orders its command stream implicitly, and the fine-grained
// glMemoryBarrier call this would otherwise issue is core only since
// GL 4.2.
func (cb *CmdBuffer) Barrier(barriers []driver.Barrier) {}

func (cb *CmdBuffer) Transition(t driver.Texture, dstUsage driver.Usage) {}

// BeginDebugGroup and EndDebugGroup only push and pop a local name
// stack that nothing else reads; native debug-group annotation
// (glPushDebugGroup) is KHR_debug, core only since GL 4.3, and is
// outside what this backend targets.
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
