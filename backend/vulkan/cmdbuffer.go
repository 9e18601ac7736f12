// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	"sync"

	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// CmdBuffer is the Vulkan backend's driver.CmdBuffer: a thin state
// machine (spec §4.12) wrapped around a single VkCommandBuffer
// allocated from its owning GPU's command pool.
type CmdBuffer struct {
	gpu    *GPU
	handle vk.CommandBuffer

	mu    sync.Mutex
	state driver.CBState

	inPass bool
	inWork bool
	inBlit bool

	curPass    *RenderPass
	debugGroup []string
}

func newCmdBuffer(g *GPU) (*CmdBuffer, error) {
	allocInfo := &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        g.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	handles := make([]vk.CommandBuffer, 1)
	if vk.AllocateCommandBuffers(g.dev, allocInfo, handles) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &CmdBuffer{gpu: g, handle: handles[0], state: driver.CBInitial}, nil
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
	info := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if vk.BeginCommandBuffer(cb.handle, info) != vk.Success {
		return cb.fail(gerr.InvalidCommandBuffer, "vkBeginCommandBuffer failed")
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
	vp, ok := pass.(*RenderPass)
	if !ok {
		return cb.fail(gerr.InvalidResource, "BeginPass called with a render pass from another backend")
	}
	var clearValues []vk.ClearValue
	for i := 0; i+3 < len(clear); i += 4 {
		var cv vk.ClearValue
		cv.SetColor([]float32{clear[i], clear[i+1], clear[i+2], clear[i+3]})
		clearValues = append(clearValues, cv)
	}
	info := &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      vp.handle,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cb.handle, info, vk.SubpassContentsInline)
	cb.inPass = true
	cb.curPass = vp
	return nil
}

func (cb *CmdBuffer) NextSubpass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "NextSubpass called outside of a render pass")
	}
	vk.CmdNextSubpass(cb.handle, vk.SubpassContentsInline)
	return nil
}

func (cb *CmdBuffer) EndPass() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.inPass {
		return cb.fail(gerr.RenderPassNotInProgress, "EndPass called outside of a render pass")
	}
	vk.CmdEndRenderPass(cb.handle)
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
	vp, ok := p.(*Pipeline)
	if !ok {
		return
	}
	bindPoint := vk.PipelineBindPointGraphics
	if vp.isCompute {
		bindPoint = vk.PipelineBindPointCompute
	}
	vk.CmdBindPipeline(cb.handle, bindPoint, vp.handle)
}

func (cb *CmdBuffer) SetViewport(v driver.Viewport) {
	vk.CmdSetViewport(cb.handle, 0, 1, []vk.Viewport{{
		X: v.X, Y: v.Y, Width: v.Width, Height: v.Height,
		MinDepth: v.MinDepth, MaxDepth: v.MaxDepth,
	}})
}

func (cb *CmdBuffer) SetScissor(s driver.Scissor) {
	vk.CmdSetScissor(cb.handle, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: int32(s.X), Y: int32(s.Y)},
		Extent: vk.Extent2D{Width: uint32(s.Width), Height: uint32(s.Height)},
	}})
}

func (cb *CmdBuffer) SetVertexBuffer(slot int, b driver.Buffer, offset int64) {
	vb, ok := b.(*Buffer)
	if !ok {
		return
	}
	vk.CmdBindVertexBuffers(cb.handle, uint32(slot), 1, []vk.Buffer{vb.handle}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (cb *CmdBuffer) SetIndexBuffer(b driver.Buffer, offset int64, fmt driver.IndexFmt) {
	vb, ok := b.(*Buffer)
	if !ok {
		return
	}
	it := vk.IndexTypeUint16
	if fmt == driver.Index32 {
		it = vk.IndexTypeUint32
	}
	vk.CmdBindIndexBuffer(cb.handle, vb.handle, vk.DeviceSize(offset), it)
}

// SetUniformBuffer and SetTexture require descriptor sets, which this
// backend does not yet build (spec's descriptor/binding model is left
// to a later pass); recording a bind here is a silent no-op rather
// than a crash, matching the software backend's permissiveness for
// state it does not act on.
func (cb *CmdBuffer) SetUniformBuffer(slot int, b driver.Buffer, offset, size int64) {}

func (cb *CmdBuffer) SetTexture(slot int, t driver.TextureView, s driver.Sampler) {}

func (cb *CmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	vk.CmdDraw(cb.handle, uint32(vertexCount), uint32(instanceCount), uint32(firstVertex), uint32(firstInstance))
}

func (cb *CmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	vk.CmdDrawIndexed(cb.handle, uint32(indexCount), uint32(instanceCount), uint32(firstIndex), int32(vertexOffset), uint32(firstInstance))
}

func (cb *CmdBuffer) Dispatch(groupsX, groupsY, groupsZ int) {
	vk.CmdDispatch(cb.handle, uint32(groupsX), uint32(groupsY), uint32(groupsZ))
}

func (cb *CmdBuffer) CopyBuffer(dst driver.Buffer, dstOffset int64, src driver.Buffer, srcOffset, size int64) {
	vdst, ok1 := dst.(*Buffer)
	vsrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	vk.CmdCopyBuffer(cb.handle, vsrc.handle, vdst.handle, 1, []vk.BufferCopy{{
		SrcOffset: vk.DeviceSize(srcOffset),
		DstOffset: vk.DeviceSize(dstOffset),
		Size:      vk.DeviceSize(size),
	}})
}

func (cb *CmdBuffer) CopyToTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Buffer, srcOffset int64, extent driver.Dim3D) {
	vdst, ok1 := dst.(*Texture)
	vsrc, ok2 := src.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	vk.CmdCopyBufferToImage(cb.handle, vsrc.handle, vdst.handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		BufferOffset: vk.DeviceSize(srcOffset),
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vkAspect(vdst.desc.Format),
			MipLevel:   uint32(dstLevel),
			LayerCount: 1,
		},
		ImageOffset: vk.Offset3D{X: int32(dstOrigin.X), Y: int32(dstOrigin.Y), Z: int32(dstOrigin.Z)},
		ImageExtent: vk.Extent3D{Width: uint32(extent.Width), Height: uint32(extent.Height), Depth: uint32(extent.Depth)},
	}})
}

func (cb *CmdBuffer) CopyTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Texture, srcOrigin driver.Off3D, srcLevel int, extent driver.Dim3D) {
	vdst, ok1 := dst.(*Texture)
	vsrc, ok2 := src.(*Texture)
	if !ok1 || !ok2 {
		return
	}
	vk.CmdCopyImage(cb.handle,
		vsrc.handle, vk.ImageLayoutTransferSrcOptimal,
		vdst.handle, vk.ImageLayoutTransferDstOptimal,
		1, []vk.ImageCopy{{
			SrcSubresource: vk.ImageSubresourceLayers{AspectMask: vkAspect(vsrc.desc.Format), MipLevel: uint32(srcLevel), LayerCount: 1},
			SrcOffset:      vk.Offset3D{X: int32(srcOrigin.X), Y: int32(srcOrigin.Y), Z: int32(srcOrigin.Z)},
			DstSubresource: vk.ImageSubresourceLayers{AspectMask: vkAspect(vdst.desc.Format), MipLevel: uint32(dstLevel), LayerCount: 1},
			DstOffset:      vk.Offset3D{X: int32(dstOrigin.X), Y: int32(dstOrigin.Y), Z: int32(dstOrigin.Z)},
			Extent:         vk.Extent3D{Width: uint32(extent.Width), Height: uint32(extent.Height), Depth: uint32(extent.Depth)},
		}})
}

func (cb *CmdBuffer) Fill(dst driver.Buffer, offset, size int64, value byte) {
	vdst, ok := dst.(*Buffer)
	if !ok {
		return
	}
	word := uint32(value) | uint32(value)<<8 | uint32(value)<<16 | uint32(value)<<24
	vk.CmdFillBuffer(cb.handle, vdst.handle, vk.DeviceSize(offset), vk.DeviceSize(size), word)
}

// Barrier and Transition issue a coarse global pipeline barrier
// rather than the exact per-resource stage/access masks a fully
// tuned backend would compute; correctness over throughput.
func (cb *CmdBuffer) Barrier(barriers []driver.Barrier) {
	if len(barriers) == 0 {
		return
	}
	vk.CmdPipelineBarrier(cb.handle,
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		0, 1, []vk.MemoryBarrier{{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: vk.AccessFlags(vk.AccessMemoryWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
		}}, 0, nil, 0, nil)
}

func (cb *CmdBuffer) Transition(t driver.Texture, dstUsage driver.Usage) {
	vt, ok := t.(*Texture)
	if !ok {
		return
	}
	vk.CmdPipelineBarrier(cb.handle,
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(vk.AccessMemoryWriteBit),
			DstAccessMask:       vk.AccessFlags(vk.AccessMemoryReadBit),
			OldLayout:           vk.ImageLayoutUndefined,
			NewLayout:           vkLayoutFor(dstUsage),
			Image:               vt.handle,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vkAspect(vt.desc.Format),
				LevelCount: uint32(vt.desc.Levels),
				LayerCount: uint32(vt.desc.Layers),
			},
		}})
}

func vkLayoutFor(u driver.Usage) vk.ImageLayout {
	switch {
	case u&driver.URenderTarget != 0:
		return vk.ImageLayoutColorAttachmentOptimal
	case u&driver.UDepthStencil != 0:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	case u&driver.USampled != 0:
		return vk.ImageLayoutShaderReadOnlyOptimal
	default:
		return vk.ImageLayoutGeneral
	}
}

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
	// vkEndCommandBuffer is deferred to Commit's submit path (end()),
	// so the handle stays appendable until the GPU actually submits it.
	cb.state = driver.CBExecutable
	return nil
}

// end finalizes the native recording just before submission; called
// only from GPU.Commit.
func (cb *CmdBuffer) end() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != driver.CBExecutable {
		return cb.fail(gerr.InvalidCommandBuffer, "commit attempted on a buffer not in the executable state")
	}
	if vk.EndCommandBuffer(cb.handle) != vk.Success {
		return cb.fail(gerr.CommandSubmissionFailed, "vkEndCommandBuffer failed")
	}
	cb.state = driver.CBPending
	return nil
}

func (cb *CmdBuffer) Reset() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == driver.CBPending {
		return cb.fail(gerr.InvalidCommandBuffer, "Reset called while the buffer is pending")
	}
	vk.ResetCommandBuffer(cb.handle, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
	cb.state = driver.CBInitial
	cb.inPass, cb.inWork, cb.inBlit = false, false, false
	cb.curPass = nil
	cb.debugGroup = nil
	return nil
}
