// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

// GPU is the Vulkan backend's device: a VkDevice plus the queue and
// physical device it was created against, reached through the owning
// Driver.
type GPU struct {
	*backend.Base

	owner *Driver
	dev   vk.Device
	pdev  vk.PhysicalDevice
	queue vk.Queue
	qfam  uint32
	pool  vk.CommandPool

	mu        sync.Mutex
	state     driver.DeviceState
	frameOpen bool
	caps      driver.Capabilities
}

func newGPU(owner *Driver, base *backend.Base) *GPU {
	g := &GPU{
		Base:  base,
		owner: owner,
		dev:   owner.dev,
		pdev:  owner.pdev,
		queue: owner.queue,
		qfam:  owner.qfam,
		state: driver.DeviceLive,
		caps: driver.Capabilities{
			SupportsCompute:     true,
			SupportsGeometry:    true,
			SupportsTessellation: true,
			MaxTextureSize:      16384,
			MaxRenderTargets:    8,
			MaxVertexAttributes: 16,
			MaxUniformBindings:  16,
			MaxTextureBindings:  32,
		},
	}
	poolInfo := &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: owner.qfam,
	}
	vk.CreateCommandPool(owner.dev, poolInfo, nil, &g.pool)
	return g
}

func (g *GPU) Driver() driver.Driver { return g.owner }

func (g *GPU) Capabilities() driver.Capabilities { return g.caps }

func (g *GPU) BeginFrame() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frameOpen {
		g.LogError(gerr.Error, gerr.InvalidOperation, "BeginFrame called while a frame is already open")
		return driverErr(gerr.InvalidOperation)
	}
	g.frameOpen = true
	g.Scratch.Reset()
	g.Profiler.BeginFrame()
	return nil
}

func (g *GPU) EndFrame() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.frameOpen {
		g.LogError(gerr.Error, gerr.InvalidOperation, "EndFrame called without a matching BeginFrame")
		return driverErr(gerr.InvalidOperation)
	}
	g.frameOpen = false
	g.Profiler.EndFrame()
	return nil
}

// Commit submits every recorded command buffer to the graphics queue
// and blocks on a fence before reporting completion on ch, mirroring
// the synchronous commit contract every backend in this module honors
// (spec §5: Commit does not return until the work it submitted is
// either complete or has failed).
func (g *GPU) Commit(cbs []driver.CmdBuffer, ch chan<- error) {
	var err error
	var handles []vk.CommandBuffer
	for _, c := range cbs {
		vc, ok := c.(*CmdBuffer)
		if !ok {
			continue
		}
		if e := vc.end(); e != nil && err == nil {
			err = e
		}
		handles = append(handles, vc.handle)
	}
	if err == nil && len(handles) > 0 {
		err = g.submit(handles)
	}
	for _, c := range cbs {
		if vc, ok := c.(*CmdBuffer); ok {
			vc.state = driver.CBInitial
		}
	}
	if ch != nil {
		ch <- err
	}
}

func (g *GPU) submit(handles []vk.CommandBuffer) error {
	fenceInfo := &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if vk.CreateFence(g.dev, fenceInfo, nil, &fence) != vk.Success {
		return driverErr(gerr.CommandSubmissionFailed)
	}
	defer vk.DestroyFence(g.dev, fence, nil)

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(handles)),
		PCommandBuffers:    handles,
	}}
	if vk.QueueSubmit(g.queue, 1, submit, fence) != vk.Success {
		return driverErr(gerr.CommandSubmissionFailed)
	}
	if vk.WaitForFences(g.dev, 1, []vk.Fence{fence}, vk.True, ^uint64(0)) != vk.Success {
		return driverErr(gerr.WaitFailed)
	}
	return nil
}

func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	return newCmdBuffer(g)
}

func (g *GPU) NewBuffer(desc *driver.BufferDesc) (driver.Buffer, error) {
	if desc.Size == 0 {
		return &Buffer{gpu: g}, nil
	}
	info := &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(desc.Size),
		Usage:       vk.BufferUsageFlags(vkBufferUsage(desc.Usage)),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if vk.CreateBuffer(g.dev, info, nil, &handle) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(g.dev, handle, &req)
	req.Deref()

	props := vkMemoryProps(desc.Memory)
	mem, ok := allocate(g.dev, g.pdev, req.Size, req.MemoryTypeBits, props)
	if !ok {
		vk.DestroyBuffer(g.dev, handle, nil)
		return nil, driverErr(gerr.AllocationFailed)
	}
	if vk.BindBufferMemory(g.dev, handle, mem, 0) != vk.Success {
		vk.DestroyBuffer(g.dev, handle, nil)
		vk.FreeMemory(g.dev, mem, nil)
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	b := &Buffer{gpu: g, handle: handle, mem: mem, size: desc.Size, usage: desc.Usage}
	if props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0 {
		var ptr unsafe.Pointer
		if vk.MapMemory(g.dev, mem, 0, vk.DeviceSize(desc.Size), 0, &ptr) == vk.Success {
			b.data = unsafe.Slice((*byte)(ptr), desc.Size)
		}
	}
	g.RegisterResource(registry.KindBuffer, desc.DebugName, b)
	return b, nil
}

func vkMemoryProps(c driver.MemoryClass) vk.MemoryPropertyFlags {
	switch c {
	case driver.HostVisible, driver.HostCoherent:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	case driver.HostCached:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCachedBit)
	default:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	}
}

func (g *GPU) NewTexture(desc *driver.TextureDesc) (driver.Texture, error) {
	t, err := g.newTextureObj(desc)
	if err != nil {
		return nil, err
	}
	g.RegisterResource(registry.KindTexture, desc.DebugName, t)
	return t, nil
}

// newTextureObj builds a Texture without registering it, so callers
// that register it under a different kind (NewRenderTarget) don't
// leave it double-booked under KindTexture too.
func (g *GPU) newTextureObj(desc *driver.TextureDesc) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return &Texture{gpu: g}, nil
	}
	layers := maxInt(desc.Layers, 1)
	levels := maxInt(desc.Levels, 1)
	d2 := *desc
	d2.Layers = layers
	d2.Levels = levels

	info := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vkImageType(desc),
		Format:    vkFormat(desc.Format),
		Extent: vk.Extent3D{
			Width:  uint32(desc.Width),
			Height: uint32(maxInt(desc.Height, 1)),
			Depth:  uint32(maxInt(desc.Depth, 1)),
		},
		MipLevels:     uint32(levels),
		ArrayLayers:   uint32(layers),
		Samples:       vkSampleCount(1),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vkImageUsage(desc.Usage)),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var handle vk.Image
	if vk.CreateImage(g.dev, info, nil, &handle) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(g.dev, handle, &req)
	req.Deref()
	mem, ok := allocate(g.dev, g.pdev, req.Size, req.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if !ok {
		vk.DestroyImage(g.dev, handle, nil)
		return nil, driverErr(gerr.AllocationFailed)
	}
	if vk.BindImageMemory(g.dev, handle, mem, 0) != vk.Success {
		vk.DestroyImage(g.dev, handle, nil)
		vk.FreeMemory(g.dev, mem, nil)
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	t := &Texture{gpu: g, handle: handle, mem: mem, desc: d2, owned: true}
	return t, nil
}

func vkImageType(desc *driver.TextureDesc) vk.ImageType {
	if desc.Depth > 1 {
		return vk.ImageType3d
	}
	return vk.ImageType2d
}

func (g *GPU) NewSampler(desc *driver.Sampling) (driver.Sampler, error) {
	s, err := newSampler(g, desc)
	if err != nil {
		return nil, err
	}
	g.RegisterResource(registry.KindSampler, "", s)
	return s, nil
}

func (g *GPU) NewShader(source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (driver.Shader, error) {
	sh, err := newShader(g, source, stage, opts)
	if err != nil {
		return nil, err
	}
	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	g.RegisterResource(registry.KindShader, name, sh)
	return sh, nil
}

func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch s := state.(type) {
	case *driver.GraphState:
		return g.newGraphicsPipeline(s, nil)
	case *driver.CompState:
		return g.newComputePipeline(s)
	default:
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "NewPipeline called with unrecognized state type")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
}

func (g *GPU) NewRenderPass(desc *driver.RenderPassDesc) (driver.RenderPass, error) {
	return newRenderPass(g, desc)
}

func (g *GPU) NewRenderTarget(desc *driver.TextureDesc) (driver.Texture, error) {
	usage := desc.Usage
	if driver.IsDepthFormat(desc.Format) {
		usage |= driver.UDepthStencil
	} else {
		usage |= driver.URenderTarget
	}
	d2 := *desc
	d2.Usage = usage
	t, err := g.newTextureObj(&d2)
	if err != nil {
		return nil, err
	}
	g.RegisterResource(registry.KindRenderTarget, desc.DebugName, t)
	return t, nil
}

func (g *GPU) Deinit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == driver.DeviceDestroyed {
		return
	}
	vk.DeviceWaitIdle(g.dev)
	for _, kind := range []registry.Kind{
		registry.KindRenderTarget,
		registry.KindPipeline,
		registry.KindShader,
		registry.KindSampler,
		registry.KindBuffer,
		registry.KindTexture,
	} {
		for _, key := range g.Registry.Keys(kind) {
			if obj, ok := g.Registry.Get(kind, key); ok {
				obj.Destroy()
			}
			g.Registry.Remove(kind, key)
		}
	}
	g.Pipelines.Invalidate()
	if g.pool != nil {
		vk.DestroyCommandPool(g.dev, g.pool, nil)
		g.pool = nil
	}
	g.state = driver.DeviceDestroyed
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
