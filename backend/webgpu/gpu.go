// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package webgpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

// GPU is the WebGPU backend's device: a wgpu.Device plus the queue it
// submits command buffers to.
type GPU struct {
	*backend.Base

	owner  *Driver
	device *wgpu.Device
	queue  *wgpu.Queue

	mu        sync.Mutex
	state     driver.DeviceState
	frameOpen bool
	caps      driver.Capabilities
}

func newGPU(owner *Driver, base *backend.Base, device *wgpu.Device, queue *wgpu.Queue) *GPU {
	return &GPU{
		Base:   base,
		owner:  owner,
		device: device,
		queue:  queue,
		state:  driver.DeviceLive,
		caps: driver.Capabilities{
			SupportsCompute:      true,
			SupportsGeometry:     false,
			SupportsTessellation: false,
			SupportsBindless:     false,
			MaxTextureSize:       8192,
			MaxRenderTargets:     8,
			MaxVertexAttributes:  16,
			MaxUniformBindings:   16,
			MaxTextureBindings:   32,
		},
	}
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

// Commit finishes each command buffer's encoder into a submittable
// wgpu.CommandBuffer, submits the batch to the queue in one call, and
// reports completion synchronously: wgpu-native's queue submission has
// no separate fence-wait step the way Vulkan does for a CPU-visible
// completion signal, so this backend treats Submit's return as done.
func (g *GPU) Commit(cbs []driver.CmdBuffer, ch chan<- error) {
	var err error
	var buffers []*wgpu.CommandBuffer
	for _, c := range cbs {
		wc, ok := c.(*CmdBuffer)
		if !ok {
			continue
		}
		buf, e := wc.finish()
		if e != nil && err == nil {
			err = e
			continue
		}
		if buf != nil {
			buffers = append(buffers, buf)
		}
	}
	if err == nil && len(buffers) > 0 {
		g.queue.Submit(buffers...)
	}
	for _, c := range cbs {
		if wc, ok := c.(*CmdBuffer); ok {
			wc.mu.Lock()
			wc.state = driver.CBInitial
			wc.mu.Unlock()
		}
	}
	if ch != nil {
		ch <- err
	}
}

func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	return newCmdBuffer(g), nil
}

func (g *GPU) NewBuffer(desc *driver.BufferDesc) (driver.Buffer, error) {
	if desc.Size == 0 {
		return &Buffer{gpu: g}, nil
	}
	buf, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.DebugName,
		Size:             uint64(desc.Size),
		Usage:            waBufferUsage(desc.Usage),
		MappedAtCreation: false,
	})
	if err != nil || buf == nil {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "CreateBuffer failed")
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	b := &Buffer{gpu: g, handle: buf, size: desc.Size, usage: desc.Usage, memory: desc.Memory}
	g.RegisterResource(registry.KindBuffer, desc.DebugName, b)
	return b, nil
}

func waBufferUsage(u driver.Usage) wgpu.BufferUsage {
	var f wgpu.BufferUsage
	if u&driver.UVertexData != 0 {
		f |= wgpu.BufferUsageVertex
	}
	if u&driver.UIndexData != 0 {
		f |= wgpu.BufferUsageIndex
	}
	if u&driver.UUniform != 0 {
		f |= wgpu.BufferUsageUniform
	}
	if u&driver.UStorage != 0 {
		f |= wgpu.BufferUsageStorage
	}
	if u&driver.UTransferSrc != 0 {
		f |= wgpu.BufferUsageCopySrc
	}
	if u&driver.UTransferDst != 0 {
		f |= wgpu.BufferUsageCopyDst
	}
	if u&driver.UIndirect != 0 {
		f |= wgpu.BufferUsageIndirect
	}
	if f == 0 {
		f = wgpu.BufferUsageCopyDst
	}
	return f
}

func (g *GPU) NewTexture(desc *driver.TextureDesc) (driver.Texture, error) {
	t, err := g.newTextureObj(desc)
	if err != nil {
		return nil, err
	}
	g.RegisterResource(registry.KindTexture, desc.DebugName, t)
	return t, nil
}

// newTextureObj builds a Texture without registering it, so
// NewRenderTarget can register the result under KindRenderTarget
// only instead of double-booking it under KindTexture too.
func (g *GPU) newTextureObj(desc *driver.TextureDesc) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return &Texture{gpu: g}, nil
	}
	d2 := *desc
	d2.Layers = maxInt(desc.Layers, 1)
	d2.Levels = maxInt(desc.Levels, 1)
	d2.Samples = maxInt(desc.Samples, 1)

	tex, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.DebugName,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(maxInt(desc.Height, 1)),
			DepthOrArrayLayers: uint32(d2.Layers),
		},
		MipLevelCount: uint32(d2.Levels),
		SampleCount:   uint32(d2.Samples),
		Dimension:     wgpu.TextureDimension2D,
		Format:        waFormat(desc.Format),
		Usage:         waTextureUsage(desc.Usage, desc.Format),
	})
	if err != nil || tex == nil {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "CreateTexture failed")
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	t := &Texture{gpu: g, handle: tex, desc: d2, owned: true}
	return t, nil
}

func waTextureUsage(u driver.Usage, f driver.PixelFmt) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&driver.USampled != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&driver.URenderTarget != 0 || driver.IsDepthFormat(f) {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if u&driver.UTransferSrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&driver.UTransferDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if out == 0 {
		out = wgpu.TextureUsageTextureBinding
	}
	return out
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
		return g.newGraphicsPipeline(s)
	case *driver.CompState:
		return g.newComputePipeline(s)
	default:
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "NewPipeline called with unrecognized state type")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
}

// NewRenderPass only records the attachment layout: WebGPU has no
// native render-pass object, describing attachments afresh on every
// CommandEncoder.BeginRenderPass call instead.
func (g *GPU) NewRenderPass(desc *driver.RenderPassDesc) (driver.RenderPass, error) {
	return &RenderPass{desc: *desc}, nil
}

func (g *GPU) NewRenderTarget(desc *driver.TextureDesc) (driver.Texture, error) {
	d2 := *desc
	if driver.IsDepthFormat(desc.Format) {
		d2.Usage |= driver.UDepthStencil
	} else {
		d2.Usage |= driver.URenderTarget
	}
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
	g.state = driver.DeviceDestroyed
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
