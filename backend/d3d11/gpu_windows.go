// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"sync"
	"unsafe"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

// GPU is the D3D11 backend's device: one ID3D11Device plus its single
// immediate context. D3D11 has no separate concept of multiple
// hardware queues; every CmdBuffer replays directly against the one
// immediate context, serialized by mu the same way the software
// backend serializes against its single execution thread.
type GPU struct {
	*backend.Base

	owner   *Driver
	dev     *_ID3D11Device
	ctx     *_ID3D11DeviceContext
	featLvl uint32

	mu        sync.Mutex
	state     driver.DeviceState
	frameOpen bool
	caps      driver.Capabilities
}

func newGPU(owner *Driver, base *backend.Base, dev *_ID3D11Device, ctx *_ID3D11DeviceContext, featLvl uint32) *GPU {
	maxTex := 16384
	if featLvl < featureLevel11_0 {
		maxTex = 8192
	}
	return &GPU{
		Base:    base,
		owner:   owner,
		dev:     dev,
		ctx:     ctx,
		featLvl: featLvl,
		state:   driver.DeviceLive,
		caps: driver.Capabilities{
			// Compute shader creation is not wired on this backend
			// (see NewPipeline); capability is reported false even on
			// feature level 11_0 hardware that could otherwise run one.
			SupportsCompute:      false,
			SupportsGeometry:     true,
			SupportsTessellation: featLvl >= featureLevel11_0,
			MaxTextureSize:      maxTex,
			MaxRenderTargets:    8,
			MaxVertexAttributes: 16,
			MaxUniformBindings:  14,
			MaxTextureBindings:  128,
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

// Commit replays every command buffer's recorded calls against the
// single immediate context in order, then reports completion
// synchronously: the immediate context has no separate submission
// queue to fence against, unlike Vulkan's deferred queue submit.
func (g *GPU) Commit(cbs []driver.CmdBuffer, ch chan<- error) {
	var err error
	g.mu.Lock()
	for _, c := range cbs {
		dc, ok := c.(*CmdBuffer)
		if !ok {
			continue
		}
		if e := dc.execute(); e != nil && err == nil {
			err = e
		}
	}
	g.mu.Unlock()
	if ch != nil {
		ch <- err
	}
}

func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	return newCmdBuffer(g), nil
}

func (g *GPU) NewBuffer(desc *driver.BufferDesc) (driver.Buffer, error) {
	if desc.Size == 0 {
		return &Buffer{}, nil
	}
	bindFlags := d3dBindFlags(desc.Usage)
	usage, cpuAccess := d3dResourceUsage(desc.Memory)

	d3ddesc := struct {
		ByteWidth      uint32
		Usage          uint32
		BindFlags      uint32
		CPUAccessFlags uint32
		MiscFlags      uint32
		StructureByteStride uint32
	}{
		ByteWidth:      uint32(desc.Size),
		Usage:          usage,
		BindFlags:      bindFlags,
		CPUAccessFlags: cpuAccess,
	}
	var out *_ID3D11Buffer
	hr := g.dev.call(g.dev.vtbl.CreateBuffer, uintptr(unsafe.Pointer(&d3ddesc)), 0, uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "CreateBuffer failed: HRESULT %#x", hr)
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	b := &Buffer{gpu: g, handle: out, size: desc.Size, usage: desc.Usage, bind: bindFlags}
	g.RegisterResource(registry.KindBuffer, desc.DebugName, b)
	return b, nil
}

func d3dBindFlags(u driver.Usage) uint32 {
	var f uint32
	if u&driver.UVertexData != 0 {
		f |= bindVertexBuffer
	}
	if u&driver.UIndexData != 0 {
		f |= bindIndexBuffer
	}
	if u&driver.UUniform != 0 {
		f |= bindConstantBuffer
	}
	if u&driver.USampled != 0 {
		f |= bindShaderResource
	}
	if u&driver.URenderTarget != 0 {
		f |= bindRenderTarget
	}
	if u&driver.UDepthStencil != 0 {
		f |= bindDepthStencil
	}
	if f == 0 {
		f = bindVertexBuffer
	}
	return f
}

func d3dResourceUsage(c driver.MemoryClass) (usage, cpuAccess uint32) {
	switch c {
	case driver.HostVisible, driver.HostCoherent:
		return usageDynamic, cpuAccessWrite
	case driver.HostCached:
		return usageStaging, cpuAccessRead
	default:
		return usageDefault, 0
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

// newTextureObj builds a Texture without registering it, so
// NewRenderTarget can register the result under KindRenderTarget
// only instead of double-booking it under KindTexture too.
func (g *GPU) newTextureObj(desc *driver.TextureDesc) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return &Texture{}, nil
	}
	bindFlags := d3dBindFlags(desc.Usage)
	if driver.IsDepthFormat(desc.Format) {
		bindFlags |= bindDepthStencil
	}
	d3ddesc := struct {
		Width, Height          uint32
		MipLevels, ArraySize   uint32
		Format                 uint32
		SampleCount, SampleQ   uint32
		Usage                  uint32
		BindFlags              uint32
		CPUAccessFlags         uint32
		MiscFlags              uint32
	}{
		Width:       uint32(desc.Width),
		Height:      uint32(desc.Height),
		MipLevels:   uint32(maxInt(desc.Levels, 1)),
		ArraySize:   uint32(maxInt(desc.Layers, 1)),
		Format:      d3dFormat(desc.Format),
		SampleCount: uint32(maxInt(desc.Samples, 1)),
		BindFlags:   bindFlags,
	}
	var out *_ID3D11Texture2D
	hr := g.dev.call(g.dev.vtbl.CreateTexture2D, uintptr(unsafe.Pointer(&d3ddesc)), 0, uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "CreateTexture2D failed: HRESULT %#x", hr)
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	d2 := *desc
	d2.Levels = int(d3ddesc.MipLevels)
	d2.Layers = int(d3ddesc.ArraySize)
	t := &Texture{gpu: g, handle: out, desc: d2}
	return t, nil
}

func d3dFormat(f driver.PixelFmt) uint32 {
	switch f {
	case driver.RGBA8Unorm:
		return fmtR8G8B8A8Unorm
	case driver.BGRA8Unorm:
		return fmtB8G8R8A8Unorm
	case driver.R8Unorm:
		return fmtR8Unorm
	case driver.RG8Unorm:
		return fmtR8G8Unorm
	case driver.Depth24Stencil8:
		return fmtD24UnormS8Uint
	case driver.Depth32Float:
		return fmtD32Float
	default:
		return fmtR8G8B8A8Unorm
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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
		return nil, driverErr(gerr.FeatureNotSupported)
	default:
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "NewPipeline called with unrecognized state type")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
}

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
	g.ctx.Release()
	g.dev.Release()
	g.state = driver.DeviceDestroyed
}
