// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"sync"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
#cgo LDFLAGS: -framework Metal

@import Metal;

#include <CoreFoundation/CoreFoundation.h>
#include <Metal/Metal.h>

static CFTypeRef newBuffer(CFTypeRef devRef, NSUInteger size, MTLResourceOptions opts) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		id<MTLBuffer> buf = [dev newBufferWithLength:size options:opts];
		return CFBridgingRetain(buf);
	}
}

static CFTypeRef newTexture(CFTypeRef devRef, NSUInteger width, NSUInteger height, NSUInteger depth, MTLTextureType textureType, MTLPixelFormat format, NSUInteger mipLevels, NSUInteger arrayLength, MTLTextureUsage usage, MTLStorageMode storage) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		MTLTextureDescriptor *desc = [MTLTextureDescriptor new];
		desc.textureType = textureType;
		desc.pixelFormat = format;
		desc.width = width;
		desc.height = height;
		desc.depth = depth;
		desc.mipmapLevelCount = mipLevels;
		desc.arrayLength = arrayLength;
		desc.usage = usage;
		desc.storageMode = storage;
		return CFBridgingRetain([dev newTextureWithDescriptor:desc]);
	}
}

static CFTypeRef newSamplerState(CFTypeRef devRef, MTLSamplerMinMagFilter minFilter, MTLSamplerMinMagFilter magFilter, MTLSamplerMipFilter mipFilter, MTLSamplerAddressMode addrU, MTLSamplerAddressMode addrV, MTLSamplerAddressMode addrW, NSUInteger maxAniso, MTLCompareFunction cmp) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		MTLSamplerDescriptor *desc = [MTLSamplerDescriptor new];
		desc.minFilter = minFilter;
		desc.magFilter = magFilter;
		desc.mipFilter = mipFilter;
		desc.sAddressMode = addrU;
		desc.tAddressMode = addrV;
		desc.rAddressMode = addrW;
		desc.maxAnisotropy = maxAniso > 0 ? maxAniso : 1;
		desc.compareFunction = cmp;
		return CFBridgingRetain([dev newSamplerStateWithDescriptor:desc]);
	}
}
*/
import "C"

// GPU is the Metal backend's device: one MTLDevice plus its single
// MTLCommandQueue. Like the Vulkan backend's one VkQueue, every
// CmdBuffer submits its own MTLCommandBuffer against this one queue;
// Metal orders completion per queue regardless of submission
// concurrency, so no additional serialization is needed here.
type GPU struct {
	*backend.Base

	owner *Driver
	dev   C.CFTypeRef
	queue C.CFTypeRef

	mu        sync.Mutex
	state     driver.DeviceState
	frameOpen bool
	caps      driver.Capabilities
}

func newGPU(owner *Driver, base *backend.Base, dev, queue C.CFTypeRef) *GPU {
	tessellation := supportsFamily(dev, mtlGPUFamilyApple3)
	return &GPU{
		Base:  base,
		owner: owner,
		dev:   dev,
		queue: queue,
		state: driver.DeviceLive,
		caps: driver.Capabilities{
			SupportsCompute:      true,
			SupportsGeometry:     false,
			SupportsTessellation: tessellation,
			MaxTextureSize:      16384,
			MaxRenderTargets:    8,
			MaxVertexAttributes: 31,
			MaxUniformBindings:  31,
			MaxTextureBindings:  128,
		},
	}
}

// mtlGPUFamilyApple3 is MTLGPUFamilyApple3, the first Apple GPU
// family with full tessellation support; used only to probe
// Capabilities.SupportsTessellation, never built against directly.
const mtlGPUFamilyApple3 = 1003

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

// Commit commits every command buffer's native MTLCommandBuffer and
// waits for each to complete in order, mirroring the corpus's Metal
// backend's own EndFrame/endCmdBuffer(wait bool) pattern rather than
// Vulkan's fence-and-poll approach: Metal's waitUntilCompleted is the
// idiomatic synchronous join here.
func (g *GPU) Commit(cbs []driver.CmdBuffer, ch chan<- error) {
	var err error
	for _, c := range cbs {
		mc, ok := c.(*CmdBuffer)
		if !ok {
			continue
		}
		if e := mc.commit(); e != nil && err == nil {
			err = e
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
		return &Buffer{}, nil
	}
	opts := mtlResourceOptions(desc.Memory)
	handle := C.newBuffer(g.dev, C.NSUInteger(desc.Size), opts)
	if handle == 0 {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "newBufferWithLength:options: failed")
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	b := &Buffer{gpu: g, handle: handle, size: desc.Size, usage: desc.Usage, hostVisible: opts != mtlResourceStorageModePrivate}
	g.RegisterResource(registry.KindBuffer, desc.DebugName, b)
	return b, nil
}

func mtlResourceOptions(c driver.MemoryClass) C.MTLResourceOptions {
	switch c {
	case driver.HostVisible, driver.HostCoherent, driver.HostCached:
		return mtlResourceStorageModeShared
	default:
		return mtlResourceStorageModePrivate
	}
}

// MTLResourceOptions bit constants, hand-declared rather than pulled
// from C.MTLResourceStorageModeShared/Private: the cgo preamble only
// exposes the MTLResourceOptions type, not its named option values,
// since those are plain NS_OPTIONS enum constants the Objective-C
// side resolves but the Go side must name itself.
const (
	mtlResourceStorageModeShared  C.MTLResourceOptions = 0 << 4
	mtlResourceStorageModePrivate C.MTLResourceOptions = 2 << 4
)

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
	var usage C.MTLTextureUsage
	if desc.Usage&driver.USampled != 0 {
		usage |= mtlTextureUsageShaderRead
	}
	if desc.Usage&(driver.URenderTarget|driver.UDepthStencil) != 0 {
		usage |= mtlTextureUsageRenderTarget
	}
	if desc.Usage&driver.UStorage != 0 {
		usage |= mtlTextureUsageShaderWrite
	}
	depth := maxInt(desc.Depth, 1)
	textureType := mtlTextureType2D
	if depth > 1 {
		textureType = mtlTextureType3D
	}
	handle := C.newTexture(g.dev, C.NSUInteger(desc.Width), C.NSUInteger(desc.Height), C.NSUInteger(depth),
		textureType, mtlPixelFormat(desc.Format), C.NSUInteger(maxInt(desc.Levels, 1)), C.NSUInteger(maxInt(desc.Layers, 1)),
		usage, mtlResourceStorageModePrivate)
	if handle == 0 {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "newTextureWithDescriptor: failed")
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	d2 := *desc
	d2.Levels = maxInt(desc.Levels, 1)
	d2.Layers = maxInt(desc.Layers, 1)
	t := &Texture{gpu: g, handle: handle, desc: d2, owned: true}
	return t, nil
}

func mtlPixelFormat(f driver.PixelFmt) C.MTLPixelFormat {
	switch f {
	case driver.RGBA8Unorm:
		return mtlPixelFormatRGBA8Unorm
	case driver.BGRA8Unorm:
		return mtlPixelFormatBGRA8Unorm
	case driver.R8Unorm:
		return mtlPixelFormatR8Unorm
	case driver.RG8Unorm:
		return mtlPixelFormatRG8Unorm
	case driver.Depth24Stencil8:
		return mtlPixelFormatDepth32FloatStencil8 // no 24/8 packed depth format on Apple Silicon
	case driver.Depth32Float:
		return mtlPixelFormatDepth32Float
	default:
		return mtlPixelFormatRGBA8Unorm
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (g *GPU) NewSampler(desc *driver.Sampling) (driver.Sampler, error) {
	handle := C.newSamplerState(g.dev,
		mtlSamplerMinMagFilter(desc.Min), mtlSamplerMinMagFilter(desc.Mag), mtlSamplerMipFilter(desc.Mipmap),
		mtlSamplerAddressMode(desc.AddrU), mtlSamplerAddressMode(desc.AddrV), mtlSamplerAddressMode(desc.AddrW),
		C.NSUInteger(maxInt(desc.MaxAniso, 1)), mtlCompareFunction(desc.Cmp))
	if handle == 0 {
		g.LogError(gerr.Error, gerr.ResourceCreationFailed, "newSamplerStateWithDescriptor: failed")
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	s := &Sampler{handle: handle}
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

// NewRenderPass is a pure descriptor: Metal's MTLRenderPassDescriptor
// is built per-encoder at BeginPass, directly against the concrete
// textures bound that frame, so there is nothing reusable to
// allocate ahead of time here, the same scope cut d3d11/d3d12 make
// for their own render-pass objects.
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
	cfRelease(g.queue)
	cfRelease(g.dev)
	g.state = driver.DeviceDestroyed
}
