// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package opengl

import (
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

// GPU is the OpenGL backend's device: a GL context bound to a hidden
// window, current on the thread that opened it.
type GPU struct {
	*backend.Base

	owner *Driver

	mu        sync.Mutex
	state     driver.DeviceState
	frameOpen bool
	caps      driver.Capabilities
}

func newGPU(owner *Driver, base *backend.Base) *GPU {
	maxTex := int32(0)
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTex)
	return &GPU{
		Base:  base,
		owner: owner,
		state: driver.DeviceLive,
		caps: driver.Capabilities{
			SupportsCompute:     false,
			SupportsGeometry:    true,
			MaxTextureSize:      int(maxTex),
			MaxRenderTargets:    8,
			MaxVertexAttributes: 16,
			MaxUniformBindings:  16,
			MaxTextureBindings:  16,
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

// Commit replays each command buffer's recorded GL calls in order and
// reports completion immediately: GL's command stream on a single
// context is already implicitly ordered, so there is no separate
// queue to wait on the way Vulkan's Commit waits on a fence.
func (g *GPU) Commit(cbs []driver.CmdBuffer, ch chan<- error) {
	var err error
	for _, c := range cbs {
		gc, ok := c.(*CmdBuffer)
		if !ok {
			continue
		}
		if e := gc.execute(); e != nil && err == nil {
			err = e
		}
	}
	gl.Flush()
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
	var handle uint32
	gl.GenBuffers(1, &handle)
	target := vboTarget(desc.Usage)
	gl.BindBuffer(target, handle)
	gl.BufferData(target, int(desc.Size), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(target, 0)

	b := &Buffer{gpu: g, handle: handle, target: target, size: desc.Size, usage: desc.Usage}
	g.RegisterResource(registry.KindBuffer, desc.DebugName, b)
	return b, nil
}

func vboTarget(u driver.Usage) uint32 {
	switch {
	case u&driver.UIndexData != 0:
		return gl.ELEMENT_ARRAY_BUFFER
	case u&driver.UUniform != 0:
		return gl.UNIFORM_BUFFER
	default:
		return gl.ARRAY_BUFFER
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
	var handle uint32
	gl.GenTextures(1, &handle)
	gl.BindTexture(gl.TEXTURE_2D, handle)
	ifmt, format, typ := glFormat(desc.Format)
	gl.TexImage2D(gl.TEXTURE_2D, 0, ifmt, int32(desc.Width), int32(desc.Height), 0, format, typ, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	layers := maxInt(desc.Layers, 1)
	levels := maxInt(desc.Levels, 1)
	d2 := *desc
	d2.Layers = layers
	d2.Levels = levels

	t := &Texture{gpu: g, handle: handle, desc: d2}
	return t, nil
}

func (g *GPU) NewSampler(desc *driver.Sampling) (driver.Sampler, error) {
	var handle uint32
	gl.GenSamplers(1, &handle)
	gl.SamplerParameteri(handle, gl.TEXTURE_MIN_FILTER, glFilter(desc.Min, desc.Mipmap))
	gl.SamplerParameteri(handle, gl.TEXTURE_MAG_FILTER, glFilter(desc.Mag, driver.FilterNoMipmap))
	gl.SamplerParameteri(handle, gl.TEXTURE_WRAP_S, glAddr(desc.AddrU))
	gl.SamplerParameteri(handle, gl.TEXTURE_WRAP_T, glAddr(desc.AddrV))
	gl.SamplerParameteri(handle, gl.TEXTURE_WRAP_R, glAddr(desc.AddrW))

	s := &Sampler{gpu: g, handle: handle}
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
