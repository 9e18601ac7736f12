// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import (
	"sync"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/memory"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
	"github.com/novaengine/gbal/shaderutil"
)

// GPU is the software backend's device. Every resource it creates
// is backed by ordinary Go memory; draws and dispatches update
// profiler counters but do not produce an image, since the software
// backend's purpose is to exercise the contract deterministically,
// not to render.
type GPU struct {
	*backend.Base

	owner     *Driver
	mu        sync.Mutex
	state     driver.DeviceState
	frameOpen bool
	caps      driver.Capabilities
}

func newGPU(owner *Driver, base *backend.Base) *GPU {
	return &GPU{
		Base:  base,
		owner: owner,
		state: driver.DeviceLive,
		caps: driver.Capabilities{
			SupportsCompute:      true,
			MaxTextureSize:       16384,
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

// Commit immediately "executes" every command buffer by replaying
// its recorded closures, then reports success on ch. Real hardware
// backends would enqueue asynchronously; the software backend has
// no queue to wait on, so completion is synchronous and immediate.
func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	var err error
	for _, c := range cb {
		sc, ok := c.(*CmdBuffer)
		if !ok {
			continue
		}
		if runErr := sc.execute(); runErr != nil && err == nil {
			err = runErr
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
	b := &Buffer{data: make([]byte, desc.Size), usage: desc.Usage}
	g.RegisterResource(registry.KindBuffer, desc.DebugName, b)
	return b, nil
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
	layers := maxInt(desc.Layers, 1)
	levels := maxInt(desc.Levels, 1)
	size := driver.SizeOfMip0(desc.Format, desc.Width, desc.Height) * int64(maxInt(desc.Depth, 1)) * int64(layers)
	t := &Texture{desc: *desc, data: make([]byte, size)}
	t.desc.Layers = layers
	t.desc.Levels = levels
	return t, nil
}

func (g *GPU) NewSampler(desc *driver.Sampling) (driver.Sampler, error) {
	s := &Sampler{desc: *desc}
	g.RegisterResource(registry.KindSampler, "", s)
	return s, nil
}

func (g *GPU) NewShader(source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (driver.Shader, error) {
	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	kind := source.Kind
	if kind == driver.SourceAuto {
		kind = shaderutil.DetectKind(source.Data, name)
	}
	// Source text is discarded after this call, but it is still
	// resolved and stage-checked here: the software backend honours
	// create_shader's contract even though it never compiles anything.
	if _, err := shaderutil.Prepare(source.Data, name, kind, stage, source.IncludeDirs); err != nil {
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "shader preprocessing failed: %v", err)
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	entry := source.EntryPoint
	if entry == "" {
		entry = "main"
	}
	sh := &Shader{stage: stage, kind: kind, entry: entry}
	if opts != nil && opts.Reflect {
		sh.reflection = &driver.ReflectionInfo{}
	}
	g.RegisterResource(registry.KindShader, name, sh)
	return sh, nil
}

func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch s := state.(type) {
	case *driver.GraphState:
		key := pipelinecache.HashGraphState(s)
		p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
			p := &Pipeline{graph: s}
			g.RegisterResource(registry.KindPipeline, s.DebugName, p)
			return p, nil
		})
		return p, err
	case *driver.CompState:
		key := pipelinecache.HashCompState(s)
		p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
			p := &Pipeline{comp: s}
			g.RegisterResource(registry.KindPipeline, s.DebugName, p)
			return p, nil
		})
		return p, err
	default:
		g.LogError(gerr.Error, gerr.InvalidPipelineState, "NewPipeline called with unrecognized state type")
		return nil, driverErr(gerr.InvalidPipelineState)
	}
}

func (g *GPU) NewRenderPass(desc *driver.RenderPassDesc) (driver.RenderPass, error) {
	rp := &RenderPass{desc: *desc}
	return rp, nil
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

// MemoryAllocator exposes the device's general-purpose host
// allocator for callers that want to pre-allocate staging memory
// outside of a Buffer.
func (g *GPU) MemoryAllocator() *memory.GeneralAllocator { return g.Memory }
