// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package webgpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Swapchain is the WebGPU backend's driver.Swapchain, a wgpu.Surface
// configured against the owning adapter/device pair. Acquisition is
// per-frame (GetCurrentTexture), unlike Vulkan's explicit semaphore
// hand-off, so NextBackbuffer re-acquires the surface texture every
// call rather than rotating a fixed ring of backbuffers.
type Swapchain struct {
	gpu     *GPU
	surface *wgpu.Surface

	mu     sync.Mutex
	state  driver.SCState
	width  int
	height int
	format driver.PixelFmt
	back   *Texture
}

func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	win, ok := desc.Window.(*glfw.Window)
	if !ok || win == nil {
		g.LogError(gerr.Error, gerr.ValidationError, "NewSwapchain requires desc.Window to be a *glfw.Window")
		return nil, driverErr(gerr.ValidationError)
	}
	inst := g.owner.instance
	surface := inst.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	if surface == nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}

	format := desc.Format
	if format == 0 {
		format = driver.BGRA8Unorm
	}
	sc := &Swapchain{
		gpu: g, surface: surface,
		state: driver.SCReady, width: desc.Width, height: desc.Height, format: format,
	}
	sc.configure(desc.VSync)
	if err := sc.acquire(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Swapchain) configure(vsync bool) {
	mode := wgpu.PresentModeImmediate
	if vsync {
		mode = wgpu.PresentModeFifo
	}
	s.surface.Configure(s.gpu.owner.adapter, s.gpu.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      waFormat(s.format),
		Width:       uint32(s.width),
		Height:      uint32(s.height),
		PresentMode: mode,
		AlphaMode:   wgpu.CompositeAlphaModeAuto,
	})
}

func (s *Swapchain) acquire() error {
	tex, status := s.surface.GetCurrentTexture()
	if tex == nil || status != wgpu.SurfaceGetCurrentTextureStatusSuccess {
		s.state = driver.SCOutOfDate
		return driverErr(gerr.SwapChainOutOfDate)
	}
	s.back = &Texture{
		gpu: s.gpu, handle: tex, owned: true,
		desc: driver.TextureDesc{
			Dim3D:  driver.Dim3D{Width: s.width, Height: s.height, Depth: 1},
			Format: s.format, Layers: 1, Levels: 1, Samples: 1,
			Usage: driver.URenderTarget,
		},
	}
	return nil
}

func (s *Swapchain) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back != nil {
		s.back.Destroy()
		s.back = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	s.state = driver.SCDestroyed
}

func (s *Swapchain) State() driver.SCState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != driver.SCReady {
		return nil, driverErr(gerr.SwapChainOutOfDate)
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	return s.back, nil
}

func (s *Swapchain) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != driver.SCReady {
		return driverErr(gerr.SwapChainOutOfDate)
	}
	s.surface.Present()
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back != nil {
		s.back.Destroy()
		s.back = nil
	}
	s.width, s.height = width, height
	s.configure(true)
	s.state = driver.SCReady
	return s.acquire()
}

func (s *Swapchain) Recreate() error {
	return s.Resize(s.width, s.height)
}
