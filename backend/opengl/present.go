// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package opengl

import (
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Swapchain is the OpenGL backend's driver.Swapchain. Desktop GL has
// no native swapchain object distinct from the windowing system's
// default framebuffer; this wraps the GLFW window's back buffer and
// its own backbuffer handle is always 0 (GL_BACK).
type Swapchain struct {
	gpu    *GPU
	window *glfw.Window

	mu     sync.Mutex
	state  driver.SCState
	width  int
	height int
	back   *Texture
}

func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	win, ok := desc.Window.(*glfw.Window)
	if !ok || win == nil {
		g.LogError(gerr.Error, gerr.ValidationError, "NewSwapchain requires desc.Window to be a *glfw.Window")
		return nil, driverErr(gerr.ValidationError)
	}
	glfw.SwapInterval(boolToInterval(desc.VSync))
	sc := &Swapchain{
		gpu:    g,
		window: win,
		state:  driver.SCReady,
		width:  desc.Width,
		height: desc.Height,
		back: &Texture{
			gpu:    g,
			handle: 0,
			desc: driver.TextureDesc{
				Dim3D:  driver.Dim3D{Width: desc.Width, Height: desc.Height, Depth: 1},
				Format: driver.BGRA8Unorm,
				Layers: 1,
				Levels: 1,
				Samples: 1,
				Usage:  driver.URenderTarget,
			},
		},
	}
	return sc, nil
}

func boolToInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

func (s *Swapchain) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = driver.SCDestroyed
}

func (s *Swapchain) State() driver.SCState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextBackbuffer returns the window's default framebuffer (GL_BACK)
// wrapped as a non-owned Texture: there is no acquire step the way
// Vulkan's AcquireNextImage has, since GL always targets the one
// default framebuffer unless an FBO is explicitly bound.
func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != driver.SCReady {
		return nil, driverErr(gerr.SwapChainOutOfDate)
	}
	return s.back, nil
}

// Present swaps the window's front and back buffers.
func (s *Swapchain) Present() error {
	s.mu.Lock()
	win := s.window
	ok := s.state == driver.SCReady
	s.mu.Unlock()
	if !ok {
		return driverErr(gerr.SwapChainOutOfDate)
	}
	win.SwapBuffers()
	gl.Viewport(0, 0, int32(s.width), int32(s.height))
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.back.desc.Width, s.back.desc.Height = width, height
	s.state = driver.SCReady
	return nil
}

func (s *Swapchain) Recreate() error {
	s.mu.Lock()
	w, h := s.width, s.height
	s.mu.Unlock()
	return s.Resize(w, h)
}
