// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import (
	"sync"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Swapchain is the software backend's driver.Swapchain: an offscreen
// chain of placeholder backbuffers with no native surface behind it.
// Software is the mandatory fallback, selected whenever no hardware
// backend is available (including on a headless host), so it honours
// the full presentation contract rather than declining via
// BackendNotSupported: NextBackbuffer always hands back a writable
// Texture, Present always succeeds without doing GPU work, and the
// width=0/height=0 tie-break is tracked through SCMinimised exactly
// as the spec's swap-chain state machine requires of every backend.
type Swapchain struct {
	gpu    *GPU
	format driver.PixelFmt
	bufs   int

	mu            sync.Mutex
	state         driver.SCState
	width, height int
}

func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	sc := &Swapchain{
		gpu:    g,
		format: desc.Format,
		bufs:   maxInt(desc.BufferCount, 1),
		width:  desc.Width,
		height: desc.Height,
	}
	sc.state = stateForSize(sc.width, sc.height)
	return sc, nil
}

func stateForSize(w, h int) driver.SCState {
	if w == 0 || h == 0 {
		return driver.SCMinimised
	}
	return driver.SCReady
}

func (s *Swapchain) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = driver.SCDestroyed
}

// NextBackbuffer returns a fresh placeholder texture sized to the
// chain's current dimensions. While minimised it is a zero-sized
// Texture, the same empty-descriptor shape NewTexture already returns
// for width=0/height=0, since there is no GPU work to back it with.
func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == driver.SCDestroyed {
		return nil, driverErr(gerr.InvalidOperation)
	}
	t, err := s.gpu.newTextureObj(&driver.TextureDesc{
		Dim3D:  driver.Dim3D{Width: s.width, Height: s.height, Depth: 1},
		Format: s.format,
		Layers: 1,
		Levels: 1,
		Usage:  driver.URenderTarget,
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Present always succeeds: there is no native present queue to fail,
// and while minimised it deliberately performs no work, matching the
// spec's tie-break for a resize to zero width or height.
func (s *Swapchain) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == driver.SCDestroyed {
		return driverErr(gerr.InvalidOperation)
	}
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.state = stateForSize(width, height)
	return nil
}

func (s *Swapchain) Recreate() error {
	return s.Resize(s.width, s.height)
}

func (s *Swapchain) State() driver.SCState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
