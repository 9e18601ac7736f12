// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "errors"

// ErrCannotPresent means the driver and/or device do not support
// presentation (e.g. a headless software device).
var ErrCannotPresent = errors.New("driver: presentation not supported")

// ErrWindow represents an error related to a specific window, such
// as the driver requiring a visible window to create a swap chain.
var ErrWindow = errors.New("driver: window-related error")

// ErrNoBackbuffer means every backbuffer in the chain is currently
// acquired; backbuffers are released on Present.
var ErrNoBackbuffer = errors.New("driver: all backbuffers in use")

// SCState is the swap chain lifecycle state (spec §5):
//
//	uninitialised -> ready -> minimised -> ready
//	ready -> out_of_date -> ready
//	any -> destroyed
type SCState int

const (
	SCUninitialised SCState = iota
	SCReady
	SCMinimised
	SCOutOfDate
	SCDestroyed
)

func (s SCState) String() string {
	switch s {
	case SCUninitialised:
		return "uninitialised"
	case SCReady:
		return "ready"
	case SCMinimised:
		return "minimised"
	case SCOutOfDate:
		return "out_of_date"
	case SCDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// SwapchainDesc describes the parameters used to create a Swapchain.
type SwapchainDesc struct {
	Window        any // opaque wsi.Window
	Format        PixelFmt
	BufferCount   int
	VSync         bool
	Width, Height int
}

// Swapchain is the interface that defines a presentable chain of
// backbuffers tied to a window surface.
type Swapchain interface {
	Destroyer

	// NextBackbuffer acquires the next backbuffer to render into.
	// It returns an error of gerr kind SwapChainOutOfDate if the
	// surface no longer matches the chain's configuration (e.g.
	// after a resize); the caller is expected to recreate the chain
	// and retry exactly once, per the Adaptive Renderer's recovery
	// policy.
	NextBackbuffer() (Texture, error)

	// Present submits the current backbuffer for display.
	Present() error

	// Resize reconfigures the chain for a new surface size. It may
	// transition the chain through out_of_date internally.
	Resize(width, height int) error

	// Recreate rebuilds the chain in place against its existing
	// window surface, without changing its configured size. It is
	// meant to be called in response to SwapChainOutOfDate, and is
	// the basis of the Adaptive Renderer's one-retry recovery policy.
	Recreate() error

	// State reports the chain's current lifecycle state.
	State() SCState
}

// Presenter is implemented by a GPU that can create swap chains. A
// backend with no native presentation surface at all may decline by
// returning BackendNotSupported; the software backend does not take
// this path, since it is the mandatory fallback and must honour the
// contract even headless, via an offscreen Swapchain.
type Presenter interface {
	NewSwapchain(desc *SwapchainDesc) (Swapchain, error)
}
