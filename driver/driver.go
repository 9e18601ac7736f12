// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package driver defines the unified graphics device contract: the
// interfaces every concrete GPU backend (Vulkan, D3D11/12, Metal,
// OpenGL/ES, WebGPU, software) implements, plus the resource and
// command-recording types that flow through them.
//
// Upper layers record frames exclusively through these interfaces;
// they never name a concrete backend. A Driver is opened through
// the registry in this file, generalizing the pattern gviegas/neo3
// uses for its single Vulkan driver to the multi-backend case.
package driver

import (
	"sync"

	"github.com/novaengine/gbal/gerr"
)

// Driver is the interface that provides methods for loading and
// unloading an underlying backend implementation.
type Driver interface {
	// Open initializes the driver and returns its GPU.
	// If it succeeds, further calls with the same receiver have no
	// effect and must return the same GPU instance. Open is not
	// required to be safe for parallel execution.
	Open(opts *Options) (GPU, error)

	// Name returns the stable identifier of the driver (e.g.
	// "vulkan", "d3d12", "metal", "opengl", "opengles", "webgpu",
	// "software"). It must not cause the driver to be opened.
	Name() string

	// Kind returns the BackendKind this driver implements.
	Kind() BackendKind

	// Probe reports whether the backend is available on the current
	// host without creating a device or leaving any partially
	// initialized state behind. It is the basis for
	// caps.AvailableBackends.
	Probe() bool

	// Close deinitializes the driver. Closing a driver that is not
	// open has no effect.
	Close()
}

// BackendKind enumerates the supported graphics APIs.
type BackendKind int

// Backend kinds, in the capability probe's preferred-first order
// (spec §4.1).
const (
	Vulkan BackendKind = iota
	D3D12
	Metal
	D3D11
	WebGPU
	OpenGL
	OpenGLES
	Software
)

func (k BackendKind) String() string {
	switch k {
	case Vulkan:
		return "vulkan"
	case D3D12:
		return "d3d12"
	case Metal:
		return "metal"
	case D3D11:
		return "d3d11"
	case WebGPU:
		return "webgpu"
	case OpenGL:
		return "opengl"
	case OpenGLES:
		return "opengles"
	case Software:
		return "software"
	default:
		return "unknown"
	}
}

// Options configures driver initialization (spec §6, "Backend
// options").
type Options struct {
	// PreferredBackend, if HasPreferred is set, is tried before the probe's
	// default ordering.
	PreferredBackend BackendKind
	HasPreferred      bool

	AutoFallback   bool
	DebugMode      bool
	ValidateBackends bool
	VSync          bool
	BufferCount    int // swap-chain buffer_count, {2,3}
	MultisampleCount int
	WindowHandle   any // opaque wsi.Window, nil for headless/offscreen

	// Logger, if non-nil, is shared by the driver's backend.Base.
	// Callers normally leave this nil and let the Manager create one.
	Logger *gerr.Logger
}

// Registry of available drivers, mirroring gviegas/neo3's
// driver.Register/Drivers pattern generalized to carry a Kind and a
// Probe method so the Manager and Capability Probe can use the same
// registry.
var (
	mu      sync.Mutex
	drivers []Driver
)

// Register registers a Driver. Concrete backend packages call this
// exactly once from an init function. If a driver with the same name
// has already been registered, it is replaced.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			return
		}
	}
	drivers = append(drivers, drv)
}

// Drivers returns the registered drivers, in registration order.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Driver, len(drivers))
	copy(out, drivers)
	return out
}

// ByKind returns the registered driver implementing kind, if any.
func ByKind(kind BackendKind) (Driver, bool) {
	mu.Lock()
	defer mu.Unlock()
	for _, d := range drivers {
		if d.Kind() == kind {
			return d, true
		}
	}
	return nil, false
}
