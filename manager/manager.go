// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package manager implements the Backend Manager (C12): selection of
// the primary device per the capability probe's policy, ownership of
// the active device, and runtime backend switching.
//
// This replaces gviegas/neo3's process-wide ctxt.GPU() singleton with
// an explicit, caller-held *Manager: nothing in this package or its
// callers reaches for a package-level device. Every operation takes
// the Manager it operates on.
package manager

import (
	"io"

	"github.com/novaengine/gbal/caps"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Config controls backend selection (spec §4.2, §6 "Backend options").
type Config struct {
	Preferred     driver.BackendKind
	HasPreferred  bool
	AutoFallback  bool
	DebugMode     bool
	Validate      bool
	VSync         bool
	BufferCount   int
	Multisample   int
	WindowHandle  any
	LogWriter     io.Writer // defaults to io.Discard
	ErrorRingSize int       // defaults to gerr.DefaultRingSize
}

func (c Config) toOptions(logger *gerr.Logger) *driver.Options {
	return &driver.Options{
		PreferredBackend: c.Preferred,
		HasPreferred:     c.HasPreferred,
		AutoFallback:     c.AutoFallback,
		DebugMode:        c.DebugMode,
		ValidateBackends: c.Validate,
		VSync:            c.VSync,
		BufferCount:      c.BufferCount,
		MultisampleCount: c.Multisample,
		WindowHandle:     c.WindowHandle,
		Logger:           logger,
	}
}

// Manager owns exactly one primary device (and, once acquired, an
// optional secondary for async operations) and applies the selection
// policy described by spec §4.2.
type Manager struct {
	cfg    Config
	logger *gerr.Logger

	primary   driver.GPU
	primaryKind driver.BackendKind

	secondary driver.GPU
}

// New selects and opens the primary device per cfg, following the
// selection algorithm: try the preferred backend first if one was
// given, then the capability probe's default order; stop at the
// first success. The software backend is always the final candidate
// and always succeeds, so New only fails when auto_fallback is false
// and the preferred backend could not be opened.
func New(cfg Config) (*Manager, error) {
	w := cfg.LogWriter
	if w == nil {
		w = io.Discard
	}
	ringSize := cfg.ErrorRingSize
	if ringSize == 0 {
		ringSize = gerr.DefaultRingSize
	}
	logger := gerr.NewLogger(w, ringSize, cfg.DebugMode)

	m := &Manager{cfg: cfg, logger: logger}

	order := candidateOrder(cfg)
	gpu, kind, err := m.openFirst(order)
	if err != nil {
		return nil, err
	}
	m.primary = gpu
	m.primaryKind = kind
	return m, nil
}

// candidateOrder builds the candidate list: preferred (if any) ∪ the
// capability probe's default order, preferred first and without
// duplication. When a preferred backend is given and auto_fallback is
// false, the preferred backend is the only candidate: its failure
// must surface as BackendNotAvailable rather than silently trying
// another backend.
func candidateOrder(cfg Config) []driver.BackendKind {
	if !cfg.HasPreferred {
		return caps.DefaultOrder()
	}
	if !cfg.AutoFallback {
		return []driver.BackendKind{cfg.Preferred}
	}
	order := caps.DefaultOrder()
	out := make([]driver.BackendKind, 0, len(order)+1)
	out = append(out, cfg.Preferred)
	for _, k := range order {
		if k != cfg.Preferred {
			out = append(out, k)
		}
	}
	return out
}

// openFirst attempts each candidate in order, stopping at the first
// driver that both probes available and opens successfully.
func (m *Manager) openFirst(order []driver.BackendKind) (driver.GPU, driver.BackendKind, error) {
	var lastErr error
	for _, kind := range order {
		drv, ok := driver.ByKind(kind)
		if !ok || !drv.Probe() {
			continue
		}
		gpu, err := drv.Open(m.cfg.toOptions(m.logger))
		if err != nil {
			lastErr = err
			m.logger.Log(gerr.New(gerr.Warning, gerr.BackendNotAvailable, kind.String(), "manager",
				"candidate backend failed to open: %v", err))
			continue
		}
		return gpu, kind, nil
	}
	if lastErr == nil {
		lastErr = gerr.WrapKind("manager", gerr.BackendNotAvailable)
	}
	return nil, 0, lastErr
}

// Primary returns the currently active primary device.
func (m *Manager) Primary() driver.GPU { return m.primary }

// PrimaryKind returns the backend kind of the currently active
// primary device.
func (m *Manager) PrimaryKind() driver.BackendKind { return m.primaryKind }

// Logger returns the shared error logger every opened device reports
// through.
func (m *Manager) Logger() *gerr.Logger { return m.logger }

// SwitchBackend attempts a runtime switch to target (spec §4.2,
// "Runtime switch"). It is only valid when no command buffer owned by
// the current primary device is in the recording or pending state;
// the caller is responsible for that invariant, since the Manager has
// no visibility into command buffers it did not create itself.
//
// On success the old device's registry is fully torn down after the
// new device is live, and SwitchBackend returns true. On failure the
// old device remains primary, a warning is logged, and SwitchBackend
// returns false with the error that prevented the switch.
func (m *Manager) SwitchBackend(target driver.BackendKind) (bool, error) {
	drv, ok := driver.ByKind(target)
	if !ok || !drv.Probe() {
		err := gerr.WrapKind("manager", gerr.BackendNotAvailable)
		m.logger.Log(gerr.New(gerr.Warning, gerr.BackendNotAvailable, target.String(), "manager",
			"switch_backend: target backend unavailable"))
		return false, err
	}
	gpu, err := drv.Open(m.cfg.toOptions(m.logger))
	if err != nil {
		m.logger.Log(gerr.New(gerr.Warning, gerr.DeviceCreationFailed, target.String(), "manager",
			"switch_backend: %v", err))
		return false, err
	}

	old := m.primary
	m.primary = gpu
	m.primaryKind = target
	// A driver that was already primary returns the same GPU instance
	// per the Driver.Open contract (idempotent open); tearing it down
	// here would destroy the device we just made primary. Closing
	// through the owning Driver, not Deinit directly, lets that driver
	// be reopened later instead of forever returning a destroyed GPU.
	if old != nil && old != gpu {
		old.Driver().Close()
	}
	return true, nil
}

// RecreateSwapChain rebuilds sc in place against its existing window
// surface, used by the Adaptive Renderer's one-retry recovery policy
// when present() fails with SwapChainOutOfDate. It is carried from
// the teacher's Swapchain.Recreate.
func (m *Manager) RecreateSwapChain(sc driver.Swapchain) error {
	return sc.Recreate()
}

// Close tears down whichever devices the Manager owns. It closes the
// owning Driver rather than calling Deinit directly, so a driver that
// caches its GPU instance (every concrete backend does, per the
// Driver.Open contract) forgets it and is ready to be reopened by a
// later Manager.
func (m *Manager) Close() {
	if m.secondary != nil {
		m.secondary.Driver().Close()
		m.secondary = nil
	}
	if m.primary != nil {
		m.primary.Driver().Close()
		m.primary = nil
	}
}
