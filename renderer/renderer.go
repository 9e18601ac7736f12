// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package renderer implements the Adaptive Renderer (C13): it pushes
// a per-frame payload through whichever backend the Manager currently
// holds as primary, and recovers once from a lost device or an
// out-of-date swap chain before surfacing the failure.
package renderer

import (
	"fmt"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/manager"
)

// Payload is the backend-neutral draw closure a caller supplies to
// Render. It receives the active device and a command buffer already
// in the recording state (and, when the Renderer has a render pass,
// between BeginPass and EndPass), and must not call
// Begin/End/BeginPass/EndPass itself.
type Payload func(dev driver.GPU, cb driver.CmdBuffer)

// Renderer owns a reference to the Manager and drives one render loop
// iteration at a time. It never names a concrete backend; every
// operation goes through the Manager's current primary device.
type Renderer struct {
	mgr  *manager.Manager
	pass driver.RenderPass
	sc   driver.Swapchain
}

// New builds a Renderer bound to mgr, recording into pass and
// presenting through sc. Either may be nil for an offscreen caller
// that never presents.
func New(mgr *manager.Manager, pass driver.RenderPass, sc driver.Swapchain) *Renderer {
	return &Renderer{mgr: mgr, pass: pass, sc: sc}
}

// SetSwapchain rebinds the swap chain the Renderer presents to, used
// after the Manager recreates or replaces one.
func (r *Renderer) SetSwapchain(sc driver.Swapchain) { r.sc = sc }

// Render drives one frame: acquire a command buffer, begin recording,
// invoke payload (inside a begin/end render pass pair when a pass is
// bound), submit, and
// present. On DeviceLost or SwapChainOutOfDate it asks the Manager to
// recover (recreate the swap chain, or fall back to the software
// backend) and retries the frame exactly once; a second failure in
// the same frame is returned to the caller.
func (r *Renderer) Render(payload Payload) error {
	err := r.renderOnce(payload)
	if err == nil {
		return nil
	}
	kind, ok := gerr.KindOf(err)
	if !ok || (kind != gerr.DeviceLost && kind != gerr.SwapChainOutOfDate) {
		return err
	}
	if recErr := r.recover(kind); recErr != nil {
		return fmt.Errorf("renderer: recovery failed after %w: %v", err, recErr)
	}
	return r.renderOnce(payload)
}

func (r *Renderer) recover(kind gerr.Kind) error {
	switch kind {
	case gerr.SwapChainOutOfDate:
		if r.sc == nil {
			return fmt.Errorf("renderer: swap chain out of date with no swap chain bound")
		}
		return r.mgr.RecreateSwapChain(r.sc)
	case gerr.DeviceLost:
		ok, err := r.mgr.SwitchBackend(driver.Software)
		if !ok {
			return err
		}
		return nil
	default:
		return nil
	}
}

func (r *Renderer) renderOnce(payload Payload) error {
	if r.mgr == nil {
		return fmt.Errorf("renderer: no manager bound")
	}
	dev := r.mgr.Primary()
	if dev == nil {
		return fmt.Errorf("renderer: no primary device")
	}

	cb, err := dev.NewCmdBuffer()
	if err != nil {
		return err
	}
	if err := cb.Begin(); err != nil {
		return err
	}

	if r.pass != nil {
		if err := cb.BeginPass(r.pass, nil, nil); err != nil {
			return err
		}
	}

	payload(dev, cb)

	if r.pass != nil {
		if err := cb.EndPass(); err != nil {
			return err
		}
	}

	if err := cb.End(); err != nil {
		return err
	}

	done := make(chan error, 1)
	dev.Commit([]driver.CmdBuffer{cb}, done)
	if err := <-done; err != nil {
		return err
	}

	if r.sc != nil {
		if _, err := r.sc.NextBackbuffer(); err != nil {
			return err
		}
		if err := r.sc.Present(); err != nil {
			return err
		}
	}
	return nil
}
