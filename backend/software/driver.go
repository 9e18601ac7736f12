// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package software implements the software fallback backend: a
// pure-CPU rasterizer stub that honours the full device contract
// and produces deterministic placeholder output. It never fails to
// initialize and requires no native GPU API, making it the final
// entry in the capability probe's fallback order (spec §4.5).
package software

import (
	"io"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for the software backend.
type Driver struct {
	gpu *GPU
}

// Name returns "software".
func (d *Driver) Name() string { return "software" }

// Kind returns driver.Software.
func (d *Driver) Kind() driver.BackendKind { return driver.Software }

// Probe always reports true: the software backend requires no
// native API and runs on any host.
func (d *Driver) Probe() bool { return true }

// Open creates the software GPU. It never fails.
func (d *Driver) Open(opts *driver.Options) (driver.GPU, error) {
	if d.gpu != nil {
		return d.gpu, nil
	}
	var logger *gerr.Logger
	var debugMode bool
	if opts != nil {
		logger = opts.Logger
		debugMode = opts.DebugMode
	}
	if logger == nil {
		logger = gerr.NewLogger(io.Discard, gerr.DefaultRingSize, debugMode)
	}
	base := backend.NewBase("software", driver.Software, 64<<20, logger)
	d.gpu = newGPU(d, base)
	return d.gpu, nil
}

// Close tears down the device, if one is open.
func (d *Driver) Close() {
	if d.gpu != nil {
		d.gpu.Deinit()
		d.gpu = nil
	}
}
