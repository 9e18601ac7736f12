// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

// Package d3d11 implements the graphics device contract on top of
// Direct3D 11 via direct COM vtable calls, grounded on the corpus's
// own cgo-free Windows D3D11 backend (gioui's internal/d3d11), which
// drives D3D11CreateDevice and its interfaces the same way: no
// windows/com helper library, just syscall.Syscall through each
// interface's vtable pointer.
package d3d11

import (
	"fmt"
	"io"
	"sync"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for Direct3D 11.
type Driver struct {
	mu  sync.Mutex
	gpu *GPU
}

func (d *Driver) Name() string { return "d3d11" }

func (d *Driver) Kind() driver.BackendKind { return driver.D3D11 }

// Probe creates and immediately releases a device to verify a
// compatible driver and runtime are installed.
func (d *Driver) Probe() bool {
	dev, ctx, _, err := createDevice(false)
	if err != nil {
		return false
	}
	ctx.Release()
	dev.Release()
	return true
}

func (d *Driver) Open(opts *driver.Options) (driver.GPU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
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

	dev, ctx, featLvl, err := createDevice(debugMode)
	if err != nil {
		return nil, fmt.Errorf("d3d11: %w", gerr.WrapKind("d3d11", gerr.DeviceCreationFailed))
	}
	if featLvl < featureLevel10_0 {
		ctx.Release()
		dev.Release()
		return nil, fmt.Errorf("d3d11: feature level %#x too low: %w", featLvl, gerr.WrapKind("d3d11", gerr.DeviceCreationFailed))
	}

	base := backend.NewBase("d3d11", driver.D3D11, 256<<20, logger)
	d.gpu = newGPU(d, base, dev, ctx, featLvl)
	return d.gpu, nil
}

func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu != nil {
		d.gpu.Deinit()
		d.gpu = nil
	}
}

