// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

// Package d3d12 implements the graphics device contract on top of
// Direct3D 12 via direct COM vtable calls, extending the cgo-free
// technique the corpus's Windows D3D11 backend (gioui's internal/d3d11)
// uses to the command-list/descriptor-heap/fence model D3D12 replaces
// D3D11's immediate context with: a command queue submits closed
// command lists and a fence reports their completion back to the CPU.
package d3d12

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

// Driver implements driver.Driver for Direct3D 12.
type Driver struct {
	mu  sync.Mutex
	gpu *GPU
}

func (d *Driver) Name() string { return "d3d12" }

func (d *Driver) Kind() driver.BackendKind { return driver.D3D12 }

// Probe creates and immediately releases a device to verify a
// compatible driver and runtime are installed.
func (d *Driver) Probe() bool {
	dev, err := createDevice()
	if err != nil {
		return false
	}
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

	dev, err := createDevice()
	if err != nil {
		return nil, fmt.Errorf("d3d12: %w", gerr.WrapKind("d3d12", gerr.DeviceCreationFailed))
	}
	queue, err := createCommandQueue(dev)
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("d3d12: %w", gerr.WrapKind("d3d12", gerr.DeviceCreationFailed))
	}
	fence, err := createFence(dev)
	if err != nil {
		queue.Release()
		dev.Release()
		return nil, fmt.Errorf("d3d12: %w", gerr.WrapKind("d3d12", gerr.DeviceCreationFailed))
	}

	base := backend.NewBase("d3d12", driver.D3D12, 256<<20, logger)
	d.gpu = newGPU(d, base, dev, queue, fence)
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
