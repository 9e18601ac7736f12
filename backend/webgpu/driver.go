// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package webgpu implements the graphics device contract on top of
// WebGPU via github.com/cogentcore/webgpu/wgpu, a zero-cgo binding to
// wgpu-native. Device setup follows the instance/adapter/device/queue
// sequence the binding's own documentation lays out, the same shape
// the teacher's Vulkan backend uses for instance/physical-device/
// device/queue.
package webgpu

import (
	"fmt"
	"io"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for WebGPU.
type Driver struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	gpu *GPU
}

func (d *Driver) Name() string { return "webgpu" }

func (d *Driver) Kind() driver.BackendKind { return driver.WebGPU }

// Probe requests an instance and adapter and immediately releases
// them, verifying a wgpu-native library and at least one adapter are
// available without creating a device.
func (d *Driver) Probe() bool {
	inst, err := wgpu.CreateInstance(nil)
	if err != nil || inst == nil {
		return false
	}
	defer inst.Release()
	adapter, err := inst.RequestAdapter(nil)
	if err != nil || adapter == nil {
		return false
	}
	adapter.Release()
	return true
}

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

	inst, err := wgpu.CreateInstance(nil)
	if err != nil || inst == nil {
		return nil, fmt.Errorf("webgpu: CreateInstance failed: %w", gerr.WrapKind("webgpu", gerr.InitializationFailed))
	}
	adapter, err := inst.RequestAdapter(nil)
	if err != nil || adapter == nil {
		inst.Release()
		return nil, fmt.Errorf("webgpu: RequestAdapter failed: %w", gerr.WrapKind("webgpu", gerr.DeviceCreationFailed))
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil || device == nil {
		adapter.Release()
		inst.Release()
		return nil, fmt.Errorf("webgpu: RequestDevice failed: %w", gerr.WrapKind("webgpu", gerr.DeviceCreationFailed))
	}
	queue := device.GetQueue()

	d.instance, d.adapter, d.device, d.queue = inst, adapter, device, queue

	base := backend.NewBase("webgpu", driver.WebGPU, 256<<20, logger)
	d.gpu = newGPU(d, base, device, queue)
	return d.gpu, nil
}

func (d *Driver) Close() {
	if d.gpu != nil {
		d.gpu.Deinit()
		d.gpu = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
