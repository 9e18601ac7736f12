// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"io"
	"sync"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for Apple's Metal.
type Driver struct {
	mu  sync.Mutex
	gpu *GPU
}

func (d *Driver) Name() string { return "metal" }

func (d *Driver) Kind() driver.BackendKind { return driver.Metal }

// Probe creates and immediately releases a device and queue to
// verify Metal is available on the current host (Apple Silicon and
// Intel/AMD Macs with Metal support; unavailable in the iOS
// Simulator and on non-Darwin hosts, where this file is never even
// compiled).
func (d *Driver) Probe() bool {
	dev, queue, err := createDevice()
	if err != nil {
		return false
	}
	cfRelease(queue)
	cfRelease(dev)
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

	dev, queue, err := createDevice()
	if err != nil {
		return nil, driverErr(gerr.DeviceCreationFailed)
	}

	base := backend.NewBase("metal", driver.Metal, 256<<20, logger)
	d.gpu = newGPU(d, base, dev, queue)
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
