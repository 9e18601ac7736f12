// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package vulkan implements the graphics device contract on top of
// the Vulkan API via github.com/vulkan-go/vulkan, grounded on the
// instance/device/queue/swapchain split gviegas-neo3's driver/vk uses
// and on the asche package's call shape for that binding.
package vulkan

import (
	"fmt"
	"io"

	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

func init() {
	if err := vk.Init(); err == nil {
		driver.Register(&Driver{})
	}
}

// Driver implements driver.Driver for the Vulkan backend.
type Driver struct {
	inst   vk.Instance
	pdev   vk.PhysicalDevice
	dev    vk.Device
	queue  vk.Queue
	qfam   uint32

	gpu *GPU
}

func (d *Driver) Name() string { return "vulkan" }

func (d *Driver) Kind() driver.BackendKind { return driver.Vulkan }

// Probe creates and immediately discards a VkInstance to verify a
// loader and at least one suitable physical device are present,
// leaving no state behind (spec §4.1: "probing never creates a
// device").
func (d *Driver) Probe() bool {
	var inst vk.Instance
	info := &vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:      vk.StructureTypeApplicationInfo,
			ApiVersion: vk.ApiVersion11,
		},
	}
	if vk.CreateInstance(info, nil, &inst) != vk.Success {
		return false
	}
	defer vk.DestroyInstance(inst, nil)

	var n uint32
	if vk.EnumeratePhysicalDevices(inst, &n, nil) != vk.Success || n == 0 {
		return false
	}
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

	if err := d.initInstance(); err != nil {
		return nil, err
	}
	if err := d.initDevice(); err != nil {
		d.Close()
		return nil, err
	}

	base := backend.NewBase("vulkan", driver.Vulkan, 256<<20, logger)
	d.gpu = newGPU(d, base)
	return d.gpu, nil
}

func (d *Driver) initInstance() error {
	info := &vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:         vk.StructureTypeApplicationInfo,
			PApplicationName: "gbal\x00",
			ApiVersion:    vk.ApiVersion11,
		},
	}
	if res := vk.CreateInstance(info, nil, &d.inst); res != vk.Success {
		return fmt.Errorf("vulkan: vkCreateInstance failed: %v: %w", res, gerr.WrapKind("vulkan", gerr.InitializationFailed))
	}
	return nil
}

func (d *Driver) initDevice() error {
	var n uint32
	if vk.EnumeratePhysicalDevices(d.inst, &n, nil) != vk.Success || n == 0 {
		return gerr.WrapKind("vulkan", gerr.DeviceCreationFailed)
	}
	pdevs := make([]vk.PhysicalDevice, n)
	if vk.EnumeratePhysicalDevices(d.inst, &n, pdevs) != vk.Success {
		return gerr.WrapKind("vulkan", gerr.DeviceCreationFailed)
	}

	// Pick the first device exposing a combined graphics+compute
	// queue family, mirroring the teacher's weighting heuristic
	// without the full scoring pass: correctness over optimal choice.
	for _, pdev := range pdevs {
		var qn uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(pdev, &qn, nil)
		qprops := make([]vk.QueueFamilyProperties, qn)
		vk.GetPhysicalDeviceQueueFamilyProperties(pdev, &qn, qprops)
		for i, qp := range qprops {
			qp.Deref()
			flags := vk.QueueFlags(qp.QueueFlags)
			if flags&vk.QueueFlags(vk.QueueGraphicsBit|vk.QueueComputeBit) == vk.QueueFlags(vk.QueueGraphicsBit|vk.QueueComputeBit) {
				d.pdev = pdev
				d.qfam = uint32(i)
				break
			}
		}
		if d.pdev != nil {
			break
		}
	}
	if d.pdev == nil {
		return gerr.WrapKind("vulkan", gerr.DeviceCreationFailed)
	}

	prio := float32(1.0)
	devInfo := &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: d.qfam,
			QueueCount:       1,
			PQueuePriorities: []float32{prio},
		}},
	}
	if res := vk.CreateDevice(d.pdev, devInfo, nil, &d.dev); res != vk.Success {
		return fmt.Errorf("vulkan: vkCreateDevice failed: %v: %w", res, gerr.WrapKind("vulkan", gerr.DeviceCreationFailed))
	}
	var queue vk.Queue
	vk.GetDeviceQueue(d.dev, d.qfam, 0, &queue)
	d.queue = queue
	return nil
}

func (d *Driver) Close() {
	if d.gpu != nil {
		d.gpu.Deinit()
		d.gpu = nil
	}
	if d.dev != nil {
		vk.DeviceWaitIdle(d.dev)
		vk.DestroyDevice(d.dev, nil)
		d.dev = nil
	}
	if d.inst != nil {
		vk.DestroyInstance(d.inst, nil)
		d.inst = nil
	}
	d.pdev = nil
	d.queue = nil
}
