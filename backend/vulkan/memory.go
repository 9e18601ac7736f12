// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import vk "github.com/vulkan-go/vulkan"

// selectMemoryType finds a memory type index satisfying both
// typeBits (the resource's VkMemoryRequirements.memoryTypeBits) and
// the requested property flags, mirroring gviegas-neo3's
// Driver.selectMemory without carrying its heap-usage bookkeeping.
func selectMemoryType(pdev vk.PhysicalDevice, typeBits uint32, props vk.MemoryPropertyFlags) (uint32, bool) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pdev, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		memProps.MemoryTypes[i].Deref()
		if memProps.MemoryTypes[i].PropertyFlags&props == props {
			return i, true
		}
	}
	return 0, false
}

// allocate binds size bytes of memory satisfying typeBits/props and
// returns the allocation, bound to nothing yet.
func allocate(dev vk.Device, pdev vk.PhysicalDevice, size vk.DeviceSize, typeBits uint32, props vk.MemoryPropertyFlags) (vk.DeviceMemory, bool) {
	typ, ok := selectMemoryType(pdev, typeBits, props)
	if !ok {
		return nil, false
	}
	info := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  size,
		MemoryTypeIndex: typ,
	}
	var mem vk.DeviceMemory
	if vk.AllocateMemory(dev, info, nil, &mem) != vk.Success {
		return nil, false
	}
	return mem, true
}
