// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
)

// Buffer is the Vulkan backend's driver.Buffer: a VkBuffer bound to
// memory of the kind its descriptor asks for. Host-visible buffers
// are mapped once at creation and stay mapped until Destroy, so
// Bytes() can hand back a live view without a separate map call;
// device-local buffers are never mapped and Bytes() returns nil.
type Buffer struct {
	gpu    *GPU
	handle vk.Buffer
	mem    vk.DeviceMemory
	size   int64
	usage  driver.Usage
	data   []byte
}

func (b *Buffer) Destroy() {
	if b.gpu == nil {
		return
	}
	dev := b.gpu.dev
	if len(b.data) > 0 {
		vk.UnmapMemory(dev, b.mem)
	}
	if b.handle != nil {
		vk.DestroyBuffer(dev, b.handle, nil)
	}
	if b.mem != nil {
		vk.FreeMemory(dev, b.mem, nil)
	}
}

func (b *Buffer) Visible() bool { return b.data != nil }

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Size() int64 { return b.size }

func (b *Buffer) Usage() driver.Usage { return b.usage }

func vkBufferUsage(u driver.Usage) vk.BufferUsageFlagBits {
	var flags vk.BufferUsageFlags
	if u&driver.UVertexData != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if u&driver.UIndexData != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if u&driver.UUniform != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	if u&driver.UTransferSrc != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit)
	}
	if u&driver.UTransferDst != 0 {
		flags |= vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	}
	if flags == 0 {
		flags = vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
	}
	return vk.BufferUsageFlagBits(flags)
}
