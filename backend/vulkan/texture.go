// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Texture is the Vulkan backend's driver.Texture, backed by a
// VkImage with device-local memory.
type Texture struct {
	gpu    *GPU
	handle vk.Image
	mem    vk.DeviceMemory
	desc   driver.TextureDesc
	owned  bool // false for swap-chain-provided images, which the chain owns
}

func (t *Texture) Destroy() {
	if t.gpu == nil || !t.owned {
		return
	}
	dev := t.gpu.dev
	if t.handle != nil {
		vk.DestroyImage(dev, t.handle, nil)
	}
	if t.mem != nil {
		vk.FreeMemory(dev, t.mem, nil)
	}
}

func (t *Texture) Dim() driver.Dim3D { return t.desc.Dim3D }

func (t *Texture) Format() driver.PixelFmt { return t.desc.Format }

func (t *Texture) Layers() int { return t.desc.Layers }

func (t *Texture) Levels() int { return t.desc.Levels }

func (t *Texture) Samples() int { return t.desc.Samples }

func (t *Texture) Usage() driver.Usage { return t.desc.Usage }

func (t *Texture) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.TextureView, error) {
	info := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    t.handle,
		ViewType: vkViewType(typ),
		Format:   vkFormat(t.desc.Format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vkAspect(t.desc.Format),
			BaseMipLevel:   uint32(level),
			LevelCount:     uint32(levels),
			BaseArrayLayer: uint32(layer),
			LayerCount:     uint32(layers),
		},
	}
	var view vk.ImageView
	if vk.CreateImageView(t.gpu.dev, info, nil, &view) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &TextureView{gpu: t.gpu, handle: view, owner: t, typ: typ}, nil
}

// TextureView is the Vulkan backend's driver.TextureView.
type TextureView struct {
	gpu    *GPU
	handle vk.ImageView
	owner  *Texture
	typ    driver.ViewType
}

func (v *TextureView) Destroy() {
	if v.handle != nil {
		vk.DestroyImageView(v.gpu.dev, v.handle, nil)
	}
}

func vkFormat(f driver.PixelFmt) vk.Format {
	switch f {
	case driver.RGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case driver.BGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case driver.RGB8Unorm:
		return vk.FormatR8g8b8Unorm
	case driver.RG8Unorm:
		return vk.FormatR8g8Unorm
	case driver.R8Unorm:
		return vk.FormatR8Unorm
	case driver.Depth24Stencil8:
		return vk.FormatD24UnormS8Uint
	case driver.Depth32Float:
		return vk.FormatD32Sfloat
	default:
		return vk.FormatUndefined
	}
}

func vkAspect(f driver.PixelFmt) vk.ImageAspectFlags {
	if driver.IsDepthFormat(f) {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func vkViewType(t driver.ViewType) vk.ImageViewType {
	switch t {
	case driver.View1D:
		return vk.ImageViewType1d
	case driver.View2D:
		return vk.ImageViewType2d
	case driver.View3D:
		return vk.ImageViewType3d
	case driver.ViewCube:
		return vk.ImageViewTypeCube
	case driver.View1DArray:
		return vk.ImageViewType1dArray
	case driver.View2DArray:
		return vk.ImageViewType2dArray
	default:
		return vk.ImageViewType2d
	}
}

func vkImageUsage(u driver.Usage) vk.ImageUsageFlagBits {
	var flags vk.ImageUsageFlags
	if u&driver.URenderTarget != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	if u&driver.UDepthStencil != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	}
	if u&driver.USampled != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	if u&driver.UTransferSrc != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit)
	}
	if u&driver.UTransferDst != 0 {
		flags |= vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	}
	if flags == 0 {
		flags = vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	return vk.ImageUsageFlagBits(flags)
}
