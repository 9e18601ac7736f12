// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Sampler is the Vulkan backend's driver.Sampler, a thin wrapper
// around a VkSampler.
type Sampler struct {
	gpu    *GPU
	handle vk.Sampler
}

func (s *Sampler) Destroy() {
	if s.handle != nil {
		vk.DestroySampler(s.gpu.dev, s.handle, nil)
	}
}

func newSampler(gpu *GPU, desc *driver.Sampling) (*Sampler, error) {
	info := &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vkFilter(desc.Mag),
		MinFilter:               vkFilter(desc.Min),
		MipmapMode:              vkMipmapMode(desc.Mipmap),
		AddressModeU:            vkAddrMode(desc.AddrU),
		AddressModeV:            vkAddrMode(desc.AddrV),
		AddressModeW:            vkAddrMode(desc.AddrW),
		AnisotropyEnable:        vkBool(desc.MaxAniso > 1),
		MaxAnisotropy:           float32(desc.MaxAniso),
		CompareEnable:           vkBool(desc.Cmp != driver.CmpNever),
		CompareOp:               vkCompareOp(desc.Cmp),
		MinLod:                  desc.MinLOD,
		MaxLod:                  desc.MaxLOD,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
	}
	var handle vk.Sampler
	if vk.CreateSampler(gpu.dev, info, nil, &handle) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &Sampler{gpu: gpu, handle: handle}, nil
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func vkFilter(f driver.Filter) vk.Filter {
	if f == driver.FilterLinear {
		return vk.FilterLinear
	}
	return vk.FilterNearest
}

func vkMipmapMode(f driver.Filter) vk.SamplerMipmapMode {
	if f == driver.FilterLinear {
		return vk.SamplerMipmapModeLinear
	}
	return vk.SamplerMipmapModeNearest
}

func vkAddrMode(m driver.AddrMode) vk.SamplerAddressMode {
	switch m {
	case driver.AddrMirror:
		return vk.SamplerAddressModeMirroredRepeat
	case driver.AddrClamp:
		return vk.SamplerAddressModeClampToEdge
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func vkCompareOp(c driver.CmpFunc) vk.CompareOp {
	switch c {
	case driver.CmpLess:
		return vk.CompareOpLess
	case driver.CmpEqual:
		return vk.CompareOpEqual
	case driver.CmpLessEqual:
		return vk.CompareOpLessOrEqual
	case driver.CmpGreater:
		return vk.CompareOpGreater
	case driver.CmpNotEqual:
		return vk.CompareOpNotEqual
	case driver.CmpGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	case driver.CmpAlways:
		return vk.CompareOpAlways
	default:
		return vk.CompareOpNever
	}
}
