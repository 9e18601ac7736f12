// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	"sync"

	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// Swapchain is the Vulkan backend's driver.Swapchain, grounded on the
// asche package's prepareSwapchain/acquire/present call shape.
// Surface creation is platform-specific (xcb/win32/wayland) and is
// expected to have already produced desc.Window's vk.SurfaceKHR
// before NewSwapchain is called; this backend does not instantiate a
// platform surface itself.
type Swapchain struct {
	gpu     *GPU
	surface vk.Surface
	handle  vk.Swapchain
	format  vk.Format
	extent  vk.Extent2D
	images  []vk.Image
	views   []vk.ImageView

	mu    sync.Mutex
	state driver.SCState
	cur   uint32
}

func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	surface, ok := desc.Window.(vk.Surface)
	if !ok {
		return nil, driverErr(gerr.BackendNotSupported)
	}
	sc := &Swapchain{gpu: g, surface: surface, format: vkFormat(desc.Format),
		extent: vk.Extent2D{Width: uint32(desc.Width), Height: uint32(desc.Height)}}
	if err := sc.build(desc.BufferCount, desc.VSync); err != nil {
		return nil, err
	}
	sc.state = driver.SCReady
	return sc, nil
}

func (s *Swapchain) build(bufferCount int, vsync bool) error {
	presentMode := vk.PresentModeFifo
	if !vsync {
		presentMode = vk.PresentModeImmediate
	}
	info := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.surface,
		MinImageCount:    uint32(bufferCount),
		ImageFormat:      s.format,
		ImageExtent:      s.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}
	var handle vk.Swapchain
	if vk.CreateSwapchain(s.gpu.dev, info, nil, &handle) != vk.Success {
		return driverErr(gerr.SwapChainCreationFailed)
	}
	s.handle = handle

	var n uint32
	vk.GetSwapchainImages(s.gpu.dev, handle, &n, nil)
	s.images = make([]vk.Image, n)
	vk.GetSwapchainImages(s.gpu.dev, handle, &n, s.images)

	s.views = make([]vk.ImageView, n)
	for i, img := range s.images {
		viewInfo := &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   s.format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		vk.CreateImageView(s.gpu.dev, viewInfo, nil, &s.views[i])
	}
	return nil
}

func (s *Swapchain) teardown() {
	for _, v := range s.views {
		if v != nil {
			vk.DestroyImageView(s.gpu.dev, v, nil)
		}
	}
	s.views = nil
	s.images = nil
	if s.handle != nil {
		vk.DestroySwapchain(s.gpu.dev, s.handle, nil)
		s.handle = nil
	}
}

func (s *Swapchain) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown()
	s.state = driver.SCDestroyed
}

func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var idx uint32
	res := vk.AcquireNextImage(s.gpu.dev, s.handle, ^uint64(0), nil, nil, &idx)
	if res == vk.ErrorOutOfDate {
		s.state = driver.SCOutOfDate
		return nil, driverErr(gerr.SwapChainOutOfDate)
	}
	if res != vk.Success && res != vk.Suboptimal {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}
	s.cur = idx
	return &Texture{
		gpu:    s.gpu,
		handle: s.images[idx],
		desc: driver.TextureDesc{
			Dim3D:  driver.Dim3D{Width: int(s.extent.Width), Height: int(s.extent.Height), Depth: 1},
			Format: driver.BGRA8Unorm,
			Layers: 1,
			Levels: 1,
			Usage:  driver.URenderTarget,
		},
		owned: false,
	}, nil
}

func (s *Swapchain) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := &vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{s.handle},
		PImageIndices:  []uint32{s.cur},
	}
	if vk.QueuePresent(s.gpu.queue, info) != vk.Success {
		return driverErr(gerr.SwapChainCreationFailed)
	}
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bufferCount := len(s.images)
	s.extent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	s.teardown()
	if err := s.build(bufferCount, true); err != nil {
		return err
	}
	s.state = driver.SCReady
	return nil
}

func (s *Swapchain) Recreate() error {
	return s.Resize(int(s.extent.Width), int(s.extent.Height))
}

func (s *Swapchain) State() driver.SCState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
