// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"sync"
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
#cgo LDFLAGS: -framework QuartzCore
@import QuartzCore;
#include <CoreFoundation/CoreFoundation.h>
#include <Metal/Metal.h>
#include <QuartzCore/CAMetalLayer.h>

static void layerConfigure(void *layerPtr, CFTypeRef devRef, MTLPixelFormat format, double w, double h) {
	@autoreleasepool {
		CAMetalLayer *layer = (__bridge CAMetalLayer *)layerPtr;
		layer.device = (__bridge id<MTLDevice>)devRef;
		layer.pixelFormat = format;
		layer.drawableSize = CGSizeMake(w, h);
		layer.framebufferOnly = YES;
	}
}

static CFTypeRef layerNextDrawable(void *layerPtr) {
	@autoreleasepool {
		CAMetalLayer *layer = (__bridge CAMetalLayer *)layerPtr;
		id<CAMetalDrawable> drawable = [layer nextDrawable];
		return CFBridgingRetain(drawable);
	}
}

static CFTypeRef drawableTexture(CFTypeRef drawableRef) {
	id<CAMetalDrawable> drawable = (__bridge id<CAMetalDrawable>)drawableRef;
	return (__bridge CFTypeRef)drawable.texture;
}

static void drawablePresent(CFTypeRef drawableRef) {
	@autoreleasepool {
		id<CAMetalDrawable> drawable = (__bridge id<CAMetalDrawable>)drawableRef;
		[drawable present];
	}
}
*/
import "C"

// Swapchain is the Metal backend's driver.Swapchain: a thin wrapper
// around a CAMetalLayer supplied by the window surface and the
// CAMetalDrawable it vends each frame. desc.Window must assert to an
// unsafe.Pointer referencing a live CAMetalLayer (the convention most
// Cocoa/UIKit window toolkits use when exposing their backing layer to
// a renderer); this backend never creates the layer itself, matching
// the platform-surface split the Vulkan backend makes for its own
// VkSurfaceKHR.
type Swapchain struct {
	gpu   *GPU
	layer unsafe.Pointer
	width, height int
	format driver.PixelFmt

	mu       sync.Mutex
	state    driver.SCState
	drawable C.CFTypeRef
}

func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	layer, ok := desc.Window.(unsafe.Pointer)
	if !ok || layer == nil {
		return nil, driverErr(gerr.BackendNotSupported)
	}
	sc := &Swapchain{gpu: g, layer: layer, width: desc.Width, height: desc.Height, format: desc.Format}
	C.layerConfigure(layer, g.dev, mtlPixelFormat(desc.Format), C.double(desc.Width), C.double(desc.Height))
	sc.state = driver.SCReady
	return sc, nil
}

func (s *Swapchain) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawable != 0 {
		cfRelease(s.drawable)
		s.drawable = 0
	}
	s.state = driver.SCDestroyed
}

func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawable != 0 {
		cfRelease(s.drawable)
		s.drawable = 0
	}
	drawable := C.layerNextDrawable(s.layer)
	if drawable == 0 {
		s.state = driver.SCOutOfDate
		return nil, driverErr(gerr.SwapChainOutOfDate)
	}
	s.drawable = drawable
	tex := C.drawableTexture(drawable)
	return &Texture{
		gpu:    s.gpu,
		handle: tex,
		desc: driver.TextureDesc{
			Dim3D:  driver.Dim3D{Width: s.width, Height: s.height, Depth: 1},
			Format: s.format,
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
	if s.drawable == 0 {
		return driverErr(gerr.InvalidOperation)
	}
	C.drawablePresent(s.drawable)
	cfRelease(s.drawable)
	s.drawable = 0
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	C.layerConfigure(s.layer, s.gpu.dev, mtlPixelFormat(s.format), C.double(width), C.double(height))
	s.state = driver.SCReady
	return nil
}

func (s *Swapchain) Recreate() error {
	return s.Resize(s.width, s.height)
}

func (s *Swapchain) State() driver.SCState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
