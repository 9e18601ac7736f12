// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

type _IDXGIFactory4Vtbl struct {
	_IUnknownVtbl
	_               uintptr // SetPrivateData
	_               uintptr // SetPrivateDataInterface
	_               uintptr // GetPrivateData
	_               uintptr // GetParent
	_               uintptr // EnumAdapters
	_               uintptr // MakeWindowAssociation
	_               uintptr // GetWindowAssociation
	CreateSwapChain uintptr
}

type _IDXGIFactory4 struct{ vtbl *_IDXGIFactory4Vtbl }

func (f *_IDXGIFactory4) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(f), fn, args...)
}
func (f *_IDXGIFactory4) Release() { comRelease(unsafe.Pointer(f), f.vtbl.Release) }

type _IDXGISwapChainVtbl struct {
	_IUnknownVtbl
	_             uintptr // SetPrivateData
	_             uintptr // SetPrivateDataInterface
	_             uintptr // GetPrivateData
	_             uintptr // GetParent
	_             uintptr // GetDevice
	Present       uintptr
	GetBuffer     uintptr
	_             uintptr // SetFullscreenState
	_             uintptr // GetFullscreenState
	_             uintptr // GetDesc
	ResizeBuffers uintptr
}

type _IDXGISwapChain struct{ vtbl *_IDXGISwapChainVtbl }

func (s *_IDXGISwapChain) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(s), fn, args...)
}
func (s *_IDXGISwapChain) Release() { comRelease(unsafe.Pointer(s), s.vtbl.Release) }

// Swapchain is the D3D12 backend's driver.Swapchain. D3D12 swap chains
// are created against the command queue rather than the device, a
// DXGI rule this NewSwapchain follows by passing g.queue, not g.dev,
// to CreateSwapChain.
type Swapchain struct {
	gpu     *GPU
	hwnd    uintptr
	swchain *_IDXGISwapChain

	state  driver.SCState
	width  int
	height int
	back   *Texture
}

// NewSwapchain requires desc.Window to be the raw Win32 HWND of the
// target window, as a uintptr, the same convention the d3d11 backend
// uses.
func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	hwnd, ok := desc.Window.(uintptr)
	if !ok || hwnd == 0 {
		g.LogError(gerr.Error, gerr.ValidationError, "NewSwapchain requires desc.Window to be a raw HWND uintptr")
		return nil, driverErr(gerr.ValidationError)
	}

	var factoryPtr *_IDXGIFactory4
	ret, _, _ := procCreateFactory.Call(0, uintptr(unsafe.Pointer(&iidIDXGIFactory4)), uintptr(unsafe.Pointer(&factoryPtr)))
	if ret != 0 || factoryPtr == nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}

	scDesc := struct {
		BufferDescWidth, BufferDescHeight uint32
		RefreshNum, RefreshDenom          uint32
		Format                            uint32
		ScanlineOrdering, Scaling         uint32
		SampleCount, SampleQuality        uint32
		BufferUsage                       uint32
		BufferCount                       uint32
		OutputWindow                      uintptr
		Windowed                          int32
		SwapEffect                        uint32
		Flags                             uint32
	}{
		BufferDescWidth:  uint32(desc.Width),
		BufferDescHeight: uint32(desc.Height),
		Format:           fmtB8G8R8A8Unorm,
		SampleCount:      1,
		BufferUsage:      usageRenderTargetOut,
		BufferCount:      uint32(maxInt(desc.BufferCount, 2)),
		OutputWindow:     hwnd,
		Windowed:         1,
		SwapEffect:       swapEffectFlipDiscard,
	}
	var swchain *_IDXGISwapChain
	hr := factoryPtr.call(factoryPtr.vtbl.CreateSwapChain, uintptr(unsafe.Pointer(g.queue)), uintptr(unsafe.Pointer(&scDesc)), uintptr(unsafe.Pointer(&swchain)))
	factoryPtr.Release()
	if hr != 0 || swchain == nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}

	sc := &Swapchain{gpu: g, hwnd: hwnd, swchain: swchain, state: driver.SCReady, width: desc.Width, height: desc.Height}
	if err := sc.acquireBackbuffer(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Swapchain) acquireBackbuffer() error {
	var tex *_ID3D12Resource
	hr := s.swchain.call(s.swchain.vtbl.GetBuffer, 0, uintptr(unsafe.Pointer(&iidID3D12Resource)), uintptr(unsafe.Pointer(&tex)))
	if hr != 0 || tex == nil {
		return driverErr(gerr.SwapChainCreationFailed)
	}
	s.back = &Texture{
		gpu: s.gpu, handle: tex, owned: true, state: resourceStatePresent,
		desc: driver.TextureDesc{
			Dim3D:  driver.Dim3D{Width: s.width, Height: s.height, Depth: 1},
			Format: driver.BGRA8Unorm, Layers: 1, Levels: 1, Samples: 1,
			Usage: driver.URenderTarget,
		},
	}
	return nil
}

func (s *Swapchain) Destroy() {
	if s.back != nil {
		s.back.Destroy()
		s.back = nil
	}
	if s.swchain != nil {
		s.swchain.Release()
		s.swchain = nil
	}
	s.state = driver.SCDestroyed
}

func (s *Swapchain) State() driver.SCState { return s.state }

func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	if s.state != driver.SCReady {
		return nil, driverErr(gerr.SwapChainOutOfDate)
	}
	if s.back == nil {
		return nil, driverErr(gerr.InvalidResource)
	}
	return s.back, nil
}

func (s *Swapchain) Present() error {
	if s.state != driver.SCReady {
		return driverErr(gerr.SwapChainOutOfDate)
	}
	s.swchain.call(s.swchain.vtbl.Present, 1, 0)
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	if s.back != nil {
		s.back.Destroy()
		s.back = nil
	}
	s.swchain.call(s.swchain.vtbl.ResizeBuffers, 0, uintptr(width), uintptr(height), 0, 0)
	s.width, s.height = width, height
	return s.acquireBackbuffer()
}

func (s *Swapchain) Recreate() error {
	return s.Resize(s.width, s.height)
}
