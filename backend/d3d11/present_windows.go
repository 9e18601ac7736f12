// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

type _IDXGIDeviceVtbl struct {
	_IUnknownVtbl
	_          uintptr // GetParent (IDXGIObject)
	_          uintptr // GetPrivateData
	_          uintptr // SetPrivateData
	_          uintptr // SetPrivateDataInterface
	GetAdapter uintptr
}

type _IDXGIDevice struct{ vtbl *_IDXGIDeviceVtbl }

type _IDXGIObjectVtbl struct {
	_IUnknownVtbl
	_         uintptr // SetPrivateData
	_         uintptr // SetPrivateDataInterface
	_         uintptr // GetPrivateData
	GetParent uintptr
}

type _IDXGIAdapter struct{ vtbl *_IDXGIObjectVtbl }

type _IDXGIFactoryVtbl struct {
	_IUnknownVtbl
	_               uintptr // SetPrivateData
	_               uintptr // SetPrivateDataInterface
	_               uintptr // GetPrivateData
	_               uintptr // GetParent (IDXGIObject is a base type; factory's own slots follow)
	_               uintptr // EnumAdapters
	_               uintptr // MakeWindowAssociation
	_               uintptr // GetWindowAssociation
	CreateSwapChain uintptr
}

type _IDXGIFactory struct{ vtbl *_IDXGIFactoryVtbl }

type _IDXGISwapChainVtbl struct {
	_IUnknownVtbl
	_              uintptr // SetPrivateData
	_              uintptr // SetPrivateDataInterface
	_              uintptr // GetPrivateData
	_              uintptr // GetParent
	_              uintptr // GetDevice
	Present        uintptr
	GetBuffer      uintptr
	_              uintptr // SetFullscreenState
	_              uintptr // GetFullscreenState
	_              uintptr // GetDesc
	ResizeBuffers  uintptr
}

type _IDXGISwapChain struct{ vtbl *_IDXGISwapChainVtbl }

func (d *_IDXGIDevice) call(fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(unsafe.Pointer(d))}, args...)
	return callN(fn, full)
}

func (a *_IDXGIAdapter) call(fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(unsafe.Pointer(a))}, args...)
	return callN(fn, full)
}

func (f *_IDXGIFactory) call(fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(unsafe.Pointer(f))}, args...)
	return callN(fn, full)
}

func (s *_IDXGISwapChain) call(fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(unsafe.Pointer(s))}, args...)
	return callN(fn, full)
}

// Swapchain is the D3D11 backend's driver.Swapchain, an IDXGISwapChain
// obtained through the device -> IDXGIDevice -> IDXGIAdapter ->
// IDXGIFactory chain, grounded on the corpus's own D3D11
// CreateSwapChain path (internal/d3d11/backend_windows.go).
type Swapchain struct {
	gpu     *GPU
	hwnd    uintptr
	swchain *_IDXGISwapChain

	mu     sync.Mutex
	state  driver.SCState
	width  int
	height int
	back   *Texture
}

// NewSwapchain requires desc.Window to be the raw Win32 HWND of the
// target window, as a uintptr.
func (g *GPU) NewSwapchain(desc *driver.SwapchainDesc) (driver.Swapchain, error) {
	hwnd, ok := desc.Window.(uintptr)
	if !ok || hwnd == 0 {
		g.LogError(gerr.Error, gerr.ValidationError, "NewSwapchain requires desc.Window to be a raw HWND uintptr")
		return nil, driverErr(gerr.ValidationError)
	}

	dxgiDevPtr, err := comQueryInterface(unsafe.Pointer(g.dev), g.dev.vtbl.QueryInterface, &iidIDXGIDevice)
	if err != nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}
	dxgiDev := (*_IDXGIDevice)(dxgiDevPtr)
	var adapter *_IDXGIAdapter
	dxgiDev.call(dxgiDev.vtbl.GetAdapter, uintptr(unsafe.Pointer(&adapter)))
	comObjRelease(unsafe.Pointer(dxgiDev), &dxgiDev.vtbl._IUnknownVtbl)
	if adapter == nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}

	var dxgiFactoryPtr unsafe.Pointer
	adapter.call(adapter.vtbl.GetParent, uintptr(unsafe.Pointer(&iidIDXGIFactory)), uintptr(unsafe.Pointer(&dxgiFactoryPtr)))
	comObjRelease(unsafe.Pointer(adapter), &adapter.vtbl._IUnknownVtbl)
	if dxgiFactoryPtr == nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}
	factory := (*_IDXGIFactory)(dxgiFactoryPtr)

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
		BufferUsage:      usageRenderTargetOutput,
		BufferCount:      uint32(maxInt(desc.BufferCount, 1)),
		OutputWindow:     hwnd,
		Windowed:         1,
		SwapEffect:       swapEffectDiscard,
	}
	var swchain *_IDXGISwapChain
	hr := factory.call(factory.vtbl.CreateSwapChain, uintptr(unsafe.Pointer(g.dev)), uintptr(unsafe.Pointer(&scDesc)), uintptr(unsafe.Pointer(&swchain)))
	comObjRelease(unsafe.Pointer(factory), &factory.vtbl._IUnknownVtbl)
	if hr != 0 || swchain == nil {
		return nil, driverErr(gerr.SwapChainCreationFailed)
	}

	sc := &Swapchain{
		gpu: g, hwnd: hwnd, swchain: swchain,
		state: driver.SCReady, width: desc.Width, height: desc.Height,
	}
	if err := sc.acquireBackbuffer(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Swapchain) acquireBackbuffer() error {
	var tex *_ID3D11Texture2D
	hr := s.swchain.call(s.swchain.vtbl.GetBuffer, 0, uintptr(unsafe.Pointer(&iidID3D11Texture2D)), uintptr(unsafe.Pointer(&tex)))
	if hr != 0 || tex == nil {
		return driverErr(gerr.SwapChainCreationFailed)
	}
	s.back = &Texture{
		gpu: s.gpu, handle: tex,
		desc: driver.TextureDesc{
			Dim3D:  driver.Dim3D{Width: s.width, Height: s.height, Depth: 1},
			Format: driver.BGRA8Unorm, Layers: 1, Levels: 1, Samples: 1,
			Usage: driver.URenderTarget,
		},
	}
	return nil
}

func (s *Swapchain) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back != nil {
		s.back.Destroy()
		s.back = nil
	}
	if s.swchain != nil {
		comObjRelease(unsafe.Pointer(s.swchain), &s.swchain.vtbl._IUnknownVtbl)
		s.swchain = nil
	}
	s.state = driver.SCDestroyed
}

func (s *Swapchain) State() driver.SCState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Swapchain) NextBackbuffer() (driver.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != driver.SCReady {
		return nil, driverErr(gerr.SwapChainOutOfDate)
	}
	if s.back == nil {
		return nil, driverErr(gerr.InvalidResource)
	}
	return s.back, nil
}

func (s *Swapchain) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != driver.SCReady {
		return driverErr(gerr.SwapChainOutOfDate)
	}
	s.swchain.call(s.swchain.vtbl.Present, 1, 0)
	return nil
}

func (s *Swapchain) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back != nil {
		s.back.Destroy()
		s.back = nil
	}
	s.swchain.call(s.swchain.vtbl.ResizeBuffers, 0, uintptr(width), uintptr(height), 0, 0)
	s.width, s.height = width, height
	if err := s.acquireBackbuffer(); err != nil {
		return err
	}
	return nil
}

func (s *Swapchain) Recreate() error {
	return s.Resize(s.width, s.height)
}

func callN(fn uintptr, args []uintptr) uintptr {
	a := func(i int) uintptr {
		if i < len(args) {
			return args[i]
		}
		return 0
	}
	r, _, _ := syscall.Syscall9(fn, uintptr(len(args)),
		a(0), a(1), a(2), a(3), a(4), a(5), a(6), a(7), a(8))
	return r
}
