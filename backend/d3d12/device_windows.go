// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	d3d12dll          = windows.NewLazySystemDLL("d3d12.dll")
	procCreateDevice  = d3d12dll.NewProc("D3D12CreateDevice")
	dxgidll           = windows.NewLazySystemDLL("dxgi.dll")
	procCreateFactory = dxgidll.NewProc("CreateDXGIFactory2")
)

// vcall issues a direct vtable call through fn against obj, the same
// generic helper shape for every COM interface in this package (they
// differ only in vtable layout, never in calling convention).
func vcall(obj unsafe.Pointer, fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(obj)}, args...)
	r, _, _ := syscall.Syscall9(fn, uintptr(len(full)),
		arg(full, 0), arg(full, 1), arg(full, 2), arg(full, 3), arg(full, 4),
		arg(full, 5), arg(full, 6), arg(full, 7), arg(full, 8))
	return r
}

type _ID3D12DeviceVtbl struct {
	_IUnknownVtbl
	_                             uintptr // GetPrivateData
	_                             uintptr // SetPrivateData
	_                             uintptr // SetPrivateDataInterface
	_                             uintptr // SetName
	_                             uintptr // GetNodeCount
	CreateCommandQueue            uintptr
	CreateCommandAllocator        uintptr
	CreateGraphicsPipelineState   uintptr
	CreateComputePipelineState    uintptr
	CreateCommandList             uintptr
	_                             uintptr // CheckFeatureSupport
	CreateDescriptorHeap          uintptr
	GetDescriptorHandleIncSize    uintptr
	_                             uintptr // CreateRootSignature
	CreateConstantBufferView      uintptr
	_                             uintptr // CreateShaderResourceView
	_                             uintptr // CreateUnorderedAccessView
	CreateRenderTargetView        uintptr
	CreateDepthStencilView        uintptr
	_                             uintptr // CreateSampler
	_                             uintptr // CopyDescriptors
	_                             uintptr // CopyDescriptorsSimple
	_                             uintptr // GetResourceAllocationInfo
	_                             uintptr // GetCustomHeapProperties
	CreateCommittedResource       uintptr
	_                             uintptr // CreateHeap
	_                             uintptr // CreatePlacedResource
	_                             uintptr // CreateReservedResource
	CreateFence                   uintptr
}

type _ID3D12Device struct{ vtbl *_ID3D12DeviceVtbl }

func (d *_ID3D12Device) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(d), fn, args...)
}
func (d *_ID3D12Device) Release() { comRelease(unsafe.Pointer(d), d.vtbl.Release) }

type _ID3D12CommandQueueVtbl struct {
	_IUnknownVtbl
	_                  uintptr // GetPrivateData
	_                  uintptr // SetPrivateData
	_                  uintptr // SetPrivateDataInterface
	_                  uintptr // SetName
	_                  uintptr // GetDevice
	_                  uintptr // UpdateTileMappings
	_                  uintptr // CopyTileMappings
	ExecuteCommandLists uintptr
	_                  uintptr // SetMarker
	_                  uintptr // BeginEvent
	_                  uintptr // EndEvent
	Signal             uintptr
	_                  uintptr // Wait
	_                  uintptr // GetTimestampFrequency
	_                  uintptr // GetClockCalibration
	_                  uintptr // GetDesc
}

type _ID3D12CommandQueue struct{ vtbl *_ID3D12CommandQueueVtbl }

func (q *_ID3D12CommandQueue) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(q), fn, args...)
}
func (q *_ID3D12CommandQueue) Release() { comRelease(unsafe.Pointer(q), q.vtbl.Release) }

type _ID3D12CommandAllocatorVtbl struct {
	_IUnknownVtbl
	_     uintptr // GetPrivateData
	_     uintptr // SetPrivateData
	_     uintptr // SetPrivateDataInterface
	_     uintptr // SetName
	_     uintptr // GetDevice
	Reset uintptr
}

type _ID3D12CommandAllocator struct{ vtbl *_ID3D12CommandAllocatorVtbl }

func (a *_ID3D12CommandAllocator) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(a), fn, args...)
}
func (a *_ID3D12CommandAllocator) Release() { comRelease(unsafe.Pointer(a), a.vtbl.Release) }

// _ID3D12GraphicsCommandListVtbl lists only the recording methods this
// backend calls, in the real interface's relative order, with unused
// slots blanked out so the offsets of the ones we do call stay correct.
type _ID3D12GraphicsCommandListVtbl struct {
	_IUnknownVtbl
	_                       uintptr // GetPrivateData
	_                       uintptr // SetPrivateData
	_                       uintptr // SetPrivateDataInterface
	_                       uintptr // SetName
	_                       uintptr // GetDevice
	_                       uintptr // GetType (ID3D12CommandList)
	Close                   uintptr
	Reset                   uintptr
	_                       uintptr // ClearState
	DrawInstanced           uintptr
	DrawIndexedInstanced    uintptr
	Dispatch                uintptr
	CopyBufferRegion        uintptr
	CopyTextureRegion       uintptr
	CopyResource            uintptr
	_                       uintptr // CopyTiles
	_                       uintptr // ResolveSubresource
	IASetPrimitiveTopology  uintptr
	RSSetViewports          uintptr
	RSSetScissorRects       uintptr
	OMSetBlendFactor        uintptr
	_                       uintptr // OMSetStencilRef
	SetPipelineState        uintptr
	ResourceBarrier         uintptr
	_                       uintptr // ExecuteBundle
	_                       uintptr // SetDescriptorHeaps
	_                       uintptr // SetComputeRootSignature
	_                       uintptr // SetGraphicsRootSignature
	_                       uintptr // SetComputeRootDescriptorTable
	_                       uintptr // SetGraphicsRootDescriptorTable
	_                       uintptr // SetComputeRoot32BitConstant
	_                       uintptr // SetGraphicsRoot32BitConstant
	_                       uintptr // SetComputeRoot32BitConstants
	_                       uintptr // SetGraphicsRoot32BitConstants
	_                       uintptr // SetComputeRootConstantBufferView
	_                       uintptr // SetGraphicsRootConstantBufferView
	_                       uintptr // SetComputeRootShaderResourceView
	_                       uintptr // SetGraphicsRootShaderResourceView
	_                       uintptr // SetComputeRootUnorderedAccessView
	_                       uintptr // SetGraphicsRootUnorderedAccessView
	IASetIndexBuffer        uintptr
	IASetVertexBuffers      uintptr
	_                       uintptr // SOSetTargets
	OMSetRenderTargets      uintptr
	ClearDepthStencilView   uintptr
	ClearRenderTargetView   uintptr
}

type _ID3D12GraphicsCommandList struct{ vtbl *_ID3D12GraphicsCommandListVtbl }

func (l *_ID3D12GraphicsCommandList) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(l), fn, args...)
}
func (l *_ID3D12GraphicsCommandList) Release() { comRelease(unsafe.Pointer(l), l.vtbl.Release) }

type _ID3D12FenceVtbl struct {
	_IUnknownVtbl
	_                    uintptr // GetPrivateData
	_                    uintptr // SetPrivateData
	_                    uintptr // SetPrivateDataInterface
	_                    uintptr // SetName
	_                    uintptr // GetDevice
	GetCompletedValue    uintptr
	SetEventOnCompletion uintptr
	Signal               uintptr
}

type _ID3D12Fence struct{ vtbl *_ID3D12FenceVtbl }

func (f *_ID3D12Fence) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(f), fn, args...)
}
func (f *_ID3D12Fence) Release() { comRelease(unsafe.Pointer(f), f.vtbl.Release) }

type _ID3D12ResourceVtbl struct {
	_IUnknownVtbl
	_         uintptr // GetPrivateData
	_         uintptr // SetPrivateData
	_         uintptr // SetPrivateDataInterface
	_         uintptr // SetName
	_         uintptr // GetDevice
	Map       uintptr
	Unmap     uintptr
	_         uintptr // GetDesc
	_         uintptr // GetGPUVirtualAddress
}

type _ID3D12Resource struct{ vtbl *_ID3D12ResourceVtbl }

func (r *_ID3D12Resource) call(fn uintptr, args ...uintptr) uintptr {
	return vcall(unsafe.Pointer(r), fn, args...)
}
func (r *_ID3D12Resource) Release() { comRelease(unsafe.Pointer(r), r.vtbl.Release) }

// createDevice calls D3D12CreateDevice requesting feature level 11_0,
// the baseline this backend targets (12_0-only features are not used).
func createDevice() (*_ID3D12Device, error) {
	var dev *_ID3D12Device
	ret, _, _ := procCreateDevice.Call(
		0, // pAdapter
		uintptr(d3dFeatureLevel11_0),
		uintptr(unsafe.Pointer(&iidID3D12Device)),
		uintptr(unsafe.Pointer(&dev)),
	)
	if ret != 0 {
		return nil, fmt.Errorf("d3d12: D3D12CreateDevice failed: %w", hresultError(ret))
	}
	return dev, nil
}

func createFence(dev *_ID3D12Device) (*_ID3D12Fence, error) {
	var fence *_ID3D12Fence
	hr := dev.call(dev.vtbl.CreateFence, 0, uintptr(fenceFlagNone), uintptr(unsafe.Pointer(&iidIUnknown)), uintptr(unsafe.Pointer(&fence)))
	if hr != 0 {
		return nil, fmt.Errorf("d3d12: CreateFence failed: %w", hresultError(hr))
	}
	return fence, nil
}

func createCommandQueue(dev *_ID3D12Device) (*_ID3D12CommandQueue, error) {
	desc := struct {
		Type     uint32
		Priority int32
		Flags    uint32
		NodeMask uint32
	}{Type: commandListTypeDirect}
	var queue *_ID3D12CommandQueue
	hr := dev.call(dev.vtbl.CreateCommandQueue, uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&iidIUnknown)), uintptr(unsafe.Pointer(&queue)))
	if hr != 0 {
		return nil, fmt.Errorf("d3d12: CreateCommandQueue failed: %w", hresultError(hr))
	}
	return queue, nil
}
