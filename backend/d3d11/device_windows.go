// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	d3d11dll        = windows.NewLazySystemDLL("d3d11.dll")
	procCreateDevice = d3d11dll.NewProc("D3D11CreateDevice")
	dxgidll         = windows.NewLazySystemDLL("dxgi.dll")
	procCreateFactory = dxgidll.NewProc("CreateDXGIFactory1")
)

type _ID3D11DeviceVtbl struct {
	_IUnknownVtbl
	CreateBuffer             uintptr
	CreateTexture1D          uintptr
	CreateTexture2D          uintptr
	CreateTexture3D          uintptr
	CreateShaderResourceView uintptr
	_                        uintptr // CreateUnorderedAccessView
	CreateRenderTargetView   uintptr
	CreateDepthStencilView   uintptr
	CreateInputLayout        uintptr
	CreateVertexShader       uintptr
	CreateGeometryShader     uintptr
	_                        uintptr // CreateGeometryShaderWithStreamOutput
	CreatePixelShader        uintptr
	_                        uintptr // CreateHullShader
	_                        uintptr // CreateDomainShader
	_                        uintptr // CreateComputeShader
	_                        uintptr // CreateClassLinkage
	CreateBlendState         uintptr
	CreateDepthStencilState  uintptr
	CreateRasterizerState    uintptr
	CreateSamplerState       uintptr
	GetImmediateContext      uintptr
}

type _ID3D11Device struct {
	vtbl *_ID3D11DeviceVtbl
}

type _ID3D11DeviceContextVtbl struct {
	_IUnknownVtbl
	VSSetShader             uintptr
	PSSetShader             uintptr
	Draw                    uintptr
	DrawIndexed             uintptr
	Map                     uintptr
	Unmap                   uintptr
	IASetInputLayout        uintptr
	IASetVertexBuffers      uintptr
	IASetIndexBuffer        uintptr
	IASetPrimitiveTopology  uintptr
	VSSetConstantBuffers    uintptr
	PSSetConstantBuffers    uintptr
	PSSetShaderResources    uintptr
	PSSetSamplers           uintptr
	RSSetState              uintptr
	RSSetViewports          uintptr
	OMSetRenderTargets      uintptr
	OMSetBlendState         uintptr
	OMSetDepthStencilState  uintptr
	ClearRenderTargetView   uintptr
	ClearDepthStencilView   uintptr
	UpdateSubresource       uintptr
	CopySubresourceRegion   uintptr
}

type _ID3D11DeviceContext struct {
	vtbl *_ID3D11DeviceContextVtbl
}

// createDevice calls D3D11CreateDevice with a hardware driver type,
// returning the device and its immediate context.
func createDevice(debug bool) (*_ID3D11Device, *_ID3D11DeviceContext, uint32, error) {
	var flags uintptr
	if debug {
		flags |= 0x2 // D3D11_CREATE_DEVICE_DEBUG
	}
	var dev *_ID3D11Device
	var ctx *_ID3D11DeviceContext
	var featLvl uint32

	levels := [2]uint32{featureLevel11_0, featureLevel10_0}
	ret, _, _ := procCreateDevice.Call(
		0, // pAdapter
		d3dDriverTypeHardware,
		0, // Software
		flags,
		uintptr(unsafe.Pointer(&levels[0])),
		uintptr(len(levels)),
		7, // D3D11_SDK_VERSION
		uintptr(unsafe.Pointer(&dev)),
		uintptr(unsafe.Pointer(&featLvl)),
		uintptr(unsafe.Pointer(&ctx)),
	)
	if ret != 0 {
		return nil, nil, 0, fmt.Errorf("d3d11: D3D11CreateDevice failed: %w", hresultError(ret))
	}
	return dev, ctx, featLvl, nil
}

func (d *_ID3D11Device) call(fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(unsafe.Pointer(d))}, args...)
	r, _, _ := syscall.Syscall9(fn, uintptr(len(full)),
		arg(full, 0), arg(full, 1), arg(full, 2), arg(full, 3), arg(full, 4),
		arg(full, 5), arg(full, 6), arg(full, 7), arg(full, 8))
	return r
}

func arg(s []uintptr, i int) uintptr {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func (d *_ID3D11Device) Release() {
	comRelease(unsafe.Pointer(d), d.vtbl.Release)
}

func (c *_ID3D11DeviceContext) call(fn uintptr, args ...uintptr) uintptr {
	full := append([]uintptr{uintptr(unsafe.Pointer(c))}, args...)
	r, _, _ := syscall.Syscall9(fn, uintptr(len(full)),
		arg(full, 0), arg(full, 1), arg(full, 2), arg(full, 3), arg(full, 4),
		arg(full, 5), arg(full, 6), arg(full, 7), arg(full, 8))
	return r
}

func (c *_ID3D11DeviceContext) Release() {
	comRelease(unsafe.Pointer(c), c.vtbl.Release)
}
