// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

// Subset of the D3D11/DXGI constants this backend issues. Values are
// taken directly from the public d3d11.h / dxgi.h headers.
const (
	d3dDriverTypeHardware = 1

	featureLevel11_0 = 0xb000
	featureLevel10_0 = 0xa000

	createDeviceBGRASupport = 0x20

	usageDefault   = 0
	usageImmutable = 1
	usageDynamic   = 2
	usageStaging   = 3

	bindVertexBuffer   = 0x1
	bindIndexBuffer    = 0x2
	bindConstantBuffer = 0x4
	bindShaderResource = 0x8
	bindRenderTarget   = 0x20
	bindDepthStencil   = 0x40

	cpuAccessWrite = 0x10000
	cpuAccessRead  = 0x20000

	mapRead      = 1
	mapWrite     = 2
	mapReadWrite = 3

	fmtR8G8B8A8Unorm      = 28
	fmtB8G8R8A8Unorm      = 87
	fmtR8Unorm            = 61
	fmtR8G8Unorm          = 49
	fmtD24UnormS8Uint     = 45
	fmtD32Float           = 40
	fmtR16Uint            = 57
	fmtR32Uint            = 42

	primitiveTopologyTriangleList  = 4
	primitiveTopologyTriangleStrip = 5
	primitiveTopologyLineList      = 2
	primitiveTopologyPointList     = 1

	cullNone  = 1
	cullFront = 2
	cullBack  = 3

	fillSolid     = 3
	fillWireframe = 2

	comparisonNever        = 1
	comparisonLess         = 2
	comparisonEqual        = 3
	comparisonLessEqual    = 4
	comparisonGreater      = 5
	comparisonNotEqual     = 6
	comparisonGreaterEqual = 7
	comparisonAlways       = 8

	depthWriteMaskZero = 0
	depthWriteMaskAll  = 1

	blendZero           = 1
	blendOne            = 2
	blendSrcColor       = 3
	blendInvSrcColor    = 4
	blendSrcAlpha       = 5
	blendInvSrcAlpha    = 6
	blendDestAlpha      = 7
	blendInvDestAlpha   = 8
	blendDestColor      = 9
	blendInvDestColor   = 10
	blendOpAdd          = 1
	colorWriteEnableAll = 0xf

	swapEffectDiscard  = 0
	swapEffectFlipSeq  = 3
	usageRenderTargetOutput = 0x20
)

var (
	iidIUnknown         = _GUID{0x00000000, 0x0000, 0x0000, [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}
	iidIDXGIDevice      = _GUID{0x54ec77fa, 0x1377, 0x44e6, [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	iidIDXGIFactory     = _GUID{0x7b7166ec, 0x21c7, 0x44ae, [8]byte{0xb2, 0x1a, 0xc9, 0xae, 0x32, 0x1a, 0xe3, 0x69}}
	iidID3D11Texture2D  = _GUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
)
