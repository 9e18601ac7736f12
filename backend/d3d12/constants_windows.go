// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

// Subset of the D3D12/DXGI constants this backend issues, taken
// directly from the public d3d12.h / dxgi.h headers.
const (
	d3dFeatureLevel12_0 = 0xc000
	d3dFeatureLevel11_0 = 0xb000

	commandListTypeDirect  = 0
	commandListTypeCompute = 2

	heapTypeDefault  = 1
	heapTypeUpload   = 2
	heapTypeReadback = 3

	resourceDimensionBuffer = 1
	resourceDimensionTex2D  = 3

	resourceStateCommon        = 0
	resourceStateVertexConst   = 0x1
	resourceStateIndexBuffer   = 0x2
	resourceStateRenderTarget  = 0x4
	resourceStateUnorderedAcc  = 0x8
	resourceStateDepthWrite    = 0x10
	resourceStateDepthRead     = 0x20
	resourceStateNonPixelSRV   = 0x40
	resourceStatePixelSRV      = 0x80
	resourceStateCopyDest      = 0x400
	resourceStateCopySource    = 0x800
	resourceStatePresent       = 0
	resourceStateGenericRead   = 0x1 | 0x2 | 0x40 | 0x80 | 0x800

	descriptorHeapTypeRTV = 2
	descriptorHeapTypeDSV = 3

	fmtR8G8B8A8Unorm  = 28
	fmtB8G8R8A8Unorm  = 87
	fmtR8Unorm        = 61
	fmtR8G8Unorm      = 49
	fmtD24UnormS8Uint = 45
	fmtD32Float       = 40

	primitiveTopologyTypeTriangle = 3
	primitiveTopologyTypeLine     = 2
	primitiveTopologyTypePoint    = 1

	primitiveTopologyTriangleList  = 4
	primitiveTopologyTriangleStrip = 5
	primitiveTopologyLineList      = 2
	primitiveTopologyPointList     = 1

	cullModeNone  = 1
	cullModeFront = 2
	cullModeBack  = 3

	comparisonNever        = 1
	comparisonLess         = 2
	comparisonEqual        = 3
	comparisonLessEqual    = 4
	comparisonGreater      = 5
	comparisonNotEqual     = 6
	comparisonGreaterEqual = 7
	comparisonAlways       = 8

	blendZero         = 1
	blendOne          = 2
	blendSrcColor     = 3
	blendInvSrcColor  = 4
	blendSrcAlpha     = 5
	blendInvSrcAlpha  = 6
	blendDestAlpha    = 7
	blendInvDestAlpha = 8
	blendDestColor    = 9
	blendInvDestColor = 10
	blendOpAdd        = 1
	colorWriteAll     = 0xf

	swapEffectFlipDiscard = 4
	usageRenderTargetOut  = 0x20

	fenceFlagNone = 0
)

var (
	iidIUnknown          = _GUID{0x00000000, 0x0000, 0x0000, [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}
	iidIDXGIFactory4     = _GUID{0x1bc6ea02, 0xef36, 0x464f, [8]byte{0xbf, 0x0c, 0x21, 0xca, 0x39, 0xe5, 0x16, 0x8a}}
	iidID3D12Device      = _GUID{0x189819f1, 0x1db6, 0x4b57, [8]byte{0xbe, 0x54, 0x18, 0x21, 0x33, 0x9b, 0x85, 0xf7}}
	iidIDXGISwapChain3   = _GUID{0x94d99bdb, 0xf1f8, 0x4ab0, [8]byte{0xb2, 0x36, 0x7d, 0xa0, 0x17, 0x0e, 0xda, 0xb1}}
	iidID3D12Resource    = _GUID{0x696442be, 0xa72e, 0x4059, [8]byte{0xbc, 0x79, 0x5b, 0x5c, 0x98, 0x04, 0x0f, 0xad}}
)
