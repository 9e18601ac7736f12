// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import "github.com/novaengine/gbal/driver"

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
@import Metal;
#include <Metal/Metal.h>
*/
import "C"

// Metal enum constants, hand-declared rather than referenced as
// C.MTLPixelFormatRGBA8Unorm and friends: the NS_ENUM/NS_OPTIONS
// macros Apple's headers use do not always survive cgo's constant
// extraction, so (as the corpus's own Metal backend does for the
// handful of constants it names directly, e.g. MTLIndexTypeUInt16
// inlined at the call site) this backend spells them out once here
// from the published Metal API values instead of leaning on cgo to
// resolve each one.
const (
	mtlPixelFormatRGBA8Unorm          C.MTLPixelFormat = 70
	mtlPixelFormatBGRA8Unorm          C.MTLPixelFormat = 80
	mtlPixelFormatR8Unorm             C.MTLPixelFormat = 10
	mtlPixelFormatRG8Unorm            C.MTLPixelFormat = 30
	mtlPixelFormatDepth32Float        C.MTLPixelFormat = 252
	mtlPixelFormatDepth32FloatStencil8 C.MTLPixelFormat = 260
)

const (
	mtlTextureType2D C.MTLTextureType = 2
	mtlTextureType3D C.MTLTextureType = 7
)

const (
	mtlTextureUsageShaderRead   C.MTLTextureUsage = 1 << 0
	mtlTextureUsageShaderWrite  C.MTLTextureUsage = 1 << 1
	mtlTextureUsageRenderTarget C.MTLTextureUsage = 1 << 2
)

const (
	mtlSamplerMinMagFilterNearest C.MTLSamplerMinMagFilter = 0
	mtlSamplerMinMagFilterLinear  C.MTLSamplerMinMagFilter = 1
)

const (
	mtlSamplerMipFilterNotMipmapped C.MTLSamplerMipFilter = 0
	mtlSamplerMipFilterNearest     C.MTLSamplerMipFilter = 1
	mtlSamplerMipFilterLinear      C.MTLSamplerMipFilter = 2
)

const (
	mtlSamplerAddressModeClampToEdge  C.MTLSamplerAddressMode = 0
	mtlSamplerAddressModeMirrorRepeat C.MTLSamplerAddressMode = 3
	mtlSamplerAddressModeRepeat      C.MTLSamplerAddressMode = 2
)

const (
	mtlCompareFunctionNever        C.MTLCompareFunction = 0
	mtlCompareFunctionLess         C.MTLCompareFunction = 1
	mtlCompareFunctionEqual        C.MTLCompareFunction = 2
	mtlCompareFunctionLessEqual    C.MTLCompareFunction = 3
	mtlCompareFunctionGreater      C.MTLCompareFunction = 4
	mtlCompareFunctionNotEqual     C.MTLCompareFunction = 5
	mtlCompareFunctionGreaterEqual C.MTLCompareFunction = 6
	mtlCompareFunctionAlways       C.MTLCompareFunction = 7
)

const (
	mtlCullModeNone  C.MTLCullMode = 0
	mtlCullModeFront C.MTLCullMode = 1
	mtlCullModeBack  C.MTLCullMode = 2
)

const (
	mtlPrimitiveTypePoint         C.MTLPrimitiveType = 0
	mtlPrimitiveTypeLine          C.MTLPrimitiveType = 1
	mtlPrimitiveTypeLineStrip     C.MTLPrimitiveType = 2
	mtlPrimitiveTypeTriangle      C.MTLPrimitiveType = 3
	mtlPrimitiveTypeTriangleStrip C.MTLPrimitiveType = 4
)

const (
	mtlLoadActionDontCare C.MTLLoadAction = 0
	mtlLoadActionLoad     C.MTLLoadAction = 1
	mtlLoadActionClear    C.MTLLoadAction = 2
)

const (
	mtlBlendFactorZero                     C.MTLBlendFactor = 0
	mtlBlendFactorOne                      C.MTLBlendFactor = 1
	mtlBlendFactorSourceColor              C.MTLBlendFactor = 2
	mtlBlendFactorOneMinusSourceColor      C.MTLBlendFactor = 3
	mtlBlendFactorSourceAlpha              C.MTLBlendFactor = 4
	mtlBlendFactorOneMinusSourceAlpha      C.MTLBlendFactor = 5
	mtlBlendFactorDestinationColor         C.MTLBlendFactor = 6
	mtlBlendFactorOneMinusDestinationColor C.MTLBlendFactor = 7
	mtlBlendFactorDestinationAlpha         C.MTLBlendFactor = 8
	mtlBlendFactorOneMinusDestinationAlpha C.MTLBlendFactor = 9
)

const (
	mtlVertexFormatFloat  C.MTLVertexFormat = 28
	mtlVertexFormatFloat2 C.MTLVertexFormat = 29
	mtlVertexFormatFloat3 C.MTLVertexFormat = 30
	mtlVertexFormatFloat4 C.MTLVertexFormat = 31
	mtlVertexFormatUChar4Normalized C.MTLVertexFormat = 9
	mtlVertexFormatUShort2Normalized C.MTLVertexFormat = 19
	mtlVertexFormatHalf2 C.MTLVertexFormat = 25
	mtlVertexFormatHalf4 C.MTLVertexFormat = 27
)

const mtlIndexTypeUInt16 C.MTLIndexType = 0
const mtlIndexTypeUInt32 C.MTLIndexType = 1

func mtlSamplerMinMagFilter(f driver.Filter) C.MTLSamplerMinMagFilter {
	if f == driver.FilterLinear {
		return mtlSamplerMinMagFilterLinear
	}
	return mtlSamplerMinMagFilterNearest
}

func mtlSamplerMipFilter(f driver.Filter) C.MTLSamplerMipFilter {
	switch f {
	case driver.FilterNoMipmap:
		return mtlSamplerMipFilterNotMipmapped
	case driver.FilterLinear:
		return mtlSamplerMipFilterLinear
	default:
		return mtlSamplerMipFilterNearest
	}
}

func mtlSamplerAddressMode(m driver.AddrMode) C.MTLSamplerAddressMode {
	switch m {
	case driver.AddrMirror:
		return mtlSamplerAddressModeMirrorRepeat
	case driver.AddrClamp:
		return mtlSamplerAddressModeClampToEdge
	default:
		return mtlSamplerAddressModeRepeat
	}
}

func mtlCompareFunction(f driver.CmpFunc) C.MTLCompareFunction {
	switch f {
	case driver.CmpLess:
		return mtlCompareFunctionLess
	case driver.CmpEqual:
		return mtlCompareFunctionEqual
	case driver.CmpLessEqual:
		return mtlCompareFunctionLessEqual
	case driver.CmpGreater:
		return mtlCompareFunctionGreater
	case driver.CmpNotEqual:
		return mtlCompareFunctionNotEqual
	case driver.CmpGreaterEqual:
		return mtlCompareFunctionGreaterEqual
	case driver.CmpAlways:
		return mtlCompareFunctionAlways
	default:
		return mtlCompareFunctionNever
	}
}

func mtlCullMode(c driver.CullMode) C.MTLCullMode {
	switch c {
	case driver.CullFront:
		return mtlCullModeFront
	case driver.CullBack:
		return mtlCullModeBack
	default:
		return mtlCullModeNone
	}
}

func mtlPrimitiveType(t driver.Topology) C.MTLPrimitiveType {
	switch t {
	case driver.TPoint:
		return mtlPrimitiveTypePoint
	case driver.TLine:
		return mtlPrimitiveTypeLine
	case driver.TLineStrip:
		return mtlPrimitiveTypeLineStrip
	case driver.TTriangleStrip:
		return mtlPrimitiveTypeTriangleStrip
	default:
		return mtlPrimitiveTypeTriangle
	}
}

func mtlBlendFactor(f driver.BlendFactor) C.MTLBlendFactor {
	switch f {
	case driver.BlendOne:
		return mtlBlendFactorOne
	case driver.BlendSrcColor:
		return mtlBlendFactorSourceColor
	case driver.BlendOneMinusSrcColor:
		return mtlBlendFactorOneMinusSourceColor
	case driver.BlendSrcAlpha:
		return mtlBlendFactorSourceAlpha
	case driver.BlendOneMinusSrcAlpha:
		return mtlBlendFactorOneMinusSourceAlpha
	case driver.BlendDstColor:
		return mtlBlendFactorDestinationColor
	case driver.BlendOneMinusDstColor:
		return mtlBlendFactorOneMinusDestinationColor
	case driver.BlendDstAlpha:
		return mtlBlendFactorDestinationAlpha
	case driver.BlendOneMinusDstAlpha:
		return mtlBlendFactorOneMinusDestinationAlpha
	default:
		return mtlBlendFactorZero
	}
}

func mtlLoadAction(op driver.LoadOp) C.MTLLoadAction {
	switch op {
	case driver.LoadLoad:
		return mtlLoadActionLoad
	case driver.LoadClear:
		return mtlLoadActionClear
	default:
		return mtlLoadActionDontCare
	}
}

func mtlVertexFormat(f driver.VertexFmt) C.MTLVertexFormat {
	switch f {
	case driver.Float32:
		return mtlVertexFormatFloat
	case driver.Float32x2:
		return mtlVertexFormatFloat2
	case driver.Float32x3:
		return mtlVertexFormatFloat3
	case driver.Float32x4:
		return mtlVertexFormatFloat4
	case driver.UByte4Norm:
		return mtlVertexFormatUChar4Normalized
	case driver.UShort2Norm:
		return mtlVertexFormatUShort2Normalized
	case driver.Half2:
		return mtlVertexFormatHalf2
	case driver.Half4:
		return mtlVertexFormatHalf4
	default:
		return mtlVertexFormatFloat
	}
}
