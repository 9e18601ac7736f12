// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package webgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// These tests exercise pure translation logic and error-wrapping
// only: a wgpu-native instance is not assumed to be present wherever
// this module is tested, the same scope cut the teacher's Vulkan
// backend takes for anything past instance/device acquisition.

func TestDriverIdentity(t *testing.T) {
	d := &Driver{}
	if got := d.Name(); got != "webgpu" {
		t.Errorf("Name() = %q, want %q", got, "webgpu")
	}
	if got := d.Kind(); got != driver.WebGPU {
		t.Errorf("Kind() = %v, want %v", got, driver.WebGPU)
	}
}

func TestBufferUsageCoversEveryUsageBit(t *testing.T) {
	cases := []struct {
		u    driver.Usage
		want wgpu.BufferUsage
	}{
		{driver.UVertexData, wgpu.BufferUsageVertex},
		{driver.UIndexData, wgpu.BufferUsageIndex},
		{driver.UUniform, wgpu.BufferUsageUniform},
		{driver.UStorage, wgpu.BufferUsageStorage},
		{driver.UTransferSrc, wgpu.BufferUsageCopySrc},
		{driver.UTransferDst, wgpu.BufferUsageCopyDst},
		{driver.UIndirect, wgpu.BufferUsageIndirect},
	}
	for _, c := range cases {
		if got := waBufferUsage(c.u); got != c.want {
			t.Errorf("waBufferUsage(%v) = %v, want %v", c.u, got, c.want)
		}
	}
}

func TestBufferUsageFallsBackToCopyDstWhenNoBitsSet(t *testing.T) {
	if got := waBufferUsage(driver.Usage(0)); got != wgpu.BufferUsageCopyDst {
		t.Errorf("waBufferUsage(0) = %v, want %v (copy-dst fallback)", got, wgpu.BufferUsageCopyDst)
	}
}

func TestFormatRoundTripsKnownPixelFormats(t *testing.T) {
	cases := []struct {
		fmt  driver.PixelFmt
		want wgpu.TextureFormat
	}{
		{driver.RGBA8Unorm, wgpu.TextureFormatRGBA8Unorm},
		{driver.BGRA8Unorm, wgpu.TextureFormatBGRA8Unorm},
		{driver.RG8Unorm, wgpu.TextureFormatRG8Unorm},
		{driver.R8Unorm, wgpu.TextureFormatR8Unorm},
		{driver.Depth24Stencil8, wgpu.TextureFormatDepth24PlusStencil8},
		{driver.Depth32Float, wgpu.TextureFormatDepth32Float},
	}
	for _, c := range cases {
		if got := waFormat(c.fmt); got != c.want {
			t.Errorf("waFormat(%v) = %v, want %v", c.fmt, got, c.want)
		}
	}
}

func TestTopologyMapsKnownPrimitives(t *testing.T) {
	cases := []struct {
		top  driver.Topology
		want wgpu.PrimitiveTopology
	}{
		{driver.TTriangle, wgpu.PrimitiveTopologyTriangleList},
		{driver.TTriangleStrip, wgpu.PrimitiveTopologyTriangleStrip},
		{driver.TLine, wgpu.PrimitiveTopologyLineList},
		{driver.TLineStrip, wgpu.PrimitiveTopologyLineStrip},
		{driver.TPoint, wgpu.PrimitiveTopologyPointList},
	}
	for _, c := range cases {
		if got := waTopology(c.top); got != c.want {
			t.Errorf("waTopology(%v) = %v, want %v", c.top, got, c.want)
		}
	}
}

func TestCullModeMapsAllThreeModes(t *testing.T) {
	cases := []struct {
		c    driver.CullMode
		want wgpu.CullMode
	}{
		{driver.CullNone, wgpu.CullModeNone},
		{driver.CullFront, wgpu.CullModeFront},
		{driver.CullBack, wgpu.CullModeBack},
	}
	for _, c := range cases {
		if got := waCullMode(c.c); got != c.want {
			t.Errorf("waCullMode(%v) = %v, want %v", c.c, got, c.want)
		}
	}
}

func TestFrontFaceMapsWindingOrder(t *testing.T) {
	if got := waFrontFace(true); got != wgpu.FrontFaceCCW {
		t.Errorf("waFrontFace(true) = %v, want CCW", got)
	}
	if got := waFrontFace(false); got != wgpu.FrontFaceCW {
		t.Errorf("waFrontFace(false) = %v, want CW", got)
	}
}

func TestBlendFactorCoversAllTenFactors(t *testing.T) {
	cases := []struct {
		f    driver.BlendFactor
		want wgpu.BlendFactor
	}{
		{driver.BlendZero, wgpu.BlendFactorZero},
		{driver.BlendOne, wgpu.BlendFactorOne},
		{driver.BlendSrcColor, wgpu.BlendFactorSrc},
		{driver.BlendOneMinusSrcColor, wgpu.BlendFactorOneMinusSrc},
		{driver.BlendSrcAlpha, wgpu.BlendFactorSrcAlpha},
		{driver.BlendOneMinusSrcAlpha, wgpu.BlendFactorOneMinusSrcAlpha},
		{driver.BlendDstColor, wgpu.BlendFactorDst},
		{driver.BlendOneMinusDstColor, wgpu.BlendFactorOneMinusDst},
		{driver.BlendDstAlpha, wgpu.BlendFactorDstAlpha},
		{driver.BlendOneMinusDstAlpha, wgpu.BlendFactorOneMinusDstAlpha},
	}
	for _, c := range cases {
		if got := waBlendFactor(c.f); got != c.want {
			t.Errorf("waBlendFactor(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestBlendOpCoversAllFiveOperations(t *testing.T) {
	cases := []struct {
		op   driver.BlendOp
		want wgpu.BlendOperation
	}{
		{driver.BlendAdd, wgpu.BlendOperationAdd},
		{driver.BlendSubtract, wgpu.BlendOperationSubtract},
		{driver.BlendReverseSubtract, wgpu.BlendOperationReverseSubtract},
		{driver.BlendMin, wgpu.BlendOperationMin},
		{driver.BlendMax, wgpu.BlendOperationMax},
	}
	for _, c := range cases {
		if got := waBlendOp(c.op); got != c.want {
			t.Errorf("waBlendOp(%v) = %v, want %v", c.op, got, c.want)
		}
	}
}

func TestAddrModeMapsAllThreeModes(t *testing.T) {
	cases := []struct {
		m    driver.AddrMode
		want wgpu.AddressMode
	}{
		{driver.AddrWrap, wgpu.AddressModeRepeat},
		{driver.AddrMirror, wgpu.AddressModeMirrorRepeat},
		{driver.AddrClamp, wgpu.AddressModeClampToEdge},
	}
	for _, c := range cases {
		if got := waAddr(c.m); got != c.want {
			t.Errorf("waAddr(%v) = %v, want %v", c.m, got, c.want)
		}
	}
}

func TestCompareFuncCoversAllEightComparisons(t *testing.T) {
	cases := []struct {
		f    driver.CmpFunc
		want wgpu.CompareFunction
	}{
		{driver.CmpNever, wgpu.CompareFunctionNever},
		{driver.CmpLess, wgpu.CompareFunctionLess},
		{driver.CmpEqual, wgpu.CompareFunctionEqual},
		{driver.CmpLessEqual, wgpu.CompareFunctionLessEqual},
		{driver.CmpGreater, wgpu.CompareFunctionGreater},
		{driver.CmpNotEqual, wgpu.CompareFunctionNotEqual},
		{driver.CmpGreaterEqual, wgpu.CompareFunctionGreaterEqual},
		{driver.CmpAlways, wgpu.CompareFunctionAlways},
	}
	for _, c := range cases {
		if got := waCompare(c.f); got != c.want {
			t.Errorf("waCompare(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestViewDimensionMapsArrayAndCubeTypes(t *testing.T) {
	cases := []struct {
		v    driver.ViewType
		want wgpu.TextureViewDimension
	}{
		{driver.View1D, wgpu.TextureViewDimension1D},
		{driver.View2D, wgpu.TextureViewDimension2D},
		{driver.View3D, wgpu.TextureViewDimension3D},
		{driver.ViewCube, wgpu.TextureViewDimensionCube},
		{driver.View2DArray, wgpu.TextureViewDimension2DArray},
		{driver.ViewCubeArray, wgpu.TextureViewDimensionCubeArray},
	}
	for _, c := range cases {
		if got := waViewDimension(c.v); got != c.want {
			t.Errorf("waViewDimension(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestKindOfRoundTripsThroughWrapKind(t *testing.T) {
	err := driverErr(gerr.ResourceCreationFailed)
	kind, ok := KindOf(err)
	if !ok || kind != gerr.ResourceCreationFailed {
		t.Errorf("KindOf(driverErr(ResourceCreationFailed)) = (%v, %v), want (ResourceCreationFailed, true)", kind, ok)
	}
}
