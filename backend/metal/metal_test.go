// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"testing"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// These tests exercise pure translation logic and error-wrapping
// only: a Metal device is not assumed to be present wherever this
// module is tested, the same scope cut the Vulkan, D3D11 and D3D12
// backends take for anything past device/queue acquisition.

func TestDriverIdentity(t *testing.T) {
	d := &Driver{}
	if got := d.Name(); got != "metal" {
		t.Errorf("Name() = %q, want %q", got, "metal")
	}
	if got := d.Kind(); got != driver.Metal {
		t.Errorf("Kind() = %v, want %v", got, driver.Metal)
	}
}

func TestCullModeMapsAllThreeModes(t *testing.T) {
	cases := []struct {
		c    driver.CullMode
		want uint16
	}{
		{driver.CullNone, uint16(mtlCullModeNone)},
		{driver.CullFront, uint16(mtlCullModeFront)},
		{driver.CullBack, uint16(mtlCullModeBack)},
	}
	for _, c := range cases {
		if got := uint16(mtlCullMode(c.c)); got != c.want {
			t.Errorf("mtlCullMode(%v) = %v, want %v", c.c, got, c.want)
		}
	}
}

func TestCompareFuncCoversAllEightComparisons(t *testing.T) {
	cases := []struct {
		f    driver.CmpFunc
		want uint16
	}{
		{driver.CmpNever, uint16(mtlCompareFunctionNever)},
		{driver.CmpLess, uint16(mtlCompareFunctionLess)},
		{driver.CmpEqual, uint16(mtlCompareFunctionEqual)},
		{driver.CmpLessEqual, uint16(mtlCompareFunctionLessEqual)},
		{driver.CmpGreater, uint16(mtlCompareFunctionGreater)},
		{driver.CmpNotEqual, uint16(mtlCompareFunctionNotEqual)},
		{driver.CmpGreaterEqual, uint16(mtlCompareFunctionGreaterEqual)},
		{driver.CmpAlways, uint16(mtlCompareFunctionAlways)},
	}
	for _, c := range cases {
		if got := uint16(mtlCompareFunction(c.f)); got != c.want {
			t.Errorf("mtlCompareFunction(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestBlendFactorCoversAllTenFactors(t *testing.T) {
	cases := []struct {
		f    driver.BlendFactor
		want uint16
	}{
		{driver.BlendZero, uint16(mtlBlendFactorZero)},
		{driver.BlendOne, uint16(mtlBlendFactorOne)},
		{driver.BlendSrcColor, uint16(mtlBlendFactorSourceColor)},
		{driver.BlendOneMinusSrcColor, uint16(mtlBlendFactorOneMinusSourceColor)},
		{driver.BlendSrcAlpha, uint16(mtlBlendFactorSourceAlpha)},
		{driver.BlendOneMinusSrcAlpha, uint16(mtlBlendFactorOneMinusSourceAlpha)},
		{driver.BlendDstColor, uint16(mtlBlendFactorDestinationColor)},
		{driver.BlendOneMinusDstColor, uint16(mtlBlendFactorOneMinusDestinationColor)},
		{driver.BlendDstAlpha, uint16(mtlBlendFactorDestinationAlpha)},
		{driver.BlendOneMinusDstAlpha, uint16(mtlBlendFactorOneMinusDestinationAlpha)},
	}
	for _, c := range cases {
		if got := uint16(mtlBlendFactor(c.f)); got != c.want {
			t.Errorf("mtlBlendFactor(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestPrimitiveTypeMapsKnownTopologies(t *testing.T) {
	cases := []struct {
		top  driver.Topology
		want uint16
	}{
		{driver.TTriangle, uint16(mtlPrimitiveTypeTriangle)},
		{driver.TTriangleStrip, uint16(mtlPrimitiveTypeTriangleStrip)},
		{driver.TLine, uint16(mtlPrimitiveTypeLine)},
		{driver.TLineStrip, uint16(mtlPrimitiveTypeLineStrip)},
		{driver.TPoint, uint16(mtlPrimitiveTypePoint)},
	}
	for _, c := range cases {
		if got := uint16(mtlPrimitiveType(c.top)); got != c.want {
			t.Errorf("mtlPrimitiveType(%v) = %v, want %v", c.top, got, c.want)
		}
	}
}

func TestPixelFormatMapsDepth24Stencil8ToPackedFloatVariant(t *testing.T) {
	if got := mtlPixelFormat(driver.Depth24Stencil8); got != mtlPixelFormatDepth32FloatStencil8 {
		t.Errorf("mtlPixelFormat(Depth24Stencil8) = %v, want mtlPixelFormatDepth32FloatStencil8 (no packed 24/8 depth format on Apple GPUs)", got)
	}
}

func TestResourceOptionsPrefersSharedForHostVisibleMemory(t *testing.T) {
	if got := mtlResourceOptions(driver.HostVisible); got != mtlResourceStorageModeShared {
		t.Errorf("mtlResourceOptions(HostVisible) = %v, want mtlResourceStorageModeShared", got)
	}
}

func TestResourceOptionsFallsBackToPrivateForDeviceLocalMemory(t *testing.T) {
	if got := mtlResourceOptions(driver.DeviceLocal); got != mtlResourceStorageModePrivate {
		t.Errorf("mtlResourceOptions(DeviceLocal) = %v, want mtlResourceStorageModePrivate", got)
	}
}

func TestSamplerAddressModeMapsMirrorAndClamp(t *testing.T) {
	if got := mtlSamplerAddressMode(driver.AddrMirror); got != mtlSamplerAddressModeMirrorRepeat {
		t.Errorf("mtlSamplerAddressMode(AddrMirror) = %v, want mtlSamplerAddressModeMirrorRepeat", got)
	}
	if got := mtlSamplerAddressMode(driver.AddrClamp); got != mtlSamplerAddressModeClampToEdge {
		t.Errorf("mtlSamplerAddressMode(AddrClamp) = %v, want mtlSamplerAddressModeClampToEdge", got)
	}
}

func TestKindOfRoundTripsThroughWrapKind(t *testing.T) {
	err := driverErr(gerr.ResourceCreationFailed)
	kind, ok := KindOf(err)
	if !ok || kind != gerr.ResourceCreationFailed {
		t.Errorf("KindOf(driverErr(ResourceCreationFailed)) = (%v, %v), want (ResourceCreationFailed, true)", kind, ok)
	}
}

func TestCStringStopsAtFirstNulByte(t *testing.T) {
	buf := make([]byte, 8)
	copy(buf, "hi")
	if got := cString(buf); got != "hi" {
		t.Errorf("cString(%q) = %q, want %q", buf, got, "hi")
	}
}
