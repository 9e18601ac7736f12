// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d12

import (
	"testing"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// These tests exercise pure translation logic and error-wrapping
// only: a Direct3D 12 device is not assumed to be present wherever
// this module is tested, the same scope cut the Vulkan and WebGPU
// backends take for anything past device/queue acquisition (here,
// CmdBuffer.Begin issues a real ID3D12CommandAllocator::Reset call
// that would need a live device to not crash).

func TestDriverIdentity(t *testing.T) {
	d := &Driver{}
	if got := d.Name(); got != "d3d12" {
		t.Errorf("Name() = %q, want %q", got, "d3d12")
	}
	if got := d.Kind(); got != driver.D3D12 {
		t.Errorf("Kind() = %v, want %v", got, driver.D3D12)
	}
}

func TestCullModeMapsAllThreeModes(t *testing.T) {
	cases := []struct {
		c    driver.CullMode
		want uint32
	}{
		{driver.CullNone, cullModeNone},
		{driver.CullFront, cullModeFront},
		{driver.CullBack, cullModeBack},
	}
	for _, c := range cases {
		if got := waCullMode(c.c); got != c.want {
			t.Errorf("waCullMode(%v) = %v, want %v", c.c, got, c.want)
		}
	}
}

func TestCompareFuncCoversAllEightComparisons(t *testing.T) {
	cases := []struct {
		f    driver.CmpFunc
		want uint32
	}{
		{driver.CmpNever, comparisonNever},
		{driver.CmpLess, comparisonLess},
		{driver.CmpEqual, comparisonEqual},
		{driver.CmpLessEqual, comparisonLessEqual},
		{driver.CmpGreater, comparisonGreater},
		{driver.CmpNotEqual, comparisonNotEqual},
		{driver.CmpGreaterEqual, comparisonGreaterEqual},
		{driver.CmpAlways, comparisonAlways},
	}
	for _, c := range cases {
		if got := waCompare(c.f); got != c.want {
			t.Errorf("waCompare(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestBlendFactorCoversAllTenFactors(t *testing.T) {
	cases := []struct {
		f    driver.BlendFactor
		want uint32
	}{
		{driver.BlendZero, blendZero},
		{driver.BlendOne, blendOne},
		{driver.BlendSrcColor, blendSrcColor},
		{driver.BlendOneMinusSrcColor, blendInvSrcColor},
		{driver.BlendSrcAlpha, blendSrcAlpha},
		{driver.BlendOneMinusSrcAlpha, blendInvSrcAlpha},
		{driver.BlendDstColor, blendDestColor},
		{driver.BlendOneMinusDstColor, blendInvDestColor},
		{driver.BlendDstAlpha, blendDestAlpha},
		{driver.BlendOneMinusDstAlpha, blendInvDestAlpha},
	}
	for _, c := range cases {
		if got := waBlendFactor(c.f); got != c.want {
			t.Errorf("waBlendFactor(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestPrimitiveTopologyTypeMapsKnownTopologies(t *testing.T) {
	cases := []struct {
		top  driver.Topology
		want uint32
	}{
		{driver.TTriangle, primitiveTopologyTypeTriangle},
		{driver.TTriangleStrip, primitiveTopologyTypeTriangle},
		{driver.TLine, primitiveTopologyTypeLine},
		{driver.TLineStrip, primitiveTopologyTypeLine},
		{driver.TPoint, primitiveTopologyTypePoint},
	}
	for _, c := range cases {
		if got := waPrimitiveTopologyType(c.top); got != c.want {
			t.Errorf("waPrimitiveTopologyType(%v) = %v, want %v", c.top, got, c.want)
		}
	}
}

func TestResourceStatePrefersRenderTargetOverOtherBits(t *testing.T) {
	u := driver.URenderTarget | driver.USampled
	if got := waResourceState(u); got != resourceStateRenderTarget {
		t.Errorf("waResourceState(%v) = %v, want resourceStateRenderTarget", u, got)
	}
}

func TestResourceStateFallsBackToCommonWhenNoBitsSet(t *testing.T) {
	if got := waResourceState(driver.Usage(0)); got != resourceStateCommon {
		t.Errorf("waResourceState(0) = %v, want resourceStateCommon", got)
	}
}

func TestKindOfRoundTripsThroughWrapKind(t *testing.T) {
	err := driverErr(gerr.ResourceCreationFailed)
	kind, ok := KindOf(err)
	if !ok || kind != gerr.ResourceCreationFailed {
		t.Errorf("KindOf(driverErr(ResourceCreationFailed)) = (%v, %v), want (ResourceCreationFailed, true)", kind, ok)
	}
}
