// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// These tests exercise the backend's pure translation helpers and
// identity, not actual device creation: a Vulkan loader and a
// physical device are not assumed to be present wherever this module
// is tested.

func TestDriverIdentity(t *testing.T) {
	d := &Driver{}
	if d.Name() != "vulkan" {
		t.Fatalf("Name() = %q, want %q", d.Name(), "vulkan")
	}
	if d.Kind() != driver.Vulkan {
		t.Fatalf("Kind() = %v, want %v", d.Kind(), driver.Vulkan)
	}
}

func TestVkBufferUsageTranslatesKnownBits(t *testing.T) {
	cases := []struct {
		usage driver.Usage
		want  vk.BufferUsageFlagBits
	}{
		{driver.UVertexData, vk.BufferUsageVertexBufferBit},
		{driver.UIndexData, vk.BufferUsageIndexBufferBit},
		{driver.UUniform, vk.BufferUsageUniformBufferBit},
	}
	for _, c := range cases {
		got := vkBufferUsage(c.usage)
		if vk.BufferUsageFlagBits(got)&c.want == 0 {
			t.Errorf("vkBufferUsage(%v) = %v, want bit %v set", c.usage, got, c.want)
		}
	}
}

func TestVkBufferUsageDefaultsToTransferWhenNoBitMatches(t *testing.T) {
	got := vk.BufferUsageFlags(vkBufferUsage(0))
	want := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
	if got != want {
		t.Fatalf("vkBufferUsage(0) = %v, want %v", got, want)
	}
}

func TestVkFormatRoundTripsKnownPixelFormats(t *testing.T) {
	cases := map[driver.PixelFmt]vk.Format{
		driver.RGBA8Unorm: vk.FormatR8g8b8a8Unorm,
		driver.BGRA8Unorm: vk.FormatB8g8r8a8Unorm,
		driver.Depth32Float: vk.FormatD32Sfloat,
	}
	for pf, want := range cases {
		if got := vkFormat(pf); got != want {
			t.Errorf("vkFormat(%v) = %v, want %v", pf, got, want)
		}
	}
}

func TestVkAspectSplitsColorAndDepthFormats(t *testing.T) {
	if vkAspect(driver.RGBA8Unorm) != vk.ImageAspectFlags(vk.ImageAspectColorBit) {
		t.Error("color format should report the color aspect")
	}
	got := vkAspect(driver.Depth24Stencil8)
	want := vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	if got != want {
		t.Errorf("vkAspect(Depth24Stencil8) = %v, want %v", got, want)
	}
}

func TestVkCullModeMapsAllThreeModes(t *testing.T) {
	if vkCullMode(driver.CullNone) != vk.CullModeNone {
		t.Error("CullNone should map to CullModeNone")
	}
	if vkCullMode(driver.CullFront) != vk.CullModeFrontBit {
		t.Error("CullFront should map to CullModeFrontBit")
	}
	if vkCullMode(driver.CullBack) != vk.CullModeBackBit {
		t.Error("CullBack should map to CullModeBackBit")
	}
}

func TestVkTopologyDefaultsToTriangleList(t *testing.T) {
	if vkTopology(driver.TTriangle) != vk.PrimitiveTopologyTriangleList {
		t.Error("TTriangle should map to PrimitiveTopologyTriangleList")
	}
	if vkTopology(driver.TLineStrip) != vk.PrimitiveTopologyLineStrip {
		t.Error("TLineStrip should map to PrimitiveTopologyLineStrip")
	}
}

func TestKindOfRoundTripsThroughWrapKind(t *testing.T) {
	err := driverErr(gerr.ResourceCreationFailed)
	kind, ok := KindOf(err)
	if !ok || kind != gerr.ResourceCreationFailed {
		t.Fatalf("KindOf(driverErr(ResourceCreationFailed)) = (%v, %v), want (%v, true)", kind, ok, gerr.ResourceCreationFailed)
	}
}
