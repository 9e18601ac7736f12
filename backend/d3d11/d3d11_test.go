// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

package d3d11

import (
	"io"
	"testing"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// testGPU builds a GPU with a live Base but no real D3D11 device,
// sufficient for exercising CmdBuffer lifecycle bookkeeping through
// embedded logging, without requiring a Direct3D 11 device or a GPU.
func testGPU() *GPU {
	logger := gerr.NewLogger(io.Discard, gerr.DefaultRingSize, false)
	return &GPU{Base: backend.NewBase("d3d11", driver.D3D11, 1<<20, logger)}
}

// These tests exercise pure translation logic and lifecycle
// bookkeeping only: a Direct3D device is not assumed to be present
// wherever this module is tested.

func TestDriverIdentity(t *testing.T) {
	d := &Driver{}
	if got := d.Name(); got != "d3d11" {
		t.Errorf("Name() = %q, want %q", got, "d3d11")
	}
	if got := d.Kind(); got != driver.D3D11 {
		t.Errorf("Kind() = %v, want %v", got, driver.D3D11)
	}
}

func TestBindFlagsCoversEveryUsageBit(t *testing.T) {
	cases := []struct {
		u    driver.Usage
		want uint32
	}{
		{driver.UVertexData, bindVertexBuffer},
		{driver.UIndexData, bindIndexBuffer},
		{driver.UUniform, bindConstantBuffer},
		{driver.USampled, bindShaderResource},
		{driver.URenderTarget, bindRenderTarget},
		{driver.UDepthStencil, bindDepthStencil},
	}
	for _, c := range cases {
		if got := d3dBindFlags(c.u); got != c.want {
			t.Errorf("d3dBindFlags(%v) = %#x, want %#x", c.u, got, c.want)
		}
	}
}

func TestBindFlagsFallsBackToVertexBufferWhenNoBitsSet(t *testing.T) {
	if got := d3dBindFlags(driver.Usage(0)); got != bindVertexBuffer {
		t.Errorf("d3dBindFlags(0) = %#x, want %#x (vertex buffer fallback)", got, bindVertexBuffer)
	}
}

func TestResourceUsageMapsMemoryClasses(t *testing.T) {
	cases := []struct {
		c         driver.MemoryClass
		usage     uint32
		cpuAccess uint32
	}{
		{driver.DeviceLocal, usageDefault, 0},
		{driver.HostVisible, usageDynamic, cpuAccessWrite},
		{driver.HostCoherent, usageDynamic, cpuAccessWrite},
		{driver.HostCached, usageStaging, cpuAccessRead},
	}
	for _, c := range cases {
		u, a := d3dResourceUsage(c.c)
		if u != c.usage || a != c.cpuAccess {
			t.Errorf("d3dResourceUsage(%v) = (%v, %v), want (%v, %v)", c.c, u, a, c.usage, c.cpuAccess)
		}
	}
}

func TestFormatRoundTripsKnownPixelFormats(t *testing.T) {
	cases := []struct {
		fmt driver.PixelFmt
		dxgi uint32
	}{
		{driver.RGBA8Unorm, fmtR8G8B8A8Unorm},
		{driver.BGRA8Unorm, fmtB8G8R8A8Unorm},
		{driver.R8Unorm, fmtR8Unorm},
		{driver.RG8Unorm, fmtR8G8Unorm},
		{driver.Depth24Stencil8, fmtD24UnormS8Uint},
		{driver.Depth32Float, fmtD32Float},
	}
	for _, c := range cases {
		if got := d3dFormat(c.fmt); got != c.dxgi {
			t.Errorf("d3dFormat(%v) = %v, want %v", c.fmt, got, c.dxgi)
		}
	}
}

func TestCullModeMapsAllThreeModes(t *testing.T) {
	cases := []struct {
		c    driver.CullMode
		want uint32
	}{
		{driver.CullNone, cullNone},
		{driver.CullFront, cullFront},
		{driver.CullBack, cullBack},
	}
	for _, c := range cases {
		if got := cullMode(c.c); got != c.want {
			t.Errorf("cullMode(%v) = %v, want %v", c.c, got, c.want)
		}
	}
}

func TestFillModeSelectsWireframeOrSolid(t *testing.T) {
	if got := fillMode(true); got != fillWireframe {
		t.Errorf("fillMode(true) = %v, want fillWireframe", got)
	}
	if got := fillMode(false); got != fillSolid {
		t.Errorf("fillMode(false) = %v, want fillSolid", got)
	}
}

func TestCmpFuncCoversAllEightComparisons(t *testing.T) {
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
		if got := cmpFunc(c.f); got != c.want {
			t.Errorf("cmpFunc(%v) = %v, want %v", c.f, got, c.want)
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
		if got := blendFactor(c.f); got != c.want {
			t.Errorf("blendFactor(%v) = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestTopologyMapsKnownPrimitives(t *testing.T) {
	cases := []struct {
		t    driver.Topology
		want uint32
	}{
		{driver.TTriangle, primitiveTopologyTriangleList},
		{driver.TTriangleStrip, primitiveTopologyTriangleStrip},
		{driver.TLine, primitiveTopologyLineList},
		{driver.TLineStrip, primitiveTopologyLineList},
		{driver.TPoint, primitiveTopologyPointList},
	}
	for _, c := range cases {
		if got := d3dTopology(c.t); got != c.want {
			t.Errorf("d3dTopology(%v) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestAddrModeMapsAllThreeModes(t *testing.T) {
	cases := []struct {
		m    driver.AddrMode
		want uint32
	}{
		{driver.AddrWrap, 1},
		{driver.AddrMirror, 2},
		{driver.AddrClamp, 3},
	}
	for _, c := range cases {
		if got := d3dAddr(c.m); got != c.want {
			t.Errorf("d3dAddr(%v) = %v, want %v", c.m, got, c.want)
		}
	}
}

func TestCmdBufferLifecycleTransitions(t *testing.T) {
	cb := newCmdBuffer(testGPU())
	if got := cb.State(); got != driver.CBInitial {
		t.Fatalf("initial state = %v, want CBInitial", got)
	}
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if got := cb.State(); got != driver.CBRecording {
		t.Fatalf("state after Begin = %v, want CBRecording", got)
	}
	if err := cb.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	if got := cb.State(); got != driver.CBExecutable {
		t.Fatalf("state after End = %v, want CBExecutable", got)
	}
	if err := cb.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if got := cb.State(); got != driver.CBInitial {
		t.Fatalf("state after Reset = %v, want CBInitial", got)
	}
}

func TestCmdBufferBeginTwiceFails(t *testing.T) {
	cb := newCmdBuffer(testGPU())
	if err := cb.Begin(); err != nil {
		t.Fatalf("first Begin() error: %v", err)
	}
	err := cb.Begin()
	if err == nil {
		t.Fatal("second Begin() on a recording buffer: want error, got nil")
	}
	if kind, _ := KindOf(err); kind != gerr.InvalidCommandBuffer {
		t.Errorf("KindOf(err) = %v, want InvalidCommandBuffer", kind)
	}
}

func TestCmdBufferEndWithOpenPassFails(t *testing.T) {
	cb := newCmdBuffer(testGPU())
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := cb.BeginPass(nil, nil, nil); err != nil {
		t.Fatalf("BeginPass() error: %v", err)
	}
	err := cb.End()
	if err == nil {
		t.Fatal("End() with an open pass: want error, got nil")
	}
	if kind, _ := KindOf(err); kind != gerr.RenderPassInProgress {
		t.Errorf("KindOf(err) = %v, want RenderPassInProgress", kind)
	}
}

func TestKindOfRoundTripsThroughWrapKind(t *testing.T) {
	err := driverErr(gerr.ResourceCreationFailed)
	kind, ok := KindOf(err)
	if !ok || kind != gerr.ResourceCreationFailed {
		t.Errorf("KindOf(driverErr(ResourceCreationFailed)) = (%v, %v), want (ResourceCreationFailed, true)", kind, ok)
	}
}
