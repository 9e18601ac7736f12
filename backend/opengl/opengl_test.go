// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package opengl

import (
	"io"
	"testing"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

// testGPU builds a GPU with a live Base but no real GL context,
// sufficient for exercising the lifecycle bookkeeping a CmdBuffer
// does through embedded logging, without requiring a window.
func testGPU() *GPU {
	logger := gerr.NewLogger(io.Discard, gerr.DefaultRingSize, false)
	return &GPU{Base: backend.NewBase("opengl", driver.OpenGL, 1<<20, logger)}
}

// These tests exercise pure translation logic and CmdBuffer lifecycle
// bookkeeping only: a GL context (and therefore a window or a driver)
// is not assumed to be present wherever this module is tested.

func TestDriverIdentity(t *testing.T) {
	d := &Driver{}
	if got := d.Name(); got != "opengl" {
		t.Errorf("Name() = %q, want %q", got, "opengl")
	}
	if got := d.Kind(); got != driver.OpenGL {
		t.Errorf("Kind() = %v, want %v", got, driver.OpenGL)
	}
}

func TestGlFormatRoundTripsKnownPixelFormats(t *testing.T) {
	cases := []struct {
		fmt  driver.PixelFmt
		ifmt int32
	}{
		{driver.RGBA8Unorm, gl.RGBA8},
		{driver.RGB8Unorm, gl.RGB8},
		{driver.RG8Unorm, gl.RG8},
		{driver.R8Unorm, gl.R8},
		{driver.Depth24Stencil8, gl.DEPTH24_STENCIL8},
		{driver.Depth32Float, gl.DEPTH_COMPONENT32F},
	}
	for _, c := range cases {
		ifmt, _, _ := glFormat(c.fmt)
		if ifmt != c.ifmt {
			t.Errorf("glFormat(%v) internalFormat = %#x, want %#x", c.fmt, ifmt, c.ifmt)
		}
	}
}

func TestGlFilterCoversAllSixCombinations(t *testing.T) {
	filters := []driver.Filter{driver.FilterNearest, driver.FilterLinear}
	mips := []driver.Filter{driver.FilterNoMipmap, driver.FilterNearest, driver.FilterLinear}
	seen := map[int32]bool{}
	for _, f := range filters {
		for _, m := range mips {
			seen[glFilter(f, m)] = true
		}
	}
	if len(seen) != 6 {
		t.Fatalf("glFilter produced %d distinct values, want 6", len(seen))
	}
}

func TestGlAddrMapsAllThreeModes(t *testing.T) {
	if got := glAddr(driver.AddrMirror); got != gl.MIRRORED_REPEAT {
		t.Errorf("glAddr(Mirror) = %#x, want %#x", got, gl.MIRRORED_REPEAT)
	}
	if got := glAddr(driver.AddrClamp); got != gl.CLAMP_TO_EDGE {
		t.Errorf("glAddr(Clamp) = %#x, want %#x", got, gl.CLAMP_TO_EDGE)
	}
	if got := glAddr(driver.AddrWrap); got != gl.REPEAT {
		t.Errorf("glAddr(Wrap) = %#x, want %#x", got, gl.REPEAT)
	}
}

func TestGlStageMapsKnownStages(t *testing.T) {
	cases := map[driver.Stage]uint32{
		driver.StageVertex:   gl.VERTEX_SHADER,
		driver.StageFragment: gl.FRAGMENT_SHADER,
		driver.StageGeometry: gl.GEOMETRY_SHADER,
	}
	for stage, want := range cases {
		if got := glStage(stage); got != want {
			t.Errorf("glStage(%v) = %#x, want %#x", stage, got, want)
		}
	}
}

func TestVboTargetSelectsIndexAndUniformBuffers(t *testing.T) {
	if got := vboTarget(driver.UIndexData); got != gl.ELEMENT_ARRAY_BUFFER {
		t.Errorf("vboTarget(UIndexData) = %#x, want ELEMENT_ARRAY_BUFFER", got)
	}
	if got := vboTarget(driver.UUniform); got != gl.UNIFORM_BUFFER {
		t.Errorf("vboTarget(UUniform) = %#x, want UNIFORM_BUFFER", got)
	}
	if got := vboTarget(driver.UVertexData); got != gl.ARRAY_BUFFER {
		t.Errorf("vboTarget(UVertexData) = %#x, want ARRAY_BUFFER", got)
	}
}

func TestGlCullFaceMapsFrontAndBack(t *testing.T) {
	if got := glCullFace(driver.CullFront); got != gl.FRONT {
		t.Errorf("glCullFace(CullFront) = %#x, want FRONT", got)
	}
	if got := glCullFace(driver.CullBack); got != gl.BACK {
		t.Errorf("glCullFace(CullBack) = %#x, want BACK", got)
	}
}

func TestCmdBufferLifecycleTransitions(t *testing.T) {
	cb := newCmdBuffer(testGPU())
	if cb.State() != driver.CBInitial {
		t.Fatalf("new CmdBuffer state = %v, want CBInitial", cb.State())
	}
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin() = %v, want nil", err)
	}
	if cb.State() != driver.CBRecording {
		t.Fatalf("state after Begin = %v, want CBRecording", cb.State())
	}
	if err := cb.End(); err != nil {
		t.Fatalf("End() = %v, want nil", err)
	}
	if cb.State() != driver.CBExecutable {
		t.Fatalf("state after End = %v, want CBExecutable", cb.State())
	}
	if err := cb.Reset(); err != nil {
		t.Fatalf("Reset() = %v, want nil", err)
	}
	if cb.State() != driver.CBInitial {
		t.Fatalf("state after Reset = %v, want CBInitial", cb.State())
	}
}

func TestCmdBufferBeginTwiceFails(t *testing.T) {
	cb := newCmdBuffer(testGPU())
	if err := cb.Begin(); err != nil {
		t.Fatalf("first Begin() = %v, want nil", err)
	}
	if err := cb.Begin(); err == nil {
		t.Fatal("second Begin() = nil, want an error")
	}
}

func TestCmdBufferEndWithOpenPassFails(t *testing.T) {
	cb := newCmdBuffer(testGPU())
	cb.Begin()
	cb.inPass = true
	if err := cb.End(); err == nil {
		t.Fatal("End() with an open pass = nil, want an error")
	}
}

func TestKindOfRoundTripsThroughWrapKind(t *testing.T) {
	err := driverErr(gerr.ShaderCompilationFailed)
	kind, ok := KindOf(err)
	if !ok || kind != gerr.ShaderCompilationFailed {
		t.Fatalf("KindOf(driverErr(ShaderCompilationFailed)) = (%v, %v), want (%v, true)", kind, ok, gerr.ShaderCompilationFailed)
	}
}
