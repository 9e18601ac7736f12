// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import (
	"testing"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

func newTestGPU(t *testing.T) *GPU {
	t.Helper()
	d := &Driver{}
	gpuAny, err := d.Open(nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return gpuAny.(*GPU)
}

func TestDriverProbeAlwaysAvailable(t *testing.T) {
	d := &Driver{}
	if !d.Probe() {
		t.Fatal("software backend must always probe available")
	}
	if d.Kind() != driver.Software {
		t.Fatalf("Kind() = %v, want Software", d.Kind())
	}
}

func TestBeginEndFrameGuardsDoubleOpen(t *testing.T) {
	g := newTestGPU(t)
	if err := g.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := g.BeginFrame(); err == nil {
		t.Fatal("expected error on nested BeginFrame")
	}
	if err := g.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if err := g.EndFrame(); err == nil {
		t.Fatal("expected error on unmatched EndFrame")
	}
}

func TestBufferRoundTrip(t *testing.T) {
	g := newTestGPU(t)
	buf, err := g.NewBuffer(&driver.BufferDesc{Size: 64, Usage: driver.UVertexData, DebugName: "vtx"})
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	b := buf.(*Buffer)
	if b.Size() != 64 {
		t.Fatalf("Size() = %d, want 64", b.Size())
	}
	if !b.Visible() {
		t.Fatal("software buffers must always be host-visible")
	}
}

func TestCmdBufferEndPassOutsidePassFails(t *testing.T) {
	g := newTestGPU(t)
	cbAny, err := g.NewCmdBuffer()
	if err != nil {
		t.Fatalf("NewCmdBuffer: %v", err)
	}
	cb := cbAny.(*CmdBuffer)
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cb.Draw(3, 1, 0, 0)
	if err := cb.EndPass(); err == nil {
		t.Fatal("EndPass outside a render pass must fail")
	} else if kind, ok := KindOf(err); !ok || kind != gerr.RenderPassNotInProgress {
		t.Fatalf("KindOf(err) = %v, %v, want RenderPassNotInProgress", kind, ok)
	}
}

func TestCmdBufferDoubleBeginPassFails(t *testing.T) {
	g := newTestGPU(t)
	cbAny, _ := g.NewCmdBuffer()
	cb := cbAny.(*CmdBuffer)
	_ = cb.Begin()
	if err := cb.BeginPass(nil, nil, nil); err != nil {
		t.Fatalf("BeginPass: %v", err)
	}
	if err := cb.BeginPass(nil, nil, nil); err == nil {
		t.Fatal("nested BeginPass must fail")
	} else if kind, _ := KindOf(err); kind != gerr.RenderPassInProgress {
		t.Fatalf("KindOf(err) = %v, want RenderPassInProgress", kind)
	}
}

func TestCmdBufferDoubleBeginFails(t *testing.T) {
	g := newTestGPU(t)
	cbAny, _ := g.NewCmdBuffer()
	cb := cbAny.(*CmdBuffer)
	if err := cb.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := cb.Begin(); err == nil {
		t.Fatal("Begin called twice must fail")
	} else if kind, _ := KindOf(err); kind != gerr.InvalidCommandBuffer {
		t.Fatalf("KindOf(err) = %v, want InvalidCommandBuffer", kind)
	}
}

func TestCmdBufferStateMachine(t *testing.T) {
	g := newTestGPU(t)
	cbAny, _ := g.NewCmdBuffer()
	cb := cbAny.(*CmdBuffer)

	if cb.State() != driver.CBInitial {
		t.Fatalf("initial state = %v, want CBInitial", cb.State())
	}
	_ = cb.Begin()
	if cb.State() != driver.CBRecording {
		t.Fatalf("state after Begin = %v, want CBRecording", cb.State())
	}
	_ = cb.BeginPass(nil, nil, nil)
	cb.SetPipeline(nil)
	cb.Draw(3, 1, 0, 0)
	_ = cb.EndPass()
	if err := cb.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if cb.State() != driver.CBExecutable {
		t.Fatalf("state after End = %v, want CBExecutable", cb.State())
	}

	ch := make(chan error, 1)
	g.Commit([]driver.CmdBuffer{cb}, ch)
	if err := <-ch; err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if cb.State() != driver.CBInitial {
		t.Fatalf("state after Commit = %v, want CBInitial", cb.State())
	}
}

func TestCmdBufferEndWithUnclosedPassFails(t *testing.T) {
	g := newTestGPU(t)
	cbAny, _ := g.NewCmdBuffer()
	cb := cbAny.(*CmdBuffer)
	_ = cb.Begin()
	_ = cb.BeginPass(nil, nil, nil)
	if err := cb.End(); err == nil {
		t.Fatal("End with an unclosed render pass must fail")
	}
}

func TestCmdBufferResetDiscardsRecordedOps(t *testing.T) {
	g := newTestGPU(t)
	cbAny, _ := g.NewCmdBuffer()
	cb := cbAny.(*CmdBuffer)
	_ = cb.Begin()
	_ = cb.BeginPass(nil, nil, nil)
	cb.Draw(3, 1, 0, 0)
	_ = cb.EndPass()
	if err := cb.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if cb.State() != driver.CBInitial {
		t.Fatalf("state after Reset = %v, want CBInitial", cb.State())
	}
	if len(cb.ops) != 0 {
		t.Fatalf("Reset must discard recorded ops, got %d remaining", len(cb.ops))
	}
}

func TestDrawUpdatesProfilerCounters(t *testing.T) {
	g := newTestGPU(t)
	_ = g.BeginFrame()
	cbAny, _ := g.NewCmdBuffer()
	cb := cbAny.(*CmdBuffer)
	_ = cb.Begin()
	_ = cb.BeginPass(nil, nil, nil)
	cb.Draw(6, 2, 0, 0)
	_ = cb.EndPass()
	_ = cb.End()

	ch := make(chan error, 1)
	g.Commit([]driver.CmdBuffer{cb}, ch)
	<-ch
	frameTime := g.Profiler.EndFrame()
	if frameTime < 0 {
		t.Fatal("frame time must not be negative")
	}
	hist := g.Profiler.History()
	if len(hist) != 1 || hist[0].Counters.DrawCalls != 1 || hist[0].Counters.Vertices != 12 || hist[0].Counters.Triangles != 4 {
		t.Fatalf("frame counters = %+v, want DrawCalls=1 Vertices=12 Triangles=4", hist)
	}
}

func TestPipelineCacheReturnsSameObject(t *testing.T) {
	g := newTestGPU(t)
	state := &driver.GraphState{DebugName: "opaque"}
	p1, err := g.NewPipeline(state)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	p2, err := g.NewPipeline(state)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p1 != p2 {
		t.Fatal("identical GraphState must hit the pipeline cache")
	}
}

func TestDeinitDestroysAllResources(t *testing.T) {
	g := newTestGPU(t)
	_, err := g.NewBuffer(&driver.BufferDesc{Size: 16, DebugName: "b"})
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	g.Deinit()
	if len(g.Registry.Keys(registry.KindBuffer)) != 0 {
		t.Fatal("Deinit must leave the registry empty")
	}
}
