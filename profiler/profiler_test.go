// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package profiler

import (
	"testing"
	"time"
)

func TestPushPopFoldsCountersIntoParent(t *testing.T) {
	p := New()
	p.BeginFrame()

	child := p.PushMarker("opaque_pass")
	child.AddCounters(Counters{DrawCalls: 3, Triangles: 120})
	p.PopMarker()

	dur := p.EndFrame()
	if dur < 0 {
		t.Fatalf("EndFrame duration = %v, want >= 0", dur)
	}

	hist := p.History()
	if len(hist) != 1 {
		t.Fatalf("History() length = %d, want 1", len(hist))
	}
	if hist[0].Counters.DrawCalls != 3 || hist[0].Counters.Triangles != 120 {
		t.Fatalf("root counters = %+v, want DrawCalls=3 Triangles=120", hist[0].Counters)
	}
}

func TestEndFrameWithoutBeginIsNoop(t *testing.T) {
	p := New()
	if got := p.EndFrame(); got != 0 {
		t.Fatalf("EndFrame() on unopened frame = %v, want 0", got)
	}
	if len(p.History()) != 0 {
		t.Fatal("expected no frame recorded")
	}
}

func TestFrameRingBounded(t *testing.T) {
	p := New()
	for i := 0; i < FrameRingSize+10; i++ {
		p.BeginFrame()
		p.EndFrame()
	}
	if n := len(p.History()); n != FrameRingSize {
		t.Fatalf("History() length = %d, want %d", n, FrameRingSize)
	}
}

func TestAverageFrameTime(t *testing.T) {
	p := New()
	if p.AverageFrameTime() != 0 {
		t.Fatal("AverageFrameTime() on empty ring should be 0")
	}

	p.BeginFrame()
	time.Sleep(time.Millisecond)
	p.EndFrame()

	if p.AverageFrameTime() <= 0 {
		t.Fatal("AverageFrameTime() should be positive after one frame")
	}
}

func TestDepthTracksNesting(t *testing.T) {
	p := New()
	p.BeginFrame()
	if p.Depth() != 1 {
		t.Fatalf("Depth() after BeginFrame = %d, want 1", p.Depth())
	}
	p.PushMarker("shadow_pass")
	if p.Depth() != 2 {
		t.Fatalf("Depth() after nested push = %d, want 2", p.Depth())
	}
	p.PopMarker()
	p.EndFrame()
	if p.Depth() != 0 {
		t.Fatalf("Depth() after EndFrame = %d, want 0", p.Depth())
	}
}
