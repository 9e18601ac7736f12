// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package backend

import (
	"io"
	"testing"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/registry"
)

type fakeBuffer struct{ destroyed bool }

func (f *fakeBuffer) Destroy() { f.destroyed = true }

func TestRegisterAndUnregisterResource(t *testing.T) {
	b := NewBase("test", driver.Software, 1<<20, gerr.NewLogger(io.Discard, 8, true))
	buf := &fakeBuffer{}
	key := b.RegisterResource(registry.KindBuffer, "staging", buf)

	got, ok := b.Registry.Get(registry.KindBuffer, key)
	if !ok || got != buf {
		t.Fatalf("Registry.Get() = %v, %v; want %v, true", got, ok, buf)
	}

	b.UnregisterResource(registry.KindBuffer, key)
	if _, ok := b.Registry.Get(registry.KindBuffer, key); ok {
		t.Fatal("resource still registered after UnregisterResource")
	}
}

func TestDebugGroupTracksMarkerStack(t *testing.T) {
	b := NewBase("test", driver.Software, 1<<20, gerr.NewLogger(io.Discard, 8, true))
	if b.DebugGroupDepth() != 0 {
		t.Fatal("depth should start at 0")
	}

	b.PushMarker("shadow_pass")
	if b.DebugGroupDepth() != 1 {
		t.Fatalf("depth after push = %d, want 1", b.DebugGroupDepth())
	}
	if got := b.currentDebugGroup(); got != "shadow_pass" {
		t.Fatalf("currentDebugGroup() = %q, want shadow_pass", got)
	}

	b.PopMarker()
	if b.DebugGroupDepth() != 0 {
		t.Fatalf("depth after pop = %d, want 0", b.DebugGroupDepth())
	}
}

func TestNewBaseProvidesScratchAllocator(t *testing.T) {
	b := NewBase("test", driver.Software, 1<<20, gerr.NewLogger(io.Discard, 8, true))
	if b.Scratch == nil {
		t.Fatal("Scratch allocator is nil")
	}
	blk, err := b.Scratch.Alloc(64, 1)
	if err != nil {
		t.Fatalf("Scratch.Alloc() error = %v", err)
	}
	if blk.Size != 64 {
		t.Fatalf("block size = %d, want 64", blk.Size)
	}
	b.Scratch.Reset()
	if s := b.Scratch.Stats(); s.Allocated != 64 || s.Freed != 64 {
		t.Fatalf("Scratch.Stats() after Reset = %+v, want {64 64}", s)
	}
}

func TestLogErrorTagsBackendName(t *testing.T) {
	logger := gerr.NewLogger(io.Discard, 8, true)
	b := NewBase("vulkan", driver.Vulkan, 1<<20, logger)

	b.LogError(gerr.Error, gerr.DeviceLost, "surface gone")
	last := logger.Last()
	if last == nil {
		t.Fatal("expected a logged record")
	}
	if last.Backend != "vulkan" {
		t.Fatalf("record.Backend = %q, want vulkan", last.Backend)
	}
	if last.Kind != gerr.DeviceLost {
		t.Fatalf("record.Kind = %v, want DeviceLost", last.Kind)
	}
}
