// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package memory

import "testing"

func TestLinearBumpAndReset(t *testing.T) {
	a := NewLinear(64)
	b1, err := a.Alloc(16, 1)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if b1.Offset != 0 {
		t.Fatalf("first block offset = %d, want 0", b1.Offset)
	}
	b2, err := a.Alloc(16, 1)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if b2.Offset != 16 {
		t.Fatalf("second block offset = %d, want 16", b2.Offset)
	}

	if _, err := a.Alloc(64, 1); err != ErrOutOfMemory {
		t.Fatalf("Alloc() over capacity error = %v, want ErrOutOfMemory", err)
	}

	a.Reset()
	b3, err := a.Alloc(16, 1)
	if err != nil || b3.Offset != 0 {
		t.Fatalf("Alloc() after Reset = %+v, %v; want offset 0", b3, err)
	}
}

func TestLinearMapUnmapInvariant(t *testing.T) {
	a := NewLinear(32)
	b, _ := a.Alloc(16, 1)

	if _, err := a.Map(b); err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if _, err := a.Map(b); err != ErrAlreadyMapped {
		t.Fatalf("second Map() error = %v, want ErrAlreadyMapped", err)
	}
	if err := a.Unmap(b); err != nil {
		t.Fatalf("Unmap() error = %v", err)
	}
	if err := a.Unmap(b); err != nil {
		t.Fatalf("second Unmap() error = %v, want nil (idempotent)", err)
	}
}

func TestPoolAllocFreeReuse(t *testing.T) {
	p := NewPool(256, 4)
	b1, err := p.Alloc(256, 1)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if err := p.Free(b1); err != nil {
		t.Fatalf("Free() error = %v", err)
	}
	b2, err := p.Alloc(256, 1)
	if err != nil {
		t.Fatalf("Alloc() after Free error = %v", err)
	}
	if b2.Offset != b1.Offset {
		t.Fatalf("pool did not reuse freed slot: first=%d second=%d", b1.Offset, b2.Offset)
	}
}

func TestPoolGrowsWhenExhausted(t *testing.T) {
	p := NewPool(64, 1)
	var blocks []*Block
	for i := 0; i < 70; i++ {
		b, err := p.Alloc(64, 1)
		if err != nil {
			t.Fatalf("Alloc() #%d error = %v", i, err)
		}
		blocks = append(blocks, b)
	}
	seen := make(map[int64]bool)
	for _, b := range blocks {
		if seen[b.Offset] {
			t.Fatalf("duplicate offset %d handed out", b.Offset)
		}
		seen[b.Offset] = true
	}
}

func TestGeneralFirstFitAndCoalesce(t *testing.T) {
	g := NewGeneral(1024)
	a, err := g.Alloc(256, 16)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	b, err := g.Alloc(256, 16)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if err := g.Free(a); err != nil {
		t.Fatalf("Free() error = %v", err)
	}
	if err := g.Free(b); err != nil {
		t.Fatalf("Free() error = %v", err)
	}
	// After freeing both blocks, the whole arena should again be
	// available as one allocation.
	c, err := g.Alloc(1024, 1)
	if err != nil {
		t.Fatalf("Alloc() after coalesce error = %v", err)
	}
	if c.Size != 1024 {
		t.Fatalf("Alloc() after coalesce size = %d, want 1024", c.Size)
	}
}

func TestDeviceLocalNeverMappable(t *testing.T) {
	d := NewDeviceLocal(4096)
	b, err := d.Alloc(512, 64)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	if _, err := d.Map(b); err != ErrNotHostVisible {
		t.Fatalf("Map() error = %v, want ErrNotHostVisible", err)
	}
}

func TestForeignBlockRejected(t *testing.T) {
	g := NewGeneral(128)
	d := NewDeviceLocal(128)
	b, _ := d.Alloc(32, 1)
	if err := g.Free(b); err != ErrForeignBlock {
		t.Fatalf("Free() on foreign block error = %v, want ErrForeignBlock", err)
	}
}

func TestGeneralStatsAllocatedMinusFreedIsLive(t *testing.T) {
	g := NewGeneral(1024)
	a, _ := g.Alloc(300, 1)
	_, _ = g.Alloc(200, 1)
	if s := g.Stats(); s.Allocated != 500 || s.Freed != 0 {
		t.Fatalf("Stats() = %+v, want {500 0}", s)
	}
	g.Free(a)
	s := g.Stats()
	if s.Allocated != 500 || s.Freed != 300 {
		t.Fatalf("Stats() after Free = %+v, want {500 300}", s)
	}
	if live := s.Allocated - s.Freed; live != 200 {
		t.Fatalf("live bytes = %d, want 200", live)
	}
}

func TestLinearStatsResetCountsAsFreed(t *testing.T) {
	a := NewLinear(64)
	a.Alloc(16, 1)
	a.Alloc(16, 1)
	if s := a.Stats(); s.Allocated != 32 || s.Freed != 0 {
		t.Fatalf("Stats() before Reset = %+v, want {32 0}", s)
	}
	a.Reset()
	if s := a.Stats(); s.Allocated != 32 || s.Freed != 32 {
		t.Fatalf("Stats() after Reset = %+v, want {32 32}", s)
	}
}

func TestPoolStatsTracksBlockSize(t *testing.T) {
	p := NewPool(64, 4)
	b, _ := p.Alloc(64, 1)
	p.Free(b)
	if s := p.Stats(); s.Allocated != 64 || s.Freed != 64 {
		t.Fatalf("Stats() = %+v, want {64 64}", s)
	}
}

func TestDeviceLocalStatsTracksReservations(t *testing.T) {
	d := NewDeviceLocal(4096)
	b, _ := d.Alloc(512, 64)
	if s := d.Stats(); s.Allocated != 512 || s.Freed != 0 {
		t.Fatalf("Stats() = %+v, want {512 0}", s)
	}
	d.Free(b)
	if s := d.Stats(); s.Freed != 512 {
		t.Fatalf("Stats() after Free = %+v, want Freed 512", s)
	}
}
