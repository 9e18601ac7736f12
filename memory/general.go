// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package memory

import "sync"

type freeRange struct {
	offset, size int64
}

// GeneralAllocator is a first-fit, variable-size, host-visible
// allocator backed by a fixed arena. Adjacent free ranges are
// coalesced on Free to limit fragmentation.
type GeneralAllocator struct {
	mu    sync.Mutex
	arena []byte
	free  []freeRange
	byteStats
}

// NewGeneral creates a GeneralAllocator over a host-visible arena of
// the given capacity in bytes.
func NewGeneral(capacity int64) *GeneralAllocator {
	return &GeneralAllocator{
		arena: make([]byte, capacity),
		free:  []freeRange{{offset: 0, size: capacity}},
	}
}

func (a *GeneralAllocator) Kind() Kind { return General }

// Alloc finds the first free range able to hold size bytes aligned
// to alignment, splitting it if it is larger than needed.
func (a *GeneralAllocator) Alloc(size, alignment int64) (*Block, error) {
	if alignment != 1 && !isPow2(alignment) {
		return nil, ErrInvalidAlignment
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, r := range a.free {
		start := align(r.offset, alignment)
		pad := start - r.offset
		if size+pad > r.size {
			continue
		}
		end := start + size
		rangeEnd := r.offset + r.size

		a.free = append(a.free[:i], a.free[i+1:]...)
		if pad > 0 {
			a.free = append(a.free, freeRange{offset: r.offset, size: pad})
		}
		if end < rangeEnd {
			a.free = append(a.free, freeRange{offset: end, size: rangeEnd - end})
		}
		a.trackAlloc(size)
		return &Block{Offset: start, Size: size, Origin: General}, nil
	}
	return nil, ErrOutOfMemory
}

// Stats reports the allocator's cumulative byte traffic.
func (a *GeneralAllocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// Free returns b's range to the free list, coalescing with any
// adjacent free ranges.
func (a *GeneralAllocator) Free(b *Block) error {
	if b.Origin != General {
		return ErrForeignBlock
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.free = append(a.free, freeRange{offset: b.Offset, size: b.Size})
	a.coalesceLocked()
	a.trackFree(b.Size)
	return nil
}

func (a *GeneralAllocator) coalesceLocked() {
	if len(a.free) < 2 {
		return
	}
	for i := 0; i < len(a.free); i++ {
		for j := i + 1; j < len(a.free); j++ {
			ri, rj := a.free[i], a.free[j]
			switch {
			case ri.offset+ri.size == rj.offset:
				a.free[i].size += rj.size
				a.free = append(a.free[:j], a.free[j+1:]...)
				j = i
			case rj.offset+rj.size == ri.offset:
				a.free[i].offset = rj.offset
				a.free[i].size += rj.size
				a.free = append(a.free[:j], a.free[j+1:]...)
				j = i
			}
		}
	}
}

// Map returns the byte slice backing b.
func (a *GeneralAllocator) Map(b *Block) ([]byte, error) {
	if b.Origin != General {
		return nil, ErrForeignBlock
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapped {
		return nil, ErrAlreadyMapped
	}
	b.mapped = true
	return a.arena[b.Offset : b.Offset+b.Size], nil
}

// Unmap clears b's mapped flag. Unmapping an already-unmapped block
// is a no-op (spec §4.8, "unmapping is idempotent").
func (a *GeneralAllocator) Unmap(b *Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mapped = false
	return nil
}
