// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package memory

import "sync"

// LinearAllocator bump-allocates from a backing byte arena. It never
// reclaims individual blocks; the only way to reclaim space is
// Reset, which invalidates every outstanding Block. It is meant for
// per-frame transient allocations (e.g. upload staging).
type LinearAllocator struct {
	mu     sync.Mutex
	arena  []byte
	offset int64
	byteStats
}

// NewLinear creates a LinearAllocator with the given host-visible
// capacity in bytes.
func NewLinear(capacity int64) *LinearAllocator {
	return &LinearAllocator{arena: make([]byte, capacity)}
}

func (a *LinearAllocator) Kind() Kind { return Linear }

// Alloc bump-allocates size bytes aligned to alignment (must be a
// power of two, or 1 for no alignment requirement).
func (a *LinearAllocator) Alloc(size, alignment int64) (*Block, error) {
	if alignment != 1 && !isPow2(alignment) {
		return nil, ErrInvalidAlignment
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	start := align(a.offset, alignment)
	end := start + size
	if end > int64(len(a.arena)) {
		return nil, ErrOutOfMemory
	}
	a.offset = end
	a.trackAlloc(size)
	return &Block{Offset: start, Size: size, Origin: Linear}, nil
}

// Free is a no-op for LinearAllocator: individual blocks cannot be
// reclaimed, only the whole arena via Reset. It returns nil so
// callers can treat all allocator kinds uniformly at teardown.
func (a *LinearAllocator) Free(b *Block) error { return nil }

// Reset reclaims the entire arena, invalidating every block handed
// out since the last Reset (or since creation). The reclaimed bytes
// count as freed, since Reset is this allocator's only reclamation
// path.
func (a *LinearAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trackFree(a.offset)
	a.offset = 0
}

// Stats reports the allocator's cumulative byte traffic.
func (a *LinearAllocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// Map returns the byte slice backing b. The slice remains valid
// until the next Reset.
func (a *LinearAllocator) Map(b *Block) ([]byte, error) {
	if b.Origin != Linear {
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
func (a *LinearAllocator) Unmap(b *Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mapped = false
	return nil
}
