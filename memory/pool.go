// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package memory

import (
	"sync"

	"github.com/novaengine/gbal/internal/bitm"
)

// PoolAllocator hands out fixed-size blocks from a backing arena,
// tracking free slots with a growable bitmap for O(1) alloc/free.
// It is meant for uniformly sized resources allocated and freed at
// high frequency (e.g. per-draw uniform blocks).
type PoolAllocator struct {
	mu        sync.Mutex
	blockSize int64
	arena     []byte
	free      bitm.Bitm[uint64]
	byteStats
}

// NewPool creates a PoolAllocator whose arena starts with capacity
// blocks of blockSize bytes each. The arena grows by further
// word-sized chunks (64 blocks) if Alloc runs out of free slots.
func NewPool(blockSize int64, capacity int) *PoolAllocator {
	p := &PoolAllocator{blockSize: blockSize}
	nwords := (capacity + 63) / 64
	if nwords < 1 {
		nwords = 1
	}
	p.growWordsLocked(nwords)
	return p
}

func (p *PoolAllocator) Kind() Kind { return Pool }

func (p *PoolAllocator) growWordsLocked(nwords int) {
	if nwords <= 0 {
		nwords = 1
	}
	p.free.Grow(nwords)
	p.arena = append(p.arena, make([]byte, int64(nwords*64)*p.blockSize)...)
}

// Alloc returns a block of exactly blockSize bytes. size must equal
// the pool's configured blockSize; alignment is ignored since every
// slot is already blockSize-aligned within the arena.
func (p *PoolAllocator) Alloc(size, alignment int64) (*Block, error) {
	if size > p.blockSize {
		return nil, ErrOutOfMemory
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.free.Search()
	if !ok {
		p.growWordsLocked(p.free.Len()/64 + 1)
		idx, ok = p.free.Search()
		if !ok {
			return nil, ErrOutOfMemory
		}
	}
	p.free.Set(idx)
	p.trackAlloc(p.blockSize)
	return &Block{Offset: int64(idx) * p.blockSize, Size: p.blockSize, Origin: Pool}, nil
}

// Free returns b's slot to the pool.
func (p *PoolAllocator) Free(b *Block) error {
	if b.Origin != Pool {
		return ErrForeignBlock
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := int(b.Offset / p.blockSize)
	p.free.Unset(idx)
	p.trackFree(p.blockSize)
	return nil
}

// Stats reports the allocator's cumulative byte traffic.
func (p *PoolAllocator) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Map returns the byte slice backing b.
func (p *PoolAllocator) Map(b *Block) ([]byte, error) {
	if b.Origin != Pool {
		return nil, ErrForeignBlock
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapped {
		return nil, ErrAlreadyMapped
	}
	b.mapped = true
	return p.arena[b.Offset : b.Offset+b.Size], nil
}

// Unmap clears b's mapped flag. Unmapping an already-unmapped block
// is a no-op (spec §4.8, "unmapping is idempotent").
func (p *PoolAllocator) Unmap(b *Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mapped = false
	return nil
}
