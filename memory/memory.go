// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package memory implements the four allocator strategies GBAL's
// memory subsystem exposes to backends: linear (bump, reset-only),
// pool (fixed-block, O(1) alloc/free), general (first-fit,
// variable-size, host-visible), and device-local (first-fit,
// variable-size, never host-mappable).
//
// Every strategy returns the same opaque MemoryBlock record so that
// upper layers never need to know which allocator produced a given
// block, only whether it is host-visible.
package memory

import (
	"errors"
	"sync"
)

// Kind identifies which allocator strategy produced a Block.
type Kind int

// Allocator kinds.
const (
	Linear Kind = iota
	Pool
	General
	DeviceLocal
)

func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Pool:
		return "pool"
	case General:
		return "general"
	case DeviceLocal:
		return "device_local"
	default:
		return "unknown"
	}
}

// Errors returned by the allocator strategies.
var (
	ErrOutOfMemory      = errors.New("memory: allocator exhausted")
	ErrInvalidAlignment = errors.New("memory: alignment must be a power of two")
	ErrAlreadyMapped    = errors.New("memory: block already mapped")
	ErrNotHostVisible   = errors.New("memory: block is not host-visible")
	ErrForeignBlock     = errors.New("memory: block does not belong to this allocator")
)

// Block is the opaque record every allocator strategy returns:
// {ptr_or_offset, size, origin_allocator, mapped_flag} (spec §3).
type Block struct {
	Offset int64
	Size   int64
	Origin Kind

	mu     sync.Mutex
	mapped bool
}

// Mapped reports whether the block is currently mapped.
func (b *Block) Mapped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mapped
}

func align(v, a int64) int64 {
	if a <= 0 {
		return v
	}
	return (v + a - 1) &^ (a - 1)
}

func isPow2(a int64) bool { return a > 0 && a&(a-1) == 0 }

// Allocator is implemented by every strategy.
type Allocator interface {
	Alloc(size, alignment int64) (*Block, error)
	Free(b *Block) error
	Kind() Kind
}

// Stats reports an allocator's cumulative byte traffic. Both fields
// only grow, so Allocated-Freed is always the allocator's current
// live byte count.
type Stats struct {
	Allocated int64
	Freed     int64
}

// byteStats is embedded by each allocator to accumulate Stats.
// trackAlloc/trackFree are called with the allocator's own mutex
// already held, so byteStats itself needs no locking of its own.
type byteStats struct {
	allocated int64
	freed     int64
}

func (s *byteStats) trackAlloc(n int64) { s.allocated += n }

func (s *byteStats) trackFree(n int64) { s.freed += n }

func (s *byteStats) snapshot() Stats {
	return Stats{Allocated: s.allocated, Freed: s.freed}
}
