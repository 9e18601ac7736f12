// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package memory

import "sync"

// DeviceLocalAllocator tracks address space for memory that is never
// host-mappable (spec §3, "a buffer advertised host-visible must
// support mapping" implies the converse for device-local memory: it
// must not be mappable). It reuses the same first-fit bookkeeping as
// GeneralAllocator but holds no backing bytes, since the actual
// storage lives entirely on the GPU and is opaque to the core.
type DeviceLocalAllocator struct {
	mu       sync.Mutex
	capacity int64
	free     []freeRange
	byteStats
}

// NewDeviceLocal creates a DeviceLocalAllocator tracking an address
// space of the given capacity in bytes.
func NewDeviceLocal(capacity int64) *DeviceLocalAllocator {
	return &DeviceLocalAllocator{
		capacity: capacity,
		free:     []freeRange{{offset: 0, size: capacity}},
	}
}

func (a *DeviceLocalAllocator) Kind() Kind { return DeviceLocal }

// Alloc reserves size bytes aligned to alignment within the tracked
// address space.
func (a *DeviceLocalAllocator) Alloc(size, alignment int64) (*Block, error) {
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
		return &Block{Offset: start, Size: size, Origin: DeviceLocal}, nil
	}
	return nil, ErrOutOfMemory
}

// Free releases b's reserved range back to the tracked address
// space.
func (a *DeviceLocalAllocator) Free(b *Block) error {
	if b.Origin != DeviceLocal {
		return ErrForeignBlock
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, freeRange{offset: b.Offset, size: b.Size})
	a.trackFree(b.Size)
	return nil
}

// Stats reports the allocator's cumulative byte traffic.
func (a *DeviceLocalAllocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// Map always fails: device-local memory is never host-visible.
func (a *DeviceLocalAllocator) Map(b *Block) ([]byte, error) {
	return nil, ErrNotHostVisible
}
