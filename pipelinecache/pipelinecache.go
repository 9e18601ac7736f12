// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package pipelinecache implements the pipeline cache: a hash-keyed
// map from a canonicalized pipeline descriptor to a previously
// created Pipeline object. A cache hit returns the exact same
// Pipeline instance; the cache never evicts until the owning device
// tears it down.
//
// Keys are FNV-1a over the descriptor's canonicalized byte encoding,
// following the whole example corpus's habit of hashing hot
// structural data with a standard, well-known function rather than
// reaching for a third-party hashing library.
package pipelinecache

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"sync"

	"github.com/novaengine/gbal/driver"
)

// Key is a 64-bit FNV-1a digest of a canonicalized pipeline
// descriptor.
type Key uint64

// HashGraphState computes the cache key for a graphics pipeline
// descriptor. Shader and render-pass identity participate in the
// hash by pointer value, since two distinct Shader objects must
// never collide even if their source happened to match; all other
// fields participate by value.
func HashGraphState(s *driver.GraphState) Key {
	h := fnv.New64a()
	writePtr(h, s.VertexShader)
	writePtr(h, s.FragmentShader)
	writePtr(h, s.GeometryShader)

	for _, v := range s.VertexIn {
		writeInt(h, int64(v.Format))
		writeInt(h, int64(v.Stride))
	}
	writeInt(h, int64(s.Topology))
	writeInt(h, int64(s.CullMode))
	writeBool(h, s.FrontCCW)
	writeBool(h, s.Wireframe)
	writeInt(h, int64(s.SampleCount))

	for _, b := range s.Blend {
		writeBool(h, b.Enabled)
		writeInt(h, int64(b.SrcColor))
		writeInt(h, int64(b.DstColor))
		writeInt(h, int64(b.ColorOp))
		writeInt(h, int64(b.SrcAlpha))
		writeInt(h, int64(b.DstAlpha))
		writeInt(h, int64(b.AlphaOp))
		writeInt(h, int64(b.WriteMask))
	}

	writeBool(h, s.DepthStencil.DepthTestEnabled)
	writeBool(h, s.DepthStencil.DepthWriteEnabled)
	writeInt(h, int64(s.DepthStencil.DepthFunc))
	writeBool(h, s.DepthStencil.StencilEnabled)

	writePtr(h, s.RenderPass)
	writeInt(h, int64(s.Subpass))

	return Key(h.Sum64())
}

// HashCompState computes the cache key for a compute pipeline
// descriptor.
func HashCompState(s *driver.CompState) Key {
	h := fnv.New64a()
	writePtr(h, s.ComputeShader)
	return Key(h.Sum64())
}

func writeInt(h hash.Hash64, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

func writeBool(h hash.Hash64, b bool) {
	if b {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

// writePtr folds a possibly-nil interface value's identity into the
// hash via its %p representation, without ever dereferencing it.
// This is how shader and render-pass identity participate in the
// pipeline descriptor hash.
func writePtr(h hash.Hash64, d any) {
	fmt.Fprintf(h, "%p", d)
}

// Cache maps descriptor keys to previously created pipelines. It
// never evicts entries on its own; entries are removed only when the
// owning device explicitly invalidates them at teardown.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]driver.Pipeline
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]driver.Pipeline)}
}

// Lookup returns the pipeline previously stored under key, if any.
func (c *Cache) Lookup(key Key) (driver.Pipeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

// GetOrCreate returns the pipeline for key if present; otherwise it
// calls create, stores the result under key, and returns it. If two
// goroutines race to create the same key, the first to store wins:
// the loser receives the stored pipeline with hit set to true, and
// the pipeline its own create call built is not returned.
func (c *Cache) GetOrCreate(key Key, create func() (driver.Pipeline, error)) (p driver.Pipeline, hit bool, err error) {
	c.mu.RLock()
	p, hit = c.entries[key]
	c.mu.RUnlock()
	if hit {
		return p, true, nil
	}

	built, err := create()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, true, nil
	}
	c.entries[key] = built
	return built, false, nil
}

// Invalidate removes every entry from the cache, returning the
// removed pipelines so the caller (the owning device, at teardown)
// can destroy them.
func (c *Cache) Invalidate() []driver.Pipeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]driver.Pipeline, 0, len(c.entries))
	for _, p := range c.entries {
		out = append(out, p)
	}
	c.entries = make(map[Key]driver.Pipeline)
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
