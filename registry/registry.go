// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package registry implements the identity-keyed resource registry
// every backend embeds through backend.Base: six per-kind sets of
// live resources, each with an optional by-name side index.
//
// Keys are never reused within one registry's lifetime even after
// the keyed resource is destroyed, per the registry's liveness
// invariant. The teacher's internal/bitm growable bitmap tracks
// liveness and gives O(1) stats, but unlike gviegas/neo3's meshBuffer
// (which recycles freed bitmap ranges for new spans) this registry
// only ever grows its bitmaps: a freed slot is marked unset for
// stats purposes but is never handed out again.
package registry

import (
	"sync"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/internal/bitm"
)

// Kind identifies one of the registry's six resource sets.
type Kind int

// Resource kinds.
const (
	KindBuffer Kind = iota
	KindTexture
	KindSampler
	KindShader
	KindPipeline
	KindRenderTarget

	nKinds
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindSampler:
		return "sampler"
	case KindShader:
		return "shader"
	case KindPipeline:
		return "pipeline"
	case KindRenderTarget:
		return "render_target"
	default:
		return "unknown"
	}
}

// Key identifies a single live resource within one Kind's set, for
// the lifetime of the owning Registry.
type Key int64

type entry struct {
	obj  driver.Destroyer
	name string
}

type bucket struct {
	mu     sync.RWMutex
	live   bitm.Bitm[uint64]
	ever   int64
	byKey  map[Key]entry
	byName map[string]Key
}

// Stats summarizes one Kind's bucket.
type Stats struct {
	Live int
	Ever int // total keys ever allocated, including destroyed ones
}

// Registry is the per-device set of six identity-keyed resource
// buckets. It is safe for concurrent use.
type Registry struct {
	buckets [nKinds]*bucket
}

// New creates an empty Registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.buckets {
		r.buckets[i] = &bucket{
			byKey:  make(map[Key]entry),
			byName: make(map[string]Key),
		}
	}
	return r
}

// Insert registers obj under kind, optionally indexed by name (pass
// "" to skip the by-name index), and returns its new Key. Insert
// never reuses a previously issued Key, even one whose resource has
// since been destroyed.
func (r *Registry) Insert(kind Kind, name string, obj driver.Destroyer) Key {
	b := r.buckets[kind]
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.live.Grow(1)
	b.live.Set(idx)
	b.ever++
	key := Key(idx)
	b.byKey[key] = entry{obj: obj, name: name}
	if name != "" {
		b.byName[name] = key
	}
	return key
}

// Get returns the object registered under key, if it is still live.
func (r *Registry) Get(kind Kind, key Key) (driver.Destroyer, bool) {
	b := r.buckets[kind]
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.byKey[key]
	if !ok {
		return nil, false
	}
	return e.obj, true
}

// ByName looks up a resource registered under name within kind.
func (r *Registry) ByName(kind Kind, name string) (Key, bool) {
	b := r.buckets[kind]
	b.mu.RLock()
	defer b.mu.RUnlock()
	k, ok := b.byName[name]
	return k, ok
}

// Remove unregisters the resource at key. It is a
// no-op if key is not currently live. Remove does not call
// obj.Destroy(); the caller's device is responsible for that, since
// destruction order across kinds matters (spec §4.3, "deinit").
func (r *Registry) Remove(kind Kind, key Key) {
	b := r.buckets[kind]
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byKey[key]
	if !ok {
		return
	}
	delete(b.byKey, key)
	if e.name != "" {
		delete(b.byName, e.name)
	}
	b.live.Unset(int(key))
}

// Stats reports the current liveness stats for kind in O(1).
func (r *Registry) Stats(kind Kind) Stats {
	b := r.buckets[kind]
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		Live: b.live.Len() - b.live.Rem(),
		Ever: int(b.ever),
	}
}

// Keys returns every currently live key in kind, in no particular
// order. It is intended for device teardown, where every remaining
// resource must be visited and destroyed.
func (r *Registry) Keys(kind Kind) []Key {
	b := r.buckets[kind]
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Key, 0, len(b.byKey))
	for k := range b.byKey {
		out = append(out, k)
	}
	return out
}
