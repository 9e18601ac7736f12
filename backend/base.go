// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package backend provides the shared state every concrete backend
// embeds (C9): a resource registry, memory allocator, profiler,
// error logger, pipeline cache, and debug-group stack, plus
// convenience wrappers that operate on them so concrete backends
// never touch these subsystems' internals directly.
package backend

import (
	"sync"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/memory"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/profiler"
	"github.com/novaengine/gbal/registry"
)

// Base is embedded by every concrete backend's device type. It owns
// no native API handles of its own; it only coordinates the
// cross-cutting subsystems every backend needs regardless of which
// native API it wraps.
type Base struct {
	Name   string
	Kind   driver.BackendKind

	Registry *registry.Registry
	Memory   *memory.GeneralAllocator
	// Scratch is a per-frame bump allocator for transient, host-visible
	// staging bytes. BeginFrame resets it, so blocks handed out in one
	// frame must not be read after the next BeginFrame call.
	Scratch  *memory.LinearAllocator
	Profiler *profiler.Profiler
	Logger   *gerr.Logger
	Pipelines *pipelinecache.Cache

	mu         sync.Mutex
	debugStack []string
}

// NewBase constructs a Base with fresh registry, profiler, and
// pipeline cache instances, sized per the supplied memory capacity.
// logger may be shared across backends (the Manager typically owns
// one Logger per process); it must not be nil.
func NewBase(name string, kind driver.BackendKind, memCapacity int64, logger *gerr.Logger) *Base {
	scratchCap := memCapacity / 8
	if scratchCap < 1<<16 {
		scratchCap = 1 << 16
	}
	return &Base{
		Name:      name,
		Kind:      kind,
		Registry:  registry.New(),
		Memory:    memory.NewGeneral(memCapacity),
		Scratch:   memory.NewLinear(scratchCap),
		Profiler:  profiler.New(),
		Logger:    logger,
		Pipelines: pipelinecache.New(),
	}
}

// RegisterResource inserts obj into the registry under kind and an
// optional debug name, returning its key.
func (b *Base) RegisterResource(kind registry.Kind, name string, obj driver.Destroyer) registry.Key {
	return b.Registry.Insert(kind, name, obj)
}

// UnregisterResource removes the resource at key from the registry.
// It does not call obj.Destroy(); the concrete backend's
// destroy_<kind> entry point does that itself, in whatever order its
// native API requires.
func (b *Base) UnregisterResource(kind registry.Kind, key registry.Key) {
	b.Registry.Remove(kind, key)
}

// LogError records a fault through the shared logger, tagging it
// with this backend's Name.
func (b *Base) LogError(severity gerr.Severity, kind gerr.Kind, format string, args ...any) {
	rec := gerr.New(severity, kind, b.Name, b.currentDebugGroup(), format, args...)
	b.Logger.Log(rec)
}

// PushMarker pushes a profiler marker and the same name onto the
// debug-group stack, whose innermost entry LogError attaches to each
// record. It emits no native debug annotation.
func (b *Base) PushMarker(name string) *profiler.Marker {
	b.mu.Lock()
	b.debugStack = append(b.debugStack, name)
	b.mu.Unlock()
	return b.Profiler.PushMarker(name)
}

// PopMarker pops the innermost profiler marker and debug-group name.
func (b *Base) PopMarker() {
	b.mu.Lock()
	if n := len(b.debugStack); n > 0 {
		b.debugStack = b.debugStack[:n-1]
	}
	b.mu.Unlock()
	b.Profiler.PopMarker()
}

// currentDebugGroup returns the innermost open debug-group name, or
// "" if the stack is empty, for attaching to error records.
func (b *Base) currentDebugGroup() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.debugStack); n > 0 {
		return b.debugStack[n-1]
	}
	return ""
}

// DebugGroupDepth reports how many debug groups are currently open.
// An unmatched EndDebugGroup (depth already 0) is the caller's cue
// to surface InvalidOperation.
func (b *Base) DebugGroupDepth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.debugStack)
}
