// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package caps implements the capability probe: it enumerates which
// backends the running build supports and the current host actually
// advertises as usable, without leaving any partially initialized
// device, context, or window behind on the failure path.
//
// The probe builds directly on the driver package's registry
// (driver.Drivers), generalizing gviegas/neo3's single-driver
// selection into an ordered, multi-backend survey.
package caps

import "github.com/novaengine/gbal/driver"

// defaultOrder is the preferred-first backend ordering used when the
// Manager does not override it (spec §4.1).
var defaultOrder = []driver.BackendKind{
	driver.Vulkan,
	driver.D3D12,
	driver.Metal,
	driver.D3D11,
	driver.WebGPU,
	driver.OpenGL,
	driver.OpenGLES,
	driver.Software,
}

// DefaultOrder returns a copy of the default preferred-first backend
// ordering.
func DefaultOrder() []driver.BackendKind {
	out := make([]driver.BackendKind, len(defaultOrder))
	copy(out, defaultOrder)
	return out
}

// Entry is one backend's probe result.
type Entry struct {
	Kind         driver.BackendKind
	Name         string
	Available    bool
	Capabilities driver.Capabilities
}

// AvailableBackends probes registered drivers and returns one Entry
// per kind in order that has a registered driver (the driver
// driver.ByKind returns for it), ordered per order (falling back to
// DefaultOrder when order is nil). Drivers for kinds absent from order are
// appended after it, preserving registration order, so a caller that
// passes a partial override still sees every registered backend.
//
// Probing never creates a device: a driver's Probe method is
// responsible for leaving no partially initialised state behind on
// any path, success or failure (spec §4.1).
func AvailableBackends(order []driver.BackendKind) []Entry {
	if order == nil {
		order = defaultOrder
	}

	drivers := driver.Drivers()
	seen := make(map[driver.BackendKind]bool, len(drivers))
	var entries []Entry

	for _, kind := range order {
		d, ok := driver.ByKind(kind)
		if !ok {
			continue
		}
		seen[kind] = true
		entries = append(entries, probe(d))
	}
	for _, d := range drivers {
		if seen[d.Kind()] {
			continue
		}
		entries = append(entries, probe(d))
	}
	return entries
}

func probe(d driver.Driver) Entry {
	return Entry{
		Kind:      d.Kind(),
		Name:      d.Name(),
		Available: d.Probe(),
	}
}

// Best returns the first available entry in order, or the zero Entry
// and false if none of the candidates in order are available. It is
// the read-only half of the Manager's selection algorithm (the
// Manager still has to attempt Driver.Open, since Probe is only an
// advisory check).
func Best(order []driver.BackendKind) (Entry, bool) {
	for _, e := range AvailableBackends(order) {
		if e.Available {
			return e, true
		}
	}
	return Entry{}, false
}
