// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package caps

import (
	"testing"

	"github.com/novaengine/gbal/driver"
)

type fakeDriver struct {
	name      string
	kind      driver.BackendKind
	available bool
}

func (f *fakeDriver) Open(*driver.Options) (driver.GPU, error) { return nil, nil }
func (f *fakeDriver) Name() string                              { return f.name }
func (f *fakeDriver) Kind() driver.BackendKind                  { return f.kind }
func (f *fakeDriver) Probe() bool                                { return f.available }
func (f *fakeDriver) Close()                                     {}

func TestAvailableBackendsOrdering(t *testing.T) {
	driver.Register(&fakeDriver{name: "fake-software", kind: driver.Software, available: true})
	driver.Register(&fakeDriver{name: "fake-metal", kind: driver.Metal, available: false})

	entries := AvailableBackends(nil)

	var softIdx, metalIdx = -1, -1
	for i, e := range entries {
		switch e.Kind {
		case driver.Software:
			softIdx = i
		case driver.Metal:
			metalIdx = i
		}
	}
	if softIdx == -1 || metalIdx == -1 {
		t.Fatalf("expected both fake drivers present, got %+v", entries)
	}
	if metalIdx > softIdx {
		t.Fatalf("default order expects metal before software, got metal=%d software=%d", metalIdx, softIdx)
	}
}

func TestBestSkipsUnavailable(t *testing.T) {
	driver.Register(&fakeDriver{name: "fake-unavailable-vulkan", kind: driver.Vulkan, available: false})
	driver.Register(&fakeDriver{name: "fake-available-software", kind: driver.Software, available: true})

	e, ok := Best([]driver.BackendKind{driver.Vulkan, driver.Software})
	if !ok {
		t.Fatal("expected Best to find the available fallback")
	}
	if e.Kind != driver.Software {
		t.Fatalf("Best() kind = %v, want Software", e.Kind)
	}
}
