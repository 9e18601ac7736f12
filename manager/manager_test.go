// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package manager

import (
	"testing"

	"github.com/novaengine/gbal/driver"
	_ "github.com/novaengine/gbal/backend/software"
)

func TestNewFallsBackToSoftware(t *testing.T) {
	m, err := New(Config{AutoFallback: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()
	if m.PrimaryKind() != driver.Software {
		t.Fatalf("PrimaryKind() = %v, want Software (nothing else is registered in this test binary)", m.PrimaryKind())
	}
	if m.Primary() == nil {
		t.Fatal("Primary() must not be nil after a successful New")
	}
}

func TestPreferredOrderTriesPreferredFirst(t *testing.T) {
	m, err := New(Config{Preferred: driver.Software, HasPreferred: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()
	if m.PrimaryKind() != driver.Software {
		t.Fatalf("PrimaryKind() = %v, want Software", m.PrimaryKind())
	}
}

func TestSwitchBackendToUnavailableKindFailsAndKeepsOldPrimary(t *testing.T) {
	m, err := New(Config{AutoFallback: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()
	old := m.Primary()

	ok, err := m.SwitchBackend(driver.Vulkan)
	if ok || err == nil {
		t.Fatal("switching to an unregistered backend must fail")
	}
	if m.Primary() != old {
		t.Fatal("a failed switch must leave the old primary device active")
	}
}

func TestSwitchBackendToSoftwareSucceeds(t *testing.T) {
	m, err := New(Config{AutoFallback: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	ok, err := m.SwitchBackend(driver.Software)
	if !ok || err != nil {
		t.Fatalf("SwitchBackend(Software) = %v, %v, want true, nil", ok, err)
	}
	if m.PrimaryKind() != driver.Software {
		t.Fatalf("PrimaryKind() = %v, want Software", m.PrimaryKind())
	}
}
