// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package renderer

import (
	"testing"

	_ "github.com/novaengine/gbal/backend/software"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/manager"
)

func newTestManager(t *testing.T) *manager.Manager {
	t.Helper()
	m, err := manager.New(manager.Config{AutoFallback: true})
	if err != nil {
		t.Fatalf("manager.New: %v", err)
	}
	return m
}

func TestRenderRunsPayloadBetweenBeginAndEnd(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	r := New(m, nil, nil)

	var sawRecording driver.CBState
	err := r.Render(func(dev driver.GPU, cb driver.CmdBuffer) {
		sawRecording = cb.State()
		cb.Draw(3, 1, 0, 0)
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if sawRecording != driver.CBRecording {
		t.Fatalf("payload observed state %v, want CBRecording", sawRecording)
	}
}

func TestRenderWithRenderPassOpensAndClosesIt(t *testing.T) {
	m := newTestManager(t)
	defer m.Close()

	dev := m.Primary()
	pass, err := dev.NewRenderPass(&driver.RenderPassDesc{})
	if err != nil {
		t.Fatalf("NewRenderPass: %v", err)
	}
	r := New(m, pass, nil)

	called := false
	if err := r.Render(func(dev driver.GPU, cb driver.CmdBuffer) {
		called = true
		cb.Draw(3, 1, 0, 0)
	}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !called {
		t.Fatal("payload was never invoked")
	}
}

func TestRenderWithNoPrimaryDeviceFails(t *testing.T) {
	r := &Renderer{}
	if err := r.Render(func(driver.GPU, driver.CmdBuffer) {}); err == nil {
		t.Fatal("Render with no Manager/primary device must fail")
	}
}
