// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import (
	"testing"

	"github.com/novaengine/gbal/driver"
)

func TestNewSwapchainReadyForNonZeroSize(t *testing.T) {
	g := newTestGPU(t)
	scAny, err := g.NewSwapchain(&driver.SwapchainDesc{
		Format: driver.RGBA8Unorm,
		Width:  640,
		Height: 480,
	})
	if err != nil {
		t.Fatalf("NewSwapchain: %v", err)
	}
	sc := scAny.(*Swapchain)
	if sc.State() != driver.SCReady {
		t.Fatalf("State() = %v, want SCReady", sc.State())
	}
}

func TestNewSwapchainMinimisedForZeroSize(t *testing.T) {
	g := newTestGPU(t)
	scAny, err := g.NewSwapchain(&driver.SwapchainDesc{Format: driver.RGBA8Unorm})
	if err != nil {
		t.Fatalf("NewSwapchain: %v", err)
	}
	if scAny.(*Swapchain).State() != driver.SCMinimised {
		t.Fatalf("State() = %v, want SCMinimised", scAny.(*Swapchain).State())
	}
}

func TestResizeToZeroEntersMinimisedAndPresentStillSucceeds(t *testing.T) {
	g := newTestGPU(t)
	scAny, _ := g.NewSwapchain(&driver.SwapchainDesc{Format: driver.RGBA8Unorm, Width: 320, Height: 240})
	sc := scAny.(*Swapchain)

	if err := sc.Resize(0, 240); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if sc.State() != driver.SCMinimised {
		t.Fatalf("State() after Resize(0, h) = %v, want SCMinimised", sc.State())
	}
	if _, err := sc.NextBackbuffer(); err != nil {
		t.Fatalf("NextBackbuffer() while minimised: %v", err)
	}
	if err := sc.Present(); err != nil {
		t.Fatalf("Present() while minimised must still succeed: %v", err)
	}

	if err := sc.Resize(320, 240); err != nil {
		t.Fatalf("Resize back: %v", err)
	}
	if sc.State() != driver.SCReady {
		t.Fatalf("State() after Resize back = %v, want SCReady", sc.State())
	}
}

func TestSwapchainRecreatePreservesSize(t *testing.T) {
	g := newTestGPU(t)
	scAny, _ := g.NewSwapchain(&driver.SwapchainDesc{Format: driver.RGBA8Unorm, Width: 800, Height: 600})
	sc := scAny.(*Swapchain)
	if err := sc.Recreate(); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if sc.width != 800 || sc.height != 600 {
		t.Fatalf("size after Recreate = %dx%d, want 800x600", sc.width, sc.height)
	}
	if sc.State() != driver.SCReady {
		t.Fatalf("State() after Recreate = %v, want SCReady", sc.State())
	}
}

func TestSwapchainDestroyRejectsFurtherUse(t *testing.T) {
	g := newTestGPU(t)
	scAny, _ := g.NewSwapchain(&driver.SwapchainDesc{Format: driver.RGBA8Unorm, Width: 128, Height: 128})
	sc := scAny.(*Swapchain)
	sc.Destroy()

	if sc.State() != driver.SCDestroyed {
		t.Fatalf("State() after Destroy = %v, want SCDestroyed", sc.State())
	}
	if _, err := sc.NextBackbuffer(); err == nil {
		t.Fatal("NextBackbuffer() after Destroy must fail")
	}
	if err := sc.Present(); err == nil {
		t.Fatal("Present() after Destroy must fail")
	}
}

func TestNextBackbufferIsWritable(t *testing.T) {
	g := newTestGPU(t)
	scAny, _ := g.NewSwapchain(&driver.SwapchainDesc{Format: driver.RGBA8Unorm, Width: 64, Height: 64})
	sc := scAny.(*Swapchain)

	backAny, err := sc.NextBackbuffer()
	if err != nil {
		t.Fatalf("NextBackbuffer: %v", err)
	}
	back := backAny.(*Texture)
	if back.Dim().Width != 64 || back.Dim().Height != 64 {
		t.Fatalf("backbuffer dims = %dx%d, want 64x64", back.Dim().Width, back.Dim().Height)
	}
	if len(back.data) == 0 {
		t.Fatal("backbuffer must be backed by writable bytes")
	}
}
