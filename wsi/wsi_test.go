// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import "testing"

func TestNewWindowRegistersAndCloseUnregisters(t *testing.T) {
	newWindow = newHeadlessWindow
	defer func() { newWindow = newHeadlessWindow }()

	win, err := NewWindow(640, 480, "test")
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if len(Windows()) != 1 {
		t.Fatalf("Windows() len = %d, want 1", len(Windows()))
	}
	win.Close()
	if len(Windows()) != 0 {
		t.Fatalf("Windows() len after Close = %d, want 0", len(Windows()))
	}
}

func TestNewWindowEnforcesMaxWindows(t *testing.T) {
	newWindow = newHeadlessWindow
	defer func() { newWindow = newHeadlessWindow }()

	var wins []Window
	defer func() {
		for _, w := range wins {
			w.Close()
		}
	}()
	for i := 0; i < MaxWindows; i++ {
		w, err := NewWindow(1, 1, "w")
		if err != nil {
			t.Fatalf("NewWindow #%d: %v", i, err)
		}
		wins = append(wins, w)
	}
	if _, err := NewWindow(1, 1, "overflow"); err == nil {
		t.Fatal("NewWindow past MaxWindows must fail")
	}
}

func TestHeadlessWindowLifecycle(t *testing.T) {
	w, err := newHeadlessWindow(320, 240, "hello")
	if err != nil {
		t.Fatalf("newHeadlessWindow: %v", err)
	}
	defer w.Close()

	if w.Width() != 320 || w.Height() != 240 {
		t.Fatalf("Width/Height = %d/%d, want 320/240", w.Width(), w.Height())
	}
	if w.Title() != "hello" {
		t.Fatalf("Title() = %q, want %q", w.Title(), "hello")
	}
	if err := w.Map(); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if err := w.Resize(800, 600); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w.Width() != 800 || w.Height() != 600 {
		t.Fatalf("Width/Height after Resize = %d/%d, want 800/600", w.Width(), w.Height())
	}
	if err := w.SetTitle("renamed"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if w.Title() != "renamed" {
		t.Fatalf("Title() after SetTitle = %q, want %q", w.Title(), "renamed")
	}
	if err := w.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if w.Handle() != nil {
		t.Fatalf("Handle() = %v, want nil for a headless window", w.Handle())
	}
}
