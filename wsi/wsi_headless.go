// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

// headlessWindow is a Window with no backing display: bookkeeping
// only. It exists so code that doesn't care about a real window (the
// software backend, unit tests, offscreen render farms) can still go
// through the same Window interface as a glfw-backed one.
type headlessWindow struct {
	width, height int
	title         string
	mapped        bool
}

func newHeadlessWindow(width, height int, title string) (Window, error) {
	return &headlessWindow{width: width, height: height, title: title}, nil
}

func (w *headlessWindow) Map() error   { w.mapped = true; return nil }
func (w *headlessWindow) Unmap() error { w.mapped = false; return nil }

func (w *headlessWindow) Resize(width, height int) error {
	w.width, w.height = width, height
	return nil
}

func (w *headlessWindow) SetTitle(title string) error {
	w.title = title
	return nil
}

func (w *headlessWindow) Close() { closeWindow(w) }

func (w *headlessWindow) Width() int    { return w.width }
func (w *headlessWindow) Height() int   { return w.height }
func (w *headlessWindow) Title() string { return w.title }

// Handle returns nil: a headless window has no native surface for a
// backend's NewSwapchain to present into. The software backend never
// calls NewSwapchain, so this is never dereferenced in practice.
func (w *headlessWindow) Handle() any { return nil }
