// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wsi provides the minimal window-system-integration surface
// concrete backends need to create a driver.Swapchain: creating,
// sizing, and closing a drawable window, plus a handle backends can
// type-assert down to whatever native object their NewSwapchain
// expects. It is a trimmed collaborator, not a full windowing
// toolkit — input handling and multi-platform native backends are
// out of scope here.
package wsi

import "errors"

// Window is the interface that defines a drawable window: a surface
// a GPU backend's Swapchain can present into.
type Window interface {
	// Map makes the window visible.
	Map() error
	// Unmap hides the window.
	Unmap() error
	// Resize resizes the window.
	Resize(width, height int) error
	// SetTitle sets the window's title.
	SetTitle(title string) error
	// Close closes the window.
	Close()

	Width() int
	Height() int
	Title() string

	// Handle returns the native object a GPU backend's NewSwapchain
	// expects as driver.SwapchainDesc.Window: a *glfw.Window for the
	// desktop OpenGL and WebGPU backends. Backends with no use for a
	// window (the software backend) or that require a different
	// native handle (a raw Win32 HWND for D3D11/D3D12) are expected
	// to obtain that handle by some other means; this package only
	// guarantees the glfw.Window shape.
	Handle() any
}

// MaxWindows bounds how many windows may exist at once.
const MaxWindows = 16

var (
	windowCount    int
	createdWindows [MaxWindows]Window
)

// newWindow is set by the platform-appropriate implementation file;
// it is a package-level var (rather than a direct call) so the
// headless build (no display backend compiled in) can substitute a
// no-op window without NewWindow itself needing a build tag.
var newWindow = newHeadlessWindow

// NewWindow creates a new window of the given size and title.
func NewWindow(width, height int, title string) (Window, error) {
	if windowCount >= MaxWindows {
		return nil, errors.New("wsi: too many windows")
	}
	win, err := newWindow(width, height, title)
	if err != nil {
		return nil, err
	}
	for i := range createdWindows {
		if createdWindows[i] == nil {
			createdWindows[i] = win
			windowCount++
			break
		}
	}
	return win, nil
}

// Windows returns every window currently created through NewWindow.
// The result goes stale after further NewWindow/Window.Close calls.
func Windows() []Window {
	if windowCount == 0 {
		return nil
	}
	wins := make([]Window, 0, windowCount)
	for _, w := range createdWindows {
		if w != nil {
			wins = append(wins, w)
		}
	}
	return wins
}

// closeWindow removes win from the registry. Implementations call it
// from Close.
func closeWindow(win Window) {
	for i := range createdWindows {
		if createdWindows[i] == win {
			createdWindows[i] = nil
			windowCount--
			return
		}
	}
}
