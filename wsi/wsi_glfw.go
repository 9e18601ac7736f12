// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build linux || windows || darwin

package wsi

import (
	"fmt"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwOnce guards glfw.Init, which must only run once per process and
// must run on the main OS thread (the caller is expected to have
// arranged that via runtime.LockOSThread, same requirement glfw
// itself imposes on every platform).
var (
	glfwOnce sync.Once
	glfwErr  error
)

func initGLFW() error {
	glfwOnce.Do(func() {
		glfwErr = glfw.Init()
	})
	return glfwErr
}

// glfwWindow wraps a *glfw.Window, the native handle the desktop
// OpenGL and WebGPU backends expect from driver.SwapchainDesc.Window.
type glfwWindow struct {
	win   *glfw.Window
	title string
}

func newGLFWWindow(width, height int, title string) (Window, error) {
	if err := initGLFW(); err != nil {
		return nil, fmt.Errorf("wsi: glfw.Init failed: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("wsi: glfw.CreateWindow failed: %w", err)
	}
	return &glfwWindow{win: win, title: title}, nil
}

func (w *glfwWindow) Map() error {
	w.win.Show()
	return nil
}

func (w *glfwWindow) Unmap() error {
	w.win.Hide()
	return nil
}

func (w *glfwWindow) Resize(width, height int) error {
	w.win.SetSize(width, height)
	return nil
}

func (w *glfwWindow) SetTitle(title string) error {
	w.win.SetTitle(title)
	w.title = title
	return nil
}

func (w *glfwWindow) Close() {
	closeWindow(w)
	w.win.Destroy()
}

func (w *glfwWindow) Width() int {
	width, _ := w.win.GetSize()
	return width
}

func (w *glfwWindow) Height() int {
	_, height := w.win.GetSize()
	return height
}

func (w *glfwWindow) Title() string { return w.title }

// Handle returns the underlying *glfw.Window, the concrete type the
// opengl and webgpu backends' NewSwapchain type-assert desc.Window to.
func (w *glfwWindow) Handle() any { return w.win }

func init() {
	newWindow = newGLFWWindow
}
