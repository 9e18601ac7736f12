// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package opengl implements the graphics device contract on top of
// desktop OpenGL via github.com/go-gl/gl and windowing/context
// creation via github.com/go-gl/glfw, grounded on the vertex-array
// and program-object model the corpus's OpenGL backends (gioui's
// internal/opengl, qmcloud-engine's gfx/gl2) use.
package opengl

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/novaengine/gbal/backend"
	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver for desktop OpenGL. GLFW and GL
// context creation must happen on the thread that calls Open, per
// GLFW's threading rules; callers are expected to have already locked
// the calling goroutine to its OS thread (runtime.LockOSThread).
type Driver struct {
	mu     sync.Mutex
	window *glfw.Window
	gpu    *GPU
}

func (d *Driver) Name() string { return "opengl" }

func (d *Driver) Kind() driver.BackendKind { return driver.OpenGL }

// Probe creates and immediately destroys a hidden window with a GL
// context to verify a compatible driver is installed.
func (d *Driver) Probe() bool {
	if err := glfw.Init(); err != nil {
		return false
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	win, err := glfw.CreateWindow(1, 1, "probe", nil, nil)
	if err != nil {
		return false
	}
	defer win.Destroy()
	return true
}

func (d *Driver) Open(opts *driver.Options) (driver.GPU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu != nil {
		return d.gpu, nil
	}
	var logger *gerr.Logger
	var debugMode bool
	if opts != nil {
		logger = opts.Logger
		debugMode = opts.DebugMode
	}
	if logger == nil {
		logger = gerr.NewLogger(io.Discard, gerr.DefaultRingSize, debugMode)
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("opengl: glfwInit failed: %w", gerr.WrapKind("opengl", gerr.InitializationFailed))
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if debugMode {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	win, err := glfw.CreateWindow(1, 1, "gbal", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: window creation failed: %w", gerr.WrapKind("opengl", gerr.DeviceCreationFailed))
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: %v: %w", err, gerr.WrapKind("opengl", gerr.DeviceCreationFailed))
	}

	d.window = win
	base := backend.NewBase("opengl", driver.OpenGL, 256<<20, logger)
	d.gpu = newGPU(d, base)
	return d.gpu, nil
}

func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu != nil {
		d.gpu.Deinit()
		d.gpu = nil
	}
	if d.window != nil {
		d.window.Destroy()
		d.window = nil
		glfw.Terminate()
	}
}
