// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build windows

// Package register blank-imports the concrete backend packages
// available on the current platform so their init functions run and
// register a driver.Driver. Importing this package is the one-line
// way for a program to get every backend this platform supports
// without listing each one itself.
package register

import (
	_ "github.com/novaengine/gbal/backend/d3d11"
	_ "github.com/novaengine/gbal/backend/d3d12"
	_ "github.com/novaengine/gbal/backend/opengl"
	_ "github.com/novaengine/gbal/backend/software"
	_ "github.com/novaengine/gbal/backend/vulkan"
	_ "github.com/novaengine/gbal/backend/webgpu"
)
