// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/shaderutil"
)

// Shader is the Vulkan backend's driver.Shader, a VkShaderModule
// built from SPIR-V bytes. Only SourceSPIRV and SourceBinary are
// accepted: Vulkan has no native GLSL/HLSL front end, and this
// backend does not embed one.
type Shader struct {
	gpu        *GPU
	handle     vk.ShaderModule
	stage      driver.Stage
	kind       driver.SourceKind
	entry      string
	reflection *driver.ReflectionInfo
}

func (s *Shader) Destroy() {
	if s.handle != nil {
		vk.DestroyShaderModule(s.gpu.dev, s.handle, nil)
	}
}

func (s *Shader) Stage() driver.Stage { return s.stage }

func (s *Shader) SourceKind() driver.SourceKind { return s.kind }

func (s *Shader) EntryPoint() string { return s.entry }

func (s *Shader) Reflection() *driver.ReflectionInfo { return s.reflection }

func newShader(gpu *GPU, source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (*Shader, error) {
	kind := source.Kind
	if kind == driver.SourceAuto {
		kind = shaderutil.DetectKind(source.Data, "")
	}
	if kind != driver.SourceSPIRV && kind != driver.SourceBinary {
		return nil, driverErr(gerr.UnsupportedFormat)
	}
	if len(source.Data) == 0 || len(source.Data)%4 != 0 {
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}

	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	// SPIR-V and raw bytecode are never textual, so Prepare is a
	// pass-through here; it still runs so a caller-supplied
	// IncludeDirs against a mislabeled text source surfaces as a
	// ShaderCompilationFailed rather than silently compiling garbage.
	data, err := shaderutil.Prepare(source.Data, name, kind, stage, source.IncludeDirs)
	if err != nil {
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}

	entry := source.EntryPoint
	if entry == "" {
		entry = "main"
	}

	info := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    (*uint32)(unsafe.Pointer(&data[0])),
	}
	var handle vk.ShaderModule
	if vk.CreateShaderModule(gpu.dev, info, nil, &handle) != vk.Success {
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}

	sh := &Shader{gpu: gpu, handle: handle, stage: stage, kind: kind, entry: entry}
	if opts != nil && opts.Reflect {
		sh.reflection = &driver.ReflectionInfo{}
	}
	return sh, nil
}
