// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/shaderutil"
)

// Buffer is the OpenGL backend's driver.Buffer, a VBO/EBO/UBO object
// depending on its usage bits. It is not host-visible: reads and
// writes go through glBufferSubData rather than a persistent mapping.
type Buffer struct {
	gpu    *GPU
	handle uint32
	target uint32
	size   int64
	usage  driver.Usage
}

func (b *Buffer) Destroy() {
	if b.handle != 0 {
		gl.DeleteBuffers(1, &b.handle)
	}
}

func (b *Buffer) Visible() bool { return false }

func (b *Buffer) Bytes() []byte { return nil }

func (b *Buffer) Size() int64 { return b.size }

func (b *Buffer) Usage() driver.Usage { return b.usage }

func (b *Buffer) upload(offset int64, data []byte) {
	if b.handle == 0 || len(data) == 0 {
		return
	}
	gl.BindBuffer(b.target, b.handle)
	gl.BufferSubData(b.target, int(offset), len(data), gl.Ptr(&data[0]))
	gl.BindBuffer(b.target, 0)
}

// Texture is the OpenGL backend's driver.Texture, a 2D texture
// object. Texture arrays, 3D textures, and cube maps are not
// implemented; NewTexture always allocates GL_TEXTURE_2D.
type Texture struct {
	gpu    *GPU
	handle uint32
	desc   driver.TextureDesc
}

func (t *Texture) Destroy() {
	if t.handle != 0 {
		gl.DeleteTextures(1, &t.handle)
	}
}

func (t *Texture) Dim() driver.Dim3D { return t.desc.Dim3D }

func (t *Texture) Format() driver.PixelFmt { return t.desc.Format }

func (t *Texture) Layers() int { return t.desc.Layers }

func (t *Texture) Levels() int { return t.desc.Levels }

func (t *Texture) Samples() int { return t.desc.Samples }

func (t *Texture) Usage() driver.Usage { return t.desc.Usage }

func (t *Texture) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.TextureView, error) {
	// Desktop GL 3.3 has no lightweight image-view object distinct
	// from the texture itself; the view just remembers which levels
	// and layers of the parent it addresses.
	return &TextureView{owner: t, level: level, layer: layer}, nil
}

// TextureView is the OpenGL backend's driver.TextureView.
type TextureView struct {
	owner *Texture
	level int
	layer int
}

func (v *TextureView) Destroy() {}

func glFormat(f driver.PixelFmt) (internalFormat int32, format uint32, typ uint32) {
	switch f {
	case driver.RGBA8Unorm, driver.BGRA8Unorm:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	case driver.RGB8Unorm:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	case driver.RG8Unorm:
		return gl.RG8, gl.RG, gl.UNSIGNED_BYTE
	case driver.R8Unorm:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case driver.Depth24Stencil8:
		return gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8
	case driver.Depth32Float:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

// Sampler is the OpenGL backend's driver.Sampler, a GL sampler
// object bound alongside (not baked into) its texture unit.
type Sampler struct {
	gpu    *GPU
	handle uint32
}

func (s *Sampler) Destroy() {
	if s.handle != 0 {
		gl.DeleteSamplers(1, &s.handle)
	}
}

func glFilter(f driver.Filter, mip driver.Filter) int32 {
	switch {
	case mip == driver.FilterNoMipmap && f == driver.FilterLinear:
		return gl.LINEAR
	case mip == driver.FilterNoMipmap:
		return gl.NEAREST
	case f == driver.FilterLinear && mip == driver.FilterLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	case f == driver.FilterLinear:
		return gl.LINEAR_MIPMAP_NEAREST
	case mip == driver.FilterLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	default:
		return gl.NEAREST_MIPMAP_NEAREST
	}
}

func glAddr(m driver.AddrMode) int32 {
	switch m {
	case driver.AddrMirror:
		return gl.MIRRORED_REPEAT
	case driver.AddrClamp:
		return gl.CLAMP_TO_EDGE
	default:
		return gl.REPEAT
	}
}

// Shader is the OpenGL backend's driver.Shader, a compiled GLSL
// shader object. Only SourceGLSL (and SourceAuto detected as such) is
// accepted: desktop GL 3.3 core has no other native shading language.
type Shader struct {
	handle     uint32
	stage      driver.Stage
	kind       driver.SourceKind
	entry      string
	reflection *driver.ReflectionInfo
}

func (s *Shader) Destroy() {
	if s.handle != 0 {
		gl.DeleteShader(s.handle)
	}
}

func (s *Shader) Stage() driver.Stage { return s.stage }

func (s *Shader) SourceKind() driver.SourceKind { return s.kind }

func (s *Shader) EntryPoint() string { return s.entry }

func (s *Shader) Reflection() *driver.ReflectionInfo { return s.reflection }

func glStage(stage driver.Stage) uint32 {
	switch stage {
	case driver.StageFragment:
		return gl.FRAGMENT_SHADER
	case driver.StageGeometry:
		return gl.GEOMETRY_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func newShader(g *GPU, source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (*Shader, error) {
	kind := source.Kind
	if kind == driver.SourceAuto {
		kind = shaderutil.DetectKind(source.Data, "")
	}
	if kind != driver.SourceGLSL {
		return nil, driverErr(gerr.UnsupportedFormat)
	}
	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	data, err := shaderutil.Prepare(source.Data, name, kind, stage, source.IncludeDirs)
	if err != nil {
		return nil, fmt.Errorf("opengl: shader preprocessing failed: %w: %w", err, gerr.WrapKind("opengl", gerr.ShaderCompilationFailed))
	}
	entry := source.EntryPoint
	if entry == "" {
		entry = "main"
	}

	handle := gl.CreateShader(glStage(stage))
	src, free := gl.Strs(string(data) + "\x00")
	defer free()
	length := int32(len(data))
	gl.ShaderSource(handle, 1, src, &length)
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(handle, logLen, nil, gl.Str(log))
		gl.DeleteShader(handle)
		return nil, fmt.Errorf("opengl: shader compile failed: %s: %w", log, gerr.WrapKind("opengl", gerr.ShaderCompilationFailed))
	}

	sh := &Shader{handle: handle, stage: stage, kind: kind, entry: entry}
	if opts != nil && opts.Reflect {
		sh.reflection = &driver.ReflectionInfo{}
	}
	return sh, nil
}

// RenderPass is the OpenGL backend's driver.RenderPass. GL has no
// native render pass object; this is a bookkeeping description that
// BeginPass consults only to decide whether to clear depth.
type RenderPass struct {
	desc driver.RenderPassDesc
}

func (r *RenderPass) Destroy() {}
