// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build darwin

package metal

import (
	"unsafe"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/shaderutil"
)

/*
#cgo CFLAGS: -Werror -xobjective-c -fmodules -fobjc-arc
@import Metal;

#include <CoreFoundation/CoreFoundation.h>
#include <Metal/Metal.h>
#include <dispatch/dispatch.h>

typedef struct {
	void *addr;
	NSUInteger size;
} metalSlice;

static metalSlice bufferContents(CFTypeRef bufRef) {
	@autoreleasepool {
		id<MTLBuffer> buf = (__bridge id<MTLBuffer>)bufRef;
		metalSlice s = {.addr = [buf contents], .size = [buf length]};
		return s;
	}
}

static CFTypeRef newLibrary(CFTypeRef devRef, const char *name, const void *src, size_t size, char *errOut, size_t errCap) {
	@autoreleasepool {
		id<MTLDevice> dev = (__bridge id<MTLDevice>)devRef;
		NSString *text = [[NSString alloc] initWithBytes:src length:size encoding:NSUTF8StringEncoding];
		NSError *err = nil;
		id<MTLLibrary> lib = [dev newLibraryWithSource:text options:nil error:&err];
		if (lib == nil) {
			if (err != nil && errOut != NULL) {
				const char *msg = [[err localizedDescription] UTF8String];
				strlcpy(errOut, msg, errCap);
			}
			return NULL;
		}
		lib.label = [NSString stringWithUTF8String:name];
		return CFBridgingRetain(lib);
	}
}

static CFTypeRef libraryNewFunction(CFTypeRef libRef, const char *funcName) {
	@autoreleasepool {
		id<MTLLibrary> lib = (__bridge id<MTLLibrary>)libRef;
		NSString *name = [NSString stringWithUTF8String:funcName];
		return CFBridgingRetain([lib newFunctionWithName:name]);
	}
}
*/
import "C"

// Buffer is the Metal backend's driver.Buffer: a shared- or
// private-storage-mode MTLBuffer. Shared buffers are CPU-visible for
// the lifetime of the buffer; private buffers are not, the same
// mapping contract the D3D12 backend exposes for its upload/default
// heaps.
type Buffer struct {
	gpu         *GPU
	handle      C.CFTypeRef
	size        int64
	usage       driver.Usage
	hostVisible bool
}

func (b *Buffer) Destroy() {
	cfRelease(b.handle)
	b.handle = 0
}
func (b *Buffer) Visible() bool       { return b.hostVisible }
func (b *Buffer) Size() int64         { return b.size }
func (b *Buffer) Usage() driver.Usage { return b.usage }

func (b *Buffer) Bytes() []byte {
	if b.handle == 0 || !b.hostVisible {
		return nil
	}
	s := C.bufferContents(b.handle)
	if s.addr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(s.addr), int(s.size))
}

// Texture is the Metal backend's driver.Texture: a private-storage
// MTLTexture (owned=true) or a borrowed drawable texture surfaced by
// a Swapchain (owned=false, released by the drawable's own lifetime
// instead).
type Texture struct {
	gpu    *GPU
	handle C.CFTypeRef
	desc   driver.TextureDesc
	owned  bool
}

func (t *Texture) Destroy() {
	if t.owned {
		cfRelease(t.handle)
	}
	t.handle = 0
}
func (t *Texture) Dim() driver.Dim3D       { return t.desc.Dim3D }
func (t *Texture) Format() driver.PixelFmt { return t.desc.Format }
func (t *Texture) Layers() int             { return t.desc.Layers }
func (t *Texture) Levels() int             { return t.desc.Levels }
func (t *Texture) Samples() int            { return t.desc.Samples }
func (t *Texture) Usage() driver.Usage     { return t.desc.Usage }

func (t *Texture) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.TextureView, error) {
	return &TextureView{owner: t, typ: typ, layer: layer, layers: layers, level: level, levels: levels}, nil
}

// TextureView carries only the view parameters: Metal textures are
// sampled/bound directly (no separate view object equivalent to a
// D3D SRV or Vulkan VkImageView), so a "view" here is purely the
// subresource range the texture is bound with.
type TextureView struct {
	owner                        *Texture
	typ                          driver.ViewType
	layer, layers, level, levels int
}

func (v *TextureView) Destroy() {}

type Sampler struct {
	handle C.CFTypeRef
}

func (s *Sampler) Destroy() {
	cfRelease(s.handle)
	s.handle = 0
}

// Shader wraps a compiled MTLFunction pulled from a single-function
// MTLLibrary built from Metal Shading Language source. Reflection
// mirrors the corpus's shaderutil-free backends: none is computed
// unless the caller requested it and a reflector existed to serve it,
// which this backend (like d3d11/d3d12) does not build.
type Shader struct {
	stage    driver.Stage
	entry    string
	function C.CFTypeRef
	library  C.CFTypeRef
}

func (s *Shader) Destroy() {
	cfRelease(s.function)
	cfRelease(s.library)
	s.function, s.library = 0, 0
}
func (s *Shader) Stage() driver.Stage                { return s.stage }
func (s *Shader) SourceKind() driver.SourceKind      { return driver.SourceMetal }
func (s *Shader) EntryPoint() string                 { return s.entry }
func (s *Shader) Reflection() *driver.ReflectionInfo { return nil }

func newShader(g *GPU, source *driver.ShaderSource, stage driver.Stage, opts *driver.ShaderOptions) (*Shader, error) {
	name := ""
	if opts != nil {
		name = opts.DebugName
	}
	kind := source.Kind
	if kind == driver.SourceAuto {
		kind = shaderutil.DetectKind(source.Data, name)
	}
	if kind != driver.SourceMetal {
		g.LogError(gerr.Error, gerr.UnsupportedFormat, "metal shaders must be Metal Shading Language source, got %v", kind)
		return nil, driverErr(gerr.UnsupportedFormat)
	}
	if len(source.Data) == 0 {
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "empty shader source")
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	data, err := shaderutil.Prepare(source.Data, name, kind, stage, source.IncludeDirs)
	if err != nil {
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "shader preprocessing failed: %v", err)
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	entry := source.EntryPoint
	if entry == "" {
		entry = "main0"
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	errBuf := make([]byte, 256)
	lib := C.newLibrary(g.dev, cname, unsafe.Pointer(&data[0]), C.size_t(len(data)),
		(*C.char)(unsafe.Pointer(&errBuf[0])), C.size_t(len(errBuf)))
	if lib == 0 {
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "newLibraryWithSource: failed: %s", cString(errBuf))
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	centry := C.CString(entry)
	defer C.free(unsafe.Pointer(centry))
	fn := C.libraryNewFunction(lib, centry)
	if fn == 0 {
		cfRelease(lib)
		g.LogError(gerr.Error, gerr.ShaderCompilationFailed, "entry point %q not found", entry)
		return nil, driverErr(gerr.ShaderCompilationFailed)
	}
	return &Shader{stage: stage, entry: entry, function: fn, library: lib}, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// RenderPass is a pure attachment-layout descriptor: see
// GPU.NewRenderPass.
type RenderPass struct{ desc driver.RenderPassDesc }

func (r *RenderPass) Destroy() {}
