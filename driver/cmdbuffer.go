// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// CBState is the command-buffer lifecycle state (spec §5):
//
//	initial -> recording -> executable -> pending -> initial
//
// Begin moves initial -> recording. End moves recording ->
// executable. Commit moves executable -> pending and, on completion,
// pending -> initial. Reset returns any state except pending to
// initial.
type CBState int

const (
	CBInitial CBState = iota
	CBRecording
	CBExecutable
	CBPending
)

func (s CBState) String() string {
	switch s {
	case CBInitial:
		return "initial"
	case CBRecording:
		return "recording"
	case CBExecutable:
		return "executable"
	case CBPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Viewport describes a viewport transform.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Scissor describes a scissor rectangle.
type Scissor struct {
	X, Y, Width, Height int
}

// IndexFmt is the type of index buffer element formats.
type IndexFmt int

const (
	Index16 IndexFmt = iota
	Index32
)

// BarrierKind identifies the resource class a Barrier targets.
type BarrierKind int

const (
	BarrierBuffer BarrierKind = iota
	BarrierTexture
	BarrierGlobal
)

// Barrier describes a single synchronization barrier: a wait on a
// prior usage of a resource before a subsequent usage may proceed.
type Barrier struct {
	Kind    BarrierKind
	Buffer  Buffer
	Texture Texture
	// SrcUsage/DstUsage describe the usage transition being
	// synchronized; their exact mapping to native stage/access masks
	// is a concrete backend's responsibility.
	SrcUsage, DstUsage Usage
}

// Fence is a CPU-observable synchronization primitive signaled when
// submitted work completes.
type Fence interface {
	// Wait blocks until the fence is signaled or timeoutNs elapses
	// (0 means poll without blocking, a negative value means wait
	// indefinitely). It returns true if the fence was signaled.
	Wait(timeoutNs int64) bool
	// Reset returns the fence to the unsignaled state. It must not
	// be called while the fence is associated with unfinished work.
	Reset()
}

// CmdBuffer is the interface that defines a command buffer: the
// unit of command recording and submission. Implementations are not
// required to be safe for concurrent use; a CmdBuffer is recorded,
// at any instant, by at most one goroutine.
type CmdBuffer interface {
	// Begin transitions the buffer from initial to recording. A
	// buffer not in the initial state returns InvalidCommandBuffer.
	Begin() error

	// BeginPass begins a render pass, transitioning into subpass 0.
	BeginPass(pass RenderPass, targets []Texture, clear []float32) error
	// NextSubpass advances to the following subpass.
	NextSubpass() error
	// EndPass ends the current render pass. Calling EndPass or
	// NextSubpass outside of a BeginPass/EndPass pair returns
	// RenderPassNotInProgress; calling BeginPass while already inside
	// one returns RenderPassInProgress. Draw commands have no error
	// return.
	EndPass() error

	// BeginWork and EndWork bracket compute dispatch recording.
	BeginWork() error
	EndWork() error

	// BeginBlit and EndBlit bracket copy/fill/blit recording.
	BeginBlit() error
	EndBlit() error

	SetPipeline(p Pipeline)
	SetViewport(v Viewport)
	SetScissor(s Scissor)
	SetVertexBuffer(slot int, b Buffer, offset int64)
	SetIndexBuffer(b Buffer, offset int64, fmt IndexFmt)
	SetUniformBuffer(slot int, b Buffer, offset, size int64)
	SetTexture(slot int, t TextureView, s Sampler)

	Draw(vertexCount, instanceCount, firstVertex, firstInstance int)
	DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int)
	Dispatch(groupsX, groupsY, groupsZ int)

	CopyBuffer(dst Buffer, dstOffset int64, src Buffer, srcOffset, size int64)
	CopyToTexture(dst Texture, dstOrigin Off3D, dstLevel int, src Buffer, srcOffset int64, extent Dim3D)
	CopyTexture(dst Texture, dstOrigin Off3D, dstLevel int, src Texture, srcOrigin Off3D, srcLevel int, extent Dim3D)
	Fill(dst Buffer, offset, size int64, value byte)

	Barrier(barriers []Barrier)
	Transition(t Texture, dstUsage Usage)

	// BeginDebugGroup pushes a named group onto the command buffer's
	// debug-group stack until the matching EndDebugGroup. Backends
	// with native debug markers also forward it there; profiler
	// counters are not attributed to debug groups.
	BeginDebugGroup(name string)
	EndDebugGroup()
	// SetDebugName labels an object for tooling; backends without
	// native object-naming support silently ignore it.
	SetDebugName(obj Destroyer, name string)

	// End transitions recording to executable. Recording outside
	// the proper nesting of passes/work/blit scopes returns
	// InvalidOperation.
	End() error

	// Reset returns the buffer to the initial state, discarding any
	// recorded commands. It must not be called while the buffer is
	// pending (submitted but not yet completed).
	Reset() error

	// State reports the buffer's current lifecycle state.
	State() CBState
}
