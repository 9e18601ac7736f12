// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import (
	"sync"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/profiler"
)

// recordedOp is one deferred operation captured during recording,
// replayed in order when the buffer is committed.
type recordedOp func(*execState)

// execState accumulates counters across a CmdBuffer's replay; it is
// folded into the owning GPU's active profiler marker on completion.
type execState struct {
	counters profiler.Counters
}

// CmdBuffer is the software backend's driver.CmdBuffer. Recording
// only appends closures to an internal list; Commit (via GPU.Commit)
// replays them, which is enough to exercise the full state machine
// and produce believable profiler counters without a real rasterizer.
type CmdBuffer struct {
	gpu *GPU

	mu    sync.Mutex
	state driver.CBState
	ops   []recordedOp

	inPass  bool
	inWork  bool
	inBlit  bool
	debug   []string
}

func newCmdBuffer(gpu *GPU) *CmdBuffer {
	return &CmdBuffer{gpu: gpu, state: driver.CBInitial}
}

func (c *CmdBuffer) State() driver.CBState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *CmdBuffer) fail(kind gerr.Kind, msg string) error {
	c.gpu.LogError(gerr.Error, kind, msg)
	return driverErr(kind)
}

func (c *CmdBuffer) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != driver.CBInitial {
		return c.fail(gerr.InvalidCommandBuffer, "Begin called outside the initial state")
	}
	c.state = driver.CBRecording
	c.ops = c.ops[:0]
	return nil
}

func (c *CmdBuffer) requireRecording() error {
	if c.state != driver.CBRecording {
		return c.fail(gerr.InvalidCommandBuffer, "command recorded outside the recording state")
	}
	return nil
}

func (c *CmdBuffer) BeginPass(pass driver.RenderPass, targets []driver.Texture, clear []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRecording(); err != nil {
		return err
	}
	if c.inPass {
		return c.fail(gerr.RenderPassInProgress, "BeginPass called while a render pass is already open")
	}
	c.inPass = true
	return nil
}

func (c *CmdBuffer) NextSubpass() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inPass {
		return c.fail(gerr.RenderPassNotInProgress, "NextSubpass called outside a render pass")
	}
	return nil
}

func (c *CmdBuffer) EndPass() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inPass {
		return c.fail(gerr.RenderPassNotInProgress, "EndPass called outside a render pass")
	}
	c.inPass = false
	return nil
}

func (c *CmdBuffer) BeginWork() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRecording(); err != nil {
		return err
	}
	c.inWork = true
	return nil
}

func (c *CmdBuffer) EndWork() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inWork = false
	return nil
}

func (c *CmdBuffer) BeginBlit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRecording(); err != nil {
		return err
	}
	c.inBlit = true
	return nil
}

func (c *CmdBuffer) EndBlit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inBlit = false
	return nil
}

func (c *CmdBuffer) record(op recordedOp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != driver.CBRecording {
		return
	}
	c.ops = append(c.ops, op)
}

func (c *CmdBuffer) SetPipeline(p driver.Pipeline) {
	c.record(func(e *execState) { e.counters.PipelineChanges++ })
}

func (c *CmdBuffer) SetViewport(v driver.Viewport) { c.record(func(e *execState) {}) }

func (c *CmdBuffer) SetScissor(s driver.Scissor) { c.record(func(e *execState) {}) }

func (c *CmdBuffer) SetVertexBuffer(slot int, b driver.Buffer, offset int64) {
	c.record(func(e *execState) { e.counters.DescriptorBindings++ })
}

func (c *CmdBuffer) SetIndexBuffer(b driver.Buffer, offset int64, fmt driver.IndexFmt) {
	c.record(func(e *execState) { e.counters.DescriptorBindings++ })
}

func (c *CmdBuffer) SetUniformBuffer(slot int, b driver.Buffer, offset, size int64) {
	c.record(func(e *execState) { e.counters.DescriptorBindings++ })
}

func (c *CmdBuffer) SetTexture(slot int, t driver.TextureView, s driver.Sampler) {
	c.record(func(e *execState) { e.counters.DescriptorBindings++ })
}

func (c *CmdBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	c.record(func(e *execState) {
		e.counters.DrawCalls++
		e.counters.Vertices += int64(vertexCount * maxInt(instanceCount, 1))
		e.counters.Triangles += int64(vertexCount * maxInt(instanceCount, 1) / 3)
	})
}

func (c *CmdBuffer) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	c.record(func(e *execState) {
		e.counters.DrawCalls++
		e.counters.Vertices += int64(indexCount * maxInt(instanceCount, 1))
		e.counters.Triangles += int64(indexCount * maxInt(instanceCount, 1) / 3)
	})
}

func (c *CmdBuffer) Dispatch(groupsX, groupsY, groupsZ int) {
	c.record(func(e *execState) { e.counters.ComputeDispatches++ })
}

func (c *CmdBuffer) CopyBuffer(dst driver.Buffer, dstOffset int64, src driver.Buffer, srcOffset, size int64) {
	c.record(func(e *execState) {
		if d, ok := dst.(*Buffer); ok {
			if s, ok := src.(*Buffer); ok {
				copy(d.data[dstOffset:dstOffset+size], s.data[srcOffset:srcOffset+size])
			}
		}
	})
}

func (c *CmdBuffer) CopyToTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Buffer, srcOffset int64, extent driver.Dim3D) {
	c.record(func(e *execState) {})
}

func (c *CmdBuffer) CopyTexture(dst driver.Texture, dstOrigin driver.Off3D, dstLevel int, src driver.Texture, srcOrigin driver.Off3D, srcLevel int, extent driver.Dim3D) {
	c.record(func(e *execState) {})
}

func (c *CmdBuffer) Fill(dst driver.Buffer, offset, size int64, value byte) {
	c.record(func(e *execState) {
		if d, ok := dst.(*Buffer); ok {
			s := d.data[offset : offset+size]
			for i := range s {
				s[i] = value
			}
		}
	})
}

func (c *CmdBuffer) Barrier(barriers []driver.Barrier) {
	c.record(func(e *execState) { e.counters.Barriers += int64(len(barriers)) })
}

func (c *CmdBuffer) Transition(t driver.Texture, dstUsage driver.Usage) {
	c.record(func(e *execState) { e.counters.Barriers++ })
}

func (c *CmdBuffer) BeginDebugGroup(name string) {
	c.mu.Lock()
	c.debug = append(c.debug, name)
	c.mu.Unlock()
}

func (c *CmdBuffer) EndDebugGroup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.debug); n > 0 {
		c.debug = c.debug[:n-1]
	}
}

func (c *CmdBuffer) SetDebugName(obj driver.Destroyer, name string) {}

func (c *CmdBuffer) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != driver.CBRecording {
		return c.fail(gerr.InvalidCommandBuffer, "End called outside the recording state")
	}
	if c.inPass || c.inWork || c.inBlit {
		return c.fail(gerr.InvalidOperation, "End called with an unclosed pass, work, or blit scope")
	}
	c.state = driver.CBExecutable
	return nil
}

func (c *CmdBuffer) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == driver.CBPending {
		return c.fail(gerr.InvalidCommandBuffer, "Reset called while pending")
	}
	c.state = driver.CBInitial
	c.ops = c.ops[:0]
	c.inPass, c.inWork, c.inBlit = false, false, false
	return nil
}

// execute replays every recorded op, adds the resulting counters to
// a "cmd_buffer" profiler marker pushed and popped under the GPU's
// innermost open marker, so they fold into that marker (with no
// marker open they are dropped), and advances the state to pending then back to
// initial, since the software backend has no asynchronous queue to
// wait on.
func (c *CmdBuffer) execute() error {
	c.mu.Lock()
	if c.state != driver.CBExecutable {
		c.mu.Unlock()
		return c.fail(gerr.InvalidCommandBuffer, "execute called outside the executable state")
	}
	c.state = driver.CBPending
	ops := c.ops
	c.mu.Unlock()

	var e execState
	for _, op := range ops {
		op(&e)
	}

	marker := c.gpu.PushMarker("cmd_buffer")
	marker.AddCounters(e.counters)
	c.gpu.PopMarker()

	c.mu.Lock()
	c.state = driver.CBInitial
	c.mu.Unlock()
	return nil
}
