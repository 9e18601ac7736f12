// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
)

// Pipeline is the OpenGL backend's driver.Pipeline: a linked program
// object plus the fixed-function state GL keeps global rather than
// baked into the pipeline (blend, depth test, cull mode), replayed by
// the CmdBuffer on SetPipeline.
type Pipeline struct {
	program uint32
	graph   *driver.GraphState
}

func (p *Pipeline) Destroy() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
	}
}

func (p *Pipeline) IsCompute() bool { return false }

func (g *GPU) newGraphicsPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	key := pipelinecache.HashGraphState(s)
	p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
		return g.linkProgram(s)
	})
	return p, err
}

func (g *GPU) linkProgram(s *driver.GraphState) (driver.Pipeline, error) {
	program := gl.CreateProgram()
	attach := func(sh driver.Shader) {
		if sh == nil {
			return
		}
		gsh := sh.(*Shader)
		gl.AttachShader(program, gsh.handle)
	}
	attach(s.VertexShader)
	attach(s.FragmentShader)
	attach(s.GeometryShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("opengl: program link failed: %s: %w", log, gerr.WrapKind("opengl", gerr.InvalidPipelineState))
	}

	p := &Pipeline{program: program, graph: s}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}
