// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package software

import "github.com/novaengine/gbal/driver"

// Pipeline is the software backend's driver.Pipeline: a thin wrapper
// around whichever descriptor it was built from.
type Pipeline struct {
	graph *driver.GraphState
	comp  *driver.CompState
}

func (p *Pipeline) Destroy() {}

func (p *Pipeline) IsCompute() bool { return p.comp != nil }

// RenderPass is the software backend's driver.RenderPass.
type RenderPass struct {
	desc driver.RenderPassDesc
}

func (r *RenderPass) Destroy() {}
