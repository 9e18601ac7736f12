// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/novaengine/gbal/driver"
	"github.com/novaengine/gbal/gerr"
	"github.com/novaengine/gbal/pipelinecache"
	"github.com/novaengine/gbal/registry"
)

// Pipeline is the Vulkan backend's driver.Pipeline, a VkPipeline
// plus the VkPipelineLayout it was built against.
type Pipeline struct {
	gpu      *GPU
	handle   vk.Pipeline
	layout   vk.PipelineLayout
	isCompute bool
}

func (p *Pipeline) Destroy() {
	if p.handle != nil {
		vk.DestroyPipeline(p.gpu.dev, p.handle, nil)
	}
	if p.layout != nil {
		vk.DestroyPipelineLayout(p.gpu.dev, p.layout, nil)
	}
}

func (p *Pipeline) IsCompute() bool { return p.isCompute }

// RenderPass is the Vulkan backend's driver.RenderPass, a
// VkRenderPass built from an AttachDesc list.
type RenderPass struct {
	gpu    *GPU
	handle vk.RenderPass
	desc   driver.RenderPassDesc
}

func (r *RenderPass) Destroy() {
	if r.handle != nil {
		vk.DestroyRenderPass(r.gpu.dev, r.handle, nil)
	}
}

func newRenderPass(gpu *GPU, desc *driver.RenderPassDesc) (*RenderPass, error) {
	var attachments []vk.AttachmentDescription
	var colorRefs []vk.AttachmentReference
	for i, a := range desc.ColorAttachments {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:        vkFormat(a.Format),
			Samples:       vkSampleCount(a.Samples),
			LoadOp:        vkLoadOp(a.LoadOp),
			StoreOp:       vkStoreOp(a.StoreOp),
			InitialLayout: vk.ImageLayoutUndefined,
			FinalLayout:   vk.ImageLayoutColorAttachmentOptimal,
		})
		colorRefs = append(colorRefs, vk.AttachmentReference{
			Attachment: uint32(i),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		})
	}
	var depthRef *vk.AttachmentReference
	if desc.DepthAttachment != nil {
		a := desc.DepthAttachment
		attachments = append(attachments, vk.AttachmentDescription{
			Format:        vkFormat(a.Format),
			Samples:       vkSampleCount(a.Samples),
			LoadOp:        vkLoadOp(a.LoadOp),
			StoreOp:       vkStoreOp(a.StoreOp),
			InitialLayout: vk.ImageLayoutUndefined,
			FinalLayout:   vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		depthRef = &vk.AttachmentReference{
			Attachment: uint32(len(attachments) - 1),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}
	if depthRef != nil {
		subpass.PDepthStencilAttachment = depthRef
	}

	info := &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}
	var handle vk.RenderPass
	if vk.CreateRenderPass(gpu.dev, info, nil, &handle) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}
	return &RenderPass{gpu: gpu, handle: handle, desc: *desc}, nil
}

func vkSampleCount(n int) vk.SampleCountFlagBits {
	switch n {
	case 2:
		return vk.SampleCount2Bit
	case 4:
		return vk.SampleCount4Bit
	case 8:
		return vk.SampleCount8Bit
	case 16:
		return vk.SampleCount16Bit
	default:
		return vk.SampleCount1Bit
	}
}

func vkLoadOp(op driver.LoadOp) vk.AttachmentLoadOp {
	switch op {
	case driver.LoadClear:
		return vk.AttachmentLoadOpClear
	case driver.LoadDontCare:
		return vk.AttachmentLoadOpDontCare
	default:
		return vk.AttachmentLoadOpLoad
	}
}

func vkStoreOp(op driver.StoreOp) vk.AttachmentStoreOp {
	if op == driver.StoreDontCare {
		return vk.AttachmentStoreOpDontCare
	}
	return vk.AttachmentStoreOpStore
}

// newGraphicsPipeline builds a VkPipeline from a GraphState, routed
// through the shared pipeline cache exactly as the software backend
// does: identical descriptors key to the same cached object.
func (g *GPU) newGraphicsPipeline(s *driver.GraphState, pass *RenderPass) (driver.Pipeline, error) {
	key := pipelinecache.HashGraphState(s)
	p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
		return g.buildGraphicsPipeline(s, pass)
	})
	return p, err
}

func (g *GPU) buildGraphicsPipeline(s *driver.GraphState, pass *RenderPass) (driver.Pipeline, error) {
	var stages []vk.PipelineShaderStageCreateInfo
	addStage := func(sh driver.Shader, stage vk.ShaderStageFlagBits) {
		if sh == nil {
			return
		}
		vsh := sh.(*Shader)
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: vsh.handle,
			PName:  vsh.entry + "\x00",
		})
	}
	addStage(s.VertexShader, vk.ShaderStageVertexBit)
	addStage(s.FragmentShader, vk.ShaderStageFragmentBit)
	addStage(s.GeometryShader, vk.ShaderStageGeometryBit)

	var bindings []vk.VertexInputBindingDescription
	var attrs []vk.VertexInputAttributeDescription
	for i, in := range s.VertexIn {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   uint32(i),
			Stride:    uint32(in.Stride),
			InputRate: vk.VertexInputRateVertex,
		})
		attrs = append(attrs, vk.VertexInputAttributeDescription{
			Location: uint32(i),
			Binding:  uint32(i),
			Format:   vkVertexFormat(in.Format),
		})
	}
	vertexInput := &vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}

	inputAssembly := &vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vkTopology(s.Topology),
	}

	viewportState := &vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	raster := &vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vkPolygonMode(s.Wireframe),
		CullMode:    vk.CullModeFlags(vkCullMode(s.CullMode)),
		FrontFace:   vkFrontFace(s.FrontCCW),
		LineWidth:   1,
	}

	multisample := &vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vkSampleCount(s.SampleCount),
	}

	depthStencil := &vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vkBool(s.DepthStencil.DepthTestEnabled),
		DepthWriteEnable: vkBool(s.DepthStencil.DepthWriteEnabled),
		DepthCompareOp:   vkCompareOp(s.DepthStencil.DepthFunc),
	}

	var attachments []vk.PipelineColorBlendAttachmentState
	if len(s.Blend) == 0 {
		attachments = append(attachments, vk.PipelineColorBlendAttachmentState{ColorWriteMask: 0xf})
	}
	for _, b := range s.Blend {
		attachments = append(attachments, vk.PipelineColorBlendAttachmentState{
			BlendEnable:         vkBool(b.Enabled),
			SrcColorBlendFactor: vkBlendFactor(b.SrcColor),
			DstColorBlendFactor: vkBlendFactor(b.DstColor),
			ColorBlendOp:        vkBlendOp(b.ColorOp),
			SrcAlphaBlendFactor: vkBlendFactor(b.SrcAlpha),
			DstAlphaBlendFactor: vkBlendFactor(b.DstAlpha),
			AlphaBlendOp:        vkBlendOp(b.AlphaOp),
			ColorWriteMask:      vk.ColorComponentFlags(b.WriteMask),
		})
	}
	colorBlend := &vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
	}

	dynStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamic := &vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynStates)),
		PDynamicStates:    dynStates,
	}

	layoutInfo := &vk.PipelineLayoutCreateInfo{SType: vk.StructureTypePipelineLayoutCreateInfo}
	var layout vk.PipelineLayout
	if vk.CreatePipelineLayout(g.dev, layoutInfo, nil, &layout) != vk.Success {
		return nil, driverErr(gerr.ResourceCreationFailed)
	}

	var renderPass vk.RenderPass
	if pass != nil {
		renderPass = pass.handle
	}

	info := []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:           uint32(len(stages)),
		PStages:              stages,
		PVertexInputState:    vertexInput,
		PInputAssemblyState:  inputAssembly,
		PViewportState:       viewportState,
		PRasterizationState:  raster,
		PMultisampleState:    multisample,
		PDepthStencilState:   depthStencil,
		PColorBlendState:     colorBlend,
		PDynamicState:        dynamic,
		Layout:               layout,
		RenderPass:           renderPass,
	}}
	handles := make([]vk.Pipeline, 1)
	if vk.CreateGraphicsPipelines(g.dev, nil, 1, info, nil, handles) != vk.Success {
		vk.DestroyPipelineLayout(g.dev, layout, nil)
		return nil, driverErr(gerr.InvalidPipelineState)
	}

	p := &Pipeline{gpu: g, handle: handles[0], layout: layout}
	g.RegisterResource(registry.KindPipeline, s.DebugName, p)
	return p, nil
}

// newComputePipeline builds a VkPipeline from a CompState, routed
// through the same cache as graphics pipelines.
func (g *GPU) newComputePipeline(s *driver.CompState) (driver.Pipeline, error) {
	key := pipelinecache.HashCompState(s)
	p, _, err := g.Pipelines.GetOrCreate(key, func() (driver.Pipeline, error) {
		vsh := s.ComputeShader.(*Shader)
		layoutInfo := &vk.PipelineLayoutCreateInfo{SType: vk.StructureTypePipelineLayoutCreateInfo}
		var layout vk.PipelineLayout
		if vk.CreatePipelineLayout(g.dev, layoutInfo, nil, &layout) != vk.Success {
			return nil, driverErr(gerr.ResourceCreationFailed)
		}
		info := []vk.ComputePipelineCreateInfo{{
			SType: vk.StructureTypeComputePipelineCreateInfo,
			Stage: vk.PipelineShaderStageCreateInfo{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vk.ShaderStageComputeBit,
				Module: vsh.handle,
				PName:  vsh.entry + "\x00",
			},
			Layout: layout,
		}}
		handles := make([]vk.Pipeline, 1)
		if vk.CreateComputePipelines(g.dev, nil, 1, info, nil, handles) != vk.Success {
			vk.DestroyPipelineLayout(g.dev, layout, nil)
			return nil, driverErr(gerr.InvalidPipelineState)
		}
		p := &Pipeline{gpu: g, handle: handles[0], layout: layout, isCompute: true}
		g.RegisterResource(registry.KindPipeline, s.DebugName, p)
		return p, nil
	})
	return p, err
}

func vkTopology(t driver.Topology) vk.PrimitiveTopology {
	switch t {
	case driver.TLine:
		return vk.PrimitiveTopologyLineList
	case driver.TLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case driver.TTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case driver.TPoint:
		return vk.PrimitiveTopologyPointList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func vkPolygonMode(wireframe bool) vk.PolygonMode {
	if wireframe {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

func vkCullMode(c driver.CullMode) vk.CullModeFlagBits {
	switch c {
	case driver.CullFront:
		return vk.CullModeFrontBit
	case driver.CullBack:
		return vk.CullModeBackBit
	default:
		return vk.CullModeNone
	}
}

func vkFrontFace(ccw bool) vk.FrontFace {
	if ccw {
		return vk.FrontFaceCounterClockwise
	}
	return vk.FrontFaceClockwise
}

func vkBlendFactor(f driver.BlendFactor) vk.BlendFactor {
	switch f {
	case driver.BlendOne:
		return vk.BlendFactorOne
	case driver.BlendSrcColor:
		return vk.BlendFactorSrcColor
	case driver.BlendOneMinusSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case driver.BlendSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case driver.BlendOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case driver.BlendDstColor:
		return vk.BlendFactorDstColor
	case driver.BlendOneMinusDstColor:
		return vk.BlendFactorOneMinusDstColor
	case driver.BlendDstAlpha:
		return vk.BlendFactorDstAlpha
	case driver.BlendOneMinusDstAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	default:
		return vk.BlendFactorZero
	}
}

func vkBlendOp(o driver.BlendOp) vk.BlendOp {
	switch o {
	case driver.BlendSubtract:
		return vk.BlendOpSubtract
	case driver.BlendReverseSubtract:
		return vk.BlendOpReverseSubtract
	case driver.BlendMin:
		return vk.BlendOpMin
	case driver.BlendMax:
		return vk.BlendOpMax
	default:
		return vk.BlendOpAdd
	}
}

func vkVertexFormat(f driver.VertexFmt) vk.Format {
	switch f {
	case driver.Float32:
		return vk.FormatR32Sfloat
	case driver.Float32x2:
		return vk.FormatR32g32Sfloat
	case driver.Float32x3:
		return vk.FormatR32g32b32Sfloat
	case driver.Float32x4:
		return vk.FormatR32g32b32a32Sfloat
	case driver.Int32:
		return vk.FormatR32Sint
	case driver.Int32x2:
		return vk.FormatR32g32Sint
	case driver.Int32x3:
		return vk.FormatR32g32b32Sint
	case driver.Int32x4:
		return vk.FormatR32g32b32a32Sint
	case driver.UInt32:
		return vk.FormatR32Uint
	case driver.UByte4Norm:
		return vk.FormatR8g8b8a8Unorm
	default:
		return vk.FormatR32g32b32a32Sfloat
	}
}
