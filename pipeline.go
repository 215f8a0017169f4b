package vkrender

import vk "github.com/vulkan-go/vulkan"

// Pipeline holds the render pass and the graphics pipeline drawn with it.
type Pipeline struct {
	renderPass Owned[vk.RenderPass]
	layout     Owned[vk.PipelineLayout]
	handle     Owned[vk.Pipeline]
}

// pipelineBuilder keeps the fixed function state of the triangle pipeline.
// Viewport and scissor are dynamic and set while recording.
type pipelineBuilder struct {
	shaderStages         []vk.PipelineShaderStageCreateInfo
	vertexInput          vk.PipelineVertexInputStateCreateInfo
	inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	rasterizer           vk.PipelineRasterizationStateCreateInfo
	multisampling        vk.PipelineMultisampleStateCreateInfo
	colorBlendAttachment vk.PipelineColorBlendAttachmentState
	dynamicStates        []vk.DynamicState
}

func newPipelineBuilder(stages []vk.PipelineShaderStageCreateInfo) *pipelineBuilder {
	return &pipelineBuilder{
		shaderStages: stages,
		// Geometry comes from the vertex shader, no bindings.
		vertexInput: vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		inputAssembly: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		rasterizer: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:               vk.FrontFaceClockwise,
			DepthBiasEnable:         vk.False,
			LineWidth:               1.0,
		},
		multisampling: vk.PipelineMultisampleStateCreateInfo{
			SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples:  vk.SampleCount1Bit,
			SampleShadingEnable:   vk.False,
			MinSampleShading:      1.0,
			AlphaToCoverageEnable: vk.False,
			AlphaToOneEnable:      vk.False,
		},
		colorBlendAttachment: vk.PipelineColorBlendAttachmentState{
			ColorWriteMask: vk.ColorComponentFlags(
				vk.ColorComponentRBit |
					vk.ColorComponentGBit |
					vk.ColorComponentBBit |
					vk.ColorComponentABit,
			),
			BlendEnable:         vk.False,
			SrcColorBlendFactor: vk.BlendFactorOne,
			DstColorBlendFactor: vk.BlendFactorZero,
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: vk.BlendFactorOne,
			DstAlphaBlendFactor: vk.BlendFactorZero,
			AlphaBlendOp:        vk.BlendOpAdd,
		},
		dynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
	}
}

func (p *pipelineBuilder) info(layout vk.PipelineLayout, pass vk.RenderPass) *vk.GraphicsPipelineCreateInfo {
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p.colorBlendAttachment},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(p.dynamicStates)),
		PDynamicStates:    p.dynamicStates,
	}

	return &vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p.shaderStages)),
		PStages:             p.shaderStages,
		PVertexInputState:   &p.vertexInput,
		PInputAssemblyState: &p.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p.rasterizer,
		PMultisampleState:   &p.multisampling,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          pass,
		Subpass:             0,
		BasePipelineHandle:  vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:   -1,
	}
}

// createGraphicsPipeline builds the layout and the pipeline. Shader modules
// and their code are released before returning, also on failure.
func (c *Context) createGraphicsPipeline() error {
	dev := c.device.Handle()
	layout, ret := c.drv.CreatePipelineLayout(dev, &vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	})
	if err := stageError(ret, "create pipeline layout"); err != nil {
		return err
	}
	c.pipeline.layout = own(layout)
	c.stack.push(stagePipelineLayout, func() {
		c.pipeline.layout.release(func(l vk.PipelineLayout) { c.drv.DestroyPipelineLayout(dev, l) })
	})

	vert, err := c.loadShaderModule(c.cfg.VertexShaderPath, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer c.destroyShaderModule(vert)
	frag, err := c.loadShaderModule(c.cfg.FragmentShaderPath, vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer c.destroyShaderModule(frag)

	builder := newPipelineBuilder([]vk.PipelineShaderStageCreateInfo{
		vert.stageInfo(c.cfg.ShaderEntryPoint),
		frag.stageInfo(c.cfg.ShaderEntryPoint),
	})
	pipeline, ret := c.drv.CreateGraphicsPipeline(dev, builder.info(layout, c.pipeline.renderPass.Handle()))
	if err := stageError(ret, "create graphics pipeline"); err != nil {
		return err
	}
	c.pipeline.handle = own(pipeline)
	c.stack.push(stagePipeline, func() {
		c.pipeline.handle.release(func(p vk.Pipeline) { c.drv.DestroyPipeline(dev, p) })
	})
	return nil
}
