package vkrender

import vk "github.com/vulkan-go/vulkan"

// renderPassInfo declares one cleared color attachment that ends in the
// present layout. The external dependency keeps the subpass from writing
// before the acquired image is available.
func renderPassInfo(format vk.Format) *vk.RenderPassCreateInfo {
	colorAttachment := vk.AttachmentDescription{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorRef},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	return &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (c *Context) createRenderPass() error {
	pass, ret := c.drv.CreateRenderPass(c.device.Handle(), renderPassInfo(c.swapchain.Format.Format))
	if err := stageError(ret, "create render pass"); err != nil {
		return err
	}
	c.pipeline = &Pipeline{renderPass: own(pass)}
	c.stack.push(stageRenderPass, func() {
		c.pipeline.renderPass.release(func(p vk.RenderPass) {
			c.drv.DestroyRenderPass(c.device.Handle(), p)
		})
	})
	return nil
}
