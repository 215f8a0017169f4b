package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/memory"
)

// createFramebuffers attaches one framebuffer to each swapchain image view.
func (c *Context) createFramebuffers() error {
	sc := c.swapchain
	dev := c.device.Handle()
	sc.framebuffers = memory.Make[Owned[vk.Framebuffer]](c.ledger, len(sc.views), memory.TagSwapchain)
	c.stack.push(stageFramebuffers, func() {
		releaseAll(sc.framebuffers, func(fb vk.Framebuffer) { c.drv.DestroyFramebuffer(dev, fb) })
		memory.Release(c.ledger, sc.framebuffers, memory.TagSwapchain)
		sc.framebuffers = nil
	})

	for i, view := range sc.views {
		fb, ret := c.drv.CreateFramebuffer(dev, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      c.pipeline.renderPass.Handle(),
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view.Handle()},
			Width:           sc.Extent.Width,
			Height:          sc.Extent.Height,
			Layers:          1,
		})
		if err := stageError(ret, "create framebuffer"); err != nil {
			return errors.WithMessagef(err, "image %d", i)
		}
		sc.framebuffers[i] = own(fb)
	}
	return nil
}
