package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Commands is the command pool of the graphics family and its single primary
// buffer. The buffer is reset and re-recorded every frame.
type Commands struct {
	pool   Owned[vk.CommandPool]
	buffer Borrowed[vk.CommandBuffer]
}

func (c *Context) createCommands() error {
	dev := c.device.Handle()
	pool, ret := c.drv.CreateCommandPool(dev, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: c.families.Graphics.Index,
		// ResetCommandBufferBit allows the buffer to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	})
	if err := stageError(ret, "create command pool"); err != nil {
		return err
	}
	cmds := &Commands{pool: own(pool)}
	c.commands = cmds
	// Destroying the pool frees its buffers.
	c.stack.push(stageCommandPool, func() {
		cmds.pool.release(func(p vk.CommandPool) { c.drv.DestroyCommandPool(dev, p) })
	})

	buffer, ret := c.drv.AllocateCommandBuffer(dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err := stageError(ret, "allocate command buffer"); err != nil {
		return err
	}
	cmds.buffer = borrow(buffer)
	return nil
}

func (c *Context) checkImageIndex(imageIndex uint32) error {
	if n := len(c.swapchain.framebuffers); int(imageIndex) >= n {
		return errors.Errorf("image index %d out of range (%d images)", imageIndex, n)
	}
	return nil
}

// record writes the frame for image index: a cleared render pass and, when
// VertexCount is set, one draw of the bound pipeline. The index must have
// passed checkImageIndex.
func (c *Context) record(imageIndex uint32) error {
	cmd := c.commands.buffer.Handle()
	sc := c.swapchain
	if err := stageError(c.drv.ResetCommandBuffer(cmd), "reset command buffer"); err != nil {
		return err
	}
	ret := c.drv.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := stageError(ret, "begin command buffer"); err != nil {
		return err
	}

	color := c.cfg.ClearColor
	c.drv.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      c.pipeline.renderPass.Handle(),
		Framebuffer:     sc.framebuffers[imageIndex].Handle(),
		RenderArea:      sc.Scissor(),
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(color[:])},
	})
	c.drv.CmdBindPipeline(cmd, c.pipeline.handle.Handle())
	c.drv.CmdSetViewport(cmd, sc.Viewport())
	c.drv.CmdSetScissor(cmd, sc.Scissor())
	if c.cfg.VertexCount > 0 {
		c.drv.CmdDraw(cmd, c.cfg.VertexCount)
	}
	c.drv.CmdEndRenderPass(cmd)

	return stageError(c.drv.EndCommandBuffer(cmd), "end command buffer")
}
