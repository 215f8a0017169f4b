package vkrender

import vk "github.com/vulkan-go/vulkan"

// FrameSync orders one frame in flight. The fence starts signaled so the
// first wait returns at once.
type FrameSync struct {
	imageAvailable Owned[vk.Semaphore]
	renderFinished Owned[vk.Semaphore]
	inFlight       Owned[vk.Fence]
}

func (c *Context) createSyncObjects() error {
	dev := c.device.Handle()
	s := &FrameSync{}
	c.sync = s
	// Semaphores go first, then the fence.
	c.stack.push(stageSyncObjects, func() {
		destroySemaphore := func(h vk.Semaphore) { c.drv.DestroySemaphore(dev, h) }
		s.imageAvailable.release(destroySemaphore)
		s.renderFinished.release(destroySemaphore)
		s.inFlight.release(func(h vk.Fence) { c.drv.DestroyFence(dev, h) })
	})

	sem, ret := c.drv.CreateSemaphore(dev)
	if err := stageError(ret, "create image available semaphore"); err != nil {
		return err
	}
	s.imageAvailable = own(sem)

	sem, ret = c.drv.CreateSemaphore(dev)
	if err := stageError(ret, "create render finished semaphore"); err != nil {
		return err
	}
	s.renderFinished = own(sem)

	fence, ret := c.drv.CreateFence(dev, true)
	if err := stageError(ret, "create in-flight fence"); err != nil {
		return err
	}
	s.inFlight = own(fence)
	return nil
}
