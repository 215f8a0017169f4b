package vkrender

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FrameState is the step DrawFrame has reached.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameWaitingOnFence
	FrameImageAcquired
	FrameRecorded
	FrameSubmitted
	FramePresented
)

var frameStateNames = [...]string{
	FrameIdle:           "idle",
	FrameWaitingOnFence: "waiting on fence",
	FrameImageAcquired:  "image acquired",
	FrameRecorded:       "recorded",
	FrameSubmitted:      "submitted",
	FramePresented:      "presented",
}

func (s FrameState) String() string {
	if s < 0 || int(s) >= len(frameStateNames) {
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
	return frameStateNames[s]
}

func (c *Context) transition(s FrameState) {
	c.state = s
	c.log.Debugf("frame %d: %s", c.frames, s)
}

// State reports the step of the current or last frame.
func (c *Context) State() FrameState { return c.state }

// Frames counts presented frames.
func (c *Context) Frames() uint64 { return c.frames }

// DrawFrame runs one acquire, record, submit and present cycle. It blocks
// until the previous frame's fence has signaled. An out of date swapchain
// returns ErrSwapchainOutOfDate. If a frame fails after the fence was reset
// and the fence cannot be signaled again, later calls return ErrUnusable.
func (c *Context) DrawFrame() (err error) {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.unusable != nil {
		return errors.Wrap(ErrUnusable, c.unusable.Error())
	}
	defer func() {
		if err != nil {
			c.transition(FrameIdle)
		}
	}()

	dev := c.device.Handle()
	sync := c.sync

	c.transition(FrameWaitingOnFence)
	ret := c.drv.WaitForFence(dev, sync.inFlight.Handle(), c.cfg.FenceTimeout)
	if err := stageError(ret, "wait for in-flight fence"); err != nil {
		return err
	}

	imageIndex, ret := c.drv.AcquireNextImage(dev, c.swapchain.handle.Handle(),
		c.cfg.AcquireTimeout, sync.imageAvailable.Handle())
	if err := c.checkPresentable(ret, "acquire next image"); err != nil {
		return err
	}
	if err := c.checkImageIndex(imageIndex); err != nil {
		return err
	}
	c.transition(FrameImageAcquired)

	// Reset only once work will be submitted, otherwise the next wait
	// would never return.
	if err := stageError(c.drv.ResetFence(dev, sync.inFlight.Handle()), "reset in-flight fence"); err != nil {
		return err
	}

	if err := c.record(imageIndex); err != nil {
		return c.resignalFence(err)
	}
	c.transition(FrameRecorded)

	ret = c.drv.QueueSubmit(c.graphicsQueue.Handle(), &vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.imageAvailable.Handle()},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{c.commands.buffer.Handle()},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sync.renderFinished.Handle()},
	}, sync.inFlight.Handle())
	if err := stageError(ret, "submit draw command buffer"); err != nil {
		return c.resignalFence(err)
	}
	c.transition(FrameSubmitted)

	ret = c.drv.QueuePresent(c.presentQueue.Handle(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.renderFinished.Handle()},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapchain.handle.Handle()},
		PImageIndices:      []uint32{imageIndex},
	})
	if err := c.checkPresentable(ret, "present"); err != nil {
		return err
	}
	c.transition(FramePresented)
	c.frames++
	c.transition(FrameIdle)
	return nil
}

// resignalFence is called when a frame fails between the fence reset and a
// successful submit. An empty submit consumes the acquire semaphore and
// signals the fence so the next wait returns. If that submit fails too the
// context is marked unusable. frameErr is always returned.
func (c *Context) resignalFence(frameErr error) error {
	ret := c.drv.QueueSubmit(c.graphicsQueue.Handle(), &vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.sync.imageAvailable.Handle()},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
	}, c.sync.inFlight.Handle())
	if err := stageError(ret, "signal in-flight fence"); err != nil {
		c.unusable = errors.WithMessage(frameErr, err.Error())
		c.log.Errorf("frame %d: %v", c.frames, c.unusable)
	}
	return frameErr
}

// checkPresentable maps acquire and present results. Suboptimal keeps
// going with a single warning.
func (c *Context) checkPresentable(ret vk.Result, stage string) error {
	switch ret {
	case vk.Success:
		return nil
	case vk.Suboptimal:
		if !c.suboptimalWarned {
			c.log.Warnf("%s: swapchain is suboptimal for the surface", stage)
			c.suboptimalWarned = true
		}
		return nil
	case vk.ErrorOutOfDate:
		return errors.Wrap(ErrSwapchainOutOfDate, stage)
	}
	return stageError(ret, stage)
}
