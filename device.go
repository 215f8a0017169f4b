package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// scoreDevice rates a candidate. Zero means the device cannot be used.
func scoreDevice(d DeviceCandidate) int {
	if !d.GeometryShader || !d.Families.IsComplete() ||
		len(d.MissingExtensions) > 0 || !d.Support.Adequate() {
		return 0
	}
	score := int(d.MaxImageDimension2D)
	if d.Discrete {
		score += 1000
	}
	return score
}

// selectDevice returns the index of the candidate with the strictly highest
// positive score. The first one wins ties.
func selectDevice(candidates []DeviceCandidate) (int, error) {
	if len(candidates) == 0 {
		return -1, ErrNoDevices
	}
	best, bestScore := -1, 0
	for i, d := range candidates {
		if score := scoreDevice(d); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return -1, ErrNoSuitableDevice
	}
	return best, nil
}

func (c *Context) pickPhysicalDevice() error {
	gpus, err := c.drv.PhysicalDevices(c.instance.Handle())
	if err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}
	if len(gpus) == 0 {
		return ErrNoDevices
	}

	candidates := make([]DeviceCandidate, 0, len(gpus))
	releaseUnused := func(keep int) {
		for i := range candidates {
			if i != keep {
				candidates[i].Support.release(c.ledger)
			}
		}
	}
	for _, gpu := range gpus {
		cand, err := c.probeDevice(gpu)
		candidates = append(candidates, cand)
		if err != nil {
			releaseUnused(-1)
			return err
		}
		c.log.Infof("device %q score %d", cand.Name, scoreDevice(cand))
	}

	best, err := selectDevice(candidates)
	releaseUnused(best)
	if err != nil {
		return err
	}

	chosen := candidates[best]
	c.gpu = borrow(gpus[best])
	c.gpuName = chosen.Name
	c.families = chosen.Families
	c.support = chosen.Support
	c.log.Infof("selected device %q (graphics %s, present %s, compute %s, transfer %s)",
		chosen.Name, c.families.Graphics, c.families.Present, c.families.Compute, c.families.Transfer)
	return nil
}

// createLogicalDevice builds the device and fetches its queues. The selected
// swapchain support is adopted here so it is released before the device.
func (c *Context) createLogicalDevice() error {
	infos := queueCreateInfos(c.families)
	extensions := safeStrings(c.cfg.DeviceExtensions)
	info := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(infos)),
		PQueueCreateInfos:       infos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}
	if c.validation {
		info.EnabledLayerCount = uint32(len(c.layers))
		info.PpEnabledLayerNames = safeStrings(c.layers)
	}

	device, ret := c.drv.CreateDevice(c.gpu.Handle(), info)
	if err := stageError(ret, "create logical device"); err != nil {
		c.support.release(c.ledger)
		return err
	}
	c.device = own(device)
	c.stack.push(stageDevice, func() {
		c.device.release(c.drv.DestroyDevice)
	})
	c.stack.push(stageSwapchainSupport, func() {
		c.support.release(c.ledger)
	})

	dev := c.device.Handle()
	c.graphicsQueue = borrow(c.drv.DeviceQueue(dev, c.families.Graphics.Index, 0))
	c.presentQueue = borrow(c.drv.DeviceQueue(dev, c.families.Present.Index, 0))
	if c.families.Transfer.Valid {
		c.transferQueue = borrow(c.drv.DeviceQueue(dev, c.families.Transfer.Index, 0))
	} else {
		c.transferQueue = c.graphicsQueue
	}
	c.log.Infof("logical device created with %d queue families", len(infos))
	return nil
}
