package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/memory"
)

// Swapchain is the presentable image ring with its views and framebuffers.
type Swapchain struct {
	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D

	handle       Owned[vk.Swapchain]
	images       []Borrowed[vk.Image]
	views        []Owned[vk.ImageView]
	framebuffers []Owned[vk.Framebuffer]
}

func (s *Swapchain) ImageCount() int { return len(s.images) }

// Viewport covers the whole extent.
func (s *Swapchain) Viewport() vk.Viewport {
	return vk.Viewport{
		Width:    float32(s.Extent.Width),
		Height:   float32(s.Extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
}

func (s *Swapchain) Scissor() vk.Rect2D {
	return vk.Rect2D{Offset: vk.Offset2D{}, Extent: s.Extent}
}

// chooseSurfaceFormat picks the preferred format and color space pair, or the
// first format offered.
func chooseSurfaceFormat(formats []vk.SurfaceFormat, format vk.Format, space vk.ColorSpace) (vk.SurfaceFormat, bool) {
	for _, f := range formats {
		if f.Format == format && f.ColorSpace == space {
			return f, true
		}
	}
	return formats[0], false
}

// choosePresentMode picks the preferred mode, or FIFO which every driver
// supports.
func choosePresentMode(modes []vk.PresentMode, preferred vk.PresentMode) (vk.PresentMode, bool) {
	for _, m := range modes {
		if m == preferred {
			return m, true
		}
	}
	return vk.PresentModeFifo, false
}

// chooseExtent uses the current extent unless the surface reports the
// MaxUint32 sentinel, in which case the window size is clamped into range.
func chooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image over the minimum. A maximum of zero
// means unbounded.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// chooseSharing returns concurrent sharing across both families when
// graphics and present differ.
func chooseSharing(q QueueFamilyIndices) (vk.SharingMode, []uint32) {
	if q.SeparatePresent() {
		return vk.SharingModeConcurrent, []uint32{q.Graphics.Index, q.Present.Index}
	}
	return vk.SharingModeExclusive, nil
}

func chooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, bit := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c *Context) createSwapchain() error {
	caps := c.support.Capabilities
	sc := &Swapchain{}

	var ok bool
	sc.Format, ok = chooseSurfaceFormat(c.support.Formats, c.cfg.SurfaceFormat, c.cfg.SurfaceColorSpace)
	if !ok {
		c.log.Warnf("preferred surface format not supported, using format %d color space %d",
			sc.Format.Format, sc.Format.ColorSpace)
	}
	sc.PresentMode, ok = choosePresentMode(c.support.PresentModes, c.cfg.PresentMode)
	if !ok {
		c.log.Warnf("present mode %d not supported, falling back to FIFO", c.cfg.PresentMode)
	}
	sc.Extent = chooseExtent(caps, c.width, c.height)
	imageCount := chooseImageCount(caps)
	sharing, families := chooseSharing(c.families)

	handle, ret := c.drv.CreateSwapchain(c.device.Handle(), &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               c.surface.Handle(),
		MinImageCount:         imageCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		PreTransform:          caps.CurrentTransform,
		CompositeAlpha:        chooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	})
	if err := stageError(ret, "create swapchain"); err != nil {
		return err
	}
	sc.handle = own(handle)
	c.swapchain = sc
	c.stack.push(stageSwapchain, func() {
		sc.handle.release(func(h vk.Swapchain) {
			c.drv.DestroySwapchain(c.device.Handle(), h)
		})
	})

	images, err := c.drv.SwapchainImages(c.device.Handle(), handle)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	sc.images = memory.Make[Borrowed[vk.Image]](c.ledger, len(images), memory.TagSwapchain)
	for i, img := range images {
		sc.images[i] = borrow(img)
	}
	c.log.Infof("swapchain %dx%d with %d images", sc.Extent.Width, sc.Extent.Height, len(images))
	return c.createImageViews()
}

// createImageViews builds one color view per swapchain image. Views created
// before a failure are released with the rest of the group.
func (c *Context) createImageViews() error {
	sc := c.swapchain
	dev := c.device.Handle()
	sc.views = memory.Make[Owned[vk.ImageView]](c.ledger, len(sc.images), memory.TagSwapchain)
	c.stack.push(stageImageViews, func() {
		releaseAll(sc.views, func(v vk.ImageView) { c.drv.DestroyImageView(dev, v) })
		memory.Release(c.ledger, sc.views, memory.TagSwapchain)
		memory.Release(c.ledger, sc.images, memory.TagSwapchain)
		sc.views, sc.images = nil, nil
	})

	for i, img := range sc.images {
		view, ret := c.drv.CreateImageView(dev, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img.Handle(),
			ViewType: vk.ImageViewType2d,
			Format:   sc.Format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err := stageError(ret, "create image view"); err != nil {
			return errors.WithMessagef(err, "image %d", i)
		}
		sc.views[i] = own(view)
	}
	return nil
}
