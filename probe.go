package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/memory"
)

const debugReportExtension = "VK_EXT_debug_report"

// SwapchainSupport is what a surface offers on one physical device.
type SwapchainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether a swapchain can be built at all.
func (s SwapchainSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

func (s *SwapchainSupport) release(ledger *memory.Ledger) {
	memory.Release(ledger, s.Formats, memory.TagSwapchain)
	memory.Release(ledger, s.PresentModes, memory.TagSwapchain)
	s.Formats = nil
	s.PresentModes = nil
}

// DeviceCandidate is the probed state of one physical device.
type DeviceCandidate struct {
	Name                string
	Discrete            bool
	MaxImageDimension2D uint32
	GeometryShader      bool
	Families            QueueFamilyIndices
	MissingExtensions   []string
	Support             SwapchainSupport
}

// probeValidationLayers enables validation only when every configured layer
// is installed. A missing layer is a warning.
func (c *Context) probeValidationLayers() error {
	c.validation = false
	if !c.cfg.Validation {
		return nil
	}
	available, err := c.drv.InstanceLayers()
	if err != nil {
		return errors.Wrap(err, "enumerate instance layers")
	}
	layers, missing := checkExisting(available, c.cfg.ValidationLayers)
	if len(missing) > 0 {
		c.log.Warnf("validation layers %v not available, validation disabled", missing)
		return nil
	}
	c.validation = true
	c.layers = layers
	return nil
}

// instanceExtensions collects the window extensions plus debug report when
// validation is on. The list is tracked in the ledger until teardown.
func (c *Context) instanceExtensions() ([]string, error) {
	available, err := c.drv.InstanceExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	wanted := append([]string(nil), c.win.RequiredInstanceExtensions()...)
	existing, missing := checkExisting(available, wanted)
	if len(missing) > 0 {
		return nil, errors.Errorf("window requires missing instance extensions %v", missing)
	}
	if c.validation {
		if _, missing := checkExisting(available, []string{debugReportExtension}); len(missing) > 0 {
			c.log.Warnf("%s not available, debug messages disabled", debugReportExtension)
		} else {
			existing = append(existing, debugReportExtension)
			c.debugReport = true
		}
	}

	size := 0
	for _, name := range existing {
		size += len(name) + 1
	}
	c.ledger.Track(size, memory.TagString)
	c.stack.push(stageExtensionNames, func() {
		c.ledger.Untrack(size, memory.TagString)
		c.extensions = nil
	})
	return existing, nil
}

func (c *Context) createInstance() error {
	if err := c.probeValidationLayers(); err != nil {
		return err
	}
	extensions, err := c.instanceExtensions()
	if err != nil {
		return err
	}
	c.extensions = extensions
	c.log.Infof("enabling %d instance extensions", len(extensions))

	instance, ret := c.drv.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(c.cfg.AppName),
			PEngineName:        safeString(c.cfg.EngineName),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(c.layers)),
		PpEnabledLayerNames:     safeStrings(c.layers),
	})
	if err := stageError(ret, "create instance"); err != nil {
		return err
	}
	c.instance = own(instance)
	c.stack.push(stageInstance, func() {
		c.instance.release(c.drv.DestroyInstance)
	})
	return nil
}

func (c *Context) createSurface() error {
	surface, err := c.win.CreateSurface(c.instance.Handle())
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}
	c.surface = own(surface)
	c.stack.push(stageSurface, func() {
		c.surface.release(func(s vk.Surface) {
			c.drv.DestroySurface(c.instance.Handle(), s)
		})
	})
	return nil
}

// probeDevice queries everything the selector scores. Swapchain support is
// only queried when the device offers every required extension.
func (c *Context) probeDevice(gpu vk.PhysicalDevice) (DeviceCandidate, error) {
	var cand DeviceCandidate

	props := c.drv.PhysicalDeviceProperties(gpu)
	cand.Name = vk.ToString(props.DeviceName[:])
	cand.Discrete = props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu
	cand.MaxImageDimension2D = props.Limits.MaxImageDimension2D

	features := c.drv.PhysicalDeviceFeatures(gpu)
	cand.GeometryShader = features.GeometryShader == vk.True

	surface := c.surface.Handle()
	families := c.drv.QueueFamilies(gpu)
	present := make([]bool, len(families))
	for i := range families {
		ok, err := c.drv.SurfaceSupport(gpu, uint32(i), surface)
		if err != nil {
			return cand, errors.Wrapf(err, "query present support of %s", cand.Name)
		}
		present[i] = ok
	}
	cand.Families = findQueueFamilies(families, present)

	available, err := c.drv.DeviceExtensions(gpu)
	if err != nil {
		return cand, errors.Wrapf(err, "enumerate device extensions of %s", cand.Name)
	}
	_, cand.MissingExtensions = checkExisting(available, c.cfg.DeviceExtensions)
	if len(cand.MissingExtensions) > 0 {
		return cand, nil
	}

	cand.Support, err = c.querySwapchainSupport(gpu, surface)
	if err != nil {
		return cand, errors.Wrapf(err, "query swapchain support of %s", cand.Name)
	}
	return cand, nil
}

func (c *Context) querySwapchainSupport(gpu vk.PhysicalDevice, surface vk.Surface) (SwapchainSupport, error) {
	var s SwapchainSupport
	caps, err := c.drv.SurfaceCapabilities(gpu, surface)
	if err != nil {
		return s, err
	}
	formats, err := c.drv.SurfaceFormats(gpu, surface)
	if err != nil {
		return s, err
	}
	modes, err := c.drv.SurfacePresentModes(gpu, surface)
	if err != nil {
		return s, err
	}

	s.Capabilities = caps
	s.Formats = memory.Make[vk.SurfaceFormat](c.ledger, len(formats), memory.TagSwapchain)
	copy(s.Formats, formats)
	s.PresentModes = memory.Make[vk.PresentMode](c.ledger, len(modes), memory.TagSwapchain)
	copy(s.PresentModes, modes)
	return s, nil
}
