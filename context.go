package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/memory"
)

// Window is what the context needs from the platform window layer.
type Window interface {
	// RequiredInstanceExtensions lists the instance extensions needed to
	// create a surface for the window.
	RequiredInstanceExtensions() []string
	// CreateSurface creates the presentation surface of the window.
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// Context owns every GPU object of the renderer. It is created by Init,
// driven by DrawFrame from a single goroutine and released by Destroy.
type Context struct {
	drv    Driver
	win    Window
	log    *Logger
	ledger *memory.Ledger
	cfg    Config

	width, height uint32

	validation  bool
	debugReport bool
	layers      []string
	extensions  []string

	instance Owned[vk.Instance]
	debug    Owned[vk.DebugReportCallback]
	surface  Owned[vk.Surface]
	gpu      Borrowed[vk.PhysicalDevice]
	gpuName  string
	device   Owned[vk.Device]
	families QueueFamilyIndices
	support  SwapchainSupport

	graphicsQueue Borrowed[vk.Queue]
	presentQueue  Borrowed[vk.Queue]
	transferQueue Borrowed[vk.Queue]

	swapchain *Swapchain
	pipeline  *Pipeline
	commands  *Commands
	sync      *FrameSync

	state            FrameState
	frames           uint64
	suboptimalWarned bool
	destroyed        bool
	// unusable holds the failure that left the in-flight fence unsignaled.
	unusable error

	stack releaseStack
}

// Init creates everything needed to draw into win at width x height. When a
// stage fails, everything created before it is released in reverse order
// and the error names the stage.
func Init(drv Driver, win Window, width, height uint32, cfg Config, logger *Logger, ledger *memory.Ledger) (ctx *Context, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errors.New("vkrender: nil logger")
	}
	c := &Context{
		drv:    drv,
		win:    win,
		log:    logger,
		ledger: ledger,
		cfg:    cfg,
		width:  width,
		height: height,
	}
	c.stack.observer = func(name string) {
		c.log.Infof("released %s", name)
	}

	defer func() {
		if err != nil {
			c.stack.unwind()
			c.destroyed = true
			ctx = nil
		}
	}()
	defer checkErr(&err)

	stages := []func() error{
		c.createInstance,
		c.createSurface,
		c.createDebugMessenger,
		c.pickPhysicalDevice,
		c.createLogicalDevice,
		c.createSwapchain,
		c.createRenderPass,
		c.createGraphicsPipeline,
		c.createFramebuffers,
		c.createCommands,
		c.createSyncObjects,
	}
	for _, stage := range stages {
		if err := stage(); err != nil {
			return nil, err
		}
	}
	c.log.Infof("vulkan context ready on %s", c.gpuName)
	return c, nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (c *Context) WaitIdle() error {
	if c.destroyed || !c.device.Live() {
		return nil
	}
	return stageError(c.drv.DeviceWaitIdle(c.device.Handle()), "wait device idle")
}

// Destroy drains the device and releases everything in reverse creation
// order. Calling it again does nothing.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	if err := c.WaitIdle(); err != nil {
		c.log.Errorf("destroy: %v", err)
	}
	c.stack.unwind()
	c.destroyed = true
	c.state = FrameIdle
}

// SetReleaseObserver replaces the function told about each released stage.
func (c *Context) SetReleaseObserver(fn func(stage string)) {
	c.stack.observer = fn
}

// DeviceName is the name of the selected physical device.
func (c *Context) DeviceName() string { return c.gpuName }

// QueueFamilies reports the queue family roles of the selected device.
func (c *Context) QueueFamilies() QueueFamilyIndices { return c.families }

func (c *Context) Swapchain() *Swapchain { return c.swapchain }

// ValidationEnabled is false when validation was requested but unavailable.
func (c *Context) ValidationEnabled() bool { return c.validation }
