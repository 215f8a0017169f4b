package vkrender

// Release stage names, in creation order.
const (
	stageExtensionNames   = "extension names"
	stageInstance         = "instance"
	stageSurface          = "surface"
	stageDebugMessenger   = "debug messenger"
	stageDevice           = "logical device"
	stageSwapchainSupport = "swapchain support"
	stageSwapchain        = "swapchain"
	stageImageViews       = "image views"
	stageRenderPass       = "render pass"
	stagePipelineLayout   = "pipeline layout"
	stagePipeline         = "pipeline"
	stageFramebuffers     = "framebuffers"
	stageCommandPool      = "command pool"
	stageSyncObjects      = "sync objects"
)

type releaseStep struct {
	name string
	fn   func()
}

// releaseStack destroys resources in reverse creation order. Every group of
// created objects pushes one step right after it exists.
type releaseStack struct {
	steps []releaseStep

	// observer receives each released stage name.
	observer func(name string)
}

func (s *releaseStack) push(name string, fn func()) {
	s.steps = append(s.steps, releaseStep{name: name, fn: fn})
}

func (s *releaseStack) len() int { return len(s.steps) }

// unwind pops and runs every step.
func (s *releaseStack) unwind() {
	for len(s.steps) > 0 {
		last := len(s.steps) - 1
		step := s.steps[last]
		s.steps = s.steps[:last]
		step.fn()
		if s.observer != nil {
			s.observer(step.name)
		}
	}
}
