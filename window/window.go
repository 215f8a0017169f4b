// Package window owns the GLFW window, pumps its events into an input state
// and creates the Vulkan surface for it.
package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/input"
)

// InitVulkanLoader initializes GLFW and points vulkan-go at the loader GLFW
// found. Call once from the main thread before creating a driver.
func InitVulkanLoader() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw: vulkan loader not found")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "init vulkan")
	}
	return nil
}

// Terminate releases GLFW. Windows must be destroyed first.
func Terminate() {
	glfw.Terminate()
}

type Window struct {
	win   *glfw.Window
	input *input.State
}

// New opens a non-resizable window without a client API. Key and mouse
// button changes are forwarded to state when it is not nil.
func New(title string, width, height int, state *input.State) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	w := &Window{win: win, input: state}
	win.SetKeyCallback(w.onKey)
	win.SetMouseButtonCallback(w.onMouseButton)
	return w, nil
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.win.SetShouldClose(true)
	}
	if w.input == nil || action == glfw.Repeat {
		return
	}
	if k, ok := translateKey(key); ok {
		w.input.ProcessKey(k, action == glfw.Press)
	}
}

func (w *Window) onMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if w.input == nil {
		return
	}
	if mb, ok := translateMouseButton(button); ok {
		w.input.ProcessMouseButton(mb, action == glfw.Press)
	}
}

// RequiredInstanceExtensions lists the surface extensions for this platform.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

// PollEvents snapshots the previous input state, then processes pending
// window events.
func (w *Window) PollEvents() {
	if w.input != nil {
		w.input.Update()
	}
	glfw.PollEvents()
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (uint32, uint32) {
	width, height := w.win.GetFramebufferSize()
	return uint32(width), uint32(height)
}

func (w *Window) Destroy() {
	w.win.Destroy()
}
