package vkrender

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/memory"
)

// fakeGPU is one physical device reported by fakeDriver.
type fakeGPU struct {
	name       string
	deviceType vk.PhysicalDeviceType
	maxDim     uint32
	geometry   bool
	families   []vk.QueueFamilyProperties
	present    []bool
	extensions []string
	caps       vk.SurfaceCapabilities
	formats    []vk.SurfaceFormat
	modes      []vk.PresentMode
}

func defaultGPU(name string) fakeGPU {
	return fakeGPU{
		name:       name,
		deviceType: vk.PhysicalDeviceTypeDiscreteGpu,
		maxDim:     16384,
		geometry:   true,
		families: []vk.QueueFamilyProperties{{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
			QueueCount: 16,
		}},
		present:    []bool{true},
		extensions: []string{"VK_KHR_swapchain"},
		caps: vk.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           0,
			CurrentExtent:           vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		formats: []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		modes:   []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
	}
}

// fakeDriver records every call by method name. All handles it returns are
// zero values; the probed GPU is tracked by call order since every probe
// starts with PhysicalDeviceProperties.
type fakeDriver struct {
	mu    sync.Mutex
	calls []string

	layers     []string
	extensions []string
	gpus       []fakeGPU
	current    int

	// fail makes the named method return the result instead of success.
	fail map[string]vk.Result

	acquireResult vk.Result
	presentResult vk.Result
	imageIndex    uint32

	// fenceGate blocks WaitForFence until it is closed. fenceWaiting is
	// signaled when a wait starts.
	fenceGate    chan struct{}
	fenceWaiting chan struct{}

	// fenceSignaled follows the in-flight fence. A wait on an unsignaled
	// fence times out instead of hanging the test.
	fenceSignaled bool

	submits  []vk.SubmitInfo
	debugFn  DebugFunc
	drawn    []uint32
	deviceCI *vk.DeviceCreateInfo
	swapCI   *vk.SwapchainCreateInfo
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		layers:     []string{"VK_LAYER_KHRONOS_validation"},
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtension},
		gpus:       []fakeGPU{defaultGPU("Fake GPU")},
		fail:       map[string]vk.Result{},
	}
}

func (f *fakeDriver) record(name string) vk.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if ret, ok := f.fail[name]; ok {
		return ret
	}
	return vk.Success
}

func (f *fakeDriver) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDriver) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeDriver) count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// destroyCalls lists the recorded Destroy* and DeviceWaitIdle calls.
func (f *fakeDriver) destroyCalls() []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, "Destroy") || c == "DeviceWaitIdle" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDriver) gpu() fakeGPU { return f.gpus[f.current] }

func (f *fakeDriver) listError(name string) error {
	if ret := f.record(name); ret != vk.Success {
		return newError(ret)
	}
	return nil
}

func (f *fakeDriver) InstanceLayers() ([]string, error) {
	return f.layers, f.listError("InstanceLayers")
}

func (f *fakeDriver) InstanceExtensions() ([]string, error) {
	return f.extensions, f.listError("InstanceExtensions")
}

func (f *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	return nil, f.record("CreateInstance")
}

func (f *fakeDriver) DestroyInstance(vk.Instance) { f.record("DestroyInstance") }

func (f *fakeDriver) CreateDebugReportCallback(_ vk.Instance, _ vk.DebugReportFlags, fn DebugFunc) (vk.DebugReportCallback, vk.Result) {
	f.debugFn = fn
	return vk.NullDebugReportCallback, f.record("CreateDebugReportCallback")
}

func (f *fakeDriver) DestroyDebugReportCallback(vk.Instance, vk.DebugReportCallback) {
	f.record("DestroyDebugReportCallback")
}

func (f *fakeDriver) DestroySurface(vk.Instance, vk.Surface) { f.record("DestroySurface") }

func (f *fakeDriver) PhysicalDevices(vk.Instance) ([]vk.PhysicalDevice, error) {
	return make([]vk.PhysicalDevice, len(f.gpus)), f.listError("PhysicalDevices")
}

func (f *fakeDriver) PhysicalDeviceProperties(vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	f.mu.Lock()
	idx := 0
	for _, c := range f.calls {
		if c == "PhysicalDeviceProperties" {
			idx++
		}
	}
	f.current = idx
	f.mu.Unlock()
	f.record("PhysicalDeviceProperties")

	g := f.gpu()
	var props vk.PhysicalDeviceProperties
	copy(props.DeviceName[:], g.name)
	props.DeviceType = g.deviceType
	props.Limits.MaxImageDimension2D = g.maxDim
	return props
}

func (f *fakeDriver) PhysicalDeviceFeatures(vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	f.record("PhysicalDeviceFeatures")
	var features vk.PhysicalDeviceFeatures
	if f.gpu().geometry {
		features.GeometryShader = vk.True
	}
	return features
}

func (f *fakeDriver) QueueFamilies(vk.PhysicalDevice) []vk.QueueFamilyProperties {
	f.record("QueueFamilies")
	return f.gpu().families
}

func (f *fakeDriver) SurfaceSupport(_ vk.PhysicalDevice, family uint32, _ vk.Surface) (bool, error) {
	if err := f.listError("SurfaceSupport"); err != nil {
		return false, err
	}
	present := f.gpu().present
	return int(family) < len(present) && present[family], nil
}

func (f *fakeDriver) DeviceExtensions(vk.PhysicalDevice) ([]string, error) {
	return f.gpu().extensions, f.listError("DeviceExtensions")
}

func (f *fakeDriver) SurfaceCapabilities(vk.PhysicalDevice, vk.Surface) (vk.SurfaceCapabilities, error) {
	return f.gpu().caps, f.listError("SurfaceCapabilities")
}

func (f *fakeDriver) SurfaceFormats(vk.PhysicalDevice, vk.Surface) ([]vk.SurfaceFormat, error) {
	return f.gpu().formats, f.listError("SurfaceFormats")
}

func (f *fakeDriver) SurfacePresentModes(vk.PhysicalDevice, vk.Surface) ([]vk.PresentMode, error) {
	return f.gpu().modes, f.listError("SurfacePresentModes")
}

func (f *fakeDriver) CreateDevice(_ vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	f.deviceCI = info
	return nil, f.record("CreateDevice")
}

func (f *fakeDriver) DestroyDevice(vk.Device) { f.record("DestroyDevice") }

func (f *fakeDriver) DeviceQueue(vk.Device, uint32, uint32) vk.Queue {
	f.record("DeviceQueue")
	return nil
}

func (f *fakeDriver) DeviceWaitIdle(vk.Device) vk.Result { return f.record("DeviceWaitIdle") }

func (f *fakeDriver) CreateSwapchain(_ vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	f.swapCI = info
	return vk.NullSwapchain, f.record("CreateSwapchain")
}

func (f *fakeDriver) DestroySwapchain(vk.Device, vk.Swapchain) { f.record("DestroySwapchain") }

func (f *fakeDriver) SwapchainImages(vk.Device, vk.Swapchain) ([]vk.Image, error) {
	if err := f.listError("SwapchainImages"); err != nil {
		return nil, err
	}
	return make([]vk.Image, f.swapCI.MinImageCount), nil
}

func (f *fakeDriver) CreateImageView(vk.Device, *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	return null[vk.ImageView](), f.record("CreateImageView")
}

func (f *fakeDriver) DestroyImageView(vk.Device, vk.ImageView) { f.record("DestroyImageView") }

func (f *fakeDriver) CreateRenderPass(vk.Device, *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	return vk.NullRenderPass, f.record("CreateRenderPass")
}

func (f *fakeDriver) DestroyRenderPass(vk.Device, vk.RenderPass) { f.record("DestroyRenderPass") }

func (f *fakeDriver) CreateShaderModule(vk.Device, []byte) (vk.ShaderModule, vk.Result) {
	return vk.NullShaderModule, f.record("CreateShaderModule")
}

func (f *fakeDriver) DestroyShaderModule(vk.Device, vk.ShaderModule) {
	f.record("DestroyShaderModule")
}

func (f *fakeDriver) CreatePipelineLayout(vk.Device, *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	return vk.NullPipelineLayout, f.record("CreatePipelineLayout")
}

func (f *fakeDriver) DestroyPipelineLayout(vk.Device, vk.PipelineLayout) {
	f.record("DestroyPipelineLayout")
}

func (f *fakeDriver) CreateGraphicsPipeline(vk.Device, *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	return vk.NullPipeline, f.record("CreateGraphicsPipeline")
}

func (f *fakeDriver) DestroyPipeline(vk.Device, vk.Pipeline) { f.record("DestroyPipeline") }

func (f *fakeDriver) CreateFramebuffer(vk.Device, *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	return null[vk.Framebuffer](), f.record("CreateFramebuffer")
}

func (f *fakeDriver) DestroyFramebuffer(vk.Device, vk.Framebuffer) { f.record("DestroyFramebuffer") }

func (f *fakeDriver) CreateCommandPool(vk.Device, *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	return null[vk.CommandPool](), f.record("CreateCommandPool")
}

func (f *fakeDriver) DestroyCommandPool(vk.Device, vk.CommandPool) { f.record("DestroyCommandPool") }

func (f *fakeDriver) AllocateCommandBuffer(vk.Device, *vk.CommandBufferAllocateInfo) (vk.CommandBuffer, vk.Result) {
	return nil, f.record("AllocateCommandBuffer")
}

func (f *fakeDriver) ResetCommandBuffer(vk.CommandBuffer) vk.Result {
	return f.record("ResetCommandBuffer")
}

func (f *fakeDriver) BeginCommandBuffer(vk.CommandBuffer, *vk.CommandBufferBeginInfo) vk.Result {
	return f.record("BeginCommandBuffer")
}

func (f *fakeDriver) EndCommandBuffer(vk.CommandBuffer) vk.Result {
	return f.record("EndCommandBuffer")
}

func (f *fakeDriver) CmdBeginRenderPass(vk.CommandBuffer, *vk.RenderPassBeginInfo) {
	f.record("CmdBeginRenderPass")
}

func (f *fakeDriver) CmdEndRenderPass(vk.CommandBuffer) { f.record("CmdEndRenderPass") }

func (f *fakeDriver) CmdBindPipeline(vk.CommandBuffer, vk.Pipeline) { f.record("CmdBindPipeline") }

func (f *fakeDriver) CmdSetViewport(vk.CommandBuffer, vk.Viewport) { f.record("CmdSetViewport") }

func (f *fakeDriver) CmdSetScissor(vk.CommandBuffer, vk.Rect2D) { f.record("CmdSetScissor") }

func (f *fakeDriver) CmdDraw(_ vk.CommandBuffer, vertexCount uint32) {
	f.record("CmdDraw")
	f.mu.Lock()
	f.drawn = append(f.drawn, vertexCount)
	f.mu.Unlock()
}

func (f *fakeDriver) CreateSemaphore(vk.Device) (vk.Semaphore, vk.Result) {
	return vk.NullSemaphore, f.record("CreateSemaphore")
}

func (f *fakeDriver) DestroySemaphore(vk.Device, vk.Semaphore) { f.record("DestroySemaphore") }

func (f *fakeDriver) CreateFence(_ vk.Device, signaled bool) (vk.Fence, vk.Result) {
	ret := f.record("CreateFence")
	if ret == vk.Success {
		f.setFence(signaled)
	}
	return vk.NullFence, ret
}

func (f *fakeDriver) setFence(signaled bool) {
	f.mu.Lock()
	f.fenceSignaled = signaled
	f.mu.Unlock()
}

func (f *fakeDriver) fenceState() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fenceSignaled
}

func (f *fakeDriver) DestroyFence(vk.Device, vk.Fence) { f.record("DestroyFence") }

func (f *fakeDriver) WaitForFence(vk.Device, vk.Fence, uint64) vk.Result {
	ret := f.record("WaitForFence")
	if f.fenceWaiting != nil {
		f.fenceWaiting <- struct{}{}
	}
	if f.fenceGate != nil {
		<-f.fenceGate
	}
	if ret == vk.Success && !f.fenceState() {
		return vk.Timeout
	}
	return ret
}

func (f *fakeDriver) ResetFence(vk.Device, vk.Fence) vk.Result {
	ret := f.record("ResetFence")
	if ret == vk.Success {
		f.setFence(false)
	}
	return ret
}

func (f *fakeDriver) AcquireNextImage(vk.Device, vk.Swapchain, uint64, vk.Semaphore) (uint32, vk.Result) {
	if ret := f.record("AcquireNextImage"); ret != vk.Success {
		return 0, ret
	}
	return f.imageIndex, f.acquireResult
}

func (f *fakeDriver) QueueSubmit(_ vk.Queue, info *vk.SubmitInfo, _ vk.Fence) vk.Result {
	f.mu.Lock()
	f.submits = append(f.submits, *info)
	f.mu.Unlock()
	ret := f.record("QueueSubmit")
	if ret == vk.Success {
		f.setFence(true)
	}
	return ret
}

func (f *fakeDriver) QueuePresent(vk.Queue, *vk.PresentInfo) vk.Result {
	if ret := f.record("QueuePresent"); ret != vk.Success {
		return ret
	}
	return f.presentResult
}

type fakeWindow struct {
	extensions []string
	surfaceErr error
}

func (w *fakeWindow) RequiredInstanceExtensions() []string { return w.extensions }

func (w *fakeWindow) CreateSurface(vk.Instance) (vk.Surface, error) {
	if w.surfaceErr != nil {
		return vk.NullSurface, w.surfaceErr
	}
	return vk.NullSurface, nil
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}}
}

// writeShaders puts two minimal SPIR-V headers into a temp dir and points
// cfg at them.
func writeShaders(t *testing.T, cfg *Config) {
	t.Helper()
	dir := t.TempDir()
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, 0x07230203)
	for _, p := range []*string{&cfg.VertexShaderPath, &cfg.FragmentShaderPath} {
		name := filepath.Join(dir, filepath.Base(*p))
		if err := os.WriteFile(name, code, 0644); err != nil {
			t.Fatal(err)
		}
		*p = name
	}
}

// testRig bundles a fake backed context with its log output.
type testRig struct {
	drv    *fakeDriver
	win    *fakeWindow
	cfg    Config
	logs   *bytes.Buffer
	logger *Logger
	ledger *memory.Ledger
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		drv:    newFakeDriver(),
		win:    newFakeWindow(),
		cfg:    DefaultConfig(),
		logs:   &bytes.Buffer{},
		ledger: memory.NewLedger(nil),
	}
	writeShaders(t, &r.cfg)
	r.logger = NewLogger(r.logs)
	r.logger.Exit = func(code int) { t.Fatalf("unexpected exit %d", code) }
	return r
}

func (r *testRig) init() (*Context, error) {
	return Init(r.drv, r.win, 800, 600, r.cfg, r.logger, r.ledger)
}

func (r *testRig) mustInit(t *testing.T) *Context {
	t.Helper()
	ctx, err := r.init()
	if err != nil {
		t.Fatalf("Init: %+v", err)
	}
	return ctx
}

func TestFakeInitSucceeds(t *testing.T) {
	r := newTestRig(t)
	ctx := r.mustInit(t)
	defer ctx.Destroy()

	if ctx.DeviceName() != "Fake GPU" {
		t.Errorf("DeviceName = %q", ctx.DeviceName())
	}
	if got := ctx.Swapchain().ImageCount(); got != 3 {
		t.Errorf("ImageCount = %d, want 3", got)
	}
	if r.drv.count("CreateFramebuffer") != 3 || r.drv.count("CreateImageView") != 3 {
		t.Errorf("expected 3 views and framebuffers, calls: %v", r.drv.Calls())
	}
	// Modules are gone once the pipeline exists.
	if r.drv.count("CreateShaderModule") != 2 || r.drv.count("DestroyShaderModule") != 2 {
		t.Errorf("shader modules not released after pipeline creation")
	}
	if got := r.ledger.Usage(memory.TagShader); got != 0 {
		t.Errorf("shader bytes still tracked: %d", got)
	}
}

func TestInitReportsDriverResult(t *testing.T) {
	r := newTestRig(t)
	r.drv.fail["CreateRenderPass"] = vk.ErrorOutOfDeviceMemory
	_, err := r.init()
	if err == nil {
		t.Fatal("Init succeeded")
	}
	if ret, ok := ResultOf(err); !ok || ret != vk.ErrorOutOfDeviceMemory {
		t.Errorf("ResultOf = %v, %v", ret, ok)
	}
	if !strings.Contains(err.Error(), "create render pass") {
		t.Errorf("error %q does not name the stage", err)
	}
}

func TestInitSurfaceError(t *testing.T) {
	r := newTestRig(t)
	r.win.surfaceErr = errors.New("no display")
	_, err := r.init()
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Fatalf("err = %v", err)
	}
	if got := r.drv.destroyCalls(); len(got) != 1 || got[0] != "DestroyInstance" {
		t.Errorf("destroy calls = %v, want [DestroyInstance]", got)
	}
}

func null[H any]() H {
	var h H
	return h
}
