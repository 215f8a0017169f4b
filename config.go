package vkrender

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Config describes how the context is created and how frames are drawn.
// It mirrors a JSON object so it can be overlaid from a file.
type Config struct {
	AppName    string `json:"app_name"`
	EngineName string `json:"engine_name"`

	Validation       bool     `json:"validation"`
	ValidationLayers []string `json:"validation_layers"`
	DeviceExtensions []string `json:"device_extensions"`

	VertexShaderPath   string `json:"vertex_shader"`
	FragmentShaderPath string `json:"fragment_shader"`
	ShaderEntryPoint   string `json:"shader_entry_point"`

	SurfaceFormat     vk.Format      `json:"surface_format"`
	SurfaceColorSpace vk.ColorSpace  `json:"surface_color_space"`
	PresentMode       vk.PresentMode `json:"present_mode"`
	ClearColor        [4]float32     `json:"clear_color"`

	// VertexCount is the number of vertices drawn per frame. Zero records a
	// clear-only pass.
	VertexCount uint32 `json:"vertex_count"`

	FenceTimeout   uint64 `json:"fence_timeout"`
	AcquireTimeout uint64 `json:"acquire_timeout"`

	LogDir string `json:"log_dir"`
}

func DefaultConfig() Config {
	return Config{
		AppName:            "Hello Triangle",
		EngineName:         "No Engine",
		ValidationLayers:   []string{"VK_LAYER_KHRONOS_validation"},
		DeviceExtensions:   []string{"VK_KHR_swapchain"},
		VertexShaderPath:   "shaders/vert.spv",
		FragmentShaderPath: "shaders/frag.spv",
		ShaderEntryPoint:   "main",
		SurfaceFormat:      vk.FormatB8g8r8a8Srgb,
		SurfaceColorSpace:  vk.ColorSpaceSrgbNonlinear,
		PresentMode:        vk.PresentModeMailbox,
		ClearColor:         [4]float32{0, 0, 0, 1},
		VertexCount:        3,
		FenceTimeout:       vk.MaxUint64,
		AcquireTimeout:     vk.MaxUint64,
	}
}

// LoadConfig reads a JSON file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.VertexShaderPath == "" || c.FragmentShaderPath == "":
		return errors.New("config: shader paths must be set")
	case c.ShaderEntryPoint == "":
		return errors.New("config: shader entry point must be set")
	case len(c.DeviceExtensions) == 0:
		return errors.New("config: at least one device extension is required")
	}
	return nil
}
