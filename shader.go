package vkrender

import (
	"io"
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkrender/memory"
)

// loadShaderCode reads a SPIR-V binary into a ledger tracked buffer. The
// caller frees it with ledger.Free once the module is created.
func loadShaderCode(ledger *memory.Ledger, path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrMissingShader, "%s: %v", path, err)
	}
	size := info.Size()
	if size == 0 {
		return nil, errors.Wrapf(ErrMissingShader, "%s is empty", path)
	}
	if size%4 != 0 {
		return nil, errors.Errorf("shader %s: size %d is not a multiple of 4", path, size)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrMissingShader, "%s: %v", path, err)
	}
	defer f.Close()

	code := ledger.Alloc(int(size), memory.TagShader)
	if _, err := io.ReadFull(f, code); err != nil {
		ledger.Free(code, memory.TagShader)
		return nil, errors.Wrapf(err, "read shader %s", path)
	}
	return code, nil
}

// shaderModule is a module that lives only until the pipeline is built.
type shaderModule struct {
	module Owned[vk.ShaderModule]
	stage  vk.ShaderStageFlagBits
}

func (c *Context) loadShaderModule(path string, stage vk.ShaderStageFlagBits) (*shaderModule, error) {
	code, err := loadShaderCode(c.ledger, path)
	if err != nil {
		return nil, err
	}
	defer c.ledger.Free(code, memory.TagShader)

	module, ret := c.drv.CreateShaderModule(c.device.Handle(), code)
	if err := stageError(ret, "create shader module"); err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return &shaderModule{module: own(module), stage: stage}, nil
}

func (c *Context) destroyShaderModule(m *shaderModule) {
	if m == nil {
		return
	}
	m.module.release(func(h vk.ShaderModule) {
		c.drv.DestroyShaderModule(c.device.Handle(), h)
	})
}

func (m *shaderModule) stageInfo(entry string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  m.stage,
		Module: m.module.Handle(),
		PName:  safeString(entry),
	}
}
