package vkrender

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	ErrNoDevices          = errors.New("vulkan error: no GPU devices found")
	ErrNoSuitableDevice   = errors.New("vulkan error: no suitable GPU for graphics and presentation")
	ErrSwapchainOutOfDate = errors.New("vulkan error: swapchain out of date")
	ErrMissingShader      = errors.New("shader binary missing or empty")
	ErrDestroyed          = errors.New("context already destroyed")
	ErrUnusable           = errors.New("context unusable after a failed frame")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// resultError keeps the raw result so callers can compare it after wrapping.
type resultError struct {
	ret vk.Result
}

func (e resultError) Error() string {
	if err := vk.Error(e.ret); err != nil {
		return fmt.Sprintf("%s (%d)", err.Error(), int32(e.ret))
	}
	return fmt.Sprintf("vulkan error: result %d", int32(e.ret))
}

func newError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.WithStack(resultError{ret: ret})
}

// stageError wraps a failed driver result with the stage that produced it.
func stageError(ret vk.Result, stage string) error {
	if ret == vk.Success {
		return nil
	}
	return errors.Wrap(resultError{ret: ret}, stage)
}

// ResultOf digs the driver result out of an error chain.
func ResultOf(err error) (vk.Result, bool) {
	if re, ok := errors.Cause(err).(resultError); ok {
		return re.ret, true
	}
	return vk.Success, false
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}
