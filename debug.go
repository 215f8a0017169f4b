package vkrender

import vk "github.com/vulkan-go/vulkan"

func hasReportFlag(flags vk.DebugReportFlags, bit vk.DebugReportFlagBits) bool {
	return flags&vk.DebugReportFlags(bit) != 0
}

// debugMessage routes a validation message to the logger by severity.
func (l *Logger) debugMessage(flags vk.DebugReportFlags, layer, message string, code int32) {
	switch {
	case hasReportFlag(flags, vk.DebugReportErrorBit):
		l.Errorf("[%s] Code %d : %s", layer, code, message)
	case hasReportFlag(flags, vk.DebugReportWarningBit):
		l.Warnf("[%s] Code %d : %s", layer, code, message)
	case hasReportFlag(flags, vk.DebugReportPerformanceWarningBit):
		l.Warnf("PERFORMANCE [%s] Code %d : %s", layer, code, message)
	case hasReportFlag(flags, vk.DebugReportDebugBit):
		l.Debugf("[%s] Code %d : %s", layer, code, message)
	default:
		l.Infof("[%s] Code %d : %s", layer, code, message)
	}
}

// createDebugMessenger registers the report callback when validation and
// the debug report extension are both enabled.
func (c *Context) createDebugMessenger() error {
	if !c.validation || !c.debugReport {
		return nil
	}
	flags := vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit)
	callback, ret := c.drv.CreateDebugReportCallback(c.instance.Handle(), flags, c.log.debugMessage)
	if err := stageError(ret, "create debug report callback"); err != nil {
		return err
	}
	c.debug = own(callback)
	c.stack.push(stageDebugMessenger, func() {
		c.debug.release(func(cb vk.DebugReportCallback) {
			c.drv.DestroyDebugReportCallback(c.instance.Handle(), cb)
		})
	})
	c.log.Infof("debug report callback enabled")
	return nil
}
