package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/andewx/vkrender/input"
)

// translateKey maps GLFW keys onto input keys. Printable GLFW keys share
// their ASCII value with input keys.
func translateKey(key glfw.Key) (input.Key, bool) {
	switch {
	case key == glfw.KeyEscape:
		return input.KeyEsc, true
	case key == glfw.KeySpace:
		return input.KeySpace, true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return input.Key0 + input.Key(key-glfw.Key0), true
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return input.KeyA + input.Key(key-glfw.KeyA), true
	}
	return input.KeyNone, false
}

func translateMouseButton(button glfw.MouseButton) (input.MouseButton, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return input.MouseButtonLeft, true
	case glfw.MouseButtonMiddle:
		return input.MouseButtonMiddle, true
	case glfw.MouseButtonRight:
		return input.MouseButtonRight, true
	}
	return input.MouseButtonNone, false
}
