package input

import (
	"testing"

	"github.com/andewx/vkrender/event"
)

func TestKeyCodes(t *testing.T) {
	if KeyA != 65 || KeyZ != 90 || Key9 != 57 {
		t.Errorf("KeyA=%d KeyZ=%d Key9=%d", KeyA, KeyZ, Key9)
	}
}

func TestKeyStateAndEdges(t *testing.T) {
	s := New(nil)

	s.ProcessKey(KeyW, true)
	if !s.IsKeyDown(KeyW) || s.IsKeyUp(KeyW) {
		t.Fatal("KeyW should be down")
	}
	if !s.KeyPressedThisFrame(KeyW) {
		t.Error("KeyW should be pressed this frame")
	}

	s.Update()
	if s.KeyPressedThisFrame(KeyW) {
		t.Error("KeyW still reported as pressed this frame after Update")
	}
	if !s.WasKeyDown(KeyW) {
		t.Error("WasKeyDown(KeyW) = false after Update")
	}

	s.ProcessKey(KeyW, false)
	if !s.IsKeyUp(KeyW) || !s.WasKeyDown(KeyW) {
		t.Error("release not tracked separately from the previous frame")
	}
}

func TestOutOfRangeIgnored(t *testing.T) {
	s := New(nil)
	s.ProcessKey(KeyNone, true)
	s.ProcessKey(MaxKeys, true)
	s.ProcessMouseButton(MaxMouseButtons, true)

	if s.IsKeyDown(KeyNone) || s.IsKeyDown(MaxKeys) || s.IsMouseButtonDown(MaxMouseButtons) {
		t.Error("out of range codes were recorded")
	}
	if s.IsKeyUp(Key(-3)) || s.IsMouseButtonUp(MouseButtonNone) {
		t.Error("out of range codes reported as up")
	}
}

func TestEventsOnlyOnChange(t *testing.T) {
	var r event.Registry
	var pressed, released []uint16

	r.Register(event.MouseButtonPressed, "test", func(c event.Code, _ interface{}, ctx event.Context) bool {
		pressed = append(pressed, ctx.U16(0))
		return false
	})
	r.Register(event.MouseButtonReleased, "test", func(c event.Code, _ interface{}, ctx event.Context) bool {
		released = append(released, ctx.U16(0))
		return false
	})

	s := New(&r)
	s.ProcessMouseButton(MouseButtonRight, true)
	s.ProcessMouseButton(MouseButtonRight, true)
	s.ProcessMouseButton(MouseButtonRight, false)

	if len(pressed) != 1 || pressed[0] != uint16(MouseButtonRight) {
		t.Errorf("pressed events = %v", pressed)
	}
	if len(released) != 1 {
		t.Errorf("released events = %v", released)
	}
	if !s.IsMouseButtonUp(MouseButtonRight) {
		t.Error("right button should be up")
	}
}
