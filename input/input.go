// Package input tracks keyboard and mouse button state between frames.
package input

import (
	"sync"

	"github.com/andewx/vkrender/event"
)

type Key int

const (
	KeyNone Key = 0

	KeyEsc   Key = 27
	KeySpace Key = 32

	// Numbers (top row)
	Key0 Key = 48
	Key1 Key = 49
	Key2 Key = 50
	Key3 Key = 51
	Key4 Key = 52
	Key5 Key = 53
	Key6 Key = 54
	Key7 Key = 55
	Key8 Key = 56
	Key9 Key = 57
)

// Letters
const (
	KeyA Key = iota + 65
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

const MaxKeys = 512

type MouseButton int

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight

	MaxMouseButtons
)

type snapshot struct {
	keys    [MaxKeys]bool
	buttons [MaxMouseButtons]bool
}

// State holds the current and previous input snapshots. Changes are forwarded
// to Events when it is set.
type State struct {
	mu      sync.RWMutex
	current snapshot
	prev    snapshot

	Events *event.Registry
}

func New(events *event.Registry) *State {
	return &State{Events: events}
}

func validKey(k Key) bool             { return k > 0 && k < MaxKeys }
func validButton(mb MouseButton) bool { return mb > 0 && mb < MaxMouseButtons }

// Update copies the current state into the previous one. Call once per frame
// after events have been pumped.
func (s *State) Update() {
	s.mu.Lock()
	s.prev = s.current
	s.mu.Unlock()
}

func (s *State) ProcessKey(k Key, pressed bool) {
	if !validKey(k) {
		return
	}
	s.mu.Lock()
	changed := s.current.keys[k] != pressed
	s.current.keys[k] = pressed
	s.mu.Unlock()

	if changed {
		code := event.KeyReleased
		if pressed {
			code = event.KeyPressed
		}
		s.dispatch(code, uint16(k))
	}
}

func (s *State) ProcessMouseButton(mb MouseButton, pressed bool) {
	if !validButton(mb) {
		return
	}
	s.mu.Lock()
	changed := s.current.buttons[mb] != pressed
	s.current.buttons[mb] = pressed
	s.mu.Unlock()

	if changed {
		code := event.MouseButtonReleased
		if pressed {
			code = event.MouseButtonPressed
		}
		s.dispatch(code, uint16(mb))
	}
}

func (s *State) dispatch(code event.Code, v uint16) {
	if s.Events == nil {
		return
	}
	var ctx event.Context
	ctx.SetU16(0, v)
	s.Events.Dispatch(code, ctx)
}

func (s *State) IsKeyDown(k Key) bool {
	if !validKey(k) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.keys[k]
}

func (s *State) IsKeyUp(k Key) bool {
	if !validKey(k) {
		return false
	}
	return !s.IsKeyDown(k)
}

func (s *State) WasKeyDown(k Key) bool {
	if !validKey(k) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prev.keys[k]
}

// KeyPressedThisFrame is true when the key went down since the last Update.
func (s *State) KeyPressedThisFrame(k Key) bool {
	return s.IsKeyDown(k) && !s.WasKeyDown(k)
}

func (s *State) IsMouseButtonDown(mb MouseButton) bool {
	if !validButton(mb) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.buttons[mb]
}

func (s *State) IsMouseButtonUp(mb MouseButton) bool {
	if !validButton(mb) {
		return false
	}
	return !s.IsMouseButtonDown(mb)
}

func (s *State) WasMouseButtonDown(mb MouseButton) bool {
	if !validButton(mb) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prev.buttons[mb]
}
