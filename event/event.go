// Package event is a small dispatch registry used to notify listeners of
// window and input changes.
package event

import (
	"encoding/binary"
	"math"
	"sync"
)

// Code identifies an event type.
type Code int

const (
	Exit Code = iota

	// Keyboard
	KeyPressed
	KeyReleased

	// Mouse
	MouseButtonPressed
	MouseButtonReleased

	maxCodes
)

// Context is the 16 byte payload passed with every event.
type Context struct {
	Data [16]byte
}

func (c *Context) SetU16(i int, v uint16) { binary.LittleEndian.PutUint16(c.Data[i*2:], v) }
func (c Context) U16(i int) uint16        { return binary.LittleEndian.Uint16(c.Data[i*2:]) }

func (c *Context) SetU32(i int, v uint32) { binary.LittleEndian.PutUint32(c.Data[i*4:], v) }
func (c Context) U32(i int) uint32        { return binary.LittleEndian.Uint32(c.Data[i*4:]) }

func (c *Context) SetF32(i int, v float32) { c.SetU32(i, math.Float32bits(v)) }
func (c Context) F32(i int) float32        { return math.Float32frombits(c.U32(i)) }

// Handler receives an event. Returning true marks the event as consumed and
// stops the dispatch.
type Handler func(code Code, listener interface{}, ctx Context) bool

type entry struct {
	listener interface{}
	handler  Handler
}

// Registry maps event codes to listeners. The zero value is ready to use and
// it is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	events [maxCodes][]entry
}

func valid(code Code) bool {
	return code >= 0 && code < maxCodes
}

// Register adds a listener for code. A listener can only be registered once
// per code.
func (r *Registry) Register(code Code, listener interface{}, handler Handler) bool {
	if !valid(code) || handler == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events[code] {
		if e.listener == listener {
			return false
		}
	}
	r.events[code] = append(r.events[code], entry{listener: listener, handler: handler})
	return true
}

// Unregister removes the listener registered for code.
func (r *Registry) Unregister(code Code, listener interface{}) bool {
	if !valid(code) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.events[code]
	for i, e := range list {
		if e.listener == listener {
			r.events[code] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch calls handlers in registration order until one consumes the event.
// It reports whether the event was consumed.
func (r *Registry) Dispatch(code Code, ctx Context) bool {
	if !valid(code) {
		return false
	}
	r.mu.RLock()
	list := append([]entry(nil), r.events[code]...)
	r.mu.RUnlock()

	for _, e := range list {
		if e.handler(code, e.listener, ctx) {
			return true
		}
	}
	return false
}

// Reset drops every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	for i := range r.events {
		r.events[i] = nil
	}
	r.mu.Unlock()
}
