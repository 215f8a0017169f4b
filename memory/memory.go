// Package memory keeps a tagged ledger of heap buffers owned by the renderer.
//
// The ledger does not replace the Go allocator. It records how many bytes each
// subsystem holds so that usage can be reported per tag and leaks show up as a
// non-zero total after teardown.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

type Tag int

const (
	TagUnknown Tag = iota
	TagArray
	TagRenderer
	TagSwapchain
	TagShader
	TagString

	maxTags
)

var tagNames = [maxTags]string{
	TagUnknown:   "unknown",
	TagArray:     "array",
	TagRenderer:  "renderer",
	TagSwapchain: "swapchain",
	TagShader:    "shader",
	TagString:    "string",
}

func (t Tag) String() string {
	if t < 0 || t >= maxTags {
		return fmt.Sprintf("tag(%d)", int(t))
	}
	return tagNames[t]
}

// Ledger tracks allocated bytes in total and per tag. The zero value is ready to use.
type Ledger struct {
	mu     sync.Mutex
	total  int
	tagged [maxTags]int

	// Warn is called when a buffer is tracked with TagUnknown.
	Warn func(format string, args ...interface{})
}

func NewLedger(warn func(format string, args ...interface{})) *Ledger {
	return &Ledger{Warn: warn}
}

// Alloc returns a zeroed buffer of n bytes and records it under tag.
func (l *Ledger) Alloc(n int, tag Tag) []byte {
	l.Track(n, tag)
	return make([]byte, n)
}

// Free forgets a buffer previously returned by Alloc.
func (l *Ledger) Free(buf []byte, tag Tag) {
	l.Untrack(len(buf), tag)
}

func (l *Ledger) Track(n int, tag Tag) {
	if l == nil || n <= 0 {
		return
	}
	tag = l.check(tag, "Allocating")
	l.mu.Lock()
	l.total += n
	l.tagged[tag] += n
	l.mu.Unlock()
}

func (l *Ledger) Untrack(n int, tag Tag) {
	if l == nil || n <= 0 {
		return
	}
	tag = l.check(tag, "Freeing")
	l.mu.Lock()
	l.total -= n
	l.tagged[tag] -= n
	l.mu.Unlock()
}

func (l *Ledger) check(tag Tag, verb string) Tag {
	if tag < 0 || tag >= maxTags {
		tag = TagUnknown
	}
	if tag == TagUnknown && l.Warn != nil {
		l.Warn("%s memory with TagUnknown", verb)
	}
	return tag
}

// Total gets allocated memory usage in bytes.
func (l *Ledger) Total() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Usage gets allocated memory usage in bytes for a single tag.
func (l *Ledger) Usage(tag Tag) int {
	if l == nil || tag < 0 || tag >= maxTags {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tagged[tag]
}

// Report formats the non-empty tags, one per line.
func (l *Ledger) Report() string {
	if l == nil {
		return "total: 0 bytes"
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "total: %d bytes", l.total)
	for tag := TagUnknown; tag < maxTags; tag++ {
		if l.tagged[tag] != 0 {
			fmt.Fprintf(&sb, "\n  %s: %d bytes", tag, l.tagged[tag])
		}
	}
	return sb.String()
}

// Make allocates a slice of n elements of T and records its size under tag.
func Make[T any](l *Ledger, n int, tag Tag) []T {
	l.Track(sizeOf[T](n), tag)
	return make([]T, n)
}

// Release forgets a slice previously returned by Make. The caller drops its reference.
func Release[T any](l *Ledger, s []T, tag Tag) {
	l.Untrack(sizeOf[T](len(s)), tag)
}

func sizeOf[T any](n int) int {
	var zero T
	return int(unsafe.Sizeof(zero)) * n
}
