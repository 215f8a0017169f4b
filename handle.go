package vkrender

// Owned is a handle created by the context. It must be released exactly once.
type Owned[H any] struct {
	h    H
	live bool
}

func own[H any](h H) Owned[H] {
	return Owned[H]{h: h, live: true}
}

func (o Owned[H]) Handle() H  { return o.h }
func (o Owned[H]) Live() bool { return o.live }

// release calls destroy with the handle if it is still live and clears it.
func (o *Owned[H]) release(destroy func(H)) {
	if !o.live {
		return
	}
	destroy(o.h)
	var zero H
	o.h = zero
	o.live = false
}

// Borrowed is a handle owned by the driver or by another object, like
// swapchain images and queues. It is never destroyed by the context.
type Borrowed[H any] struct {
	h H
}

func borrow[H any](h H) Borrowed[H] {
	return Borrowed[H]{h: h}
}

func (b Borrowed[H]) Handle() H { return b.h }

// releaseAll releases every live handle in hs in order.
func releaseAll[H any](hs []Owned[H], destroy func(H)) {
	for i := range hs {
		hs[i].release(destroy)
	}
}
