package vkcore

// Pool is a generational resource pool: a dense vector of slots, each
// either holding a live payload at some generation or sitting empty on
// the free-index stack. It backs every externally-exposed GPU object
// (buffers, images, samplers, shader modules, pipeline state). There
// is no teacher analogue for this — the teacher binds
// raw Vulkan handles directly — so this is a from-scratch generic
// rewrite of the pattern spec section 4.1 describes.
type Pool[T any] struct {
	slots     []slot[T]
	freeStack []uint32
}

type slot[T any] struct {
	generation uint32
	payload    *T
}

// NewPool returns an empty pool.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

// Create inserts payload and returns its handle. Generation starts at
// 1 for a brand-new slot so that the zero-valued null handle can never
// alias a live entry.
func (p *Pool[T]) Create(payload T) Handle {
	if n := len(p.freeStack); n > 0 {
		idx := p.freeStack[n-1]
		p.freeStack = p.freeStack[:n-1]
		p.slots[idx].payload = &payload
		return Handle{Index: idx, Generation: p.slots[idx].generation}
	}

	idx := uint32(len(p.slots))
	p.slots = append(p.slots, slot[T]{generation: 1, payload: &payload})
	return Handle{Index: idx, Generation: 1}
}

// Get returns the live payload for h, or nil if h is null, out of
// range, or its generation does not match the slot's current
// generation (meaning the original resource was destroyed and the
// slot may have been reused). Never panics on a stale handle.
func (p *Pool[T]) Get(h Handle) *T {
	if h.IsNull() || int(h.Index) >= len(p.slots) {
		return nil
	}
	s := &p.slots[h.Index]
	if s.generation != h.Generation || s.payload == nil {
		return nil
	}
	return s.payload
}

// Destroy removes the payload at h, if h is still live, bumps the
// slot's generation so any outstanding copy of h fails future Get
// calls, and returns the slot to the free list. Destroying an already
// stale or null handle is a no-op.
func (p *Pool[T]) Destroy(h Handle) {
	if h.IsNull() || int(h.Index) >= len(p.slots) {
		return
	}
	s := &p.slots[h.Index]
	if s.generation != h.Generation || s.payload == nil {
		return
	}
	s.payload = nil
	s.generation++
	p.freeStack = append(p.freeStack, h.Index)
}

// Len returns the number of live entries.
func (p *Pool[T]) Len() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].payload != nil {
			n++
		}
	}
	return n
}

// Cap returns the number of slots ever allocated, live or freed. Used
// by the descriptor manager to size the bindless array, since a
// binding's array index is the pool slot index, not the live count.
func (p *Pool[T]) Cap() int {
	return len(p.slots)
}

// AtIndex returns the live payload occupying slot idx, or nil if the
// slot is out of range or currently free. Unlike Get, it does not
// check generation — callers that track their own handles should
// prefer Get; this exists for iterating bindless descriptor arrays by
// raw index.
func (p *Pool[T]) AtIndex(idx uint32) *T {
	if int(idx) >= len(p.slots) {
		return nil
	}
	return p.slots[idx].payload
}

// Each calls fn for every live entry, in index order. fn must not
// create or destroy pool entries.
func (p *Pool[T]) Each(fn func(Handle, *T)) {
	for i := range p.slots {
		if p.slots[i].payload == nil {
			continue
		}
		fn(Handle{Index: uint32(i), Generation: p.slots[i].generation}, p.slots[i].payload)
	}
}
