package vkcore

import "sync"

type deferredAction struct {
	gating SubmissionHandle
	action func()
}

// deferredQueue holds destroy actions that must not run until the GPU
// work that might still reference the resource has retired. This is
// the one lock in the whole design: everything else here is either
// single-threaded by construction or owned by a single caller, per
// spec section 4.10.
type deferredQueue struct {
	mu      sync.Mutex
	pending []deferredAction
}

func newDeferredQueue() *deferredQueue {
	return &deferredQueue{}
}

func (q *deferredQueue) push(gating SubmissionHandle, action func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, deferredAction{gating: gating, action: action})
}

// processDeferred runs every action whose gating submission has
// already retired, without blocking on anything that hasn't. Called
// opportunistically on every submit.
func (q *deferredQueue) processDeferred(ctx *Context) {
	q.mu.Lock()
	remaining := q.pending[:0]
	var toRun []func()
	for _, a := range q.pending {
		ready, err := ctx.recycler.isReady(ctx, a.gating)
		if err == nil && ready {
			toRun = append(toRun, a.action)
		} else {
			remaining = append(remaining, a)
		}
	}
	q.pending = remaining
	q.mu.Unlock()

	for _, fn := range toRun {
		fn()
	}
}

// waitDeferred blocks until every pending gating submission has
// retired, then runs all the actions. Used by teardown.
func (q *deferredQueue) waitDeferred(ctx *Context) {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, a := range pending {
		ctx.recycler.wait(ctx, a.gating)
		a.action()
	}
}

// deferDestroy enqueues action to run once gating's submission has
// retired. A null gating handle means the resource was never
// referenced by any submission and the action runs on the very next
// processDeferred pass.
func (ctx *Context) deferDestroy(gating SubmissionHandle, action func()) {
	ctx.deferred.push(gating, action)
}

// currentGatingSubmission returns the most recent submission handle
// issued by the recycler, used to gate destruction of resources that
// might still be referenced by in-flight command buffers.
func (ctx *Context) currentGatingSubmission() SubmissionHandle {
	return ctx.lastSubmission
}
