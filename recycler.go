package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// ringSize is the number of primary command buffers the recycler
// pre-allocates. A submission blocks acquire only once every in-flight
// slot is waiting on a fence that hasn't retired yet.
const ringSize = 64

type ringSlot struct {
	cmd       vk.CommandBuffer
	fence     vk.Fence
	signal    vk.Semaphore
	submitted bool
	submitID  uint32
}

// recycler owns a fixed ring of command buffers, each with its own
// fence and binary semaphore, and assembles synchronization2 submits
// against the device timeline semaphore. See spec section 4.4.
type recycler struct {
	pool  vk.CommandPool
	slots [ringSize]ringSlot
	next  int

	timeline    vk.Semaphore
	submitCount uint32 // last value signaled on timeline; wraps, skipping 0
}

func newRecycler(ctx *Context) (*recycler, error) {
	pool, err := ctx.device.CreateCommandPool(&vk.CommandPoolCreateInfo{
		Flags:            vk.COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT,
		QueueFamilyIndex: ctx.queueFamilyIndex,
	})
	if err != nil {
		return nil, err
	}

	cmds, err := ctx.device.AllocateCommandBuffers(&vk.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              vk.COMMAND_BUFFER_LEVEL_PRIMARY,
		CommandBufferCount: ringSize,
	})
	if err != nil {
		ctx.device.DestroyCommandPool(pool)
		return nil, err
	}

	timeline, err := ctx.device.CreateTimelineSemaphore(0)
	if err != nil {
		ctx.device.DestroyCommandPool(pool)
		return nil, err
	}

	r := &recycler{pool: pool, timeline: timeline}
	for i := 0; i < ringSize; i++ {
		fence, err := ctx.device.CreateFence(&vk.FenceCreateInfo{Flags: vk.FENCE_CREATE_SIGNALED_BIT})
		if err != nil {
			return nil, err
		}
		sem, err := ctx.device.CreateSemaphore(&vk.SemaphoreCreateInfo{})
		if err != nil {
			return nil, err
		}
		r.slots[i] = ringSlot{cmd: cmds[i], fence: fence, signal: sem}
	}
	return r, nil
}

// acquire purges retired slots once, then takes the next slot in ring
// order (the oldest submission), resets it, and begins recording. If
// that slot is still in flight it blocks on its fence.
func (r *recycler) acquire(ctx *Context) (vk.CommandBuffer, error) {
	r.purge(ctx)

	idx := r.next
	slot := &r.slots[idx]
	if slot.submitted {
		if err := ctx.device.WaitForFences([]vk.Fence{slot.fence}, true, ^uint64(0)); err != nil {
			return vk.CommandBuffer{}, err
		}
		slot.submitted = false
	}
	if err := ctx.device.ResetFences([]vk.Fence{slot.fence}); err != nil {
		return vk.CommandBuffer{}, err
	}
	if err := slot.cmd.Reset(0); err != nil {
		return vk.CommandBuffer{}, err
	}
	if err := slot.cmd.Begin(&vk.CommandBufferBeginInfo{Flags: vk.COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT}); err != nil {
		return vk.CommandBuffer{}, err
	}

	r.next = (r.next + 1) % ringSize
	return slot.cmd, nil
}

// purge checks every submitted slot's fence without blocking and
// marks retired slots free again.
func (r *recycler) purge(ctx *Context) {
	for i := range r.slots {
		slot := &r.slots[i]
		if !slot.submitted {
			continue
		}
		if signaled, err := ctx.device.GetFenceStatus(slot.fence); err == nil && signaled {
			slot.submitted = false
		}
	}
}

// submit ends recording on cmd, advances the submit counter (skipping
// wraparound to zero, since zero means "no submission" on
// SubmissionHandle), and queues the work against the fence owning the
// command buffer plus the device timeline semaphore. waitSems and
// extraSignals are additional semaphores to chain beyond the
// recycler's own per-slot binary semaphore.
func (r *recycler) submit(ctx *Context, cmd vk.CommandBuffer, waitSems []vk.SemaphoreSubmitInfo, extraSignals []vk.SemaphoreSubmitInfo) (SubmissionHandle, error) {
	idx := -1
	for i := range r.slots {
		if r.slots[i].cmd == cmd {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NullSubmission, InvalidState
	}
	slot := &r.slots[idx]

	if err := cmd.End(); err != nil {
		return NullSubmission, err
	}

	r.submitCount++
	if r.submitCount == 0 {
		r.submitCount = 1
	}
	slot.submitID = r.submitCount

	signals := append([]vk.SemaphoreSubmitInfo{
		{Semaphore: slot.signal, StageMask: vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT},
		{Semaphore: r.timeline, Value: uint64(r.submitCount), StageMask: vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT},
	}, extraSignals...)

	if err := ctx.queue.Submit2(waitSems, []vk.CommandBufferSubmitInfo{{CommandBuffer: cmd}}, signals, slot.fence); err != nil {
		return NullSubmission, err
	}
	slot.submitted = true

	return SubmissionHandle{BufferIndex: uint32(idx), SubmitID: r.submitCount}, nil
}

// isReady reports whether the timeline semaphore has reached or
// passed the value associated with sub, without blocking.
func (r *recycler) isReady(ctx *Context, sub SubmissionHandle) (bool, error) {
	if sub.IsNull() {
		return true, nil
	}
	value, err := ctx.device.GetSemaphoreCounterValue(r.timeline)
	if err != nil {
		return false, err
	}
	return value >= uint64(sub.SubmitID), nil
}

// wait blocks until sub's submission has retired. A null handle means
// no specific submission was recorded, so wait falls back to draining
// the whole device, per spec section 4.4.
func (r *recycler) wait(ctx *Context, sub SubmissionHandle) error {
	if sub.IsNull() {
		return ctx.device.WaitIdle()
	}
	return ctx.device.WaitSemaphores([]vk.Semaphore{r.timeline}, []uint64{uint64(sub.SubmitID)}, ^uint64(0))
}

// waitAll drains every in-flight slot, used during teardown.
func (r *recycler) waitAll(ctx *Context) error {
	var fences []vk.Fence
	for i := range r.slots {
		if r.slots[i].submitted {
			fences = append(fences, r.slots[i].fence)
		}
	}
	if len(fences) == 0 {
		return nil
	}
	return ctx.device.WaitForFences(fences, true, ^uint64(0))
}

func (r *recycler) destroy(ctx *Context) {
	r.waitAll(ctx)
	for i := range r.slots {
		ctx.device.DestroyFence(r.slots[i].fence)
		ctx.device.DestroySemaphore(r.slots[i].signal)
	}
	ctx.device.DestroySemaphore(r.timeline)
	ctx.device.DestroyCommandPool(r.pool)
}
