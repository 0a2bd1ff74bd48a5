package vkcore

import (
	"unsafe"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// Buffer wraps a VkBuffer plus its backing memory, mapped pointer (if
// host-visible), and optional device address. Mirrors spec section
// 3's invariant mapped_ptr != nil iff storage is host-visible.
type Buffer struct {
	handle     vk.Buffer
	memory     vk.DeviceMemory
	size       uint64
	usage      BufferUsage
	storage    StorageClass
	mapped     []byte
	coherent   bool
	address    uint64
	hasAddress bool
}

// CreateBuffer allocates a buffer of size bytes with the given usage
// and storage class. Buffers whose usage includes uniform, storage,
// indirect, or shader-binding-table additionally acquire a device
// address, per spec section 4.3.
func (ctx *Context) CreateBuffer(size uint64, usage BufferUsage, storage StorageClass) (Handle, error) {
	if size == 0 {
		ctx.log.Error("CreateBuffer: zero size", "usage", usage)
		return NullHandle, ArgumentError
	}

	vkUsage := translateBufferUsage(usage)
	needsAddress := usage&(BufferUsageUniform|BufferUsageStorage|BufferUsageIndirect|BufferUsageShaderBindingTable) != 0
	if needsAddress {
		vkUsage |= vk.BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
	}

	buf, rawErr := ctx.device.CreateBuffer(&vk.BufferCreateInfo{
		Size:        size,
		Usage:       vkUsage,
		SharingMode: vk.SHARING_MODE_EXCLUSIVE,
	})
	if rawErr != nil {
		return NullHandle, rawErr
	}

	reqs := ctx.device.GetBufferMemoryRequirements(buf)
	memProps := translateStorageClass(storage)
	availableMem := ctx.physicalDevice.GetMemoryProperties()
	memTypeIdx, found := vk.FindMemoryType(availableMem, reqs.MemoryTypeBits, memProps)
	if !found {
		ctx.device.DestroyBuffer(buf)
		ctx.log.Error("CreateBuffer: no suitable memory type", "storage", storage)
		return NullHandle, NotSupported
	}

	mem, rawErr := ctx.device.AllocateMemory(&vk.MemoryAllocateInfo{
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memTypeIdx,
	})
	if rawErr != nil {
		ctx.device.DestroyBuffer(buf)
		return NullHandle, rawErr
	}
	if rawErr := ctx.device.BindBufferMemory(buf, mem, 0); rawErr != nil {
		ctx.device.FreeMemory(mem)
		ctx.device.DestroyBuffer(buf)
		return NullHandle, rawErr
	}

	b := Buffer{
		handle:  buf,
		memory:  mem,
		size:    size,
		usage:   usage,
		storage: storage,
	}

	if storage == StorageHostVisible {
		ptr, rawErr := ctx.device.MapMemory(mem, 0, size)
		if rawErr != nil {
			ctx.device.FreeMemory(mem)
			ctx.device.DestroyBuffer(buf)
			return NullHandle, rawErr
		}
		b.mapped = unsafe.Slice((*byte)(ptr), size)
		b.coherent = memProps&vk.MEMORY_PROPERTY_HOST_COHERENT_BIT != 0
	}

	if needsAddress {
		b.address = ctx.device.GetBufferDeviceAddress(buf)
		b.hasAddress = true
	}

	return ctx.buffers.Create(b), nil
}

// BufferSubData copies src into the buffer's host-visible mapped
// region at offset. Fails with InvalidState on device-local buffers.
func (ctx *Context) BufferSubData(h Handle, offset uint64, src []byte) error {
	b := ctx.buffers.Get(h)
	if b == nil {
		ctx.log.Error("BufferSubData: stale or null handle")
		return ArgumentError
	}
	if b.mapped == nil {
		ctx.log.Error("BufferSubData: buffer is not host-visible")
		return InvalidState
	}
	if offset+uint64(len(src)) > b.size {
		ctx.log.Error("BufferSubData: write out of range", "offset", offset, "len", len(src), "size", b.size)
		return ArgumentOutOfRange
	}
	copy(b.mapped[offset:], src)
	if !b.coherent {
		ctx.device.FlushMappedMemoryRanges(b.memory, offset, uint64(len(src)))
	}
	return nil
}

// GetBufferSubData reads len(dst) bytes back from the buffer's mapped
// region at offset.
func (ctx *Context) GetBufferSubData(h Handle, offset uint64, dst []byte) error {
	b := ctx.buffers.Get(h)
	if b == nil {
		return ArgumentError
	}
	if b.mapped == nil {
		return InvalidState
	}
	if offset+uint64(len(dst)) > b.size {
		return ArgumentOutOfRange
	}
	if !b.coherent {
		ctx.device.InvalidateMappedMemoryRanges(b.memory, offset, uint64(len(dst)))
	}
	copy(dst, b.mapped[offset:])
	return nil
}

// DestroyBuffer enqueues the buffer's destruction, gated on the
// submission currently in flight that may reference it (or on the
// submission being built right now, if any).
func (ctx *Context) DestroyBuffer(h Handle) {
	b := ctx.buffers.Get(h)
	if b == nil {
		return
	}
	ctx.buffers.Destroy(h)
	ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
		if b.mapped != nil {
			ctx.device.UnmapMemory(b.memory)
		}
		ctx.device.FreeMemory(b.memory)
		ctx.device.DestroyBuffer(b.handle)
	})
}

func translateBufferUsage(u BufferUsage) vk.BufferUsageFlags {
	var f vk.BufferUsageFlags
	if u&BufferUsageVertex != 0 {
		f |= vk.BUFFER_USAGE_VERTEX_BUFFER_BIT
	}
	if u&BufferUsageIndex != 0 {
		f |= vk.BUFFER_USAGE_INDEX_BUFFER_BIT
	}
	if u&BufferUsageUniform != 0 {
		f |= vk.BUFFER_USAGE_UNIFORM_BUFFER_BIT
	}
	if u&BufferUsageStorage != 0 {
		f |= vk.BUFFER_USAGE_STORAGE_BUFFER_BIT
	}
	if u&BufferUsageIndirect != 0 {
		f |= vk.BUFFER_USAGE_INDIRECT_BUFFER_BIT
	}
	f |= vk.BUFFER_USAGE_TRANSFER_SRC_BIT | vk.BUFFER_USAGE_TRANSFER_DST_BIT
	return f
}

func translateStorageClass(s StorageClass) vk.MemoryPropertyFlags {
	switch s {
	case StorageHostVisible:
		return vk.MEMORY_PROPERTY_HOST_VISIBLE_BIT | vk.MEMORY_PROPERTY_HOST_COHERENT_BIT
	case StorageMemoryless:
		return vk.MEMORY_PROPERTY_LAZILY_ALLOCATED_BIT
	default:
		return vk.MEMORY_PROPERTY_DEVICE_LOCAL_BIT
	}
}
