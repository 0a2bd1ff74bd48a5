// memory2.go - mapped memory flush/invalidate for non-coherent heaps.
package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"

func (device Device) FlushMappedMemoryRanges(memory DeviceMemory, offset, size uint64) error {
	var r C.VkMappedMemoryRange
	r.sType = C.VK_STRUCTURE_TYPE_MAPPED_MEMORY_RANGE
	r.pNext = nil
	r.memory = memory.handle
	r.offset = C.VkDeviceSize(offset)
	r.size = C.VkDeviceSize(size)

	result := C.vkFlushMappedMemoryRanges(device.handle, 1, &r)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

func (device Device) InvalidateMappedMemoryRanges(memory DeviceMemory, offset, size uint64) error {
	var r C.VkMappedMemoryRange
	r.sType = C.VK_STRUCTURE_TYPE_MAPPED_MEMORY_RANGE
	r.pNext = nil
	r.memory = memory.handle
	r.offset = C.VkDeviceSize(offset)
	r.size = C.VkDeviceSize(size)

	result := C.vkInvalidateMappedMemoryRanges(device.handle, 1, &r)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}
