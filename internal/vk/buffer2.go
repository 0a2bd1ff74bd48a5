// buffer2.go - buffer device address support.
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"

// GetBufferDeviceAddress returns the GPU-visible pointer for a buffer
// created with BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT. Requires the
// bufferDeviceAddress feature enabled at device creation.
func (device Device) GetBufferDeviceAddress(buf Buffer) uint64 {
	var info C.VkBufferDeviceAddressInfo
	info.sType = C.VK_STRUCTURE_TYPE_BUFFER_DEVICE_ADDRESS_INFO
	info.pNext = nil
	info.buffer = buf.handle

	addr := C.vkGetBufferDeviceAddress(device.handle, &info)
	return uint64(addr)
}
