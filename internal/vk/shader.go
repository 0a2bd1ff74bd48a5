// shader.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type ShaderModule struct {
	handle C.VkShaderModule
}

type ShaderModuleCreateInfo struct {
	Code []byte
}

// spirvMagicNumber is every valid SPIR-V module's first four bytes,
// little-endian. Checked up front since a short or truncated buffer
// would otherwise be read past its end by the cast to *uint32_t below.
const spirvMagicNumber = 0x07230203

func (device Device) CreateShaderModule(createInfo *ShaderModuleCreateInfo) (ShaderModule, error) {
	if len(createInfo.Code) < 4 || len(createInfo.Code)%4 != 0 {
		return ShaderModule{}, INVALID_SHADER
	}
	magic := uint32(createInfo.Code[0]) | uint32(createInfo.Code[1])<<8 | uint32(createInfo.Code[2])<<16 | uint32(createInfo.Code[3])<<24
	if magic != spirvMagicNumber {
		return ShaderModule{}, INVALID_SHADER
	}

	cInfo := (*C.VkShaderModuleCreateInfo)(C.calloc(1, C.sizeof_VkShaderModuleCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO
	cInfo.pNext = nil
	cInfo.flags = 0
	cInfo.codeSize = C.size_t(len(createInfo.Code))
	cInfo.pCode = (*C.uint32_t)(unsafe.Pointer(&createInfo.Code[0]))

	var shaderModule C.VkShaderModule
	result := C.vkCreateShaderModule(device.handle, cInfo, nil, &shaderModule)

	if result != C.VK_SUCCESS {
		return ShaderModule{}, Result(result)
	}

	return ShaderModule{handle: shaderModule}, nil
}

func (device Device) DestroyShaderModule(shaderModule ShaderModule) {
	C.vkDestroyShaderModule(device.handle, shaderModule.handle, nil)
}
