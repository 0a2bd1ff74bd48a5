// descriptor2.go - descriptor indexing extensions: per-binding flags
// (including the variable-descriptor-count flag) and update-after-bind
// pools.
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type DescriptorBindingFlags uint32

const (
	DESCRIPTOR_BINDING_UPDATE_AFTER_BIND_BIT           DescriptorBindingFlags = C.VK_DESCRIPTOR_BINDING_UPDATE_AFTER_BIND_BIT
	DESCRIPTOR_BINDING_UPDATE_UNUSED_WHILE_PENDING_BIT DescriptorBindingFlags = C.VK_DESCRIPTOR_BINDING_UPDATE_UNUSED_WHILE_PENDING_BIT
	DESCRIPTOR_BINDING_PARTIALLY_BOUND_BIT             DescriptorBindingFlags = C.VK_DESCRIPTOR_BINDING_PARTIALLY_BOUND_BIT
	DESCRIPTOR_BINDING_VARIABLE_DESCRIPTOR_COUNT_BIT   DescriptorBindingFlags = C.VK_DESCRIPTOR_BINDING_VARIABLE_DESCRIPTOR_COUNT_BIT
)

type DescriptorSetLayoutCreateFlags uint32
type DescriptorPoolCreateFlags uint32

const (
	DESCRIPTOR_SET_LAYOUT_CREATE_UPDATE_AFTER_BIND_POOL_BIT DescriptorSetLayoutCreateFlags = C.VK_DESCRIPTOR_SET_LAYOUT_CREATE_UPDATE_AFTER_BIND_POOL_BIT
	DESCRIPTOR_POOL_CREATE_UPDATE_AFTER_BIND_BIT             DescriptorPoolCreateFlags = C.VK_DESCRIPTOR_POOL_CREATE_UPDATE_AFTER_BIND_BIT
)

// CreateDescriptorSetLayoutBindless builds a descriptor set layout where
// each binding carries the flags the caller passes for it in
// bindingFlags (for a bindless array: partially-bound,
// update-after-bind, and update-unused-while-pending).
func (device Device) CreateDescriptorSetLayoutBindless(bindings []DescriptorSetLayoutBinding, bindingFlags []DescriptorBindingFlags) (DescriptorSetLayout, error) {
	cBindings := make([]C.VkDescriptorSetLayoutBinding, len(bindings))
	var immutableSamplers [][]C.VkSampler
	for i, b := range bindings {
		cBindings[i].binding = C.uint32_t(b.Binding)
		cBindings[i].descriptorType = C.VkDescriptorType(b.DescriptorType)
		cBindings[i].descriptorCount = C.uint32_t(b.DescriptorCount)
		cBindings[i].stageFlags = C.VkShaderStageFlags(b.StageFlags)
		cBindings[i].pImmutableSamplers = nil
		if len(b.ImmutableSamplers) > 0 {
			samplers := make([]C.VkSampler, len(b.ImmutableSamplers))
			for j, s := range b.ImmutableSamplers {
				samplers[j] = s.handle
			}
			immutableSamplers = append(immutableSamplers, samplers)
			cBindings[i].pImmutableSamplers = &samplers[0]
		}
	}
	_ = immutableSamplers // kept reachable until after vkCreateDescriptorSetLayout returns

	cFlags := make([]C.VkDescriptorBindingFlags, len(bindingFlags))
	for i, f := range bindingFlags {
		cFlags[i] = C.VkDescriptorBindingFlags(f)
	}

	var flagsInfo C.VkDescriptorSetLayoutBindingFlagsCreateInfo
	flagsInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_BINDING_FLAGS_CREATE_INFO
	flagsInfo.pNext = nil
	flagsInfo.bindingCount = C.uint32_t(len(cFlags))
	if len(cFlags) > 0 {
		flagsInfo.pBindingFlags = &cFlags[0]
	}

	var cInfo C.VkDescriptorSetLayoutCreateInfo
	cInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO
	cInfo.pNext = unsafe.Pointer(&flagsInfo)
	cInfo.flags = C.VkDescriptorSetLayoutCreateFlags(DESCRIPTOR_SET_LAYOUT_CREATE_UPDATE_AFTER_BIND_POOL_BIT)
	cInfo.bindingCount = C.uint32_t(len(cBindings))
	if len(cBindings) > 0 {
		cInfo.pBindings = &cBindings[0]
	}

	var layout C.VkDescriptorSetLayout
	result := C.vkCreateDescriptorSetLayout(device.handle, &cInfo, nil, &layout)
	if result != C.VK_SUCCESS {
		return DescriptorSetLayout{}, Result(result)
	}
	return DescriptorSetLayout{handle: layout}, nil
}

// CreateDescriptorPoolUpdateAfterBind creates a pool flagged for
// update-after-bind allocation, required for every set drawn from a
// bindless layout.
func (device Device) CreateDescriptorPoolUpdateAfterBind(createInfo *DescriptorPoolCreateInfo) (DescriptorPool, error) {
	cInfo := (*C.VkDescriptorPoolCreateInfo)(C.calloc(1, C.sizeof_VkDescriptorPoolCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO
	cInfo.pNext = nil
	cInfo.flags = C.VkDescriptorPoolCreateFlags(DESCRIPTOR_POOL_CREATE_UPDATE_AFTER_BIND_BIT)
	cInfo.maxSets = C.uint32_t(createInfo.MaxSets)

	var poolSizes []C.VkDescriptorPoolSize
	if len(createInfo.PoolSizes) > 0 {
		poolSizes = make([]C.VkDescriptorPoolSize, len(createInfo.PoolSizes))
		for i, size := range createInfo.PoolSizes {
			poolSizes[i]._type = C.VkDescriptorType(size.Type)
			poolSizes[i].descriptorCount = C.uint32_t(size.DescriptorCount)
		}
		cInfo.poolSizeCount = C.uint32_t(len(poolSizes))
		cInfo.pPoolSizes = &poolSizes[0]
	}

	var pool C.VkDescriptorPool
	result := C.vkCreateDescriptorPool(device.handle, cInfo, nil, &pool)
	if result != C.VK_SUCCESS {
		return DescriptorPool{}, Result(result)
	}
	return DescriptorPool{handle: pool}, nil
}
