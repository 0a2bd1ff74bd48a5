// imageview.go
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// SamplerYcbcrConversion wraps the object that makes a multiplanar
// image view sample as a single combined YCbCr color. One conversion
// is shared by every image view and sampler using the same format and
// color parameters.
type SamplerYcbcrConversion struct {
	handle C.VkSamplerYcbcrConversion
}

type SamplerYcbcrConversionCreateInfo struct {
	Format        Format
	YcbcrModel    SamplerYcbcrModelConversion
	YcbcrRange    SamplerYcbcrRange
	ChromaFilter  Filter
	XChromaOffset ChromaLocation
	YChromaOffset ChromaLocation
}

func (device Device) CreateSamplerYcbcrConversion(createInfo *SamplerYcbcrConversionCreateInfo) (SamplerYcbcrConversion, error) {
	var cInfo C.VkSamplerYcbcrConversionCreateInfo
	cInfo.sType = C.VK_STRUCTURE_TYPE_SAMPLER_YCBCR_CONVERSION_CREATE_INFO
	cInfo.pNext = nil
	cInfo.format = C.VkFormat(createInfo.Format)
	cInfo.ycbcrModel = C.VkSamplerYcbcrModelConversion(createInfo.YcbcrModel)
	cInfo.ycbcrRange = C.VkSamplerYcbcrRange(createInfo.YcbcrRange)
	cInfo.components.r = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.g = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.b = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.a = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.xChromaOffset = C.VkChromaLocation(createInfo.XChromaOffset)
	cInfo.yChromaOffset = C.VkChromaLocation(createInfo.YChromaOffset)
	cInfo.chromaFilter = C.VkFilter(createInfo.ChromaFilter)
	cInfo.forceExplicitReconstruction = C.VK_FALSE

	var conv C.VkSamplerYcbcrConversion
	result := C.vkCreateSamplerYcbcrConversion(device.handle, &cInfo, nil, &conv)
	if result != C.VK_SUCCESS {
		return SamplerYcbcrConversion{}, Result(result)
	}
	return SamplerYcbcrConversion{handle: conv}, nil
}

func (device Device) DestroySamplerYcbcrConversion(conv SamplerYcbcrConversion) {
	C.vkDestroySamplerYcbcrConversion(device.handle, conv.handle, nil)
}

type imageViewCreateData struct {
	cInfo      *C.VkImageViewCreateInfo
	ycbcrChain *C.VkSamplerYcbcrConversionInfo
}

func (info *ImageViewCreateInfo) vulkanize() *imageViewCreateData {
	data := &imageViewCreateData{}

	data.cInfo = (*C.VkImageViewCreateInfo)(C.calloc(1, C.sizeof_VkImageViewCreateInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO
	data.cInfo.pNext = nil
	data.cInfo.flags = 0

	if info.YcbcrConversion != nil {
		data.ycbcrChain = (*C.VkSamplerYcbcrConversionInfo)(C.calloc(1, C.sizeof_VkSamplerYcbcrConversionInfo))
		data.ycbcrChain.sType = C.VK_STRUCTURE_TYPE_SAMPLER_YCBCR_CONVERSION_INFO
		data.ycbcrChain.pNext = nil
		data.ycbcrChain.conversion = info.YcbcrConversion.handle
		data.cInfo.pNext = unsafe.Pointer(data.ycbcrChain)
	}
	data.cInfo.image = info.Image.handle
	data.cInfo.viewType = C.VkImageViewType(info.ViewType)
	data.cInfo.format = C.VkFormat(info.Format)

	// Component mapping
	data.cInfo.components.r = C.VkComponentSwizzle(info.Components.R)
	data.cInfo.components.g = C.VkComponentSwizzle(info.Components.G)
	data.cInfo.components.b = C.VkComponentSwizzle(info.Components.B)
	data.cInfo.components.a = C.VkComponentSwizzle(info.Components.A)

	// Subresource range
	data.cInfo.subresourceRange.aspectMask = C.VkImageAspectFlags(info.SubresourceRange.AspectMask)
	data.cInfo.subresourceRange.baseMipLevel = C.uint32_t(info.SubresourceRange.BaseMipLevel)
	data.cInfo.subresourceRange.levelCount = C.uint32_t(info.SubresourceRange.LevelCount)
	data.cInfo.subresourceRange.baseArrayLayer = C.uint32_t(info.SubresourceRange.BaseArrayLayer)
	data.cInfo.subresourceRange.layerCount = C.uint32_t(info.SubresourceRange.LayerCount)

	return data
}

func (data *imageViewCreateData) free() {
	if data.ycbcrChain != nil {
		C.free(unsafe.Pointer(data.ycbcrChain))
	}
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

func (device Device) CreateImageView(createInfo *ImageViewCreateInfo) (ImageView, error) {
	data := createInfo.vulkanize()
	defer data.free()

	var imageView C.VkImageView
	result := C.vkCreateImageView(device.handle, data.cInfo, nil, &imageView)

	if result != C.VK_SUCCESS {
		return ImageView{}, Result(result)
	}

	return ImageView{handle: imageView}, nil
}

func (device Device) DestroyImageView(imageView ImageView) {
	C.vkDestroyImageView(device.handle, imageView.handle, nil)
}
