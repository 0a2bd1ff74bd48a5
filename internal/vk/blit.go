// blit.go
package vk

/*
#include <vulkan/vulkan.h>
*/
import "C"

type ImageBlit struct {
	SrcSubresource ImageSubresourceLayers
	SrcOffsets     [2]Offset3D
	DstSubresource ImageSubresourceLayers
	DstOffsets     [2]Offset3D
}

func (cmd CommandBuffer) CmdBlitImage(srcImage Image, srcLayout ImageLayout, dstImage Image, dstLayout ImageLayout, regions []ImageBlit, filter Filter) {
	cRegions := make([]C.VkImageBlit, len(regions))
	for i, r := range regions {
		cRegions[i].srcSubresource.aspectMask = C.VkImageAspectFlags(r.SrcSubresource.AspectMask)
		cRegions[i].srcSubresource.mipLevel = C.uint32_t(r.SrcSubresource.MipLevel)
		cRegions[i].srcSubresource.baseArrayLayer = C.uint32_t(r.SrcSubresource.BaseArrayLayer)
		cRegions[i].srcSubresource.layerCount = C.uint32_t(r.SrcSubresource.LayerCount)
		cRegions[i].srcOffsets[0] = C.VkOffset3D{x: C.int32_t(r.SrcOffsets[0].X), y: C.int32_t(r.SrcOffsets[0].Y), z: C.int32_t(r.SrcOffsets[0].Z)}
		cRegions[i].srcOffsets[1] = C.VkOffset3D{x: C.int32_t(r.SrcOffsets[1].X), y: C.int32_t(r.SrcOffsets[1].Y), z: C.int32_t(r.SrcOffsets[1].Z)}
		cRegions[i].dstSubresource.aspectMask = C.VkImageAspectFlags(r.DstSubresource.AspectMask)
		cRegions[i].dstSubresource.mipLevel = C.uint32_t(r.DstSubresource.MipLevel)
		cRegions[i].dstSubresource.baseArrayLayer = C.uint32_t(r.DstSubresource.BaseArrayLayer)
		cRegions[i].dstSubresource.layerCount = C.uint32_t(r.DstSubresource.LayerCount)
		cRegions[i].dstOffsets[0] = C.VkOffset3D{x: C.int32_t(r.DstOffsets[0].X), y: C.int32_t(r.DstOffsets[0].Y), z: C.int32_t(r.DstOffsets[0].Z)}
		cRegions[i].dstOffsets[1] = C.VkOffset3D{x: C.int32_t(r.DstOffsets[1].X), y: C.int32_t(r.DstOffsets[1].Y), z: C.int32_t(r.DstOffsets[1].Z)}
	}

	var pRegions *C.VkImageBlit
	if len(cRegions) > 0 {
		pRegions = &cRegions[0]
	}

	C.vkCmdBlitImage(cmd.handle, srcImage.handle, C.VkImageLayout(srcLayout), dstImage.handle, C.VkImageLayout(dstLayout), C.uint32_t(len(cRegions)), pRegions, C.VkFilter(filter))
}

func (cmd CommandBuffer) CmdCopyImage(srcImage Image, srcLayout ImageLayout, dstImage Image, dstLayout ImageLayout, regions []ImageCopy) {
	cRegions := make([]C.VkImageCopy, len(regions))
	for i, r := range regions {
		cRegions[i].srcSubresource.aspectMask = C.VkImageAspectFlags(r.SrcSubresource.AspectMask)
		cRegions[i].srcSubresource.mipLevel = C.uint32_t(r.SrcSubresource.MipLevel)
		cRegions[i].srcSubresource.baseArrayLayer = C.uint32_t(r.SrcSubresource.BaseArrayLayer)
		cRegions[i].srcSubresource.layerCount = C.uint32_t(r.SrcSubresource.LayerCount)
		cRegions[i].srcOffset = C.VkOffset3D{x: C.int32_t(r.SrcOffset.X), y: C.int32_t(r.SrcOffset.Y), z: C.int32_t(r.SrcOffset.Z)}
		cRegions[i].dstSubresource.aspectMask = C.VkImageAspectFlags(r.DstSubresource.AspectMask)
		cRegions[i].dstSubresource.mipLevel = C.uint32_t(r.DstSubresource.MipLevel)
		cRegions[i].dstSubresource.baseArrayLayer = C.uint32_t(r.DstSubresource.BaseArrayLayer)
		cRegions[i].dstSubresource.layerCount = C.uint32_t(r.DstSubresource.LayerCount)
		cRegions[i].dstOffset = C.VkOffset3D{x: C.int32_t(r.DstOffset.X), y: C.int32_t(r.DstOffset.Y), z: C.int32_t(r.DstOffset.Z)}
		cRegions[i].extent = C.VkExtent3D{width: C.uint32_t(r.Extent.Width), height: C.uint32_t(r.Extent.Height), depth: C.uint32_t(r.Extent.Depth)}
	}

	var pRegions *C.VkImageCopy
	if len(cRegions) > 0 {
		pRegions = &cRegions[0]
	}

	C.vkCmdCopyImage(cmd.handle, srcImage.handle, C.VkImageLayout(srcLayout), dstImage.handle, C.VkImageLayout(dstLayout), C.uint32_t(len(cRegions)), pRegions)
}

type ImageCopy struct {
	SrcSubresource ImageSubresourceLayers
	SrcOffset      Offset3D
	DstSubresource ImageSubresourceLayers
	DstOffset      Offset3D
	Extent         Extent3D
}

// CmdCopyImageToBuffer copies image texel data into a buffer, the
// read-back counterpart of CopyBufferToImage.
func (cmd CommandBuffer) CmdCopyImageToBuffer(srcImage Image, srcLayout ImageLayout, dstBuffer Buffer, regions []BufferImageCopy) {
	cRegions := make([]C.VkBufferImageCopy, len(regions))
	for i, region := range regions {
		cRegions[i].bufferOffset = C.VkDeviceSize(region.BufferOffset)
		cRegions[i].bufferRowLength = C.uint32_t(region.BufferRowLength)
		cRegions[i].bufferImageHeight = C.uint32_t(region.BufferImageHeight)
		cRegions[i].imageSubresource.aspectMask = C.VkImageAspectFlags(region.ImageSubresource.AspectMask)
		cRegions[i].imageSubresource.mipLevel = C.uint32_t(region.ImageSubresource.MipLevel)
		cRegions[i].imageSubresource.baseArrayLayer = C.uint32_t(region.ImageSubresource.BaseArrayLayer)
		cRegions[i].imageSubresource.layerCount = C.uint32_t(region.ImageSubresource.LayerCount)
		cRegions[i].imageOffset.x = C.int32_t(region.ImageOffset.X)
		cRegions[i].imageOffset.y = C.int32_t(region.ImageOffset.Y)
		cRegions[i].imageOffset.z = C.int32_t(region.ImageOffset.Z)
		cRegions[i].imageExtent.width = C.uint32_t(region.ImageExtent.Width)
		cRegions[i].imageExtent.height = C.uint32_t(region.ImageExtent.Height)
		cRegions[i].imageExtent.depth = C.uint32_t(region.ImageExtent.Depth)
	}

	var pRegions *C.VkBufferImageCopy
	if len(cRegions) > 0 {
		pRegions = &cRegions[0]
	}

	C.vkCmdCopyImageToBuffer(cmd.handle, srcImage.handle, C.VkImageLayout(srcLayout), dstBuffer.handle, C.uint32_t(len(cRegions)), pRegions)
}
