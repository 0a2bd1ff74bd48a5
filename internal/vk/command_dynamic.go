// command_dynamic.go - extended command-buffer state: compute dispatch,
// buffer fill, image clears, extended dynamic state
// (depth/bias/blend-constants), debug labels, and query pools, none of
// which the base command.go covers.
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// Dispatch records a compute dispatch with the given thread-group counts.
func (cmd CommandBuffer) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {
	C.vkCmdDispatch(cmd.handle, C.uint32_t(groupCountX), C.uint32_t(groupCountY), C.uint32_t(groupCountZ))
}

// CmdFillBuffer fills size bytes of buffer starting at offset with the
// repeated 4-byte value. Offset and size must be 4-byte aligned.
func (cmd CommandBuffer) CmdFillBuffer(buffer Buffer, offset, size uint64, value uint32) {
	C.vkCmdFillBuffer(cmd.handle, buffer.handle, C.VkDeviceSize(offset), C.VkDeviceSize(size), C.uint32_t(value))
}

func (cmd CommandBuffer) SetDepthBias(constantFactor, clamp, slopeFactor float32) {
	C.vkCmdSetDepthBias(cmd.handle, C.float(constantFactor), C.float(clamp), C.float(slopeFactor))
}

func (cmd CommandBuffer) SetBlendConstants(constants [4]float32) {
	C.vkCmdSetBlendConstants(cmd.handle, (*C.float)(unsafe.Pointer(&constants[0])))
}

func (cmd CommandBuffer) SetDepthTestEnable(enable bool) {
	C.vkCmdSetDepthTestEnable(cmd.handle, vkBool(enable))
}

func (cmd CommandBuffer) SetDepthWriteEnable(enable bool) {
	C.vkCmdSetDepthWriteEnable(cmd.handle, vkBool(enable))
}

func (cmd CommandBuffer) SetDepthCompareOp(op CompareOp) {
	C.vkCmdSetDepthCompareOp(cmd.handle, C.VkCompareOp(op))
}

func (cmd CommandBuffer) SetDepthBiasEnable(enable bool) {
	C.vkCmdSetDepthBiasEnable(cmd.handle, vkBool(enable))
}

func vkBool(b bool) C.VkBool32 {
	if b {
		return C.VK_TRUE
	}
	return C.VK_FALSE
}

// Debug Utils labels. These record vkCmd*DebugUtilsLabelEXT
// unconditionally, so the instance must have VK_EXT_debug_utils
// enabled; callers gate on Context.debugUtilsEnabled.
type DebugLabel struct {
	Name  string
	Color [4]float32
}

func (cmd CommandBuffer) BeginDebugLabel(label DebugLabel) {
	name := C.CString(label.Name)
	defer C.free(unsafe.Pointer(name))
	var info C.VkDebugUtilsLabelEXT
	info.sType = C.VK_STRUCTURE_TYPE_DEBUG_UTILS_LABEL_EXT
	info.pLabelName = name
	for i, c := range label.Color {
		info.color[i] = C.float(c)
	}
	C.vkCmdBeginDebugUtilsLabelEXT(cmd.handle, &info)
}

func (cmd CommandBuffer) EndDebugLabel() {
	C.vkCmdEndDebugUtilsLabelEXT(cmd.handle)
}

func (cmd CommandBuffer) InsertDebugLabel(label DebugLabel) {
	name := C.CString(label.Name)
	defer C.free(unsafe.Pointer(name))
	var info C.VkDebugUtilsLabelEXT
	info.sType = C.VK_STRUCTURE_TYPE_DEBUG_UTILS_LABEL_EXT
	info.pLabelName = name
	for i, c := range label.Color {
		info.color[i] = C.float(c)
	}
	C.vkCmdInsertDebugUtilsLabelEXT(cmd.handle, &info)
}

// Query pools (timestamps only - the one query type the recorder exposes).
type QueryPool struct {
	handle C.VkQueryPool
}

type QueryType int32

const (
	QUERY_TYPE_TIMESTAMP QueryType = C.VK_QUERY_TYPE_TIMESTAMP
)

type QueryPoolCreateInfo struct {
	QueryType  QueryType
	QueryCount uint32
}

func (device Device) CreateQueryPool(createInfo *QueryPoolCreateInfo) (QueryPool, error) {
	cInfo := (*C.VkQueryPoolCreateInfo)(C.calloc(1, C.sizeof_VkQueryPoolCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_QUERY_POOL_CREATE_INFO
	cInfo.queryType = C.VkQueryType(createInfo.QueryType)
	cInfo.queryCount = C.uint32_t(createInfo.QueryCount)

	var pool C.VkQueryPool
	result := C.vkCreateQueryPool(device.handle, cInfo, nil, &pool)
	if result != C.VK_SUCCESS {
		return QueryPool{}, Result(result)
	}
	return QueryPool{handle: pool}, nil
}

func (device Device) DestroyQueryPool(pool QueryPool) {
	C.vkDestroyQueryPool(device.handle, pool.handle, nil)
}

func (cmd CommandBuffer) ResetQueryPool(pool QueryPool, firstQuery, queryCount uint32) {
	C.vkCmdResetQueryPool(cmd.handle, pool.handle, C.uint32_t(firstQuery), C.uint32_t(queryCount))
}

func (cmd CommandBuffer) WriteTimestamp(stage PipelineStageFlags2, pool QueryPool, query uint32) {
	C.vkCmdWriteTimestamp2(cmd.handle, C.VkPipelineStageFlags2(stage), pool.handle, C.uint32_t(query))
}

// CmdClearColorImage fills every region of image with a constant
// color, bypassing any bound pipeline. Used to seed a freshly-created
// texture or swapchain image before its first real draw.
func (cmd CommandBuffer) CmdClearColorImage(image Image, imageLayout ImageLayout, color *ClearColorValue, ranges []ImageSubresourceRange) {
	var cRanges []C.VkImageSubresourceRange
	for _, r := range ranges {
		cRanges = append(cRanges, C.VkImageSubresourceRange{
			aspectMask:     C.VkImageAspectFlags(r.AspectMask),
			baseMipLevel:   C.uint32_t(r.BaseMipLevel),
			levelCount:     C.uint32_t(r.LevelCount),
			baseArrayLayer: C.uint32_t(r.BaseArrayLayer),
			layerCount:     C.uint32_t(r.LayerCount),
		})
	}

	var cRangesPtr *C.VkImageSubresourceRange
	if len(cRanges) > 0 {
		cRangesPtr = &cRanges[0]
	}

	C.vkCmdClearColorImage(cmd.handle, image.handle, C.VkImageLayout(imageLayout),
		(*C.VkClearColorValue)(unsafe.Pointer(color)), C.uint32_t(len(ranges)), cRangesPtr)
}

// CmdClearDepthStencilImage is CmdClearColorImage's depth/stencil
// counterpart, for seeding a depth attachment without a render pass.
func (cmd CommandBuffer) CmdClearDepthStencilImage(image Image, imageLayout ImageLayout, depth float32, stencil uint32, ranges []ImageSubresourceRange) {
	var cRanges []C.VkImageSubresourceRange
	for _, r := range ranges {
		cRanges = append(cRanges, C.VkImageSubresourceRange{
			aspectMask:     C.VkImageAspectFlags(r.AspectMask),
			baseMipLevel:   C.uint32_t(r.BaseMipLevel),
			levelCount:     C.uint32_t(r.LevelCount),
			baseArrayLayer: C.uint32_t(r.BaseArrayLayer),
			layerCount:     C.uint32_t(r.LayerCount),
		})
	}
	var cRangesPtr *C.VkImageSubresourceRange
	if len(cRanges) > 0 {
		cRangesPtr = &cRanges[0]
	}

	var value C.VkClearDepthStencilValue
	value.depth = C.float(depth)
	value.stencil = C.uint32_t(stencil)
	C.vkCmdClearDepthStencilImage(cmd.handle, image.handle, C.VkImageLayout(imageLayout), &value, C.uint32_t(len(ranges)), cRangesPtr)
}
