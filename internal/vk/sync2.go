// sync2.go - VK_KHR_synchronization2 and timeline semaphores
package vk

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

type PipelineStageFlags2 uint64
type AccessFlags2 uint64

const (
	PIPELINE_STAGE_2_NONE                    PipelineStageFlags2 = 0
	PIPELINE_STAGE_2_TOP_OF_PIPE_BIT         PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_TOP_OF_PIPE_BIT
	PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT      PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT
	PIPELINE_STAGE_2_TRANSFER_BIT            PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_TRANSFER_BIT
	PIPELINE_STAGE_2_ALL_COMMANDS_BIT        PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT
	PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT_BIT
	PIPELINE_STAGE_2_EARLY_FRAGMENT_TESTS    PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_EARLY_FRAGMENT_TESTS_BIT
	PIPELINE_STAGE_2_LATE_FRAGMENT_TESTS     PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_LATE_FRAGMENT_TESTS_BIT
	PIPELINE_STAGE_2_FRAGMENT_SHADER         PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_FRAGMENT_SHADER_BIT
	PIPELINE_STAGE_2_VERTEX_INPUT            PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_VERTEX_INPUT_BIT
	PIPELINE_STAGE_2_VERTEX_ATTRIBUTE_INPUT  PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_VERTEX_ATTRIBUTE_INPUT_BIT
	PIPELINE_STAGE_2_INDEX_INPUT             PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_INDEX_INPUT_BIT
	PIPELINE_STAGE_2_DRAW_INDIRECT           PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_DRAW_INDIRECT_BIT
	PIPELINE_STAGE_2_COMPUTE_SHADER          PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_COMPUTE_SHADER_BIT
	PIPELINE_STAGE_2_COPY                    PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_COPY_BIT
	PIPELINE_STAGE_2_BLIT                    PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_BLIT_BIT
	PIPELINE_STAGE_2_CLEAR                   PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_CLEAR_BIT
	PIPELINE_STAGE_2_RESOLVE                 PipelineStageFlags2 = C.VK_PIPELINE_STAGE_2_RESOLVE_BIT

	ACCESS_2_NONE                         AccessFlags2 = 0
	ACCESS_2_TRANSFER_READ                AccessFlags2 = C.VK_ACCESS_2_TRANSFER_READ_BIT
	ACCESS_2_TRANSFER_WRITE               AccessFlags2 = C.VK_ACCESS_2_TRANSFER_WRITE_BIT
	ACCESS_2_SHADER_READ                  AccessFlags2 = C.VK_ACCESS_2_SHADER_READ_BIT
	ACCESS_2_SHADER_WRITE                 AccessFlags2 = C.VK_ACCESS_2_SHADER_WRITE_BIT
	ACCESS_2_COLOR_ATTACHMENT_READ        AccessFlags2 = C.VK_ACCESS_2_COLOR_ATTACHMENT_READ_BIT
	ACCESS_2_COLOR_ATTACHMENT_WRITE       AccessFlags2 = C.VK_ACCESS_2_COLOR_ATTACHMENT_WRITE_BIT
	ACCESS_2_DEPTH_STENCIL_ATTACHMENT_R   AccessFlags2 = C.VK_ACCESS_2_DEPTH_STENCIL_ATTACHMENT_READ_BIT
	ACCESS_2_DEPTH_STENCIL_ATTACHMENT_W   AccessFlags2 = C.VK_ACCESS_2_DEPTH_STENCIL_ATTACHMENT_WRITE_BIT
	ACCESS_2_MEMORY_READ                  AccessFlags2 = C.VK_ACCESS_2_MEMORY_READ_BIT
	ACCESS_2_MEMORY_WRITE                 AccessFlags2 = C.VK_ACCESS_2_MEMORY_WRITE_BIT
	ACCESS_2_VERTEX_ATTRIBUTE_READ        AccessFlags2 = C.VK_ACCESS_2_VERTEX_ATTRIBUTE_READ_BIT
	ACCESS_2_INDEX_READ                   AccessFlags2 = C.VK_ACCESS_2_INDEX_READ_BIT
	ACCESS_2_INDIRECT_COMMAND_READ        AccessFlags2 = C.VK_ACCESS_2_INDIRECT_COMMAND_READ_BIT
)

// ImageMemoryBarrier2 describes a synchronization2 image barrier.
type ImageMemoryBarrier2 struct {
	SrcStageMask        PipelineStageFlags2
	SrcAccessMask       AccessFlags2
	DstStageMask        PipelineStageFlags2
	DstAccessMask       AccessFlags2
	OldLayout           ImageLayout
	NewLayout           ImageLayout
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               Image
	SubresourceRange    ImageSubresourceRange
}

// BufferMemoryBarrier2 describes a synchronization2 buffer barrier.
type BufferMemoryBarrier2 struct {
	SrcStageMask  PipelineStageFlags2
	SrcAccessMask AccessFlags2
	DstStageMask  PipelineStageFlags2
	DstAccessMask AccessFlags2
	Buffer        Buffer
	Offset        uint64
	Size          uint64
}

func (cmd CommandBuffer) PipelineBarrier2(imageBarriers []ImageMemoryBarrier2, bufferBarriers []BufferMemoryBarrier2) {
	if len(imageBarriers) == 0 && len(bufferBarriers) == 0 {
		return
	}

	var dep C.VkDependencyInfo
	dep.sType = C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO
	dep.pNext = nil
	dep.dependencyFlags = 0

	var cImage []C.VkImageMemoryBarrier2
	if len(imageBarriers) > 0 {
		cImage = make([]C.VkImageMemoryBarrier2, len(imageBarriers))
		for i, b := range imageBarriers {
			cImage[i].sType = C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2
			cImage[i].pNext = nil
			cImage[i].srcStageMask = C.VkPipelineStageFlags2(b.SrcStageMask)
			cImage[i].srcAccessMask = C.VkAccessFlags2(b.SrcAccessMask)
			cImage[i].dstStageMask = C.VkPipelineStageFlags2(b.DstStageMask)
			cImage[i].dstAccessMask = C.VkAccessFlags2(b.DstAccessMask)
			cImage[i].oldLayout = C.VkImageLayout(b.OldLayout)
			cImage[i].newLayout = C.VkImageLayout(b.NewLayout)
			cImage[i].srcQueueFamilyIndex = C.uint32_t(b.SrcQueueFamilyIndex)
			cImage[i].dstQueueFamilyIndex = C.uint32_t(b.DstQueueFamilyIndex)
			cImage[i].image = b.Image.handle
			cImage[i].subresourceRange.aspectMask = C.VkImageAspectFlags(b.SubresourceRange.AspectMask)
			cImage[i].subresourceRange.baseMipLevel = C.uint32_t(b.SubresourceRange.BaseMipLevel)
			cImage[i].subresourceRange.levelCount = C.uint32_t(b.SubresourceRange.LevelCount)
			cImage[i].subresourceRange.baseArrayLayer = C.uint32_t(b.SubresourceRange.BaseArrayLayer)
			cImage[i].subresourceRange.layerCount = C.uint32_t(b.SubresourceRange.LayerCount)
		}
		dep.imageMemoryBarrierCount = C.uint32_t(len(cImage))
		dep.pImageMemoryBarriers = &cImage[0]
	}

	var cBuffer []C.VkBufferMemoryBarrier2
	if len(bufferBarriers) > 0 {
		cBuffer = make([]C.VkBufferMemoryBarrier2, len(bufferBarriers))
		for i, b := range bufferBarriers {
			cBuffer[i].sType = C.VK_STRUCTURE_TYPE_BUFFER_MEMORY_BARRIER_2
			cBuffer[i].pNext = nil
			cBuffer[i].srcStageMask = C.VkPipelineStageFlags2(b.SrcStageMask)
			cBuffer[i].srcAccessMask = C.VkAccessFlags2(b.SrcAccessMask)
			cBuffer[i].dstStageMask = C.VkPipelineStageFlags2(b.DstStageMask)
			cBuffer[i].dstAccessMask = C.VkAccessFlags2(b.DstAccessMask)
			cBuffer[i].srcQueueFamilyIndex = C.VK_QUEUE_FAMILY_IGNORED
			cBuffer[i].dstQueueFamilyIndex = C.VK_QUEUE_FAMILY_IGNORED
			cBuffer[i].buffer = b.Buffer.handle
			cBuffer[i].offset = C.VkDeviceSize(b.Offset)
			cBuffer[i].size = C.VkDeviceSize(b.Size)
		}
		dep.bufferMemoryBarrierCount = C.uint32_t(len(cBuffer))
		dep.pBufferMemoryBarriers = &cBuffer[0]
	}

	C.vkCmdPipelineBarrier2(cmd.handle, &dep)
}

// Timeline semaphores

type SemaphoreType int32

const (
	SEMAPHORE_TYPE_BINARY   SemaphoreType = C.VK_SEMAPHORE_TYPE_BINARY
	SEMAPHORE_TYPE_TIMELINE SemaphoreType = C.VK_SEMAPHORE_TYPE_TIMELINE
)

func (device Device) CreateTimelineSemaphore(initialValue uint64) (Semaphore, error) {
	var typeInfo C.VkSemaphoreTypeCreateInfo
	typeInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_TYPE_CREATE_INFO
	typeInfo.pNext = nil
	typeInfo.semaphoreType = C.VK_SEMAPHORE_TYPE_TIMELINE
	typeInfo.initialValue = C.uint64_t(initialValue)

	var cInfo C.VkSemaphoreCreateInfo
	cInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO
	cInfo.pNext = unsafe.Pointer(&typeInfo)
	cInfo.flags = 0

	var sem C.VkSemaphore
	result := C.vkCreateSemaphore(device.handle, &cInfo, nil, &sem)
	if result != C.VK_SUCCESS {
		return Semaphore{}, Result(result)
	}
	return Semaphore{handle: sem}, nil
}

func (device Device) GetSemaphoreCounterValue(sem Semaphore) (uint64, error) {
	var value C.uint64_t
	result := C.vkGetSemaphoreCounterValue(device.handle, sem.handle, &value)
	if result != C.VK_SUCCESS {
		return 0, Result(result)
	}
	return uint64(value), nil
}

func (device Device) WaitSemaphores(sems []Semaphore, values []uint64, timeout uint64) error {
	if len(sems) == 0 {
		return nil
	}

	cSems := make([]C.VkSemaphore, len(sems))
	cValues := make([]C.uint64_t, len(values))
	for i, s := range sems {
		cSems[i] = s.handle
	}
	for i, v := range values {
		cValues[i] = C.uint64_t(v)
	}

	var waitInfo C.VkSemaphoreWaitInfo
	waitInfo.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_WAIT_INFO
	waitInfo.pNext = nil
	waitInfo.flags = 0
	waitInfo.semaphoreCount = C.uint32_t(len(cSems))
	waitInfo.pSemaphores = &cSems[0]
	waitInfo.pValues = &cValues[0]

	result := C.vkWaitSemaphores(device.handle, &waitInfo, C.uint64_t(timeout))
	if result != C.VK_SUCCESS && result != C.VK_TIMEOUT {
		return Result(result)
	}
	return nil
}

func (device Device) SignalSemaphore(sem Semaphore, value uint64) error {
	var info C.VkSemaphoreSignalInfo
	info.sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_SIGNAL_INFO
	info.pNext = nil
	info.semaphore = sem.handle
	info.value = C.uint64_t(value)

	result := C.vkSignalSemaphore(device.handle, &info)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}

// SubmitInfo2 / QueueSubmit2

type SemaphoreSubmitInfo struct {
	Semaphore Semaphore
	Value     uint64
	StageMask PipelineStageFlags2
}

type CommandBufferSubmitInfo struct {
	CommandBuffer CommandBuffer
}

func (queue Queue) Submit2(waits []SemaphoreSubmitInfo, cmds []CommandBufferSubmitInfo, signals []SemaphoreSubmitInfo, fence Fence) error {
	var submit C.VkSubmitInfo2
	submit.sType = C.VK_STRUCTURE_TYPE_SUBMIT_INFO_2
	submit.pNext = nil
	submit.flags = 0

	var cWaits []C.VkSemaphoreSubmitInfo
	if len(waits) > 0 {
		cWaits = make([]C.VkSemaphoreSubmitInfo, len(waits))
		for i, w := range waits {
			cWaits[i].sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_SUBMIT_INFO
			cWaits[i].pNext = nil
			cWaits[i].semaphore = w.Semaphore.handle
			cWaits[i].value = C.uint64_t(w.Value)
			cWaits[i].stageMask = C.VkPipelineStageFlags2(w.StageMask)
			cWaits[i].deviceIndex = 0
		}
		submit.waitSemaphoreInfoCount = C.uint32_t(len(cWaits))
		submit.pWaitSemaphoreInfos = &cWaits[0]
	}

	var cCmds []C.VkCommandBufferSubmitInfo
	if len(cmds) > 0 {
		cCmds = make([]C.VkCommandBufferSubmitInfo, len(cmds))
		for i, c := range cmds {
			cCmds[i].sType = C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_SUBMIT_INFO
			cCmds[i].pNext = nil
			cCmds[i].commandBuffer = c.CommandBuffer.handle
			cCmds[i].deviceMask = 0
		}
		submit.commandBufferInfoCount = C.uint32_t(len(cCmds))
		submit.pCommandBufferInfos = &cCmds[0]
	}

	var cSignals []C.VkSemaphoreSubmitInfo
	if len(signals) > 0 {
		cSignals = make([]C.VkSemaphoreSubmitInfo, len(signals))
		for i, s := range signals {
			cSignals[i].sType = C.VK_STRUCTURE_TYPE_SEMAPHORE_SUBMIT_INFO
			cSignals[i].pNext = nil
			cSignals[i].semaphore = s.Semaphore.handle
			cSignals[i].value = C.uint64_t(s.Value)
			cSignals[i].stageMask = C.VkPipelineStageFlags2(s.StageMask)
			cSignals[i].deviceIndex = 0
		}
		submit.signalSemaphoreInfoCount = C.uint32_t(len(cSignals))
		submit.pSignalSemaphoreInfos = &cSignals[0]
	}

	var cFence C.VkFence
	if fence.handle != nil {
		cFence = fence.handle
	}

	result := C.vkQueueSubmit2(queue.handle, 1, &submit, cFence)
	if result != C.VK_SUCCESS {
		return Result(result)
	}
	return nil
}
