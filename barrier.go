package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// barrierEntry is one row of the layout transition lookup table: the
// (stage, access) pair a layout implies on either side of a barrier.
type barrierEntry struct {
	stage  vk.PipelineStageFlags2
	access vk.AccessFlags2
}

// layoutBarrierTable maps every layout the tracker supports to its
// (stage, access) pair. Abstract "attachment-optimal" is resolved to
// color or depth-stencil by attachmentOptimalLayout before lookup.
var layoutBarrierTable = map[vk.ImageLayout]barrierEntry{
	vk.IMAGE_LAYOUT_UNDEFINED: {vk.PIPELINE_STAGE_2_TOP_OF_PIPE_BIT, vk.ACCESS_2_NONE},
	vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL: {
		vk.PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT,
		vk.ACCESS_2_COLOR_ATTACHMENT_READ | vk.ACCESS_2_COLOR_ATTACHMENT_WRITE,
	},
	vk.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL: {
		vk.PIPELINE_STAGE_2_EARLY_FRAGMENT_TESTS | vk.PIPELINE_STAGE_2_LATE_FRAGMENT_TESTS,
		vk.ACCESS_2_DEPTH_STENCIL_ATTACHMENT_R | vk.ACCESS_2_DEPTH_STENCIL_ATTACHMENT_W,
	},
	vk.IMAGE_LAYOUT_DEPTH_STENCIL_READ_ONLY_OPTIMAL: {
		vk.PIPELINE_STAGE_2_EARLY_FRAGMENT_TESTS | vk.PIPELINE_STAGE_2_FRAGMENT_SHADER,
		vk.ACCESS_2_DEPTH_STENCIL_ATTACHMENT_R | vk.ACCESS_2_SHADER_READ,
	},
	vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL: {
		vk.PIPELINE_STAGE_2_FRAGMENT_SHADER | vk.PIPELINE_STAGE_2_COMPUTE_SHADER,
		vk.ACCESS_2_SHADER_READ,
	},
	vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL: {vk.PIPELINE_STAGE_2_TRANSFER_BIT, vk.ACCESS_2_TRANSFER_READ},
	vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL: {vk.PIPELINE_STAGE_2_TRANSFER_BIT, vk.ACCESS_2_TRANSFER_WRITE},
	vk.IMAGE_LAYOUT_GENERAL: {
		vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
		vk.ACCESS_2_MEMORY_READ | vk.ACCESS_2_MEMORY_WRITE,
	},
	vk.IMAGE_LAYOUT_PRESENT_SRC_KHR: {vk.PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT, vk.ACCESS_2_NONE},
}

// attachmentOptimalLayout resolves the abstract "attachment-optimal"
// layout name to color or depth-stencil based on is_depth.
func attachmentOptimalLayout(isDepth bool) vk.ImageLayout {
	if isDepth {
		return vk.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL
	}
	return vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
}

func barrierEntryFor(layout vk.ImageLayout) barrierEntry {
	if e, ok := layoutBarrierTable[layout]; ok {
		return e
	}
	return barrierEntry{vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT, vk.ACCESS_2_MEMORY_READ | vk.ACCESS_2_MEMORY_WRITE}
}

// transitionLayout emits a pipeline_barrier2 moving the image from its
// current tracked layout to target across every mip and layer, and
// updates the tracked layout on success. When resolveDepth is true
// (the image is both a resolve attachment and a depth attachment) the
// resolve semantics additionally union color-attachment-output stage
// and color-attachment read/write access into both sides.
func (ctx *Context) transitionLayout(cmd vk.CommandBuffer, img *Image, target vk.ImageLayout, resolveDepth bool) {
	if img.layout == target {
		return
	}

	src := barrierEntryFor(img.layout)
	dst := barrierEntryFor(target)

	srcStage, srcAccess := src.stage, src.access
	dstStage, dstAccess := dst.stage, dst.access
	if resolveDepth {
		srcStage |= vk.PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT
		dstStage |= vk.PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT
		srcAccess |= vk.ACCESS_2_COLOR_ATTACHMENT_READ | vk.ACCESS_2_COLOR_ATTACHMENT_WRITE
		dstAccess |= vk.ACCESS_2_COLOR_ATTACHMENT_READ | vk.ACCESS_2_COLOR_ATTACHMENT_WRITE
	}

	cmd.PipelineBarrier2([]vk.ImageMemoryBarrier2{{
		SrcStageMask:  srcStage,
		SrcAccessMask: srcAccess,
		DstStageMask:  dstStage,
		DstAccessMask: dstAccess,
		OldLayout:     img.layout,
		NewLayout:     target,
		Image:         img.handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     img.aspectMask(),
			BaseMipLevel:   0,
			LevelCount:     img.mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     img.layers,
		},
	}}, nil)

	img.layout = target
}

// barrierMip emits a pipeline_barrier2 for one mip/layer slice without
// consulting or mutating the image's tracked overall layout — used
// mid mip-generation, when different mips sit in different layouts
// simultaneously.
func (ctx *Context) barrierMip(cmd vk.CommandBuffer, img *Image, baseMip, levelCount, layer uint32, oldLayout, newLayout vk.ImageLayout) {
	src := barrierEntryFor(oldLayout)
	dst := barrierEntryFor(newLayout)
	cmd.PipelineBarrier2([]vk.ImageMemoryBarrier2{{
		SrcStageMask: src.stage, SrcAccessMask: src.access,
		DstStageMask: dst.stage, DstAccessMask: dst.access,
		OldLayout: oldLayout, NewLayout: newLayout,
		Image: img.handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: img.aspectMask(), BaseMipLevel: baseMip, LevelCount: levelCount,
			BaseArrayLayer: layer, LayerCount: 1,
		},
	}}, nil)
}
