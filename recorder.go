package vkcore

import (
	"unsafe"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/google/uuid"
)

// MaxColorAttachments bounds how many color attachments a single
// Framebuffer may name, per spec section 3.
const MaxColorAttachments = 8

// FramebufferAttachment names one texture slice a render pass writes
// into (or resolves into), independent of how it is loaded and stored.
type FramebufferAttachment struct {
	Texture        Handle
	ResolveTexture Handle
	Level          uint32
	Layer          uint32
}

// Framebuffer identifies where a render pass writes: up to
// MaxColorAttachments color attachments plus one optional depth-stencil
// attachment. Not a persistent object — built fresh and passed by value
// to BeginRendering on every call, per spec section 3.
type Framebuffer struct {
	ColorAttachments       []FramebufferAttachment
	DepthStencilAttachment *FramebufferAttachment
}

// RenderPassDesc describes how the textures a Framebuffer names are
// loaded, stored, and cleared — the part of a render pass that is
// reusable across many framebuffers, separate from attachment identity.
// ColorLoadOps/ColorStoreOps/ClearColors are parallel-indexed with
// Framebuffer.ColorAttachments.
type RenderPassDesc struct {
	ColorLoadOps  []LoadOp
	ColorStoreOps []StoreOp
	ClearColors   [][4]float32

	DepthLoadOp  LoadOp
	DepthStoreOp StoreOp
	ClearDepth   float32

	// StencilLoadOp defaults to LoadOpInvalid, meaning "no stencil" per
	// spec section 9, open question 1.
	StencilLoadOp  LoadOp
	StencilStoreOp StoreOp
	ClearStencil   uint32

	ViewMask uint32
}

// Viewport and Rect2D are the dynamic-state shapes BindViewport and
// BindScissor accept; kept distinct from internal/vk's equivalents so
// callers never import the cgo package directly.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type Rect2D struct {
	X, Y          int32
	Width, Height uint32
}

// Recorder is a façade over one in-flight command buffer, acquired from
// the recycler and returned to it on Submit. See spec section 4.8.
type Recorder struct {
	ctx *Context
	cmd vk.CommandBuffer

	rendering  bool
	fb         Framebuffer
	fbWidth    uint32
	fbHeight   uint32
	fbMipLevel uint32

	boundRenderPipeline  Handle
	boundComputePipeline Handle
	lastBoundPipeline    vk.Pipeline
	boundLayout          vk.PipelineLayout
	pushConstantStages   vk.ShaderStageFlags
	hasDepthAttachment   bool
}

// AcquireRecorder pulls a command buffer from the recycler and begins
// recording. A context may only host one in-flight recorder at a time;
// acquiring a second while one is live is a programmer error.
func (ctx *Context) AcquireRecorder() (*Recorder, error) {
	if ctx.recorderActive {
		ctx.log.Error("AcquireRecorder: a recorder is already in flight")
		return nil, InvalidState
	}
	cmd, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return nil, err
	}
	ctx.recorderActive = true
	return &Recorder{ctx: ctx, cmd: cmd}, nil
}

// Submit ends recording and hands the command buffer to the recycler.
// waitSems/signalSems chain beyond the recycler's own per-slot binary
// semaphore (used by the swapchain to wait on an acquire semaphore or
// signal a present-ready one).
func (r *Recorder) Submit(waitSems, signalSems []vk.SemaphoreSubmitInfo) (SubmissionHandle, error) {
	if r.rendering {
		r.ctx.log.Error("Submit: end_rendering was never called")
		return NullSubmission, InvalidState
	}
	sub, err := r.ctx.recycler.submit(r.ctx, r.cmd, waitSems, signalSems)
	r.ctx.recorderActive = false
	if err != nil {
		return NullSubmission, err
	}
	r.ctx.lastSubmission = sub
	r.ctx.deferred.processDeferred(r.ctx)
	return sub, nil
}

func attachmentExtent(ctx *Context, a FramebufferAttachment) (width, height, mip uint32, img *Image, ok bool) {
	img = ctx.images.Get(a.Texture)
	if img == nil {
		return 0, 0, 0, nil, false
	}
	w, h := img.extent.Width, img.extent.Height
	for i := uint32(0); i < a.Level; i++ {
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}
	return w, h, a.Level, img, true
}

func translateLoadOp(op LoadOp) vk.AttachmentLoadOp {
	switch op {
	case LoadOpClear:
		return vk.ATTACHMENT_LOAD_OP_CLEAR
	case LoadOpDontCare, LoadOpInvalid:
		return vk.ATTACHMENT_LOAD_OP_DONT_CARE
	default:
		return vk.ATTACHMENT_LOAD_OP_LOAD
	}
}

func translateStoreOp(op StoreOp) vk.AttachmentStoreOp {
	if op == StoreOpDontCare {
		return vk.ATTACHMENT_STORE_OP_DONT_CARE
	}
	return vk.ATTACHMENT_STORE_OP_STORE
}

// BeginRendering transitions every dependency and attachment to the
// layout the pass needs, then opens a vkCmdBeginRendering scope. deps
// and bufferDeps name resources the pass reads from but does not write
// — sampled textures and uniform/storage buffers the shaders will
// touch — so they can be transitioned ahead of the draw calls that use
// them, per spec section 4.8.
func (r *Recorder) BeginRendering(pass RenderPassDesc, fb Framebuffer, deps []Handle, bufferDeps []Handle) {
	ctx := r.ctx
	if r.rendering {
		ctx.log.Error("BeginRendering: already rendering")
		return
	}
	if len(fb.ColorAttachments) == 0 && fb.DepthStencilAttachment == nil {
		ctx.log.Error("BeginRendering: framebuffer has no attachments")
		return
	}
	if len(fb.ColorAttachments) > MaxColorAttachments {
		ctx.log.Error("BeginRendering: too many color attachments", "count", len(fb.ColorAttachments))
		return
	}

	for _, h := range deps {
		img := ctx.images.Get(h)
		if img == nil || img.isMultisampled() {
			continue
		}
		target := vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
		if img.isStorage() {
			target = vk.IMAGE_LAYOUT_GENERAL
		}
		ctx.transitionLayout(r.cmd, img, target, false)
	}
	for _, h := range bufferDeps {
		b := ctx.buffers.Get(h)
		if b == nil {
			continue
		}
		dstStage, dstAccess := uploadBufferStage(b.usage)
		r.cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
			SrcStageMask: vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT, SrcAccessMask: vk.ACCESS_2_MEMORY_WRITE,
			DstStageMask: dstStage, DstAccessMask: dstAccess,
			Buffer: b.handle, Offset: 0, Size: b.size,
		}})
	}

	var width, height, mip uint32
	colorAttachments := make([]vk.RenderingAttachmentInfo, 0, len(fb.ColorAttachments))
	for i, a := range fb.ColorAttachments {
		w, h, m, img, ok := attachmentExtent(ctx, a)
		if !ok {
			ctx.log.Error("BeginRendering: stale or null color attachment handle")
			return
		}
		if i == 0 {
			width, height, mip = w, h, m
		} else if w != width || h != height || m != mip {
			ctx.log.Error("BeginRendering: attachments do not share width/height/mip level")
			return
		}

		view, err := ctx.framebufferView(img, a.Level, a.Layer)
		if err != nil {
			ctx.log.Error("BeginRendering: failed to create attachment view", "err", err)
			return
		}
		ctx.transitionLayout(r.cmd, img, vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL, false)

		att := vk.RenderingAttachmentInfo{
			ImageView:   view,
			ImageLayout: vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL,
			LoadOp:      translateLoadOp(pass.ColorLoadOps[i]),
			StoreOp:     translateStoreOp(pass.ColorStoreOps[i]),
		}
		if i < len(pass.ClearColors) {
			att.ClearValue.Color.Float32 = pass.ClearColors[i]
		}
		if a.ResolveTexture != NullHandle {
			resolveImg := ctx.images.Get(a.ResolveTexture)
			if resolveImg != nil {
				resolveView, err := ctx.framebufferView(resolveImg, a.Level, a.Layer)
				if err == nil {
					ctx.transitionLayout(r.cmd, resolveImg, vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL, false)
					att.ResolveMode = vk.RESOLVE_MODE_AVERAGE
					att.ResolveImageView = resolveView
					att.ResolveImageLayout = vk.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
				}
			}
		}
		colorAttachments = append(colorAttachments, att)
	}

	var depthAttachment, stencilAttachment *vk.RenderingAttachmentInfo
	r.hasDepthAttachment = fb.DepthStencilAttachment != nil
	if ds := fb.DepthStencilAttachment; ds != nil {
		w, h, m, img, ok := attachmentExtent(ctx, *ds)
		if !ok {
			ctx.log.Error("BeginRendering: stale or null depth attachment handle")
			return
		}
		if len(fb.ColorAttachments) == 0 {
			width, height, mip = w, h, m
		} else if w != width || h != height || m != mip {
			ctx.log.Error("BeginRendering: depth attachment does not share width/height/mip level")
			return
		}

		view, err := ctx.framebufferView(img, ds.Level, ds.Layer)
		if err != nil {
			ctx.log.Error("BeginRendering: failed to create depth attachment view", "err", err)
			return
		}
		resolveDepth := ds.ResolveTexture != NullHandle
		ctx.transitionLayout(r.cmd, img, vk.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL, resolveDepth)

		depth := vk.RenderingAttachmentInfo{
			ImageView:   view,
			ImageLayout: vk.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL,
			LoadOp:      translateLoadOp(pass.DepthLoadOp),
			StoreOp:     translateStoreOp(pass.DepthStoreOp),
			ClearDepth:  pass.ClearDepth,
		}
		depthAttachment = &depth

		if img.isStencil() && pass.StencilLoadOp != LoadOpInvalid {
			stencil := vk.RenderingAttachmentInfo{
				ImageView:    view,
				ImageLayout:  vk.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL,
				LoadOp:       translateLoadOp(pass.StencilLoadOp),
				StoreOp:      translateStoreOp(pass.StencilStoreOp),
				ClearStencil: pass.ClearStencil,
			}
			stencilAttachment = &stencil
		}
	}

	r.cmd.BeginRendering(&vk.RenderingInfo{
		RenderArea:        vk.Rect2D{Extent: vk.Extent2D{Width: width, Height: height}},
		LayerCount:        1,
		ViewMask:          pass.ViewMask,
		ColorAttachments:  colorAttachments,
		DepthAttachment:   depthAttachment,
		StencilAttachment: stencilAttachment,
	})

	// Vertically flipped viewport: origin at top-left visually, per
	// spec section 4.8.
	r.cmd.SetViewport(0, []vk.Viewport{{
		X: 0, Y: float32(height),
		Width: float32(width), Height: -float32(height),
		MinDepth: 0, MaxDepth: 1,
	}})
	r.cmd.SetScissor(0, []vk.Rect2D{{Extent: vk.Extent2D{Width: width, Height: height}}})

	r.fb = fb
	r.fbWidth, r.fbHeight, r.fbMipLevel = width, height, mip
	r.rendering = true
}

// EndRendering closes the vkCmdBeginRendering scope and clears the
// current framebuffer.
func (r *Recorder) EndRendering() {
	if !r.rendering {
		r.ctx.log.Error("EndRendering: not rendering")
		return
	}
	r.cmd.EndRendering()
	r.fb = Framebuffer{}
	r.fbWidth, r.fbHeight, r.fbMipLevel = 0, 0, 0
	r.hasDepthAttachment = false
	r.rendering = false
}

// BindRenderPipeline and BindComputePipeline are mutually exclusive —
// binding one clears the other. Both fetch-or-rebuild the underlying
// Vulkan pipeline, bind it only if it differs from the last bound
// pipeline, and bind the global bindless descriptor set.
func (r *Recorder) BindRenderPipeline(h Handle) {
	ctx := r.ctx
	rp := ctx.renderPipelines.Get(h)
	if rp == nil {
		ctx.log.Error("BindRenderPipeline: stale or null handle")
		return
	}
	if (rp.desc.DepthFormat != vk.FORMAT_UNDEFINED) != r.hasDepthAttachment {
		ctx.log.Error("BindRenderPipeline: depth attachment presence does not match bound framebuffer")
		return
	}
	built, err := ctx.ensureRenderPipeline(h)
	if err != nil {
		ctx.log.Error("BindRenderPipeline: failed to build pipeline", "err", err)
		return
	}
	if err := ctx.descriptors.update(ctx); err != nil {
		ctx.log.Error("BindRenderPipeline: failed to update descriptor set", "err", err)
		return
	}
	if built.pipeline != r.lastBoundPipeline {
		r.cmd.BindPipeline(vk.PIPELINE_BIND_POINT_GRAPHICS, built.pipeline)
		r.lastBoundPipeline = built.pipeline
	}
	ctx.descriptors.bind(ctx, r.cmd, vk.PIPELINE_BIND_POINT_GRAPHICS, built.layout)
	r.boundRenderPipeline = h
	r.boundComputePipeline = NullHandle
	r.boundLayout = built.layout
	r.pushConstantStages = vk.SHADER_STAGE_ALL_GRAPHICS
}

func (r *Recorder) BindComputePipeline(h Handle) {
	ctx := r.ctx
	cp := ctx.computePipelines.Get(h)
	if cp == nil {
		ctx.log.Error("BindComputePipeline: stale or null handle")
		return
	}
	built, err := ctx.ensureComputePipeline(h)
	if err != nil {
		ctx.log.Error("BindComputePipeline: failed to build pipeline", "err", err)
		return
	}
	if err := ctx.descriptors.update(ctx); err != nil {
		ctx.log.Error("BindComputePipeline: failed to update descriptor set", "err", err)
		return
	}
	if built.pipeline != r.lastBoundPipeline {
		r.cmd.BindPipeline(vk.PIPELINE_BIND_POINT_COMPUTE, built.pipeline)
		r.lastBoundPipeline = built.pipeline
	}
	ctx.descriptors.bind(ctx, r.cmd, vk.PIPELINE_BIND_POINT_COMPUTE, built.layout)
	r.boundComputePipeline = h
	r.boundRenderPipeline = NullHandle
	r.boundLayout = built.layout
	r.pushConstantStages = vk.SHADER_STAGE_COMPUTE_BIT
}

// BindViewport and BindScissor set dynamic state directly; unlike
// BeginRendering's implicit full-framebuffer viewport, these are not
// flipped automatically — callers pass the flip themselves via
// negative Height when that convention is wanted.
func (r *Recorder) BindViewport(v Viewport) {
	r.cmd.SetViewport(0, []vk.Viewport{{
		X: v.X, Y: v.Y, Width: v.Width, Height: v.Height,
		MinDepth: v.MinDepth, MaxDepth: v.MaxDepth,
	}})
}

func (r *Recorder) BindScissor(s Rect2D) {
	r.cmd.SetScissor(0, []vk.Rect2D{{
		Offset: vk.Offset2D{X: s.X, Y: s.Y},
		Extent: vk.Extent2D{Width: s.Width, Height: s.Height},
	}})
}

// SetDepthBias, SetBlendConstants, and SetDepthState configure the
// dynamic pipeline state every graphics pipeline built by this package
// declares dynamic (see ensureRenderPipeline's DynamicState list) —
// without one of these calls the values are undefined, not defaulted.
func (r *Recorder) SetDepthBias(constantFactor, clamp, slopeFactor float32) {
	r.cmd.SetDepthBias(constantFactor, clamp, slopeFactor)
}

func (r *Recorder) SetBlendConstants(constants [4]float32) {
	r.cmd.SetBlendConstants(constants)
}

func (r *Recorder) SetDepthState(testEnable, writeEnable bool, compareOp CompareOp) {
	r.cmd.SetDepthTestEnable(testEnable)
	r.cmd.SetDepthWriteEnable(writeEnable)
	r.cmd.SetDepthCompareOp(translateCompareOp(compareOp))
}

func (r *Recorder) SetDepthBiasEnable(enable bool) {
	r.cmd.SetDepthBiasEnable(enable)
}

func (r *Recorder) BindVertexBuffer(binding uint32, h Handle, offset uint64) {
	ctx := r.ctx
	b := ctx.buffers.Get(h)
	if b == nil {
		ctx.log.Error("BindVertexBuffer: stale or null handle")
		return
	}
	if b.usage&BufferUsageVertex == 0 {
		ctx.log.Error("BindVertexBuffer: buffer was not created with vertex usage")
		return
	}
	r.cmd.BindVertexBuffers(binding, []vk.Buffer{b.handle}, []uint64{offset})
}

func (r *Recorder) BindIndexBuffer(h Handle, format IndexFormat, offset uint64) {
	ctx := r.ctx
	b := ctx.buffers.Get(h)
	if b == nil {
		ctx.log.Error("BindIndexBuffer: stale or null handle")
		return
	}
	if b.usage&BufferUsageIndex == 0 {
		ctx.log.Error("BindIndexBuffer: buffer was not created with index usage")
		return
	}
	it := vk.INDEX_TYPE_UINT32
	if format == IndexFormatUint16 {
		it = vk.INDEX_TYPE_UINT16
	}
	r.cmd.BindIndexBuffer(b.handle, offset, it)
}

// PushConstants requires a pipeline to already be bound; the stage
// flags are whichever pipeline (render or compute) was last bound.
func (r *Recorder) PushConstants(data []byte, offset uint32) {
	ctx := r.ctx
	if r.boundRenderPipeline == NullHandle && r.boundComputePipeline == NullHandle {
		ctx.log.Error("PushConstants: no pipeline bound")
		return
	}
	size := uint32(len(data))
	if size%4 != 0 {
		ctx.log.Error("PushConstants: size must be a multiple of 4", "size", size)
		return
	}
	if size+offset > ctx.maxPushConstantsSize {
		ctx.log.Warn("PushConstants: size+offset exceeds device limit, proceeding anyway",
			"size", size, "offset", offset, "limit", ctx.maxPushConstantsSize)
	}
	if size == 0 {
		return
	}
	r.cmd.CmdPushConstants(r.boundLayout, r.pushConstantStages, offset, size, unsafe.Pointer(&data[0]))
}

func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.cmd.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	r.cmd.DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// DispatchThreadGroups transitions dependency textures to general or
// shader-read (storage vs sampled) and barriers dependency buffers from
// their prior vertex/fragment usage to compute-shader access before
// dispatching, per spec section 4.8.
func (r *Recorder) DispatchThreadGroups(groupsX, groupsY, groupsZ uint32, deps []Handle, bufferDeps []Handle) {
	ctx := r.ctx
	for _, h := range deps {
		img := ctx.images.Get(h)
		if img == nil || img.isMultisampled() {
			continue
		}
		target := vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
		if img.isStorage() {
			target = vk.IMAGE_LAYOUT_GENERAL
		}
		ctx.transitionLayout(r.cmd, img, target, false)
	}
	for _, h := range bufferDeps {
		b := ctx.buffers.Get(h)
		if b == nil {
			continue
		}
		r.cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
			SrcStageMask: vk.PIPELINE_STAGE_2_VERTEX_INPUT | vk.PIPELINE_STAGE_2_FRAGMENT_SHADER,
			SrcAccessMask: vk.ACCESS_2_SHADER_READ | vk.ACCESS_2_VERTEX_ATTRIBUTE_READ,
			DstStageMask: vk.PIPELINE_STAGE_2_COMPUTE_SHADER,
			DstAccessMask: vk.ACCESS_2_SHADER_READ | vk.ACCESS_2_SHADER_WRITE,
			Buffer: b.handle, Offset: 0, Size: b.size,
		}})
	}
	r.cmd.Dispatch(groupsX, groupsY, groupsZ)
}

func defaultLayoutForUsage(img *Image) vk.ImageLayout {
	switch {
	case img.isAttachment():
		return attachmentOptimalLayout(img.isDepth())
	case img.isSampled():
		return vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	case img.isStorage():
		return vk.IMAGE_LAYOUT_GENERAL
	default:
		return vk.IMAGE_LAYOUT_GENERAL
	}
}

func restoreOrDefault(img *Image, prior vk.ImageLayout) vk.ImageLayout {
	if prior == vk.IMAGE_LAYOUT_UNDEFINED {
		return defaultLayoutForUsage(img)
	}
	return prior
}

// CopyImage chooses vkCmdCopyImage when the formats share a texel size,
// else falls back to a linear-filtered blit; a texel-size mismatch onto
// a depth/stencil destination is logged as an error and records
// nothing. dst's prior layout is
// reported as undefined to the barrier (discarding its contents)
// exactly when the copy covers the whole destination image.
func (r *Recorder) CopyImage(src, dst Handle, extent vk.Extent3D, srcOffset, dstOffset vk.Offset3D, srcLayer, dstLayer uint32) {
	ctx := r.ctx
	srcImg := ctx.images.Get(src)
	dstImg := ctx.images.Get(dst)
	if srcImg == nil || dstImg == nil {
		ctx.log.Error("CopyImage: stale or null handle")
		return
	}
	if bytesPerTexel(srcImg.format) != bytesPerTexel(dstImg.format) && (dstImg.isDepth() || dstImg.isStencil()) {
		ctx.log.Error("CopyImage: texel size mismatch onto a depth/stencil destination is not supported")
		return
	}
	srcPrior, dstPrior := srcImg.layout, dstImg.layout
	fullCopy := srcOffset == (vk.Offset3D{}) && dstOffset == (vk.Offset3D{}) &&
		extent.Width == dstImg.extent.Width && extent.Height == dstImg.extent.Height && extent.Depth == dstImg.extent.Depth

	ctx.transitionLayout(r.cmd, srcImg, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, false)
	if fullCopy {
		dstImg.layout = vk.IMAGE_LAYOUT_UNDEFINED
	}
	ctx.transitionLayout(r.cmd, dstImg, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, false)

	srcSub := vk.ImageSubresourceLayers{AspectMask: srcImg.aspectMask(), MipLevel: 0, BaseArrayLayer: srcLayer, LayerCount: 1}
	dstSub := vk.ImageSubresourceLayers{AspectMask: dstImg.aspectMask(), MipLevel: 0, BaseArrayLayer: dstLayer, LayerCount: 1}

	if bytesPerTexel(srcImg.format) == bytesPerTexel(dstImg.format) {
		r.cmd.CmdCopyImage(srcImg.handle, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, dstImg.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, []vk.ImageCopy{{
			SrcSubresource: srcSub, SrcOffset: srcOffset,
			DstSubresource: dstSub, DstOffset: dstOffset,
			Extent: extent,
		}})
	} else {
		srcEnd := vk.Offset3D{X: srcOffset.X + int32(extent.Width), Y: srcOffset.Y + int32(extent.Height), Z: srcOffset.Z + int32(extent.Depth)}
		dstEnd := vk.Offset3D{X: dstOffset.X + int32(extent.Width), Y: dstOffset.Y + int32(extent.Height), Z: dstOffset.Z + int32(extent.Depth)}
		r.cmd.CmdBlitImage(srcImg.handle, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, dstImg.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, []vk.ImageBlit{{
			SrcSubresource: srcSub, SrcOffsets: [2]vk.Offset3D{srcOffset, srcEnd},
			DstSubresource: dstSub, DstOffsets: [2]vk.Offset3D{dstOffset, dstEnd},
		}}, vk.FILTER_LINEAR)
	}

	ctx.transitionLayout(r.cmd, srcImg, restoreOrDefault(srcImg, srcPrior), false)
	ctx.transitionLayout(r.cmd, dstImg, restoreOrDefault(dstImg, dstPrior), false)
}

// ClearColorImage barriers to transfer-dst, clears, then restores the
// image's prior layout (or a usage-appropriate default).
func (r *Recorder) ClearColorImage(h Handle, color [4]float32, baseLayer, layerCount uint32) {
	ctx := r.ctx
	img := ctx.images.Get(h)
	if img == nil {
		ctx.log.Error("ClearColorImage: stale or null handle")
		return
	}
	prior := img.layout
	ctx.transitionLayout(r.cmd, img, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, false)
	r.cmd.CmdClearColorImage(img.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, &vk.ClearColorValue{Float32: color}, []vk.ImageSubresourceRange{{
		AspectMask: img.aspectMask(), BaseMipLevel: 0, LevelCount: img.mipLevels, BaseArrayLayer: baseLayer, LayerCount: layerCount,
	}})
	ctx.transitionLayout(r.cmd, img, restoreOrDefault(img, prior), false)
}

// FillBuffer and UpdateBuffer require 4-byte-aligned offset and size;
// UpdateBuffer additionally caps at 65536 bytes (the vkCmdUpdateBuffer
// limit). Both barrier AllCommands <-> Transfer around the command,
// with the destination side of the barrier chosen per the buffer's
// usage.
func (r *Recorder) FillBuffer(h Handle, offset, size uint64, value uint32) {
	ctx := r.ctx
	if offset%4 != 0 || size%4 != 0 {
		ctx.log.Error("FillBuffer: offset and size must be 4-byte aligned", "offset", offset, "size", size)
		return
	}
	b := ctx.buffers.Get(h)
	if b == nil {
		ctx.log.Error("FillBuffer: stale or null handle")
		return
	}
	dstStage, dstAccess := uploadBufferStage(b.usage)
	r.cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
		SrcStageMask: vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT, SrcAccessMask: vk.ACCESS_2_MEMORY_READ | vk.ACCESS_2_MEMORY_WRITE,
		DstStageMask: vk.PIPELINE_STAGE_2_TRANSFER_BIT, DstAccessMask: vk.ACCESS_2_TRANSFER_WRITE,
		Buffer: b.handle, Offset: offset, Size: size,
	}})
	r.cmd.CmdFillBuffer(b.handle, offset, size, value)
	r.cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
		SrcStageMask: vk.PIPELINE_STAGE_2_TRANSFER_BIT, SrcAccessMask: vk.ACCESS_2_TRANSFER_WRITE,
		DstStageMask: dstStage, DstAccessMask: dstAccess,
		Buffer: b.handle, Offset: offset, Size: size,
	}})
}

func (r *Recorder) UpdateBuffer(h Handle, offset uint64, data []byte) {
	ctx := r.ctx
	if offset%4 != 0 || len(data)%4 != 0 {
		ctx.log.Error("UpdateBuffer: offset and size must be 4-byte aligned", "offset", offset, "size", len(data))
		return
	}
	if len(data) > 65536 {
		ctx.log.Error("UpdateBuffer: size exceeds the 65536-byte vkCmdUpdateBuffer limit", "size", len(data))
		return
	}
	if len(data) == 0 {
		return
	}
	b := ctx.buffers.Get(h)
	if b == nil {
		ctx.log.Error("UpdateBuffer: stale or null handle")
		return
	}
	dstStage, dstAccess := uploadBufferStage(b.usage)
	size := uint64(len(data))
	r.cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
		SrcStageMask: vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT, SrcAccessMask: vk.ACCESS_2_MEMORY_READ | vk.ACCESS_2_MEMORY_WRITE,
		DstStageMask: vk.PIPELINE_STAGE_2_TRANSFER_BIT, DstAccessMask: vk.ACCESS_2_TRANSFER_WRITE,
		Buffer: b.handle, Offset: offset, Size: size,
	}})
	r.cmd.CmdUpdateBuffer(b.handle, offset, size, unsafe.Pointer(&data[0]))
	r.cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
		SrcStageMask: vk.PIPELINE_STAGE_2_TRANSFER_BIT, SrcAccessMask: vk.ACCESS_2_TRANSFER_WRITE,
		DstStageMask: dstStage, DstAccessMask: dstAccess,
		Buffer: b.handle, Offset: offset, Size: size,
	}})
}

// GenerateMipmap delegates to the image-layout tracker, per spec
// section 4.8. Unlike the other recorder operations this issues its
// own acquire/submit/wait cycle rather than recording into the
// recorder's own command buffer.
func (r *Recorder) GenerateMipmap(h Handle) {
	if err := r.ctx.GenerateMipmap(h); err != nil {
		r.ctx.log.Error("GenerateMipmap failed", "err", err)
	}
}

// DebugLabel, PushGroup, PopGroup, Timestamp, and ResetQueryPool are
// thin passthroughs gated on the debug-utils extension, per spec
// section 4.8.
func (r *Recorder) DebugLabel(name string, color [4]float32) {
	if !r.ctx.debugUtilsEnabled {
		return
	}
	r.cmd.InsertDebugLabel(vk.DebugLabel{Name: name, Color: color})
}

// PushGroup opens a nested debug-utils label group. Each call is
// stamped with a correlation id so an external GPU trace (RenderDoc,
// Nsight) and this package's own structured log can be lined up by
// grepping for the same id.
func (r *Recorder) PushGroup(name string, color [4]float32) {
	if !r.ctx.debugUtilsEnabled {
		return
	}
	corrID := uuid.NewString()
	r.ctx.log.Debug("PushGroup", "name", name, "correlation_id", corrID)
	r.cmd.BeginDebugLabel(vk.DebugLabel{Name: name + " #" + corrID[:8], Color: color})
}

func (r *Recorder) PopGroup() {
	if !r.ctx.debugUtilsEnabled {
		return
	}
	r.cmd.EndDebugLabel()
}

func (r *Recorder) Timestamp(stage vk.PipelineStageFlags2, pool vk.QueryPool, query uint32) {
	if !r.ctx.debugUtilsEnabled {
		return
	}
	r.cmd.WriteTimestamp(stage, pool, query)
}

func (r *Recorder) ResetQueryPool(pool vk.QueryPool, first, count uint32) {
	if !r.ctx.debugUtilsEnabled {
		return
	}
	r.cmd.ResetQueryPool(pool, first, count)
}
