package vkcore

import (
	"unsafe"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

const (
	stagingInitialMin = 4 * 1024 * 1024 * 4 // 4 MiB * 4
	stagingMaxClamp   = 128 * 1024 * 1024
	stagingAlign      = 16
)

// stagingRegion is one window of the staging buffer, tagged with the
// submission that last consumed it. See spec section 4.5.
type stagingRegion struct {
	offset uint64
	size   uint64
	submit SubmissionHandle
}

// stagingEngine moves host data to device-local resources (and back)
// through a single growable host-visible buffer, sub-allocated by an
// ordered free/busy region list.
type stagingEngine struct {
	buffer  vk.Buffer
	memory  vk.DeviceMemory
	mapped  []byte
	coherent bool
	size    uint64

	regions []stagingRegion
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}

func newStagingEngine(ctx *Context, requested uint64) (*stagingEngine, error) {
	initial := alignUp(requested, stagingAlign)
	if initial < stagingInitialMin {
		initial = stagingInitialMin
	}
	if initial > stagingMaxClamp {
		initial = stagingMaxClamp
	}
	s := &stagingEngine{}
	if err := s.allocate(ctx, initial); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *stagingEngine) allocate(ctx *Context, size uint64) error {
	buf, err := ctx.device.CreateBuffer(&vk.BufferCreateInfo{
		Size:        size,
		Usage:       vk.BUFFER_USAGE_TRANSFER_SRC_BIT | vk.BUFFER_USAGE_TRANSFER_DST_BIT,
		SharingMode: vk.SHARING_MODE_EXCLUSIVE,
	})
	if err != nil {
		return err
	}
	reqs := ctx.device.GetBufferMemoryRequirements(buf)
	memProps := vk.MEMORY_PROPERTY_HOST_VISIBLE_BIT | vk.MEMORY_PROPERTY_HOST_COHERENT_BIT
	idx, found := vk.FindMemoryType(ctx.physicalDevice.GetMemoryProperties(), reqs.MemoryTypeBits, memProps)
	if !found {
		ctx.device.DestroyBuffer(buf)
		return NotSupported
	}
	mem, err := ctx.device.AllocateMemory(&vk.MemoryAllocateInfo{AllocationSize: reqs.Size, MemoryTypeIndex: idx})
	if err != nil {
		ctx.device.DestroyBuffer(buf)
		return err
	}
	if err := ctx.device.BindBufferMemory(buf, mem, 0); err != nil {
		ctx.device.FreeMemory(mem)
		ctx.device.DestroyBuffer(buf)
		return err
	}
	ptr, err := ctx.device.MapMemory(mem, 0, size)
	if err != nil {
		ctx.device.FreeMemory(mem)
		ctx.device.DestroyBuffer(buf)
		return err
	}

	s.buffer = buf
	s.memory = mem
	s.mapped = unsafe.Slice((*byte)(ptr), size)
	s.coherent = true
	s.size = size
	s.regions = []stagingRegion{{offset: 0, size: size}}
	return nil
}

// ensureSize grows the staging buffer to min(aligned_n, stagingMaxClamp),
// waiting for every in-flight region first and dropping the old buffer.
// If the old and new sizes together exceed stagingMaxClamp, it drains
// deferred destroys before allocating, per spec section 4.5. The clamp
// is the fixed stagingMaxClamp constant; no device limit is consulted.
func (s *stagingEngine) ensureSize(ctx *Context, n uint64) error {
	aligned := alignUp(n, stagingAlign)
	target := aligned
	if target > stagingMaxClamp {
		target = stagingMaxClamp
	}
	if target <= s.size {
		return nil
	}

	for _, r := range s.regions {
		ctx.recycler.wait(ctx, r.submit)
	}

	if s.size+target > stagingMaxClamp {
		ctx.deferred.waitDeferred(ctx)
	}

	old := s.buffer
	oldMem := s.memory
	if err := s.allocate(ctx, target); err != nil {
		return err
	}
	ctx.device.UnmapMemory(oldMem)
	ctx.device.FreeMemory(oldMem)
	ctx.device.DestroyBuffer(old)
	return nil
}

// getNextFreeOffset implements the four-step allocator: align n,
// ensure capacity, split the first retired region with enough room,
// fall back to the largest retired-but-too-small region, or wait on
// everything and reset to one full-buffer region.
func (s *stagingEngine) getNextFreeOffset(ctx *Context, n uint64) (stagingRegion, error) {
	n = alignUp(n, stagingAlign)
	if err := s.ensureSize(ctx, n); err != nil {
		return stagingRegion{}, err
	}

	bestIdx := -1
	var bestSize uint64
	for i, r := range s.regions {
		ready, err := ctx.recycler.isReady(ctx, r.submit)
		if err != nil {
			return stagingRegion{}, err
		}
		if !ready {
			continue
		}
		if r.size >= n {
			out := stagingRegion{offset: r.offset, size: n}
			rest := stagingRegion{offset: r.offset + n, size: r.size - n}
			s.regions = append(s.regions[:i], append([]stagingRegion{rest}, s.regions[i+1:]...)...)
			return out, nil
		}
		if r.size > bestSize {
			bestSize = r.size
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		return s.regions[bestIdx], nil
	}

	for _, r := range s.regions {
		if err := ctx.recycler.wait(ctx, r.submit); err != nil {
			return stagingRegion{}, err
		}
	}
	s.regions = []stagingRegion{{offset: 0, size: s.size}}
	out := stagingRegion{offset: 0, size: n}
	s.regions[0] = stagingRegion{offset: n, size: s.size - n}
	return out, nil
}

// markUsed reinserts a consumed region into the busy/free list tagged
// with the submission that references it, so a later getNextFreeOffset
// can reclaim it once that submission retires.
func (s *stagingEngine) markUsed(region stagingRegion, sub SubmissionHandle) {
	s.regions = append(s.regions, stagingRegion{offset: region.offset, size: region.size, submit: sub})
}

func (s *stagingEngine) destroy(ctx *Context) {
	ctx.device.UnmapMemory(s.memory)
	ctx.device.FreeMemory(s.memory)
	ctx.device.DestroyBuffer(s.buffer)
}

// uploadBufferStage dictates the destination access mask and stage a
// device-local upload barriers into, keyed on the target buffer's
// usage, per spec section 4.5.
func uploadBufferStage(usage BufferUsage) (vk.PipelineStageFlags2, vk.AccessFlags2) {
	switch {
	case usage&BufferUsageIndirect != 0:
		return vk.PIPELINE_STAGE_2_DRAW_INDIRECT, vk.ACCESS_2_INDIRECT_COMMAND_READ
	case usage&BufferUsageIndex != 0:
		return vk.PIPELINE_STAGE_2_INDEX_INPUT, vk.ACCESS_2_INDEX_READ
	case usage&BufferUsageVertex != 0:
		return vk.PIPELINE_STAGE_2_VERTEX_INPUT, vk.ACCESS_2_VERTEX_ATTRIBUTE_READ
	default:
		return vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT, vk.ACCESS_2_MEMORY_READ | vk.ACCESS_2_MEMORY_WRITE
	}
}

// UploadBuffer writes data into a buffer. Host-visible buffers are
// memcpy'd directly through their mapped pointer; device-local buffers
// go through the staging engine, one region and one submit per chunk
// while the staging buffer is too small to cover the whole transfer.
func (ctx *Context) UploadBuffer(h Handle, offset uint64, data []byte) error {
	b := ctx.buffers.Get(h)
	if b == nil {
		return ArgumentError
	}
	if b.mapped != nil {
		return ctx.BufferSubData(h, offset, data)
	}
	if offset+uint64(len(data)) > b.size {
		return ArgumentOutOfRange
	}

	dstStage, dstAccess := uploadBufferStage(b.usage)
	remaining := data
	dstOffset := offset
	for len(remaining) > 0 {
		region, err := ctx.staging.getNextFreeOffset(ctx, uint64(len(remaining)))
		if err != nil {
			return err
		}
		n := region.size
		if uint64(len(remaining)) < n {
			n = uint64(len(remaining))
		}
		copy(ctx.staging.mapped[region.offset:region.offset+n], remaining[:n])

		cmd, err := ctx.recycler.acquire(ctx)
		if err != nil {
			return err
		}
		cmd.CmdCopyBuffer(ctx.staging.buffer, b.handle, []vk.BufferCopy{{SrcOffset: region.offset, DstOffset: dstOffset, Size: n}})
		cmd.PipelineBarrier2(nil, []vk.BufferMemoryBarrier2{{
			SrcStageMask: vk.PIPELINE_STAGE_2_TRANSFER_BIT, SrcAccessMask: vk.ACCESS_2_TRANSFER_WRITE,
			DstStageMask: dstStage, DstAccessMask: dstAccess,
			Buffer: b.handle, Offset: dstOffset, Size: n,
		}})
		sub, err := ctx.recycler.submit(ctx, cmd, nil, nil)
		if err != nil {
			return err
		}
		ctx.staging.markUsed(stagingRegion{offset: region.offset, size: n}, sub)

		remaining = remaining[n:]
		dstOffset += n
	}
	return nil
}

// planeCount returns the number of planes a multiplanar format
// decomposes into; 1 for every ordinary (non-planar) format.
func planeCount(f vk.Format) int {
	switch f {
	case vk.FORMAT_G8_B8R8_2PLANE_420_UNORM:
		return 2
	case vk.FORMAT_G8_B8_R8_3PLANE_420_UNORM:
		return 3
	default:
		return 1
	}
}

// planeBytesPerTexel returns the byte size of one texel of the given
// plane. Plane 0 (luma) is always 1 byte/texel for the formats this
// package supports; the 2-plane layout packs Cb and Cr together into
// plane 1 at 2 bytes/texel, while the 3-plane layout keeps Cb and Cr
// as separate 1-byte planes.
func planeBytesPerTexel(f vk.Format, plane int) uint64 {
	switch f {
	case vk.FORMAT_G8_B8R8_2PLANE_420_UNORM:
		if plane == 0 {
			return 1
		}
		return 2
	case vk.FORMAT_G8_B8_R8_3PLANE_420_UNORM:
		return 1
	default:
		return bytesPerTexel(f)
	}
}

// planeExtent returns plane p's width and height given the image's
// full-resolution extent. Plane 0 is full resolution; planes 1 and 2
// are 4:2:0 chroma-subsampled to half width and height, rounded up.
func planeExtent(width, height uint32, plane int) (uint32, uint32) {
	if plane == 0 {
		return width, height
	}
	return (width + 1) / 2, (height + 1) / 2
}

func bytesPerTexel(f vk.Format) uint64 {
	switch f {
	case vk.FORMAT_R8_UNORM:
		return 1
	case vk.FORMAT_R16G16B16A16_SFLOAT:
		return 8
	case vk.FORMAT_R32G32B32A32_SFLOAT:
		return 16
	case vk.FORMAT_D16_UNORM:
		return 2
	case vk.FORMAT_D32_SFLOAT, vk.FORMAT_D24_UNORM_S8_UINT, vk.FORMAT_D32_SFLOAT_S8_UINT:
		return 4
	default:
		return 4 // R8G8B8A8 / B8G8R8A8 and friends
	}
}

// UploadTexture2D uploads pixel data covering every mip and layer of a
// 2D (or cube) image. The whole transfer goes through a single staging
// region; the image's final layout is ShaderReadOnlyOptimal regardless
// of what it was before.
func (ctx *Context) UploadTexture2D(h Handle, pixels []byte) error {
	img := ctx.images.Get(h)
	if img == nil {
		return ArgumentError
	}

	total := uint64(0)
	w, hgt := img.extent.Width, img.extent.Height
	for mip := uint32(0); mip < img.mipLevels; mip++ {
		total += bytesPerTexel(img.format) * uint64(w) * uint64(hgt) * uint64(img.layers)
		if w > 1 {
			w /= 2
		}
		if hgt > 1 {
			hgt /= 2
		}
	}
	if uint64(len(pixels)) < total {
		ctx.log.Error("UploadTexture2D: pixel buffer too small", "have", len(pixels), "need", total)
		return ArgumentOutOfRange
	}

	region, err := ctx.staging.getNextFreeOffset(ctx, total)
	if err != nil {
		return err
	}
	if region.size < total {
		if err := ctx.staging.ensureSize(ctx, total); err != nil {
			return err
		}
		region, err = ctx.staging.getNextFreeOffset(ctx, total)
		if err != nil {
			return err
		}
	}
	copy(ctx.staging.mapped[region.offset:], pixels[:total])

	cmd, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return err
	}

	aspect := img.aspectMask()
	srcOffset := region.offset
	w, hgt = img.extent.Width, img.extent.Height
	for layer := uint32(0); layer < img.layers; layer++ {
		mw, mh := w, hgt
		for mip := uint32(0); mip < img.mipLevels; mip++ {
			ctx.barrierMip(cmd, img, mip, 1, layer, vk.IMAGE_LAYOUT_UNDEFINED, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL)
			cmd.CopyBufferToImage(ctx.staging.buffer, img.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, []vk.BufferImageCopy{{
				BufferOffset:     srcOffset,
				ImageSubresource: vk.ImageSubresourceLayers{AspectMask: aspect, MipLevel: mip, BaseArrayLayer: layer, LayerCount: 1},
				ImageExtent:      vk.Extent3D{Width: mw, Height: mh, Depth: 1},
			}})
			ctx.barrierMip(cmd, img, mip, 1, layer, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL)
			srcOffset += bytesPerTexel(img.format) * uint64(mw) * uint64(mh)
			if mw > 1 {
				mw /= 2
			}
			if mh > 1 {
				mh /= 2
			}
		}
	}

	sub, err := ctx.recycler.submit(ctx, cmd, nil, nil)
	if err != nil {
		return err
	}
	ctx.staging.markUsed(region, sub)
	img.layout = vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	return ctx.recycler.wait(ctx, sub)
}

// UploadMultiplanarTexture2D uploads every plane of a multiplanar
// image's mip 0 in a single submission, one BufferImageCopy region per
// plane addressed by its own VK_IMAGE_ASPECT_PLANE_i_BIT, per spec
// section 4.5. planes must supply exactly one []byte per plane, each
// already laid out at that plane's (possibly chroma-subsampled)
// resolution with no row padding.
func (ctx *Context) UploadMultiplanarTexture2D(h Handle, planes [][]byte) error {
	img := ctx.images.Get(h)
	if img == nil {
		return ArgumentError
	}
	aspects := img.planeAspects()
	if len(aspects) == 0 {
		ctx.log.Error("UploadMultiplanarTexture2D: image is not multiplanar")
		return ArgumentError
	}
	if len(planes) != len(aspects) {
		ctx.log.Error("UploadMultiplanarTexture2D: plane count mismatch", "have", len(planes), "need", len(aspects))
		return ArgumentError
	}

	var total uint64
	need := make([]uint64, len(aspects))
	for p := range aspects {
		pw, ph := planeExtent(img.extent.Width, img.extent.Height, p)
		need[p] = planeBytesPerTexel(img.format, p) * uint64(pw) * uint64(ph)
		if uint64(len(planes[p])) < need[p] {
			ctx.log.Error("UploadMultiplanarTexture2D: plane buffer too small", "plane", p, "have", len(planes[p]), "need", need[p])
			return ArgumentOutOfRange
		}
		total += need[p]
	}

	region, err := ctx.staging.getNextFreeOffset(ctx, total)
	if err != nil {
		return err
	}
	if region.size < total {
		if err := ctx.staging.ensureSize(ctx, total); err != nil {
			return err
		}
		region, err = ctx.staging.getNextFreeOffset(ctx, total)
		if err != nil {
			return err
		}
	}

	regions := make([]vk.BufferImageCopy, len(aspects))
	offset := region.offset
	for p, aspect := range aspects {
		pw, ph := planeExtent(img.extent.Width, img.extent.Height, p)
		copy(ctx.staging.mapped[offset:offset+need[p]], planes[p][:need[p]])
		regions[p] = vk.BufferImageCopy{
			BufferOffset:     offset,
			ImageSubresource: vk.ImageSubresourceLayers{AspectMask: aspect, MipLevel: 0, BaseArrayLayer: 0, LayerCount: 1},
			ImageExtent:      vk.Extent3D{Width: pw, Height: ph, Depth: 1},
		}
		offset += need[p]
	}

	cmd, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return err
	}
	ctx.barrierMip(cmd, img, 0, 1, 0, vk.IMAGE_LAYOUT_UNDEFINED, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL)
	cmd.CopyBufferToImage(ctx.staging.buffer, img.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, regions)
	ctx.barrierMip(cmd, img, 0, 1, 0, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL)

	sub, err := ctx.recycler.submit(ctx, cmd, nil, nil)
	if err != nil {
		return err
	}
	ctx.staging.markUsed(region, sub)
	img.layout = vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	return ctx.recycler.wait(ctx, sub)
}

// UploadTexture3D uploads a single-mip 3D volume in one copy.
func (ctx *Context) UploadTexture3D(h Handle, voxels []byte) error {
	img := ctx.images.Get(h)
	if img == nil {
		return ArgumentError
	}
	total := bytesPerTexel(img.format) * uint64(img.extent.Width) * uint64(img.extent.Height) * uint64(img.extent.Depth)
	if uint64(len(voxels)) < total {
		return ArgumentOutOfRange
	}

	region, err := ctx.staging.getNextFreeOffset(ctx, total)
	if err != nil {
		return err
	}
	copy(ctx.staging.mapped[region.offset:], voxels[:total])

	cmd, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return err
	}
	aspect := img.aspectMask()
	ctx.barrierMip(cmd, img, 0, 1, 0, vk.IMAGE_LAYOUT_UNDEFINED, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL)
	cmd.CopyBufferToImage(ctx.staging.buffer, img.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, []vk.BufferImageCopy{{
		BufferOffset:     region.offset,
		ImageSubresource: vk.ImageSubresourceLayers{AspectMask: aspect, MipLevel: 0, BaseArrayLayer: 0, LayerCount: 1},
		ImageExtent:      img.extent,
	}})
	ctx.barrierMip(cmd, img, 0, 1, 0, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL)

	sub, err := ctx.recycler.submit(ctx, cmd, nil, nil)
	if err != nil {
		return err
	}
	ctx.staging.markUsed(region, sub)
	img.layout = vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	return ctx.recycler.wait(ctx, sub)
}

// DownloadTexture2D reads mip 0, layer 0 of an image back to host
// memory. The image is barriered to TransferSrc, copied into a staging
// region, then barriered back to its original layout in a second
// submit, matching the symmetric download path in spec section 4.5.
func (ctx *Context) DownloadTexture2D(h Handle, dst []byte) error {
	img := ctx.images.Get(h)
	if img == nil {
		return ArgumentError
	}
	total := bytesPerTexel(img.format) * uint64(img.extent.Width) * uint64(img.extent.Height)
	if uint64(len(dst)) < total {
		return ArgumentOutOfRange
	}

	region, err := ctx.staging.getNextFreeOffset(ctx, total)
	if err != nil {
		return err
	}
	originalLayout := img.layout
	aspect := img.aspectMask()

	cmd, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return err
	}
	ctx.barrierMip(cmd, img, 0, 1, 0, originalLayout, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL)
	cmd.CmdCopyImageToBuffer(img.handle, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, ctx.staging.buffer, []vk.BufferImageCopy{{
		BufferOffset:     region.offset,
		ImageSubresource: vk.ImageSubresourceLayers{AspectMask: aspect, MipLevel: 0, BaseArrayLayer: 0, LayerCount: 1},
		ImageExtent:      vk.Extent3D{Width: img.extent.Width, Height: img.extent.Height, Depth: 1},
	}})
	sub, err := ctx.recycler.submit(ctx, cmd, nil, nil)
	if err != nil {
		return err
	}
	ctx.staging.markUsed(region, sub)
	if err := ctx.recycler.wait(ctx, sub); err != nil {
		return err
	}

	if !ctx.staging.coherent {
		ctx.device.InvalidateMappedMemoryRanges(ctx.staging.memory, region.offset, total)
	}
	copy(dst, ctx.staging.mapped[region.offset:region.offset+total])

	cmd2, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return err
	}
	ctx.barrierMip(cmd2, img, 0, 1, 0, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, originalLayout)
	img.layout = originalLayout
	sub2, err := ctx.recycler.submit(ctx, cmd2, nil, nil)
	if err != nil {
		return err
	}
	return ctx.recycler.wait(ctx, sub2)
}
