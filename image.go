package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// Image owns (or shares, if a view-clone) a VkImage plus its default
// view, a per-(mip,layer) framebuffer view cache, and the current
// layout. See spec section 4.2.
type Image struct {
	handle      vk.Image
	memory      vk.DeviceMemory
	defaultView vk.ImageView
	storageView *vk.ImageView

	extent    vk.Extent3D
	imageType ImageType
	format    vk.Format
	samples   vk.SampleCountFlags
	mipLevels uint32
	layers    uint32
	usage     TextureUsage

	layout vk.ImageLayout

	isOwningImage bool
	isResolve     bool
	isMultiplanar bool
	fbViews       map[fbViewKey]vk.ImageView
}

type fbViewKey struct {
	mip, layer uint32
}

func isDepthFormat(f vk.Format) bool {
	switch f {
	case vk.FORMAT_D32_SFLOAT, vk.FORMAT_D32_SFLOAT_S8_UINT, vk.FORMAT_D24_UNORM_S8_UINT,
		vk.FORMAT_D16_UNORM, vk.FORMAT_D16_UNORM_S8_UINT:
		return true
	}
	return false
}

func isStencilFormat(f vk.Format) bool {
	switch f {
	case vk.FORMAT_D32_SFLOAT_S8_UINT, vk.FORMAT_D24_UNORM_S8_UINT, vk.FORMAT_D16_UNORM_S8_UINT:
		return true
	}
	return false
}

// isMultiplanarFormat reports whether f decomposes into separate
// memory planes (luma plus one or two chroma planes) instead of one
// interleaved set of texel components, per spec section 3's
// is_multiplanar flag.
func isMultiplanarFormat(f vk.Format) bool {
	switch f {
	case vk.FORMAT_G8_B8R8_2PLANE_420_UNORM, vk.FORMAT_G8_B8_R8_3PLANE_420_UNORM:
		return true
	}
	return false
}

func (img *Image) isDepth() bool   { return isDepthFormat(img.format) }
func (img *Image) isStencil() bool { return isStencilFormat(img.format) }

func (img *Image) isSampled() bool    { return img.usage&TextureUsageSampled != 0 }
func (img *Image) isStorage() bool    { return img.usage&TextureUsageStorage != 0 }
func (img *Image) isAttachment() bool { return img.usage&TextureUsageAttachment != 0 }
func (img *Image) isMultisampled() bool {
	return img.samples != vk.SAMPLE_COUNT_1_BIT
}

func (img *Image) aspectMask() vk.ImageAspectFlags {
	if img.isDepth() {
		mask := vk.IMAGE_ASPECT_DEPTH_BIT
		if img.isStencil() {
			mask |= vk.IMAGE_ASPECT_STENCIL_BIT
		}
		return mask
	}
	return vk.IMAGE_ASPECT_COLOR_BIT
}

// planeAspects returns the per-plane aspect masks a multiplanar
// image's planes are addressed by, in plane order. Empty for an
// ordinary (non-planar) image.
func (img *Image) planeAspects() []vk.ImageAspectFlags {
	switch planeCount(img.format) {
	case 2:
		return []vk.ImageAspectFlags{vk.IMAGE_ASPECT_PLANE_0_BIT, vk.IMAGE_ASPECT_PLANE_1_BIT}
	case 3:
		return []vk.ImageAspectFlags{vk.IMAGE_ASPECT_PLANE_0_BIT, vk.IMAGE_ASPECT_PLANE_1_BIT, vk.IMAGE_ASPECT_PLANE_2_BIT}
	default:
		return nil
	}
}

// CreateTexture allocates a 2D, 3D, or Cube image with the given
// format, extent, mip count, and usage set.
func (ctx *Context) CreateTexture(imgType ImageType, format vk.Format, width, height, depth, mipLevels, layers uint32, usage TextureUsage) (Handle, error) {
	if width == 0 || height == 0 {
		ctx.log.Error("CreateTexture: zero extent")
		return NullHandle, ArgumentError
	}
	if mipLevels == 0 {
		mipLevels = 1
	}
	if layers == 0 {
		layers = 1
	}

	vkUsage := translateTextureUsage(usage, format)
	vkType := vk.IMAGE_TYPE_2D
	if imgType == ImageType3D {
		vkType = vk.IMAGE_TYPE_3D
	}
	if depth == 0 {
		depth = 1
	}

	img, err := ctx.device.CreateImage(&vk.ImageCreateInfo{
		ImageType:     vkType,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: depth},
		MipLevels:     mipLevels,
		ArrayLayers:   layers,
		Samples:       vk.SAMPLE_COUNT_1_BIT,
		Tiling:        vk.IMAGE_TILING_OPTIMAL,
		Usage:         vkUsage,
		SharingMode:   vk.SHARING_MODE_EXCLUSIVE,
		InitialLayout: vk.IMAGE_LAYOUT_UNDEFINED,
	})
	if err != nil {
		return NullHandle, err
	}

	reqs := ctx.device.GetImageMemoryRequirements(img)
	memTypeIdx, found := vk.FindMemoryType(ctx.physicalDevice.GetMemoryProperties(), reqs.MemoryTypeBits, vk.MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
	if !found {
		ctx.device.DestroyImage(img)
		ctx.log.Error("CreateTexture: no suitable memory type")
		return NullHandle, NotSupported
	}
	memory, err := ctx.device.AllocateMemory(&vk.MemoryAllocateInfo{AllocationSize: reqs.Size, MemoryTypeIndex: memTypeIdx})
	if err != nil {
		ctx.device.DestroyImage(img)
		return NullHandle, err
	}
	if err := ctx.device.BindImageMemory(img, memory, 0); err != nil {
		ctx.device.FreeMemory(memory)
		ctx.device.DestroyImage(img)
		return NullHandle, err
	}

	multiplanar := isMultiplanarFormat(format)
	var ycbcrConv *vk.SamplerYcbcrConversion
	if multiplanar {
		if err := ctx.descriptors.ensureYcbcrBinding(ctx, format); err != nil {
			ctx.device.FreeMemory(memory)
			ctx.device.DestroyImage(img)
			return NullHandle, err
		}
		ycbcrConv = &ctx.descriptors.ycbcrConversion
	}

	aspect := vk.IMAGE_ASPECT_COLOR_BIT
	if isDepthFormat(format) {
		aspect = vk.IMAGE_ASPECT_DEPTH_BIT
		if isStencilFormat(format) {
			aspect |= vk.IMAGE_ASPECT_STENCIL_BIT
		}
	}
	viewType := vk.IMAGE_VIEW_TYPE_2D
	if imgType == ImageType3D {
		viewType = vk.IMAGE_VIEW_TYPE_3D
	} else if imgType == ImageTypeCube {
		viewType = vk.IMAGE_VIEW_TYPE_CUBE
	}
	view, err := ctx.device.CreateImageView(&vk.ImageViewCreateInfo{
		Image:    img,
		ViewType: viewType,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.COMPONENT_SWIZZLE_IDENTITY, G: vk.COMPONENT_SWIZZLE_IDENTITY,
			B: vk.COMPONENT_SWIZZLE_IDENTITY, A: vk.COMPONENT_SWIZZLE_IDENTITY,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect, BaseMipLevel: 0, LevelCount: mipLevels,
			BaseArrayLayer: 0, LayerCount: layers,
		},
		YcbcrConversion: ycbcrConv,
	})
	if err != nil {
		ctx.device.FreeMemory(memory)
		ctx.device.DestroyImage(img)
		return NullHandle, err
	}

	i := Image{
		handle:        img,
		memory:        memory,
		defaultView:   view,
		extent:        vk.Extent3D{Width: width, Height: height, Depth: depth},
		imageType:     imgType,
		format:        format,
		samples:       vk.SAMPLE_COUNT_1_BIT,
		mipLevels:     mipLevels,
		layers:        layers,
		usage:         usage,
		layout:        vk.IMAGE_LAYOUT_UNDEFINED,
		isOwningImage: true,
		isMultiplanar: multiplanar,
		fbViews:       make(map[fbViewKey]vk.ImageView),
	}

	h := ctx.images.Create(i)
	if i.isSampled() || i.isStorage() {
		ctx.descriptors.awaitingCreation = true
	}
	if multiplanar {
		ctx.descriptors.awaitingCreation = true
	}
	return h, nil
}

// GenerateMipmap blits mip 0 progressively into every subsequent
// level. The format's linear-blit support is not queried:
// formatSupportsLinearBlit reports true for every format, so the
// warn-and-skip branch below is never taken. The image's layout after
// the call equals its layout before the call.
func (ctx *Context) GenerateMipmap(h Handle) error {
	img := ctx.images.Get(h)
	if img == nil {
		return ArgumentError
	}
	if img.mipLevels <= 1 {
		return nil
	}
	if !ctx.formatSupportsLinearBlit(img.format) {
		ctx.log.Warn("GenerateMipmap: format does not support linear blit", "format", img.format)
		return nil
	}

	originalLayout := img.layout
	aspect := img.aspectMask()
	filter := vk.FILTER_LINEAR
	if img.isDepth() || img.isStencil() {
		filter = vk.FILTER_NEAREST
	}

	cmd, err := ctx.recycler.acquire(ctx)
	if err != nil {
		return err
	}

	for layer := uint32(0); layer < img.layers; layer++ {
		ctx.barrierMip(cmd, img, 0, 1, layer, originalLayout, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL)

		w, h32 := int32(img.extent.Width), int32(img.extent.Height)
		for i := uint32(1); i < img.mipLevels; i++ {
			ctx.barrierMip(cmd, img, i, 1, layer, vk.IMAGE_LAYOUT_UNDEFINED, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL)

			nw, nh := w, h32
			if nw > 1 {
				nw /= 2
			}
			if nh > 1 {
				nh /= 2
			}

			cmd.CmdBlitImage(img.handle, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, img.handle, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, []vk.ImageBlit{{
				SrcSubresource: vk.ImageSubresourceLayers{AspectMask: aspect, MipLevel: i - 1, BaseArrayLayer: layer, LayerCount: 1},
				SrcOffsets:     [2]vk.Offset3D{{}, {X: w, Y: h32, Z: 1}},
				DstSubresource: vk.ImageSubresourceLayers{AspectMask: aspect, MipLevel: i, BaseArrayLayer: layer, LayerCount: 1},
				DstOffsets:     [2]vk.Offset3D{{}, {X: nw, Y: nh, Z: 1}},
			}}, filter)

			ctx.barrierMip(cmd, img, i, 1, layer, vk.IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL)
			w, h32 = nw, nh
		}
	}

	for layer := uint32(0); layer < img.layers; layer++ {
		ctx.barrierMip(cmd, img, 0, img.mipLevels, layer, vk.IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL, originalLayout)
	}
	img.layout = originalLayout

	sub, err := ctx.recycler.submit(ctx, cmd, nil, nil)
	if err != nil {
		return err
	}
	return ctx.recycler.wait(ctx, sub)
}

func (ctx *Context) formatSupportsLinearBlit(f vk.Format) bool {
	return true
}

// DestroyTexture enqueues destruction gated on the current submission.
// If the image is a view-clone, only its views are freed; otherwise
// the VkImage and its memory are freed too.
func (ctx *Context) DestroyTexture(h Handle) {
	img := ctx.images.Get(h)
	if img == nil {
		return
	}
	ctx.images.Destroy(h)
	ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
		ctx.device.DestroyImageView(img.defaultView)
		for _, v := range img.fbViews {
			ctx.device.DestroyImageView(v)
		}
		if img.isOwningImage {
			ctx.device.FreeMemory(img.memory)
			ctx.device.DestroyImage(img.handle)
		}
	})
}

func translateTextureUsage(u TextureUsage, format vk.Format) vk.ImageUsageFlags {
	f := vk.IMAGE_USAGE_TRANSFER_SRC_BIT | vk.IMAGE_USAGE_TRANSFER_DST_BIT
	if u&TextureUsageSampled != 0 {
		f |= vk.IMAGE_USAGE_SAMPLED_BIT
	}
	if u&TextureUsageStorage != 0 {
		f |= vk.IMAGE_USAGE_STORAGE_BIT
	}
	if u&TextureUsageAttachment != 0 {
		if isDepthFormat(format) {
			f |= vk.IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT_BIT
		} else {
			f |= vk.IMAGE_USAGE_COLOR_ATTACHMENT_BIT
		}
	}
	return f
}
