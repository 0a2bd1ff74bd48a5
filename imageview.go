package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// CloneImageView produces a view-clone image object that shares the
// VkImage with src but owns freshly allocated views. Destroying a
// clone only destroys its views; the underlying VkImage and memory
// stay alive until the owning Image is destroyed.
func (ctx *Context) CloneImageView(src Handle) (Handle, error) {
	s := ctx.images.Get(src)
	if s == nil {
		return NullHandle, ArgumentError
	}
	view, err := ctx.device.CreateImageViewForTexture(s.handle, s.format)
	if err != nil {
		return NullHandle, err
	}
	clone := Image{
		handle:        s.handle,
		defaultView:   view,
		extent:        s.extent,
		imageType:     s.imageType,
		format:        s.format,
		samples:       s.samples,
		mipLevels:     s.mipLevels,
		layers:        s.layers,
		usage:         s.usage,
		layout:        s.layout,
		isOwningImage: false,
		fbViews:       make(map[fbViewKey]vk.ImageView),
	}
	return ctx.images.Create(clone), nil
}

// framebufferView returns (and lazily creates) the view for a single
// (mip, layer) slice, used by begin_rendering to bind one level as a
// color or depth-stencil attachment.
func (ctx *Context) framebufferView(img *Image, mip, layer uint32) (vk.ImageView, error) {
	key := fbViewKey{mip, layer}
	if v, ok := img.fbViews[key]; ok {
		return v, nil
	}
	v, err := ctx.device.CreateImageView(&vk.ImageViewCreateInfo{
		Image:    img.handle,
		ViewType: vk.IMAGE_VIEW_TYPE_2D,
		Format:   img.format,
		Components: vk.ComponentMapping{
			R: vk.COMPONENT_SWIZZLE_IDENTITY, G: vk.COMPONENT_SWIZZLE_IDENTITY,
			B: vk.COMPONENT_SWIZZLE_IDENTITY, A: vk.COMPONENT_SWIZZLE_IDENTITY,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     img.aspectMask(),
			BaseMipLevel:   mip,
			LevelCount:     1,
			BaseArrayLayer: layer,
			LayerCount:     1,
		},
	})
	if err != nil {
		return vk.ImageView{}, err
	}
	img.fbViews[key] = v
	return v, nil
}
