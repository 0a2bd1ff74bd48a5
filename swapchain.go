package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// swapchainImage bundles a swapchain-owned color texture with the
// binary semaphores that gate its acquire/present lifecycle and the
// timeline value a caller must wait on before the image is safe to
// reacquire, per spec section 4.9.
type swapchainImage struct {
	texture               Handle
	acquireSemaphore      vk.Semaphore
	presentReadySemaphore vk.Semaphore
	timelineWaitValue     uint64
}

// Swapchain owns the present surface's images and the per-image
// synchronization state needed to pipeline frames without stalling on
// the GPU. Not created automatically — CreateSwapchain wires one up
// once the caller has an OS surface in hand.
type Swapchain struct {
	surface    vk.SurfaceKHR
	handle     vk.SwapchainKHR
	format     vk.Format
	colorSpace vk.ColorSpaceKHR
	extent     vk.Extent2D
	images     []swapchainImage
	frameIndex uint32
}

func choosePresentMode(ctx *Context, available []vk.PresentModeKHR) vk.PresentModeKHR {
	if ctx.config.ForcePresentFIFO {
		return vk.PRESENT_MODE_FIFO_KHR
	}
	for _, m := range available {
		if m == vk.PRESENT_MODE_MAILBOX_KHR {
			return m
		}
	}
	return vk.PRESENT_MODE_FIFO_KHR
}

func chooseSurfaceFormat(ctx *Context, available []vk.SurfaceFormatKHR) vk.SurfaceFormatKHR {
	target := vk.COLOR_SPACE_SRGB_NONLINEAR_KHR
	switch ctx.config.SwapchainColorSpace {
	case ColorSpaceSRGBExtendedLinear:
		target = vk.COLOR_SPACE_EXTENDED_SRGB_LINEAR_EXT
	case ColorSpaceHDR10:
		target = vk.COLOR_SPACE_HDR10_ST2084_EXT
	}
	for _, f := range available {
		if f.ColorSpace == target {
			return f
		}
	}
	return available[0]
}

// CreateSwapchain builds the present surface's swapchain and its
// per-image synchronization state. surface must already exist — this
// package never creates the OS-level surface itself, matching the
// windowing boundary spec section 4.9 assumes.
func (ctx *Context) CreateSwapchain(surface vk.SurfaceKHR, width, height uint32) error {
	return ctx.createSwapchainLocked(surface, width, height, vk.SwapchainKHR{})
}

// createSwapchainLocked is CreateSwapchain's and ResizeSwapchain's
// shared implementation. old, when non-zero, is passed through as
// VkSwapchainCreateInfoKHR.oldSwapchain so the driver may recycle the
// retiring swapchain's presentable images instead of a cold rebuild;
// the caller still owns destroying old once this call returns.
func (ctx *Context) createSwapchainLocked(surface vk.SurfaceKHR, width, height uint32, old vk.SwapchainKHR) error {
	support, err := ctx.physicalDevice.QuerySwapchainSupport(surface)
	if err != nil {
		return err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		ctx.log.Error("CreateSwapchain: surface has no usable formats or present modes")
		return NotSupported
	}

	surfaceFormat := chooseSurfaceFormat(ctx, support.Formats)
	presentMode := choosePresentMode(ctx, support.PresentModes)
	extent := vk.ChooseSwapExtent(support.Capabilities, width, height)
	imageCount := vk.ChooseImageCount(support.Capabilities)

	handle, err := ctx.device.CreateSwapchainKHR(&vk.SwapchainCreateInfoKHR{
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.IMAGE_USAGE_COLOR_ATTACHMENT_BIT,
		ImageSharingMode: vk.SHARING_MODE_EXCLUSIVE,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.COMPOSITE_ALPHA_OPAQUE_BIT_KHR,
		PresentMode:      presentMode,
		Clipped:          true,
		OldSwapchain:     old,
	})
	if err != nil {
		return err
	}

	rawImages, err := ctx.device.GetSwapchainImagesKHR(handle)
	if err != nil {
		ctx.device.DestroySwapchainKHR(handle)
		return err
	}

	sc := &Swapchain{
		surface:    surface,
		handle:     handle,
		format:     surfaceFormat.Format,
		colorSpace: surfaceFormat.ColorSpace,
		extent:     extent,
	}

	for _, img := range rawImages {
		view, err := ctx.device.CreateImageViewForTexture(img, surfaceFormat.Format)
		if err != nil {
			ctx.destroySwapchainImages(sc)
			ctx.device.DestroySwapchainKHR(handle)
			return err
		}
		h := ctx.images.Create(Image{
			handle:        img,
			defaultView:   view,
			extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
			imageType:     uint32(ImageType2D),
			format:        surfaceFormat.Format,
			samples:       1,
			mipLevels:     1,
			layers:        1,
			usage:         TextureUsageAttachment,
			layout:        vk.IMAGE_LAYOUT_UNDEFINED,
			isOwningImage: false,
		})

		acquire, err := ctx.device.CreateSemaphore(&vk.SemaphoreCreateInfo{})
		if err != nil {
			ctx.destroySwapchainImages(sc)
			ctx.device.DestroySwapchainKHR(handle)
			return err
		}
		present, err := ctx.device.CreateSemaphore(&vk.SemaphoreCreateInfo{})
		if err != nil {
			ctx.destroySwapchainImages(sc)
			ctx.device.DestroySwapchainKHR(handle)
			return err
		}

		sc.images = append(sc.images, swapchainImage{
			texture:               h,
			acquireSemaphore:      acquire,
			presentReadySemaphore: present,
		})
	}

	ctx.swapchain = sc
	return nil
}

func (ctx *Context) destroySwapchainImages(sc *Swapchain) {
	for _, img := range sc.images {
		if !img.texture.IsNull() {
			ctx.images.Destroy(img.texture)
		}
		if img.acquireSemaphore != (vk.Semaphore{}) {
			ctx.device.DestroySemaphore(img.acquireSemaphore)
		}
		if img.presentReadySemaphore != (vk.Semaphore{}) {
			ctx.device.DestroySemaphore(img.presentReadySemaphore)
		}
	}
}

// AcquireSwapchainTexture waits on the oldest submission known to
// still be writing the slot about to be reacquired, then calls
// vkAcquireNextImageKHR. Returns the texture handle to render into and
// a semaphore the recorder's Submit must wait on before the color
// attachment write stage.
func (ctx *Context) AcquireSwapchainTexture() (Handle, uint32, vk.Semaphore, error) {
	sc := ctx.swapchain
	if sc == nil {
		return NullHandle, 0, vk.Semaphore{}, InvalidState
	}
	slot := sc.frameIndex % uint32(len(sc.images))
	entry := &sc.images[slot]

	if entry.timelineWaitValue != 0 {
		if err := ctx.device.WaitSemaphores([]vk.Semaphore{ctx.recycler.timeline}, []uint64{entry.timelineWaitValue}, ^uint64(0)); err != nil {
			return NullHandle, 0, vk.Semaphore{}, err
		}
	}

	idx, err := ctx.device.AcquireNextImageKHR(sc.handle, ^uint64(0), entry.acquireSemaphore, vk.Fence{})
	if err != nil {
		return NullHandle, 0, vk.Semaphore{}, err
	}
	return sc.images[idx].texture, idx, entry.acquireSemaphore, nil
}

// PresentSwapchain presents the image most recently acquired and
// records the timeline value (frame_index + image count) that the
// next acquire of this slot must wait for, per spec section 4.9's
// timeline handshake.
func (ctx *Context) PresentSwapchain(imageIndex uint32) error {
	sc := ctx.swapchain
	if sc == nil {
		return InvalidState
	}
	slot := sc.frameIndex % uint32(len(sc.images))
	entry := &sc.images[slot]
	entry.timelineWaitValue = uint64(sc.frameIndex) + uint64(len(sc.images))

	err := ctx.queue.PresentKHR(&vk.PresentInfoKHR{
		WaitSemaphores: []vk.Semaphore{entry.presentReadySemaphore},
		Swapchains:     []vk.SwapchainKHR{sc.handle},
		ImageIndices:   []uint32{imageIndex},
	})
	sc.frameIndex++
	return err
}

// PresentReadySemaphore is the binary semaphore a frame's final Submit
// call must signal so PresentSwapchain can safely wait on it.
func (ctx *Context) PresentReadySemaphore() vk.Semaphore {
	sc := ctx.swapchain
	slot := sc.frameIndex % uint32(len(sc.images))
	return sc.images[slot].presentReadySemaphore
}

// ResizeSwapchain rebuilds the swapchain at a new extent, e.g. after a
// window resize. The retiring swapchain is passed to the driver as
// oldSwapchain so it can recycle the outgoing presentable images, and
// is only destroyed once the replacement exists.
func (ctx *Context) ResizeSwapchain(width, height uint32) error {
	if ctx.swapchain == nil {
		return InvalidState
	}
	old := ctx.swapchain
	ctx.recycler.waitAll(ctx)

	if err := ctx.createSwapchainLocked(old.surface, width, height, old.handle); err != nil {
		return err
	}

	ctx.destroySwapchainImages(old)
	ctx.device.DestroySwapchainKHR(old.handle)
	return nil
}

func (ctx *Context) destroySwapchain() {
	if ctx.swapchain == nil {
		return
	}
	ctx.destroySwapchainImages(ctx.swapchain)
	ctx.device.DestroySwapchainKHR(ctx.swapchain.handle)
	ctx.swapchain = nil
}
