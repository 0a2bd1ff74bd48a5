package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

const (
	descriptorBindingSampledImage = 0
	descriptorBindingSampler      = 1
	descriptorBindingStorageImage = 2
	descriptorBindingYCbCr        = 3

	initialMaxTextures = 16
	initialMaxSamplers = 16
)

// descriptorManager owns the single bindless descriptor-set layout,
// pool, and set described in spec section 4.6. It grows by doubling
// whenever a pool outgrows its current array size, rebuilding the
// layout, pool, and set when it does; a newly created texture or
// sampler only marks the set's descriptors for rewriting on the next
// update.
type descriptorManager struct {
	layout vk.DescriptorSetLayout
	pool   vk.DescriptorPool
	set    vk.DescriptorSet

	maxTextures uint32
	maxSamplers uint32

	initialized      bool
	awaitingCreation bool

	dummyImage  vk.Image
	dummyMemory vk.DeviceMemory
	dummyView   vk.ImageView

	defaultSampler Handle

	// Shared immutable YCbCr sampler for binding 3. Lazily created the
	// first time a multiplanar texture is made; ycbcrFormat stays zero
	// until then, which is also what gates binding 3's presence in the
	// layout (see ycbcrArraySize).
	ycbcrFormat     vk.Format
	ycbcrConversion vk.SamplerYcbcrConversion
	ycbcrSampler    vk.Sampler
}

func newDescriptorManager(ctx *Context) (*descriptorManager, error) {
	dm := &descriptorManager{maxTextures: initialMaxTextures, maxSamplers: initialMaxSamplers}

	img, mem, err := ctx.device.CreateImageWithMemory(1, 1, vk.FORMAT_R8G8B8A8_UNORM, vk.IMAGE_TILING_OPTIMAL,
		vk.IMAGE_USAGE_SAMPLED_BIT|vk.IMAGE_USAGE_TRANSFER_DST_BIT, vk.MEMORY_PROPERTY_DEVICE_LOCAL_BIT, ctx.physicalDevice)
	if err != nil {
		return nil, err
	}
	view, err := ctx.device.CreateImageViewForTexture(img, vk.FORMAT_R8G8B8A8_UNORM)
	if err != nil {
		return nil, err
	}
	dm.dummyImage, dm.dummyMemory, dm.dummyView = img, mem, view

	if err := dm.rebuild(ctx); err != nil {
		return nil, err
	}
	return dm, nil
}

// ycbcrArraySize returns binding 3's array size: the texture array
// size (maxTextures) once a multiplanar image has actually been created, else
// zero ("when any YCbCr image exists", per spec section 4.6).
func (dm *descriptorManager) ycbcrArraySize(ctx *Context) uint32 {
	if dm.ycbcrFormat == vk.FORMAT_UNDEFINED {
		return 0
	}
	return dm.maxTextures
}

// ensureYcbcrBinding lazily builds the shared conversion and immutable
// sampler binding 3 needs, then rebuilds the descriptor set layout so
// the binding is actually present. A no-op once a conversion already
// exists for format; only one multiplanar format is supported at a
// time, matching this binding's one shared sampler.
func (dm *descriptorManager) ensureYcbcrBinding(ctx *Context, format vk.Format) error {
	if dm.ycbcrFormat == format {
		return nil
	}
	if dm.ycbcrFormat != vk.FORMAT_UNDEFINED {
		ctx.log.Warn("multiplanar image format does not match the descriptor set's shared YCbCr sampler; reusing existing conversion",
			"format", format, "bound", dm.ycbcrFormat)
		return nil
	}

	conv, err := ctx.device.CreateSamplerYcbcrConversion(&vk.SamplerYcbcrConversionCreateInfo{
		Format:        format,
		YcbcrModel:    vk.SAMPLER_YCBCR_MODEL_CONVERSION_YCBCR_601,
		YcbcrRange:    vk.SAMPLER_YCBCR_RANGE_ITU_NARROW,
		ChromaFilter:  vk.FILTER_LINEAR,
		XChromaOffset: vk.CHROMA_LOCATION_MIDPOINT,
		YChromaOffset: vk.CHROMA_LOCATION_MIDPOINT,
	})
	if err != nil {
		return err
	}
	sampler, err := ctx.device.CreateSampler(&vk.SamplerCreateInfo{
		MagFilter: vk.FILTER_LINEAR, MinFilter: vk.FILTER_LINEAR,
		MipmapMode:   vk.SAMPLER_MIPMAP_MODE_LINEAR,
		AddressModeU: vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE, AddressModeV: vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE, AddressModeW: vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE,
		MaxLod:          1,
		YcbcrConversion: &conv,
	})
	if err != nil {
		ctx.device.DestroySamplerYcbcrConversion(conv)
		return err
	}

	dm.ycbcrFormat = format
	dm.ycbcrConversion = conv
	dm.ycbcrSampler = sampler
	return dm.rebuild(ctx)
}

// rebuild tears down (via deferred-destroy) the current layout and
// pool and builds fresh ones sized for the current maxTextures and
// maxSamplers, with binding 3's immutable sampler array recomputed.
func (dm *descriptorManager) rebuild(ctx *Context) error {
	ycbcrCount := dm.ycbcrArraySize(ctx)

	bindings := []vk.DescriptorSetLayoutBinding{
		{Binding: descriptorBindingSampledImage, DescriptorType: vk.DESCRIPTOR_TYPE_SAMPLED_IMAGE, DescriptorCount: dm.maxTextures, StageFlags: vk.SHADER_STAGE_ALL_GRAPHICS | vk.SHADER_STAGE_COMPUTE_BIT},
		{Binding: descriptorBindingSampler, DescriptorType: vk.DESCRIPTOR_TYPE_SAMPLER, DescriptorCount: dm.maxSamplers, StageFlags: vk.SHADER_STAGE_ALL_GRAPHICS | vk.SHADER_STAGE_COMPUTE_BIT},
		{Binding: descriptorBindingStorageImage, DescriptorType: vk.DESCRIPTOR_TYPE_STORAGE_IMAGE, DescriptorCount: dm.maxTextures, StageFlags: vk.SHADER_STAGE_ALL_GRAPHICS | vk.SHADER_STAGE_COMPUTE_BIT},
	}
	flags := []vk.DescriptorBindingFlags{
		bindlessFlags(), bindlessFlags(), bindlessFlags(),
	}
	if ycbcrCount > 0 {
		immutableSamplers := make([]vk.Sampler, ycbcrCount)
		for i := range immutableSamplers {
			immutableSamplers[i] = dm.ycbcrSampler
		}
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding: descriptorBindingYCbCr, DescriptorType: vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER,
			DescriptorCount: ycbcrCount, StageFlags: vk.SHADER_STAGE_ALL_GRAPHICS | vk.SHADER_STAGE_COMPUTE_BIT,
			ImmutableSamplers: immutableSamplers,
		})
		flags = append(flags, bindlessFlags())
	}

	newLayout, err := ctx.device.CreateDescriptorSetLayoutBindless(bindings, flags)
	if err != nil {
		return err
	}

	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DESCRIPTOR_TYPE_SAMPLED_IMAGE, DescriptorCount: dm.maxTextures},
		{Type: vk.DESCRIPTOR_TYPE_SAMPLER, DescriptorCount: dm.maxSamplers},
		{Type: vk.DESCRIPTOR_TYPE_STORAGE_IMAGE, DescriptorCount: dm.maxTextures},
	}
	if ycbcrCount > 0 {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{Type: vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER, DescriptorCount: ycbcrCount})
	}
	newPool, err := ctx.device.CreateDescriptorPoolUpdateAfterBind(&vk.DescriptorPoolCreateInfo{MaxSets: 1, PoolSizes: poolSizes})
	if err != nil {
		ctx.device.DestroyDescriptorSetLayout(newLayout)
		return err
	}

	sets, err := ctx.device.AllocateDescriptorSets(&vk.DescriptorSetAllocateInfo{DescriptorPool: newPool, SetLayouts: []vk.DescriptorSetLayout{newLayout}})
	if err != nil {
		ctx.device.DestroyDescriptorPool(newPool)
		ctx.device.DestroyDescriptorSetLayout(newLayout)
		return err
	}

	oldLayout, oldPool := dm.layout, dm.pool
	hadOld := dm.initialized
	dm.layout, dm.pool, dm.set = newLayout, newPool, sets[0]
	dm.initialized = true
	dm.awaitingCreation = true

	if hadOld {
		ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
			ctx.device.DestroyDescriptorPool(oldPool)
			ctx.device.DestroyDescriptorSetLayout(oldLayout)
		})
	}
	return nil
}

func bindlessFlags() vk.DescriptorBindingFlags {
	return vk.DESCRIPTOR_BINDING_PARTIALLY_BOUND_BIT |
		vk.DESCRIPTOR_BINDING_UPDATE_AFTER_BIND_BIT |
		vk.DESCRIPTOR_BINDING_UPDATE_UNUSED_WHILE_PENDING_BIT
}

// maybeGrow doubles the texture and/or sampler array sizes if the
// backing pools have grown past the current limit, and rebuilds the
// layout and pool when either one does.
func (dm *descriptorManager) maybeGrow(ctx *Context) error {
	grew := false
	if uint32(ctx.images.Cap()) > dm.maxTextures {
		dm.maxTextures *= 2
		grew = true
	}
	if uint32(ctx.samplers.Cap()) > dm.maxSamplers {
		dm.maxSamplers *= 2
		grew = true
	}
	if grew {
		return dm.rebuild(ctx)
	}
	return nil
}

// update rewrites the bindless set's four bindings from the current
// contents of the texture and sampler pools. Only runs when
// awaitingCreation is set by a prior CreateTexture/CreateSampler call.
func (dm *descriptorManager) update(ctx *Context) error {
	if err := dm.maybeGrow(ctx); err != nil {
		return err
	}
	if !dm.awaitingCreation {
		return nil
	}
	if err := ctx.recycler.wait(ctx, ctx.currentGatingSubmission()); err != nil {
		return err
	}

	texCap := uint32(ctx.images.Cap())
	if texCap > dm.maxTextures {
		texCap = dm.maxTextures
	}
	samplerCap := uint32(ctx.samplers.Cap())
	if samplerCap > dm.maxSamplers {
		samplerCap = dm.maxSamplers
	}

	sampledInfos := make([]vk.DescriptorImageInfo, dm.maxTextures)
	storageInfos := make([]vk.DescriptorImageInfo, dm.maxTextures)
	for i := uint32(0); i < dm.maxTextures; i++ {
		view := dm.dummyView
		storageView := dm.dummyView
		if i < texCap {
			if img := ctx.images.AtIndex(i); img != nil {
				if img.isSampled() {
					view = img.defaultView
				}
				if img.isStorage() && img.storageView != nil {
					storageView = *img.storageView
				} else if img.isStorage() {
					storageView = img.defaultView
				}
			}
		}
		sampledInfos[i] = vk.DescriptorImageInfo{ImageView: view, ImageLayout: vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL}
		storageInfos[i] = vk.DescriptorImageInfo{ImageView: storageView, ImageLayout: vk.IMAGE_LAYOUT_GENERAL}
	}

	defaultSampler := ctx.samplers.Get(dm.defaultSampler)
	samplerInfos := make([]vk.DescriptorImageInfo, dm.maxSamplers)
	for i := uint32(0); i < dm.maxSamplers; i++ {
		s := defaultSampler.handle
		if i < samplerCap {
			if smp := ctx.samplers.AtIndex(i); smp != nil {
				s = smp.handle
			}
		}
		samplerInfos[i] = vk.DescriptorImageInfo{Sampler: s}
	}

	writes := []vk.WriteDescriptorSet{
		{DstSet: dm.set, DstBinding: descriptorBindingSampledImage, DescriptorType: vk.DESCRIPTOR_TYPE_SAMPLED_IMAGE, ImageInfo: sampledInfos},
		{DstSet: dm.set, DstBinding: descriptorBindingSampler, DescriptorType: vk.DESCRIPTOR_TYPE_SAMPLER, ImageInfo: samplerInfos},
		{DstSet: dm.set, DstBinding: descriptorBindingStorageImage, DescriptorType: vk.DESCRIPTOR_TYPE_STORAGE_IMAGE, ImageInfo: storageInfos},
	}

	// Binding 3 (YCbCr combined-image-sampler) only ever covers the
	// slots that actually hold a multiplanar image; the rest stay
	// unwritten and rely on VK_DESCRIPTOR_BINDING_PARTIALLY_BOUND_BIT,
	// since every slot shares one immutable sampler that is only valid
	// against a view carrying a matching conversion.
	if dm.ycbcrFormat != vk.FORMAT_UNDEFINED {
		for i := uint32(0); i < texCap; i++ {
			img := ctx.images.AtIndex(i)
			if img == nil || !img.isMultiplanar {
				continue
			}
			writes = append(writes, vk.WriteDescriptorSet{
				DstSet: dm.set, DstBinding: descriptorBindingYCbCr, DstArrayElement: i,
				DescriptorType: vk.DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER,
				ImageInfo:      []vk.DescriptorImageInfo{{ImageView: img.defaultView, ImageLayout: vk.IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL}},
			})
		}
	}

	ctx.device.UpdateDescriptorSets(writes)

	dm.awaitingCreation = false
	return nil
}

// bind binds the same descriptor set to slots 0..3 — duplicated for
// portability to backends that cannot alias one set across multiple
// bind-point slots, per spec section 4.6.
func (dm *descriptorManager) bind(ctx *Context, cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout) {
	sets := []vk.DescriptorSet{dm.set, dm.set, dm.set, dm.set}
	cmd.BindDescriptorSets(bindPoint, layout, 0, sets, nil)
}

func (dm *descriptorManager) destroy(ctx *Context) {
	ctx.device.DestroyDescriptorPool(dm.pool)
	ctx.device.DestroyDescriptorSetLayout(dm.layout)
	ctx.device.DestroyImageView(dm.dummyView)
	ctx.device.FreeMemory(dm.dummyMemory)
	ctx.device.DestroyImage(dm.dummyImage)
	if dm.ycbcrFormat != vk.FORMAT_UNDEFINED {
		ctx.device.DestroySampler(dm.ycbcrSampler)
		ctx.device.DestroySamplerYcbcrConversion(dm.ycbcrConversion)
	}
}
