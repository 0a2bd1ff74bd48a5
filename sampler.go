package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// Sampler wraps a VkSampler. Slot 0 in the sampler pool is always the
// default sampler, created once at context init and never destroyed
// until teardown, per spec section 4.6.
type Sampler struct {
	handle vk.Sampler
}

// SamplerDesc configures a sampler's filtering and addressing modes.
type SamplerDesc struct {
	MagFilter  Filter
	MinFilter  Filter
	MipmapMode MipmapMode
	AddressU   AddressMode
	AddressV   AddressMode
	AddressW   AddressMode
	MaxAnisotropy float32
	MinLod, MaxLod float32
}

type Filter int32

const (
	FilterNearest Filter = iota
	FilterLinear
)

type MipmapMode int32

const (
	MipmapModeNearest MipmapMode = iota
	MipmapModeLinear
)

type AddressMode int32

const (
	AddressModeRepeat AddressMode = iota
	AddressModeMirroredRepeat
	AddressModeClampToEdge
	AddressModeClampToBorder
)

func defaultSamplerDesc() SamplerDesc {
	return SamplerDesc{
		MagFilter: FilterLinear, MinFilter: FilterLinear, MipmapMode: MipmapModeLinear,
		AddressU: AddressModeRepeat, AddressV: AddressModeRepeat, AddressW: AddressModeRepeat,
		MaxAnisotropy: 1, MinLod: 0, MaxLod: 16,
	}
}

func translateFilter(f Filter) vk.Filter {
	if f == FilterNearest {
		return vk.FILTER_NEAREST
	}
	return vk.FILTER_LINEAR
}

func translateMipmapMode(m MipmapMode) vk.SamplerMipmapMode {
	if m == MipmapModeNearest {
		return vk.SAMPLER_MIPMAP_MODE_NEAREST
	}
	return vk.SAMPLER_MIPMAP_MODE_LINEAR
}

func translateAddressMode(a AddressMode) vk.SamplerAddressMode {
	switch a {
	case AddressModeMirroredRepeat:
		return vk.SAMPLER_ADDRESS_MODE_MIRRORED_REPEAT
	case AddressModeClampToEdge:
		return vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
	case AddressModeClampToBorder:
		return vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_BORDER
	default:
		return vk.SAMPLER_ADDRESS_MODE_REPEAT
	}
}

// CreateSampler allocates a sampler from desc and returns its handle.
func (ctx *Context) CreateSampler(desc SamplerDesc) (Handle, error) {
	s, err := ctx.device.CreateSampler(&vk.SamplerCreateInfo{
		MagFilter:     translateFilter(desc.MagFilter),
		MinFilter:     translateFilter(desc.MinFilter),
		MipmapMode:    translateMipmapMode(desc.MipmapMode),
		AddressModeU:  translateAddressMode(desc.AddressU),
		AddressModeV:  translateAddressMode(desc.AddressV),
		AddressModeW:  translateAddressMode(desc.AddressW),
		AnisotropyEnable: desc.MaxAnisotropy > 1,
		MaxAnisotropy: desc.MaxAnisotropy,
		MinLod:        desc.MinLod,
		MaxLod:        desc.MaxLod,
		BorderColor:   vk.BORDER_COLOR_FLOAT_TRANSPARENT_BLACK,
	})
	if err != nil {
		return NullHandle, err
	}
	h := ctx.samplers.Create(Sampler{handle: s})
	ctx.descriptors.awaitingCreation = true
	return h, nil
}

// DestroySampler enqueues the sampler's destruction, gated on the
// submission currently in flight.
func (ctx *Context) DestroySampler(h Handle) {
	s := ctx.samplers.Get(h)
	if s == nil {
		return
	}
	ctx.samplers.Destroy(h)
	ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
		ctx.device.DestroySampler(s.handle)
	})
}
