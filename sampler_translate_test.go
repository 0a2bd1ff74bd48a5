package vkcore

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/stretchr/testify/assert"
)

func TestDefaultSamplerDescIsLinearWrap(t *testing.T) {
	d := defaultSamplerDesc()
	assert.Equal(t, FilterLinear, d.MagFilter)
	assert.Equal(t, FilterLinear, d.MinFilter)
	assert.Equal(t, MipmapModeLinear, d.MipmapMode)
	assert.Equal(t, AddressModeRepeat, d.AddressU)
	assert.Equal(t, float32(16), d.MaxLod)
}

func TestTranslateFilter(t *testing.T) {
	assert.Equal(t, vk.FILTER_NEAREST, translateFilter(FilterNearest))
	assert.Equal(t, vk.FILTER_LINEAR, translateFilter(FilterLinear))
}

func TestTranslateMipmapMode(t *testing.T) {
	assert.Equal(t, vk.SAMPLER_MIPMAP_MODE_NEAREST, translateMipmapMode(MipmapModeNearest))
	assert.Equal(t, vk.SAMPLER_MIPMAP_MODE_LINEAR, translateMipmapMode(MipmapModeLinear))
}

func TestTranslateAddressMode(t *testing.T) {
	assert.Equal(t, vk.SAMPLER_ADDRESS_MODE_REPEAT, translateAddressMode(AddressModeRepeat))
	assert.Equal(t, vk.SAMPLER_ADDRESS_MODE_MIRRORED_REPEAT, translateAddressMode(AddressModeMirroredRepeat))
	assert.Equal(t, vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE, translateAddressMode(AddressModeClampToEdge))
	assert.Equal(t, vk.SAMPLER_ADDRESS_MODE_CLAMP_TO_BORDER, translateAddressMode(AddressModeClampToBorder))
}
