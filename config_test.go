package vkcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVulkanAPIVersionPacksComponents(t *testing.T) {
	assert.Equal(t, uint32(1<<22|3<<12|0), vulkanAPIVersion(1, 3, 0))
	assert.Equal(t, uint32(0), vulkanAPIVersion(0, 0, 0))
}

func TestDefaultConfigIsVulkan13WithNoExtras(t *testing.T) {
	c := defaultConfig()
	assert.Equal(t, vulkanAPIVersion(1, 3, 0), c.VulkanVersion)
	assert.Equal(t, ColorSpaceSRGBNonlinear, c.SwapchainColorSpace)
	assert.False(t, c.EnableValidation)
	assert.Empty(t, c.ExtraInstanceExtensions)
}

func TestNewConfigAppliesOptionsOverDefaults(t *testing.T) {
	c := newConfig(
		WithValidation(),
		WithWayland(),
		WithExtraDeviceExtensions("VK_KHR_ray_query"),
		WithExtraDeviceExtensions("VK_EXT_mesh_shader"),
		WithSwapchainColorSpace(ColorSpaceHDR10),
	)
	assert.True(t, c.EnableValidation)
	assert.True(t, c.UseWayland)
	assert.Equal(t, []string{"VK_KHR_ray_query", "VK_EXT_mesh_shader"}, c.ExtraDeviceExtensions,
		"repeated WithExtraDeviceExtensions calls must accumulate, not overwrite")
	assert.Equal(t, ColorSpaceHDR10, c.SwapchainColorSpace)
}

func TestWithPipelineCacheBlobStoresVerbatim(t *testing.T) {
	blob := []byte{1, 2, 3, 4}
	c := newConfig(WithPipelineCacheBlob(blob))
	assert.Equal(t, blob, c.PipelineCacheBlob)
}
