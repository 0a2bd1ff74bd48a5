package vkcore

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/stretchr/testify/assert"
)

func TestInstanceExtensionsPicksSurfaceBackendByConfig(t *testing.T) {
	xcb := instanceExtensions(Config{})
	assert.Contains(t, xcb, "VK_KHR_xcb_surface")
	assert.NotContains(t, xcb, "VK_KHR_wayland_surface")

	wayland := instanceExtensions(Config{UseWayland: true})
	assert.Contains(t, wayland, "VK_KHR_wayland_surface")
	assert.NotContains(t, wayland, "VK_KHR_xcb_surface")
}

func TestInstanceExtensionsAddsOptionalExtensions(t *testing.T) {
	exts := instanceExtensions(Config{
		EnableHeadlessSurface:   true,
		EnableValidation:        true,
		ExtraInstanceExtensions: []string{"VK_KHR_display"},
	})
	assert.Contains(t, exts, "VK_EXT_headless_surface")
	assert.Contains(t, exts, "VK_EXT_debug_utils")
	assert.Contains(t, exts, "VK_KHR_display")
	assert.Contains(t, exts, "VK_KHR_surface")
}

func TestInstanceExtensionsOmitDebugUtilsWithoutValidation(t *testing.T) {
	exts := instanceExtensions(Config{})
	assert.NotContains(t, exts, "VK_EXT_debug_utils")
}

func TestDeviceExtensionsAlwaysIncludesSwapchain(t *testing.T) {
	exts := deviceExtensions(Config{ExtraDeviceExtensions: []string{"VK_EXT_mesh_shader"}})
	assert.Contains(t, exts, "VK_KHR_swapchain")
	assert.Contains(t, exts, "VK_EXT_mesh_shader")
}

func TestInstanceLayersOnlyWithValidation(t *testing.T) {
	assert.Nil(t, instanceLayers(Config{}))
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, instanceLayers(Config{EnableValidation: true}))
}

func TestFindGraphicsQueueFamilyPicksFirstMatch(t *testing.T) {
	props := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QUEUE_TRANSFER_BIT},
		{QueueFlags: vk.QUEUE_COMPUTE_BIT},
		{QueueFlags: vk.QUEUE_GRAPHICS_BIT | vk.QUEUE_TRANSFER_BIT},
		{QueueFlags: vk.QUEUE_GRAPHICS_BIT},
	}
	idx, ok := findGraphicsQueueFamily(props)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), idx)
}

func TestFindGraphicsQueueFamilyNoneFound(t *testing.T) {
	props := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QUEUE_TRANSFER_BIT},
		{QueueFlags: vk.QUEUE_COMPUTE_BIT},
	}
	_, ok := findGraphicsQueueFamily(props)
	assert.False(t, ok)
}
