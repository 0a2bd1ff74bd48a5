package vkcore

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/stretchr/testify/assert"
)

func TestTranslateBufferUsageCombinesFlags(t *testing.T) {
	f := translateBufferUsage(BufferUsageVertex | BufferUsageIndex)
	assert.NotZero(t, f&vk.BUFFER_USAGE_VERTEX_BUFFER_BIT)
	assert.NotZero(t, f&vk.BUFFER_USAGE_INDEX_BUFFER_BIT)
	assert.Zero(t, f&vk.BUFFER_USAGE_UNIFORM_BUFFER_BIT)
}

func TestTranslateBufferUsageAlwaysTransferCapable(t *testing.T) {
	f := translateBufferUsage(BufferUsage(0))
	assert.NotZero(t, f&vk.BUFFER_USAGE_TRANSFER_SRC_BIT)
	assert.NotZero(t, f&vk.BUFFER_USAGE_TRANSFER_DST_BIT)
}

func TestTranslateStorageClass(t *testing.T) {
	assert.Equal(t, vk.MemoryPropertyFlags(vk.MEMORY_PROPERTY_HOST_VISIBLE_BIT|vk.MEMORY_PROPERTY_HOST_COHERENT_BIT),
		translateStorageClass(StorageHostVisible))
	assert.Equal(t, vk.MemoryPropertyFlags(vk.MEMORY_PROPERTY_LAZILY_ALLOCATED_BIT),
		translateStorageClass(StorageMemoryless))
	assert.Equal(t, vk.MemoryPropertyFlags(vk.MEMORY_PROPERTY_DEVICE_LOCAL_BIT),
		translateStorageClass(StorageDevice))
}
