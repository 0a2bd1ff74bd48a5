package vkcore

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(0), alignUp(0, 16))
	assert.Equal(t, uint64(16), alignUp(1, 16))
	assert.Equal(t, uint64(16), alignUp(16, 16))
	assert.Equal(t, uint64(32), alignUp(17, 16))
	assert.Equal(t, uint64(stagingAlign), alignUp(1, stagingAlign))
}

func TestBytesPerTexel(t *testing.T) {
	assert.Equal(t, uint64(1), bytesPerTexel(vk.FORMAT_R8_UNORM))
	assert.Equal(t, uint64(8), bytesPerTexel(vk.FORMAT_R16G16B16A16_SFLOAT))
	assert.Equal(t, uint64(16), bytesPerTexel(vk.FORMAT_R32G32B32A32_SFLOAT))
	assert.Equal(t, uint64(2), bytesPerTexel(vk.FORMAT_D16_UNORM))
	assert.Equal(t, uint64(4), bytesPerTexel(vk.FORMAT_D32_SFLOAT))
	assert.Equal(t, uint64(4), bytesPerTexel(vk.FORMAT_D24_UNORM_S8_UINT))
}

func TestUploadBufferStagePrioritizesIndirectOverIndexOverVertex(t *testing.T) {
	stage, access := uploadBufferStage(BufferUsageIndirect | BufferUsageIndex | BufferUsageVertex)
	assert.Equal(t, vk.PIPELINE_STAGE_2_DRAW_INDIRECT, stage)
	assert.Equal(t, vk.ACCESS_2_INDIRECT_COMMAND_READ, access)

	stage, _ = uploadBufferStage(BufferUsageIndex | BufferUsageVertex)
	assert.Equal(t, vk.PIPELINE_STAGE_2_INDEX_INPUT, stage)

	stage, _ = uploadBufferStage(BufferUsageVertex)
	assert.Equal(t, vk.PIPELINE_STAGE_2_VERTEX_INPUT, stage)

	stage, _ = uploadBufferStage(BufferUsageUniform)
	assert.Equal(t, vk.PIPELINE_STAGE_2_ALL_COMMANDS_BIT, stage)
}
