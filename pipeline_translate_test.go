package vkcore

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/stretchr/testify/assert"
)

func TestTranslateTopology(t *testing.T) {
	assert.Equal(t, vk.PRIMITIVE_TOPOLOGY_POINT_LIST, translateTopology(TopologyPointList))
	assert.Equal(t, vk.PRIMITIVE_TOPOLOGY_LINE_LIST, translateTopology(TopologyLineList))
	assert.Equal(t, vk.PRIMITIVE_TOPOLOGY_TRIANGLE_LIST, translateTopology(TopologyTriangleList))
}

func TestTranslatePolygonMode(t *testing.T) {
	assert.Equal(t, vk.POLYGON_MODE_LINE, translatePolygonMode(PolygonModeLine))
	assert.Equal(t, vk.POLYGON_MODE_POINT, translatePolygonMode(PolygonModePoint))
	assert.Equal(t, vk.POLYGON_MODE_FILL, translatePolygonMode(PolygonModeFill))
}

func TestTranslateCullMode(t *testing.T) {
	assert.Equal(t, vk.CULL_MODE_FRONT_BIT, translateCullMode(CullModeFront))
	assert.Equal(t, vk.CULL_MODE_BACK_BIT, translateCullMode(CullModeBack))
	assert.Equal(t, vk.CULL_MODE_NONE, translateCullMode(CullModeNone))
}

func TestTranslateWinding(t *testing.T) {
	assert.Equal(t, vk.FRONT_FACE_CLOCKWISE, translateWinding(WindingClockwise))
	assert.Equal(t, vk.FRONT_FACE_COUNTER_CLOCKWISE, translateWinding(WindingCounterClockwise))
}

func TestTranslateBlendFactor(t *testing.T) {
	assert.Equal(t, vk.BLEND_FACTOR_ONE, translateBlendFactor(BlendFactorOne))
	assert.Equal(t, vk.BLEND_FACTOR_SRC_ALPHA, translateBlendFactor(BlendFactorSrcAlpha))
	assert.Equal(t, vk.BLEND_FACTOR_ONE_MINUS_SRC_ALPHA, translateBlendFactor(BlendFactorOneMinusSrcAlpha))
	assert.Equal(t, vk.BLEND_FACTOR_DST_ALPHA, translateBlendFactor(BlendFactorDstAlpha))
	assert.Equal(t, vk.BLEND_FACTOR_ONE_MINUS_DST_ALPHA, translateBlendFactor(BlendFactorOneMinusDstAlpha))
	assert.Equal(t, vk.BLEND_FACTOR_ZERO, translateBlendFactor(BlendFactorZero))
}

func TestTranslateBlendOp(t *testing.T) {
	assert.Equal(t, vk.BLEND_OP_SUBTRACT, translateBlendOp(BlendOpSubtract))
	assert.Equal(t, vk.BLEND_OP_REVERSE_SUBTRACT, translateBlendOp(BlendOpReverseSubtract))
	assert.Equal(t, vk.BLEND_OP_MIN, translateBlendOp(BlendOpMin))
	assert.Equal(t, vk.BLEND_OP_MAX, translateBlendOp(BlendOpMax))
	assert.Equal(t, vk.BLEND_OP_ADD, translateBlendOp(BlendOpAdd))
}

func TestTranslateCompareOp(t *testing.T) {
	assert.Equal(t, vk.COMPARE_OP_LESS, translateCompareOp(CompareOpLess))
	assert.Equal(t, vk.COMPARE_OP_ALWAYS, translateCompareOp(CompareOpAlways))
}
