package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// VertexBinding describes one vertex-buffer binding slot.
type VertexBinding struct {
	Binding  uint32
	Stride   uint32
	PerInstance bool
}

// VertexAttribute describes one shader input location sourced from a
// vertex binding.
type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   vk.Format
	Offset   uint32
}

// ColorAttachmentDesc describes one color target's format and
// per-attachment blend configuration.
type ColorAttachmentDesc struct {
	Format              vk.Format
	BlendEnable         bool
	SrcColorBlendFactor BlendFactor
	DstColorBlendFactor BlendFactor
	ColorBlendOp        BlendOp
	SrcAlphaBlendFactor BlendFactor
	DstAlphaBlendFactor BlendFactor
	AlphaBlendOp        BlendOp
}

// ShaderStageDesc names a shader module and the stage it fills.
type ShaderStageDesc struct {
	Module Handle
	Stage  ShaderStage
}

// RenderPipelineDesc fully configures a graphics pipeline. Everything
// not listed here (viewport, scissor, depth-bias, blend-constants,
// depth-test-enable, depth-write-enable, depth-compare-op,
// depth-bias-enable) is dynamic state set by the recorder at bind or
// draw time, per spec section 4.7.
type RenderPipelineDesc struct {
	Stages            []ShaderStageDesc
	VertexBindings    []VertexBinding
	VertexAttributes  []VertexAttribute
	Topology          Topology
	PolygonMode       PolygonMode
	CullMode          CullMode
	Winding           Winding
	SampleCount       vk.SampleCountFlags
	ColorAttachments  []ColorAttachmentDesc
	DepthFormat       vk.Format
	StencilFormat     vk.Format
	ViewMask          uint32
}

// ComputePipelineDesc configures a single-stage compute pipeline.
type ComputePipelineDesc struct {
	Module Handle
}

type renderPipelineKey struct {
	descriptorLayout vk.DescriptorSetLayout
	viewMask         uint32
}

type computePipelineKey struct {
	descriptorLayout vk.DescriptorSetLayout
}

// RenderPipelineState holds a graphics pipeline's description plus
// its lazily-built Vulkan objects. built is false until the first
// bind; the cached layout/pipeline are rebuilt whenever the
// invalidation key changes (the bindless descriptor-set layout was
// replaced by a growth rebuild, or the view mask changed).
type RenderPipelineState struct {
	desc     RenderPipelineDesc
	built    bool
	key      renderPipelineKey
	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

// ComputePipelineState is the compute analogue of RenderPipelineState;
// its invalidation key omits the view mask, which has no meaning for
// compute dispatch.
type ComputePipelineState struct {
	desc     ComputePipelineDesc
	built    bool
	key      computePipelineKey
	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

// CreateRenderPipeline registers a pipeline description. No Vulkan
// objects are built until the pipeline is first bound.
func (ctx *Context) CreateRenderPipeline(desc RenderPipelineDesc) Handle {
	return ctx.renderPipelines.Create(RenderPipelineState{desc: desc})
}

// CreateComputePipeline registers a compute pipeline description.
func (ctx *Context) CreateComputePipeline(desc ComputePipelineDesc) Handle {
	return ctx.computePipelines.Create(ComputePipelineState{desc: desc})
}

func (ctx *Context) DestroyRenderPipeline(h Handle) {
	rp := ctx.renderPipelines.Get(h)
	if rp == nil {
		return
	}
	ctx.renderPipelines.Destroy(h)
	if !rp.built {
		return
	}
	ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
		ctx.device.DestroyPipeline(rp.pipeline)
		ctx.device.DestroyPipelineLayout(rp.layout)
	})
}

func (ctx *Context) DestroyComputePipeline(h Handle) {
	cp := ctx.computePipelines.Get(h)
	if cp == nil {
		return
	}
	ctx.computePipelines.Destroy(h)
	if !cp.built {
		return
	}
	ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
		ctx.device.DestroyPipeline(cp.pipeline)
		ctx.device.DestroyPipelineLayout(cp.layout)
	})
}

// bindlessLayouts replicates the global descriptor-set layout into
// the four slots every pipeline layout binds, per spec section 4.7.
func bindlessLayouts(layout vk.DescriptorSetLayout) []vk.DescriptorSetLayout {
	return []vk.DescriptorSetLayout{layout, layout, layout, layout}
}

// stagePushConstantRange folds every stage's reflected push-constant
// size into one range covering 0..max, stamped with the OR of every
// contributing stage's shader-stage bit. Logs and clamps if the
// result would exceed the device's push-constant-size limit.
func (ctx *Context) stagePushConstantRange(stages []vk.ShaderStageFlags, sizes []uint32) []vk.PushConstantRange {
	var maxSize uint32
	var allStages vk.ShaderStageFlags
	for i, sz := range sizes {
		if sz > maxSize {
			maxSize = sz
		}
		allStages |= stages[i]
	}
	if maxSize == 0 {
		return nil
	}
	if maxSize > ctx.maxPushConstantsSize {
		ctx.log.Error("pipeline push-constant size exceeds device limit, clamping",
			"requested", maxSize, "limit", ctx.maxPushConstantsSize)
		maxSize = ctx.maxPushConstantsSize
	}
	return []vk.PushConstantRange{{StageFlags: allStages, Offset: 0, Size: maxSize}}
}

// ensureRenderPipeline builds or rebuilds rp's Vulkan pipeline and
// layout if its invalidation key {descriptor_set_layout, view_mask}
// no longer matches the context's current bindless layout, per spec
// section 4.7. The old pipeline and layout, if any, are
// deferred-destroyed rather than freed immediately.
func (ctx *Context) ensureRenderPipeline(h Handle) (*RenderPipelineState, error) {
	rp := ctx.renderPipelines.Get(h)
	if rp == nil {
		return nil, ArgumentError
	}
	key := renderPipelineKey{descriptorLayout: ctx.descriptors.layout, viewMask: rp.desc.ViewMask}
	if rp.built && rp.key == key {
		return rp, nil
	}

	var stages []vk.PipelineShaderStageCreateInfo
	var stageFlags []vk.ShaderStageFlags
	var pushSizes []uint32
	for _, sd := range rp.desc.Stages {
		mod := ctx.shaders.Get(sd.Module)
		if mod == nil {
			return nil, ArgumentError
		}
		stages = append(stages, vk.PipelineShaderStageCreateInfo{Stage: mod.stage, Module: mod.handle, Name: mod.entryPoint})
		stageFlags = append(stageFlags, mod.stage)
		pushSizes = append(pushSizes, mod.pushConstantSize)
	}

	layout, err := ctx.device.CreatePipelineLayout(&vk.PipelineLayoutCreateInfo{
		SetLayouts:         bindlessLayouts(ctx.descriptors.layout),
		PushConstantRanges: ctx.stagePushConstantRange(stageFlags, pushSizes),
	})
	if err != nil {
		return nil, err
	}

	bindings := make([]vk.VertexInputBindingDescription, len(rp.desc.VertexBindings))
	for i, b := range rp.desc.VertexBindings {
		rate := vk.VERTEX_INPUT_RATE_VERTEX
		if b.PerInstance {
			rate = vk.VERTEX_INPUT_RATE_INSTANCE
		}
		bindings[i] = vk.VertexInputBindingDescription{Binding: b.Binding, Stride: b.Stride, InputRate: rate}
	}
	attrs := make([]vk.VertexInputAttributeDescription, len(rp.desc.VertexAttributes))
	for i, a := range rp.desc.VertexAttributes {
		attrs[i] = vk.VertexInputAttributeDescription{Location: a.Location, Binding: a.Binding, Format: a.Format, Offset: a.Offset}
	}

	colorFormats := make([]vk.Format, len(rp.desc.ColorAttachments))
	blendAttachments := make([]vk.PipelineColorBlendAttachmentState, len(rp.desc.ColorAttachments))
	for i, c := range rp.desc.ColorAttachments {
		colorFormats[i] = c.Format
		blendAttachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         c.BlendEnable,
			SrcColorBlendFactor: translateBlendFactor(c.SrcColorBlendFactor),
			DstColorBlendFactor: translateBlendFactor(c.DstColorBlendFactor),
			ColorBlendOp:        translateBlendOp(c.ColorBlendOp),
			SrcAlphaBlendFactor: translateBlendFactor(c.SrcAlphaBlendFactor),
			DstAlphaBlendFactor: translateBlendFactor(c.DstAlphaBlendFactor),
			AlphaBlendOp:        translateBlendOp(c.AlphaBlendOp),
			ColorWriteMask:      vk.COLOR_COMPONENT_ALL,
		}
	}

	samples := rp.desc.SampleCount
	if samples == 0 {
		samples = vk.SAMPLE_COUNT_1_BIT
	}

	pipeline, err := ctx.device.CreateGraphicsPipeline(&vk.GraphicsPipelineCreateInfo{
		Stages:             stages,
		VertexInputState:   &vk.PipelineVertexInputStateCreateInfo{Bindings: bindings, Attributes: attrs},
		InputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{Topology: translateTopology(rp.desc.Topology)},
		ViewportState:      &vk.PipelineViewportStateCreateInfo{Viewports: []vk.Viewport{{}}, Scissors: []vk.Rect2D{{}}},
		RasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			PolygonMode: translatePolygonMode(rp.desc.PolygonMode),
			CullMode:    translateCullMode(rp.desc.CullMode),
			FrontFace:   translateWinding(rp.desc.Winding),
			LineWidth:   1,
		},
		MultisampleState: &vk.PipelineMultisampleStateCreateInfo{RasterizationSamples: samples},
		ColorBlendState:  &vk.PipelineColorBlendStateCreateInfo{Attachments: blendAttachments},
		DynamicState: &vk.PipelineDynamicStateCreateInfo{DynamicStates: []vk.DynamicState{
			vk.DYNAMIC_STATE_VIEWPORT, vk.DYNAMIC_STATE_SCISSOR, vk.DYNAMIC_STATE_DEPTH_BIAS,
			vk.DYNAMIC_STATE_BLEND_CONSTANTS, vk.DYNAMIC_STATE_DEPTH_TEST_ENABLE,
			vk.DYNAMIC_STATE_DEPTH_WRITE_ENABLE, vk.DYNAMIC_STATE_DEPTH_COMPARE_OP, vk.DYNAMIC_STATE_DEPTH_BIAS_ENABLE,
		}},
		DepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{DepthCompareOp: vk.COMPARE_OP_LESS, MaxDepthBounds: 1},
		Layout:            layout,
		RenderingInfo: &vk.PipelineRenderingCreateInfo{
			ViewMask:                rp.desc.ViewMask,
			ColorAttachmentFormats:  colorFormats,
			DepthAttachmentFormat:   rp.desc.DepthFormat,
			StencilAttachmentFormat: rp.desc.StencilFormat,
		},
	}, ctx.pipelineCache)
	if err != nil {
		ctx.device.DestroyPipelineLayout(layout)
		return nil, err
	}

	if rp.built {
		oldPipeline, oldLayout := rp.pipeline, rp.layout
		ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
			ctx.device.DestroyPipeline(oldPipeline)
			ctx.device.DestroyPipelineLayout(oldLayout)
		})
	}
	rp.pipeline, rp.layout, rp.key, rp.built = pipeline, layout, key, true
	return rp, nil
}

// ensureComputePipeline is ensureRenderPipeline's compute counterpart;
// its invalidation key is just the descriptor-set layout.
func (ctx *Context) ensureComputePipeline(h Handle) (*ComputePipelineState, error) {
	cp := ctx.computePipelines.Get(h)
	if cp == nil {
		return nil, ArgumentError
	}
	key := computePipelineKey{descriptorLayout: ctx.descriptors.layout}
	if cp.built && cp.key == key {
		return cp, nil
	}

	mod := ctx.shaders.Get(cp.desc.Module)
	if mod == nil {
		return nil, ArgumentError
	}

	layout, err := ctx.device.CreatePipelineLayout(&vk.PipelineLayoutCreateInfo{
		SetLayouts:         bindlessLayouts(ctx.descriptors.layout),
		PushConstantRanges: ctx.stagePushConstantRange([]vk.ShaderStageFlags{mod.stage}, []uint32{mod.pushConstantSize}),
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := ctx.device.CreateComputePipeline(&vk.ComputePipelineCreateInfo{
		Stage:  vk.PipelineShaderStageCreateInfo{Stage: mod.stage, Module: mod.handle, Name: mod.entryPoint},
		Layout: layout,
	}, ctx.pipelineCache)
	if err != nil {
		ctx.device.DestroyPipelineLayout(layout)
		return nil, err
	}

	if cp.built {
		oldPipeline, oldLayout := cp.pipeline, cp.layout
		ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
			ctx.device.DestroyPipeline(oldPipeline)
			ctx.device.DestroyPipelineLayout(oldLayout)
		})
	}
	cp.pipeline, cp.layout, cp.key, cp.built = pipeline, layout, key, true
	return cp, nil
}

func translateTopology(t Topology) vk.PrimitiveTopology {
	switch t {
	case TopologyPointList:
		return vk.PRIMITIVE_TOPOLOGY_POINT_LIST
	case TopologyLineList:
		return vk.PRIMITIVE_TOPOLOGY_LINE_LIST
	default:
		return vk.PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	}
}

func translatePolygonMode(p PolygonMode) vk.PolygonMode {
	switch p {
	case PolygonModeLine:
		return vk.POLYGON_MODE_LINE
	case PolygonModePoint:
		return vk.POLYGON_MODE_POINT
	default:
		return vk.POLYGON_MODE_FILL
	}
}

func translateCullMode(c CullMode) vk.CullModeFlags {
	switch c {
	case CullModeFront:
		return vk.CULL_MODE_FRONT_BIT
	case CullModeBack:
		return vk.CULL_MODE_BACK_BIT
	default:
		return vk.CULL_MODE_NONE
	}
}

func translateWinding(w Winding) vk.FrontFace {
	if w == WindingClockwise {
		return vk.FRONT_FACE_CLOCKWISE
	}
	return vk.FRONT_FACE_COUNTER_CLOCKWISE
}

func translateBlendFactor(b BlendFactor) vk.BlendFactor {
	switch b {
	case BlendFactorOne:
		return vk.BLEND_FACTOR_ONE
	case BlendFactorSrcAlpha:
		return vk.BLEND_FACTOR_SRC_ALPHA
	case BlendFactorOneMinusSrcAlpha:
		return vk.BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
	case BlendFactorDstAlpha:
		return vk.BLEND_FACTOR_DST_ALPHA
	case BlendFactorOneMinusDstAlpha:
		return vk.BLEND_FACTOR_ONE_MINUS_DST_ALPHA
	default:
		return vk.BLEND_FACTOR_ZERO
	}
}

func translateBlendOp(b BlendOp) vk.BlendOp {
	switch b {
	case BlendOpSubtract:
		return vk.BLEND_OP_SUBTRACT
	case BlendOpReverseSubtract:
		return vk.BLEND_OP_REVERSE_SUBTRACT
	case BlendOpMin:
		return vk.BLEND_OP_MIN
	case BlendOpMax:
		return vk.BLEND_OP_MAX
	default:
		return vk.BLEND_OP_ADD
	}
}

func translateCompareOp(c CompareOp) vk.CompareOp {
	switch c {
	case CompareOpLess:
		return vk.COMPARE_OP_LESS
	case CompareOpEqual:
		return vk.COMPARE_OP_EQUAL
	case CompareOpLessOrEqual:
		return vk.COMPARE_OP_LESS_OR_EQUAL
	case CompareOpGreater:
		return vk.COMPARE_OP_GREATER
	case CompareOpNotEqual:
		return vk.COMPARE_OP_NOT_EQUAL
	case CompareOpGreaterOrEqual:
		return vk.COMPARE_OP_GREATER_OR_EQUAL
	case CompareOpAlways:
		return vk.COMPARE_OP_ALWAYS
	default:
		return vk.COMPARE_OP_NEVER
	}
}
