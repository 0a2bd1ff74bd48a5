package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
)

// ShaderModule wraps SPIR-V bytecode plus the push-constant block size
// its reflection data reports. SPIR-V reflection itself is treated as
// a black-box collaborator — callers supply pushConstantSize rather
// than this package parsing the module's reflection info.
type ShaderModule struct {
	handle           vk.ShaderModule
	stage            vk.ShaderStageFlags
	pushConstantSize uint32
	entryPoint       string
}

// ShaderStage selects which pipeline stage a shader module targets.
type ShaderStage int32

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

func translateShaderStage(s ShaderStage) vk.ShaderStageFlags {
	switch s {
	case ShaderStageFragment:
		return vk.SHADER_STAGE_FRAGMENT_BIT
	case ShaderStageCompute:
		return vk.SHADER_STAGE_COMPUTE_BIT
	default:
		return vk.SHADER_STAGE_VERTEX_BIT
	}
}

// CreateShaderModule loads SPIR-V bytecode for a single stage.
// pushConstantSize is the size in bytes of that stage's reflected
// push-constant block (0 if it has none).
func (ctx *Context) CreateShaderModule(code []byte, stage ShaderStage, entryPoint string, pushConstantSize uint32) (Handle, error) {
	if entryPoint == "" {
		entryPoint = "main"
	}
	m, err := ctx.device.CreateShaderModule(&vk.ShaderModuleCreateInfo{Code: code})
	if err != nil {
		return NullHandle, err
	}
	return ctx.shaders.Create(ShaderModule{
		handle:           m,
		stage:            translateShaderStage(stage),
		pushConstantSize: pushConstantSize,
		entryPoint:       entryPoint,
	}), nil
}

// DestroyShaderModule enqueues destruction, gated on the submission
// currently in flight.
func (ctx *Context) DestroyShaderModule(h Handle) {
	m := ctx.shaders.Get(h)
	if m == nil {
		return
	}
	ctx.shaders.Destroy(h)
	ctx.deferDestroy(ctx.currentGatingSubmission(), func() {
		ctx.device.DestroyShaderModule(m.handle)
	})
}
