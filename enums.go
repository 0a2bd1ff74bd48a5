package vkcore

// Plain option enums for every configuration axis the design calls
// for, per spec section 9's note to prefer "plain records with
// explicit option enums... rather than virtual hierarchies."

// BufferUsage is a bitmask of the roles a Buffer can serve.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
	BufferUsageShaderBindingTable
)

// TextureUsage is a bitmask of the roles an Image can serve.
type TextureUsage uint32

const (
	TextureUsageSampled TextureUsage = 1 << iota
	TextureUsageStorage
	TextureUsageAttachment
)

// StorageClass selects the memory a Buffer or Image lives in.
type StorageClass int32

const (
	StorageDevice StorageClass = iota
	StorageHostVisible
	StorageMemoryless
)

// LoadOp selects attachment load behavior; LoadOpInvalid is the
// sentinel used to mean "no stencil" per spec section 9, open
// question 1 (resolved: stencil is present iff its LoadOp != Invalid,
// never a panic).
type LoadOp int32

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
	LoadOpDontCare
	LoadOpInvalid
)

// StoreOp selects attachment store behavior.
type StoreOp int32

const (
	StoreOpStore StoreOp = iota
	StoreOpDontCare
	StoreOpMSAAResolve
)

type CompareOp int32

const (
	CompareOpNever CompareOp = iota
	CompareOpLess
	CompareOpEqual
	CompareOpLessOrEqual
	CompareOpGreater
	CompareOpNotEqual
	CompareOpGreaterOrEqual
	CompareOpAlways
)

type BlendOp int32

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

type BlendFactor int32

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

type CullMode int32

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

type PolygonMode int32

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
	PolygonModePoint
)

type Winding int32

const (
	WindingCounterClockwise Winding = iota
	WindingClockwise
)

type StencilOp int32

const (
	StencilOpKeep StencilOp = iota
	StencilOpZero
	StencilOpReplace
	StencilOpIncrementClamp
	StencilOpDecrementClamp
	StencilOpInvert
	StencilOpIncrementWrap
	StencilOpDecrementWrap
)

type IndexFormat int32

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

type Topology int32

const (
	TopologyPointList Topology = iota
	TopologyLineList
	TopologyTriangleList
)

// Swizzle is a per-channel component swizzle.
type Swizzle int32

const (
	SwizzleIdentity Swizzle = iota
	SwizzleZero
	SwizzleOne
	SwizzleR
	SwizzleG
	SwizzleB
	SwizzleA
)

type ColorSpace int32

const (
	ColorSpaceSRGBNonlinear ColorSpace = iota
	ColorSpaceSRGBLinear
	ColorSpaceSRGBExtendedLinear
	ColorSpaceHDR10
)

// ImageType distinguishes the three image shapes the tracker handles.
type ImageType int32

const (
	ImageType2D ImageType = iota
	ImageType3D
	ImageTypeCube
)
