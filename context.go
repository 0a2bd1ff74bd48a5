package vkcore

import (
	"github.com/NOT-REAL-GAMES/vkcore/internal/vk"
	"github.com/charmbracelet/log"
)

const defaultMaxPushConstantsSize = 128

// Context is the composition root: one GPU device, its queue, every
// resource pool, and the long-lived subsystems (command recycler,
// staging engine, descriptor manager, deferred-destroy queue) that
// those resources need to stay alive safely across frames. Callers get
// exactly one Context per device, matching spec section 4.2.
type Context struct {
	config Config
	log    *log.Logger

	instance         vk.Instance
	physicalDevice   vk.PhysicalDevice
	device           vk.Device
	queue            vk.Queue
	queueFamilyIndex uint32

	maxPushConstantsSize uint32
	debugUtilsEnabled    bool

	buffers          *Pool[Buffer]
	images           *Pool[Image]
	samplers         *Pool[Sampler]
	shaders          *Pool[ShaderModule]
	renderPipelines  *Pool[RenderPipelineState]
	computePipelines *Pool[ComputePipelineState]

	recycler      *recycler
	staging       *stagingEngine
	descriptors   *descriptorManager
	deferred      *deferredQueue
	swapchain     *Swapchain
	pipelineCache vk.PipelineCache

	lastSubmission SubmissionHandle
	recorderActive bool
}

func instanceExtensions(c Config) []string {
	exts := []string{"VK_KHR_surface"}
	if c.UseWayland {
		exts = append(exts, "VK_KHR_wayland_surface")
	} else {
		exts = append(exts, "VK_KHR_xcb_surface")
	}
	if c.EnableHeadlessSurface {
		exts = append(exts, "VK_EXT_headless_surface")
	}
	if c.EnableValidation {
		exts = append(exts, "VK_EXT_debug_utils")
	}
	return append(exts, c.ExtraInstanceExtensions...)
}

func deviceExtensions(c Config) []string {
	exts := []string{"VK_KHR_swapchain"}
	return append(exts, c.ExtraDeviceExtensions...)
}

func instanceLayers(c Config) []string {
	if c.EnableValidation {
		return []string{"VK_LAYER_KHRONOS_validation"}
	}
	return nil
}

// pickPhysicalDevice prefers a discrete GPU, falling back to the first
// device enumerated when none is discrete.
func pickPhysicalDevice(devices []vk.PhysicalDevice) vk.PhysicalDevice {
	for _, d := range devices {
		if d.GetProperties().DeviceType == vk.PHYSICAL_DEVICE_TYPE_DISCRETE_GPU {
			return d
		}
	}
	return devices[0]
}

// findGraphicsQueueFamily returns the index of the first queue family
// advertising graphics support. Compute and transfer share the same
// queue in this design — there is no separate async-compute path.
func findGraphicsQueueFamily(props []vk.QueueFamilyProperties) (uint32, bool) {
	for i, p := range props {
		if p.QueueFlags&vk.QUEUE_GRAPHICS_BIT != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

// NewContext brings up an entire Vulkan device from scratch: instance,
// physical device selection, logical device with the 1.2/1.3 feature
// chain the bindless design depends on, resource pools, the command
// recycler, the staging engine, the bindless descriptor manager, and a
// default sampler, in that dependency order. See spec section 4.2.
func NewContext(opts ...Option) (*Context, error) {
	cfg := newConfig(opts...)
	logger := newComponentLogger("context")

	if _, err := vk.EnumerateInstanceVersion(); err != nil {
		logger.Warn("EnumerateInstanceVersion failed, proceeding with configured API version", "err", err)
	}

	instance, err := vk.CreateInstance(&vk.InstanceCreateInfo{
		ApplicationInfo: &vk.ApplicationInfo{
			ApplicationName: "vkcore",
			ApiVersion:      cfg.VulkanVersion,
		},
		EnabledLayerNames:     instanceLayers(cfg),
		EnabledExtensionNames: instanceExtensions(cfg),
	})
	if err != nil {
		logger.Error("CreateInstance failed", "err", err)
		return nil, err
	}

	physicalDevices, err := instance.EnumeratePhysicalDevices()
	if err != nil || len(physicalDevices) == 0 {
		instance.Destroy()
		logger.Error("no Vulkan-capable physical devices found", "err", err)
		return nil, NotSupported
	}
	physicalDevice := pickPhysicalDevice(physicalDevices)
	props := physicalDevice.GetProperties()
	logger.Info("selected physical device", "name", props.DeviceName)

	queueFamilyIndex, ok := findGraphicsQueueFamily(physicalDevice.GetQueueFamilyProperties())
	if !ok {
		instance.Destroy()
		logger.Error("no graphics-capable queue family found")
		return nil, NotSupported
	}

	device, err := physicalDevice.CreateDevice(&vk.DeviceCreateInfo{
		QueueCreateInfos: []vk.DeviceQueueCreateInfo{
			{QueueFamilyIndex: queueFamilyIndex, QueuePriorities: []float32{1.0}},
		},
		EnabledExtensionNames: deviceExtensions(cfg),
		Vulkan12Features: &vk.PhysicalDeviceVulkan12Features{
			DescriptorIndexing:                        true,
			ShaderSampledImageArrayNonUniformIndexing: true,
			DescriptorBindingUpdateAfterBind:          true,
			DescriptorBindingUpdateUnusedWhilePending: true,
			DescriptorBindingPartiallyBound:            true,
			DescriptorBindingVariableDescriptorCount:  true,
			RuntimeDescriptorArray:                    true,
			BufferDeviceAddress:                       true,
			TimelineSemaphore:                         true,
		},
		Vulkan13Features: &vk.PhysicalDeviceVulkan13Features{
			DynamicRendering: true,
			Synchronization2: true,
			Maintenance4:     true,
		},
	})
	if err != nil {
		instance.Destroy()
		logger.Error("CreateDevice failed", "err", err)
		return nil, err
	}

	maxPushConstants := props.Limits.MaxPushConstantsSize
	if maxPushConstants == 0 || maxPushConstants > defaultMaxPushConstantsSize {
		maxPushConstants = defaultMaxPushConstantsSize
	}

	ctx := &Context{
		config:               cfg,
		log:                  logger,
		instance:             instance,
		physicalDevice:       physicalDevice,
		device:               device,
		queueFamilyIndex:     queueFamilyIndex,
		maxPushConstantsSize: maxPushConstants,
		debugUtilsEnabled:    cfg.EnableValidation,

		buffers:          NewPool[Buffer](),
		images:           NewPool[Image](),
		samplers:         NewPool[Sampler](),
		shaders:          NewPool[ShaderModule](),
		renderPipelines:  NewPool[RenderPipelineState](),
		computePipelines: NewPool[ComputePipelineState](),

		deferred: newDeferredQueue(),
	}
	ctx.queue = device.GetQueue(queueFamilyIndex, 0)

	ctx.pipelineCache, err = device.CreatePipelineCache(cfg.PipelineCacheBlob)
	if err != nil {
		device.Destroy()
		instance.Destroy()
		logger.Error("CreatePipelineCache failed", "err", err)
		return nil, err
	}

	ctx.recycler, err = newRecycler(ctx)
	if err != nil {
		device.DestroyPipelineCache(ctx.pipelineCache)
		device.Destroy()
		instance.Destroy()
		logger.Error("newRecycler failed", "err", err)
		return nil, err
	}

	ctx.staging, err = newStagingEngine(ctx, 0)
	if err != nil {
		ctx.recycler.destroy(ctx)
		device.DestroyPipelineCache(ctx.pipelineCache)
		device.Destroy()
		instance.Destroy()
		logger.Error("newStagingEngine failed", "err", err)
		return nil, err
	}

	ctx.descriptors, err = newDescriptorManager(ctx)
	if err != nil {
		ctx.staging.destroy(ctx)
		ctx.recycler.destroy(ctx)
		device.DestroyPipelineCache(ctx.pipelineCache)
		device.Destroy()
		instance.Destroy()
		logger.Error("newDescriptorManager failed", "err", err)
		return nil, err
	}

	defaultSampler, err := ctx.CreateSampler(defaultSamplerDesc())
	if err != nil {
		ctx.descriptors.destroy(ctx)
		ctx.staging.destroy(ctx)
		ctx.recycler.destroy(ctx)
		device.DestroyPipelineCache(ctx.pipelineCache)
		device.Destroy()
		instance.Destroy()
		logger.Error("default sampler creation failed", "err", err)
		return nil, err
	}
	ctx.descriptors.defaultSampler = defaultSampler

	return ctx, nil
}

// Destroy tears the whole device down in dependency-reverse order,
// draining every deferred destroy and blocking on every in-flight
// submission first so nothing is freed while the GPU might still
// reference it.
func (ctx *Context) Destroy() {
	ctx.recycler.waitAll(ctx)
	ctx.deferred.waitDeferred(ctx)

	ctx.destroySwapchain()
	ctx.descriptors.destroy(ctx)
	ctx.staging.destroy(ctx)

	ctx.buffers.Each(func(_ Handle, b *Buffer) {
		ctx.device.DestroyBuffer(b.handle)
		ctx.device.FreeMemory(b.memory)
	})
	ctx.images.Each(func(_ Handle, img *Image) {
		ctx.device.DestroyImageView(img.defaultView)
		for _, v := range img.fbViews {
			ctx.device.DestroyImageView(v)
		}
		if img.isOwningImage {
			ctx.device.FreeMemory(img.memory)
			ctx.device.DestroyImage(img.handle)
		}
	})
	ctx.samplers.Each(func(_ Handle, s *Sampler) {
		ctx.device.DestroySampler(s.handle)
	})
	ctx.shaders.Each(func(_ Handle, m *ShaderModule) {
		ctx.device.DestroyShaderModule(m.handle)
	})
	ctx.renderPipelines.Each(func(_ Handle, rp *RenderPipelineState) {
		if !rp.built {
			return
		}
		ctx.device.DestroyPipeline(rp.pipeline)
		ctx.device.DestroyPipelineLayout(rp.layout)
	})
	ctx.computePipelines.Each(func(_ Handle, cp *ComputePipelineState) {
		if !cp.built {
			return
		}
		ctx.device.DestroyPipeline(cp.pipeline)
		ctx.device.DestroyPipelineLayout(cp.layout)
	})

	ctx.recycler.destroy(ctx)
	ctx.device.DestroyPipelineCache(ctx.pipelineCache)
	ctx.device.Destroy()
	ctx.instance.Destroy()
}

// PipelineCacheData returns the pipeline cache's current contents. A
// caller that wants pipeline-cache reuse across runs is responsible for
// writing these bytes somewhere and passing them back in via
// WithPipelineCacheBlob on the next NewContext call — this package
// defines no on-disk format of its own.
func (ctx *Context) PipelineCacheData() ([]byte, error) {
	return ctx.device.GetPipelineCacheData(ctx.pipelineCache)
}

// Wait blocks until h's submission has retired. A null handle (the
// zero value, e.g. from a Recorder that never called Submit) waits
// for the whole device to go idle instead, per spec section 4.4.
func (ctx *Context) Wait(h SubmissionHandle) error {
	return ctx.recycler.wait(ctx, h)
}

// IsReady reports whether h's submission has retired, without
// blocking. A null handle always reports ready.
func (ctx *Context) IsReady(h SubmissionHandle) (bool, error) {
	return ctx.recycler.isReady(ctx, h)
}
