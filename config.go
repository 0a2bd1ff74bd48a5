package vkcore

// Config gathers every optional context-creation setting from the
// driver contract. All fields are optional; the zero value is a
// reasonable default (Vulkan 1.3, validation off, Mailbox-preferring
// swapchain, no VMA).
type Config struct {
	VulkanVersion              uint32
	EnableValidation           bool
	EnableVMA                  bool
	TerminateOnValidationError bool
	SwapchainColorSpace        ColorSpace
	ExtraInstanceExtensions    []string
	ExtraDeviceExtensions      []string
	PipelineCacheBlob          []byte
	UseWayland                 bool
	EnableHeadlessSurface      bool
	ForcePresentFIFO           bool
	Debug                      bool
}

// Option mutates a Config in place. Functional options keep every
// field discoverable without a constructor that takes twelve
// positional arguments.
type Option func(*Config)

func WithValidation() Option {
	return func(c *Config) { c.EnableValidation = true }
}

func WithVMA() Option {
	return func(c *Config) { c.EnableVMA = true }
}

func WithTerminateOnValidationError() Option {
	return func(c *Config) { c.TerminateOnValidationError = true }
}

func WithSwapchainColorSpace(cs ColorSpace) Option {
	return func(c *Config) { c.SwapchainColorSpace = cs }
}

func WithExtraInstanceExtensions(exts ...string) Option {
	return func(c *Config) { c.ExtraInstanceExtensions = append(c.ExtraInstanceExtensions, exts...) }
}

func WithExtraDeviceExtensions(exts ...string) Option {
	return func(c *Config) { c.ExtraDeviceExtensions = append(c.ExtraDeviceExtensions, exts...) }
}

func WithPipelineCacheBlob(blob []byte) Option {
	return func(c *Config) { c.PipelineCacheBlob = blob }
}

func WithWayland() Option {
	return func(c *Config) { c.UseWayland = true }
}

func WithHeadlessSurface() Option {
	return func(c *Config) { c.EnableHeadlessSurface = true }
}

func WithForcePresentFIFO() Option {
	return func(c *Config) { c.ForcePresentFIFO = true }
}

func WithDebug() Option {
	return func(c *Config) { c.Debug = true }
}

func defaultConfig() Config {
	return Config{
		VulkanVersion:       vulkanAPIVersion(1, 3, 0),
		SwapchainColorSpace: ColorSpaceSRGBNonlinear,
	}
}

func newConfig(opts ...Option) Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func vulkanAPIVersion(major, minor, patch uint32) uint32 {
	return (major << 22) | (minor << 12) | patch
}
