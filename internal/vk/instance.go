// instance.go - VkInstance creation and physical device enumeration.
package vk

// #cgo LDFLAGS: -lvulkan

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

func EnumerateInstanceVersion() (uint32, error) {
	var version C.uint32_t
	result := C.vkEnumerateInstanceVersion(&version)

	if result != C.VK_SUCCESS {
		return 0, Result(result)
	}

	return uint32(version), nil
}

type Instance struct {
	handle C.VkInstance
}

func (instance Instance) Handle() C.VkInstance {
	return instance.handle
}

type instanceCreateInfoData struct {
	cInfo       *C.VkInstanceCreateInfo
	cAppInfo    *C.VkApplicationInfo
	cLayers     []*C.char
	cExtensions []*C.char
}

func (info *InstanceCreateInfo) vulkanize() *instanceCreateInfoData {
	data := &instanceCreateInfoData{}

	data.cInfo = (*C.VkInstanceCreateInfo)(C.calloc(1, C.sizeof_VkInstanceCreateInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO
	data.cInfo.pNext = nil
	data.cInfo.flags = C.VkInstanceCreateFlags(info.Flags)

	if info.ApplicationInfo != nil {
		data.cAppInfo = (*C.VkApplicationInfo)(C.calloc(1, C.sizeof_VkApplicationInfo))
		data.cAppInfo.sType = C.VK_STRUCTURE_TYPE_APPLICATION_INFO
		data.cAppInfo.pNext = nil
		data.cAppInfo.applicationVersion = C.uint32_t(info.ApplicationInfo.ApplicationVersion)
		data.cAppInfo.engineVersion = C.uint32_t(info.ApplicationInfo.EngineVersion)
		data.cAppInfo.apiVersion = C.uint32_t(info.ApplicationInfo.ApiVersion)

		if info.ApplicationInfo.ApplicationName != "" {
			data.cAppInfo.pApplicationName = C.CString(info.ApplicationInfo.ApplicationName)
		}
		if info.ApplicationInfo.EngineName != "" {
			data.cAppInfo.pEngineName = C.CString(info.ApplicationInfo.EngineName)
		}

		data.cInfo.pApplicationInfo = data.cAppInfo
	}

	if len(info.EnabledLayerNames) > 0 {
		data.cLayers = make([]*C.char, len(info.EnabledLayerNames))
		for i, layer := range info.EnabledLayerNames {
			data.cLayers[i] = C.CString(layer)
		}
		data.cInfo.enabledLayerCount = C.uint32_t(len(data.cLayers))
		data.cInfo.ppEnabledLayerNames = (**C.char)(unsafe.Pointer(&data.cLayers[0]))
	}

	if len(info.EnabledExtensionNames) > 0 {
		data.cExtensions = make([]*C.char, len(info.EnabledExtensionNames))
		for i, ext := range info.EnabledExtensionNames {
			data.cExtensions[i] = C.CString(ext)
		}
		data.cInfo.enabledExtensionCount = C.uint32_t(len(data.cExtensions))
		data.cInfo.ppEnabledExtensionNames = (**C.char)(unsafe.Pointer(&data.cExtensions[0]))
	}

	return data
}

func (data *instanceCreateInfoData) free() {
	if data.cAppInfo != nil {
		if data.cAppInfo.pApplicationName != nil {
			C.free(unsafe.Pointer(data.cAppInfo.pApplicationName))
		}
		if data.cAppInfo.pEngineName != nil {
			C.free(unsafe.Pointer(data.cAppInfo.pEngineName))
		}
		C.free(unsafe.Pointer(data.cAppInfo))
	}
	for _, layer := range data.cLayers {
		C.free(unsafe.Pointer(layer))
	}
	for _, ext := range data.cExtensions {
		C.free(unsafe.Pointer(ext))
	}
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

// CreateInstance builds a VkInstance. If info.ApplicationInfo sets an
// ApiVersion above what vkEnumerateInstanceVersion reports, creation
// fails with INCOMPATIBLE_DRIVER rather than leaving the loader to
// silently clamp it — callers asking for 1.3 on a 1.1-only loader want
// to know before device creation, not partway through feature setup.
func CreateInstance(info *InstanceCreateInfo) (Instance, error) {
	if info.ApplicationInfo != nil && info.ApplicationInfo.ApiVersion != 0 {
		if supported, err := EnumerateInstanceVersion(); err == nil && supported < info.ApplicationInfo.ApiVersion {
			return Instance{}, INCOMPATIBLE_DRIVER
		}
	}

	data := info.vulkanize()
	defer data.free()

	var instance C.VkInstance
	result := C.vkCreateInstance(data.cInfo, nil, &instance)
	if result != C.VK_SUCCESS {
		return Instance{}, Result(result)
	}

	return Instance{handle: instance}, nil
}

func (instance Instance) Destroy() {
	C.vkDestroyInstance(instance.handle, nil)
}

func (instance Instance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	var count C.uint32_t
	result := C.vkEnumeratePhysicalDevices(instance.handle, &count, nil)
	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}
	if count == 0 {
		return nil, nil
	}

	handles := make([]C.VkPhysicalDevice, count)
	result = C.vkEnumeratePhysicalDevices(instance.handle, &count, &handles[0])
	if result != C.VK_SUCCESS {
		return nil, Result(result)
	}

	devices := make([]PhysicalDevice, count)
	for i, h := range handles {
		devices[i] = PhysicalDevice{handle: h}
	}
	return devices, nil
}

func (physicalDevice PhysicalDevice) GetProperties() PhysicalDeviceProperties {
	var props C.VkPhysicalDeviceProperties
	C.vkGetPhysicalDeviceProperties(physicalDevice.handle, &props)
	return PhysicalDeviceProperties{
		DeviceName: C.GoString(&props.deviceName[0]),
		DeviceType: PhysicalDeviceType(props.deviceType),
		Limits: PhysicalDeviceLimits{
			MaxPushConstantsSize: uint32(props.limits.maxPushConstantsSize),
		},
	}
}

type PhysicalDeviceType int32

const (
	PHYSICAL_DEVICE_TYPE_OTHER          PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_OTHER
	PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU
	PHYSICAL_DEVICE_TYPE_DISCRETE_GPU   PhysicalDeviceType = C.VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU
)

type PhysicalDeviceLimits struct {
	MaxPushConstantsSize uint32
}

type PhysicalDeviceProperties struct {
	DeviceName string
	DeviceType PhysicalDeviceType
	Limits     PhysicalDeviceLimits
}
