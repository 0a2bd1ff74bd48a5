// swapchain_helper.go - present-surface capability queries and the
// extent/image-count clamping the swapchain package builds its own
// format and present-mode choices on top of.
package vk

type SwapchainSupportDetails struct {
	Capabilities SurfaceCapabilitiesKHR
	Formats      []SurfaceFormatKHR
	PresentModes []PresentModeKHR
}

func (device PhysicalDevice) QuerySwapchainSupport(surface SurfaceKHR) (SwapchainSupportDetails, error) {
	var details SwapchainSupportDetails
	var err error

	details.Capabilities, err = device.GetSurfaceCapabilitiesKHR(surface)
	if err != nil {
		return details, err
	}

	details.Formats, err = device.GetSurfaceFormatsKHR(surface)
	if err != nil {
		return details, err
	}

	details.PresentModes, err = device.GetSurfacePresentModesKHR(surface)
	if err != nil {
		return details, err
	}

	return details, nil
}

// ChooseSwapExtent returns capabilities.CurrentExtent when the
// platform compositor dictates the size (the common case for
// non-resizable surfaces), otherwise clamps the caller's requested
// window size to the surface's min/max extent.
func ChooseSwapExtent(capabilities SurfaceCapabilitiesKHR, windowWidth, windowHeight uint32) Extent2D {
	if capabilities.CurrentExtent.Width != 0xFFFFFFFF {
		return capabilities.CurrentExtent
	}

	extent := Extent2D{
		Width:  windowWidth,
		Height: windowHeight,
	}

	if extent.Width < capabilities.MinImageExtent.Width {
		extent.Width = capabilities.MinImageExtent.Width
	}
	if extent.Width > capabilities.MaxImageExtent.Width {
		extent.Width = capabilities.MaxImageExtent.Width
	}

	if extent.Height < capabilities.MinImageExtent.Height {
		extent.Height = capabilities.MinImageExtent.Height
	}
	if extent.Height > capabilities.MaxImageExtent.Height {
		extent.Height = capabilities.MaxImageExtent.Height
	}

	return extent
}

// ChooseImageCount requests one more than the surface's minimum, for
// headroom against presentation stalls, clamped to the maximum (0
// means no limit).
func ChooseImageCount(capabilities SurfaceCapabilitiesKHR) uint32 {
	imageCount := capabilities.MinImageCount + 1

	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	return imageCount
}
