package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultSwapchainImages is the image count requested when none is configured.
const DefaultSwapchainImages = 3

// DefaultPresentModes is the present mode preference: mailbox, then
// immediate. FIFO is always available and is the final fallback.
var DefaultPresentModes = []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate}

// ChoosePresentMode picks mailbox if offered, else immediate, else FIFO.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	return ChoosePresentModeFrom(modes, DefaultPresentModes)
}

// ChoosePresentModeFrom returns the first mode of preference that is offered,
// falling back to FIFO.
func ChoosePresentModeFrom(modes []vk.PresentMode, preference []vk.PresentMode) vk.PresentMode {
	for _, want := range preference {
		if PresentModes(modes).Contains(want) {
			return want
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent returns the surface's current extent. A dimension reported as
// the 0xFFFFFFFF sentinel lets the application decide and is taken from the
// minimum image extent.
func ChooseExtent(caps vk.SurfaceCapabilities) vk.Extent2D {
	extent := caps.CurrentExtent
	if extent.Width == vk.MaxUint32 {
		extent.Width = caps.MinImageExtent.Width
	}
	if extent.Height == vk.MaxUint32 {
		extent.Height = caps.MinImageExtent.Height
	}
	return extent
}

// ChooseSurfaceFormat returns the first format in formats that supports a 2D
// optimally tiled image with usage on the physical device.
func ChooseSurfaceFormat(p *PhysicalDevice, formats []vk.SurfaceFormat, usage vk.ImageUsageFlags) (vk.SurfaceFormat, error) {
	for _, f := range formats {
		if p.SupportsImageFormat(f.Format, usage) {
			return f, nil
		}
	}
	return vk.SurfaceFormat{}, errors.Wrapf(ErrFormatNotSupported, "%d formats offered", len(formats))
}

// SwapchainOptions adjusts swapchain creation. The zero value requests
// DefaultSwapchainImages images with the default present mode preference.
type SwapchainOptions struct {
	ImageCount   int
	PresentModes []vk.PresentMode
	OldSwapchain *Swapchain
	// ActualSize is logged when the surface lets the application pick the
	// extent; the minimum extent is still used.
	ActualSize vk.Extent2D
}

// Swapchain owns the swapchain handle and one ImageView per image. The images
// themselves belong to the presentation engine and are never freed here.
type Swapchain struct {
	Device      *Device
	Surface     vk.Surface
	Extent      vk.Extent2D
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	PresentMode vk.PresentMode
	VKSwapchain vk.Swapchain

	Images     []vk.Image
	ImageViews []*ImageView
}

// CreateSwapchain queries the surface, selects present mode, extent and
// format, creates the swapchain and builds one view per returned image. The
// number of images returned is authoritative.
func (d *Device) CreateSwapchain(surface vk.Surface, usage vk.ImageUsageFlags, opts *SwapchainOptions) (*Swapchain, error) {
	if opts == nil {
		opts = &SwapchainOptions{}
	}
	p := d.PhysicalDevice

	caps, err := p.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, initError(FailedCreateSwapchain, err)
	}
	modes, err := p.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, initError(FailedCreateSwapchain, err)
	}
	formats, err := p.GetSurfaceFormats(surface)
	if err != nil {
		return nil, initError(FailedCreateSwapchain, err)
	}

	presentMode := ChoosePresentMode(modes)
	if opts.PresentModes != nil {
		presentMode = ChoosePresentModeFrom(modes, opts.PresentModes)
	}
	extent := ChooseExtent(caps)
	format, err := ChooseSurfaceFormat(p, formats, usage)
	if err != nil {
		return nil, initError(FailedCreateSwapchain, err)
	}

	imageCount := opts.ImageCount
	if imageCount <= 0 {
		imageCount = DefaultSwapchainImages
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    uint32(imageCount),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       usage,
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if opts.OldSwapchain != nil {
		createInfo.OldSwapchain = opts.OldSwapchain.VKSwapchain
	}

	handle, err := d.Driver.CreateSwapchain(d.VKDevice, &createInfo)
	if err != nil {
		return nil, initError(FailedCreateSwapchain, err)
	}
	s := &Swapchain{
		Device:      d,
		Surface:     surface,
		Extent:      extent,
		Format:      format.Format,
		ColorSpace:  format.ColorSpace,
		PresentMode: presentMode,
		VKSwapchain: handle,
	}

	s.Images, err = d.Driver.GetSwapchainImages(d.VKDevice, handle)
	if err != nil {
		s.Destroy()
		return nil, initError(FailedCreateSwapchainViewImages, err)
	}
	for _, image := range s.Images {
		view, err := d.CreateImageView(image, s.Format)
		if err != nil {
			s.Destroy()
			return nil, initError(FailedCreateSwapchainViewImages, err)
		}
		s.ImageViews = append(s.ImageViews, view)
	}

	Logger().Debug("swapchain created",
		"images", len(s.Images), "requested", imageCount,
		"extent", [2]uint32{extent.Width, extent.Height},
		"window", [2]uint32{opts.ActualSize.Width, opts.ActualSize.Height},
		"presentMode", int(presentMode), "format", int(s.Format))
	return s, nil
}

// NumberOfFrames is the number of images the presentation engine returned.
func (s *Swapchain) NumberOfFrames() int {
	return len(s.Images)
}

// AcquireNextImage requests the next presentable image. The semaphore and
// fence, either of which may be nil, are signaled once the image is available.
func (s *Swapchain) AcquireNextImage(timeout uint64, semaphore *Semaphore, fence *Fence) (uint32, vk.Result) {
	sema := vk.NullSemaphore
	if semaphore != nil {
		sema = semaphore.VKSemaphore
	}
	f := vk.NullFence
	if fence != nil {
		f = fence.VKFence
	}
	return s.Device.Driver.AcquireNextImage(s.Device.VKDevice, s.VKSwapchain, timeout, sema, f)
}

// Destroy destroys the image views, then the swapchain.
func (s *Swapchain) Destroy() {
	for _, v := range s.ImageViews {
		v.Destroy()
	}
	s.ImageViews = nil
	s.Images = nil
	s.Device.Driver.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain)
}

// swapchainError maps an acquire or present result to an error.
func swapchainError(res vk.Result, op string) error {
	switch res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return errors.Wrapf(ErrSwapchainOutOfDate, "%s: %v", op, vk.Error(res))
	default:
		if err := vk.Error(res); err != nil {
			return errors.Wrap(err, op)
		}
		return errors.Errorf("%s: unexpected result %d", op, int(res))
	}
}
