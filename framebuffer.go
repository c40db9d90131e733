package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// Framebuffer binds a RenderPass to one image view. It owns only the native
// framebuffer; the render pass and view are references.
type Framebuffer struct {
	Device        *Device
	RenderPass    *RenderPass
	View          *ImageView
	Extent        vk.Extent2D
	VKFramebuffer vk.Framebuffer
}

func (d *Device) CreateFramebuffer(rp *RenderPass, view *ImageView, extent vk.Extent2D) (*Framebuffer, error) {
	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp.VKRenderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{view.VKImageView},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	fb, err := d.Driver.CreateFramebuffer(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedCreateSwapchainFramebuffer, err)
	}
	return &Framebuffer{Device: d, RenderPass: rp, View: view, Extent: extent, VKFramebuffer: fb}, nil
}

// CreateFramebuffers builds one framebuffer per swapchain image view, in image order.
func (d *Device) CreateFramebuffers(rp *RenderPass, s *Swapchain) ([]*Framebuffer, error) {
	ret := make([]*Framebuffer, 0, len(s.ImageViews))
	for _, view := range s.ImageViews {
		fb, err := d.CreateFramebuffer(rp, view, s.Extent)
		if err != nil {
			destroyFramebuffers(ret)
			return nil, err
		}
		ret = append(ret, fb)
	}
	return ret, nil
}

func (f *Framebuffer) Destroy() {
	f.Device.Driver.DestroyFramebuffer(f.Device.VKDevice, f.VKFramebuffer)
}

func destroyFramebuffers(fbs []*Framebuffer) {
	for _, fb := range fbs {
		fb.Destroy()
	}
}
