package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// RenderPass describes a single subpass drawing into one color attachment
// that is cleared on load, stored, and left ready for presentation.
// Framebuffers and pipelines reference it; they never own it.
type RenderPass struct {
	Device       *Device
	Format       vk.Format
	VKRenderPass vk.RenderPass
}

// ColorRenderPassCreateInfo returns the create info used by CreateRenderPass.
func ColorRenderPassCreateInfo(format vk.Format) vk.RenderPassCreateInfo {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachments := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorAttachments,
	}}

	// the layout transition must wait for the acquire semaphore, which is
	// waited on at the color attachment output stage
	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
}

// CreateRenderPass creates the single color attachment render pass for format.
func (d *Device) CreateRenderPass(format vk.Format) (*RenderPass, error) {
	info := ColorRenderPassCreateInfo(format)
	rp, err := d.Driver.CreateRenderPass(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedCreateRenderPass, err)
	}
	return &RenderPass{Device: d, Format: format, VKRenderPass: rp}, nil
}

func (r *RenderPass) Destroy() {
	r.Device.Driver.DestroyRenderPass(r.Device.VKDevice, r.VKRenderPass)
}
