package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

// CreateImageView creates a 2D color view of image.
func (d *Device) CreateImageView(image vk.Image, format vk.Format) (*ImageView, error) {
	return d.CreateImageViewWithAspectMask(image, format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

func (d *Device) CreateImageViewWithAspectMask(image vk.Image, format vk.Format, mask vk.ImageAspectFlags) (*ImageView, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	view, err := d.Driver.CreateImageView(d.VKDevice, &info)
	if err != nil {
		return nil, err
	}
	return &ImageView{Device: d, VKImageView: view}, nil
}

func (i *ImageView) Destroy() {
	i.Device.Driver.DestroyImageView(i.Device.VKDevice, i.VKImageView)
}
