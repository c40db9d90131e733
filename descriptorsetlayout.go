package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout describes the layout of a descriptorset
type DescriptorSetLayout struct {
	Device                        *Device
	VKDescriptorSetLayout         vk.DescriptorSetLayout
	VKDescriptorSetLayoutBindings []vk.DescriptorSetLayoutBinding
}

func (d *Device) NewDescriptorSetLayout() *DescriptorSetLayout {
	return &DescriptorSetLayout{Device: d}
}

// AddBinding adds a binding to the descriptor set
func (d *DescriptorSetLayout) AddBinding(binding vk.DescriptorSetLayoutBinding) *DescriptorSetLayout {
	d.VKDescriptorSetLayoutBindings = append(d.VKDescriptorSetLayoutBindings, binding)
	return d
}

// AddDescriptor adds the binding described by b.
func (d *DescriptorSetLayout) AddDescriptor(b DescriptorBinder) *DescriptorSetLayout {
	return d.AddBinding(b.Descriptor().LayoutBinding())
}

func (d *DescriptorSetLayout) Destroy() {
	d.Device.Driver.DestroyDescriptorSetLayout(d.Device.VKDevice, d.VKDescriptorSetLayout)
}

// CreateDescriptorSetLayout creates the native layout for the bindings added
// to layout and stores the handle in it.
func (d *Device) CreateDescriptorSetLayout(layout *DescriptorSetLayout) (*DescriptorSetLayout, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layout.VKDescriptorSetLayoutBindings)),
		PBindings:    layout.VKDescriptorSetLayoutBindings,
	}
	handle, err := d.Driver.CreateDescriptorSetLayout(d.VKDevice, &info)
	if err != nil {
		return nil, errors.Wrap(err, "create descriptor set layout")
	}
	layout.Device = d
	layout.VKDescriptorSetLayout = handle
	return layout, nil
}
