package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// Descriptor places a resource at (Set, Binding) for the given shader stages.
type Descriptor struct {
	Type        vk.DescriptorType
	ShaderStage vk.ShaderStageFlags
	Set         int
	Binding     int
}

// LayoutBinding converts the descriptor to a layout binding of count 1.
func (d *Descriptor) LayoutBinding() vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         uint32(d.Binding),
		DescriptorType:  d.Type,
		DescriptorCount: 1,
		StageFlags:      d.ShaderStage,
	}
}

type DescriptorBinder interface {
	Descriptor() *Descriptor
}

// BufferObject is anything whose contents can be copied into a buffer.
type BufferObject interface {
	Bytes() []byte
}

type IndexSource interface {
	BufferObject
	IndexType() vk.IndexType
}

type VertexSource interface {
	BufferObject
	GetBindingDesciption() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

type UBO interface {
	BufferObject
	DescriptorBinder
}
