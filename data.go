package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte {
	return SliceBytes(i)
}

func (i IndexSliceUint16) IndexType() vk.IndexType {
	return vk.IndexTypeUint16
}

func (i IndexSliceUint16) Count() uint32 {
	return uint32(len(i))
}

type IndexSliceUint32 []uint32

func (i IndexSliceUint32) Bytes() []byte {
	return SliceBytes(i)
}

func (i IndexSliceUint32) IndexType() vk.IndexType {
	return vk.IndexTypeUint32
}

func (i IndexSliceUint32) Count() uint32 {
	return uint32(len(i))
}

// VertexSlice is tightly packed vertex data of type T bound at one binding.
// Attributes describe the fields of T.
type VertexSlice[T any] struct {
	Binding    uint32
	Vertices   []T
	Attributes []vk.VertexInputAttributeDescription
}

func (v *VertexSlice[T]) Bytes() []byte {
	return SliceBytes(v.Vertices)
}

func (v *VertexSlice[T]) Count() uint32 {
	return uint32(len(v.Vertices))
}

func (v *VertexSlice[T]) GetBindingDesciption() vk.VertexInputBindingDescription {
	b := SliceBytes(v.Vertices)
	var stride uint32
	if len(v.Vertices) > 0 {
		stride = uint32(len(b) / len(v.Vertices))
	}
	return vk.VertexInputBindingDescription{
		Binding:   v.Binding,
		Stride:    stride,
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v *VertexSlice[T]) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return v.Attributes
}

// UniformBytes is raw uniform data bound at a fixed descriptor slot.
type UniformBytes struct {
	Data []byte
	Desc Descriptor
}

func (u *UniformBytes) Bytes() []byte {
	return u.Data
}

func (u *UniformBytes) Descriptor() *Descriptor {
	return &u.Desc
}
