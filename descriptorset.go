package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSet is a binding of resources to a descriptor, per a specific
// DescriptorSetLayout. Writes are queued with Add* and applied by Write.
type DescriptorSet struct {
	Device               *Device
	DescriptorPool       *DescriptorPool
	VKDescriptorSet      vk.DescriptorSet
	VKWriteDiscriptorSet []vk.WriteDescriptorSet
}

// AddBuffer queues a write of b from offset to its end at dstBinding.
func (du *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) *DescriptorSet {
	return du.AddBufferInfo(dstBinding, dtype, b.DSInfo(offset))
}

// AddBufferInfo queues a write of an explicit buffer range at dstBinding.
func (du *DescriptorSet) AddBufferInfo(dstBinding int, dtype vk.DescriptorType, info vk.DescriptorBufferInfo) *DescriptorSet {
	du.VKWriteDiscriptorSet = append(du.VKWriteDiscriptorSet, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo:     []vk.DescriptorBufferInfo{info},
	})
	return du
}

// Write applies and clears the queued writes.
func (du *DescriptorSet) Write() {
	if len(du.VKWriteDiscriptorSet) == 0 {
		return
	}
	for i := range du.VKWriteDiscriptorSet {
		du.VKWriteDiscriptorSet[i].DstSet = du.VKDescriptorSet
	}
	du.Device.Driver.UpdateDescriptorSets(du.Device.VKDevice, du.VKWriteDiscriptorSet)
	du.VKWriteDiscriptorSet = nil
}
