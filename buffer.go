package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// Buffer are used to map hunks of data that are then bound to resources used by the pipeline
// and command buffers to render data.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Usage    vk.BufferUsageFlags
}

// CreateBuffer creates an exclusively shared buffer of size bytes.
func (d *Device) CreateBuffer(sizeInBytes uint64, usage vk.BufferUsageFlags) (*Buffer, error) {
	return d.CreateBufferWithOptions(sizeInBytes, usage, vk.SharingModeExclusive)
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode) (*Buffer, error) {
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: sharing,
	}
	buffer, err := d.Driver.CreateBuffer(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedCreateBuffer, err)
	}
	return &Buffer{Device: d, VKBuffer: buffer, Size: sizeInBytes, Usage: usage}, nil
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	return b.Device.Driver.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer)
}

// DSInfo describes the whole buffer, from offset, for a descriptor write.
func (b *Buffer) DSInfo(offset int) vk.DescriptorBufferInfo {
	return b.DSRange(uint64(offset), b.Size-uint64(offset))
}

func (b *Buffer) DSRange(offset, size uint64) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(size),
	}
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	err := b.Device.Driver.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset))
	if err != nil {
		return initError(FailedAllocateMemory, err)
	}
	return nil
}

func (b *Buffer) Destroy() {
	b.Device.Driver.DestroyBuffer(b.Device.VKDevice, b.VKBuffer)
}
