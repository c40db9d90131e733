package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// HostMemory is host visible and coherent: writes through a mapping are seen
// by the device without explicit flushes.
var HostMemory = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

// DeviceLocalMemory is memory only the device can access efficiently.
var DeviceLocalMemory = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

// BoundBuffer is a buffer together with the memory bound to it at offset 0.
// It owns both.
type BoundBuffer struct {
	Buffer *Buffer
	Memory *DeviceMemory
}

// CreateBoundBuffer creates a buffer, allocates memory with props for it and
// binds the two.
func (d *Device) CreateBoundBuffer(size uint64, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*BoundBuffer, error) {
	buffer, err := d.CreateBuffer(size, usage)
	if err != nil {
		return nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, props)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	if err := buffer.Bind(memory, 0); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, err
	}
	return &BoundBuffer{Buffer: buffer, Memory: memory}, nil
}

// CreateHostBuffer creates a host visible buffer whose usage is derived from
// bo and fills it with bo's bytes.
func (d *Device) CreateHostBuffer(bo BufferObject) (*BoundBuffer, error) {
	data := bo.Bytes()
	b, err := d.CreateBoundBuffer(uint64(len(data)), UsageFor(bo), HostMemory)
	if err != nil {
		return nil, err
	}
	if err := b.Memory.MapCopyUnmap(data); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// Size of the buffer, which may be smaller than its memory.
func (b *BoundBuffer) Size() uint64 {
	return b.Buffer.Size
}

func (b *BoundBuffer) VK() vk.Buffer {
	return b.Buffer.VKBuffer
}

// Write copies data to the start of a host visible buffer.
func (b *BoundBuffer) Write(data []byte) error {
	return b.Memory.MapCopyUnmap(data)
}

func (b *BoundBuffer) Destroy() {
	if b.Buffer != nil {
		b.Buffer.Destroy()
	}
	if b.Memory != nil {
		b.Memory.Destroy()
	}
}

// UsageFor derives buffer usage from the interfaces bo implements.
func UsageFor(bo BufferObject) vk.BufferUsageFlags {
	var usage vk.BufferUsageFlags
	if _, ok := bo.(VertexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if _, ok := bo.(IndexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if _, ok := bo.(UBO); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	return usage
}
