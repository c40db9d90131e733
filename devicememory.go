package vkframe

import (
	"sync/atomic"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory maps to Vulkan DeviceMemory and can either be memory on the host or on the device
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	TypeIndex      uint32
	MapCount       int32
}

// Allocate allocates size bytes from the memory type at typeIndex.
func (d *Device) Allocate(size uint64, typeIndex uint32) (*DeviceMemory, error) {
	info := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: typeIndex,
	}
	mem, err := d.Driver.AllocateMemory(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedAllocateMemory, err)
	}
	return &DeviceMemory{Device: d, VKDeviceMemory: mem, Size: size, TypeIndex: typeIndex}, nil
}

// AllocateForBuffer allocates memory sized and typed for b with at least the
// property flags props. The memory is not bound.
func (d *Device) AllocateForBuffer(b *Buffer, props vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	reqs := b.VKMemoryRequirements()
	typeIndex, err := d.PhysicalDevice.FindMemoryType(reqs.MemoryTypeBits, props)
	if err != nil {
		return nil, initError(FailedAllocateMemory, err)
	}
	return d.Allocate(uint64(reqs.Size), typeIndex)
}

// IsMapped returns true if the device memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return atomic.LoadInt32(&d.MapCount) > 0
}

// Map will map the entirety of this memory
func (d *DeviceMemory) Map() ([]byte, error) {
	return d.MapRange(0, d.Size)
}

// MapRange maps size bytes starting at offset. The returned slice is only
// valid until Unmap.
func (d *DeviceMemory) MapRange(offset, size uint64) ([]byte, error) {
	if offset+size > d.Size {
		return nil, errors.Errorf("map [%d, %d) outside of %d bytes", offset, offset+size, d.Size)
	}
	data, err := d.Device.Driver.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size))
	if err != nil {
		return nil, errors.Wrap(err, "map memory")
	}
	atomic.AddInt32(&d.MapCount, 1)
	return data, nil
}

// Unmap this memory
func (d *DeviceMemory) Unmap() {
	d.Device.Driver.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	atomic.AddInt32(&d.MapCount, -1)
}

// MapCopyUnmap will map this memory, copy the specified data to it and unmap
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	out, err := d.MapRange(0, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(out, data)
	d.Unmap()
	return nil
}

// ReadUnmapped maps size bytes at offset, copies them out and unmaps.
func (d *DeviceMemory) ReadUnmapped(offset, size uint64) ([]byte, error) {
	in, err := d.MapRange(offset, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, in)
	d.Unmap()
	return out, nil
}

// Destroy destorys this memory
func (d *DeviceMemory) Destroy() {
	d.Device.Driver.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory)
}
