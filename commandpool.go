package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool allocates command buffers for a single queue family. Buffers
// allocated from a pool are owned by it and are freed when it is destroyed.
type CommandPool struct {
	Device        *Device
	FamilyIndex   uint32
	VKCommandPool vk.CommandPool

	buffers []*CommandBuffer
}

// CreateCommandPool creates a pool for the queue family. Passing zero flags
// creates a pool whose buffers can only be reset together with Reset.
func (d *Device) CreateCommandPool(familyIndex uint32, flags vk.CommandPoolCreateFlags) (*CommandPool, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            flags,
		QueueFamilyIndex: familyIndex,
	}
	pool, err := d.Driver.CreateCommandPool(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedCreateCommandPool, err)
	}
	return &CommandPool{Device: d, FamilyIndex: familyIndex, VKCommandPool: pool}, nil
}

// AllocateBuffers allocates count primary command buffers in the initial state.
func (c *CommandPool) AllocateBuffers(count int) ([]*CommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	handles, err := c.Device.Driver.AllocateCommandBuffers(c.Device.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedAllocateCommandBuffer, err)
	}
	if len(handles) != count {
		return nil, initError(FailedAllocateCommandBuffer,
			errors.Errorf("asked for %d command buffers, got %d", count, len(handles)))
	}

	ret := make([]*CommandBuffer, count)
	for i := range ret {
		ret[i] = &CommandBuffer{Pool: c, VKCommandBuffer: handles[i]}
	}
	c.buffers = append(c.buffers, ret...)
	return ret, nil
}

func (c *CommandPool) AllocateBuffer() (*CommandBuffer, error) {
	ret, err := c.AllocateBuffers(1)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}

// FreeBuffers returns the buffers to the pool. They must not be pending.
func (c *CommandPool) FreeBuffers(bs ...*CommandBuffer) {
	if len(bs) == 0 {
		return
	}
	c.Device.Driver.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, commandBufferHandles(bs))

	kept := c.buffers[:0]
	for _, b := range c.buffers {
		freed := false
		for _, f := range bs {
			if f == b {
				freed = true
				break
			}
		}
		if !freed {
			kept = append(kept, b)
		}
	}
	c.buffers = kept
}

// Reset returns every buffer allocated from the pool to the initial state.
// None of them may still be executing.
func (c *CommandPool) Reset() error {
	if err := c.Device.Driver.ResetCommandPool(c.Device.VKDevice, c.VKCommandPool); err != nil {
		return errors.Wrap(err, "reset command pool")
	}
	for _, b := range c.buffers {
		b.state = CommandBufferInitial
	}
	return nil
}

func (c *CommandPool) Destroy() {
	c.buffers = nil
	c.Device.Driver.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool)
}
