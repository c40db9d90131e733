package vkframe

import (
	"github.com/docker/go-units"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrPoolFull is returned when a BufferPool has no gap large enough.
var ErrPoolFull = errors.New("insufficient space in buffer pool")

// BufferPool sub-allocates buffers from one block of device memory. The
// number of memory allocations a device allows is small, so vertex, index and
// uniform buffers are better carved out of a shared pool than allocated one
// by one. Host visible pools stay mapped for their whole life.
type BufferPool struct {
	Device           *Device
	Name             string
	Usage            vk.BufferUsageFlags
	MemoryProperties vk.MemoryPropertyFlags
	Memory           *DeviceMemory
	Allocator        IAllocator

	mapped []byte
}

// PooledBuffer is a buffer bound to a range of its pool's memory.
type PooledBuffer struct {
	*Buffer
	Pool       *BufferPool
	Allocation *Allocation
}

// CreateBufferPool allocates size bytes of memory with props, typed to suit
// buffers with usage.
func (d *Device) CreateBufferPool(name string, size uint64, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*BufferPool, error) {
	probe, err := d.CreateBuffer(size, usage)
	if err != nil {
		return nil, err
	}
	memory, err := d.AllocateForBuffer(probe, props)
	probe.Destroy()
	if err != nil {
		return nil, err
	}

	p := &BufferPool{
		Device:           d,
		Name:             name,
		Usage:            usage,
		MemoryProperties: props,
		Memory:           memory,
		Allocator:        NewLinearAllocator(memory.Size),
	}
	if props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0 {
		p.mapped, err = memory.Map()
		if err != nil {
			memory.Destroy()
			return nil, err
		}
	}
	Logger().Debug("buffer pool created", "name", name, "size", units.BytesSize(float64(memory.Size)),
		"memory", DescribeMemoryFlags(props))
	return p, nil
}

// HostVisible reports whether Bytes can be used on the pool's buffers.
func (p *BufferPool) HostVisible() bool {
	return p.mapped != nil
}

// AllocateBuffer creates a buffer of size bytes with the pool's usage and
// binds it to a free range of the pool.
func (p *BufferPool) AllocateBuffer(size uint64) (*PooledBuffer, error) {
	buffer, err := p.Device.CreateBuffer(size, p.Usage)
	if err != nil {
		return nil, err
	}
	reqs := buffer.VKMemoryRequirements()
	if reqs.MemoryTypeBits&(1<<p.Memory.TypeIndex) == 0 {
		buffer.Destroy()
		return nil, errors.Wrapf(ErrNoMemoryType, "pool %s", p.Name)
	}
	a := p.Allocator.Allocate(uint64(reqs.Size), uint64(reqs.Alignment))
	if a == nil {
		buffer.Destroy()
		return nil, errors.Wrapf(ErrPoolFull, "pool %s: %s", p.Name, units.BytesSize(float64(reqs.Size)))
	}
	if err := buffer.Bind(p.Memory, a.Offset); err != nil {
		p.Allocator.Free(a)
		buffer.Destroy()
		return nil, err
	}
	return &PooledBuffer{Buffer: buffer, Pool: p, Allocation: a}, nil
}

// AllocateFor allocates a buffer sized for bo and, for host visible pools,
// copies bo's bytes into it.
func (p *BufferPool) AllocateFor(bo BufferObject) (*PooledBuffer, error) {
	data := bo.Bytes()
	b, err := p.AllocateBuffer(uint64(len(data)))
	if err != nil {
		return nil, err
	}
	if p.HostVisible() {
		copy(b.Bytes(), data)
	}
	return b, nil
}

// Bytes is the mapped memory of the buffer, nil for pools that are not host
// visible.
func (b *PooledBuffer) Bytes() []byte {
	if !b.Pool.HostVisible() {
		return nil
	}
	return b.Pool.mapped[b.Allocation.Offset : b.Allocation.Offset+b.Buffer.Size]
}

// Free destroys the buffer and returns its range to the pool.
func (b *PooledBuffer) Free() {
	if b.Allocation != nil {
		b.Pool.Allocator.Free(b.Allocation)
		b.Allocation = nil
	}
	b.Buffer.Destroy()
}

func (b *PooledBuffer) Destroy() {
	b.Free()
}

// Destroy frees the pool's memory. Buffers allocated from it must have been
// freed already.
func (p *BufferPool) Destroy() {
	if p.mapped != nil {
		p.Memory.Unmap()
		p.mapped = nil
	}
	p.Memory.Destroy()
}
