package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SlotBuffer is one host visible buffer, persistently mapped, split into one
// aligned range per frame-in-flight slot. The range of slot i may only be
// written once slot i's fence has been waited on, which is the case inside a
// FrameFunc.
type SlotBuffer struct {
	*BoundBuffer

	SlotSize uint64
	ranges   []*Allocation
	mapped   []byte
}

// CreateSlotBuffer creates a buffer holding slots ranges of size bytes each,
// every range starting at a multiple of align.
func (d *Device) CreateSlotBuffer(slots int, size uint64, usage vk.BufferUsageFlags, align uint64) (*SlotBuffer, error) {
	if slots <= 0 || size == 0 {
		return nil, errors.Errorf("slot buffer: %d slots of %d bytes", slots, size)
	}
	stride := alignUp(size, align)
	total := stride*uint64(slots-1) + size

	alloc := NewLinearAllocator(total)
	ranges := make([]*Allocation, slots)
	for i := range ranges {
		ranges[i] = alloc.Allocate(size, align)
		if ranges[i] == nil {
			return nil, errors.Errorf("slot buffer: slot %d does not fit", i)
		}
	}

	b, err := d.CreateBoundBuffer(total, usage, HostMemory)
	if err != nil {
		return nil, err
	}
	mapped, err := b.Memory.MapRange(0, total)
	if err != nil {
		b.Destroy()
		return nil, err
	}
	return &SlotBuffer{BoundBuffer: b, SlotSize: size, ranges: ranges, mapped: mapped}, nil
}

func (s *SlotBuffer) Slots() int {
	return len(s.ranges)
}

// Range is the byte range of slot within the buffer.
func (s *SlotBuffer) Range(slot int) Allocation {
	return *s.ranges[slot]
}

// Bytes is the mapped memory of slot.
func (s *SlotBuffer) Bytes(slot int) []byte {
	r := s.ranges[slot]
	return s.mapped[r.Offset:r.End():r.End()]
}

// Write copies data into slot's range.
func (s *SlotBuffer) Write(slot int, data []byte) error {
	if slot < 0 || slot >= len(s.ranges) {
		return errors.Errorf("slot %d out of range", slot)
	}
	if uint64(len(data)) > s.SlotSize {
		return errors.Errorf("slot buffer: %d bytes do not fit in %d", len(data), s.SlotSize)
	}
	copy(s.Bytes(slot), data)
	return nil
}

// DSInfo describes slot's range for a descriptor write.
func (s *SlotBuffer) DSInfo(slot int) vk.DescriptorBufferInfo {
	r := s.ranges[slot]
	return s.Buffer.DSRange(r.Offset, r.Size)
}

func (s *SlotBuffer) Destroy() {
	if s.mapped != nil {
		s.Memory.Unmap()
		s.mapped = nil
	}
	s.BoundBuffer.Destroy()
}
