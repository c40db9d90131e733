package vkframe

import (
	"fmt"

	"github.com/docker/go-units"
)

type Allocation struct {
	Offset uint64
	Size   uint64
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// End is the first byte after the allocation.
func (a *Allocation) End() uint64 {
	return a.Offset + a.Size
}

type IAllocator interface {
	Free(a *Allocation)
	Allocate(size uint64, align uint64) *Allocation
}

// LinearAllocator hands out ranges of a region of Size bytes, placing each
// new range in the first gap large enough for it after alignment. It only
// does bookkeeping; no memory is touched.
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation // sorted by offset
}

func NewLinearAllocator(size uint64) *LinearAllocator {
	return &LinearAllocator{Size: size}
}

func alignUp(a uint64, align uint64) uint64 {
	if align <= 1 {
		return a
	}
	if m := a % align; m != 0 {
		return a - m + align
	}
	return a
}

func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Allocate returns a range of size bytes whose offset is a multiple of align,
// or nil when no gap fits.
func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if size == 0 {
		return nil
	}
	var prevEnd uint64
	for i, a := range p.allocs {
		off := alignUp(prevEnd, align)
		if off+size <= a.Offset {
			return p.insert(i, off, size)
		}
		prevEnd = a.End()
	}
	off := alignUp(prevEnd, align)
	if off+size > p.Size || off+size < off {
		Logger().Debug("allocator full",
			"want", units.BytesSize(float64(size)), "capacity", units.BytesSize(float64(p.Size)), "used", len(p.allocs))
		return nil
	}
	return p.insert(len(p.allocs), off, size)
}

func (p *LinearAllocator) insert(i int, offset, size uint64) *Allocation {
	na := &Allocation{Offset: offset, Size: size}
	p.allocs = append(p.allocs, nil)
	copy(p.allocs[i+1:], p.allocs[i:])
	p.allocs[i] = na
	return na
}

// Allocations returns the live allocations ordered by offset.
func (p *LinearAllocator) Allocations() []*Allocation {
	return append([]*Allocation(nil), p.allocs...)
}

func (p *LinearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
