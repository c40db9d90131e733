package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool allocates descriptor sets. Sets may be freed one at a time.
type DescriptorPool struct {
	Device               *Device
	VKDescriptorPool     vk.DescriptorPool
	VKDescriptorPoolSize []vk.DescriptorPoolSize
}

func (d *Device) NewDescriptorPool() *DescriptorPool {
	return &DescriptorPool{Device: d}
}

// AddPoolSize informs the descriptor pool how many of a certain descriptortype it will contain
func (d *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) *DescriptorPool {
	d.VKDescriptorPoolSize = append(d.VKDescriptorPoolSize, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
	return d
}

// CreateDescriptorPool creates the native pool for the sizes added to pool.
func (d *Device) CreateDescriptorPool(pool *DescriptorPool, maxSets int) (*DescriptorPool, error) {
	info := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(pool.VKDescriptorPoolSize)),
		PPoolSizes:    pool.VKDescriptorPoolSize,
	}
	handle, err := d.Driver.CreateDescriptorPool(d.VKDevice, &info)
	if err != nil {
		return nil, errors.Wrap(err, "create descriptor pool")
	}
	pool.Device = d
	pool.VKDescriptorPool = handle
	return pool, nil
}

// Allocate allocates one descriptor set per layout.
func (d *DescriptorPool) Allocate(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	dsl := make([]vk.DescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		dsl[i] = l.VKDescriptorSetLayout
	}
	info := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.VKDescriptorPool,
		DescriptorSetCount: uint32(len(dsl)),
		PSetLayouts:        dsl,
	}
	handles, err := d.Device.Driver.AllocateDescriptorSets(d.Device.VKDevice, &info)
	if err != nil {
		return nil, errors.Wrap(err, "allocate descriptor sets")
	}
	ret := make([]*DescriptorSet, len(handles))
	for i, h := range handles {
		ret[i] = &DescriptorSet{Device: d.Device, DescriptorPool: d, VKDescriptorSet: h}
	}
	return ret, nil
}

// AllocateOne allocates a single set with layout.
func (d *DescriptorPool) AllocateOne(layout *DescriptorSetLayout) (*DescriptorSet, error) {
	sets, err := d.Allocate(layout)
	if err != nil {
		return nil, err
	}
	return sets[0], nil
}

func (d *DescriptorPool) Reset() error {
	return errors.Wrap(d.Device.Driver.ResetDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool), "reset descriptor pool")
}

func (d *DescriptorPool) Free(sets ...*DescriptorSet) error {
	h := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		h[i] = s.VKDescriptorSet
	}
	return errors.Wrap(d.Device.Driver.FreeDescriptorSets(d.Device.VKDevice, d.VKDescriptorPool, h), "free descriptor sets")
}

func (d *DescriptorPool) Destroy() {
	d.Device.Driver.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool)
}
