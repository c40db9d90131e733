package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PresentModes is a list of present modes reported for a surface.
type PresentModes []vk.PresentMode

// Contains reports whether m is in the list.
func (v PresentModes) Contains(m vk.PresentMode) bool {
	for _, s := range v {
		if s == m {
			return true
		}
	}
	return false
}

// SurfaceFormats is a list of formats reported for a surface.
type SurfaceFormats []vk.SurfaceFormat

// Filter returns the formats for which f returns true.
func (v SurfaceFormats) Filter(f func(f vk.SurfaceFormat) bool) SurfaceFormats {
	ret := make(SurfaceFormats, 0)
	for _, s := range v {
		if f(s) {
			ret = append(ret, s)
		}
	}
	return ret
}

type PhysicalDevice struct {
	Driver                     Driver
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func newPhysicalDevice(d Driver, pd vk.PhysicalDevice) *PhysicalDevice {
	props := d.GetPhysicalDeviceProperties(pd)
	return &PhysicalDevice{
		Driver:                     d,
		DeviceName:                 vk.ToString(props.DeviceName[:]),
		VKPhysicalDevice:           pd,
		VKPhysicalDeviceProperties: props,
	}
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) (PresentModes, error) {
	modes, err := p.Driver.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface)
	return modes, errors.Wrap(err, "surface present modes")
}

func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) (SurfaceFormats, error) {
	formats, err := p.Driver.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface)
	return formats, errors.Wrap(err, "surface formats")
}

func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (vk.SurfaceCapabilities, error) {
	caps, err := p.Driver.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface)
	return caps, errors.Wrap(err, "surface capabilities")
}

// SupportsImageFormat reports whether format can back a 2D optimally tiled
// image with the given usage.
func (p *PhysicalDevice) SupportsImageFormat(format vk.Format, usage vk.ImageUsageFlags) bool {
	return p.Driver.GetPhysicalDeviceImageFormatProperties(p.VKPhysicalDevice, format, vk.ImageTilingOptimal, usage) == vk.Success
}

// QueueFamilies returns the queue families of this device in index order.
func (p *PhysicalDevice) QueueFamilies() QueueFamilySlice {
	props := p.Driver.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice)
	ret := make(QueueFamilySlice, len(props))
	for i := range props {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: props[i]}
	}
	return ret
}

// GraphicsFamily returns the first graphics capable queue family.
func (p *PhysicalDevice) GraphicsFamily() (*QueueFamily, error) {
	g := p.QueueFamilies().FilterGraphics()
	if len(g) == 0 {
		return nil, errors.Errorf("no graphics capable queue family on %s", p)
	}
	return g[0], nil
}

func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	return p.Driver.GetPhysicalDeviceFeatures(p.VKPhysicalDevice)
}

func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return p.Driver.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice)
}

// MemoryTypes returns the memory types the device reports.
func (p *PhysicalDevice) MemoryTypes() MemoryTypeSlice {
	mp := p.VKPhysicalDeviceMemoryProperties()
	return append(MemoryTypeSlice(nil), mp.MemoryTypes[:mp.MemoryTypeCount]...)
}

// MemoryHeaps returns the memory heaps the device reports.
func (p *PhysicalDevice) MemoryHeaps() []vk.MemoryHeap {
	mp := p.VKPhysicalDeviceMemoryProperties()
	return append([]vk.MemoryHeap(nil), mp.MemoryHeaps[:mp.MemoryHeapCount]...)
}

// FindMemoryType returns the index of the first memory type allowed by
// memoryTypeBits whose flags include every bit of properties.
func (p *PhysicalDevice) FindMemoryType(memoryTypeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	return findMemoryType(p.VKPhysicalDeviceMemoryProperties(), memoryTypeBits, properties)
}

func findMemoryType(mp vk.PhysicalDeviceMemoryProperties, memoryTypeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		if memoryTypeBits&(1<<i) != 0 && mp.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "bits %#x properties %#x", memoryTypeBits, uint32(properties))
}

// SupportedExtensions returns the device extensions this device offers.
func (p *PhysicalDevice) SupportedExtensions() ([]string, error) {
	ext, err := p.Driver.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate device extensions")
	}
	names := make([]string, len(ext))
	for i := range ext {
		names[i] = vk.ToString(ext[i].ExtensionName[:])
	}
	return names, nil
}

type MemoryTypeSlice []vk.MemoryType

func (m MemoryTypeSlice) Filter(f func(properties vk.MemoryPropertyFlags) bool) MemoryTypeSlice {
	res := make(MemoryTypeSlice, 0)
	for i := range m {
		if f(m[i].PropertyFlags) {
			res = append(res, m[i])
		}
	}
	return res
}

func (m MemoryTypeSlice) NumHostVisible() int {
	return len(m.Filter(func(p vk.MemoryPropertyFlags) bool {
		return p&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0
	}))
}

func (m MemoryTypeSlice) NumHostCoherent() int {
	return len(m.Filter(func(p vk.MemoryPropertyFlags) bool {
		return p&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0
	}))
}

func (m MemoryTypeSlice) NumDeviceLocal() int {
	return len(m.Filter(func(p vk.MemoryPropertyFlags) bool {
		return p&vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit) != 0
	}))
}

// DescribeMemoryFlags renders memory property flags as a short string such as
// "device-local|host-visible".
func DescribeMemoryFlags(p vk.MemoryPropertyFlags) string {
	names := []struct {
		bit  vk.MemoryPropertyFlagBits
		name string
	}{
		{vk.MemoryPropertyDeviceLocalBit, "device-local"},
		{vk.MemoryPropertyHostVisibleBit, "host-visible"},
		{vk.MemoryPropertyHostCoherentBit, "host-coherent"},
		{vk.MemoryPropertyHostCachedBit, "host-cached"},
		{vk.MemoryPropertyLazilyAllocatedBit, "lazily-allocated"},
	}
	s := ""
	for _, n := range names {
		if p&vk.MemoryPropertyFlags(n.bit) != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return fmt.Sprintf("%#x", uint32(p))
	}
	return s
}
