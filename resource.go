package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Destroyer is implemented by every wrapper that owns a native object.
type Destroyer interface {
	Destroy()
}

// ResourceKind names the kind of native handle a Resource carries.
type ResourceKind int

const (
	BufferKind ResourceKind = iota
	MemoryKind
	ImageViewKind
	FramebufferKind
	RenderPassKind
	FenceKind
	SemaphoreKind
	CommandPoolKind
	ShaderModuleKind
	PipelineKind
	PipelineLayoutKind
	PipelineCacheKind
	DescriptorSetLayoutKind
	DescriptorPoolKind
	SwapchainKind
)

var resourceKindNames = [...]string{
	BufferKind:              "buffer",
	MemoryKind:              "memory",
	ImageViewKind:           "image view",
	FramebufferKind:         "framebuffer",
	RenderPassKind:          "render pass",
	FenceKind:               "fence",
	SemaphoreKind:           "semaphore",
	CommandPoolKind:         "command pool",
	ShaderModuleKind:        "shader module",
	PipelineKind:            "pipeline",
	PipelineLayoutKind:      "pipeline layout",
	PipelineCacheKind:       "pipeline cache",
	DescriptorSetLayoutKind: "descriptor set layout",
	DescriptorPoolKind:      "descriptor pool",
	SwapchainKind:           "swapchain",
}

func (k ResourceKind) String() string {
	if k >= 0 && int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

// Resource is a raw device-level handle tagged with its kind. The handle's
// type must match the kind; the constructors below guarantee that.
type Resource struct {
	Kind   ResourceKind
	Handle any
}

func BufferResource(h vk.Buffer) Resource                 { return Resource{BufferKind, h} }
func MemoryResource(h vk.DeviceMemory) Resource           { return Resource{MemoryKind, h} }
func ImageViewResource(h vk.ImageView) Resource           { return Resource{ImageViewKind, h} }
func FramebufferResource(h vk.Framebuffer) Resource       { return Resource{FramebufferKind, h} }
func RenderPassResource(h vk.RenderPass) Resource         { return Resource{RenderPassKind, h} }
func FenceResource(h vk.Fence) Resource                   { return Resource{FenceKind, h} }
func SemaphoreResource(h vk.Semaphore) Resource           { return Resource{SemaphoreKind, h} }
func CommandPoolResource(h vk.CommandPool) Resource       { return Resource{CommandPoolKind, h} }
func ShaderModuleResource(h vk.ShaderModule) Resource     { return Resource{ShaderModuleKind, h} }
func PipelineResource(h vk.Pipeline) Resource             { return Resource{PipelineKind, h} }
func PipelineLayoutResource(h vk.PipelineLayout) Resource { return Resource{PipelineLayoutKind, h} }
func PipelineCacheResource(h vk.PipelineCache) Resource   { return Resource{PipelineCacheKind, h} }
func SwapchainResource(h vk.Swapchain) Resource           { return Resource{SwapchainKind, h} }

func DescriptorSetLayoutResource(h vk.DescriptorSetLayout) Resource {
	return Resource{DescriptorSetLayoutKind, h}
}

func DescriptorPoolResource(h vk.DescriptorPool) Resource {
	return Resource{DescriptorPoolKind, h}
}

func (r Resource) String() string {
	return fmt.Sprintf("%s %v", r.Kind, r.Handle)
}

// DestroyResource destroys the native object r refers to.
func (d *Device) DestroyResource(r Resource) error {
	drv, dev := d.Driver, d.VKDevice
	ok := true
	switch r.Kind {
	case BufferKind:
		var h vk.Buffer
		if h, ok = r.Handle.(vk.Buffer); ok {
			drv.DestroyBuffer(dev, h)
		}
	case MemoryKind:
		var h vk.DeviceMemory
		if h, ok = r.Handle.(vk.DeviceMemory); ok {
			drv.FreeMemory(dev, h)
		}
	case ImageViewKind:
		var h vk.ImageView
		if h, ok = r.Handle.(vk.ImageView); ok {
			drv.DestroyImageView(dev, h)
		}
	case FramebufferKind:
		var h vk.Framebuffer
		if h, ok = r.Handle.(vk.Framebuffer); ok {
			drv.DestroyFramebuffer(dev, h)
		}
	case RenderPassKind:
		var h vk.RenderPass
		if h, ok = r.Handle.(vk.RenderPass); ok {
			drv.DestroyRenderPass(dev, h)
		}
	case FenceKind:
		var h vk.Fence
		if h, ok = r.Handle.(vk.Fence); ok {
			drv.DestroyFence(dev, h)
		}
	case SemaphoreKind:
		var h vk.Semaphore
		if h, ok = r.Handle.(vk.Semaphore); ok {
			drv.DestroySemaphore(dev, h)
		}
	case CommandPoolKind:
		var h vk.CommandPool
		if h, ok = r.Handle.(vk.CommandPool); ok {
			drv.DestroyCommandPool(dev, h)
		}
	case ShaderModuleKind:
		var h vk.ShaderModule
		if h, ok = r.Handle.(vk.ShaderModule); ok {
			drv.DestroyShaderModule(dev, h)
		}
	case PipelineKind:
		var h vk.Pipeline
		if h, ok = r.Handle.(vk.Pipeline); ok {
			drv.DestroyPipeline(dev, h)
		}
	case PipelineLayoutKind:
		var h vk.PipelineLayout
		if h, ok = r.Handle.(vk.PipelineLayout); ok {
			drv.DestroyPipelineLayout(dev, h)
		}
	case PipelineCacheKind:
		var h vk.PipelineCache
		if h, ok = r.Handle.(vk.PipelineCache); ok {
			drv.DestroyPipelineCache(dev, h)
		}
	case DescriptorSetLayoutKind:
		var h vk.DescriptorSetLayout
		if h, ok = r.Handle.(vk.DescriptorSetLayout); ok {
			drv.DestroyDescriptorSetLayout(dev, h)
		}
	case DescriptorPoolKind:
		var h vk.DescriptorPool
		if h, ok = r.Handle.(vk.DescriptorPool); ok {
			drv.DestroyDescriptorPool(dev, h)
		}
	case SwapchainKind:
		var h vk.Swapchain
		if h, ok = r.Handle.(vk.Swapchain); ok {
			drv.DestroySwapchain(dev, h)
		}
	default:
		return errors.Errorf("unknown resource kind %d", int(r.Kind))
	}
	if !ok {
		return errors.Errorf("%s resource holds a %T", r.Kind, r.Handle)
	}
	return nil
}

// Cleanup collects objects to destroy together, newest first. The zero value
// is ready to use.
type Cleanup struct {
	Device *Device
	items  []any
}

// Add schedules a wrapper for destruction.
func (c *Cleanup) Add(d Destroyer) {
	c.items = append(c.items, d)
}

// AddResource schedules a raw handle for destruction. Device must be set.
func (c *Cleanup) AddResource(r Resource) {
	c.items = append(c.items, r)
}

func (c *Cleanup) Len() int {
	return len(c.items)
}

// Destroy destroys everything added, in reverse order, and empties the set.
func (c *Cleanup) Destroy() {
	for i := len(c.items) - 1; i >= 0; i-- {
		switch it := c.items[i].(type) {
		case Destroyer:
			it.Destroy()
		case Resource:
			if err := c.Device.DestroyResource(it); err != nil {
				Logger().Warn("cleanup", "err", err)
			}
		}
	}
	c.items = nil
}
