package vkframe

import (
	vk "github.com/vulkan-go/vulkan"
)

// Semaphore orders two GPU side operations. The CPU never waits on it.
type Semaphore struct {
	Device      *Device
	VKSemaphore vk.Semaphore
}

func (d *Device) CreateSemaphore() (*Semaphore, error) {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	sema, err := d.Driver.CreateSemaphore(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedCreateSemaphore, err)
	}
	return &Semaphore{Device: d, VKSemaphore: sema}, nil
}

func (s *Semaphore) Destroy() {
	s.Device.Driver.DestroySemaphore(s.Device.VKDevice, s.VKSemaphore)
}

func semaphoreHandles(s []*Semaphore) []vk.Semaphore {
	ret := make([]vk.Semaphore, len(s))
	for i := range s {
		ret[i] = s[i].VKSemaphore
	}
	return ret
}
