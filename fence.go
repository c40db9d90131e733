package vkframe

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Fence gates CPU reuse of resources on GPU completion.
type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// CreateFence creates a fence, optionally already signaled so that the first
// wait on it returns immediately.
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	fence, err := d.Driver.CreateFence(d.VKDevice, &info)
	if err != nil {
		return nil, initError(FailedCreateFence, err)
	}
	return &Fence{Device: d, VKFence: fence}, nil
}

// Wait blocks until the fence is signaled or timeout elapses. vk.MaxUint64
// waits forever.
func (f *Fence) Wait(timeout uint64) error {
	return f.Device.Driver.WaitForFences(f.Device.VKDevice, []vk.Fence{f.VKFence}, true, timeout)
}

// Reset returns the fence to the unsignaled state.
func (f *Fence) Reset() error {
	return errors.Wrap(f.Device.Driver.ResetFences(f.Device.VKDevice, []vk.Fence{f.VKFence}), "reset fence")
}

// Signaled reports whether the fence is currently signaled.
func (f *Fence) Signaled() bool {
	return f.Device.Driver.GetFenceStatus(f.Device.VKDevice, f.VKFence) == vk.Success
}

func (f *Fence) Destroy() {
	f.Device.Driver.DestroyFence(f.Device.VKDevice, f.VKFence)
}

// WaitForFences waits for all or any of fences. A negative timeout waits forever.
func (d *Device) WaitForFences(waitForAll bool, timeout time.Duration, fences ...*Fence) error {
	if len(fences) == 0 {
		return nil
	}
	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}
	ns := uint64(vk.MaxUint64)
	if timeout >= 0 {
		ns = uint64(timeout.Nanoseconds())
	}
	return errors.Wrap(d.Driver.WaitForFences(d.VKDevice, f, waitForAll, ns), "wait for fences")
}
