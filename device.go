package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// QueueRequest asks for one queue per priority from a queue family. An empty
// Priorities list asks for a single queue at priority 1.
type QueueRequest struct {
	FamilyIndex uint32
	Priorities  []float32
}

func (r QueueRequest) priorities() []float32 {
	if len(r.Priorities) == 0 {
		return []float32{1.0}
	}
	return r.Priorities
}

// MergeQueueRequests folds requests into one create info per distinct family,
// in the order families first appear. Requests for the same family add up;
// the total is capped at the family's queue count and the concatenated
// priorities are truncated to match.
func MergeQueueRequests(requests []QueueRequest, families []vk.QueueFamilyProperties) ([]vk.DeviceQueueCreateInfo, error) {
	var order []uint32
	merged := make(map[uint32][]float32)
	for _, r := range requests {
		if int(r.FamilyIndex) >= len(families) {
			return nil, errors.Wrapf(ErrInvalidQueueFamily, "family %d of %d", r.FamilyIndex, len(families))
		}
		if _, ok := merged[r.FamilyIndex]; !ok {
			order = append(order, r.FamilyIndex)
		}
		merged[r.FamilyIndex] = append(merged[r.FamilyIndex], r.priorities()...)
	}

	infos := make([]vk.DeviceQueueCreateInfo, 0, len(order))
	for _, family := range order {
		p := merged[family]
		if limit := int(families[family].QueueCount); len(p) > limit {
			p = p[:limit]
		}
		if len(p) == 0 {
			continue
		}
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       uint32(len(p)),
			PQueuePriorities: p,
		})
	}
	return infos, nil
}

// Device owns the logical device and every Queue retrieved from it at
// creation. It must be destroyed after all objects created from it.
type Device struct {
	Driver         Driver
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device

	queues []*Queue
}

// CreateDevice creates a logical device with the merged queue requests,
// enabled extensions and features, then retrieves one Queue per created
// (family, index) pair. A nil features pointer enables nothing.
func (p *PhysicalDevice) CreateDevice(requests []QueueRequest, extensions []string, features *vk.PhysicalDeviceFeatures) (*Device, error) {
	queueInfos, err := MergeQueueRequests(requests, p.QueueFamilies().Properties())
	if err != nil {
		return nil, initError(FailedCreateDevice, err)
	}

	ext := safeStrings(append([]string(nil), extensions...))
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(ext)),
		PpEnabledExtensionNames: ext,
	}
	if features != nil {
		deviceCreateInfo.PEnabledFeatures = []vk.PhysicalDeviceFeatures{*features}
	}

	ldevice, err := p.Driver.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo)
	if err != nil {
		return nil, initError(FailedCreateDevice, err)
	}

	d := &Device{Driver: p.Driver, PhysicalDevice: p, VKDevice: ldevice}
	for _, qi := range queueInfos {
		for i := uint32(0); i < qi.QueueCount; i++ {
			d.queues = append(d.queues, &Queue{
				Device:      d,
				FamilyIndex: qi.QueueFamilyIndex,
				Index:       i,
				VKQueue:     p.Driver.GetDeviceQueue(ldevice, qi.QueueFamilyIndex, i),
			})
		}
	}
	Logger().Debug("device created", "physical", p.DeviceName, "families", len(queueInfos), "queues", len(d.queues))
	return d, nil
}

// GetQueue returns the queue created for (family, index), or ErrQueueNotFound.
func (d *Device) GetQueue(family, index uint32) (*Queue, error) {
	for _, q := range d.queues {
		if q.FamilyIndex == family && q.Index == index {
			return q, nil
		}
	}
	return nil, errors.Wrapf(ErrQueueNotFound, "family %d index %d", family, index)
}

// Queues returns every queue retrieved at creation.
func (d *Device) Queues() []*Queue {
	return append([]*Queue(nil), d.queues...)
}

func (d *Device) WaitIdle() error {
	return errors.Wrap(d.Driver.DeviceWaitIdle(d.VKDevice), "device wait idle")
}

func (d *Device) Destroy() {
	d.queues = nil
	d.Driver.DestroyDevice(d.VKDevice)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s Queues: %d }", d.PhysicalDevice, len(d.queues))
}
