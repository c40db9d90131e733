package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Queue is a submission endpoint identified by family and index. It is owned
// by its Device and does not own the native queue.
type Queue struct {
	Device      *Device
	FamilyIndex uint32
	Index       uint32
	VKQueue     vk.Queue
}

// SubmitInfo describes one batch: the buffers to execute, the semaphores to
// wait on at the matching stages and the semaphores to signal.
type SubmitInfo struct {
	Buffers    []*CommandBuffer
	Wait       []*Semaphore
	WaitStages []vk.PipelineStageFlags
	Signal     []*Semaphore
}

func (s SubmitInfo) native() vk.SubmitInfo {
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   uint32(len(s.Buffers)),
		PCommandBuffers:      commandBufferHandles(s.Buffers),
		WaitSemaphoreCount:   uint32(len(s.Wait)),
		SignalSemaphoreCount: uint32(len(s.Signal)),
	}
	if len(s.Wait) > 0 {
		info.PWaitSemaphores = semaphoreHandles(s.Wait)
		info.PWaitDstStageMask = s.WaitStages
	}
	if len(s.Signal) > 0 {
		info.PSignalSemaphores = semaphoreHandles(s.Signal)
	}
	return info
}

// Submit submits one batch. A non-nil fence is signaled when the batch completes.
func (q *Queue) Submit(s SubmitInfo, fence *Fence) error {
	if len(s.WaitStages) != len(s.Wait) {
		return errors.Errorf("submit: %d wait semaphores but %d wait stages", len(s.Wait), len(s.WaitStages))
	}
	f := vk.NullFence
	if fence != nil {
		f = fence.VKFence
	}
	err := q.Device.Driver.QueueSubmit(q.VKQueue, []vk.SubmitInfo{s.native()}, f)
	return errors.Wrap(err, "queue submit")
}

// SubmitWaitIdle submits the buffers and blocks until the queue is idle.
func (q *Queue) SubmitWaitIdle(buffers ...*CommandBuffer) error {
	if err := q.Submit(SubmitInfo{Buffers: buffers}, nil); err != nil {
		return err
	}
	return q.WaitIdle()
}

// SubmitWithFence submits the buffers and arms fence.
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	return q.Submit(SubmitInfo{Buffers: buffers}, fence)
}

func (q *Queue) WaitIdle() error {
	return errors.Wrap(q.Device.Driver.QueueWaitIdle(q.VKQueue), "queue wait idle")
}

// Present queues image of the swapchain for presentation after the wait
// semaphores signal. The raw result is returned so callers can tell an out of
// date swapchain apart from other failures.
func (q *Queue) Present(s *Swapchain, image uint32, wait ...*Semaphore) vk.Result {
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.VKSwapchain},
		PImageIndices:      []uint32{image},
		WaitSemaphoreCount: uint32(len(wait)),
	}
	if len(wait) > 0 {
		info.PWaitSemaphores = semaphoreHandles(wait)
	}
	return q.Device.Driver.QueuePresent(q.VKQueue, &info)
}

func (q *Queue) String() string {
	return fmt.Sprintf("{ Family: %d Index: %d }", q.FamilyIndex, q.Index)
}
