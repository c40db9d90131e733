package vkframe

// FrameSync is the synchronization set of one in-flight slot. InFlight is
// signaled when the slot's last submission completes; ImageAvailable is
// signaled by image acquisition; RenderFinished is signaled by the submission
// and waited on by presentation.
type FrameSync struct {
	InFlight       *Fence
	ImageAvailable *Semaphore
	RenderFinished *Semaphore
}

// CreateFrameSync creates a synchronization set whose fence starts signaled,
// so the first wait of a fresh slot passes.
func (d *Device) CreateFrameSync() (*FrameSync, error) {
	fence, err := d.CreateFence(true)
	if err != nil {
		return nil, err
	}
	acquire, err := d.CreateSemaphore()
	if err != nil {
		fence.Destroy()
		return nil, err
	}
	release, err := d.CreateSemaphore()
	if err != nil {
		acquire.Destroy()
		fence.Destroy()
		return nil, err
	}
	return &FrameSync{InFlight: fence, ImageAvailable: acquire, RenderFinished: release}, nil
}

func (s *FrameSync) Destroy() {
	s.RenderFinished.Destroy()
	s.ImageAvailable.Destroy()
	s.InFlight.Destroy()
}
