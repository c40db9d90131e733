package vkframe

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SlotState is the position of a frame-in-flight slot in the render loop.
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotWaiting
	SlotAcquiring
	SlotRecording
	SlotSubmitted
	SlotPresenting
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotWaiting:
		return "waiting"
	case SlotAcquiring:
		return "acquiring"
	case SlotRecording:
		return "recording"
	case SlotSubmitted:
		return "submitted"
	case SlotPresenting:
		return "presenting"
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

// AppState is the application state handed to every frame callback.
type AppState struct {
	// Frame counts the frames submitted so far.
	Frame   uint64
	Elapsed time.Duration
	Data    any
}

// FrameInfo describes the frame being recorded. Slot and Image are unrelated
// indices: Slot selects the in-flight resources, Image the acquired
// swapchain image and its framebuffer.
type FrameInfo struct {
	Slot   int
	Image  int
	Extent vk.Extent2D
	State  *AppState
}

// FrameFunc returns the commands to replay inside the frame's render pass. It
// runs after the slot's fence wait, so it may write the slot's per-frame data.
type FrameFunc func(FrameInfo) (*CommandList, error)

type RendererOptions struct {
	Swapchain *SwapchainOptions
	// Usage of the swapchain images, color attachment when zero.
	Usage      vk.ImageUsageFlags
	ClearValue vk.ClearValue
	Data       any
}

// Renderer drives the per-frame protocol over one swapchain. It owns the
// swapchain, render pass, framebuffers, one command pool and buffer per slot
// and one FrameSync per slot. It does not own the device, queue or surface.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	Device  *Device
	Queue   *Queue
	Surface vk.Surface

	opts RendererOptions

	swapchain    *Swapchain
	renderPass   *RenderPass
	framebuffers []*Framebuffer
	pools        []*CommandPool
	buffers      []*CommandBuffer
	syncs        []*FrameSync

	states []SlotState
	// disarmed marks slots whose fence was reset but never handed to a
	// submission, so the next use of the slot must not wait on it.
	disarmed []bool
	slot     int
	// stranded is set when an acquired image could not be submitted.
	stranded bool

	app       AppState
	start     time.Time
	destroyed bool
}

// NewRenderer builds the swapchain, render pass, framebuffers, per-slot
// command pools and buffers, and per-slot synchronization, in that order.
// On failure everything built so far is destroyed.
func (d *Device) NewRenderer(surface vk.Surface, queue *Queue, opts *RendererOptions) (*Renderer, error) {
	r := &Renderer{Device: d, Queue: queue, Surface: surface, start: time.Now()}
	if opts != nil {
		r.opts = *opts
	}
	if r.opts.Usage == 0 {
		r.opts.Usage = vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	r.app.Data = r.opts.Data

	if err := r.build(nil); err != nil {
		r.teardown()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) build(old *Swapchain) error {
	var opts SwapchainOptions
	if r.opts.Swapchain != nil {
		opts = *r.opts.Swapchain
	}
	opts.OldSwapchain = old

	var err error
	r.swapchain, err = r.Device.CreateSwapchain(r.Surface, r.opts.Usage, &opts)
	if err != nil {
		return err
	}
	r.renderPass, err = r.Device.CreateRenderPass(r.swapchain.Format)
	if err != nil {
		return err
	}
	r.framebuffers, err = r.Device.CreateFramebuffers(r.renderPass, r.swapchain)
	if err != nil {
		return err
	}

	n := r.swapchain.NumberOfFrames()
	for i := 0; i < n; i++ {
		pool, err := r.Device.CreateCommandPool(r.Queue.FamilyIndex, 0)
		if err != nil {
			return err
		}
		r.pools = append(r.pools, pool)
		cb, err := pool.AllocateBuffer()
		if err != nil {
			return err
		}
		r.buffers = append(r.buffers, cb)
	}
	for i := 0; i < n; i++ {
		sync, err := r.Device.CreateFrameSync()
		if err != nil {
			return err
		}
		r.syncs = append(r.syncs, sync)
	}

	r.states = make([]SlotState, n)
	r.disarmed = make([]bool, n)
	r.slot = 0
	r.stranded = false
	Logger().Debug("renderer built", "frames", n,
		"extent", [2]uint32{r.swapchain.Extent.Width, r.swapchain.Extent.Height})
	return nil
}

// teardown destroys whatever build created, newest first.
func (r *Renderer) teardown() {
	for i := len(r.syncs) - 1; i >= 0; i-- {
		r.syncs[i].Destroy()
	}
	r.syncs = nil
	for i := len(r.pools) - 1; i >= 0; i-- {
		r.pools[i].Destroy()
	}
	r.pools = nil
	r.buffers = nil
	destroyFramebuffers(r.framebuffers)
	r.framebuffers = nil
	if r.renderPass != nil {
		r.renderPass.Destroy()
		r.renderPass = nil
	}
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
	r.states = nil
	r.disarmed = nil
}

// DrawFrame runs one pass of the frame protocol on the current slot: wait for
// the slot's fence, reset it, acquire an image, record fn's commands inside
// the render pass on the acquired image's framebuffer, submit, present and
// advance to the next slot.
//
// An acquisition failure returns without advancing. A presentation failure is
// returned after advancing, since the submission has already been made. An
// out of date or suboptimal swapchain is reported as ErrSwapchainOutOfDate;
// recovering from it is the caller's job, through Rebuild.
//
// Once an image is acquired the frame always reaches presentation. If fn or
// recording fails, the frame is presented with an empty render pass, or with
// no commands at all when nothing can be recorded, and the error is returned.
// If the submission itself fails the image cannot be presented; DrawFrame
// then returns ErrRebuildRequired until Rebuild is called.
func (r *Renderer) DrawFrame(fn FrameFunc) error {
	if r.destroyed {
		return ErrDestroyed
	}
	if r.stranded {
		return ErrRebuildRequired
	}
	slot := r.slot
	sync := r.syncs[slot]

	r.states[slot] = SlotWaiting
	if !r.disarmed[slot] {
		if err := sync.InFlight.Wait(vk.MaxUint64); err != nil {
			r.states[slot] = SlotIdle
			return errors.Wrapf(err, "slot %d", slot)
		}
		if err := sync.InFlight.Reset(); err != nil {
			r.states[slot] = SlotIdle
			return errors.Wrapf(err, "slot %d", slot)
		}
		r.disarmed[slot] = true
	}

	r.states[slot] = SlotAcquiring
	image, res := r.swapchain.AcquireNextImage(vk.MaxUint64, sync.ImageAvailable, nil)
	if res != vk.Success && res != vk.Suboptimal {
		r.states[slot] = SlotIdle
		err := swapchainError(res, "acquire next image")
		Logger().Warn("acquire failed", "slot", slot, "err", err)
		return err
	}

	r.states[slot] = SlotRecording
	r.app.Elapsed = time.Since(r.start)
	info := FrameInfo{Slot: slot, Image: int(image), Extent: r.swapchain.Extent, State: &r.app}
	list, frameErr := fn(info)
	if frameErr != nil {
		frameErr = errors.Wrap(frameErr, "frame callback")
		list = nil
	}

	buffers := []*CommandBuffer{r.buffers[slot]}
	if err := r.record(slot, int(image), list); err != nil {
		frameErr = errors.Wrapf(err, "slot %d: record", slot)
		if list == nil || r.record(slot, int(image), nil) != nil {
			// the submission still has to consume ImageAvailable and
			// signal RenderFinished
			buffers = nil
		}
	}

	err := r.Queue.Submit(SubmitInfo{
		Buffers:    buffers,
		Wait:       []*Semaphore{sync.ImageAvailable},
		WaitStages: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		Signal:     []*Semaphore{sync.RenderFinished},
	}, sync.InFlight)
	if err != nil {
		r.states[slot] = SlotIdle
		r.stranded = true
		Logger().Warn("submit failed, renderer needs a rebuild", "slot", slot, "image", image, "err", err)
		return errors.Wrapf(ErrRebuildRequired, "slot %d: %v", slot, err)
	}
	r.disarmed[slot] = false
	r.states[slot] = SlotSubmitted
	r.app.Frame++

	r.states[slot] = SlotPresenting
	res = r.Queue.Present(r.swapchain, image, sync.RenderFinished)

	r.states[slot] = SlotIdle
	r.slot = (slot + 1) % len(r.syncs)

	if res != vk.Success {
		err := swapchainError(res, "present")
		Logger().Warn("present failed", "slot", slot, "image", image, "err", err)
		return err
	}
	return frameErr
}

func (r *Renderer) record(slot, image int, list *CommandList) error {
	if err := r.pools[slot].Reset(); err != nil {
		return err
	}
	cb := r.buffers[slot]
	if err := cb.Begin(); err != nil {
		return err
	}
	cb.CmdBeginRenderPass(r.renderPass, r.framebuffers[image], r.opts.ClearValue)
	if err := list.Replay(cb); err != nil {
		return err
	}
	cb.CmdEndRenderPass()
	return cb.End()
}

// Draw replays the same list every frame.
func (r *Renderer) Draw(list *CommandList) error {
	return r.DrawFrame(func(FrameInfo) (*CommandList, error) {
		return list, nil
	})
}

// Rebuild recreates the swapchain and everything sized by it, after the
// device has gone idle. The previous swapchain is handed over as the old
// swapchain and destroyed afterwards. The slot index restarts at 0.
func (r *Renderer) Rebuild() error {
	if r.destroyed {
		return ErrDestroyed
	}
	if err := r.Device.WaitIdle(); err != nil {
		return err
	}

	old := r.swapchain
	r.swapchain = nil
	for i := len(r.syncs) - 1; i >= 0; i-- {
		r.syncs[i].Destroy()
	}
	r.syncs = nil
	for i := len(r.pools) - 1; i >= 0; i-- {
		r.pools[i].Destroy()
	}
	r.pools, r.buffers = nil, nil
	destroyFramebuffers(r.framebuffers)
	r.framebuffers = nil
	r.renderPass.Destroy()
	r.renderPass = nil

	err := r.build(old)
	old.Destroy()
	if err != nil {
		r.teardown()
		r.destroyed = true
		return err
	}
	return nil
}

// Destroy waits for every slot's last submission and destroys the owned
// objects in reverse creation order.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	var armed []*Fence
	for i, s := range r.syncs {
		if !r.disarmed[i] {
			armed = append(armed, s.InFlight)
		}
	}
	if err := r.Device.WaitForFences(true, -1, armed...); err != nil {
		Logger().Warn("waiting for frames before destroy", "err", err)
	}
	r.teardown()
	r.destroyed = true
}

// Slot is the index of the slot the next DrawFrame will use.
func (r *Renderer) Slot() int {
	return r.slot
}

func (r *Renderer) State(slot int) SlotState {
	return r.states[slot]
}

func (r *Renderer) NumberOfFrames() int {
	return r.swapchain.NumberOfFrames()
}

func (r *Renderer) Extent() vk.Extent2D {
	return r.swapchain.Extent
}

func (r *Renderer) Swapchain() *Swapchain {
	return r.swapchain
}

func (r *Renderer) RenderPass() *RenderPass {
	return r.renderPass
}

func (r *Renderer) Framebuffers() []*Framebuffer {
	return append([]*Framebuffer(nil), r.framebuffers...)
}

func (r *Renderer) CommandPools() []*CommandPool {
	return append([]*CommandPool(nil), r.pools...)
}

func (r *Renderer) FrameSyncs() []*FrameSync {
	return append([]*FrameSync(nil), r.syncs...)
}

func (r *Renderer) AppState() *AppState {
	return &r.app
}
