package vkframe

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func emptyFrame(FrameInfo) (*CommandList, error) {
	return nil, nil
}

func assertFrameCounts(t *testing.T, r *Renderer, n int) {
	t.Helper()
	assert.Equal(t, n, r.NumberOfFrames())
	assert.Len(t, r.Swapchain().Images, n)
	assert.Len(t, r.Swapchain().ImageViews, n)
	assert.Len(t, r.Framebuffers(), n)
	assert.Len(t, r.CommandPools(), n)
	assert.Len(t, r.FrameSyncs(), n)
}

func TestRendererSizesEverythingByImageCount(t *testing.T) {
	f := newFakeDriver()
	f.imageCount = 4
	r := newTestRenderer(t, f, &RendererOptions{Swapchain: &SwapchainOptions{ImageCount: 2}})

	assertFrameCounts(t, r, 4)
	for i, fb := range r.Framebuffers() {
		assert.Same(t, r.Swapchain().ImageViews[i], fb.View, "framebuffer %d", i)
		assert.Same(t, r.RenderPass(), fb.RenderPass)
		assert.Equal(t, r.Extent(), fb.Extent)
	}
	for _, s := range r.FrameSyncs() {
		assert.True(t, s.InFlight.Signaled())
	}
	assert.Equal(t, 0, r.Slot())
}

func TestRendererDrawsManyFrames(t *testing.T) {
	f := newFakeDriver()
	f.imageCount = 2
	r := newTestRenderer(t, f, nil)

	var slots, images []int
	frame := func(info FrameInfo) (*CommandList, error) {
		slots = append(slots, info.Slot)
		images = append(images, info.Image)
		assert.Equal(t, uint64(len(slots)-1), info.State.Frame)
		return NewCommandList().Draw(3, 1, 0, 0), nil
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, r.DrawFrame(frame), "frame %d", i)
	}

	assert.Empty(t, f.violations)
	assert.Len(t, f.presented, 50)
	assert.EqualValues(t, 50, r.AppState().Frame)
	for i, s := range slots {
		assert.Equal(t, i%2, s)
	}
	for i := 0; i < r.NumberOfFrames(); i++ {
		assert.Equal(t, SlotIdle, r.State(i))
	}

	r.Destroy()
	assert.Empty(t, f.violations)
	assert.Equal(t, map[string]int{"instance": 1, "device": 1, "surface": 1}, f.liveKinds())
}

func TestRendererRecordsIntoAcquiredImagesFramebuffer(t *testing.T) {
	f := newFakeDriver()
	f.acquireOrder = []uint32{2, 0, 1}
	r := newTestRenderer(t, f, nil)

	var got []FrameInfo
	frame := func(info FrameInfo) (*CommandList, error) {
		got = append(got, info)
		return NewCommandList().Draw(3, 1, 0, 0), nil
	}
	for slot, image := range []int{2, 0, 1} {
		require.NoError(t, r.DrawFrame(frame))
		assert.Equal(t, slot, got[slot].Slot)
		assert.Equal(t, image, got[slot].Image)

		fb := r.Framebuffers()[image]
		rp := r.RenderPass()
		assert.Equal(t, []string{
			"BeginRenderPass " + nameOf(f, rp.VKRenderPass) + " " + nameOf(f, fb.VKFramebuffer) + " 800x600",
			"Draw 3 1 0 0",
			"EndRenderPass",
		}, f.recorded(r.buffers[slot]))
	}
	assert.Equal(t, []uint32{2, 0, 1}, f.presented)
	assert.Empty(t, f.violations)
}

func TestRendererAcquireFailureDoesNotAdvance(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	f.acquireResults = []vk.Result{vk.ErrorOutOfDate}
	called := false
	err := r.DrawFrame(func(FrameInfo) (*CommandList, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrSwapchainOutOfDate)
	assert.False(t, called)
	assert.Equal(t, 0, r.Slot())
	assert.Empty(t, f.presented)

	// the slot's fence was reset without a submission, so the retry must not
	// wait on it
	require.NoError(t, r.DrawFrame(emptyFrame))
	assert.Equal(t, 1, r.Slot())
	assert.Empty(t, f.violations)

	for i := 0; i < 10; i++ {
		require.NoError(t, r.DrawFrame(emptyFrame))
	}
	assert.Empty(t, f.violations)
}

func TestRendererDestroyAfterAcquireFailure(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	require.NoError(t, r.DrawFrame(emptyFrame))
	f.acquireResults = []vk.Result{vk.ErrorDeviceLost}
	err := r.DrawFrame(emptyFrame)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSwapchainOutOfDate)

	r.Destroy()
	assert.Empty(t, f.violations, "a disarmed fence is not waited on")
}

func TestRendererSuboptimalAcquireStillDraws(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	f.acquireResults = []vk.Result{vk.Suboptimal}
	require.NoError(t, r.DrawFrame(emptyFrame))
	assert.Len(t, f.presented, 1)
	assert.Equal(t, 1, r.Slot())
}

func TestRendererPresentFailureAdvances(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	f.presentResults = []vk.Result{vk.ErrorOutOfDate}
	err := r.DrawFrame(emptyFrame)
	assert.ErrorIs(t, err, ErrSwapchainOutOfDate)
	assert.Equal(t, 1, r.Slot(), "the submission was made")
	assert.Equal(t, fencePending, f.fenceOf(r.FrameSyncs()[0].InFlight))

	require.NoError(t, r.Rebuild())
	assert.Equal(t, 0, r.Slot())
	for i := 0; i < 6; i++ {
		require.NoError(t, r.DrawFrame(emptyFrame))
	}
	assert.Empty(t, f.violations)
}

func TestRendererFrameCallbackErrorStillPresents(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	boom := errors.New("boom")
	err := r.DrawFrame(func(FrameInfo) (*CommandList, error) {
		return NewCommandList().Draw(3, 1, 0, 0), boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.presented, 1)
	assert.Equal(t, 1, r.Slot())
	assert.Equal(t, []string{
		"BeginRenderPass " + nameOf(f, r.RenderPass().VKRenderPass) + " " + nameOf(f, r.Framebuffers()[0].VKFramebuffer) + " 800x600",
		"EndRenderPass",
	}, f.recorded(r.buffers[0]), "the failed frame's commands are dropped")

	require.NoError(t, r.DrawFrame(emptyFrame))
	assert.Empty(t, f.violations)
}

func TestRendererRecordFailureStillPresents(t *testing.T) {
	for _, method := range []string{"ResetCommandPool", "BeginCommandBuffer", "EndCommandBuffer"} {
		t.Run(method, func(t *testing.T) {
			f := newFakeDriver()
			r := newTestRenderer(t, f, nil)
			list := NewCommandList().Draw(3, 1, 0, 0)

			f.failures[method] = errInjected
			err := r.DrawFrame(func(FrameInfo) (*CommandList, error) { return list, nil })
			assert.ErrorIs(t, err, errInjected)
			assert.Equal(t, []uint32{0}, f.presented, "the acquired image is presented")
			assert.Equal(t, 1, r.Slot())
			assert.Equal(t, fencePending, f.fenceOf(r.FrameSyncs()[0].InFlight))
			assert.Empty(t, f.violations)

			delete(f.failures, method)
			for i := 0; i < 2*r.NumberOfFrames(); i++ {
				require.NoError(t, r.Draw(list), "frame %d", i)
			}
			assert.Empty(t, f.violations)
			r.Destroy()
			assert.Empty(t, f.violations)
		})
	}
}

func TestRendererEndFailureFallsBackToEmptyPass(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	// the first attempt fails at End, the empty pass records cleanly
	f.failOnce["EndCommandBuffer"] = errInjected
	err := r.Draw(NewCommandList().Draw(3, 1, 0, 0))
	assert.ErrorIs(t, err, errInjected)
	assert.Len(t, f.presented, 1)
	assert.Equal(t, []string{
		"BeginRenderPass " + nameOf(f, r.RenderPass().VKRenderPass) + " " + nameOf(f, r.Framebuffers()[0].VKFramebuffer) + " 800x600",
		"EndRenderPass",
	}, f.recorded(r.buffers[0]))
	assert.Empty(t, f.violations)
}

func TestRendererSubmitFailureRequiresRebuild(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	f.failures["QueueSubmit"] = errInjected
	err := r.DrawFrame(emptyFrame)
	assert.ErrorIs(t, err, ErrRebuildRequired)
	assert.Contains(t, err.Error(), errInjected.Error())
	assert.Empty(t, f.presented)
	delete(f.failures, "QueueSubmit")

	acquires := len(f.callsWith("AcquireNextImage"))
	assert.ErrorIs(t, r.DrawFrame(emptyFrame), ErrRebuildRequired)
	assert.Len(t, f.callsWith("AcquireNextImage"), acquires, "the held semaphore is not signaled again")

	require.NoError(t, r.Rebuild())
	for i := 0; i < 6; i++ {
		require.NoError(t, r.DrawFrame(emptyFrame))
	}
	r.Destroy()
	assert.Empty(t, f.violations)
}

func TestRendererDestroyAfterSubmitFailure(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	require.NoError(t, r.DrawFrame(emptyFrame))
	f.failures["QueueSubmit"] = errInjected
	assert.ErrorIs(t, r.DrawFrame(emptyFrame), ErrRebuildRequired)
	delete(f.failures, "QueueSubmit")

	r.Destroy()
	assert.Equal(t, map[string]int{"instance": 1, "device": 1, "surface": 1}, f.liveKinds())
	assert.Empty(t, f.violations)
}

func TestRendererRebuild(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)

	require.NoError(t, r.DrawFrame(emptyFrame))
	require.NoError(t, r.DrawFrame(emptyFrame))
	assert.Equal(t, 2, r.Slot())

	old := r.Swapchain()
	f.imageCount = 5
	f.caps.CurrentExtent = vk.Extent2D{Width: 1024, Height: 768}
	require.NoError(t, r.Rebuild())

	assert.Equal(t, 0, r.Slot())
	assertFrameCounts(t, r, 5)
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, r.Extent())
	require.Len(t, f.swapchainInfos, 2)
	assert.Equal(t, nameOf(f, old.VKSwapchain), nameOf(f, f.swapchainInfos[1].OldSwapchain))
	assert.Equal(t, 5, f.liveKinds()["view"], "the old views are gone")
	assert.Equal(t, 1, f.liveKinds()["swapchain"])

	for i := 0; i < 12; i++ {
		require.NoError(t, r.DrawFrame(emptyFrame))
	}
	assert.Empty(t, f.violations)
}

func TestRendererUseAfterDestroy(t *testing.T) {
	f := newFakeDriver()
	r := newTestRenderer(t, f, nil)
	r.Destroy()
	r.Destroy()

	assert.ErrorIs(t, r.DrawFrame(emptyFrame), ErrDestroyed)
	assert.ErrorIs(t, r.Rebuild(), ErrDestroyed)
	assert.Empty(t, f.violations)
}

func TestRendererBuildFailureCleansUp(t *testing.T) {
	for _, tc := range []struct {
		method string
		code   ResultCode
	}{
		{"CreateSwapchain", FailedCreateSwapchain},
		{"CreateImageView", FailedCreateSwapchainViewImages},
		{"CreateRenderPass", FailedCreateRenderPass},
		{"CreateFramebuffer", FailedCreateSwapchainFramebuffer},
		{"CreateCommandPool", FailedCreateCommandPool},
		{"AllocateCommandBuffers", FailedAllocateCommandBuffer},
		{"CreateFence", FailedCreateFence},
		{"CreateSemaphore", FailedCreateSemaphore},
	} {
		t.Run(tc.method, func(t *testing.T) {
			f := newFakeDriver()
			d := newTestDevice(t, f)
			surface := create[vk.Surface](f, "surface")
			f.failures[tc.method] = errInjected

			_, err := d.NewRenderer(surface, newTestQueue(t, d), nil)
			assert.Equal(t, tc.code, CodeOf(err))
			assert.Equal(t, map[string]int{"instance": 1, "device": 1, "surface": 1}, f.liveKinds())
			assert.Empty(t, f.violations)
		})
	}
}

func TestRendererClearValueAndData(t *testing.T) {
	f := newFakeDriver()
	data := struct{ name string }{"scene"}
	r := newTestRenderer(t, f, &RendererOptions{Data: data})

	var seen any
	require.NoError(t, r.DrawFrame(func(info FrameInfo) (*CommandList, error) {
		seen = info.State.Data
		assert.Equal(t, r.Extent(), info.Extent)
		return nil, nil
	}))
	assert.Equal(t, data, seen)
}
