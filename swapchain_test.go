package vkframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestChoosePresentMode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{"mailbox", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{"mailbox over immediate", []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{"immediate", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{"fifo", []vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeFifo},
		{"fifo relaxed is not preferred", []vk.PresentMode{vk.PresentModeFifoRelaxed, vk.PresentModeFifo}, vk.PresentModeFifo},
		{"nothing reported", nil, vk.PresentModeFifo},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChoosePresentMode(tc.modes))
		})
	}
}

func TestChoosePresentModeFrom(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox, vk.PresentModeFifoRelaxed}
	assert.Equal(t, vk.PresentModeFifoRelaxed,
		ChoosePresentModeFrom(modes, []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed}))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentModeFrom(modes, nil))
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vk.Extent2D{Width: 640, Height: 480},
	}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, ChooseExtent(caps))

	caps.CurrentExtent = vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, ChooseExtent(caps))

	caps.CurrentExtent = vk.Extent2D{Width: 300, Height: vk.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 300, Height: 480}, ChooseExtent(caps))
}

func TestChooseSurfaceFormat(t *testing.T) {
	f := newFakeDriver()
	d := newTestDevice(t, f)
	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	got, err := ChooseSurfaceFormat(d.PhysicalDevice, formats, usage)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Srgb, got.Format)

	f.unsupported[vk.FormatR8g8b8a8Srgb] = true
	got, err = ChooseSurfaceFormat(d.PhysicalDevice, formats, usage)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, got.Format)

	f.unsupported[vk.FormatB8g8r8a8Unorm] = true
	_, err = ChooseSurfaceFormat(d.PhysicalDevice, formats, usage)
	assert.ErrorIs(t, err, ErrFormatNotSupported)

	_, err = ChooseSurfaceFormat(d.PhysicalDevice, nil, usage)
	assert.ErrorIs(t, err, ErrFormatNotSupported)
}

func TestCreateSwapchain(t *testing.T) {
	f := newFakeDriver()
	f.imageCount = 4
	f.caps.CurrentTransform = vk.SurfaceTransformRotate90Bit
	d := newTestDevice(t, f)
	surface := create[vk.Surface](f, "surface")
	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)

	s, err := d.CreateSwapchain(surface, usage, &SwapchainOptions{ImageCount: 2})
	require.NoError(t, err)

	require.Len(t, f.swapchainInfos, 1)
	info := f.swapchainInfos[0]
	assert.EqualValues(t, 2, info.MinImageCount)
	assert.Equal(t, vk.PresentModeMailbox, info.PresentMode)
	assert.Equal(t, vk.SurfaceTransformRotate90Bit, info.PreTransform)
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, info.ImageExtent)
	assert.Equal(t, usage, info.ImageUsage)
	assert.Equal(t, "null", nameOf(f, info.OldSwapchain))

	assert.Equal(t, 4, s.NumberOfFrames(), "the returned image count is authoritative")
	require.Len(t, s.ImageViews, 4)
	for i, view := range s.ImageViews {
		assert.Contains(t, f.callsWith("CreateImageView"),
			"CreateImageView "+nameOf(f, view.VKImageView)+" image="+nameOf(f, s.Images[i]))
	}

	s.Destroy()
	calls := f.callsWith("Destroy")
	require.Len(t, calls, 5)
	assert.Equal(t, "DestroySwapchain "+nameOf(f, s.VKSwapchain), calls[4], "views go first")
	assert.Empty(t, f.violations)
}

func TestCreateSwapchainDefaults(t *testing.T) {
	f := newFakeDriver()
	f.presentModes = []vk.PresentMode{vk.PresentModeFifo}
	d := newTestDevice(t, f)
	surface := create[vk.Surface](f, "surface")

	s, err := d.CreateSwapchain(surface, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit), nil)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultSwapchainImages, f.swapchainInfos[0].MinImageCount)
	assert.Equal(t, vk.PresentModeFifo, s.PresentMode)

	old := s
	s, err = d.CreateSwapchain(surface, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		&SwapchainOptions{OldSwapchain: old, PresentModes: []vk.PresentMode{vk.PresentModeImmediate}})
	require.NoError(t, err)
	assert.Equal(t, nameOf(f, old.VKSwapchain), nameOf(f, f.swapchainInfos[1].OldSwapchain))
	assert.Equal(t, vk.PresentModeFifo, s.PresentMode)
}

func TestCreateSwapchainFailures(t *testing.T) {
	f := newFakeDriver()
	d := newTestDevice(t, f)
	surface := create[vk.Surface](f, "surface")
	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)

	f.failures["CreateSwapchain"] = errInjected
	_, err := d.CreateSwapchain(surface, usage, nil)
	assert.Equal(t, FailedCreateSwapchain, CodeOf(err))
	delete(f.failures, "CreateSwapchain")

	f.unsupported[vk.FormatB8g8r8a8Unorm] = true
	_, err = d.CreateSwapchain(surface, usage, nil)
	assert.Equal(t, FailedCreateSwapchain, CodeOf(err))
	assert.ErrorIs(t, err, ErrFormatNotSupported)
	delete(f.unsupported, vk.FormatB8g8r8a8Unorm)

	f.failures["CreateImageView"] = errInjected
	_, err = d.CreateSwapchain(surface, usage, nil)
	assert.Equal(t, FailedCreateSwapchainViewImages, CodeOf(err))
	assert.Zero(t, f.liveKinds()["swapchain"], "a half built swapchain is destroyed")
	assert.Empty(t, f.violations)
}

func TestSwapchainError(t *testing.T) {
	assert.NoError(t, swapchainError(vk.Success, "present"))
	assert.ErrorIs(t, swapchainError(vk.ErrorOutOfDate, "present"), ErrSwapchainOutOfDate)
	assert.ErrorIs(t, swapchainError(vk.Suboptimal, "present"), ErrSwapchainOutOfDate)

	err := swapchainError(vk.ErrorDeviceLost, "acquire next image")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSwapchainOutOfDate)
}
