/*
Package vkframe wraps the Vulkan objects needed to put frames on screen and
adds the per-frame recording and synchronization protocol on top of them.
Native structures remain reachable through the fields prefixed with VK, so
nothing here prevents an application from calling Vulkan directly.

Every native call goes through a Driver. NewVulkanDriver returns the one backed
by github.com/vulkan-go/vulkan; tests substitute their own.

Ownership

	Device		owns the logical device and its queues; destroyed last
	Swapchain	owns its image views, not its images
	Renderer	owns swapchain, render pass, framebuffers, and per slot pools and sync
	Framebuffer	references a render pass and an image view
	BoundBuffer	owns a buffer and the memory bound to it

Frames

A Renderer keeps one frame-in-flight slot per swapchain image. Each slot has a
command pool, a command buffer, a fence and two semaphores. DrawFrame waits on
the slot's fence, acquires an image, asks the application for a CommandList,
records it inside the render pass on the acquired image's framebuffer, submits
and presents. The slot index and the image index are unrelated.

	for !window.ShouldClose() {
		err := r.DrawFrame(func(f vkframe.FrameInfo) (*vkframe.CommandList, error) {
			return list, nil
		})
		if errors.Is(err, vkframe.ErrSwapchainOutOfDate) {
			err = r.Rebuild()
		}
		...
	}

Out of date swapchains are reported, never repaired inside DrawFrame.
*/
package vkframe
