package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandBufferState tracks where a command buffer is in its recording
// lifecycle. Submission does not change it; a submitted buffer stays
// Executable until it is reset.
type CommandBufferState int

const (
	CommandBufferInitial CommandBufferState = iota
	CommandBufferRecording
	CommandBufferExecutable
)

func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferInitial:
		return "initial"
	case CommandBufferRecording:
		return "recording"
	case CommandBufferExecutable:
		return "executable"
	}
	return fmt.Sprintf("CommandBufferState(%d)", int(s))
}

// CommandBuffer is a primary command buffer allocated from a CommandPool.
// The Cmd methods forward directly to the driver; they are only meaningful
// while the buffer is recording.
type CommandBuffer struct {
	Pool            *CommandPool
	VKCommandBuffer vk.CommandBuffer

	state CommandBufferState
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

func (c *CommandBuffer) State() CommandBufferState {
	return c.state
}

func (c *CommandBuffer) Recording() bool {
	return c.state == CommandBufferRecording
}

func (c *CommandBuffer) driver() Driver {
	return c.Pool.Device.Driver
}

// Begin capturing work for this command buffer. The buffer must be in the
// initial state: recorded buffers have to be reset first.
func (c *CommandBuffer) Begin() error {
	return c.begin(0)
}

// BeginOneTime begins capturing work that will be submitted only once.
func (c *CommandBuffer) BeginOneTime() error {
	return c.begin(vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit))
}

func (c *CommandBuffer) begin(flags vk.CommandBufferUsageFlags) error {
	if c.state != CommandBufferInitial {
		return errors.Wrapf(ErrNotReset, "begin in state %s", c.state)
	}
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	}
	if err := c.driver().BeginCommandBuffer(c.VKCommandBuffer, &info); err != nil {
		return initError(FailedRecordCommandBuffer, err)
	}
	c.state = CommandBufferRecording
	return nil
}

// End finishes recording, leaving the buffer executable.
func (c *CommandBuffer) End() error {
	if c.state != CommandBufferRecording {
		return errors.Wrapf(ErrNotRecording, "end in state %s", c.state)
	}
	if err := c.driver().EndCommandBuffer(c.VKCommandBuffer); err != nil {
		return initError(FailedRecordCommandBuffer, err)
	}
	c.state = CommandBufferExecutable
	return nil
}

// Reset returns this buffer to the initial state. The pool must have been
// created with the reset command buffer flag.
func (c *CommandBuffer) Reset() error {
	if err := c.driver().ResetCommandBuffer(c.VKCommandBuffer, 0); err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	c.state = CommandBufferInitial
	return nil
}

// ResetAndRelease will reset this commandbuffer and release the associated resources
func (c *CommandBuffer) ResetAndRelease() error {
	err := c.driver().ResetCommandBuffer(c.VKCommandBuffer, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
	if err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	c.state = CommandBufferInitial
	return nil
}

// CmdBeginRenderPass begins rp on fb covering the whole framebuffer, clearing
// the color attachment to clear.
func (c *CommandBuffer) CmdBeginRenderPass(rp *RenderPass, fb *Framebuffer, clear vk.ClearValue) {
	info := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rp.VKRenderPass,
		Framebuffer: fb.VKFramebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: fb.Extent,
		},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{clear},
	}
	c.driver().CmdBeginRenderPass(c.VKCommandBuffer, &info, vk.SubpassContentsInline)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	c.driver().CmdEndRenderPass(c.VKCommandBuffer)
}

func (c *CommandBuffer) CmdBindPipeline(bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	c.driver().CmdBindPipeline(c.VKCommandBuffer, bindPoint, pipeline)
}

func (c *CommandBuffer) CmdBindComputePipeline(p *ComputePipeline) {
	c.CmdBindPipeline(vk.PipelineBindPointCompute, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(p *GraphicsPipeline) {
	c.CmdBindPipeline(vk.PipelineBindPointGraphics, p.VKPipeline)
}

// CmdBindVertexBuffers binds buffers to consecutive bindings starting at
// firstBinding. offsets must have one entry per buffer.
func (c *CommandBuffer) CmdBindVertexBuffers(firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	c.driver().CmdBindVertexBuffers(c.VKCommandBuffer, firstBinding, buffers, offsets)
}

func (c *CommandBuffer) CmdBindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	c.driver().CmdBindIndexBuffer(c.VKCommandBuffer, buffer, offset, indexType)
}

func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet, dynamicOffsets []uint32) {
	c.driver().CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint, layout, firstSet, sets, dynamicOffsets)
}

func (c *CommandBuffer) CmdDraw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.driver().CmdDraw(c.VKCommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (c *CommandBuffer) CmdDrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	c.driver().CmdDrawIndexed(c.VKCommandBuffer, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (c *CommandBuffer) CmdDispatch(x, y, z int) {
	c.driver().CmdDispatch(c.VKCommandBuffer, uint32(x), uint32(y), uint32(z))
}

// CmdCopyBuffer copies size bytes from the start of src to the start of dst.
func (c *CommandBuffer) CmdCopyBuffer(src, dst vk.Buffer, size vk.DeviceSize) {
	c.driver().CmdCopyBuffer(c.VKCommandBuffer, src, dst, []vk.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})
}

func commandBufferHandles(bs []*CommandBuffer) []vk.CommandBuffer {
	ret := make([]vk.CommandBuffer, len(bs))
	for i := range bs {
		ret[i] = bs[i].VKCommandBuffer
	}
	return ret
}
