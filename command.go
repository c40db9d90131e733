package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BindPoint selects the pipeline a bind command applies to.
type BindPoint int

const (
	GraphicsBindPoint BindPoint = iota
	ComputeBindPoint
)

// VK panics on a value outside the declared bind points.
func (b BindPoint) VK() vk.PipelineBindPoint {
	switch b {
	case GraphicsBindPoint:
		return vk.PipelineBindPointGraphics
	case ComputeBindPoint:
		return vk.PipelineBindPointCompute
	}
	panic(fmt.Sprintf("vkframe: unknown bind point %d", int(b)))
}

func (b BindPoint) String() string {
	switch b {
	case GraphicsBindPoint:
		return "graphics"
	case ComputeBindPoint:
		return "compute"
	}
	return fmt.Sprintf("BindPoint(%d)", int(b))
}

// Command is one recordable action. The set of commands is closed; Record
// issues exactly one native call with the stored operands.
type Command interface {
	Record(cb *CommandBuffer)
	command()
}

// BindPointer is a command that applies to one pipeline bind point, resolved
// when the command is recorded.
type BindPointer interface {
	Command
	BindPoint() BindPoint
}

var (
	_ BindPointer = PipelineBind{}
	_ BindPointer = DescriptorSetBind{}
)

// PipelineBind binds a pipeline at its bind point.
type PipelineBind struct {
	Point    BindPoint
	Pipeline vk.Pipeline
}

func (c PipelineBind) BindPoint() BindPoint { return c.Point }

func (c PipelineBind) Record(cb *CommandBuffer) {
	cb.CmdBindPipeline(c.BindPoint().VK(), c.Pipeline)
}

// VertexBufferBind binds Buffers to consecutive bindings starting at
// FirstBinding, each at the matching entry of Offsets.
type VertexBufferBind struct {
	FirstBinding uint32
	Buffers      []vk.Buffer
	Offsets      []vk.DeviceSize
}

func (c VertexBufferBind) Record(cb *CommandBuffer) {
	cb.CmdBindVertexBuffers(c.FirstBinding, c.Buffers, c.Offsets)
}

type IndexBufferBind struct {
	Buffer    vk.Buffer
	Offset    vk.DeviceSize
	IndexType vk.IndexType
}

func (c IndexBufferBind) Record(cb *CommandBuffer) {
	cb.CmdBindIndexBuffer(c.Buffer, c.Offset, c.IndexType)
}

type DescriptorSetBind struct {
	Point          BindPoint
	Layout         vk.PipelineLayout
	FirstSet       uint32
	Sets           []vk.DescriptorSet
	DynamicOffsets []uint32
}

func (c DescriptorSetBind) BindPoint() BindPoint { return c.Point }

func (c DescriptorSetBind) Record(cb *CommandBuffer) {
	cb.CmdBindDescriptorSets(c.BindPoint().VK(), c.Layout, c.FirstSet, c.Sets, c.DynamicOffsets)
}

type Draw struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

func (c Draw) Record(cb *CommandBuffer) {
	cb.CmdDraw(c.VertexCount, c.InstanceCount, c.FirstVertex, c.FirstInstance)
}

type DrawIndexed struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

func (c DrawIndexed) Record(cb *CommandBuffer) {
	cb.CmdDrawIndexed(c.IndexCount, c.InstanceCount, c.FirstIndex, c.VertexOffset, c.FirstInstance)
}

func (PipelineBind) command()      {}
func (VertexBufferBind) command()  {}
func (IndexBufferBind) command()   {}
func (DescriptorSetBind) command() {}
func (Draw) command()              {}
func (DrawIndexed) command()       {}

// CommandList is an ordered sequence of commands that can be replayed into
// any recording command buffer. The list itself holds no native state.
type CommandList struct {
	cmds []Command
}

func NewCommandList(cmds ...Command) *CommandList {
	return &CommandList{cmds: append([]Command(nil), cmds...)}
}

func (l *CommandList) Add(cmds ...Command) *CommandList {
	l.cmds = append(l.cmds, cmds...)
	return l
}

func (l *CommandList) BindPipeline(point BindPoint, p vk.Pipeline) *CommandList {
	return l.Add(PipelineBind{Point: point, Pipeline: p})
}

func (l *CommandList) BindGraphicsPipeline(p *GraphicsPipeline) *CommandList {
	return l.BindPipeline(GraphicsBindPoint, p.VKPipeline)
}

func (l *CommandList) BindVertexBuffers(firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) *CommandList {
	return l.Add(VertexBufferBind{FirstBinding: firstBinding, Buffers: buffers, Offsets: offsets})
}

func (l *CommandList) BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) *CommandList {
	return l.Add(IndexBufferBind{Buffer: buffer, Offset: offset, IndexType: indexType})
}

func (l *CommandList) BindDescriptorSets(point BindPoint, layout vk.PipelineLayout, firstSet uint32, sets ...vk.DescriptorSet) *CommandList {
	return l.Add(DescriptorSetBind{Point: point, Layout: layout, FirstSet: firstSet, Sets: sets})
}

func (l *CommandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) *CommandList {
	return l.Add(Draw{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

func (l *CommandList) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) *CommandList {
	return l.Add(DrawIndexed{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		VertexOffset:  vertexOffset,
		FirstInstance: firstInstance,
	})
}

func (l *CommandList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.cmds)
}

// Commands returns a copy of the commands in insertion order.
func (l *CommandList) Commands() []Command {
	if l == nil {
		return nil
	}
	return append([]Command(nil), l.cmds...)
}

// Replay records every command into cb in insertion order. cb must be
// recording. A nil list replays nothing.
func (l *CommandList) Replay(cb *CommandBuffer) error {
	if !cb.Recording() {
		return errors.Wrapf(ErrNotRecording, "replay in state %s", cb.State())
	}
	if l == nil {
		return nil
	}
	for _, c := range l.cmds {
		c.Record(cb)
	}
	return nil
}

// Record begins cb, replays the list and ends cb. A buffer that was recorded
// before has to be reset first; otherwise ErrNotReset is returned and cb is
// left untouched.
func (l *CommandList) Record(cb *CommandBuffer) error {
	if err := cb.Begin(); err != nil {
		return err
	}
	if err := l.Replay(cb); err != nil {
		return err
	}
	return cb.End()
}
