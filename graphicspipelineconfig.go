package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// GraphicsPipelineConfig collects the fixed function and shader state of a
// graphics pipeline. The render pass and extent are supplied when the
// pipeline is built, so one config can be rebuilt after a swapchain rebuild.
type GraphicsPipelineConfig struct {
	Device               *Device
	ShaderStages         []vk.PipelineShaderStageCreateInfo
	DescriptorSetLayouts []*DescriptorSetLayout
	PipelineLayout       *PipelineLayout

	// Configure runs last and may adjust the create info in place.
	Configure func(info *vk.GraphicsPipelineCreateInfo)

	// defaults to triangle list
	PrimitiveTopology      vk.PrimitiveTopology
	PrimitiveRestartEnable vk.Bool32
	PolygonMode            vk.PolygonMode
	LineWidth              float32
	// defaults to back face culling, counter clockwise front faces
	CullMode  vk.CullModeFlagBits
	FrontFace vk.FrontFace

	DynamicState []vk.DynamicState

	// BlendAttachments default to one attachment writing RGBA without blending.
	BlendAttachments []vk.PipelineColorBlendAttachmentState

	// The render pass has no depth attachment, so both default to false.
	DepthTestEnable  bool
	DepthWriteEnable bool

	VertexInputBindingDescriptions   []vk.VertexInputBindingDescription
	VertexInputAttributeDescriptions []vk.VertexInputAttributeDescription

	// Viewport overrides the full extent viewport.
	Viewport *vk.Viewport

	owned []Destroyer
}

func (d *Device) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return &GraphicsPipelineConfig{
		Device:                 d,
		PrimitiveTopology:      vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
		PolygonMode:            vk.PolygonModeFill,
		LineWidth:              1.0,
		CullMode:               vk.CullModeBackBit,
		FrontFace:              vk.FrontFaceCounterClockwise,
	}
}

// Destroy releases the shader modules the config loaded itself.
func (g *GraphicsPipelineConfig) Destroy() {
	for i := len(g.owned) - 1; i >= 0; i-- {
		g.owned[i].Destroy()
	}
	g.owned = nil
}

func (g *GraphicsPipelineConfig) AddBlendAttachment(ba vk.PipelineColorBlendAttachmentState) *GraphicsPipelineConfig {
	g.BlendAttachments = append(g.BlendAttachments, ba)
	return g
}

func (g *GraphicsPipelineConfig) SetCullMode(mode vk.CullModeFlagBits) *GraphicsPipelineConfig {
	g.CullMode = mode
	return g
}

func (g *GraphicsPipelineConfig) SetDynamicState(states ...vk.DynamicState) *GraphicsPipelineConfig {
	g.DynamicState = states
	return g
}

// AddShaderStage adds a stage backed by a module the caller owns.
func (g *GraphicsPipelineConfig) AddShaderStage(m *ShaderModule, entryPoint string, stage vk.ShaderStageFlagBits) *GraphicsPipelineConfig {
	g.ShaderStages = append(g.ShaderStages, m.VKPipelineShaderStageCreateInfo(stage, entryPoint))
	return g
}

// AddShaderStageFromBytes loads SPIR-V code into a module owned by the config.
func (g *GraphicsPipelineConfig) AddShaderStageFromBytes(code []byte, entryPoint string, stage vk.ShaderStageFlagBits) error {
	m, err := g.Device.LoadShaderModule(code)
	if err != nil {
		return err
	}
	g.owned = append(g.owned, m)
	g.AddShaderStage(m, entryPoint, stage)
	return nil
}

// AddShaderStageFromFile loads a SPIR-V file into a module owned by the config.
func (g *GraphicsPipelineConfig) AddShaderStageFromFile(file, entryPoint string, stage vk.ShaderStageFlagBits) error {
	m, err := g.Device.LoadShaderModuleFromFile(file)
	if err != nil {
		return err
	}
	g.owned = append(g.owned, m)
	g.AddShaderStage(m, entryPoint, stage)
	return nil
}

func (g *GraphicsPipelineConfig) SetPipelineLayout(layout *PipelineLayout) *GraphicsPipelineConfig {
	g.PipelineLayout = layout
	return g
}

// AddVertexSource adds the binding and attributes described by v.
func (g *GraphicsPipelineConfig) AddVertexSource(v VertexSource) *GraphicsPipelineConfig {
	g.VertexInputBindingDescriptions = append(g.VertexInputBindingDescriptions, v.GetBindingDesciption())
	g.VertexInputAttributeDescriptions = append(g.VertexInputAttributeDescriptions, v.GetAttributeDescriptions()...)
	return g
}

func (g *GraphicsPipelineConfig) AddDescriptorSetLayout(d *DescriptorSetLayout) *GraphicsPipelineConfig {
	g.DescriptorSetLayouts = append(g.DescriptorSetLayouts, d)
	return g
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// VKGraphicsPipelineCreateInfo builds the create info for a viewport covering
// extent. The render pass is left unset.
func (g *GraphicsPipelineConfig) VKGraphicsPipelineCreateInfo(extent vk.Extent2D) (vk.GraphicsPipelineCreateInfo, error) {
	if len(g.ShaderStages) == 0 {
		return vk.GraphicsPipelineCreateInfo{}, errors.New("graphics pipeline: no shader stages")
	}
	if g.PipelineLayout == nil {
		return vk.GraphicsPipelineCreateInfo{}, errors.New("graphics pipeline: no pipeline layout")
	}

	viewport := vk.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MaxDepth: 1.0,
	}
	if g.Viewport != nil {
		viewport = *g.Viewport
	}

	blend := g.BlendAttachments
	if len(blend) == 0 {
		blend = []vk.PipelineColorBlendAttachmentState{{
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
			BlendEnable:    vk.False,
		}}
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(g.ShaderStages)),
		PStages:    g.ShaderStages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(g.VertexInputBindingDescriptions)),
			PVertexBindingDescriptions:      g.VertexInputBindingDescriptions,
			VertexAttributeDescriptionCount: uint32(len(g.VertexInputAttributeDescriptions)),
			PVertexAttributeDescriptions:    g.VertexInputAttributeDescriptions,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               g.PrimitiveTopology,
			PrimitiveRestartEnable: g.PrimitiveRestartEnable,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{{Extent: extent}},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             g.PolygonMode,
			CullMode:                vk.CullModeFlags(g.CullMode),
			FrontFace:               g.FrontFace,
			DepthBiasEnable:         vk.False,
			LineWidth:               g.LineWidth,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			SampleShadingEnable:  vk.False,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  bool32(g.DepthTestEnable),
			DepthWriteEnable: bool32(g.DepthWriteEnable),
			DepthCompareOp:   vk.CompareOpLess,
			MaxDepthBounds:   1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: uint32(len(blend)),
			PAttachments:    blend,
		},
		Layout:  g.PipelineLayout.VKPipelineLayout,
		Subpass: 0,
	}
	if len(g.DynamicState) > 0 {
		info.PDynamicState = &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(g.DynamicState)),
			PDynamicStates:    g.DynamicState,
		}
	}

	if g.Configure != nil {
		g.Configure(&info)
	}
	return info, nil
}
