package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	info := vk.PipelineCacheCreateInfo{SType: vk.StructureTypePipelineCacheCreateInfo}
	cache, err := d.Driver.CreatePipelineCache(d.VKDevice, &info)
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline cache")
	}
	return &PipelineCache{Device: d, VKPipelineCache: cache}, nil
}

func (p *PipelineCache) Destroy() {
	p.Device.Driver.DestroyPipelineCache(p.Device.VKDevice, p.VKPipelineCache)
}

func (p *PipelineCache) handle() vk.PipelineCache {
	var none vk.PipelineCache
	if p == nil {
		return none
	}
	return p.VKPipelineCache
}

// GraphicsPipeline is a pipeline created from a GraphicsPipelineConfig for
// one render pass and extent. It must be rebuilt when either changes.
type GraphicsPipeline struct {
	Device     *Device
	Layout     *PipelineLayout
	VKPipeline vk.Pipeline
}

func (g *GraphicsPipeline) Destroy() {
	g.Device.Driver.DestroyPipeline(g.Device.VKDevice, g.VKPipeline)
}

// CreateGraphicsPipeline builds cfg against rp, subpass 0, with a viewport
// and scissor covering extent. cache may be nil.
func (d *Device) CreateGraphicsPipeline(cache *PipelineCache, cfg *GraphicsPipelineConfig, rp *RenderPass, extent vk.Extent2D) (*GraphicsPipeline, error) {
	info, err := cfg.VKGraphicsPipelineCreateInfo(extent)
	if err != nil {
		return nil, err
	}
	info.RenderPass = rp.VKRenderPass

	pipelines, err := d.Driver.CreateGraphicsPipelines(d.VKDevice, cache.handle(), []vk.GraphicsPipelineCreateInfo{info})
	if err != nil {
		return nil, errors.Wrap(err, "create graphics pipeline")
	}
	return &GraphicsPipeline{Device: d, Layout: cfg.PipelineLayout, VKPipeline: pipelines[0]}, nil
}

type ComputePipeline struct {
	Device                          *Device
	VKPipeline                      vk.Pipeline
	VKPipelineShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
	VKPipelineLayout                vk.PipelineLayout
}

func (c *ComputePipeline) SetPipelineLayout(layout *PipelineLayout) {
	c.VKPipelineLayout = layout.VKPipelineLayout
}

func (c *ComputePipeline) SetShaderStage(entryPoint string, shaderModule *ShaderModule) {
	c.VKPipelineShaderStageCreateInfo = shaderModule.VKPipelineShaderStageCreateInfo(vk.ShaderStageComputeBit, entryPoint)
}

func (c *ComputePipeline) Destroy() {
	c.Device.Driver.DestroyPipeline(c.Device.VKDevice, c.VKPipeline)
}

// CreateComputePipelines creates every pipeline in cp in one call and stores
// the handles back into them.
func (d *Device) CreateComputePipelines(pc *PipelineCache, cp ...*ComputePipeline) error {
	ci := make([]vk.ComputePipelineCreateInfo, len(cp))
	for i, p := range cp {
		ci[i] = vk.ComputePipelineCreateInfo{
			SType:  vk.StructureTypeComputePipelineCreateInfo,
			Stage:  p.VKPipelineShaderStageCreateInfo,
			Layout: p.VKPipelineLayout,
		}
	}

	pipelines, err := d.Driver.CreateComputePipelines(d.VKDevice, pc.handle(), ci)
	if err != nil {
		return errors.Wrap(err, "create compute pipelines")
	}
	for i := range pipelines {
		cp[i].Device = d
		cp[i].VKPipeline = pipelines[i]
	}
	return nil
}
