package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SurfaceFunc creates a presentation surface for instance. The windowing
// library supplies it; the surface is destroyed by the GraphicsApp.
type SurfaceFunc func(instance vk.Instance) (vk.Surface, error)

// GraphicsApp is a utility object which implements many of the core
// requirements to get to a functioning Vulkan app. Init creates, in order, the
// instance, the surface, the logical device with one graphics and present
// queue, a transfer command pool with its Stager and finally the Renderer.
// Destroy tears all of it down in reverse.
type GraphicsApp struct {
	Config Config
	Driver Driver
	App    *App

	Instance       *Instance
	VKSurface      vk.Surface
	PhysicalDevice *PhysicalDevice
	Device         *Device
	GraphicsQueue  *Queue
	TransferPool   *CommandPool
	Stager         *Stager
	Renderer       *Renderer

	hasSurface bool
}

// NewGraphicsApp prepares an application described by cfg. extensions are the
// instance extensions the windowing library needs for its surfaces.
func NewGraphicsApp(d Driver, cfg Config, extensions ...string) *GraphicsApp {
	app := &App{Name: cfg.Name, EngineName: "vkframe", Version: Version{Major: 1}}
	for _, e := range extensions {
		app.EnableExtension(e)
	}
	return &GraphicsApp{Config: cfg, Driver: d, App: app}
}

// Init builds everything up to a Renderer ready to draw. On failure the
// objects built so far are destroyed and the error carries the result code of
// the failed step.
func (g *GraphicsApp) Init(createSurface SurfaceFunc) error {
	if err := g.init(createSurface); err != nil {
		g.Destroy()
		return err
	}
	return nil
}

func (g *GraphicsApp) init(createSurface SurfaceFunc) error {
	if g.Config.Validation {
		if err := g.App.EnableDebugging(g.Driver); err != nil {
			Logger().Warn("validation unavailable", "err", err)
		}
	}

	var err error
	g.Instance, err = g.App.CreateInstance(g.Driver)
	if err != nil {
		return err
	}
	if g.Config.Validation {
		if err := g.Instance.UseDefaultDebugCallback(); err != nil {
			Logger().Warn("debug callback unavailable", "err", err)
		}
	}

	g.VKSurface, err = createSurface(g.Instance.VKInstance)
	if err != nil {
		return initError(FailedCreateSurface, err)
	}
	g.hasSurface = true

	g.PhysicalDevice, err = g.Instance.PickPhysicalDevice()
	if err != nil {
		return err
	}

	families := g.PhysicalDevice.QueueFamilies().FilterGraphicsAndPresent(g.VKSurface)
	if len(families) == 0 {
		return initError(FailedCreateDevice, errors.Wrap(ErrQueueNotFound, "no family supports graphics and present"))
	}
	family := families[0]

	g.Device, err = g.PhysicalDevice.CreateDevice([]QueueRequest{family.Request(1)}, g.Config.DeviceExtensions, nil)
	if err != nil {
		return err
	}
	g.GraphicsQueue, err = g.Device.GetQueue(uint32(family.Index), 0)
	if err != nil {
		return err
	}

	g.TransferPool, err = g.Device.CreateCommandPool(uint32(family.Index),
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit))
	if err != nil {
		return err
	}
	g.Stager = &Stager{Device: g.Device, Pool: g.TransferPool, Queue: g.GraphicsQueue}

	swapchainOpts, err := g.Config.SwapchainOptions()
	if err != nil {
		return err
	}
	g.Renderer, err = g.Device.NewRenderer(g.VKSurface, g.GraphicsQueue, &RendererOptions{
		Swapchain:  swapchainOpts,
		ClearValue: g.Config.ClearValue(),
	})
	return err
}

// Destroy waits for the device to go idle and destroys everything Init
// created. It is safe to call after a failed Init.
func (g *GraphicsApp) Destroy() {
	if g.Device != nil {
		if err := g.Device.WaitIdle(); err != nil {
			Logger().Warn("device wait idle", "err", err)
		}
	}
	if g.Renderer != nil {
		g.Renderer.Destroy()
		g.Renderer = nil
	}
	g.Stager = nil
	if g.TransferPool != nil {
		g.TransferPool.Destroy()
		g.TransferPool = nil
	}
	g.GraphicsQueue = nil
	if g.Device != nil {
		g.Device.Destroy()
		g.Device = nil
	}
	if g.hasSurface {
		g.Instance.DestroySurface(g.VKSurface)
		g.hasSurface = false
	}
	if g.Instance != nil {
		g.Instance.Destroy()
		g.Instance = nil
	}
}
