package vkframe

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// App is used to provide information about this specific application to Vulkan
type App struct {
	Name       string
	EngineName string
	Version    Version
	// APIVersion the expected minimum version of the Vulkan API, 1.0.0 if unset
	APIVersion Version

	EnabledLayers     []string
	EnabledExtensions []string
}

// SupportedLayers returns the names of the instance layers the loader offers.
func SupportedLayers(d Driver) ([]string, error) {
	layers, err := d.EnumerateInstanceLayerProperties()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance layers")
	}
	names := make([]string, len(layers))
	for i := range layers {
		names[i] = vk.ToString(layers[i].LayerName[:])
	}
	return names, nil
}

// SupportedExtensions returns the names of the instance extensions the loader offers.
func SupportedExtensions(d Driver) ([]string, error) {
	ext, err := d.EnumerateInstanceExtensionProperties()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	names := make([]string, len(ext))
	for i := range ext {
		names[i] = vk.ToString(ext[i].ExtensionName[:])
	}
	return names, nil
}

// EnableLayer enables layer if the loader supports it.
func (a *App) EnableLayer(d Driver, layer string) error {
	layers, err := SupportedLayers(d)
	if err != nil {
		return err
	}
	for _, l := range layers {
		if l == layer {
			a.EnabledLayers = append(a.EnabledLayers, layer)
			return nil
		}
	}
	return errors.Errorf("validation layer %q not found", layer)
}

// EnableExtension enables an instance extension.
func (a *App) EnableExtension(extension string) *App {
	for _, e := range a.EnabledExtensions {
		if e == extension {
			return a
		}
	}
	a.EnabledExtensions = append(a.EnabledExtensions, extension)
	return a
}

// EnableDebugging turns on the Khronos validation layer and debug reporting.
func (a *App) EnableDebugging(d Driver) error {
	if err := a.EnableLayer(d, "VK_LAYER_KHRONOS_validation"); err != nil {
		return err
	}
	a.EnableExtension("VK_EXT_debug_report")
	return nil
}

// VKApplicationInfo creates a structure representing this application in a Vulkan friendly format
func (a *App) VKApplicationInfo() vk.ApplicationInfo {
	api := a.APIVersion
	if api.Major < 1 {
		api = Version{Major: 1}
	}
	return vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         api.VKVersion(),
		ApplicationVersion: a.Version.VKVersion(),
		PApplicationName:   safeString(a.Name),
		PEngineName:        safeString(a.EngineName),
	}
}

// CreateInstance creates the Vulkan instance through d.
func (a *App) CreateInstance(d Driver) (*Instance, error) {
	appInfo := a.VKApplicationInfo()

	extensions := safeStrings(append([]string(nil), a.EnabledExtensions...))
	layers := safeStrings(append([]string(nil), a.EnabledLayers...))

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance, err := d.CreateInstance(&createInfo)
	if err != nil {
		return nil, initError(FailedCreateInstance, err)
	}
	Logger().Debug("instance created", "app", a.Name, "layers", len(layers), "extensions", len(extensions))
	return &Instance{Driver: d, VKInstance: instance}, nil
}

// Instance is an instance of the Vulkan subsystem
type Instance struct {
	Driver     Driver
	VKInstance vk.Instance

	debugCallback    vk.DebugReportCallback
	hasDebugCallback bool
}

// PhysicalDevices returns a list of physical devices known to Vulkan
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	devices, err := i.Driver.EnumeratePhysicalDevices(i.VKInstance)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}
	ret := make([]*PhysicalDevice, len(devices))
	for n, device := range devices {
		ret[n] = newPhysicalDevice(i.Driver, device)
	}
	return ret, nil
}

// ScorePhysicalDevice rates a device for rendering. Discrete GPUs beat
// integrated ones; ties are broken by the allocation count limit.
func ScorePhysicalDevice(props vk.PhysicalDeviceProperties) int {
	score := 0
	switch props.DeviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		score += 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		score += 500
	}
	score += int(props.Limits.MaxMemoryAllocationCount / 1024)
	return score
}

// PickPhysicalDevice returns the highest scoring physical device. A device
// scoring zero is never picked.
func (i *Instance) PickPhysicalDevice() (*PhysicalDevice, error) {
	devices, err := i.PhysicalDevices()
	if err != nil {
		return nil, initError(NoSuitablePhysicalDevice, err)
	}
	var best *PhysicalDevice
	bestScore := 0
	for _, pd := range devices {
		if s := ScorePhysicalDevice(pd.VKPhysicalDeviceProperties); s > bestScore {
			best, bestScore = pd, s
		}
	}
	if best == nil {
		return nil, initError(NoSuitablePhysicalDevice, errors.Errorf("%d devices considered", len(devices)))
	}
	Logger().Info("physical device selected", "name", best.DeviceName, "score", bestScore)
	return best, nil
}

// DestroySurface destroys a surface created for this instance by the
// windowing collaborator.
func (i *Instance) DestroySurface(surface vk.Surface) {
	i.Driver.DestroySurface(i.VKInstance, surface)
}

// UseDefaultDebugCallback routes validation messages to the package logger.
func (i *Instance) UseDefaultDebugCallback() error {
	return i.SetDebugCallback(DefaultDebugCallback)
}

// SetDebugCallback installs a debug report callback, replacing any previous one.
func (i *Instance) SetDebugCallback(callback vk.DebugReportCallbackFunc) error {
	if i.hasDebugCallback {
		i.Driver.DestroyDebugReportCallback(i.VKInstance, i.debugCallback)
		i.hasDebugCallback = false
	}
	cb, err := i.Driver.CreateDebugReportCallback(i.VKInstance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: callback,
	})
	if err != nil {
		return errors.Wrap(err, "create debug report callback")
	}
	i.debugCallback, i.hasDebugCallback = cb, true
	return nil
}

// DefaultDebugCallback logs validation messages at a level matching their flags.
func DefaultDebugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	l := Logger().With("layer", pLayerPrefix, "code", messageCode)
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		l.Error(pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		l.Warn(pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		l.Debug(pMessage)
	default:
		l.Info(pMessage)
	}
	return vk.Bool32(vk.False)
}

// Destroy destroys the debug callback, if any, and the instance.
func (i *Instance) Destroy() {
	if i.hasDebugCallback {
		i.Driver.DestroyDebugReportCallback(i.VKInstance, i.debugCallback)
	}
	i.Driver.DestroyInstance(i.VKInstance)
}
