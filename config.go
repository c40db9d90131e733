package vkframe

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Config holds the settings an application reads at startup.
type Config struct {
	Name       string `toml:"name"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Validation bool   `toml:"validation"`

	// SwapchainImages is the number of images requested from the
	// presentation engine. The engine may return a different count.
	SwapchainImages int `toml:"swapchain_images"`

	ClearColor [4]float32 `toml:"clear_color"`

	// PresentModes overrides the present mode preference, most preferred
	// first. Accepted names are mailbox, immediate, fifo_relaxed and fifo.
	PresentModes []string `toml:"present_modes"`

	DeviceExtensions []string `toml:"device_extensions"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Name:             "vkframe",
		Width:            800,
		Height:           600,
		SwapchainImages:  DefaultSwapchainImages,
		ClearColor:       [4]float32{0, 0, 0, 1},
		DeviceExtensions: []string{"VK_KHR_swapchain"},
	}
}

// ParseConfig decodes TOML over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}

// Validate checks that the configured values are usable.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.SwapchainImages < 1 {
		return errors.Errorf("swapchain_images must be positive, got %d", c.SwapchainImages)
	}
	if _, err := c.PresentModePreference(); err != nil {
		return err
	}
	return nil
}

var presentModeNames = map[string]vk.PresentMode{
	"mailbox":      vk.PresentModeMailbox,
	"immediate":    vk.PresentModeImmediate,
	"fifo_relaxed": vk.PresentModeFifoRelaxed,
	"fifo":         vk.PresentModeFifo,
}

// PresentModePreference converts PresentModes to native values. It returns nil
// when no override is configured.
func (c Config) PresentModePreference() ([]vk.PresentMode, error) {
	if len(c.PresentModes) == 0 {
		return nil, nil
	}
	modes := make([]vk.PresentMode, 0, len(c.PresentModes))
	for _, name := range c.PresentModes {
		m, ok := presentModeNames[name]
		if !ok {
			return nil, errors.Errorf("unknown present mode %q", name)
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// ClearValue returns ClearColor as a native clear value.
func (c Config) ClearValue() vk.ClearValue {
	return vk.NewClearValue(c.ClearColor[:])
}

// SwapchainOptions returns swapchain options matching the configuration.
func (c Config) SwapchainOptions() (*SwapchainOptions, error) {
	modes, err := c.PresentModePreference()
	if err != nil {
		return nil, err
	}
	return &SwapchainOptions{
		ImageCount:   c.SwapchainImages,
		PresentModes: modes,
		ActualSize:   vk.Extent2D{Width: uint32(c.Width), Height: uint32(c.Height)},
	}, nil
}
