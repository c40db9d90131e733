package vkframe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
name = "quad"
width = 1280
height = 720
validation = true
swapchain_images = 2
clear_color = [0.1, 0.2, 0.3, 1.0]
present_modes = ["fifo_relaxed", "fifo"]
`))
	require.NoError(t, err)
	assert.Equal(t, "quad", cfg.Name)
	assert.Equal(t, 1280, cfg.Width)
	assert.True(t, cfg.Validation)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.ClearColor)
	assert.Equal(t, []string{"VK_KHR_swapchain"}, cfg.DeviceExtensions, "defaults are kept")

	opts, err := cfg.SwapchainOptions()
	require.NoError(t, err)
	assert.Equal(t, 2, opts.ImageCount)
	assert.Equal(t, []vk.PresentMode{vk.PresentModeFifoRelaxed, vk.PresentModeFifo}, opts.PresentModes)
	assert.Equal(t, vk.Extent2D{Width: 1280, Height: 720}, opts.ActualSize)
}

func TestParseConfigRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":           `width = `,
		"zero width":       `width = 0`,
		"negative height":  `height = -1`,
		"no images":        `swapchain_images = 0`,
		"unknown mode":     `present_modes = ["vsync"]`,
		"wrong field type": `width = "wide"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultSwapchainImages, cfg.SwapchainImages)

	modes, err := cfg.PresentModePreference()
	require.NoError(t, err)
	assert.Nil(t, modes, "no override")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"from file\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from file", cfg.Name)

	cfg, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Success, CodeOf(nil))
	assert.Equal(t, ResultCode(-1), CodeOf(errors.New("plain")))

	err := errors.Wrap(initError(FailedCreateFence, errInjected), "frame sync")
	assert.Equal(t, FailedCreateFence, CodeOf(err))
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, "frame sync: failed to create fence: injected failure", err.Error())

	assert.Equal(t, "failed to create render pass", FailedCreateRenderPass.String())
	assert.Equal(t, "ResultCode(99)", ResultCode(99).String())
	assert.Equal(t, "no suitable physical device", (&InitError{Code: NoSuitablePhysicalDevice}).Error())
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	NewLinearAllocator(8).Allocate(16, 1)
	assert.Contains(t, buf.String(), "allocator full")

	SetLogger(nil)
	buf.Reset()
	NewLinearAllocator(8).Allocate(16, 1)
	assert.Empty(t, buf.String())
}
