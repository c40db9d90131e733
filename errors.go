package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// ResultCode identifies which step of renderer construction failed.
type ResultCode int

const (
	Success ResultCode = iota
	FailedCreateInstance
	FailedCreateSurface
	NoSuitablePhysicalDevice
	FailedCreateDevice
	FailedCreateSwapchain
	FailedCreateSwapchainViewImages
	FailedCreateSwapchainFramebuffer
	FailedCreateRenderPass
	FailedCreateCommandPool
	FailedAllocateCommandBuffer
	FailedCreateFence
	FailedCreateSemaphore
	FailedCreateBuffer
	FailedAllocateMemory
	FailedRecordCommandBuffer
)

var resultCodeNames = [...]string{
	Success:                          "success",
	FailedCreateInstance:             "failed to create instance",
	FailedCreateSurface:              "failed to create surface",
	NoSuitablePhysicalDevice:         "no suitable physical device",
	FailedCreateDevice:               "failed to create device",
	FailedCreateSwapchain:            "failed to create swapchain",
	FailedCreateSwapchainViewImages:  "failed to create swapchain image views",
	FailedCreateSwapchainFramebuffer: "failed to create swapchain framebuffer",
	FailedCreateRenderPass:           "failed to create render pass",
	FailedCreateCommandPool:          "failed to create command pool",
	FailedAllocateCommandBuffer:      "failed to allocate command buffer",
	FailedCreateFence:                "failed to create fence",
	FailedCreateSemaphore:            "failed to create semaphore",
	FailedCreateBuffer:               "failed to create buffer",
	FailedAllocateMemory:             "failed to allocate memory",
	FailedRecordCommandBuffer:        "failed to record command buffer",
}

func (c ResultCode) String() string {
	if c >= 0 && int(c) < len(resultCodeNames) {
		return resultCodeNames[c]
	}
	return fmt.Sprintf("ResultCode(%d)", int(c))
}

// InitError is returned when creation of a native object fails. Such failures
// are fatal to initialization; the caller tears down whatever it has built so
// far and exits.
type InitError struct {
	Code ResultCode
	Err  error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

func initError(code ResultCode, err error) error {
	return &InitError{Code: code, Err: err}
}

// CodeOf returns the ResultCode carried by err, Success for a nil error, or
// -1 if err did not come from a failed creation.
func CodeOf(err error) ResultCode {
	if err == nil {
		return Success
	}
	var ie *InitError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return -1
}

var (
	// ErrQueueNotFound means no queue was created for the requested
	// (family, index) pair.
	ErrQueueNotFound = errors.New("queue not found")
	// ErrFormatNotSupported means none of the surface formats can back a 2D
	// optimally tiled image with the requested usage.
	ErrFormatNotSupported = errors.New("no supported surface format")
	// ErrNoMemoryType means no memory type satisfies both the resource's type
	// bits and the requested property flags.
	ErrNoMemoryType = errors.New("no matching memory type found")
	// ErrSwapchainOutOfDate is returned by acquisition or presentation when
	// the swapchain no longer matches the surface. Recovery is a Rebuild.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
	// ErrRebuildRequired is returned by DrawFrame after a frame acquired an
	// image but could not submit. The image and its semaphore stay held
	// until Rebuild.
	ErrRebuildRequired = errors.New("renderer must be rebuilt")
	// ErrNotReset is returned when recording begins on a command buffer which
	// was recorded before and has not been reset since.
	ErrNotReset = errors.New("command buffer must be reset before recording again")
	// ErrNotRecording is returned when commands are replayed into, or
	// recording is ended on, a buffer that is not recording.
	ErrNotRecording = errors.New("command buffer is not recording")
	// ErrInvalidQueueFamily means a queue request names a family the physical
	// device does not report.
	ErrInvalidQueueFamily = errors.New("invalid queue family index")
	// ErrDestroyed is returned by operations on an object after Destroy.
	ErrDestroyed = errors.New("use after destroy")
)
