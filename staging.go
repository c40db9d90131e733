package vkframe

import (
	"github.com/docker/go-units"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Stager moves data between host memory and device local buffers through
// temporary host visible staging buffers. Each transfer records a one-shot
// command buffer from Pool, submits it to Queue and waits for the queue to go
// idle before returning, so it is meant for initialization, not per frame use.
type Stager struct {
	Device *Device
	Pool   *CommandPool
	Queue  *Queue
}

// Upload copies data into a new device local buffer with usage plus transfer
// destination usage. The staging buffer and its memory are released before
// returning.
func (s *Stager) Upload(data []byte, usage vk.BufferUsageFlags) (*BoundBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("upload: no data")
	}
	size := uint64(len(data))

	staging, err := s.Device.CreateBoundBuffer(size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), HostMemory)
	if err != nil {
		return nil, errors.Wrap(err, "upload: staging buffer")
	}
	defer staging.Destroy()

	if err := staging.Memory.MapCopyUnmap(data); err != nil {
		return nil, errors.Wrap(err, "upload")
	}

	dst, err := s.Device.CreateBoundBuffer(size, usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), DeviceLocalMemory)
	if err != nil {
		return nil, errors.Wrap(err, "upload: device buffer")
	}

	if err := s.copy(staging.Buffer, dst.Buffer, size); err != nil {
		dst.Destroy()
		return nil, errors.Wrap(err, "upload")
	}
	Logger().Debug("uploaded", "size", units.BytesSize(float64(size)))
	return dst, nil
}

// UploadInto copies data to the start of an existing buffer created with
// transfer destination usage, such as a buffer from a device local pool.
func (s *Stager) UploadInto(dst *Buffer, data []byte) error {
	if len(data) == 0 {
		return errors.New("upload: no data")
	}
	if uint64(len(data)) > dst.Size {
		return errors.Errorf("upload: %d bytes into a %d byte buffer", len(data), dst.Size)
	}
	staging, err := s.Device.CreateBoundBuffer(uint64(len(data)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), HostMemory)
	if err != nil {
		return errors.Wrap(err, "upload: staging buffer")
	}
	defer staging.Destroy()

	if err := staging.Memory.MapCopyUnmap(data); err != nil {
		return errors.Wrap(err, "upload")
	}
	return errors.Wrap(s.copy(staging.Buffer, dst, uint64(len(data))), "upload")
}

// UploadFrom uploads bo with usage derived from the interfaces it implements.
func (s *Stager) UploadFrom(bo BufferObject) (*BoundBuffer, error) {
	return s.Upload(bo.Bytes(), UsageFor(bo))
}

// Read copies the contents of src back to the host. src must have been
// created with transfer source usage.
func (s *Stager) Read(src *BoundBuffer) ([]byte, error) {
	if src.Buffer.Usage&vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit) == 0 {
		return nil, errors.New("read: buffer lacks transfer source usage")
	}
	size := src.Size()

	staging, err := s.Device.CreateBoundBuffer(size, vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), HostMemory)
	if err != nil {
		return nil, errors.Wrap(err, "read: staging buffer")
	}
	defer staging.Destroy()

	if err := s.copy(src.Buffer, staging.Buffer, size); err != nil {
		return nil, errors.Wrap(err, "read")
	}
	data, err := staging.Memory.ReadUnmapped(0, size)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	Logger().Debug("read back", "size", units.BytesSize(float64(size)))
	return data, nil
}

// copy records a single full range copy and waits for it to complete.
func (s *Stager) copy(src, dst *Buffer, size uint64) error {
	cb, err := s.Pool.AllocateBuffer()
	if err != nil {
		return err
	}
	defer s.Pool.FreeBuffers(cb)

	if err := cb.BeginOneTime(); err != nil {
		return err
	}
	cb.CmdCopyBuffer(src.VKBuffer, dst.VKBuffer, vk.DeviceSize(size))
	if err := cb.End(); err != nil {
		return err
	}
	return s.Queue.SubmitWaitIdle(cb)
}
