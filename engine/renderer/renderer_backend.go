package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

// ErrSurfaceStale is returned (wrapped) by backends when the presentation surface no longer
// matches the window and must be rebuilt before the next frame.
var ErrSurfaceStale = errors.New("renderer: surface stale")

// SurfaceStatus is the result of acquiring or presenting a swapchain image.
type SurfaceStatus int

const (
	// SurfaceSuccess means the operation completed normally.
	SurfaceSuccess SurfaceStatus = iota

	// SurfaceStale means the surface is out of date or suboptimal. It is recoverable by
	// rebuilding the surface.
	SurfaceStale

	// SurfaceFatal means the surface or device is lost.
	SurfaceFatal
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceSuccess:
		return "success"
	case SurfaceStale:
		return "stale"
	case SurfaceFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped

	// PresentModeMailbox replaces the queued image with the newest one without tearing.
	// Falls back to VSync when the surface does not support it.
	PresentModeMailbox
)

// ParsePresentMode maps a configuration name ("fifo", "immediate", "mailbox") to a PresentMode.
// Unknown names select PresentModeVSync.
func ParsePresentMode(name string) PresentMode {
	switch name {
	case "immediate":
		return PresentModeUncapped
	case "mailbox":
		return PresentModeMailbox
	default:
		return PresentModeVSync
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU and presentation boundary of the frame pipeline.
// Every per-frame call names the frame slot it applies to; a backend keeps one fence,
// one pair of semaphores and one command context per slot.
type RendererBackend interface {
	// PrepareSlots allocates per-slot synchronization and recording resources.
	// Called once by the Renderer before the first frame.
	//
	// Parameters:
	//   - n: the number of frames in flight
	//
	// Returns:
	//   - error: an error if the resources could not be created
	PrepareSlots(n int) error

	// WaitForFence blocks until the GPU has finished the work last submitted for slot.
	// Returns immediately if nothing was submitted for the slot.
	//
	// Parameters:
	//   - slot: the frame slot
	//
	// Returns:
	//   - error: device loss or synchronization failure
	WaitForFence(slot int) error

	// ResetFence clears slot's fence before new work is submitted with it.
	//
	// Parameters:
	//   - slot: the frame slot
	//
	// Returns:
	//   - error: synchronization failure
	ResetFence(slot int) error

	// AcquireNextImage acquires the next presentable image, signalling slot's image-acquired semaphore.
	//
	// Parameters:
	//   - slot: the frame slot
	//
	// Returns:
	//   - uint32: the image index
	//   - SurfaceStatus: success, stale, or fatal
	//   - error: the underlying failure for stale and fatal statuses
	AcquireNextImage(slot int) (uint32, SurfaceStatus, error)

	// Record encodes a frame into slot's command context.
	//
	// Parameters:
	//   - frame: the frame to record
	//
	// Returns:
	//   - error: an error if recording fails
	Record(frame FrameData) error

	// Submit submits slot's recorded commands, waiting on image-acquired and signalling
	// render-finished and slot's fence.
	//
	// Parameters:
	//   - slot: the frame slot
	//
	// Returns:
	//   - error: an error if submission fails
	Submit(slot int) error

	// Present queues the image for display after slot's render-finished semaphore.
	//
	// Parameters:
	//   - slot: the frame slot
	//   - image: the image index returned by AcquireNextImage
	//
	// Returns:
	//   - SurfaceStatus: success, stale, or fatal
	//   - error: the underlying failure for stale and fatal statuses
	Present(slot int, image uint32) (SurfaceStatus, error)

	// RebuildSurface reconfigures the surface and its size-dependent attachments.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be rebuilt
	RebuildSurface(width, height int) error

	// UploadGeometry replaces the shared vertex and index buffers.
	//
	// Parameters:
	//   - vertices: all archetype vertices
	//   - indices: all archetype indices, relative to each archetype's vertex offset
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	UploadGeometry(vertices []common.Vertex, indices []uint32) error

	// UploadTexture creates a sampled texture and returns the slot it is bound at.
	//
	// Parameters:
	//   - data: RGBA8 pixels
	//
	// Returns:
	//   - int: the texture slot
	//   - error: an error if the texture could not be created
	UploadTexture(data common.TextureStagingData) (int, error)

	// WaitIdle blocks until all submitted GPU work has completed.
	//
	// Returns:
	//   - error: device loss
	WaitIdle() error

	// Release destroys all GPU resources. WaitIdle must have returned first.
	Release()
}
